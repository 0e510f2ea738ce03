// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
)

// Product yields every tuple of indices into axes of the given sizes, in
// nested-loop order: the first position varies slowest and the last fastest.
// If any size is zero or negative, nothing is yielded. With no sizes at all,
// a single empty tuple is yielded.
//
// Each yielded slice is freshly allocated and may be retained by the caller.
func Product(sizes ...int) iter.Seq[[]int] {
	sizes = slices.Clone(sizes)
	return func(yield func([]int) bool) {
		for _, n := range sizes {
			if n <= 0 {
				return
			}
		}
		idx := make([]int, len(sizes))
		for {
			if !yield(slices.Clone(idx)) {
				return
			}
			// Advance like an odometer.
			i := len(idx) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < sizes[i] {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}

// Names of the parameters that may vary along an [Axis].
const (
	AxisDataset     = "dataset"
	AxisTreeType    = "tree_type"
	AxisNEstimators = "n_estimators"
	AxisMaxDepth    = "max_depth"
	AxisSeed        = "rs"
	AxisMethod      = "method"
	AxisTreeKernel  = "tree_kernel"
	AxisKernelModel = "kernel_model"
	AxisCheckPct    = "check_pct"
	AxisTrainFrac   = "train_frac"
	AxisInfK        = "inf_k"
)

// An Axis is a named, ordered, finite list of values for one [Params] field.
// Axes are immutable; the constructors copy their arguments.
type Axis interface {
	// Name is the parameter the axis varies, one of the Axis* constants.
	Name() string
	Len() int
	// Value renders the i-th value as it appears on the command line.
	Value(i int) string

	apply(p *Params, i int)
	validate() error
}

type axis[T comparable] struct {
	name   string
	values []T
	set    func(*Params, T)
	check  func(T) error
}

func newAxis[T comparable](name string, values []T, set func(*Params, T), check func(T) error) Axis {
	return &axis[T]{
		name:   name,
		values: slices.Clone(values),
		set:    set,
		check:  check,
	}
}

func (a *axis[T]) Name() string { return a.name }
func (a *axis[T]) Len() int     { return len(a.values) }

func (a *axis[T]) Value(i int) string {
	switch v := any(a.values[i]).(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (a *axis[T]) apply(p *Params, i int) {
	a.set(p, a.values[i])
}

func (a *axis[T]) validate() error {
	seen := make(map[T]struct{}, len(a.values))
	for _, v := range a.values {
		if err := a.check(v); err != nil {
			return err
		}
		if _, dup := seen[v]; dup {
			return &ValueError{Field: a.name, Value: v, Reason: "duplicate axis value"}
		}
		seen[v] = struct{}{}
	}
	return nil
}

func Datasets(values ...Dataset) Axis {
	return newAxis(AxisDataset, values,
		func(p *Params, v Dataset) { p.Dataset = v },
		requiredEnum("dataset", allDatasets))
}

func TreeTypes(values ...TreeType) Axis {
	return newAxis(AxisTreeType, values,
		func(p *Params, v TreeType) { p.TreeType = v },
		requiredEnum("tree type", allTreeTypes))
}

func NEstimators(values ...int) Axis {
	return newAxis(AxisNEstimators, values,
		func(p *Params, v int) { p.NEstimators = v },
		positive(AxisNEstimators))
}

func MaxDepths(values ...int) Axis {
	return newAxis(AxisMaxDepth, values,
		func(p *Params, v int) { p.MaxDepth = v },
		positive(AxisMaxDepth))
}

// Seeds varies the random state. Seeds may be zero but not negative.
func Seeds(values ...int) Axis {
	return newAxis(AxisSeed, values,
		func(p *Params, v int) { p.RandomState = v },
		func(v int) error {
			if v < 0 {
				return &ValueError{Field: AxisSeed, Value: v, Reason: "must not be negative"}
			}
			return nil
		})
}

func Methods(values ...Method) Axis {
	return newAxis(AxisMethod, values,
		func(p *Params, v Method) { p.Method = v },
		requiredEnum("method", allMethods))
}

func TreeKernels(values ...TreeKernel) Axis {
	return newAxis(AxisTreeKernel, values,
		func(p *Params, v TreeKernel) { p.TreeKernel = v },
		requiredEnum("tree kernel", allTreeKernels))
}

func KernelModels(values ...KernelModel) Axis {
	return newAxis(AxisKernelModel, values,
		func(p *Params, v KernelModel) { p.KernelModel = v },
		requiredEnum("kernel model", allKernelModels))
}

func CheckPcts(values ...float64) Axis {
	return newAxis(AxisCheckPct, values,
		func(p *Params, v float64) { p.CheckPct = v },
		fraction(AxisCheckPct))
}

func TrainFracs(values ...float64) Axis {
	return newAxis(AxisTrainFrac, values,
		func(p *Params, v float64) { p.TrainFrac = v },
		fraction(AxisTrainFrac))
}

func InfKs(values ...int) Axis {
	return newAxis(AxisInfK, values,
		func(p *Params, v int) { p.InfK = v },
		positive(AxisInfK))
}

// ParseAxis builds the axis with the given name from values in their
// command-line form, for instance ParseAxis("rs", []string{"1", "2"}).
func ParseAxis(name string, values []string) (Axis, error) {
	switch name {
	case AxisDataset:
		return parseAxisValues(values, ParseDataset, Datasets)
	case AxisTreeType:
		return parseAxisValues(values, ParseTreeType, TreeTypes)
	case AxisNEstimators:
		return parseAxisValues(values, parseInt(name), NEstimators)
	case AxisMaxDepth:
		return parseAxisValues(values, parseInt(name), MaxDepths)
	case AxisSeed:
		return parseAxisValues(values, parseInt(name), Seeds)
	case AxisMethod:
		return parseAxisValues(values, ParseMethod, Methods)
	case AxisTreeKernel:
		return parseAxisValues(values, ParseTreeKernel, TreeKernels)
	case AxisKernelModel:
		return parseAxisValues(values, ParseKernelModel, KernelModels)
	case AxisCheckPct:
		return parseAxisValues(values, parseFloat(name), CheckPcts)
	case AxisTrainFrac:
		return parseAxisValues(values, parseFloat(name), TrainFracs)
	case AxisInfK:
		return parseAxisValues(values, parseInt(name), InfKs)
	default:
		return nil, &ValueError{Field: "axis name", Value: name}
	}
}

// AxisNames lists the names accepted by [ParseAxis].
func AxisNames() []string {
	return []string{
		AxisDataset, AxisTreeType, AxisNEstimators, AxisMaxDepth, AxisSeed,
		AxisMethod, AxisTreeKernel, AxisKernelModel, AxisCheckPct,
		AxisTrainFrac, AxisInfK,
	}
}

func parseAxisValues[T any](values []string, parse func(string) (T, error), build func(...T) Axis) (Axis, error) {
	parsed := make([]T, 0, len(values))
	for _, s := range values {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, v)
	}
	a := build(parsed...)
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func parseInt(field string) func(string) (int, error) {
	return func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, &ValueError{Field: field, Value: s, Reason: "not an integer"}
		}
		return v, nil
	}
}

func parseFloat(field string) func(string) (float64, error) {
	return func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &ValueError{Field: field, Value: s, Reason: "not a number"}
		}
		return v, nil
	}
}

func requiredEnum[E ~string](field string, all []E) func(E) error {
	return func(e E) error {
		if !slices.Contains(all, e) {
			return &ValueError{Field: field, Value: string(e)}
		}
		return nil
	}
}

func positive(field string) func(int) error {
	return func(v int) error {
		if v <= 0 {
			return &ValueError{Field: field, Value: v, Reason: "must be positive"}
		}
		return nil
	}
}

func fraction(field string) func(float64) error {
	return func(v float64) error {
		// Written so that NaN fails.
		if !(v > 0 && v <= 1) {
			return &ValueError{Field: field, Value: v, Reason: "must be in (0, 1]"}
		}
		return nil
	}
}
