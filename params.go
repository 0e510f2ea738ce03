// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"strconv"
	"strings"
)

// Params is one fully-resolved set of experiment parameters. It is a plain
// value with no reference fields, so copies never share state.
//
// Zero values mean "unset": the corresponding flag is omitted and the
// experiment script applies its own default. RandomState is the exception and
// is always rendered, since it identifies the run.
type Params struct {
	Dataset     Dataset  `yaml:"dataset,omitempty"`
	TreeType    TreeType `yaml:"tree_type,omitempty"`
	NEstimators int      `yaml:"n_estimators,omitempty"`
	MaxDepth    int      `yaml:"max_depth,omitempty"`
	RandomState int      `yaml:"rs,omitempty"`

	Method      Method      `yaml:"method,omitempty"`
	TreeKernel  TreeKernel  `yaml:"tree_kernel,omitempty"`
	KernelModel KernelModel `yaml:"kernel_model,omitempty"`

	// Cleaning experiment settings.
	CheckPct  float64 `yaml:"check_pct,omitempty"`
	TrainFrac float64 `yaml:"train_frac,omitempty"`

	ValFrac   float64 `yaml:"val_frac,omitempty"`
	InfK      int     `yaml:"inf_k,omitempty"`
	Verbose   int     `yaml:"verbose,omitempty"`
	TrueLabel bool    `yaml:"true_label,omitempty"`
	DStump    bool    `yaml:"dstump,omitempty"`
	DataDir   string  `yaml:"data_dir,omitempty"`
	OutDir    string  `yaml:"out_dir,omitempty"`
}

// Flags renders the parameters as the long-form command-line flags accepted by
// the experiment scripts, in a fixed order.
func (p Params) Flags() []string {
	var w flagWriter
	w.str("dataset", string(p.Dataset))
	w.str("tree_type", string(p.TreeType))
	w.positive("n_estimators", p.NEstimators)
	w.positive("max_depth", p.MaxDepth)
	w.pair("rs", strconv.Itoa(p.RandomState))
	w.fraction("check_pct", p.CheckPct)
	w.fraction("train_frac", p.TrainFrac)
	w.str("tree_kernel", string(p.TreeKernel))
	w.str("kernel_model", string(p.KernelModel))
	switch p.Method {
	case TREX, MAPLE, TEKNN:
		w.flag(string(p.Method), true)
	}
	w.positive("inf_k", p.InfK)
	w.positive("verbose", p.Verbose)
	w.fraction("val_frac", p.ValFrac)
	w.flag("true_label", p.TrueLabel)
	w.flag("dstump", p.DStump)
	w.str("data_dir", p.DataDir)
	w.str("out_dir", p.OutDir)
	return w.args
}

// Tag renders every field that may vary along an axis, other than the
// dataset, into a short file-name-safe string. Two parameter sets that agree
// on which fields are set and differ in any axis field have different tags.
func (p Params) Tag() string {
	var parts []string
	add := func(prefix, v string) {
		if v != "" {
			parts = append(parts, prefix+v)
		}
	}
	add("", string(p.TreeType))
	add("", string(p.Method))
	add("", string(p.KernelModel))
	add("", string(p.TreeKernel))
	add("n", positiveString(p.NEstimators))
	add("d", positiveString(p.MaxDepth))
	add("rs", strconv.Itoa(p.RandomState))
	add("cp", fractionString(p.CheckPct))
	add("tf", fractionString(p.TrainFrac))
	add("k", positiveString(p.InfK))
	return strings.Join(parts, "-")
}

// Validate checks the parameters against the values the experiment scripts
// accept. The returned error, if any, matches [ErrInvalidValue].
func (p Params) Validate() error {
	if p.Dataset == "" {
		return &ValueError{Field: "dataset", Value: "", Reason: "required"}
	}
	if err := validEnum("dataset", p.Dataset, allDatasets); err != nil {
		return err
	}
	if err := validEnum("tree type", p.TreeType, allTreeTypes); err != nil {
		return err
	}
	if err := validEnum("method", p.Method, allMethods); err != nil {
		return err
	}
	if err := validEnum("tree kernel", p.TreeKernel, allTreeKernels); err != nil {
		return err
	}
	if err := validEnum("kernel model", p.KernelModel, allKernelModels); err != nil {
		return err
	}
	if p.NEstimators <= 0 {
		return &ValueError{Field: "n_estimators", Value: p.NEstimators, Reason: "must be positive"}
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"max_depth", p.MaxDepth},
		{"rs", p.RandomState},
		{"inf_k", p.InfK},
		{"verbose", p.Verbose},
	} {
		if f.value < 0 {
			return &ValueError{Field: f.name, Value: f.value, Reason: "must not be negative"}
		}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"check_pct", p.CheckPct},
		{"train_frac", p.TrainFrac},
		{"val_frac", p.ValFrac},
	} {
		if !(f.value >= 0 && f.value <= 1) {
			return &ValueError{Field: f.name, Value: f.value, Reason: "must be in (0, 1]"}
		}
	}
	if p.Method == LeafInfluence {
		if p.InfK <= 0 {
			return &ValueError{Field: "inf_k", Value: p.InfK, Reason: "leaf influence requires a positive leaf count"}
		}
		if p.TreeType != "" && p.TreeType != CatBoost {
			return &ValueError{Field: "tree type", Value: string(p.TreeType), Reason: "leaf influence supports only cb"}
		}
	}
	if p.Method == MAPLE && p.TreeKernel != "" {
		return &ValueError{Field: "tree kernel", Value: string(p.TreeKernel), Reason: "not used by maple"}
	}
	if p.DStump && p.Method != MAPLE {
		return &ValueError{Field: "dstump", Value: true, Reason: "only applies to maple"}
	}
	return nil
}

type flagWriter struct {
	args []string
}

func (w *flagWriter) pair(name, value string) {
	w.args = append(w.args, "--"+name, value)
}

func (w *flagWriter) str(name, value string) {
	if value != "" {
		w.pair(name, value)
	}
}

func (w *flagWriter) positive(name string, value int) {
	w.str(name, positiveString(value))
}

func (w *flagWriter) fraction(name string, value float64) {
	w.str(name, fractionString(value))
}

func (w *flagWriter) flag(name string, set bool) {
	if set {
		w.args = append(w.args, "--"+name)
	}
}

func positiveString(v int) string {
	if v <= 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func fractionString(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
