// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"slices"
)

// Dataset identifies one of the tabular datasets known to the experiment
// scripts. The zero value means no dataset has been chosen.
type Dataset string

const (
	Adult         Dataset = "adult"
	Amazon        Dataset = "amazon"
	BankMarketing Dataset = "bank_marketing"
	Breast        Dataset = "breast"
	Census        Dataset = "census"
	Churn         Dataset = "churn"
	Compas        Dataset = "compas"
	CreditCard    Dataset = "credit_card"
	Diabetes      Dataset = "diabetes"
	Flight        Dataset = "flight"
	Heart         Dataset = "heart"
	Higgs         Dataset = "higgs"
	Hospital      Dataset = "hospital"
	Iris          Dataset = "iris"
	Medifor       Dataset = "medifor"
	NC17MFC18     Dataset = "nc17_mfc18"
	NC17MFC19     Dataset = "nc17_mfc19"
	Surgical      Dataset = "surgical"
	Synthetic     Dataset = "synthetic"
	Theorem       Dataset = "theorem"
	Vaccine       Dataset = "vaccine"
	Wine          Dataset = "wine"
)

var allDatasets = []Dataset{
	Adult, Amazon, BankMarketing, Breast, Census, Churn, Compas, CreditCard,
	Diabetes, Flight, Heart, Higgs, Hospital, Iris, Medifor, NC17MFC18,
	NC17MFC19, Surgical, Synthetic, Theorem, Vaccine, Wine,
}

// AllDatasets returns the dataset catalog in alphabetical order.
func AllDatasets() []Dataset { return slices.Clone(allDatasets) }

func ParseDataset(s string) (Dataset, error) { return parseEnum("dataset", s, allDatasets) }

func (d Dataset) String() string                { return string(d) }
func (d Dataset) MarshalText() ([]byte, error)  { return []byte(d), nil }
func (d *Dataset) UnmarshalText(b []byte) error { return unmarshalEnum(d, "dataset", b, allDatasets) }

// TreeType selects the tree-ensemble implementation trained by the
// experiment scripts.
type TreeType string

const (
	CatBoost      TreeType = "cb"
	LightGBM      TreeType = "lgb"
	XGBoost       TreeType = "xgb"
	RandomForest  TreeType = "rf"
	GradientBoost TreeType = "gbm"
)

var allTreeTypes = []TreeType{CatBoost, LightGBM, XGBoost, RandomForest, GradientBoost}

func AllTreeTypes() []TreeType { return slices.Clone(allTreeTypes) }

func ParseTreeType(s string) (TreeType, error) { return parseEnum("tree type", s, allTreeTypes) }

func (t TreeType) String() string               { return string(t) }
func (t TreeType) MarshalText() ([]byte, error) { return []byte(t), nil }
func (t *TreeType) UnmarshalText(b []byte) error {
	return unmarshalEnum(t, "tree type", b, allTreeTypes)
}

// Method selects the explanation-method backend. TREX, MAPLE and TEKNN are
// selected by mutually exclusive switches; leaf influence is selected by the
// number of leaves it is allowed to consider (see [Params.InfK]).
type Method string

const (
	TREX          Method = "trex"
	MAPLE         Method = "maple"
	TEKNN         Method = "teknn"
	LeafInfluence Method = "leaf_influence"
)

var allMethods = []Method{TREX, MAPLE, TEKNN, LeafInfluence}

func AllMethods() []Method { return slices.Clone(allMethods) }

func ParseMethod(s string) (Method, error) { return parseEnum("method", s, allMethods) }

func (m Method) String() string                { return string(m) }
func (m Method) MarshalText() ([]byte, error)  { return []byte(m), nil }
func (m *Method) UnmarshalText(b []byte) error { return unmarshalEnum(m, "method", b, allMethods) }

// TreeKernel is the structural similarity function derived from the trained
// ensemble.
type TreeKernel string

const (
	TreeOutput TreeKernel = "tree_output"
	LeafPath   TreeKernel = "leaf_path"
	LeafOutput TreeKernel = "leaf_output"
)

var allTreeKernels = []TreeKernel{TreeOutput, LeafPath, LeafOutput}

func AllTreeKernels() []TreeKernel { return slices.Clone(allTreeKernels) }

func ParseTreeKernel(s string) (TreeKernel, error) {
	return parseEnum("tree kernel", s, allTreeKernels)
}

func (k TreeKernel) String() string               { return string(k) }
func (k TreeKernel) MarshalText() ([]byte, error) { return []byte(k), nil }
func (k *TreeKernel) UnmarshalText(b []byte) error {
	return unmarshalEnum(k, "tree kernel", b, allTreeKernels)
}

// KernelModel is the kernel model TREX fits on top of the tree kernel.
type KernelModel string

const (
	KLR KernelModel = "klr"
	SVM KernelModel = "svm"
)

var allKernelModels = []KernelModel{KLR, SVM}

func AllKernelModels() []KernelModel { return slices.Clone(allKernelModels) }

func ParseKernelModel(s string) (KernelModel, error) {
	return parseEnum("kernel model", s, allKernelModels)
}

func (k KernelModel) String() string               { return string(k) }
func (k KernelModel) MarshalText() ([]byte, error) { return []byte(k), nil }
func (k *KernelModel) UnmarshalText(b []byte) error {
	return unmarshalEnum(k, "kernel model", b, allKernelModels)
}

func parseEnum[E ~string](field, s string, all []E) (E, error) {
	e := E(s)
	if !slices.Contains(all, e) {
		return "", &ValueError{Field: field, Value: s}
	}
	return e, nil
}

func unmarshalEnum[E ~string](dst *E, field string, b []byte, all []E) error {
	e, err := parseEnum(field, string(b), all)
	if err != nil {
		return err
	}
	*dst = e
	return nil
}

// validEnum accepts the zero value as "unset".
func validEnum[E ~string](field string, e E, all []E) error {
	if e == "" || slices.Contains(all, e) {
		return nil
	}
	return &ValueError{Field: field, Value: string(e)}
}
