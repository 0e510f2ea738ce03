// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"fmt"

	"github.com/petenewcomb/sweep-go/internal/cerr"
)

const ErrInvalidValue = cerr.Error("invalid value")
const ErrInvalidSweep = cerr.Error("invalid sweep")
const ErrSubmitPanic = cerr.Error("submitter panicked")

// A ValueError reports a value outside of one of the closed enumerations or
// numeric ranges accepted by the experiment scripts. It matches
// [ErrInvalidValue] with [errors.Is].
type ValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValueError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s: %#v", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %#v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValueError) Unwrap() error {
	return ErrInvalidValue
}
