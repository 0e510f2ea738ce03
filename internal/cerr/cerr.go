// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package cerr provides a string type usable as a constant sentinel error.
package cerr

// Error is an error whose message is its value, so that sentinel errors can
// be declared as constants and compared with errors.Is.
type Error string

func (e Error) Error() string {
	return string(e)
}
