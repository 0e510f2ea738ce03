// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package local

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("no space left on device")

type failingLog struct{ name string }

func (f failingLog) Close() error { return errDiskFull }
func (f failingLog) Name() string { return f.name }

func TestCloseLogJoinsErrors(t *testing.T) {
	chk := require.New(t)

	var err error
	closeLog(failingLog{"job.out"}, &err)
	chk.ErrorIs(err, errDiskFull)
	chk.ErrorContains(err, "closing job.out")

	err = &ExitError{Job: "job", Code: 2}
	closeLog(failingLog{"job.err"}, &err)
	chk.ErrorIs(err, ErrExit)
	chk.ErrorIs(err, errDiskFull)
}

func TestCloseLogKeepsCleanResult(t *testing.T) {
	chk := require.New(t)
	f, err := os.Create(filepath.Join(t.TempDir(), "job.out"))
	chk.NoError(err)

	closeLog(f, &err)
	chk.NoError(err)

	// A second close fails and is reported.
	closeLog(f, &err)
	chk.ErrorIs(err, os.ErrClosed)
}
