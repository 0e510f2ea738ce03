// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package gather

import "github.com/petenewcomb/sweep-go/internal/cerr"

const ErrTaskPanic = cerr.Error("task panicked")
