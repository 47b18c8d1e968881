// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package delegation

import "errors"

var (
	ErrInvalidSeeds           = errors.New("seeds do not derive account")
	ErrOwnerMismatch          = errors.New("account owner mismatch")
	ErrAlreadyDelegated       = errors.New("account already delegated")
	ErrNotDelegated           = errors.New("account not delegated")
	ErrInvalidCommitFrequency = errors.New("invalid commit frequency")
)
