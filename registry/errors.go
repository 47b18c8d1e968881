// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import "errors"

var (
	ErrOracleAlreadyExists    = errors.New("oracle already exists")
	ErrUnauthorizedOracle     = errors.New("unauthorized oracle")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrAdapterFailure         = errors.New("adapter failure")
	ErrCapacityExceeded       = errors.New("capacity exceeded")
	ErrMigrationDisabled      = errors.New("migration disabled")
	ErrWrongVenue             = errors.New("wrong venue")
	ErrRegistryNotFound       = errors.New("registry not found")
	ErrOracleNotFound         = errors.New("oracle not found")
	ErrInvalidRules           = errors.New("invalid rules")
	ErrNameTooLarge           = errors.New("name too large")
	ErrInvalidCommitFrequency = errors.New("invalid commit frequency")

	ErrUnknownAction      = errors.New("unknown action")
	ErrTransactionExpired = errors.New("transaction expired")
	ErrTransactionTooFar  = errors.New("transaction expiry too far in the future")
	ErrDuplicateTx        = errors.New("duplicate transaction")
	ErrTrailingBytes      = errors.New("trailing bytes")
	ErrWrongDeployment    = errors.New("transaction signed for another deployment")
)
