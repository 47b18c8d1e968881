// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import "errors"

var (
	ErrNoSigners        = errors.New("request carries no signers")
	ErrTooManySigners   = errors.New("too many signers")
	ErrDuplicateSigner  = errors.New("duplicate signer")
	ErrUnexpectedAuthID = errors.New("unexpected auth type")
)
