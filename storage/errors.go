// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrAlreadyExists        = errors.New("account already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountNotOwned      = errors.New("account not owned by writer")
	ErrAccountDataTooLarge  = errors.New("account data exceeds allocated space")
	ErrInvalidDiscriminator = errors.New("invalid account discriminator")
	ErrCorruptLayout        = errors.New("corrupt account layout")
	ErrInvalidSpace         = errors.New("invalid account space")
)
