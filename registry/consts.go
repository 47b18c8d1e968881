// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

const (
	InitializeID uint8 = iota
	AddOracleID
	UpdateRateID
	DelegateID
	UndelegateID
)

const (
	// MaxNameSize bounds an oracle display name.
	MaxNameSize = 256

	// MaxTxTTL bounds how far in the future a transaction may expire, in
	// milliseconds.
	MaxTxTTL = 60 * 1000
)
