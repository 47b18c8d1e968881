// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

// Note: address type IDs are part of the derived identity of every
// principal. Do not remap them.
const (
	ED25519ID uint8 = 0

	ED25519Key = "ed25519"
)
