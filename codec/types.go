// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/ava-labs/fxregistry/consts"

// Typed is implemented by every object that is prefixed with a type
// byte on the wire (actions, results).
type Typed interface {
	GetTypeID() uint8
}

func BytesLen(msg []byte) int {
	return consts.IntLen + len(msg)
}

// StringLen is the packed size of msg, including its uint16 length prefix.
func StringLen(msg string) int {
	return consts.Uint16Len + len(msg)
}
