// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "encoding/hex"

// ToHex converts bytes to a hex string.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// LoadHex converts a hex encoded string into bytes. Returns
// an error if the string is invalid or does not decode to
// [expectedSize] bytes (-1 skips the size check).
func LoadHex(s string, expectedSize int) ([]byte, error) {
	if len(s) >= 2 && s[:2] == "0x" {
		s = s[2:]
	}

	bytes, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if expectedSize != -1 && len(bytes) != expectedSize {
		return nil, ErrInvalidSize
	}
	return bytes, nil
}
