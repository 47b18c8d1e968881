// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/fxregistry/consts"
)

// Packer is a wrapper struct for the Packer struct
// from avalanchego/utils/wrappers/packing.go. A bool [required] parameter is
// added to many unpacking methods, which signals the packer to add an error
// if the expected method does not unpack properly.
type Packer struct {
	p *wrappers.Packer
}

// NewReader returns a Packer instance with the current byte array [src] and a
// maximum size of [limit].
func NewReader(src []byte, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{Bytes: src, MaxSize: limit},
	}
}

// NewWriter returns a Packer instance with an initial size of [initial] and a
// maximum size of [limit].
func NewWriter(initial, limit int) *Packer {
	return &Packer{
		p: &wrappers.Packer{MaxSize: limit, Bytes: make([]byte, 0, initial)},
	}
}

// Bytes returns the bytes written so far.
func (p *Packer) Bytes() []byte {
	return p.p.Bytes
}

// Offset returns the current read/write position.
func (p *Packer) Offset() int {
	return p.p.Offset
}

// Err returns the first error encountered while packing or unpacking.
func (p *Packer) Err() error {
	return p.p.Err
}

// Empty returns true if every byte has been consumed.
func (p *Packer) Empty() bool {
	return p.p.Offset == len(p.p.Bytes)
}

func (p *Packer) addErr(err error) {
	if p.p.Err == nil {
		p.p.Err = err
	}
}

func (p *Packer) PackByte(b byte) {
	p.p.PackByte(b)
}

func (p *Packer) UnpackByte() byte {
	return p.p.UnpackByte()
}

func (p *Packer) PackBool(b bool) {
	p.p.PackBool(b)
}

func (p *Packer) UnpackBool() bool {
	return p.p.UnpackBool()
}

func (p *Packer) PackID(id ids.ID) {
	p.p.PackFixedBytes(id[:])
}

// UnpackID unpacks an avalanchego ID into [dest]. If [required] is true,
// and the unpacked bytes are empty, Packer will add an ErrFieldNotPopulated error.
func (p *Packer) UnpackID(required bool, dest *ids.ID) {
	copy((*dest)[:], p.p.UnpackFixedBytes(consts.IDLen))
	if required && *dest == ids.Empty {
		p.addErr(ErrFieldNotPopulated)
	}
}

func (p *Packer) PackAddress(a Address) {
	p.p.PackFixedBytes(a[:])
}

// UnpackAddress unpacks an Address into [dest]. If [required] is true and
// the address is empty, Packer will add an ErrFieldNotPopulated error.
func (p *Packer) UnpackAddress(required bool, dest *Address) {
	copy((*dest)[:], p.p.UnpackFixedBytes(AddressLen))
	if required && *dest == EmptyAddress {
		p.addErr(ErrFieldNotPopulated)
	}
}

func (p *Packer) PackFixedBytes(b []byte) {
	p.p.PackFixedBytes(b)
}

func (p *Packer) UnpackFixedBytes(size int, dest *[]byte) {
	copy((*dest), p.p.UnpackFixedBytes(size))
}

// PackBytes packs [b] prefixed with its uint32 length.
func (p *Packer) PackBytes(b []byte) {
	p.p.PackBytes(b)
}

// UnpackBytes unpacks [limit] bytes into [dest]. Otherwise
// if [limit] >= 0, UnpackBytes unpacks a byte slice array into [dest]. If
// [required] is set to true and the amount of bytes written to [dest] is 0,
// UnpackBytes adds an err ErrFieldNotPopulated to the Packer.
func (p *Packer) UnpackBytes(limit int, required bool, dest *[]byte) {
	if limit >= 0 {
		*dest = p.p.UnpackLimitedBytes(uint32(limit))
	} else {
		*dest = p.p.UnpackBytes()
	}
	if required && len(*dest) == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
}

func (p *Packer) PackUint32(v uint32) {
	p.p.PackInt(v)
}

func (p *Packer) UnpackUint32(required bool) uint32 {
	v := p.p.UnpackInt()
	if required && v == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return v
}

func (p *Packer) PackUint64(v uint64) {
	p.p.PackLong(v)
}

// UnpackUint64 unpacks a uint64 from the Packer. If [required] is set to
// true and the value is 0, the Packer records ErrFieldNotPopulated.
func (p *Packer) UnpackUint64(required bool) uint64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return v
}

func (p *Packer) PackInt64(v int64) {
	p.p.PackLong(uint64(v))
}

func (p *Packer) UnpackInt64(required bool) int64 {
	v := p.p.UnpackLong()
	if required && v == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return int64(v)
}

// PackString packs [s] prefixed with its uint16 length.
func (p *Packer) PackString(s string) {
	p.p.PackStr(s)
}

func (p *Packer) UnpackString(required bool) string {
	str := p.p.UnpackStr()
	if required && len(str) == 0 {
		p.addErr(ErrFieldNotPopulated)
	}
	return str
}
