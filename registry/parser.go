// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"fmt"

	"github.com/ava-labs/fxregistry/codec"
)

type UnmarshalFunc func(*codec.Packer) (Action, error)

// Parser maps action type IDs to their unmarshalers.
type Parser struct {
	actions map[uint8]UnmarshalFunc
}

func NewParser() *Parser {
	return &Parser{
		actions: map[uint8]UnmarshalFunc{
			InitializeID: UnmarshalInitialize,
			AddOracleID:  UnmarshalAddOracle,
			UpdateRateID: UnmarshalUpdateRate,
			DelegateID:   UnmarshalDelegate,
			UndelegateID: UnmarshalUndelegate,
		},
	}
}

func (p *Parser) UnmarshalAction(packer *codec.Packer) (Action, error) {
	typeID := packer.UnpackByte()
	if err := packer.Err(); err != nil {
		return nil, err
	}
	f, ok := p.actions[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, typeID)
	}
	return f(packer)
}
