// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

// Location is the venue holding write authority over the registry.
type Location uint8

const (
	LocationBase Location = iota
	LocationDelegated
)

var errUnknownLocation = errors.New("unknown location")

func (l Location) String() string {
	switch l {
	case LocationBase:
		return "base"
	case LocationDelegated:
		return "delegated"
	default:
		return "unknown"
	}
}

func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Location) UnmarshalText(b []byte) error {
	switch string(b) {
	case "base":
		*l = LocationBase
	case "delegated":
		*l = LocationDelegated
	default:
		return fmt.Errorf("%w: %q", errUnknownLocation, b)
	}
	return nil
}

// locationOf derives the authority location from the account owner. It is
// never stored.
func locationOf(rules *Rules, venue ledger.Kind, account *storage.Account) (Location, error) {
	if venue == ledger.Ephemeral {
		return LocationDelegated, nil
	}
	switch account.Owner {
	case rules.ProgramID:
		return LocationBase, nil
	case rules.DelegationProgramID:
		return LocationDelegated, nil
	default:
		return 0, fmt.Errorf("%w: registry owned by %s", storage.ErrAccountNotOwned, account.Owner)
	}
}

// GetLocation reads the authority location as seen from [venue]. A registry
// absent from the ephemeral venue is held by the base venue.
func GetLocation(ctx context.Context, im state.Immutable, rules *Rules, venue ledger.Kind) (Location, error) {
	account, err := storage.GetAccount(ctx, im, rules.RegistryAddress())
	switch {
	case errors.Is(err, storage.ErrAccountNotFound) && venue == ledger.Ephemeral:
		return LocationBase, nil
	case errors.Is(err, storage.ErrAccountNotFound):
		return 0, ErrRegistryNotFound
	case err != nil:
		return 0, err
	}
	return locationOf(rules, venue, account)
}
