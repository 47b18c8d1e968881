// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/fxregistry/auth"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/consts"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/ledger"
	"github.com/ava-labs/fxregistry/state"
	"github.com/ava-labs/fxregistry/storage"
)

var (
	_ Action = (*Delegate)(nil)
	_ Action = (*Undelegate)(nil)
)

func migrationKeys(rt *Runtime) state.Keys {
	keys := registryKeys(rt.Rules)
	if rt.Adapter != nil {
		for k, p := range rt.Adapter.StateKeys(rt.Rules.RegistryAddress()) {
			keys.Add(k, p)
		}
	}
	return keys
}

// checkMigration loads the registry for a migration operation and verifies
// that it is allowed here, by this signer set, from [from].
func checkMigration(
	ctx context.Context,
	rt *Runtime,
	im state.Immutable,
	signers *auth.Signers,
	from Location,
) error {
	if !rt.Rules.MigrationEnabled {
		return ErrMigrationDisabled
	}
	if rt.Venue != ledger.Base {
		return fmt.Errorf("%w: migration at %s venue", ErrWrongVenue, rt.Venue)
	}
	if rt.Adapter == nil {
		return fmt.Errorf("%w: no adapter configured", ErrMigrationDisabled)
	}
	account, r, err := loadRegistry(ctx, im, rt.Rules)
	if err != nil {
		return err
	}
	if err := requireAdministrator(r, signers); err != nil {
		return err
	}
	location, err := locationOf(rt.Rules, rt.Venue, account)
	if err != nil {
		return err
	}
	if location != from {
		return fmt.Errorf("%w: registry is %s", ErrInvalidStateTransition, location)
	}
	return nil
}

// Delegate hands write authority to the ephemeral venue.
type Delegate struct {
	// CommitFrequency is how often the ephemeral venue checkpoints back.
	// Zero selects the deployment default.
	CommitFrequency time.Duration `json:"commitFrequency"`

	// Validator optionally designates the ephemeral venue operator.
	Validator *codec.Address `json:"validator,omitempty"`
}

func (*Delegate) GetTypeID() uint8 {
	return DelegateID
}

func (*Delegate) StateKeys(rt *Runtime) state.Keys {
	return migrationKeys(rt)
}

func (d *Delegate) Execute(
	ctx context.Context,
	rt *Runtime,
	mu state.Mutable,
	_ int64,
	signers *auth.Signers,
) (codec.Typed, error) {
	if d.CommitFrequency < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCommitFrequency, d.CommitFrequency)
	}
	if err := checkMigration(ctx, rt, mu, signers, LocationBase); err != nil {
		return nil, err
	}
	frequency := d.CommitFrequency
	if frequency == 0 {
		frequency = rt.Rules.DefaultCommitFrequency
	}
	req := &delegation.DelegateRequest{
		Account:         rt.Rules.RegistryAddress(),
		Owner:           rt.Rules.ProgramID,
		Seeds:           [][]byte{storage.RegistrySeed},
		CommitFrequency: frequency,
		Validator:       d.Validator,
	}
	if err := rt.Adapter.Delegate(ctx, mu, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdapterFailure, err)
	}
	return &MigrationResult{Location: LocationDelegated}, nil
}

func (d *Delegate) Size() int {
	size := consts.Int64Len + consts.BoolLen
	if d.Validator != nil {
		size += codec.AddressLen
	}
	return size
}

func (d *Delegate) Marshal(p *codec.Packer) {
	p.PackInt64(int64(d.CommitFrequency))
	p.PackBool(d.Validator != nil)
	if d.Validator != nil {
		p.PackAddress(*d.Validator)
	}
}

func UnmarshalDelegate(p *codec.Packer) (Action, error) {
	var d Delegate
	d.CommitFrequency = time.Duration(p.UnpackInt64(false))
	if p.UnpackBool() {
		var validator codec.Address
		p.UnpackAddress(true, &validator)
		d.Validator = &validator
	}
	return &d, p.Err()
}

// Undelegate returns write authority to the base venue.
type Undelegate struct{}

func (*Undelegate) GetTypeID() uint8 {
	return UndelegateID
}

func (*Undelegate) StateKeys(rt *Runtime) state.Keys {
	return migrationKeys(rt)
}

func (*Undelegate) Execute(
	ctx context.Context,
	rt *Runtime,
	mu state.Mutable,
	_ int64,
	signers *auth.Signers,
) (codec.Typed, error) {
	if err := checkMigration(ctx, rt, mu, signers, LocationDelegated); err != nil {
		return nil, err
	}
	req := &delegation.UndelegateRequest{
		Account: rt.Rules.RegistryAddress(),
		Owner:   rt.Rules.ProgramID,
	}
	if err := rt.Adapter.Undelegate(ctx, mu, req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAdapterFailure, err)
	}
	return &MigrationResult{Location: LocationBase}, nil
}

func (*Undelegate) Size() int {
	return 0
}

func (*Undelegate) Marshal(*codec.Packer) {}

func UnmarshalUndelegate(*codec.Packer) (Action, error) {
	return &Undelegate{}, nil
}

var _ codec.Typed = (*MigrationResult)(nil)

type MigrationResult struct {
	Location Location `json:"location"`
}

func (m *MigrationResult) GetTypeID() uint8 {
	if m.Location == LocationDelegated {
		return DelegateID
	}
	return UndelegateID
}
