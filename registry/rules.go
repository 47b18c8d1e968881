// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"fmt"
	"time"

	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/storage"
)

// Rules are fixed at deployment and never change at runtime.
type Rules struct {
	// ProgramID owns the registry account while it is at the base venue.
	ProgramID codec.Address `json:"programID"`
	// DelegationProgramID owns the base copy while the registry is
	// delegated.
	DelegationProgramID codec.Address `json:"delegationProgramID"`

	// MigrationEnabled gates delegate and undelegate.
	MigrationEnabled bool `json:"migrationEnabled"`

	// RegistrySpace is the fixed data length of the registry account.
	RegistrySpace int `json:"registrySpace"`
	// MaxOracles caps the oracle list. Zero leaves only the space limit.
	MaxOracles int `json:"maxOracles"`

	DefaultCommitFrequency time.Duration `json:"defaultCommitFrequency"`
}

func NewDefaultRules(programID codec.Address, delegationProgramID codec.Address) *Rules {
	return &Rules{
		ProgramID:              programID,
		DelegationProgramID:    delegationProgramID,
		MigrationEnabled:       true,
		RegistrySpace:          storage.DefaultRegistrySpace,
		DefaultCommitFrequency: 30 * time.Second,
	}
}

func (r *Rules) Validate() error {
	switch {
	case r.ProgramID == codec.EmptyAddress:
		return fmt.Errorf("%w: missing program ID", ErrInvalidRules)
	case r.MigrationEnabled && r.DelegationProgramID == codec.EmptyAddress:
		return fmt.Errorf("%w: missing delegation program ID", ErrInvalidRules)
	case r.ProgramID == r.DelegationProgramID:
		return fmt.Errorf("%w: program and delegation program must differ", ErrInvalidRules)
	case r.RegistrySpace <= 0 || r.RegistrySpace > storage.MaxAccountSpace:
		return fmt.Errorf("%w: registry space %d", ErrInvalidRules, r.RegistrySpace)
	case r.MaxOracles < 0:
		return fmt.Errorf("%w: max oracles %d", ErrInvalidRules, r.MaxOracles)
	case r.DefaultCommitFrequency < 0:
		return fmt.Errorf("%w: commit frequency %s", ErrInvalidRules, r.DefaultCommitFrequency)
	}
	return nil
}

// RegistryAddress is the canonical registry account address.
func (r *Rules) RegistryAddress() codec.Address {
	return storage.RegistryAddress(r.ProgramID)
}
