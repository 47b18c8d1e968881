// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/viper"

	"github.com/ava-labs/fxregistry/api/ws"
	"github.com/ava-labs/fxregistry/codec"
	"github.com/ava-labs/fxregistry/delegation"
	"github.com/ava-labs/fxregistry/pebble"
	"github.com/ava-labs/fxregistry/registry"
	"github.com/ava-labs/fxregistry/server"
	"github.com/ava-labs/fxregistry/storage"
	"github.com/ava-labs/fxregistry/trace"
	"github.com/ava-labs/fxregistry/utils"
)

// ProgramAddressID prefixes the addresses of well known programs.
const ProgramAddressID uint8 = 0xff

var (
	DefaultProgramID           = codec.CreateAddress(ProgramAddressID, utils.ToID([]byte("fxregistry")))
	DefaultDelegationProgramID = codec.CreateAddress(ProgramAddressID, utils.ToID([]byte("delegation")))

	ErrMissingDataDir = errors.New("data directory is required")
)

type RulesConfig struct {
	ProgramID              string        `json:"programID"              mapstructure:"programID"`
	DelegationProgramID    string        `json:"delegationProgramID"    mapstructure:"delegationProgramID"`
	MigrationEnabled       bool          `json:"migrationEnabled"       mapstructure:"migrationEnabled"`
	RegistrySpace          int           `json:"registrySpace"          mapstructure:"registrySpace"`
	MaxOracles             int           `json:"maxOracles"             mapstructure:"maxOracles"`
	DefaultCommitFrequency time.Duration `json:"defaultCommitFrequency" mapstructure:"defaultCommitFrequency"`
}

type DelegationConfig struct {
	TickInterval time.Duration `json:"tickInterval" mapstructure:"tickInterval"`
}

// LogConfig controls the rotating log file. An empty Directory disables it.
type LogConfig struct {
	Directory string `json:"directory" mapstructure:"directory"`
	MaxSize   int    `json:"maxSize"   mapstructure:"maxSize"` // megabytes
	MaxAge    int    `json:"maxAge"    mapstructure:"maxAge"`  // days
	MaxFiles  int    `json:"maxFiles"  mapstructure:"maxFiles"`
	Compress  bool   `json:"compress"  mapstructure:"compress"`
}

type Config struct {
	LogLevel string    `json:"logLevel" mapstructure:"logLevel"`
	Log      LogConfig `json:"log"      mapstructure:"log"`
	DataDir  string    `json:"dataDir"  mapstructure:"dataDir"`

	// EphemeralInMemory keeps the ephemeral venue in memory. A delegated
	// registry is restored from its last checkpoint on restart.
	EphemeralInMemory bool `json:"ephemeralInMemory" mapstructure:"ephemeralInMemory"`

	Rules      RulesConfig      `json:"rules"      mapstructure:"rules"`
	Delegation DelegationConfig `json:"delegation" mapstructure:"delegation"`
	Pebble     pebble.Config    `json:"pebble"     mapstructure:"pebble"`
	HTTP       server.Config    `json:"http"       mapstructure:"http"`
	WebSocket  ws.Config        `json:"websocket"  mapstructure:"websocket"`
	Trace      trace.Config     `json:"trace"      mapstructure:"trace"`
}

func NewDefaultConfig() Config {
	return Config{
		LogLevel: logging.Info.String(),
		Log: LogConfig{
			MaxSize:  8,
			MaxFiles: 7,
		},
		DataDir: ".fxregistry",

		EphemeralInMemory: true,

		Rules: RulesConfig{
			ProgramID:              DefaultProgramID.String(),
			DelegationProgramID:    DefaultDelegationProgramID.String(),
			MigrationEnabled:       true,
			RegistrySpace:          storage.DefaultRegistrySpace,
			DefaultCommitFrequency: delegation.DefaultCommitFrequency,
		},
		Delegation: DelegationConfig{
			TickInterval: delegation.DefaultTickInterval,
		},
		Pebble:    pebble.NewDefaultConfig(),
		HTTP:      server.NewDefaultConfig(),
		WebSocket: ws.NewDefaultConfig(),
		Trace:     trace.NewDefaultConfig(),
	}
}

// Load overlays the settings held by [v] on the defaults.
func Load(v *viper.Viper) (Config, error) {
	cfg := NewDefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DataDir == "" {
		return Config{}, ErrMissingDataDir
	}
	if _, err := cfg.GetLogLevel(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.GetRules(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) GetLogLevel() (logging.Level, error) {
	return logging.ToLevel(c.LogLevel)
}

func (c *Config) GetRules() (*registry.Rules, error) {
	programID, err := codec.ParseAddress(c.Rules.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}
	delegationProgramID, err := codec.ParseAddress(c.Rules.DelegationProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid delegation program id: %w", err)
	}
	rules := &registry.Rules{
		ProgramID:              programID,
		DelegationProgramID:    delegationProgramID,
		MigrationEnabled:       c.Rules.MigrationEnabled,
		RegistrySpace:          c.Rules.RegistrySpace,
		MaxOracles:             c.Rules.MaxOracles,
		DefaultCommitFrequency: c.Rules.DefaultCommitFrequency,
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *Config) GetDelegationConfig(programID codec.Address) delegation.Config {
	cfg := delegation.NewDefaultConfig(programID)
	if c.Rules.DefaultCommitFrequency > 0 {
		cfg.DefaultCommitFrequency = c.Rules.DefaultCommitFrequency
	}
	if c.Delegation.TickInterval > 0 {
		cfg.TickInterval = c.Delegation.TickInterval
	}
	return cfg
}
