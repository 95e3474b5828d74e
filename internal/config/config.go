// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	owken "github.com/PedroGalveias/OwkenERC20"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "owken.config"

const (
	DefaultShutdownTimeout = 30 * time.Second
	DefaultOpeningDelay    = 800 * time.Second
	DefaultWindowLength    = 72 * time.Hour
	// DefaultVaultAllowance covers every default grant
	DefaultVaultAllowance = "8719093650000000000000000"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath    string        `yaml:"databasePath"    split_words:"true"`
	ServiceName     string        `yaml:"serviceName"     split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
	Tracing         bool          `yaml:"tracing"`
	TracingStdout   bool          `yaml:"tracingStdout"   split_words:"true"`
	Deploy          DeployConfig  `yaml:"deploy"`
}

// DeployConfig holds the parameters of the one-time deployment. Addresses
// are hex strings and amounts are base-10 integers in the smallest unit.
type DeployConfig struct {
	Deployer            string        `yaml:"deployer"`
	Funder              string        `yaml:"funder"`
	TotalSupply         string        `yaml:"totalSupply"         split_words:"true"`
	OpeningDelay        time.Duration `yaml:"openingDelay"        split_words:"true"`
	WindowLength        time.Duration `yaml:"windowLength"        split_words:"true"`
	DirectOffset        time.Duration `yaml:"directOffset"        split_words:"true"`
	ReferralOffset      time.Duration `yaml:"referralOffset"      split_words:"true"`
	PurchaseOffset      time.Duration `yaml:"purchaseOffset"      split_words:"true"`
	TimelockAllowance   string        `yaml:"timelockAllowance"   split_words:"true"`
	ConversionAllowance string        `yaml:"conversionAllowance" split_words:"true"`
	VaultAllowance      string        `yaml:"vaultAllowance"      split_words:"true"`
	Grants              []GrantConfig `yaml:"grants"                                ignored:"true"`
}

type GrantConfig struct {
	Name         string        `yaml:"name"`
	Recipient    string        `yaml:"recipient"`
	StartOffset  time.Duration `yaml:"startOffset"`
	Amount       string        `yaml:"amount"`
	DurationDays uint16        `yaml:"durationDays"`
	CliffDays    uint16        `yaml:"cliffDays"`
}

// DefaultGrants is the initial vesting schedule created at deployment
func DefaultGrants() []GrantConfig {
	return []GrantConfig{
		{
			Name:         "earlyInvestors",
			Recipient:    "0xcD62398801587b10402445DF6d0847140e81DD72",
			Amount:       "156514500000000000000000",
			DurationDays: 6,
			CliffDays:    1,
		},
		{
			Name:         "privateSale",
			Recipient:    "0x19D6089eE250Ab3B0D759489e864976FFBc658e0",
			Amount:       "105579150000000000000000",
			DurationDays: 6,
			CliffDays:    1,
		},
		{
			Name:         "foundersFund",
			Recipient:    "0x4f829C79C6DFE08AD549a2c255EB104A734DB40C",
			StartOffset:  24 * 24 * time.Hour,
			Amount:       "3000000000000000000000000",
			DurationDays: 12,
			CliffDays:    1,
		},
		{
			Name:         "adoptionMarketingFund",
			Recipient:    "0xa36D62A9A810DcCB3A969308C9d78AcE70286210",
			Amount:       "800000000000000000000000",
			DurationDays: 18,
			CliffDays:    1,
		},
		{
			Name:         "team",
			Recipient:    "0x6E356BC56F5C92c68504e4992B5f92e1845651e2",
			StartOffset:  12 * 24 * time.Hour,
			Amount:       "1000000000000000000000000",
			DurationDays: 12,
			CliffDays:    1,
		},
		{
			Name:         "liquidity",
			Recipient:    "0x8D6Cc119D798624250BbdFaFB4314Fe33CFf1A6a",
			Amount:       "1800000000000000000000000",
			DurationDays: 9,
			CliffDays:    1,
		},
	}
}

func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    ".owken",
		ServiceName:     "owken",
		ShutdownTimeout: DefaultShutdownTimeout,
		Deploy: DeployConfig{
			OpeningDelay:   DefaultOpeningDelay,
			WindowLength:   DefaultWindowLength,
			VaultAllowance: DefaultVaultAllowance,
			Grants:         DefaultGrants(),
		},
	}
}

var globalConfig = DefaultConfig()

// LoadConfig builds the config from defaults, the YAML file and OWKEN_*
// environment variables, in that order. An empty configFile checks
// ~/.owken/owken.yaml and then /etc/owken/owken.yaml.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		// Check for config file in this path: ~/.owken/owken.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".owken", "owken.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		// Try to check for /etc/owken/owken.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/owken/owken.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process("owken", cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if cfg.TracingStdout && !cfg.Tracing {
		return nil, fmt.Errorf("tracingStdout requires tracing to be enabled")
	}
	globalConfig = cfg
	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}

// DeployParams converts the deployment section into node parameters
func (d DeployConfig) DeployParams() (owken.DeployParams, error) {
	ret := owken.DeployParams{
		OpeningDelay:   d.OpeningDelay,
		WindowLength:   d.WindowLength,
		DirectOffset:   d.DirectOffset,
		ReferralOffset: d.ReferralOffset,
		PurchaseOffset: d.PurchaseOffset,
	}
	var err error
	if ret.Deployer, err = parseAddress("deployer", d.Deployer); err != nil {
		return ret, err
	}
	if ret.Funder, err = parseAddress("funder", d.Funder); err != nil {
		return ret, err
	}
	for _, item := range []struct {
		name string
		val  string
		dest *types.Amount
	}{
		{"totalSupply", d.TotalSupply, &ret.TotalSupply},
		{"timelockAllowance", d.TimelockAllowance, &ret.TimelockAllowance},
		{"conversionAllowance", d.ConversionAllowance, &ret.ConversionAllowance},
		{"vaultAllowance", d.VaultAllowance, &ret.VaultAllowance},
	} {
		if *item.dest, err = parseAmount(item.name, item.val); err != nil {
			return ret, err
		}
	}
	for idx, g := range d.Grants {
		name := g.Name
		if name == "" {
			name = fmt.Sprintf("grant %d", idx)
		}
		recipient, err := parseAddress(name+" recipient", g.Recipient)
		if err != nil {
			return ret, err
		}
		amount, err := parseAmount(name+" amount", g.Amount)
		if err != nil {
			return ret, err
		}
		ret.Grants = append(ret.Grants, owken.GrantParams{
			Recipient:    recipient,
			StartOffset:  g.StartOffset,
			Amount:       amount,
			DurationDays: g.DurationDays,
			CliffDays:    g.CliffDays,
		})
	}
	return ret, nil
}

// parseAddress leaves empty values as the zero address
func parseAddress(name, val string) (types.Address, error) {
	if val == "" {
		return types.ZeroAddress, nil
	}
	ret, err := types.ParseAddress(val)
	if err != nil {
		return ret, fmt.Errorf("%s: %w", name, err)
	}
	return ret, nil
}

func parseAmount(name, val string) (types.Amount, error) {
	if val == "" {
		return types.Amount{}, nil
	}
	ret, err := types.ParseAmount(val)
	if err != nil {
		return ret, fmt.Errorf("%s: %w", name, err)
	}
	return ret, nil
}
