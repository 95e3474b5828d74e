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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	owken "github.com/PedroGalveias/OwkenERC20"
	"github.com/PedroGalveias/OwkenERC20/clock"
	"github.com/PedroGalveias/OwkenERC20/internal/config"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/spf13/cobra"
)

var errNoConfig = errors.New("no config found in context")

// nodeClock returns the clock selected by --now
func nodeClock() (clock.Clock, error) {
	if globalFlags.now == "" {
		return clock.System{}, nil
	}
	now, err := time.Parse(time.RFC3339, globalFlags.now)
	if err != nil {
		return nil, fmt.Errorf("invalid --now: %w", err)
	}
	return clock.NewManual(now.UTC()), nil
}

// withNode starts a node on the configured database, hands it to fn and
// stops it again
func withNode(
	cmd *cobra.Command,
	fn func(context.Context, *config.Config, *owken.Node) error,
) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errNoConfig
	}
	logger := commonRun()
	clk, err := nodeClock()
	if err != nil {
		return err
	}
	n, err := owken.New(
		owken.NewConfig(
			owken.WithLogger(logger),
			owken.WithClock(clk),
			owken.WithDatabasePath(cfg.DatabasePath),
			owken.WithServiceName(cfg.ServiceName),
			owken.WithTracing(cfg.Tracing),
			owken.WithTracingStdout(cfg.TracingStdout),
			owken.WithShutdownTimeout(cfg.ShutdownTimeout),
		),
	)
	if err != nil {
		return err
	}
	if err := n.Start(cmd.Context()); err != nil {
		return errors.Join(err, n.Stop())
	}
	err = fn(cmd.Context(), cfg, n)
	if stopErr := n.Stop(); stopErr != nil {
		slog.Error(
			"failed to stop node",
			"component", programName,
			"error", stopErr,
		)
	}
	return err
}

// execute runs one state-changing operation through the node
func execute(
	cmd *cobra.Command,
	name string,
	fn func(*owken.Components) (any, error),
) error {
	return withNode(cmd, func(ctx context.Context, _ *config.Config, n *owken.Node) error {
		var result any
		err := n.Execute(ctx, name, func(c *owken.Components) error {
			var err error
			result, err = fn(c)
			return err
		})
		if err != nil {
			return err
		}
		if result == nil {
			return nil
		}
		return printJSON(cmd.OutOrStdout(), result)
	})
}

// view runs a read-only query against the node
func view(cmd *cobra.Command, fn func(*owken.Components) (any, error)) error {
	return withNode(cmd, func(_ context.Context, _ *config.Config, n *owken.Node) error {
		var result any
		err := n.View(func(c *owken.Components) error {
			var err error
			result, err = fn(c)
			return err
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// callerFlag registers --from, which defaults to the configured deployer
func callerFlag(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "calling account (defaults to the configured deployer)")
}

func caller(cmd *cobra.Command) (types.Address, error) {
	val, _ := cmd.Flags().GetString("from")
	if val == "" {
		if cfg := config.FromContext(cmd.Context()); cfg != nil {
			val = cfg.Deploy.Deployer
		}
	}
	if val == "" {
		return types.ZeroAddress, errors.New("no caller: pass --from or configure deploy.deployer")
	}
	return types.ParseAddress(val)
}

func addressFlag(cmd *cobra.Command, name string) (types.Address, error) {
	val, _ := cmd.Flags().GetString(name)
	if val == "" {
		return types.ZeroAddress, fmt.Errorf("--%s is required", name)
	}
	ret, err := types.ParseAddress(val)
	if err != nil {
		return ret, fmt.Errorf("--%s: %w", name, err)
	}
	return ret, nil
}

// amountFlag returns zero when the flag was not given
func amountFlag(cmd *cobra.Command, name string) (types.Amount, error) {
	val, _ := cmd.Flags().GetString(name)
	if val == "" {
		return types.Amount{}, nil
	}
	ret, err := types.ParseAmount(val)
	if err != nil {
		return ret, fmt.Errorf("--%s: %w", name, err)
	}
	return ret, nil
}

func parseAddressArg(arg string) (types.Address, error) {
	ret, err := types.ParseAddress(arg)
	if err != nil {
		return ret, fmt.Errorf("invalid address %q: %w", arg, err)
	}
	return ret, nil
}
