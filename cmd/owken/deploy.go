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

	owken "github.com/PedroGalveias/OwkenERC20"
	"github.com/PedroGalveias/OwkenERC20/internal/config"
	"github.com/spf13/cobra"
)

func deployCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the token, lock registry, subscription window and vesting vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withNode(cmd, func(ctx context.Context, cfg *config.Config, n *owken.Node) error {
				params, err := cfg.Deploy.DeployParams()
				if err != nil {
					return err
				}
				if noGrants, _ := cmd.Flags().GetBool("no-grants"); noGrants {
					params.Grants = nil
				}
				dep, err := n.Deploy(ctx, params)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), dep)
			})
		},
	}
	cmd.Flags().Bool("no-grants", false, "skip the configured grant table")
	return cmd
}

func eventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the event journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetUint64("since")
			limit, _ := cmd.Flags().GetInt("limit")
			return withNode(cmd, func(_ context.Context, _ *config.Config, n *owken.Node) error {
				records, err := n.Journal(from, limit)
				if err != nil {
					return err
				}
				for _, rec := range records {
					if err := printJSON(cmd.OutOrStdout(), rec); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().Uint64("since", 1, "first journal sequence number to print")
	cmd.Flags().Int("limit", 0, "maximum number of records, 0 for all")
	return cmd
}
