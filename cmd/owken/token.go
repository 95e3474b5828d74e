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
	owken "github.com/PedroGalveias/OwkenERC20"
	"github.com/spf13/cobra"
)

func tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspect and move token balances",
	}
	cmd.AddCommand(
		tokenBalanceCommand(),
		tokenTransferCommand(),
		tokenApproveCommand(),
	)
	return cmd
}

func tokenBalanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Show the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			return view(cmd, func(c *owken.Components) (any, error) {
				return map[string]any{
					"account": account,
					"balance": c.Ledger.BalanceOf(account),
					"symbol":  c.Ledger.Symbol(),
				}, nil
			})
		},
	}
	return cmd
}

func tokenTransferCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer tokens from the calling account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller(cmd)
			if err != nil {
				return err
			}
			to, err := addressFlag(cmd, "to")
			if err != nil {
				return err
			}
			amount, err := amountFlag(cmd, "amount")
			if err != nil {
				return err
			}
			return execute(cmd, "token_transfer", func(c *owken.Components) (any, error) {
				return nil, c.Ledger.Transfer(from, to, amount)
			})
		},
	}
	callerFlag(cmd)
	cmd.Flags().String("to", "", "receiving account")
	cmd.Flags().String("amount", "", "amount in the smallest unit")
	return cmd
}

func tokenApproveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Set the allowance of a spender over the calling account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := caller(cmd)
			if err != nil {
				return err
			}
			spender, err := addressFlag(cmd, "spender")
			if err != nil {
				return err
			}
			amount, err := amountFlag(cmd, "amount")
			if err != nil {
				return err
			}
			return execute(cmd, "token_approve", func(c *owken.Components) (any, error) {
				return nil, c.Ledger.Approve(owner, spender, amount)
			})
		},
	}
	callerFlag(cmd)
	cmd.Flags().String("spender", "", "account allowed to spend")
	cmd.Flags().String("amount", "", "allowance in the smallest unit")
	return cmd
}
