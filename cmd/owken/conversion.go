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
	"errors"
	"fmt"
	"time"

	owken "github.com/PedroGalveias/OwkenERC20"
	"github.com/PedroGalveias/OwkenERC20/conversion"
	"github.com/PedroGalveias/OwkenERC20/timelock"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/spf13/cobra"
)

func conversionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conversion",
		Short: "Operate the subscription window",
	}
	cmd.AddCommand(
		conversionDepositCommand(),
		conversionWithdrawCommand(),
		conversionOperatorCommand(),
		conversionStatusCommand(),
	)
	return cmd
}

// depositFunc picks the deposit operation matching the categories present
func depositFunc(
	conv *conversion.Conversion,
	direct, referral, purchase types.Amount,
) (func(caller, beneficiary types.Address) error, error) {
	d, r, p := !direct.IsZero(), !referral.IsZero(), !purchase.IsZero()
	switch {
	case d && r && p:
		return func(caller, beneficiary types.Address) error {
			return conv.DepositDirectReferralPurchase(caller, beneficiary, direct, referral, purchase)
		}, nil
	case d && r:
		return func(caller, beneficiary types.Address) error {
			return conv.DepositDirectReferral(caller, beneficiary, direct, referral)
		}, nil
	case d && p:
		return func(caller, beneficiary types.Address) error {
			return conv.DepositDirectPurchase(caller, beneficiary, direct, purchase)
		}, nil
	case r && p:
		return func(caller, beneficiary types.Address) error {
			return conv.DepositReferralPurchase(caller, beneficiary, referral, purchase)
		}, nil
	case d:
		return func(caller, beneficiary types.Address) error {
			return conv.DepositDirect(caller, beneficiary, direct)
		}, nil
	case r:
		return func(caller, beneficiary types.Address) error {
			return conv.DepositReferral(caller, beneficiary, referral)
		}, nil
	case p:
		return func(caller, beneficiary types.Address) error {
			return conv.DepositPurchase(caller, beneficiary, purchase)
		}, nil
	}
	return nil, errors.New("at least one of --direct, --referral or --purchase is required")
}

func conversionDepositCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Credit a beneficiary while the window is open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			operator, err := caller(cmd)
			if err != nil {
				return err
			}
			beneficiary, err := addressFlag(cmd, "beneficiary")
			if err != nil {
				return err
			}
			var amounts [3]types.Amount
			for i, name := range []string{"direct", "referral", "purchase"} {
				if amounts[i], err = amountFlag(cmd, name); err != nil {
					return err
				}
			}
			return execute(cmd, "conversion_deposit", func(c *owken.Components) (any, error) {
				fn, err := depositFunc(c.Conversion, amounts[0], amounts[1], amounts[2])
				if err != nil {
					return nil, err
				}
				return nil, fn(operator, beneficiary)
			})
		},
	}
	callerFlag(cmd)
	cmd.Flags().String("beneficiary", "", "account credited")
	cmd.Flags().String("direct", "", "direct amount")
	cmd.Flags().String("referral", "", "referral amount")
	cmd.Flags().String("purchase", "", "purchase amount")
	return cmd
}

func conversionWithdrawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw <beneficiary>",
		Short: "Forward the balances of a beneficiary to the lock registry after closing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			beneficiary, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			categoryName, _ := cmd.Flags().GetString("category")
			var category timelock.Category
			if categoryName != "all" {
				if category, err = timelock.ParseCategory(categoryName); err != nil {
					return err
				}
			}
			return execute(cmd, "conversion_withdraw", func(c *owken.Components) (any, error) {
				var forwarded bool
				var err error
				switch category {
				case timelock.CategoryDirect:
					forwarded, err = c.Conversion.WithdrawDirect(beneficiary)
				case timelock.CategoryReferral:
					forwarded, err = c.Conversion.WithdrawReferral(beneficiary)
				case timelock.CategoryPurchase:
					forwarded, err = c.Conversion.WithdrawPurchase(beneficiary)
				default:
					forwarded, err = c.Conversion.Withdraw(beneficiary)
				}
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"beneficiary": beneficiary,
					"forwarded":   forwarded,
				}, nil
			})
		},
	}
	cmd.Flags().String("category", "all", "direct, referral, purchase or all")
	return cmd
}

func conversionOperatorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "operator <grant|revoke> <account>",
		Short:     "Grant or revoke the operator role",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"grant", "revoke"},
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := caller(cmd)
			if err != nil {
				return err
			}
			account, err := parseAddressArg(args[1])
			if err != nil {
				return err
			}
			switch args[0] {
			case "grant":
				return execute(cmd, "conversion_grant_operator", func(c *owken.Components) (any, error) {
					return nil, c.Conversion.GrantOperatorRole(admin, account)
				})
			case "revoke":
				return execute(cmd, "conversion_revoke_operator", func(c *owken.Components) (any, error) {
					return nil, c.Conversion.RevokeOperatorRole(admin, account)
				})
			}
			return fmt.Errorf("unknown operator action %q", args[0])
		},
	}
	callerFlag(cmd)
	return cmd
}

type conversionStatus struct {
	Address     types.Address   `json:"address"`
	Admin       types.Address   `json:"admin"`
	OpeningTime time.Time       `json:"openingTime"`
	ClosingTime time.Time       `json:"closingTime"`
	Open        bool            `json:"open"`
	Closed      bool            `json:"closed"`
	Operators   []types.Address `json:"operators"`
	Account     *accountStatus  `json:"account,omitempty"`
}

type accountStatus struct {
	Address  types.Address `json:"address"`
	Direct   types.Amount  `json:"direct"`
	Referral types.Amount  `json:"referral"`
	Purchase types.Amount  `json:"purchase"`
}

func conversionStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [account]",
		Short: "Show the window and optionally the balances of an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var account *types.Address
			if len(args) == 1 {
				tmp, err := parseAddressArg(args[0])
				if err != nil {
					return err
				}
				account = &tmp
			}
			return view(cmd, func(c *owken.Components) (any, error) {
				conv := c.Conversion
				ret := conversionStatus{
					Address:     conv.Address(),
					Admin:       conv.Admin(),
					OpeningTime: conv.OpeningTime(),
					ClosingTime: conv.ClosingTime(),
					Open:        conv.IsOpen(),
					Closed:      conv.HasClosed(),
					Operators:   conv.Operators(),
				}
				if account != nil {
					ret.Account = &accountStatus{
						Address:  *account,
						Direct:   conv.BalanceDirect(*account),
						Referral: conv.BalanceReferral(*account),
						Purchase: conv.BalancePurchase(*account),
					}
				}
				return ret, nil
			})
		},
	}
	return cmd
}
