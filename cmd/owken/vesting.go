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
	"fmt"
	"strconv"
	"time"

	owken "github.com/PedroGalveias/OwkenERC20"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/PedroGalveias/OwkenERC20/vesting"
	"github.com/spf13/cobra"
)

func vestingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vesting",
		Short: "Operate the vesting vault",
	}
	cmd.AddCommand(
		vestingAddCommand(),
		vestingRemoveCommand(),
		vestingClaimCommand(),
		vestingListCommand(),
		vestingControllerCommand(),
	)
	return cmd
}

type grantView struct {
	ID              uint64        `json:"id"`
	Recipient       types.Address `json:"recipient"`
	StartTime       time.Time     `json:"startTime"`
	Amount          types.Amount  `json:"amount"`
	AmountRemaining types.Amount  `json:"amountRemaining"`
	AmountPerDay    types.Amount  `json:"amountPerDay"`
	DurationDays    uint16        `json:"durationDays"`
	CliffDays       uint16        `json:"cliffDays"`
	DaysClaimed     uint16        `json:"daysClaimed"`
	ClaimableDays   uint16        `json:"claimableDays"`
	Claimable       types.Amount  `json:"claimable"`
}

func newGrantView(vault *vesting.Vault, grant vesting.Grant) (grantView, error) {
	days, amount, err := vault.CalculateGrantClaim(grant.ID)
	if err != nil {
		return grantView{}, err
	}
	return grantView{
		ID:              grant.ID,
		Recipient:       grant.Recipient,
		StartTime:       grant.StartTime,
		Amount:          grant.Amount,
		AmountRemaining: grant.AmountRemaining,
		AmountPerDay:    grant.AmountPerDay,
		DurationDays:    grant.DurationDays,
		CliffDays:       grant.CliffDays,
		DaysClaimed:     grant.DaysClaimed,
		ClaimableDays:   days,
		Claimable:       amount,
	}, nil
}

func grantIDArg(arg string) (uint64, error) {
	ret, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid grant id %q: %w", arg, err)
	}
	return ret, nil
}

func vestingAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a grant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := caller(cmd)
			if err != nil {
				return err
			}
			recipient, err := addressFlag(cmd, "recipient")
			if err != nil {
				return err
			}
			amount, err := amountFlag(cmd, "amount")
			if err != nil {
				return err
			}
			duration, _ := cmd.Flags().GetUint16("duration")
			cliff, _ := cmd.Flags().GetUint16("cliff")
			var start time.Time
			if val, _ := cmd.Flags().GetString("start"); val != "" {
				if start, err = time.Parse(time.RFC3339, val); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				start = start.UTC()
			}
			return execute(cmd, "vesting_add_grant", func(c *owken.Components) (any, error) {
				id, err := c.Vault.AddTokenGrant(controller, recipient, start, amount, duration, cliff)
				if err != nil {
					return nil, err
				}
				grant, err := c.Vault.GetGrant(id)
				if err != nil {
					return nil, err
				}
				return newGrantView(c.Vault, grant)
			})
		},
	}
	callerFlag(cmd)
	cmd.Flags().String("recipient", "", "account receiving the vested tokens")
	cmd.Flags().String("amount", "", "total amount in the smallest unit")
	cmd.Flags().Uint16("duration", 0, "vesting duration in days")
	cmd.Flags().Uint16("cliff", 0, "cliff in days")
	cmd.Flags().String("start", "", "RFC3339 start time, defaults to now")
	return cmd
}

func vestingRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <grant-id>",
		Short: "Delete a grant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			controller, err := caller(cmd)
			if err != nil {
				return err
			}
			id, err := grantIDArg(args[0])
			if err != nil {
				return err
			}
			return execute(cmd, "vesting_remove_grant", func(c *owken.Components) (any, error) {
				return nil, c.Vault.RemoveTokenGrant(controller, id)
			})
		},
	}
	callerFlag(cmd)
	return cmd
}

func vestingClaimCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim <grant-id>",
		Short: "Pay out everything vested so far",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := grantIDArg(args[0])
			if err != nil {
				return err
			}
			return execute(cmd, "vesting_claim", func(c *owken.Components) (any, error) {
				amount, err := c.Vault.ClaimVestedTokens(id)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"grantId": id,
					"claimed": amount,
				}, nil
			})
		},
	}
	return cmd
}

func vestingListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [recipient]",
		Short: "List grants, optionally only the active grants of a recipient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var recipient *types.Address
			if len(args) == 1 {
				tmp, err := parseAddressArg(args[0])
				if err != nil {
					return err
				}
				recipient = &tmp
			}
			return view(cmd, func(c *owken.Components) (any, error) {
				var grants []vesting.Grant
				if recipient == nil {
					grants = c.Vault.Grants()
				} else {
					for _, id := range c.Vault.GetActiveGrants(*recipient) {
						grant, err := c.Vault.GetGrant(id)
						if err != nil {
							return nil, err
						}
						grants = append(grants, grant)
					}
				}
				ret := make([]grantView, 0, len(grants))
				for _, grant := range grants {
					tmp, err := newGrantView(c.Vault, grant)
					if err != nil {
						return nil, err
					}
					ret = append(ret, tmp)
				}
				return ret, nil
			})
		},
	}
	return cmd
}

func vestingControllerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "controller [next]",
		Short: "Show the vault controller or hand control to another account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return view(cmd, func(c *owken.Components) (any, error) {
					return map[string]any{
						"controller": c.Vault.Controller(),
						"funder":     c.Vault.Funder(),
					}, nil
				})
			}
			current, err := caller(cmd)
			if err != nil {
				return err
			}
			next, err := parseAddressArg(args[0])
			if err != nil {
				return err
			}
			return execute(cmd, "vesting_change_controller", func(c *owken.Components) (any, error) {
				return nil, c.Vault.ChangeMultiSig(current, next)
			})
		},
	}
	callerFlag(cmd)
	return cmd
}
