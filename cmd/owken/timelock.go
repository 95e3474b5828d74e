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
	"github.com/PedroGalveias/OwkenERC20/timelock"
	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/spf13/cobra"
)

func timelockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timelock",
		Short: "Operate the lock registry",
	}
	cmd.AddCommand(
		timelockLockCommand(),
		timelockWithdrawCommand(),
		timelockListCommand(),
		timelockLockerCommand(),
	)
	return cmd
}

type lockView struct {
	Index       int           `json:"index"`
	ID          uint64        `json:"id"`
	Beneficiary types.Address `json:"beneficiary"`
	Amount      types.Amount  `json:"amount"`
	ReleaseTime time.Time     `json:"releaseTime"`
	Category    string        `json:"category,omitempty"`
}

func newLockView(index int, entry timelock.LockEntry) lockView {
	return lockView{
		Index:       index,
		ID:          entry.ID,
		Beneficiary: entry.Beneficiary,
		Amount:      entry.Amount,
		ReleaseTime: entry.ReleaseTime,
		Category:    entry.Category.String(),
	}
}

func timelockLockCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Lock tokens for a beneficiary",
		Long: "Lock tokens for a beneficiary, either until --release-time (administrator only) " +
			"or for the offset of --category (registered lockers)",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller(cmd)
			if err != nil {
				return err
			}
			beneficiary, err := addressFlag(cmd, "beneficiary")
			if err != nil {
				return err
			}
			amount, err := amountFlag(cmd, "amount")
			if err != nil {
				return err
			}
			releaseVal, _ := cmd.Flags().GetString("release-time")
			categoryVal, _ := cmd.Flags().GetString("category")
			if (releaseVal == "") == (categoryVal == "") {
				return fmt.Errorf("exactly one of --release-time or --category is required")
			}
			if releaseVal != "" {
				releaseTime, err := time.Parse(time.RFC3339, releaseVal)
				if err != nil {
					return fmt.Errorf("--release-time: %w", err)
				}
				return execute(cmd, "timelock_lock", func(c *owken.Components) (any, error) {
					index, err := c.Timelock.Lock(from, beneficiary, amount, releaseTime.UTC())
					if err != nil {
						return nil, err
					}
					entry, err := c.Timelock.GetLock(index)
					if err != nil {
						return nil, err
					}
					return newLockView(index, entry), nil
				})
			}
			category, err := timelock.ParseCategory(categoryVal)
			if err != nil {
				return err
			}
			return execute(cmd, "timelock_lock", func(c *owken.Components) (any, error) {
				entries, err := c.Timelock.LockBatch(from, []timelock.LockRequest{{
					Beneficiary: beneficiary,
					Amount:      amount,
					Category:    category,
				}})
				if err != nil {
					return nil, err
				}
				return newLockView(c.Timelock.GetLocksLength()-1, entries[0]), nil
			})
		},
	}
	callerFlag(cmd)
	cmd.Flags().String("beneficiary", "", "account the tokens are released to")
	cmd.Flags().String("amount", "", "amount in the smallest unit")
	cmd.Flags().String("release-time", "", "RFC3339 release time")
	cmd.Flags().String("category", "", "direct, referral or purchase")
	return cmd
}

func timelockWithdrawCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw <index>",
		Short: "Release a matured lock to its beneficiary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := caller(cmd)
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			return execute(cmd, "timelock_withdraw", func(c *owken.Components) (any, error) {
				return nil, c.Timelock.Withdraw(from, index)
			})
		},
	}
	callerFlag(cmd)
	return cmd
}

func timelockListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every lock in index order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return view(cmd, func(c *owken.Components) (any, error) {
				entries := c.Timelock.GetLocks()
				ret := make([]lockView, 0, len(entries))
				for idx, entry := range entries {
					ret = append(ret, newLockView(idx, entry))
				}
				return ret, nil
			})
		},
	}
	return cmd
}

func timelockLockerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "locker <add|remove> <account>",
		Short:     "Register or unregister a locker",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"add", "remove"},
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
			case "add":
				return execute(cmd, "timelock_add_locker", func(c *owken.Components) (any, error) {
					return nil, c.Timelock.AddLocker(admin, account)
				})
			case "remove":
				return execute(cmd, "timelock_remove_locker", func(c *owken.Components) (any, error) {
					return nil, c.Timelock.RemoveLocker(admin, account)
				})
			}
			return fmt.Errorf("unknown locker action %q", args[0])
		},
	}
	callerFlag(cmd)
	return cmd
}
