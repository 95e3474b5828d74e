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

package types

import (
	"database/sql/driver"
	"fmt"
	"math/big"
)

// Amount is an arbitrary precision token quantity in base units. Amounts are
// immutable: every arithmetic method returns a new value. The zero value is 0.
//
//nolint:recvcheck
type Amount struct {
	i *big.Int
}

func NewAmount(v uint64) Amount {
	return Amount{i: new(big.Int).SetUint64(v)}
}

// NewAmountFromBig copies v into a new Amount
func NewAmountFromBig(v *big.Int) Amount {
	if v == nil {
		return Amount{}
	}
	return Amount{i: new(big.Int).Set(v)}
}

// ParseAmount parses a base-10 integer string
func ParseAmount(s string) (Amount, error) {
	tmp, ok := new(big.Int).SetString(s, 10)
	if !ok || tmp.Sign() < 0 {
		return Amount{}, fmt.Errorf("invalid amount: %q", s)
	}
	return Amount{i: tmp}, nil
}

// MustParseAmount is like ParseAmount but panics on error
func MustParseAmount(s string) Amount {
	ret, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return ret
}

func (a Amount) big() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return a.i
}

// Big returns a copy of the underlying integer
func (a Amount) Big() *big.Int {
	return new(big.Int).Set(a.big())
}

func (a Amount) Add(b Amount) Amount {
	return Amount{i: new(big.Int).Add(a.big(), b.big())}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{i: new(big.Int).Sub(a.big(), b.big())}
}

func (a Amount) MulUint64(n uint64) Amount {
	return Amount{
		i: new(big.Int).Mul(a.big(), new(big.Int).SetUint64(n)),
	}
}

// DivUint64 performs truncating integer division. Division by zero returns 0.
func (a Amount) DivUint64(n uint64) Amount {
	if n == 0 {
		return Amount{}
	}
	return Amount{
		i: new(big.Int).Quo(a.big(), new(big.Int).SetUint64(n)),
	}
}

func (a Amount) Cmp(b Amount) int {
	return a.big().Cmp(b.big())
}

func (a Amount) Sign() int {
	return a.big().Sign()
}

func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

func (a Amount) String() string {
	return a.big().String()
}

// MinAmount returns the smaller of a and b
func MinAmount(a, b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalText(data []byte) error {
	tmp, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Amount) Scan(val any) error {
	switch v := val.(type) {
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	case int64:
		*a = Amount{i: big.NewInt(v)}
		return nil
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
}
