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
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the size of an account or contract address in bytes
const AddressLength = 20

// Address identifies an account or a deployed contract. The zero value is the
// zero address, which is never a valid beneficiary.
//
//nolint:recvcheck
type Address [AddressLength]byte

// ZeroAddress is the all-zero address
var ZeroAddress Address

// ParseAddress decodes a hex address with or without the 0x prefix
func ParseAddress(s string) (Address, error) {
	var ret Address
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != AddressLength*2 {
		return ret, fmt.Errorf(
			"invalid address length: expected %d hex characters, got %d",
			AddressLength*2,
			len(s),
		)
	}
	if _, err := hex.Decode(ret[:], []byte(s)); err != nil {
		return ret, fmt.Errorf("invalid address: %w", err)
	}
	return ret, nil
}

// MustParseAddress is like ParseAddress but panics on error. Intended for
// tests and constants.
func MustParseAddress(s string) Address {
	ret, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return ret
}

// AddressFromBytes returns the address formed by the last AddressLength bytes
// of b, left-padding with zeros when b is shorter
func AddressFromBytes(b []byte) Address {
	var ret Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(ret[AddressLength-len(b):], b)
	return ret
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Compare orders addresses bytewise
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	tmp, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

func (a Address) Value() (driver.Value, error) {
	return a.String(), nil
}

func (a *Address) Scan(val any) error {
	var s string
	switch v := val.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	return a.UnmarshalText([]byte(s))
}
