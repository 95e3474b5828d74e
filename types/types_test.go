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

package types_test

import (
	"testing"
	"time"

	"github.com/PedroGalveias/OwkenERC20/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "with prefix", input: "0x00000000000000000000000000000000000000aa"},
		{name: "without prefix", input: "00000000000000000000000000000000000000aa"},
		{name: "too short", input: "0xabcd", wantErr: true},
		{name: "not hex", input: "0xzz000000000000000000000000000000000000aa", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := types.ParseAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "0x00000000000000000000000000000000000000aa", addr.String())
			assert.False(t, addr.IsZero())
		})
	}
}

func TestAddressFromBytes(t *testing.T) {
	addr := types.AddressFromBytes([]byte{0x01, 0x02})
	assert.Equal(t, "0x0000000000000000000000000000000000000102", addr.String())
	assert.True(t, types.AddressFromBytes(nil).IsZero())
}

func TestAddressScan(t *testing.T) {
	want := types.MustParseAddress("0x1111111111111111111111111111111111111111")
	val, err := want.Value()
	require.NoError(t, err)
	var got types.Address
	require.NoError(t, got.Scan(val))
	assert.Equal(t, want, got)
	require.Error(t, got.Scan(42))
}

func TestAmountArithmetic(t *testing.T) {
	a := types.NewAmount(1000)
	b := types.NewAmount(3)
	assert.Equal(t, "1003", a.Add(b).String())
	assert.Equal(t, "997", a.Sub(b).String())
	assert.Equal(t, "3000", a.MulUint64(3).String())
	assert.Equal(t, "333", a.DivUint64(3).String())
	assert.True(t, a.DivUint64(0).IsZero())
	assert.Equal(t, b, types.MinAmount(a, b))
	// Operations must not alias their inputs
	assert.Equal(t, "1000", a.String())
}

func TestAmountZeroValue(t *testing.T) {
	var a types.Amount
	assert.True(t, a.IsZero())
	assert.Equal(t, 0, a.Sign())
	assert.Equal(t, "0", a.String())
	assert.True(t, a.Equal(types.NewAmount(0)))
}

func TestAmountLargeValues(t *testing.T) {
	// 10M tokens with 18 decimals does not fit in a uint64
	supply := types.MustParseAmount("10000000000000000000000000")
	half := supply.DivUint64(2)
	assert.Equal(t, "5000000000000000000000000", half.String())
	assert.Equal(t, 0, half.Add(half).Cmp(supply))
}

func TestAmountScan(t *testing.T) {
	want := types.MustParseAmount("123456789012345678901234567890")
	val, err := want.Value()
	require.NoError(t, err)
	var got types.Amount
	require.NoError(t, got.Scan(val))
	assert.True(t, want.Equal(got))
	require.Error(t, got.Scan("abc"))
	_, err = types.ParseAmount("1.5")
	require.Error(t, err)
}

func TestValidTime(t *testing.T) {
	assert.True(t, types.ValidTime(types.MinTime))
	assert.True(t, types.ValidTime(types.MaxTime))
	assert.True(t, types.ValidTime(time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, types.ValidTime(types.MinTime.Add(-time.Second)))
	assert.False(t, types.ValidTime(types.MaxTime.Add(time.Second)))
	assert.False(t, types.ValidTime(time.Time{}))
}

func TestCeilSecond(t *testing.T) {
	whole := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, whole, types.CeilSecond(whole))
	assert.Equal(
		t,
		whole.Add(time.Second),
		types.CeilSecond(whole.Add(time.Millisecond)),
	)
}
