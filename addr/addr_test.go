// Copyright 2020 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

package addr

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedHash reimplements the construction independently of Derive to
// guard against both sides drifting together.
func expectedHash(codeID, instanceID uint64) [20]byte {
	var be [16]byte
	binary.BigEndian.PutUint64(be[0:8], codeID)
	binary.BigEndian.PutUint64(be[8:16], instanceID)

	th := sha256.Sum256([]byte("module"))
	h := sha256.New()
	h.Write(th[:])
	h.Write([]byte("wasm\x00"))
	h.Write(be[:])

	var out [20]byte
	copy(out[:], h.Sum(nil)[:20])
	return out
}

func TestDeriveMatchesConstruction(t *testing.T) {
	got := Derive(1, 1)
	assert.Equal(t, expectedHash(1, 1), got)
}

func TestDeriveIsDeterministic(t *testing.T) {
	a := Derive(7, 42)
	b := Derive(7, 42)
	assert.Equal(t, a, b)
}

func TestDeriveDistinguishesCodeAndInstance(t *testing.T) {
	assert.NotEqual(t, Derive(1, 2), Derive(2, 1))
}

func TestEncodeRoundTripsThroughBech32(t *testing.T) {
	hash := expectedHash(1, 1)
	addr, err := Encode("cosmwasm", hash)
	require.NoError(t, err)

	hrp, data, err := bech32.Decode(string(addr))
	require.NoError(t, err)
	assert.Equal(t, "cosmwasm", hrp)

	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	require.NoError(t, err)
	assert.Equal(t, hash[:], decoded)
}

func TestDeriveAndEncodeScenario1(t *testing.T) {
	addr, err := DeriveAndEncode("cosmwasm", 1, 1)
	require.NoError(t, err)

	hrp, data, err := bech32.Decode(string(addr))
	require.NoError(t, err)
	assert.Equal(t, "cosmwasm", hrp)

	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	require.NoError(t, err)
	assert.Equal(t, expectedHash(1, 1)[:], decoded)
}
