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

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreum-labs/wsim/types"
)

func TestChainStoreSnapshotRevert(t *testing.T) {
	s0 := New()
	s0 = s0.PutCode(types.CodeInfo{CodeID: 1, WasmCode: []byte("x")})
	s0.LastCodeID = 1

	snapshot := s0

	s1 := snapshot.PutCode(types.CodeInfo{CodeID: 2, WasmCode: []byte("y")})
	s1.LastCodeID = 2
	s1 = s1.PutContract("addr1", types.ContractInfo{CodeID: 2})

	_, ok := s1.GetCode(2)
	require.True(t, ok)

	// Reverting is just going back to the snapshot value.
	reverted := snapshot
	_, ok = reverted.GetCode(2)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), reverted.LastCodeID)
	_, ok = reverted.GetContract("addr1")
	assert.False(t, ok)

	// s1 itself is untouched by what "reverted" does next.
	reverted = reverted.PutCode(types.CodeInfo{CodeID: 99})
	_, ok = s1.GetCode(99)
	assert.False(t, ok)
}

func TestChainStoreStorageRoundTrip(t *testing.T) {
	s := New()
	addr := types.Address("wasm1abc")

	cs := s.GetStorage(addr)
	assert.Equal(t, 0, cs.Len())

	cs = cs.Set("k", "v")
	s = s.SetStorage(addr, cs)

	got := s.GetStorage(addr)
	v, ok := got.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	s2 := s.DeleteStorage(addr)
	assert.Equal(t, 0, s2.GetStorage(addr).Len())
	// s is untouched.
	assert.Equal(t, 1, s.GetStorage(addr).Len())
}
