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

package vmhost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreum-labs/wsim/internal/simvm"
	"github.com/coreum-labs/wsim/store"
	"github.com/coreum-labs/wsim/types"
	"github.com/coreum-labs/wsim/vmhost"
)

func TestHostGetMissingContract(t *testing.T) {
	reg := simvm.NewRegistry()
	h := vmhost.New(simvm.NewFactory(reg), "cosmwasm")

	_, err := h.Get(store.New(), types.Address("nope"), nil)
	assert.ErrorIs(t, err, types.ErrContractNotFound)
}

func TestHostGetReseedsStorageOnEveryCall(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("echo", simvm.Contract{})
	h := vmhost.New(simvm.NewFactory(reg), "cosmwasm")

	addr := types.Address("wasm1xyz")
	s := store.New()
	s = s.PutCode(types.CodeInfo{CodeID: 1, WasmCode: simvm.Code("echo")})
	s = s.PutContract(addr, types.ContractInfo{CodeID: 1})
	s = s.SetStorage(addr, store.ContractStorage{}.Set("k", "v1"))

	vm, err := h.Get(s, addr, nil)
	require.NoError(t, err)
	val, ok := vm.Storage().Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", val)

	s = s.SetStorage(addr, store.ContractStorage{}.Set("k", "v2"))
	vm2, err := h.Get(s, addr, nil)
	require.NoError(t, err)
	val, ok = vm2.Storage().Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", val)
}
