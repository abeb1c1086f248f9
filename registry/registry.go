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

// Package registry implements the engine's C1 Code & Instance Registry
// (spec.md §4.1): code-id assignment and deterministic contract address
// derivation. It is pure state, operating on an immutable store.ChainStore
// value and returning the next one, the same leaf role go-core's
// StateDB.CreateAccount plays beneath the CVM.
package registry

import (
	"github.com/coreum-labs/wsim/addr"
	"github.com/coreum-labs/wsim/store"
	"github.com/coreum-labs/wsim/types"
)

// Create assigns the next code id to wasmCode, strictly monotonic from 1.
func Create(s store.ChainStore, creator types.Address, wasmCode []byte) (store.ChainStore, uint64) {
	codeID := s.LastCodeID + 1
	s = s.PutCode(types.CodeInfo{
		CodeID:   codeID,
		Creator:  creator,
		WasmCode: wasmCode,
	})
	s.LastCodeID = codeID
	return s, codeID
}

// RegisterInstance derives a fresh contract address for codeID, writes
// its ContractInfo and an empty storage map, and bumps the instance
// counter. Per spec.md §4.1 there is no failure mode at this stage
// beyond a structural one (missing code would be a caller bug, not a
// runtime condition this function guards against — instantiateContract
// checks the VM side of that).
func RegisterInstance(s store.ChainStore, hrp string, sender types.Address, codeID uint64, height uint64) (store.ChainStore, types.Address, error) {
	instanceID := s.LastInstanceID + 1
	address, err := addr.DeriveAndEncode(hrp, codeID, instanceID)
	if err != nil {
		return s, "", err
	}

	s = s.PutContract(address, types.ContractInfo{
		CodeID:  codeID,
		Creator: sender,
		Admin:   nil,
		Label:   "",
		Created: height,
	})
	s = s.SetStorage(address, store.ContractStorage{})
	s.LastInstanceID = instanceID
	return s, address, nil
}
