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

// Package vmhost implements C3, the VM Host / Backend (spec.md §4.3):
// it constructs and caches one VM per contract address and wires
// storage, the backend API and the querier into it. The bytecode VM
// itself is out of scope (spec.md §1) and is consumed here purely
// through the VM/Factory interfaces, the same separation go-core draws
// between core/vm.CVM (the engine driving execution) and the
// StateDB/CallContext interfaces it is handed (core/vm/interface.go).
package vmhost

import (
	"github.com/coreum-labs/wsim/store"
	"github.com/coreum-labs/wsim/types"
)

// VM is the per-contract object the engine drives through the four
// entry points (spec.md §6, consumed interface).
type VM interface {
	Instantiate(env types.Env, info types.MessageInfo, msg []byte) (*types.ContractResponse, error)
	Execute(env types.Env, info types.MessageInfo, msg []byte) (*types.ContractResponse, error)
	Reply(env types.Env, reply types.ReplyMsg) (*types.ContractResponse, error)
	Query(env types.Env, msg []byte) ([]byte, error)

	ResetDebugInfo()
	Logs() []types.DebugLog

	// Storage gives the host read/write access to the VM's working
	// copy of contract storage, which the orchestrator seeds before
	// and reads back after every call (spec.md §4.3).
	Storage() *store.ContractStorage
}

// BackendAPI exposes the address-space facts the VM needs but the
// engine owns (spec.md §6 "backend_api(bech32_prefix)").
type BackendAPI struct {
	Bech32Prefix string
}

// Querier is the opaque, chain-supplied query backend (spec.md §6,
// consumed interface; implementation detail of the bank/staking/custom
// query modules, none of which this engine implements).
type Querier interface {
	Query(request []byte) ([]byte, error)
}

// Backend is the bundle handed to a fresh VM at construction time
// (spec.md §4.3 step 3).
type Backend struct {
	API     BackendAPI
	Storage store.ContractStorage
	Querier Querier
}

// Factory constructs a VM given its code and a fresh Backend. It is the
// seam where a real sandboxed bytecode VM (loader, linker, gas metering,
// host-function bindings — all out of scope here) would be plugged in.
type Factory interface {
	Build(code types.CodeInfo, backend Backend) (VM, error)
}
