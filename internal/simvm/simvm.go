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

// Package simvm is a scripted stand-in for the bytecode VM the
// specification places out of scope (spec.md §1): contracts are plain
// Go funcs registered under a name, and "wasm code" is just that name's
// bytes. It plays the role core/vm/runtime/env.go plays for go-core —
// a configurable execution environment built purely for exercising the
// surrounding engine without a real interpreter/JIT underneath — and
// is what both the engine's tests and cmd/wasmsim drive against.
package simvm

import (
	"fmt"
	"sync"

	"github.com/coreum-labs/wsim/store"
	"github.com/coreum-labs/wsim/types"
	"github.com/coreum-labs/wsim/vmhost"
)

// Contract is a scripted contract's behavior. Any handler left nil
// fails with an error when invoked, the same way an absent wasm export
// would fail to link.
type Contract struct {
	Instantiate func(c *Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error)
	Execute     func(c *Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error)
	Reply       func(c *Ctx, reply types.ReplyMsg) (*types.ContractResponse, error)
	Query       func(c *Ctx, msg []byte) ([]byte, error)
}

// Ctx is the handler-facing view of a single call: the VM environment,
// direct access to this contract's working storage, and the chain's
// querier (nil when the chain has none configured).
type Ctx struct {
	Env     types.Env
	Storage *store.ContractStorage
	Querier vmhost.Querier
	vm      *vm
}

// Log appends a debug line to the call's trace (spec.md §6 "logs").
func (c *Ctx) Log(format string, args ...interface{}) {
	c.vm.logs = append(c.vm.logs, types.DebugLog{Message: fmt.Sprintf(format, args...)})
}

// Registry is a name -> Contract lookup table, shared by every Host
// that builds VMs through a Factory wrapping it. Code bytes uploaded
// via Chain.Create are the registered name, verbatim.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[string]Contract)}
}

// Register adds a scripted contract under name. Re-registering a name
// replaces it.
func (r *Registry) Register(name string, c Contract) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[name] = c
}

// Code returns the "wasm code" bytes to upload via Chain.Create for a
// registered contract: its name, verbatim.
func Code(name string) []byte { return []byte(name) }

func (r *Registry) lookup(name string) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[name]
	return c, ok
}

// Factory adapts a Registry into a vmhost.Factory.
type Factory struct {
	Registry *Registry
}

// NewFactory wraps registry as a vmhost.Factory.
func NewFactory(registry *Registry) Factory {
	return Factory{Registry: registry}
}

func (f Factory) Build(code types.CodeInfo, backend vmhost.Backend) (vmhost.VM, error) {
	name := string(code.WasmCode)
	contract, ok := f.Registry.lookup(name)
	if !ok {
		return nil, fmt.Errorf("simvm: no contract registered under %q", name)
	}
	storage := backend.Storage
	return &vm{contract: contract, storage: &storage, querier: backend.Querier}, nil
}

type vm struct {
	contract Contract
	storage  *store.ContractStorage
	querier  vmhost.Querier
	logs     []types.DebugLog
}

func (v *vm) Storage() *store.ContractStorage { return v.storage }

func (v *vm) ResetDebugInfo() { v.logs = nil }

func (v *vm) Logs() []types.DebugLog { return v.logs }

func (v *vm) Instantiate(env types.Env, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
	if v.contract.Instantiate == nil {
		return nil, fmt.Errorf("simvm: contract has no instantiate handler")
	}
	return v.contract.Instantiate(v.ctx(env), info, msg)
}

func (v *vm) Execute(env types.Env, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
	if v.contract.Execute == nil {
		return nil, fmt.Errorf("simvm: contract has no execute handler")
	}
	return v.contract.Execute(v.ctx(env), info, msg)
}

func (v *vm) Reply(env types.Env, reply types.ReplyMsg) (*types.ContractResponse, error) {
	if v.contract.Reply == nil {
		return nil, fmt.Errorf("simvm: contract has no reply handler")
	}
	return v.contract.Reply(v.ctx(env), reply)
}

func (v *vm) Query(env types.Env, msg []byte) ([]byte, error) {
	if v.contract.Query == nil {
		return nil, fmt.Errorf("simvm: contract has no query handler")
	}
	return v.contract.Query(v.ctx(env), msg)
}

func (v *vm) ctx(env types.Env) *Ctx {
	return &Ctx{Env: env, Storage: v.storage, Querier: v.querier, vm: v}
}
