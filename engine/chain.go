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

// Package engine implements C4 the Execution Orchestrator and C5 the
// Submessage State Machine (spec.md §4.4, §4.5): it drives
// instantiate/execute/reply/query through vmhost, rewrites VM results
// into AppResponses with synthesized events, and recursively re-enters
// itself to dispatch submessages. It plays the role
// core/state_transition.go's StateTransition and core/vm.CVM's
// Call/Create play together for the CVM, generalized from a single
// linear gas-metered call stack to CosmWasm's reply-on submessage tree.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coreum-labs/wsim/internal/metrics"
	"github.com/coreum-labs/wsim/internal/wlog"
	"github.com/coreum-labs/wsim/registry"
	"github.com/coreum-labs/wsim/store"
	"github.com/coreum-labs/wsim/trace"
	"github.com/coreum-labs/wsim/types"
	"github.com/coreum-labs/wsim/vmhost"
)

var log = wlog.New("pkg", "engine")

var (
	metricSubmsgDispatched = metrics.NewRegisteredCounter("wsim/engine/submsg_dispatched")
	metricRepliesInvoked   = metrics.NewRegisteredCounter("wsim/engine/replies_invoked")
	metricSnapshotReverts  = metrics.NewRegisteredCounter("wsim/engine/snapshot_reverts")
)

// Router is the interface the submessage state machine dispatches
// through (spec.md §6, consumed). Chain satisfies it via HandleMsg.
type Router interface {
	HandleMsg(sender types.Address, msg types.CosmosMsg, tr *trace.List) (types.AppResponse, error)
}

// OtherMsgHandler lets a host wire in non-wasm CosmosMsg variants (bank,
// staking, ...), all of which are out of scope for this engine
// (spec.md §1) but the router abstraction must still support them
// (spec.md §6).
type OtherMsgHandler func(sender types.Address, msg types.CosmosMsg, tr *trace.List) (types.AppResponse, error)

// Chain is the public engine surface of spec.md §6: a single-process
// value store with a host-supplied height/time, driven one top-level
// message at a time (spec.md §5).
type Chain struct {
	Store   store.ChainStore
	Hrp     string
	Block   types.BlockInfo
	Host    *vmhost.Host
	Querier vmhost.Querier

	OtherMsgHandler OtherMsgHandler
}

// New builds an empty Chain.
func New(host *vmhost.Host, hrp string, block types.BlockInfo) *Chain {
	return &Chain{
		Store: store.New(),
		Hrp:   hrp,
		Block: block,
		Host:  host,
	}
}

func (c *Chain) env(addr types.Address, gasLimit *uint64) types.Env {
	return types.Env{
		Block:    c.Block,
		Contract: types.ContractEnvInfo{Address: addr},
		GasLimit: gasLimit,
	}
}

// Create uploads wasmCode under creator and returns its code id
// (spec.md §4.1 create).
func (c *Chain) Create(creator types.Address, wasmCode []byte) uint64 {
	s, codeID := registry.Create(c.Store, creator, wasmCode)
	c.Store = s
	return codeID
}

// InstantiateContract implements spec.md §4.4 instantiateContract.
func (c *Chain) InstantiateContract(sender types.Address, funds []types.Coin, codeID uint64, msg []byte, tr *trace.List) (types.AppResponse, error) {
	return c.instantiateContract(sender, funds, codeID, msg, tr, nil)
}

func (c *Chain) instantiateContract(sender types.Address, funds []types.Coin, codeID uint64, msg []byte, tr *trace.List, gasLimit *uint64) (types.AppResponse, error) {
	snapshot := c.Store

	s, addr, err := registry.RegisterInstance(c.Store, c.Hrp, sender, codeID, c.Block.Height)
	if err != nil {
		// Address derivation failing is a structural condition, not a
		// VM-reported one (spec.md §7): it cannot be caused by
		// contract input and must never be swallowed by reply_on.
		panic(fmt.Errorf("wsim/engine: derive contract address: %w", err))
	}
	c.Store = s

	vm, err := c.Host.Get(c.Store, addr, c.Querier)
	if err != nil {
		panic(fmt.Errorf("wsim/engine: build vm for freshly registered contract: %w", err))
	}

	env := c.env(addr, gasLimit)
	info := types.MessageInfo{Sender: sender, Funds: funds}
	resp, vmErr := vm.Instantiate(env, info, msg)
	logs := vm.Logs()
	c.Store = c.Store.SetStorage(addr, *vm.Storage())

	if vmErr != nil {
		metricSnapshotReverts.Inc(1)
		c.Store = snapshot
		log.Debug("instantiate reverted", "code_id", codeID, "err", vmErr)
		tr.Append(trace.Node{
			Kind:            trace.KindInstantiate,
			ContractAddress: addr,
			Msg:             msg,
			Env:             env,
			Info:            &info,
			Logs:            logs,
			StoreSnapshot:   c.Store,
			Result:          trace.Result{Err: vmErr.Error()},
		})
		return types.AppResponse{}, errors.New(vmErr.Error())
	}

	custom := types.NewEvent("instantiate", "_contract_address", string(addr), "code_id", fmt.Sprint(codeID))
	app := buildAppResponse(custom, *resp, addr)

	sub := &trace.List{}
	if err := c.handleContractResponse(addr, resp.Messages, &app, sub); err != nil {
		c.Store = snapshot
		tr.Append(trace.Node{
			Kind:            trace.KindInstantiate,
			ContractAddress: addr,
			Msg:             msg,
			Env:             env,
			Info:            &info,
			Response:        resp,
			Logs:            logs,
			StoreSnapshot:   c.Store,
			Result:          trace.Result{Err: err.Error()},
			Sub:             sub.Nodes,
		})
		return types.AppResponse{}, err
	}

	tr.Append(trace.Node{
		Kind:            trace.KindInstantiate,
		ContractAddress: addr,
		Msg:             msg,
		Env:             env,
		Info:            &info,
		Response:        resp,
		Logs:            logs,
		StoreSnapshot:   c.Store,
		Result:          trace.Result{Ok: &app},
		Sub:             sub.Nodes,
	})
	return app, nil
}

// ExecuteContract implements spec.md §4.4 executeContract.
func (c *Chain) ExecuteContract(sender types.Address, funds []types.Coin, addr types.Address, msg []byte, tr *trace.List) (types.AppResponse, error) {
	return c.executeContract(sender, funds, addr, msg, tr, nil)
}

func (c *Chain) executeContract(sender types.Address, funds []types.Coin, addr types.Address, msg []byte, tr *trace.List, gasLimit *uint64) (types.AppResponse, error) {
	snapshot := c.Store

	vm, err := c.Host.Get(c.Store, addr, c.Querier)
	if err != nil {
		panic(fmt.Errorf("wsim/engine: %w", err))
	}

	env := c.env(addr, gasLimit)
	info := types.MessageInfo{Sender: sender, Funds: funds}
	resp, vmErr := vm.Execute(env, info, msg)
	logs := vm.Logs()
	c.Store = c.Store.SetStorage(addr, *vm.Storage())

	if vmErr != nil {
		metricSnapshotReverts.Inc(1)
		c.Store = snapshot
		log.Debug("execute reverted", "addr", addr, "err", vmErr)
		tr.Append(trace.Node{
			Kind:            trace.KindExecute,
			ContractAddress: addr,
			Msg:             msg,
			Env:             env,
			Info:            &info,
			Logs:            logs,
			StoreSnapshot:   c.Store,
			Result:          trace.Result{Err: vmErr.Error()},
		})
		return types.AppResponse{}, errors.New(vmErr.Error())
	}

	custom := types.NewEvent("execute", "_contract_addr", string(addr))
	app := buildAppResponse(custom, *resp, addr)

	sub := &trace.List{}
	if err := c.handleContractResponse(addr, resp.Messages, &app, sub); err != nil {
		c.Store = snapshot
		tr.Append(trace.Node{
			Kind:            trace.KindExecute,
			ContractAddress: addr,
			Msg:             msg,
			Env:             env,
			Info:            &info,
			Response:        resp,
			Logs:            logs,
			StoreSnapshot:   c.Store,
			Result:          trace.Result{Err: err.Error()},
			Sub:             sub.Nodes,
		})
		return types.AppResponse{}, err
	}

	tr.Append(trace.Node{
		Kind:            trace.KindExecute,
		ContractAddress: addr,
		Msg:             msg,
		Env:             env,
		Info:            &info,
		Response:        resp,
		Logs:            logs,
		StoreSnapshot:   c.Store,
		Result:          trace.Result{Ok: &app},
		Sub:             sub.Nodes,
	})
	return app, nil
}

// Reply implements spec.md §4.4 reply. It is invoked by the submessage
// state machine (C5), never directly by a host.
func (c *Chain) Reply(addr types.Address, replyMsg types.ReplyMsg, tr *trace.List) (types.AppResponse, error) {
	metricRepliesInvoked.Inc(1)
	snapshot := c.Store

	vm, err := c.Host.Get(c.Store, addr, c.Querier)
	if err != nil {
		panic(fmt.Errorf("wsim/engine: %w", err))
	}

	env := c.env(addr, nil)
	resp, vmErr := vm.Reply(env, replyMsg)
	logs := vm.Logs()
	c.Store = c.Store.SetStorage(addr, *vm.Storage())

	if vmErr != nil {
		metricSnapshotReverts.Inc(1)
		c.Store = snapshot
		log.Debug("reply reverted", "addr", addr, "err", vmErr)
		tr.Append(trace.Node{
			Kind:            trace.KindReply,
			ContractAddress: addr,
			Env:             env,
			Logs:            logs,
			StoreSnapshot:   c.Store,
			Result:          trace.Result{Err: vmErr.Error()},
		})
		return types.AppResponse{}, errors.New(vmErr.Error())
	}

	mode := "handle_success"
	if !replyMsg.Result.IsOk() {
		mode = "handle_failure"
	}
	custom := types.NewEvent("reply", "_contract_addr", string(addr), "mode", mode)
	app := buildAppResponse(custom, *resp, addr)

	sub := &trace.List{}
	if err := c.handleContractResponse(addr, resp.Messages, &app, sub); err != nil {
		c.Store = snapshot
		tr.Append(trace.Node{
			Kind:            trace.KindReply,
			ContractAddress: addr,
			Env:             env,
			Response:        resp,
			Logs:            logs,
			StoreSnapshot:   c.Store,
			Result:          trace.Result{Err: err.Error()},
			Sub:             sub.Nodes,
		})
		return types.AppResponse{}, err
	}

	tr.Append(trace.Node{
		Kind:            trace.KindReply,
		ContractAddress: addr,
		Env:             env,
		Response:        resp,
		Logs:            logs,
		StoreSnapshot:   c.Store,
		Result:          trace.Result{Ok: &app},
		Sub:             sub.Nodes,
	})
	return app, nil
}

// Query implements spec.md §4.4 query: stateless, no snapshot taken, no
// storage written back, no events or submessages.
func (c *Chain) Query(addr types.Address, msg []byte) ([]byte, error) {
	vm, err := c.Host.Get(c.Store, addr, c.Querier)
	if err != nil {
		panic(fmt.Errorf("wsim/engine: %w", err))
	}
	data, vmErr := vm.Query(c.env(addr, nil), msg)
	if vmErr != nil {
		return nil, errors.New(vmErr.Error())
	}
	return data, nil
}

// HandleMsg is the router entry point for submessages (spec.md §6): it
// branches the wasm variant into execute/instantiate and defers any
// other CosmosMsg variant to OtherMsgHandler, panicking if none is
// registered (unknown variants fail loudly, spec.md §9).
func (c *Chain) HandleMsg(sender types.Address, msg types.CosmosMsg, tr *trace.List) (types.AppResponse, error) {
	return c.dispatch(sender, msg, tr, nil)
}

// dispatch is HandleMsg's internal counterpart, used by the submessage
// state machine (engine/submsg.go) to thread a SubMsg's GasLimit hint
// down to the VM call it ultimately causes, without widening HandleMsg's
// spec-fixed signature (spec.md §6).
func (c *Chain) dispatch(sender types.Address, msg types.CosmosMsg, tr *trace.List, gasLimit *uint64) (types.AppResponse, error) {
	switch m := msg.(type) {
	case types.WasmMsg:
		switch {
		case m.Execute != nil:
			return c.executeContract(sender, m.Execute.Funds, m.Execute.ContractAddr, m.Execute.Msg, tr, gasLimit)
		case m.Instantiate != nil:
			return c.instantiateContract(sender, m.Instantiate.Funds, m.Instantiate.CodeID, m.Instantiate.Msg, tr, gasLimit)
		default:
			panic(types.ErrUnknownMessageVariant)
		}
	default:
		if c.OtherMsgHandler != nil {
			return c.OtherMsgHandler(sender, msg, tr)
		}
		panic(types.ErrUnknownMessageVariant)
	}
}

// HandleQuery implements spec.md §6 handleQuery.
func (c *Chain) HandleQuery(q types.WasmQuery) ([]byte, error) {
	switch {
	case q.Smart != nil:
		return c.Query(q.Smart.ContractAddr, q.Smart.Msg)
	case q.Raw != nil:
		if _, ok := c.Store.GetContract(q.Raw.ContractAddr); !ok {
			return nil, fmt.Errorf("Contract %s not found", q.Raw.ContractAddr)
		}
		cs := c.Store.GetStorage(q.Raw.ContractAddr)
		val, ok := cs.Get(q.Raw.Key)
		if !ok {
			return nil, fmt.Errorf("Key %s not found", q.Raw.Key)
		}
		return []byte(val), nil
	case q.ContractInfo != nil:
		info, ok := c.Store.GetContract(q.ContractInfo.ContractAddr)
		if !ok {
			return nil, fmt.Errorf("Contract %s not found", q.ContractInfo.ContractAddr)
		}
		return encodeContractInfo(info)
	default:
		panic(types.ErrUnknownQueryVariant)
	}
}

// buildAppResponse implements spec.md §4.4's event assembly: the custom
// event, then (if present) a wasm attribute-aggregation event, then one
// wasm-<type> event per contract-emitted event, all carrying
// _contract_addr as their first attribute.
func buildAppResponse(custom types.Event, r types.ContractResponse, addr types.Address) types.AppResponse {
	events := []types.Event{custom}
	if len(r.Attributes) > 0 {
		attrs := append([]types.Attribute{{Key: "_contract_addr", Value: string(addr)}}, r.Attributes...)
		events = append(events, types.Event{Type: "wasm", Attributes: attrs})
	}
	for _, e := range r.Events {
		attrs := append([]types.Attribute{{Key: "_contract_addr", Value: string(addr)}}, e.Attributes...)
		events = append(events, types.Event{Type: "wasm-" + e.Type, Attributes: attrs})
	}
	return types.AppResponse{Events: events, Data: r.Data}
}

func encodeContractInfo(info types.ContractInfo) ([]byte, error) {
	return json.Marshal(types.ContractInfoResponse{
		CodeID:  info.CodeID,
		Creator: info.Creator,
		Admin:   info.Admin,
		Pinned:  true,
	})
}
