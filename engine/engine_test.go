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

package engine_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreum-labs/wsim/engine"
	"github.com/coreum-labs/wsim/internal/simvm"
	"github.com/coreum-labs/wsim/trace"
	"github.com/coreum-labs/wsim/types"
	"github.com/coreum-labs/wsim/vmhost"
)

// logTraceOnFailure dumps tr's call tree with go-spew when t ends up
// failed, so a broken reply_on assertion shows the whole nested
// instantiate/execute/reply/sub structure instead of just the top-level
// diff.
func logTraceOnFailure(t *testing.T, tr *trace.List) {
	t.Helper()
	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("trace tree:\n%s", spew.Sdump(tr.Nodes))
		}
	})
}

func newChain(registry *simvm.Registry) *engine.Chain {
	host := vmhost.New(simvm.NewFactory(registry), "cosmwasm")
	return engine.New(host, "cosmwasm", types.BlockInfo{Height: 1, ChainID: "test"})
}

func noopInstantiate(*simvm.Ctx, types.MessageInfo, []byte) (*types.ContractResponse, error) {
	return &types.ContractResponse{}, nil
}

// Scenario 2: instantiate failure rollback.
func TestInstantiateFailureRollback(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("boom", simvm.Contract{
		Instantiate: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return nil, errors.New("boom")
		},
	})
	chain := newChain(reg)
	codeID := chain.Create("creator", simvm.Code("boom"))
	before := chain.Store

	_, err := chain.InstantiateContract("sender", nil, codeID, []byte("{}"), nil)
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	assert.Equal(t, uint64(0), chain.Store.LastInstanceID)
	assert.Equal(t, before, chain.Store)
}

// Scenario 3: two sibling submessages, the second fails -> full revert of
// both siblings' store effects.
func TestTwoSiblingSubmessagesSecondFails(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("child", simvm.Contract{
		Instantiate: noopInstantiate,
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			if string(msg) == "fail" {
				return nil, errors.New("boom2")
			}
			*c.Storage = c.Storage.Set("a", "1")
			return &types.ContractResponse{}, nil
		},
	})
	chain := newChain(reg)
	childCodeID := chain.Create("creator", simvm.Code("child"))
	childApp, err := chain.InstantiateContract("creator", nil, childCodeID, []byte("{}"), nil)
	require.NoError(t, err)
	childAddr := contractAddrFromEvent(t, childApp)

	reg.Register("parent", simvm.Contract{
		Instantiate: noopInstantiate,
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return &types.ContractResponse{Messages: []types.SubMsg{
				{ID: 1, ReplyOn: types.ReplyNever, Msg: types.WasmMsg{Execute: &types.WasmExecuteMsg{
					ContractAddr: childAddr, Msg: []byte("ok"),
				}}},
				{ID: 2, ReplyOn: types.ReplyNever, Msg: types.WasmMsg{Execute: &types.WasmExecuteMsg{
					ContractAddr: childAddr, Msg: []byte("fail"),
				}}},
			}}, nil
		},
	})
	parentCodeID := chain.Create("creator", simvm.Code("parent"))
	parentApp, err := chain.InstantiateContract("creator", nil, parentCodeID, []byte("{}"), nil)
	require.NoError(t, err)
	parentAddr := contractAddrFromEvent(t, parentApp)

	_, err = chain.ExecuteContract("sender", nil, parentAddr, []byte("go"), nil)
	require.Error(t, err)
	assert.Equal(t, "boom2", err.Error())

	_, ok := chain.Store.GetStorage(childAddr).Get("a")
	assert.False(t, ok, "first sibling's write must be reverted alongside the second sibling's failure")
}

// Scenario 4: reply_on = Always catches a submessage failure.
func TestReplyOnAlwaysCatchesFailure(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("child2", simvm.Contract{
		Instantiate: noopInstantiate,
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return nil, errors.New("x")
		},
	})
	chain := newChain(reg)
	childCodeID := chain.Create("creator", simvm.Code("child2"))
	childApp, err := chain.InstantiateContract("creator", nil, childCodeID, []byte("{}"), nil)
	require.NoError(t, err)
	childAddr := contractAddrFromEvent(t, childApp)

	reg.Register("parent2", simvm.Contract{
		Instantiate: noopInstantiate,
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return &types.ContractResponse{Messages: []types.SubMsg{
				{ID: 7, ReplyOn: types.ReplyAlways, Msg: types.WasmMsg{Execute: &types.WasmExecuteMsg{
					ContractAddr: childAddr, Msg: []byte("go"),
				}}},
			}}, nil
		},
		Reply: func(c *simvm.Ctx, reply types.ReplyMsg) (*types.ContractResponse, error) {
			require.False(t, reply.Result.IsOk())
			assert.Equal(t, "x", reply.Result.Err)
			return &types.ContractResponse{
				Events: []types.Event{{Type: "E1"}},
				Data:   []byte("d"),
			}, nil
		},
	})
	parentCodeID := chain.Create("creator", simvm.Code("parent2"))
	parentApp, err := chain.InstantiateContract("creator", nil, parentCodeID, []byte("{}"), nil)
	require.NoError(t, err)
	parentAddr := contractAddrFromEvent(t, parentApp)

	app, err := chain.ExecuteContract("sender", nil, parentAddr, []byte("go"), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("d"), app.Data)

	require.Len(t, app.Events, 3)
	assert.Equal(t, "execute", app.Events[0].Type)
	assert.Equal(t, "reply", app.Events[1].Type)
	assert.Equal(t, "wasm-E1", app.Events[2].Type)
}

// Scenario 5: event assembly ordering.
func TestEventAssemblyOrdering(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("emitter", simvm.Contract{
		Instantiate: noopInstantiate,
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return &types.ContractResponse{
				Attributes: []types.Attribute{{Key: "k", Value: "v"}},
				Events:     []types.Event{{Type: "t", Attributes: []types.Attribute{{Key: "a", Value: "b"}}}},
			}, nil
		},
	})
	chain := newChain(reg)
	codeID := chain.Create("creator", simvm.Code("emitter"))
	instApp, err := chain.InstantiateContract("creator", nil, codeID, []byte("{}"), nil)
	require.NoError(t, err)
	addr := contractAddrFromEvent(t, instApp)

	app, err := chain.ExecuteContract("sender", nil, addr, []byte("go"), nil)
	require.NoError(t, err)

	require.Len(t, app.Events, 3)
	assert.Equal(t, types.Event{Type: "execute", Attributes: []types.Attribute{{Key: "_contract_addr", Value: string(addr)}}}, app.Events[0])
	assert.Equal(t, types.Event{Type: "wasm", Attributes: []types.Attribute{
		{Key: "_contract_addr", Value: string(addr)}, {Key: "k", Value: "v"},
	}}, app.Events[1])
	assert.Equal(t, types.Event{Type: "wasm-t", Attributes: []types.Attribute{
		{Key: "_contract_addr", Value: string(addr)}, {Key: "a", Value: "b"},
	}}, app.Events[2])
}

// Scenario 6: raw query missing key.
func TestHandleQueryRawMissingKey(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("plain", simvm.Contract{Instantiate: noopInstantiate})
	chain := newChain(reg)
	codeID := chain.Create("creator", simvm.Code("plain"))
	instApp, err := chain.InstantiateContract("creator", nil, codeID, []byte("{}"), nil)
	require.NoError(t, err)
	addr := contractAddrFromEvent(t, instApp)

	_, err = chain.HandleQuery(types.WasmQuery{Raw: &types.RawQuery{ContractAddr: addr, Key: "nope"}})
	require.Error(t, err)
	assert.Equal(t, "Key nope not found", err.Error())
}

func TestHandleQueryRawMissingContract(t *testing.T) {
	chain := newChain(simvm.NewRegistry())
	_, err := chain.HandleQuery(types.WasmQuery{Raw: &types.RawQuery{ContractAddr: "wasm1nope", Key: "k"}})
	require.Error(t, err)
	assert.Equal(t, "Contract wasm1nope not found", err.Error())
}

// handleQuery's contract_info response must serialize to the exact wire
// shape spec.md §6 documents, not Go's default field names.
func TestHandleQueryContractInfoShape(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("plain", simvm.Contract{Instantiate: noopInstantiate})
	chain := newChain(reg)
	codeID := chain.Create("creator", simvm.Code("plain"))
	instApp, err := chain.InstantiateContract("creator", nil, codeID, []byte("{}"), nil)
	require.NoError(t, err)
	addr := contractAddrFromEvent(t, instApp)

	data, err := chain.HandleQuery(types.WasmQuery{ContractInfo: &types.ContractInfoQuery{ContractAddr: addr}})
	require.NoError(t, err)

	expected := `{"code_id":` + jsonUint(codeID) + `,"creator":"creator","admin":null,"ibc_port":null,"pinned":true}`
	assert.JSONEq(t, expected, string(data))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "code_id")
	assert.Contains(t, decoded, "creator")
	assert.Contains(t, decoded, "admin")
	assert.Contains(t, decoded, "ibc_port")
	assert.Contains(t, decoded, "pinned")
}

func jsonUint(v uint64) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Boundary: reply_on = Success with a failing inner call must propagate
// the error and must never invoke the emitting contract's reply.
func TestReplyOnSuccessPropagatesFailureWithoutReply(t *testing.T) {
	reg := simvm.NewRegistry()
	reg.Register("child3", simvm.Contract{
		Instantiate: noopInstantiate,
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return nil, errors.New("child3 failed")
		},
	})
	chain := newChain(reg)
	childCodeID := chain.Create("creator", simvm.Code("child3"))
	childApp, err := chain.InstantiateContract("creator", nil, childCodeID, []byte("{}"), nil)
	require.NoError(t, err)
	childAddr := contractAddrFromEvent(t, childApp)

	replyInvoked := false
	reg.Register("parent3", simvm.Contract{
		Instantiate: noopInstantiate,
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return &types.ContractResponse{Messages: []types.SubMsg{
				{ID: 1, ReplyOn: types.ReplySuccess, Msg: types.WasmMsg{Execute: &types.WasmExecuteMsg{
					ContractAddr: childAddr, Msg: []byte("go"),
				}}},
			}}, nil
		},
		Reply: func(c *simvm.Ctx, reply types.ReplyMsg) (*types.ContractResponse, error) {
			replyInvoked = true
			return &types.ContractResponse{}, nil
		},
	})
	parentCodeID := chain.Create("creator", simvm.Code("parent3"))
	parentApp, err := chain.InstantiateContract("creator", nil, parentCodeID, []byte("{}"), nil)
	require.NoError(t, err)
	parentAddr := contractAddrFromEvent(t, parentApp)

	tr := &trace.List{}
	logTraceOnFailure(t, tr)
	_, err = chain.ExecuteContract("sender", nil, parentAddr, []byte("go"), tr)
	require.Error(t, err)
	assert.Equal(t, "child3 failed", err.Error())
	assert.False(t, replyInvoked, "reply_on = Success must not invoke reply when the inner call fails")
}

// Boundary: reply_on = Error / Never with a successful inner call must
// drop the submessage's data but keep its events, without invoking reply.
func TestReplyOnErrorOrNeverDropsDataOnSuccess(t *testing.T) {
	for _, replyOn := range []types.ReplyOn{types.ReplyError, types.ReplyNever} {
		replyOn := replyOn
		t.Run(replyOn.String(), func(t *testing.T) {
			reg := simvm.NewRegistry()
			reg.Register("child4", simvm.Contract{
				Instantiate: noopInstantiate,
				Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
					return &types.ContractResponse{
						Events: []types.Event{{Type: "t", Attributes: []types.Attribute{{Key: "a", Value: "b"}}}},
						Data:   []byte("child-data"),
					}, nil
				},
			})
			chain := newChain(reg)
			childCodeID := chain.Create("creator", simvm.Code("child4"))
			childApp, err := chain.InstantiateContract("creator", nil, childCodeID, []byte("{}"), nil)
			require.NoError(t, err)
			childAddr := contractAddrFromEvent(t, childApp)

			replyInvoked := false
			reg.Register("parent4", simvm.Contract{
				Instantiate: noopInstantiate,
				Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
					return &types.ContractResponse{Messages: []types.SubMsg{
						{ID: 1, ReplyOn: replyOn, Msg: types.WasmMsg{Execute: &types.WasmExecuteMsg{
							ContractAddr: childAddr, Msg: []byte("go"),
						}}},
					}}, nil
				},
				Reply: func(c *simvm.Ctx, reply types.ReplyMsg) (*types.ContractResponse, error) {
					replyInvoked = true
					return &types.ContractResponse{}, nil
				},
			})
			parentCodeID := chain.Create("creator", simvm.Code("parent4"))
			parentApp, err := chain.InstantiateContract("creator", nil, parentCodeID, []byte("{}"), nil)
			require.NoError(t, err)
			parentAddr := contractAddrFromEvent(t, parentApp)

			tr := &trace.List{}
			logTraceOnFailure(t, tr)
			app, err := chain.ExecuteContract("sender", nil, parentAddr, []byte("go"), tr)
			require.NoError(t, err)

			assert.False(t, replyInvoked, "reply_on = %s must not invoke reply on a successful inner call", replyOn)
			assert.Nil(t, app.Data, "reply_on = %s must drop the submessage's data", replyOn)

			var sawWasmT bool
			for _, e := range app.Events {
				if e.Type == "wasm-t" {
					sawWasmT = true
				}
			}
			assert.True(t, sawWasmT, "reply_on = %s must keep the submessage's events", replyOn)
		})
	}
}

func contractAddrFromEvent(t *testing.T, app types.AppResponse) types.Address {
	t.Helper()
	require.NotEmpty(t, app.Events)
	require.Equal(t, "instantiate", app.Events[0].Type)
	for _, a := range app.Events[0].Attributes {
		if a.Key == "_contract_address" {
			return types.Address(a.Value)
		}
	}
	t.Fatal("instantiate event missing _contract_address attribute")
	return ""
}
