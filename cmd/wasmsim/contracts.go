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

package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/coreum-labs/wsim/internal/simvm"
	"github.com/coreum-labs/wsim/types"
)

// builtinContracts registers the small fixed set of scripted contracts a
// scenario file can instantiate, by name, in place of a real wasm
// binary (spec.md §1 places the bytecode VM itself out of scope).
func builtinContracts() *simvm.Registry {
	reg := simvm.NewRegistry()
	reg.Register("counter", counterContract())
	reg.Register("proxy", proxyContract())
	return reg
}

// counterContract stores a single integer at key "count", incremented
// by execute{"increment":{}} and read by query{"get":{}}.
func counterContract() simvm.Contract {
	return simvm.Contract{
		Instantiate: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			*c.Storage = c.Storage.Set("count", "0")
			c.Log("counter instantiated by %s", info.Sender)
			return &types.ContractResponse{}, nil
		},
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			var body struct {
				Increment *struct{} `json:"increment"`
				Reset     *struct{} `json:"reset"`
			}
			if err := json.Unmarshal(msg, &body); err != nil {
				return nil, fmt.Errorf("counter: invalid msg: %w", err)
			}
			count, _ := c.Storage.Get("count")
			n, _ := strconv.Atoi(count)
			switch {
			case body.Increment != nil:
				n++
			case body.Reset != nil:
				n = 0
			default:
				return nil, fmt.Errorf("counter: unknown execute variant")
			}
			*c.Storage = c.Storage.Set("count", strconv.Itoa(n))
			return &types.ContractResponse{
				Attributes: []types.Attribute{{Key: "count", Value: strconv.Itoa(n)}},
			}, nil
		},
		Query: func(c *simvm.Ctx, msg []byte) ([]byte, error) {
			var body struct {
				Get *struct{} `json:"get"`
			}
			if err := json.Unmarshal(msg, &body); err != nil || body.Get == nil {
				return nil, fmt.Errorf("counter: unknown query variant")
			}
			count, _ := c.Storage.Get("count")
			return json.Marshal(struct {
				Count int `json:"count"`
			}{mustAtoi(count)})
		},
	}
}

// proxyContract forwards an execute call to another contract as a
// reply_on:always submessage, exercising the reply machinery from a
// scenario file without requiring a Go test harness.
func proxyContract() simvm.Contract {
	return simvm.Contract{
		Instantiate: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			return &types.ContractResponse{}, nil
		},
		Execute: func(c *simvm.Ctx, info types.MessageInfo, msg []byte) (*types.ContractResponse, error) {
			var body struct {
				Forward struct {
					ContractAddr types.Address `json:"contract_addr"`
					Msg          json.RawMessage `json:"msg"`
				} `json:"forward"`
			}
			if err := json.Unmarshal(msg, &body); err != nil {
				return nil, fmt.Errorf("proxy: invalid msg: %w", err)
			}
			return &types.ContractResponse{
				Messages: []types.SubMsg{{
					ID:      1,
					ReplyOn: types.ReplyAlways,
					Msg: types.WasmMsg{Execute: &types.WasmExecuteMsg{
						ContractAddr: body.Forward.ContractAddr,
						Msg:          []byte(body.Forward.Msg),
					}},
				}},
			}, nil
		},
		Reply: func(c *simvm.Ctx, reply types.ReplyMsg) (*types.ContractResponse, error) {
			if !reply.Result.IsOk() {
				c.Log("forwarded call failed: %s", reply.Result.Err)
				return &types.ContractResponse{}, nil
			}
			return &types.ContractResponse{Data: reply.Result.Ok.Data}, nil
		},
	}
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
