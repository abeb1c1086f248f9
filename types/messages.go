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

package types

// ReplyOn is the closed sum controlling whether a submessage's emitting
// contract gets a reply callback after the submessage settles.
type ReplyOn int

const (
	ReplyNever ReplyOn = iota
	ReplySuccess
	ReplyError
	ReplyAlways
)

func (r ReplyOn) String() string {
	switch r {
	case ReplyNever:
		return "never"
	case ReplySuccess:
		return "success"
	case ReplyError:
		return "error"
	case ReplyAlways:
		return "always"
	default:
		return "unknown"
	}
}

// SubMsg is a message a contract emits to be processed after its own
// entry point returns (spec.md §3).
type SubMsg struct {
	ID       uint64
	Msg      CosmosMsg
	GasLimit *uint64
	ReplyOn  ReplyOn
}

// CosmosMsg is the closed sum of messages the router can dispatch. The
// engine only knows the wasm variant natively (spec.md §6); any other
// variant (bank, staking, ...) is out of scope and must fail loudly
// unless the host registers a handler for it (see engine.OtherMsgHandler).
type CosmosMsg interface {
	isCosmosMsg()
}

// WasmMsg is the wasm-module variant of CosmosMsg: exactly one of
// Execute or Instantiate is set.
type WasmMsg struct {
	Execute     *WasmExecuteMsg
	Instantiate *WasmInstantiateMsg
}

func (WasmMsg) isCosmosMsg() {}

// WasmExecuteMsg sends an execute call to an already-instantiated contract.
type WasmExecuteMsg struct {
	ContractAddr Address
	Msg          []byte
	Funds        []Coin
}

// WasmInstantiateMsg instantiates a new contract from existing code.
type WasmInstantiateMsg struct {
	CodeID uint64
	Msg    []byte
	Funds  []Coin
	Label  string
	Admin  *Address
}

// ContractResponse is the value a VM entry point (instantiate/execute/reply)
// returns on success.
type ContractResponse struct {
	Messages   []SubMsg
	Attributes []Attribute
	Events     []Event
	Data       []byte
}

// AppResponse is the engine's output shape for instantiate/execute/reply
// (spec.md §3): a flat ordered event list plus an optional data payload.
type AppResponse struct {
	Events []Event
	Data   []byte
}

// SubMsgResponse is the successful-settlement payload handed to a reply.
type SubMsgResponse struct {
	Events []Event
	Data   []byte
}

// SubMsgResult is a Rust-style Result<SubMsgResponse, string> as consumed
// by the reply entry point.
type SubMsgResult struct {
	Ok  *SubMsgResponse
	Err string
}

// IsOk reports whether the submessage settled successfully.
func (r SubMsgResult) IsOk() bool { return r.Err == "" }

// ReplyMsg is the value passed to the VM's reply entry point.
type ReplyMsg struct {
	ID     uint64
	Result SubMsgResult
}

// DebugLog is a single debug line captured from the VM during a call,
// mirroring the VM interface's `logs: DebugLog[]` surface (spec.md §6).
type DebugLog struct {
	Message string
}

// WasmQuery is the closed sum of query variants the router supports
// (spec.md §6): exactly one field is set.
type WasmQuery struct {
	Smart        *SmartQuery
	Raw          *RawQuery
	ContractInfo *ContractInfoQuery
}

// SmartQuery runs a contract's query entry point with an opaque message.
type SmartQuery struct {
	ContractAddr Address
	Msg          []byte
}

// RawQuery reads a single raw storage key out of a contract's storage.
type RawQuery struct {
	ContractAddr Address
	Key          string
}

// ContractInfoQuery looks up a contract's registration metadata.
type ContractInfoQuery struct {
	ContractAddr Address
}
