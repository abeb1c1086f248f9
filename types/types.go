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

// Package types holds the wire-shaped data model shared by every engine
// component: addresses, coins, events, the VM environment and the
// contract call results that flow between them. It plays the role
// go-core's "common" package plays for the CVM (Address, Hash, ...),
// generalized to the CosmWasm-style message shapes this simulator drives.
package types

// Address is a bech32-encoded contract or account address. The engine
// never decodes it back to raw bytes; it builds contract addresses only
// through addr.Encode (via addr.DeriveAndEncode).
type Address string

// Coin is a single denomination/amount pair, e.g. {"ucore", "1000"}.
type Coin struct {
	Denom  string
	Amount string
}

// Attribute is a single key/value pair attached to an event.
type Attribute struct {
	Key   string
	Value string
}

// KV is an alias kept for readability where the spec calls attributes
// "KV" pairs (ContractResponse.attributes).
type KV = Attribute

// Event is a single emitted event: a type tag plus an ordered attribute
// list. Order of attributes (and of events within a response) is
// semantically meaningful and must never be sorted.
type Event struct {
	Type       string
	Attributes []Attribute
}

// NewEvent builds an Event from alternating key/value strings, mirroring
// how call sites in engine construct synthetic events inline.
func NewEvent(typ string, kv ...string) Event {
	e := Event{Type: typ}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attributes = append(e.Attributes, Attribute{Key: kv[i], Value: kv[i+1]})
	}
	return e
}

// BlockInfo carries the host-supplied chain height/time/id into the VM
// environment.
type BlockInfo struct {
	Height uint64
	Time   uint64
	ChainID string
}

// ContractEnvInfo is the "contract" stanza of Env.
type ContractEnvInfo struct {
	Address Address
}

// Env is the value passed into every VM entry point (spec.md §3).
// GasLimit carries a submessage's optional energy budget hint
// (SubMsg.GasLimit) through to the VM; it is nil for top-level calls,
// which have no enclosing submessage to set one.
type Env struct {
	Block    BlockInfo
	Contract ContractEnvInfo
	GasLimit *uint64
}

// MessageInfo carries the caller and attached funds into instantiate/execute.
type MessageInfo struct {
	Sender Address
	Funds  []Coin
}

// CodeInfo describes uploaded, immutable contract bytecode.
type CodeInfo struct {
	CodeID   uint64
	Creator  Address
	WasmCode []byte
}

// ContractInfo describes a registered contract instance.
type ContractInfo struct {
	CodeID  uint64
	Creator Address
	Admin   *Address
	Label   string
	Created uint64 // block height at registration
}

// ContractInfoResponse is handleQuery's contract_info answer shape
// (spec.md §6). The json tags are load-bearing: handleQuery's raw
// `contract_info` wire format is `{ code_id, creator, admin, ibc_port, pinned }`.
type ContractInfoResponse struct {
	CodeID  uint64   `json:"code_id"`
	Creator Address  `json:"creator"`
	Admin   *Address `json:"admin"`
	IBCPort *string  `json:"ibc_port"`
	Pinned  bool     `json:"pinned"`
}
