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

// Package trace implements the engine's C6 Trace Recorder: a hierarchical,
// append-only audit record of every VM entry-point invocation. It is the
// call-tree analogue of core/vm/logger_json.go's JSONLogger, which emits
// one flat JSON object per opcode step; here one tagged Node is emitted
// per call, with a Sub field preserving the recursive shape of the
// computation (spec.md §4.6, §9 "Trace as a tree, not a log").
package trace

import (
	"github.com/coreum-labs/wsim/types"
)

// Kind tags which VM entry point a Node records.
type Kind string

const (
	KindInstantiate Kind = "instantiate"
	KindExecute     Kind = "execute"
	KindReply       Kind = "reply"
)

// Node is one call-tree entry. Info is present only for instantiate and
// execute (reply has no MessageInfo in the VM interface). Sub holds the
// submessage calls spawned while handling this one, in emission order.
type Node struct {
	Kind            Kind
	ContractAddress types.Address
	Msg             []byte
	Env             types.Env
	Info            *types.MessageInfo
	Response        *types.ContractResponse
	Logs            []types.DebugLog
	StoreSnapshot   interface{}
	Result          Result
	Sub             []Node
}

// Result is the tagged Ok/Err outcome recorded for a call, settled
// (i.e. post-revert on failure, post-success on success).
type Result struct {
	Ok  *types.AppResponse
	Err string
}

// List is the caller-supplied trace list every entry point appends
// exactly one record to (spec.md §4.6). A nil *List is a valid no-op
// sink: callers that don't care about the trace simply omit it.
type List struct {
	Nodes []Node
}

// Append adds n to the list if l is non-nil; on a nil list it does nothing.
func (l *List) Append(n Node) {
	if l == nil {
		return
	}
	l.Nodes = append(l.Nodes, n)
}

// Last returns a pointer to the most recently appended node, or nil.
func (l *List) Last() *Node {
	if l == nil || len(l.Nodes) == 0 {
		return nil
	}
	return &l.Nodes[len(l.Nodes)-1]
}
