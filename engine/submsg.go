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

package engine

import (
	"github.com/coreum-labs/wsim/trace"
	"github.com/coreum-labs/wsim/types"
)

// handleContractResponse implements spec.md §4.5's outer loop: it walks
// a contract's emitted submessages in order, snapshotting the store
// once at entry (s0) and, on the first submessage failure, discarding
// everything since — including the siblings that already succeeded —
// in one reassignment. It is the submessage-tree analogue of
// core/vm.CVM wrapping every Call/Create in a
// Snapshot/RevertToSnapshot pair, generalized from a single failing
// call to an all-or-nothing sibling group.
func (c *Chain) handleContractResponse(addr types.Address, submessages []types.SubMsg, res *types.AppResponse, tr *trace.List) error {
	s0 := c.Store

	for _, m := range submessages {
		metricSubmsgDispatched.Inc(1)

		sub, err := c.executeSubmsg(addr, m, tr)
		if err != nil {
			metricSnapshotReverts.Inc(1)
			c.Store = s0
			log.Debug("submessage group reverted", "emitter", addr, "submsg_id", m.ID, "err", err)
			return err
		}

		res.Events = append(res.Events, sub.Events...)
		if sub.Data != nil {
			res.Data = sub.Data
		}
	}

	return nil
}

// executeSubmsg implements the reply_on matrix of spec.md §4.5: it
// dispatches m.Msg through the router, then decides whether to invoke
// the emitting contract's reply entry point and how to fold the result
// back into this submessage's own (events, data) pair.
//
//	dispatch result | reply_on          | action
//	Ok               Never              drop data, keep events
//	Ok               Error              drop data, keep events (no reply)
//	Ok               Success / Always   reply(ok); fold reply's events+data in
//	Err              Never / Success    bubble the error (triggers the group revert)
//	Err              Error / Always     reply(err); fold reply's events+data in
//
// A reply call's own failure always bubbles, regardless of why the
// reply was invoked: a broken reply handler is as fatal as a broken
// submessage.
func (c *Chain) executeSubmsg(emitter types.Address, m types.SubMsg, tr *trace.List) (*types.SubMsgResponse, error) {
	result, dispatchErr := c.dispatch(emitter, m.Msg, tr, m.GasLimit)

	if dispatchErr == nil {
		switch m.ReplyOn {
		case types.ReplyNever, types.ReplyError:
			return &types.SubMsgResponse{Events: result.Events}, nil
		default: // ReplySuccess, ReplyAlways
			reply := types.ReplyMsg{
				ID:     m.ID,
				Result: types.SubMsgResult{Ok: &types.SubMsgResponse{Events: result.Events, Data: result.Data}},
			}
			replyResp, err := c.Reply(emitter, reply, tr)
			if err != nil {
				return nil, err
			}
			data := result.Data
			if replyResp.Data != nil {
				data = replyResp.Data
			}
			events := append(append([]types.Event{}, result.Events...), replyResp.Events...)
			return &types.SubMsgResponse{Events: events, Data: data}, nil
		}
	}

	switch m.ReplyOn {
	case types.ReplyNever, types.ReplySuccess:
		return nil, dispatchErr
	default: // ReplyError, ReplyAlways
		reply := types.ReplyMsg{
			ID:     m.ID,
			Result: types.SubMsgResult{Err: dispatchErr.Error()},
		}
		replyResp, err := c.Reply(emitter, reply, tr)
		if err != nil {
			return nil, err
		}
		// The original submessage failure is swallowed: reply_on told
		// the emitting contract to handle it, and it did.
		return &types.SubMsgResponse{Events: replyResp.Events, Data: replyResp.Data}, nil
	}
}
