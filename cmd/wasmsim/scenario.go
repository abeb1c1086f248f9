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

	"github.com/coreum-labs/wsim/engine"
	"github.com/coreum-labs/wsim/internal/simvm"
	"github.com/coreum-labs/wsim/trace"
	"github.com/coreum-labs/wsim/types"
)

// Scenario is the on-disk shape a wasmsim run drives the engine
// through: a flat, ordered step list against one Chain, evaluated
// top to bottom the way a test transcript would be.
type Scenario struct {
	Hrp    string `json:"hrp"`
	Height uint64 `json:"height"`
	Steps  []Step `json:"steps"`
}

// Step is a tagged union over the four public engine operations
// (spec.md §6); Op selects the operation, and only the fields grouped
// under that op's comment below apply to it.
type Step struct {
	Op string `json:"op"`

	// create
	Creator  types.Address `json:"creator,omitempty"`
	Contract string        `json:"contract,omitempty"`

	// instantiate / execute
	Sender       types.Address   `json:"sender,omitempty"`
	CodeID       uint64          `json:"code_id,omitempty"`
	ContractAddr types.Address   `json:"contract_addr,omitempty"`
	Msg          json.RawMessage `json:"msg,omitempty"`

	// instantiate result capture: binds the resulting contract address
	// to this name so later steps can reference it as "$name".
	SaveAs string `json:"save_as,omitempty"`
}

// StepResult is one line of wasmsim's output transcript.
type StepResult struct {
	Step  Step              `json:"step"`
	App   *types.AppResponse `json:"response,omitempty"`
	Query []byte            `json:"query_result,omitempty"`
	Err   string            `json:"error,omitempty"`
}

// Run drives scenario against a fresh Chain seeded with the built-in
// contract registry, returning one StepResult per step and the
// accumulated trace.
func Run(scenario Scenario, registry *simvm.Registry) ([]StepResult, *trace.List) {
	host := simvmHost(registry)
	chain := engine.New(host, scenario.Hrp, types.BlockInfo{Height: scenario.Height, ChainID: "wasmsim"})

	tr := &trace.List{}
	names := map[string]types.Address{}
	resolve := func(a types.Address) types.Address {
		if len(a) > 1 && a[0] == '$' {
			if resolved, ok := names[string(a[1:])]; ok {
				return resolved
			}
		}
		return a
	}

	var results []StepResult
	for _, step := range scenario.Steps {
		res := StepResult{Step: step}
		switch step.Op {
		case "create":
			codeID := chain.Create(step.Creator, simvm.Code(step.Contract))
			res.App = &types.AppResponse{Data: []byte(fmt.Sprintf(`{"code_id":%d}`, codeID))}

		case "instantiate":
			app, err := chain.InstantiateContract(step.Sender, nil, step.CodeID, step.Msg, tr)
			if err != nil {
				res.Err = err.Error()
			} else {
				res.App = &app
				if step.SaveAs != "" {
					names[step.SaveAs] = instantiatedAddress(app)
				}
			}

		case "execute":
			app, err := chain.ExecuteContract(step.Sender, nil, resolve(step.ContractAddr), step.Msg, tr)
			if err != nil {
				res.Err = err.Error()
			} else {
				res.App = &app
			}

		case "query":
			data, err := chain.HandleQuery(types.WasmQuery{Smart: &types.SmartQuery{
				ContractAddr: resolve(step.ContractAddr),
				Msg:          step.Msg,
			}})
			if err != nil {
				res.Err = err.Error()
			} else {
				res.Query = data
			}

		default:
			res.Err = fmt.Sprintf("unknown step op %q", step.Op)
		}
		results = append(results, res)
	}
	return results, tr
}

func instantiatedAddress(app types.AppResponse) types.Address {
	if len(app.Events) == 0 {
		return ""
	}
	for _, a := range app.Events[0].Attributes {
		if a.Key == "_contract_address" {
			return types.Address(a.Value)
		}
	}
	return ""
}
