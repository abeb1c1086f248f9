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

// wasmsim drives a recorded scenario through the engine and prints the
// resulting responses and call trace, the same reference-harness role
// cmd/cvm plays for the CVM (run a snippet, show what happened) cut
// down to this simulator's entry points.
package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/coreum-labs/wsim/internal/simvm"
	"github.com/coreum-labs/wsim/internal/wlog"
	"github.com/coreum-labs/wsim/vmhost"
)

var log = wlog.New("pkg", "wasmsim")

var (
	ScenarioFlag = cli.StringFlag{
		Name:  "scenario",
		Usage: "path to a scenario JSON file",
	}
	TraceFlag = cli.BoolFlag{
		Name:  "trace",
		Usage: "also print the hierarchical call trace",
	}
	VerbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity, 0 (silent) to 5 (trace)",
		Value: 3,
	}
)

func simvmHost(registry *simvm.Registry) *vmhost.Host {
	return vmhost.New(simvm.NewFactory(registry), "cosmwasm")
}

func runCommand(ctx *cli.Context) error {
	wlog.SetHandler(wlog.LvlFilterHandler(wlog.Lvl(ctx.Int(VerbosityFlag.Name)), wlog.StreamHandler(os.Stderr, wlog.TerminalFormat(true))))

	path := ctx.String(ScenarioFlag.Name)
	if path == "" {
		return cli.NewExitError("missing required -scenario flag", 1)
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading scenario: %v", err), 1)
	}

	var scenario Scenario
	if err := json.Unmarshal(raw, &scenario); err != nil {
		return cli.NewExitError(fmt.Sprintf("parsing scenario: %v", err), 1)
	}
	if scenario.Hrp == "" {
		scenario.Hrp = "cosmwasm"
	}

	log.Info("running scenario", "path", path, "steps", len(scenario.Steps))
	results, tr := Run(scenario, builtinContracts())

	out := struct {
		Results []StepResult `json:"results"`
		Trace   interface{}  `json:"trace,omitempty"`
	}{Results: results}
	if ctx.Bool(TraceFlag.Name) {
		out.Trace = tr.Nodes
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func main() {
	app := cli.NewApp()
	app.Name = "wasmsim"
	app.Usage = "run a scripted contract-execution scenario against the in-process simulator"
	app.Flags = []cli.Flag{ScenarioFlag, TraceFlag, VerbosityFlag}
	app.Action = runCommand

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
