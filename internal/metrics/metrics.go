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

// Package metrics is a trimmed descendant of go-core's metrics package: it
// keeps the registered-counter idiom used throughout go-core (e.g.
// "core/blockchain.go"'s block-import counters) without the InfluxDB/expvar
// exporters, which have nothing to report against in an offline simulator.
package metrics

import "sync/atomic"

// Counter is a monotonically increasing named counter.
type Counter struct {
	name  string
	count int64
}

func (c *Counter) Inc(delta int64) { atomic.AddInt64(&c.count, delta) }
func (c *Counter) Count() int64    { return atomic.LoadInt64(&c.count) }
func (c *Counter) Name() string    { return c.name }

type registry struct {
	counters map[string]*Counter
}

var defaultRegistry = &registry{counters: make(map[string]*Counter)}

// NewRegisteredCounter creates a Counter and registers it under name,
// mirroring metrics.NewRegisteredCounter in go-core.
func NewRegisteredCounter(name string) *Counter {
	c := &Counter{name: name}
	defaultRegistry.counters[name] = c
	return c
}

// Get returns the named counter, or nil if it was never registered.
func Get(name string) *Counter {
	return defaultRegistry.counters[name]
}

// Snapshot returns a name->count map of every registered counter, for
// diagnostics and tests.
func Snapshot() map[string]int64 {
	out := make(map[string]int64, len(defaultRegistry.counters))
	for name, c := range defaultRegistry.counters {
		out[name] = c.Count()
	}
	return out
}
