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

package vmhost

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/coreum-labs/wsim/internal/wlog"
	"github.com/coreum-labs/wsim/store"
	"github.com/coreum-labs/wsim/types"
)

var log = wlog.New("pkg", "vmhost")

// Host builds and caches one VM per contract address. spec.md §9 flags
// LRU eviction keyed by address as the production-grade upgrade over
// pinning every VM for process lifetime; Host does exactly that with
// github.com/hashicorp/golang-lru, already part of the teacher's
// dependency set (go-core uses it for its trie/object caches).
//
// Because ChainStore is authoritative, eviction never loses state: the
// next Get for an evicted address simply rebuilds the VM and reseeds it
// from the current store. Get also reseeds on a cache hit, which is the
// "equivalent" design note §9 calls out for not caching VM state across
// a revert without adding revert-detection plumbing to the cache itself.
type Host struct {
	factory Factory
	prefix  string
	cache   *lru.Cache
}

const defaultCacheSize = 256

// New builds a Host backed by factory. bech32Prefix is handed to every
// VM it builds as BackendAPI.Bech32Prefix.
func New(factory Factory, bech32Prefix string) *Host {
	cache, err := lru.New(defaultCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// defaultCacheSize never is.
		panic(err)
	}
	return &Host{factory: factory, prefix: bech32Prefix, cache: cache}
}

// Get returns the VM for addr, building and caching it on a miss, and
// always reseeding its storage from s before returning. querier is
// wired into the Backend built on a cache miss (spec.md §4.3 step 3);
// it may be nil when the chain has none configured.
func (h *Host) Get(s store.ChainStore, addr types.Address, querier Querier) (VM, error) {
	info, ok := s.GetContract(addr)
	if !ok {
		return nil, types.ErrContractNotFound
	}
	code, ok := s.GetCode(info.CodeID)
	if !ok {
		return nil, types.ErrCodeNotFound
	}

	var vm VM
	if cached, ok := h.cache.Get(addr); ok {
		vm = cached.(VM)
	} else {
		built, err := h.factory.Build(code, Backend{
			API:     BackendAPI{Bech32Prefix: h.prefix},
			Storage: s.GetStorage(addr),
			Querier: querier,
		})
		if err != nil {
			return nil, err
		}
		h.cache.Add(addr, built)
		vm = built
		log.Debug("built VM", "addr", addr, "code_id", info.CodeID)
	}

	*vm.Storage() = s.GetStorage(addr)
	vm.ResetDebugInfo()
	return vm, nil
}

// Evict removes addr's cached VM, if any. Safe to call at any time: the
// next Get rebuilds from ChainStore.
func (h *Host) Evict(addr types.Address) {
	h.cache.Remove(addr)
}
