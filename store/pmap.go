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

package store

import "math/rand"

// PMap is an immutable, structurally-shared ordered map keyed by string,
// implemented as a treap with path copying: Set/Delete never mutate an
// existing node, so any previously obtained PMap value keeps observing
// the state it was handed, which is exactly the snapshot semantics
// spec.md §9 asks for ("taking a snapshot means copying the reference").
// Iteration is byte-lexicographic on the key, matching the ordering
// ContractStorage requires.
//
// No third-party persistent-map library appears anywhere in the example
// corpus (go-core and its siblings reach for mutable tries/LevelDB for
// their state trees, which is the wrong shape for cheap per-call
// snapshotting); this is the stdlib-only component documented in
// DESIGN.md.
type PMap[V any] struct {
	root *pnode[V]
}

type pnode[V any] struct {
	key         string
	val         V
	prio        int32
	left, right *pnode[V]
}

// Get returns the value stored at key and whether it was present.
func (m PMap[V]) Get(key string) (V, bool) {
	n := m.root
	for n != nil {
		switch {
		case key == n.key:
			return n.val, true
		case key < n.key:
			n = n.left
		default:
			n = n.right
		}
	}
	var zero V
	return zero, false
}

// Has reports whether key is present.
func (m PMap[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries.
func (m PMap[V]) Len() int {
	return countNodes(m.root)
}

func countNodes[V any](n *pnode[V]) int {
	if n == nil {
		return 0
	}
	return 1 + countNodes(n.left) + countNodes(n.right)
}

// Set returns a new PMap with key bound to val, leaving m (and anyone
// else holding it) untouched.
func (m PMap[V]) Set(key string, val V) PMap[V] {
	return PMap[V]{root: insert(m.root, key, val)}
}

// Delete returns a new PMap without key, leaving m untouched.
func (m PMap[V]) Delete(key string) PMap[V] {
	return PMap[V]{root: remove(m.root, key)}
}

// ForEach visits entries in byte-lexicographic key order, stopping early
// if fn returns false.
func (m PMap[V]) ForEach(fn func(key string, val V) bool) {
	walk(m.root, fn)
}

func walk[V any](n *pnode[V], fn func(string, V) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, fn) {
		return false
	}
	if !fn(n.key, n.val) {
		return false
	}
	return walk(n.right, fn)
}

func insert[V any](n *pnode[V], key string, val V) *pnode[V] {
	if n == nil {
		return &pnode[V]{key: key, val: val, prio: rand.Int31()}
	}
	switch {
	case key == n.key:
		cp := *n
		cp.val = val
		return &cp
	case key < n.key:
		left := insert(n.left, key, val)
		cp := *n
		cp.left = left
		if left.prio > cp.prio {
			return rotateRight(&cp)
		}
		return &cp
	default:
		right := insert(n.right, key, val)
		cp := *n
		cp.right = right
		if right.prio > cp.prio {
			return rotateLeft(&cp)
		}
		return &cp
	}
}

func remove[V any](n *pnode[V], key string) *pnode[V] {
	if n == nil {
		return nil
	}
	switch {
	case key < n.key:
		cp := *n
		cp.left = remove(n.left, key)
		return &cp
	case key > n.key:
		cp := *n
		cp.right = remove(n.right, key)
		return &cp
	default:
		return mergeChildren(n.left, n.right)
	}
}

func mergeChildren[V any](l, r *pnode[V]) *pnode[V] {
	switch {
	case l == nil:
		return r
	case r == nil:
		return l
	case l.prio > r.prio:
		cp := *l
		cp.right = mergeChildren(l.right, r)
		return &cp
	default:
		cp := *r
		cp.left = mergeChildren(l, r.left)
		return &cp
	}
}

func rotateRight[V any](n *pnode[V]) *pnode[V] {
	l := *n.left
	n.left = l.right
	l.right = n
	return &l
}

func rotateLeft[V any](n *pnode[V]) *pnode[V] {
	r := *n.right
	n.right = r.left
	r.left = n
	return &r
}
