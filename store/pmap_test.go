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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPMapGetSetDelete(t *testing.T) {
	var m PMap[string]

	_, ok := m.Get("a")
	assert.False(t, ok)

	m = m.Set("a", "1")
	m = m.Set("b", "2")
	m = m.Set("c", "3")

	v, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, 3, m.Len())

	m2 := m.Delete("b")
	assert.Equal(t, 2, m2.Len())
	_, ok = m2.Get("b")
	assert.False(t, ok)

	// original untouched by the delete.
	_, ok = m.Get("b")
	assert.True(t, ok)
}

func TestPMapSetIsPersistent(t *testing.T) {
	m1 := PMap[int]{}.Set("x", 1)
	m2 := m1.Set("x", 2)
	m3 := m1.Set("y", 3)

	v1, _ := m1.Get("x")
	v2, _ := m2.Get("x")
	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)

	assert.Equal(t, 1, m1.Len())
	assert.Equal(t, 1, m2.Len())
	assert.Equal(t, 2, m3.Len())

	_, ok := m1.Get("y")
	assert.False(t, ok)
}

func TestPMapForEachOrder(t *testing.T) {
	var m PMap[int]
	for _, k := range []string{"banana", "apple", "cherry", "date"} {
		m = m.Set(k, len(k))
	}

	var got []string
	m.ForEach(func(key string, _ int) bool {
		got = append(got, key)
		return true
	})

	assert.Equal(t, []string{"apple", "banana", "cherry", "date"}, got)
}

func TestPMapForEachEarlyStop(t *testing.T) {
	var m PMap[int]
	for i, k := range []string{"a", "b", "c", "d"} {
		m = m.Set(k, i)
	}

	var got []string
	m.ForEach(func(key string, _ int) bool {
		got = append(got, key)
		return key != "b"
	})

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestPMapSnapshotSurvivesManyMutations(t *testing.T) {
	var base PMap[int]
	for i := 0; i < 50; i++ {
		base = base.Set(string(rune('a'+i%26))+string(rune('0'+i/26)), i)
	}
	snapshot := base

	mutated := snapshot
	for i := 0; i < 50; i++ {
		mutated = mutated.Delete(string(rune('a'+i%26)) + string(rune('0'+i/26)))
	}

	assert.Equal(t, 50, snapshot.Len())
	assert.Equal(t, 0, mutated.Len())
}
