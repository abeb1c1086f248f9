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

package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListAppendAndLast(t *testing.T) {
	var l List
	assert.Nil(t, l.Last())

	l.Append(Node{Kind: KindExecute})
	l.Append(Node{Kind: KindReply})

	require := assert.New(t)
	require.Len(l.Nodes, 2)
	require.Equal(KindReply, l.Last().Kind)
}

func TestNilListAppendIsNoop(t *testing.T) {
	var l *List
	l.Append(Node{Kind: KindInstantiate})
	assert.Nil(t, l.Last())
}
