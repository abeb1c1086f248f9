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

package types

import "errors"

// Engine-level structural failures (spec.md §7): missing contract,
// missing code, an unknown CosmosMsg/WasmQuery variant. These never
// participate in the reply_on state machine; callers that hit them are
// expected to let them panic rather than catch and continue, the same
// way go-core's vm errors are compared by identity rather than wrapped.
var (
	ErrContractNotFound     = errors.New("contract not found")
	ErrCodeNotFound         = errors.New("code not found")
	ErrUnknownMessageVariant = errors.New("unknown message variant")
	ErrUnknownQueryVariant  = errors.New("unknown query variant")
)
