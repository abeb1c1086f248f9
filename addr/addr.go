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

// Package addr derives deterministic contract addresses the way
// go-core's crypto package derives CREATE/CREATE2 addresses
// (crypto.CreateAddress/CreateAddress2: hash a fixed prefix with the
// inputs, take a fixed-width slice, encode), substituting the hash
// primitive and encoding spec.md §4.1 actually requires: SHA-256 instead
// of Keccak256, and bech32 instead of go-core's checksummed hex.
package addr

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/coreum-labs/wsim/types"
)

const moduleNamespace = "wasm"

// Derive computes the 20-byte contract address hash for (codeID,
// instanceID), bit-exact per spec.md §4.1:
//
//	cid     = be_u64(codeID) || be_u64(instanceID)
//	mkey    = utf8("wasm") || 0x00
//	payload = mkey || cid
//	th      = SHA256(utf8("module"))
//	hash    = SHA256(th || payload)
//
// and returns hash[0:20].
func Derive(codeID, instanceID uint64) [20]byte {
	var cid [16]byte
	binary.BigEndian.PutUint64(cid[0:8], codeID)
	binary.BigEndian.PutUint64(cid[8:16], instanceID)

	mkey := append([]byte(moduleNamespace), 0x00)
	payload := append(append([]byte{}, mkey...), cid[:]...)

	th := sha256.Sum256([]byte("module"))
	h := sha256.New()
	h.Write(th[:])
	h.Write(payload)
	sum := h.Sum(nil)

	var out [20]byte
	copy(out[:], sum[:20])
	return out
}

// Encode bech32-encodes a 20-byte address hash with the given
// human-readable prefix.
func Encode(hrp string, hash [20]byte) (types.Address, error) {
	data, err := bech32.ConvertBits(hash[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	s, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", err
	}
	return types.Address(s), nil
}

// DeriveAndEncode is the composition of Derive and Encode, i.e.
// registerContractInstance's address computation in spec.md §4.1.
func DeriveAndEncode(hrp string, codeID, instanceID uint64) (types.Address, error) {
	return Encode(hrp, Derive(codeID, instanceID))
}
