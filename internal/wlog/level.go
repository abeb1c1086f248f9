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

// Package wlog is a small leveled, structured logger in the style of the
// log package go-core vendors on top of go-stack/stack, fatih/color and
// mattn/go-{isatty,colorable}.
package wlog

import "fmt"

type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "crit"
	case LvlError:
		return "eror"
	case LvlWarn:
		return "warn"
	case LvlInfo:
		return "info"
	case LvlDebug:
		return "dbug"
	case LvlTrace:
		return "trce"
	default:
		return fmt.Sprintf("lvl(%d)", int(l))
	}
}

// LvlFromString returns the appropriate Lvl from a string name.
func LvlFromString(name string) (Lvl, error) {
	switch name {
	case "crit":
		return LvlCrit, nil
	case "error", "eror":
		return LvlError, nil
	case "warn":
		return LvlWarn, nil
	case "info":
		return LvlInfo, nil
	case "debug", "dbug":
		return LvlDebug, nil
	case "trace", "trce":
		return LvlTrace, nil
	default:
		return LvlDebug, fmt.Errorf("unknown level: %s", name)
	}
}
