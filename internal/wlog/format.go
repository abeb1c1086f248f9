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

package wlog

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

const timeFormat = "2006-01-02T15:04:05-0700"

var lvlColor = map[Lvl]*color.Color{
	LvlCrit:  color.New(color.FgMagenta, color.Bold),
	LvlError: color.New(color.FgRed),
	LvlWarn:  color.New(color.FgYellow),
	LvlInfo:  color.New(color.FgGreen),
	LvlDebug: color.New(color.FgCyan),
	LvlTrace: color.New(color.FgWhite),
}

// Format encodes a Record into a byte slice for a Handler to write out.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

// TerminalFormat renders log records in a colorized, human-readable line,
// mirroring go-ethereum's log.TerminalFormat: colors are only applied when
// the destination is a real terminal (see NewTerminalHandler).
func TerminalFormat(color bool) Format {
	return formatFunc(func(r *Record) []byte {
		buf := new(bytes.Buffer)
		ts := r.Time.Format(timeFormat)
		if color {
			c := lvlColor[r.Lvl]
			fmt.Fprintf(buf, "%s[%s] %s ", c.Sprint(r.Lvl.String()), ts, r.Msg)
		} else {
			fmt.Fprintf(buf, "[%s] [%s] %s ", r.Lvl.String(), ts, r.Msg)
		}
		formatCtx(buf, r.Ctx, color)
		if r.Call != "" {
			fmt.Fprintf(buf, " caller=%s", r.Call)
		}
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

func formatCtx(buf *bytes.Buffer, ctx []interface{}, useColor bool) {
	for i := 0; i < len(ctx); i += 2 {
		k, ok := ctx[i].(string)
		if !ok {
			k = fmt.Sprint(ctx[i])
		}
		var v interface{}
		if i+1 < len(ctx) {
			v = ctx[i+1]
		}
		if i != 0 {
			buf.WriteByte(' ')
		}
		if useColor {
			fmt.Fprintf(buf, "%s=%s", color.New(color.Faint).Sprint(k), formatValue(v))
		} else {
			fmt.Fprintf(buf, "%s=%s", k, formatValue(v))
		}
	}
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case error:
		return strconv.Quote(x.Error())
	case fmt.Stringer:
		return strconv.Quote(x.String())
	case string:
		if strings.ContainsAny(x, " \t\n\"=") {
			return strconv.Quote(x)
		}
		return x
	default:
		return fmt.Sprintf("%v", x)
	}
}

// LogfmtFormat renders records as space-delimited key=value pairs, with
// ctx keys sorted for deterministic golden-file comparisons in tests.
func LogfmtFormat() Format {
	return formatFunc(func(r *Record) []byte {
		buf := new(bytes.Buffer)
		fmt.Fprintf(buf, "t=%s lvl=%s msg=%s", r.Time.Format(timeFormat), r.Lvl, strconv.Quote(r.Msg))
		keys := make([]int, 0, len(r.Ctx)/2)
		for i := 0; i < len(r.Ctx); i += 2 {
			keys = append(keys, i)
		}
		sort.Slice(keys, func(a, b int) bool {
			return fmt.Sprint(r.Ctx[keys[a]]) < fmt.Sprint(r.Ctx[keys[b]])
		})
		for _, i := range keys {
			fmt.Fprintf(buf, " %s=%s", r.Ctx[i], formatValue(r.Ctx[i+1]))
		}
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}
