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
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Record is a single log event.
type Record struct {
	Time time.Time
	Lvl  Lvl
	Msg  string
	Ctx  []interface{}
	Call string
}

// Handler writes a Record somewhere.
type Handler interface {
	Log(r *Record) error
}

type funcHandler func(r *Record) error

func (f funcHandler) Log(r *Record) error { return f(r) }

// StreamHandler writes records formatted by fmtr to w.
func StreamHandler(w io.Writer, fmtr Format) Handler {
	var mu sync.Mutex
	return funcHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := w.Write(fmtr.Format(r))
		return err
	})
}

// LvlFilterHandler drops records above the given verbosity before passing
// them to h.
func LvlFilterHandler(max Lvl, h Handler) Handler {
	return funcHandler(func(r *Record) error {
		if r.Lvl > max {
			return nil
		}
		return h.Log(r)
	})
}

// CallerStackHandler annotates each record with its call site using
// go-stack/stack, then forwards it to h.
func CallerStackHandler(h Handler) Handler {
	return funcHandler(func(r *Record) error {
		call := stack.Caller(4)
		r.Call = call.String()
		return h.Log(r)
	})
}

// Logger emits structured, leveled records carrying persistent context.
type Logger interface {
	New(ctx ...interface{}) Logger
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

type swapHandler struct {
	mu sync.RWMutex
	h  Handler
}

func (s *swapHandler) Log(r *Record) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.h == nil {
		return nil
	}
	return s.h.Log(r)
}

func (s *swapHandler) Swap(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h = h
}

// NewTerminalHandler builds a handler colorized only when w looks like a
// real terminal, using go-isatty/go-colorable the way go-core's vendored
// log package picks its default root handler.
func NewTerminalHandler(w io.Writer) Handler {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if useColor {
			w = colorable.NewColorable(f)
		}
	}
	return CallerStackHandler(StreamHandler(w, TerminalFormat(useColor)))
}

var root = &logger{h: new(swapHandler)}

func init() {
	root.h.Swap(LvlFilterHandler(LvlInfo, NewTerminalHandler(os.Stderr)))
}

// Root returns the root logger.
func Root() Logger { return root }

// SetHandler replaces the root logger's handler, e.g. to raise verbosity
// or redirect to a logfmt sink in tests.
func SetHandler(h Handler) { root.h.Swap(h) }

func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{h: l.h}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

func (l *logger) write(lvl Lvl, msg string, ctx []interface{}) {
	r := &Record{Time: time.Now(), Lvl: lvl, Msg: msg, Ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
	l.h.Log(r)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(LvlTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(LvlDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(LvlInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(LvlWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(LvlError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.write(LvlCrit, msg, ctx) }

func Trace(msg string, ctx ...interface{}) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { root.Crit(msg, ctx...) }
