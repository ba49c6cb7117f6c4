// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel errors.
//
var (
	// ErrReadOnlySync is returned by write operations attempted from a
	// read-only synchronization callback.
	ErrReadOnlySync = errors.New("write attempted from a read-only sync callback")
	// ErrFinished is returned when running or writing into a finished
	// simulation.
	ErrFinished = errors.New("simulation finished")
	// ErrThreadTerminated is the cause of the fatal error raised when
	// resuming a terminated thread.
	ErrThreadTerminated = errors.New("thread terminated")
)

// FatalKind classifies fatal errors.
//
type FatalKind int

// Fatal error kinds.
//
const (
	// KindInternal errors denote an inconsistent netlist or program: width
	// mismatch on a port, bad port number, resume of a terminated thread,
	// unknown opcode.
	KindInternal FatalKind = iota
	// KindConfig errors are resource limit or topology errors detected while
	// building a design.
	KindConfig
)

func (k FatalKind) String() string {
	if k == KindConfig {
		return "configuration error"
	}
	return "internal error"
}

// A FatalError aborts a simulation run. It carries enough context to locate
// the offending construct in the design.
//
type FatalError struct {
	Kind    FatalKind
	Net     string // name of the offending net, if any
	Functor string // functor type, if any
	Time    Time
	Msg     string
	Err     error // underlying cause, may be nil
}

func (e *FatalError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Net != "" {
		fmt.Fprintf(&b, " on net %q", e.Net)
	}
	if e.Functor != "" {
		fmt.Fprintf(&b, " (%s)", e.Functor)
	}
	fmt.Fprintf(&b, " at time %d: %s", e.Time, e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
//
func (e *FatalError) Unwrap() error { return e.Err }

// ConfigError returns a new configuration error.
//
func ConfigError(format string, args ...interface{}) error {
	return errors.WithStack(&FatalError{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)})
}

// AsFatal returns the FatalError at the root of err, if any.
//
func AsFatal(err error) (*FatalError, bool) {
	var fe *FatalError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func functorName(f Functor) string {
	if f == nil {
		return ""
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", f), "*")
}

// fatal panics with a FatalError. Simulation.Run recovers it.
func (s *Simulation) fatal(n *Net, err error, format string, args ...interface{}) {
	fe := &FatalError{Kind: KindInternal, Time: s.now, Msg: fmt.Sprintf(format, args...), Err: err}
	if n != nil {
		fe.Net = n.Name
		fe.Functor = functorName(n.Fun)
	}
	panic(fe)
}
