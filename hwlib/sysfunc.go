// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"math/bits"
	"sort"
	"strings"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
)

// SysFuncImpl computes the value of a system function. The result must
// always have the same width for a given set of argument widths.
//
type SysFuncImpl func(args ...logic.Vector4) logic.Vector4

// The registry is shared by all simulations, which may run in separate
// goroutines.
var sysFuncs = xsync.NewMapOf[string, SysFuncImpl]()

// RegisterSysFunc registers a system function. Names start with '$'.
// Registering a name twice replaces the previous function.
//
func RegisterSysFunc(name string, fn SysFuncImpl) error {
	if !strings.HasPrefix(name, "$") || len(name) < 2 {
		return errors.Errorf("invalid system function name %q", name)
	}
	if fn == nil {
		return errors.Errorf("system function %s: nil implementation", name)
	}
	sysFuncs.Store(name, fn)
	return nil
}

// LookupSysFunc returns the named system function.
//
func LookupSysFunc(name string) (SysFuncImpl, bool) {
	return sysFuncs.Load(name)
}

// SysFuncs returns the sorted names of all registered system functions.
//
func SysFuncs() []string {
	names := make([]string, 0, sysFuncs.Size())
	sysFuncs.Range(func(k string, _ SysFuncImpl) bool {
		names = append(names, k)
		return true
	})
	sort.Strings(names)
	return names
}

// SysFunc is a functor that evaluates a system function of its inputs.
//
type SysFunc struct {
	trigger
	fn SysFuncImpl
}

// NewSysFunc returns a functor evaluating the named system function with
// arguments of the given widths.
//
func NewSysFunc(name string, argWidths ...int) (*SysFunc, error) {
	fn, ok := LookupSysFunc(name)
	if !ok {
		return nil, errors.Errorf("unknown system function %s", name)
	}
	return &SysFunc{trigger{inputs: newInputs(argWidths...)}, fn}, nil
}

// Eval implements evsim.Evaluator.
//
func (f *SysFunc) Eval(n *evsim.Net) {
	n.SendVec4(f.fn(f.inputs...), nil)
}

// SpecSysFunc returns the PartSpec of a system function call with an output
// of the given width.
//
//	Inputs: in[len(argWidths)]
//	Outputs: out
//
func SpecSysFunc(name string, width int, argWidths ...int) (*netlist.PartSpec, error) {
	if _, err := NewSysFunc(name, argWidths...); err != nil {
		return nil, err
	}
	return spec(name, bus(len(argWidths), pIn), width, func() evsim.Functor {
		f, _ := NewSysFunc(name, argWidths...)
		return f
	}), nil
}

func unary(f func(v logic.Vector4) logic.Vector4) SysFuncImpl {
	return func(args ...logic.Vector4) logic.Vector4 {
		if len(args) != 1 {
			panic(evsim.ConfigError("system function takes one argument, got %d", len(args)))
		}
		return f(args[0])
	}
}

func bit(b bool) logic.Vector4 {
	if b {
		return logic.FromBits(logic.B1)
	}
	return logic.FromBits(logic.B0)
}

func init() {
	builtins := map[string]SysFuncImpl{
		"$clog2": unary(func(v logic.Vector4) logic.Vector4 {
			x, ok := v.Uint64()
			if !ok {
				return logic.NewVector4(32, logic.BX)
			}
			if x <= 1 {
				return logic.FromUint64(32, 0)
			}
			return logic.FromUint64(32, uint64(bits.Len64(x-1)))
		}),
		"$countones": unary(func(v logic.Vector4) logic.Vector4 {
			return logic.FromUint64(32, uint64(v.Ones()))
		}),
		"$onehot": unary(func(v logic.Vector4) logic.Vector4 {
			return bit(v.Ones() == 1)
		}),
		"$onehot0": unary(func(v logic.Vector4) logic.Vector4 {
			return bit(v.Ones() <= 1)
		}),
		"$isunknown": unary(func(v logic.Vector4) logic.Vector4 {
			return bit(v.HasXZ())
		}),
	}
	for k, fn := range builtins {
		sysFuncs.Store(k, fn)
	}
}
