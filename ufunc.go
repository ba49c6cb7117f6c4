// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import "github.com/db47h/evsim/logic"

// UFunc is a user function used as a continuous expression: every change of
// its inputs runs the function body in a thread, and the value of the result
// variable is sent when that thread ends.
//
// Input i is stored into the storage net Args[i] before the body runs. A
// change received while the body is suspended runs it again once it ends.
//
type UFunc struct {
	Prog   *Program
	Label  string
	Scope  *Scope
	Args   []*Net
	Result *Net

	in      []logic.Vector4
	set     []bool
	running bool
	pending bool
}

// NewUFunc returns a user function functor.
//
func NewUFunc(p *Program, label string, sc *Scope, result *Net, args ...*Net) (*UFunc, error) {
	if _, ok := p.Label(label); !ok {
		return nil, ConfigError("user function: undefined label %q", label)
	}
	if _, ok := result.Fun.(Storage); !ok {
		return nil, ConfigError("user function: result net %q is not a storage net", result.Name)
	}
	for _, a := range args {
		if _, ok := a.Fun.(Storage); !ok {
			return nil, ConfigError("user function: argument net %q is not a storage net", a.Name)
		}
	}
	return &UFunc{Prog: p, Label: label, Scope: sc, Args: args, Result: result,
		in: make([]logic.Vector4, len(args)), set: make([]bool, len(args))}, nil
}

// RecvVec4 implements Functor.
//
func (u *UFunc) RecvVec4(p Port, v logic.Vector4, _ *Context) {
	p.Net.CheckPort(p, len(u.Args))
	u.in[p.Index], u.set[p.Index] = v, true
	p.Net.Trigger()
}

// Eval implements Evaluator.
//
func (u *UFunc) Eval(n *Net) {
	if u.running {
		u.pending = true
		return
	}
	s := n.sim
	for i, a := range u.Args {
		if u.set[i] {
			a.Fun.(Storage).Store(a, u.in[i], nil)
		}
	}
	pc, _ := u.Prog.Label(u.Label)
	t := s.newThread(u.Prog, pc, u.Scope)
	t.OnEnd(func(*Thread) {
		u.running = false
		n.SendVec4(u.Result.Fun.(Storage).Load(nil), nil)
		if u.pending {
			u.pending = false
			n.Trigger()
		}
	})
	u.running = true
	s.resume(t)
}
