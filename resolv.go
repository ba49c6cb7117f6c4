// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import "github.com/db47h/evsim/logic"

// ResolvKind is the resolution function of a multiply driven net.
//
type ResolvKind int

// Resolution kinds.
//
const (
	Tri  ResolvKind = iota // standard strength resolution
	Tri0                   // tri pulled down when undriven
	Tri1                   // tri pulled up when undriven
	WAnd                   // wired and
	WOr                    // wired or
)

var resolvNames = [...]string{"tri", "tri0", "tri1", "wand", "wor"}

func (k ResolvKind) String() string {
	if k < 0 || int(k) >= len(resolvNames) {
		return "invalid"
	}
	return resolvNames[k]
}

// Resolv merges the contributions of several drivers into a single value.
// Each driver feeds its own port. The resolved value is recomputed in a
// single evaluation for all the contributions received in the same batch of
// active events, and is only propagated when it changes.
//
type Resolv struct {
	kind  ResolvKind
	width int
	in    []logic.Vector8
	done  bool
}

// NewResolv returns a new resolver for nports drivers.
//
func NewResolv(kind ResolvKind, width, nports int) *Resolv {
	r := &Resolv{kind: kind, width: width, in: make([]logic.Vector8, nports)}
	for i := range r.in {
		r.in[i] = logic.NewVector8(width)
	}
	return r
}

// Kind returns the resolution kind of r.
//
func (r *Resolv) Kind() ResolvKind { return r.kind }

// RecvVec4 implements Functor. v is taken as a strong drive.
//
func (r *Resolv) RecvVec4(p Port, v logic.Vector4, _ *Context) {
	p.Net.CheckWidth(p, v, r.width)
	r.RecvVec8(p, logic.FromVector4(v, logic.Strong, logic.Strong))
}

// RecvVec8 implements StrengthReceiver.
//
func (r *Resolv) RecvVec8(p Port, v logic.Vector8) {
	p.Net.CheckPort(p, len(r.in))
	if v.Size() != r.width {
		p.Net.Fatalf("width mismatch on port %d: got %d bits, want %d", p.Index, v.Size(), r.width)
	}
	if r.done && r.in[p.Index].EEQ(v) {
		return
	}
	r.in[p.Index] = v
	p.Net.Trigger()
}

// RecvVec8PV implements PartialStrengthReceiver.
//
func (r *Resolv) RecvVec8PV(p Port, v logic.Vector8, base, vwid int) {
	p.Net.CheckPort(p, len(r.in))
	if vwid != r.width || base < 0 || base+v.Size() > vwid {
		p.Net.Fatalf("part [%d+:%d] of %d bits does not fit a %d bits resolver", base, v.Size(), vwid, r.width)
	}
	cur := r.in[p.Index].Clone()
	if cur.SetVec(base, v) || !r.done {
		r.in[p.Index] = cur
		p.Net.Trigger()
	}
}

// Eval implements Evaluator.
//
func (r *Resolv) Eval(n *Net) {
	r.done = true
	n.SendVec8(r.resolve())
}

func (r *Resolv) resolve() logic.Vector8 {
	switch r.kind {
	case WAnd, WOr:
		return r.wired()
	}
	out := r.in[0].Clone()
	for _, v := range r.in[1:] {
		out = logic.ResolveVector(out, v)
	}
	if r.kind == Tri0 || r.kind == Tri1 {
		pull := logic.NewScalar(logic.B0, logic.Pull, logic.Pull)
		if r.kind == Tri1 {
			pull = logic.NewScalar(logic.B1, logic.Pull, logic.Pull)
		}
		for i := 0; i < out.Size(); i++ {
			if out.Value(i).IsHiZ() {
				out.SetBit(i, pull)
			}
		}
	}
	return out
}

// wired resolves in 4-state: undriven inputs are ignored and the result is a
// strong drive.
func (r *Resolv) wired() logic.Vector8 {
	out := logic.NewVector4(r.width, logic.BZ)
	for i := 0; i < r.width; i++ {
		acc := logic.BZ
		for _, v := range r.in {
			b := v.Value(i).Value()
			switch {
			case b == logic.BZ:
				continue
			case acc == logic.BZ:
				acc = b.Z2X()
			case r.kind == WAnd:
				acc = logic.And(acc, b)
			default:
				acc = logic.Or(acc, b)
			}
		}
		out.SetBit(i, acc)
	}
	return logic.FromVector4(out, logic.Strong, logic.Strong)
}

// Drive converts its 4-state input into a strength vector driven with
// strengths s0 and s1.
//
type Drive struct {
	S0, S1 logic.Strength
}

// RecvVec4 implements Functor.
//
func (d *Drive) RecvVec4(p Port, v logic.Vector4, ctx *Context) {
	p.Net.CheckPort(p, 1)
	p.Net.SendVec8(logic.FromVector4(v, d.S0, d.S1))
}

// RecvVec8 implements StrengthReceiver. The value is driven again with the
// strengths of d.
//
func (d *Drive) RecvVec8(p Port, v logic.Vector8) {
	d.RecvVec4(p, v.Reduce4(), nil)
}
