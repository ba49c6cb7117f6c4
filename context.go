// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import "github.com/db47h/evsim/logic"

// AutomaticHooks is implemented by the items of an automatic scope: each
// context of the scope holds one instance of every registered item.
//
type AutomaticHooks interface {
	AllocInstance(ctx *Context)
	ResetInstance(ctx *Context)
	FreeInstance(ctx *Context)
}

// A Scope is a named region of a design. Automatic scopes allocate one
// Context per activation (a call of a recursive function or task).
//
type Scope struct {
	Name      string
	Parent    *Scope
	Automatic bool

	items []AutomaticHooks
	free  []*Context
	live  *Context
	nlive int
	alloc bool
}

// NewScope returns a new scope.
//
func NewScope(name string, parent *Scope, automatic bool) *Scope {
	return &Scope{Name: name, Parent: parent, Automatic: automatic}
}

// Register adds an item to an automatic scope and returns its index in the
// scope's contexts. Items must be registered before the first context is
// allocated.
//
func (sc *Scope) Register(h AutomaticHooks) (int, error) {
	if !sc.Automatic {
		return 0, ConfigError("scope %q: items can only be registered in automatic scopes", sc.Name)
	}
	if sc.alloc {
		return 0, ConfigError("scope %q: item registered after context allocation", sc.Name)
	}
	sc.items = append(sc.items, h)
	return len(sc.items) - 1, nil
}

// Contains returns true if o is sc or is nested in sc.
//
func (sc *Scope) Contains(o *Scope) bool {
	for ; o != nil; o = o.Parent {
		if o == sc {
			return true
		}
	}
	return false
}

// AllocContext returns a fresh context of sc. Freed contexts are reused
// after a reset of all their items.
//
func (sc *Scope) AllocContext() *Context {
	sc.alloc = true
	var ctx *Context
	if n := len(sc.free); n > 0 {
		ctx = sc.free[n-1]
		sc.free[n-1] = nil
		sc.free = sc.free[:n-1]
		for _, h := range sc.items {
			h.ResetInstance(ctx)
		}
	} else {
		ctx = &Context{scope: sc, items: make([]interface{}, len(sc.items))}
		for _, h := range sc.items {
			h.AllocInstance(ctx)
		}
	}
	ctx.live = true
	ctx.next = sc.live
	sc.live = ctx
	sc.nlive++
	return ctx
}

// FreeContext releases ctx. It is removed from the live list and kept for
// reuse.
//
func (sc *Scope) FreeContext(ctx *Context) {
	if ctx == nil || !ctx.live || ctx.scope != sc {
		return
	}
	for pp := &sc.live; *pp != nil; pp = &(*pp).next {
		if *pp == ctx {
			*pp = ctx.next
			break
		}
	}
	ctx.next, ctx.live = nil, false
	sc.nlive--
	for _, h := range sc.items {
		h.FreeInstance(ctx)
	}
	sc.free = append(sc.free, ctx)
}

// LiveContexts returns the contexts of sc that are currently allocated, most
// recent first.
//
func (sc *Scope) LiveContexts() []*Context {
	r := make([]*Context, 0, sc.nlive)
	for c := sc.live; c != nil; c = c.next {
		r = append(r, c)
	}
	return r
}

// A Context holds the storage of one activation of an automatic scope.
//
type Context struct {
	scope *Scope
	items []interface{}
	next  *Context
	live  bool
}

// Scope returns the scope ctx belongs to.
//
func (c *Context) Scope() *Scope { return c.scope }

// Live returns false once ctx has been freed.
//
func (c *Context) Live() bool { return c.live }

// Item returns item i of ctx.
//
func (c *Context) Item(i int) interface{} { return c.items[i] }

// SetItem sets item i of ctx.
//
func (c *Context) SetItem(i int, v interface{}) { c.items[i] = v }

// PartAA is a part select functor for automatic scopes: it keeps the last
// input of every context separately. Values received without a context are
// broadcast to all the live contexts of its scope.
//
type PartAA struct {
	scope     *Scope
	base, wid int
	item      int
}

type partAAState struct {
	in  logic.Vector4
	set bool
}

// NewPartAA returns a part select of bits [base, base+wid) in scope sc.
//
func NewPartAA(sc *Scope, base, wid int) (*PartAA, error) {
	p := &PartAA{scope: sc, base: base, wid: wid}
	i, err := sc.Register(p)
	if err != nil {
		return nil, err
	}
	p.item = i
	return p, nil
}

// AllocInstance implements AutomaticHooks.
//
func (p *PartAA) AllocInstance(ctx *Context) { ctx.SetItem(p.item, &partAAState{}) }

// ResetInstance implements AutomaticHooks.
//
func (p *PartAA) ResetInstance(ctx *Context) { *ctx.Item(p.item).(*partAAState) = partAAState{} }

// FreeInstance implements AutomaticHooks.
//
func (p *PartAA) FreeInstance(*Context) {}

// RecvVec4 implements Functor.
//
func (p *PartAA) RecvVec4(pt Port, v logic.Vector4, ctx *Context) {
	pt.Net.CheckPort(pt, 1)
	if ctx == nil {
		for _, c := range p.scope.LiveContexts() {
			p.RecvVec4(pt, v, c)
		}
		return
	}
	if ctx.scope != p.scope {
		pt.Net.Fatalf("context of scope %q delivered to a part select of scope %q", ctx.scope.Name, p.scope.Name)
	}
	st := ctx.Item(p.item).(*partAAState)
	if st.set && st.in.EEQ(v) {
		return
	}
	st.in, st.set = v, true
	pt.Net.SendVec4(v.Subvalue(p.base, p.wid), ctx)
}
