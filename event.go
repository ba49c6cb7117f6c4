// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import "github.com/db47h/evsim/logic"

// Waitable is implemented by the events a thread can wait on.
//
type Waitable interface {
	addWaiter(t *Thread)
}

type waiter struct {
	t   *Thread
	gen uint64
}

type waitList []waiter

func (w *waitList) addWaiter(t *Thread) { *w = append(*w, waiter{t, t.gen}) }

// wake schedules all waiting threads that are still alive.
func (w *waitList) wake(s *Simulation) {
	l := *w
	*w = nil
	for _, x := range l {
		if x.t.gen == x.gen && x.t.state == Suspended {
			s.schedule(0, Active, threadEvent{x.t, x.gen})
		}
	}
}

// Waiting returns the number of threads waiting on the event.
//
func (w *waitList) Waiting() int { return len(*w) }

// A NamedEvent is triggered explicitly by threads (OpEvent) or by any value
// received on its net.
//
type NamedEvent struct {
	Name string
	waitList
}

// NewNamedEvent returns a new named event.
//
func NewNamedEvent(name string) *NamedEvent { return &NamedEvent{Name: name} }

// Trigger wakes all threads waiting on e.
//
func (e *NamedEvent) Trigger(s *Simulation) { e.wake(s) }

// RecvVec4 implements Functor.
//
func (e *NamedEvent) RecvVec4(p Port, _ logic.Vector4, _ *Context) { e.wake(p.Net.sim) }

// EdgeKind selects the transitions an EdgeEvent reacts to.
//
type EdgeKind int

// Edge kinds.
//
const (
	AnyEdge EdgeKind = iota // any value change
	PosEdge
	NegEdge
)

// An EdgeEvent wakes its waiters on the transitions of any of its inputs.
// PosEdge and NegEdge look at bit 0 of each input only.
//
type EdgeEvent struct {
	Kind EdgeKind
	last []logic.Vector4
	seen []bool
	waitList
}

// NewEdgeEvent returns an edge event with nports inputs.
//
func NewEdgeEvent(kind EdgeKind, nports int) *EdgeEvent {
	return &EdgeEvent{Kind: kind, last: make([]logic.Vector4, nports), seen: make([]bool, nports)}
}

// RecvVec4 implements Functor.
//
func (e *EdgeEvent) RecvVec4(p Port, v logic.Vector4, _ *Context) {
	p.Net.CheckPort(p, len(e.last))
	i := p.Index
	old, seen := e.last[i], e.seen[i]
	e.last[i], e.seen[i] = v, true
	var hit bool
	switch e.Kind {
	case AnyEdge:
		if !seen {
			old = logic.NewVector4(v.Size(), logic.BX)
		}
		hit = !old.EEQ(v)
	case PosEdge, NegEdge:
		from := logic.BX
		if seen {
			from = old.Value(0)
		}
		d := logic.Edge(from, v.Value(0))
		hit = d > 0 && e.Kind == PosEdge || d < 0 && e.Kind == NegEdge
	}
	if hit {
		e.wake(p.Net.sim)
		p.Net.SendVec4(v, nil)
	}
}
