// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"sort"

	"github.com/db47h/evsim/logic"
	"github.com/pkg/errors"
)

// ThreadState is the execution state of a thread.
//
type ThreadState int

// Thread states.
//
const (
	Running ThreadState = iota
	Suspended
	Terminated
)

func (s ThreadState) String() string {
	switch s {
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	}
	return "terminated"
}

// A Thread is an execution of a Program: behavioral code such as an initial
// block, an always block or the body of a task or function.
//
// Automatic variables are read in the read context and written in the write
// context. OpAlloc pushes a new write context, OpFork passes it to the child
// and OpJoin makes the child's context the read context, until OpFree.
//
type Thread struct {
	sim   *Simulation
	prog  *Program
	pc    int
	scope *Scope
	id    uint64

	stack []logic.Vector4
	flags [nFlags]logic.Bit4

	state ThreadState
	gen   uint64 // bumped on termination; stale wakeups carry an older gen
	final bool

	parent   *Thread
	children []*Thread
	joining  bool

	wctx, rctx     *Context
	wstack, rstack []*Context
	autoCtx        *Context // context received from the parent at fork

	onEnd func(t *Thread)
}

func (s *Simulation) newThread(p *Program, pc int, sc *Scope) *Thread {
	s.stats.Threads++
	t := &Thread{sim: s, prog: p, pc: pc, scope: sc, id: s.stats.Threads, state: Suspended}
	s.threads[t] = struct{}{}
	return t
}

func (s *Simulation) lookup(p *Program, label string) (int, error) {
	pc, ok := p.Label(label)
	if !ok {
		return 0, errors.Errorf("undefined label %q", label)
	}
	return pc, nil
}

// Start creates a thread running p from label in scope sc. The thread is
// scheduled in the ACTIVE region of the current time slot.
//
func (s *Simulation) Start(p *Program, label string, sc *Scope) (*Thread, error) {
	pc, err := s.lookup(p, label)
	if err != nil {
		return nil, err
	}
	t := s.newThread(p, pc, sc)
	s.ScheduleThread(t, 0)
	return t, nil
}

// StartFinal creates a thread that runs once, when the simulation finishes.
// Final threads cannot suspend.
//
func (s *Simulation) StartFinal(p *Program, label string, sc *Scope) (*Thread, error) {
	pc, err := s.lookup(p, label)
	if err != nil {
		return nil, err
	}
	t := s.newThread(p, pc, sc)
	t.final = true
	s.final = append(s.final, t)
	return t, nil
}

// ScheduleThread schedules the resumption of t in the ACTIVE region, delay
// units from now. Resuming a thread that terminated in the meantime is a
// fatal error.
//
func (s *Simulation) ScheduleThread(t *Thread, delay Time) {
	s.schedule(delay, Active, threadEvent{t, t.gen})
}

type threadEvent struct {
	t   *Thread
	gen uint64
}

// events of killed threads are cancelled by the generation bump.
func (e threadEvent) cancelled() bool { return e.t.gen != e.gen }

func (e threadEvent) run(s *Simulation) { s.resume(e.t) }

func (s *Simulation) resume(t *Thread) {
	if t.state == Terminated {
		s.fatal(nil, ErrThreadTerminated, "resume of thread %d", t.id)
	}
	t.state = Running
	t.exec()
}

func (s *Simulation) runFinal(t *Thread) {
	t.state = Running
	t.exec()
	if t.state != Terminated {
		s.fatal(nil, nil, "final thread %d suspended", t.id)
	}
}

// Sim returns the simulation t belongs to.
//
func (t *Thread) Sim() *Simulation { return t.sim }

// ID returns a unique thread identifier.
//
func (t *Thread) ID() uint64 { return t.id }

// State returns the state of t.
//
func (t *Thread) State() ThreadState { return t.state }

// Scope returns the scope t runs in.
//
func (t *Thread) Scope() *Scope { return t.scope }

// Flag returns the value of a thread flag.
//
func (t *Thread) Flag(i int) logic.Bit4 { return t.flags[i] }

// Push pushes v onto the stack of t.
//
func (t *Thread) Push(v logic.Vector4) { t.stack = append(t.stack, v) }

// Pop pops the top of the stack of t.
//
func (t *Thread) Pop() logic.Vector4 {
	n := len(t.stack) - 1
	if n < 0 {
		t.fatalf("stack underflow")
	}
	v := t.stack[n]
	t.stack[n] = logic.Vector4{}
	t.stack = t.stack[:n]
	return v
}

// Depth returns the depth of the stack of t.
//
func (t *Thread) Depth() int { return len(t.stack) }

// ReadContext returns the context automatic variables are read from.
//
func (t *Thread) ReadContext() *Context { return t.rctx }

// WriteContext returns the context automatic variables are written to.
//
func (t *Thread) WriteContext() *Context { return t.wctx }

// OnEnd registers fn to be called when t terminates normally.
//
func (t *Thread) OnEnd(fn func(t *Thread)) { t.onEnd = fn }

func (t *Thread) fatalf(format string, args ...interface{}) {
	t.sim.fatal(nil, nil, "thread %d, pc %d: "+format, append([]interface{}{t.id, t.pc - 1}, args...)...)
}

func (t *Thread) suspend() {
	if t.final {
		t.fatalf("final thread cannot suspend")
	}
	t.state = Suspended
}

func (t *Thread) binop(f func(a, b logic.Vector4) logic.Vector4) {
	b := t.Pop()
	a := t.Pop()
	if a.Size() != b.Size() {
		t.fatalf("operand width mismatch: %d and %d bits", a.Size(), b.Size())
	}
	t.Push(f(a, b))
}

func (t *Thread) compare(signed, order bool) {
	b := t.Pop()
	a := t.Pop()
	if a.Size() != b.Size() {
		t.fatalf("operand width mismatch: %d and %d bits", a.Size(), b.Size())
	}
	t.flags[FlagEq] = logic.Eq(a, b)
	t.flags[FlagEEq] = logic.CaseEq(a, b)
	if order {
		t.flags[FlagLt] = logic.Lt(a, b, signed)
	}
}

func (t *Thread) exec() {
	s := t.sim
	for t.state == Running {
		if t.pc < 0 || t.pc >= len(t.prog.code) {
			t.sim.fatal(nil, nil, "thread %d: pc %d out of range", t.id, t.pc)
		}
		in := &t.prog.code[t.pc]
		t.pc++
		switch in.Op {
		case OpNoop:
		case OpPushI:
			t.Push(in.V)
		case OpLoad:
			t.Push(in.Net.Fun.(Storage).Load(t.rctx))
		case OpStore:
			in.Net.Fun.(Storage).Store(in.Net, t.Pop(), t.wctx)
		case OpAssignNB:
			v := t.Pop()
			t.assignNB(in.Net, v, in.Delay)
		case OpPop:
			t.Pop()
		case OpDup:
			v := t.Pop()
			t.Push(v)
			t.Push(v)
		case OpAdd:
			t.binop(logic.Add)
		case OpSub:
			t.binop(logic.Sub)
		case OpMul:
			t.binop(logic.Mul)
		case OpAnd:
			t.binop(logic.Vector4.And)
		case OpOr:
			t.binop(logic.Vector4.Or)
		case OpXor:
			t.binop(logic.Vector4.Xor)
		case OpInv:
			t.Push(t.Pop().Invert())
		case OpCmpEq:
			t.compare(false, false)
		case OpCmpU:
			t.compare(false, true)
		case OpCmpS:
			t.compare(true, true)
		case OpJmp:
			t.pc = in.Target
		case OpJmp0:
			if t.flags[in.Flag] == logic.B0 {
				t.pc = in.Target
			}
		case OpJmp1:
			if t.flags[in.Flag] == logic.B1 {
				t.pc = in.Target
			}
		case OpDelay:
			t.suspend()
			s.ScheduleThread(t, in.Delay)
		case OpDelayZ:
			t.suspend()
			s.schedule(0, Inactive, threadEvent{t, t.gen})
		case OpWait:
			t.suspend()
			in.Event.addWaiter(t)
		case OpEvent:
			in.Event.(*NamedEvent).Trigger(s)
		case OpFork:
			t.fork(in.Target, in.Scope)
		case OpJoin:
			if len(t.children) > 0 {
				t.joining = true
				t.suspend()
			}
		case OpJoinDetach:
			for _, c := range t.children {
				c.parent = nil
			}
			t.children = nil
		case OpAlloc:
			if !in.Scope.Automatic {
				t.fatalf("alloc in static scope %q", in.Scope.Name)
			}
			t.wstack = append(t.wstack, t.wctx)
			t.wctx = in.Scope.AllocContext()
		case OpFree:
			if t.rctx == nil || t.rctx.scope != in.Scope {
				t.fatalf("free of scope %q without a matching read context", in.Scope.Name)
			}
			in.Scope.FreeContext(t.rctx)
			t.rctx = popCtx(&t.rstack)
		case OpDisable:
			s.Disable(in.Scope)
		case OpCall:
			in.Fn(t)
		case OpFinish:
			s.Finish()
		case OpStop:
			s.Stop()
		case OpEnd:
			t.end()
		default:
			t.fatalf("unknown opcode %v", in.Op)
		}
	}
}

func popCtx(st *[]*Context) *Context {
	n := len(*st) - 1
	if n < 0 {
		return nil
	}
	c := (*st)[n]
	(*st)[n] = nil
	*st = (*st)[:n]
	return c
}

func (t *Thread) assignNB(n *Net, v logic.Vector4, delay Time) {
	s := t.sim
	if _, ok := n.Fun.(*Signal); ok {
		s.ScheduleAssign(n.Port(PortAssign), delay, v, 0, v.Size())
		return
	}
	ctx := t.wctx
	st := n.Fun.(Storage)
	s.schedule(delay, NBA, funcEvent(func() {
		if ctx != nil && !ctx.live {
			return
		}
		st.Store(n, v, ctx)
	}))
}

func (t *Thread) fork(pc int, sc *Scope) {
	s := t.sim
	c := s.newThread(t.prog, pc, sc)
	c.parent = t
	c.final = t.final
	t.children = append(t.children, c)
	if sc != nil && sc.Automatic {
		if t.wctx == nil || t.wctx.scope != sc {
			t.fatalf("fork into automatic scope %q without a context", sc.Name)
		}
		c.wctx, c.rctx, c.autoCtx = t.wctx, t.wctx, t.wctx
		t.wctx = popCtx(&t.wstack)
	}
	c.state = Running
	c.exec()
}

// end terminates t normally.
func (t *Thread) end() {
	t.terminate()
	if p := t.parent; p != nil && t.autoCtx != nil {
		p.rstack = append(p.rstack, p.rctx)
		p.rctx = t.autoCtx
	}
	if t.onEnd != nil {
		t.onEnd(t)
	}
	t.reap()
}

func (t *Thread) terminate() {
	t.state = Terminated
	t.gen++
	t.stack = nil
	delete(t.sim.threads, t)
	for _, c := range t.children {
		c.parent = nil
	}
	t.children = nil
}

// reap detaches t from its parent and wakes the parent if it was joining.
func (t *Thread) reap() {
	p := t.parent
	if p == nil {
		return
	}
	t.parent = nil
	for i, c := range p.children {
		if c == t {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	if p.joining && len(p.children) == 0 {
		p.joining = false
		if p.final {
			p.state = Running
			return
		}
		p.sim.ScheduleThread(p, 0)
	}
}

// Disable kills every thread running in sc or in a scope nested in sc,
// together with their children. Contexts held by killed threads are freed and
// parents waiting for them in a join are resumed.
//
func (s *Simulation) Disable(sc *Scope) {
	var victims []*Thread
	for t := range s.threads {
		if sc.Contains(t.scope) {
			victims = append(victims, t)
		}
	}
	sort.Slice(victims, func(i, j int) bool { return victims[i].id < victims[j].id })
	for _, t := range victims {
		s.kill(t)
	}
}

func (s *Simulation) kill(t *Thread) {
	if t.state == Terminated {
		return
	}
	children := t.children
	t.children = nil
	for _, c := range children {
		c.parent = nil
		s.kill(c)
	}
	t.terminate()
	// every context t can reach is owned by t: allocated and not yet passed
	// to a child, or handed back by a joined child and not yet freed.
	// FreeContext ignores contexts that are no longer live.
	free := func(c *Context) {
		if c != nil {
			c.scope.FreeContext(c)
		}
	}
	free(t.wctx)
	for _, c := range t.wstack {
		free(c)
	}
	free(t.rctx)
	for _, c := range t.rstack {
		free(c)
	}
	free(t.autoCtx)
	t.wctx, t.rctx, t.wstack, t.rstack = nil, nil, nil, nil
	t.reap()
}
