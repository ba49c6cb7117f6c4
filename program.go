// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"fmt"

	"github.com/db47h/evsim/logic"
	"github.com/pkg/errors"
)

// Opcode is a thread instruction code.
//
type Opcode int

// Thread instructions. Binary operators pop b then a and push a op b.
//
const (
	OpNoop       Opcode = iota
	OpPushI             // push an immediate value
	OpLoad              // push the value of a storage net
	OpStore             // pop a value into a storage net (blocking assignment)
	OpAssignNB          // pop a value and schedule a non-blocking assignment
	OpPop               // drop the top of the stack
	OpDup               // duplicate the top of the stack
	OpAdd               // a + b
	OpSub               // a - b
	OpMul               // a * b
	OpAnd               // a & b
	OpOr                // a | b
	OpXor               // a ^ b
	OpInv               // ~a
	OpCmpEq             // set FlagEq and FlagEEq from a, b
	OpCmpU              // same as OpCmpEq, plus unsigned FlagLt
	OpCmpS              // same as OpCmpEq, plus signed FlagLt
	OpJmp               // jump
	OpJmp0              // jump if a flag is 0
	OpJmp1              // jump if a flag is 1
	OpDelay             // suspend for some time
	OpDelayZ            // suspend until the inactive region of the current slot
	OpWait              // suspend until an event triggers
	OpEvent             // trigger a named event
	OpFork              // start a child thread
	OpJoin              // wait for all children
	OpJoinDetach        // detach all children
	OpAlloc             // allocate a context of an automatic scope
	OpFree              // free the read context
	OpDisable           // kill all threads of a scope
	OpCall              // call a Go function
	OpFinish            // request the end of the simulation
	OpStop              // request a pause of the simulation
	OpEnd               // terminate the thread
	nOpcodes
)

var opNames = [...]string{
	"noop", "pushi", "load", "store", "assign/nb", "pop", "dup", "add", "sub",
	"mul", "and", "or", "xor", "inv", "cmp/eq", "cmp/u", "cmp/s", "jmp",
	"jmp/0", "jmp/1", "delay", "delayz", "wait", "event", "fork", "join",
	"join/detach", "alloc", "free", "disable", "call", "finish", "stop", "end",
}

func (o Opcode) String() string {
	if o < 0 || o >= nOpcodes {
		return fmt.Sprintf("op(%d)", int(o))
	}
	return opNames[o]
}

// Thread flags, set by the compare instructions and tested by OpJmp0/OpJmp1.
//
const (
	FlagEq  = iota // a == b, 4-state
	FlagLt         // a < b, 4-state
	FlagEEq        // a === b
	nFlags
)

// Instr is a single thread instruction. Unused operands are left zero.
//
type Instr struct {
	Op     Opcode
	V      logic.Vector4 // OpPushI
	Net    *Net          // OpLoad, OpStore, OpAssignNB
	Target int           // jump or fork target
	Flag   int           // OpJmp0, OpJmp1
	Delay  Time          // OpDelay, OpAssignNB
	Scope  *Scope        // OpFork, OpAlloc, OpFree, OpDisable
	Event  Waitable      // OpWait, OpEvent
	Fn     func(t *Thread)
}

// A Program is an immutable sequence of instructions shared by threads.
//
type Program struct {
	code   []Instr
	labels map[string]int
}

// Label returns the address of the named label.
//
func (p *Program) Label(name string) (int, bool) {
	pc, ok := p.labels[name]
	return pc, ok
}

// Len returns the number of instructions in p.
//
func (p *Program) Len() int { return len(p.code) }

type fixup struct {
	pc    int
	label string
}

// Builder assembles a Program. Labels can be referenced before they are
// defined. Errors are sticky and reported by Build.
//
type Builder struct {
	sim    *Simulation
	code   []Instr
	labels map[string]int
	fixups []fixup
	err    error
}

// NewBuilder returns a new program builder. Immediate literals are parsed
// with the literal cache of s.
//
func NewBuilder(s *Simulation) *Builder {
	return &Builder{sim: s, labels: make(map[string]int)}
}

func (b *Builder) emit(i Instr) *Builder {
	b.code = append(b.code, i)
	return b
}

func (b *Builder) ref(label string, i Instr) *Builder {
	b.fixups = append(b.fixups, fixup{len(b.code), label})
	return b.emit(i)
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Label defines a label at the current address.
//
func (b *Builder) Label(name string) *Builder {
	if _, ok := b.labels[name]; ok {
		b.setErr(errors.Errorf("duplicate label %q", name))
	}
	b.labels[name] = len(b.code)
	return b
}

// PushI pushes a literal value. See logic.ParseVector4 for the syntax.
//
func (b *Builder) PushI(lit string) *Builder {
	v, err := b.sim.Const(lit)
	if err != nil {
		b.setErr(errors.Wrapf(err, "pushi at %d", len(b.code)))
	}
	return b.emit(Instr{Op: OpPushI, V: v})
}

// PushV pushes v.
//
func (b *Builder) PushV(v logic.Vector4) *Builder { return b.emit(Instr{Op: OpPushI, V: v}) }

func (b *Builder) storage(op Opcode, n *Net) Instr {
	if n == nil {
		b.setErr(errors.Errorf("%v at %d: nil net", op, len(b.code)))
	} else if _, ok := n.Fun.(Storage); !ok {
		b.setErr(errors.Errorf("%v at %d: net %q is not a storage net", op, len(b.code), n.Name))
	}
	return Instr{Op: op, Net: n}
}

// Load pushes the value of storage net n.
//
func (b *Builder) Load(n *Net) *Builder { return b.emit(b.storage(OpLoad, n)) }

// Store pops a value into storage net n.
//
func (b *Builder) Store(n *Net) *Builder { return b.emit(b.storage(OpStore, n)) }

// AssignNB pops a value and assigns it to n in the NBA region of the time
// slot delay units from now.
//
func (b *Builder) AssignNB(n *Net, delay Time) *Builder {
	i := b.storage(OpAssignNB, n)
	i.Delay = delay
	return b.emit(i)
}

// Pop adds an OpPop instruction.
//
func (b *Builder) Pop() *Builder { return b.emit(Instr{Op: OpPop}) }

// Dup adds an OpDup instruction.
//
func (b *Builder) Dup() *Builder { return b.emit(Instr{Op: OpDup}) }

// Add adds an OpAdd instruction.
//
func (b *Builder) Add() *Builder { return b.emit(Instr{Op: OpAdd}) }

// Sub adds an OpSub instruction.
//
func (b *Builder) Sub() *Builder { return b.emit(Instr{Op: OpSub}) }

// Mul adds an OpMul instruction.
//
func (b *Builder) Mul() *Builder { return b.emit(Instr{Op: OpMul}) }

// And adds an OpAnd instruction.
//
func (b *Builder) And() *Builder { return b.emit(Instr{Op: OpAnd}) }

// Or adds an OpOr instruction.
//
func (b *Builder) Or() *Builder { return b.emit(Instr{Op: OpOr}) }

// Xor adds an OpXor instruction.
//
func (b *Builder) Xor() *Builder { return b.emit(Instr{Op: OpXor}) }

// Inv adds an OpInv instruction.
//
func (b *Builder) Inv() *Builder { return b.emit(Instr{Op: OpInv}) }

// CmpEq adds an OpCmpEq instruction.
//
func (b *Builder) CmpEq() *Builder { return b.emit(Instr{Op: OpCmpEq}) }

// CmpU adds an OpCmpU instruction.
//
func (b *Builder) CmpU() *Builder { return b.emit(Instr{Op: OpCmpU}) }

// CmpS adds an OpCmpS instruction.
//
func (b *Builder) CmpS() *Builder { return b.emit(Instr{Op: OpCmpS}) }

// Jmp jumps to label.
//
func (b *Builder) Jmp(label string) *Builder { return b.ref(label, Instr{Op: OpJmp}) }

// Jmp0 jumps to label if flag is 0.
//
func (b *Builder) Jmp0(flag int, label string) *Builder {
	return b.ref(label, Instr{Op: OpJmp0, Flag: flag})
}

// Jmp1 jumps to label if flag is 1.
//
func (b *Builder) Jmp1(flag int, label string) *Builder {
	return b.ref(label, Instr{Op: OpJmp1, Flag: flag})
}

// Delay suspends the thread for d time units. A zero delay reschedules the
// thread at the end of the active region.
//
func (b *Builder) Delay(d Time) *Builder { return b.emit(Instr{Op: OpDelay, Delay: d}) }

// DelayZ suspends the thread until the inactive region of the current time
// slot.
//
func (b *Builder) DelayZ() *Builder { return b.emit(Instr{Op: OpDelayZ}) }

// Wait suspends the thread until ev triggers.
//
func (b *Builder) Wait(ev Waitable) *Builder { return b.emit(Instr{Op: OpWait, Event: ev}) }

// Event triggers the named event ev.
//
func (b *Builder) Event(ev *NamedEvent) *Builder { return b.emit(Instr{Op: OpEvent, Event: ev}) }

// Fork starts a child thread at label, in scope sc. The child runs before
// the parent resumes.
//
func (b *Builder) Fork(label string, sc *Scope) *Builder {
	return b.ref(label, Instr{Op: OpFork, Scope: sc})
}

// Join waits for all children to terminate.
//
func (b *Builder) Join() *Builder { return b.emit(Instr{Op: OpJoin}) }

// JoinDetach detaches all children: they keep running on their own.
//
func (b *Builder) JoinDetach() *Builder { return b.emit(Instr{Op: OpJoinDetach}) }

// Alloc allocates a context of automatic scope sc as the write context.
//
func (b *Builder) Alloc(sc *Scope) *Builder { return b.emit(Instr{Op: OpAlloc, Scope: sc}) }

// Free frees the read context, which must belong to sc.
//
func (b *Builder) Free(sc *Scope) *Builder { return b.emit(Instr{Op: OpFree, Scope: sc}) }

// Disable kills all threads in sc and its nested scopes.
//
func (b *Builder) Disable(sc *Scope) *Builder { return b.emit(Instr{Op: OpDisable, Scope: sc}) }

// Call calls fn.
//
func (b *Builder) Call(fn func(t *Thread)) *Builder { return b.emit(Instr{Op: OpCall, Fn: fn}) }

// Finish adds an OpFinish instruction.
//
func (b *Builder) Finish() *Builder { return b.emit(Instr{Op: OpFinish}) }

// Stop adds an OpStop instruction.
//
func (b *Builder) Stop() *Builder { return b.emit(Instr{Op: OpStop}) }

// End adds an OpEnd instruction.
//
func (b *Builder) End() *Builder { return b.emit(Instr{Op: OpEnd}) }

// Noop adds an OpNoop instruction.
//
func (b *Builder) Noop() *Builder { return b.emit(Instr{Op: OpNoop}) }

// Emit adds an arbitrary instruction.
//
func (b *Builder) Emit(i Instr) *Builder { return b.emit(i) }

// Build resolves labels and returns the program.
//
func (b *Builder) Build() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	code := append([]Instr(nil), b.code...)
	for _, f := range b.fixups {
		pc, ok := b.labels[f.label]
		if !ok {
			return nil, errors.Errorf("undefined label %q at %d", f.label, f.pc)
		}
		code[f.pc].Target = pc
	}
	labels := make(map[string]int, len(b.labels))
	for k, v := range b.labels {
		labels[k] = v
	}
	return &Program{code: code, labels: labels}, nil
}
