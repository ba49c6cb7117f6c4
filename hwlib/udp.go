// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strings"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
	"github.com/pkg/errors"
)

// bitSet is a set of input values: bit 0 for 0, bit 1 for 1, bit 2 for X.
// Z inputs are matched as X.
type bitSet uint8

const (
	set0   bitSet = 1
	set1   bitSet = 2
	setX   bitSet = 4
	setAny        = set0 | set1 | setX
)

func (s bitSet) has(b logic.Bit4) bool {
	switch b {
	case logic.B0:
		return s&set0 != 0
	case logic.B1:
		return s&set1 != 0
	}
	return s&setX != 0
}

func levelSet(c byte) (bitSet, bool) {
	switch c {
	case '0':
		return set0, true
	case '1':
		return set1, true
	case 'x', 'X':
		return setX, true
	case 'b', 'B':
		return set0 | set1, true
	case 'l', 'L':
		return set0 | setX, true
	case 'h', 'H':
		return set1 | setX, true
	case '?':
		return setAny, true
	}
	return 0, false
}

// edgeSets returns the from and to sets of an edge shorthand.
func edgeSets(c byte) (from, to bitSet, ok bool) {
	switch c {
	case 'r', 'R':
		return set0, set1, true
	case 'f', 'F':
		return set1, set0, true
	case 'p', 'P':
		return set0 | setX, set1 | setX, true
	case 'n', 'N':
		return set1 | setX, set0 | setX, true
	case '*':
		return setAny, setAny, true
	}
	return 0, 0, false
}

type udpRow struct {
	in   []bitSet // level of each input, or the final value of the edge input
	q    bitSet   // current output, sequential only
	edge int      // edge input, -1 for level rows
	from bitSet   // initial value of the edge input
	// out is ignored when keep is set ('-': no change)
	out  logic.Bit4
	keep bool
}

func (r *udpRow) match(in []logic.Bit4, q logic.Bit4, seq bool) bool {
	if seq && !r.q.has(q) {
		return false
	}
	for i, s := range r.in {
		if !s.has(in[i]) {
			return false
		}
	}
	return true
}

// A UDP is the compiled table of a user defined primitive: a one bit output
// function of one bit inputs described by a truth table.
//
// Rows of a combinational UDP have the form "inputs:output". The output of a
// sequential UDP is also its state and rows have the form
// "inputs:state:next". Blanks are ignored.
//
// Inputs accept the levels 0, 1, x, b (0 or 1), l (0 or x), h (1 or x) and
// ? (any). In sequential UDPs, at most one input per row may be an edge:
// (vw) with v and w levels, or one of the shorthands r (01), f (10),
// p (01, 0x, x1), n (10, 1x, x0) and * (any change). next may be - for no
// change.
//
// Level rows take precedence over edge rows. Inputs that match no row give
// an X output.
//
type UDP struct {
	Name   string
	inputs int
	seq    bool
	init   logic.Bit4
	levels []udpRow
	edges  []udpRow
}

// NewCombUDP compiles a combinational UDP with the given number of inputs.
//
func NewCombUDP(name string, inputs int, rows ...string) (*UDP, error) {
	return compileUDP(&UDP{Name: name, inputs: inputs, init: logic.BX}, rows)
}

// NewSeqUDP compiles a sequential UDP with the given number of inputs and
// initial state.
//
func NewSeqUDP(name string, inputs int, init logic.Bit4, rows ...string) (*UDP, error) {
	if init == logic.BZ {
		init = logic.BX
	}
	return compileUDP(&UDP{Name: name, inputs: inputs, seq: true, init: init}, rows)
}

func compileUDP(u *UDP, rows []string) (*UDP, error) {
	if u.inputs < 1 {
		return nil, errors.Errorf("udp %s: invalid input count %d", u.Name, u.inputs)
	}
	for _, row := range rows {
		r, err := u.parseRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "udp %s: row %q", u.Name, row)
		}
		if r.edge < 0 {
			u.levels = append(u.levels, r)
		} else {
			u.edges = append(u.edges, r)
		}
	}
	return u, nil
}

func (u *UDP) parseRow(row string) (r udpRow, err error) {
	row = strings.Map(func(c rune) rune {
		if c == ' ' || c == '\t' {
			return -1
		}
		return c
	}, row)
	fields := strings.Split(row, ":")
	if u.seq && len(fields) != 3 || !u.seq && len(fields) != 2 {
		return r, errors.New("wrong number of fields")
	}
	r.edge = -1
	in := fields[0]
	for i := 0; i < len(in); i++ {
		c := in[i]
		if s, ok := levelSet(c); ok {
			r.in = append(r.in, s)
			continue
		}
		if !u.seq {
			return r, errors.Errorf("invalid input %q", c)
		}
		if r.edge >= 0 {
			return r, errors.New("more than one edge")
		}
		r.edge = len(r.in)
		if c == '(' {
			if i+3 >= len(in) || in[i+3] != ')' {
				return r, errors.New("unterminated edge")
			}
			var ok0, ok1 bool
			var to bitSet
			r.from, ok0 = levelSet(in[i+1])
			to, ok1 = levelSet(in[i+2])
			if !ok0 || !ok1 {
				return r, errors.Errorf("invalid edge %q", in[i:i+4])
			}
			r.in = append(r.in, to)
			i += 3
			continue
		}
		from, to, ok := edgeSets(c)
		if !ok {
			return r, errors.Errorf("invalid input %q", c)
		}
		r.from = from
		r.in = append(r.in, to)
	}
	if len(r.in) != u.inputs {
		return r, errors.Errorf("got %d inputs, want %d", len(r.in), u.inputs)
	}
	out := fields[len(fields)-1]
	if u.seq {
		var ok bool
		if len(fields[1]) != 1 {
			return r, errors.New("invalid state")
		}
		if r.q, ok = levelSet(fields[1][0]); !ok {
			return r, errors.Errorf("invalid state %q", fields[1])
		}
	}
	if len(out) != 1 {
		return r, errors.New("invalid output")
	}
	switch out[0] {
	case '0':
		r.out = logic.B0
	case '1':
		r.out = logic.B1
	case 'x', 'X':
		r.out = logic.BX
	case '-':
		if !u.seq {
			return r, errors.New("no change output in a combinational udp")
		}
		r.keep = true
	default:
		return r, errors.Errorf("invalid output %q", out)
	}
	return r, nil
}

// Inputs returns the number of inputs of u.
//
func (u *UDP) Inputs() int { return u.inputs }

// Sequential returns true if u is a sequential UDP.
//
func (u *UDP) Sequential() bool { return u.seq }

// next returns the output of u after input i changed from old.
func (u *UDP) next(in []logic.Bit4, q logic.Bit4, i int, old logic.Bit4) logic.Bit4 {
	for k := range u.levels {
		r := &u.levels[k]
		if r.match(in, q, u.seq) {
			if r.keep {
				return q
			}
			return r.out
		}
	}
	if u.seq {
		for k := range u.edges {
			r := &u.edges[k]
			if r.edge == i && r.from.has(old) && r.match(in, q, true) {
				if r.keep {
					return q
				}
				return r.out
			}
		}
	}
	return logic.BX
}

// New returns a new instance of u.
//
func (u *UDP) New() *UDPGate {
	in := make([]logic.Bit4, u.inputs)
	for i := range in {
		in[i] = logic.BX
	}
	return &UDPGate{def: u, in: in, q: u.init}
}

// UDPGate is an instance of a UDP. All its ports are one bit wide.
//
type UDPGate struct {
	def *UDP
	in  []logic.Bit4
	q   logic.Bit4
}

// Init implements evsim.Initializer.
//
func (g *UDPGate) Init(n *evsim.Net) { n.SendVec4(logic.FromBits(g.q), nil) }

// RecvVec4 implements evsim.Functor.
//
func (g *UDPGate) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	p.Net.CheckPort(p, len(g.in))
	p.Net.CheckWidth(p, v, 1)
	b := v.Value(0).Z2X()
	old := g.in[p.Index]
	if b == old {
		return
	}
	g.in[p.Index] = b
	q := g.def.next(g.in, g.q, p.Index, old)
	if q != g.q {
		g.q = q
		p.Net.SendVec4(logic.FromBits(q), nil)
	}
}

// SpecUDP returns the PartSpec of u.
//
//	Inputs: in[u.Inputs()]
//	Outputs: out
//
func SpecUDP(u *UDP) *netlist.PartSpec {
	return spec(u.Name, bus(u.inputs, pIn), 1, func() evsim.Functor { return u.New() })
}
