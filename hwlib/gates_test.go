package hwlib_test

import (
	"strings"
	"testing"
	"testing/quick"

	"github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/hwtest"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

func sink() netlist.Part { return hl.Output(func(logic.Vector4) {})("in=out") }

// testGate checks the truth table of a one bit part. Row i of result is the
// output for inputs set to the bits of i, the first input being the most
// significant.
func testGate(t *testing.T, gate netlist.NewPartFn, result string) {
	t.Helper()
	part := gate("").PartSpec
	h := hwtest.New(t, evsim.Config{})
	var w strings.Builder
	for _, n := range part.Inputs {
		h.Input(n, 1)
		w.WriteString(n + "=" + n + ",")
	}
	w.WriteString("out=out")
	h.Add(gate(w.String()), sink())

	tot := 1 << uint(len(part.Inputs))
	for i := 0; i < tot; i++ {
		for bit, n := range part.Inputs {
			h.SetVec(n, logic.FromUint64(1, uint64(i>>uint(len(part.Inputs)-bit-1))&1))
		}
		h.Settle()
		if got := h.String("out"); got != result[i:i+1] {
			t.Errorf("%s row %d: expected %s, got %s", part.Name, i, result[i:i+1], got)
		}
	}
}

func Test_gate_builtin(t *testing.T) {
	td := []struct {
		name   string
		gate   netlist.NewPartFn
		result string
	}{
		{"NOT", hl.Not, "10"},
		{"AND", hl.And, "0001"},
		{"NAND", hl.Nand, "1110"},
		{"OR", hl.Or, "0111"},
		{"NOR", hl.Nor, "1000"},
		{"XOR", hl.Xor, "0110"},
		{"XNOR", hl.Xnor, "1001"},
		{"MUX", hl.Mux, "00011011"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.gate, d.result)
		})
	}
}

func Test_gate_unknown(t *testing.T) {
	td := []struct {
		op       hl.GateOp
		a, b, ex string
	}{
		{hl.OpAnd, "0xz1", "xxxx", "0xxx"},
		{hl.OpOr, "0xz1", "xxxx", "xxx1"},
		{hl.OpXor, "0101", "zz01", "xx00"},
		{hl.OpNand, "0000", "xxxx", "1111"},
		{hl.OpNor, "1111", "zzzz", "0000"},
	}
	for _, d := range td {
		t.Run(d.op.String(), func(t *testing.T) {
			h := hwtest.New(t, evsim.Config{})
			h.Input("a", 4).Input("b", 4)
			h.Add(hl.GateN(d.op, 4, 2).NewPart("in[0]=a, in[1]=b, out=out"), sink())
			h.Set("a", d.a)
			h.Set("b", d.b)
			h.Settle()
			if got := h.String("out"); got != d.ex {
				t.Fatalf("%s %s %s: expected %s, got %s", d.a, d.op, d.b, d.ex, got)
			}
		})
	}
}

func Test_buffers(t *testing.T) {
	td := []struct {
		op     hl.GateOp
		in, ex string
	}{
		{hl.OpBuf, "01xz", "01xx"},
		{hl.OpNot, "01xz", "10xx"},
		{hl.OpBufZ, "01xz", "01xz"},
	}
	for _, d := range td {
		t.Run(d.op.String(), func(t *testing.T) {
			h := hwtest.New(t, evsim.Config{})
			h.Input("a", 4)
			h.Add(hl.GateN(d.op, 4, 1).NewPart("in=a, out=out"), sink())
			h.Set("a", d.in)
			h.Settle()
			if got := h.String("out"); got != d.ex {
				t.Fatalf("%s(%s): expected %s, got %s", d.op, d.in, d.ex, got)
			}
		})
	}
}

func Test_gateN_builtin(t *testing.T) {
	td := []struct {
		op   hl.GateOp
		ctrl func(a, b uint16) uint16
	}{
		{hl.OpAnd, func(a, b uint16) uint16 { return a & b }},
		{hl.OpNand, func(a, b uint16) uint16 { return ^(a & b) }},
		{hl.OpOr, func(a, b uint16) uint16 { return a | b }},
		{hl.OpNor, func(a, b uint16) uint16 { return ^(a | b) }},
		{hl.OpXor, func(a, b uint16) uint16 { return a ^ b }},
		{hl.OpXnor, func(a, b uint16) uint16 { return ^(a ^ b) }},
	}

	for _, d := range td {
		t.Run(d.op.String(), func(t *testing.T) {
			h := hwtest.New(t, evsim.Config{})
			h.Input("a", 16).Input("b", 16)
			h.Add(hl.GateN(d.op, 16, 2).NewPart("in[0]=a, in[1]=b, out=out"), sink())

			f := func(x, y uint16) bool {
				h.SetVec("a", logic.FromUint64(16, uint64(x)))
				h.SetVec("b", logic.FromUint64(16, uint64(y)))
				h.Settle()
				out, ok := h.Get("out").Uint64()
				return ok && uint16(out) == d.ctrl(x, y)
			}
			if err := quick.Check(f, nil); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestOrNWays(t *testing.T) {
	or4, err := netlist.Chip("myOr4Way", "in[4]", "out", 1,
		hl.Or("a=in[0], b=in[1], out=o1"),
		hl.Or("a=in[2], b=in[3], out=o2"),
		hl.Or("a=o1, b=o2, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.OrNWay(4), or4)
}

func TestAndNWays(t *testing.T) {
	and4, err := netlist.Chip("myAnd4Way", "in[4]", "out", 1,
		hl.And("a=in[0], b=in[1], out=o1"),
		hl.And("a=in[2], b=in[3], out=o2"),
		hl.And("a=o1, b=o2, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.AndNWay(4), and4)
}

func TestXorChip(t *testing.T) {
	xor, err := netlist.Chip("myXor", "a, b", "out", 1,
		hl.Nand("a=a, b=b, out=nandAB"),
		hl.Nand("a=a, b=nandAB, out=w0"),
		hl.Nand("a=b, b=nandAB, out=w1"),
		hl.Nand("a=w0, b=w1, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.Xor, xor)

	// nested chips
	xnor, err := netlist.Chip("myXnor", "a, b", "out", 1,
		xor("a=a, b=b, out=xorAB"),
		hl.Not("in=xorAB, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, hl.Xnor, xnor)
}
