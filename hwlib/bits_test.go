package hwlib_test

import (
	"testing"

	"github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eval feeds the literals in to the ports of f, in order, and returns the
// resulting output of f.
func eval(t *testing.T, f evsim.Functor, in ...string) string {
	t.Helper()
	s, err := evsim.New(evsim.Config{})
	require.NoError(t, err)
	n := s.NewNet("dut", f)
	for i, lit := range in {
		s.ScheduleSetVector(n.Port(i), 0, s.MustConst(lit))
	}
	require.NoError(t, s.RunUntil(0))
	v, ok := n.Value()
	require.True(t, ok, "no output")
	return v.String()
}

func TestShift(t *testing.T) {
	td := []struct {
		name string
		op   hl.ShiftOp
		v    string
		amt  string
		ex   string
	}{
		{"shl", hl.OpShl, "00010110", "0010", "01011000"},
		{"shr", hl.OpShr, "10010110", "0010", "00100101"},
		{"sshr", hl.OpSshr, "10010110", "0010", "11100101"},
		{"sshr_pos", hl.OpSshr, "00010110", "0010", "00000101"},
		{"shl_x", hl.OpShl, "00010110", "00x0", "xxxxxxxx"},
		{"shl_big", hl.OpShl, "00010110", "1111", "00000000"},
		{"sshr_big", hl.OpSshr, "10010110", "1111", "11111111"},
		{"shl_xz", hl.OpShl, "0000x01z", "0001", "000x01z0"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Equal(t, d.ex, eval(t, hl.NewShift(d.op, 8, 4), d.v, d.amt))
		})
	}
}

func TestReduce(t *testing.T) {
	td := []struct {
		op hl.ReduceOp
		v  string
		ex string
	}{
		{hl.OpRAnd, "1111", "1"},
		{hl.OpRAnd, "1101", "0"},
		{hl.OpRAnd, "11x1", "x"},
		{hl.OpRAnd, "0zx1", "0"},
		{hl.OpROr, "0000", "0"},
		{hl.OpROr, "00x0", "x"},
		{hl.OpROr, "01x0", "1"},
		{hl.OpRXor, "0111", "1"},
		{hl.OpRXor, "0z11", "x"},
		{hl.OpRNand, "1111", "0"},
		{hl.OpRNor, "0000", "1"},
		{hl.OpRXnor, "0111", "0"},
	}
	for _, d := range td {
		assert.Equal(t, d.ex, eval(t, hl.NewReduce(d.op, 4), d.v), "op %d on %s", d.op, d.v)
	}
}

func TestConcat(t *testing.T) {
	assert.Equal(t, "11001", eval(t, hl.NewConcat(2, 3), "01", "110"))
	assert.Equal(t, "1x0z", eval(t, hl.NewConcat(1, 1, 1, 1), "z", "0", "x", "1"))
}

func TestRepeat(t *testing.T) {
	assert.Equal(t, "101010", eval(t, hl.NewRepeat(2, 3), "10"))
	assert.Equal(t, "xxxx", eval(t, hl.NewRepeat(1, 4), "x"))
}

func TestPart(t *testing.T) {
	assert.Equal(t, "01", eval(t, hl.NewPart(4, 1, 2), "1011"))
	assert.Equal(t, "x1", eval(t, hl.NewPart(4, 3, 2), "1011"))
}

func TestPart_width(t *testing.T) {
	for _, lit := range []string{"101", "10110"} {
		t.Run(lit, func(t *testing.T) {
			s, err := evsim.New(evsim.Config{})
			require.NoError(t, err)
			n := s.NewNet("dut", hl.NewPart(4, 1, 2))
			s.ScheduleSetVector(n.Port(0), 0, s.MustConst(lit))
			fe, ok := evsim.AsFatal(s.RunUntil(0))
			require.True(t, ok)
			assert.Equal(t, evsim.KindInternal, fe.Kind)
			assert.Equal(t, "dut", fe.Net)
		})
	}
}

func TestPartPV(t *testing.T) {
	s, err := evsim.New(evsim.Config{})
	require.NoError(t, err)
	pv := s.NewNet("pv", &hl.PartPV{Base: 2, VWid: 8})
	v := s.NewSignalNet("v", evsim.NewVariable(8))
	require.NoError(t, pv.Connect(v.Port(evsim.PortAssign)))

	s.ScheduleSetVector(pv.Port(0), 0, s.MustConst("11"))
	require.NoError(t, s.RunUntil(0))
	got, _ := v.Value()
	assert.Equal(t, "xxxx11xx", got.String())

	s.ScheduleSetVector(pv.Port(0), 1, s.MustConst("01"))
	require.NoError(t, s.RunUntil(1))
	got, _ = v.Value()
	assert.Equal(t, "xxxx01xx", got.String())
}

func TestPartVar(t *testing.T) {
	td := []struct {
		name   string
		signed bool
		v, off string
		ex     string
	}{
		{"base0", false, "10110100", "000", "0100"},
		{"base3", false, "10110100", "011", "0110"},
		{"overflow", false, "10110100", "110", "xx10"},
		{"unknown", false, "10110100", "0x1", "xxxx"},
		{"negative", true, "10110100", "110", "00xx"}, // offset -2
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Equal(t, d.ex, eval(t, hl.NewPartVar(8, 3, 4, d.signed), d.v, d.off))
		})
	}
}

func TestExtend(t *testing.T) {
	assert.Equal(t, "00001010", eval(t, &hl.Extend{Width: 8}, "1010"))
	assert.Equal(t, "11111010", eval(t, &hl.Extend{Width: 8, Signed: true}, "1010"))
	assert.Equal(t, "010", eval(t, &hl.Extend{Width: 3}, "1010"))
}

func TestPart_strength(t *testing.T) {
	s, err := evsim.New(evsim.Config{})
	require.NoError(t, err)
	src := s.NewNet("src", &evsim.Drive{S0: logic.Pull, S1: logic.Weak})
	part := s.NewNet("part", hl.NewPart(3, 0, 2))
	require.NoError(t, src.Connect(part.Port(0)))
	s.ScheduleSetVector(src.Port(0), 0, s.MustConst("110"))
	require.NoError(t, s.RunUntil(0))
	v, ok := part.Strength()
	require.True(t, ok)
	assert.Equal(t, logic.NewScalar(logic.B0, logic.Pull, logic.Weak), v.Value(0))
	assert.Equal(t, logic.NewScalar(logic.B1, logic.Pull, logic.Weak), v.Value(1))
}
