package logic_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/evsim/logic"
	"github.com/stretchr/testify/assert"
)

func TestArith(t *testing.T) {
	td := []struct {
		name string
		f    func(a, b logic.Vector4) logic.Vector4
		a, b string
		res  string
	}{
		{"add", logic.Add, "0111", "1001", "0000"},
		{"add_x", logic.Add, "0111", "100z", "xxxx"},
		{"sub", logic.Sub, "0011", "0101", "1110"},
		{"mul", logic.Mul, "0011", "0101", "1111"},
		{"mul_trunc", logic.Mul, "0110", "0011", "0010"},
		{"divu", func(a, b logic.Vector4) logic.Vector4 { return logic.Div(a, b, false) }, "1001", "0010", "0100"},
		{"divs", func(a, b logic.Vector4) logic.Vector4 { return logic.Div(a, b, true) }, "1001", "0010", "1101"},
		{"div0", func(a, b logic.Vector4) logic.Vector4 { return logic.Div(a, b, false) }, "1001", "0000", "xxxx"},
		{"modu", func(a, b logic.Vector4) logic.Vector4 { return logic.Mod(a, b, false) }, "1001", "0010", "0001"},
		{"mods", func(a, b logic.Vector4) logic.Vector4 { return logic.Mod(a, b, true) }, "1001", "0010", "1111"},
		{"pow", func(a, b logic.Vector4) logic.Vector4 { return logic.Pow(a, b, false) }, "00000011", "00000011", "00011011"},
		{"pow_wrap", func(a, b logic.Vector4) logic.Vector4 { return logic.Pow(a, b, false) }, "0011", "0011", "1011"},
		{"pow_neg_exp", func(a, b logic.Vector4) logic.Vector4 { return logic.Pow(a, b, true) }, "0010", "1111", "0000"},
		{"pow_neg_one", func(a, b logic.Vector4) logic.Vector4 { return logic.Pow(a, b, true) }, "1111", "1111", "1111"},
		{"pow_neg_one_even", func(a, b logic.Vector4) logic.Vector4 { return logic.Pow(a, b, true) }, "1111", "1110", "0001"},
		{"pow_zero_neg", func(a, b logic.Vector4) logic.Vector4 { return logic.Pow(a, b, true) }, "0000", "1111", "xxxx"},
		{"pow_signed_base", func(a, b logic.Vector4) logic.Vector4 { return logic.Pow(a, b, true) }, "1110", "0011", "1000"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Equal(t, d.res, d.f(vec(t, d.a), vec(t, d.b)).String())
		})
	}
}

func TestArith_wide(t *testing.T) {
	a := logic.FromUint64(100, ^uint64(0))
	s := logic.Add(a, logic.FromUint64(100, 1))
	for i := 0; i < 64; i++ {
		assert.Equal(t, logic.B0, s.Value(i))
	}
	assert.Equal(t, logic.B1, s.Value(64))
	assert.True(t, logic.Sub(s, logic.FromUint64(100, 1)).EEQ(a))

	f := func(x, y uint32) bool {
		a, b := logic.FromUint64(32, uint64(x)), logic.FromUint64(32, uint64(y))
		sum, ok := logic.Add(a, b).Uint64()
		if !ok || uint32(sum) != x+y {
			return false
		}
		prod, ok := logic.Mul(a, b).Uint64()
		return ok && uint32(prod) == x*y
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestCompare(t *testing.T) {
	td := []struct {
		name string
		f    func(a, b logic.Vector4) logic.Bit4
		a, b string
		res  logic.Bit4
	}{
		{"eq", logic.Eq, "1010", "1010", logic.B1},
		{"eq_known_diff", logic.Eq, "10x1", "0011", logic.B0},
		{"eq_x", logic.Eq, "10x1", "1011", logic.BX},
		{"ne_x", logic.Ne, "10x1", "1011", logic.BX},
		{"ne", logic.Ne, "1010", "1011", logic.B1},
		{"caseeq", logic.CaseEq, "10x1", "10x1", logic.B1},
		{"caseeq_z", logic.CaseEq, "10x1", "10z1", logic.B0},
		{"casene", logic.CaseNe, "10x1", "10z1", logic.B1},
		{"ltu", func(a, b logic.Vector4) logic.Bit4 { return logic.Lt(a, b, false) }, "1111", "0001", logic.B0},
		{"lts", func(a, b logic.Vector4) logic.Bit4 { return logic.Lt(a, b, true) }, "1111", "0001", logic.B1},
		{"le", func(a, b logic.Vector4) logic.Bit4 { return logic.Le(a, b, false) }, "0001", "0001", logic.B1},
		{"lt_x", func(a, b logic.Vector4) logic.Bit4 { return logic.Lt(a, b, false) }, "000x", "0001", logic.BX},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Equal(t, d.res, d.f(vec(t, d.a), vec(t, d.b)))
		})
	}
}

func TestShiftReduce(t *testing.T) {
	v := vec(t, "1x01")
	assert.Equal(t, "0100", logic.Shl(v, 2).String())
	assert.Equal(t, "001x", logic.Shr(v, 2, false).String())
	assert.Equal(t, "111x", logic.Shr(v, 2, true).String())
	assert.Equal(t, "0000", logic.Shl(v, 4).String())
	assert.Equal(t, "1111", logic.Shr(v, 9, true).String())

	assert.Equal(t, logic.B0, logic.ReduceAnd(vec(t, "1x01")))
	assert.Equal(t, logic.BX, logic.ReduceAnd(vec(t, "1x11")))
	assert.Equal(t, logic.B1, logic.ReduceOr(vec(t, "0x01")))
	assert.Equal(t, logic.BX, logic.ReduceOr(vec(t, "0z00")))
	assert.Equal(t, logic.B1, logic.ReduceXor(vec(t, "0111")))
	assert.Equal(t, logic.BX, logic.ReduceXor(vec(t, "01z1")))
	assert.Equal(t, "1101", logic.Negate(vec(t, "0011")).String())
}
