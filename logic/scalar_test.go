package logic_test

import (
	"testing"
	"testing/quick"

	"github.com/db47h/evsim/logic"
	"github.com/stretchr/testify/assert"
)

func TestBit4(t *testing.T) {
	bits := []logic.Bit4{logic.B0, logic.B1, logic.BZ, logic.BX}
	and := [4][4]logic.Bit4{
		{0, 0, 0, 0},
		{0, 1, 3, 3},
		{0, 3, 3, 3},
		{0, 3, 3, 3},
	}
	or := [4][4]logic.Bit4{
		{0, 1, 3, 3},
		{1, 1, 1, 1},
		{3, 1, 3, 3},
		{3, 1, 3, 3},
	}
	for _, a := range bits {
		for _, b := range bits {
			assert.Equal(t, and[a][b], logic.And(a, b), "%v & %v", a, b)
			assert.Equal(t, or[a][b], logic.Or(a, b), "%v | %v", a, b)
			assert.Equal(t, logic.And(a, b), logic.And(b, a))
			if a.IsXZ() || b.IsXZ() {
				assert.Equal(t, logic.BX, logic.Xor(a, b))
			} else {
				assert.Equal(t, a^b, logic.Xor(a, b))
			}
		}
	}
	assert.Equal(t, logic.B1, logic.B0.Not())
	assert.Equal(t, logic.BX, logic.BZ.Not())
	assert.Equal(t, logic.BX, logic.BZ.Z2X())
	assert.Equal(t, "01zx", logic.B0.String()+logic.B1.String()+logic.BZ.String()+logic.BX.String())

	assert.True(t, logic.Edge(logic.B0, logic.B1) > 0)
	assert.True(t, logic.Edge(logic.BX, logic.B1) > 0)
	assert.True(t, logic.Edge(logic.B1, logic.BZ) < 0)
	assert.Zero(t, logic.Edge(logic.BX, logic.BZ))
	assert.Zero(t, logic.Edge(logic.B1, logic.B1))

	c := logic.B1
	assert.Equal(t, logic.B1, logic.AddWithCarry(logic.B1, logic.B1, &c))
	assert.Equal(t, logic.B1, c)
	assert.Equal(t, logic.BX, logic.AddWithCarry(logic.BZ, logic.B1, &c))
	assert.Equal(t, logic.BX, c)
}

func TestScalar(t *testing.T) {
	td := []struct {
		v      logic.Bit4
		s0, s1 logic.Strength
		str    string
		val    logic.Bit4
	}{
		{logic.B1, logic.Strong, logic.Strong, "St1", logic.B1},
		{logic.B0, logic.Weak, logic.Weak, "We0", logic.B0},
		{logic.BX, logic.Strong, logic.Strong, "StX", logic.BX},
		{logic.B1, logic.HiZ, logic.HiZ, "HiZ", logic.BZ},
		{logic.BZ, logic.Strong, logic.Strong, "HiZ", logic.BZ},
		{logic.B0, logic.Supply, logic.Pull, "Su0", logic.B0},
	}
	for _, d := range td {
		s := logic.NewScalar(d.v, d.s0, d.s1)
		assert.Equal(t, d.str, s.String())
		assert.Equal(t, d.val, s.Value())
	}
	s := logic.NewScalar(logic.BX, logic.Pull, logic.Strong)
	assert.Equal(t, logic.Pull, s.Strength0())
	assert.Equal(t, logic.Strong, s.Strength1())
	assert.Equal(t, logic.HiZ, logic.NewScalar(logic.B1, logic.Pull, logic.Weak).Strength0())
}

func TestResolve(t *testing.T) {
	st1 := logic.NewScalar(logic.B1, logic.Strong, logic.Strong)
	st0 := logic.NewScalar(logic.B0, logic.Strong, logic.Strong)
	we0 := logic.NewScalar(logic.B0, logic.Weak, logic.Weak)
	su0 := logic.NewScalar(logic.B0, logic.Supply, logic.Supply)
	stx := logic.NewScalar(logic.BX, logic.Strong, logic.Strong)
	var hiz logic.Scalar

	td := []struct {
		name string
		a, b logic.Scalar
		r    logic.Scalar
	}{
		{"strong_wins", st1, we0, st1},
		{"tie", st1, st0, stx},
		{"hiz_identity", hiz, we0, we0},
		{"same", st0, st0, st0},
		{"supply_sweeps_x", stx, su0, su0},
		{"x_absorbs_equal", stx, st1, stx},
		{"weak_vs_x", stx, we0, stx},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Equal(t, d.r, logic.Resolve(d.a, d.b), "%v + %v", d.a, d.b)
			assert.Equal(t, d.r, logic.Resolve(d.b, d.a), "%v + %v", d.b, d.a)
		})
	}
	assert.Equal(t, hiz, logic.ResolveAll())
	assert.Equal(t, "StX", logic.ResolveAll(we0, st1, st0).String())

	// two ambiguous ranges widen to their union
	a := logic.NewScalar(logic.BX, logic.Weak, logic.Pull)
	b := logic.NewScalar(logic.BX, logic.Strong, logic.Medium)
	r := logic.Resolve(a, b)
	assert.Equal(t, logic.Strong, r.Strength0())
	assert.Equal(t, logic.Pull, r.Strength1())
	assert.Equal(t, r, logic.Resolve(b, a))
}

// driver builds an unambiguous scalar from a random byte.
func driver(x uint8) logic.Scalar {
	s := logic.Strength(x & 7)
	return logic.NewScalar(logic.Bit4(x>>3&1), s, s)
}

func TestResolve_orderIndependence(t *testing.T) {
	f := func(xs []uint8) bool {
		ds := make([]logic.Scalar, len(xs))
		var top logic.Strength
		for i, x := range xs {
			ds[i] = driver(x)
			if s := logic.Strength(x & 7); s > top {
				top = s
			}
		}
		exp := logic.Scalar(0)
		if top > logic.HiZ {
			v := logic.BZ
			for _, x := range xs {
				if logic.Strength(x&7) != top {
					continue
				}
				b := logic.Bit4(x >> 3 & 1)
				if v == logic.BZ {
					v = b
				} else if v != b {
					v = logic.BX
				}
			}
			exp = logic.NewScalar(v, top, top)
		}
		rev := make([]logic.Scalar, len(ds))
		for i, d := range ds {
			rev[len(ds)-1-i] = d
		}
		rot := ds
		if len(ds) > 1 {
			rot = append(append([]logic.Scalar(nil), ds[1:]...), ds[0])
		}
		r := logic.ResolveAll(ds...)
		return r == exp && logic.ResolveAll(rev...) == r && logic.ResolveAll(rot...) == r
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_commutative(t *testing.T) {
	mk := func(x uint8) logic.Scalar {
		return logic.NewScalar(logic.Bit4(x&3), logic.Strength(x>>2&7), logic.Strength(x>>5))
	}
	f := func(a, b uint8) bool {
		x, y := mk(a), mk(b)
		return logic.Resolve(x, y) == logic.Resolve(y, x)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSwitchStrength(t *testing.T) {
	assert.Equal(t, logic.Strong, logic.SwitchStrength(logic.Supply, false))
	assert.Equal(t, logic.Pull, logic.SwitchStrength(logic.Supply, true))
	assert.Equal(t, logic.Medium, logic.SwitchStrength(logic.Large, true))
	assert.Equal(t, logic.HiZ, logic.SwitchStrength(logic.HiZ, true))
}
