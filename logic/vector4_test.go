package logic_test

import (
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/db47h/evsim/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randVec(r *rand.Rand, size int) logic.Vector4 {
	v := logic.NewVector4(size, logic.B0)
	for i := 0; i < size; i++ {
		v.SetBit(i, logic.Bit4(r.Intn(4)))
	}
	return v
}

func vec(t *testing.T, s string) logic.Vector4 {
	t.Helper()
	v, err := logic.ParseVector4(s)
	require.NoError(t, err)
	return v
}

func TestVector4_laws(t *testing.T) {
	f := func(seed int64, sz uint8, off uint8) bool {
		r := rand.New(rand.NewSource(seed))
		size := int(sz)
		a, b := randVec(r, size), randVec(r, size)
		if !a.EEQ(a) || a.EEQ(b) != b.EEQ(a) {
			return false
		}
		if size == 0 {
			return true
		}
		o := int(off) % size
		sub := randVec(r, r.Intn(size-o)+1)
		a.SetVec(o, sub)
		if !a.Subvalue(o, sub.Size()).EEQ(sub) {
			return false
		}
		// writing the same value again is not a change
		return !a.SetVec(o, sub.Clone())
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestVector4_SetVec(t *testing.T) {
	v := logic.NewVector4(130, logic.BZ)
	sub := vec(t, "10x1")
	assert.True(t, v.SetVec(62, sub))
	assert.False(t, v.SetVec(62, sub))
	assert.Equal(t, logic.B1, v.Value(62))
	assert.Equal(t, logic.BX, v.Value(63))
	assert.Equal(t, logic.B0, v.Value(64))
	assert.Equal(t, logic.B1, v.Value(65))
	assert.Equal(t, logic.BZ, v.Value(66))
	assert.Equal(t, logic.BZ, v.Value(61))
	assert.Panics(t, func() { v.SetVec(128, sub) })
	assert.False(t, v.SetVec(130, logic.Vector4{}))
}

func TestVector4_Subvalue(t *testing.T) {
	v := vec(t, "1100")
	assert.Equal(t, "10", v.Subvalue(1, 2).String())
	assert.Equal(t, "xx11", v.Subvalue(2, 4).String())
	assert.Equal(t, "0x", v.Subvalue(-1, 2).String())
	assert.Equal(t, 0, v.Subvalue(0, 0).Size())
}

func TestVector4_ops(t *testing.T) {
	a := vec(t, "01xz01xz01xz01xz")
	b := vec(t, "00001111xxxxzzzz")
	assert.Equal(t, "000001xx0xxx0xxx", a.And(b).String())
	assert.Equal(t, "01xx1111x1xxx1xx", a.Or(b).String())
	assert.Equal(t, "01xx10xxxxxxxxxx", a.Xor(b).String())
	assert.Equal(t, "10xx10xx10xx10xx", a.Invert().String())
	assert.True(t, a.HasXZ())
	assert.False(t, vec(t, "0101").HasXZ())
	assert.Panics(t, func() { a.And(vec(t, "01")) })

	c := logic.Concat(vec(t, "01"), vec(t, "xz"), vec(t, "1"))
	assert.Equal(t, "1xz01", c.String())
	assert.Equal(t, "01xz", vec(t, "01xz").Clone().String())
	assert.Equal(t, "0x01", vec(t, "0z01").Z2X().String())
	assert.Equal(t, 2, vec(t, "1x1z0").Ones())
}

func TestVector4_Resize(t *testing.T) {
	v := vec(t, "1x01")
	td := []struct {
		name string
		wid  int
		pad  logic.Pad
		res  string
	}{
		{"zero", 6, logic.PadZero, "001x01"},
		{"sign", 6, logic.PadSign, "111x01"},
		{"x", 6, logic.PadX, "xx1x01"},
		{"z", 6, logic.PadZ, "zz1x01"},
		{"truncate", 2, logic.PadX, "01"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			assert.Equal(t, d.res, v.Resize(d.wid, d.pad).String())
		})
	}
}

func TestVector4_ints(t *testing.T) {
	x, ok := logic.FromUint64(8, 0x1a5).Uint64()
	assert.True(t, ok)
	assert.Equal(t, uint64(0xa5), x)
	_, ok = vec(t, "1x").Uint64()
	assert.False(t, ok)
	i, ok := vec(t, "1110").Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(-2), i)
	i, ok = vec(t, "0110").Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(6), i)

	f := func(x uint64) bool {
		y, ok := logic.FromUint64(64, x).Uint64()
		return ok && x == y
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestVector8(t *testing.T) {
	v4 := vec(t, "01xz")
	v8 := logic.FromVector4(v4, logic.Strong, logic.Weak)
	assert.Equal(t, "St0 We1 StX HiZ", v8.String())
	assert.True(t, v8.Reduce4().EEQ(v4))
	assert.Equal(t, logic.NewScalar(logic.BX, logic.Strong, logic.Weak), v8.Value(1))

	w := v8.PartExpand(8, 2)
	assert.Equal(t, 8, w.Size())
	assert.Equal(t, "zz01xzzz", w.Reduce4().String())
	assert.True(t, w.Subvalue(2, 4).EEQ(v8))

	o := logic.NewVector8(4)
	assert.True(t, o.SetVec(0, v8))
	assert.False(t, o.SetVec(0, v8))
	assert.True(t, o.EEQ(v8))

	st := logic.FromVector4(vec(t, "1111"), logic.Strong, logic.Strong)
	r := logic.ResolveVector(v8, st)
	assert.Equal(t, "x1x1", r.Reduce4().String())
	assert.Equal(t, "StX St1 StX St1", r.String())
}
