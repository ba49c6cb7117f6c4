package hwlib_test

import (
	"testing"

	"github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/hwtest"
	"github.com/db47h/evsim/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysFunc_builtins(t *testing.T) {
	td := []struct {
		name string
		arg  string
		ex   uint64
	}{
		{"$clog2", "00001001", 4},
		{"$clog2", "00001000", 3},
		{"$clog2", "00000001", 0},
		{"$countones", "10110001", 4},
		{"$onehot", "00010000", 1},
		{"$onehot", "00010001", 0},
		{"$onehot0", "00000000", 1},
		{"$isunknown", "0000z000", 1},
		{"$isunknown", "00000000", 0},
	}
	for _, d := range td {
		fn, ok := hl.LookupSysFunc(d.name)
		require.True(t, ok, d.name)
		v, ok := fn(mustParse(t, d.arg)).Uint64()
		require.True(t, ok)
		assert.Equal(t, d.ex, v, "%s(%s)", d.name, d.arg)
	}
}

func TestRegisterSysFunc(t *testing.T) {
	assert.Error(t, hl.RegisterSysFunc("double", func(args ...logic.Vector4) logic.Vector4 { return args[0] }))
	assert.Error(t, hl.RegisterSysFunc("$", func(args ...logic.Vector4) logic.Vector4 { return args[0] }))
	assert.Error(t, hl.RegisterSysFunc("$double", nil))

	require.NoError(t, hl.RegisterSysFunc("$double", func(args ...logic.Vector4) logic.Vector4 {
		return logic.Shl(args[0], 1)
	}))
	assert.Contains(t, hl.SysFuncs(), "$double")
	assert.Contains(t, hl.SysFuncs(), "$clog2")

	_, err := hl.NewSysFunc("$nope", 1)
	assert.Error(t, err)

	ps, err := hl.SpecSysFunc("$double", 4, 4)
	require.NoError(t, err)
	h := hwtest.New(t, evsim.Config{})
	h.Input("a", 4)
	h.Add(ps.NewPart("in[0]=a, out=out"), sink())
	h.Set("a", "0011")
	h.Settle()
	assert.Equal(t, "0110", h.String("out"))
}

func TestSysFunc_part(t *testing.T) {
	ps, err := hl.SpecSysFunc("$countones", 32, 8)
	require.NoError(t, err)
	h := hwtest.New(t, evsim.Config{})
	h.Input("a", 8)
	h.Add(ps.NewPart("in[0]=a, out=out"), sink())
	h.Set("a", "8'hff")
	h.Settle()
	v, ok := h.Get("out").Uint64()
	require.True(t, ok)
	assert.EqualValues(t, 8, v)
}

func TestConstN(t *testing.T) {
	c, err := hl.ConstN("4'b10x1")
	require.NoError(t, err)
	c8, err := hl.ConstN("C8<661550>")
	require.NoError(t, err)

	h := hwtest.New(t, evsim.Config{})
	h.Add(c("out=k"), hl.Output(func(logic.Vector4) {})("in=k"))
	h.Add(c8("out=k8"), hl.Output(func(logic.Vector4) {})("in=k8"))
	h.Settle()
	assert.Equal(t, "10x1", h.String("k"))
	assert.Equal(t, "10", h.String("k8"))

	_, err = hl.ConstN("4'b10q1")
	assert.Error(t, err)
}

func TestInput_probe(t *testing.T) {
	var got []string
	h := hwtest.New(t, evsim.Config{})
	h.Input("a", 2)
	h.Add(hl.Output(func(v logic.Vector4) { got = append(got, v.String()) })("in=a"))
	h.Settle()
	h.Set("a", "01")
	h.Settle()
	h.Set("a", "01")
	h.Settle()
	h.Set("a", "1z")
	h.Step(5)
	assert.Equal(t, []string{"xx", "01", "1z"}, got)
}

func mustParse(t *testing.T, lit string) logic.Vector4 {
	t.Helper()
	v, err := logic.ParseVector4(lit)
	require.NoError(t, err)
	return v
}
