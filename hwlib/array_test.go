package hwlib_test

import (
	"testing"

	"github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tally counts the values it receives.
type tally struct{ n int }

func (c *tally) RecvVec4(evsim.Port, logic.Vector4, *evsim.Context) { c.n++ }

func TestArray(t *testing.T) {
	s, err := evsim.New(evsim.Config{})
	require.NoError(t, err)
	arr := hl.NewArray(4, 8, 2)
	arr.Preload(1, mustParse(t, "8'h5a"))
	mem := s.NewNet("mem", arr)
	w1 := s.NewNet("w1", hl.NewPart(32, 8, 8))
	w2 := s.NewNet("w2", hl.NewPart(32, 16, 8))
	require.NoError(t, mem.Connect(w1.Port(0), w2.Port(0)))
	c1 := &tally{}
	require.NoError(t, w1.Connect(s.NewNet("c1", c1).Port(0)))

	word := func(n *evsim.Net) string {
		t.Helper()
		v, ok := n.Value()
		require.True(t, ok)
		return v.String()
	}
	drive := func(at evsim.Time, port int, lit string) {
		s.ScheduleSetVector(mem.Port(port), at-s.Now(), s.MustConst(lit))
	}

	require.NoError(t, s.RunUntil(0))
	assert.Equal(t, "01011010", word(w1))
	assert.Equal(t, "xxxxxxxx", word(w2))
	assert.Equal(t, 1, c1.n)

	drive(1, hl.ArrayAddr, "2'd2")
	drive(1, hl.ArrayData, "8'hff")
	drive(1, hl.ArrayWE, "1")
	drive(1, hl.ArrayClock, "0")
	drive(2, hl.ArrayClock, "1")
	require.NoError(t, s.RunUntil(2))
	assert.Equal(t, "11111111", word(w2))
	assert.Equal(t, "11111111", arr.Word(2).String())
	assert.Equal(t, "xxxxxxxx11111111"+"01011010xxxxxxxx", word(mem))
	// the write did not reach the reader of word 1
	assert.Equal(t, 1, c1.n)

	// write enable low
	drive(3, hl.ArrayWE, "0")
	drive(3, hl.ArrayAddr, "2'd1")
	drive(3, hl.ArrayClock, "0")
	drive(4, hl.ArrayClock, "1")
	require.NoError(t, s.RunUntil(4))
	assert.Equal(t, "01011010", word(w1))

	// unknown address
	drive(5, hl.ArrayWE, "1")
	drive(5, hl.ArrayAddr, "2'bx1")
	drive(5, hl.ArrayClock, "0")
	drive(6, hl.ArrayClock, "1")
	require.NoError(t, s.RunUntil(6))
	assert.Equal(t, "01011010", word(w1))
	assert.Equal(t, 1, c1.n)

	// direct write, as done by a thread
	s.ScheduleActive(1, func() { arr.Write(mem, 1, mustParse(t, "8'h01")) })
	require.NoError(t, s.RunUntil(7))
	assert.Equal(t, "00000001", word(w1))
	assert.Equal(t, 2, c1.n)

	s.ScheduleActive(1, func() { arr.Write(mem, 1, mustParse(t, "4'h1")) })
	fe, ok := evsim.AsFatal(s.RunUntil(8))
	require.True(t, ok)
	assert.Equal(t, "mem", fe.Net)
}
