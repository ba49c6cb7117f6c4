package evsim_test

import (
	"testing"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_forceRelease(t *testing.T) {
	td := []struct {
		name     string
		sig      func() *evsim.Signal
		init     string
		released string
	}{
		{"variable", func() *evsim.Signal { return evsim.NewVariable(4) }, "xxxx", "1111"},
		{"wire", func() *evsim.Signal { return evsim.NewWire(4) }, "zzzz", "0010"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			s := newSim(t, evsim.Config{})
			sig := d.sig()
			n := s.NewSignalNet("s", sig)
			step := func(port int, lit string) string {
				t.Helper()
				if lit != "" {
					s.ScheduleSetVector(n.Port(port), 1, s.MustConst(lit))
				}
				require.NoError(t, s.RunUntil(s.Now()+1))
				return value(t, n)
			}
			require.NoError(t, s.RunUntil(0))
			assert.Equal(t, d.init, value(t, n))
			assert.Equal(t, "0001", step(evsim.PortAssign, "0001"))
			assert.Equal(t, "1111", step(evsim.PortForce, "1111"))
			assert.True(t, sig.Forced())
			assert.Equal(t, "1111", step(evsim.PortAssign, "0010"), "assignment to a forced signal")

			sig.Release(n)
			assert.False(t, sig.Forced())
			assert.Equal(t, d.released, step(evsim.PortAssign, ""))
			assert.Equal(t, "0100", step(evsim.PortAssign, "0100"))
		})
	}
}

func TestSignal_strength(t *testing.T) {
	s := newSim(t, evsim.Config{})
	n := s.NewSignalNet("v", evsim.NewVariable(4))
	b := evsim.NewBuilder(s).Label("main").PushI("4'b0000").Store(n).End()
	start(t, s, build(t, b), "main", nil)
	require.NoError(t, s.RunUntil(0))

	src := s.NewNet("src", &evsim.Drive{S0: logic.Strong, S1: logic.Strong})
	require.NoError(t, src.Connect(n.Port(evsim.PortAssign)))
	s.ScheduleSetVector(src.Port(0), 1, s.MustConst("1111"))
	require.NoError(t, s.RunUntil(1))
	assert.Equal(t, "1111", value(t, n))
	st, ok := n.Strength()
	require.True(t, ok)
	assert.Equal(t, logic.FromVector4(s.MustConst("1111"), logic.Strong, logic.Strong), st)
}
