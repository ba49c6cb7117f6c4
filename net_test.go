package evsim_test

import (
	"testing"

	"github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/logic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// probe records every value it receives.
type probe struct {
	vals []string
	ctxs []*evsim.Context
}

func (p *probe) RecvVec4(_ evsim.Port, v logic.Vector4, ctx *evsim.Context) {
	p.vals = append(p.vals, v.String())
	p.ctxs = append(p.ctxs, ctx)
}

func parse(t *testing.T, lit string) logic.Vector4 {
	t.Helper()
	v, err := logic.ParseVector4(lit)
	require.NoError(t, err)
	return v
}

func value(t *testing.T, n *evsim.Net) string {
	t.Helper()
	v, ok := n.Value()
	require.True(t, ok, "net %s has no value", n.Name)
	return v.String()
}

func TestNet_noRedundantPropagation(t *testing.T) {
	s := newSim(t, evsim.Config{})
	and := s.NewNet("and", hl.NewGate(hl.OpAnd, 1, 2))
	p := &probe{}
	require.NoError(t, and.Connect(s.NewNet("probe", p).Port(0)))

	s.ScheduleSetVector(and.Port(0), 0, s.MustConst("1"))
	s.ScheduleSetVector(and.Port(1), 0, s.MustConst("1"))
	require.NoError(t, s.RunUntil(0))
	assert.Equal(t, []string{"1"}, p.vals)

	before := s.Stats().Scheduled[evsim.Active]
	s.ScheduleSetVector(and.Port(0), 1, s.MustConst("1"))
	require.NoError(t, s.RunUntil(1))
	// only the delivery itself was scheduled
	assert.EqualValues(t, 1, s.Stats().Scheduled[evsim.Active]-before)
	assert.Equal(t, []string{"1"}, p.vals)

	// an input change that leaves the output unchanged is not propagated
	s.ScheduleSetVector(and.Port(0), 1, s.MustConst("x"))
	s.ScheduleSetVector(and.Port(1), 1, s.MustConst("0"))
	require.NoError(t, s.RunUntil(2))
	assert.Equal(t, []string{"1", "0"}, p.vals)
}

func TestNet_convergingLoop(t *testing.T) {
	s := newSim(t, evsim.Config{MaxDeltas: 100})
	or := s.NewNet("or", hl.NewGate(hl.OpOr, 1, 2))
	require.NoError(t, or.Connect(or.Port(1)))
	s.ScheduleSetVector(or.Port(0), 0, s.MustConst("1"))
	s.ScheduleSetVector(or.Port(0), 5, s.MustConst("0"))
	require.NoError(t, s.Run())
	// the loop holds its value
	assert.Equal(t, "1", value(t, or))
}

func TestNet_chain(t *testing.T) {
	// a change settles through a chain of buffers in a number of active
	// dispatches linear in its length: one delivery and one evaluation per
	// stage.
	for _, n := range []int{1, 8, 32} {
		s := newSim(t, evsim.Config{MaxDeltas: 1 << 16})
		bufs := make([]*evsim.Net, n)
		for i := range bufs {
			bufs[i] = s.NewNet("buf", hl.NewGate(hl.OpBuf, 1, 1))
			if i > 0 {
				require.NoError(t, bufs[i-1].Connect(bufs[i].Port(0)))
			}
		}
		s.ScheduleSetVector(bufs[0].Port(0), 0, s.MustConst("0"))
		require.NoError(t, s.RunUntil(0))
		require.Equal(t, "0", value(t, bufs[n-1]))

		before := s.Stats().Dispatched[evsim.Active]
		s.ScheduleSetVector(bufs[0].Port(0), 1, s.MustConst("1"))
		require.NoError(t, s.RunUntil(1))
		assert.Equal(t, "1", value(t, bufs[n-1]))
		d := s.Stats().Dispatched[evsim.Active] - before
		assert.GreaterOrEqual(t, d, uint64(n), "chain of %d", n)
		assert.LessOrEqual(t, d, uint64(2*n+1), "chain of %d", n)
	}
}

func TestNet_oscillatingLoop(t *testing.T) {
	s := newSim(t, evsim.Config{MaxDeltas: 100})
	not := s.NewNet("not", hl.NewGate(hl.OpNot, 1, 1))
	require.NoError(t, not.Connect(not.Port(0)))
	s.ScheduleSetVector(not.Port(0), 0, s.MustConst("0"))
	_, ok := evsim.AsFatal(s.Run())
	assert.True(t, ok)
}

func TestNet_inertialDelay(t *testing.T) {
	s := newSim(t, evsim.Config{})
	buf := s.NewNet("buf", hl.NewGate(hl.OpBuf, 1, 1))
	buf.SetDelay(evsim.UniformDelay(5))
	p := &probe{}
	require.NoError(t, buf.Connect(s.NewNet("probe", p).Port(0)))
	r := evsim.NewRecorder(s, buf)

	// a 2 units pulse is filtered out
	s.ScheduleSetVector(buf.Port(0), 0, s.MustConst("1"))
	s.ScheduleSetVector(buf.Port(0), 2, s.MustConst("0"))
	// a long pulse is not
	s.ScheduleSetVector(buf.Port(0), 10, s.MustConst("1"))
	s.ScheduleSetVector(buf.Port(0), 20, s.MustConst("0"))
	require.NoError(t, s.Run())

	assert.Equal(t, []string{"0", "1", "0"}, p.vals)
	require.Len(t, r.Samples(), 3)
	assert.EqualValues(t, 7, r.Samples()[0].Time)
	assert.EqualValues(t, 15, r.Samples()[1].Time)
	assert.EqualValues(t, 25, r.Samples()[2].Time)
	assert.NotZero(t, s.Stats().Cancelled)
}

func TestNet_riseFall(t *testing.T) {
	d := evsim.Delay{Rise: 3, Fall: 5, Decay: 7}
	td := []struct {
		from, to string
		ex       evsim.Time
	}{
		{"0", "1", 3},
		{"1", "0", 5},
		{"1", "z", 7},
		{"0", "x", 3},
		{"01", "10", 5},
		{"11", "11", 0},
	}
	for _, c := range td {
		assert.Equal(t, c.ex, d.For(parse(t, c.from), parse(t, c.to)), "%s -> %s", c.from, c.to)
	}
}

func TestNet_initializer(t *testing.T) {
	s := newSim(t, evsim.Config{})
	v := s.NewSignalNet("v", evsim.NewVariable(2))
	w := s.NewSignalNet("w", evsim.NewWire(2))
	c := s.NewNet("c", &hl.Const{V: s.MustConst("10")})
	p := &probe{}
	require.NoError(t, c.Connect(s.NewNet("p", p).Port(0)))
	require.NoError(t, s.RunUntil(0))
	assert.Equal(t, "xx", value(t, v))
	assert.Equal(t, "zz", value(t, w))
	assert.Equal(t, []string{"10"}, p.vals)
}

func TestNet_partialWidened(t *testing.T) {
	s := newSim(t, evsim.Config{})
	pv := s.NewNet("pv", &hl.PartPV{Base: 2, VWid: 8})
	buf := s.NewNet("buf", hl.NewGate(hl.OpBufZ, 8, 1))
	require.NoError(t, pv.Connect(buf.Port(0)))
	s.ScheduleSetVector(pv.Port(0), 0, s.MustConst("11"))
	require.NoError(t, s.RunUntil(0))
	assert.Equal(t, "zzzz11zz", value(t, buf))
}

func TestNet_fatal(t *testing.T) {
	s := newSim(t, evsim.Config{})
	v := s.NewSignalNet("v", evsim.NewVariable(4))
	s.ScheduleSetVector(v.Port(evsim.PortAssign), 3, s.MustConst("11"))
	err := s.Run()
	require.Error(t, err)
	fe, ok := evsim.AsFatal(err)
	require.True(t, ok)
	assert.Equal(t, evsim.KindInternal, fe.Kind)
	assert.Equal(t, "v", fe.Net)
	assert.Equal(t, "evsim.Signal", fe.Functor)
	assert.EqualValues(t, 3, fe.Time)
	assert.Contains(t, err.Error(), `on net "v"`)
	assert.True(t, s.Finished())
	assert.Equal(t, evsim.ErrFinished, s.Run())

	s = newSim(t, evsim.Config{})
	g := s.NewNet("g", hl.NewGate(hl.OpAnd, 1, 2))
	s.ScheduleSetVector(g.Port(2), 0, s.MustConst("1"))
	fe, ok = evsim.AsFatal(s.Run())
	require.True(t, ok)
	assert.Contains(t, fe.Msg, "invalid port 2")
}

func TestNet_pinLimit(t *testing.T) {
	s := newSim(t, evsim.Config{PinLimit: 2})
	n := s.NewNet("n", hl.NewGate(hl.OpBuf, 1, 1))
	sink := s.NewNet("sink", &probe{})
	require.NoError(t, n.Connect(sink.Port(0), sink.Port(1)))
	err := n.Connect(sink.Port(2))
	require.Error(t, err)
	fe, ok := evsim.AsFatal(err)
	require.True(t, ok)
	assert.Equal(t, evsim.KindConfig, fe.Kind)
	assert.IsType(t, &evsim.FatalError{}, errors.Cause(err))
}
