package evsim_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/db47h/evsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSim(t *testing.T, cfg evsim.Config) *evsim.Simulation {
	t.Helper()
	s, err := evsim.New(cfg)
	require.NoError(t, err)
	return s
}

func TestSchedule_regions(t *testing.T) {
	s := newSim(t, evsim.Config{})
	var got []string
	rec := func(name string) func() { return func() { got = append(got, name) } }

	s.ScheduleInactive(5, rec("B"))
	s.ScheduleActive(5, rec("A"))
	require.NoError(t, s.Run())
	assert.Equal(t, []string{"A", "B"}, got)

	s = newSim(t, evsim.Config{})
	got = nil
	s.ScheduleReadWriteSync(1, rec("rw"))
	s.ScheduleReadOnlySync(1, rec("ro"))
	s.ScheduleNBA(1, rec("nba"))
	s.ScheduleInactive(1, rec("inactive"))
	s.ScheduleActive(1, rec("active"))
	s.ScheduleActive(0, rec("t0"))
	require.NoError(t, s.Run())
	assert.Equal(t, []string{"t0", "active", "inactive", "nba", "ro", "rw"}, got)
	assert.EqualValues(t, 1, s.Now())
	assert.True(t, s.Finished())
}

func TestSchedule_fifo(t *testing.T) {
	s := newSim(t, evsim.Config{})
	var got []int
	for i := 0; i < 10; i++ {
		i := i
		s.ScheduleActive(3, func() {
			got = append(got, i)
			if i == 0 {
				// scheduled from within the slot: after everything already queued
				s.ScheduleActive(0, func() { got = append(got, 100) })
			}
		})
	}
	require.NoError(t, s.Run())
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 100}, got)
}

func TestSchedule_nbaReentersActive(t *testing.T) {
	s := newSim(t, evsim.Config{})
	var got []string
	s.ScheduleNBA(0, func() {
		got = append(got, "nba")
		s.ScheduleActive(0, func() { got = append(got, "active2") })
		s.ScheduleInactive(0, func() { got = append(got, "inactive2") })
	})
	s.ScheduleReadOnlySync(0, func() { got = append(got, "ro") })
	require.NoError(t, s.Run())
	assert.Equal(t, []string{"nba", "active2", "inactive2", "ro"}, got)
}

func TestRunUntil(t *testing.T) {
	s := newSim(t, evsim.Config{})
	var got []evsim.Time
	for _, d := range []evsim.Time{1, 5, 10} {
		s.ScheduleActive(d, func() { got = append(got, s.Now()) })
	}
	require.NoError(t, s.RunUntil(5))
	assert.Equal(t, []evsim.Time{1, 5}, got)
	assert.EqualValues(t, 5, s.Now())
	assert.False(t, s.Finished())
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.RunUntil(20))
	assert.EqualValues(t, 20, s.Now())
	assert.False(t, s.Finished())

	// events can still be scheduled
	s.ScheduleActive(1, func() { got = append(got, s.Now()) })
	require.NoError(t, s.Run())
	assert.Equal(t, []evsim.Time{1, 5, 10, 21}, got)
	assert.True(t, s.Finished())
	assert.Equal(t, evsim.ErrFinished, s.Run())
}

func TestStopFinish(t *testing.T) {
	s := newSim(t, evsim.Config{})
	var got []string
	s.ScheduleActive(5, func() {
		s.Stop()
		got = append(got, "stop")
	})
	s.ScheduleActive(5, func() { got = append(got, "after stop") })
	s.ScheduleActive(10, func() {
		s.Finish()
		got = append(got, "finish")
	})
	s.ScheduleActive(10, func() { got = append(got, "dropped") })
	s.ScheduleReadOnlySync(10, func() { got = append(got, "ro") })
	s.ScheduleActive(20, func() { got = append(got, "never") })

	require.NoError(t, s.Run())
	assert.Equal(t, []string{"stop"}, got)
	assert.EqualValues(t, 5, s.Now())
	assert.False(t, s.Finished())

	require.NoError(t, s.Run())
	assert.Equal(t, []string{"stop", "after stop", "finish", "ro"}, got)
	assert.EqualValues(t, 10, s.Now())
	assert.True(t, s.Finished())
}

func TestMaxDeltas(t *testing.T) {
	s := newSim(t, evsim.Config{MaxDeltas: 1000})
	var loop func()
	loop = func() { s.ScheduleActive(0, loop) }
	s.ScheduleActive(0, loop)
	err := s.Run()
	require.Error(t, err)
	fe, ok := evsim.AsFatal(err)
	require.True(t, ok)
	assert.Equal(t, evsim.KindInternal, fe.Kind)
	assert.Contains(t, fe.Msg, "combinational loop")
	assert.True(t, s.Finished())
}

func TestStats(t *testing.T) {
	s := newSim(t, evsim.Config{})
	s.ScheduleActive(0, func() {})
	s.ScheduleNBA(2, func() {})
	s.ScheduleReadOnlySync(2, func() {})
	require.NoError(t, s.Run())
	st := s.Stats()
	assert.EqualValues(t, 1, st.Scheduled[evsim.Active])
	assert.EqualValues(t, 1, st.Scheduled[evsim.NBA])
	// NBA events are dispatched from the active queue
	assert.EqualValues(t, 2, st.Dispatched[evsim.Active])
	assert.EqualValues(t, 1, st.Dispatched[evsim.ReadOnlySync])
	assert.EqualValues(t, 2, st.Slots)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	s := newSim(t, evsim.Config{Logger: slog.New(slog.NewTextHandler(&buf, nil))})
	s.ScheduleActive(3, s.Finish)
	require.NoError(t, s.Run())
	assert.Contains(t, buf.String(), "finish requested")
	assert.Contains(t, buf.String(), "simulation finished")
}
