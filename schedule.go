// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"container/heap"
	"math"

	"github.com/db47h/evsim/logic"
	"github.com/pkg/errors"
)

// Region identifies one of the event queues of a time slot. Within a time
// slot, regions are dispatched in declaration order.
//
type Region int

// Event regions.
//
const (
	Active Region = iota
	Inactive
	NBA
	ReadOnlySync
	ReadWriteSync
	nRegions
)

var regionNames = [...]string{"active", "inactive", "nba", "ro-sync", "rw-sync"}

func (r Region) String() string {
	if r < 0 || r >= nRegions {
		return "invalid"
	}
	return regionNames[r]
}

// An event is a pending action. Events are dispatched exactly once, in FIFO
// order within their region.
type event interface {
	run(s *Simulation)
}

// cancellable events are skipped at dispatch time once cancelled.
type cancellable interface {
	cancelled() bool
}

type funcEvent func()

func (f funcEvent) run(*Simulation) { f() }

type timeSlot struct {
	t     Time
	q     [nRegions][]event
	index int
}

func (ts *timeSlot) empty() bool {
	for i := range ts.q {
		if len(ts.q[i]) > 0 {
			return false
		}
	}
	return true
}

type slotHeap []*timeSlot

func (h slotHeap) Len() int           { return len(h) }
func (h slotHeap) Less(i, j int) bool { return h[i].t < h[j].t }
func (h slotHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *slotHeap) Push(x interface{}) {
	ts := x.(*timeSlot)
	ts.index = len(*h)
	*h = append(*h, ts)
}

func (h *slotHeap) Pop() interface{} {
	old := *h
	n := len(old) - 1
	ts := old[n]
	old[n] = nil
	*h = old[:n]
	ts.index = -1
	return ts
}

func (s *Simulation) slot(t Time) *timeSlot {
	ts := s.byT[t]
	if ts == nil {
		ts = &timeSlot{t: t}
		s.byT[t] = ts
		heap.Push(&s.slots, ts)
	}
	return ts
}

func (s *Simulation) schedule(delay Time, r Region, ev event) {
	if s.finished {
		return
	}
	if s.inSync && s.phase == ReadOnlySync && r < ReadOnlySync {
		s.log.Warn("event scheduled from read-only sync dropped", "time", s.now, "region", r.String())
		return
	}
	ts := s.slot(s.now + delay)
	ts.q[r] = append(ts.q[r], ev)
	s.stats.Scheduled[r]++
}

// ScheduleActive schedules fn in the ACTIVE region of the time slot delay
// units from now.
//
func (s *Simulation) ScheduleActive(delay Time, fn func()) { s.schedule(delay, Active, funcEvent(fn)) }

// ScheduleInactive schedules fn in the INACTIVE region.
//
func (s *Simulation) ScheduleInactive(delay Time, fn func()) {
	s.schedule(delay, Inactive, funcEvent(fn))
}

// ScheduleNBA schedules fn in the non-blocking assignment region.
//
func (s *Simulation) ScheduleNBA(delay Time, fn func()) { s.schedule(delay, NBA, funcEvent(fn)) }

// ScheduleReadOnlySync schedules fn in the read-only synchronization region.
// fn must not change any value; PutValue fails while fn runs.
//
func (s *Simulation) ScheduleReadOnlySync(delay Time, fn func()) {
	s.schedule(delay, ReadOnlySync, funcEvent(fn))
}

// ScheduleReadWriteSync schedules fn in the read-write synchronization
// region.
//
func (s *Simulation) ScheduleReadWriteSync(delay Time, fn func()) {
	s.schedule(delay, ReadWriteSync, funcEvent(fn))
}

// ScheduleInit queues fn for execution before the first time slot is
// processed.
//
func (s *Simulation) ScheduleInit(fn func()) {
	if s.started {
		s.schedule(0, Active, funcEvent(fn))
		return
	}
	s.init = append(s.init, funcEvent(fn))
}

// ScheduleSetVector delivers v to dst in the ACTIVE region, delay units from
// now.
//
func (s *Simulation) ScheduleSetVector(dst Port, delay Time, v logic.Vector4) {
	s.schedule(delay, Active, &vec4Event{dst: dst, v: v})
}

// ScheduleAssign delivers v to bits [base, base+v.Size()) of dst, whose full
// width is vwid, in the NBA region of the time slot delay units from now.
//
func (s *Simulation) ScheduleAssign(dst Port, delay Time, v logic.Vector4, base, vwid int) {
	if base == 0 && v.Size() == vwid {
		s.schedule(delay, NBA, &vec4Event{dst: dst, v: v})
		return
	}
	s.schedule(delay, NBA, &vec4PVEvent{dst: dst, v: v, base: base, vwid: vwid})
}

// ScheduleInitVector delivers v to dst before time 0.
//
func (s *Simulation) ScheduleInitVector(dst Port, v logic.Vector4) {
	if s.started {
		s.ScheduleSetVector(dst, 0, v)
		return
	}
	s.init = append(s.init, &vec4Event{dst: dst, v: v})
}

// Pending returns the number of events waiting in the scheduler.
//
func (s *Simulation) Pending() int {
	n := 0
	for _, ts := range s.slots {
		for _, q := range ts.q {
			n += len(q)
		}
	}
	return n
}

// PendingIn returns the number of events waiting in region r of the time
// slot delay units from now.
//
func (s *Simulation) PendingIn(delay Time, r Region) int {
	ts := s.byT[s.now+delay]
	if ts == nil {
		return 0
	}
	return len(ts.q[r])
}

// Stop pauses the simulation at the end of the current event dispatch. Run
// resumes it.
//
func (s *Simulation) Stop() {
	s.log.Info("stop requested", "time", s.now)
	s.stopReq = true
}

// Finish ends the simulation at the end of the current event dispatch. The
// pending read-only and read-write callbacks of the current time slot are
// still run, then final threads are run.
//
func (s *Simulation) Finish() {
	s.log.Info("finish requested", "time", s.now)
	s.finReq = true
}

// Run runs the simulation until there are no more events, or until a stop or
// finish request. Running out of events finishes the simulation.
//
// Fatal errors abort the run and are returned as *FatalError causes. The
// simulation cannot be resumed after a fatal error.
//
func (s *Simulation) Run() error { return s.run(math.MaxUint64, false) }

// RunUntil runs the simulation until all time slots up to and including t
// have been processed. The current time is then t. Unlike Run, running out of
// events does not finish the simulation, which allows for more stimulus to be
// applied.
//
func (s *Simulation) RunUntil(t Time) error { return s.run(t, true) }

func (s *Simulation) run(until Time, bounded bool) (err error) {
	if s.finished {
		return ErrFinished
	}
	if until < s.now {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*FatalError)
			if !ok {
				panic(r)
			}
			s.finished = true
			s.log.Error("simulation aborted", "err", fe.Error())
			err = errors.WithStack(fe)
		}
	}()

	s.stopReq = false
	if !s.started {
		s.started = true
		init := s.init
		s.init = nil
		for _, ev := range init {
			ev.run(s)
		}
	}

	for !s.stopReq && !s.finReq {
		if len(s.slots) == 0 {
			if bounded {
				if until > s.now {
					s.now = until
				}
				return nil
			}
			break
		}
		ts := s.slots[0]
		if ts.t > until {
			s.now = until
			return nil
		}
		if ts.t != s.now {
			s.log.Debug("advance time", "from", s.now, "to", ts.t)
			s.now = ts.t
		}
		if s.runSlot(ts) {
			heap.Pop(&s.slots)
			delete(s.byT, ts.t)
			s.stats.Slots++
			s.deltas = 0
		}
	}
	if s.stopReq && !s.finReq {
		s.log.Info("simulation stopped", "time", s.now)
		return nil
	}
	s.end()
	return nil
}

// runSlot dispatches the events of ts. It returns false if dispatch was
// interrupted by a stop or finish request.
func (s *Simulation) runSlot(ts *timeSlot) bool {
	for !s.stopReq && !s.finReq {
		switch {
		case len(ts.q[Active]) > 0:
			ev := ts.q[Active][0]
			ts.q[Active][0] = nil
			ts.q[Active] = ts.q[Active][1:]
			s.deltas++
			if s.cfg.MaxDeltas > 0 && s.deltas > s.cfg.MaxDeltas {
				s.fatal(nil, nil, "more than %d active events in one time slot, combinational loop?", s.cfg.MaxDeltas)
			}
			s.phase = Active
			s.dispatch(Active, ev)
		case len(ts.q[Inactive]) > 0:
			ts.q[Active], ts.q[Inactive] = ts.q[Inactive], nil
		case len(ts.q[NBA]) > 0:
			ts.q[Active], ts.q[NBA] = ts.q[NBA], nil
		case len(ts.q[ReadOnlySync]) > 0:
			s.runSync(ts, ReadOnlySync)
		case len(ts.q[ReadWriteSync]) > 0:
			s.runSync(ts, ReadWriteSync)
		default:
			return true
		}
	}
	return false
}

func (s *Simulation) runSync(ts *timeSlot, r Region) {
	list := ts.q[r]
	ts.q[r] = nil
	s.phase, s.inSync = r, true
	defer func() { s.inSync = false }()
	for i, ev := range list {
		s.dispatch(r, ev)
		if s.stopReq && !s.finReq {
			ts.q[r] = append(list[i+1:], ts.q[r]...)
			return
		}
	}
}

func (s *Simulation) dispatch(r Region, ev event) {
	s.stats.Dispatched[r]++
	if c, ok := ev.(cancellable); ok && c.cancelled() {
		s.stats.Cancelled++
		return
	}
	ev.run(s)
}

// end terminates the simulation: sync callbacks of the current slot are
// flushed if a finish was requested, then final threads run.
func (s *Simulation) end() {
	if ts := s.byT[s.now]; ts != nil && s.finReq {
		for len(ts.q[ReadOnlySync])+len(ts.q[ReadWriteSync]) > 0 {
			if len(ts.q[ReadOnlySync]) > 0 {
				s.runSync(ts, ReadOnlySync)
			} else {
				s.runSync(ts, ReadWriteSync)
			}
		}
	}
	s.finished = true
	s.slots = nil
	s.byT = make(map[Time]*timeSlot)
	for _, t := range s.final {
		s.runFinal(t)
	}
	s.final = nil
	s.log.Info("simulation finished", "time", s.now)
}
