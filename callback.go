// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"github.com/db47h/evsim/logic"
	"github.com/pkg/errors"
)

// Mode is the mutability of a procedural callback.
//
type Mode int

// Callback modes.
//
const (
	// ReadOnly callbacks run in the read-only sync region. They observe the
	// settled state of a time slot and cannot change any value.
	ReadOnly Mode = iota
	// ReadWrite callbacks run in the read-write sync region and may inject
	// new values with PutValue.
	ReadWrite
)

func (m Mode) region() Region {
	if m == ReadWrite {
		return ReadWriteSync
	}
	return ReadOnlySync
}

// A Callback is a registered procedural callback.
//
type Callback struct {
	sim      *Simulation
	net      *Net
	mode     Mode
	onChange func(t Time, v logic.Vector4)
	onTime   func(t Time)

	pending   bool
	cancelled bool
}

// Cancel unregisters c. Pending invocations are dropped.
//
func (c *Callback) Cancel() {
	c.cancelled = true
	if c.net == nil {
		return
	}
	ws := c.net.watchers
	for i, w := range ws {
		if w == c {
			c.net.watchers = append(ws[:i], ws[i+1:]...)
			break
		}
	}
}

// notify schedules one invocation of a value change callback. Changes that
// happen before the callback runs are coalesced.
func (c *Callback) notify() {
	if c.cancelled || c.pending {
		return
	}
	c.pending = true
	c.sim.schedule(0, c.mode.region(), callbackEvent{c})
}

type callbackEvent struct{ c *Callback }

func (e callbackEvent) cancelled() bool { return e.c.cancelled }

func (e callbackEvent) run(s *Simulation) {
	c := e.c
	c.pending = false
	if c.onTime != nil {
		c.onTime(s.now)
		return
	}
	v, _ := c.net.Value()
	c.onChange(s.now, v)
}

// OnValueChange registers fn to be called whenever the value propagated by n
// changes. fn runs in the sync region matching mode and receives the value
// of n at that point. Several changes of n within one time slot result in a
// single call.
//
func (s *Simulation) OnValueChange(n *Net, mode Mode, fn func(t Time, v logic.Vector4)) *Callback {
	c := &Callback{sim: s, net: n, mode: mode, onChange: fn}
	n.watchers = append(n.watchers, c)
	return c
}

// AtTime registers fn to be called once at time t, in the sync region
// matching mode.
//
func (s *Simulation) AtTime(t Time, mode Mode, fn func(t Time)) (*Callback, error) {
	if t < s.now {
		return nil, errors.Errorf("AtTime: time %d is in the past (now is %d)", t, s.now)
	}
	if s.finished || s.finReq {
		return nil, ErrFinished
	}
	c := &Callback{sim: s, mode: mode, onTime: fn}
	s.schedule(t-s.now, mode.region(), callbackEvent{c})
	return c, nil
}

// PutValue delivers v to dst, delay time units from now, in the ACTIVE
// region. It fails with ErrReadOnlySync when called from a read-only
// callback.
//
func (s *Simulation) PutValue(dst Port, v logic.Vector4, delay Time) error {
	if s.finished || s.finReq {
		return ErrFinished
	}
	if s.inSync && s.phase == ReadOnlySync {
		s.log.Warn("PutValue rejected in read-only sync", "time", s.now, "port", dst.String())
		return ErrReadOnlySync
	}
	s.ScheduleSetVector(dst, delay, v)
	return nil
}

// InReadOnlySync returns true while read-only callbacks are being
// dispatched.
//
func (s *Simulation) InReadOnlySync() bool { return s.inSync && s.phase == ReadOnlySync }
