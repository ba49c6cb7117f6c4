// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"fmt"
	"io"

	"github.com/db47h/evsim/logic"
)

// A Sample is a value observed on a net.
//
type Sample struct {
	Time  Time
	Net   string
	Value logic.Vector4
}

func (s Sample) String() string {
	return fmt.Sprintf("%d %s %v", s.Time, s.Net, s.Value)
}

// Recorder records the settled values of a set of nets: it keeps at most one
// sample per net and time, taken in the read-only sync region, and only when
// the value differs from the previous sample.
//
type Recorder struct {
	samples []Sample
	last    map[*Net]logic.Vector4
	cbs     []*Callback
}

// NewRecorder returns a recorder watching nets.
//
func NewRecorder(s *Simulation, nets ...*Net) *Recorder {
	r := &Recorder{last: make(map[*Net]logic.Vector4)}
	for _, n := range nets {
		r.Watch(s, n)
	}
	return r
}

// Watch adds n to the watched nets.
//
func (r *Recorder) Watch(s *Simulation, n *Net) {
	r.cbs = append(r.cbs, s.OnValueChange(n, ReadOnly, func(t Time, v logic.Vector4) {
		if old, ok := r.last[n]; ok && old.EEQ(v) {
			return
		}
		r.last[n] = v
		r.samples = append(r.samples, Sample{t, n.Name, v})
	}))
}

// Close stops recording.
//
func (r *Recorder) Close() {
	for _, c := range r.cbs {
		c.Cancel()
	}
	r.cbs = nil
}

// Samples returns the recorded samples in time order.
//
func (r *Recorder) Samples() []Sample { return r.samples }

// Values returns the successive values recorded for the named net.
//
func (r *Recorder) Values(name string) []string {
	var vs []string
	for _, s := range r.samples {
		if s.Net == name {
			vs = append(vs, s.Value.String())
		}
	}
	return vs
}

// WriteTo writes the samples to w, one per line.
//
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, s := range r.samples {
		k, err := fmt.Fprintln(w, s)
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
