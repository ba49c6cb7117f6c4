// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"io"
	"log/slog"

	"github.com/db47h/evsim/logic"
	"github.com/pkg/errors"
)

// Time is an absolute simulation time, in simulation time units.
//
type Time uint64

// Config holds the simulation settings. The zero value is a valid default
// configuration.
//
type Config struct {
	// PinLimit caps the number of pins on a single node and the fanout of a
	// single net. Defaults to 1<<20.
	PinLimit int
	// Logger receives the scheduler's diagnostics. Defaults to a logger that
	// discards everything.
	Logger *slog.Logger
	// LiteralCacheSize is the number of parsed literals kept by Const.
	// Defaults to 256.
	LiteralCacheSize int
	// MaxDeltas bounds the number of ACTIVE events dispatched in one time
	// slot. Exceeding it aborts the run with a fatal error reporting a
	// probable combinational loop. 0 means no limit.
	MaxDeltas int
}

// DefaultPinLimit is the default value of Config.PinLimit.
//
const DefaultPinLimit = 1 << 20

func (c *Config) setDefaults() {
	if c.PinLimit <= 0 {
		c.PinLimit = DefaultPinLimit
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.LiteralCacheSize <= 0 {
		c.LiteralCacheSize = 256
	}
}

// Stats holds event counters.
//
type Stats struct {
	Scheduled  [nRegions]uint64 // events scheduled, per region
	Dispatched [nRegions]uint64 // events dispatched, per region
	Slots      uint64           // time slots processed
	Cancelled  uint64           // events cancelled before dispatch
	Threads    uint64           // threads created
}

// Simulation is an event driven simulation instance. It holds the scheduler
// state and everything attached to it. Independent Simulation values can run
// in separate goroutines, but a single Simulation is not safe for concurrent
// use.
//
type Simulation struct {
	cfg  Config
	log  *slog.Logger
	lits *logic.LiteralCache

	now   Time
	slots slotHeap
	byT   map[Time]*timeSlot
	init  []event

	started  bool
	stopReq  bool
	finReq   bool
	finished bool
	phase    Region // region being dispatched
	inSync   bool   // dispatching a sync region
	deltas   int

	final   []*Thread
	threads map[*Thread]struct{}
	stats   Stats
}

// New returns a new simulation.
//
func New(cfg Config) (*Simulation, error) {
	cfg.setDefaults()
	lits, err := logic.NewLiteralCache(cfg.LiteralCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new simulation")
	}
	return &Simulation{
		cfg:     cfg,
		log:     cfg.Logger,
		lits:    lits,
		byT:     make(map[Time]*timeSlot),
		threads: make(map[*Thread]struct{}),
	}, nil
}

// Config returns the simulation configuration, with defaults applied.
//
func (s *Simulation) Config() Config { return s.cfg }

// Logger returns the simulation logger.
//
func (s *Simulation) Logger() *slog.Logger { return s.log }

// Now returns the current simulation time.
//
func (s *Simulation) Now() Time { return s.now }

// Stats returns a snapshot of the event counters.
//
func (s *Simulation) Stats() Stats { return s.stats }

// Finished returns true once the simulation has ended, either by running out
// of events or by a finish request.
//
func (s *Simulation) Finished() bool { return s.finished }

// Const parses a literal through the simulation's literal cache. See
// logic.ParseVector4 for the accepted syntax.
//
func (s *Simulation) Const(lit string) (logic.Vector4, error) {
	return s.lits.Vector4(lit)
}

// Const8 parses a strength literal of the form C8<...>.
//
func (s *Simulation) Const8(lit string) (logic.Vector8, error) {
	return s.lits.Vector8(lit)
}

// MustConst is like Const but panics on error. It is intended for
// initialization of constant drivers with literals known to be valid.
//
func (s *Simulation) MustConst(lit string) logic.Vector4 {
	v, err := s.Const(lit)
	if err != nil {
		panic(err)
	}
	return v
}
