/*
Package evsim is an event driven simulation kernel for 4-state and 8-state
(strength aware) digital logic, in the spirit of a Verilog simulator runtime.

A design is a graph of nets. Each Net owns a Functor that receives input
vectors on its ports and sends its output to the ports of its fanout. Values
travel as events through a time wheel: every time slot has an ACTIVE,
INACTIVE, non-blocking assignment (NBA), read-only sync and read-write sync
region, processed in that order until the slot is empty.

Behavioral code runs in threads: small programs built with a Builder that
can delay, wait on events, fork and join child threads, and allocate the
contexts of automatic (re-entrant) scopes.

The netlist package builds the static topology of a design (nodes, pins and
nexuses) and elaborates it into nets. The hwlib package holds the functor
library: gates, arithmetic, multiplexers, flip flops, pass switches and so on.

A minimal session:

	s, _ := evsim.New(evsim.Config{})
	v := s.NewSignalNet("v", evsim.NewVariable(4))
	p, _ := evsim.NewBuilder(s).
		Label("main").
		PushI("4'b0001").Store(v).
		Delay(10).
		PushI("4'b0010").AssignNB(v, 0).
		End().
		Build()
	s.Start(p, "main", nil)
	err := s.Run()

Fatal errors such as a width mismatch on a port abort the run. Run returns
them wrapped; AsFatal retrieves the *FatalError with the offending net and
time.

*/
package evsim
