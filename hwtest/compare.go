// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
	"github.com/pkg/errors"
)

func connString(in []string, out, outNexus string) string {
	var b strings.Builder
	for _, n := range in {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(n)
		b.WriteRune('=')
		b.WriteString(n)
	}
	if out != "" {
		if b.Len() > 0 {
			b.WriteRune(',')
		}
		b.WriteString(out)
		b.WriteRune('=')
		b.WriteString(outNexus)
	}
	return b.String()
}

// Random returns a random vector of the given size. If xz is set, the vector
// may contain X and Z bits.
//
func Random(r *rand.Rand, size int, xz bool) logic.Vector4 {
	v := logic.NewVector4(size, logic.B0)
	for i := 0; i < size; i++ {
		b := logic.Bit4(r.Intn(2))
		if xz && r.Intn(4) == 0 {
			b |= logic.BZ
		}
		v.SetBit(i, b)
	}
	return v
}

const maxIter = 1 << 12

// ComparePart takes two parts and compares their outputs given the same inputs.
// Both parts must have the same input pins. widths gives the width of each
// input pin in order, missing widths default to 1.
//
func ComparePart(t *testing.T, part1 netlist.NewPartFn, part2 netlist.NewPartFn, widths ...int) {
	t.Helper()
	ps1, ps2 := part1("").PartSpec, part2("").PartSpec
	if len(ps1.Inputs) != len(ps2.Inputs) {
		t.Fatal("len(ps1.Inputs) != len(ps2.Inputs)")
	}
	for i := range ps1.Inputs {
		if ps1.Inputs[i] != ps2.Inputs[i] {
			t.Fatalf("ps1.Inputs[i] = %q != ps2.Inputs[i] = %q", ps1.Inputs[i], ps2.Inputs[i])
		}
	}
	if ps1.Width != ps2.Width {
		t.Fatalf("output width mismatch: %d != %d", ps1.Width, ps2.Width)
	}

	h := New(t, evsim.Config{})
	w := make([]int, len(ps1.Inputs))
	for i, n := range ps1.Inputs {
		w[i] = 1
		if i < len(widths) {
			w[i] = widths[i]
		}
		h.Input(n, w[i])
	}
	h.Add(
		part1(connString(ps1.Inputs, ps1.Output, "__out1")),
		part2(connString(ps2.Inputs, ps2.Output, "__out2")),
		hwlib.Output(func(logic.Vector4) {})("in=__out1"),
		hwlib.Output(func(logic.Vector4) {})("in=__out2"),
	)

	errString := func(v1, v2 logic.Vector4) string {
		var b strings.Builder
		for _, n := range ps1.Inputs {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n)
			b.WriteRune('=')
			b.WriteString(h.inputs[n].Value().String())
		}
		return "\nInputs " + b.String() + "\n" + ps1.Name + " => " + v1.String() + "\n" + ps2.Name + " => " + v2.String()
	}
	check := func() {
		t.Helper()
		h.Settle()
		if v1, v2 := h.Get("__out1"), h.Get("__out2"); !v1.EEQ(v2) {
			t.Fatal(errString(v1, v2))
		}
	}

	// try all 0, then all 1
	for _, b := range []logic.Bit4{logic.B0, logic.B1} {
		for i, n := range ps1.Inputs {
			h.SetVec(n, logic.NewVector4(w[i], b))
		}
		check()
	}

	bits := 0
	for _, x := range w {
		bits += x
	}
	iter := maxIter
	if bits < 12 {
		iter = 1 << uint(bits)
	}
	r := rand.New(rand.NewSource(int64(bits)))
	for i := 0; i < iter; i++ {
		for j, n := range ps1.Inputs {
			h.SetVec(n, Random(r, w[j], false))
		}
		check()
	}
}

// CompareFunctors drives the same random 4-state stimulus into two functors
// and compares their outputs. Each functor runs in its own simulation, in its
// own goroutine.
//
func CompareFunctors(t *testing.T, iter int, f1, f2 func() evsim.Functor, widths ...int) {
	t.Helper()
	type dut struct {
		s *evsim.Simulation
		n *evsim.Net
	}
	duts := make([]dut, 2)
	for i, f := range []func() evsim.Functor{f1, f2} {
		s, err := evsim.New(evsim.Config{})
		if err != nil {
			t.Fatal(err)
		}
		duts[i] = dut{s, s.NewNet("dut", f())}
	}

	r := rand.New(rand.NewSource(int64(len(widths))))
	for it := 0; it < iter; it++ {
		in := make([]logic.Vector4, len(widths))
		for i, w := range widths {
			in[i] = Random(r, w, it > 0)
		}
		var wg sync.WaitGroup
		errs := make([]error, len(duts))
		for i := range duts {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				d := duts[i]
				for p, v := range in {
					d.s.ScheduleSetVector(d.n.Port(p), 0, v)
				}
				errs[i] = d.s.RunUntil(d.s.Now() + 1)
			}(i)
		}
		wg.Wait()
		for i, err := range errs {
			if err != nil {
				t.Fatal(errors.Wrapf(err, "functor %d", i+1))
			}
		}
		v1, ok1 := duts[0].n.Value()
		v2, ok2 := duts[1].n.Value()
		if ok1 != ok2 || !v1.EEQ(v2) {
			t.Fatalf("inputs %v: got %v and %v", in, v1, v2)
		}
	}
}
