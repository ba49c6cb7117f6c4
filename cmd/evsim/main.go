// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command evsim runs one of the built-in demo designs and prints the trace of
// its observed nets.
//
// Usage:
//
//	evsim [--design name] [--until t] [--pin-limit n] [--verbose]
//
// The exit status is 1 on usage errors and 2 if the simulation aborts on a
// fatal error.
//
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/db47h/evsim"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type options struct {
	design   string
	until    uint64
	pinLimit int
	verbose  bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "evsim",
		Short: "Run a demo design in the event driven simulator",
		Long: `evsim elaborates one of the built-in designs, runs it up to the
requested time and prints the settled values of the observed nets, one
line per change: "time net value".

Designs: ` + strings.Join(designNames(), ", "),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, ok := designs[opts.design]
			if !ok {
				return errors.Errorf("unknown design %q", opts.design)
			}
			cmd.SilenceUsage = true
			return run(cmd, d, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.design, "design", "d", "counter", "design to simulate")
	f.Uint64VarP(&opts.until, "until", "u", 100, "simulation end time")
	f.IntVar(&opts.pinLimit, "pin-limit", evsim.DefaultPinLimit, "maximum number of pins per node")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log scheduler activity to stderr")
	return cmd
}

func run(cmd *cobra.Command, d design, opts options) error {
	lvl := slog.LevelWarn
	if opts.verbose {
		lvl = slog.LevelDebug
	}
	s, err := evsim.New(evsim.Config{
		PinLimit:  opts.pinLimit,
		Logger:    slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})),
		MaxDeltas: 1 << 16,
	})
	if err != nil {
		return err
	}
	rec, err := d(s)
	if err != nil {
		return errors.Wrapf(err, "design %s", opts.design)
	}
	if err = s.RunUntil(evsim.Time(opts.until)); err != nil {
		return err
	}
	s.Finish()
	if err = s.Run(); err != nil {
		return err
	}
	_, err = rec.WriteTo(cmd.OutOrStdout())
	return err
}

func designNames() []string {
	var names []string
	for n := range designs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "evsim:", err)
		if _, ok := evsim.AsFatal(err); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
