// Command seriesmul multiplies two sparse polynomial series read from plain
// text files and prints the product, optionally under a total-degree
// truncation cutoff.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/biscani-labs/seriesmul/coeff"
	"github.com/biscani-labs/seriesmul/config"
	"github.com/biscani-labs/seriesmul/mul"
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/truncate"
)

func main() {
	fs := flag.NewFlagSet("seriesmul", flag.ExitOnError)
	aPath := fs.String("a", "", "path to the first operand series file")
	bPath := fs.String("b", "", "path to the second operand series file")
	degree := fs.Int("degree", -1, "total-degree cutoff for the result (-1 disables truncation)")
	threads := fs.Int("threads", 0, "worker thread bound (0 uses GOMAXPROCS)")
	noColor := fs.Bool("no-color", false, "disable colorized term output")
	trace := fs.Bool("trace", false, "log density-estimator accuracy to stderr")
	fs.Parse(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *aPath == "" || *bPath == "" {
		fmt.Fprintln(os.Stderr, "usage: seriesmul -a <file> -b <file> [-degree N] [-threads N] [-no-color] [-trace]")
		os.Exit(2)
	}

	if *threads > 0 {
		config.SetGlobal(config.New(config.WithNThreads(*threads)))
	}

	s1, err := loadSeries(*aPath)
	if err != nil {
		logger.Error("failed to load operand", "file", *aPath, "err", err)
		os.Exit(1)
	}
	s2, err := loadSeries(*bPath)
	if err != nil {
		logger.Error("failed to load operand", "file", *bPath, "err", err)
		os.Exit(1)
	}

	trunc := truncate.None[poly.Monomial, coeff.Float64]()
	if *degree >= 0 {
		trunc = truncate.NewDegreeCutoff[poly.Monomial, coeff.Float64](*degree, poly.Monomial.TotalDegree)
	}

	var opts []mul.Option[poly.Monomial, coeff.Float64]
	if *trace {
		opts = append(opts, mul.WithTrace[poly.Monomial, coeff.Float64](func(estimated, actual uint64) {
			logger.Info("density estimate", "estimated", estimated, "actual", actual)
		}))
	}

	result, err := mul.Multiply(s1, s2, trunc, opts...)
	if err != nil {
		logger.Error("multiplication failed", "err", err)
		os.Exit(1)
	}

	printSeries(result, !*noColor)
}
