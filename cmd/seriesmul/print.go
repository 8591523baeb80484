package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/biscani-labs/seriesmul/coeff"
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/series"
	"github.com/fatih/color"
)

var (
	coeffColor  = color.New(color.FgYellow)
	symbolColor = color.New(color.FgCyan)
)

// printSeries writes one line per term of s to stdout, sorted by descending
// total degree for readability. When colorize is false the coefficients and
// symbol/exponent tokens print uncolored, for output piped to a file or a
// non-terminal consumer.
func printSeries(s *series.Series[poly.Monomial, coeff.Float64], colorize bool) {
	terms := s.Terms()
	sort.Slice(terms, func(i, j int) bool {
		return terms[i].Key.TotalDegree() > terms[j].Key.TotalDegree()
	})

	omega := s.Omega()
	names := make([]string, omega.Len())
	for i := range names {
		names[i] = omega.Name(i)
	}
	for _, t := range terms {
		coeffStr := fmt.Sprintf("%g", float64(t.Coeff))
		symStr := formatMonomial(t.Key, names)
		if !colorize {
			fmt.Printf("%s %s\n", coeffStr, symStr)
			continue
		}
		fmt.Printf("%s %s\n", coeffColor.Sprint(coeffStr), symbolColor.Sprint(symStr))
	}
	if len(terms) == 0 {
		fmt.Println("0")
	}
}

func formatMonomial(m poly.Monomial, names []string) string {
	var b strings.Builder
	for i, name := range names {
		e := m.Exp[i]
		if e == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(name)
		if e != 1 {
			fmt.Fprintf(&b, "^%d", e)
		}
	}
	return b.String()
}
