package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/biscani-labs/seriesmul/coeff"
	"github.com/biscani-labs/seriesmul/poly"
	"github.com/biscani-labs/seriesmul/series"
	"github.com/biscani-labs/seriesmul/symbols"
	"github.com/biscani-labs/seriesmul/term"
)

// loadSeries reads a polynomial series from path. The first non-blank,
// non-comment line lists the symbol names, space-separated; each following
// line is a term: a coefficient followed by one exponent per symbol. Blank
// lines and lines starting with # are ignored. For example:
//
//	x y z
//	3 1 2 0
//	-1 0 0 1
//
// describes 3*x*y^2 - z.
func loadSeries(path string) (*series.Series[poly.Monomial, coeff.Float64], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var omega symbols.Set
	var s *series.Series[poly.Monomial, coeff.Float64]
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if s == nil {
			omega = symbols.New(fields...)
			s = series.New[poly.Monomial, coeff.Float64](omega)
			continue
		}
		if len(fields) != omega.Len()+1 {
			return nil, fmt.Errorf("%s:%d: expected %d fields, got %d", path, lineNo, omega.Len()+1, len(fields))
		}
		c, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		exp := make([]int32, omega.Len())
		for i, tok := range fields[1:] {
			e, err := strconv.ParseInt(tok, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			exp[i] = int32(e)
		}
		t := term.Term[poly.Monomial, coeff.Float64]{Key: poly.NewMonomial(exp...), Coeff: coeff.Float64(c)}
		if err := s.Insert(t); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("%s: empty file, expected a symbol-name line", path)
	}
	return s, nil
}
