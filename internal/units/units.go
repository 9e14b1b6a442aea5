// Package units normalizes units of measure and converts quantities and
// prices between a product's alternative units and its base unit.
package units

import (
	"errors"
	"fmt"
	"strings"
)

type Unit string

const (
	Bottle Unit = "bottle"
	Piece  Unit = "piece"
	Kg     Unit = "kg"
	Gram   Unit = "gram"
	Liter  Unit = "liter"
	Ml     Unit = "ml"
	Box    Unit = "box"
	Crate  Unit = "crate"
	Carton Unit = "carton"
	Dozen  Unit = "dozen"
	Pack   Unit = "pack"
	Bag    Unit = "bag"
	Each   Unit = "unit"
	Meter  Unit = "meter"
	Cm     Unit = "cm"
)

var vocabulary = []Unit{Bottle, Piece, Kg, Gram, Liter, Ml, Box, Crate, Carton, Dozen, Pack, Bag, Each, Meter, Cm}

var known = func() map[Unit]bool {
	m := make(map[Unit]bool, len(vocabulary))
	for _, u := range vocabulary {
		m[u] = true
	}
	return m
}()

// bulk units hold a variable number of base units and are never inferred as
// a base unit.
var bulk = map[Unit]bool{Crate: true, Carton: true, Box: true, Dozen: true}

var ErrUnrecognized = errors.New("unrecognized unit")

// Normalize lower-cases and trims raw, strips one plural suffix and checks the
// result against the vocabulary. An empty input yields "" and no error.
func Normalize(raw string) (Unit, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", nil
	}
	if known[Unit(s)] {
		return Unit(s), nil
	}
	if strings.HasSuffix(s, "s") {
		if u := Unit(strings.TrimSuffix(s, "s")); known[u] {
			return u, nil
		}
	}
	if strings.HasSuffix(s, "es") {
		if u := Unit(strings.TrimSuffix(s, "es")); known[u] {
			return u, nil
		}
	}
	return "", fmt.Errorf("%q: %w", raw, ErrUnrecognized)
}

func IsBulk(u Unit) bool { return bulk[u] }

func Vocabulary() []Unit {
	out := make([]Unit, len(vocabulary))
	copy(out, vocabulary)
	return out
}

// VocabularyList is the vocabulary joined for prompts.
func VocabularyList() string {
	names := make([]string, len(vocabulary))
	for i, u := range vocabulary {
		names[i] = string(u)
	}
	return strings.Join(names, ", ")
}
