package model

import (
	"fmt"
	"strconv"
)

// YearKind distinguishes the named year buckets from an exact year
type YearKind int

const (
	YearAll YearKind = iota + 1
	YearCurrent
	YearRecent
	YearPrior
	YearExact
)

// Year selects which sessions a search covers. The zero value is YearAll.
type Year struct {
	kind  YearKind
	exact int
}

var (
	All     = Year{kind: YearAll}
	Current = Year{kind: YearCurrent}
	Recent  = Year{kind: YearRecent}
	Prior   = Year{kind: YearPrior}
)

// yearKeywords is the single table shared by ParseYear, String and Code
var yearKeywords = []struct {
	name string
	kind YearKind
	code int
}{
	{"all", YearAll, 1},
	{"current", YearCurrent, 2},
	{"recent", YearRecent, 3},
	{"prior", YearPrior, 4},
}

// ExactYear selects a single year, passed through to the API verbatim
func ExactYear(year int) Year {
	return Year{kind: YearExact, exact: year}
}

// ParseYearError reports an unusable year token from user input
type ParseYearError struct {
	Input  string
	Reason string
}

func (e *ParseYearError) Error() string {
	return fmt.Sprintf("invalid year %q: %s", e.Input, e.Reason)
}

// ParseYear accepts all, current, recent, prior or an exact year > 1900
func ParseYear(text string) (Year, error) {
	for _, k := range yearKeywords {
		if text == k.name {
			return Year{kind: k.kind}, nil
		}
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return Year{}, &ParseYearError{Input: text, Reason: "could not parse exact year"}
	}
	if n <= 1900 {
		return Year{}, &ParseYearError{Input: text, Reason: "exact year should be > 1900"}
	}
	return ExactYear(n), nil
}

// Kind reports which variant y is
func (y Year) Kind() YearKind {
	if y.kind == 0 {
		return YearAll
	}
	return y.kind
}

// Exact returns the year carried by an exact selector
func (y Year) Exact() (int, bool) {
	return y.exact, y.kind == YearExact
}

// Code returns the numeric value the API expects for the year parameter
func (y Year) Code() int {
	if y.kind == YearExact {
		return y.exact
	}
	kind := y.Kind()
	for _, k := range yearKeywords {
		if k.kind == kind {
			return k.code
		}
	}
	return 1
}

func (y Year) String() string {
	if y.kind == YearExact {
		return strconv.Itoa(y.exact)
	}
	kind := y.Kind()
	for _, k := range yearKeywords {
		if k.kind == kind {
			return k.name
		}
	}
	return "all"
}

// Set implements pflag.Value
func (y *Year) Set(text string) error {
	parsed, err := ParseYear(text)
	if err != nil {
		return err
	}
	*y = parsed
	return nil
}

// Type implements pflag.Value
func (y *Year) Type() string {
	return "year"
}
