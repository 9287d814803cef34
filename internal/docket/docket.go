// Package docket derives, parses, and validates docket numbers.
//
// A docket number has the form YY-EEEE-N:
//   - YY: last two digits of the episode's publication year
//   - EEEE: zero-padded ordinal of the episode within that publication year
//     (ordered by publication time, ties broken by GUID)
//   - N: 1-based ordinal of the case within the episode
//
// Docket numbers are a pure function of ingestion order, never of AI output,
// so re-extracting cases from an unchanged transcript yields identical numbers.
package docket

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Pattern matches a well-formed docket number.
var Pattern = regexp.MustCompile(`^(\d{2})-(\d{4})-(\d+)$`)

// Number is a parsed docket number.
type Number struct {
	Year       int // two-digit publication year
	EpisodeSeq int // 1-based episode ordinal within the year
	CaseSeq    int // 1-based case ordinal within the episode
}

// Format derives the docket number for a case.
func Format(pubDate time.Time, episodeSeq, caseSeq int) string {
	return fmt.Sprintf("%02d-%04d-%d", pubDate.UTC().Year()%100, episodeSeq, caseSeq)
}

// String renders the number back to its canonical form.
func (n Number) String() string {
	return fmt.Sprintf("%02d-%04d-%d", n.Year, n.EpisodeSeq, n.CaseSeq)
}

// Parse converts a docket string into its components.
func Parse(value string) (Number, error) {
	match := Pattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return Number{}, fmt.Errorf("docket: invalid number %q", value)
	}
	year, _ := strconv.Atoi(match[1])
	episodeSeq, _ := strconv.Atoi(match[2])
	caseSeq, err := strconv.Atoi(match[3])
	if err != nil {
		return Number{}, fmt.Errorf("docket: invalid case ordinal in %q", value)
	}
	if episodeSeq < 1 || caseSeq < 1 {
		return Number{}, fmt.Errorf("docket: ordinals must be 1-based in %q", value)
	}
	return Number{Year: year, EpisodeSeq: episodeSeq, CaseSeq: caseSeq}, nil
}

// Valid reports whether value is a well-formed docket number.
func Valid(value string) bool {
	_, err := Parse(value)
	return err == nil
}

// Less orders docket numbers by their numeric components, so 24-0001-2 sorts
// before 24-0001-10. Malformed values fall back to lexical order after every
// well-formed one.
func Less(a, b string) bool {
	na, errA := Parse(a)
	nb, errB := Parse(b)
	switch {
	case errA != nil && errB != nil:
		return a < b
	case errA != nil:
		return false
	case errB != nil:
		return true
	}
	if na.Year != nb.Year {
		return na.Year < nb.Year
	}
	if na.EpisodeSeq != nb.EpisodeSeq {
		return na.EpisodeSeq < nb.EpisodeSeq
	}
	return na.CaseSeq < nb.CaseSeq
}
