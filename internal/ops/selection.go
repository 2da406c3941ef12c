package ops

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/hpungsan/delgists/internal/errors"
)

var (
	rangeRe  = regexp.MustCompile(`^(\d+)-(\d+)$`)
	digitsRe = regexp.MustCompile(`^\d+$`)
)

// SelectionSet is a sorted, duplicate-free set of zero-based indices into
// the current page.
type SelectionSet []int

// Descending returns the indices from highest to lowest.
func (s SelectionSet) Descending() []int {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

// OneBased returns the indices as the 1-based numbers shown to the user.
func (s SelectionSet) OneBased() []int {
	out := make([]int, len(s))
	for i, idx := range s {
		out[i] = idx + 1
	}
	return out
}

// ParseSelection turns user input into indices on a page of pageLength gists.
// Whitespace is ignored. Accepted forms are an inclusive 1-based range "a-b"
// with a < b, or a comma-separated list of 1-based indices "3" / "1,4,7".
// A range with equal bounds is rejected; a single gist is selected by listing it.
func ParseSelection(raw string, pageLength int) (SelectionSet, error) {
	input := stripSpace(raw)
	if input == "" {
		return nil, errors.NewInvalidSelectionFormat(raw)
	}

	if m := rangeRe.FindStringSubmatch(input); m != nil {
		return parseRange(m[1], m[2], pageLength)
	}
	if strings.Contains(input, "-") {
		return nil, errors.NewInvalidSelectionFormat(raw)
	}

	return parseList(input, pageLength)
}

func parseRange(beginStr, endStr string, pageLength int) (SelectionSet, error) {
	begin, errBegin := strconv.Atoi(beginStr)
	end, errEnd := strconv.Atoi(endStr)
	if errBegin != nil || errEnd != nil {
		// too large for an int, so necessarily past the page
		return nil, errors.NewInvalidSelectionRange(clampInt(beginStr), clampInt(endStr), pageLength)
	}
	if begin >= end || begin < 1 || end > pageLength {
		return nil, errors.NewInvalidSelectionRange(begin, end, pageLength)
	}

	set := make(SelectionSet, 0, end-begin+1)
	for i := begin; i <= end; i++ {
		set = append(set, i-1)
	}
	return set, nil
}

func parseList(input string, pageLength int) (SelectionSet, error) {
	tokens := strings.Split(input, ",")

	// Every token must be numeric before any bound is checked.
	for _, tok := range tokens {
		if !digitsRe.MatchString(tok) {
			return nil, errors.NewInvalidSelectionIndex(tok, pageLength)
		}
	}

	seen := make(map[int]bool, len(tokens))
	set := make(SelectionSet, 0, len(tokens))
	for _, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > pageLength {
			return nil, errors.NewInvalidSelectionIndex(tok, pageLength)
		}
		if !seen[n-1] {
			seen[n-1] = true
			set = append(set, n-1)
		}
	}

	slices.Sort(set)
	return set, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// clampInt parses digits, saturating at the maximum int.
func clampInt(digits string) int {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
