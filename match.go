// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package zipper

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// ExtractMode selects how the file list of [Zipper.ExtractTo] is applied.
// The flags can be combined, e.g. Whitelist|ExactMatch.
type ExtractMode int

const (
	// Whitelist extracts only the entries matching the file list.
	Whitelist ExtractMode = 1 << iota

	// Blacklist extracts all entries except the ones matching the file list.
	// It applies whenever Whitelist is not set.
	Blacklist

	// ExactMatch compares entry names with the file list for equality instead
	// of matching them as prefixes.
	ExactMatch
)

// IsWhitelist returns true if only matching entries are extracted.
func (m ExtractMode) IsWhitelist() bool {
	return m&Whitelist != 0
}

// IsExactMatch returns true if names are compared for equality.
func (m ExtractMode) IsExactMatch() bool {
	return m&ExactMatch != 0
}

// String returns the flags of m, e.g. whitelist|exact.
func (m ExtractMode) String() string {
	s := "blacklist"
	if m.IsWhitelist() {
		s = "whitelist"
	}
	if m.IsExactMatch() {
		s += "|exact"
	}
	return s
}

// listFilter returns a predicate that decides for a relative entry name if
// it is extracted.
func listFilter(files []string, mode ExtractMode) func(name string) bool {
	matches := func(name string) bool {
		return hasAnyPrefix(name, files)
	}
	if mode.IsExactMatch() {
		matches = func(name string) bool {
			return containsString(files, name)
		}
	}

	if mode.IsWhitelist() {
		return matches
	}
	return func(name string) bool {
		return !matches(name)
	}
}

// hasAnyPrefix returns true if s starts with one of the prefixes. Empty
// prefixes never match.
func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// containsString returns true if list contains s
func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

// patternBrackets maps opening to closing delimiters of bracket style patterns
var patternBrackets = map[byte]byte{'(': ')', '[': ']', '{': '}', '<': '>'}

// patternFlags maps the flags of a delimited pattern to regexp2 options
var patternFlags = map[rune]regexp2.RegexOptions{
	'i': regexp2.IgnoreCase,
	'm': regexp2.Multiline,
	's': regexp2.Singleline,
	'x': regexp2.IgnorePatternWhitespace,
	'n': regexp2.ExplicitCapture,
	'u': regexp2.None, // names are UTF-8 already
}

// Pattern is a compiled regular expression used to select entries.
type Pattern struct {
	expr string
	re   *regexp2.Regexp
}

// CompilePattern compiles the delimited expression expr, like `/\.txt$/` or
// `#^logs/#i`. The delimiter can be any ASCII character except letters,
// digits, backslash and white space. Bracket pairs like `{\.txt$}` delimit
// as well. A timeout > 0 bounds the time spent on a single match.
func CompilePattern(expr string, timeout time.Duration) (*Pattern, error) {
	if expr == "" {
		return nil, ErrEmptyPattern
	}

	body, opts, err := splitDelimited(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, err)
	}
	re, err := regexp2.Compile(body, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPattern, err)
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &Pattern{expr: expr, re: re}, nil
}

// splitDelimited returns the body and options of a delimited expression.
// Leading white space is skipped. The body ends at the first closing delimiter
// that is not escaped, everything after it must be flags.
func splitDelimited(expr string) (string, regexp2.RegexOptions, error) {
	expr = strings.TrimLeft(expr, " \t\n\r\v\f")
	if expr == "" {
		return "", regexp2.None, errors.New("empty regular expression")
	}

	open := expr[0]
	if !isDelimiter(open) {
		return "", regexp2.None, fmt.Errorf("delimiter %q must not be alphanumeric or backslash", open)
	}
	closing := open
	if c, ok := patternBrackets[open]; ok {
		closing = c
	}

	end := -1
	depth := 1
	for i := 1; i < len(expr) && end < 0; i++ {
		switch c := expr[i]; {
		case c == '\\':
			i++
		case c == closing:
			if depth--; depth == 0 {
				end = i
			}
		case c == open:
			depth++
		}
	}
	if end < 0 {
		return "", regexp2.None, fmt.Errorf("no ending delimiter %q found", closing)
	}

	opts := regexp2.None
	for _, flag := range expr[end+1:] {
		o, ok := patternFlags[flag]
		if !ok {
			return "", regexp2.None, fmt.Errorf("unknown modifier %q", flag)
		}
		opts |= o
	}
	return expr[1:end], opts, nil
}

// isDelimiter returns true if c may enclose a pattern
func isDelimiter(c byte) bool {
	switch {
	case c >= utf8.RuneSelf, c == '\\', c == 0:
		return false
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	}
	return true
}

// MatchString reports whether s contains a match of the pattern. An error is
// returned if the match timed out.
func (p *Pattern) MatchString(s string) (bool, error) {
	return p.re.MatchString(s)
}

// String returns the expression the pattern was compiled from.
func (p *Pattern) String() string {
	return p.expr
}
