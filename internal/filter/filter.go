// Package filter turns ordered include/exclude rules into a path predicate.
//
// A rule is a sign followed by a regular expression: "+\.bin$" includes,
// "-\.txt$" excludes. Patterns match case-insensitively against the
// relative path ("/dir/file.ext"). A path matched by no rule is included;
// otherwise the last matching rule in list order decides.
package filter

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidRule is returned for rules without a sign, without a pattern,
// or with a pattern that does not compile.
var ErrInvalidRule = errors.New("invalid filter rule")

// Predicate reports whether a relative path is included.
type Predicate func(path string) bool

// All includes every path.
func All(string) bool { return true }

type rule struct {
	include bool
	re      *regexp.Regexp
}

// Compile builds a predicate from rules. Regexes are compiled once here,
// not per path.
func Compile(rules []string) (Predicate, error) {
	if len(rules) == 0 {
		return All, nil
	}

	compiled := make([]rule, 0, len(rules))
	for _, r := range rules {
		if len(r) < 2 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRule, r)
		}

		var include bool
		switch r[0] {
		case '+':
			include = true
		case '-':
			include = false
		default:
			return nil, fmt.Errorf("%w: %q must start with '+' or '-'", ErrInvalidRule, r)
		}

		re, err := regexp.Compile("(?i)" + r[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRule, r, err)
		}
		compiled = append(compiled, rule{include: include, re: re})
	}

	return func(path string) bool {
		for i := len(compiled) - 1; i >= 0; i-- {
			if compiled[i].re.MatchString(path) {
				return compiled[i].include
			}
		}
		return true
	}, nil
}

// MustCompile is like Compile but panics on an invalid rule.
func MustCompile(rules []string) Predicate {
	p, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return p
}
