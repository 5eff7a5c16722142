package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// Characters that must be escaped when translating a glob to a regexp.
const regexMetaCharacters = ".+$^[](){\\|"

// Matcher is a compiled restricted glob. Only '?', '*' and '**' act as
// wildcards, everything else matches literally. The ranking counts the
// literal characters, so that more specific patterns win over generic ones.
type Matcher struct {
	pattern  *regexp.Regexp
	glob     string
	literals int
}

// Compile translates the restricted glob: '?' matches any character except
// the path separator, '*' any run of such characters and '**' any run
// including separators.
func Compile(glob string) *Matcher {
	literals := 0
	builder := strings.Builder{}
	builder.WriteByte('^')

	for i := 0; i < len(glob); i++ {
		c := glob[i]

		switch c {
		case '?':
			builder.WriteString("[^/]")

		case '*':
			if next := i + 1; next < len(glob) && glob[next] == '*' {
				// Traverse the path component boundaries
				builder.WriteString(".*")
				i = next
			} else {
				builder.WriteString("[^/]*")
			}

		default:
			if strings.IndexByte(regexMetaCharacters, c) != -1 {
				builder.WriteByte('\\')
				builder.WriteByte(c)
				break
			}

			builder.WriteByte(c)
			literals++
		}
	}

	builder.WriteByte('$')

	return &Matcher{
		pattern:  regexp.MustCompile(builder.String()),
		glob:     glob,
		literals: literals,
	}
}

func (m *Matcher) String() string {
	return m.glob
}

// Match tests the whole string against the pattern.
func (m *Matcher) Match(s string) bool {
	return m.pattern.MatchString(s)
}

// Ranking returns the literal-character count used for specificity ordering.
func (m *Matcher) Ranking() int {
	return m.literals
}

// Less orders matchers by descending ranking, then lexicographically over the
// original glob, which keeps the order deterministic and consistent with
// equality over the glob text.
func Less(a *Matcher, b *Matcher) bool {
	if a.literals != b.literals {
		return a.literals > b.literals
	}

	return a.glob < b.glob
}

// Sort orders a matcher slice with Less.
func Sort(matchers []*Matcher) {
	sort.Slice(matchers, func(i, j int) bool {
		return Less(matchers[i], matchers[j])
	})
}

// BestMatches returns the matchers that match the path and share the highest
// ranking among the matching ones. The input must be ordered with Sort.
func BestMatches(matchers []*Matcher, path string) []*Matcher {
	var result []*Matcher
	ranking := -1

	for _, matcher := range matchers {
		if !matcher.Match(path) {
			continue
		}

		if len(result) == 0 {
			// First match sets the rank to find
			ranking = matcher.Ranking()
			result = append(result, matcher)
			continue
		}

		if matcher.Ranking() == ranking {
			result = append(result, matcher)
			continue
		}

		// Thanks to sorting no need to continue
		break
	}

	return result
}

// Filter compiles a set of globs into a predicate over full location strings,
// as used by the uninstall surface.
func Filter(globs []string) func(string) bool {
	matchers := make([]*Matcher, 0, len(globs))
	for _, glob := range globs {
		matchers = append(matchers, Compile(glob))
	}

	return func(location string) bool {
		for _, matcher := range matchers {
			if matcher.Match(location) {
				return true
			}
		}

		return false
	}
}
