package props

import (
	"regexp"
)

var placeholderPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// Interpolate substitutes ${name} occurrences using the lookup function. An
// unknown placeholder stays in the template verbatim. The substitution is a
// single pass, replacements are never re-interpolated.
func Interpolate(template string, lookup func(string) (string, bool)) string {
	if !placeholderPattern.MatchString(template) {
		return template
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[2 : len(match)-1]

		if value, known := lookup(name); known {
			return value
		}

		return match
	})
}

// InterpolateAll substitutes the placeholders in every value of the map.
func InterpolateAll(values map[string]string, lookup func(string) (string, bool)) {
	for name, value := range values {
		values[name] = Interpolate(value, lookup)
	}
}

// LookupMap adapts a plain map to the lookup function shape.
func LookupMap(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, known := values[name]
		return value, known
	}
}
