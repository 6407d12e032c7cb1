package dsl

import (
	"regexp"
	"strings"
)

// MaxInterpolationDepthLimit bounds recursive selector expansion, per
// spec.md §4.3.
const MaxInterpolationDepthLimit = 10

var selectorTokenRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// InterpolateSelectors expands {{NAME}} references in source against the
// selectors table, recursively, detecting both cycles and runaway depth.
// It mirrors the resolver template renderer's token-regex approach (see
// resolver/renderer.go) but resolves against an expression-level selector
// table rather than a location-path context.
func InterpolateSelectors(source string, selectors map[string]string) (string, error) {
	return interpolate(source, selectors, nil, 0)
}

func interpolate(source string, selectors map[string]string, stack []string, depth int) (string, error) {
	if depth > MaxInterpolationDepthLimit {
		return "", &MaxInterpolationDepth{MaxDepth: MaxInterpolationDepthLimit}
	}

	matches := selectorTokenRe.FindAllStringSubmatchIndex(source, -1)
	if matches == nil {
		return source, nil
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		nameStart, nameEnd := m[2], m[3]
		name := source[nameStart:nameEnd]

		sb.WriteString(source[last:start])

		for _, onStack := range stack {
			if onStack == name {
				return "", &CircularSelectorRef{Cycle: strings.Join(append(stack, name), " -> ")}
			}
		}

		value, ok := selectors[name]
		if !ok {
			return "", &UnresolvedSelectorRef{Selector: name}
		}

		expanded, err := interpolate(value, selectors, append(append([]string{}, stack...), name), depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(expanded)
		last = end
	}
	sb.WriteString(source[last:])
	return sb.String(), nil
}
