package resolver

import (
	"regexp"
	"strings"
)

// RenderContext selects how TemplateRenderer validates and encodes
// substituted token values, matching original_source/resolver/renderer.rs.
type RenderContext int

const (
	ContextGeneric RenderContext = iota
	ContextPath
	ContextEndpoint
)

var (
	templateTokenRe = regexp.MustCompile(`\{([^{}]*)\}`)
	templateNameRe  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// TemplateRenderer substitutes {name} tokens in a ResolutionStrategy
// template against a variable context, applying the exact validation and
// encoding rules of original_source/resolver/renderer.rs: token names must
// match templateNameRe; ".." is rejected unconditionally in any resolved
// value; "/" and "\" are rejected only in ContextGeneric (Path/Endpoint
// contexts expect and percent-encode them away); control characters are
// always rejected; Path/Endpoint contexts percent-encode each substituted
// value's unreserved-byte-set complement before insertion.
type TemplateRenderer struct {
	Context RenderContext
}

// NewTemplateRenderer constructs a renderer for the given context.
func NewTemplateRenderer(ctx RenderContext) *TemplateRenderer {
	return &TemplateRenderer{Context: ctx}
}

// Render substitutes every {name} token in template using vars, returning
// an error naming the first offending token.
func (r *TemplateRenderer) Render(template string, vars map[string]string) (string, error) {
	var outerErr error
	result := templateTokenRe.ReplaceAllStringFunc(template, func(match string) string {
		if outerErr != nil {
			return match
		}
		name := templateTokenRe.FindStringSubmatch(match)[1]
		if !templateNameRe.MatchString(name) {
			outerErr = &TemplateSyntaxError{Template: template, Token: match, Reason: "token name must match [a-zA-Z_][a-zA-Z0-9_]*"}
			return match
		}
		value, ok := vars[name]
		if !ok {
			outerErr = &UnresolvedTemplateVar{Var: name}
			return match
		}
		if err := r.validateValue(value, template, match); err != nil {
			outerErr = err
			return match
		}
		if r.Context == ContextPath || r.Context == ContextEndpoint {
			return percentEncodeUnreserved(value)
		}
		return value
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

func (r *TemplateRenderer) validateValue(value, template, token string) error {
	if strings.Contains(value, "..") {
		return &TemplateSyntaxError{Template: template, Token: token, Reason: "value contains '..'"}
	}
	for _, ch := range value {
		if ch < 0x20 || ch == 0x7f {
			return &TemplateSyntaxError{Template: template, Token: token, Reason: "value contains a control character"}
		}
	}
	if r.Context == ContextGeneric {
		if strings.ContainsAny(value, "/\\") {
			return &TemplateSyntaxError{Template: template, Token: token, Reason: "value contains a path separator in a generic context"}
		}
	}
	return nil
}

func isUnreservedByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~':
		return true
	default:
		return false
	}
}

const hexDigits = "0123456789ABCDEF"

func percentEncodeUnreserved(value string) string {
	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		b := value[i]
		if isUnreservedByte(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hexDigits[b>>4])
		sb.WriteByte(hexDigits[b&0xf])
	}
	return sb.String()
}
