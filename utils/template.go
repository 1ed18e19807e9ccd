package utils

import "strings"

// TestPlaceholder is substituted for every token when rendering in test mode,
// so a template's structure can be previewed without real board data.
const TestPlaceholder = "[TEST]"

// TemplateField is one substitution candidate for a template token.
type TemplateField struct {
	ID   string
	Text string
}

// RenderResult carries the rendered message plus per-token diagnostics.
type RenderResult struct {
	Message    string
	Replaced   []string
	Unreplaced []string
}

// RenderTemplate substitutes {field_id} tokens left to right using the given
// fields. A token whose field is missing or has empty text is left in the
// output verbatim, which is distinguishable from substituting an empty
// string. Substituted text is never re-scanned, so board data containing
// braces cannot trigger further expansion.
func RenderTemplate(template string, fields []TemplateField) RenderResult {
	byID := make(map[string]string, len(fields))
	for _, f := range fields {
		if _, ok := byID[f.ID]; !ok {
			byID[f.ID] = f.Text
		}
	}

	return renderTokens(template, func(token string) (string, bool) {
		text, ok := byID[token]
		if !ok || text == "" {
			return "", false
		}
		return text, true
	})
}

// RenderTestTemplate replaces every token with TestPlaceholder regardless of
// whether a field would resolve it.
func RenderTestTemplate(template string) RenderResult {
	return renderTokens(template, func(string) (string, bool) {
		return TestPlaceholder, true
	})
}

func renderTokens(template string, resolve func(token string) (string, bool)) RenderResult {
	var out strings.Builder
	var res RenderResult

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			break
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			out.WriteString(rest)
			break
		}
		close += open

		out.WriteString(rest[:open])
		token := rest[open+1 : close]

		if value, ok := resolveNonEmpty(token, resolve); ok {
			out.WriteString(value)
			res.Replaced = append(res.Replaced, token)
		} else {
			out.WriteString(rest[open : close+1])
			res.Unreplaced = append(res.Unreplaced, token)
		}
		rest = rest[close+1:]
	}

	res.Message = out.String()
	return res
}

// resolveNonEmpty rejects the degenerate "{}" token before resolving.
func resolveNonEmpty(token string, resolve func(string) (string, bool)) (string, bool) {
	if token == "" {
		return "", false
	}
	return resolve(token)
}
