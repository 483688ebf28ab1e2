package llm

import "strings"

// responseShape pulls the generated text out of one known response layout.
type responseShape struct {
	name    string
	extract func(payload map[string]any) (string, bool)
}

// responseShapes are tried in order; the first non-empty text wins.
var responseShapes = []responseShape{
	{"text", func(p map[string]any) (string, bool) {
		return str(p["text"])
	}},
	{"candidates.content.text", func(p map[string]any) (string, bool) {
		return str(field(firstCandidate(p), "content")["text"])
	}},
	{"candidates.text", func(p map[string]any) (string, bool) {
		return str(firstCandidate(p)["text"])
	}},
	{"candidates.message.content.text", func(p map[string]any) (string, bool) {
		return str(field(field(firstCandidate(p), "message"), "content")["text"])
	}},
	{"candidates.content.parts", func(p map[string]any) (string, bool) {
		parts, _ := field(firstCandidate(p), "content")["parts"].([]any)
		var b strings.Builder
		for _, part := range parts {
			m, _ := part.(map[string]any)
			if s, ok := str(m["text"]); ok {
				b.WriteString(s)
			}
		}
		return b.String(), b.Len() > 0
	}},
	{"output.content", func(p map[string]any) (string, bool) {
		out, _ := first(p["output"]).(map[string]any)
		content, _ := first(out["content"]).(map[string]any)
		return str(content["text"])
	}},
}

// ExtractText returns the first non-blank text found by any known response
// shape, trimmed. It fails with KindEmpty when no shape matches.
func ExtractText(payload map[string]any) (string, error) {
	for _, shape := range responseShapes {
		if text, ok := shape.extract(payload); ok {
			if text = strings.TrimSpace(text); text != "" {
				return text, nil
			}
		}
	}
	return "", &Error{Kind: KindEmpty, Err: ErrEmptyResponse}
}

func firstCandidate(p map[string]any) map[string]any {
	c, _ := first(p["candidates"]).(map[string]any)
	return c
}

func first(v any) any {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	return list[0]
}

func field(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	out, _ := m[key].(map[string]any)
	return out
}

func str(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}
