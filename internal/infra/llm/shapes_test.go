package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractText_KnownShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"top-level text", `{"text":" plain "}`, "plain"},
		{"candidate content text", `{"candidates":[{"content":{"text":"A"}}]}`, "A"},
		{"candidate text", `{"candidates":[{"text":"B"}]}`, "B"},
		{"candidate message", `{"candidates":[{"message":{"content":{"text":"C"}}}]}`, "C"},
		{"candidate parts", `{"candidates":[{"content":{"parts":[{"text":"D1"},{"inline":1},{"text":"D2"}]}}]}`, "D1D2"},
		{"output content", `{"output":[{"content":[{"text":"E"}]}]}`, "E"},
		{"first candidate wins", `{"candidates":[{"text":"first"},{"text":"second"}]}`, "first"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var payload map[string]any
			if err := json.Unmarshal([]byte(tc.body), &payload); err != nil {
				t.Fatalf("bad fixture: %v", err)
			}
			got, err := ExtractText(payload)
			if err != nil {
				t.Fatalf("ExtractText failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractText_Empty(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{}`,
		`{"text":"   "}`,
		`{"candidates":[]}`,
		`{"candidates":[{"content":{"parts":[]}}]}`,
		`{"candidates":"nope"}`,
		`{"output":[{"content":[{"text":""}]}]}`,
	} {
		var payload map[string]any
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			t.Fatalf("bad fixture %s: %v", body, err)
		}
		if _, err := ExtractText(payload); KindOf(err) != KindEmpty {
			t.Errorf("%s: expected empty kind, got %v", body, err)
		}
	}
}
