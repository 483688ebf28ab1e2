package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// contentKeys are log attribute names that would carry conversation text.
const contentKeys = `^"(content|messages|message_content|prompt|reply|conversation|user_agent|client_key|ip|x_forwarded_for)"$`

func privacy(m dsl.Matcher) {
	// Conversation text and caller identity never reach the logs.
	m.Match(`$log.$_($*_, $key, $*_)`).
		Where(m["log"].Type.Is(`*slog.Logger`) && m["key"].Const && m["key"].Text.Matches(contentKeys)).
		Report(`log attribute $key would record conversation content or caller identity`)

	m.Match(`slog.String($key, $_)`, `slog.Any($key, $_)`).
		Where(m["key"].Const && m["key"].Text.Matches(contentKeys)).
		Report(`log attribute $key would record conversation content or caller identity`)

	// Library code logs through slog; only cmd/ prints to stdout.
	m.Match(`fmt.Println($*_)`, `fmt.Printf($*_)`, `fmt.Print($*_)`).
		Where(!m.File().PkgPath.Matches(`/cmd/`)).
		Report(`use the injected *slog.Logger instead of printing to stdout`)

	// Request bodies are size-capped before decoding.
	m.Match(`json.NewDecoder($r.Body).Decode($_)`).
		Where(m["r"].Type.Is(`*http.Request`)).
		Report(`wrap $r.Body with http.MaxBytesReader before decoding`)
}
