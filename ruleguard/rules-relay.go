package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

func relay(m dsl.Matcher) {
	// Retry backoff goes through the injected sleeper so tests run without waiting.
	m.Match(`time.Sleep($_)`).
		Where(m.File().PkgPath.Matches(`/internal/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`sleep through the service's sleeper so the wait honours ctx and stays testable`)

	// Upstream calls go through the go-openai client and its configured timeout.
	m.Match(`http.DefaultClient`, `http.Get($*_)`, `http.Post($*_)`).
		Where(m.File().PkgPath.Matches(`/internal/`)).
		Report(`use the configured upstream client; the default client has no timeout`)

	// Upstream and rate-limit errors are wrapped, so sentinels need errors.Is.
	m.Match(`$err == $sentinel`, `$err != $sentinel`).
		Where(m["err"].Type.Is(`error`) && m["sentinel"].Text.Matches(`^(\w+\.)?Err\w+$`)).
		Report(`compare wrapped errors with errors.Is($err, $sentinel)`).
		Suggest(`errors.Is($err, $sentinel)`)

	// Handlers and services receive their context; only cmd/ owns the root.
	m.Match(`context.Background()`, `context.TODO()`).
		Where(m.File().PkgPath.Matches(`/internal/`) && !m.File().Name.Matches(`_test\.go$`)).
		Report(`thread the caller's context instead of starting a new root`)

	// Guards that return the same failure collapse into one condition.
	m.Match(`if $c1 { return $ret }; if $c2 { return $ret }`).
		Where(!m["ret"].Text.Matches(`^nil$`)).
		Report(`both guards return $ret; merge the conditions with ||`).
		Suggest(`if $c1 || $c2 { return $ret }`)
}
