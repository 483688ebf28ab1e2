package chat

import (
	"regexp"

	"github.com/matiasleandrokruk/soksol/internal/infra/llm"
)

// textRules classify errors that carry no usable kind, first match wins.
var textRules = []struct {
	pattern *regexp.Regexp
	code    Code
}{
	{regexp.MustCompile(`(?i)abort|timeout|timed out|deadline`), CodeTimeout},
	{regexp.MustCompile(`(?i)429|\brate\b|rate[ _-]?limit|too many`), CodeRateLimit},
	{regexp.MustCompile(`(?i)quota|exceed`), CodeQuotaExceeded},
	{regexp.MustCompile(`(?i)api key|permission|unauthorized|403|401`), CodeAuth},
	{regexp.MustCompile(`(?i)404|not found|model`), CodeModelNotFound},
}

// Classify maps an upstream error onto a client-facing code. Typed kinds
// decide first; untyped errors are matched on their text.
func Classify(err error) Code {
	if err == nil {
		return CodeOK
	}
	switch llm.KindOf(err) {
	case llm.KindTimeout:
		return CodeTimeout
	case llm.KindRateLimited:
		return CodeRateLimit
	case llm.KindQuota:
		return CodeQuotaExceeded
	case llm.KindAuth, llm.KindConfig:
		return CodeAuth
	case llm.KindNotFound:
		return CodeModelNotFound
	case llm.KindEmpty, llm.KindUnavailable:
		return CodeInternal
	}
	return ClassifyText(err.Error())
}

// ClassifyText applies the substring rules to a raw error message.
func ClassifyText(msg string) Code {
	for _, rule := range textRules {
		if rule.pattern.MatchString(msg) {
			return rule.code
		}
	}
	return CodeInternal
}
