package chat

import "golang.org/x/text/language"

// Supported locales, in preference order. Korean is the product default.
var supportedLocales = []language.Tag{language.Korean, language.English}

var localeMatcher = language.NewMatcher(supportedLocales)

// NegotiateLocale picks a supported locale from an Accept-Language header value.
// It returns fallback when the header is empty, malformed or matches nothing.
func NegotiateLocale(acceptLanguage string, fallback language.Tag) language.Tag {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supportedLocales[idx]
}

// ParseLocale parses a configured locale name such as "ko" or "en".
// Unknown names resolve to Korean.
func ParseLocale(name string) language.Tag {
	tag, err := language.Parse(name)
	if err != nil {
		return language.Korean
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return language.Korean
	}
	return supportedLocales[idx]
}

type localized struct {
	ko string
	en string
}

var catalog = map[Code]localized{
	CodeValidation:    {ko: "요청이 올바르지 않습니다.", en: "The request is invalid."},
	CodeEmpty:         {ko: "메시지가 비어있습니다.", en: "The message is empty."},
	CodeTooMany:       {ko: "메시지가 너무 많습니다.", en: "Too many messages."},
	CodeTooLong:       {ko: "메시지 길이 제한을 초과했습니다.", en: "The message exceeds the length limit."},
	CodeURLBlocked:    {ko: "URL 포함은 허용되지 않습니다.", en: "Messages may not contain URLs."},
	CodeBlockedUA:     {ko: "허용되지 않는 클라이언트.", en: "This client is not allowed."},
	CodeRateLimit:     {ko: "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.", en: "Too many requests. Please try again shortly."},
	CodeTimeout:       {ko: "요청이 시간 초과되었습니다.", en: "The request timed out."},
	CodeQuotaExceeded: {ko: "모델 사용 한도가 잠시 초과되었습니다. 잠시 후 재시도해주세요.", en: "The model usage limit was exceeded. Please retry shortly."},
	CodeAuth:          {ko: "API 인증 문제가 발생했습니다. 서비스 점검 후 다시 이용해주세요.", en: "The service could not authenticate with the model provider."},
	CodeModelNotFound: {ko: "모델을 찾을 수 없습니다.", en: "The configured model was not found."},
	CodeInternal:      {ko: "서버 오류가 발생했습니다. 다시 시도해주세요.", en: "A server error occurred. Please try again."},

	CodeNotFound:         {ko: "요청한 경로를 찾을 수 없습니다.", en: "The requested path was not found."},
	CodeMethodNotAllowed: {ko: "허용되지 않는 요청 방식입니다.", en: "This method is not allowed on this path."},
}

// MessageFor returns the human-readable message for code in the given locale.
func MessageFor(code Code, locale language.Tag) string {
	msg, ok := catalog[code]
	if !ok {
		msg = catalog[CodeInternal]
	}
	if locale == language.English {
		return msg.en
	}
	return msg.ko
}
