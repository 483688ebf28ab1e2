package chat

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Reason is a stable token describing why a conversation was rejected.
type Reason string

const (
	ReasonEmpty         Reason = "empty"
	ReasonTooMany       Reason = "too-many"
	ReasonEmptyItem     Reason = "empty-item"
	ReasonTooLong       Reason = "too-long"
	ReasonTotalTooLarge Reason = "total-too-large"
	ReasonURLNotAllowed Reason = "url-not-allowed"
)

// Limits bounds the shape and size of an inbound conversation.
// Lengths are counted in characters (runes), not bytes.
type Limits struct {
	MaxMessages     int `yaml:"max_messages"`
	MaxMessageChars int `yaml:"max_message_chars"`
	MaxTotalChars   int `yaml:"max_total_chars"`
}

// DefaultLimits returns the production conversation limits.
func DefaultLimits() Limits {
	return Limits{
		MaxMessages:     30,
		MaxMessageChars: 2000,
		MaxTotalChars:   8000,
	}
}

// ValidationError reports the first rule a conversation broke.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid conversation: %s", e.Reason)
}

var urlPattern = regexp.MustCompile(`(?i)https?://`)

// Validator checks conversations against Limits. The zero value is not usable;
// build one with NewValidator.
type Validator struct {
	limits Limits
}

// NewValidator returns a Validator; non-positive limit fields fall back to DefaultLimits.
func NewValidator(limits Limits) Validator {
	def := DefaultLimits()
	if limits.MaxMessages <= 0 {
		limits.MaxMessages = def.MaxMessages
	}
	if limits.MaxMessageChars <= 0 {
		limits.MaxMessageChars = def.MaxMessageChars
	}
	if limits.MaxTotalChars <= 0 {
		limits.MaxTotalChars = def.MaxTotalChars
	}
	return Validator{limits: limits}
}

// Limits returns the effective limits.
func (v Validator) Limits() Limits { return v.limits }

// Validate applies the rules in order and stops at the first failure:
//  1. non-empty conversation
//  2. at most MaxMessages messages
//  3. every content non-blank
//  4. every content at most MaxMessageChars
//  5. total content at most MaxTotalChars
//  6. no URL in the last message
//
// It returns nil or a *ValidationError.
func (v Validator) Validate(conv []Message) error {
	if len(conv) == 0 {
		return &ValidationError{Reason: ReasonEmpty}
	}
	if len(conv) > v.limits.MaxMessages {
		return &ValidationError{Reason: ReasonTooMany}
	}
	for _, m := range conv {
		if strings.TrimSpace(m.Content) == "" {
			return &ValidationError{Reason: ReasonEmptyItem}
		}
	}

	total := 0
	for _, m := range conv {
		n := utf8.RuneCountInString(m.Content)
		if n > v.limits.MaxMessageChars {
			return &ValidationError{Reason: ReasonTooLong}
		}
		total += n
	}
	if total > v.limits.MaxTotalChars {
		return &ValidationError{Reason: ReasonTotalTooLarge}
	}

	if urlPattern.MatchString(Latest(conv).Content) {
		return &ValidationError{Reason: ReasonURLNotAllowed}
	}
	return nil
}
