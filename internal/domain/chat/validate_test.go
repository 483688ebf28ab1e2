package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userMsgs(contents ...string) []Message {
	out := make([]Message, len(contents))
	for i, c := range contents {
		out[i] = Message{Role: RoleUser, Content: c}
	}
	return out
}

func reasonOf(t *testing.T, err error) Reason {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	return ve.Reason
}

func TestValidator_Validate_Accepts(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	assert.NoError(t, v.Validate(userMsgs("hello")))
	assert.NoError(t, v.Validate(userMsgs(strings.Repeat("a", 2000))))
	assert.NoError(t, v.Validate(userMsgs("see http://example.com", "thanks")), "URLs in earlier turns are allowed")
}

func TestValidator_Validate_Rejects(t *testing.T) {
	t.Parallel()

	thirtyOne := make([]Message, 31)
	for i := range thirtyOne {
		thirtyOne[i] = Message{Role: RoleUser, Content: "x"}
	}
	// Four full messages exceed the total even though each fits.
	bulky := userMsgs(strings.Repeat("a", 2000), strings.Repeat("b", 2000),
		strings.Repeat("c", 2000), strings.Repeat("d", 2000), "e")

	cases := []struct {
		name string
		conv []Message
		want Reason
	}{
		{"nil", nil, ReasonEmpty},
		{"empty", []Message{}, ReasonEmpty},
		{"too many", thirtyOne, ReasonTooMany},
		{"blank last", userMsgs("hi", "   "), ReasonEmptyItem},
		{"blank middle", userMsgs("hi", "\t\n", "there"), ReasonEmptyItem},
		{"too long", userMsgs(strings.Repeat("a", 2001)), ReasonTooLong},
		{"total too large", bulky, ReasonTotalTooLarge},
		{"http url", userMsgs("check http://evil.com"), ReasonURLNotAllowed},
		{"https url any case", userMsgs("hi", "HTTPS://Example.com"), ReasonURLNotAllowed},
	}
	v := NewValidator(DefaultLimits())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, reasonOf(t, v.Validate(tc.conv)))
		})
	}
}

func TestValidator_Validate_TooManyRegardlessOfContent(t *testing.T) {
	t.Parallel()

	conv := make([]Message, 31)
	for i := range conv {
		conv[i] = Message{Role: RoleUser, Content: ""}
	}
	assert.Equal(t, ReasonTooMany, reasonOf(t, NewValidator(DefaultLimits()).Validate(conv)))
}

func TestValidator_CountsRunesNotBytes(t *testing.T) {
	t.Parallel()

	// 2000 Hangul syllables are 6000 bytes but within the character limit.
	assert.NoError(t, NewValidator(DefaultLimits()).Validate(userMsgs(strings.Repeat("마", 2000))))
}

func TestNewValidator_DefaultsNonPositiveLimits(t *testing.T) {
	t.Parallel()

	v := NewValidator(Limits{MaxMessages: 2})
	assert.Equal(t, Limits{MaxMessages: 2, MaxMessageChars: 2000, MaxTotalChars: 8000}, v.Limits())
	assert.Equal(t, ReasonTooMany, reasonOf(t, v.Validate(userMsgs("a", "b", "c"))))
}

func TestValidate_BlankLatestMessageIsEmptyItem(t *testing.T) {
	t.Parallel()

	v := NewValidator(DefaultLimits())
	assert.Equal(t, ReasonEmptyItem, reasonOf(t, v.Validate(userMsgs("hello", "   "))))
	assert.Equal(t, CodeEmpty, validationCode(ReasonEmptyItem))
}

func TestValidationCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeEmpty, validationCode(ReasonEmpty))
	assert.Equal(t, CodeEmpty, validationCode(ReasonEmptyItem))
	assert.Equal(t, CodeTooMany, validationCode(ReasonTooMany))
	assert.Equal(t, CodeTooLong, validationCode(ReasonTooLong))
	assert.Equal(t, CodeTooLong, validationCode(ReasonTotalTooLarge))
	assert.Equal(t, CodeURLBlocked, validationCode(ReasonURLNotAllowed))
	assert.Equal(t, CodeValidation, validationCode(Reason("other")))
}

func TestBuildPrompt_UsesLatestMessageOnly(t *testing.T) {
	t.Parallel()

	got := BuildPrompt("SYS", "latest: ", userMsgs("first", "second"))
	assert.Equal(t, "SYS\nlatest: second", got)
}
