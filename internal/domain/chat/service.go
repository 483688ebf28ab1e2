package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/matiasleandrokruk/soksol/internal/infra/eventbus"
	"github.com/matiasleandrokruk/soksol/internal/infra/llm"
	"github.com/matiasleandrokruk/soksol/internal/infra/ratelimit"
)

// Stage names a step of the request pipeline. A Failure carries the stage
// whose gate rejected the request.
type Stage string

const (
	StageReceived       Stage = "received"
	StageUAChecked      Stage = "ua_checked"
	StageRateChecked    Stage = "rate_checked"
	StageValidated      Stage = "validated"
	StagePromptBuilt    Stage = "prompt_built"
	StageUpstreamCalled Stage = "upstream_called"
	StageResponded      Stage = "responded"
)

// TopicOutcome is the event bus topic carrying one Outcome per handled request.
const TopicOutcome = "chat.outcome"

// maxDiagnosticLen caps the error text written to logs.
const maxDiagnosticLen = 200

// Outcome summarizes a handled request. It holds no content and no client key.
type Outcome struct {
	Code     Code
	Status   int
	Stage    Stage
	Duration time.Duration
}

// Request is one chat turn as seen by the pipeline.
type Request struct {
	ClientKey string
	UserAgent string
	// Locale selects the language of failure messages; the zero Tag uses the
	// service default.
	Locale   language.Tag
	Messages []Message
}

// Generator produces reply text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RateGate admits or rejects a request for a client key.
type RateGate interface {
	Consume(clientKey string) ratelimit.Decision
}

// DefaultBlockedUserAgents lists the scripted clients refused by default.
func DefaultBlockedUserAgents() []string {
	return []string{`(?i)python-requests`, `(?i)curl/\d+`, `(?i)wget`}
}

// ServiceConfig holds the tunables of a Service. Zero fields take defaults.
type ServiceConfig struct {
	Limits            Limits
	BlockedUserAgents []string
	SystemPrompt      string
	LatestLabel       string
	DefaultLocale     language.Tag
}

// Option customizes a Service.
type Option func(*Service)

// WithSleeper replaces the cooperative delay; tests pass a no-op.
func WithSleeper(s llm.Sleeper) Option {
	return func(svc *Service) { svc.sleep = s }
}

// WithClock replaces time.Now for outcome durations.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// WithPublisher sets where outcomes are published.
func WithPublisher(p eventbus.Publisher) Option {
	return func(svc *Service) { svc.bus = p }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// Service runs one chat turn through the pipeline:
// user-agent check, rate gate, validation, prompt assembly, upstream call.
type Service struct {
	gate      RateGate
	generator Generator
	validator Validator

	blockedUA     []*regexp.Regexp
	systemPrompt  string
	latestLabel   string
	defaultLocale language.Tag

	bus    eventbus.Publisher
	logger *slog.Logger
	sleep  llm.Sleeper
	now    func() time.Time

	rateWarn rate.Sometimes
}

// NewService wires a Service. It fails only on an invalid user-agent pattern.
func NewService(gate RateGate, generator Generator, cfg ServiceConfig, opts ...Option) (*Service, error) {
	patterns := cfg.BlockedUserAgents
	if patterns == nil {
		patterns = DefaultBlockedUserAgents()
	}
	blocked := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile user-agent pattern %q: %w", p, err)
		}
		blocked = append(blocked, re)
	}

	s := &Service{
		gate:          gate,
		generator:     generator,
		validator:     NewValidator(cfg.Limits),
		blockedUA:     blocked,
		systemPrompt:  orDefault(cfg.SystemPrompt, DefaultSystemPrompt),
		latestLabel:   orDefault(cfg.LatestLabel, DefaultLatestLabel),
		defaultLocale: cfg.DefaultLocale,
		logger:        slog.Default(),
		sleep:         llm.SleepContext,
		now:           time.Now,
		rateWarn:      rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
	if s.defaultLocale == language.Und {
		s.defaultLocale = language.Korean
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Handle runs req through the pipeline and returns the reply or a classified
// failure. Exactly one Outcome is published per call.
func (s *Service) Handle(ctx context.Context, req Request) (string, *Failure) {
	start := s.now()
	reply, failure := s.run(ctx, req)

	outcome := Outcome{Code: CodeOK, Status: statusFor(CodeOK), Stage: StageResponded, Duration: s.now().Sub(start)}
	if failure != nil {
		outcome.Code, outcome.Status, outcome.Stage = failure.Code, failure.Status, failure.Stage
	}
	if s.bus != nil {
		s.bus.Publish(TopicOutcome, outcome)
	}
	return reply, failure
}

func (s *Service) run(ctx context.Context, req Request) (string, *Failure) {
	if s.blockedUserAgent(req.UserAgent) {
		return "", s.fail(req, StageUAChecked, CodeBlockedUA, nil)
	}

	decision := s.gate.Consume(req.ClientKey)
	if !decision.Allowed {
		s.rateWarn.Do(func() {
			s.logger.Warn("chat rate limit exceeded", "count", decision.Count)
		})
		return "", s.fail(req, StageRateChecked, CodeRateLimit, nil)
	}
	if decision.Delay > 0 {
		if err := s.sleep(ctx, decision.Delay); err != nil {
			return "", s.fail(req, StageRateChecked, Classify(err), err)
		}
	}

	if err := s.validator.Validate(req.Messages); err != nil {
		reason := ReasonEmpty
		var ve *ValidationError
		if errors.As(err, &ve) {
			reason = ve.Reason
		}
		return "", s.fail(req, StageValidated, validationCode(reason), err)
	}

	prompt := BuildPrompt(s.systemPrompt, s.latestLabel, req.Messages)
	s.logger.Debug("chat request admitted", "stage", string(StagePromptBuilt), "turns", len(req.Messages))

	reply, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", s.fail(req, StageUpstreamCalled, Classify(err), err)
	}
	return reply, nil
}

func (s *Service) blockedUserAgent(ua string) bool {
	for _, re := range s.blockedUA {
		if re.MatchString(ua) {
			return true
		}
	}
	return false
}

// fail builds the Failure and logs a bounded diagnostic for server-side errors.
func (s *Service) fail(req Request, stage Stage, code Code, cause error) *Failure {
	locale := req.Locale
	if locale == language.Und {
		locale = s.defaultLocale
	}
	f := &Failure{
		Status:  statusFor(code),
		Code:    code,
		Message: MessageFor(code, locale),
		Stage:   stage,
		cause:   cause,
	}
	if cause != nil && stage == StageUpstreamCalled {
		s.logger.Error("chat upstream failed",
			"stage", string(stage),
			"code", string(code),
			"error", diagnostic(cause),
		)
	}
	return f
}

func diagnostic(err error) string {
	msg := err.Error()
	if utf8.RuneCountInString(msg) <= maxDiagnosticLen {
		return msg
	}
	return string([]rune(msg)[:maxDiagnosticLen])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
