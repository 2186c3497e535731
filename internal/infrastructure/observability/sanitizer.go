package observability

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PIILevel controls how much of a farmer's prompt reaches trace attributes.
type PIILevel string

const (
	PIILevelNone   PIILevel = "none"
	PIILevelHashed PIILevel = "hashed"
	PIILevelFull   PIILevel = "full"
)

const (
	redacted        = "[REDACTED]"
	maxPromptLength = 256
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s.-]{7,}\d`)
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
)

// Sanitizer scrubs personal data before it is attached to spans.
type Sanitizer struct {
	level PIILevel
	salt  string
}

// NewSanitizer falls back to PIILevelNone for unknown levels.
func NewSanitizer(level string, salt string) *Sanitizer {
	return &Sanitizer{level: parsePIILevel(level), salt: salt}
}

func parsePIILevel(raw string) PIILevel {
	switch l := PIILevel(strings.ToLower(strings.TrimSpace(raw))); l {
	case PIILevelHashed, PIILevelFull:
		return l
	}
	return PIILevelNone
}

// Prompt returns a trace-safe preview of user content.
func (s *Sanitizer) Prompt(input string) string {
	switch s.level {
	case PIILevelFull:
		return truncate(input)
	case PIILevelHashed:
		out := emailPattern.ReplaceAllStringFunc(input, func(m string) string { return "[EMAIL:" + s.hash(m) + "]" })
		out = ipv4Pattern.ReplaceAllStringFunc(out, func(m string) string { return "[IP:" + s.hash(m) + "]" })
		out = phonePattern.ReplaceAllStringFunc(out, func(m string) string { return "[PHONE:" + s.hash(m) + "]" })
		return truncate(out)
	default:
		return redacted
	}
}

// UserID hashes the caller id unless the level is full.
func (s *Sanitizer) UserID(id string) string {
	switch {
	case id == "":
		return ""
	case s.level == PIILevelFull:
		return id
	case s.level == PIILevelHashed:
		return s.hash(id)
	default:
		return redacted
	}
}

// AnnotateRun attaches the sanitized caller and prompt to a run span.
func (s *Sanitizer) AnnotateRun(span trace.Span, userID, prompt string) {
	span.SetAttributes(
		attribute.String("enduser.id", s.UserID(userID)),
		attribute.String("run.prompt", s.Prompt(prompt)),
		attribute.Int("run.prompt_length", utf8.RuneCountInString(prompt)),
	)
}

func (s *Sanitizer) hash(v string) string {
	sum := sha256.Sum256([]byte(v + s.salt))
	return hex.EncodeToString(sum[:])[:8]
}

func truncate(v string) string {
	if utf8.RuneCountInString(v) <= maxPromptLength {
		return v
	}
	return string([]rune(v)[:maxPromptLength]) + "…"
}
