// Package redaction strips vendor/model identifiers and secret-like
// substrings from arbitrary JSON-compatible data before it leaves the
// process boundary. Every telemetry event and every ingested log payload
// passes through Value before it is written anywhere.
package redaction

import "regexp"

// Sentinel replaces every redacted substring or value.
const Sentinel = "[redacted]"

// MaxDepth bounds recursion into nested structures. Subtrees nested past
// the bound collapse to the sentinel. The bound is generous enough that
// well-formed payloads never reach it; it exists as a safety valve against
// pathological input, not as a correctness feature.
const MaxDepth = 5

// blocklist matches known provider and model family names, case-insensitive
// on word boundaries.
var blocklist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bopenai\b`),
	regexp.MustCompile(`(?i)\banthropic\b`),
	regexp.MustCompile(`(?i)\bgoogle\b`),
	regexp.MustCompile(`(?i)\bmeta\b`),
	regexp.MustCompile(`(?i)\bmistral\b`),
	regexp.MustCompile(`(?i)\bxai\b`),
	regexp.MustCompile(`(?i)\bgemini\b`),
	regexp.MustCompile(`(?i)\bclaude\b`),
	regexp.MustCompile(`(?i)\bllama\b`),
	regexp.MustCompile(`(?i)\bmixtral\b`),
	regexp.MustCompile(`(?i)\bwhisper\b`),
	regexp.MustCompile(`(?i)\bgpt(?:-[a-z0-9.-]+)?\b`),
	regexp.MustCompile(`(?i)\bo\d(?:-[a-z0-9.-]+)?\b`),
}

// secretPatterns matches URLs, credential-prefixed tokens and known
// secret-token formats.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)https?://[^\s"']+`),
	regexp.MustCompile(`(?i)\b(?:api[_-]?key|authorization|bearer)\b[:=]?\s*[a-z0-9._-]+`),
	regexp.MustCompile(`(?i)\bgithub_pat_[a-z0-9_]+\b`),
	regexp.MustCompile(`(?i)\bsk-[a-z0-9]{12,}\b`),
}

// sensitiveKey matches mapping keys whose entire value must be masked
// regardless of its type. Substring match, case-insensitive.
var sensitiveKey = regexp.MustCompile(`(?i)(provider|model|endpoint|key|secret|token|region|deployment)`)

// String redacts a single string: blocklisted vendor/model terms first,
// then secret-like substrings.
func String(input string) string {
	value := input
	for _, pattern := range blocklist {
		value = pattern.ReplaceAllString(value, Sentinel)
	}
	for _, pattern := range secretPatterns {
		value = pattern.ReplaceAllString(value, Sentinel)
	}
	return value
}

// Value recursively redacts a JSON-compatible value: strings via String,
// list elements independently with order preserved, mapping values keyed by
// a sensitive key name replaced wholesale with the sentinel. Non-string
// scalars pass through unchanged.
func Value(value any) any {
	return redact(value, 0)
}

func redact(value any, depth int) any {
	if depth > MaxDepth {
		return Sentinel
	}

	switch v := value.(type) {
	case string:
		return String(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redact(item, depth+1)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			if sensitiveKey.MatchString(k) {
				out[k] = Sentinel
				continue
			}
			out[k] = redact(inner, depth+1)
		}
		return out
	default:
		return value
	}
}
