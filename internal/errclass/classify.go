// Package errclass maps raw error signals onto a closed taxonomy of
// user-safe kinds. Raw error text is classified at the boundary where it is
// observed and never forwarded past it; only the kind and a fixed template
// cross into responses or shared logs.
package errclass

import (
	"fmt"
	"strings"
)

// Kind is one of the fixed error taxonomy classes.
type Kind string

const (
	Timeout            Kind = "timeout"
	RateLimited        Kind = "rate_limited"
	Auth               Kind = "auth"
	ToolFailure        Kind = "tool_failure"
	ServiceUnavailable Kind = "service_unavailable"
)

// Classify maps a raw error message to a taxonomy kind. Matching is a
// case-insensitive substring test in fixed priority order; first match wins.
// Order matters because messages may contain multiple matchable terms.
func Classify(message string) Kind {
	text := strings.ToLower(message)

	if strings.Contains(text, "timeout") {
		return Timeout
	}
	if strings.Contains(text, "429") || strings.Contains(text, "rate") || strings.Contains(text, "quota") {
		return RateLimited
	}
	if strings.Contains(text, "401") || strings.Contains(text, "403") || strings.Contains(text, "auth") {
		return Auth
	}
	if strings.Contains(text, "tool") {
		return ToolFailure
	}
	return ServiceUnavailable
}

// UserMessage renders the fixed user-facing template for a kind. The result
// never contains the raw error text, a provider name, or any identifier
// that is not already public.
func UserMessage(aliasName string, kind Kind) string {
	switch kind {
	case Timeout:
		return fmt.Sprintf("%s is taking longer than expected. Please try again.", aliasName)
	case RateLimited:
		return fmt.Sprintf("%s is temporarily unavailable. Switching to a fallback route.", aliasName)
	default:
		return fmt.Sprintf("%s is temporarily unavailable. Please try again shortly.", aliasName)
	}
}

// ToUserMessage classifies a raw message and renders its template in one
// step. This is the form the HTTP handlers use.
func ToUserMessage(aliasName, message string) string {
	return UserMessage(aliasName, Classify(message))
}
