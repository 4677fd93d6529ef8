// Package structured parses model output that is expected to be JSON but
// frequently is not quite.
//
// Generation steps routinely wrap their JSON in markdown fences or
// surround it with prose. Parse applies a bounded recovery ladder before
// giving up: (1) direct parse, (2) stripping a surrounding fenced code
// block, (3) extracting the substring between the first '{' and the last
// '}'. Only when all three fail does it return a *ParseError.
package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParse is the sentinel wrapped by every *ParseError.
var ErrParse = errors.New("unparseable structured output")

// maxErrorExcerpt bounds how much offending text a ParseError carries.
const maxErrorExcerpt = 120

// ParseError reports that model output could not be parsed as structured
// data after every recovery strategy was tried.
type ParseError struct {
	// Excerpt is a truncated sample of the offending text.
	Excerpt string

	// Err is the error from the final parse attempt.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("structured output not parseable: %v (text: %q)", e.Err, e.Excerpt)
}

// Unwrap returns ErrParse so callers can classify with errors.Is.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Parse unmarshals s into v, recovering from the common ways models wrap
// their JSON. The strategies run in order and the first success wins.
func Parse(s string, v any) error {
	text := strings.TrimSpace(s)

	// 1. Direct parse.
	direct := json.Unmarshal([]byte(text), v)
	if direct == nil {
		return nil
	}

	// 2. Strip one surrounding fenced code block.
	if inner, ok := stripFence(text); ok {
		if err := json.Unmarshal([]byte(inner), v); err == nil {
			return nil
		}
	}

	// 3. Substring between the first '{' and the last '}'.
	if inner, ok := braceSpan(text); ok {
		if err := json.Unmarshal([]byte(inner), v); err == nil {
			return nil
		}
	}

	return &ParseError{
		Excerpt: excerpt(text),
		Err:     direct,
	}
}

// ParseAs parses s into a value of type T.
func ParseAs[T any](s string) (*T, error) {
	var result T
	if err := Parse(s, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// stripFence removes one surrounding markdown code fence, with or without
// a language tag ("```json" or "```").
func stripFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") {
		return "", false
	}
	rest := s[3:]

	// Drop the language tag line, if any.
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		return "", false
	}

	end := strings.LastIndex(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// braceSpan returns the substring between the first '{' and the last '}'.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func excerpt(s string) string {
	if len(s) > maxErrorExcerpt {
		return s[:maxErrorExcerpt] + "..."
	}
	return s
}
