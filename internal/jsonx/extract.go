// Package jsonx pulls JSON objects out of free-form language model output.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	// ErrNoObject is returned when the text holds no balanced JSON object
	ErrNoObject = eris.New("no JSON object found")

	// ErrNotObject is returned when the text holds a JSON value other than an object
	ErrNotObject = eris.New("JSON value is not an object")
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// StripCodeFence returns the contents of the first fenced code block in raw,
// or raw trimmed of surrounding whitespace when there is none.
func StripCodeFence(raw string) string {
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// FirstObject returns the first balanced {...} span in s.
// Braces inside JSON strings are ignored.
func FirstObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", ErrNoObject
}

// ExtractObject locates the JSON object in a model response.
// Code fences are removed first; a top-level array is rejected.
func ExtractObject(raw string) (string, error) {
	candidate := StripCodeFence(raw)
	if strings.HasPrefix(candidate, "[") {
		return "", ErrNotObject
	}
	return FirstObject(candidate)
}

// DecodeObject extracts the JSON object from raw and unmarshals it into v
func DecodeObject(raw string, v any) error {
	obj, err := ExtractObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return eris.Wrap(err, "jsonx: decode object")
	}
	return nil
}
