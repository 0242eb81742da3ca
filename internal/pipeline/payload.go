package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/aretw0/triage/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

var (
	errNoJSONObject   = errors.New("no JSON object found in model output")
	errUnbalancedJSON = errors.New("unterminated JSON object in model output")
)

// ExtractJSON finds the first balanced JSON object in free model text,
// skipping code fences and surrounding prose, and decodes it into a map.
func ExtractJSON(text string) (map[string]any, error) {
	obj, err := firstObject(stripFences(text))
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(obj), &out); err != nil {
		return nil, fmt.Errorf("malformed JSON object: %w", err)
	}
	return out, nil
}

// stripFences drops markdown fence lines such as ```json and ```.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

// firstObject returns the first {...} span whose braces balance, ignoring
// braces inside JSON strings.
func firstObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return text[start : i+1], nil
			}
		}
	}
	return "", errUnbalancedJSON
}

// decodeStage turns raw model text into out, validating it against s first.
// Every failure is a parse error for stage carrying raw for the logs.
func decodeStage(stage domain.Stage, raw string, s schema.Schema, out any) error {
	payload, err := ExtractJSON(raw)
	if err != nil {
		return domain.NewParseError(stage, raw, err)
	}
	if err := schema.Validate(s, payload); err != nil {
		return domain.NewParseError(stage, raw, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
		DecodeHook:       trimStrings,
	})
	if err != nil {
		return domain.NewParseError(stage, raw, err)
	}
	if err := decoder.Decode(payload); err != nil {
		return domain.NewParseError(stage, raw, err)
	}
	return nil
}

func trimStrings(_, _ reflect.Type, data any) (any, error) {
	if s, ok := data.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return data, nil
}
