package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SkillCategory is one named group of skills, in the order the model emitted it.
type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// Result is the parsed outcome of a resume analysis.
type Result struct {
	Skills      []SkillCategory `json:"skills"`
	Summary     string          `json:"summary"`
	JobKeywords []string        `json:"jobKeywords"`
}

// defaultJobKeywords backfills responses where the model returned fewer than
// three keywords. Every stored result carries at least three.
var defaultJobKeywords = []string{"Software Engineer", "Software Developer", "Engineer"}

const minJobKeywords = 3

// firstJSONObject returns the first balanced {...} span in s, scanning with a
// depth counter that is aware of string literals and escapes. Models often wrap
// the object in prose or markdown fences.
func firstJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseResult extracts and validates the analysis object from raw model output.
func ParseResult(raw string) (Result, error) {
	span, ok := firstJSONObject(raw)
	if !ok {
		return Result{}, fmt.Errorf("%w: no JSON object in output", ErrInvalidResponse)
	}

	var envelope struct {
		Skills      json.RawMessage `json:"skills"`
		Summary     json.RawMessage `json:"summary"`
		JobKeywords json.RawMessage `json:"jobKeywords"`
	}
	if err := json.Unmarshal([]byte(span), &envelope); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	skills, err := decodeSkills(envelope.Skills)
	if err != nil {
		return Result{}, err
	}

	var summary string
	if len(envelope.Summary) == 0 {
		return Result{}, fmt.Errorf("%w: summary missing", ErrInvalidResponse)
	}
	if err := json.Unmarshal(envelope.Summary, &summary); err != nil {
		return Result{}, fmt.Errorf("%w: summary is not a string", ErrInvalidResponse)
	}

	keywords := decodeKeywords(envelope.JobKeywords)
	if len(keywords) < minJobKeywords {
		keywords = append([]string{}, defaultJobKeywords...)
	}

	return Result{
		Skills:      skills,
		Summary:     summary,
		JobKeywords: keywords,
	}, nil
}

// decodeSkills walks the object token by token so category order survives.
// encoding/json maps would lose it.
func decodeSkills(raw json.RawMessage) ([]SkillCategory, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: skills missing", ErrInvalidResponse)
	}

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: skills is not an object", ErrInvalidResponse)
	}

	var categories []SkillCategory
	seen := map[string]bool{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: skills key is not a string", ErrInvalidResponse)
		}

		var items []string
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("%w: skills[%q] is not a string array", ErrInvalidResponse, name)
		}

		// Duplicate category keys keep the first occurrence.
		if seen[name] {
			continue
		}
		seen[name] = true
		categories = append(categories, SkillCategory{Name: name, Skills: items})
	}

	return categories, nil
}

func decodeKeywords(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var keywords []string
	if err := json.Unmarshal(raw, &keywords); err != nil {
		return nil
	}
	out := keywords[:0]
	for _, k := range keywords {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
