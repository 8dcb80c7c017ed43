package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// ParseRecords parses the model's raw reply into extracted records. It
// tolerates Markdown fences and stray text around the JSON array, but every
// element must carry the required fields.
func ParseRecords(raw string) ([]domain.ExtractedRecord, error) {
	clean := cleanModelJSON(raw)

	var items []map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}

	result := make([]domain.ExtractedRecord, 0, len(items))
	for i, obj := range items {
		rec, err := recordFromObject(obj)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		result = append(result, rec)
	}
	return result, nil
}

func recordFromObject(obj map[string]interface{}) (domain.ExtractedRecord, error) {
	var rec domain.ExtractedRecord
	var err error

	if rec.Description, err = getStringField(obj, "description", true); err != nil {
		return rec, err
	}
	if rec.Amount, err = getNumberField(obj, "amount"); err != nil {
		return rec, err
	}
	if rec.Date, err = getStringField(obj, "date", true); err != nil {
		return rec, err
	}
	if _, err = time.Parse("2006-01-02", rec.Date); err != nil {
		return rec, fmt.Errorf("invalid date %q: %w", rec.Date, err)
	}

	// Optional classification fields; the dashboard applies defaults.
	if rec.Category, err = getStringField(obj, "category", false); err != nil {
		return rec, err
	}
	if rec.Type, err = getStringField(obj, "type", false); err != nil {
		return rec, err
	}
	if rec.Icon, err = getStringField(obj, "icon", false); err != nil {
		return rec, err
	}

	return rec, nil
}

func getStringField(m map[string]interface{}, key string, required bool) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("missing required field %q", key)
		}
		return "", nil
	}
	switch val := v.(type) {
	case string:
		if required && strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getNumberField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	switch val := v.(type) {
	case json.Number:
		return val.String(), nil
	case string:
		if strings.TrimSpace(val) == "" {
			return "", fmt.Errorf("required field %q is empty", key)
		}
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

// cleanModelJSON strips Markdown fences and stray text when the model
// ignores the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there is still junk around the array, keep only from the first
	// '[' to the last ']'.
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
