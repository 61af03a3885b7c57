package receipt

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/expensio/expensio/internal/finance/domain"
)

// ExtractedReceipt carries the fields pre-filled into the create form.
// The user still confirms them; nothing here is persisted directly.
type ExtractedReceipt struct {
	Name     string          `json:"name"`
	Amount   float64         `json:"amount"`
	Date     string          `json:"date"` // YYYY-MM-DD
	Category domain.Category `json:"category"`
}

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// fallback layouts tried when the model returns a non-ISO date
var looseDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
}

// parseReceiptResponse turns the model's free text into a typed record.
// The shape is never trusted: every field is checked for presence and range
// before the record is constructed.
func parseReceiptResponse(raw string, now time.Time) (ExtractedReceipt, error) {
	clean := cleanModelJSON(raw)

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return ExtractedReceipt{}, fmt.Errorf("receipt response is not valid JSON: %w", err)
	}

	for _, required := range []string{"name", "amount", "date", "category"} {
		if _, ok := fields[required]; !ok {
			return ExtractedReceipt{}, fmt.Errorf("receipt response is missing %q", required)
		}
	}

	name, ok := fields["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return ExtractedReceipt{}, fmt.Errorf("receipt response has no usable name")
	}

	amount, ok := fields["amount"].(float64)
	if !ok || amount <= 0 {
		return ExtractedReceipt{}, fmt.Errorf("receipt response has no positive amount")
	}

	rawDate, _ := fields["date"].(string)
	rawCategory, _ := fields["category"].(string)

	return ExtractedReceipt{
		Name:     strings.TrimSpace(name),
		Amount:   amount,
		Date:     normalizeDate(rawDate, now),
		Category: coerceCategory(rawCategory),
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding junk if the model
// ignored the raw-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
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

	// keep only from the first '{' to the last '}'
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// coerceCategory maps anything outside the closed set to Other. Unlike
// manual entry, the scan path never rejects a category.
func coerceCategory(value string) domain.Category {
	if domain.IsValidCategory(value) {
		return domain.Category(value)
	}
	return domain.CategoryOther
}

// normalizeDate returns a YYYY-MM-DD string: the value as-is when it already
// matches, a reformat after a loose parse otherwise, today if unparseable.
func normalizeDate(value string, now time.Time) string {
	value = strings.TrimSpace(value)
	if isoDatePattern.MatchString(value) {
		return value
	}
	for _, layout := range looseDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02")
		}
	}
	return now.Format("2006-01-02")
}
