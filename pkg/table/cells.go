package table

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// EmptyPlaceholder renders for null/undefined cell values.
const EmptyPlaceholder = "—"

// DefaultDateFormat is the localized date layout applied to date-shaped
// values.
const DefaultDateFormat = "Jan 2, 2006"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ].*)?$`)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatValue renders a cell value as display text following the fixed
// precedence: nil placeholder, booleans as Yes/No, date-shaped values as
// localized dates, objects exposing _display as that string, other objects
// as JSON, primitives via string conversion. HTML-flagged columns bypass
// this function entirely.
func FormatValue(value any, dateFormat string) string {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}

	switch v := value.(type) {
	case nil:
		return EmptyPlaceholder
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case time.Time:
		return v.Format(dateFormat)
	case string:
		if isoDatePattern.MatchString(v) {
			for _, layout := range dateLayouts {
				if ts, err := time.Parse(layout, v); err == nil {
					return ts.Format(dateFormat)
				}
			}
		}
		return v
	case map[string]any:
		if display, ok := v["_display"].(string); ok {
			return display
		}
		return jsonString(v)
	case []any:
		return jsonString(v)
	default:
		return fmt.Sprint(v)
	}
}

func jsonString(value any) string {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(payload)
}
