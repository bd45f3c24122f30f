package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-adminkit/pkg/schema"
)

// emailPattern matches local@domain.tld with no whitespace or extra @ signs.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RuleSet holds the advisory client-side checks derived from one field
// descriptor. The authoritative validation happens server-side; these rules
// only avoid a round trip for obviously invalid input and must never reject
// a value the server would accept.
type RuleSet struct {
	Required  bool
	MaxLength *int
	Minimum   *float64
	Pattern   *regexp.Regexp

	// Messages keys each active rule to its human-readable message.
	Messages map[string]string
}

// Derive converts a field descriptor's constraints into a rule set.
func Derive(field schema.Field) RuleSet {
	rules := RuleSet{Messages: make(map[string]string)}

	if field.Required && !field.Nullable {
		rules.Required = true
		rules.Messages["required"] = fmt.Sprintf("%s is required", field.Label())
	}
	if field.MaxLength != nil {
		rules.MaxLength = field.MaxLength
		rules.Messages["maxLength"] = fmt.Sprintf("Max %d characters", *field.MaxLength)
	}
	if field.Minimum != nil {
		rules.Minimum = field.Minimum
		rules.Messages["min"] = fmt.Sprintf("Min value is %v", *field.Minimum)
	}
	if strings.EqualFold(field.Widget, "email") || strings.EqualFold(field.Format, "email") {
		rules.Pattern = emailPattern
		rules.Messages["pattern"] = "Invalid email"
	}

	return rules
}

// Check applies the rule set to a draft value and returns the messages of
// every violated rule. Values outside the rules' reach pass untouched.
func (r RuleSet) Check(value any) []string {
	var problems []string

	if r.Required && isEmpty(value) {
		problems = append(problems, r.Messages["required"])
	}
	if value == nil {
		return problems
	}

	if s, ok := value.(string); ok {
		if r.MaxLength != nil && len([]rune(s)) > *r.MaxLength {
			problems = append(problems, r.Messages["maxLength"])
		}
		if r.Pattern != nil && s != "" && !r.Pattern.MatchString(s) {
			problems = append(problems, r.Messages["pattern"])
		}
	}

	if r.Minimum != nil {
		if n, ok := asFloat(value); ok && n < *r.Minimum {
			problems = append(problems, r.Messages["min"])
		}
	}

	return problems
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
