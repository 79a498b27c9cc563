package validate

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Rules maps a field name to a pipe-combined set of tags, e.g. "required|string".
// Recognized tags: required, string, int, email. The array and boolean tags are
// accepted to document expected shape but are not checked here; callers must
// range-check array contents themselves.
type Rules map[string]string

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Validate checks data against rules and returns the coerced payload together
// with all accumulated error messages. string fields are tag-stripped and
// HTML-escaped in place; int fields are strictly coerced to int64 and removed
// from the payload when coercion fails. A field may carry only one of
// string/int/email; they are checked in that priority order.
func Validate(data map[string]any, rules Rules) (map[string]any, []string) {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}

	var errs []string
	for field, rule := range rules {
		v, present := data[field]
		if !present {
			if strings.Contains(rule, "required") {
				errs = append(errs, fmt.Sprintf("%s is required", field))
			}
			continue
		}

		switch {
		case strings.Contains(rule, "string"):
			out[field] = Sanitize(toString(v))
		case strings.Contains(rule, "int"):
			n, ok := toInt(v)
			if !ok {
				errs = append(errs, fmt.Sprintf("%s must be an integer", field))
				delete(out, field)
				continue
			}
			out[field] = n
		case strings.Contains(rule, "email"):
			if !emailPattern.MatchString(toString(v)) {
				errs = append(errs, fmt.Sprintf("%s must be a valid email", field))
			}
		}
	}

	return out, errs
}

// Sanitize strips markup tags and HTML-escapes the remainder, guarding
// against stored XSS in downstream rendering contexts.
func Sanitize(s string) string {
	return html.EscapeString(tagPattern.ReplaceAllString(s, ""))
}

// Int coerces a single decoded JSON value to int64. Exposed for callers that
// validate array elements (e.g. assignee id lists) themselves.
func Int(v any) (int64, bool) {
	return toInt(v)
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		// JSON numbers decode as float64; reject fractional values.
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
