package domain

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldKind is the target type a raw value is coerced into.
type FieldKind int

const (
	KindString FieldKind = iota
	KindURL
	KindTimestamp
	KindStrings
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindURL:
		return "url"
	case KindTimestamp:
		return "timestamp"
	case KindStrings:
		return "string list"
	default:
		return "unknown"
	}
}

// FieldSpec is one (name, type, constraint) entry of a schema.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
	MinLen   int
	// Default produces the value for an absent optional field.
	Default func(now time.Time) any
}

// Schema is an ordered list of field specs checked in one pass.
type Schema []FieldSpec

// JobSchema describes a raw job posting.
var JobSchema = Schema{
	{Name: "id", Kind: KindString, Required: true},
	{Name: "title", Kind: KindString, Required: true, MinLen: 2},
	{Name: "company", Kind: KindString, Required: true},
	{Name: "description", Kind: KindString, Required: true, MinLen: 20},
	{Name: "url", Kind: KindURL, Default: func(time.Time) any { return "" }},
	{Name: "location", Kind: KindString, Default: func(time.Time) any { return DefaultLocation }},
	{Name: "tags", Kind: KindStrings, Default: func(time.Time) any { return []string{} }},
	{Name: "posted_at", Kind: KindTimestamp, Default: func(now time.Time) any { return now }},
	{Name: "updated_at", Kind: KindTimestamp, Default: func(now time.Time) any { return now }},
}

// Check coerces every field of raw according to the schema. It returns the
// coerced values keyed by field name, or every violation found. Keys not
// named by the schema are ignored.
func (s Schema) Check(raw map[string]any, now time.Time) (map[string]any, Violations) {
	values := make(map[string]any, len(s))
	var violations Violations

	for _, spec := range s {
		v, present := raw[spec.Name]
		if !present || v == nil {
			if spec.Required {
				violations = append(violations, NewValidationError(spec.Name, "", ErrMissingField))
				continue
			}
			if spec.Default != nil {
				values[spec.Name] = spec.Default(now)
			}
			continue
		}

		coerced, verr := coerce(spec, v)
		if verr != nil {
			violations = append(violations, verr)
			continue
		}
		values[spec.Name] = coerced
	}
	return values, violations
}

func coerce(spec FieldSpec, v any) (any, *ValidationError) {
	switch spec.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, wrongType(spec, v)
		}
		if n := utf8.RuneCountInString(s); n < spec.MinLen {
			e := NewValidationError(spec.Name, s, ErrTooShort)
			e.Detail = fmt.Sprintf("at least %d characters, got %d", spec.MinLen, n)
			return nil, e
		}
		return s, nil

	case KindURL:
		s, ok := v.(string)
		if !ok {
			return nil, wrongType(spec, v)
		}
		if err := checkHTTPURL(s); err != nil {
			e := NewValidationError(spec.Name, s, ErrInvalidURL)
			e.Detail = err.Error()
			return nil, e
		}
		return s, nil

	case KindTimestamp:
		var t time.Time
		switch tv := v.(type) {
		case time.Time:
			t = tv
		case string:
			parsed, err := ParseTimestamp(tv)
			if err != nil {
				e := NewValidationError(spec.Name, tv, ErrInvalidTimestamp)
				e.Detail = "expected ISO-8601"
				return nil, e
			}
			t = parsed
		case float64:
			if math.IsNaN(tv) || tv < minUnix || tv >= maxUnix+1 {
				return nil, timestampRange(spec, v)
			}
			sec := math.Floor(tv)
			t = time.Unix(int64(sec), int64((tv-sec)*1e9)).UTC()
		case int64:
			if tv < minUnix || tv > maxUnix {
				return nil, timestampRange(spec, v)
			}
			t = time.Unix(tv, 0).UTC()
		case int:
			if int64(tv) < minUnix || int64(tv) > maxUnix {
				return nil, timestampRange(spec, v)
			}
			t = time.Unix(int64(tv), 0).UTC()
		default:
			return nil, wrongType(spec, v)
		}
		if y := t.Year(); y < 0 || y > 9999 {
			return nil, timestampRange(spec, v)
		}
		return t, nil

	case KindStrings:
		switch tv := v.(type) {
		case []string:
			out := make([]string, len(tv))
			copy(out, tv)
			return out, nil
		case []any:
			out := make([]string, len(tv))
			for i, item := range tv {
				s, ok := item.(string)
				if !ok {
					e := NewValidationError(fmt.Sprintf("%s[%d]", spec.Name, i), fmt.Sprint(item), ErrWrongType)
					e.Detail = "expected string"
					return nil, e
				}
				out[i] = s
			}
			return out, nil
		default:
			return nil, wrongType(spec, v)
		}
	}
	return nil, wrongType(spec, v)
}

// Unix seconds of 0000-01-01T00:00:00Z and 9999-12-31T23:59:59Z, the
// instants whose RFC 3339 form parses back. Millisecond epochs fall outside.
const (
	minUnix = -62167219200
	maxUnix = 253402300799
)

func timestampRange(spec FieldSpec, v any) *ValidationError {
	e := NewValidationError(spec.Name, fmt.Sprint(v), ErrInvalidTimestamp)
	e.Detail = "outside years 0000-9999"
	return e
}

func wrongType(spec FieldSpec, v any) *ValidationError {
	e := NewValidationError(spec.Name, fmt.Sprint(v), ErrWrongType)
	e.Detail = fmt.Sprintf("expected %s, got %T", spec.Kind, v)
	return e
}

func checkHTTPURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// ParseJob builds a JobRecord from raw input. now is used for absent
// timestamps. On failure the returned error is a Violations value.
func ParseJob(raw map[string]any, now time.Time) (JobRecord, error) {
	values, violations := JobSchema.Check(raw, now)
	if len(violations) > 0 {
		return JobRecord{}, violations
	}
	return JobRecord{
		ID:          values["id"].(string),
		Title:       values["title"].(string),
		Company:     values["company"].(string),
		Description: values["description"].(string),
		URL:         values["url"].(string),
		Location:    values["location"].(string),
		Tags:        values["tags"].([]string),
		PostedAt:    values["posted_at"].(time.Time),
		UpdatedAt:   values["updated_at"].(time.Time),
	}, nil
}
