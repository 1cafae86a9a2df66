package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// The backend is a Laravel API whose JSON is loosely typed: decimals arrive as
// strings, ids as numbers or strings, and timestamps in several layouts. The
// wire types below accept every variant and normalise it.

var null = []byte("null")

// num is an integer that may be encoded as a number or a numeric string.
// Fractions are rounded.
type num int

func (n *num) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*n = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		var err error
		if s, err = strconv.Unquote(s); err != nil {
			return fmt.Errorf("number: %w", err)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("number %q: %w", s, err)
	}
	r := math.Round(f)
	if math.IsNaN(r) || r < float64(math.MinInt) || r >= -float64(math.MinInt) {
		return fmt.Errorf("number %q out of range", s)
	}
	*n = num(r)
	return nil
}

// ptr returns a pointer to the value, for optional fields.
func (n *num) ptr() *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

// text is a string that may be encoded as a JSON number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
	case '{', '[':
		return fmt.Errorf("expected a string, got %s", b[:1])
	default:
		*t = text(b)
	}
	return nil
}

// flag is a boolean that may be encoded as 0/1 or "0"/"1".
type flag bool

func (f *flag) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(bytes.TrimSpace(b)), `"`) {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("boolean %s", b)
	}
	return nil
}

// stampLayouts are the timestamp formats the backend emits.
var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// stamp is a timestamp in any of stampLayouts. Empty or null is zero.
type stamp time.Time

func (s *stamp) UnmarshalJSON(b []byte) error {
	var raw string
	if bytes.Equal(bytes.TrimSpace(b), null) {
		*s = stamp{}
		return nil
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*s = stamp{}
		return nil
	}
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*s = stamp(t)
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unknown layout", raw)
}

func (s stamp) Time() time.Time { return time.Time(s) }

// list accepts a JSON array, a paginated object ({"data": [...]}) or null.
type list[T any] []T

func (l *list[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, null) {
		*l = list[T]{}
		return nil
	}
	if b[0] == '{' {
		var page struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(b, &page); err != nil {
			return err
		}
		if len(page.Data) == 0 {
			return fmt.Errorf("expected a list, got an object without data")
		}
		return l.UnmarshalJSON(page.Data)
	}
	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	if items == nil {
		items = []T{}
	}
	*l = items
	return nil
}

// firstText returns the first non-empty value.
func firstText(values ...text) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

// firstNum returns the first non-zero value.
func firstNum(values ...num) int {
	for _, v := range values {
		if v != 0 {
			return int(v)
		}
	}
	return 0
}

// firstStamp returns the first non-zero timestamp.
func firstStamp(values ...stamp) time.Time {
	for _, v := range values {
		if !v.Time().IsZero() {
			return v.Time()
		}
	}
	return time.Time{}
}
