package persistence

import (
	"bytes"
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Encode renders the filter value in PostgREST query syntax, e.g. "eq.42"
func (f Filter) Encode() string {
	switch f.Op {
	case FilterIn:
		vals, _ := f.Value.([]any)
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = quoteListValue(formatValue(v))
		}
		return "in.(" + strings.Join(parts, ",") + ")"
	case FilterIs:
		if f.Value == nil {
			return "is.null"
		}
		return "is." + formatValue(f.Value)
	case FilterContains:
		data, _ := json.Marshal(f.Value)
		return "cs." + string(data)
	default:
		return string(f.Op) + "." + formatValue(f.Value)
	}
}

// ParseFilter parses the realtime filter form "column=op.value"
func ParseFilter(s string) (Filter, error) {
	column, rest, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return Filter{}, fmt.Errorf("invalid filter %q", s)
	}
	op, value, ok := strings.Cut(rest, ".")
	if !ok {
		return Filter{}, fmt.Errorf("invalid filter %q", s)
	}
	f := Filter{Column: column, Op: FilterOp(op), Value: value}
	if f.Op == FilterIn {
		inner := strings.TrimSuffix(strings.TrimPrefix(value, "("), ")")
		var vals []any
		for _, v := range strings.Split(inner, ",") {
			vals = append(vals, strings.Trim(v, `"`))
		}
		f.Value = vals
	}
	return f, nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

func quoteListValue(s string) string {
	if strings.ContainsAny(s, ",()\"") {
		return strconv.Quote(s)
	}
	return s
}

// Row is a decoded table row
type Row map[string]any

// DecodeRows unmarshals stored row JSON into v with numbers kept as
// json.Number, so integer ids round-trip without float rounding
func DecodeRows(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Matches reports whether row satisfies every filter
func (r Row) Matches(filters []Filter) bool {
	for _, f := range filters {
		if !r.match(f) {
			return false
		}
	}
	return true
}

func (r Row) match(f Filter) bool {
	val, present := r[f.Column]
	switch f.Op {
	case FilterIs:
		if f.Value == nil || formatValue(f.Value) == "null" {
			return !present || val == nil
		}
		return present && formatValue(val) == formatValue(f.Value)
	case FilterIn:
		vals, _ := f.Value.([]any)
		for _, v := range vals {
			if CompareValues(val, v) == 0 {
				return true
			}
		}
		return false
	case FilterContains:
		return contains(val, f.Value)
	}

	if !present || val == nil {
		return false
	}
	switch f.Op {
	case FilterEq:
		return CompareValues(val, f.Value) == 0
	case FilterNeq:
		return CompareValues(val, f.Value) != 0
	case FilterGt:
		return CompareValues(val, f.Value) > 0
	case FilterGte:
		return CompareValues(val, f.Value) >= 0
	case FilterLt:
		return CompareValues(val, f.Value) < 0
	case FilterLte:
		return CompareValues(val, f.Value) <= 0
	case FilterLike:
		return likePattern(formatValue(f.Value), false).MatchString(formatValue(val))
	case FilterILike:
		return likePattern(formatValue(f.Value), true).MatchString(formatValue(val))
	default:
		return false
	}
}

// CompareValues orders a stored value against a filter value, numerically when both
// sides parse as numbers and lexically otherwise
func CompareValues(stored, want any) int {
	a, b := formatValue(stored), formatValue(want)
	ia, errA := strconv.ParseInt(a, 10, 64)
	ib, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(ia, ib)
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func contains(stored, want any) bool {
	have, ok := stored.([]any)
	if !ok {
		return false
	}
	var wantList []any
	switch w := want.(type) {
	case []any:
		wantList = w
	default:
		data, _ := json.Marshal(w)
		if err := json.Unmarshal(data, &wantList); err != nil {
			wantList = []any{w}
		}
	}
	for _, w := range wantList {
		found := false
		for _, h := range have {
			if CompareValues(h, w) == 0 {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// likePattern converts a SQL LIKE pattern (% and _) to a regexp
func likePattern(pattern string, insensitive bool) *regexp.Regexp {
	var b strings.Builder
	if insensitive {
		b.WriteString("(?i)")
	}
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%', '*':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.MustCompile(b.String())
}
