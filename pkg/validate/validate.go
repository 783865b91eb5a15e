// Package validate checks request structs against `validate` struct tags.
//
// Rules are comma separated and run left to right; the first failing rule
// wins for a field. Messages are keyed by the field's json name.
//
//	required            non-zero, non-blank
//	nullable            empty value skips the remaining rules
//	email               address shaped like local@domain.tld
//	url                 absolute http(s) URL
//	uuid                RFC 4122 UUID
//	alpha_num           letters and digits only
//	alpha_dash          letters, digits, '-' and '_'
//	decimal             non-negative amount, at most two fraction digits
//	min=N, max=N        numbers: value bound; strings: rune length bound
//	gt, gte, lt, lte    numeric comparisons
//	between=lo,hi       inclusive min and max in one rule
//	in=a,b,c            value must be one of the list
//	same=field          equal to the sibling with that json name
//	confirmed           equal to the sibling named <field> (for x_confirmation)
//	                    or <field>_confirmation
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Struct validates v and returns field → message. An empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return errs
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}

		f := field{name: jsonName(sf), value: rv.Field(i), parent: rv}
		rules := parseTag(tag)
		if rules.has("nullable") && f.empty() {
			continue
		}
		for _, r := range rules {
			check, ok := checks[r.name]
			if !ok {
				continue
			}
			if msg := check(f, r.param); msg != "" {
				errs[f.name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether Struct found anything.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

type field struct {
	name   string
	value  reflect.Value
	parent reflect.Value
}

func (f field) str() string { return fmt.Sprintf("%v", f.value.Interface()) }

func (f field) empty() bool {
	v := f.value
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	if f.numeric() {
		return f.num() == 0
	}
	return false
}

func (f field) numeric() bool {
	switch f.value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (f field) num() float64 {
	v := f.value
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	n, _ := strconv.ParseFloat(strings.TrimSpace(f.str()), 64)
	return n
}

// size is the value itself for numbers and the rune count for everything else.
func (f field) size() float64 {
	if f.numeric() {
		return f.num()
	}
	return float64(len([]rune(f.str())))
}

func (f field) sibling(name string) (string, bool) {
	rt := f.parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonName(rt.Field(i)) == name {
			return fmt.Sprintf("%v", f.parent.Field(i).Interface()), true
		}
	}
	return "", false
}

type checkFunc func(f field, param string) string

var checks map[string]checkFunc

func init() {
	checks = map[string]checkFunc{
		"required": func(f field, _ string) string {
			if f.empty() {
				return fmt.Sprintf("The %s field is required.", f.name)
			}
			return ""
		},
		"email": func(f field, _ string) string {
			if !emailRE.MatchString(f.str()) {
				return fmt.Sprintf("The %s must be a valid email address.", f.name)
			}
			return ""
		},
		"url": func(f field, _ string) string {
			u, err := url.ParseRequestURI(f.str())
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Sprintf("The %s must be a valid URL.", f.name)
			}
			return ""
		},
		"uuid": func(f field, _ string) string {
			s := f.str()
			if _, err := uuid.Parse(s); err != nil || len(s) != 36 {
				return fmt.Sprintf("The %s must be a valid UUID.", f.name)
			}
			return ""
		},
		"alpha_num": charClass("letters and numbers", func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r)
		}),
		"alpha_dash": charClass("letters, numbers, dashes and underscores", func(r rune) bool {
			return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
		}),
		"decimal": func(f field, _ string) string {
			d, err := decimal.NewFromString(strings.TrimSpace(f.str()))
			if err != nil || d.IsNegative() || !d.Equal(d.Round(2)) {
				return fmt.Sprintf("The %s must be a valid amount.", f.name)
			}
			return ""
		},
		"min": func(f field, p string) string {
			if f.size() < number(p) {
				return fmt.Sprintf("The %s must be at least %s%s.", f.name, p, unit(f))
			}
			return ""
		},
		"max": func(f field, p string) string {
			if f.size() > number(p) {
				return fmt.Sprintf("The %s may not be greater than %s%s.", f.name, p, unit(f))
			}
			return ""
		},
		"between": func(f field, p string) string {
			lo, hi, ok := strings.Cut(p, ",")
			if !ok {
				return ""
			}
			if n := f.size(); n < number(lo) || n > number(hi) {
				return fmt.Sprintf("The %s must be between %s and %s%s.", f.name, lo, hi, unit(f))
			}
			return ""
		},
		"gt":  compare(">", func(a, b float64) bool { return a > b }),
		"gte": compare(">=", func(a, b float64) bool { return a >= b }),
		"lt":  compare("<", func(a, b float64) bool { return a < b }),
		"lte": compare("<=", func(a, b float64) bool { return a <= b }),
		"in": func(f field, p string) string {
			s := f.str()
			for _, opt := range strings.Split(p, ",") {
				if s == strings.TrimSpace(opt) {
					return ""
				}
			}
			return fmt.Sprintf("The selected %s is invalid.", f.name)
		},
		"same": func(f field, p string) string {
			if other, ok := f.sibling(p); !ok || other != f.str() {
				return fmt.Sprintf("The %s and %s must match.", f.name, p)
			}
			return ""
		},
		"confirmed": func(f field, _ string) string {
			target := strings.TrimSuffix(f.name, "_confirmation")
			if target == f.name {
				target = f.name + "_confirmation"
			}
			if other, ok := f.sibling(target); !ok || other != f.str() {
				return fmt.Sprintf("The %s confirmation does not match.", target)
			}
			return ""
		},
	}
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func charClass(desc string, allowed func(rune) bool) checkFunc {
	return func(f field, _ string) string {
		for _, r := range f.str() {
			if !allowed(r) {
				return fmt.Sprintf("The %s may only contain %s.", f.name, desc)
			}
		}
		return ""
	}
}

var opWords = map[string]string{
	">":  "greater than",
	">=": "greater than or equal to",
	"<":  "less than",
	"<=": "less than or equal to",
}

func compare(op string, ok func(a, b float64) bool) checkFunc {
	return func(f field, p string) string {
		if !ok(f.num(), number(p)) {
			return fmt.Sprintf("The %s must be %s %s.", f.name, opWords[op], p)
		}
		return ""
	}
}

func unit(f field) string {
	if f.numeric() {
		return ""
	}
	return " characters"
}

func number(s string) float64 {
	n, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(sf.Name)
	}
	return name
}

type rule struct{ name, param string }

type ruleList []rule

func (rs ruleList) has(name string) bool {
	for _, r := range rs {
		if r.name == name {
			return true
		}
	}
	return false
}

// parseTag splits on commas. A comma only starts a new rule when the next
// token names a known check, so list params like in=a,b,c stay whole.
func parseTag(tag string) ruleList {
	var out ruleList
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		name, param, _ := strings.Cut(tok, "=")
		if _, known := checks[name]; known || name == "nullable" || len(out) == 0 {
			out = append(out, rule{name: name, param: param})
			continue
		}
		last := &out[len(out)-1]
		last.param += "," + tok
	}
	return out
}
