package actions

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// minTextLength is the shortest accepted free-text value, after trimming.
const minTextLength = 3

// text reads a form value that must be a string. Other types read as empty.
func text(form domain.FormData, key string) string {
	s, _ := form[key].(string)
	return s
}

// number reads a form value as a float. Numeric strings are accepted.
func number(form domain.FormData, key string) (float64, bool) {
	v, ok := form[key]
	if !ok || v == nil {
		return 0, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return 0, false
	}
	var f float64
	if err := mapstructure.WeakDecode(v, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// integer reads a form value that must hold a whole number.
func integer(form domain.FormData, key string) (int, bool) {
	f, ok := number(form, key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// tooShort reports whether s is shorter than n characters once trimmed.
func tooShort(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) < n
}
