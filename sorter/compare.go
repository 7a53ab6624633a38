package sorter

import (
	"cmp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hupe1980/tabgo/value"
)

// DictionaryCompare orders strings case-insensitively, using case only to
// break ties, and compares embedded runs of digits as integers, so "x9"
// sorts before "x10".
func DictionaryCompare(a, b string) int {
	secondary := 0
	for {
		if a == "" || b == "" {
			break
		}
		if isDigit(a[0]) && isDigit(b[0]) {
			// Leading zeros only break ties.
			za, zb := 0, 0
			for len(a) > 1 && a[0] == '0' && isDigit(a[1]) {
				a = a[1:]
				za++
			}
			for len(b) > 1 && b[0] == '0' && isDigit(b[1]) {
				b = b[1:]
				zb++
			}
			if secondary == 0 {
				secondary = cmp.Compare(zb, za)
			}
			na, nb := digitRun(a), digitRun(b)
			if na != nb {
				return cmp.Compare(na, nb)
			}
			if c := strings.Compare(a[:na], b[:nb]); c != 0 {
				return c
			}
			a, b = a[na:], b[nb:]
			continue
		}
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		la, lb := unicode.ToLower(ra), unicode.ToLower(rb)
		if la != lb {
			return cmp.Compare(la, lb)
		}
		if secondary == 0 && ra != rb {
			// Upper case sorts first.
			if unicode.IsUpper(ra) {
				secondary = -1
			} else {
				secondary = 1
			}
		}
		a, b = a[sa:], b[sb:]
	}
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return secondary
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func digitRun(s string) int {
	n := 0
	for n < len(s) && isDigit(s[n]) {
		n++
	}
	return n
}

func compareASCII(a, b value.Value) int { return strings.Compare(a.Text(), b.Text()) }

func compareNoCase(a, b value.Value) int {
	return strings.Compare(strings.ToLower(a.Text()), strings.ToLower(b.Text()))
}

func compareDictionary(a, b value.Value) int { return DictionaryCompare(a.Text(), b.Text()) }

// compareInteger orders numbers first, then unparsable text.
func compareInteger(a, b value.Value) int {
	if a.Type() == value.TypeTime && b.Type() == value.TypeTime {
		return value.CompareTime(a, b)
	}
	ia, oka := asInt(a)
	ib, okb := asInt(b)
	switch {
	case oka && okb:
		return cmp.Compare(ia, ib)
	case oka:
		return -1
	case okb:
		return 1
	}
	return compareASCII(a, b)
}

func asInt(v value.Value) (int64, bool) {
	switch v.Type() {
	case value.TypeLong, value.TypeBoolean, value.TypeTime:
		return v.Raw()
	case value.TypeDouble:
		f, ok := v.Float64()
		return int64(f), ok
	}
	i, err := strconv.ParseInt(strings.TrimSpace(v.Text()), 0, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return i, true
}

func compareReal(a, b value.Value) int {
	fa, oka := asFloat(a)
	fb, okb := asFloat(b)
	switch {
	case oka && okb:
		return cmp.Compare(fa, fb)
	case oka:
		return -1
	case okb:
		return 1
	}
	return compareASCII(a, b)
}

func asFloat(v value.Value) (float64, bool) {
	if v.Type().IsNumeric() {
		return v.Number()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text()), 64)
	return f, err == nil
}
