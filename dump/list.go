package dump

import (
	"errors"
	"fmt"
	"strings"
)

// errIncomplete marks text that ends inside a braced or quoted element.
var errIncomplete = errors.New("incomplete record")

// Quote renders s as a single list element.
func Quote(s string) string {
	if s == "" {
		return "{}"
	}
	if !needsQuoting(s) {
		return s
	}
	if canBrace(s) {
		return "{" + s + "}"
	}
	var sb strings.Builder
	for i := range len(s) {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '{', '}', '[', ']', '$', '"', '\\', ';', ' ', '\v', '\f':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func needsQuoting(s string) bool {
	if s[0] == '#' {
		return true
	}
	return strings.ContainsAny(s, " \t\n\r\v\f{}[]$\";\\")
}

// canBrace reports whether s survives inside braces unchanged.
func canBrace(s string) bool {
	if strings.ContainsRune(s, '\\') {
		return false
	}
	depth := 0
	for i := range len(s) {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// Join renders elements as one list.
func Join(elems ...string) string {
	quoted := make([]string, len(elems))
	for i, e := range elems {
		quoted[i] = Quote(e)
	}
	return strings.Join(quoted, " ")
}

// Split parses a list into its elements.
func Split(s string) ([]string, error) {
	var elems []string
	i := 0
	for {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			return elems, nil
		}
		var (
			elem string
			err  error
		)
		switch s[i] {
		case '{':
			elem, i, err = splitBraced(s, i)
		case '"':
			elem, i, err = splitQuoted(s, i)
		default:
			elem, i, err = splitBare(s, i)
		}
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func splitBraced(s string, start int) (string, int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if i+1 < len(s) && !isSpace(s[i+1]) {
					return "", 0, fmt.Errorf("list element in braces followed by %q instead of space", s[i+1])
				}
				return s[start+1 : i], i + 1, nil
			}
		}
	}
	return "", 0, errIncomplete
}

func splitQuoted(s string, start int) (string, int, error) {
	var sb strings.Builder
	for i := start + 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			if i+1 >= len(s) {
				return "", 0, errIncomplete
			}
			i++
			sb.WriteString(unescape(s[i]))
		case '"':
			if i+1 < len(s) && !isSpace(s[i+1]) {
				return "", 0, fmt.Errorf("list element in quotes followed by %q instead of space", s[i+1])
			}
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, errIncomplete
}

func splitBare(s string, start int) (string, int, error) {
	var sb strings.Builder
	i := start
	for ; i < len(s) && !isSpace(s[i]); i++ {
		if s[i] == '\\' {
			if i+1 >= len(s) {
				return "", 0, errIncomplete
			}
			i++
			sb.WriteString(unescape(s[i]))
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), i, nil
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\n':
		return " "
	}
	return string(c)
}
