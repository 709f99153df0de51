package renderguard

import "strings"

// scanCode scans JavaScript source from i and returns the offset of the
// '}' that closes the enclosing block. Strings, template literals and
// comments are skipped. Regular expression literals are not recognized.
func scanCode(s string, i int) (int, bool) {
	depth := 0
	for i < len(s) {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return i, true
			}
			depth--
		case '\'', '"':
			end, ok := skipString(s, i)
			if !ok {
				return 0, false
			}
			i = end
		case '`':
			end, ok := skipTemplate(s, i)
			if !ok {
				return 0, false
			}
			i = end
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				for i < len(s) && s[i] != '\n' {
					i++
				}
				continue
			}
			if i+1 < len(s) && s[i+1] == '*' {
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					return 0, false
				}
				i += 2 + end + 1
			}
		}
		i++
	}
	return 0, false
}

// skipString returns the offset of the quote closing the string literal
// that opens at i.
func skipString(s string, i int) (int, bool) {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j, true
		case '\n':
			return 0, false
		}
	}
	return 0, false
}

// skipTemplate returns the offset of the backtick closing the template
// literal that opens at i, descending into substitutions.
func skipTemplate(s string, i int) (int, bool) {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '`':
			return j, true
		case '$':
			if j+1 < len(s) && s[j+1] == '{' {
				end, ok := scanCode(s, j+2)
				if !ok {
					return 0, false
				}
				j = end
			}
		}
	}
	return 0, false
}

// parenBalance returns the number of unclosed '(' in s, ignoring string and
// template literals.
func parenBalance(s string) int {
	balance := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			balance++
		case ')':
			balance--
		case '\'', '"':
			if end, ok := skipString(s, i); ok {
				i = end
			}
		case '`':
			if end, ok := skipTemplate(s, i); ok {
				i = end
			}
		}
	}
	return balance
}
