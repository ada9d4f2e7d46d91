package postgres

import (
	"strconv"
	"strings"
)

// rewritePlaceholders converts `?` positional markers to `$1..$n`, counting
// occurrences left-to-right. Markers inside string literals, quoted
// identifiers, and comments are left alone.
func rewritePlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch c {
		case '\'', '"':
			end := skipQuoted(query, i, c)
			b.WriteString(query[i:end])
			i = end - 1
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				end := skipLineComment(query, i)
				b.WriteString(query[i:end])
				i = end - 1
			} else {
				b.WriteByte(c)
			}
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				end := skipBlockComment(query, i)
				b.WriteString(query[i:end])
				i = end - 1
			} else {
				b.WriteByte(c)
			}
		case '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// skipQuoted returns the index just past a quoted region starting at i.
// Doubled quote characters escape themselves.
func skipQuoted(s string, i int, quote byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] == quote {
			if j+1 < len(s) && s[j+1] == quote {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(s)
}

func skipLineComment(s string, i int) int {
	for j := i + 2; j < len(s); j++ {
		if s[j] == '\n' {
			return j + 1
		}
	}
	return len(s)
}

func skipBlockComment(s string, i int) int {
	for j := i + 2; j+1 < len(s); j++ {
		if s[j] == '*' && s[j+1] == '/' {
			return j + 2
		}
	}
	return len(s)
}

// hasReturning reports whether the statement already carries a RETURNING
// clause outside of quotes and comments.
func hasReturning(query string) bool {
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch c {
		case '\'', '"':
			i = skipQuoted(query, i, c) - 1
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				i = skipLineComment(query, i) - 1
			}
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				i = skipBlockComment(query, i) - 1
			}
		case 'r', 'R':
			if isWordBoundary(query, i) && i+9 <= len(query) &&
				strings.EqualFold(query[i:i+9], "returning") {
				return true
			}
		}
	}
	return false
}

func isWordBoundary(s string, i int) bool {
	if i == 0 {
		return true
	}
	prev := s[i-1]
	return !(prev == '_' ||
		(prev >= 'a' && prev <= 'z') ||
		(prev >= 'A' && prev <= 'Z') ||
		(prev >= '0' && prev <= '9'))
}
