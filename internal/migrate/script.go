package migrate

import "strings"

// splitStatements breaks a multi-statement script on top-level semicolons,
// ignoring semicolons inside quotes and comments. Empty fragments are
// dropped.
func splitStatements(script string) []string {
	var stmts []string
	var b strings.Builder

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch c {
		case '\'', '"':
			end := skipQuoted(script, i, c)
			b.WriteString(script[i:end])
			i = end - 1
		case '-':
			if i+1 < len(script) && script[i+1] == '-' {
				end := skipLine(script, i)
				b.WriteString(script[i:end])
				i = end - 1
			} else {
				b.WriteByte(c)
			}
		case '/':
			if i+1 < len(script) && script[i+1] == '*' {
				end := skipBlock(script, i)
				b.WriteString(script[i:end])
				i = end - 1
			} else {
				b.WriteByte(c)
			}
		case ';':
			if s := strings.TrimSpace(b.String()); s != "" {
				stmts = append(stmts, s)
			}
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}

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

func skipLine(s string, i int) int {
	for j := i + 2; j < len(s); j++ {
		if s[j] == '\n' {
			return j + 1
		}
	}
	return len(s)
}

func skipBlock(s string, i int) int {
	for j := i + 2; j+1 < len(s); j++ {
		if s[j] == '*' && s[j+1] == '/' {
			return j + 2
		}
	}
	return len(s)
}

// prioritizeCreateTables reorders a statement batch so every CREATE TABLE
// runs before any other statement type. Later statements may reference
// foreign keys on tables created earlier in the same batch.
func prioritizeCreateTables(stmts []string) []string {
	tables := make([]string, 0, len(stmts))
	rest := make([]string, 0, len(stmts))
	for _, s := range stmts {
		if isCreateTable(s) {
			tables = append(tables, s)
		} else {
			rest = append(rest, s)
		}
	}
	return append(tables, rest...)
}

func isCreateTable(stmt string) bool {
	fields := strings.Fields(strings.ToUpper(stmt))
	return len(fields) >= 2 && fields[0] == "CREATE" && fields[1] == "TABLE"
}
