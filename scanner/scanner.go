// Package scanner turns script text into a flat token stream.
package scanner

import "strings"

// Scan tokenizes src line by line. The result always ends with a single
// EOF token, and every source line contributes a trailing EOL token.
//
// A double-quoted literal may contain spaces; its pieces are rejoined with
// single spaces. A literal still open at the end of its line produces an
// Illegal token carrying the partial text.
func Scan(src string) []Token {
	var tokens []Token
	if src == "" {
		return []Token{{Kind: EOF, Line: 1}}
	}

	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")
	// A trailing newline does not start a new line.
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, raw := range lines {
		tokens = scanLine(tokens, strings.TrimSpace(raw), i+1)
	}

	return append(tokens, Token{Kind: EOF, Line: len(lines)})
}

func scanLine(tokens []Token, line string, lineNo int) []Token {
	if strings.HasPrefix(line, "#") {
		tokens = append(tokens, Token{Kind: Comment, Line: lineNo, Lexeme: line})
		return append(tokens, Token{Kind: EOL, Line: lineNo})
	}

	var (
		inQuotes bool
		buf      strings.Builder
	)

	for _, piece := range strings.Split(line, " ") {
		if inQuotes {
			buf.WriteByte(' ')
			if strings.HasSuffix(piece, `"`) {
				buf.WriteString(piece[:len(piece)-1])
				tokens = append(tokens, Token{Kind: String, Line: lineNo, Lexeme: buf.String()})
				buf.Reset()
				inQuotes = false
				continue
			}
			buf.WriteString(piece)
			continue
		}

		if piece == "" {
			continue
		}

		if strings.HasPrefix(piece, `"`) {
			if len(piece) >= 2 && strings.HasSuffix(piece, `"`) {
				tokens = append(tokens, Token{Kind: String, Line: lineNo, Lexeme: piece[1 : len(piece)-1]})
				continue
			}
			inQuotes = true
			buf.WriteString(piece[1:])
			continue
		}

		if kind, ok := Keyword(piece); ok {
			tokens = append(tokens, Token{Kind: kind, Line: lineNo, Lexeme: piece})
			continue
		}

		tokens = append(tokens, Token{Kind: Variable, Line: lineNo, Lexeme: piece})
	}

	if inQuotes {
		tokens = append(tokens, Token{Kind: Illegal, Line: lineNo, Lexeme: `"` + buf.String()})
	}

	return append(tokens, Token{Kind: EOL, Line: lineNo})
}
