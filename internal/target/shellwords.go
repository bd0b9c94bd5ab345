package target

import (
	"fmt"
	"strings"
	"unicode"
)

// SplitWords tokenizes a command string by shell-word rules: whitespace
// separates tokens, single quotes preserve their content literally, double
// quotes allow \" and \\ escapes, and a backslash outside quotes escapes the
// next character. An unterminated quote or trailing backslash is an error.
func SplitWords(input string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		inToken bool
	)

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			inToken = true
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\'' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("unterminated single quote")
			}
			current.WriteString(string(runes[i+1 : end]))
			i = end

		case r == '"':
			inToken = true
			closed := false
			for j := i + 1; j < len(runes); j++ {
				c := runes[j]
				if c == '\\' && j+1 < len(runes) && (runes[j+1] == '"' || runes[j+1] == '\\') {
					current.WriteRune(runes[j+1])
					j++
					i = j
					continue
				}
				if c == '"' {
					closed = true
					i = j
					break
				}
				current.WriteRune(c)
				i = j
			}
			if !closed {
				return nil, fmt.Errorf("unterminated double quote")
			}

		case r == '\\':
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("trailing backslash")
			}
			inToken = true
			current.WriteRune(runes[i+1])
			i++

		case unicode.IsSpace(r):
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}

		default:
			inToken = true
			current.WriteRune(r)
		}
	}

	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens, nil
}
