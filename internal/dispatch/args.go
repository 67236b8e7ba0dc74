package dispatch

import "strings"

// SplitArgs splits a command string on spaces, keeping double-quoted spans
// together and stripping the quotes. An unterminated quote runs to the end
// of the string; the trailing token is still returned.
func SplitArgs(input string) []string {
	var (
		args     []string
		current  strings.Builder
		inQuotes bool
	)

	for _, c := range input {
		switch {
		case c == '"':
			inQuotes = !inQuotes
		case c == ' ' && !inQuotes:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(c)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}
