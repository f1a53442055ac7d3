package mapper

import "strings"

// Placeholders returns the names of the #{name} placeholders in text, in
// order of occurrence. ok is false when a "#{" has no closing brace.
func Placeholders(text string) (names []string, ok bool) {
	for {
		i := strings.Index(text, "#{")
		if i < 0 {
			return names, true
		}
		end := strings.IndexByte(text[i+2:], '}')
		if end < 0 {
			return names, false
		}
		names = append(names, text[i+2:i+2+end])
		text = text[i+2+end+1:]
	}
}
