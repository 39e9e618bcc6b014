package conversation

import "regexp"

// namePattern matches "my name is <name>", case-insensitive; the name is a
// run of word characters plus apostrophes and hyphens.
var namePattern = regexp.MustCompile(`(?i)my name is\s+([\w'-]+)`)

// ExtractName pulls the name out of a reply like "my name is John". It
// returns the empty string when the phrase is absent and never fails;
// callers fall back to the literal reply.
func ExtractName(text string) string {
	match := namePattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	return match[1]
}
