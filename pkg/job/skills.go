package job

import (
	"regexp"
	"strings"
)

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}+#]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// normalizeSkill приводит навык к виду для сравнения: нижний регистр,
// разделители заменены пробелами. "+" и "#" сохраняются (C++, C#).
func normalizeSkill(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// cleanSkills trims skills and drops blanks and duplicates, keeping the first spelling.
func cleanSkills(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, sk := range in {
		sk = strings.TrimSpace(sk)
		key := normalizeSkill(sk)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sk)
	}
	return out
}
