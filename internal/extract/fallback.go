package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// ExtractField pulls a single field value out of raw generation output that
// failed structured parsing. Three patterns are tried in order — fully
// quoted key/value, unquoted key with quoted value, then quoted key with a
// comma/brace-terminated value. Most specific first, so the looser pattern
// cannot over-capture trailing punctuation from text a stricter one would
// have bounded.
func ExtractField(text, field string) (string, bool) {
	quoted := regexp.QuoteMeta(field)
	patterns := []string{
		fmt.Sprintf(`(?i)"%s"\s*:\s*"([^"]+)"`, quoted),
		fmt.Sprintf(`(?i)%s\s*:\s*"([^"]+)"`, quoted),
		fmt.Sprintf(`(?i)"%s"\s*:\s*([^,}]+)`, quoted),
	}

	for _, p := range patterns {
		if m := regexp.MustCompile(p).FindStringSubmatch(text); len(m) > 1 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v, true
			}
		}
	}
	return "", false
}
