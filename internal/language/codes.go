package language

import "strings"

// NormalizeCode lowercases raw and returns its primary subtag ("en" from
// "EN_us"). Subtags that are not plain ASCII letters yield "".
func NormalizeCode(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	primary, _, _ := strings.Cut(strings.ReplaceAll(value, "_", "-"), "-")
	if primary == "" || len(primary) > 8 {
		return ""
	}
	for _, r := range primary {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return primary
}
