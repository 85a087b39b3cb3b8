package utils

import "strings"

// NormalizeFormat maps export format aliases onto their canonical name:
// "yml" becomes "yaml" and matching is case-insensitive. It reports false
// for unknown or empty input.
func NormalizeFormat(input string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "json":
		return "json", true
	case "yaml", "yml":
		return "yaml", true
	default:
		return "", false
	}
}

// NormalizeStrategy maps a ready-task ordering name onto its canonical form.
// Matching is case-insensitive and "deps" is accepted for "unblocking".
func NormalizeStrategy(input string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "order", "document":
		return "order", true
	case "priority":
		return "priority", true
	case "unblocking", "deps":
		return "unblocking", true
	case "mixed":
		return "mixed", true
	default:
		return "", false
	}
}

// NormalizeIDs trims each id and drops empty and repeated entries, keeping
// first-seen order. Returns nil if nothing is left.
func NormalizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
