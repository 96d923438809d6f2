package model

import "strings"

// joinText concatenates two free-text fields, skipping empties.
func joinText(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "" || strings.EqualFold(a, b):
		return a
	default:
		return a + "\n\n" + b
	}
}

// unionList merges string lists preserving first-seen order, deduplicating
// case-insensitively.
func unionList(base []string, more []string, extra ...string) []string {
	seen := make(map[string]bool, len(base))
	out := make([]string, 0, len(base)+len(more)+len(extra))
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		key := strings.ToLower(v)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, v)
	}
	for _, v := range base {
		add(v)
	}
	for _, v := range more {
		add(v)
	}
	for _, v := range extra {
		add(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// mergeAliases folds the absorbed record's name and aliases into the kept
// record's alias set. An entity is never aliased to its own name.
func mergeAliases(name string, base, more []string, otherName string) []string {
	merged := unionList(base, more, otherName)
	out := merged[:0]
	for _, v := range merged {
		if !strings.EqualFold(v, name) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
