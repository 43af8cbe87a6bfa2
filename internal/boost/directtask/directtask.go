// Package directtask implements the direct-task heuristic: an ordered list
// of substrings matched against a request's text that, when matched,
// bypasses module logic entirely (SPEC_FULL.md §3, Open Question 3 —
// externalized via HARBOR_BOOST_DIRECT_TASKS rather than hardcoded).
package directtask

import "strings"

// Matches reports whether any of the configured substrings occurs anywhere
// in text, ignoring case. The chat-completions handler passes the content
// of the last user message as text.
func Matches(substrings []string, text string) bool {
	lower := strings.ToLower(text)
	for _, s := range substrings {
		if s == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
