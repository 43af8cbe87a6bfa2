package session

import (
	"strings"
	"time"
)

func nowUnix() int64 { return time.Now().Unix() }

// extractJSON strips the "data: " prefix and trailing newlines off one SSE
// line, returning the bare JSON payload (or the original bytes if the
// prefix isn't present, e.g. for already-bare JSON in tests).
func extractJSON(line string) []byte {
	line = strings.TrimSuffix(line, "\n\n")
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimPrefix(line, "data: ")
	return []byte(line)
}
