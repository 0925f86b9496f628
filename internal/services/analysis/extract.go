package analysis

import (
	"regexp"
	"strings"
)

// fenceMarker matches a fenced-code-block delimiter: triple backtick,
// optionally followed by a language tag. Only the marker is matched, never
// the enclosed content.
var fenceMarker = regexp.MustCompile("```[a-zA-Z0-9]*")

// ExtractJSON isolates the JSON payload from raw model output by removing
// fence markers while preserving the enclosed content, then trimming
// surrounding whitespace. Absence of fences is a no-op; this step never
// fails.
func ExtractJSON(raw string) string {
	return strings.TrimSpace(fenceMarker.ReplaceAllString(raw, ""))
}
