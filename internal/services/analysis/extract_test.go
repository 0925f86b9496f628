package analysis

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json fence",
			input: "```json\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
		},
		{
			name:  "bare fence",
			input: "```\n{\"a\": 1}\n```",
			want:  "{\"a\": 1}",
		},
		{
			name:  "fence with surrounding prose",
			input: "Here is the report:\n```json\n{\"a\": 1}\n```\nDone.",
			want:  "Here is the report:\n\n{\"a\": 1}\n\nDone.",
		},
		{
			name:  "no fences is byte identical",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "whitespace only trimmed",
			input: "  \n{\"a\": 1}\n  ",
			want:  `{"a": 1}`,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
