package analysis

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownConverter is the GFM-flavored converter used for the degraded
// text path. Tables and strikethrough are common in model output.
var markdownConverter = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

var (
	// fencedSpan matches a whole fenced code block including its content.
	// Unlike ExtractJSON, the fallback path drops the span entirely.
	fencedSpan = regexp.MustCompile("(?s)```.*?```")

	// strayAngle matches a leftover blockquote-style angle bracket at the
	// start of a line.
	strayAngle = regexp.MustCompile(`(?m)^\s*&gt;\s?`)
)

var artifactReplacer = strings.NewReplacer(
	"<p>", "",
	"</p>", "",
	"<code>", "",
	"</code>", "",
)

// RenderFallback converts raw model text into sanitized HTML when the strict
// JSON parse failed. The output replaces the entire document body; the
// section-by-section renderer is skipped on this path. This is deliberately
// lower fidelity than RenderReport.
func RenderFallback(raw string) string {
	// Fenced spans go before conversion; the converter would otherwise
	// rewrite the markers into pre/code blocks the regex cannot see.
	stripped := fencedSpan.ReplaceAllString(raw, "")

	var buf bytes.Buffer
	if err := markdownConverter.Convert([]byte(stripped), &buf); err != nil {
		// Conversion failure leaves plain text; still sanitized below.
		buf.Reset()
		buf.WriteString(stripped)
	}

	cleaned := artifactReplacer.Replace(buf.String())
	cleaned = strayAngle.ReplaceAllString(cleaned, "")
	cleaned = strings.ReplaceAll(cleaned, "<table>", `<table class="table table-bordered table-striped">`)

	return strings.TrimSpace(cleaned)
}
