package chat

import (
	"fmt"
	"strings"

	"campus-assistant/internal/attendance"
)

type SpanKind int

const (
	SpanText SpanKind = iota
	SpanBold
)

// Span is one run of display text. Splitting markup from content here keeps
// renderers from ever interpreting user- or model-supplied text as markup.
type Span struct {
	Kind SpanKind
	Text string
}

// ParseSpans splits s on **bold** markers. An unclosed ** is treated as
// literal text.
func ParseSpans(s string) []Span {
	var spans []Span
	for len(s) > 0 {
		open := strings.Index(s, "**")
		if open < 0 {
			spans = append(spans, Span{Kind: SpanText, Text: s})
			break
		}
		end := strings.Index(s[open+2:], "**")
		if end < 0 {
			spans = append(spans, Span{Kind: SpanText, Text: s})
			break
		}
		if open > 0 {
			spans = append(spans, Span{Kind: SpanText, Text: s[:open]})
		}
		spans = append(spans, Span{Kind: SpanBold, Text: s[open+2 : open+2+end]})
		s = s[open+4+end:]
	}
	return spans
}

// FormatAttendanceSummary renders an aggregated report as chat text.
func FormatAttendanceSummary(summary attendance.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your overall attendance is **%.1f%%** (%d of %d classes).",
		summary.OverallPercentage, summary.TotalAttended, summary.TotalClasses)
	if len(summary.LowAttendanceCourses) == 0 {
		b.WriteString(" All courses are above the required threshold.")
		return b.String()
	}
	b.WriteString("\n\nCourses needing attention:")
	for _, course := range summary.LowAttendanceCourses {
		fmt.Fprintf(&b, "\n- **%s**: %.1f%% (%d/%d)",
			course.CourseName, course.Percentage, course.Attended, course.TotalClasses)
	}
	return b.String()
}
