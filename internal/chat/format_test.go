package chat

import (
	"reflect"
	"strings"
	"testing"

	"campus-assistant/internal/attendance"
	"campus-assistant/internal/model"
)

func TestParseSpans(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Span
	}{
		{
			name:  "plain text",
			input: "hello world",
			want:  []Span{{SpanText, "hello world"}},
		},
		{
			name:  "single bold",
			input: "your attendance is **75%** overall",
			want: []Span{
				{SpanText, "your attendance is "},
				{SpanBold, "75%"},
				{SpanText, " overall"},
			},
		},
		{
			name:  "bold at start and end",
			input: "**Alert:** check **now**",
			want: []Span{
				{SpanBold, "Alert:"},
				{SpanText, " check "},
				{SpanBold, "now"},
			},
		},
		{
			name:  "unclosed marker stays literal",
			input: "a ** b",
			want:  []Span{{SpanText, "a ** b"}},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "adjacent bold runs",
			input: "**a****b**",
			want:  []Span{{SpanBold, "a"}, {SpanBold, "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSpans(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSpans(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSpansNeverInterpretsContentAsMarkup(t *testing.T) {
	// Bold content containing marker-like text must survive round trips
	// through the span list without growing new markup.
	spans := ParseSpans("before **mid** after")
	var rebuilt strings.Builder
	for _, span := range spans {
		rebuilt.WriteString(span.Text)
	}
	if rebuilt.String() != "before mid after" {
		t.Errorf("rebuilt = %q", rebuilt.String())
	}
}

func TestFormatAttendanceSummaryAllGood(t *testing.T) {
	summary := attendance.Summary{
		OverallPercentage: 88.5,
		TotalAttended:     77,
		TotalClasses:      87,
	}
	got := FormatAttendanceSummary(summary)
	if !strings.Contains(got, "**88.5%**") {
		t.Errorf("missing overall percentage: %q", got)
	}
	if !strings.Contains(got, "above the required threshold") {
		t.Errorf("missing all-clear line: %q", got)
	}
}

func TestFormatAttendanceSummaryLowCourses(t *testing.T) {
	summary := attendance.Summary{
		OverallPercentage: 66.7,
		TotalAttended:     40,
		TotalClasses:      60,
		LowAttendanceCourses: []model.AttendanceRecord{
			{CourseID: "C2", CourseName: "Algorithms", TotalClasses: 20, Attended: 10, Percentage: 50},
		},
	}
	got := FormatAttendanceSummary(summary)
	if !strings.Contains(got, "Courses needing attention:") {
		t.Errorf("missing warning section: %q", got)
	}
	if !strings.Contains(got, "**Algorithms**: 50.0% (10/20)") {
		t.Errorf("missing course line: %q", got)
	}
}
