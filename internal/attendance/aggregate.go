package attendance

import (
	"math"

	"campus-assistant/internal/model"
)

// DefaultAlertThreshold is the institution default below which a course
// counts as low attendance. A course exactly at the threshold is fine.
const DefaultAlertThreshold = 75.0

// Summary aggregates a student's per-course attendance records.
type Summary struct {
	OverallPercentage    float64
	TotalAttended        int
	TotalClasses         int
	LowAttendanceCourses []model.AttendanceRecord
}

// Aggregate folds the records into overall totals and picks out the courses
// strictly below threshold, preserving input order. OverallPercentage is 0
// when no classes were held, and rounded to one decimal place for display.
func Aggregate(records []model.AttendanceRecord, threshold float64) Summary {
	var s Summary
	for _, rec := range records {
		s.TotalAttended += rec.Attended
		s.TotalClasses += rec.TotalClasses
		if rec.Percentage < threshold {
			s.LowAttendanceCourses = append(s.LowAttendanceCourses, rec)
		}
	}
	if s.TotalClasses > 0 {
		s.OverallPercentage = round1(100 * float64(s.TotalAttended) / float64(s.TotalClasses))
	}
	return s
}

// Percentage computes a single course's attendance percentage.
func Percentage(attended, totalClasses int) float64 {
	if totalClasses <= 0 {
		return 0
	}
	return round1(100 * float64(attended) / float64(totalClasses))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
