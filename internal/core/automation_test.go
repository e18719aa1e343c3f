package core

import (
	"strings"
	"testing"

	"campus-assistant/internal/model"
	"campus-assistant/internal/store"
)

func TestCheckAttendanceBelowThreshold(t *testing.T) {
	db := newTestStore(t)
	seedStudentWithAttendance(t, db)
	svc := NewAutomationService(db, 75)

	rec, msg, err := svc.CheckAttendance("STU00001", "C1")
	if err != nil {
		t.Fatalf("CheckAttendance: %v", err)
	}
	if rec == nil || !rec.Alert {
		t.Errorf("record = %+v, want alert set at 70%%", rec)
	}
	if !strings.Contains(msg, "below 75% threshold") {
		t.Errorf("message = %q", msg)
	}

	rec, msg, err = svc.CheckAttendance("STU00001", "C9")
	if err != nil {
		t.Fatalf("CheckAttendance missing: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
	if !strings.Contains(msg, "No attendance record") {
		t.Errorf("message = %q", msg)
	}
}

func TestExactlyAtThresholdIsNotAlerted(t *testing.T) {
	db := newTestStore(t)
	seedStudentWithAttendance(t, db)
	if err := db.UpsertAttendance(&store.AttendanceRow{StudentID: "STU00001", CourseID: "C1", TotalClasses: 40, Attended: 30, Percentage: 75}); err != nil {
		t.Fatal(err)
	}
	svc := NewAutomationService(db, 75)

	rec, _, err := svc.CheckAttendance("STU00001", "C1")
	if err != nil {
		t.Fatalf("CheckAttendance: %v", err)
	}
	if rec.Alert {
		t.Error("75% exactly must not raise an alert")
	}
}

func TestApplyLeaveTicketFormat(t *testing.T) {
	db := newTestStore(t)
	svc := NewAutomationService(db, 75)

	conf, err := svc.ApplyLeave("STU00001", model.LeaveRequest{
		FromDate: "2026-09-01",
		ToDate:   "2026-09-03",
		Reason:   "family function",
	})
	if err != nil {
		t.Fatalf("ApplyLeave: %v", err)
	}
	if conf.TicketID != "LV-STU00001-20260901-20260903" {
		t.Errorf("ticket = %q", conf.TicketID)
	}
	if !conf.OK || conf.Status != "submitted" {
		t.Errorf("confirmation = %+v", conf)
	}

	// Same window again yields the same ticket without error.
	again, err := svc.ApplyLeave("STU00001", model.LeaveRequest{FromDate: "2026-09-01", ToDate: "2026-09-03", Reason: "family function"})
	if err != nil {
		t.Fatalf("repeat ApplyLeave: %v", err)
	}
	if again.TicketID != conf.TicketID {
		t.Errorf("repeat ticket = %q", again.TicketID)
	}
}

func TestBookAppointmentSlotConflict(t *testing.T) {
	db := newTestStore(t)
	svc := NewAutomationService(db, 75)

	req := model.AppointmentRequest{FacultyID: "FAC01", Date: "2026-09-05", TimeSlot: "10:00-10:30", Purpose: "project"}
	conf, err := svc.BookAppointment("STU00001", req)
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	if !conf.OK || conf.AppointmentID == 0 {
		t.Errorf("confirmation = %+v", conf)
	}

	conf, err = svc.BookAppointment("STU00002", req)
	if err != nil {
		t.Fatalf("conflicting BookAppointment: %v", err)
	}
	if conf.OK {
		t.Error("conflicting booking must not succeed")
	}
	if conf.Message != "Slot unavailable; choose another time." {
		t.Errorf("message = %q", conf.Message)
	}
}

func TestFeeStatusMessage(t *testing.T) {
	db := newTestStore(t)
	if err := db.CreateFee(&store.FeeRow{StudentID: "STU00001", Semester: "2026-Fall", TotalFees: 1000, Paid: 600, Due: 400, DueDate: "2026-10-01", Status: "pending"}); err != nil {
		t.Fatal(err)
	}
	svc := NewAutomationService(db, 75)

	fee, msg, err := svc.FeeStatus("STU00001")
	if err != nil {
		t.Fatalf("FeeStatus: %v", err)
	}
	if fee.Due != 400 {
		t.Errorf("due = %v", fee.Due)
	}
	if !strings.Contains(msg, "due 400.00") {
		t.Errorf("message = %q", msg)
	}

	fee, msg, err = svc.FeeStatus("STU00002")
	if err != nil {
		t.Fatalf("FeeStatus missing: %v", err)
	}
	if fee != nil || !strings.Contains(msg, "No fee record") {
		t.Errorf("fee = %+v, msg = %q", fee, msg)
	}
}

func TestGradeReport(t *testing.T) {
	db := newTestStore(t)
	seedStudentWithAttendance(t, db)
	if err := db.CreateCourse(&store.Course{CourseID: "C2", CourseName: "Algorithms", Credits: 3}); err != nil {
		t.Fatal(err)
	}
	if err := db.CreateEnrollment(&store.Enrollment{StudentID: "STU00001", CourseID: "C2", Semester: "2026-Fall", Grade: "A"}); err != nil {
		t.Fatal(err)
	}
	svc := NewAutomationService(db, 75)

	msg, err := svc.GradeReport("STU00001")
	if err != nil {
		t.Fatalf("GradeReport: %v", err)
	}
	// Ungraded courses show N/A, graded ones their letter.
	if !strings.Contains(msg, "Grade for Databases (2026-Fall): N/A") {
		t.Errorf("missing in-progress course: %q", msg)
	}
	if !strings.Contains(msg, "Grade for Algorithms (2026-Fall): A | Credits: 3") {
		t.Errorf("missing graded course: %q", msg)
	}

	msg, err = svc.GradeReport("STU99999")
	if err != nil {
		t.Fatalf("GradeReport no enrollments: %v", err)
	}
	if !strings.Contains(msg, "No enrollments") {
		t.Errorf("message = %q", msg)
	}
}

func TestRequestDocument(t *testing.T) {
	db := newTestStore(t)
	svc := NewAutomationService(db, 75)

	msg, err := svc.RequestDocument("STU00001", "Bonafide")
	if err != nil {
		t.Fatalf("RequestDocument: %v", err)
	}
	if !strings.Contains(msg, "DOC-STU00001-BONAFIDE") || !strings.Contains(msg, "2 day(s)") {
		t.Errorf("message = %q", msg)
	}

	msg, err = svc.RequestDocument("STU00001", "Transcript")
	if err != nil {
		t.Fatalf("RequestDocument: %v", err)
	}
	if !strings.Contains(msg, "5 day(s)") {
		t.Errorf("message = %q", msg)
	}

	msg, err = svc.RequestDocument("STU00001", "Degree")
	if err != nil {
		t.Fatalf("RequestDocument unsupported: %v", err)
	}
	if !strings.Contains(msg, "Unsupported document type") {
		t.Errorf("message = %q", msg)
	}
}

func TestProfileAssemblesGradesAndAttendance(t *testing.T) {
	db := newTestStore(t)
	seedStudentWithAttendance(t, db)
	svc := NewAutomationService(db, 75)

	profile, err := svc.Profile("STU00001")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile == nil {
		t.Fatal("profile is nil")
	}
	if len(profile.EnrolledCourses) != 1 || profile.EnrolledCourses[0].Grade != "In Progress" {
		t.Errorf("enrolled = %+v", profile.EnrolledCourses)
	}
	if len(profile.AttendanceSummary) != 1 {
		t.Errorf("attendance = %+v", profile.AttendanceSummary)
	}

	missing, err := svc.Profile("STU99999")
	if err != nil {
		t.Fatalf("Profile missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown student, got %+v", missing)
	}
}
