package core

import (
	"fmt"
	"strings"
	"time"

	"campus-assistant/internal/attendance"
	"campus-assistant/internal/model"
	"campus-assistant/internal/store"
)

// AutomationService runs the administrative operations the assistant can
// perform on a student's behalf. Each method returns a human-readable message
// alongside the data so chat replies and REST responses share wording.
type AutomationService struct {
	dbStore        *store.SQLiteStore
	alertThreshold float64
}

func NewAutomationService(db *store.SQLiteStore, alertThreshold float64) *AutomationService {
	if alertThreshold <= 0 {
		alertThreshold = attendance.DefaultAlertThreshold
	}
	return &AutomationService{dbStore: db, alertThreshold: alertThreshold}
}

func (s *AutomationService) toRecord(row store.AttendanceRow, courseName string) model.AttendanceRecord {
	return model.AttendanceRecord{
		CourseID:     row.CourseID,
		CourseName:   courseName,
		TotalClasses: row.TotalClasses,
		Attended:     row.Attended,
		Percentage:   row.Percentage,
		Alert:        row.Percentage < s.alertThreshold,
	}
}

// CheckAttendance reports one course. Found is false when no record exists.
func (s *AutomationService) CheckAttendance(studentID, courseID string) (*model.AttendanceRecord, string, error) {
	row, courseName, err := s.dbStore.GetAttendance(studentID, courseID)
	if err != nil {
		return nil, "", err
	}
	if row == nil {
		return nil, fmt.Sprintf("No attendance record for %s in %s.", studentID, courseID), nil
	}

	rec := s.toRecord(*row, courseName)
	msg := fmt.Sprintf("Your attendance in %s: %.0f%% (%d/%d classes)", courseName, rec.Percentage, rec.Attended, rec.TotalClasses)
	if rec.Alert {
		msg += fmt.Sprintf(" - below %.0f%% threshold.", s.alertThreshold)
	}
	return &rec, msg, nil
}

// AttendanceReport returns all courses, worst percentage first.
func (s *AutomationService) AttendanceReport(studentID string) (*model.AttendanceReport, error) {
	rows, names, err := s.dbStore.ListAttendance(studentID)
	if err != nil {
		return nil, err
	}
	records := make([]model.AttendanceRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, s.toRecord(row, names[i]))
	}
	return &model.AttendanceReport{StudentID: studentID, Count: len(records), Attendance: records}, nil
}

// Schedule returns the student's classes for a date (today when empty).
func (s *AutomationService) Schedule(studentID, targetDate string) (*model.Schedule, string, error) {
	courses, facultyNames, err := s.dbStore.ListSchedule(studentID)
	if err != nil {
		return nil, "", err
	}
	if targetDate == "" {
		targetDate = time.Now().Format("2006-01-02")
	}

	classes := make([]model.ScheduleEntry, 0, len(courses))
	for i, c := range courses {
		meetingTimes := c.MeetingTimes
		if meetingTimes == "" {
			meetingTimes = "Time not listed"
		}
		classes = append(classes, model.ScheduleEntry{
			CourseID:     c.CourseID,
			CourseName:   c.CourseName,
			Department:   c.Department,
			Semester:     c.Semester,
			MeetingTimes: meetingTimes,
			FacultyName:  facultyNames[i],
		})
	}

	sched := &model.Schedule{StudentID: studentID, Date: targetDate, Count: len(classes), Classes: classes}
	msg := fmt.Sprintf("Schedule for %s on %s: %d class(es)", studentID, targetDate, len(classes))
	return sched, msg, nil
}

// FeeStatus returns the latest fee record, nil when the student has none.
func (s *AutomationService) FeeStatus(studentID string) (*model.FeeStatus, string, error) {
	row, err := s.dbStore.GetLatestFee(studentID)
	if err != nil {
		return nil, "", err
	}
	if row == nil {
		return nil, fmt.Sprintf("No fee record for %s.", studentID), nil
	}

	fee := &model.FeeStatus{
		StudentID: row.StudentID,
		Semester:  row.Semester,
		Total:     row.TotalFees,
		Paid:      row.Paid,
		Due:       row.Due,
		DueDate:   row.DueDate,
		Status:    row.Status,
	}
	msg := fmt.Sprintf("Fees for %s: total %.2f, paid %.2f, due %.2f, due date %s (status: %s).",
		fee.Semester, fee.Total, fee.Paid, fee.Due, fee.DueDate, fee.Status)
	return fee, msg, nil
}

// Grade looks up a single course grade.
func (s *AutomationService) Grade(studentID, courseID, semester string) (string, error) {
	grade, courseName, credits, found, err := s.dbStore.GetGrade(studentID, courseID, semester)
	if err != nil {
		return "", err
	}
	if !found {
		return fmt.Sprintf("No grade found for %s in %s (%s).", studentID, courseID, semester), nil
	}
	if grade == "" {
		grade = "N/A"
	}
	return fmt.Sprintf("Grade for %s (%s): %s | Credits: %d", courseName, semester, grade, credits), nil
}

// GradeReport summarizes grades across every enrollment.
func (s *AutomationService) GradeReport(studentID string) (string, error) {
	enrollments, _, err := s.dbStore.ListEnrollments(studentID)
	if err != nil {
		return "", err
	}
	if len(enrollments) == 0 {
		return fmt.Sprintf("No enrollments for %s.", studentID), nil
	}

	var parts []string
	for _, e := range enrollments {
		msg, err := s.Grade(studentID, e.CourseID, e.Semester)
		if err != nil {
			return "", err
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; "), nil
}

// ExamSchedule lists upcoming exams for the student's enrolled courses.
func (s *AutomationService) ExamSchedule(studentID, semester string) ([]store.Exam, string, error) {
	if semester == "" {
		enrollments, _, err := s.dbStore.ListEnrollments(studentID)
		if err != nil {
			return nil, "", err
		}
		if len(enrollments) == 0 {
			return nil, fmt.Sprintf("No enrollments for %s.", studentID), nil
		}
		semester = enrollments[0].Semester // enrollments come newest-semester first
	}

	exams, err := s.dbStore.ListExams(studentID, semester)
	if err != nil {
		return nil, "", err
	}
	if len(exams) == 0 {
		return nil, fmt.Sprintf("No exams scheduled for %s.", semester), nil
	}
	return exams, fmt.Sprintf("Exams for %s: %d found", semester, len(exams)), nil
}

// BookAppointment persists a faculty appointment if the slot is free.
func (s *AutomationService) BookAppointment(studentID string, req model.AppointmentRequest) (*model.AppointmentConfirmation, error) {
	appt := store.Appointment{
		StudentID: studentID,
		FacultyID: req.FacultyID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Purpose:   req.Purpose,
	}
	if err := s.dbStore.CreateAppointment(&appt); err != nil {
		if err == store.ErrSlotUnavailable {
			return &model.AppointmentConfirmation{OK: false, Message: "Slot unavailable; choose another time."}, nil
		}
		return nil, err
	}

	return &model.AppointmentConfirmation{
		OK:            true,
		AppointmentID: appt.AppointmentID,
		StudentID:     studentID,
		FacultyID:     req.FacultyID,
		Date:          req.Date,
		TimeSlot:      req.TimeSlot,
		Message:       fmt.Sprintf("Appointment confirmed for %s at %s (ID: %d).", req.Date, req.TimeSlot, appt.AppointmentID),
	}, nil
}

// ApplyLeave files a leave application and returns its ticket.
func (s *AutomationService) ApplyLeave(studentID string, req model.LeaveRequest) (*model.LeaveConfirmation, error) {
	ticket := fmt.Sprintf("LV-%s-%s-%s",
		studentID,
		strings.ReplaceAll(req.FromDate, "-", ""),
		strings.ReplaceAll(req.ToDate, "-", ""),
	)
	leave := store.LeaveApplication{
		TicketID:  ticket,
		StudentID: studentID,
		FromDate:  req.FromDate,
		ToDate:    req.ToDate,
		Reason:    req.Reason,
	}
	if err := s.dbStore.CreateLeave(&leave); err != nil {
		return nil, err
	}

	return &model.LeaveConfirmation{
		OK:        true,
		TicketID:  ticket,
		StudentID: studentID,
		FromDate:  req.FromDate,
		ToDate:    req.ToDate,
		Status:    leave.Status,
		Message:   fmt.Sprintf("Leave request submitted. Ticket: %s", ticket),
	}, nil
}

// RequestDocument files a ticket for an official document.
func (s *AutomationService) RequestDocument(studentID, documentType string) (string, error) {
	allowed := map[string]bool{"Bonafide": true, "ID Card": true, "Transcript": true, "NOC": true}
	if !allowed[documentType] {
		return "Unsupported document type. Choose from: Bonafide, ID Card, NOC, Transcript", nil
	}

	eta := 5
	if documentType == "Bonafide" || documentType == "ID Card" {
		eta = 2
	}
	req := store.DocumentRequest{
		TicketID:     fmt.Sprintf("DOC-%s-%s", studentID, strings.ToUpper(strings.ReplaceAll(documentType, " ", ""))),
		StudentID:    studentID,
		DocumentType: documentType,
		ETADays:      eta,
	}
	if err := s.dbStore.CreateDocumentRequest(&req); err != nil {
		return "", err
	}
	return fmt.Sprintf("Request submitted. Ticket: %s. Estimated completion: %d day(s).", req.TicketID, eta), nil
}

// Profile assembles the full student profile with courses and attendance.
func (s *AutomationService) Profile(studentID string) (*model.Profile, error) {
	student, err := s.dbStore.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, nil
	}

	enrollments, courses, err := s.dbStore.ListEnrollments(studentID)
	if err != nil {
		return nil, err
	}
	enrolled := make([]model.EnrolledCourse, 0, len(enrollments))
	for i, e := range enrollments {
		grade := e.Grade
		if grade == "" {
			grade = "In Progress"
		}
		enrolled = append(enrolled, model.EnrolledCourse{
			CourseID:   e.CourseID,
			CourseName: courses[i].CourseName,
			Credits:    courses[i].Credits,
			Semester:   e.Semester,
			Grade:      grade,
		})
	}

	report, err := s.AttendanceReport(studentID)
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		StudentID:         student.StudentID,
		Name:              student.Name,
		Department:        student.Department,
		Year:              student.Year,
		Email:             student.Email,
		Phone:             student.Phone,
		EnrolledCourses:   enrolled,
		AttendanceSummary: report.Attendance,
	}, nil
}
