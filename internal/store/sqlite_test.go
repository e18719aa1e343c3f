package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedStudent(t *testing.T, s *SQLiteStore) {
	t.Helper()
	if err := s.CreateStudent(&Student{
		StudentID:    "STU00001",
		Name:         "Aditi Sharma",
		Department:   "CSE",
		Year:         2,
		Email:        "aditi@example.edu",
		PasswordHash: "hash",
	}); err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}
}

func TestStudentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	seedStudent(t, s)

	got, err := s.GetStudent("STU00001")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if got == nil || got.Name != "Aditi Sharma" || got.Department != "CSE" {
		t.Errorf("student = %+v", got)
	}

	missing, err := s.GetStudent("STU99999")
	if err != nil {
		t.Fatalf("GetStudent missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown student, got %+v", missing)
	}
}

func TestAttendanceListOrder(t *testing.T) {
	s := newTestStore(t)
	seedStudent(t, s)
	for _, c := range []Course{
		{CourseID: "C1", CourseName: "Databases"},
		{CourseID: "C2", CourseName: "Algorithms"},
	} {
		if err := s.CreateCourse(&c); err != nil {
			t.Fatalf("CreateCourse: %v", err)
		}
	}
	rows := []AttendanceRow{
		{StudentID: "STU00001", CourseID: "C1", TotalClasses: 40, Attended: 30, Percentage: 75},
		{StudentID: "STU00001", CourseID: "C2", TotalClasses: 20, Attended: 10, Percentage: 50},
	}
	for i := range rows {
		if err := s.UpsertAttendance(&rows[i]); err != nil {
			t.Fatalf("UpsertAttendance: %v", err)
		}
	}

	got, names, err := s.ListAttendance("STU00001")
	if err != nil {
		t.Fatalf("ListAttendance: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows", len(got))
	}
	// Worst percentage first.
	if got[0].CourseID != "C2" || names[0] != "Algorithms" {
		t.Errorf("first row = %+v (%s)", got[0], names[0])
	}

	// Upsert replaces, not duplicates.
	if err := s.UpsertAttendance(&AttendanceRow{StudentID: "STU00001", CourseID: "C2", TotalClasses: 22, Attended: 18, Percentage: 81.8}); err != nil {
		t.Fatalf("UpsertAttendance update: %v", err)
	}
	got, _, err = s.ListAttendance("STU00001")
	if err != nil {
		t.Fatalf("ListAttendance after upsert: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("upsert duplicated rows: %d", len(got))
	}
}

func TestAppointmentSlotConflict(t *testing.T) {
	s := newTestStore(t)

	first := &Appointment{StudentID: "STU00001", FacultyID: "FAC01", Date: "2026-09-05", TimeSlot: "10:00", Purpose: "project discussion"}
	if err := s.CreateAppointment(first); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if first.AppointmentID == 0 || first.Status != "confirmed" {
		t.Errorf("appointment = %+v", first)
	}

	dup := &Appointment{StudentID: "STU00002", FacultyID: "FAC01", Date: "2026-09-05", TimeSlot: "10:00"}
	if err := s.CreateAppointment(dup); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("expected ErrSlotUnavailable, got %v", err)
	}

	// Same time, different faculty is fine.
	other := &Appointment{StudentID: "STU00002", FacultyID: "FAC02", Date: "2026-09-05", TimeSlot: "10:00"}
	if err := s.CreateAppointment(other); err != nil {
		t.Errorf("different faculty should book: %v", err)
	}
}

func TestLeaveIsIdempotentPerTicket(t *testing.T) {
	s := newTestStore(t)

	l := &LeaveApplication{TicketID: "LV-STU00001-20260901-20260903", StudentID: "STU00001", FromDate: "2026-09-01", ToDate: "2026-09-03", Reason: "family function"}
	if err := s.CreateLeave(l); err != nil {
		t.Fatalf("CreateLeave: %v", err)
	}
	if l.Status != "submitted" {
		t.Errorf("status = %q", l.Status)
	}
	// Re-applying with the same ticket must not error.
	if err := s.CreateLeave(l); err != nil {
		t.Errorf("repeat CreateLeave: %v", err)
	}
}

func TestFeedbackUpsert(t *testing.T) {
	s := newTestStore(t)

	conv := &ConversationRow{StudentID: "STU00001", UserQuery: "hi", AssistantReply: "hello"}
	if err := s.SaveConversation(conv); err != nil {
		t.Fatalf("SaveConversation: %v", err)
	}

	f := &FeedbackRow{ConversationID: conv.ConversationID, StudentID: "STU00001", Rating: 1}
	if err := s.SaveFeedback(f); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}
	firstID := f.FeedbackID

	f2 := &FeedbackRow{ConversationID: conv.ConversationID, StudentID: "STU00001", Rating: -1, Comment: "wrong answer"}
	if err := s.SaveFeedback(f2); err != nil {
		t.Fatalf("SaveFeedback update: %v", err)
	}
	if f2.FeedbackID != firstID {
		t.Errorf("expected update of feedback %d, got new id %d", firstID, f2.FeedbackID)
	}

	stats, err := s.GetConversationStats("STU00001")
	if err != nil {
		t.Fatalf("GetConversationStats: %v", err)
	}
	if stats.PositiveFeedback != 0 || stats.NegativeFeedback != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestConversationHistoryPaging(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 3; i++ {
		if err := s.SaveConversation(&ConversationRow{
			StudentID:      "STU00001",
			UserQuery:      "q",
			AssistantReply: "a",
			SourcesJSON:    MarshalStringList([]string{"handbook"}),
		}); err != nil {
			t.Fatalf("SaveConversation: %v", err)
		}
	}

	got, err := s.GetConversationHistory("STU00001", 2, 0)
	if err != nil {
		t.Fatalf("GetConversationHistory: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d rows, want 2", len(got))
	}
	if sources := UnmarshalStringList(got[0].SourcesJSON); len(sources) != 1 || sources[0] != "handbook" {
		t.Errorf("sources = %v", sources)
	}
}

func TestSearchDocuments(t *testing.T) {
	s := newTestStore(t)
	docs := []Document{
		{Source: "library", Content: "The library is open from 8am to 10pm on weekdays."},
		{Source: "hostel", Content: "Hostel curfew is 11pm for all residents."},
	}
	for i := range docs {
		if err := s.createDocument(&docs[i]); err != nil {
			t.Fatalf("createDocument: %v", err)
		}
	}

	found, err := s.SearchDocuments([]string{"LIBRARY"}, 10)
	if err != nil {
		t.Fatalf("SearchDocuments: %v", err)
	}
	if len(found) != 1 || found[0].Source != "library" {
		t.Errorf("found = %+v", found)
	}

	if err := s.ClearDocuments(); err != nil {
		t.Fatalf("ClearDocuments: %v", err)
	}
	found, err = s.SearchDocuments([]string{"library"}, 10)
	if err != nil {
		t.Fatalf("SearchDocuments after clear: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("documents survived clear: %+v", found)
	}
}

func TestStringListHelpers(t *testing.T) {
	if MarshalStringList(nil) != "" {
		t.Error("nil list should marshal to empty string")
	}
	if got := UnmarshalStringList(""); len(got) != 0 || got == nil {
		t.Errorf("empty string should yield empty non-nil list, got %v", got)
	}
	if got := UnmarshalStringList("{garbage"); len(got) != 0 {
		t.Errorf("garbage should yield empty list, got %v", got)
	}
}
