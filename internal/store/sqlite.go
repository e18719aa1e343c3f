package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS students (
        student_id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        department TEXT NOT NULL,
        year INTEGER NOT NULL,
        email TEXT,
        phone TEXT,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS faculty (
        faculty_id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        department TEXT,
        email TEXT
    );

    CREATE TABLE IF NOT EXISTS courses (
        course_id TEXT PRIMARY KEY,
        course_name TEXT NOT NULL,
        department TEXT,
        semester TEXT,
        credits INTEGER DEFAULT 0,
        faculty_id TEXT,
        meeting_times TEXT,
        FOREIGN KEY (faculty_id) REFERENCES faculty (faculty_id)
    );

    CREATE TABLE IF NOT EXISTS enrollments (
        student_id TEXT NOT NULL,
        course_id TEXT NOT NULL,
        semester TEXT NOT NULL,
        grade TEXT,
        PRIMARY KEY (student_id, course_id, semester),
        FOREIGN KEY (student_id) REFERENCES students (student_id),
        FOREIGN KEY (course_id) REFERENCES courses (course_id)
    );

    CREATE TABLE IF NOT EXISTS attendance (
        student_id TEXT NOT NULL,
        course_id TEXT NOT NULL,
        total_classes INTEGER NOT NULL DEFAULT 0,
        attended INTEGER NOT NULL DEFAULT 0,
        percentage REAL NOT NULL DEFAULT 0,
        PRIMARY KEY (student_id, course_id),
        FOREIGN KEY (student_id) REFERENCES students (student_id),
        FOREIGN KEY (course_id) REFERENCES courses (course_id)
    );

    CREATE TABLE IF NOT EXISTS fees (
        student_id TEXT NOT NULL,
        semester TEXT NOT NULL,
        total_fees REAL NOT NULL,
        paid_amount REAL NOT NULL,
        due_amount REAL NOT NULL,
        due_date TEXT,
        status TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS exams (
        course_id TEXT NOT NULL,
        semester TEXT NOT NULL,
        exam_date TEXT NOT NULL,
        exam_time TEXT,
        room_number TEXT,
        exam_type TEXT
    );

    CREATE TABLE IF NOT EXISTS appointments (
        appointment_id INTEGER PRIMARY KEY AUTOINCREMENT,
        student_id TEXT NOT NULL,
        faculty_id TEXT NOT NULL,
        date TEXT NOT NULL,
        time_slot TEXT NOT NULL,
        purpose TEXT,
        status TEXT NOT NULL DEFAULT 'confirmed',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS leave_applications (
        ticket_id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL,
        from_date TEXT NOT NULL,
        to_date TEXT NOT NULL,
        reason TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'submitted',
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS document_requests (
        ticket_id TEXT PRIMARY KEY,
        student_id TEXT NOT NULL,
        document_type TEXT NOT NULL,
        status TEXT NOT NULL DEFAULT 'submitted',
        eta_days INTEGER NOT NULL
    );

    CREATE TABLE IF NOT EXISTS documents (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        source TEXT NOT NULL,
        content TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS conversation_history (
        conversation_id INTEGER PRIMARY KEY AUTOINCREMENT,
        student_id TEXT NOT NULL,
        user_query TEXT NOT NULL,
        assistant_reply TEXT NOT NULL,
        sources TEXT,
        actions TEXT,
        model TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS feedback (
        feedback_id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id INTEGER NOT NULL,
        student_id TEXT NOT NULL,
        rating INTEGER NOT NULL CHECK (rating IN (1, -1)),
        comment TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (conversation_id) REFERENCES conversation_history (conversation_id)
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// Student methods

func (s *SQLiteStore) GetStudent(studentID string) (*Student, error) {
	var st Student
	err := s.db.QueryRow(
		"SELECT student_id, name, department, year, email, phone, password_hash FROM students WHERE student_id = ?",
		studentID,
	).Scan(&st.StudentID, &st.Name, &st.Department, &st.Year, &st.Email, &st.Phone, &st.PasswordHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Student not found
		}
		return nil, fmt.Errorf("failed to query student: %w", err)
	}
	return &st, nil
}

func (s *SQLiteStore) CreateStudent(st *Student) error {
	_, err := s.db.Exec(
		"INSERT INTO students (student_id, name, department, year, email, phone, password_hash) VALUES (?, ?, ?, ?, ?, ?, ?)",
		st.StudentID, st.Name, st.Department, st.Year, st.Email, st.Phone, st.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to insert student: %w", err)
	}
	return nil
}

// Catalog methods

func (s *SQLiteStore) CreateFaculty(f *Faculty) error {
	_, err := s.db.Exec(
		"INSERT INTO faculty (faculty_id, name, department, email) VALUES (?, ?, ?, ?)",
		f.FacultyID, f.Name, f.Department, f.Email,
	)
	if err != nil {
		return fmt.Errorf("failed to insert faculty: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetFacultyName(facultyID string) (string, error) {
	var name string
	err := s.db.QueryRow("SELECT name FROM faculty WHERE faculty_id = ?", facultyID).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return facultyID, nil // fall back to the raw ID
		}
		return "", fmt.Errorf("failed to query faculty: %w", err)
	}
	return name, nil
}

func (s *SQLiteStore) CreateCourse(c *Course) error {
	_, err := s.db.Exec(
		"INSERT INTO courses (course_id, course_name, department, semester, credits, faculty_id, meeting_times) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.CourseID, c.CourseName, c.Department, c.Semester, c.Credits, c.FacultyID, c.MeetingTimes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert course: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateEnrollment(e *Enrollment) error {
	_, err := s.db.Exec(
		"INSERT INTO enrollments (student_id, course_id, semester, grade) VALUES (?, ?, ?, ?)",
		e.StudentID, e.CourseID, e.Semester, e.Grade,
	)
	if err != nil {
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListEnrollments(studentID string) ([]Enrollment, []Course, error) {
	rows, err := s.db.Query(`
        SELECT e.student_id, e.course_id, e.semester, COALESCE(e.grade, ''),
               c.course_name, COALESCE(c.department, ''), c.credits, COALESCE(c.faculty_id, ''), COALESCE(c.meeting_times, '')
        FROM enrollments e
        JOIN courses c ON e.course_id = c.course_id
        WHERE e.student_id = ?
        ORDER BY e.semester DESC
    `, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []Enrollment
	var courses []Course
	for rows.Next() {
		var e Enrollment
		var c Course
		if err := rows.Scan(&e.StudentID, &e.CourseID, &e.Semester, &e.Grade,
			&c.CourseName, &c.Department, &c.Credits, &c.FacultyID, &c.MeetingTimes); err != nil {
			return nil, nil, fmt.Errorf("failed to scan enrollment row: %w", err)
		}
		c.CourseID = e.CourseID
		c.Semester = e.Semester
		enrollments = append(enrollments, e)
		courses = append(courses, c)
	}
	return enrollments, courses, nil
}

// Attendance methods

func (s *SQLiteStore) UpsertAttendance(a *AttendanceRow) error {
	_, err := s.db.Exec(`
        INSERT INTO attendance (student_id, course_id, total_classes, attended, percentage)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT (student_id, course_id)
        DO UPDATE SET total_classes = excluded.total_classes, attended = excluded.attended, percentage = excluded.percentage
    `, a.StudentID, a.CourseID, a.TotalClasses, a.Attended, a.Percentage)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

// ListAttendance returns attendance with course names, worst percentage first,
// the order the original reports used.
func (s *SQLiteStore) ListAttendance(studentID string) ([]AttendanceRow, []string, error) {
	rows, err := s.db.Query(`
        SELECT a.student_id, a.course_id, a.total_classes, a.attended, a.percentage, c.course_name
        FROM attendance a
        JOIN courses c ON a.course_id = c.course_id
        WHERE a.student_id = ?
        ORDER BY a.percentage ASC
    `, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var records []AttendanceRow
	var names []string
	for rows.Next() {
		var a AttendanceRow
		var name string
		if err := rows.Scan(&a.StudentID, &a.CourseID, &a.TotalClasses, &a.Attended, &a.Percentage, &name); err != nil {
			return nil, nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		records = append(records, a)
		names = append(names, name)
	}
	return records, names, nil
}

func (s *SQLiteStore) GetAttendance(studentID, courseID string) (*AttendanceRow, string, error) {
	var a AttendanceRow
	var name string
	err := s.db.QueryRow(`
        SELECT a.student_id, a.course_id, a.total_classes, a.attended, a.percentage, c.course_name
        FROM attendance a
        JOIN courses c ON a.course_id = c.course_id
        WHERE a.student_id = ? AND a.course_id = ?
    `, studentID, courseID).Scan(&a.StudentID, &a.CourseID, &a.TotalClasses, &a.Attended, &a.Percentage, &name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to query attendance: %w", err)
	}
	return &a, name, nil
}

// Schedule methods

func (s *SQLiteStore) ListSchedule(studentID string) ([]Course, []string, error) {
	rows, err := s.db.Query(`
        SELECT c.course_id, c.course_name, COALESCE(c.department, ''), COALESCE(c.semester, ''), COALESCE(c.meeting_times, ''), COALESCE(f.name, '')
        FROM enrollments e
        JOIN courses c ON e.course_id = c.course_id
        LEFT JOIN faculty f ON c.faculty_id = f.faculty_id
        WHERE e.student_id = ?
        ORDER BY c.course_id
    `, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer rows.Close()

	var courses []Course
	var facultyNames []string
	for rows.Next() {
		var c Course
		var faculty string
		if err := rows.Scan(&c.CourseID, &c.CourseName, &c.Department, &c.Semester, &c.MeetingTimes, &faculty); err != nil {
			return nil, nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		courses = append(courses, c)
		facultyNames = append(facultyNames, faculty)
	}
	return courses, facultyNames, nil
}

// Fee methods

func (s *SQLiteStore) CreateFee(f *FeeRow) error {
	_, err := s.db.Exec(
		"INSERT INTO fees (student_id, semester, total_fees, paid_amount, due_amount, due_date, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		f.StudentID, f.Semester, f.TotalFees, f.Paid, f.Due, f.DueDate, f.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fee record: %w", err)
	}
	return nil
}

// GetLatestFee returns the most recent fee record, or nil when none exists.
func (s *SQLiteStore) GetLatestFee(studentID string) (*FeeRow, error) {
	var f FeeRow
	err := s.db.QueryRow(`
        SELECT student_id, semester, total_fees, paid_amount, due_amount, COALESCE(due_date, ''), COALESCE(status, '')
        FROM fees
        WHERE student_id = ?
        ORDER BY created_at DESC
        LIMIT 1
    `, studentID).Scan(&f.StudentID, &f.Semester, &f.TotalFees, &f.Paid, &f.Due, &f.DueDate, &f.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query fees: %w", err)
	}
	return &f, nil
}

// Grades and exams

func (s *SQLiteStore) GetGrade(studentID, courseID, semester string) (grade, courseName string, credits int, found bool, err error) {
	err = s.db.QueryRow(`
        SELECT COALESCE(e.grade, ''), c.course_name, c.credits
        FROM enrollments e
        JOIN courses c ON e.course_id = c.course_id
        WHERE e.student_id = ? AND e.course_id = ? AND e.semester = ?
    `, studentID, courseID, semester).Scan(&grade, &courseName, &credits)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", "", 0, false, nil
		}
		return "", "", 0, false, fmt.Errorf("failed to query grade: %w", err)
	}
	return grade, courseName, credits, true, nil
}

func (s *SQLiteStore) CreateExam(e *Exam) error {
	_, err := s.db.Exec(
		"INSERT INTO exams (course_id, semester, exam_date, exam_time, room_number, exam_type) VALUES (?, ?, ?, ?, ?, ?)",
		e.CourseID, e.Semester, e.ExamDate, e.ExamTime, e.Room, e.ExamType,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exam: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListExams(studentID, semester string) ([]Exam, error) {
	rows, err := s.db.Query(`
        SELECT ex.course_id, c.course_name, ex.semester, ex.exam_date, COALESCE(ex.exam_time, ''), COALESCE(ex.room_number, ''), COALESCE(ex.exam_type, '')
        FROM exams ex
        JOIN courses c ON ex.course_id = c.course_id
        JOIN enrollments e ON e.course_id = ex.course_id AND e.semester = ex.semester
        WHERE e.student_id = ? AND ex.semester = ?
        ORDER BY ex.exam_date, ex.exam_time
    `, studentID, semester)
	if err != nil {
		return nil, fmt.Errorf("failed to query exams: %w", err)
	}
	defer rows.Close()

	var exams []Exam
	for rows.Next() {
		var e Exam
		if err := rows.Scan(&e.CourseID, &e.CourseName, &e.Semester, &e.ExamDate, &e.ExamTime, &e.Room, &e.ExamType); err != nil {
			return nil, fmt.Errorf("failed to scan exam row: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, nil
}

// Appointment and leave methods

var ErrSlotUnavailable = fmt.Errorf("slot unavailable")

// CreateAppointment books a slot unless another appointment already holds it.
func (s *SQLiteStore) CreateAppointment(a *Appointment) error {
	var exists int
	err := s.db.QueryRow(
		"SELECT 1 FROM appointments WHERE faculty_id = ? AND date = ? AND time_slot = ? LIMIT 1",
		a.FacultyID, a.Date, a.TimeSlot,
	).Scan(&exists)
	if err == nil {
		return ErrSlotUnavailable
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check appointment slot: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO appointments (student_id, faculty_id, date, time_slot, purpose) VALUES (?, ?, ?, ?, ?)",
		a.StudentID, a.FacultyID, a.Date, a.TimeSlot, a.Purpose,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	a.AppointmentID, _ = res.LastInsertId()
	a.Status = "confirmed"
	return nil
}

func (s *SQLiteStore) CreateLeave(l *LeaveApplication) error {
	_, err := s.db.Exec(`
        INSERT OR REPLACE INTO leave_applications (ticket_id, student_id, from_date, to_date, reason)
        VALUES (?, ?, ?, ?, ?)
    `, l.TicketID, l.StudentID, l.FromDate, l.ToDate, l.Reason)
	if err != nil {
		return fmt.Errorf("failed to insert leave application: %w", err)
	}
	l.Status = "submitted"
	return nil
}

func (s *SQLiteStore) CreateDocumentRequest(d *DocumentRequest) error {
	_, err := s.db.Exec(`
        INSERT OR REPLACE INTO document_requests (ticket_id, student_id, document_type, eta_days)
        VALUES (?, ?, ?, ?)
    `, d.TicketID, d.StudentID, d.DocumentType, d.ETADays)
	if err != nil {
		return fmt.Errorf("failed to insert document request: %w", err)
	}
	d.Status = "submitted"
	return nil
}

// Conversation history methods

func (s *SQLiteStore) SaveConversation(c *ConversationRow) error {
	res, err := s.db.Exec(`
        INSERT INTO conversation_history (student_id, user_query, assistant_reply, sources, actions, model)
        VALUES (?, ?, ?, ?, ?, ?)
    `, c.StudentID, c.UserQuery, c.AssistantReply, c.SourcesJSON, c.ActionsJSON, c.Model)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	c.ConversationID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetConversationHistory(studentID string, limit, offset int) ([]ConversationRow, error) {
	rows, err := s.db.Query(`
        SELECT conversation_id, student_id, user_query, assistant_reply, COALESCE(sources, ''), COALESCE(actions, ''), COALESCE(model, ''), created_at
        FROM conversation_history
        WHERE student_id = ?
        ORDER BY created_at DESC
        LIMIT ? OFFSET ?
    `, studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation history: %w", err)
	}
	defer rows.Close()

	var conversations []ConversationRow
	for rows.Next() {
		var c ConversationRow
		if err := rows.Scan(&c.ConversationID, &c.StudentID, &c.UserQuery, &c.AssistantReply, &c.SourcesJSON, &c.ActionsJSON, &c.Model, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}

// SaveFeedback records a thumbs up/down for a conversation, replacing any
// earlier feedback the same student left on it.
func (s *SQLiteStore) SaveFeedback(f *FeedbackRow) error {
	var existing int64
	err := s.db.QueryRow(
		"SELECT feedback_id FROM feedback WHERE conversation_id = ? AND student_id = ?",
		f.ConversationID, f.StudentID,
	).Scan(&existing)
	switch {
	case err == nil:
		_, err = s.db.Exec(
			"UPDATE feedback SET rating = ?, comment = ?, created_at = CURRENT_TIMESTAMP WHERE feedback_id = ?",
			f.Rating, f.Comment, existing,
		)
		if err != nil {
			return fmt.Errorf("failed to update feedback: %w", err)
		}
		f.FeedbackID = existing
		return nil
	case err == sql.ErrNoRows:
		res, err := s.db.Exec(
			"INSERT INTO feedback (conversation_id, student_id, rating, comment) VALUES (?, ?, ?, ?)",
			f.ConversationID, f.StudentID, f.Rating, f.Comment,
		)
		if err != nil {
			return fmt.Errorf("failed to insert feedback: %w", err)
		}
		f.FeedbackID, _ = res.LastInsertId()
		return nil
	default:
		return fmt.Errorf("failed to check existing feedback: %w", err)
	}
}

func (s *SQLiteStore) MostAskedQuestions(limit, days int) ([]QuestionStat, error) {
	rows, err := s.db.Query(`
        SELECT ch.user_query, COUNT(*) AS frequency,
               AVG(CASE WHEN f.rating IS NOT NULL THEN f.rating ELSE 0 END) AS avg_rating
        FROM conversation_history ch
        LEFT JOIN feedback f ON ch.conversation_id = f.conversation_id
        WHERE ch.created_at >= datetime('now', ?)
        GROUP BY LOWER(ch.user_query)
        ORDER BY frequency DESC
        LIMIT ?
    `, fmt.Sprintf("-%d days", days), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query question stats: %w", err)
	}
	defer rows.Close()

	var stats []QuestionStat
	for rows.Next() {
		var q QuestionStat
		if err := rows.Scan(&q.Question, &q.Frequency, &q.AvgRating); err != nil {
			return nil, fmt.Errorf("failed to scan question stat: %w", err)
		}
		stats = append(stats, q)
	}
	return stats, nil
}

// GetConversationStats aggregates globally when studentID is empty.
func (s *SQLiteStore) GetConversationStats(studentID string) (*ConversationStats, error) {
	var stats ConversationStats
	var err error
	if studentID != "" {
		err = s.db.QueryRow(`
            SELECT COUNT(*), COUNT(DISTINCT DATE(created_at))
            FROM conversation_history WHERE student_id = ?
        `, studentID).Scan(&stats.TotalConversations, &stats.ActiveDays)
		if err != nil {
			return nil, fmt.Errorf("failed to query student stats: %w", err)
		}
		err = s.db.QueryRow(`
            SELECT
                COUNT(CASE WHEN f.rating = 1 THEN 1 END),
                COUNT(CASE WHEN f.rating = -1 THEN 1 END)
            FROM feedback f
            JOIN conversation_history ch ON f.conversation_id = ch.conversation_id
            WHERE ch.student_id = ?
        `, studentID).Scan(&stats.PositiveFeedback, &stats.NegativeFeedback)
	} else {
		err = s.db.QueryRow(`
            SELECT COUNT(*), COUNT(DISTINCT student_id) FROM conversation_history
        `).Scan(&stats.TotalConversations, &stats.UniqueStudents)
		if err != nil {
			return nil, fmt.Errorf("failed to query global stats: %w", err)
		}
		err = s.db.QueryRow(`
            SELECT
                COUNT(CASE WHEN rating = 1 THEN 1 END),
                COUNT(CASE WHEN rating = -1 THEN 1 END)
            FROM feedback
        `).Scan(&stats.PositiveFeedback, &stats.NegativeFeedback)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback counts: %w", err)
	}

	if total := stats.PositiveFeedback + stats.NegativeFeedback; total > 0 {
		stats.FeedbackRatio = float64(stats.PositiveFeedback) / float64(total)
	}
	return &stats, nil
}

// Document (knowledge base) methods

func (s *SQLiteStore) createDocument(doc *Document) error {
	res, err := s.db.Exec("INSERT INTO documents (source, content) VALUES (?, ?)", doc.Source, doc.Content)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	doc.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ClearDocuments() error {
	_, err := s.db.Exec("DELETE FROM documents")
	if err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	_, err = s.db.Exec("DELETE FROM sqlite_sequence WHERE name='documents'")
	if err != nil && !strings.Contains(err.Error(), "no such table") {
		log.Printf("Warning: could not reset sequence for documents: %v", err)
	}
	return nil
}

// SearchDocuments matches any of the terms case-insensitively against document
// content and returns up to limit snippets. Scoring happens in the caller.
func (s *SQLiteStore) SearchDocuments(terms []string, limit int) ([]Document, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []interface{}
	for _, term := range terms {
		conditions = append(conditions, "LOWER(content) LIKE ?")
		args = append(args, "%"+strings.ToLower(term)+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		"SELECT id, source, content FROM documents WHERE %s LIMIT ?",
		strings.Join(conditions, " OR "),
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Source, &d.Content); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// MarshalStringList is a small helper for the JSON-string columns.
func MarshalStringList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	b, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(b)
}

// UnmarshalStringList reverses MarshalStringList; bad data yields an empty list.
func UnmarshalStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("Warning: failed to unmarshal stored list %q: %v", raw, err)
		return []string{}
	}
	return items
}
