package store

import "time"

type Student struct {
	StudentID    string    `json:"student_id"`
	Name         string    `json:"name"`
	Department   string    `json:"department"`
	Year         int       `json:"year"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

type Faculty struct {
	FacultyID  string `json:"faculty_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

type Course struct {
	CourseID     string `json:"course_id"`
	CourseName   string `json:"course_name"`
	Department   string `json:"department"`
	Semester     string `json:"semester"`
	Credits      int    `json:"credits"`
	FacultyID    string `json:"faculty_id"`
	MeetingTimes string `json:"meeting_times"`
}

type Enrollment struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Semester  string `json:"semester"`
	Grade     string `json:"grade"`
}

type AttendanceRow struct {
	StudentID    string  `json:"student_id"`
	CourseID     string  `json:"course_id"`
	TotalClasses int     `json:"total_classes"`
	Attended     int     `json:"attended"`
	Percentage   float64 `json:"percentage"`
}

type FeeRow struct {
	StudentID string  `json:"student_id"`
	Semester  string  `json:"semester"`
	TotalFees float64 `json:"total_fees"`
	Paid      float64 `json:"paid_amount"`
	Due       float64 `json:"due_amount"`
	DueDate   string  `json:"due_date"`
	Status    string  `json:"status"`
}

type Exam struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Semester   string `json:"semester"`
	ExamDate   string `json:"exam_date"`
	ExamTime   string `json:"exam_time"`
	Room       string `json:"room"`
	ExamType   string `json:"exam_type"`
}

type Appointment struct {
	AppointmentID int64     `json:"appointment_id"`
	StudentID     string    `json:"student_id"`
	FacultyID     string    `json:"faculty_id"`
	Date          string    `json:"date"`
	TimeSlot      string    `json:"time_slot"`
	Purpose       string    `json:"purpose"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type LeaveApplication struct {
	TicketID  string    `json:"ticket_id"`
	StudentID string    `json:"student_id"`
	FromDate  string    `json:"from_date"`
	ToDate    string    `json:"to_date"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type DocumentRequest struct {
	TicketID     string `json:"ticket_id"`
	StudentID    string `json:"student_id"`
	DocumentType string `json:"document_type"`
	Status       string `json:"status"`
	ETADays      int    `json:"eta_days"`
}

// Document is one ingested knowledge snippet served as chat context.
type Document struct {
	ID      int64  `json:"id"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

type ConversationRow struct {
	ConversationID int64     `json:"conversation_id"`
	StudentID      string    `json:"student_id"`
	UserQuery      string    `json:"user_query"`
	AssistantReply string    `json:"assistant_reply"`
	SourcesJSON    string    `json:"-"` // Stored as JSON string for DB
	ActionsJSON    string    `json:"-"`
	Model          string    `json:"model"`
	CreatedAt      time.Time `json:"created_at"`
}

type FeedbackRow struct {
	FeedbackID     int64     `json:"feedback_id"`
	ConversationID int64     `json:"conversation_id"`
	StudentID      string    `json:"student_id"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

// QuestionStat is an aggregate row for the analytics view.
type QuestionStat struct {
	Question  string  `json:"question"`
	Frequency int     `json:"frequency"`
	AvgRating float64 `json:"avg_rating"`
}

type ConversationStats struct {
	TotalConversations int     `json:"total_conversations"`
	UniqueStudents     int     `json:"unique_students,omitempty"`
	ActiveDays         int     `json:"active_days,omitempty"`
	PositiveFeedback   int     `json:"positive_feedback"`
	NegativeFeedback   int     `json:"negative_feedback"`
	FeedbackRatio      float64 `json:"feedback_ratio"`
}
