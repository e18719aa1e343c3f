package model

// Wire types shared by the HTTP handlers and the API client.

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation transcript. Sources, Actions and
// AttendanceData are only ever set on assistant messages.
type Message struct {
	Role           string             `json:"role"`
	Content        string             `json:"content"`
	Sources        []string           `json:"sources,omitempty"`
	Actions        []string           `json:"actions,omitempty"`
	AttendanceData []AttendanceRecord `json:"attendance_data,omitempty"`
}

// AttendanceRecord is one course's attendance summary for a student.
// Invariant: Attended <= TotalClasses; Percentage is 100*Attended/TotalClasses
// when TotalClasses > 0, else 0.
type AttendanceRecord struct {
	CourseID     string  `json:"course_id"`
	CourseName   string  `json:"course_name"`
	TotalClasses int     `json:"total_classes"`
	Attended     int     `json:"attended"`
	Percentage   float64 `json:"percentage"`
	Alert        bool    `json:"alert"`
}

type EnrolledCourse struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	Credits    int    `json:"credits"`
	Semester   string `json:"semester"`
	Grade      string `json:"grade"`
}

type Profile struct {
	StudentID         string             `json:"student_id"`
	Name              string             `json:"name"`
	Department        string             `json:"department"`
	Year              int                `json:"year"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	EnrolledCourses   []EnrolledCourse   `json:"enrolled_courses"`
	AttendanceSummary []AttendanceRecord `json:"attendance_summary"`
}

// FeeStatus is the latest fee record for a student.
// Invariant: Due = Total - Paid.
type FeeStatus struct {
	StudentID string  `json:"student_id"`
	Semester  string  `json:"semester"`
	Total     float64 `json:"total"`
	Paid      float64 `json:"paid"`
	Due       float64 `json:"due"`
	DueDate   string  `json:"due_date"`
	Status    string  `json:"status"`
}

type ScheduleEntry struct {
	CourseID     string `json:"course_id"`
	CourseName   string `json:"course_name"`
	Department   string `json:"department"`
	Semester     string `json:"semester"`
	MeetingTimes string `json:"meeting_times"`
	FacultyName  string `json:"faculty_name"`
}

type Schedule struct {
	StudentID string          `json:"student_id"`
	Date      string          `json:"date"`
	Count     int             `json:"count"`
	Classes   []ScheduleEntry `json:"classes"`
}

type LoginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

type LoginResponse struct {
	Success bool     `json:"success"`
	Token   string   `json:"token,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
	Message string   `json:"message"`
}

type ChatRequest struct {
	Messages []Message `json:"messages"`
}

type ChatResponse struct {
	Reply   string   `json:"reply"`
	Sources []string `json:"sources"`
	Actions []string `json:"actions"`
	Model   string   `json:"model,omitempty"`
}

// Conversation is one stored question/answer exchange.
type Conversation struct {
	ConversationID int64    `json:"conversation_id"`
	UserQuery      string   `json:"user_query"`
	AssistantReply string   `json:"assistant_reply"`
	Sources        []string `json:"sources"`
	Actions        []string `json:"actions"`
	Model          string   `json:"model,omitempty"`
	CreatedAt      string   `json:"created_at"`
}

type ChatHistory struct {
	StudentID     string         `json:"student_id"`
	Count         int            `json:"count"`
	Conversations []Conversation `json:"conversations"`
}

type AttendanceReport struct {
	StudentID  string             `json:"student_id"`
	Count      int                `json:"count"`
	Attendance []AttendanceRecord `json:"attendance"`
}

type AppointmentRequest struct {
	FacultyID string `json:"faculty_id"`
	Date      string `json:"date"`      // YYYY-MM-DD
	TimeSlot  string `json:"time_slot"` // e.g. "10:00-10:30"
	Purpose   string `json:"purpose,omitempty"`
}

type AppointmentConfirmation struct {
	OK            bool   `json:"ok"`
	AppointmentID int64  `json:"appointment_id"`
	StudentID     string `json:"student_id"`
	FacultyID     string `json:"faculty_id"`
	Date          string `json:"date"`
	TimeSlot      string `json:"time_slot"`
	Message       string `json:"message"`
}

type LeaveRequest struct {
	FromDate string `json:"from_date"` // YYYY-MM-DD
	ToDate   string `json:"to_date"`   // YYYY-MM-DD
	Reason   string `json:"reason"`
}

type LeaveConfirmation struct {
	OK        bool   `json:"ok"`
	TicketID  string `json:"ticket_id"`
	StudentID string `json:"student_id"`
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

type FeedbackRequest struct {
	ConversationID int64  `json:"conversation_id"`
	Rating         int    `json:"rating"` // 1 thumbs up, -1 thumbs down
	Comment        string `json:"comment,omitempty"`
}

type FeedbackResponse struct {
	Success    bool   `json:"success"`
	FeedbackID int64  `json:"feedback_id"`
	Message    string `json:"message"`
}

type UploadResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
	Size     int64  `json:"size"`
	Message  string `json:"message"`
}
