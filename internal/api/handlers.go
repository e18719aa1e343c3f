package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-assistant/internal/auth"
	"campus-assistant/internal/core"
	"campus-assistant/internal/model"
	"campus-assistant/internal/store"
)

const maxUploadBytes = 5 * 1024 * 1024

var allowedUploadExts = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".doc": true, ".docx": true,
}

type APIHandler struct {
	chatService *core.ChatService
	automation  *core.AutomationService
	dbStore     *store.SQLiteStore
	uploadDir   string
}

func NewAPIHandler(cs *core.ChatService, as *core.AutomationService, db *store.SQLiteStore, uploadDir string) *APIHandler {
	return &APIHandler{chatService: cs, automation: as, dbStore: db, uploadDir: uploadDir}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeDetail mirrors the backend's error body shape: {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func bearerStudentID(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	studentID, err := auth.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return "", false
	}
	return studentID, true
}

// AuthMiddleware rejects requests without a valid bearer token.
func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		studentID, ok := bearerStudentID(r)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), studentIDKey, studentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthMiddleware attaches the student identity when present but never
// rejects; chat works anonymously, just without personalization.
func (h *APIHandler) OptionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if studentID, ok := bearerStudentID(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), studentIDKey, studentID))
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey string

const studentIDKey contextKey = "studentID"

func studentFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(studentIDKey).(string); ok {
		return id
	}
	return ""
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.StudentID == "" || req.Password == "" {
		writeDetail(w, http.StatusBadRequest, "student_id and password are required")
		return
	}

	student, err := h.dbStore.GetStudent(req.StudentID)
	if err != nil {
		log.Printf("Error getting student %s: %v", req.StudentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to process login")
		return
	}
	if student == nil || !auth.CheckPasswordHash(req.Password, student.PasswordHash) {
		writeJSON(w, http.StatusOK, model.LoginResponse{
			Success: false,
			Message: "Invalid student_id or password",
		})
		return
	}

	profile, err := h.automation.Profile(req.StudentID)
	if err != nil || profile == nil {
		log.Printf("Error fetching profile for %s: %v", req.StudentID, err)
		writeJSON(w, http.StatusOK, model.LoginResponse{
			Success: false,
			Message: "Could not fetch student profile",
		})
		return
	}

	token, err := auth.GenerateJWT(student.StudentID, student.Name, student.Department)
	if err != nil {
		log.Printf("Error generating JWT for student %s: %v", req.StudentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Success: true,
		Token:   token,
		Profile: profile,
		Message: fmt.Sprintf("Welcome, %s!", student.Name),
	})
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeDetail(w, http.StatusBadRequest, "messages cannot be empty")
		return
	}

	studentID := studentFromContext(r.Context())
	resp, err := h.chatService.Respond(r.Context(), studentID, req.Messages)
	if err != nil {
		log.Printf("Error handling chat for student %q: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to process chat")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	limit, offset := 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	history, err := h.chatService.History(studentID, limit, offset)
	if err != nil {
		log.Printf("Error getting history for %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to get chat history")
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *APIHandler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	var req model.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Rating != 1 && req.Rating != -1 {
		writeDetail(w, http.StatusBadRequest, "Rating must be 1 (thumbs up) or -1 (thumbs down)")
		return
	}

	resp, err := h.chatService.SetFeedback(studentID, req)
	if err != nil {
		log.Printf("Error saving feedback from %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to save feedback")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	profile, err := h.automation.Profile(studentID)
	if err != nil {
		log.Printf("Error getting profile for %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}
	if profile == nil {
		writeDetail(w, http.StatusNotFound, "Profile not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *APIHandler) AttendanceHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	if courseID := r.URL.Query().Get("course_id"); courseID != "" {
		rec, msg, err := h.automation.CheckAttendance(studentID, courseID)
		if err != nil {
			log.Printf("Error checking attendance for %s/%s: %v", studentID, courseID, err)
			writeDetail(w, http.StatusInternalServerError, "Failed to get attendance")
			return
		}
		if rec == nil {
			writeDetail(w, http.StatusNotFound, msg)
			return
		}
		writeJSON(w, http.StatusOK, rec)
		return
	}

	report, err := h.automation.AttendanceReport(studentID)
	if err != nil {
		log.Printf("Error getting attendance for %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to get attendance")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *APIHandler) ScheduleHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	sched, _, err := h.automation.Schedule(studentID, r.URL.Query().Get("date"))
	if err != nil {
		log.Printf("Error getting schedule for %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to get schedule")
		return
	}
	writeJSON(w, http.StatusOK, sched)
}

func (h *APIHandler) FeesHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	fee, _, err := h.automation.FeeStatus(studentID)
	if err != nil {
		log.Printf("Error getting fees for %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to get fees")
		return
	}
	if fee == nil {
		writeDetail(w, http.StatusNotFound, "No fee records found")
		return
	}
	writeJSON(w, http.StatusOK, fee)
}

func (h *APIHandler) AppointmentHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	var req model.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.FacultyID == "" || req.Date == "" || req.TimeSlot == "" {
		writeDetail(w, http.StatusBadRequest, "faculty_id, date and time_slot are required")
		return
	}

	conf, err := h.automation.BookAppointment(studentID, req)
	if err != nil {
		log.Printf("Error booking appointment for %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to book appointment")
		return
	}
	if !conf.OK {
		writeDetail(w, http.StatusBadRequest, conf.Message)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

func (h *APIHandler) ApplyLeaveHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	var req model.LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.FromDate == "" || req.ToDate == "" || req.Reason == "" {
		writeDetail(w, http.StatusBadRequest, "from_date, to_date and reason are required")
		return
	}

	conf, err := h.automation.ApplyLeave(studentID, req)
	if err != nil {
		log.Printf("Error applying leave for %s: %v", studentID, err)
		writeDetail(w, http.StatusInternalServerError, "Failed to apply for leave")
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeDetail(w, http.StatusBadRequest, "File size exceeds 5MB limit")
			return
		}
		writeDetail(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExts[ext] {
		writeDetail(w, http.StatusBadRequest, "File type not allowed. Allowed types: .pdf, .jpg, .jpeg, .png, .doc, .docx")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if len(content) > maxUploadBytes {
		writeDetail(w, http.StatusBadRequest, "File size exceeds 5MB limit")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		log.Printf("Error creating upload dir: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	// Prefix with student and a fresh ID so concurrent uploads never collide.
	safeName := fmt.Sprintf("%s_%s_%s_%s",
		studentID,
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		filepath.Base(header.Filename),
	)
	destPath := filepath.Join(h.uploadDir, safeName)
	if err := os.WriteFile(destPath, content, 0o644); err != nil {
		log.Printf("Error saving upload %s: %v", destPath, err)
		writeDetail(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	writeJSON(w, http.StatusOK, model.UploadResponse{
		Success:  true,
		Filename: safeName,
		Filepath: destPath,
		Size:     int64(len(content)),
		Message:  fmt.Sprintf("File uploaded successfully: %s", safeName),
	})
}

func (h *APIHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	studentID := studentFromContext(r.Context())

	result, err := h.chatService.Analytics(studentID)
	if err != nil {
		log.Printf("Error building analytics: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to get analytics")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
