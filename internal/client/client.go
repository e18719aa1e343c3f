// Package client wraps the campus-assistant REST API. Every call except Login
// carries the session's bearer token; failures map to *RequestError (transport),
// *APIError (non-2xx, with the backend detail) or ErrUnauthorized (401).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"campus-assistant/internal/model"
)

// TokenSource supplies the current bearer token; empty means logged out.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // LLM-backed calls can be slow
		},
		tokens: tokens,
	}
}

// do issues one JSON request. out may be nil when the body does not matter.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}, authed bool) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
	}
	return apiErr
}

// Login authenticates and returns the backend's verdict. The caller stores
// the token; a wrong password is reported in the response, not as an error.
func (c *Client) Login(ctx context.Context, studentID, password string) (*model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", model.LoginRequest{StudentID: studentID, Password: password}, &resp, false)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetProfile(ctx context.Context) (*model.Profile, error) {
	var profile model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/student/profile", nil, &profile, true); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) GetAttendance(ctx context.Context) (*model.AttendanceReport, error) {
	var report model.AttendanceReport
	if err := c.do(ctx, http.MethodGet, "/api/student/attendance", nil, &report, true); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) GetSchedule(ctx context.Context, date string) (*model.Schedule, error) {
	path := "/api/student/schedule"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var sched model.Schedule
	if err := c.do(ctx, http.MethodGet, path, nil, &sched, true); err != nil {
		return nil, err
	}
	return &sched, nil
}

func (c *Client) GetFees(ctx context.Context) (*model.FeeStatus, error) {
	var fee model.FeeStatus
	if err := c.do(ctx, http.MethodGet, "/api/student/fees", nil, &fee, true); err != nil {
		return nil, err
	}
	return &fee, nil
}

func (c *Client) BookAppointment(ctx context.Context, req model.AppointmentRequest) (*model.AppointmentConfirmation, error) {
	var conf model.AppointmentConfirmation
	if err := c.do(ctx, http.MethodPost, "/api/student/appointment", req, &conf, true); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Client) ApplyLeave(ctx context.Context, req model.LeaveRequest) (*model.LeaveConfirmation, error) {
	var conf model.LeaveConfirmation
	if err := c.do(ctx, http.MethodPost, "/api/student/apply-leave", req, &conf, true); err != nil {
		return nil, err
	}
	return &conf, nil
}

// SendChatMessage posts the full transcript and returns the assistant turn.
func (c *Client) SendChatMessage(ctx context.Context, messages []model.Message) (*model.ChatResponse, error) {
	var resp model.ChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", model.ChatRequest{Messages: messages}, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetChatHistory(ctx context.Context, limit int) (*model.ChatHistory, error) {
	path := "/api/chat/history"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var history model.ChatHistory
	if err := c.do(ctx, http.MethodGet, path, nil, &history, true); err != nil {
		return nil, err
	}
	return &history, nil
}

func (c *Client) SubmitFeedback(ctx context.Context, req model.FeedbackRequest) (*model.FeedbackResponse, error) {
	var resp model.FeedbackResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/feedback", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadFile sends a local file as multipart form data.
func (c *Client) UploadFile(ctx context.Context, filePath string) (*model.UploadResponse, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: "POST /api/upload", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}

	var uploadResp model.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &uploadResp, nil
}
