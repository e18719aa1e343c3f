// Package chat drives the client-side conversation: it owns the send state
// machine, appends turns to the session transcript, and renders failures as
// assistant messages so the conversation never dead-ends.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"campus-assistant/internal/attendance"
	"campus-assistant/internal/client"
	"campus-assistant/internal/model"
	"campus-assistant/internal/session"
)

type State int

const (
	StateIdle State = iota
	StateSending
)

var (
	// ErrBusy is returned when Submit is called while a send is in flight.
	ErrBusy = errors.New("a message is already being sent")
	// ErrSessionExpired is returned when the backend rejects the token.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

const (
	networkFailureReply   = "Sorry, I couldn't reach the server. Please check your connection and try again."
	serverFailureReply    = "Sorry, something went wrong while processing your request. Please try again."
	emptyReplyPlaceholder = "(empty reply)"
)

// Backend is the slice of the API client the orchestrator needs.
type Backend interface {
	SendChatMessage(ctx context.Context, messages []model.Message) (*model.ChatResponse, error)
	GetAttendance(ctx context.Context) (*model.AttendanceReport, error)
}

type Orchestrator struct {
	backend Backend
	sess    *session.Session

	mu    sync.Mutex
	state State
}

func NewOrchestrator(backend Backend, sess *session.Session) *Orchestrator {
	return &Orchestrator{backend: backend, sess: sess}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) beginSend() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateSending {
		return false
	}
	o.state = StateSending
	return true
}

func (o *Orchestrator) endSend() {
	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()
}

// Submit sends one user message. Whitespace-only input is a silent no-op;
// a submit while busy returns ErrBusy without touching the transcript.
// The returned message is the assistant turn already appended to the
// transcript, except on session expiry where the session has been reset.
func (o *Orchestrator) Submit(ctx context.Context, text string) (*model.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if !o.beginSend() {
		return nil, ErrBusy
	}
	defer o.endSend()

	o.sess.Append(model.Message{Role: model.RoleUser, Content: trimmed})

	resp, err := o.backend.SendChatMessage(ctx, o.sess.Transcript())
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if logoutErr := o.sess.Logout(); logoutErr != nil {
				return nil, fmt.Errorf("failed to clear session: %w", logoutErr)
			}
			return nil, ErrSessionExpired
		}
		reply := serverFailureReply
		var reqErr *client.RequestError
		if errors.As(err, &reqErr) {
			reply = networkFailureReply
		}
		msg := model.Message{Role: model.RoleAssistant, Content: reply}
		o.sess.Append(msg)
		return &msg, nil
	}

	content := resp.Reply
	if strings.TrimSpace(content) == "" {
		content = emptyReplyPlaceholder
	}
	sources := resp.Sources
	if sources == nil {
		sources = []string{}
	}
	actions := resp.Actions
	if actions == nil {
		actions = []string{}
	}
	msg := model.Message{Role: model.RoleAssistant, Content: content, Sources: sources, Actions: actions}
	o.sess.Append(msg)
	return &msg, nil
}

// ShowAttendance fetches the report directly, bypassing the LLM, and appends
// a formatted summary as an assistant turn.
func (o *Orchestrator) ShowAttendance(ctx context.Context) (*model.Message, error) {
	if !o.beginSend() {
		return nil, ErrBusy
	}
	defer o.endSend()

	report, err := o.backend.GetAttendance(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			if logoutErr := o.sess.Logout(); logoutErr != nil {
				return nil, fmt.Errorf("failed to clear session: %w", logoutErr)
			}
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	summary := attendance.Aggregate(report.Attendance, attendance.DefaultAlertThreshold)
	msg := model.Message{
		Role:           model.RoleAssistant,
		Content:        FormatAttendanceSummary(summary),
		Sources:        []string{},
		Actions:        []string{},
		AttendanceData: report.Attendance,
	}
	o.sess.Append(msg)
	return &msg, nil
}
