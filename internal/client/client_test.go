package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-assistant/internal/model"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req model.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if req.StudentID == "STU00001" && req.Password == "password123" {
			json.NewEncoder(w).Encode(model.LoginResponse{
				Success: true,
				Token:   "abc",
				Profile: &model.Profile{StudentID: "STU00001", Name: "Aditi Sharma"},
				Message: "Welcome, Aditi Sharma!",
			})
			return
		}
		json.NewEncoder(w).Encode(model.LoginResponse{
			Success: false,
			Message: "Invalid student_id or password",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))

	resp, err := c.Login(context.Background(), "STU00001", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !resp.Success || resp.Token != "abc" {
		t.Errorf("unexpected login response: %+v", resp)
	}

	resp, err = c.Login(context.Background(), "STU00001", "wrong")
	if err != nil {
		t.Fatalf("Login with bad password should not error: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false for bad password")
	}
	if resp.Message != "Invalid student_id or password" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Authentication required"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("expired"))
	_, err := c.GetProfile(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected errors.Is(err, ErrUnauthorized), got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Detail != "Authentication required" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestAPIErrorSurfacesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "No fee records found"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("abc"))
	_, err := c.GetFees(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Detail != "No fee records found" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("404 must not match ErrUnauthorized")
	}
}

func TestTransportFailureIsRequestError(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, staticToken("abc"))
	_, err := c.GetAttendance(context.Background())
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("transport failure must not match ErrUnauthorized")
	}
}

func TestSendChatMessageAttachesBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q", got)
		}
		var req model.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.ChatResponse{Reply: "Hi there", Sources: []string{}, Actions: []string{}})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("abc"))
	resp, err := c.SendChatMessage(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hello"}})
	if err != nil {
		t.Fatalf("SendChatMessage: %v", err)
	}
	if resp.Reply != "Hi there" {
		t.Errorf("reply = %q", resp.Reply)
	}
}
