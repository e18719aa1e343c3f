// Command assistant is the terminal client: log in once, then chat with the
// campus assistant. Slash commands hit the structured endpoints directly.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"campus-assistant/internal/chat"
	"campus-assistant/internal/client"
	"campus-assistant/internal/fees"
	"campus-assistant/internal/model"
	"campus-assistant/internal/session"
)

const (
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Backend server URL")
	flag.Parse()

	log.SetFlags(0)

	sessionPath, err := session.DefaultPath()
	if err != nil {
		log.Fatalf("Failed to resolve session path: %v", err)
	}
	sess := session.Load(sessionPath)
	apiClient := client.New(*serverURL, sess)
	orchestrator := chat.NewOrchestrator(apiClient, sess)

	fmt.Println("Campus Assistant. Type /help for commands, /quit to exit.")
	if profile := sess.Profile(); profile != nil {
		fmt.Printf("Logged in as %s (%s).\n", profile.Name, profile.StudentID)
	}

	// One shared reader so prompts inside commands don't lose buffered input.
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		raw, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(line, reader, apiClient, orchestrator, sess); quit {
				return
			}
			continue
		}

		if !sess.LoggedIn() {
			fmt.Println("Please log in first with /login.")
			continue
		}

		msg, err := orchestrator.Submit(context.Background(), line)
		if err != nil {
			if errors.Is(err, chat.ErrSessionExpired) {
				fmt.Println("Your session has expired. Please log in again with /login.")
				continue
			}
			fmt.Printf("Error: %v\n", err)
			continue
		}
		if msg != nil {
			printAssistantMessage(msg)
		}
	}
}

func runCommand(line string, reader *bufio.Reader, apiClient *client.Client, orchestrator *chat.Orchestrator, sess *session.Session) bool {
	cmd := strings.Fields(line)[0]
	switch cmd {
	case "/help":
		fmt.Println("Commands: /login /logout /attendance /fees /schedule /history /quit")
	case "/quit", "/exit":
		return true
	case "/login":
		doLogin(reader, apiClient, sess)
	case "/logout":
		if err := sess.Logout(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return false
		}
		fmt.Println("Logged out.")
	case "/attendance":
		if !requireLogin(sess) {
			return false
		}
		msg, err := orchestrator.ShowAttendance(context.Background())
		if err != nil {
			reportError(err, sess)
			return false
		}
		printAssistantMessage(msg)
	case "/fees":
		if !requireLogin(sess) {
			return false
		}
		fee, err := apiClient.GetFees(context.Background())
		if err != nil {
			reportError(err, sess)
			return false
		}
		fmt.Printf("Semester %s: %s (due date %s)\n", fee.Semester, fees.Classify(*fee), fee.DueDate)
	case "/schedule":
		if !requireLogin(sess) {
			return false
		}
		sched, err := apiClient.GetSchedule(context.Background(), "")
		if err != nil {
			reportError(err, sess)
			return false
		}
		if len(sched.Classes) == 0 {
			fmt.Println("No classes today.")
			return false
		}
		for _, entry := range sched.Classes {
			fmt.Printf("%s  %s (%s)\n", entry.MeetingTimes, entry.CourseName, entry.FacultyName)
		}
	case "/history":
		if !requireLogin(sess) {
			return false
		}
		history, err := apiClient.GetChatHistory(context.Background(), 10)
		if err != nil {
			reportError(err, sess)
			return false
		}
		for _, conv := range history.Conversations {
			fmt.Printf("[%s] You: %s\n", conv.CreatedAt, conv.UserQuery)
			fmt.Printf("         Assistant: %s\n", conv.AssistantReply)
		}
	default:
		fmt.Printf("Unknown command %s. Type /help for commands.\n", cmd)
	}
	return false
}

func doLogin(reader *bufio.Reader, apiClient *client.Client, sess *session.Session) {
	fmt.Print("Student ID: ")
	studentID, err := reader.ReadString('\n')
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	resp, err := apiClient.Login(context.Background(), strings.TrimSpace(studentID), strings.TrimSpace(password))
	if err != nil {
		reportError(err, sess)
		return
	}
	if !resp.Success {
		fmt.Println(resp.Message)
		return
	}
	if err := sess.SetLogin(resp.Token, resp.Profile); err != nil {
		fmt.Printf("Login succeeded but session could not be saved: %v\n", err)
		return
	}
	fmt.Println(resp.Message)
}

func requireLogin(sess *session.Session) bool {
	if !sess.LoggedIn() {
		fmt.Println("Please log in first with /login.")
		return false
	}
	return true
}

func reportError(err error, sess *session.Session) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, chat.ErrSessionExpired), errors.Is(err, client.ErrUnauthorized):
		// A rejected token is dead; drop it so the next command prompts
		// for login instead of retrying with stale credentials.
		if logoutErr := sess.Logout(); logoutErr != nil {
			fmt.Printf("Error clearing session: %v\n", logoutErr)
		}
		fmt.Println("Your session has expired. Please log in again with /login.")
	case errors.As(err, &apiErr):
		fmt.Printf("Server error: %s\n", apiErr.Detail)
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

func printAssistantMessage(msg *model.Message) {
	fmt.Println(renderBold(msg.Content))
	if table := formatAttendanceTable(msg.AttendanceData); table != "" {
		fmt.Print(table)
	}
	if len(msg.Actions) > 0 {
		for _, action := range msg.Actions {
			fmt.Printf("  [action] %s\n", action)
		}
	}
	if len(msg.Sources) > 0 {
		fmt.Printf("  (sources: %s)\n", strings.Join(msg.Sources, ", "))
	}
}

// formatAttendanceTable renders per-course rows; empty when there are none.
func formatAttendanceTable(records []model.AttendanceRecord) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n  Course                        Attendance\n")
	for _, rec := range records {
		marker := ""
		if rec.Alert {
			marker = "  [low]"
		}
		fmt.Fprintf(&b, "  %-28s %5.1f%%  (%d/%d)%s\n",
			rec.CourseName, rec.Percentage, rec.Attended, rec.TotalClasses, marker)
	}
	return b.String()
}

func renderBold(s string) string {
	var b strings.Builder
	for _, span := range chat.ParseSpans(s) {
		if span.Kind == chat.SpanBold {
			b.WriteString(ansiBold + span.Text + ansiReset)
			continue
		}
		b.WriteString(span.Text)
	}
	return b.String()
}
