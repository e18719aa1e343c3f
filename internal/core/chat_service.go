package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"campus-assistant/internal/model"
	"campus-assistant/internal/store"
)

const (
	// NumRelevantDocs caps how many knowledge snippets feed the prompt.
	NumRelevantDocs = 4
	// HistoryLimit caps how many prior transcript turns feed the prompt.
	HistoryLimit = 5
)

// Completer is the chat-completion surface ChatService needs from the LLM.
type Completer interface {
	GetChatCompletion(ctx context.Context, promptHistory []*genai.Content) (string, error)
	ModelName() string
}

type ChatService struct {
	dbStore    *store.SQLiteStore
	llmService Completer
	automation *AutomationService
}

func NewChatService(db *store.SQLiteStore, llm Completer, automation *AutomationService) *ChatService {
	return &ChatService{
		dbStore:    db,
		llmService: llm,
		automation: automation,
	}
}

// Respond answers the latest user turn in msgs. When studentID is non-empty
// the reply is personalized, automation intents run on the student's behalf,
// and the exchange is persisted to their history. Provider failures degrade
// to a canned reply instead of erroring the request.
func (s *ChatService) Respond(ctx context.Context, studentID string, msgs []model.Message) (*model.ChatResponse, error) {
	if len(msgs) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}
	userQuery := msgs[len(msgs)-1].Content

	var studentContext string
	var actions []string
	if studentID != "" {
		profile, err := s.automation.Profile(studentID)
		if err != nil {
			log.Printf("Error loading profile for %s: %v. Proceeding unpersonalized.", studentID, err)
		} else if profile != nil {
			studentContext = fmt.Sprintf("Logged in as: %s (%s), %s, Year %d. Enrolled in %d courses.",
				profile.Name, studentID, profile.Department, profile.Year, len(profile.EnrolledCourses))
		}

		actions = s.runIntents(studentID, userQuery)
	}

	relevantContext, sources := s.retrieveContext(userQuery)

	history := buildPromptHistory(msgs, studentContext, relevantContext, actions, userQuery)

	reply, err := s.llmService.GetChatCompletion(ctx, history)
	if err != nil {
		log.Printf("Error generating model response for student %q: %v", studentID, err)
		chatRequestsTotal.WithLabelValues("llm_error").Inc()
		reply = "I'm sorry, I encountered an error while processing your request."
	} else {
		chatRequestsTotal.WithLabelValues("ok").Inc()
	}

	resp := &model.ChatResponse{
		Reply:   reply,
		Sources: sources,
		Actions: actions,
		Model:   s.llmService.ModelName(),
	}

	if studentID != "" {
		conv := store.ConversationRow{
			StudentID:      studentID,
			UserQuery:      userQuery,
			AssistantReply: reply,
			SourcesJSON:    store.MarshalStringList(sources),
			ActionsJSON:    store.MarshalStringList(actions),
			Model:          resp.Model,
		}
		if err := s.dbStore.SaveConversation(&conv); err != nil {
			// Losing a history row should not fail the chat itself.
			log.Printf("Warning: failed to save conversation for %s: %v", studentID, err)
		}
	}

	return resp, nil
}

// runIntents routes personal queries to automation functions and formats each
// executed operation as "name: result" for the actions list.
func (s *ChatService) runIntents(studentID, query string) []string {
	q := strings.ToLower(query)
	var actions []string

	appendAction := func(name, result string, err error) {
		if err != nil {
			log.Printf("Automation %s failed for %s: %v", name, studentID, err)
			return
		}
		actions = append(actions, fmt.Sprintf("%s: %s", name, result))
	}

	switch {
	case strings.Contains(q, "attendance"):
		report, err := s.automation.AttendanceReport(studentID)
		if err != nil {
			appendAction("check_attendance", "", err)
			break
		}
		var parts []string
		for _, rec := range report.Attendance {
			parts = append(parts, fmt.Sprintf("%s %.0f%% (%d/%d)", rec.CourseID, rec.Percentage, rec.Attended, rec.TotalClasses))
		}
		if len(parts) == 0 {
			parts = append(parts, "no records")
		}
		appendAction("check_attendance", strings.Join(parts, ", "), nil)

	case strings.Contains(q, "fee") || strings.Contains(q, "fees"):
		_, msg, err := s.automation.FeeStatus(studentID)
		appendAction("check_fee_status", msg, err)

	case strings.Contains(q, "schedule") || strings.Contains(q, "timetable") || strings.Contains(q, "classes today"):
		_, msg, err := s.automation.Schedule(studentID, "")
		appendAction("get_today_schedule", msg, err)

	case strings.Contains(q, "exam"):
		_, msg, err := s.automation.ExamSchedule(studentID, "")
		appendAction("get_exam_schedule", msg, err)

	case strings.Contains(q, "grade"), strings.Contains(q, "result"):
		msg, err := s.automation.GradeReport(studentID)
		appendAction("get_grades", msg, err)

	case strings.Contains(q, "bonafide"):
		msg, err := s.automation.RequestDocument(studentID, "Bonafide")
		appendAction("request_document", msg, err)

	case strings.Contains(q, "transcript"):
		msg, err := s.automation.RequestDocument(studentID, "Transcript")
		appendAction("request_document", msg, err)
	}

	return actions
}

// retrieveContext runs a keyword search over ingested documents and returns a
// context block plus the deduplicated source names, best matches first.
func (s *ChatService) retrieveContext(query string) (string, []string) {
	terms := searchTerms(query)
	if len(terms) == 0 {
		return "", []string{}
	}

	docs, err := s.dbStore.SearchDocuments(terms, 50)
	if err != nil {
		// Proceed without context; the model can still answer from history.
		log.Printf("Failed to search documents, proceeding without context: %v", err)
		return "", []string{}
	}
	if len(docs) == 0 {
		return "", []string{}
	}

	type scoredDoc struct {
		doc   store.Document
		score int
	}
	scored := make([]scoredDoc, 0, len(docs))
	for _, doc := range docs {
		content := strings.ToLower(doc.Content)
		score := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				score++
			}
		}
		scored = append(scored, scoredDoc{doc: doc, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var contextBuilder strings.Builder
	var sources []string
	seen := make(map[string]bool)
	for i := 0; i < len(scored) && i < NumRelevantDocs; i++ {
		doc := scored[i].doc
		contextBuilder.WriteString(fmt.Sprintf("[Source: %s]\n%s\n\n", doc.Source, doc.Content))
		if !seen[doc.Source] {
			seen[doc.Source] = true
			sources = append(sources, doc.Source)
		}
	}
	if sources == nil {
		sources = []string{}
	}

	return strings.TrimSpace(contextBuilder.String()), sources
}

// searchTerms lowercases the query and drops words too short to discriminate.
func searchTerms(query string) []string {
	var terms []string
	for _, field := range strings.Fields(strings.ToLower(query)) {
		field = strings.Trim(field, ".,!?\"'()[]")
		if len(field) > 3 {
			terms = append(terms, field)
		}
	}
	return terms
}

func buildPromptHistory(msgs []model.Message, studentContext, relevantContext string, actions []string, userQuery string) []*genai.Content {
	var history []*genai.Content

	prior := msgs[:len(msgs)-1]
	if len(prior) > HistoryLimit {
		prior = prior[len(prior)-HistoryLimit:]
	}
	for _, msg := range prior {
		role := "user"
		if msg.Role == model.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	var final strings.Builder
	if studentContext != "" {
		final.WriteString("Student context: " + studentContext + "\n\n")
	}
	if relevantContext != "" {
		final.WriteString("Context:\n" + relevantContext + "\n\n")
	} else {
		final.WriteString("Context: (no documents found)\n\n")
	}
	if len(actions) > 0 {
		final.WriteString("Operations already performed for the student:\n" + strings.Join(actions, "\n") + "\n\n")
	}
	final.WriteString("Now, please answer my question: " + userQuery)

	history = append(history, &genai.Content{
		Role:  "user",
		Parts: []genai.Part{genai.Text(final.String())},
	})
	return history
}

// History returns a student's stored exchanges, newest first.
func (s *ChatService) History(studentID string, limit, offset int) (*model.ChatHistory, error) {
	rows, err := s.dbStore.GetConversationHistory(studentID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation history: %w", err)
	}

	conversations := make([]model.Conversation, 0, len(rows))
	for _, row := range rows {
		conversations = append(conversations, model.Conversation{
			ConversationID: row.ConversationID,
			UserQuery:      row.UserQuery,
			AssistantReply: row.AssistantReply,
			Sources:        store.UnmarshalStringList(row.SourcesJSON),
			Actions:        store.UnmarshalStringList(row.ActionsJSON),
			Model:          row.Model,
			CreatedAt:      row.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return &model.ChatHistory{StudentID: studentID, Count: len(conversations), Conversations: conversations}, nil
}

// SetFeedback stores a thumbs up/down for one conversation.
func (s *ChatService) SetFeedback(studentID string, req model.FeedbackRequest) (*model.FeedbackResponse, error) {
	if req.Rating != 1 && req.Rating != -1 {
		return nil, fmt.Errorf("rating must be 1 (thumbs up) or -1 (thumbs down)")
	}

	row := store.FeedbackRow{
		ConversationID: req.ConversationID,
		StudentID:      studentID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}
	if err := s.dbStore.SaveFeedback(&row); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	sentiment := "positive"
	if req.Rating == -1 {
		sentiment = "negative"
	}
	return &model.FeedbackResponse{
		Success:    true,
		FeedbackID: row.FeedbackID,
		Message:    fmt.Sprintf("Thank you for your %s feedback!", sentiment),
	}, nil
}

// Analytics bundles the usage aggregates; student stats added when authed.
func (s *ChatService) Analytics(studentID string) (map[string]interface{}, error) {
	mostAsked, err := s.dbStore.MostAskedQuestions(10, 30)
	if err != nil {
		return nil, fmt.Errorf("failed to get question stats: %w", err)
	}
	globalStats, err := s.dbStore.GetConversationStats("")
	if err != nil {
		return nil, fmt.Errorf("failed to get global stats: %w", err)
	}

	result := map[string]interface{}{
		"most_asked_questions": mostAsked,
		"global_stats":         globalStats,
	}
	if studentID != "" {
		studentStats, err := s.dbStore.GetConversationStats(studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to get student stats: %w", err)
		}
		result["student_stats"] = studentStats
	}
	return result, nil
}
