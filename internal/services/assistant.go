package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/logger"
	"github.com/rayen43500/Study-Planner-Smart-Learning-Analyzer/internal/models"
)

const (
	DefaultGeminiModel = "gemini-2.5-flash"

	maxHistoryTurns = 10
	rateWaitTimeout = 10 * time.Second

	sourceModel   = "model"
	sourceOffline = "offline"
	sourceCommand = "command"

	helpReply        = "Commandes: `ajouter <titre>` ; `avancement` ; `liste` ; `aide`"
	missingTitle     = "Donne un titre : `ajouter Préparer examen`"
	emptyTaskList    = "Aucune tâche pour le moment. Ajoute-en avec `ajouter <titre>`."
	emptyModelReply  = "Réponse vide du modèle."
	modelUnavailable = "Erreur de connexion au modèle. Réessaie dans un instant."
	assistantPreface = "Tu es un assistant d'étude bienveillant. Réponds en français, de façon concise et concrète."
)

// ChatModel is the part of *genai.GenerativeModel the assistant needs.
type ChatModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// NewGeminiModel opens a Gemini client configured for short study answers.
// The caller closes the client.
func NewGeminiModel(ctx context.Context, apiKey, modelName string) (*genai.Client, *genai.GenerativeModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.35)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(512)
	return client, model, nil
}

// AssistantService answers chat messages. Task commands are handled locally;
// anything else goes to the model, or gets an offline reply when no model is
// configured.
type AssistantService struct {
	model    ChatModel
	tasks    *TaskService
	rateChan chan struct{}
}

// NewAssistantService allows up to concurrentReqs model calls in flight.
// model may be nil.
func NewAssistantService(model ChatModel, tasks *TaskService, concurrentReqs int) *AssistantService {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}
	return &AssistantService{model: model, tasks: tasks, rateChan: rateChan}
}

func (s *AssistantService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(rateWaitTimeout):
		return &RateLimitError{Message: "The assistant is busy, please retry shortly"}
	}
}

func (s *AssistantService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *AssistantService) Chat(ctx context.Context, userID uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	reply, handled, err := s.runCommand(ctx, userID, message)
	if err != nil {
		return nil, err
	}
	if handled {
		return &models.ChatResponse{Reply: reply, Source: sourceCommand}, nil
	}

	if s.model == nil {
		return &models.ChatResponse{Reply: offlineReply(message), Source: sourceOffline}, nil
	}

	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	resp, err := s.model.GenerateContent(ctx, genai.Text(buildAssistantPrompt(message, req.History)))
	if err != nil {
		logger.Ctx(ctx).Error("assistant model call failed", "error", err)
		return &models.ChatResponse{Reply: modelUnavailable, Source: sourceModel}, nil
	}

	reply = strings.TrimSpace(extractText(resp))
	if reply == "" {
		reply = emptyModelReply
	}
	return &models.ChatResponse{Reply: reply, Source: sourceModel}, nil
}

// runCommand handles the built-in task commands. ok is false when message is
// not a command.
func (s *AssistantService) runCommand(ctx context.Context, userID uuid.UUID, message string) (reply string, ok bool, err error) {
	lower := strings.ToLower(message)

	switch {
	case lower == "aide" || lower == "help":
		return helpReply, true, nil

	case strings.HasPrefix(lower, "ajouter ") || strings.HasPrefix(lower, "add ") ||
		lower == "ajouter" || lower == "add":
		title := ""
		if i := strings.IndexByte(message, ' '); i >= 0 {
			title = strings.TrimSpace(message[i+1:])
		}
		if title == "" {
			return missingTitle, true, nil
		}
		if _, err := s.tasks.Add(ctx, userID, models.CreateTaskRequest{Title: title}); err != nil {
			return "", true, err
		}
		return fmt.Sprintf("Tâche ajoutée : %q", title), true, nil

	case containsAny(lower, "avancement", "progress", "progrès"):
		p, err := s.tasks.Progress(ctx, userID)
		if err != nil {
			return "", true, err
		}
		return fmt.Sprintf("Ton avancement est de %d%% (%d/%d)", p.Percent, p.Completed, p.Total), true, nil

	case containsAny(lower, "liste", "tâche", "tache"):
		tasks, err := s.tasks.List(ctx, userID)
		if err != nil {
			return "", true, err
		}
		if len(tasks) == 0 {
			return emptyTaskList, true, nil
		}
		var b strings.Builder
		b.WriteString("Voici tes tâches:")
		for _, t := range tasks {
			mark := "⬜"
			if t.Completed {
				mark = "✅"
			}
			b.WriteString("\n" + mark + " " + t.Title)
		}
		return b.String(), true, nil
	}
	return "", false, nil
}

func offlineReply(message string) string {
	return fmt.Sprintf("Je suis en mode hors-ligne. Tu as dit: %q", message)
}

func buildAssistantPrompt(message string, history []models.ChatMessage) string {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var b strings.Builder
	b.WriteString(assistantPreface)
	b.WriteString("\n\n")
	for _, turn := range history {
		role := "Étudiant"
		if turn.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, strings.TrimSpace(turn.Content))
	}
	fmt.Fprintf(&b, "Étudiant: %s\nAssistant:", message)
	return b.String()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
