package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/padhai-app/padhai-backend/internal/config"
	"github.com/padhai-app/padhai-backend/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

const aiRequestTimeout = 45 * time.Second

// AIService wraps the generative AI provider behind the platform's tutoring
// prompts. Every method is a thin prompt template over a chat completion;
// failures are returned to the caller and never touch account state.
type AIService struct {
	client *openai.Client
	model  string
	mock   bool
}

// NewAIService creates a new AIService
func NewAIService(cfg *config.Config) *AIService {
	clientConfig := openai.DefaultConfig(cfg.AI.APIKey)
	if cfg.AI.BaseURL != "" {
		clientConfig.BaseURL = cfg.AI.BaseURL
	}
	return &AIService{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.AI.Model,
		mock:   cfg.AI.MockAI,
	}
}

// SolveDoubt produces a step-by-step answer for a student's doubt.
func (s *AIService) SolveDoubt(ctx context.Context, doubt *models.Doubt) (string, error) {
	prompt := fmt.Sprintf(
		"You are a tutor for class %d (%s). A student asked the following %s doubt on %s, chapter %q.\n\nTitle: %s\n\n%s\n\nExplain the answer step by step in simple language suited to the student's class.",
		doubt.Class, doubt.Subject, doubt.Type, doubt.Subject, doubt.Chapter, doubt.Title, doubt.Description,
	)
	return s.complete(ctx, prompt)
}

// Simplify rewrites a passage at the student's class level.
func (s *AIService) Simplify(ctx context.Context, text string, class int) (string, error) {
	prompt := fmt.Sprintf(
		"Rewrite the following study material so a class %d student can understand it. Keep all facts, use short sentences.\n\n%s",
		class, text,
	)
	return s.complete(ctx, prompt)
}

// ExplainConcept explains a named concept for the student's class and subject.
func (s *AIService) ExplainConcept(ctx context.Context, concept, subject string, class int) (string, error) {
	prompt := fmt.Sprintf(
		"Explain the concept %q from %s to a class %d student. Include one worked example and one everyday analogy.",
		concept, subject, class,
	)
	return s.complete(ctx, prompt)
}

// GenerateQuestions produces practice questions for a chapter.
func (s *AIService) GenerateQuestions(ctx context.Context, subject, chapter string, class, count int, difficulty string) (string, error) {
	if count < 1 || count > 20 {
		count = 5
	}
	prompt := fmt.Sprintf(
		"Generate %d %s practice questions with answers for class %d %s, chapter %q. Number each question and put the answer directly below it.",
		count, strings.ToLower(difficulty), class, subject, chapter,
	)
	return s.complete(ctx, prompt)
}

// StudyPlan produces a day-by-day study plan.
func (s *AIService) StudyPlan(ctx context.Context, subjects []string, class, days int) (string, error) {
	if days < 1 || days > 90 {
		days = 7
	}
	prompt := fmt.Sprintf(
		"Prepare a %d-day study plan for a class %d student covering: %s. Split each day into sessions with a clear goal per session.",
		days, class, strings.Join(subjects, ", "),
	)
	return s.complete(ctx, prompt)
}

// Chat answers a free-form tutoring message.
func (s *AIService) Chat(ctx context.Context, message string, class int) (string, error) {
	prompt := fmt.Sprintf(
		"You are a friendly study assistant for a class %d student. Answer the question below concisely and accurately.\n\n%s",
		class, message,
	)
	return s.complete(ctx, prompt)
}

func (s *AIService) complete(ctx context.Context, prompt string) (string, error) {
	if s.mock {
		return "This is a mock AI response. Configure AI.APIKey to enable real answers.", nil
	}

	ctx, cancel := context.WithTimeout(ctx, aiRequestTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("ai returned an empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}
