package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lamdang/quizforge/config"
	"github.com/lamdang/quizforge/internal/apperr"
	"github.com/lamdang/quizforge/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// QuestionDraft is one question as produced by the generation oracle,
// before it is assigned an order number and persisted.
type QuestionDraft struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// OracleService is the LLM collaborator: it produces questions, hints and
// improvement suggestions the core cannot compute itself. Calls are slow
// network operations and must run outside any held transaction.
type OracleService interface {
	GenerateQuestions(ctx context.Context, subject, gradeLevel string, count int, difficulty string) ([]QuestionDraft, error)
	GenerateSuggestions(ctx context.Context, subject, gradeLevel string, incorrect []model.Question, score float64) ([]string, error)
	GenerateHint(ctx context.Context, questionText string, options []string) (string, error)
}

type geminiOracleService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiOracleService(cfg *config.Config) (OracleService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. OracleService will be non-functional.")
		return &geminiOracleService{cfg: cfg, client: nil}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiOracleService{client: model, cfg: cfg}, nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// extractJSON strips a markdown code fence when the model wraps its
// output in one.
func extractJSON(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return strings.TrimSpace(raw)
}

func (s *geminiOracleService) generate(ctx context.Context, prompt string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}
	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return sb.String(), nil
}

// GenerateQuestions asks for exactly count multiple-choice drafts and
// validates the shape of what comes back. Anything malformed, short, or
// long is a generation failure surfaced to the caller, never retried here.
func (s *geminiOracleService) GenerateQuestions(ctx context.Context, subject, gradeLevel string, count int, difficulty string) ([]QuestionDraft, error) {
	prompt := fmt.Sprintf(`Generate %d multiple-choice quiz questions for %s at %s grade level with %s difficulty.

Format each question as JSON with this exact structure:
{
  "question": "question text",
  "options": ["option A", "option B", "option C", "option D"],
  "correctAnswer": "the correct option text",
  "explanation": "brief explanation of the answer"
}

Return ONLY a JSON array of questions, no additional text.`, count, subject, gradeLevel, difficulty)

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Question generation oracle call failed")
		return nil, apperr.Wrap(apperr.Generation, "failed to generate quiz questions", err)
	}

	var drafts []QuestionDraft
	if err := json.Unmarshal([]byte(extractJSON(raw)), &drafts); err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("Oracle response is not a JSON question array")
		return nil, apperr.Wrap(apperr.Generation, "oracle response is not a valid question array", err)
	}
	if err := ValidateDrafts(drafts, count); err != nil {
		return nil, err
	}
	return drafts, nil
}

// ValidateDrafts checks the generation oracle contract: exactly count
// drafts, each with four options and non-empty question, correct answer
// and explanation, with the correct answer among the options.
func ValidateDrafts(drafts []QuestionDraft, count int) error {
	if len(drafts) != count {
		return apperr.Newf(apperr.Generation, "oracle returned %d questions, expected %d", len(drafts), count)
	}
	for i, d := range drafts {
		if strings.TrimSpace(d.Question) == "" {
			return apperr.Newf(apperr.Generation, "question %d is empty", i+1)
		}
		if len(d.Options) != 4 {
			return apperr.Newf(apperr.Generation, "question %d has %d options, expected 4", i+1, len(d.Options))
		}
		if strings.TrimSpace(d.CorrectAnswer) == "" {
			return apperr.Newf(apperr.Generation, "question %d has no correct answer", i+1)
		}
		found := false
		for _, opt := range d.Options {
			if opt == d.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return apperr.Newf(apperr.Generation, "question %d correct answer is not among its options", i+1)
		}
	}
	return nil
}

// GenerateSuggestions produces exactly two short improvement suggestions
// from the incorrectly answered questions. A perfect score needs no
// oracle call. Errors are returned so the caller can fall back to its
// static pair; scoring is never blocked on this.
func (s *geminiOracleService) GenerateSuggestions(ctx context.Context, subject, gradeLevel string, incorrect []model.Question, score float64) ([]string, error) {
	if len(incorrect) == 0 {
		return []string{
			"Excellent work! You've mastered this topic.",
			"Try advancing to a higher difficulty level to challenge yourself further.",
		}, nil
	}

	var topics strings.Builder
	for _, q := range incorrect {
		topics.WriteString("- ")
		topics.WriteString(q.QuestionText)
		topics.WriteString("\n")
	}

	prompt := fmt.Sprintf(`A student scored %.0f%% on a %s quiz at %s grade level.

They struggled with these questions:
%s
Provide exactly 2 specific, actionable improvement suggestions (each 1-2 sentences) to help them improve.`,
		score, subject, gradeLevel, topics.String())

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, apperr.Wrap(apperr.Transient, "suggestion oracle unavailable", err)
	}

	suggestions := ParseSuggestions(raw)
	if len(suggestions) < 2 {
		return nil, apperr.New(apperr.Transient, "suggestion oracle returned fewer than two usable lines")
	}
	return suggestions, nil
}

var leadingEnumeration = regexp.MustCompile(`^\d+\.\s*`)

// ParseSuggestions splits an oracle reply into at most two usable
// suggestion lines, dropping list numbering and noise lines.
func ParseSuggestions(raw string) []string {
	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 10 {
			continue
		}
		suggestions = append(suggestions, leadingEnumeration.ReplaceAllString(line, ""))
		if len(suggestions) == 2 {
			break
		}
	}
	return suggestions
}

// GenerateHint produces a short hint that guides without revealing the
// answer. Callers substitute a static line when this fails.
func (s *geminiOracleService) GenerateHint(ctx context.Context, questionText string, options []string) (string, error) {
	prompt := fmt.Sprintf(`For this quiz question, provide a helpful hint without revealing the answer:

Question: %s
Options: %s

Provide a brief, educational hint (1-2 sentences) that guides the student's thinking without giving away the answer.`,
		questionText, strings.Join(options, ", "))

	raw, err := s.generate(ctx, prompt)
	if err != nil {
		return "", apperr.Wrap(apperr.Transient, "hint oracle unavailable", err)
	}
	return strings.TrimSpace(raw), nil
}
