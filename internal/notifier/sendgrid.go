package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lamdang/quizforge/config"
	"github.com/rs/zerolog/log"
)

const sendGridBaseURL = "https://api.sendgrid.com"

type sendGridNotifier struct {
	cfg        config.SendGrid
	httpClient *http.Client
}

// NewSendGridNotifier builds the mail-based notification channel. Without
// an API key it degrades to logging the event, so scoring never depends
// on mail configuration.
func NewSendGridNotifier(cfg *config.Config) Service {
	if cfg.SendGrid.APIKey == "" {
		log.Warn().Msg("SENDGRID_API_KEY not set, submission notifications will only be logged")
	}
	return &sendGridNotifier{
		cfg:        cfg.SendGrid,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailSendRequest struct {
	Personalizations []struct {
		To []emailAddress `json:"to"`
	} `json:"personalizations"`
	From    emailAddress `json:"from"`
	Subject string       `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func (n *sendGridNotifier) SubmissionScored(ctx context.Context, event SubmissionScoredEvent) error {
	if n.cfg.APIKey == "" {
		log.Info().
			Str("username", event.Username).
			Str("quiz", event.QuizTitle).
			Float64("score", event.Score).
			Msg("submission scored (mail disabled)")
		return nil
	}
	if event.Email == "" {
		return fmt.Errorf("notify: recipient email is empty")
	}

	body := mailSendRequest{
		From:    emailAddress{Email: n.cfg.FromEmail, Name: n.cfg.FromName},
		Subject: fmt.Sprintf("Your quiz results: %s", event.QuizTitle),
	}
	body.Personalizations = append(body.Personalizations, struct {
		To []emailAddress `json:"to"`
	}{To: []emailAddress{{Email: event.Email, Name: event.Username}}})
	body.Content = append(body.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/plain", Value: renderResultText(event)})

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("notify: marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendGridBaseURL+"/v3/mail/send", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("notify: build mail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notify: sendgrid http %d: %s", resp.StatusCode, string(payload))
	}
	return nil
}

func renderResultText(event SubmissionScoredEvent) string {
	correct := 0
	for _, f := range event.Feedback {
		if f.IsCorrect {
			correct++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi %s,\n\n", event.Username)
	if event.IsRetry {
		fmt.Fprintf(&sb, "Your retry of \"%s\" has been scored.\n\n", event.QuizTitle)
	} else {
		fmt.Fprintf(&sb, "Your quiz \"%s\" has been scored.\n\n", event.QuizTitle)
	}
	fmt.Fprintf(&sb, "Score: %.1f%%\n", event.Score)
	fmt.Fprintf(&sb, "Correct answers: %d of %d\n\n", correct, event.TotalPoints)
	if len(event.Suggestions) > 0 {
		sb.WriteString("Suggestions:\n")
		for _, s := range event.Suggestions {
			fmt.Fprintf(&sb, "  - %s\n", s)
		}
	}
	return sb.String()
}
