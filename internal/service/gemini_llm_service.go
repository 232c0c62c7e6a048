package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/prepbank/config"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// ExplanationGenerator writes a worked explanation for a question.
type ExplanationGenerator interface {
	Available() bool
	Explain(ctx context.Context, question *model.Question) (string, error)
}

type geminiLLMService struct {
	client     *genai.GenerativeModel
	httpClient *http.Client
}

// NewGeminiLLMService returns a generator backed by Gemini. Without an API key
// the generator reports itself unavailable.
func NewGeminiLLMService(cfg *config.Config) (ExplanationGenerator, error) {
	svc := &geminiLLMService{httpClient: &http.Client{Timeout: 15 * time.Second}}
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. AI explanations are disabled.")
		return svc, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	m := client.GenerativeModel(cfg.GeminiModel)
	m.SetTemperature(0.2)
	svc.client = m
	return svc, nil
}

func (s *geminiLLMService) Available() bool { return s.client != nil }

func (s *geminiLLMService) fetchImageData(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image URL %s: %w", imageURL, err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image from URL %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch image (status %d) from URL %s", resp.StatusCode, imageURL)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data from URL %s: %w", imageURL, err)
	}
	mimeType := imageMIMEType(resp.Header.Get("Content-Type"), imageURL)
	if mimeType == "" {
		return nil, "", fmt.Errorf("unsupported or undeterminable image MIME type for %s", imageURL)
	}
	return data, mimeType, nil
}

// imageMIMEType prefers the response header and falls back to the URL extension.
func imageMIMEType(contentType, imageURL string) string {
	if contentType != "" {
		if parsed, _, err := mime.ParseMediaType(contentType); err == nil && strings.HasPrefix(parsed, "image/") {
			return parsed
		}
	}
	if byExt := mime.TypeByExtension(filepath.Ext(imageURL)); strings.HasPrefix(byExt, "image/") {
		if parsed, _, err := mime.ParseMediaType(byExt); err == nil {
			return parsed
		}
	}
	return ""
}

// explanationPrompt renders the question, its options and the correct label.
func explanationPrompt(q *model.Question) string {
	var b strings.Builder
	b.WriteString("You are an experienced exam tutor. Explain step by step why the correct option is right ")
	b.WriteString("and briefly why each other option is wrong. Answer in plain text, at most 300 words.\n\n")
	fmt.Fprintf(&b, "Question (%s, %s):\n%s\n\n", q.Type, q.Period, q.Content)
	b.WriteString("Options:\n")
	for _, o := range q.Options {
		fmt.Fprintf(&b, "%s. %s\n", o.Label, o.Text)
	}
	if q.CorrectLabel != nil {
		fmt.Fprintf(&b, "\nCorrect option: %s\n", *q.CorrectLabel)
	}
	return b.String()
}

func (s *geminiLLMService) Explain(ctx context.Context, q *model.Question) (string, error) {
	if s.client == nil {
		return "", ErrExplanationUnavailable
	}
	var parts []genai.Part
	for _, url := range q.ImageURLs {
		data, mimeType, err := s.fetchImageData(ctx, url)
		if err != nil {
			log.Warn().Err(err).Str("questionID", q.ID).Msg("Skipping question image for explanation")
			continue
		}
		parts = append(parts, genai.ImageData(strings.TrimPrefix(mimeType, "image/"), data))
	}
	parts = append(parts, genai.Text(explanationPrompt(q)))

	resp, err := s.client.GenerateContent(ctx, parts...)
	if err != nil {
		log.Error().Err(err).Str("questionID", q.ID).Msg("Gemini API error during explanation")
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates for question %s", q.ID)
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", fmt.Errorf("gemini returned an empty explanation for question %s", q.ID)
	}
	return out, nil
}
