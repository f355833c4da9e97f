package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go-autoapply/internal/errs"
)

const groqURL = "https://api.groq.com/openai/v1/chat/completions"

type groqClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewGroqClient creates a Groq API client
func NewGroqClient(apiKey string) Client {
	return &groqClient{
		apiKey:     apiKey,
		model:      "llama-3.3-70b-versatile",
		url:        groqURL,
		httpClient: &http.Client{},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *groqClient) ClassifyCompanies(ctx context.Context, companies []string) (map[string]CompanyType, error) {
	raw, err := c.complete(ctx, buildClassifyPrompt(companies))
	if err != nil {
		return nil, &errs.AIUnavailableError{Op: "classify-companies", Err: err}
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(cleanMarkdownJSON(raw)), &parsed); err != nil {
		return nil, &errs.AIUnavailableError{Op: "classify-companies", Err: err}
	}

	result := make(map[string]CompanyType, len(parsed))
	for company, kind := range parsed {
		result[company] = normalizeCompanyType(kind)
	}
	return result, nil
}

func (c *groqClient) ScoreJobMatch(ctx context.Context, title, company, profile string) (int, CompanyType, error) {
	raw, err := c.complete(ctx, buildScorePrompt(title, company, profile))
	if err != nil {
		return 0, CompanyUnknown, &errs.AIUnavailableError{Op: "score-job-match", Err: err}
	}

	var parsed struct {
		Score       int    `json:"score"`
		CompanyType string `json:"companyType"`
	}
	if err := json.Unmarshal([]byte(cleanMarkdownJSON(raw)), &parsed); err != nil {
		return 0, CompanyUnknown, &errs.AIUnavailableError{Op: "score-job-match", Err: err}
	}

	if parsed.Score < 1 || parsed.Score > 5 {
		return 0, CompanyUnknown, &errs.AIUnavailableError{Op: "score-job-match", Err: fmt.Errorf("score %d out of range", parsed.Score)}
	}
	return parsed.Score, normalizeCompanyType(parsed.CompanyType), nil
}

func (c *groqClient) AnswerQuestions(ctx context.Context, questions QuestionSet, profile string) (*AnswerSet, error) {
	raw, err := c.complete(ctx, buildAnswersPrompt(questions, profile))
	if err != nil {
		return nil, &errs.AIUnavailableError{Op: "answer-questions", Err: err}
	}

	var answers AnswerSet
	if err := json.Unmarshal([]byte(cleanMarkdownJSON(raw)), &answers); err != nil {
		return nil, &errs.AIUnavailableError{Op: "answer-questions", Err: err}
	}
	return &answers, nil
}

func (c *groqClient) FreeForm(ctx context.Context, prompt string) (string, error) {
	raw, err := c.complete(ctx, prompt)
	if err != nil {
		return "", &errs.AIUnavailableError{Op: "free-form-prompt", Err: err}
	}
	return raw, nil
}

func (c *groqClient) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := groqRequest{
		Model: c.model,
		Messages: []groqMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2, // Low temperature for consistency
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal groq request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var groqResp groqResponse
	if err := json.Unmarshal(bodyBytes, &groqResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if groqResp.Error != nil {
		return "", fmt.Errorf("API error: %s", groqResp.Error.Message)
	}

	if len(groqResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from groq API")
	}

	return groqResp.Choices[0].Message.Content, nil
}

func normalizeCompanyType(s string) CompanyType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "product":
		return CompanyProduct
	case "service":
		return CompanyService
	}
	return CompanyUnknown
}

// cleanMarkdownJSON removes backticks and "json" prefix if the AI model tries to be helpful
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
