// AI client boundary. The run loop treats every call as a remote
// procedure with bounded latency and no ordering guarantees; failure
// policies (fail open, neutral score, fatal-to-item) live with the
// callers, not here.

package ai

import (
	"context"
	"fmt"
	"strings"
)

type CompanyType string

const (
	CompanyProduct CompanyType = "product"
	CompanyService CompanyType = "service"
	CompanyUnknown CompanyType = "unknown"
)

// ChoiceQuestion is one single- or multi-choice dialog question with its
// visible options.
type ChoiceQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// QuestionSet holds the questions recorded during a dry run, keyed by
// control kind. Transient, scoped to one submission attempt.
type QuestionSet struct {
	FreeText     []string         `json:"freeText"`
	SingleChoice []ChoiceQuestion `json:"singleChoice"`
	MultiChoice  []ChoiceQuestion `json:"multiChoice"`
}

func (q QuestionSet) Empty() bool {
	return len(q.FreeText) == 0 && len(q.SingleChoice) == 0 && len(q.MultiChoice) == 0
}

// AnswerSet maps the same question keys to resolved values.
type AnswerSet struct {
	FreeText     map[string]string   `json:"freeText"`
	SingleChoice map[string]string   `json:"singleChoice"`
	MultiChoice  map[string][]string `json:"multiChoice"`
}

// Client is the interface for AI providers.
type Client interface {
	// ClassifyCompanies buckets company names into product/service/unknown
	// in one batched call.
	ClassifyCompanies(ctx context.Context, companies []string) (map[string]CompanyType, error)

	// ScoreJobMatch rates a job 1-5 against the applicant profile and
	// reports the company type as a side product.
	ScoreJobMatch(ctx context.Context, title, company, profile string) (int, CompanyType, error)

	// AnswerQuestions resolves a recorded question set against the
	// applicant profile.
	AnswerQuestions(ctx context.Context, questions QuestionSet, profile string) (*AnswerSet, error)

	// FreeForm sends an arbitrary prompt and returns the raw reply.
	FreeForm(ctx context.Context, prompt string) (string, error)
}

func buildClassifyPrompt(companies []string) string {
	return fmt.Sprintf(`Classify each company below as "product" (builds its own products) or "service" (consulting/outsourcing/staffing). Use "unknown" if unsure.
Return ONLY a raw JSON object mapping each company name to its classification, no markdown.

Companies:
%s`, strings.Join(companies, "\n"))
}

func buildScorePrompt(title, company, profile string) string {
	return fmt.Sprintf(`You rate how well a job posting matches an applicant.
Job title: %s
Company: %s

Applicant profile:
%s

Return ONLY a raw JSON object {"score": <integer 1-5>, "companyType": "product"|"service"|"unknown"}, no markdown. 5 means an excellent match.`, title, company, profile)
}

func buildAnswersPrompt(questions QuestionSet, profile string) string {
	var b strings.Builder
	b.WriteString("You fill in job application forms on behalf of an applicant. Answer every question truthfully based on the profile; when the profile is silent, give the most favorable plausible answer.\n\n")
	b.WriteString("Applicant profile:\n")
	b.WriteString(profile)
	b.WriteString("\n\nFree-text questions:\n")
	for _, q := range questions.FreeText {
		b.WriteString("- " + q + "\n")
	}
	b.WriteString("\nSingle-choice questions (pick exactly one option, verbatim):\n")
	for _, q := range questions.SingleChoice {
		b.WriteString(fmt.Sprintf("- %s [options: %s]\n", q.Question, strings.Join(q.Options, " | ")))
	}
	b.WriteString("\nMulti-choice questions (pick one or more options, verbatim):\n")
	for _, q := range questions.MultiChoice {
		b.WriteString(fmt.Sprintf("- %s [options: %s]\n", q.Question, strings.Join(q.Options, " | ")))
	}
	b.WriteString(`
Return ONLY a raw JSON object, no markdown, shaped exactly like:
{"freeText": {"<question>": "<answer>"}, "singleChoice": {"<question>": "<option>"}, "multiChoice": {"<question>": ["<option>"]}}`)
	return b.String()
}
