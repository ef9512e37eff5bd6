package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const maxExtractionInput = 20000

type LLMService struct {
	Client llms.Model
}

// NewLLMService connects to Gemini with the given model name.
func NewLLMService(ctx context.Context, apiKey, model string) (*LLMService, error) {
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &LLMService{Client: llm}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data for a job board.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "title": "Job title (e.g., Senior Backend Engineer)",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "jobType": "One of: Full-Time, Part-Time, Internship, Remote, Contract",
    "experienceLevel": "One of: Junior, Mid-Level, Senior, Lead, Executive",
    "hardSkills": ["Array", "of", "technical skills", "e.g., Go, React, AWS"],
    "softSkills": ["Array", "of", "soft skills", "e.g., Communication"],
    "salaryRange": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null",
    "isRemote": true or false,
    "stateName": "State or region of the job, otherwise null",
    "countryName": "Country of the job, otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

var (
	extractableJobTypes = []string{"Full-Time", "Part-Time", "Internship", "Remote", "Contract"}
	extractableLevels   = []string{"Junior", "Mid-Level", "Senior", "Lead", "Executive"}
)

// ExtractJobDetails turns a pasted job posting into a draft job. Input beyond
// 20000 characters is dropped. The draft is never published.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.JobRequest, error) {
	if r := []rune(rawHTML); len(r) > maxExtractionInput {
		rawHTML = string(r[:maxExtractionInput])
	}

	prompt := fmt.Sprintf(jobExtractionPrompt, rawHTML)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating job extraction: %w", err)
	}

	var draft dtos.JobRequest
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &draft); err != nil {
		return nil, fmt.Errorf("parsing job extraction: %w", err)
	}

	if !slices.Contains(extractableJobTypes, draft.JobType) {
		draft.JobType = ""
	}
	if !slices.Contains(extractableLevels, draft.ExperienceLevel) {
		draft.ExperienceLevel = ""
	}
	draft.HardSkills = nonNil(draft.HardSkills)
	draft.SoftSkills = nonNil(draft.SoftSkills)
	draft.IsPublished = false
	return &draft, nil
}

// stripCodeFence removes a ```json ... ``` wrapper models add despite being
// told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
