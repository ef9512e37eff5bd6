package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/justsurfingit/job-board/internal/testutil"
	"github.com/tmc/langchaingo/llms"
	"gorm.io/gorm"
)

type fakeIdentity struct {
	mu        sync.Mutex
	metadata  map[string]auth.PublicMetadata
	deleted   []string
	updateErr error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{metadata: make(map[string]auth.PublicMetadata)}
}

func (f *fakeIdentity) UpdatePublicMetadata(_ context.Context, userID string, md auth.PublicMetadata) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.metadata[userID] = md
	return nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, userID)
	return nil
}

type notification struct {
	kind   string
	job    string
	to     string
	status string
}

type recordingNotifier struct {
	sent []notification
}

func (n *recordingNotifier) ApplicationReceived(_ context.Context, job *models.Job, candidate *models.Candidate) {
	n.sent = append(n.sent, notification{kind: "received", job: job.Title, to: job.Company.Email})
}

func (n *recordingNotifier) ApplicationStatusChanged(_ context.Context, job *models.Job, candidate *models.Candidate, status string) {
	n.sent = append(n.sent, notification{kind: "status", job: job.Title, to: candidate.Email, status: status})
}

// fakeModel answers every prompt with a fixed completion.
type fakeModel struct {
	answer string
	prompt string
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if t, ok := part.(llms.TextContent); ok {
				m.prompt += t.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// afterFirstQuery runs fn once, right after the first query on table returns.
func afterFirstQuery(t *testing.T, db *gorm.DB, table string, fn func()) {
	t.Helper()
	fired := false
	err := db.Callback().Query().After("gorm:query").Register("test:after_first_"+table, func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		fn()
	})
	if err != nil {
		t.Fatalf("Failed to register callback: %v", err)
	}
}

type fixture struct {
	db        *gorm.DB
	analysis  *AnalysisService
	notifier  *recordingNotifier
	identity  *fakeIdentity
	jobs      *JobService
	resumes   *ResumeService
	companies *CompanyService
	cands     *CandidateService
}

func newFixture(db *gorm.DB) *fixture {
	logger := testutil.Logger()
	analysis := NewAnalysisService(db, time.Minute, logger)
	notifier := &recordingNotifier{}
	return &fixture{
		db:        db,
		analysis:  analysis,
		notifier:  notifier,
		identity:  newFakeIdentity(),
		jobs:      NewJobService(db, nil, notifier, analysis, logger),
		resumes:   NewResumeService(db, analysis),
		companies: NewCompanyService(db, analysis),
		cands:     NewCandidateService(db),
	}
}
