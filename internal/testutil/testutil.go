// Package testutil provides an in-memory database and fixture helpers shared by
// package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// Each test gets its own database, named after the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// One connection keeps the shared in-memory database alive for the test.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

// CreateCandidate inserts a candidate with the given Clerk id.
func CreateCandidate(t *testing.T, db *gorm.DB, clerkID, name string) *models.Candidate {
	t.Helper()
	c := &models.Candidate{
		ClerkID: clerkID,
		Name:    name,
		Email:   strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to create candidate: %v", err)
	}
	return c
}

// CreateCompany inserts a company with the given Clerk id.
func CreateCompany(t *testing.T, db *gorm.DB, clerkID, name string) *models.Company {
	t.Helper()
	c := &models.Company{
		ClerkID:     clerkID,
		CompanyName: name,
		Email:       "hr@" + strings.ToLower(name) + ".com",
		WebsiteURL:  "https://www." + strings.ToLower(name) + ".com",
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to create company: %v", err)
	}
	return c
}

// CreateJob inserts a job owned by companyID.
func CreateJob(t *testing.T, db *gorm.DB, companyID uuid.UUID, title string, published bool) *models.Job {
	t.Helper()
	j := &models.Job{
		CompanyID:       companyID,
		Title:           title,
		Description:     title + " description",
		JobType:         "Full-Time",
		ExperienceLevel: "Junior",
		HardSkills:      []string{"Go"},
		SoftSkills:      []string{"Teamwork"},
		IsPublished:     published,
	}
	if err := db.Create(j).Error; err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	return j
}

// CreateResume inserts a resume for the candidate and makes it the default.
func CreateResume(t *testing.T, db *gorm.DB, candidate *models.Candidate, title string) *models.Resume {
	t.Helper()
	r := &models.Resume{
		CandidateID: candidate.ID,
		Title:       title,
		FirstName:   "Test",
		LastName:    "Candidate",
		HardSkills:  []string{"Go", "SQL"},
		SoftSkills:  []string{"Communication"},
		WorkExperiences: []models.WorkExperience{
			{Position: "Engineer", Company: "Acme"},
		},
		Educations: []models.Education{
			{Degree: "BSc", School: "State University"},
		},
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("Failed to create resume: %v", err)
	}
	if err := db.Model(candidate).Update("default_resume_id", r.ID).Error; err != nil {
		t.Fatalf("Failed to set default resume: %v", err)
	}
	candidate.DefaultResumeID = &r.ID
	return r
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
