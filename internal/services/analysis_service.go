package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/justsurfingit/job-board/internal/analytics"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const (
	resumesSnapshotKey   = "snapshot:resumes"
	companiesSnapshotKey = "snapshot:companies"
)

// CompanyWithJobs is a company and every job it posted, published or not.
type CompanyWithJobs struct {
	models.Company
	Jobs []models.Job `json:"jobs"`
}

// AnalysisService serves the dashboard snapshots. Snapshots are cached until
// the TTL passes or a write invalidates them. A snapshot loaded before an
// invalidation is served once but never cached.
type AnalysisService struct {
	DB     *gorm.DB
	Logger *slog.Logger

	cache *cache.Cache

	mu         sync.Mutex
	generation uint64
}

func NewAnalysisService(db *gorm.DB, ttl time.Duration, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		DB:     db,
		Logger: logger,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Invalidate drops the cached snapshots. It is a no-op on a nil service.
func (s *AnalysisService) Invalidate() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cache.Flush()
}

func (s *AnalysisService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// store caches v unless the cache was invalidated since gen was read.
func (s *AnalysisService) store(gen uint64, key string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.cache.Set(key, v, cache.DefaultExpiration)
	return true
}

// Refresh reloads both snapshots into the cache.
func (s *AnalysisService) Refresh(ctx context.Context) error {
	gen := s.currentGeneration()
	resumes, err := s.loadResumes(ctx)
	if err != nil {
		return err
	}
	companies, err := s.loadCompanies(ctx)
	if err != nil {
		return err
	}
	if !s.store(gen, resumesSnapshotKey, resumes) || !s.store(gen, companiesSnapshotKey, companies) {
		s.Logger.Info("[analysis] refresh skipped, invalidated while loading")
		return nil
	}
	s.Logger.Info("[analysis] snapshots refreshed", "resumes", len(resumes), "companies", len(companies))
	return nil
}

// CandidateAnalysis returns every resume.
func (s *AnalysisService) CandidateAnalysis(ctx context.Context) ([]models.Resume, error) {
	if v, ok := s.cache.Get(resumesSnapshotKey); ok {
		return v.([]models.Resume), nil
	}
	gen := s.currentGeneration()
	resumes, err := s.loadResumes(ctx)
	if err != nil {
		return nil, err
	}
	s.store(gen, resumesSnapshotKey, resumes)
	return resumes, nil
}

// CompanyAnalysis returns every company with its jobs. Companies without jobs
// carry an empty list.
func (s *AnalysisService) CompanyAnalysis(ctx context.Context) ([]CompanyWithJobs, error) {
	if v, ok := s.cache.Get(companiesSnapshotKey); ok {
		return v.([]CompanyWithJobs), nil
	}
	gen := s.currentGeneration()
	companies, err := s.loadCompanies(ctx)
	if err != nil {
		return nil, err
	}
	s.store(gen, companiesSnapshotKey, companies)
	return companies, nil
}

func (s *AnalysisService) loadResumes(ctx context.Context) ([]models.Resume, error) {
	resumes := []models.Resume{}
	if err := s.DB.WithContext(ctx).Order("created_at asc").Find(&resumes).Error; err != nil {
		return nil, fmt.Errorf("loading resumes snapshot: %w", err)
	}
	return resumes, nil
}

func (s *AnalysisService) loadCompanies(ctx context.Context) ([]CompanyWithJobs, error) {
	db := s.DB.WithContext(ctx)

	var companies []models.Company
	if err := db.Order("created_at asc").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("loading companies snapshot: %w", err)
	}
	var jobs []models.Job
	if err := db.Order("created_at asc").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("loading jobs snapshot: %w", err)
	}

	out := make([]CompanyWithJobs, len(companies))
	index := make(map[string]int, len(companies))
	for i, c := range companies {
		out[i] = CompanyWithJobs{Company: c, Jobs: []models.Job{}}
		index[c.ID.String()] = i
	}
	for _, j := range jobs {
		if i, ok := index[j.CompanyID.String()]; ok {
			out[i].Jobs = append(out[i].Jobs, j)
		}
	}
	return out, nil
}

// JobRecords flattens the company snapshot into dashboard rows.
func (s *AnalysisService) JobRecords(ctx context.Context) ([]analytics.JobRecord, error) {
	companies, err := s.CompanyAnalysis(ctx)
	if err != nil {
		return nil, err
	}
	return jobRecords(companies), nil
}

func jobRecords(companies []CompanyWithJobs) []analytics.JobRecord {
	var records []analytics.JobRecord
	for _, c := range companies {
		for _, j := range c.Jobs {
			records = append(records, jobRecord(c.Company, j))
		}
	}
	return records
}

// companyOptions lists every company of the snapshot, including those
// without jobs.
func companyOptions(companies []CompanyWithJobs) []analytics.CompanyOption {
	out := make([]analytics.CompanyOption, 0, len(companies))
	for _, c := range companies {
		out = append(out, analytics.CompanyOption{
			ID:       c.ID.String(),
			Name:     c.CompanyName,
			JobCount: len(c.Jobs),
		})
	}
	return out
}

func (s *AnalysisService) JobDashboard(ctx context.Context, f analytics.JobFilter) (analytics.JobDashboard, error) {
	companies, err := s.CompanyAnalysis(ctx)
	if err != nil {
		return analytics.JobDashboard{}, err
	}
	return analytics.BuildJobDashboard(jobRecords(companies), companyOptions(companies), f), nil
}

// FilteredJobs returns the dashboard rows matching f, for export.
func (s *AnalysisService) FilteredJobs(ctx context.Context, f analytics.JobFilter) ([]analytics.JobRecord, error) {
	records, err := s.JobRecords(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.FilterJobs(records, f), nil
}

func (s *AnalysisService) CandidateDashboard(ctx context.Context, f analytics.ResumeFilter) (analytics.CandidateDashboard, error) {
	resumes, err := s.CandidateAnalysis(ctx)
	if err != nil {
		return analytics.CandidateDashboard{}, err
	}
	records := make([]analytics.ResumeRecord, 0, len(resumes))
	for _, r := range resumes {
		records = append(records, resumeRecord(r))
	}
	return analytics.BuildCandidateDashboard(records, f), nil
}

func jobRecord(c models.Company, j models.Job) analytics.JobRecord {
	return analytics.JobRecord{
		ID:                  j.ID.String(),
		Title:               j.Title,
		CompanyID:           c.ID.String(),
		CompanyName:         c.CompanyName,
		JobType:             j.JobType,
		ExperienceLevel:     j.ExperienceLevel,
		HardSkills:          j.HardSkills,
		SoftSkills:          j.SoftSkills,
		SalaryRange:         j.SalaryRange,
		GenderPreference:    j.GenderPreference,
		AgeCategory:         j.AgeCategory,
		IsDisabilityAllowed: j.IsDisabilityAllowed,
		IsRemote:            j.IsRemote,
		IsPublished:         j.IsPublished,
		Lat:                 j.Lat,
		Lng:                 j.Lng,
		StateName:           j.StateName,
		CountryName:         j.CountryName,
		CreatedAt:           j.CreatedAt,
	}
}

func resumeRecord(r models.Resume) analytics.ResumeRecord {
	return analytics.ResumeRecord{
		ID:              r.ID.String(),
		CandidateID:     r.CandidateID.String(),
		Title:           r.Title,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		JobTitle:        r.JobTitle,
		City:            r.City,
		Country:         r.Country,
		Email:           r.Email,
		HardSkills:      r.HardSkills,
		SoftSkills:      r.SoftSkills,
		Lat:             r.Lat,
		Lng:             r.Lng,
		Disability:      r.Disability,
		Gender:          r.Gender,
		ExperienceLevel: r.ExperienceLevel,
		JobType:         r.JobType,
		Age:             r.Age,
		SkillType:       r.SkillType,
	}
}
