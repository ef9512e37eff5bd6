package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/metrics"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Application event types.
const (
	EventApplied       = "APPLIED"
	EventWithdrawn     = "WITHDRAWN"
	EventStatusChanged = "STATUS_CHANGED"
)

type JobService struct {
	DB       *gorm.DB
	LLM      *LLMService
	Notifier Notifier
	Analysis *AnalysisService
	Logger   *slog.Logger
}

func NewJobService(db *gorm.DB, llm *LLMService, notifier Notifier, analysis *AnalysisService, logger *slog.Logger) *JobService {
	return &JobService{
		DB:       db,
		LLM:      llm,
		Notifier: notifier,
		Analysis: analysis,
		Logger:   logger,
	}
}

// ListJobs returns published jobs with their company.
func (s *JobService) ListJobs(ctx context.Context, q dtos.JobListQuery) ([]models.Job, error) {
	query := s.DB.WithContext(ctx).Preload("Company").Where("is_published = ?", true)
	query = filterJobs(query, q)

	jobs := []models.Job{}
	if err := query.Order("created_at " + q.Order()).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// ListCompanyJobs returns every job of the company, published or not.
func (s *JobService) ListCompanyJobs(ctx context.Context, me *models.Company, q dtos.JobListQuery) ([]models.Job, error) {
	query := s.DB.WithContext(ctx).Preload("Company").Where("company_id = ?", me.ID)
	query = filterJobs(query, q)

	jobs := []models.Job{}
	if err := query.Order("created_at " + q.Order()).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing company jobs: %w", err)
	}
	return jobs, nil
}

func filterJobs(query *gorm.DB, q dtos.JobListQuery) *gorm.DB {
	if q.Search != "" {
		query = query.Where(likeClause("title"), likePattern(q.Search))
	}
	if q.JobType != "" {
		query = query.Where("job_type = ?", q.JobType)
	}
	return query
}

// GetJob loads a job. Unpublished jobs are only visible to the owning
// company; everyone else gets ErrNotFound. viewer is nil for candidates.
func (s *JobService) GetJob(ctx context.Context, id uuid.UUID, viewer *models.Company) (*models.Job, error) {
	return visibleJob(s.DB.WithContext(ctx), id, viewer)
}

func visibleJob(db *gorm.DB, id uuid.UUID, viewer *models.Company) (*models.Job, error) {
	var job models.Job
	if err := db.Preload("Company").First(&job, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("loading job %s: %w", id, notFound(err))
	}
	if !job.IsPublished && (viewer == nil || viewer.ID != job.CompanyID) {
		return nil, fmt.Errorf("loading job %s: %w", id, ErrNotFound)
	}
	return &job, nil
}

// ownedJob loads a job of the company. Jobs of other companies are
// ErrForbidden.
func (s *JobService) ownedJob(db *gorm.DB, me *models.Company, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := db.First(&job, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("loading job %s: %w", id, notFound(err))
	}
	if job.CompanyID != me.ID {
		return nil, fmt.Errorf("job %s: %w", id, ErrForbidden)
	}
	return &job, nil
}

func (s *JobService) CreateJob(ctx context.Context, me *models.Company, req dtos.JobRequest) (*models.Job, error) {
	job := &models.Job{CompanyID: me.ID}
	applyJobRequest(job, req)
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	s.Analysis.Invalidate()
	s.Logger.Info("[jobs] created", "job", job.ID, "company", me.ID, "published", job.IsPublished)
	return s.GetJob(ctx, job.ID, me)
}

func (s *JobService) UpdateJob(ctx context.Context, me *models.Company, id uuid.UUID, req dtos.JobRequest) (*models.Job, error) {
	db := s.DB.WithContext(ctx)
	job, err := s.ownedJob(db, me, id)
	if err != nil {
		return nil, err
	}
	applyJobRequest(job, req)
	if err := db.Omit(clause.Associations).Save(job).Error; err != nil {
		return nil, fmt.Errorf("updating job: %w", err)
	}
	s.Analysis.Invalidate()
	return s.GetJob(ctx, job.ID, me)
}

// DeleteJob removes the job with its applications, their events and every
// favorite pointing at it.
func (s *JobService) DeleteJob(ctx context.Context, me *models.Company, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.ownedJob(tx, me, id); err != nil {
			return err
		}
		for _, m := range []any{&models.ApplicationEvent{}, &models.JobApplication{}, &models.JobFavorite{}} {
			if err := tx.Where("job_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("deleting job dependents: %w", err)
			}
		}
		return tx.Delete(&models.Job{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}
	s.Analysis.Invalidate()
	s.Logger.Info("[jobs] deleted", "job", id, "company", me.ID)
	return nil
}

// ExtractJob asks the language model for a draft job from a pasted posting.
func (s *JobService) ExtractJob(ctx context.Context, req dtos.JobExtractionRequest) (*dtos.JobRequest, error) {
	if s.LLM == nil {
		return nil, fmt.Errorf("job extraction: %w", ErrUnavailable)
	}
	return s.LLM.ExtractJobDetails(ctx, req.RawHTML)
}

func applyJobRequest(job *models.Job, req dtos.JobRequest) {
	job.Title = req.Title
	job.Description = req.Description
	job.JobType = req.JobType
	job.ExperienceLevel = req.ExperienceLevel
	job.HardSkills = nonNil(req.HardSkills)
	job.SoftSkills = nonNil(req.SoftSkills)
	job.SalaryRange = req.SalaryRange
	job.GenderPreference = req.GenderPreference
	job.AgeCategory = nonNil(req.AgeCategory)
	job.IsDisabilityAllowed = req.IsDisabilityAllowed
	job.IsRemote = req.IsRemote
	job.IsPublished = req.IsPublished
	job.Lat = req.Lat
	job.Lng = req.Lng
	job.StateName = req.StateName
	job.CountryName = req.CountryName
}

// ApplyOrRemove toggles the candidate's application to a job and reports
// whether the candidate is now applied. Applying needs a published job and
// records the candidate's default resume. Withdrawing works whatever the job's
// state.
func (s *JobService) ApplyOrRemove(ctx context.Context, me *models.Candidate, jobID uuid.UUID) (bool, error) {
	var (
		job     *models.Job
		applied bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app models.JobApplication
		err := tx.Where("job_id = ? AND candidate_id = ?", jobID, me.ID).First(&app).Error
		switch {
		case err == nil:
			if err := tx.Delete(&app).Error; err != nil {
				return fmt.Errorf("withdrawing application: %w", err)
			}
			return tx.Create(&models.ApplicationEvent{
				ApplicationID: app.ID,
				JobID:         jobID,
				EventType:     EventWithdrawn,
				Details:       fmt.Sprintf("%s withdrew the application", me.Name),
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			job, err = visibleJob(tx, jobID, nil)
			if err != nil {
				return err
			}
			app = models.JobApplication{
				JobID:       jobID,
				CandidateID: me.ID,
				ResumeID:    me.DefaultResumeID,
				Status:      models.StatusApplied,
			}
			if err := tx.Create(&app).Error; err != nil {
				return fmt.Errorf("creating application: %w", err)
			}
			applied = true
			return tx.Create(&models.ApplicationEvent{
				ApplicationID: app.ID,
				JobID:         jobID,
				EventType:     EventApplied,
				Details:       fmt.Sprintf("%s applied", me.Name),
			}).Error
		default:
			return fmt.Errorf("loading application: %w", err)
		}
	})
	if err != nil {
		return false, err
	}

	if applied {
		metrics.Applications.WithLabelValues(metrics.ActionApplied).Inc()
		s.Logger.Info("[applications] applied", "job", jobID, "candidate", me.ID)
		s.Notifier.ApplicationReceived(ctx, job, me)
	} else {
		metrics.Applications.WithLabelValues(metrics.ActionWithdrawn).Inc()
		s.Logger.Info("[applications] withdrawn", "job", jobID, "candidate", me.ID)
	}
	return applied, nil
}

func (s *JobService) CheckApplied(ctx context.Context, me *models.Candidate, jobID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.JobApplication{}).
		Where("job_id = ? AND candidate_id = ?", jobID, me.ID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking application: %w", err)
	}
	return n > 0, nil
}

// ListApplicants returns the applications to one of the company's jobs with
// the candidates and their resume data, oldest first.
func (s *JobService) ListApplicants(ctx context.Context, me *models.Company, jobID uuid.UUID) ([]models.JobApplication, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.ownedJob(db, me, jobID); err != nil {
		return nil, err
	}

	apps := []models.JobApplication{}
	err := db.Preload("Candidate.DefaultResume.WorkExperiences").
		Preload("Candidate.DefaultResume.Educations").
		Where("job_id = ?", jobID).
		Order("created_at asc").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("listing applicants: %w", err)
	}
	return apps, nil
}

// UpdateApplicationStatus moves an application of one of the company's jobs to
// a new status. OFFER and REJECTED are final.
func (s *JobService) UpdateApplicationStatus(ctx context.Context, me *models.Company, appID uuid.UUID, status string) (*models.JobApplication, error) {
	db := s.DB.WithContext(ctx)

	var app models.JobApplication
	if err := db.Preload("Job.Company").Preload("Candidate").First(&app, "id = ?", appID).Error; err != nil {
		return nil, fmt.Errorf("loading application %s: %w", appID, notFound(err))
	}
	if app.Job == nil || app.Job.CompanyID != me.ID {
		return nil, fmt.Errorf("application %s: %w", appID, ErrForbidden)
	}
	if app.Status == status {
		return &app, nil
	}
	if models.IsTerminalStatus(app.Status) {
		return nil, fmt.Errorf("%w: application is already %s", ErrConflict, app.Status)
	}

	previous := app.Status
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.JobApplication{}).
			Where("id = ? AND status = ?", app.ID, previous).
			Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("updating application status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: application status changed concurrently", ErrConflict)
		}
		return tx.Create(&models.ApplicationEvent{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			EventType:     EventStatusChanged,
			Details:       fmt.Sprintf("Status changed from %s to %s", previous, status),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	app.Status = status

	metrics.Applications.WithLabelValues(metrics.ActionStatusChange).Inc()
	s.Logger.Info("[applications] status changed", "application", app.ID, "from", previous, "to", status)
	if app.Candidate != nil {
		s.Notifier.ApplicationStatusChanged(ctx, app.Job, app.Candidate, status)
	}
	return &app, nil
}

// ListApplicationEvents returns the audit trail of an application of one of
// the company's jobs, oldest first. The trail outlives a withdrawn
// application.
func (s *JobService) ListApplicationEvents(ctx context.Context, me *models.Company, appID uuid.UUID) ([]models.ApplicationEvent, error) {
	db := s.DB.WithContext(ctx)

	events := []models.ApplicationEvent{}
	if err := db.Where("application_id = ?", appID).Order("id asc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("listing application events: %w", err)
	}

	var jobID uuid.UUID
	if len(events) > 0 {
		jobID = events[0].JobID
	} else {
		var app models.JobApplication
		if err := db.Select("job_id").First(&app, "id = ?", appID).Error; err != nil {
			return nil, fmt.Errorf("loading application %s: %w", appID, notFound(err))
		}
		jobID = app.JobID
	}
	if _, err := s.ownedJob(db, me, jobID); err != nil {
		return nil, err
	}
	return events, nil
}
