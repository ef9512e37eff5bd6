package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResumeService struct {
	DB       *gorm.DB
	Analysis *AnalysisService
}

func NewResumeService(db *gorm.DB, analysis *AnalysisService) *ResumeService {
	return &ResumeService{DB: db, Analysis: analysis}
}

func withResumeChildren(db *gorm.DB) *gorm.DB {
	return db.Preload("WorkExperiences").Preload("Educations")
}

// List returns the candidate's resumes, most recently updated first.
func (s *ResumeService) List(ctx context.Context, me *models.Candidate) ([]models.Resume, error) {
	resumes := []models.Resume{}
	err := withResumeChildren(s.DB.WithContext(ctx)).
		Where("candidate_id = ?", me.ID).
		Order("updated_at desc").
		Find(&resumes).Error
	if err != nil {
		return nil, fmt.Errorf("listing resumes: %w", err)
	}
	return resumes, nil
}

// Get loads one of the candidate's resumes. Resumes of other candidates are
// reported as not found.
func (s *ResumeService) Get(ctx context.Context, me *models.Candidate, id uuid.UUID) (*models.Resume, error) {
	return s.owned(withResumeChildren(s.DB.WithContext(ctx)), me, id)
}

func (s *ResumeService) owned(db *gorm.DB, me *models.Candidate, id uuid.UUID) (*models.Resume, error) {
	var r models.Resume
	if err := db.Where("id = ? AND candidate_id = ?", id, me.ID).First(&r).Error; err != nil {
		return nil, fmt.Errorf("loading resume %s: %w", id, notFound(err))
	}
	return &r, nil
}

// Save creates a resume when id is nil and replaces the resume otherwise. The
// work experiences and educations are replaced wholesale. A candidate's first
// resume becomes the default.
func (s *ResumeService) Save(ctx context.Context, me *models.Candidate, id *uuid.UUID, req dtos.ResumeRequest) (*models.Resume, error) {
	works, err := workExperiencesFrom(req.WorkExperiences)
	if err != nil {
		return nil, err
	}
	educations, err := educationsFrom(req.Educations)
	if err != nil {
		return nil, err
	}

	var saved uuid.UUID
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resume := &models.Resume{CandidateID: me.ID}
		if id != nil {
			existing, err := s.owned(tx, me, *id)
			if err != nil {
				return err
			}
			resume = existing
		}
		applyResumeRequest(resume, req)

		if id == nil {
			resume.WorkExperiences = works
			resume.Educations = educations
			if err := tx.Create(resume).Error; err != nil {
				return fmt.Errorf("creating resume: %w", err)
			}
		} else {
			if err := tx.Omit(clause.Associations).Save(resume).Error; err != nil {
				return fmt.Errorf("updating resume: %w", err)
			}
			if err := replaceResumeChildren(tx, resume.ID, works, educations); err != nil {
				return err
			}
		}
		saved = resume.ID

		if me.DefaultResumeID == nil {
			if err := tx.Model(&models.Candidate{}).Where("id = ?", me.ID).
				Update("default_resume_id", resume.ID).Error; err != nil {
				return fmt.Errorf("setting default resume: %w", err)
			}
			me.DefaultResumeID = &resume.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Analysis.Invalidate()
	return s.Get(ctx, me, saved)
}

func replaceResumeChildren(tx *gorm.DB, resumeID uuid.UUID, works []models.WorkExperience, educations []models.Education) error {
	if err := tx.Where("resume_id = ?", resumeID).Delete(&models.WorkExperience{}).Error; err != nil {
		return fmt.Errorf("clearing work experiences: %w", err)
	}
	if err := tx.Where("resume_id = ?", resumeID).Delete(&models.Education{}).Error; err != nil {
		return fmt.Errorf("clearing educations: %w", err)
	}
	for i := range works {
		works[i].ResumeID = resumeID
	}
	for i := range educations {
		educations[i].ResumeID = resumeID
	}
	if len(works) > 0 {
		if err := tx.Create(&works).Error; err != nil {
			return fmt.Errorf("creating work experiences: %w", err)
		}
	}
	if len(educations) > 0 {
		if err := tx.Create(&educations).Error; err != nil {
			return fmt.Errorf("creating educations: %w", err)
		}
	}
	return nil
}

// Delete removes one of the candidate's resumes and everything that points at
// it. Deleting the default resume clears the candidate's default.
func (s *ResumeService) Delete(ctx context.Context, me *models.Candidate, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.owned(tx, me, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Candidate{}).Where("id = ? AND default_resume_id = ?", me.ID, id).
			Update("default_resume_id", nil).Error; err != nil {
			return fmt.Errorf("clearing default resume: %w", err)
		}
		if err := tx.Model(&models.JobApplication{}).Where("resume_id = ?", id).
			Update("resume_id", nil).Error; err != nil {
			return fmt.Errorf("detaching applications: %w", err)
		}
		if err := replaceResumeChildren(tx, id, nil, nil); err != nil {
			return err
		}
		if err := tx.Delete(&models.Resume{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("deleting resume: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if me.DefaultResumeID != nil && *me.DefaultResumeID == id {
		me.DefaultResumeID = nil
	}
	s.Analysis.Invalidate()
	return nil
}

// SetDefault makes one of the candidate's resumes the default.
func (s *ResumeService) SetDefault(ctx context.Context, me *models.Candidate, id uuid.UUID) error {
	db := s.DB.WithContext(ctx)
	if _, err := s.owned(db, me, id); err != nil {
		return err
	}
	if err := db.Model(&models.Candidate{}).Where("id = ?", me.ID).
		Update("default_resume_id", id).Error; err != nil {
		return fmt.Errorf("setting default resume: %w", err)
	}
	me.DefaultResumeID = &id
	return nil
}

func applyResumeRequest(r *models.Resume, req dtos.ResumeRequest) {
	r.Title = req.Title
	r.Description = req.Description
	r.PhotoURL = req.PhotoURL
	r.FirstName = req.FirstName
	r.LastName = req.LastName
	r.JobTitle = req.JobTitle
	r.City = req.City
	r.Country = req.Country
	r.Phone = req.Phone
	r.Email = req.Email
	r.Summary = req.Summary
	r.HardSkills = nonNil(req.HardSkills)
	r.SoftSkills = nonNil(req.SoftSkills)
	r.BorderStyle = orElse(req.BorderStyle, "squircle")
	r.ColorHex = orElse(req.ColorHex, "#000000")
	r.Lat = req.Lat
	r.Lng = req.Lng
	r.Disability = req.Disability
	r.Gender = req.Gender
	r.ExperienceLevel = req.ExperienceLevel
	r.JobType = req.JobType
	r.Age = req.Age
	r.SkillType = req.SkillType
}

func workExperiencesFrom(reqs []dtos.WorkExperienceRequest) ([]models.WorkExperience, error) {
	out := make([]models.WorkExperience, 0, len(reqs))
	for i, w := range reqs {
		start, err := parseDate(w.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: workExperiences[%d].startDate: %v", ErrInvalidInput, i, err)
		}
		end, err := parseDate(w.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: workExperiences[%d].endDate: %v", ErrInvalidInput, i, err)
		}
		out = append(out, models.WorkExperience{
			Position:    w.Position,
			Company:     w.Company,
			StartDate:   start,
			EndDate:     end,
			Description: w.Description,
		})
	}
	return out, nil
}

func educationsFrom(reqs []dtos.EducationRequest) ([]models.Education, error) {
	out := make([]models.Education, 0, len(reqs))
	for i, e := range reqs {
		start, err := parseDate(e.StartDate)
		if err != nil {
			return nil, fmt.Errorf("%w: educations[%d].startDate: %v", ErrInvalidInput, i, err)
		}
		end, err := parseDate(e.EndDate)
		if err != nil {
			return nil, fmt.Errorf("%w: educations[%d].endDate: %v", ErrInvalidInput, i, err)
		}
		out = append(out, models.Education{
			Degree:    e.Degree,
			School:    e.School,
			StartDate: start,
			EndDate:   end,
		})
	}
	return out, nil
}

// parseDate parses "YYYY-MM-DD". An empty string is no date.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orElse(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
