package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CandidateService struct {
	DB *gorm.DB
}

func NewCandidateService(db *gorm.DB) *CandidateService {
	return &CandidateService{DB: db}
}

var candidateSortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

// withResumeData preloads a candidate's default resume and its children.
func withResumeData(db *gorm.DB) *gorm.DB {
	return db.Preload("DefaultResume.WorkExperiences").Preload("DefaultResume.Educations")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern builds a case-insensitive substring pattern for likeClause.
// Wildcards in the search match literally.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}

// likeClause is "LOWER(column) LIKE ?" with backslash as the escape character.
func likeClause(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

// createOnce inserts v unless it collides with an existing unique key.
func createOnce(tx *gorm.DB, v any) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(v).Error
}

// orderBy returns "column dir" for a whitelisted sort key.
func orderBy(columns map[string]string, key, fallback, dir string) string {
	col, ok := columns[key]
	if !ok {
		col = fallback
	}
	if dir != "asc" {
		dir = "desc"
	}
	return col + " " + dir
}

// ListCandidates returns every candidate matching the search on name or email.
func (s *CandidateService) ListCandidates(ctx context.Context, q dtos.CandidateListQuery) ([]models.Candidate, error) {
	query := withResumeData(s.DB.WithContext(ctx))
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where(likeClause("name")+" OR "+likeClause("email"), p, p)
	}

	candidates := []models.Candidate{}
	err := query.Order(orderBy(candidateSortColumns, q.SortBy, "created_at", q.Order())).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	return candidates, nil
}

// GetCandidate loads a candidate by id with resume data.
func (s *CandidateService) GetCandidate(ctx context.Context, id uuid.UUID) (*models.Candidate, error) {
	var c models.Candidate
	if err := withResumeData(s.DB.WithContext(ctx)).First(&c, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("loading candidate %s: %w", id, notFound(err))
	}
	return &c, nil
}

// GetProfile reloads the acting candidate with resume data.
func (s *CandidateService) GetProfile(ctx context.Context, me *models.Candidate) (*models.Candidate, error) {
	return s.GetCandidate(ctx, me.ID)
}

func (s *CandidateService) UpdateProfile(ctx context.Context, me *models.Candidate, req dtos.CandidateProfileRequest) (*models.Candidate, error) {
	err := s.DB.WithContext(ctx).Model(me).Updates(map[string]any{
		"name":      req.Name,
		"image_url": req.ImageURL,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("updating candidate profile: %w", err)
	}
	return s.GetCandidate(ctx, me.ID)
}

// ToggleFavoriteJob adds a published job to the candidate's favorites, or
// removes it if it is already there.
func (s *CandidateService) ToggleFavoriteJob(ctx context.Context, me *models.Candidate, jobID uuid.UUID) (dtos.ToggleResponse, error) {
	var resp dtos.ToggleResponse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("candidate_id = ? AND job_id = ?", me.ID, jobID).Delete(&models.JobFavorite{})
		if res.Error != nil {
			return fmt.Errorf("removing favorite job: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			resp = dtos.ToggleResponse{Success: true, Action: dtos.ActionRemoved}
			return nil
		}

		if err := tx.Select("id").Where("is_published = ?", true).First(&models.Job{}, "id = ?", jobID).Error; err != nil {
			return fmt.Errorf("loading job %s: %w", jobID, notFound(err))
		}
		if err := createOnce(tx, &models.JobFavorite{CandidateID: me.ID, JobID: jobID}); err != nil {
			return fmt.Errorf("adding favorite job: %w", err)
		}
		resp = dtos.ToggleResponse{Success: true, Action: dtos.ActionAdded}
		return nil
	})
	if err != nil {
		return dtos.ToggleResponse{}, err
	}
	return resp, nil
}

// IsFavoriteJob reports whether the candidate has favorited the job.
func (s *CandidateService) IsFavoriteJob(ctx context.Context, me *models.Candidate, jobID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.JobFavorite{}).
		Where("candidate_id = ? AND job_id = ?", me.ID, jobID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking favorite job: %w", err)
	}
	return n > 0, nil
}

// ListFavoriteJobs returns the candidate's favorite published jobs ordered by
// job creation time.
func (s *CandidateService) ListFavoriteJobs(ctx context.Context, me *models.Candidate, q dtos.ListQuery) ([]models.Job, error) {
	query := s.DB.WithContext(ctx).
		Preload("Company").
		Joins("JOIN job_favorites ON job_favorites.job_id = jobs.id").
		Where("job_favorites.candidate_id = ? AND jobs.is_published = ?", me.ID, true)
	if q.Search != "" {
		query = query.Where(likeClause("jobs.title"), likePattern(q.Search))
	}

	jobs := []models.Job{}
	if err := query.Order("jobs.created_at " + q.Order()).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing favorite jobs: %w", err)
	}
	return jobs, nil
}
