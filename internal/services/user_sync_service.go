package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/metrics"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityProvider is the part of the identity provider's backend API the
// services write to.
type IdentityProvider interface {
	UpdatePublicMetadata(ctx context.Context, userID string, md auth.PublicMetadata) error
	DeleteUser(ctx context.Context, userID string) error
}

// UserSyncService mirrors identity provider users into candidates and
// companies.
type UserSyncService struct {
	DB       *gorm.DB
	Identity IdentityProvider
	Analysis *AnalysisService
	Logger   *slog.Logger
}

func NewUserSyncService(db *gorm.DB, identity IdentityProvider, analysis *AnalysisService, logger *slog.Logger) *UserSyncService {
	return &UserSyncService{DB: db, Identity: identity, Analysis: analysis, Logger: logger}
}

// HandleEvent applies one webhook delivery and returns its outcome. A message
// id that was already processed is a duplicate and changes nothing. The
// delivery is recorded only when it succeeds, so retries of failed
// deliveries run again.
func (s *UserSyncService) HandleEvent(ctx context.Context, msgID string, evt dtos.WebhookEvent) (string, error) {
	outcome := metrics.OutcomeProcessed
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProcessedWebhook{ID: msgID, EventType: evt.Type})
		if res.Error != nil {
			return fmt.Errorf("recording webhook %s: %w", msgID, res.Error)
		}
		if res.RowsAffected == 0 {
			outcome = metrics.OutcomeDuplicate
			return nil
		}

		switch evt.Type {
		case dtos.EventUserCreated:
			return s.userCreated(ctx, tx, evt.Data)
		case dtos.EventUserUpdated:
			return s.userUpdated(tx, evt.Data)
		case dtos.EventUserDeleted:
			return s.userDeleted(tx, evt.Data)
		default:
			outcome = metrics.OutcomeIgnored
			return nil
		}
	})
	if err != nil {
		outcome = metrics.OutcomeFailed
		if isInvalidInput(err) {
			outcome = metrics.OutcomeRejected
		}
		metrics.WebhookEvents.WithLabelValues(evt.Type, outcome).Inc()
		s.Logger.Warn("[webhook] event failed", "id", msgID, "type", evt.Type, "user", evt.Data.ID, "error", err)
		return outcome, err
	}

	metrics.WebhookEvents.WithLabelValues(evt.Type, outcome).Inc()
	s.Logger.Info("[webhook] event handled", "id", msgID, "type", evt.Type, "user", evt.Data.ID, "outcome", outcome)
	if outcome == metrics.OutcomeProcessed {
		s.Analysis.Invalidate()
	}
	return outcome, nil
}

// userCreated stores the role as public metadata and creates the candidate or
// company. Users signed up without a role are deleted at the provider.
func (s *UserSyncService) userCreated(ctx context.Context, tx *gorm.DB, d dtos.WebhookUserData) error {
	role := models.Role(d.UnsafeMetadata.Role)
	if !role.Valid() {
		if err := s.Identity.DeleteUser(ctx, d.ID); err != nil {
			s.Logger.Error("[webhook] deleting user without role", "user", d.ID, "error", err)
		}
		return fmt.Errorf("%w: user %s has no role", ErrInvalidInput, d.ID)
	}

	if err := s.Identity.UpdatePublicMetadata(ctx, d.ID, auth.PublicMetadata{Role: role}); err != nil {
		return fmt.Errorf("setting public metadata of %s: %w", d.ID, err)
	}

	var record any
	switch role {
	case models.RoleCandidate:
		record = &models.Candidate{
			ClerkID:    d.ID,
			Name:       d.DisplayName(),
			Email:      d.PrimaryEmail(),
			ImageURL:   d.ImageURL,
			IsVerified: d.EmailVerified(),
		}
	case models.RoleCompany:
		record = &models.Company{
			ClerkID:     d.ID,
			CompanyName: orElse(d.UnsafeMetadata.CompanyName, d.DisplayName()),
			Email:       d.PrimaryEmail(),
			WebsiteURL:  d.UnsafeMetadata.WebsiteURL,
			LogoURL:     d.ImageURL,
			IsVerified:  d.EmailVerified(),
		}
	}
	err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "clerk_id"}}, DoNothing: true}).
		Create(record).Error
	if err != nil {
		return fmt.Errorf("creating %s for %s: %w", role, d.ID, err)
	}
	return nil
}

func (s *UserSyncService) userUpdated(tx *gorm.DB, d dtos.WebhookUserData) error {
	switch models.Role(d.UnsafeMetadata.Role) {
	case models.RoleCandidate:
		return tx.Model(&models.Candidate{}).Where("clerk_id = ?", d.ID).Updates(map[string]any{
			"name":        d.DisplayName(),
			"image_url":   d.ImageURL,
			"email":       d.PrimaryEmail(),
			"is_verified": d.EmailVerified(),
		}).Error
	case models.RoleCompany:
		return tx.Model(&models.Company{}).Where("clerk_id = ?", d.ID).Updates(map[string]any{
			"company_name": orElse(d.UnsafeMetadata.CompanyName, d.DisplayName()),
			"logo_url":     d.ImageURL,
			"website_url":  d.UnsafeMetadata.WebsiteURL,
			"is_verified":  d.EmailVerified(),
		}).Error
	}
	return nil
}

func (s *UserSyncService) userDeleted(tx *gorm.DB, d dtos.WebhookUserData) error {
	if d.ID == "" {
		return fmt.Errorf("%w: deleted user without id", ErrInvalidInput)
	}
	if err := deleteCandidate(tx, d.ID); err != nil {
		return err
	}
	return deleteCompany(tx, d.ID)
}

type deletion struct {
	model any
	query string
	arg   any
}

// deleteCandidate removes a candidate and everything it owns.
func deleteCandidate(tx *gorm.DB, clerkID string) error {
	var c models.Candidate
	err := tx.Where("clerk_id = ?", clerkID).Limit(1).Find(&c).Error
	if err != nil || c.ID == uuid.Nil {
		return err
	}

	var resumeIDs, appIDs []uuid.UUID
	if err := tx.Model(&models.Resume{}).Where("candidate_id = ?", c.ID).Pluck("id", &resumeIDs).Error; err != nil {
		return fmt.Errorf("listing resumes of %s: %w", clerkID, err)
	}
	if err := tx.Model(&models.JobApplication{}).Where("candidate_id = ?", c.ID).Pluck("id", &appIDs).Error; err != nil {
		return fmt.Errorf("listing applications of %s: %w", clerkID, err)
	}
	if err := tx.Model(&c).Update("default_resume_id", nil).Error; err != nil {
		return fmt.Errorf("clearing default resume of %s: %w", clerkID, err)
	}

	steps := []deletion{
		{&models.FavoriteCandidate{}, "candidate_id = ?", c.ID},
		{&models.JobFavorite{}, "candidate_id = ?", c.ID},
	}
	if len(appIDs) > 0 {
		steps = append(steps, deletion{&models.ApplicationEvent{}, "application_id IN ?", appIDs})
	}
	steps = append(steps, deletion{&models.JobApplication{}, "candidate_id = ?", c.ID})
	if len(resumeIDs) > 0 {
		steps = append(steps,
			deletion{&models.WorkExperience{}, "resume_id IN ?", resumeIDs},
			deletion{&models.Education{}, "resume_id IN ?", resumeIDs},
		)
	}
	steps = append(steps, deletion{&models.Resume{}, "candidate_id = ?", c.ID})
	for _, st := range steps {
		if err := tx.Where(st.query, st.arg).Delete(st.model).Error; err != nil {
			return fmt.Errorf("deleting candidate %s: %w", clerkID, err)
		}
	}
	if err := tx.Delete(&c).Error; err != nil {
		return fmt.Errorf("deleting candidate %s: %w", clerkID, err)
	}
	return nil
}

// deleteCompany removes a company with its jobs and their dependents.
func deleteCompany(tx *gorm.DB, clerkID string) error {
	var c models.Company
	err := tx.Where("clerk_id = ?", clerkID).Limit(1).Find(&c).Error
	if err != nil || c.ID == uuid.Nil {
		return err
	}

	var jobIDs []uuid.UUID
	if err := tx.Model(&models.Job{}).Where("company_id = ?", c.ID).Pluck("id", &jobIDs).Error; err != nil {
		return fmt.Errorf("listing jobs of %s: %w", clerkID, err)
	}
	if len(jobIDs) > 0 {
		for _, m := range []any{&models.ApplicationEvent{}, &models.JobApplication{}, &models.JobFavorite{}} {
			if err := tx.Where("job_id IN ?", jobIDs).Delete(m).Error; err != nil {
				return fmt.Errorf("deleting jobs of %s: %w", clerkID, err)
			}
		}
	}
	if err := tx.Where("company_id = ?", c.ID).Delete(&models.FavoriteCandidate{}).Error; err != nil {
		return fmt.Errorf("deleting favorites of %s: %w", clerkID, err)
	}
	if err := tx.Where("company_id = ?", c.ID).Delete(&models.Job{}).Error; err != nil {
		return fmt.Errorf("deleting jobs of %s: %w", clerkID, err)
	}
	if err := tx.Delete(&c).Error; err != nil {
		return fmt.Errorf("deleting company %s: %w", clerkID, err)
	}
	return nil
}

// PurgeProcessed forgets delivery ids older than the retention period and
// returns how many were removed.
func (s *UserSyncService) PurgeProcessed(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	res := s.DB.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ProcessedWebhook{})
	if res.Error != nil {
		return 0, fmt.Errorf("purging processed webhooks: %w", res.Error)
	}
	return res.RowsAffected, nil
}
