package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
)

// Onboarding requirements.
const (
	RequirementDefaultResume = "defaultResume"
	RequirementCompanyName   = "companyName"
	RequirementWebsiteURL    = "websiteUrl"
)

type OnboardingStatus struct {
	Role     models.Role `json:"role"`
	Complete bool        `json:"onboardingComplete"`
	// Missing lists what still has to be filled in before Complete succeeds.
	Missing []string `json:"missing"`
}

type OnboardingService struct {
	DB       *gorm.DB
	Identity IdentityProvider
	Logger   *slog.Logger
}

func NewOnboardingService(db *gorm.DB, identity IdentityProvider, logger *slog.Logger) *OnboardingService {
	return &OnboardingService{DB: db, Identity: identity, Logger: logger}
}

// Status reports the signed-in user's onboarding state.
func (s *OnboardingService) Status(ctx context.Context, sess *auth.Session) (*OnboardingStatus, error) {
	missing, err := s.missing(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &OnboardingStatus{
		Role:     sess.Role,
		Complete: sess.IsOnboarded(),
		Missing:  missing,
	}, nil
}

// Complete marks onboarding as done at the identity provider once every
// requirement of the user's role is met.
func (s *OnboardingService) Complete(ctx context.Context, sess *auth.Session) (*OnboardingStatus, error) {
	missing, err := s.missing(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: onboarding incomplete, missing %v", ErrInvalidInput, missing)
	}

	md := auth.PublicMetadata{Role: sess.Role, OnboardingComplete: true}
	if err := s.Identity.UpdatePublicMetadata(ctx, sess.UserID, md); err != nil {
		return nil, fmt.Errorf("completing onboarding of %s: %w", sess.UserID, err)
	}
	s.Logger.Info("[onboarding] completed", "user", sess.UserID, "role", sess.Role)
	return &OnboardingStatus{Role: sess.Role, Complete: true, Missing: []string{}}, nil
}

func (s *OnboardingService) missing(ctx context.Context, sess *auth.Session) ([]string, error) {
	db := s.DB.WithContext(ctx)
	missing := []string{}

	switch sess.Role {
	case models.RoleCandidate:
		var c models.Candidate
		if err := db.Where("clerk_id = ?", sess.UserID).First(&c).Error; err != nil {
			return nil, fmt.Errorf("loading candidate %s: %w", sess.UserID, notFound(err))
		}
		if c.DefaultResumeID == nil {
			missing = append(missing, RequirementDefaultResume)
		}
	case models.RoleCompany:
		var c models.Company
		if err := db.Where("clerk_id = ?", sess.UserID).First(&c).Error; err != nil {
			return nil, fmt.Errorf("loading company %s: %w", sess.UserID, notFound(err))
		}
		if c.CompanyName == "" {
			missing = append(missing, RequirementCompanyName)
		}
		if c.WebsiteURL == "" {
			missing = append(missing, RequirementWebsiteURL)
		}
	default:
		return nil, fmt.Errorf("%w: session has no role", ErrForbidden)
	}
	return missing, nil
}
