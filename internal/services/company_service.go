package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"gorm.io/gorm"
)

type CompanyService struct {
	DB       *gorm.DB
	Analysis *AnalysisService
}

func NewCompanyService(db *gorm.DB, analysis *AnalysisService) *CompanyService {
	return &CompanyService{DB: db, Analysis: analysis}
}

var companySortColumns = map[string]string{
	"companyName": "company_name",
	"createdAt":   "created_at",
}

// ListCompanies returns companies whose name matches the search. An empty
// search matches every company.
func (s *CompanyService) ListCompanies(ctx context.Context, q dtos.CompanyListQuery) ([]models.Company, error) {
	query := s.DB.WithContext(ctx)
	if q.Search != "" {
		query = query.Where(likeClause("company_name"), likePattern(q.Search))
	}

	companies := []models.Company{}
	err := query.Order(orderBy(companySortColumns, q.SortBy, "created_at", q.Order())).
		Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return companies, nil
}

func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	if err := s.DB.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("loading company %s: %w", id, notFound(err))
	}
	return &c, nil
}

func (s *CompanyService) GetProfile(ctx context.Context, me *models.Company) (*models.Company, error) {
	return s.GetCompany(ctx, me.ID)
}

// UpdateProfile rewrites the acting company's profile. The email has to be on
// the website's domain.
func (s *CompanyService) UpdateProfile(ctx context.Context, me *models.Company, req dtos.CompanyProfileRequest) (*models.Company, error) {
	if !auth.EmailMatchesDomain(req.Email, req.WebsiteURL) {
		return nil, fmt.Errorf("%w: email must use the %s domain", ErrInvalidInput, auth.WebsiteDomain(req.WebsiteURL))
	}

	err := s.DB.WithContext(ctx).Model(&models.Company{}).Where("id = ?", me.ID).Updates(map[string]any{
		"company_name": req.CompanyName,
		"email":        req.Email,
		"website_url":  req.WebsiteURL,
		"logo_url":     req.LogoURL,
		"description":  req.Description,
		"industry":     req.Industry,
		"company_size": req.CompanySize,
		"city":         req.City,
		"country":      req.Country,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("updating company profile: %w", err)
	}
	s.Analysis.Invalidate()
	return s.GetCompany(ctx, me.ID)
}

// ToggleFavoriteCandidate adds the candidate to the company's favorites, or
// removes it if it is already there.
func (s *CompanyService) ToggleFavoriteCandidate(ctx context.Context, me *models.Company, candidateID uuid.UUID) (dtos.ToggleResponse, error) {
	var resp dtos.ToggleResponse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("company_id = ? AND candidate_id = ?", me.ID, candidateID).Delete(&models.FavoriteCandidate{})
		if res.Error != nil {
			return fmt.Errorf("removing favorite candidate: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			resp = dtos.ToggleResponse{Success: true, Action: dtos.ActionRemoved}
			return nil
		}

		if err := tx.Select("id").First(&models.Candidate{}, "id = ?", candidateID).Error; err != nil {
			return fmt.Errorf("loading candidate %s: %w", candidateID, notFound(err))
		}
		if err := createOnce(tx, &models.FavoriteCandidate{CompanyID: me.ID, CandidateID: candidateID}); err != nil {
			return fmt.Errorf("adding favorite candidate: %w", err)
		}
		resp = dtos.ToggleResponse{Success: true, Action: dtos.ActionAdded}
		return nil
	})
	if err != nil {
		return dtos.ToggleResponse{}, err
	}
	return resp, nil
}

// ListFavoriteCandidates returns the company's favorite candidates with their
// resume data.
func (s *CompanyService) ListFavoriteCandidates(ctx context.Context, me *models.Company, q dtos.CandidateListQuery) ([]models.Candidate, error) {
	query := withResumeData(s.DB.WithContext(ctx)).
		Joins("JOIN favorite_candidates ON favorite_candidates.candidate_id = candidates.id").
		Where("favorite_candidates.company_id = ?", me.ID)
	if q.Search != "" {
		p := likePattern(q.Search)
		query = query.Where(likeClause("candidates.name")+" OR "+likeClause("candidates.email"), p, p)
	}

	candidates := []models.Candidate{}
	order := "candidates." + orderBy(candidateSortColumns, q.SortBy, "created_at", q.Order())
	if err := query.Order(order).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("listing favorite candidates: %w", err)
	}
	return candidates, nil
}
