package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

// catalogService manages the salon services offered at the front desk
type catalogService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCatalogService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CatalogService {
	return &catalogService{repo: repo, logger: logger, validator: validator}
}

func (s *catalogService) CreateCategory(ctx context.Context, req *ServiceCategoryRequest) (*models.ServiceCategory, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	taken, err := s.repo.Service().CategoryNameExists(ctx, nil, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if taken {
		return nil, ErrCategoryNameTaken
	}

	category := &models.ServiceCategory{
		Name:        name,
		Description: req.Description,
		ImagePath:   req.ImagePath,
		IsActive:    boolOr(req.IsActive, true),
	}
	if err := s.repo.Service().CreateCategory(ctx, nil, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryNameTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context, activeOnly bool) ([]*models.ServiceCategory, error) {
	categories, err := s.repo.Service().ListCategories(ctx, nil, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) CreateService(ctx context.Context, req *ServiceRequest) (*models.Service, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	service := &models.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CategoryID:  req.CategoryID,
		BasePrice:   req.BasePrice.Round(2),
		IsActive:    boolOr(req.IsActive, true),
	}
	if err := s.repo.Service().Create(ctx, nil, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info("Service created", "service_id", service.ID, "price", service.BasePrice.String())
	return s.GetService(ctx, service.ID)
}

func (s *catalogService) UpdateService(ctx context.Context, id uint, req *ServiceRequest) (*models.Service, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	service, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	service.Name = strings.TrimSpace(req.Name)
	service.Description = req.Description
	service.CategoryID = req.CategoryID
	service.BasePrice = req.BasePrice.Round(2)
	service.IsActive = boolOr(req.IsActive, service.IsActive)
	if err := s.repo.Service().Update(ctx, nil, service); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return s.GetService(ctx, id)
}

func (s *catalogService) GetService(ctx context.Context, id uint) (*models.Service, error) {
	service, err := s.repo.Service().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return service, nil
}

func (s *catalogService) ListServices(ctx context.Context, filters repositories.ServiceFilters) ([]*models.Service, error) {
	services, err := s.repo.Service().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *catalogService) checkCategory(ctx context.Context, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.repo.Service().GetCategory(ctx, nil, *categoryID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}
	return nil
}
