package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type wigService struct {
	repo      repositories.Repository
	audit     *auditRecorder
	logger    *slog.Logger
	opLogger  *ServiceLogger
	validator *validator.Validator
	now       func() time.Time
}

func NewWigService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) WigService {
	opLogger := NewServiceLogger(logger, LogConfig{Service: "wigs", Component: "registry"})
	return &wigService{
		repo:      repo,
		audit:     newAuditRecorder(repo, opLogger),
		logger:    logger,
		opLogger:  opLogger,
		validator: validator,
		now:       time.Now,
	}
}

// WigCode formats a registry code such as WIG-2610-0001.
func WigCode(prefix models.WigCodePrefix, at time.Time, n int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, at.Format("0601"), n)
}

// nextCode draws the next number of the prefix's monthly sequence inside tx.
func (s *wigService) nextCode(ctx context.Context, tx *gorm.DB, prefix models.WigCodePrefix) (string, error) {
	at := s.now()
	n, err := s.repo.Wig().NextSequence(ctx, tx, fmt.Sprintf("%s-%s", prefix, at.Format("0601")))
	if err != nil {
		return "", fmt.Errorf("failed to draw %s code: %w", prefix, err)
	}
	return WigCode(prefix, at, n), nil
}

// ===== PRODUCTS =====

func (s *wigService) CreateProduct(ctx context.Context, req *WigProductRequest, actor Actor) (*models.WigProduct, error) {
	op := s.opLogger.WithOperation(ctx, "create_wig_product", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	product := &models.WigProduct{
		Name:   strings.TrimSpace(req.Name),
		Status: req.Status,
		Price:  req.Price.Round(2),
		Notes:  req.Notes,
	}
	if product.Status == "" {
		product.Status = models.WigInStock
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		code, err := s.nextCode(ctx, tx, models.WigCodeProduct)
		if err != nil {
			return err
		}
		product.Code = code
		if err := s.repo.Wig().CreateProduct(ctx, tx, product); err != nil {
			return fmt.Errorf("failed to create wig product: %w", err)
		}
		return nil
	})
	op.LogResult(product.ID, "wig_product", err)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *wigService) GetProduct(ctx context.Context, id uint) (*models.WigProduct, error) {
	product, err := s.repo.Wig().GetProduct(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrWigProductNotFound
		}
		return nil, fmt.Errorf("failed to get wig product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the editable fields. The code never changes.
func (s *wigService) UpdateProduct(ctx context.Context, id uint, req *WigProductRequest, actor Actor) (*models.WigProduct, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var product *models.WigProduct
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		product, err = s.repo.Wig().GetProduct(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrWigProductNotFound
			}
			return fmt.Errorf("failed to get wig product: %w", err)
		}

		previous := product.Status
		product.Name = strings.TrimSpace(req.Name)
		product.Price = req.Price.Round(2)
		product.Notes = req.Notes
		if req.Status != "" {
			product.Status = req.Status
		}
		if err := s.repo.Wig().UpdateProduct(ctx, tx, product); err != nil {
			return fmt.Errorf("failed to update wig product: %w", err)
		}
		if previous == product.Status {
			return nil
		}
		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditWigStatusChanged,
			ResourceID:   product.ID,
			ResourceType: "wig_product",
			Action:       "update",
			OldValue:     previous,
			NewValue:     product.Status,
			Metadata:     map[string]interface{}{"code": product.Code},
		})
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *wigService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Wig().DeleteProduct(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete wig product: %w", err)
	}
	return nil
}

func (s *wigService) ListProducts(ctx context.Context, query WigListQuery) ([]*models.WigProduct, error) {
	filters, err := parseWigQuery(query)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.Wig().ListProducts(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list wig products: %w", err)
	}
	return products, nil
}

// ===== CARE =====

func (s *wigService) CreateCare(ctx context.Context, req *CareWigRequest, actor Actor) (*models.CareWig, error) {
	op := s.opLogger.WithOperation(ctx, "create_care_wig", actor.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	care := &models.CareWig{
		Client:       strings.TrimSpace(req.Client),
		Status:       req.Status,
		PromisedDate: req.PromisedDate,
		Notes:        req.Notes,
	}
	if care.Status == "" {
		care.Status = models.CareReceived
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		code, err := s.nextCode(ctx, tx, models.WigCodeCare)
		if err != nil {
			return err
		}
		care.Code = code
		if err := s.repo.Wig().CreateCare(ctx, tx, care); err != nil {
			return fmt.Errorf("failed to create care wig: %w", err)
		}
		return nil
	})
	op.LogResult(care.ID, "care_wig", err)
	if err != nil {
		return nil, err
	}
	return care, nil
}

func (s *wigService) GetCare(ctx context.Context, id uint) (*models.CareWig, error) {
	care, err := s.repo.Wig().GetCare(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCareWigNotFound
		}
		return nil, fmt.Errorf("failed to get care wig: %w", err)
	}
	return care, nil
}

func (s *wigService) UpdateCare(ctx context.Context, id uint, req *CareWigRequest, actor Actor) (*models.CareWig, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var care *models.CareWig
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		care, err = s.repo.Wig().GetCare(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCareWigNotFound
			}
			return fmt.Errorf("failed to get care wig: %w", err)
		}

		previous := care.Status
		care.Client = strings.TrimSpace(req.Client)
		care.PromisedDate = req.PromisedDate
		care.Notes = req.Notes
		if req.Status != "" {
			care.Status = req.Status
		}
		if err := s.repo.Wig().UpdateCare(ctx, tx, care); err != nil {
			return fmt.Errorf("failed to update care wig: %w", err)
		}
		if previous == care.Status {
			return nil
		}
		return s.audit.Record(ctx, tx, actor, AuditEvent{
			Type:         models.AuditWigStatusChanged,
			ResourceID:   care.ID,
			ResourceType: "care_wig",
			Action:       "update",
			OldValue:     previous,
			NewValue:     care.Status,
			Metadata:     map[string]interface{}{"code": care.Code},
		})
	})
	if err != nil {
		return nil, err
	}
	return care, nil
}

func (s *wigService) DeleteCare(ctx context.Context, id uint) error {
	if _, err := s.GetCare(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Wig().DeleteCare(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete care wig: %w", err)
	}
	return nil
}

func (s *wigService) ListCare(ctx context.Context, query WigListQuery) ([]*models.CareWig, error) {
	filters, err := parseWigQuery(query)
	if err != nil {
		return nil, err
	}
	care, err := s.repo.Wig().ListCare(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list care wigs: %w", err)
	}
	return care, nil
}

// parseWigQuery checks the date bounds. A start after the end is reported
// on end_date.
func parseWigQuery(query WigListQuery) (repositories.WigFilters, error) {
	filters := repositories.WigFilters{
		Status: strings.TrimSpace(query.Status),
		Code:   strings.TrimSpace(query.Code),
		Search: strings.TrimSpace(query.Search),
	}

	var errs ValidationErrors
	parse := func(field, value string) *time.Time {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		day, err := time.Parse(time.DateOnly, value)
		if err != nil {
			errs = append(errs, *NewValidationError(field, "invalid date format, expected YYYY-MM-DD", value))
			return nil
		}
		return &day
	}
	filters.StartDate = parse("start_date", query.StartDate)
	filters.EndDate = parse("end_date", query.EndDate)
	if len(errs) > 0 {
		return filters, errs
	}

	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(*filters.EndDate) {
		return filters, validationFailure("end_date", "must be on or after start_date", query.EndDate)
	}
	return filters, nil
}
