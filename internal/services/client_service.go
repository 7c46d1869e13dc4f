package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
	"github.com/SAP-F-2025/backoffice-service/internal/validator"
)

type clientService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewClientService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) ClientService {
	return &clientService{repo: repo, logger: logger, validator: validator}
}

func (s *clientService) Create(ctx context.Context, req *ClientRequest) (*models.Client, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	client := &models.Client{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
		Email: strings.TrimSpace(req.Email),
		Notes: req.Notes,
	}
	if err := s.repo.Client().Create(ctx, nil, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logger.Info("Client created", "client_id", client.ID)
	return client, nil
}

func (s *clientService) GetByID(ctx context.Context, id uint) (*models.Client, error) {
	client, err := s.repo.Client().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, id uint, req *ClientRequest) (*models.Client, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	client, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	client.Name = strings.TrimSpace(req.Name)
	client.Phone = strings.TrimSpace(req.Phone)
	client.Email = strings.TrimSpace(req.Email)
	client.Notes = req.Notes
	if err := s.repo.Client().Update(ctx, nil, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Client().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	s.logger.Info("Client deleted", "client_id", id)
	return nil
}

func (s *clientService) List(ctx context.Context, filters repositories.ClientFilters) (*ClientListResponse, error) {
	clients, total, err := s.repo.Client().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return &ClientListResponse{Clients: clients, Total: total}, nil
}
