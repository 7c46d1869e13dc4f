package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/backoffice-service/internal/integrations/loyverse"
	"github.com/SAP-F-2025/backoffice-service/internal/models"
	"github.com/SAP-F-2025/backoffice-service/internal/repositories"
)

// ReceiptFetcher pulls receipts from the POS. *loyverse.Client implements it.
type ReceiptFetcher interface {
	FetchReceipts(ctx context.Context, token string, since *time.Time) ([]loyverse.Receipt, error)
}

type loyverseService struct {
	repo    repositories.Repository
	fetcher ReceiptFetcher
	token   string
	logger  *slog.Logger
}

// NewLoyverseService builds the sync service. A non-empty token takes
// precedence over the active store stored in the database.
func NewLoyverseService(repo repositories.Repository, fetcher ReceiptFetcher, token string, logger *slog.Logger) LoyverseService {
	return &loyverseService{repo: repo, fetcher: fetcher, token: token, logger: logger}
}

func (s *loyverseService) resolveToken(ctx context.Context) (string, error) {
	if s.fetcher == nil {
		return "", ErrLoyverseNotConfigured
	}
	if s.token != "" {
		return s.token, nil
	}
	store, err := s.repo.Loyverse().GetActiveStore(ctx, nil)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrLoyverseNotConfigured
		}
		return "", fmt.Errorf("failed to get loyverse store: %w", err)
	}
	if store.Token == "" {
		return "", ErrLoyverseNotConfigured
	}
	return store.Token, nil
}

// SyncReceipts fetches receipts newer than since and upserts them by receipt
// id. Without since it resumes from the newest stored receipt.
func (s *loyverseService) SyncReceipts(ctx context.Context, since *time.Time) (*SyncResult, error) {
	token, err := s.resolveToken(ctx)
	if err != nil {
		return nil, err
	}

	if since == nil {
		since, err = s.repo.Loyverse().LatestReceiptDate(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest receipt date: %w", err)
		}
	}

	s.logger.Info("Syncing loyverse receipts", "since", since)
	receipts, err := s.fetcher.FetchReceipts(ctx, token, since)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{Fetched: len(receipts), Since: since}
	syncedAt := time.Now()
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, r := range receipts {
			created, err := s.repo.Loyverse().UpsertReceipt(ctx, tx, &models.LoyverseReceipt{
				ReceiptID:     r.ReceiptID,
				ReceiptNumber: r.ReceiptNumber,
				ReceiptDate:   r.ReceiptDate,
				TotalMoney:    decimal.NewFromFloat(r.TotalMoney).Round(2),
				RawJSON:       datatypes.JSON(r.Raw),
				SyncedAt:      syncedAt,
			})
			if err != nil {
				return fmt.Errorf("failed to store receipt %s: %w", r.ReceiptID, err)
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loyverse sync finished",
		"fetched", result.Fetched,
		"created", result.Created,
		"updated", result.Updated)
	return result, nil
}

func (s *loyverseService) ListReceipts(ctx context.Context, filters repositories.ReceiptFilters) (*ReceiptListResponse, error) {
	receipts, total, err := s.repo.Loyverse().ListReceipts(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return &ReceiptListResponse{Receipts: receipts, Total: total}, nil
}
