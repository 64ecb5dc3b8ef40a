package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/google/uuid"
)

// priceListService implements the PriceListSvcFacade interface.
type priceListService struct {
	BaseService
	priceListRepo portsrepo.PriceListRepositoryFacade
}

// PriceListServiceOption is a functional option for configuring the price list service
type PriceListServiceOption func(*priceListService)

// WithPriceListBranchAuthorizer adds branch authorizer dependency
func WithPriceListBranchAuthorizer(authorizer portssvc.BranchAuthorizerSvc) PriceListServiceOption {
	return func(s *priceListService) {
		s.BranchAuthorizer = authorizer
	}
}

// NewPriceListService creates a new price list service with the provided options
func NewPriceListService(repo portsrepo.PriceListRepositoryFacade, options ...PriceListServiceOption) portssvc.PriceListSvcFacade {
	svc := &priceListService{
		priceListRepo: repo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PriceListSvcFacade = (*priceListService)(nil)

// CreatePriceList persists a new named price list for a branch.
func (s *priceListService) CreatePriceList(ctx context.Context, branchID string, req dto.CreatePriceListRequest, userID string) (*domain.PriceList, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	now := time.Now()
	list := domain.PriceList{
		PriceListID: uuid.NewString(),
		BranchID:    branchID,
		Name:        req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.priceListRepo.SavePriceList(ctx, list); err != nil {
		s.LogError(ctx, err, "Failed to save price list", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to create price list: %w", err)
	}

	s.LogInfo(ctx, "Price list created",
		slog.String("price_list_id", list.PriceListID),
		slog.String("branch_id", branchID))
	return &list, nil
}

// ListPriceLists retrieves all price lists of a branch.
func (s *priceListService) ListPriceLists(ctx context.Context, branchID string, userID string) ([]domain.PriceList, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	lists, err := s.priceListRepo.ListPriceLists(ctx, branchID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list price lists", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to list price lists: %w", err)
	}
	if lists == nil {
		return []domain.PriceList{}, nil
	}
	return lists, nil
}

// SetDefault flags a list as the branch default, clearing any previous default
// in the same transaction so intakes never observe two defaults.
func (s *priceListService) SetDefault(ctx context.Context, branchID string, priceListID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.findInBranch(ctx, branchID, priceListID); err != nil {
		return err
	}

	if err := s.priceListRepo.SetDefaultPriceList(ctx, branchID, priceListID, userID); err != nil {
		s.LogError(ctx, err, "Failed to set default price list", slog.String("price_list_id", priceListID))
		return err
	}

	s.LogInfo(ctx, "Default price list changed",
		slog.String("branch_id", branchID),
		slog.String("price_list_id", priceListID))
	return nil
}

// UpsertEntry configures one (category, kind) cell. Zero is a valid price.
func (s *priceListService) UpsertEntry(ctx context.Context, branchID string, priceListID string, req dto.UpsertEntryRequest, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return err
	}
	if req.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative", apperrors.ErrValidation)
	}

	if _, err := s.findInBranch(ctx, branchID, priceListID); err != nil {
		return err
	}

	entry := domain.PriceListEntry{
		PriceListID: priceListID,
		Category:    req.Category,
		Kind:        req.Kind,
		UnitPrice:   req.UnitPrice,
	}
	if err := s.priceListRepo.UpsertEntry(ctx, entry, userID); err != nil {
		s.LogError(ctx, err, "Failed to upsert price entry",
			slog.String("price_list_id", priceListID),
			slog.String("category", string(req.Category)),
			slog.String("kind", string(req.Kind)))
		return err
	}
	return nil
}

// DeleteEntry removes one cell of a list, turning it back into "not configured"
// so the resolver falls through to the built-in matrix.
func (s *priceListService) DeleteEntry(ctx context.Context, branchID string, priceListID string, category domain.VehicleCategory, kind domain.ServiceKind, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return err
	}

	if _, err := s.findInBranch(ctx, branchID, priceListID); err != nil {
		return err
	}

	if err := s.priceListRepo.DeleteEntry(ctx, priceListID, category, kind); err != nil {
		s.LogError(ctx, err, "Failed to delete price entry",
			slog.String("price_list_id", priceListID),
			slog.String("category", string(category)),
			slog.String("kind", string(kind)))
		return err
	}
	return nil
}

// GetEffectiveSnapshot returns the default list's entries, or an empty snapshot
// when the branch has never configured prices.
func (s *priceListService) GetEffectiveSnapshot(ctx context.Context, branchID string) (domain.PriceSnapshot, error) {
	list, err := s.priceListRepo.FindDefaultPriceList(ctx, branchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.PriceSnapshot{}, nil
		}
		s.LogError(ctx, err, "Failed to find default price list", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to load default price list: %w", err)
	}

	snapshot, err := s.priceListRepo.FindEntriesByListID(ctx, list.PriceListID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load price list entries", slog.String("price_list_id", list.PriceListID))
		return nil, fmt.Errorf("failed to load price entries: %w", err)
	}
	return snapshot, nil
}

func (s *priceListService) findInBranch(ctx context.Context, branchID string, priceListID string) (*domain.PriceList, error) {
	list, err := s.priceListRepo.FindPriceListByID(ctx, priceListID)
	if err != nil {
		return nil, err
	}
	if list.BranchID != branchID {
		return nil, apperrors.ErrNotFound
	}
	return list, nil
}
