// internal/services/promotion_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
	"github.com/ouishop/marketplace-backend/internal/utils"
)

// PromotionService owns discount campaigns and keeps the per-product
// snapshots in sync with them. Propagation is synchronous and
// product-by-product: each write is idempotent and last-writer-wins, and a
// partial failure leaves already-written products as they are rather than
// rolling the whole batch back.
type PromotionService struct {
	db             *gorm.DB
	shopService    *ShopService
	productService *ProductService
}

type CreatePromotionRequest struct {
	ShopID          uuid.UUID   `json:"shop_id" validate:"required"`
	Name            string      `json:"name" validate:"required,min=3,max=255"`
	DiscountPercent float64     `json:"discount_percent" validate:"required,gt=0,lte=100"`
	ProductIDs      []uuid.UUID `json:"product_ids" validate:"required,min=1"`
	StartDate       time.Time   `json:"start_date" validate:"required"`
	EndDate         time.Time   `json:"end_date" validate:"required"`
	Budget          float64     `json:"budget,omitempty" validate:"omitempty,min=0"`
}

type UpdatePromotionRequest struct {
	Name            string      `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	DiscountPercent *float64    `json:"discount_percent,omitempty" validate:"omitempty,gt=0,lte=100"`
	ProductIDs      []uuid.UUID `json:"product_ids,omitempty"`
	StartDate       *time.Time  `json:"start_date,omitempty"`
	EndDate         *time.Time  `json:"end_date,omitempty"`
	IsActive        *bool       `json:"is_active,omitempty"`
	Budget          *float64    `json:"budget,omitempty" validate:"omitempty,min=0"`
}

type PromotionSearchParams struct {
	utils.PaginationParams
	ShopID *uuid.UUID `json:"shop_id,omitempty"`
	All    bool       `json:"all,omitempty"`
}

func NewPromotionService(db *gorm.DB, shopService *ShopService, productService *ProductService) *PromotionService {
	return &PromotionService{
		db:             db,
		shopService:    shopService,
		productService: productService,
	}
}

func (s *PromotionService) CreatePromotion(requesterID uuid.UUID, requesterType models.UserType, req *CreatePromotionRequest) (*models.Promotion, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !req.EndDate.After(req.StartDate) {
		return nil, errors.New("end_date must be after start_date")
	}

	ownerID, err := s.shopService.GetOwner(req.ShopID)
	if err != nil {
		return nil, err
	}
	if ownerID != requesterID && requesterType != models.UserTypeAdmin {
		return nil, fmt.Errorf("%w: shop %s", ErrForbidden, req.ShopID)
	}

	promotion := &models.Promotion{
		ShopID:          req.ShopID,
		Name:            req.Name,
		DiscountPercent: req.DiscountPercent,
		ProductIDs:      models.UUIDSlice(req.ProductIDs),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		IsActive:        true,
		Budget:          req.Budget,
		Stats:           models.JSONB{},
	}

	if err := s.db.Create(promotion).Error; err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}

	s.propagate(promotion, promotion.ProductIDs)

	return promotion, nil
}

func (s *PromotionService) GetPromotion(id uuid.UUID) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := s.db.First(&promotion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPromotionNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &promotion, nil
}

func (s *PromotionService) GetPromotions(params PromotionSearchParams, requesterID uuid.UUID, requesterType models.UserType) ([]models.Promotion, int64, error) {
	query := s.db.Model(&models.Promotion{})

	if params.ShopID != nil {
		query = query.Where("shop_id = ?", *params.ShopID)
	}

	// The "all" view exposes inactive and out-of-window campaigns, which only
	// the owning shop or an admin may browse.
	showAll := false
	if params.All {
		if requesterType == models.UserTypeAdmin {
			showAll = true
		} else if params.ShopID != nil {
			ownerID, err := s.shopService.GetOwner(*params.ShopID)
			if err != nil {
				return nil, 0, err
			}
			showAll = ownerID == requesterID
		}
	}

	if !showAll {
		now := time.Now()
		query = query.Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count promotions: %w", err)
	}

	allowedSortFields := []string{"created_at", "start_date", "end_date", "discount_percent"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var promotions []models.Promotion
	if err := query.Find(&promotions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch promotions: %w", err)
	}

	return promotions, total, nil
}

func (s *PromotionService) UpdatePromotion(id uuid.UUID, requesterID uuid.UUID, requesterType models.UserType, req *UpdatePromotionRequest) (*models.Promotion, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	promotion, err := s.GetPromotion(id)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.shopService.GetOwner(promotion.ShopID)
	if err != nil {
		return nil, err
	}
	if ownerID != requesterID && requesterType != models.UserTypeAdmin {
		return nil, fmt.Errorf("%w: promotion %s", ErrForbidden, id)
	}

	previousIDs := promotion.ProductIDs

	if req.Name != "" {
		promotion.Name = req.Name
	}
	if req.DiscountPercent != nil {
		promotion.DiscountPercent = *req.DiscountPercent
	}
	if req.ProductIDs != nil {
		promotion.ProductIDs = models.UUIDSlice(req.ProductIDs)
	}
	if req.StartDate != nil {
		promotion.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		promotion.EndDate = *req.EndDate
	}
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}
	if req.Budget != nil {
		promotion.Budget = *req.Budget
	}

	if !promotion.EndDate.After(promotion.StartDate) {
		return nil, errors.New("end_date must be after start_date")
	}

	if err := s.db.Save(promotion).Error; err != nil {
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}

	// Products dropped from the campaign get their snapshot deactivated;
	// everything still (or newly) referenced gets it rewritten from the saved
	// row.
	for _, pid := range previousIDs {
		if !promotion.ProductIDs.Contains(pid) {
			if err := s.productService.ClearPromotionSnapshot(pid); err != nil {
				logrus.WithError(err).WithField("product_id", pid).Warn("Failed to clear promotion snapshot")
			}
		}
	}
	s.propagate(promotion, promotion.ProductIDs)

	return promotion, nil
}

func (s *PromotionService) DeletePromotion(id uuid.UUID, requesterID uuid.UUID, requesterType models.UserType) error {
	promotion, err := s.GetPromotion(id)
	if err != nil {
		return err
	}

	ownerID, err := s.shopService.GetOwner(promotion.ShopID)
	if err != nil {
		return err
	}
	if ownerID != requesterID && requesterType != models.UserTypeAdmin {
		return fmt.Errorf("%w: promotion %s", ErrForbidden, id)
	}

	for _, pid := range promotion.ProductIDs {
		if err := s.productService.ClearPromotionSnapshot(pid); err != nil {
			logrus.WithError(err).WithField("product_id", pid).Warn("Failed to clear promotion snapshot")
		}
	}

	if err := s.db.Delete(promotion).Error; err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}

	return nil
}

// propagate copies the campaign's snapshot onto each referenced product,
// sequentially and without a wrapping transaction. A failed product is logged
// and skipped; re-running the propagation converges.
func (s *PromotionService) propagate(promotion *models.Promotion, productIDs models.UUIDSlice) {
	snap := promotion.Snapshot()
	for _, pid := range productIDs {
		if err := s.productService.ApplyPromotionSnapshot(pid, snap); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"promotion_id": promotion.ID,
				"product_id":   pid,
			}).Warn("Failed to propagate promotion snapshot")
		}
	}
}
