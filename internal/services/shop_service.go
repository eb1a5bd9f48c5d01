// internal/services/shop_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
	"github.com/ouishop/marketplace-backend/internal/utils"
)

type ShopService struct {
	db *gorm.DB
}

type CreateShopRequest struct {
	Name        string                 `json:"name" validate:"required,min=3,max=255"`
	Description string                 `json:"description,omitempty"`
	Address     map[string]interface{} `json:"address,omitempty"`
	Images      []string               `json:"images,omitempty"`
}

type UpdateShopRequest struct {
	Name        string                 `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description string                 `json:"description,omitempty"`
	Address     map[string]interface{} `json:"address,omitempty"`
	Images      []string               `json:"images,omitempty"`
	IsActive    *bool                  `json:"is_active,omitempty"`
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{db: db}
}

func (s *ShopService) CreateShop(ownerID uuid.UUID, req *CreateShopRequest) (*models.Shop, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, ownerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if owner.Status != models.UserStatusActive {
		return nil, errors.New("owner account is not active")
	}

	shop := &models.Shop{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
		Address:     models.JSONB(req.Address),
		Images:      req.Images,
		IsActive:    true,
	}

	if err := s.db.Create(shop).Error; err != nil {
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	return shop, nil
}

func (s *ShopService) GetShop(id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.Preload("Owner").First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrShopNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &shop, nil
}

// GetOwner resolves the user who owns a shop, used for authorization checks.
func (s *ShopService) GetOwner(shopID uuid.UUID) (uuid.UUID, error) {
	var shop models.Shop
	if err := s.db.Select("id", "owner_id").First(&shop, shopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, fmt.Errorf("%w: %s", ErrShopNotFound, shopID)
		}
		return uuid.Nil, fmt.Errorf("database error: %w", err)
	}
	return shop.OwnerID, nil
}

func (s *ShopService) UpdateShop(id uuid.UUID, requesterID uuid.UUID, requesterType models.UserType, req *UpdateShopRequest) (*models.Shop, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var shop models.Shop
	if err := s.db.First(&shop, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrShopNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if shop.OwnerID != requesterID && requesterType != models.UserTypeAdmin {
		return nil, fmt.Errorf("%w: shop %s", ErrForbidden, id)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Address != nil {
		updates["address"] = models.JSONB(req.Address)
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.db.Model(&shop).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update shop: %w", err)
	}

	return &shop, nil
}

func (s *ShopService) SearchShops(params utils.PaginationParams) ([]models.Shop, int64, error) {
	query := s.db.Model(&models.Shop{}).Where("is_active = ?", true)

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count shops: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var shops []models.Shop
	if err := query.Find(&shops).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch shops: %w", err)
	}

	return shops, total, nil
}
