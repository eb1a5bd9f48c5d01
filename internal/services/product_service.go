// internal/services/product_service.go
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

// ProductService is the product catalog. Besides CRUD it exposes the three
// primitives the order/promotion core consumes: GetProduct, DecrementStock
// and the promotion snapshot writers.
type ProductService struct {
	db          *gorm.DB
	shopService *ShopService
}

type CreateProductRequest struct {
	ShopID      uuid.UUID              `json:"shop_id" validate:"required"`
	Name        string                 `json:"name" validate:"required,min=3,max=255"`
	Description string                 `json:"description,omitempty"`
	Price       float64                `json:"price" validate:"required,gt=0"`
	PriceTTC    *float64               `json:"price_ttc,omitempty" validate:"omitempty,gt=0"`
	Stock       int                    `json:"stock" validate:"min=0"`
	Images      []string               `json:"images,omitempty"`
}

type UpdateProductRequest struct {
	Name        string   `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price,omitempty" validate:"omitempty,gt=0"`
	PriceTTC    *float64 `json:"price_ttc,omitempty" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,min=0"`
	Images      []string `json:"images,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	ShopID   *uuid.UUID `json:"shop_id,omitempty"`
	PriceMin *float64   `json:"price_min,omitempty"`
	PriceMax *float64   `json:"price_max,omitempty"`
	InStock  *bool      `json:"in_stock,omitempty"`
	OnPromo  *bool      `json:"on_promo,omitempty"`
}

func NewProductService(db *gorm.DB, shopService *ShopService) *ProductService {
	return &ProductService{
		db:          db,
		shopService: shopService,
	}
}

func (s *ProductService) CreateProduct(requesterID uuid.UUID, requesterType models.UserType, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	ownerID, err := s.shopService.GetOwner(req.ShopID)
	if err != nil {
		return nil, err
	}
	if ownerID != requesterID && requesterType != models.UserTypeAdmin {
		return nil, fmt.Errorf("%w: shop %s", ErrForbidden, req.ShopID)
	}

	product := &models.Product{
		ShopID:      req.ShopID,
		Name:        req.Name,
		Description: req.Description,
		Images:      req.Images,
		Price: models.ProductPrice{
			Current: req.Price,
			TTC:     req.PriceTTC,
		},
		Stock: models.ProductStock{Quantity: req.Stock},
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, requesterID uuid.UUID, requesterType models.UserType, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	ownerID, err := s.shopService.GetOwner(product.ShopID)
	if err != nil {
		return nil, err
	}
	if ownerID != requesterID && requesterType != models.UserTypeAdmin {
		return nil, fmt.Errorf("%w: product %s", ErrForbidden, id)
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price > 0 {
		updates["price_current"] = req.Price
	}
	if req.PriceTTC != nil {
		updates["price_ttc"] = *req.PriceTTC
	}
	if req.Stock != nil {
		updates["stock_quantity"] = *req.Stock
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

func (s *ProductService) DeleteProduct(id uuid.UUID, requesterID uuid.UUID, requesterType models.UserType) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}

	ownerID, err := s.shopService.GetOwner(product.ShopID)
	if err != nil {
		return err
	}
	if ownerID != requesterID && requesterType != models.UserTypeAdmin {
		return fmt.Errorf("%w: product %s", ErrForbidden, id)
	}

	// Soft delete
	if err := s.db.Delete(product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if params.ShopID != nil {
		query = query.Where("shop_id = ?", *params.ShopID)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	if params.PriceMin != nil {
		query = query.Where("price_current >= ?", *params.PriceMin)
	}

	if params.PriceMax != nil {
		query = query.Where("price_current <= ?", *params.PriceMax)
	}

	if params.InStock != nil && *params.InStock {
		query = query.Where("stock_quantity > 0")
	}

	if params.OnPromo != nil && *params.OnPromo {
		query = query.Where("promo_is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "price_current"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// DecrementStock performs a single conditional decrement:
//
//	UPDATE products SET stock_quantity = stock_quantity - ?
//	WHERE id = ? AND stock_quantity >= ?
//
// so the check and the write cannot race each other. Zero affected rows means
// the product is missing or short on stock. Runs on the caller's handle so it
// participates in an enclosing transaction.
func (s *ProductService) DecrementStock(tx *gorm.DB, productID uuid.UUID, quantity int) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))

	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return fmt.Errorf("%w: product %s", ErrInsufficientStock, productID)
	}

	return nil
}

// ApplyPromotionSnapshot unconditionally overwrites the product's denormalized
// promotion state (last-writer-wins). Re-applying the same snapshot is a no-op
// in effect, which keeps propagation idempotent.
func (s *ProductService) ApplyPromotionSnapshot(productID uuid.UUID, snap models.PromotionSnapshot) error {
	result := s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"promo_is_active":        snap.IsActive,
			"promo_discount_percent": snap.DiscountPercent,
			"promo_start_date":       snap.StartDate,
			"promo_end_date":         snap.EndDate,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to write promotion snapshot: %w", result.Error)
	}

	return nil
}

// ClearPromotionSnapshot deactivates the snapshot, restoring full price at the
// next pricing pass. Other snapshot fields are left as written.
func (s *ProductService) ClearPromotionSnapshot(productID uuid.UUID) error {
	result := s.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("promo_is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to clear promotion snapshot: %w", result.Error)
	}

	return nil
}
