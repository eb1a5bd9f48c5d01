// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
	"github.com/ouishop/marketplace-backend/internal/utils"
)

const orderNumberMaxAttempts = 5

// OrderService prices and persists orders. All amounts on an order are frozen
// at creation time; stock is never touched here, only at payment confirmation.
type OrderService struct {
	db             *gorm.DB
	productService *ProductService
	shopService    *ShopService
	vatRatePercent float64
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	ShopID   uuid.UUID              `json:"shop_id" validate:"required"`
	Items    []OrderLineRequest     `json:"items" validate:"required,min=1,dive"`
	Delivery map[string]interface{} `json:"delivery,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status        string `json:"status,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

type OrderSearchParams struct {
	utils.PaginationParams
	ShopID *uuid.UUID `json:"shop_id,omitempty"`
	Status string     `json:"status,omitempty"`
}

func NewOrderService(db *gorm.DB, productService *ProductService, shopService *ShopService, vatRatePercent float64) *OrderService {
	return &OrderService{
		db:             db,
		productService: productService,
		shopService:    shopService,
		vatRatePercent: vatRatePercent,
	}
}

// CreateOrder runs the whole pricing pass inside one transaction. Each line
// freezes the product's name and prices as they stand right now; a valid
// promotion snapshot discounts both the HT and TTC unit prices while the
// undiscounted TTC price is retained on the line. Stock is only verified,
// never decremented.
func (s *OrderService) CreateOrder(buyerID uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.shopService.GetOwner(req.ShopID); err != nil {
		return nil, err
	}

	var order *models.Order
	now := time.Now()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.OrderItem
		var subtotal, total float64

		for _, line := range req.Items {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
				}
				return fmt.Errorf("database error: %w", err)
			}

			if product.ShopID != req.ShopID {
				return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
			}

			if product.Stock.Quantity < line.Quantity {
				return fmt.Errorf("%w: product %s", ErrInsufficientStock, product.ID)
			}

			unitHT := product.Price.Current
			unitTTC := s.ttcPrice(product.Price)
			originalTTC := unitTTC
			isPromo := false

			if product.Promotion.ValidAt(now) {
				factor := (100 - product.Promotion.DiscountPercent) / 100
				unitHT = round2(unitHT * factor)
				unitTTC = round2(unitTTC * factor)
				isPromo = true
			}

			lineHT := round2(unitHT * float64(line.Quantity))
			lineTTC := round2(unitTTC * float64(line.Quantity))

			items = append(items, models.OrderItem{
				ProductID:            product.ID,
				ProductName:          product.Name,
				Quantity:             line.Quantity,
				UnitPrice:            unitHT,
				UnitPriceTTC:         unitTTC,
				OriginalUnitPriceTTC: originalTTC,
				IsPromo:              isPromo,
				TotalHT:              lineHT,
				TotalTTC:             lineTTC,
			})

			subtotal = round2(subtotal + lineHT)
			total = round2(total + lineTTC)
		}

		o := &models.Order{
			BuyerID:       buyerID,
			ShopID:        req.ShopID,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatePending,
			Delivery:      models.JSONB(req.Delivery),
			Amounts: models.OrderAmounts{
				Subtotal: subtotal,
				// Not rounded: the three amounts must add up exactly.
				Tax:   total - subtotal,
				Total: total,
			},
			Items: items,
		}

		if err := s.insertWithUniqueNumber(tx, o); err != nil {
			return err
		}

		order = o
		return nil
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

// insertWithUniqueNumber generates a fresh order number per attempt and
// retries on a unique-constraint collision. With a UUID fragment in the
// number a second attempt is already overwhelmingly unlikely.
func (s *OrderService) insertWithUniqueNumber(tx *gorm.DB, order *models.Order) error {
	for attempt := 0; attempt < orderNumberMaxAttempts; attempt++ {
		order.OrderNumber = generateOrderNumber()
		err := tx.Create(order).Error
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return errors.New("failed to allocate a unique order number")
}

func generateOrderNumber() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:12]
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), fragment)
}

func (s *OrderService) ttcPrice(price models.ProductPrice) float64 {
	if price.TTC != nil {
		return *price.TTC
	}
	return round2(price.Current * (1 + s.vatRatePercent/100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *OrderService) GetOrder(id uuid.UUID, requesterID uuid.UUID, requesterType models.UserType) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizeOrderAccess(&order, requesterID, requesterType); err != nil {
		return nil, err
	}

	return &order, nil
}

func (s *OrderService) ListOrders(params OrderSearchParams, requesterID uuid.UUID, requesterType models.UserType) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Preload("Items")

	switch {
	case params.ShopID != nil:
		// Shop view, restricted to the shop's owner.
		if requesterType != models.UserTypeAdmin {
			ownerID, err := s.shopService.GetOwner(*params.ShopID)
			if err != nil {
				return nil, 0, err
			}
			if ownerID != requesterID {
				return nil, 0, fmt.Errorf("%w: shop %s", ErrForbidden, *params.ShopID)
			}
		}
		query = query.Where("shop_id = ?", *params.ShopID)
	case requesterType == models.UserTypeAdmin:
		// Admins see everything.
	default:
		query = query.Where("buyer_id = ?", requesterID)
	}

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "amount_total", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// UpdateOrderStatus applies plain field updates. Cancelling an order does not
// restock anything.
func (s *OrderService) UpdateOrderStatus(id uuid.UUID, requesterID uuid.UUID, requesterType models.UserType, req *UpdateOrderStatusRequest) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if requesterType != models.UserTypeAdmin {
		ownerID, err := s.shopService.GetOwner(order.ShopID)
		if err != nil {
			return nil, err
		}
		if ownerID != requesterID {
			return nil, fmt.Errorf("%w: order %s", ErrForbidden, id)
		}
	}

	updates := make(map[string]interface{})
	if req.Status != "" {
		status := models.OrderStatus(req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("invalid order status: %s", req.Status)
		}
		updates["status"] = status
		order.Status = status
	}
	if req.PaymentStatus != "" {
		state := models.PaymentState(req.PaymentStatus)
		if !state.Valid() {
			return nil, fmt.Errorf("invalid payment status: %s", req.PaymentStatus)
		}
		updates["payment_status"] = state
		order.PaymentStatus = state
	}

	if len(updates) == 0 {
		return &order, nil
	}

	if err := s.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return &order, nil
}

func (s *OrderService) authorizeOrderAccess(order *models.Order, requesterID uuid.UUID, requesterType models.UserType) error {
	if requesterType == models.UserTypeAdmin || order.BuyerID == requesterID {
		return nil
	}
	ownerID, err := s.shopService.GetOwner(order.ShopID)
	if err != nil {
		return err
	}
	if ownerID != requesterID {
		return fmt.Errorf("%w: order %s", ErrForbidden, order.ID)
	}
	return nil
}
