// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
	"github.com/ouishop/marketplace-backend/internal/utils"
)

// PaymentService confirms order payments. Paying an order is the single point
// in the system where stock moves: all line decrements and both status flips
// commit together or not at all, and a second payment attempt on the same
// order is rejected before touching anything.
type PaymentService struct {
	db             *gorm.DB
	productService *ProductService
	shopService    *ShopService
}

type CreatePaymentRequest struct {
	Type    models.PaymentType `json:"type" validate:"required"`
	OrderID *uuid.UUID         `json:"order_id,omitempty"`
	ShopID  *uuid.UUID         `json:"shop_id,omitempty"`
	Amount  float64            `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Method  string             `json:"method,omitempty" validate:"omitempty,max=50"`
}

type PaymentSearchParams struct {
	utils.PaginationParams
	Type   string `json:"type,omitempty"`
	Status string `json:"status,omitempty"`
}

func NewPaymentService(db *gorm.DB, productService *ProductService, shopService *ShopService) *PaymentService {
	return &PaymentService{
		db:             db,
		productService: productService,
		shopService:    shopService,
	}
}

func (s *PaymentService) CreatePayment(payerID uuid.UUID, req *CreatePaymentRequest) (*models.Payment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	switch req.Type {
	case models.PaymentTypeOrder:
		return s.createOrderPayment(payerID, req)
	case models.PaymentTypeRent:
		return s.createRentPayment(payerID, req)
	default:
		return nil, fmt.Errorf("invalid payment type: %s", req.Type)
	}
}

// createOrderPayment decrements stock line by line with a conditional update;
// duplicate lines for the same product each decrement independently. Any
// short line rolls the whole transaction back, leaving order, payment and
// stock untouched.
func (s *PaymentService) createOrderPayment(payerID uuid.UUID, req *CreatePaymentRequest) (*models.Payment, error) {
	if req.OrderID == nil {
		return nil, errors.New("order_id is required for order payments")
	}

	var payment *models.Payment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, *req.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrOrderNotFound, *req.OrderID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if order.PaymentStatus == models.PaymentStatePaid {
			return fmt.Errorf("%w: %s", ErrOrderAlreadyPaid, order.ID)
		}

		if req.Amount > 0 && req.Amount != order.Amounts.Total {
			return fmt.Errorf("payment amount %.2f does not match order total %.2f", req.Amount, order.Amounts.Total)
		}

		for _, item := range order.Items {
			if err := s.productService.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		now := time.Now()
		payment = &models.Payment{
			Type:    models.PaymentTypeOrder,
			OrderID: &order.ID,
			PayerID: payerID,
			Amount:  order.Amounts.Total,
			Method:  req.Method,
			Status:  models.PaymentStatePaid,
			PaidAt:  &now,
		}

		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}

		updates := map[string]interface{}{
			"payment_status": models.PaymentStatePaid,
			"status":         models.OrderStatusConfirmed,
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return payment, nil
}

// createRentPayment records a simulated shop-rent payment. No order, no stock
// movement.
func (s *PaymentService) createRentPayment(payerID uuid.UUID, req *CreatePaymentRequest) (*models.Payment, error) {
	if req.ShopID == nil {
		return nil, errors.New("shop_id is required for rent payments")
	}
	if req.Amount <= 0 {
		return nil, errors.New("amount is required for rent payments")
	}

	if _, err := s.shopService.GetOwner(*req.ShopID); err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &models.Payment{
		Type:    models.PaymentTypeRent,
		ShopID:  req.ShopID,
		PayerID: payerID,
		Amount:  req.Amount,
		Method:  req.Method,
		Status:  models.PaymentStatePaid,
		PaidAt:  &now,
	}

	if err := s.db.Create(payment).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	return payment, nil
}

func (s *PaymentService) ListPayments(params PaymentSearchParams, requesterID uuid.UUID, requesterType models.UserType) ([]models.Payment, int64, error) {
	query := s.db.Model(&models.Payment{})

	if requesterType != models.UserTypeAdmin {
		query = query.Where("payer_id = ?", requesterID)
	}

	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var payments []models.Payment
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payments: %w", err)
	}

	return payments, total, nil
}
