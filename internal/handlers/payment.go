// internal/handlers/payment.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ouishop/marketplace-backend/internal/i18n"
	"github.com/ouishop/marketplace-backend/internal/models"
	"github.com/ouishop/marketplace-backend/internal/services"
	"github.com/ouishop/marketplace-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// POST /payments
//
// Unlike order creation, a payment references an existing order, so a missing
// order is a 404. A stock shortfall discovered at confirmation time stays a
// 400.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	payerID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	payment, err := h.paymentService.CreatePayment(payerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.NotFoundResponse(c, "order")
		case errors.Is(err, services.ErrShopNotFound):
			utils.NotFoundResponse(c, "shop")
		case errors.Is(err, services.ErrOrderAlreadyPaid):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyOrderAlreadyPaid))
		case errors.Is(err, services.ErrInsufficientStock):
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductOutOfStock), err.Error())
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPaymentSuccess),
		"payment": payment,
	})
}

// GET /payments
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	requesterID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}
	userType, _ := utils.GetUserTypeFromContext(c)

	params := utils.GetPaginationParams(c)
	searchParams := services.PaymentSearchParams{
		PaginationParams: params,
		Type:             c.Query("type"),
		Status:           c.Query("status"),
	}

	payments, total, err := h.paymentService.ListPayments(searchParams, requesterID, models.UserType(userType))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(payments, total, params)
	utils.PaginatedResponse(c, result)
}
