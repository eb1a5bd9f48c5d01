// internal/handlers/promotion.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ouishop/marketplace-backend/internal/i18n"
	"github.com/ouishop/marketplace-backend/internal/models"
	"github.com/ouishop/marketplace-backend/internal/services"
	"github.com/ouishop/marketplace-backend/internal/utils"
)

type PromotionHandler struct {
	promotionService *services.PromotionService
}

func NewPromotionHandler(promotionService *services.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// GET /promotions
func (h *PromotionHandler) GetPromotions(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.PromotionSearchParams{
		PaginationParams: params,
	}

	if shopIDStr := c.Query("shop_id"); shopIDStr != "" {
		if shopID, err := uuid.Parse(shopIDStr); err == nil {
			searchParams.ShopID = &shopID
		}
	}

	if allStr := c.Query("all"); allStr != "" {
		if all, err := strconv.ParseBool(allStr); err == nil {
			searchParams.All = all
		}
	}

	requesterID := uuid.Nil
	if userIDStr, exists := utils.GetUserIDFromContext(c); exists {
		if parsed, err := uuid.Parse(userIDStr); err == nil {
			requesterID = parsed
		}
	}
	userType, _ := utils.GetUserTypeFromContext(c)

	promotions, total, err := h.promotionService.GetPromotions(searchParams, requesterID, models.UserType(userType))
	if err != nil {
		if errors.Is(err, services.ErrShopNotFound) {
			utils.NotFoundResponse(c, "shop")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(promotions, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /promotions
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
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

	var req services.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	promotion, err := h.promotionService.CreatePromotion(requesterID, models.UserType(userType), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrShopNotFound):
			utils.NotFoundResponse(c, "shop")
		case errors.Is(err, services.ErrForbidden):
			utils.ForbiddenResponse(c, "")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyPromotionCreated),
		"promotion": promotion,
	})
}

// GET /promotions/:id
func (h *PromotionHandler) GetPromotion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promotion ID", nil)
		return
	}

	promotion, err := h.promotionService.GetPromotion(id)
	if err != nil {
		if errors.Is(err, services.ErrPromotionNotFound) {
			utils.NotFoundResponse(c, "promotion")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"promotion": promotion})
}

// PUT /promotions/:id
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promotion ID", nil)
		return
	}

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

	var req services.UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	promotion, err := h.promotionService.UpdatePromotion(id, requesterID, models.UserType(userType), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPromotionNotFound):
			utils.NotFoundResponse(c, "promotion")
		case errors.Is(err, services.ErrForbidden):
			utils.ForbiddenResponse(c, "")
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyPromotionUpdated),
		"promotion": promotion,
	})
}

// DELETE /promotions/:id
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promotion ID", nil)
		return
	}

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

	if err := h.promotionService.DeletePromotion(id, requesterID, models.UserType(userType)); err != nil {
		switch {
		case errors.Is(err, services.ErrPromotionNotFound):
			utils.NotFoundResponse(c, "promotion")
		case errors.Is(err, services.ErrForbidden):
			utils.ForbiddenResponse(c, "")
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPromotionDeleted),
	})
}
