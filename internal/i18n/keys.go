// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Shops
	KeyShopCreated  = "shop.created"
	KeyShopUpdated  = "shop.updated"
	KeyShopNotFound = "shop.not_found"

	// Products
	KeyProductCreated    = "product.created"
	KeyProductUpdated    = "product.updated"
	KeyProductDeleted    = "product.deleted"
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"

	// Promotions
	KeyPromotionCreated  = "promotion.created"
	KeyPromotionUpdated  = "promotion.updated"
	KeyPromotionDeleted  = "promotion.deleted"
	KeyPromotionNotFound = "promotion.not_found"

	// Orders
	KeyOrderCreated       = "order.created"
	KeyOrderUpdated       = "order.updated"
	KeyOrderNotFound      = "order.not_found"
	KeyOrderAlreadyPaid   = "order.already_paid"
	KeyOrderInvalidStatus = "order.invalid_status"

	// Payments
	KeyPaymentSuccess       = "payment.success"
	KeyPaymentFailed        = "payment.failed"
	KeyPaymentInvalidAmount = "payment.invalid_amount"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
)
