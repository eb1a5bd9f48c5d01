// internal/services/errors.go
package services

import "errors"

// Business-rule failures surfaced to handlers. Wrapped messages identify the
// offending entity; handlers map them onto HTTP codes with errors.Is.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrShopNotFound      = errors.New("shop not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("not authorized")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderAlreadyPaid  = errors.New("order already paid")
)
