// internal/services/payment_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	shops    *ShopService
	prods    *ProductService
	orders   *OrderService
	payments *PaymentService
	owner    *models.User
	buyer    *models.User
	shop     *models.Shop
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.shops = NewShopService(s.db)
	s.prods = NewProductService(s.db, s.shops)
	s.orders = NewOrderService(s.db, s.prods, s.shops, testVATRate)
	s.payments = NewPaymentService(s.db, s.prods, s.shops)

	s.owner = seedUser(s.T(), s.db, models.UserTypeShopOwner)
	s.buyer = seedUser(s.T(), s.db, models.UserTypeBuyer)
	s.shop = seedShop(s.T(), s.db, s.owner.ID)
}

func (s *PaymentServiceTestSuite) createOrder(lines ...OrderLineRequest) *models.Order {
	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  lines,
	})
	s.Require().NoError(err)
	return order
}

func (s *PaymentServiceTestSuite) TestPaymentConfirmsOrderAndDecrementsStock() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order := s.createOrder(OrderLineRequest{ProductID: p.ID, Quantity: 3})

	payment, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
		Method:  "card",
	})
	s.Require().NoError(err)

	s.Equal(models.PaymentStatePaid, payment.Status)
	s.Require().NotNil(payment.PaidAt)
	s.InDelta(order.Amounts.Total, payment.Amount, 0.001)

	s.Equal(7, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)

	got, err := s.orders.GetOrder(order.ID, s.buyer.ID, models.UserTypeBuyer)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusConfirmed, got.Status)
	s.Equal(models.PaymentStatePaid, got.PaymentStatus)
}

func (s *PaymentServiceTestSuite) TestSecondPaymentRejected() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order := s.createOrder(OrderLineRequest{ProductID: p.ID, Quantity: 3})

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
	})
	s.Require().NoError(err)

	_, err = s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
	})
	s.Require().ErrorIs(err, ErrOrderAlreadyPaid)

	// Stock moved exactly once.
	s.Equal(7, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *PaymentServiceTestSuite) TestInsufficientStockRollsEverythingBack() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 5)
	order := s.createOrder(OrderLineRequest{ProductID: p.ID, Quantity: 3})

	// Stock drains between order creation and payment.
	s.Require().NoError(s.db.Model(&models.Product{}).Where("id = ?", p.ID).
		UpdateColumn("stock_quantity", 2).Error)

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
	})
	s.Require().ErrorIs(err, ErrInsufficientStock)

	s.Equal(2, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)

	got, err := s.orders.GetOrder(order.ID, s.buyer.ID, models.UserTypeBuyer)
	s.Require().NoError(err)
	s.Equal(models.OrderStatusPending, got.Status)
	s.Equal(models.PaymentStatePending, got.PaymentStatus)

	var payments int64
	s.db.Model(&models.Payment{}).Count(&payments)
	s.Equal(int64(0), payments)
}

func (s *PaymentServiceTestSuite) TestDuplicateLinesDecrementIndependently() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 5)
	order := s.createOrder(
		OrderLineRequest{ProductID: p.ID, Quantity: 2},
		OrderLineRequest{ProductID: p.ID, Quantity: 3},
	)

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
	})
	s.Require().NoError(err)

	s.Equal(0, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *PaymentServiceTestSuite) TestDuplicateLinesShortByOneUnitFails() {
	// Each line passes the creation-time check on its own, but the combined
	// decrement at payment time comes up short and rolls back.
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 4)
	order := s.createOrder(
		OrderLineRequest{ProductID: p.ID, Quantity: 2},
		OrderLineRequest{ProductID: p.ID, Quantity: 3},
	)

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
	})
	s.Require().ErrorIs(err, ErrInsufficientStock)

	s.Equal(4, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *PaymentServiceTestSuite) TestAmountMismatchRejected() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order := s.createOrder(OrderLineRequest{ProductID: p.ID, Quantity: 1})

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
		Amount:  order.Amounts.Total + 1,
	})
	s.Require().Error(err)

	s.Equal(10, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *PaymentServiceTestSuite) TestMissingOrder() {
	missing := uuid.New()

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &missing,
	})
	s.Require().ErrorIs(err, ErrOrderNotFound)
}

func (s *PaymentServiceTestSuite) TestCancellationAfterPaymentDoesNotRestock() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order := s.createOrder(OrderLineRequest{ProductID: p.ID, Quantity: 3})

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
	})
	s.Require().NoError(err)
	s.Equal(7, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)

	_, err = s.orders.UpdateOrderStatus(order.ID, s.owner.ID, models.UserTypeShopOwner, &UpdateOrderStatusRequest{
		Status: "cancelled",
	})
	s.Require().NoError(err)

	s.Equal(7, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *PaymentServiceTestSuite) TestRentPayment() {
	payment, err := s.payments.CreatePayment(s.owner.ID, &CreatePaymentRequest{
		Type:   models.PaymentTypeRent,
		ShopID: &s.shop.ID,
		Amount: 250,
		Method: "transfer",
	})
	s.Require().NoError(err)

	s.Equal(models.PaymentTypeRent, payment.Type)
	s.Equal(models.PaymentStatePaid, payment.Status)
	s.Require().NotNil(payment.PaidAt)
	s.InDelta(250.0, payment.Amount, 0.001)
}

func (s *PaymentServiceTestSuite) TestRentPaymentRequiresShop() {
	_, err := s.payments.CreatePayment(s.owner.ID, &CreatePaymentRequest{
		Type:   models.PaymentTypeRent,
		Amount: 250,
	})
	s.Require().Error(err)
}

func (s *PaymentServiceTestSuite) TestListPaymentsScopedToPayer() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order := s.createOrder(OrderLineRequest{ProductID: p.ID, Quantity: 1})

	_, err := s.payments.CreatePayment(s.buyer.ID, &CreatePaymentRequest{
		Type:    models.PaymentTypeOrder,
		OrderID: &order.ID,
	})
	s.Require().NoError(err)

	_, err = s.payments.CreatePayment(s.owner.ID, &CreatePaymentRequest{
		Type:   models.PaymentTypeRent,
		ShopID: &s.shop.ID,
		Amount: 250,
	})
	s.Require().NoError(err)

	mine, total, err := s.payments.ListPayments(PaymentSearchParams{}, s.buyer.ID, models.UserTypeBuyer)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(mine, 1)
	s.Equal(models.PaymentTypeOrder, mine[0].Type)
}

func TestPaymentServiceSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
