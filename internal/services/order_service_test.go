// internal/services/order_service_test.go
package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
)

type OrderServiceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	shops  *ShopService
	prods  *ProductService
	orders *OrderService
	owner  *models.User
	buyer  *models.User
	shop   *models.Shop
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.shops = NewShopService(s.db)
	s.prods = NewProductService(s.db, s.shops)
	s.orders = NewOrderService(s.db, s.prods, s.shops, testVATRate)

	s.owner = seedUser(s.T(), s.db, models.UserTypeShopOwner)
	s.buyer = seedUser(s.T(), s.db, models.UserTypeBuyer)
	s.shop = seedShop(s.T(), s.db, s.owner.ID)
}

func (s *OrderServiceTestSuite) applySnapshot(p *models.Product, discount float64, start, end time.Time) {
	s.Require().NoError(s.prods.ApplyPromotionSnapshot(p.ID, models.PromotionSnapshot{
		IsActive:        true,
		DiscountPercent: discount,
		StartDate:       &start,
		EndDate:         &end,
	}))
}

func (s *OrderServiceTestSuite) TestCreateOrderPricing() {
	// p1: HT 100, no stored TTC -> TTC derived 120; 10% promotion in window.
	// p2: HT 50, stored TTC 55; no promotion.
	p1 := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	p2 := seedProduct(s.T(), s.db, s.shop.ID, 50, floatPtr(55), 10)
	s.applySnapshot(p1, 10, daysAgo(1), daysFromNow(1))

	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items: []OrderLineRequest{
			{ProductID: p1.ID, Quantity: 2},
			{ProductID: p2.ID, Quantity: 1},
		},
	})
	s.Require().NoError(err)
	s.Require().Len(order.Items, 2)

	promoLine := order.Items[0]
	s.True(promoLine.IsPromo)
	s.InDelta(90.0, promoLine.UnitPrice, 0.001)
	s.InDelta(108.0, promoLine.UnitPriceTTC, 0.001)
	s.InDelta(120.0, promoLine.OriginalUnitPriceTTC, 0.001)
	s.InDelta(180.0, promoLine.TotalHT, 0.001)
	s.InDelta(216.0, promoLine.TotalTTC, 0.001)

	plainLine := order.Items[1]
	s.False(plainLine.IsPromo)
	s.InDelta(50.0, plainLine.UnitPrice, 0.001)
	s.InDelta(55.0, plainLine.UnitPriceTTC, 0.001)
	s.InDelta(55.0, plainLine.OriginalUnitPriceTTC, 0.001)

	s.InDelta(230.0, order.Amounts.Subtotal, 0.001)
	s.InDelta(271.0, order.Amounts.Total, 0.001)
	s.Equal(order.Amounts.Total, order.Amounts.Subtotal+order.Amounts.Tax)

	s.Equal(models.OrderStatusPending, order.Status)
	s.Equal(models.PaymentStatePending, order.PaymentStatus)
	s.True(strings.HasPrefix(order.OrderNumber, "ORD-"))
}

func (s *OrderServiceTestSuite) TestAmountsAddUpExactly() {
	// Sub-cent unit prices are where independently rounded amounts drift:
	// HT 0.05 / TTC 0.15 at qty 2 gives subtotal 0.10 and total 0.30, whose
	// float64 difference is not itself a representable round number.
	p := seedProduct(s.T(), s.db, s.shop.ID, 0.05, floatPtr(0.15), 10)

	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 2}},
	})
	s.Require().NoError(err)

	s.InDelta(0.10, order.Amounts.Subtotal, 0.001)
	s.InDelta(0.30, order.Amounts.Total, 0.001)
	s.Equal(order.Amounts.Total, order.Amounts.Subtotal+order.Amounts.Tax)
}

func (s *OrderServiceTestSuite) TestExpiredPromotionIgnored() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	s.applySnapshot(p, 50, daysAgo(10), daysAgo(5))

	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	s.Require().NoError(err)

	line := order.Items[0]
	s.False(line.IsPromo)
	s.InDelta(100.0, line.UnitPrice, 0.001)
	s.InDelta(120.0, line.UnitPriceTTC, 0.001)
}

func (s *OrderServiceTestSuite) TestFuturePromotionIgnored() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	s.applySnapshot(p, 50, daysFromNow(5), daysFromNow(10))

	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	s.Require().NoError(err)
	s.False(order.Items[0].IsPromo)
}

func (s *OrderServiceTestSuite) TestZeroDiscountSnapshotIgnored() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	s.applySnapshot(p, 0, daysAgo(1), daysFromNow(1))

	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	s.Require().NoError(err)
	s.False(order.Items[0].IsPromo)
	s.InDelta(100.0, order.Items[0].UnitPrice, 0.001)
}

func (s *OrderServiceTestSuite) TestCreateOrderLeavesStockUntouched() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)

	_, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 3}},
	})
	s.Require().NoError(err)

	s.Equal(10, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *OrderServiceTestSuite) TestCreateOrderInsufficientStock() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 2)

	_, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 3}},
	})
	s.Require().ErrorIs(err, ErrInsufficientStock)

	var count int64
	s.db.Model(&models.Order{}).Count(&count)
	s.Equal(int64(0), count)
}

func (s *OrderServiceTestSuite) TestCreateOrderRejectsForeignProduct() {
	otherOwner := seedUser(s.T(), s.db, models.UserTypeShopOwner)
	otherShop := seedShop(s.T(), s.db, otherOwner.ID)
	foreign := seedProduct(s.T(), s.db, otherShop.ID, 10, nil, 10)

	_, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: foreign.ID, Quantity: 1}},
	})
	s.Require().ErrorIs(err, ErrProductNotFound)
}

func (s *OrderServiceTestSuite) TestPricesFrozenAfterCreation() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)

	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	s.Require().NoError(err)

	// Reprice the product and attach a discount after the fact.
	s.Require().NoError(s.db.Model(&models.Product{}).Where("id = ?", p.ID).
		UpdateColumn("price_current", 999).Error)
	s.applySnapshot(p, 50, daysAgo(1), daysFromNow(1))

	got, err := s.orders.GetOrder(order.ID, s.buyer.ID, models.UserTypeBuyer)
	s.Require().NoError(err)
	s.InDelta(100.0, got.Items[0].UnitPrice, 0.001)
	s.InDelta(100.0, got.Amounts.Subtotal, 0.001)
}

func (s *OrderServiceTestSuite) TestOrderNumbersAreUnique() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
			ShopID: s.shop.ID,
			Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
		})
		s.Require().NoError(err)
		s.False(seen[order.OrderNumber])
		seen[order.OrderNumber] = true
	}
}

func (s *OrderServiceTestSuite) TestGetOrderAccessControl() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	s.Require().NoError(err)

	_, err = s.orders.GetOrder(order.ID, s.buyer.ID, models.UserTypeBuyer)
	s.NoError(err)

	_, err = s.orders.GetOrder(order.ID, s.owner.ID, models.UserTypeShopOwner)
	s.NoError(err)

	stranger := seedUser(s.T(), s.db, models.UserTypeBuyer)
	_, err = s.orders.GetOrder(order.ID, stranger.ID, models.UserTypeBuyer)
	s.Require().ErrorIs(err, ErrForbidden)
}

func (s *OrderServiceTestSuite) TestUpdateStatusOwnerOnly() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	s.Require().NoError(err)

	_, err = s.orders.UpdateOrderStatus(order.ID, s.buyer.ID, models.UserTypeBuyer, &UpdateOrderStatusRequest{
		Status: "shipped",
	})
	s.Require().ErrorIs(err, ErrForbidden)

	updated, err := s.orders.UpdateOrderStatus(order.ID, s.owner.ID, models.UserTypeShopOwner, &UpdateOrderStatusRequest{
		Status: "shipped",
	})
	s.Require().NoError(err)
	s.Equal(models.OrderStatusShipped, updated.Status)
}

func (s *OrderServiceTestSuite) TestUpdateStatusRejectsUnknownValue() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	order, err := s.orders.CreateOrder(s.buyer.ID, &CreateOrderRequest{
		ShopID: s.shop.ID,
		Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
	})
	s.Require().NoError(err)

	_, err = s.orders.UpdateOrderStatus(order.ID, s.owner.ID, models.UserTypeShopOwner, &UpdateOrderStatusRequest{
		Status: "teleported",
	})
	s.Require().Error(err)
}

func (s *OrderServiceTestSuite) TestListOrdersScopedToBuyer() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	otherBuyer := seedUser(s.T(), s.db, models.UserTypeBuyer)

	for _, buyer := range []*models.User{s.buyer, s.buyer, otherBuyer} {
		_, err := s.orders.CreateOrder(buyer.ID, &CreateOrderRequest{
			ShopID: s.shop.ID,
			Items:  []OrderLineRequest{{ProductID: p.ID, Quantity: 1}},
		})
		s.Require().NoError(err)
	}

	mine, total, err := s.orders.ListOrders(OrderSearchParams{}, s.buyer.ID, models.UserTypeBuyer)
	s.Require().NoError(err)
	s.Equal(int64(2), total)
	s.Len(mine, 2)

	shopView, total, err := s.orders.ListOrders(OrderSearchParams{ShopID: &s.shop.ID}, s.owner.ID, models.UserTypeShopOwner)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(shopView, 3)

	_, _, err = s.orders.ListOrders(OrderSearchParams{ShopID: &s.shop.ID}, otherBuyer.ID, models.UserTypeBuyer)
	s.Require().ErrorIs(err, ErrForbidden)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}
