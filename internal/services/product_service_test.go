// internal/services/product_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db    *gorm.DB
	shops *ShopService
	prods *ProductService
	owner *models.User
	shop  *models.Shop
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.shops = NewShopService(s.db)
	s.prods = NewProductService(s.db, s.shops)

	s.owner = seedUser(s.T(), s.db, models.UserTypeShopOwner)
	s.shop = seedShop(s.T(), s.db, s.owner.ID)
}

func (s *ProductServiceTestSuite) TestDecrementStock() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)

	s.Require().NoError(s.prods.DecrementStock(s.db, p.ID, 4))
	s.Equal(6, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *ProductServiceTestSuite) TestDecrementStockMissingProduct() {
	err := s.prods.DecrementStock(s.db, uuid.New(), 1)
	s.Require().ErrorIs(err, ErrProductNotFound)
}

func (s *ProductServiceTestSuite) TestDecrementStockShortfall() {
	p := seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 2)

	err := s.prods.DecrementStock(s.db, p.ID, 3)
	s.Require().ErrorIs(err, ErrInsufficientStock)
	s.Equal(2, reloadProduct(s.T(), s.db, p.ID).Stock.Quantity)
}

func (s *ProductServiceTestSuite) TestDecrementStockSurfacesDatabaseErrors() {
	// A failing query must come back as a plain database error, never
	// misclassified as a missing product or a stock shortfall.
	s.Require().NoError(s.db.Migrator().DropTable(&models.Product{}))

	err := s.prods.DecrementStock(s.db, uuid.New(), 1)
	s.Require().Error(err)
	s.NotErrorIs(err, ErrProductNotFound)
	s.NotErrorIs(err, ErrInsufficientStock)
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
