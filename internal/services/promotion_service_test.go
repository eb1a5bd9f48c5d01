// internal/services/promotion_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ouishop/marketplace-backend/internal/models"
)

type PromotionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	shops   *ShopService
	prods   *ProductService
	promos  *PromotionService
	owner   *models.User
	shop    *models.Shop
	p1, p2  *models.Product
	another *models.User
}

func (s *PromotionServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.shops = NewShopService(s.db)
	s.prods = NewProductService(s.db, s.shops)
	s.promos = NewPromotionService(s.db, s.shops, s.prods)

	s.owner = seedUser(s.T(), s.db, models.UserTypeShopOwner)
	s.another = seedUser(s.T(), s.db, models.UserTypeShopOwner)
	s.shop = seedShop(s.T(), s.db, s.owner.ID)
	s.p1 = seedProduct(s.T(), s.db, s.shop.ID, 100, nil, 10)
	s.p2 = seedProduct(s.T(), s.db, s.shop.ID, 50, floatPtr(55), 10)
}

func (s *PromotionServiceTestSuite) TestCreatePropagatesSnapshot() {
	req := &CreatePromotionRequest{
		ShopID:          s.shop.ID,
		Name:            "Summer sale",
		DiscountPercent: 10,
		ProductIDs:      []uuid.UUID{s.p1.ID, s.p2.ID},
		StartDate:       daysAgo(1),
		EndDate:         daysFromNow(7),
	}

	promo, err := s.promos.CreatePromotion(s.owner.ID, models.UserTypeShopOwner, req)
	s.Require().NoError(err)
	s.True(promo.IsActive)

	for _, pid := range []uuid.UUID{s.p1.ID, s.p2.ID} {
		got := reloadProduct(s.T(), s.db, pid)
		s.True(got.Promotion.IsActive)
		s.Equal(10.0, got.Promotion.DiscountPercent)
		s.Require().NotNil(got.Promotion.StartDate)
		s.Require().NotNil(got.Promotion.EndDate)
	}
}

func (s *PromotionServiceTestSuite) TestCreateCopiesFutureWindowRaw() {
	// A not-yet-started campaign still lands on the product; it just does not
	// validate at pricing time.
	req := &CreatePromotionRequest{
		ShopID:          s.shop.ID,
		Name:            "Black Friday",
		DiscountPercent: 30,
		ProductIDs:      []uuid.UUID{s.p1.ID},
		StartDate:       daysFromNow(10),
		EndDate:         daysFromNow(12),
	}

	_, err := s.promos.CreatePromotion(s.owner.ID, models.UserTypeShopOwner, req)
	s.Require().NoError(err)

	got := reloadProduct(s.T(), s.db, s.p1.ID)
	s.True(got.Promotion.IsActive)
	s.Equal(30.0, got.Promotion.DiscountPercent)
	s.False(got.Promotion.ValidAt(daysFromNow(0)))
	s.True(got.Promotion.ValidAt(daysFromNow(11)))
}

func (s *PromotionServiceTestSuite) TestCreateDeniedForNonOwner() {
	req := &CreatePromotionRequest{
		ShopID:          s.shop.ID,
		Name:            "Not my shop",
		DiscountPercent: 10,
		ProductIDs:      []uuid.UUID{s.p1.ID},
		StartDate:       daysAgo(1),
		EndDate:         daysFromNow(1),
	}

	_, err := s.promos.CreatePromotion(s.another.ID, models.UserTypeShopOwner, req)
	s.Require().ErrorIs(err, ErrForbidden)

	got := reloadProduct(s.T(), s.db, s.p1.ID)
	s.False(got.Promotion.IsActive)
}

func (s *PromotionServiceTestSuite) TestCreateRejectsInvertedWindow() {
	req := &CreatePromotionRequest{
		ShopID:          s.shop.ID,
		Name:            "Backwards",
		DiscountPercent: 10,
		ProductIDs:      []uuid.UUID{s.p1.ID},
		StartDate:       daysFromNow(2),
		EndDate:         daysFromNow(1),
	}

	_, err := s.promos.CreatePromotion(s.owner.ID, models.UserTypeShopOwner, req)
	s.Require().Error(err)
}

func (s *PromotionServiceTestSuite) TestUpdateSymmetricDiff() {
	p3 := seedProduct(s.T(), s.db, s.shop.ID, 80, nil, 10)

	promo, err := s.promos.CreatePromotion(s.owner.ID, models.UserTypeShopOwner, &CreatePromotionRequest{
		ShopID:          s.shop.ID,
		Name:            "Initial",
		DiscountPercent: 10,
		ProductIDs:      []uuid.UUID{s.p1.ID, s.p2.ID},
		StartDate:       daysAgo(1),
		EndDate:         daysFromNow(7),
	})
	s.Require().NoError(err)

	// Drop p1, keep p2, add p3, bump the discount.
	newDiscount := 25.0
	_, err = s.promos.UpdatePromotion(promo.ID, s.owner.ID, models.UserTypeShopOwner, &UpdatePromotionRequest{
		DiscountPercent: &newDiscount,
		ProductIDs:      []uuid.UUID{s.p2.ID, p3.ID},
	})
	s.Require().NoError(err)

	removed := reloadProduct(s.T(), s.db, s.p1.ID)
	s.False(removed.Promotion.IsActive)
	// The stale discount value stays behind; only the active flag is cleared.
	s.Equal(10.0, removed.Promotion.DiscountPercent)

	for _, pid := range []uuid.UUID{s.p2.ID, p3.ID} {
		got := reloadProduct(s.T(), s.db, pid)
		s.True(got.Promotion.IsActive)
		s.Equal(newDiscount, got.Promotion.DiscountPercent)
	}
}

func (s *PromotionServiceTestSuite) TestRepropagationIsIdempotent() {
	promo, err := s.promos.CreatePromotion(s.owner.ID, models.UserTypeShopOwner, &CreatePromotionRequest{
		ShopID:          s.shop.ID,
		Name:            "Stable",
		DiscountPercent: 15,
		ProductIDs:      []uuid.UUID{s.p1.ID},
		StartDate:       daysAgo(1),
		EndDate:         daysFromNow(7),
	})
	s.Require().NoError(err)

	first := reloadProduct(s.T(), s.db, s.p1.ID).Promotion

	_, err = s.promos.UpdatePromotion(promo.ID, s.owner.ID, models.UserTypeShopOwner, &UpdatePromotionRequest{})
	s.Require().NoError(err)
	_, err = s.promos.UpdatePromotion(promo.ID, s.owner.ID, models.UserTypeShopOwner, &UpdatePromotionRequest{})
	s.Require().NoError(err)

	again := reloadProduct(s.T(), s.db, s.p1.ID).Promotion
	s.Equal(first.IsActive, again.IsActive)
	s.Equal(first.DiscountPercent, again.DiscountPercent)
	s.Equal(first.StartDate.Unix(), again.StartDate.Unix())
	s.Equal(first.EndDate.Unix(), again.EndDate.Unix())
}

func (s *PromotionServiceTestSuite) TestDeleteClearsSnapshots() {
	promo, err := s.promos.CreatePromotion(s.owner.ID, models.UserTypeShopOwner, &CreatePromotionRequest{
		ShopID:          s.shop.ID,
		Name:            "Doomed",
		DiscountPercent: 20,
		ProductIDs:      []uuid.UUID{s.p1.ID, s.p2.ID},
		StartDate:       daysAgo(1),
		EndDate:         daysFromNow(7),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.promos.DeletePromotion(promo.ID, s.owner.ID, models.UserTypeShopOwner))

	for _, pid := range []uuid.UUID{s.p1.ID, s.p2.ID} {
		got := reloadProduct(s.T(), s.db, pid)
		s.False(got.Promotion.IsActive)
	}

	_, err = s.promos.GetPromotion(promo.ID)
	s.Require().ErrorIs(err, ErrPromotionNotFound)
}

func (s *PromotionServiceTestSuite) TestListDefaultsToEffectiveNow() {
	current := &models.Promotion{
		ShopID: s.shop.ID, Name: "Current", DiscountPercent: 10,
		ProductIDs: models.UUIDSlice{s.p1.ID},
		StartDate:  daysAgo(1), EndDate: daysFromNow(1), IsActive: true,
	}
	expired := &models.Promotion{
		ShopID: s.shop.ID, Name: "Expired", DiscountPercent: 10,
		ProductIDs: models.UUIDSlice{s.p1.ID},
		StartDate:  daysAgo(10), EndDate: daysAgo(5), IsActive: true,
	}
	disabled := &models.Promotion{
		ShopID: s.shop.ID, Name: "Disabled", DiscountPercent: 10,
		ProductIDs: models.UUIDSlice{s.p1.ID},
		StartDate:  daysAgo(1), EndDate: daysFromNow(1), IsActive: false,
	}
	for _, p := range []*models.Promotion{current, expired, disabled} {
		s.Require().NoError(s.db.Create(p).Error)
	}

	list, total, err := s.promos.GetPromotions(PromotionSearchParams{}, s.another.ID, models.UserTypeBuyer)
	s.Require().NoError(err)
	s.Equal(int64(1), total)
	s.Require().Len(list, 1)
	s.Equal("Current", list[0].Name)

	// The owning shop can see everything with the all override.
	all, total, err := s.promos.GetPromotions(PromotionSearchParams{
		ShopID: &s.shop.ID,
		All:    true,
	}, s.owner.ID, models.UserTypeShopOwner)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(all, 3)
}

func TestPromotionServiceSuite(t *testing.T) {
	suite.Run(t, new(PromotionServiceTestSuite))
}
