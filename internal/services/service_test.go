// internal/services/service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ouishop/marketplace-backend/internal/models"
)

const testVATRate = 20.0

// newTestDB opens a private in-memory database per test so suites cannot
// leak state into each other.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Shop{},
		&models.Product{},
		&models.Promotion{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, userType models.UserType) *models.User {
	t.Helper()

	user := &models.User{
		Username: fmt.Sprintf("user_%s", uuid.New().String()[:8]),
		Email:    fmt.Sprintf("%s@test.example", uuid.New().String()[:8]),
		UserType: userType,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, user.SetPassword("TestPass123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedShop(t *testing.T, db *gorm.DB, ownerID uuid.UUID) *models.Shop {
	t.Helper()

	shop := &models.Shop{
		OwnerID:  ownerID,
		Name:     fmt.Sprintf("Shop %s", uuid.New().String()[:8]),
		IsActive: true,
	}
	require.NoError(t, db.Create(shop).Error)
	return shop
}

func seedProduct(t *testing.T, db *gorm.DB, shopID uuid.UUID, priceHT float64, priceTTC *float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ShopID: shopID,
		Name:   fmt.Sprintf("Product %s", uuid.New().String()[:8]),
		Price: models.ProductPrice{
			Current: priceHT,
			TTC:     priceTTC,
		},
		Stock: models.ProductStock{Quantity: stock},
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func reloadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) *models.Product {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, id).Error)
	return &product
}

func floatPtr(v float64) *float64 { return &v }

func daysAgo(n int) time.Time     { return time.Now().Add(-time.Duration(n) * 24 * time.Hour) }
func daysFromNow(n int) time.Time { return time.Now().Add(time.Duration(n) * 24 * time.Hour) }
