package orderControllers

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/models"
)

// GormStore is the PostgreSQL-backed Store.
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) AvailableCredit(ctx context.Context, userID string) (decimal.Decimal, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("credit_limit", "credit_used").
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, err
	}
	return user.AvailableCredit(), nil
}

func (s *GormStore) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOrderNum
		}
		return err
	}
	return nil
}

func (s *GormStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&items).Error
}

// ReserveCredit increments credit_used only when the new total stays within
// the credit limit. The WHERE clause makes the check and the increment one
// atomic statement, so concurrent checkouts cannot overdraw the line.
func (s *GormStore) ReserveCredit(ctx context.Context, userID string, amount decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND credit_used + ? <= credit_limit", userID, amount).
		UpdateColumn("credit_used", gorm.Expr("credit_used + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientCredit
	}
	return nil
}

func (s *GormStore) DeleteOrderItems(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
}

func (s *GormStore) DeleteOrder(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Delete(&models.Order{}, orderID).Error
}
