package userControllers

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/creditbazaar/marketplace-api/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile id already exists")
)

// Directory is the persistence surface for account provisioning and
// deep-clean. Credentials and profiles are separate tables so either side
// can be removed or left behind independently.
type Directory interface {
	CredentialsByEmail(ctx context.Context, email string) ([]models.Credential, error)
	CreateCredential(ctx context.Context, cred *models.Credential) error
	DeleteCredential(ctx context.Context, id string) error

	ProfileByID(ctx context.Context, id string) (*models.User, error)
	ProfileEmailExists(ctx context.Context, email string) (bool, error)
	CreateProfile(ctx context.Context, u *models.User) error
	AnonymizeProfile(ctx context.Context, id string, anon AnonymizedProfile) error
	DeleteProfile(ctx context.Context, id string) error

	HasOrders(ctx context.Context, userID string) (bool, error)
	DeleteChatMessages(ctx context.Context, userID string) error
	DeleteConversations(ctx context.Context, userID string) error
	DeleteOrderItems(ctx context.Context, userID string) error
	DeleteOrders(ctx context.Context, userID string) error
	DeleteCart(ctx context.Context, userID string) error
}

// AnonymizedProfile holds the scrambled replacement values written when a
// profile must survive for order history.
type AnonymizedProfile struct {
	Name  string
	Email string
}

// GormDirectory is the PostgreSQL-backed Directory.
type GormDirectory struct{ db *gorm.DB }

func NewGormDirectory(db *gorm.DB) *GormDirectory { return &GormDirectory{db: db} }

func (d *GormDirectory) CredentialsByEmail(ctx context.Context, email string) ([]models.Credential, error) {
	var creds []models.Credential
	err := d.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		Find(&creds).Error
	return creds, err
}

func (d *GormDirectory) CreateCredential(ctx context.Context, cred *models.Credential) error {
	return d.db.WithContext(ctx).Create(cred).Error
}

func (d *GormDirectory) DeleteCredential(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Delete(&models.Credential{}, "id = ?", id).Error
}

func (d *GormDirectory) ProfileByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (d *GormDirectory) ProfileEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	return count > 0, err
}

// CreateProfile inserts the profile and its cart in one transaction.
func (d *GormDirectory) CreateProfile(ctx context.Context, u *models.User) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		return tx.Create(&models.Cart{UserID: u.ID}).Error
	})
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrProfileExists
	}
	return err
}

func (d *GormDirectory) AnonymizeProfile(ctx context.Context, id string, anon AnonymizedProfile) error {
	return d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"name":        anon.Name,
			"email":       anon.Email,
			"phone":       "",
			"street":      "",
			"city":        "",
			"state":       "",
			"postal_code": "",
			"country":     "",
			"status":      models.UserStatusInactive,
		}).Error
}

func (d *GormDirectory) DeleteProfile(ctx context.Context, id string) error {
	return d.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (d *GormDirectory) HasOrders(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}

func (d *GormDirectory) DeleteChatMessages(ctx context.Context, userID string) error {
	return d.db.WithContext(ctx).
		Where("conversation_id IN (?)",
			d.db.Model(&models.ChatConversation{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.ChatMessage{}).Error
}

func (d *GormDirectory) DeleteConversations(ctx context.Context, userID string) error {
	return d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ChatConversation{}).Error
}

func (d *GormDirectory) DeleteOrderItems(ctx context.Context, userID string) error {
	return d.db.WithContext(ctx).
		Where("order_id IN (?)",
			d.db.Model(&models.Order{}).Select("id").Where("user_id = ?", userID)).
		Delete(&models.OrderItem{}).Error
}

func (d *GormDirectory) DeleteOrders(ctx context.Context, userID string) error {
	return d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Order{}).Error
}

func (d *GormDirectory) DeleteCart(ctx context.Context, userID string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cart.CartID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cart).Error
	})
}
