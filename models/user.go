package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string
type UserStatus string

const (
	AccountTypeBusiness AccountType = "business"
	AccountTypePersonal AccountType = "personal"

	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// User is the profile row. Its ID equals the ID of the Credential the user
// authenticates with.
type User struct {
	ID          string          `gorm:"primaryKey" json:"id"`
	Email       string          `gorm:"unique;not null" json:"email"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	AccountType AccountType     `gorm:"type:VARCHAR(20);default:'personal'" json:"account_type"`
	CreditLimit decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"credit_limit"`
	CreditUsed  decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"credit_used"`
	IsAdmin     bool            `gorm:"default:false" json:"is_admin"`
	Status      UserStatus      `gorm:"type:VARCHAR(20);default:'active'" json:"status"`
	Address     Address         `gorm:"embedded" json:"address"`
	Cart        Cart            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Orders      []Order         `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Address model embedded in User
type Address struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Street     string `json:"street"`
	PostalCode string `json:"postal_code"`
}

// Credential is the auth identity row, kept separate from the profile so
// deep-clean can remove one without the other.
type Credential struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AvailableCredit returns credit_limit - credit_used.
func (u *User) AvailableCredit() decimal.Decimal {
	return u.CreditLimit.Sub(u.CreditUsed)
}
