package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	gorm.Model
	Name            string          `gorm:"default:''" json:"name"`
	Email           string          `gorm:"unique;not null" json:"email"`
	Role            string          `gorm:"type:varchar(20);default:'USER'" json:"role"` // USER, ADMIN
	Password        string          `gorm:"not null" json:"-"`
	ReferralCode    string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"referralCode"`
	ReferrerID      *uint           `gorm:"index" json:"referrerId"` // Set once at signup
	CommissionTotal decimal.Decimal `gorm:"type:decimal(18,8);not null;default:0" json:"commissionTotal"`

	// Payment review lockout
	FailedPaymentCount  int        `gorm:"default:0" json:"failedPaymentCount"`
	PaymentBlockedUntil *time.Time `json:"paymentBlockedUntil"`

	// Login lockout
	LastLogin           *time.Time `json:"lastLogin"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`
	LastFailedLogin     *time.Time `json:"-"`
	IsBlocked           bool       `gorm:"default:false" json:"isBlocked"`
	BlockedUntil        *time.Time `json:"blockedUntil"`
	IsDeleted           bool       `gorm:"default:false" json:"-"`

	Referrer *User `gorm:"foreignKey:ReferrerID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// PaymentBlocked reports whether payment submission is currently locked for the user.
func (u *User) PaymentBlocked(now time.Time) bool {
	return u.PaymentBlockedUntil != nil && u.PaymentBlockedUntil.After(now)
}
