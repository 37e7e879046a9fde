package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus enum values
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

// Accepted manual payment methods
var PaymentMethods = []string{"USDT_TRC20", "USDT_ERC20", "USDT_BEP20", "BTC", "ETH"}

// Payment is a manual crypto payment submitted with a blockchain TXID as proof.
type Payment struct {
	gorm.Model
	UserID         uint            `gorm:"not null;index" json:"userId"`
	SubscriptionID *uint           `gorm:"index" json:"subscriptionId"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"amount"`
	Method         string          `gorm:"type:varchar(20);not null" json:"method"`
	WalletAddress  string          `gorm:"type:varchar(128)" json:"walletAddress"`
	TransactionID  string          `gorm:"type:varchar(128);not null;index" json:"transactionId"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	// Audit
	ReviewedBy        string     `gorm:"type:varchar(100)" json:"reviewedBy"`
	ReviewedAt        *time.Time `json:"reviewedAt"`
	ReviewNote        string     `gorm:"type:text" json:"reviewNote"`
	NotificationMsgID int        `gorm:"default:0" json:"-"`

	User         User          `gorm:"foreignKey:UserID" json:"-"`
	Subscription *Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
