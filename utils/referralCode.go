package utils

import (
	"botportal/models"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const referralCodeLength = 8

// GenerateReferralCode returns a referral code not yet assigned to any user.
func GenerateReferralCode(db *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:referralCodeLength]

		var count int64
		if err := db.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique referral code")
}
