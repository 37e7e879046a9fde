package database

import (
	"botportal/config"
	"botportal/models"
	"botportal/utils"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultPlans = []models.Plan{
	{
		Name:           "Starter",
		Description:    "Single exchange, conservative profit cap",
		MonthlyPrice:   decimal.NewFromInt(40),
		QuarterlyPrice: decimal.NewFromInt(108),
		ProfitLimit:    decimal.NewFromInt(15),
		IsActive:       true,
	},
	{
		Name:           "Professional",
		Description:    "Balanced profit cap for active traders",
		MonthlyPrice:   decimal.NewFromInt(80),
		QuarterlyPrice: decimal.NewFromInt(216),
		ProfitLimit:    decimal.NewFromInt(25),
		IsActive:       true,
	},
	{
		Name:           "Enterprise",
		Description:    "Highest profit cap",
		MonthlyPrice:   decimal.NewFromInt(150),
		QuarterlyPrice: decimal.NewFromInt(405),
		ProfitLimit:    decimal.NewFromInt(50),
		IsActive:       true,
	},
}

// Seed inserts the default plan catalogue and, when configured, the bootstrap admin.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Plan{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		plans := make([]models.Plan, len(defaultPlans))
		copy(plans, defaultPlans)
		if err := db.Create(&plans).Error; err != nil {
			return err
		}
		logrus.Infof("Seeded %d plans", len(plans))
	}

	if config.AppConfig == nil || config.AppConfig.AdminEmail == "" || config.AppConfig.AdminPassword == "" {
		return nil
	}

	var admin models.User
	err := db.Where("email = ?", config.AppConfig.AdminEmail).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(config.AppConfig.AdminPassword), config.AppConfig.SaltRound)
	if err != nil {
		return err
	}
	code, err := utils.GenerateReferralCode(db)
	if err != nil {
		return err
	}
	admin = models.User{
		Name:         "Administrator",
		Email:        config.AppConfig.AdminEmail,
		Role:         models.RoleAdmin,
		Password:     string(hashedPassword),
		ReferralCode: code,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logrus.WithField("email", admin.Email).Info("Bootstrap admin created")
	return nil
}
