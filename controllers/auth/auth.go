package authController

import (
	"botportal/config"
	"botportal/database"
	"botportal/middleware"
	"botportal/models"
	"botportal/utils"
	"botportal/validators"
	authValidator "botportal/validators/auth"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxLoginAttempts   = 3
	loginAttemptWindow = 15 * time.Minute
	loginBlockDuration = 15 * time.Minute
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	email := strings.ToLower(strings.TrimSpace(reqData.Email))

	// Check if email already exists
	if err := db.Where("email = ?", email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Resolve the referrer once; it never changes afterwards
	var referrerID *uint
	if code := strings.ToUpper(strings.TrimSpace(reqData.ReferralCode)); code != "" {
		var referrer models.User
		if err := db.Select("id").Where("referral_code = ? AND is_deleted = ?", code, false).First(&referrer).Error; err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"referralCode": "Invalid referral code!"})
		}
		referrerID = &referrer.ID
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logrus.Errorf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	referralCode, err := utils.GenerateReferralCode(db)
	if err != nil {
		logrus.Errorf("Error generating referral code: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:         strings.TrimSpace(reqData.Name),
		Email:        email,
		Role:         models.RoleUser,
		Password:     string(hashedPassword),
		ReferralCode: referralCode,
		ReferrerID:   referrerID,
	}

	if err := db.Create(&newUser).Error; err != nil {
		logrus.WithField("email", email).Errorf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	utils.SendWelcomeEmail(newUser.Email, newUser.Name, newUser.ReferralCode)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	email := strings.ToLower(strings.TrimSpace(reqData.Email))

	var user models.User
	err := db.Where("email = ? AND is_deleted = ?", email, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}
	if err != nil {
		logrus.Errorf("Error loading user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	now := time.Now()

	// Check if the user is blocked
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(now) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account is temporarily blocked. Try again later.", fiber.Map{
			"blockedUntil": user.BlockedUntil,
		})
	}

	// Forget old failures outside the attempt window
	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > loginAttemptWindow {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= maxLoginAttempts {
			unblockTime := now.Add(loginBlockDuration)
			user.IsBlocked = true
			user.BlockedUntil = &unblockTime
			user.FailedLoginAttempts = 0
			logrus.WithField("userId", user.ID).Warn("User blocked after repeated failed logins")
		}

		if err := db.Select("failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").Save(&user).Error; err != nil {
			logrus.WithField("userId", user.ID).Errorf("Error recording failed login: %v", err)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	user.LastLogin = &now
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.IsBlocked = false
	user.BlockedUntil = nil
	if err := db.Select("last_login", "failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").Save(&user).Error; err != nil {
		logrus.WithField("userId", user.ID).Errorf("Error saving last login time: %v", err)
	}

	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	loginTracking := models.LoginTracking{
		UserID:    user.ID,
		IPAddress: ip,
		Device:    c.Get(fiber.HeaderUserAgent),
		Timestamp: now,
	}
	if err := db.Create(&loginTracking).Error; err != nil {
		logrus.WithField("userId", user.ID).Errorf("Error saving login tracking details: %v", err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("pagination").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	var loginTracking []models.LoginTracking
	var total int64

	query := db.Model(&models.LoginTracking{}).
		Where("user_id = ? AND is_deleted = ?", userId, false).
		Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}
	if err := query.Order("timestamp DESC").
		Offset(reqData.Offset()).
		Limit(reqData.Limit).
		Find(&loginTracking).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.",
		validators.PageResponse("loginTracking", loginTracking, total, reqData))
}
