package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"
	"github.com/alx-polly/polly/logger"
	"github.com/alx-polly/polly/util/crypto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel auth failures, translated to user-facing strings by
// AuthErrorMessage.
var (
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("Email not confirmed")
	ErrAlreadyRegistered  = errors.New("User already registered")
	ErrPasswordTooShort   = errors.New("Password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("Unable to validate email address: invalid format")
)

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const tokenTTL = 24 * time.Hour

// AuthErrorMessage maps auth failures to the fixed user-facing strings; any
// other error passes through verbatim.
func AuthErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password. Please try again."
	case errors.Is(err, ErrEmailNotConfirmed):
		return "Please check your email and click the confirmation link to verify your account."
	case errors.Is(err, ErrAlreadyRegistered):
		return "An account with this email already exists. Please sign in instead."
	case errors.Is(err, ErrPasswordTooShort):
		return "Password must be at least 6 characters long."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	default:
		if err == nil || err.Error() == "" {
			return "An authentication error occurred."
		}
		return err.Error()
	}
}

type UserService struct{}

// Register validates the form fields, creates the user with role "user" and
// mints an email verification token. The verification link is logged in
// place of a mailer.
func (s *UserService) Register(name, email, password, confirmPassword string) (*model.User, error) {
	if name == "" || email == "" || password == "" || confirmPassword == "" {
		return nil, errors.New("All fields are required")
	}
	if password != confirmPassword {
		return nil, errors.New("Passwords do not match")
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegexp.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRegistered
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}

	token, err := s.mintToken(user.Id, model.TokenPurposeVerify)
	if err != nil {
		logger.Warning("mint verification token failed:", err)
	} else {
		logger.Infof("verification link for %s: /auth/verify-email?token=%s", user.Email, token)
	}

	return user, nil
}

// Login checks credentials and returns the user. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *UserService) Login(email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).Where("email = ?", email).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, ErrInvalidCredentials
	}

	if !crypto.CheckPasswordHash(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotConfirmed
	}

	return user, nil
}

func (s *UserService) GetUserById(id int) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	if err := db.Where("id = ?", id).First(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BeginPasswordReset mints a reset token for the account. A missing account
// is not reported to the caller, to avoid leaking which emails exist.
func (s *UserService) BeginPasswordReset(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", errors.New("Email is required")
	}

	db := database.GetDB()
	user := &model.User{}
	err := db.Where("email = ?", email).First(user).Error
	if database.IsNotFound(err) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	token, err := s.mintToken(user.Id, model.TokenPurposeReset)
	if err != nil {
		return "", err
	}
	logger.Infof("password reset link for %s: /auth/reset-password?token=%s", user.Email, token)
	return token, nil
}

// CompletePasswordReset consumes a reset token and sets the new password.
func (s *UserService) CompletePasswordReset(token, password, confirmPassword string) error {
	if password != confirmPassword {
		return errors.New("Passwords do not match")
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	db := database.GetDB()
	authToken, err := s.consumeToken(token, model.TokenPurposeReset)
	if err != nil {
		return err
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	return db.Model(model.User{}).
		Where("id = ?", authToken.UserId).
		Update("password_hash", hash).Error
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *UserService) VerifyEmail(token string) error {
	db := database.GetDB()
	authToken, err := s.consumeToken(token, model.TokenPurposeVerify)
	if err != nil {
		return err
	}
	return db.Model(model.User{}).
		Where("id = ?", authToken.UserId).
		Update("email_verified", true).Error
}

func (s *UserService) mintToken(userId int, purpose string) (string, error) {
	db := database.GetDB()
	token := uuid.NewString()
	authToken := &model.AuthToken{
		UserId:    userId,
		Token:     token,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(tokenTTL),
	}
	if err := db.Create(authToken).Error; err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) consumeToken(token, purpose string) (*model.AuthToken, error) {
	db := database.GetDB()
	authToken := &model.AuthToken{}
	err := db.Where("token = ? AND purpose = ?", token, purpose).First(authToken).Error
	if database.IsNotFound(err) {
		return nil, errors.New("This link is invalid or has already been used")
	} else if err != nil {
		return nil, err
	}
	if time.Now().After(authToken.ExpiresAt) {
		db.Delete(authToken)
		return nil, errors.New("This link has expired. Please request a new one")
	}
	if err := db.Delete(authToken).Error; err != nil {
		return nil, err
	}
	return authToken, nil
}

// GetUsers returns a page of accounts for the admin user list, newest first.
func (s *UserService) GetUsers(page, limit int) ([]model.User, int64, error) {
	db := database.GetDB()

	var total int64
	if err := db.Model(model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := db.Model(model.User{}).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) SetRole(id int, role string) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return errors.New("unknown role: " + role)
	}
	db := database.GetDB()
	result := db.Model(model.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("user not found")
	}
	return nil
}

// GetFirstAdmin returns the oldest admin account, used by the CLI to show
// the seeded credentials.
func (s *UserService) GetFirstAdmin() (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).
		Where("role = ?", model.RoleAdmin).
		Order("id ASC").
		First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateFirstAdmin updates the email and/or password of the oldest admin
// account. Empty arguments leave the field unchanged.
func (s *UserService) UpdateFirstAdmin(email, password string) error {
	if email == "" && password == "" {
		return errors.New("email and password can not be both empty")
	}

	user, err := s.GetFirstAdmin()
	if err != nil {
		return err
	}

	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !emailRegexp.MatchString(email) {
			return ErrInvalidEmail
		}
		user.Email = email
	}
	if password != "" {
		if len(password) < 6 {
			return ErrPasswordTooShort
		}
		hash, err := crypto.HashPasswordAsBcrypt(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	db := database.GetDB()
	return db.Save(user).Error
}

// DeleteUser removes an account and its votes. Polls the user created stay,
// matching the moderation page which deletes polls explicitly.
func (s *UserService) DeleteUser(id int) error {
	db := database.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(model.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(model.AuthToken{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(model.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("user not found")
		}
		return nil
	})
}
