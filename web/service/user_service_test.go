package service

import (
	"os"
	"testing"
	"time"

	"github.com/alx-polly/polly/database"
	"github.com/alx-polly/polly/database/model"

	"github.com/stretchr/testify/assert"
)

func setup() {
	dbPath := "test.db"
	os.Remove(dbPath)
	database.InitDB(dbPath)
}

func teardown() {
	db, _ := database.GetDB().DB()
	db.Close()
	os.Remove("test.db")
}

func TestRegisterValidation(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	tests := []struct {
		name            string
		form            [4]string // name, email, password, confirm
		expectedMessage string
	}{
		{
			name:            "missing fields",
			form:            [4]string{"", "a@b.co", "secret1", "secret1"},
			expectedMessage: "All fields are required",
		},
		{
			name:            "password mismatch",
			form:            [4]string{"Alice", "a@b.co", "secret1", "secret2"},
			expectedMessage: "Passwords do not match",
		},
		{
			name:            "password too short",
			form:            [4]string{"Alice", "a@b.co", "abc", "abc"},
			expectedMessage: "Password must be at least 6 characters long.",
		},
		{
			name:            "invalid email",
			form:            [4]string{"Alice", "not-an-email", "secret1", "secret1"},
			expectedMessage: "Please enter a valid email address.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := userService.Register(tt.form[0], tt.form[1], tt.form[2], tt.form[3])
			assert.Error(t, err)
			assert.Equal(t, tt.expectedMessage, AuthErrorMessage(err))
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	user, err := userService.Register("Alice", "Alice@Example.com", "secret1", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.False(t, user.EmailVerified)

	// Duplicate email, regardless of case
	_, err = userService.Register("Alice Again", "alice@example.com", "secret1", "secret1")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	// Unverified accounts can not sign in yet
	_, err = userService.Login("alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	// The verification link is delivered out of band, grab the token directly
	authToken := &model.AuthToken{}
	err = database.GetDB().
		Where("user_id = ? AND purpose = ?", user.Id, model.TokenPurposeVerify).
		First(authToken).Error
	assert.NoError(t, err)
	assert.NoError(t, userService.VerifyEmail(authToken.Token))

	loggedIn, err := userService.Login("alice@example.com", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, user.Id, loggedIn.Id)
	assert.True(t, loggedIn.EmailVerified)

	_, err = userService.Login("alice@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = userService.Login("nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// A verification token is single use
	err = userService.VerifyEmail(authToken.Token)
	assert.EqualError(t, err, "This link is invalid or has already been used")
}

func TestPasswordReset(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	user := registerVerified(t, "Bob", "bob@example.com", "secret1")

	// Unknown emails are not reported
	token, err := userService.BeginPasswordReset("ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, token)

	token, err = userService.BeginPasswordReset("bob@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	err = userService.CompletePasswordReset(token, "short", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	err = userService.CompletePasswordReset(token, "newsecret", "othersecret")
	assert.EqualError(t, err, "Passwords do not match")

	err = userService.CompletePasswordReset(token, "newsecret", "newsecret")
	assert.NoError(t, err)

	_, err = userService.Login("bob@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	loggedIn, err := userService.Login("bob@example.com", "newsecret")
	assert.NoError(t, err)
	assert.Equal(t, user.Id, loggedIn.Id)

	// Consumed tokens are gone
	err = userService.CompletePasswordReset(token, "newsecret", "newsecret")
	assert.EqualError(t, err, "This link is invalid or has already been used")
}

func TestPasswordResetExpiredToken(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}
	registerVerified(t, "Carol", "carol@example.com", "secret1")

	token, err := userService.BeginPasswordReset("carol@example.com")
	assert.NoError(t, err)

	err = database.GetDB().Model(model.AuthToken{}).
		Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Hour)).Error
	assert.NoError(t, err)

	err = userService.CompletePasswordReset(token, "newsecret", "newsecret")
	assert.EqualError(t, err, "This link has expired. Please request a new one")
}

func TestAdminAccountManagement(t *testing.T) {
	setup()
	defer teardown()

	userService := UserService{}

	// The seeded admin account
	admin, err := userService.GetFirstAdmin()
	assert.NoError(t, err)
	assert.Equal(t, "admin@localhost", admin.Email)
	assert.True(t, admin.IsAdmin())

	err = userService.UpdateFirstAdmin("root@example.com", "changedpw")
	assert.NoError(t, err)
	loggedIn, err := userService.Login("root@example.com", "changedpw")
	assert.NoError(t, err)
	assert.Equal(t, admin.Id, loggedIn.Id)

	user := registerVerified(t, "Dave", "dave@example.com", "secret1")

	err = userService.SetRole(user.Id, model.RoleAdmin)
	assert.NoError(t, err)
	promoted, _ := userService.GetUserById(user.Id)
	assert.True(t, promoted.IsAdmin())

	err = userService.SetRole(user.Id, "superuser")
	assert.Error(t, err)

	users, total, err := userService.GetUsers(1, 25)
	assert.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	err = userService.DeleteUser(user.Id)
	assert.NoError(t, err)
	_, err = userService.GetUserById(user.Id)
	assert.True(t, database.IsNotFound(err))

	err = userService.DeleteUser(user.Id)
	assert.EqualError(t, err, "user not found")
}

// registerVerified creates an account and marks it verified, skipping the
// email round trip.
func registerVerified(t *testing.T, name, email, password string) *model.User {
	t.Helper()
	userService := UserService{}
	user, err := userService.Register(name, email, password, password)
	assert.NoError(t, err)
	err = database.GetDB().Model(model.User{}).
		Where("id = ?", user.Id).
		Update("email_verified", true).Error
	assert.NoError(t, err)
	user.EmailVerified = true
	return user
}
