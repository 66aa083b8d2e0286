package model

import (
	"time"
)

// Role values stored on User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Id            int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string    `json:"name" gorm:"not null"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash  string    `json:"-" gorm:"column:password_hash;not null"`
	Role          string    `json:"role" gorm:"not null;default:user"`
	EmailVerified bool      `json:"emailVerified" gorm:"default:false"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Poll struct {
	Id        int          `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Question  string       `json:"question" form:"question" gorm:"not null"`
	// No gorm defaults here: a tagged default makes gorm omit the zero
	// value on insert, which would silently store a private poll as public.
	IsPublic  bool         `json:"isPublic" form:"isPublic"`
	IsActive  bool         `json:"isActive"`
	CreatedBy int          `json:"createdBy" gorm:"index;not null"`
	EndDate   *time.Time   `json:"endDate" form:"endDate"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Options   []PollOption `json:"options" gorm:"foreignKey:PollId;constraint:OnDelete:CASCADE"`
}

type PollOption struct {
	Id     int    `json:"id" gorm:"primaryKey;autoIncrement"`
	PollId int    `json:"pollId" gorm:"index;not null"`
	Text   string `json:"text" gorm:"not null"`
}

// Vote holds a single user's choice within one poll. The composite unique
// index is what guarantees at most one row per (poll, user) pair; the vote
// service upserts against it.
type Vote struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	PollId    int       `json:"pollId" gorm:"uniqueIndex:idx_votes_poll_user;not null"`
	OptionId  int       `json:"optionId" gorm:"index;not null"`
	UserId    int       `json:"userId" gorm:"uniqueIndex:idx_votes_poll_user;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthToken purposes.
const (
	TokenPurposeReset  = "reset"
	TokenPurposeVerify = "verify"
)

// AuthToken is a single-use token mailed (or, without a mailer, logged) to a
// user for password reset or email verification.
type AuthToken struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int       `json:"userId" gorm:"index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex;not null"`
	Purpose   string    `json:"purpose" gorm:"not null"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

type Setting struct {
	Id    int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" gorm:"uniqueIndex;not null"`
	Value string `json:"value"`
}
