package entity

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleManager      UserRole = "MANAGER"
	RoleOrdinaryUser UserRole = "ORDINARY_USER"
)

type AuthChannel string

const (
	AuthChannelEmail AuthChannel = "EMAIL"
	AuthChannelPhone AuthChannel = "PHONE"
)

// AuthStatus is the account's verification progression. It only ever moves
// forward: NEW -> VERIFIED_CODE -> DONE -> PHOTO_DONE.
type AuthStatus string

const (
	AuthStatusNew          AuthStatus = "NEW"
	AuthStatusVerifiedCode AuthStatus = "VERIFIED_CODE"
	AuthStatusDone         AuthStatus = "DONE"
	AuthStatusPhotoDone    AuthStatus = "PHOTO_DONE"
)

var authStatusRank = map[AuthStatus]int{
	AuthStatusNew:          0,
	AuthStatusVerifiedCode: 1,
	AuthStatusDone:         2,
	AuthStatusPhotoDone:    3,
}

// CanAdvanceTo reports whether moving to next keeps the progression forward.
func (s AuthStatus) CanAdvanceTo(next AuthStatus) bool {
	return authStatusRank[next] > authStatusRank[s]
}

// CanLogin is true once profile completion is done.
func (s AuthStatus) CanLogin() bool {
	return s == AuthStatusDone || s == AuthStatusPhotoDone
}

type Gender string

const (
	GenderMale     Gender = "MALE"
	GenderFemale   Gender = "FEMALE"
	GenderOptional Gender = "OPTIONAL"
)

type User struct {
	Base
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Username     string      `db:"username"`
	Email        *string     `db:"email"`
	PhoneNumber  *string     `db:"phone_number"`
	PasswordHash string      `db:"password"`
	Role         UserRole    `db:"role"`
	AuthChannel  AuthChannel `db:"auth_channel"`
	AuthStatus   AuthStatus  `db:"auth_status"`
	Gender       Gender      `db:"gender"`
	Image        *string     `db:"image"`
	LastLoginAt  *time.Time  `db:"last_login_at"`
}

// Identifier returns the signup identifier: the email or the phone number,
// whichever the account was created with.
func (u *User) Identifier() string {
	if u.AuthChannel == AuthChannelEmail && u.Email != nil {
		return *u.Email
	}
	if u.PhoneNumber != nil {
		return *u.PhoneNumber
	}
	return ""
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
