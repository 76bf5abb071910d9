package models

import "time"

// Role values assigned to a user at first login. A role never changes
// afterwards; re-authenticating with a different pre-selected role fails.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User is an identity record created on first successful Google sign-in.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GoogleID    string    `gorm:"size:64;uniqueIndex;not null" json:"google_id"`
	DisplayName string    `gorm:"size:255;not null" json:"display_name"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role        string    `gorm:"size:16;not null" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsTeacher reports whether the user holds the teacher role.
func (u User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsStudent reports whether the user holds the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// ValidRole reports whether role is one of the two supported roles.
func ValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}
