package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string     `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Username    string     `gorm:"not null;size:50;uniqueIndex" json:"username"`
	FullName    string     `gorm:"not null;size:100" json:"full_name"`
	Bio         string     `gorm:"size:500" json:"bio"`
	AvatarURL   string     `gorm:"size:500" json:"avatar_url"`
	Role        Role       `gorm:"size:20;not null;default:'user';index" json:"role"`
	IsBanned    bool       `gorm:"not null;default:false;index" json:"is_banned"`
	BanReason   string     `gorm:"size:500" json:"ban_reason,omitempty"`
	LoginCount  int        `gorm:"not null;default:0" json:"login_count"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Profile is the public projection of a user, embedded in confessions,
// comments and follow lists.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Role      Role      `json:"role"`
}

func (Profile) TableName() string { return "users" }

func (u *User) Profile() *Profile {
	return &Profile{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Role:      u.Role,
	}
}
