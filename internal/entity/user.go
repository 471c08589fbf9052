package entity

import (
	"time"
)

// User is owned by the accounts service; the chat gateway only reads it.
type User struct {
	ID        string    `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Profile *UserProfile `gorm:"foreignKey:UserID"`
}

func (User) TableName() string { return "tb_users" }

// UserProfile shares its primary key with the owning user.
type UserProfile struct {
	UserID    string  `gorm:"primaryKey"`
	FirstName string  `gorm:"size:150"`
	LastName  string  `gorm:"size:150"`
	Avatar    *string `gorm:"size:200"`
	Bio       *string `gorm:"type:text"`
	Title     *string `gorm:"size:100"`
}

func (UserProfile) TableName() string { return "tb_user_profiles" }
