package models

import (
	"time"

	"eventhall-backend/utils"

	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type User struct {
	Base
	Email    string `gorm:"uniqueIndex;not null"`
	Username string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
	FullName string `gorm:"not null"`
	Phone    string

	Role       string `gorm:"type:varchar(20);not null"` // 'admin' or 'staff'
	Department string

	PreferredLanguage     string `gorm:"type:varchar(5)"` // en, he, ar
	EmailNotifications    bool
	WhatsAppNotifications bool `gorm:"column:whatsapp_notifications"`
	PushNotifications     bool

	LastLogin *time.Time
	IsActive  bool
}

// Hash the password before the row is written
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if err = u.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if u.Role == "" {
		u.Role = RoleStaff
	}
	if u.PreferredLanguage == "" {
		u.PreferredLanguage = "en"
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
