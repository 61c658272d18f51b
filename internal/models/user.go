// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	BusinessName string     `json:"business_name" gorm:"size:255"`
	BusinessType string     `json:"business_type" gorm:"size:100"`
	Currency     string     `json:"currency" gorm:"size:3;default:'IDR'"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Products      []Product      `json:"products,omitempty" gorm:"foreignKey:UserID"`
	Transactions  []Transaction  `json:"transactions,omitempty" gorm:"foreignKey:UserID"`
	PaymentOrders []PaymentOrder `json:"payment_orders,omitempty" gorm:"foreignKey:UserID"`
	ChatSessions  []ChatSession  `json:"chat_sessions,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
