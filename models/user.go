package models

import (
	"time"
)

const UserTable = "lending_users"

// User 的 Balance 是累计罚金，受上限约束
type User struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string  `gorm:"uniqueIndex;size:255;not null" json:"email"`
	FirstName string  `gorm:"size:255" json:"firstName"`
	LastName  string  `gorm:"size:255" json:"lastName"`
	Balance   float64 `gorm:"not null;default:0" json:"balance"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return UserTable
}
