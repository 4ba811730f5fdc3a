// models/reservation.go
package models

import "time"

const ReservationTable = "lending_reservations"

type Reservation struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID string `gorm:"type:uuid;index;not null" json:"itemId"`
	UserID string `gorm:"type:uuid;index;not null" json:"userId"`

	ReservedAt   time.Time  `gorm:"index;not null" json:"reservedAt"`
	PickUpBy     time.Time  `gorm:"index;not null" json:"pickUpBy"`
	CheckedOutAt *time.Time `gorm:"index" json:"checkedOutAt,omitempty"`
	DueDate      *time.Time `gorm:"index" json:"dueDate,omitempty"`
	Returned     bool       `gorm:"not null;default:false" json:"returned"`
	Extensions   int        `gorm:"not null;default:0" json:"extensions"`

	// 日历日期（存为该日 UTC 零点）
	LastPenaltyAppliedOn *time.Time `gorm:"type:date" json:"lastPenaltyAppliedOn,omitempty"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"item,omitempty"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Reservation) TableName() string { return ReservationTable }

// CheckedOut 表示已取走（checkedOutAt 已设置）
func (r *Reservation) CheckedOut() bool { return r.CheckedOutAt != nil }
