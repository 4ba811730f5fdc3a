// models/item.go
package models

import "time"

const ItemTable = "lending_items"

// Item 是可借出的目录记录；AvailableQuantity 是库存计数器
type Item struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string    `gorm:"size:200;not null" json:"title"`
	Author            string    `gorm:"size:200" json:"author"`
	ISBN              string    `gorm:"size:32;index" json:"isbn"`
	Genre             string    `gorm:"size:80" json:"genre"`
	PublicationYear   int       `json:"publicationYear"`
	AvailableQuantity int       `gorm:"not null;default:0;check:available_quantity >= 0" json:"availableQuantity"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }
