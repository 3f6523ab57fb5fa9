package models

import "time"

type MenuItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Category        string    `gorm:"type:varchar(50);index" json:"category"`
	Price           float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Description     string    `gorm:"type:text" json:"description"`
	Available       bool      `gorm:"not null;default:true" json:"available"`
	PreparationTime int       `gorm:"not null;default:15" json:"preparation_time"` // minutes
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}
