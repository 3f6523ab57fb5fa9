package models

import "time"

type Order struct {
	ID                  uint        `gorm:"primaryKey" json:"id"`
	StudentID           uint        `gorm:"not null;index" json:"student_id"`
	Token               string      `gorm:"type:varchar(12);uniqueIndex;not null" json:"token"`
	Status              OrderStatus `gorm:"type:varchar(20);not null;default:'placed'" json:"status"`
	TotalAmount         float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	SpecialInstructions string      `gorm:"type:text" json:"special_instructions"`
	OrderedAt           time.Time   `gorm:"not null;index" json:"ordered_at"`
	StatusChangedAt     time.Time   `gorm:"not null" json:"status_changed_at"`
	CreatedAt           time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"not null" json:"updated_at"`
	Items               []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// Total recomputes the order amount from its line items. The stored
// TotalAmount column is derived and must always agree with this sum.
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += float64(it.Quantity) * it.UnitPrice
	}
	return total
}
