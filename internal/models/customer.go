package models

import (
	"time"
)

type Customer struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	MerchantID       string     `gorm:"size:32;not null;uniqueIndex:idx_customers_merchant_name,priority:1" json:"merchant_id"`
	Name             string     `gorm:"size:200;not null;uniqueIndex:idx_customers_merchant_name,priority:2" json:"name"`
	Phone            string     `gorm:"size:20" json:"phone,omitempty"`
	Email            string     `gorm:"size:200" json:"email,omitempty"`
	Address          string     `gorm:"size:200" json:"address,omitempty"`
	Tags             []string   `gorm:"type:text;serializer:json" json:"tags"`
	TotalSpent       float64    `gorm:"type:decimal(14,2);default:0" json:"total_spent"`
	LastPurchaseDate *time.Time `json:"last_purchase_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
