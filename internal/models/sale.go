package models

import (
	"time"
)

const (
	SaleStatusComplete   = "complete"
	SaleStatusIncomplete = "incomplete"
)

type Sale struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Reference   string     `gorm:"size:50;uniqueIndex;not null" json:"reference"`
	MerchantID  string     `gorm:"size:32;not null;index:idx_sales_merchant_created,priority:1" json:"merchant_id"`
	Customers   []Customer `gorm:"many2many:sale_customers" json:"customers"`
	Items       []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
	TotalAmount float64    `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	AmountPaid  float64    `gorm:"type:decimal(14,2);not null" json:"amount_paid"`
	Status      string     `gorm:"size:20;not null" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time  `gorm:"index:idx_sales_merchant_created,priority:2" json:"created_at"`
}

// SaleItem keeps the product name as it was at sale time so the record
// survives product deletion.
type SaleItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	SaleID       uint    `gorm:"not null;index" json:"sale_id"`
	ProductID    uint    `gorm:"not null;index" json:"product_id"`
	ProductName  string  `gorm:"size:150;not null" json:"product_name"`
	Quantity     float64 `gorm:"type:decimal(14,4);not null" json:"quantity"`
	PricePerUnit float64 `gorm:"type:decimal(14,4);not null" json:"price_per_unit"`
	Total        float64 `gorm:"type:decimal(14,2);not null" json:"total"`
	Position     int     `gorm:"not null;default:0" json:"-"`
}

// SaleStatus derives the status from the amounts.
func SaleStatus(totalAmount, amountPaid float64) string {
	if amountPaid >= totalAmount {
		return SaleStatusComplete
	}
	return SaleStatusIncomplete
}
