package models

import (
	"time"
)

const (
	ClarificationPending   = "pending"
	ClarificationResolved  = "resolved"
	ClarificationCancelled = "cancelled"
)

// ClarificationData is the structured context needed to resume the operation
// that raised a clarification.
type ClarificationData struct {
	ValueType         string         `json:"valueType,omitempty"`
	UnitName          string         `json:"unitName,omitempty"`
	TargetUnit        string         `json:"targetUnit,omitempty"`
	OriginalQuantity  *float64       `json:"originalQuantity,omitempty"`
	OriginalUnit      string         `json:"originalUnit,omitempty"`
	OriginalPrice     *float64       `json:"originalPrice,omitempty"`
	OriginalPriceUnit string         `json:"originalPriceUnit,omitempty"`
	AvailableQuantity *float64       `json:"availableQuantity,omitempty"`
	Intent            string         `json:"intent,omitempty"`
	Params            map[string]any `json:"params,omitempty"`
}

type Clarification struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	MerchantID   string            `gorm:"size:32;not null;index:idx_clarifications_key,priority:1" json:"merchant_id"`
	Type         string            `gorm:"size:40;not null;index:idx_clarifications_key,priority:2" json:"type"`
	ProductName  string            `gorm:"size:150;index:idx_clarifications_key,priority:3" json:"product_name,omitempty"`
	CustomerName string            `gorm:"size:200;index:idx_clarifications_key,priority:4" json:"customer_name,omitempty"`
	Status       string            `gorm:"size:20;not null;default:pending" json:"status"`
	Prompt       string            `gorm:"type:text;not null" json:"prompt"`
	DataNeeded   ClarificationData `gorm:"type:text;serializer:json" json:"data_needed"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
