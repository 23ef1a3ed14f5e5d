package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catalog entities pushed to the remote store by the batched sync pipeline.
// Each carries a stable client-assigned ID so upserts are idempotent.

// Frame is one frame SKU in the shop inventory.
type Frame struct {
	ID       string          `gorm:"primaryKey"`
	Brand    string          `gorm:"index;not null"`
	Model    string          `gorm:"not null"`
	Color    string
	Size     string
	Price    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Quantity int             `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LensType is a lens family (single vision, bifocal, progressive…).
type LensType struct {
	ID    string          `gorm:"primaryKey"`
	Name  string          `gorm:"not null"`
	Kind  string          `gorm:"type:varchar(30)"`
	Price decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LensCoating is an optional coating applied to lenses.
type LensCoating struct {
	ID          string          `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	Description string
	Price       decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LensThickness is a thickness/index option.
type LensThickness struct {
	ID    string          `gorm:"primaryKey"`
	Name  string          `gorm:"not null"`
	Price decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LensCombination is one row of the lens pricing matrix: a priced combination
// of type, coating and thickness.
type LensCombination struct {
	ID          string          `gorm:"primaryKey"`
	LensTypeID  string          `gorm:"index;not null"`
	CoatingID   string          `gorm:"index;not null"`
	ThicknessID string          `gorm:"index;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactLens is a contact-lens SKU.
type ContactLens struct {
	ID       string          `gorm:"primaryKey"`
	Brand    string          `gorm:"index;not null"`
	Type     string
	Power    string
	Price    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Quantity int             `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceItem is a billable service (eye exam, repair, adjustment…).
type ServiceItem struct {
	ID          string          `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	Category    string          `gorm:"type:varchar(30)"`
	Description string
	Price       decimal.Decimal `gorm:"type:decimal(12,3);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
