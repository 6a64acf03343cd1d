package model

import (
	baseModel "github.com/Mpratama260304/MpratamaStore-sub001/pkg/model"
)

// Product is a digital good. Price is in major units of Currency and is
// the live price; orders snapshot it at creation time.
type Product struct {
	baseModel.BaseModel
	Name      string `gorm:"not null" json:"name"`
	Slug      string `gorm:"uniqueIndex;not null" json:"slug"`
	Price     int64  `gorm:"not null" json:"price"`
	Currency  string `gorm:"size:8;default:'IDR'" json:"currency"`
	Published bool   `gorm:"default:false" json:"published"`

	Assets []DigitalAsset `gorm:"foreignKey:ProductID" json:"assets,omitempty"`
}

// DigitalAsset is the downloadable content behind a product. Immutable
// once attached to a published product; orders reference it, never copy.
type DigitalAsset struct {
	baseModel.BaseModel
	ProductID   string `gorm:"type:uuid;index;not null" json:"productId"`
	StorageKey  string `gorm:"not null" json:"-"`
	Filename    string `gorm:"not null" json:"filename"`
	ContentType string `gorm:"size:128" json:"contentType"`
}
