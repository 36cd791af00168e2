package models

import (
	"gorm.io/datatypes"
)

type Course struct {
	BaseModel
	Title       string         `gorm:"not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description string         `json:"description"`
	Price       int64          `gorm:"not null" json:"price"`
	Currency    string         `gorm:"type:varchar(8);default:'IDR'" json:"currency"`
	IsPublished bool           `gorm:"default:true" json:"is_published"`
	Features    datatypes.JSON `gorm:"type:jsonb" json:"features,omitempty"` // {"modules": 12, "certificate": true}
}
