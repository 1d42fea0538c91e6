package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// ItemType discriminates the two purchasable categories. Using a
// dedicated type keeps select/purchase requests exhaustive instead of
// passing free-form strings around.
type ItemType string

const (
	ItemCar       ItemType = "car"
	ItemCharacter ItemType = "character"
)

func (t ItemType) Valid() bool {
	return t == ItemCar || t == ItemCharacter
}

type ItemStats struct {
	Speed        int `json:"speed"`
	Acceleration int `json:"acceleration"`
	Handling     int `json:"handling"`
}

func (s ItemStats) Value() (driver.Value, error) {
	return jsonValue(s)
}

func (s *ItemStats) Scan(value interface{}) error {
	return jsonScan(s, value)
}

type ShopItem struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Type        ItemType       `json:"type" gorm:"not null"`
	Price       int            `json:"price" gorm:"not null"`
	Description string         `json:"description"`
	Stats       ItemStats      `json:"stats" gorm:"type:jsonb;not null"`
	ImageURL    string         `json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
