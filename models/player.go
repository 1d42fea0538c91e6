package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"openrace/apperr"

	"gorm.io/gorm"
)

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return jsonValue(l)
}

func (l *StringList) Scan(value interface{}) error {
	return jsonScan(l, value)
}

func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}

// Player is the persistent per-user racing profile: point balance,
// garage and current selection. One per user.
type Player struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	UserID            uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	Name              string         `json:"name" gorm:"not null"`
	Points            int            `json:"points" gorm:"not null;default:0"`
	SelectedCar       string         `json:"selected_car" gorm:"not null;default:'default'"`
	SelectedCharacter string         `json:"selected_character" gorm:"not null;default:'default'"`
	OwnedCars         StringList     `json:"owned_cars" gorm:"type:jsonb;not null"`
	OwnedCharacters   StringList     `json:"owned_characters" gorm:"type:jsonb;not null"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// Purchase deducts the item's price and adds it to the matching owned
// list. The player is left unchanged on error.
func (p *Player) Purchase(item *ShopItem) error {
	if p.Points < item.Price {
		return fmt.Errorf("%w: need %d points, have %d", apperr.ErrInsufficientFunds, item.Price, p.Points)
	}

	switch item.Type {
	case ItemCar:
		if p.OwnedCars.Contains(item.Name) {
			return apperr.ErrAlreadyOwned
		}
		p.OwnedCars = append(p.OwnedCars, item.Name)
	case ItemCharacter:
		if p.OwnedCharacters.Contains(item.Name) {
			return apperr.ErrAlreadyOwned
		}
		p.OwnedCharacters = append(p.OwnedCharacters, item.Name)
	default:
		return fmt.Errorf("%w: unknown item type %q", apperr.ErrValidation, item.Type)
	}

	p.Points -= item.Price
	return nil
}

// SelectItem makes an owned car or character the active one.
func (p *Player) SelectItem(target ItemType, name string) error {
	switch target {
	case ItemCar:
		if !p.OwnedCars.Contains(name) {
			return apperr.ErrItemNotOwned
		}
		p.SelectedCar = name
	case ItemCharacter:
		if !p.OwnedCharacters.Contains(name) {
			return apperr.ErrItemNotOwned
		}
		p.SelectedCharacter = name
	default:
		return fmt.Errorf("%w: unknown item type %q", apperr.ErrValidation, target)
	}
	return nil
}
