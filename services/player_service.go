package services

import (
	"errors"
	"fmt"

	"openrace/apperr"
	"openrace/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{db: db}
}

type UpdateNameRequest struct {
	Name string `json:"name" binding:"required"`
}

type PurchaseRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
}

type SelectItemRequest struct {
	Type models.ItemType `json:"type" binding:"required"`
	Name string          `json:"name" binding:"required"`
}

// GetOrCreatePlayer returns the user's racing profile, creating the
// default one on first touch.
func (s *PlayerService) GetOrCreatePlayer(userID uint) (*models.Player, error) {
	var player models.Player
	err := s.db.Where("user_id = ?", userID).First(&player).Error
	if err == nil {
		return &player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}

	player = models.Player{
		UserID:            userID,
		Name:              user.Name,
		Points:            0,
		SelectedCar:       "default",
		SelectedCharacter: "default",
		OwnedCars:         models.StringList{"default"},
		OwnedCharacters:   models.StringList{"default"},
	}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *PlayerService) UpdateName(userID uint, name string) (*models.Player, error) {
	player, err := s.GetOrCreatePlayer(userID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(player).Update("name", name).Error; err != nil {
		return nil, err
	}
	return player, nil
}

// PurchaseItem deducts the price and adds the item to the garage as
// one atomic read-modify-write on the player row.
func (s *PlayerService) PurchaseItem(userID uint, itemID uint) (*models.Player, error) {
	var player models.Player

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&player).Error; err != nil {
			return fmt.Errorf("%w: player", apperr.ErrNotFound)
		}

		var item models.ShopItem
		if err := tx.First(&item, itemID).Error; err != nil {
			return fmt.Errorf("%w: item", apperr.ErrNotFound)
		}

		if err := player.Purchase(&item); err != nil {
			return err
		}

		return tx.Model(&player).Updates(map[string]interface{}{
			"points":           player.Points,
			"owned_cars":       player.OwnedCars,
			"owned_characters": player.OwnedCharacters,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *PlayerService) SelectItem(userID uint, req *SelectItemRequest) (*models.Player, error) {
	player, err := s.GetOrCreatePlayer(userID)
	if err != nil {
		return nil, err
	}

	if err := player.SelectItem(req.Type, req.Name); err != nil {
		return nil, err
	}

	if err := s.db.Model(player).Updates(map[string]interface{}{
		"selected_car":       player.SelectedCar,
		"selected_character": player.SelectedCharacter,
	}).Error; err != nil {
		return nil, err
	}
	return player, nil
}
