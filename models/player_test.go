package models

import (
	"testing"

	"openrace/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopCar(name string, price int) *ShopItem {
	return &ShopItem{Name: name, Type: ItemCar, Price: price}
}

func TestPurchase(t *testing.T) {
	p := &Player{
		Points:          600,
		OwnedCars:       StringList{"default"},
		OwnedCharacters: StringList{"default"},
	}

	require.NoError(t, p.Purchase(shopCar("Speed Racer", 500)))
	assert.Equal(t, 100, p.Points)
	assert.True(t, p.OwnedCars.Contains("Speed Racer"))
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	p := &Player{Points: 100, OwnedCars: StringList{"default"}}

	err := p.Purchase(shopCar("Lightning Bolt", 1000))
	assert.ErrorIs(t, err, apperr.ErrInsufficientFunds)
	assert.Equal(t, 100, p.Points)
	assert.Len(t, p.OwnedCars, 1)
}

func TestPurchaseAlreadyOwned(t *testing.T) {
	p := &Player{Points: 2000, OwnedCars: StringList{"default", "Speed Racer"}}

	err := p.Purchase(shopCar("Speed Racer", 500))
	assert.ErrorIs(t, err, apperr.ErrAlreadyOwned)
	assert.Equal(t, 2000, p.Points)

	err = p.Purchase(&ShopItem{Name: "Pro Racer", Type: ItemCharacter, Price: 300})
	require.NoError(t, err)
	err = p.Purchase(&ShopItem{Name: "Pro Racer", Type: ItemCharacter, Price: 300})
	assert.ErrorIs(t, err, apperr.ErrAlreadyOwned)
}

func TestPurchaseUnknownType(t *testing.T) {
	p := &Player{Points: 1000}

	err := p.Purchase(&ShopItem{Name: "Mystery", Type: "boat", Price: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, 1000, p.Points)
}

func TestSelectItem(t *testing.T) {
	p := &Player{
		SelectedCar:       "default",
		SelectedCharacter: "default",
		OwnedCars:         StringList{"default", "Speed Racer"},
		OwnedCharacters:   StringList{"default"},
	}

	require.NoError(t, p.SelectItem(ItemCar, "Speed Racer"))
	assert.Equal(t, "Speed Racer", p.SelectedCar)
	assert.Equal(t, "default", p.SelectedCharacter)
}

func TestSelectItemNotOwned(t *testing.T) {
	p := &Player{SelectedCar: "default", OwnedCars: StringList{"default"}}

	err := p.SelectItem(ItemCar, "Lightning Bolt")
	assert.ErrorIs(t, err, apperr.ErrItemNotOwned)
	assert.Equal(t, "default", p.SelectedCar)
}

func TestSelectItemUnknownType(t *testing.T) {
	p := &Player{OwnedCars: StringList{"default"}}

	err := p.SelectItem("boat", "default")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
