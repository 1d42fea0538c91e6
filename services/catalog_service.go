package services

import (
	"log"

	"openrace/models"

	"gorm.io/gorm"
)

// CatalogService serves the static reference data: tracks and shop
// items. Both are seeded once at boot; seeding is a no-op when any
// rows already exist.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

func (s *CatalogService) ListTracks() ([]models.Track, error) {
	var tracks []models.Track
	err := s.db.Order("id").Find(&tracks).Error
	return tracks, err
}

func (s *CatalogService) ListShopItems() ([]models.ShopItem, error) {
	var items []models.ShopItem
	err := s.db.Order("id").Find(&items).Error
	return items, err
}

func (s *CatalogService) SeedTracks() error {
	var count int64
	if err := s.db.Model(&models.Track{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tracks := []models.Track{
		{
			Name:        "Desert Circuit",
			Description: "A fast desert track with wide turns",
			Difficulty:  models.DifficultyEasy,
			Unlocked:    true,
			Data: models.TrackData{
				Checkpoints: []models.Vec2{
					{X: 200, Y: 100}, {X: 400, Y: 200}, {X: 300, Y: 400}, {X: 100, Y: 300},
				},
				StartPosition: models.Vec2{X: 100, Y: 100},
				Obstacles: []models.Rect{
					{X: 250, Y: 250, Width: 50, Height: 50},
					{X: 350, Y: 150, Width: 30, Height: 30},
				},
			},
		},
		{
			Name:        "City Streets",
			Description: "Navigate through busy city streets",
			Difficulty:  models.DifficultyMedium,
			Unlocked:    true,
			Data: models.TrackData{
				Checkpoints: []models.Vec2{
					{X: 150, Y: 100}, {X: 350, Y: 150}, {X: 400, Y: 350}, {X: 200, Y: 400}, {X: 50, Y: 250},
				},
				StartPosition: models.Vec2{X: 100, Y: 100},
				Obstacles: []models.Rect{
					{X: 200, Y: 200, Width: 40, Height: 40},
					{X: 300, Y: 300, Width: 60, Height: 20},
					{X: 150, Y: 350, Width: 30, Height: 50},
				},
			},
		},
		{
			Name:        "Mountain Pass",
			Description: "Dangerous mountain roads with sharp turns",
			Difficulty:  models.DifficultyHard,
			Unlocked:    false,
			Data: models.TrackData{
				Checkpoints: []models.Vec2{
					{X: 180, Y: 80}, {X: 380, Y: 120}, {X: 420, Y: 320},
					{X: 250, Y: 450}, {X: 80, Y: 380}, {X: 60, Y: 180},
				},
				StartPosition: models.Vec2{X: 100, Y: 100},
				Obstacles: []models.Rect{
					{X: 220, Y: 180, Width: 80, Height: 30},
					{X: 320, Y: 280, Width: 40, Height: 80},
					{X: 150, Y: 320, Width: 50, Height: 40},
					{X: 380, Y: 200, Width: 30, Height: 60},
				},
			},
		},
		{
			Name:        "Speedway",
			Description: "High-speed oval track",
			Difficulty:  models.DifficultyEasy,
			Unlocked:    true,
			Data: models.TrackData{
				Checkpoints: []models.Vec2{
					{X: 300, Y: 100}, {X: 400, Y: 250}, {X: 300, Y: 400}, {X: 100, Y: 250},
				},
				StartPosition: models.Vec2{X: 100, Y: 100},
				Obstacles:     []models.Rect{},
			},
		},
		{
			Name:        "Forest Trail",
			Description: "Winding path through dense forest",
			Difficulty:  models.DifficultyMedium,
			Unlocked:    false,
			Data: models.TrackData{
				Checkpoints: []models.Vec2{
					{X: 160, Y: 120}, {X: 280, Y: 180}, {X: 380, Y: 280},
					{X: 320, Y: 420}, {X: 180, Y: 380}, {X: 80, Y: 240},
				},
				StartPosition: models.Vec2{X: 100, Y: 100},
				Obstacles: []models.Rect{
					{X: 200, Y: 150, Width: 25, Height: 25},
					{X: 300, Y: 220, Width: 35, Height: 35},
					{X: 250, Y: 350, Width: 30, Height: 30},
					{X: 120, Y: 300, Width: 40, Height: 20},
				},
			},
		},
	}

	if err := s.db.Create(&tracks).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d tracks", len(tracks))
	return nil
}

func (s *CatalogService) SeedShopItems() error {
	var count int64
	if err := s.db.Model(&models.ShopItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := []models.ShopItem{
		{
			Name:        "Speed Racer",
			Type:        models.ItemCar,
			Price:       500,
			Description: "High-speed racing car with excellent acceleration",
			Stats:       models.ItemStats{Speed: 9, Acceleration: 8, Handling: 6},
			ImageURL:    "🏎️",
		},
		{
			Name:        "Off-Road Beast",
			Type:        models.ItemCar,
			Price:       750,
			Description: "Perfect for rough terrain and obstacles",
			Stats:       models.ItemStats{Speed: 7, Acceleration: 6, Handling: 9},
			ImageURL:    "🚙",
		},
		{
			Name:        "Lightning Bolt",
			Type:        models.ItemCar,
			Price:       1000,
			Description: "The fastest car in the game",
			Stats:       models.ItemStats{Speed: 10, Acceleration: 9, Handling: 7},
			ImageURL:    "⚡",
		},
		{
			Name:        "Tank Crusher",
			Type:        models.ItemCar,
			Price:       1200,
			Description: "Heavy but powerful, can push through anything",
			Stats:       models.ItemStats{Speed: 6, Acceleration: 5, Handling: 8},
			ImageURL:    "🚚",
		},
		{
			Name:        "Pro Racer",
			Type:        models.ItemCharacter,
			Price:       300,
			Description: "Professional racing driver with experience",
			Stats:       models.ItemStats{Speed: 7, Acceleration: 7, Handling: 8},
			ImageURL:    "👨‍🏁",
		},
		{
			Name:        "Speed Demon",
			Type:        models.ItemCharacter,
			Price:       600,
			Description: "Loves high speeds and risky maneuvers",
			Stats:       models.ItemStats{Speed: 9, Acceleration: 8, Handling: 6},
			ImageURL:    "😈",
		},
		{
			Name:        "Precision Driver",
			Type:        models.ItemCharacter,
			Price:       800,
			Description: "Master of perfect turns and handling",
			Stats:       models.ItemStats{Speed: 6, Acceleration: 7, Handling: 10},
			ImageURL:    "🤖",
		},
		{
			Name:        "All-Rounder",
			Type:        models.ItemCharacter,
			Price:       1000,
			Description: "Balanced skills in all areas",
			Stats:       models.ItemStats{Speed: 8, Acceleration: 8, Handling: 8},
			ImageURL:    "⭐",
		},
	}

	if err := s.db.Create(&items).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d shop items", len(items))
	return nil
}
