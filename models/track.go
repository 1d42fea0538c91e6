package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// CheckpointRadius is the distance (in track units) at which clients
// consider the next checkpoint reached. The server never re-derives
// checkpoint crossings from geometry; it records the lap counter the
// client reports. The constant is served with the track list so every
// client uses the same value.
const CheckpointRadius = 30

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TrackData is the static geometry of a track: ordered checkpoints, the
// start position and obstacle rectangles. Obstacles are rendered by
// clients only; nothing server-side collides against them.
type TrackData struct {
	Checkpoints   []Vec2 `json:"checkpoints"`
	StartPosition Vec2   `json:"start_position"`
	Obstacles     []Rect `json:"obstacles"`
}

func (d TrackData) Value() (driver.Value, error) {
	return jsonValue(d)
}

func (d *TrackData) Scan(value interface{}) error {
	return jsonScan(d, value)
}

// SlotPosition returns where the k-th joiner lines up on the grid:
// joiners are spaced startSpacing units apart along the x axis.
func (d TrackData) SlotPosition(k int) Vec2 {
	return Vec2{X: d.StartPosition.X + float64(k)*startSpacing, Y: d.StartPosition.Y}
}

type Track struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description"`
	Difficulty  string         `json:"difficulty" gorm:"not null"`
	Data        TrackData      `json:"data" gorm:"type:jsonb;not null"`
	Unlocked    bool           `json:"unlocked" gorm:"not null;default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
