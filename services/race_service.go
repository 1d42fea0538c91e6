package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"openrace/apperr"
	"openrace/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RaceService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewRaceService(db *gorm.DB, redis *redis.Client) *RaceService {
	return &RaceService{
		db:    db,
		redis: redis,
	}
}

type CreateRaceRequest struct {
	Name       string `json:"name" binding:"required"`
	TrackID    uint   `json:"track_id" binding:"required"`
	MaxPlayers int    `json:"max_players" binding:"required"`
	AICount    int    `json:"ai_count"`
}

type ReportPositionRequest struct {
	Position models.Vec2 `json:"position"`
	Lap      int         `json:"lap"`
}

// RaceState is the live snapshot cached in Redis for websocket state
// sync. It mirrors what the database holds; the database stays the
// source of truth.
type RaceState struct {
	RaceID     uint          `json:"race_id"`
	Name       string        `json:"name"`
	TrackID    uint          `json:"track_id"`
	Status     string        `json:"status"`
	MaxPlayers int           `json:"max_players"`
	Roster     models.Roster `json:"roster"`
}

func (s *RaceService) CreateRace(userID uint, req *CreateRaceRequest) (*models.Race, error) {
	player, err := s.playerForUser(s.db, userID)
	if err != nil {
		return nil, err
	}

	var track models.Track
	if err := s.db.First(&track, req.TrackID).Error; err != nil {
		return nil, fmt.Errorf("%w: track", apperr.ErrNotFound)
	}

	race, err := models.NewRace(req.Name, &track, player, req.MaxPlayers, req.AICount)
	if err != nil {
		return nil, err
	}

	if err := s.db.Create(race).Error; err != nil {
		return nil, err
	}

	if err := s.storeRaceState(race); err != nil {
		log.Printf("Failed to store race state in Redis: %v", err)
	}

	return race, nil
}

// JoinRace appends the caller to the roster. The race row is locked
// for the duration of the read-modify-write so concurrent joins cannot
// lose each other's roster entries.
func (s *RaceService) JoinRace(userID uint, raceID uint) (*models.Race, error) {
	var race models.Race

	err := s.db.Transaction(func(tx *gorm.DB) error {
		player, err := s.playerForUser(tx, userID)
		if err != nil {
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&race, raceID).Error; err != nil {
			return fmt.Errorf("%w: race", apperr.ErrNotFound)
		}

		var track models.Track
		if err := tx.First(&track, race.TrackID).Error; err != nil {
			return fmt.Errorf("%w: track", apperr.ErrNotFound)
		}

		if err := race.AddParticipant(player, &track.Data); err != nil {
			return err
		}

		return tx.Model(&race).Update("roster", race.Roster).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.storeRaceState(&race); err != nil {
		log.Printf("Failed to update race state in Redis: %v", err)
	}

	return &race, nil
}

func (s *RaceService) StartRace(userID uint, raceID uint) (*models.Race, error) {
	var race models.Race

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&race, raceID).Error; err != nil {
			return fmt.Errorf("%w: race", apperr.ErrNotFound)
		}

		if err := race.Start(userID, time.Now()); err != nil {
			return err
		}

		return tx.Model(&race).Updates(map[string]interface{}{
			"status":     race.Status,
			"started_at": race.StartedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.storeRaceState(&race); err != nil {
		log.Printf("Failed to update race state in Redis: %v", err)
	}

	log.Printf("Race %d started by user %d", race.ID, userID)
	return &race, nil
}

// ReportPosition records one position sample for the caller's own
// roster entry, then re-evaluates the completion rule: if every
// participant is finished the race ends, ranks are assigned and points
// awarded. The whole thing is one locked read-modify-write; any
// concurrent report can be the one that completes the race.
func (s *RaceService) ReportPosition(userID uint, raceID uint, req *ReportPositionRequest) (*models.Race, error) {
	player, err := s.playerForUser(s.db, userID)
	if err != nil {
		return nil, err
	}
	return s.reportPosition(player.ID, raceID, req)
}

// ReportPositionForPlayer is the websocket entry point: the hub has
// already validated roster membership and addresses the entry by
// player id directly.
func (s *RaceService) ReportPositionForPlayer(playerID uint, raceID uint, req *ReportPositionRequest) (*models.Race, error) {
	return s.reportPosition(playerID, raceID, req)
}

func (s *RaceService) reportPosition(playerID uint, raceID uint, req *ReportPositionRequest) (*models.Race, error) {
	var race models.Race

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&race, raceID).Error; err != nil {
			return fmt.Errorf("%w: race", apperr.ErrNotFound)
		}

		if err := race.ApplyReport(playerID, req.Position, req.Lap); err != nil {
			return err
		}

		if race.Roster.AllFinished() {
			standings := race.Finalize(time.Now())
			for _, st := range standings {
				if st.Participant.IsAI {
					continue
				}
				if err := tx.Model(&models.Player{}).
					Where("id = ?", st.Participant.PlayerID).
					Update("points", gorm.Expr("points + ?", st.Points)).Error; err != nil {
					return err
				}
			}
			log.Printf("Race %d finished, %d participants ranked", race.ID, len(standings))
		}

		return tx.Model(&race).Updates(map[string]interface{}{
			"roster":   race.Roster,
			"status":   race.Status,
			"ended_at": race.EndedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.storeRaceState(&race); err != nil {
		log.Printf("Failed to update race state in Redis: %v", err)
	}

	return &race, nil
}

func (s *RaceService) GetRace(raceID uint) (*models.Race, error) {
	var race models.Race
	if err := s.db.Preload("Track").First(&race, raceID).Error; err != nil {
		return nil, fmt.Errorf("%w: race", apperr.ErrNotFound)
	}
	return &race, nil
}

func (s *RaceService) ListWaitingRaces() ([]models.Race, error) {
	var races []models.Race
	err := s.db.Where("status = ?", models.RaceStatusWaiting).
		Order("created_at DESC").
		Find(&races).Error
	return races, err
}

// IsParticipant reports whether the player has a roster entry in the
// race, or is its host. Used by the websocket route's access check.
func (s *RaceService) IsParticipant(raceID uint, playerID uint) (bool, error) {
	race, err := s.GetRace(raceID)
	if err != nil {
		return false, err
	}
	if race.Roster.HasPlayer(playerID) {
		return true, nil
	}
	player, err := s.GetPlayerByID(playerID)
	if err != nil {
		return false, nil
	}
	return race.HostID == player.UserID, nil
}

func (s *RaceService) GetPlayerByID(playerID uint) (*models.Player, error) {
	var player models.Player
	if err := s.db.First(&player, playerID).Error; err != nil {
		return nil, fmt.Errorf("%w: player", apperr.ErrNotFound)
	}
	return &player, nil
}

func (s *RaceService) playerForUser(tx *gorm.DB, userID uint) (*models.Player, error) {
	var player models.Player
	if err := tx.Where("user_id = ?", userID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: player", apperr.ErrNotFound)
		}
		return nil, err
	}
	return &player, nil
}

// GetCurrentRaceState returns the live snapshot for websocket sync,
// falling back to the database when the cache is cold.
func (s *RaceService) GetCurrentRaceState(raceID uint) (*RaceState, error) {
	if state := s.getRaceState(raceID); state != nil {
		return state, nil
	}

	race, err := s.GetRace(raceID)
	if err != nil {
		return nil, err
	}

	if err := s.storeRaceState(race); err != nil {
		log.Printf("Failed to store race state in Redis: %v", err)
	}
	return stateFromRace(race), nil
}

func stateFromRace(race *models.Race) *RaceState {
	return &RaceState{
		RaceID:     race.ID,
		Name:       race.Name,
		TrackID:    race.TrackID,
		Status:     race.Status,
		MaxPlayers: race.MaxPlayers,
		Roster:     race.Roster,
	}
}

func raceStateKey(raceID uint) string {
	return "race:" + strconv.FormatUint(uint64(raceID), 10)
}

func (s *RaceService) storeRaceState(race *models.Race) error {
	data, err := json.Marshal(stateFromRace(race))
	if err != nil {
		return fmt.Errorf("failed to marshal race state: %w", err)
	}

	// 2h TTL: long enough to outlive any race, short enough to reap
	// abandoned lobbies.
	if err := s.redis.Set(context.Background(), raceStateKey(race.ID), data, 2*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}
	return nil
}

func (s *RaceService) getRaceState(raceID uint) *RaceState {
	data, err := s.redis.Get(context.Background(), raceStateKey(raceID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error getting race state for %d: %v", raceID, err)
		}
		return nil
	}

	var state RaceState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		log.Printf("Failed to unmarshal race state for %d: %v", raceID, err)
		return nil
	}
	return &state
}
