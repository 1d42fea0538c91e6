package models

import (
	"database/sql/driver"
	"fmt"
	"sort"
	"time"

	"openrace/apperr"

	"gorm.io/gorm"
)

const (
	RaceStatusWaiting  = "waiting"
	RaceStatusRacing   = "racing"
	RaceStatusFinished = "finished"

	// FinishLaps is the lap counter value at which a participant is done.
	FinishLaps = 3

	// startSpacing is the grid gap between consecutive joiners.
	startSpacing = 50.0
)

// aiNames is the fixed pool AI participants draw their names from, in
// creation order.
var aiNames = []string{"Speed Demon", "Turbo", "Lightning", "Racer X", "Velocity"}

// Participant is one roster entry of a race, human or AI. AI entries
// carry the host's player id as a placeholder and are skipped by every
// join/report lookup, so the placeholder can never collide with a real
// entry. AI entries never report positions and therefore never finish.
type Participant struct {
	PlayerID uint   `json:"player_id"`
	Name     string `json:"name"`
	Position Vec2   `json:"position"`
	Lap      int    `json:"lap"`
	Finished bool   `json:"finished"`
	Rank     int    `json:"rank,omitempty"`
	IsAI     bool   `json:"is_ai"`
}

// Roster is the ordered participant list of a race, stored as a single
// jsonb blob so that every mutation is one atomic read-modify-write of
// the whole roster. Order is join order and is the ranking tie-break.
type Roster []Participant

func (r Roster) Value() (driver.Value, error) {
	return jsonValue(r)
}

func (r *Roster) Scan(value interface{}) error {
	return jsonScan(r, value)
}

// HasPlayer reports whether a non-AI entry exists for the player.
func (r Roster) HasPlayer(playerID uint) bool {
	for _, p := range r {
		if p.PlayerID == playerID && !p.IsAI {
			return true
		}
	}
	return false
}

func (r Roster) AllFinished() bool {
	for _, p := range r {
		if !p.Finished {
			return false
		}
	}
	return len(r) > 0
}

// RankedOrder returns roster indices in finishing order: finished
// entries first, then higher lap counts; the stable sort keeps join
// order among ties.
func (r Roster) RankedOrder() []int {
	order := make([]int, len(r))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := r[order[a]], r[order[b]]
		if pa.Finished != pb.Finished {
			return pa.Finished
		}
		return pa.Lap > pb.Lap
	})
	return order
}

type Race struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Name       string         `json:"name" gorm:"not null"`
	TrackID    uint           `json:"track_id" gorm:"not null"`
	HostID     uint           `json:"host_id" gorm:"not null"` // user id of the host
	Roster     Roster         `json:"roster" gorm:"type:jsonb;not null"`
	Status     string         `json:"status" gorm:"not null;default:'waiting';index"`
	MaxPlayers int            `json:"max_players" gorm:"not null"`
	StartedAt  *time.Time     `json:"started_at"`
	EndedAt    *time.Time     `json:"ended_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	Track Track `json:"track,omitempty"`
}

// NewRace builds a waiting race with the host as participant #0 and up
// to min(aiCount, maxPlayers-1) AI participants named from the fixed
// pool, each on its own grid slot.
func NewRace(name string, track *Track, host *Player, maxPlayers, aiCount int) (*Race, error) {
	if maxPlayers < 2 {
		return nil, fmt.Errorf("%w: max players must be at least 2", apperr.ErrValidation)
	}
	if aiCount < 0 {
		return nil, fmt.Errorf("%w: ai count must not be negative", apperr.ErrValidation)
	}

	roster := Roster{{
		PlayerID: host.ID,
		Name:     host.Name,
		Position: track.Data.SlotPosition(0),
	}}

	n := aiCount
	if n > maxPlayers-1 {
		n = maxPlayers - 1
	}
	if n > len(aiNames) {
		n = len(aiNames)
	}
	for i := 0; i < n; i++ {
		roster = append(roster, Participant{
			PlayerID: host.ID, // placeholder, see Participant
			Name:     aiNames[i],
			Position: track.Data.SlotPosition(i + 1),
			IsAI:     true,
		})
	}

	return &Race{
		Name:       name,
		TrackID:    track.ID,
		HostID:     host.UserID,
		Roster:     roster,
		Status:     RaceStatusWaiting,
		MaxPlayers: maxPlayers,
	}, nil
}

// AddParticipant appends the player to the roster at the next grid
// slot. Joining is only legal while the race is waiting and has room.
func (r *Race) AddParticipant(p *Player, track *TrackData) error {
	if r.Status != RaceStatusWaiting {
		return apperr.ErrNotJoinable
	}
	if len(r.Roster) >= r.MaxPlayers {
		return apperr.ErrRaceFull
	}
	if r.Roster.HasPlayer(p.ID) {
		return apperr.ErrAlreadyJoined
	}

	r.Roster = append(r.Roster, Participant{
		PlayerID: p.ID,
		Name:     p.Name,
		Position: track.SlotPosition(len(r.Roster)),
	})
	return nil
}

// Start moves the race from waiting to racing. Only the host may start.
func (r *Race) Start(callerUserID uint, now time.Time) error {
	if r.HostID != callerUserID {
		return fmt.Errorf("%w: only the host can start the race", apperr.ErrNotAuthorized)
	}
	if r.Status != RaceStatusWaiting {
		return fmt.Errorf("%w: race is %s", apperr.ErrInvalidState, r.Status)
	}
	r.Status = RaceStatusRacing
	r.StartedAt = &now
	return nil
}

// ApplyReport records a position report for the player's own entry.
// The reported lap counter is taken verbatim (checkpoint detection is
// client-side); the authoritative finished flag is lap >= FinishLaps.
// No other roster entry is touched.
func (r *Race) ApplyReport(playerID uint, pos Vec2, lap int) error {
	if r.Status != RaceStatusRacing {
		return fmt.Errorf("%w: race is %s", apperr.ErrInvalidState, r.Status)
	}
	for i := range r.Roster {
		p := &r.Roster[i]
		if p.PlayerID == playerID && !p.IsAI {
			p.Position = pos
			p.Lap = lap
			p.Finished = lap >= FinishLaps
			return nil
		}
	}
	return fmt.Errorf("%w: player is not in this race", apperr.ErrNotFound)
}

// Standing is one entry of the final classification.
type Standing struct {
	Participant *Participant
	Points      int
}

// Finalize ends the race, assigns 1-based ranks in roster order
// preserved by the stable sort, and returns the standings with the
// points due for each place. AI entries are ranked but callers must
// not award their points to anyone.
func (r *Race) Finalize(now time.Time) []Standing {
	r.Status = RaceStatusFinished
	r.EndedAt = &now

	order := r.Roster.RankedOrder()
	standings := make([]Standing, len(order))
	for place, idx := range order {
		p := &r.Roster[idx]
		p.Rank = place + 1
		standings[place] = Standing{Participant: p, Points: PointsForPlace(place)}
	}
	return standings
}

// PointsForPlace returns the reward for the 0-based finishing place:
// 100 for first, 10 less per place, floored at 10.
func PointsForPlace(place int) int {
	points := 100 - 10*place
	if points < 10 {
		points = 10
	}
	return points
}
