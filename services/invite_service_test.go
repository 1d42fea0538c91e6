package services

import (
	"testing"

	"openrace/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inviteTestRace(t *testing.T) (*models.Race, *models.TrackData) {
	t.Helper()
	track := &models.Track{
		ID:   1,
		Name: "Speedway",
		Data: models.TrackData{
			Checkpoints:   []models.Vec2{{X: 300, Y: 100}, {X: 100, Y: 250}},
			StartPosition: models.Vec2{X: 100, Y: 100},
		},
	}
	host := &models.Player{ID: 1, UserID: 101, Name: "Host"}
	race, err := models.NewRace("invite cup", track, host, 2, 0)
	require.NoError(t, err)
	race.ID = 9
	return race, &track.Data
}

// Accepting an invitation tied to a race with no room leaves the
// invitation accepted and the roster untouched: the failed join is
// swallowed, not surfaced.
func TestRespondInviteAcceptFullRaceKeepsRoster(t *testing.T) {
	race, trackData := inviteTestRace(t)
	require.NoError(t, race.AddParticipant(&models.Player{ID: 2, UserID: 102, Name: "Second"}, trackData))
	require.Len(t, race.Roster, 2) // at MaxPlayers

	joinCalls := 0
	svc := &InviteService{
		joinRace: func(guestUserID, raceID uint) (*models.Race, error) {
			joinCalls++
			assert.Equal(t, race.ID, raceID)
			guest := &models.Player{ID: 3, UserID: guestUserID, Name: "Guest"}
			if err := race.AddParticipant(guest, trackData); err != nil {
				return nil, err
			}
			return race, nil
		},
	}

	raceID := race.ID
	invite := &models.Invitation{ID: 5, HostID: 101, GuestID: 103, Status: models.InviteStatusPending, RaceID: &raceID}
	require.NoError(t, invite.Respond(103, true))

	before := append(models.Roster{}, race.Roster...)
	svc.autoJoin(invite, 103)

	assert.Equal(t, models.InviteStatusAccepted, invite.Status)
	assert.Equal(t, 1, joinCalls)
	assert.Equal(t, before, race.Roster)
}

// Same swallow behavior once the race has started: the acceptance
// stands, the roster stays as it was at the start.
func TestRespondInviteAcceptStartedRaceKeepsRoster(t *testing.T) {
	race, trackData := inviteTestRace(t)
	race.Status = models.RaceStatusRacing

	svc := &InviteService{
		joinRace: func(guestUserID, raceID uint) (*models.Race, error) {
			guest := &models.Player{ID: 3, UserID: guestUserID, Name: "Guest"}
			if err := race.AddParticipant(guest, trackData); err != nil {
				return nil, err
			}
			return race, nil
		},
	}

	raceID := race.ID
	invite := &models.Invitation{ID: 6, HostID: 101, GuestID: 103, Status: models.InviteStatusPending, RaceID: &raceID}
	require.NoError(t, invite.Respond(103, true))

	before := append(models.Roster{}, race.Roster...)
	svc.autoJoin(invite, 103)

	assert.Equal(t, models.InviteStatusAccepted, invite.Status)
	assert.Equal(t, before, race.Roster)
}

func TestAutoJoinSkipsRejectedAndRaceless(t *testing.T) {
	joinCalls := 0
	svc := &InviteService{
		joinRace: func(guestUserID, raceID uint) (*models.Race, error) {
			joinCalls++
			return nil, nil
		},
	}

	rejected := &models.Invitation{ID: 7, GuestID: 103, Status: models.InviteStatusPending}
	require.NoError(t, rejected.Respond(103, false))
	svc.autoJoin(rejected, 103)

	accepted := &models.Invitation{ID: 8, GuestID: 103, Status: models.InviteStatusPending}
	require.NoError(t, accepted.Respond(103, true))
	svc.autoJoin(accepted, 103) // no associated race

	assert.Equal(t, 0, joinCalls)
}
