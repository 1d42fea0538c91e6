package services

import (
	"errors"
	"fmt"
	"log"

	"openrace/apperr"
	"openrace/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InviteService struct {
	db *gorm.DB
	// joinRace performs the race join an acceptance implies; held as a
	// func so the auto-join path can be exercised without a database.
	joinRace func(guestUserID, raceID uint) (*models.Race, error)
}

func NewInviteService(db *gorm.DB, races *RaceService) *InviteService {
	return &InviteService{
		db:       db,
		joinRace: races.JoinRace,
	}
}

type SendInviteRequest struct {
	GuestName string `json:"guest_name" binding:"required"`
	RaceID    *uint  `json:"race_id"`
}

type RespondInviteRequest struct {
	Accept bool `json:"accept"`
}

// PendingInvite is an invitation enriched with display names for the
// guest's invite list.
type PendingInvite struct {
	models.Invitation
	HostName string `json:"host_name"`
	RaceName string `json:"race_name"`
}

// SendInvite creates a pending invitation. Guest resolution by display
// name stands in for real peer discovery.
func (s *InviteService) SendInvite(hostUserID uint, req *SendInviteRequest) (*models.Invitation, error) {
	var guest models.User
	if err := s.db.Where("name = ?", req.GuestName).First(&guest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no nearby player named %q", apperr.ErrNotFound, req.GuestName)
		}
		return nil, err
	}

	invite := models.Invitation{
		HostID:  hostUserID,
		GuestID: guest.ID,
		Status:  models.InviteStatusPending,
		RaceID:  req.RaceID,
	}
	if err := s.db.Create(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// RespondInvite transitions the invitation exactly once; the row is
// locked for the read-modify-write so concurrent responses cannot both
// observe pending. Accepting an invite tied to a race then attempts
// the normal join.
func (s *InviteService) RespondInvite(guestUserID uint, inviteID uint, accept bool) (*models.Invitation, error) {
	var invite models.Invitation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invite, inviteID).Error; err != nil {
			return fmt.Errorf("%w: invitation", apperr.ErrNotFound)
		}

		if err := invite.Respond(guestUserID, accept); err != nil {
			return err
		}

		return tx.Model(&invite).Update("status", invite.Status).Error
	})
	if err != nil {
		return nil, err
	}

	s.autoJoin(&invite, guestUserID)
	return &invite, nil
}

// autoJoin attempts the join implied by an accepted invitation. The
// join is best-effort: the race may have filled up or started since
// the invite was sent, and the acceptance stands either way.
func (s *InviteService) autoJoin(invite *models.Invitation, guestUserID uint) {
	if invite.Status != models.InviteStatusAccepted || invite.RaceID == nil {
		return
	}
	if _, err := s.joinRace(guestUserID, *invite.RaceID); err != nil {
		log.Printf("Auto-join for invite %d skipped: %v", invite.ID, err)
	}
}

// ListPendingFor returns the guest's open invitations with host and
// race names resolved.
func (s *InviteService) ListPendingFor(guestUserID uint) ([]PendingInvite, error) {
	var invites []models.Invitation
	if err := s.db.Where("guest_id = ? AND status = ?", guestUserID, models.InviteStatusPending).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, err
	}

	result := make([]PendingInvite, 0, len(invites))
	for _, invite := range invites {
		entry := PendingInvite{Invitation: invite, HostName: "Unknown", RaceName: "Unknown Race"}

		var host models.User
		if err := s.db.First(&host, invite.HostID).Error; err == nil {
			entry.HostName = host.Name
		}
		if invite.RaceID != nil {
			var race models.Race
			if err := s.db.First(&race, *invite.RaceID).Error; err == nil {
				entry.RaceName = race.Name
			}
		}
		result = append(result, entry)
	}
	return result, nil
}
