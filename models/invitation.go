package models

import (
	"fmt"
	"time"

	"openrace/apperr"

	"gorm.io/gorm"
)

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
	InviteStatusRejected = "rejected"
)

// Invitation is a host-to-guest race-join proposal. It stands in for
// real peer discovery: the guest is looked up by display name when the
// invite is sent. Both accepted and rejected are terminal.
type Invitation struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	HostID    uint           `json:"host_id" gorm:"not null;index"`  // user id
	GuestID   uint           `json:"guest_id" gorm:"not null;index"` // user id
	Status    string         `json:"status" gorm:"not null;default:'pending'"`
	RaceID    *uint          `json:"race_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Respond transitions the invitation exactly once. Only the invited
// guest may respond; a second response fails.
func (i *Invitation) Respond(guestUserID uint, accept bool) error {
	if i.GuestID != guestUserID {
		return fmt.Errorf("%w: only the invited player can respond", apperr.ErrNotAuthorized)
	}
	if i.Status != InviteStatusPending {
		return fmt.Errorf("%w: invitation already %s", apperr.ErrInvalidState, i.Status)
	}
	if accept {
		i.Status = InviteStatusAccepted
	} else {
		i.Status = InviteStatusRejected
	}
	return nil
}
