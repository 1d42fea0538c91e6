package models

import (
	"testing"

	"openrace/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationRespond(t *testing.T) {
	inv := &Invitation{HostID: 1, GuestID: 2, Status: InviteStatusPending}

	require.NoError(t, inv.Respond(2, true))
	assert.Equal(t, InviteStatusAccepted, inv.Status)

	inv = &Invitation{HostID: 1, GuestID: 2, Status: InviteStatusPending}
	require.NoError(t, inv.Respond(2, false))
	assert.Equal(t, InviteStatusRejected, inv.Status)
}

func TestInvitationRespondWrongGuest(t *testing.T) {
	inv := &Invitation{HostID: 1, GuestID: 2, Status: InviteStatusPending}

	err := inv.Respond(1, true)
	assert.ErrorIs(t, err, apperr.ErrNotAuthorized)
	assert.Equal(t, InviteStatusPending, inv.Status)
}

func TestInvitationRespondTwice(t *testing.T) {
	inv := &Invitation{HostID: 1, GuestID: 2, Status: InviteStatusPending}
	require.NoError(t, inv.Respond(2, true))

	err := inv.Respond(2, false)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, InviteStatusAccepted, inv.Status)
}
