package core

import (
	"context"

	"github.com/olegsm/talkie-server/internal/store"
)

// PresenceOracle reports a user's availability from stored state.
type PresenceOracle struct {
	users store.UserStore
}

// NewPresenceOracle constructs an oracle backed by the given user store.
func NewPresenceOracle(users store.UserStore) *PresenceOracle {
	return &PresenceOracle{users: users}
}

// Status returns the stored availability for a user. Any lookup failure or
// unknown user reports Busy, so an unconfirmed recipient is never treated
// as attentive.
func (p *PresenceOracle) Status(ctx context.Context, userID int64) store.UserStatus {
	if p.users == nil {
		return store.StatusBusy
	}

	user, err := p.users.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return store.StatusBusy
	}
	if user.Status == store.StatusAvailable {
		return store.StatusAvailable
	}
	return store.StatusBusy
}
