package booking

import (
	"context"
)

// RosterService manages session participation. Preconditions are checked
// before any write: a rejected request leaves the store untouched.
type RosterService struct {
	sessions Sessions
	users    Users
	logger   Logger
}

func NewRosterService(sessions Sessions, users Users) *RosterService {
	return &RosterService{
		sessions: sessions,
		users:    users,
		logger:   defLogger{},
	}
}

func (r *RosterService) WithLogger(l Logger) *RosterService {
	if l != nil {
		r.logger = l
	}
	return r
}

// Participate adds the user to the session roster. The session and the
// user must both exist, and the user must not already be on the roster.
func (r *RosterService) Participate(ctx context.Context, sessionID, userID int64) error {
	session, err := r.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if _, err := r.users.GetByID(ctx, userID); err != nil {
		return err
	}

	if session.HasParticipant(userID) {
		return ErrAlreadyParticipating.Clone().WithMetadata(map[string]any{
			"session_id": sessionID,
			"user_id":    userID,
		})
	}

	// AddParticipant re-checks at the store, so a concurrent duplicate
	// still comes back as ErrAlreadyParticipating.
	if err := r.sessions.AddParticipant(ctx, sessionID, userID); err != nil {
		return err
	}

	r.logger.Info("roster participate", "session_id", sessionID, "user_id", userID)
	return nil
}

// Unparticipate removes the user from the session roster. Only the
// session is re-fetched; a membership row is proof enough that the user
// existed when it was written.
func (r *RosterService) Unparticipate(ctx context.Context, sessionID, userID int64) error {
	session, err := r.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if !session.HasParticipant(userID) {
		return ErrNotParticipating.Clone().WithMetadata(map[string]any{
			"session_id": sessionID,
			"user_id":    userID,
		})
	}

	if err := r.sessions.RemoveParticipant(ctx, sessionID, userID); err != nil {
		return err
	}

	r.logger.Info("roster unparticipate", "session_id", sessionID, "user_id", userID)
	return nil
}
