package booking

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Sessions is the store for bookable sessions and their rosters. The
// participant primitives operate on join rows directly so membership
// changes are single statements, not read-modify-write cycles.
type Sessions interface {
	GetByID(ctx context.Context, id int64) (*Session, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*Session, error)
	List(ctx context.Context) ([]*Session, error)
	Create(ctx context.Context, record *Session) (*Session, error)
	Update(ctx context.Context, record *Session) (*Session, error)
	DeleteByID(ctx context.Context, id int64) error

	AddParticipant(ctx context.Context, sessionID, userID int64) error
	RemoveParticipant(ctx context.Context, sessionID, userID int64) error
	HasParticipant(ctx context.Context, sessionID, userID int64) (bool, error)
}

type sessions struct {
	db *bun.DB
}

var _ Sessions = (*sessions)(nil)

func NewSessionsRepository(db *bun.DB) Sessions {
	return &sessions{db: db}
}

func (a *sessions) GetByID(ctx context.Context, id int64) (*Session, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *sessions) GetByIDTx(ctx context.Context, tx bun.IDB, id int64) (*Session, error) {
	record := &Session{}
	err := tx.NewSelect().
		Model(record).
		Relation("Teacher").
		Relation("Users").
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound.Clone().WithMetadata(map[string]any{"id": id})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load session")
	}

	return record, nil
}

func (a *sessions) List(ctx context.Context) ([]*Session, error) {
	records := make([]*Session, 0)
	err := a.db.NewSelect().
		Model(&records).
		Relation("Teacher").
		Relation("Users").
		Order("date ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list sessions")
	}

	return records, nil
}

func (a *sessions) Create(ctx context.Context, record *Session) (*Session, error) {
	err := a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "could not create session")
		}
		return a.replaceRosterTx(ctx, tx, record.ID, record.Users)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Update replaces the session row and its roster wholesale. Duplicate
// users in the incoming roster collapse to a single membership.
func (a *sessions) Update(ctx context.Context, record *Session) (*Session, error) {
	err := a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(record).
			WherePK().
			Column("name", "description", "date", "teacher_id", "updated_at").
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to update session")
		}

		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return ErrSessionNotFound.Clone().WithMetadata(map[string]any{"id": record.ID})
		}

		if _, err := tx.NewDelete().
			Model((*SessionUser)(nil)).
			Where("session_id = ?", record.ID).
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to clear session roster")
		}

		return a.replaceRosterTx(ctx, tx, record.ID, record.Users)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (a *sessions) replaceRosterTx(ctx context.Context, tx bun.IDB, sessionID int64, roster []*User) error {
	seen := map[int64]bool{}
	memberships := make([]*SessionUser, 0, len(roster))
	for _, u := range roster {
		if u == nil || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		memberships = append(memberships, &SessionUser{SessionID: sessionID, UserID: u.ID})
	}

	if len(memberships) == 0 {
		return nil
	}

	if _, err := tx.NewInsert().Model(&memberships).Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to write session roster")
	}

	return nil
}

func (a *sessions) DeleteByID(ctx context.Context, id int64) error {
	return a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*SessionUser)(nil)).
			Where("session_id = ?", id).
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to clear session roster")
		}

		res, err := tx.NewDelete().
			Model((*Session)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to delete session")
		}

		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return ErrSessionNotFound.Clone().WithMetadata(map[string]any{"id": id})
		}

		return nil
	})
}

// AddParticipant inserts the membership row. The conflict clause keeps the
// insert a single statement: a concurrent duplicate loses at the store
// and surfaces as ErrAlreadyParticipating, never as a second row.
func (a *sessions) AddParticipant(ctx context.Context, sessionID, userID int64) error {
	res, err := a.db.NewInsert().
		Model(&SessionUser{SessionID: sessionID, UserID: userID}).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to add participant")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrAlreadyParticipating.Clone().WithMetadata(map[string]any{
			"session_id": sessionID,
			"user_id":    userID,
		})
	}

	return nil
}

// RemoveParticipant deletes the membership row, reporting
// ErrNotParticipating when there was nothing to remove.
func (a *sessions) RemoveParticipant(ctx context.Context, sessionID, userID int64) error {
	res, err := a.db.NewDelete().
		Model((*SessionUser)(nil)).
		Where("session_id = ?", sessionID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to remove participant")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrNotParticipating.Clone().WithMetadata(map[string]any{
			"session_id": sessionID,
			"user_id":    userID,
		})
	}

	return nil
}

func (a *sessions) HasParticipant(ctx context.Context, sessionID, userID int64) (bool, error) {
	exists, err := a.db.NewSelect().
		Model((*SessionUser)(nil)).
		Where("session_id = ?", sessionID).
		Where("user_id = ?", userID).
		Exists(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check participant")
	}
	return exists, nil
}
