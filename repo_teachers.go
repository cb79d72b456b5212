package booking

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Teachers is the read-mostly store for the teacher directory
type Teachers interface {
	GetByID(ctx context.Context, id int64) (*Teacher, error)
	List(ctx context.Context) ([]*Teacher, error)
	Create(ctx context.Context, record *Teacher) (*Teacher, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Teacher) (*Teacher, error)
}

type teachers struct {
	db *bun.DB
}

var _ Teachers = (*teachers)(nil)

func NewTeachersRepository(db *bun.DB) Teachers {
	return &teachers{db: db}
}

func (a *teachers) GetByID(ctx context.Context, id int64) (*Teacher, error) {
	record := &Teacher{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeacherNotFound.Clone().WithMetadata(map[string]any{"id": id})
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load teacher")
	}

	return record, nil
}

func (a *teachers) List(ctx context.Context) ([]*Teacher, error) {
	records := make([]*Teacher, 0)
	err := a.db.NewSelect().
		Model(&records).
		Order("last_name ASC", "first_name ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list teachers")
	}

	return records, nil
}

func (a *teachers) Create(ctx context.Context, record *Teacher) (*Teacher, error) {
	return a.CreateTx(ctx, a.db, record)
}

func (a *teachers) CreateTx(ctx context.Context, tx bun.IDB, record *Teacher) (*Teacher, error) {
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not create teacher")
	}
	return record, nil
}
