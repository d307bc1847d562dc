package identity

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Organizations interface {
	repository.Repository[*Organization]

	FindByID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*Organization, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID, criteria ...repository.SelectCriteria) (*Organization, error)
	GetByName(ctx context.Context, name string) (*Organization, error)
	GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Organization, error)

	ExistsByNameTx(ctx context.Context, tx bun.IDB, name string) (bool, error)
	HasActiveUsersTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error)

	Create(ctx context.Context, record *Organization, criteria ...repository.InsertCriteria) (*Organization, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Organization, criteria ...repository.InsertCriteria) (*Organization, error)

	SoftDelete(ctx context.Context, id uuid.UUID) error
	SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Organization, error)
	ListAllTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]*Organization, error)
}

type organizations struct {
	repository.Repository[*Organization]
	db *bun.DB
}

var (
	_ Organizations                        = (*organizations)(nil)
	_ repository.Repository[*Organization] = (*organizations)(nil)
)

func NewOrganizationsRepository(db *bun.DB) Organizations {
	repo := repository.NewRepository[*Organization](db, repository.ModelHandlers[*Organization]{
		NewRecord: func() *Organization { return &Organization{} },
		GetID: func(o *Organization) uuid.UUID {
			if o == nil {
				return uuid.Nil
			}
			return o.ID
		},
		SetID: func(o *Organization, id uuid.UUID) {
			if o != nil {
				o.ID = id
			}
		},
		GetIdentifier: func() string {
			return "name"
		},
	})

	return &organizations{
		Repository: repo,
		db:         db,
	}
}

func (a *organizations) FindByID(ctx context.Context, id uuid.UUID, criteria ...repository.SelectCriteria) (*Organization, error) {
	return a.FindByIDTx(ctx, a.db, id, criteria...)
}

func (a *organizations) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID, criteria ...repository.SelectCriteria) (*Organization, error) {
	record := &Organization{}
	q := tx.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *organizations) GetByName(ctx context.Context, name string) (*Organization, error) {
	return a.GetByNameTx(ctx, a.db, name)
}

func (a *organizations) GetByNameTx(ctx context.Context, tx bun.IDB, name string) (*Organization, error) {
	record := &Organization{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.name = ?", name).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"name": name,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *organizations) ExistsByNameTx(ctx context.Context, tx bun.IDB, name string) (bool, error) {
	return tx.NewSelect().
		Model((*Organization)(nil)).
		Where("?TableAlias.name = ?", name).
		Exists(ctx)
}

// HasActiveUsersTx reports whether any live user still references the
// organization. Soft-deleted users are excluded by the model's delete tag.
func (a *organizations) HasActiveUsersTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (bool, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.organization_id = ?", id.String()).
		Exists(ctx)
}

func (a *organizations) Create(ctx context.Context, record *Organization, criteria ...repository.InsertCriteria) (*Organization, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *organizations) CreateTx(ctx context.Context, tx bun.IDB, record *Organization, criteria ...repository.InsertCriteria) (*Organization, error) {
	prepareOrganizationDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *organizations) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return a.SoftDeleteTx(ctx, a.db, id)
}

func (a *organizations) SoftDeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*Organization)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *organizations) ListAll(ctx context.Context, criteria ...repository.SelectCriteria) ([]*Organization, error) {
	return a.ListAllTx(ctx, a.db, criteria...)
}

func (a *organizations) ListAllTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]*Organization, error) {
	records := make([]*Organization, 0)
	q := tx.NewSelect().Model(&records)

	for _, c := range criteria {
		q.Apply(c)
	}

	if err := q.Order("org.name ASC").Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func prepareOrganizationDefaults(record *Organization) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
