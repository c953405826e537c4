package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"gopkg.in/guregu/null.v4/zero"

	"github.com/colorkeep/colorkeep/pkg/models"
)

const (
	colorTable       = "colors"
	idColumn         = "id"
	hueColumn        = "hue"
	isFavoriteColumn = "is_favorite"
)

type colorRow struct {
	ID         int         `db:"id" goqu:"skipinsert"`
	Name       zero.String `db:"name"`
	Color      int         `db:"color"`
	IsFavorite bool        `db:"is_favorite"`
	Hue        float64     `db:"hue"`
}

func (r *colorRow) fromColorRecord(o models.ColorRecord) {
	r.ID = o.ID
	r.Name = zero.StringFrom(o.Name)
	r.Color = o.Color
	r.IsFavorite = o.IsFavorite
	r.Hue = o.Hue
}

func (r *colorRow) resolve() *models.ColorRecord {
	return &models.ColorRecord{
		ID:         r.ID,
		Name:       r.Name.String,
		Color:      r.Color,
		IsFavorite: r.IsFavorite,
		Hue:        r.Hue,
	}
}

// ColorStore is the sqlite-backed color catalog.
type ColorStore struct {
	db *Database
}

func NewColorStore(db *Database) *ColorStore {
	return &ColorStore{db: db}
}

func (qb *ColorStore) table() exp.IdentifierExpression {
	return goqu.T(colorTable)
}

func (qb *ColorStore) selectDataset() *goqu.SelectDataset {
	return dialect.From(qb.table()).Select(qb.table().All())
}

// Create inserts newColor and assigns its id.
func (qb *ColorStore) Create(ctx context.Context, newColor *models.ColorRecord) error {
	var r colorRow
	r.fromColorRecord(*newColor)

	q := dialect.Insert(qb.table()).Prepared(true).Rows(r)
	sqlStr, args, err := q.ToSQL()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}

	result, err := qb.db.handle(ctx).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("inserting color: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting inserted id: %w", err)
	}

	newColor.ID = int(id)
	return nil
}

// CreateMany inserts all records in order, returning them with assigned ids.
func (qb *ColorStore) CreateMany(ctx context.Context, newColors []models.ColorRecord) ([]models.ColorRecord, error) {
	created := make([]models.ColorRecord, 0, len(newColors))
	for _, c := range newColors {
		if err := qb.Create(ctx, &c); err != nil {
			return nil, err
		}
		created = append(created, c)
	}
	return created, nil
}

// Find returns the record with the given id, or nil when absent.
func (qb *ColorStore) Find(ctx context.Context, id int) (*models.ColorRecord, error) {
	q := qb.selectDataset().Where(qb.table().Col(idColumn).Eq(id))

	ret, err := qb.get(ctx, q)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting color by id %d: %w", id, err)
	}

	return ret, nil
}

// All returns the full catalog ordered by id ascending.
func (qb *ColorStore) All(ctx context.Context) ([]models.ColorRecord, error) {
	q := qb.selectDataset().Order(qb.table().Col(idColumn).Asc())
	return qb.getMany(ctx, q)
}

// FindByHueRange returns records with minHue <= hue < maxHue, ordered by hue.
// Callers are responsible for min <= max; an inverted range matches nothing.
func (qb *ColorStore) FindByHueRange(ctx context.Context, minHue, maxHue float64) ([]models.ColorRecord, error) {
	table := qb.table()
	q := qb.selectDataset().
		Where(table.Col(hueColumn).Gte(minHue), table.Col(hueColumn).Lt(maxHue)).
		Order(table.Col(hueColumn).Asc())
	return qb.getMany(ctx, q)
}

func (qb *ColorStore) Destroy(ctx context.Context, id int) error {
	q := dialect.Delete(qb.table()).Prepared(true).Where(qb.table().Col(idColumn).Eq(id))
	sqlStr, args, err := q.ToSQL()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}

	if _, err := qb.db.handle(ctx).ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("deleting color %d: %w", id, err)
	}
	return nil
}

func (qb *ColorStore) UpdateFavorite(ctx context.Context, id int, favorite bool) error {
	return qb.updateByID(ctx, id, goqu.Record{isFavoriteColumn: favorite})
}

// UpdateHue overwrites the stored hue. Callers must pass a value re-derived
// from the record's color, since hue is a computed field.
func (qb *ColorStore) UpdateHue(ctx context.Context, id int, hue float64) error {
	return qb.updateByID(ctx, id, goqu.Record{hueColumn: hue})
}

func (qb *ColorStore) updateByID(ctx context.Context, id int, record goqu.Record) error {
	q := dialect.Update(qb.table()).Prepared(true).Set(record).Where(qb.table().Col(idColumn).Eq(id))
	sqlStr, args, err := q.ToSQL()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	result, err := qb.db.handle(ctx).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("updating color %d: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return fmt.Errorf("color %d not found", id)
	}
	return nil
}

func (qb *ColorStore) get(ctx context.Context, q *goqu.SelectDataset) (*models.ColorRecord, error) {
	ret, err := qb.getMany(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(ret) == 0 {
		return nil, sql.ErrNoRows
	}

	return &ret[0], nil
}

func (qb *ColorStore) getMany(ctx context.Context, q *goqu.SelectDataset) ([]models.ColorRecord, error) {
	sqlStr, args, err := q.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	rows, err := qb.db.handle(ctx).QueryxContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ret []models.ColorRecord
	for rows.Next() {
		var r colorRow
		if err := rows.StructScan(&r); err != nil {
			return nil, err
		}
		ret = append(ret, *r.resolve())
	}

	return ret, rows.Err()
}
