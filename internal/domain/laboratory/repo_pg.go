package laboratory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labsuite/labsuite/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const labCols = `id, nombre, email, direccion, codigo_postal, ciudad, provincia, pais,
	telefono, sitio_web, logo, created_at, updated_at`

func scanLab(row pgx.Row) (*Laboratory, error) {
	var l Laboratory
	err := row.Scan(&l.ID, &l.Nombre, &l.Email, &l.Direccion, &l.CodigoPostal,
		&l.Ciudad, &l.Provincia, &l.Pais, &l.Telefono, &l.SitioWeb, &l.Logo,
		&l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &l, err
}

func (r *repoPG) Create(ctx context.Context, l *Laboratory) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO laboratory (id, nombre, email, direccion, codigo_postal, ciudad,
			provincia, pais, telefono, sitio_web, logo)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.ID, l.Nombre, l.Email, l.Direccion, l.CodigoPostal, l.Ciudad,
		l.Provincia, l.Pais, l.Telefono, l.SitioWeb, l.Logo)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Laboratory, error) {
	return scanLab(r.conn(ctx).QueryRow(ctx, `SELECT `+labCols+` FROM laboratory WHERE id = $1`, id))
}

func (r *repoPG) GetProfile(ctx context.Context) (*Laboratory, error) {
	return scanLab(r.conn(ctx).QueryRow(ctx,
		`SELECT `+labCols+` FROM laboratory ORDER BY created_at LIMIT 1`))
}

func (r *repoPG) Update(ctx context.Context, l *Laboratory) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE laboratory SET nombre=$2, email=$3, direccion=$4, codigo_postal=$5,
			ciudad=$6, provincia=$7, pais=$8, telefono=$9, sitio_web=$10, logo=$11,
			updated_at=NOW()
		WHERE id = $1`,
		l.ID, l.Nombre, l.Email, l.Direccion, l.CodigoPostal,
		l.Ciudad, l.Provincia, l.Pais, l.Telefono, l.SitioWeb, l.Logo)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM laboratory WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Laboratory, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM laboratory`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+labCols+` FROM laboratory ORDER BY nombre LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Laboratory
	for rows.Next() {
		l, err := scanLab(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}
