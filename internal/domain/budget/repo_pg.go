package budget

import (
	"context"
	"errors"
	"time"

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

const budgetCols = `b.id, b.paciente, b.telefono, b.email, b.total, b.plan_id, p.nombre,
	b.sent_at, b.created_at, b.updated_at`

func scanBudget(row pgx.Row) (*Budget, error) {
	var b Budget
	err := row.Scan(&b.ID, &b.Paciente, &b.Telefono, &b.Email, &b.Total, &b.PlanID,
		&b.PlanNombre, &b.SentAt, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &b, err
}

func (r *repoPG) CreateWithItems(ctx context.Context, b *Budget, items []*Item) error {
	b.ID = uuid.New()

	insert := func(ctx context.Context) error {
		q := r.conn(ctx)
		_, err := q.Exec(ctx, `
			INSERT INTO budget (id, paciente, telefono, email, total, plan_id)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			b.ID, b.Paciente, b.Telefono, b.Email, b.Total, b.PlanID)
		if err != nil {
			return err
		}
		for i, it := range items {
			it.ID = uuid.New()
			it.BudgetID = b.ID
			_, err := q.Exec(ctx, `
				INSERT INTO budget_item (id, budget_id, study_id, plan_id, plan_nombre,
					codigo, nombre, ub, valor, position)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				it.ID, it.BudgetID, it.StudyID, it.PlanID, it.PlanNombre,
				it.Codigo, it.Nombre, it.UB, it.Valor, i)
			if err != nil {
				return err
			}
		}
		return nil
	}

	// Header and items land together or not at all
	if db.ConnFromContext(ctx) != nil && db.TxFromContext(ctx) == nil {
		return db.RunInTx(ctx, insert)
	}
	return insert(ctx)
}

func (r *repoPG) GetWithItems(ctx context.Context, id uuid.UUID) (*WithItems, error) {
	b, err := scanBudget(r.conn(ctx).QueryRow(ctx, `
		SELECT `+budgetCols+` FROM budget b
		LEFT JOIN plan p ON p.id = b.plan_id
		WHERE b.id = $1`, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, budget_id, study_id, plan_id, plan_nombre, codigo, nombre, ub, valor
		FROM budget_item WHERE budget_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &WithItems{Budget: *b}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.BudgetID, &it.StudyID, &it.PlanID, &it.PlanNombre,
			&it.Codigo, &it.Nombre, &it.UB, &it.Valor); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, &it)
	}
	return out, rows.Err()
}

const budgetFilter = `($1 = '' OR b.paciente ILIKE '%' || $1 || '%' OR p.nombre ILIKE '%' || $1 || '%')
		AND ($2::date IS NULL OR b.created_at::date = $2::date)`

func (r *repoPG) List(ctx context.Context, q string, day *time.Time, limit, offset int) ([]*Budget, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM budget b
		LEFT JOIN plan p ON p.id = b.plan_id
		WHERE `+budgetFilter, q, day).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+budgetCols+` FROM budget b
		LEFT JOIN plan p ON p.id = b.plan_id
		WHERE `+budgetFilter+`
		ORDER BY b.created_at DESC LIMIT $3 OFFSET $4`, q, day, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	q := r.conn(ctx)
	if _, err := q.Exec(ctx, `DELETE FROM budget_item WHERE budget_id = $1`, id); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM budget WHERE id = $1`, id)
	return err
}

func (r *repoPG) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE budget SET sent_at = $2, updated_at = NOW() WHERE id = $1`, id, at)
	return err
}
