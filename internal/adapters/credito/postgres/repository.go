package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crediadmin/internal/core/credito"
	"crediadmin/internal/infrastructure/database"
)

const resumenQuery = `
	SELECT cr.id, cr.cliente_id, cr.coordinador_id, cr.monto, cr.estado, cr.fecha, cr.notas,
	       cr.created_at, cr.updated_at,
	       CONCAT_WS(' ', cl.primer_nombre, cl.segundo_nombre, cl.primer_apellido, cl.segundo_apellido),
	       cl.dpi, cl.celular,
	       co.nombres || ' ' || co.apellidos
	FROM creditos cr
	JOIN clientes cl ON cl.id = cr.cliente_id
	JOIN coordinadores co ON co.id = cr.coordinador_id`

// Repository implements credito.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) credito.Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, c credito.Credito) (string, error) {
	query := `
		INSERT INTO creditos (cliente_id, coordinador_id, monto, estado, fecha, notas)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		c.ClienteID, c.CoordinadorID, c.Monto, string(c.Estado), c.Fecha, c.Notas,
	).Scan(&id)
	if err != nil {
		if database.ForeignKeyViolation(err) {
			return "", credito.ErrInvalidReference
		}
		return "", fmt.Errorf("create credito: %w", err)
	}
	return id, nil
}

// Update keeps estado and monto when the patch leaves them nil and always writes notas.
func (r *Repository) Update(ctx context.Context, id string, p credito.Patch) error {
	var estado *string
	if p.Estado != nil {
		s := string(*p.Estado)
		estado = &s
	}

	query := `
		UPDATE creditos SET
			estado = COALESCE($1, estado),
			monto = COALESCE($2, monto),
			notas = CASE WHEN $4::boolean THEN NULL ELSE COALESCE($3, notas) END,
			updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query, estado, p.Monto, p.Notas, p.ClearNotas, id)
	if err != nil {
		return fmt.Errorf("update credito: %w", err)
	}
	if result.RowsAffected() == 0 {
		return credito.ErrNotFound
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*credito.Resumen, error) {
	res, err := scanResumen(r.pool.QueryRow(ctx, resumenQuery+` WHERE cr.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find credito: %w", err)
	}
	return &res, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]credito.Resumen, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := r.pool.Query(ctx, resumenQuery+` ORDER BY cr.created_at DESC LIMIT $1`, lim)
	if err != nil {
		return nil, fmt.Errorf("list creditos: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (credito.Resumen, error) {
		return scanResumen(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan creditos: %w", err)
	}
	return list, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM creditos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credito: %w", err)
	}
	if result.RowsAffected() == 0 {
		return credito.ErrNotFound
	}
	return nil
}

func (r *Repository) Stats(ctx context.Context) (credito.Stats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE estado = $1),
		       COALESCE(SUM(monto), 0)::float8
		FROM creditos
	`

	var s credito.Stats
	if err := r.pool.QueryRow(ctx, query, string(credito.EstadoAprobado)).Scan(&s.Total, &s.Aprobados, &s.MontoTotal); err != nil {
		return credito.Stats{}, fmt.Errorf("credito stats: %w", err)
	}
	return s, nil
}

func scanResumen(row pgx.Row) (credito.Resumen, error) {
	var (
		r      credito.Resumen
		estado string
	)
	err := row.Scan(
		&r.ID, &r.ClienteID, &r.CoordinadorID, &r.Monto, &estado, &r.Fecha, &r.Notas,
		&r.CreatedAt, &r.UpdatedAt,
		&r.ClienteNombre, &r.ClienteDPI, &r.ClienteCelular, &r.CoordinadorNombre,
	)
	r.Estado = credito.Estado(estado)
	return r, err
}
