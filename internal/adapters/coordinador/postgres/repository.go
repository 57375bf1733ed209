package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crediadmin/internal/core/coordinador"
	"crediadmin/internal/infrastructure/database"
)

const coordinadorColumns = `
	id, nombres, apellidos, celular, fecha_contratacion, email,
	departamento, municipio, pais, direccion, created_at, updated_at`

// Repository implements coordinador.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) coordinador.Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, c coordinador.Coordinador) (string, error) {
	query := `
		INSERT INTO coordinadores (
			nombres, apellidos, celular, fecha_contratacion, email,
			departamento, municipio, pais, direccion
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		c.Nombres, c.Apellidos, c.Celular, c.FechaContratacion, c.Email,
		c.Departamento, c.Municipio, c.Pais, c.Direccion,
	).Scan(&id)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return "", coordinador.ErrDuplicateEmail
		}
		return "", fmt.Errorf("create coordinador: %w", err)
	}
	return id, nil
}

func (r *Repository) Update(ctx context.Context, id string, c coordinador.Coordinador) error {
	query := `
		UPDATE coordinadores SET
			nombres = $1,
			apellidos = $2,
			celular = $3,
			fecha_contratacion = $4,
			email = $5,
			departamento = $6,
			municipio = $7,
			pais = $8,
			direccion = $9,
			updated_at = NOW()
		WHERE id = $10
	`

	result, err := r.pool.Exec(ctx, query,
		c.Nombres, c.Apellidos, c.Celular, c.FechaContratacion, c.Email,
		c.Departamento, c.Municipio, c.Pais, c.Direccion, id,
	)
	if err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return coordinador.ErrDuplicateEmail
		}
		return fmt.Errorf("update coordinador: %w", err)
	}
	if result.RowsAffected() == 0 {
		return coordinador.ErrNotFound
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*coordinador.Coordinador, error) {
	c, err := scanCoordinador(r.pool.QueryRow(ctx, `SELECT `+coordinadorColumns+` FROM coordinadores WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find coordinador: %w", err)
	}
	return &c, nil
}

func (r *Repository) List(ctx context.Context) ([]coordinador.Coordinador, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+coordinadorColumns+` FROM coordinadores ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list coordinadores: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (coordinador.Coordinador, error) {
		return scanCoordinador(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan coordinadores: %w", err)
	}
	return list, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM coordinadores WHERE id = $1`, id)
	if err != nil {
		if database.ForeignKeyViolation(err) {
			return coordinador.ErrHasCreditos
		}
		return fmt.Errorf("delete coordinador: %w", err)
	}
	if result.RowsAffected() == 0 {
		return coordinador.ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coordinadores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count coordinadores: %w", err)
	}
	return n, nil
}

func scanCoordinador(row pgx.Row) (coordinador.Coordinador, error) {
	var c coordinador.Coordinador
	err := row.Scan(
		&c.ID, &c.Nombres, &c.Apellidos, &c.Celular, &c.FechaContratacion, &c.Email,
		&c.Departamento, &c.Municipio, &c.Pais, &c.Direccion, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
