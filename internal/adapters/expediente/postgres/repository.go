package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crediadmin/internal/core/cliente"
	"crediadmin/internal/core/expediente"
	"crediadmin/internal/infrastructure/database"
)

const archivoColumns = `id, cliente_id, nombre_archivo, tipo_archivo, url, storage_key, size, created_at`

// Repository implements expediente.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) expediente.Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, a expediente.Archivo) (string, error) {
	query := `
		INSERT INTO expediente_archivos (cliente_id, nombre_archivo, tipo_archivo, url, storage_key, size)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		a.ClienteID, a.NombreArchivo, a.TipoArchivo, a.URL, a.StorageKey, a.Size,
	).Scan(&id)
	if err != nil {
		if database.ForeignKeyViolation(err) {
			return "", cliente.ErrNotFound
		}
		return "", fmt.Errorf("create archivo: %w", err)
	}
	return id, nil
}

func (r *Repository) ListByCliente(ctx context.Context, clienteID string) ([]expediente.Archivo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+archivoColumns+` FROM expediente_archivos WHERE cliente_id = $1 ORDER BY created_at DESC`, clienteID)
	if err != nil {
		return nil, fmt.Errorf("list archivos: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (expediente.Archivo, error) {
		return scanArchivo(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan archivos: %w", err)
	}
	return list, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*expediente.Archivo, error) {
	a, err := scanArchivo(r.pool.QueryRow(ctx, `SELECT `+archivoColumns+` FROM expediente_archivos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find archivo: %w", err)
	}
	return &a, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM expediente_archivos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete archivo: %w", err)
	}
	if result.RowsAffected() == 0 {
		return expediente.ErrNotFound
	}
	return nil
}

func scanArchivo(row pgx.Row) (expediente.Archivo, error) {
	var a expediente.Archivo
	err := row.Scan(&a.ID, &a.ClienteID, &a.NombreArchivo, &a.TipoArchivo, &a.URL, &a.StorageKey, &a.Size, &a.CreatedAt)
	return a, err
}
