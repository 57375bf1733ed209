package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crediadmin/internal/core/cliente"
	"crediadmin/internal/infrastructure/database"
)

const emailConstraint = "clientes_email_key"

const clienteColumns = `
	id, celular, dpi, primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
	fecha_nacimiento, estado_civil, email, direccion_completa, departamento, municipio, pais,
	observacion_domicilio, ingreso_mensual, dependientes_economicos, actividad_economica,
	observacion_actividad, created_at, updated_at`

// searchClause matches the full name, DPI (separators ignored), phone or email.
const searchClause = `
	($1 = '' OR
	 CONCAT_WS(' ', primer_nombre, segundo_nombre, primer_apellido, segundo_apellido) ILIKE '%' || $1 || '%' OR
	 dpi ILIKE '%' || REPLACE($1, ' ', '') || '%' OR
	 celular ILIKE '%' || $1 || '%' OR
	 COALESCE(email, '') ILIKE '%' || $1 || '%')`

// Repository implements cliente.Repository using PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL client repository.
func NewRepository(pool *pgxpool.Pool) cliente.Repository {
	return &Repository{pool: pool}
}

// Create inserts the client and returns the id generated by the database.
func (r *Repository) Create(ctx context.Context, c cliente.Cliente) (string, error) {
	query := `
		INSERT INTO clientes (
			celular, dpi, primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
			fecha_nacimiento, estado_civil, email, direccion_completa, departamento, municipio, pais,
			observacion_domicilio, ingreso_mensual, dependientes_economicos, actividad_economica,
			observacion_actividad
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		) RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		c.Celular,
		c.DPI,
		c.PrimerNombre,
		c.SegundoNombre,
		c.PrimerApellido,
		c.SegundoApellido,
		c.FechaNacimiento,
		string(c.EstadoCivil),
		c.Email,
		c.DireccionCompleta,
		c.Departamento,
		c.Municipio,
		c.Pais,
		c.ObservacionDomicilio,
		c.IngresoMensual,
		c.DependientesEconomicos,
		c.ActividadEconomica,
		c.ObservacionActividad,
	).Scan(&id)
	if err != nil {
		if constraint, ok := database.UniqueViolation(err); ok {
			return "", &cliente.UniqueViolationError{Field: uniqueField(constraint)}
		}
		return "", fmt.Errorf("create cliente: %w", err)
	}

	return id, nil
}

func (r *Repository) CreateReferencias(ctx context.Context, clienteID string, refs []cliente.Referencia) error {
	batch := &pgx.Batch{}
	for _, ref := range refs {
		batch.Queue(
			`INSERT INTO referencias (cliente_id, nombre_apellido, parentesco, celular) VALUES ($1, $2, $3, $4)`,
			clienteID, ref.NombreApellido, ref.Parentesco, ref.Celular,
		)
	}
	return r.sendBatch(ctx, batch, "referencias")
}

func (r *Repository) CreateBeneficiarios(ctx context.Context, clienteID string, bens []cliente.Beneficiario) error {
	batch := &pgx.Batch{}
	for _, b := range bens {
		batch.Queue(
			`INSERT INTO beneficiarios (cliente_id, nombre_apellido, parentesco, celular) VALUES ($1, $2, $3, $4)`,
			clienteID, b.NombreApellido, b.Parentesco, b.Celular,
		)
	}
	return r.sendBatch(ctx, batch, "beneficiarios")
}

func (r *Repository) CreateGarantias(ctx context.Context, clienteID string, items []cliente.Garantia) error {
	batch := &pgx.Batch{}
	for _, g := range items {
		batch.Queue(
			`INSERT INTO garantias (cliente_id, nombre, marca, tiempo, descripcion, valor_estimado)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			clienteID, g.Nombre, g.Marca, g.Tiempo, g.Descripcion, g.ValorEstimado,
		)
	}
	return r.sendBatch(ctx, batch, "garantias")
}

// sendBatch runs the queued inserts in one round trip. Without an explicit
// transaction the batch still commits or fails as a unit.
func (r *Repository) sendBatch(ctx context.Context, batch *pgx.Batch, table string) error {
	if batch.Len() == 0 {
		return nil
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if database.ForeignKeyViolation(err) {
				return fmt.Errorf("insert %s: %w", table, cliente.ErrNotFound)
			}
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

// FindByID returns nil when the client does not exist.
func (r *Repository) FindByID(ctx context.Context, id string) (*cliente.Cliente, error) {
	query := `SELECT ` + clienteColumns + ` FROM clientes WHERE id = $1`

	c, err := scanCliente(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.InvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cliente: %w", err)
	}
	return &c, nil
}

// Detail loads the client and its three sub-record collections.
func (r *Repository) Detail(ctx context.Context, id string) (*cliente.Detalle, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}

	detalle := &cliente.Detalle{Cliente: *c}

	rows, err := r.pool.Query(ctx,
		`SELECT id, cliente_id, nombre_apellido, parentesco, celular
		 FROM referencias WHERE cliente_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("query referencias: %w", err)
	}
	detalle.Referencias, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (cliente.Referencia, error) {
		var ref cliente.Referencia
		err := row.Scan(&ref.ID, &ref.ClienteID, &ref.NombreApellido, &ref.Parentesco, &ref.Celular)
		return ref, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan referencias: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT id, cliente_id, nombre_apellido, parentesco, celular
		 FROM beneficiarios WHERE cliente_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("query beneficiarios: %w", err)
	}
	detalle.Beneficiarios, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (cliente.Beneficiario, error) {
		var b cliente.Beneficiario
		err := row.Scan(&b.ID, &b.ClienteID, &b.NombreApellido, &b.Parentesco, &b.Celular)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan beneficiarios: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT id, cliente_id, nombre, marca, tiempo, descripcion, valor_estimado
		 FROM garantias WHERE cliente_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("query garantias: %w", err)
	}
	detalle.Garantias, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (cliente.Garantia, error) {
		var g cliente.Garantia
		err := row.Scan(&g.ID, &g.ClienteID, &g.Nombre, &g.Marca, &g.Tiempo, &g.Descripcion, &g.ValorEstimado)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan garantias: %w", err)
	}

	return detalle, nil
}

// List returns one page of clients, newest first, and the number of matches.
func (r *Repository) List(ctx context.Context, filter cliente.Filter) ([]cliente.Cliente, int, error) {
	buscar := escapeLike(strings.TrimSpace(filter.Buscar))

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clientes WHERE `+searchClause, buscar).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count clientes: %w", err)
	}

	// A NULL limit means LIMIT ALL.
	var limit *int
	if filter.Length >= 0 {
		limit = &filter.Length
	}

	query := `SELECT ` + clienteColumns + ` FROM clientes WHERE ` + searchClause + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, buscar, limit, filter.Start)
	if err != nil {
		return nil, 0, fmt.Errorf("list clientes: %w", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cliente.Cliente, error) {
		return scanCliente(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scan clientes: %w", err)
	}

	return list, total, nil
}

// Delete removes the client; sub-records and documents cascade. Credits block the delete.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM clientes WHERE id = $1`, id)
	if err != nil {
		if database.ForeignKeyViolation(err) {
			return cliente.ErrHasCreditos
		}
		return fmt.Errorf("delete cliente: %w", err)
	}
	if result.RowsAffected() == 0 {
		return cliente.ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clientes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count clientes: %w", err)
	}
	return n, nil
}

func scanCliente(row pgx.Row) (cliente.Cliente, error) {
	var (
		c      cliente.Cliente
		estado string
	)
	err := row.Scan(
		&c.ID,
		&c.Celular,
		&c.DPI,
		&c.PrimerNombre,
		&c.SegundoNombre,
		&c.PrimerApellido,
		&c.SegundoApellido,
		&c.FechaNacimiento,
		&estado,
		&c.Email,
		&c.DireccionCompleta,
		&c.Departamento,
		&c.Municipio,
		&c.Pais,
		&c.ObservacionDomicilio,
		&c.IngresoMensual,
		&c.DependientesEconomicos,
		&c.ActividadEconomica,
		&c.ObservacionActividad,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	c.EstadoCivil = cliente.EstadoCivil(estado)
	return c, err
}

// uniqueField maps a violated constraint to the client column it guards.
func uniqueField(constraint string) string {
	if constraint == emailConstraint {
		return "email"
	}
	return "dpi"
}

// escapeLike neutralises LIKE wildcards typed by the user.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
