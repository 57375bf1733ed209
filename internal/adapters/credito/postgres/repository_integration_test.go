//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientepg "crediadmin/internal/adapters/cliente/postgres"
	coordinadorpg "crediadmin/internal/adapters/coordinador/postgres"
	"crediadmin/internal/core/cliente"
	"crediadmin/internal/core/coordinador"
	"crediadmin/internal/core/credito"
	"crediadmin/internal/testutil/containers"
)

func TestRepository_Integration(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	ctx := context.Background()

	clientes := clientepg.NewRepository(pg.Pool)
	coordinadores := coordinadorpg.NewRepository(pg.Pool)
	repo := NewRepository(pg.Pool)

	clienteID, err := clientes.Create(ctx, cliente.Cliente{
		PrimerNombre: "Ana", PrimerApellido: "Cux", Celular: "5555-0000", DPI: "1234567890123",
		FechaNacimiento: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC), EstadoCivil: cliente.EstadoCivilCasado,
		DireccionCompleta: "Zona 3", Departamento: "Sololá", Municipio: "Panajachel", Pais: "Guatemala",
	})
	require.NoError(t, err)

	coordinadorID, err := coordinadores.Create(ctx, coordinador.Coordinador{
		Nombres: "Carlos", Apellidos: "Pérez", Celular: "5555-1111", Email: "carlos@example.com",
		FechaContratacion: time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		Departamento: "Guatemala", Municipio: "Mixco", Pais: "Guatemala", Direccion: "Zona 1",
	})
	require.NoError(t, err)

	_, err = coordinadores.Create(ctx, coordinador.Coordinador{
		Nombres: "Otro", Apellidos: "Coordinador", Celular: "1", Email: "carlos@example.com",
		FechaContratacion: time.Now(), Departamento: "Guatemala", Municipio: "Mixco", Pais: "Guatemala", Direccion: "x",
	})
	assert.ErrorIs(t, err, coordinador.ErrDuplicateEmail)

	notas := "desembolso en efectivo"
	id, err := repo.Create(ctx, credito.Credito{
		ClienteID: clienteID, CoordinadorID: coordinadorID, Monto: 5000,
		Estado: credito.EstadoEnProceso, Fecha: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		Notas: &notas,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, credito.Credito{
		ClienteID: clienteID, CoordinadorID: "00000000-0000-0000-0000-000000000000", Monto: 1,
		Estado: credito.EstadoEnProceso, Fecha: time.Now(),
	})
	assert.ErrorIs(t, err, credito.ErrInvalidReference)

	aprobado := credito.EstadoAprobado
	require.NoError(t, repo.Update(ctx, id, credito.Patch{Estado: &aprobado}))

	got, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, credito.EstadoAprobado, got.Estado)
	assert.InDelta(t, 5000, got.Monto, 0.001)
	assert.Equal(t, "Ana Cux", got.ClienteNombre)
	assert.Equal(t, "Carlos Pérez", got.CoordinadorNombre)
	require.NotNil(t, got.Notas)
	assert.Equal(t, notas, *got.Notas)

	require.NoError(t, repo.Update(ctx, id, credito.Patch{ClearNotas: true}))
	got, err = repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.Notas)
	assert.Equal(t, credito.EstadoAprobado, got.Estado)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, credito.Stats{Total: 1, Aprobados: 1, MontoTotal: 5000}, stats)

	recent, err := repo.List(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	assert.ErrorIs(t, coordinadores.Delete(ctx, coordinadorID), coordinador.ErrHasCreditos)
	assert.ErrorIs(t, clientes.Delete(ctx, clienteID), cliente.ErrHasCreditos)

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), credito.ErrNotFound)
	require.NoError(t, coordinadores.Delete(ctx, coordinadorID))
}
