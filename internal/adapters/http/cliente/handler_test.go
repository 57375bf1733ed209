package cliente

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcliente "crediadmin/internal/application/cliente"
	"crediadmin/internal/application/intake"
	"crediadmin/internal/core/cliente"
	"crediadmin/internal/testutil"
)

const clienteID = "5f0c7d3e-8a7b-4c2d-9e61-3b1f2a4c5d6e"

var fixedNow = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func newRouter(repo *testutil.MockClienteRepository) http.Handler {
	log := testutil.NewNullLogger()
	h := NewHandler(
		intake.NewService(repo, log, intake.WithClock(func() time.Time { return fixedNow })),
		appcliente.NewService(repo),
		log,
	)
	r := chi.NewRouter()
	r.Route("/api/v1/clientes", h.Routes)
	return r
}

func validForm() map[string]any {
	return map[string]any{
		"primer_nombre":      "María",
		"primer_apellido":    "García",
		"celular":            "5555-1234",
		"dpi":                "2545 67890 0101",
		"fecha_nacimiento":   "1990-03-20",
		"direccion_completa": "4a calle 5-10 zona 1",
		"departamento":       "Guatemala",
		"municipio":          "Mixco",
		"ingreso_mensual":    3500,
		"referencias": []map[string]string{
			{"nombre_apellido": "Ana López", "parentesco": "Madre", "celular": "5555-0000"},
		},
		"garantias": []map[string]any{
			{"nombre": "Motocicleta", "valor_estimado": 0},
		},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestHandler_Create(t *testing.T) {
	repo := &testutil.MockClienteRepository{
		CreateFunc: func(ctx context.Context, c cliente.Cliente) (string, error) { return clienteID, nil },
	}
	w := httptest.NewRecorder()

	newRouter(repo).ServeHTTP(w, testutil.CreateRequest(http.MethodPost, "/api/v1/clientes", validForm(), nil))

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, clienteID, body["id"])
	assert.Equal(t, "done", body["estado"])
	assert.Equal(t, true, body["cerrar"])
	assert.Equal(t, true, body["refrescar"])
	assert.Equal(t, []any{map[string]any{"tipo": "success", "mensaje": intake.MessageCreated}}, body["notificaciones"])

	clientes, referencias, beneficiarios, garantias := repo.Calls()
	assert.Equal(t, []int{1, 1, 0, 1}, []int{clientes, referencias, beneficiarios, garantias})
	assert.Equal(t, "2545678900101", repo.Created[0].DPI)
	assert.Nil(t, repo.GarantiaBatches[0][0].ValorEstimado)
}

func TestHandler_Create_ValidationErrors(t *testing.T) {
	repo := &testutil.MockClienteRepository{}
	form := validForm()
	form["dpi"] = "123"
	form["referencias"] = []map[string]string{}
	w := httptest.NewRecorder()

	newRouter(repo).ServeHTTP(w, testutil.CreateRequest(http.MethodPost, "/api/v1/clientes", form, nil))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "personal", body["seccion"])
	assert.Equal(t, "editing", body["estado"])
	errores := body["errores"].(map[string]any)
	assert.Equal(t, "El DPI debe tener 13 dígitos", errores["dpi"])
	assert.Contains(t, errores, "referencias")
	assert.Len(t, body["notificaciones"], 1)
	assert.Equal(t, false, body["cerrar"])

	clientes, _, _, _ := repo.Calls()
	assert.Zero(t, clientes)
}

func TestHandler_Create_Duplicate(t *testing.T) {
	repo := &testutil.MockClienteRepository{
		CreateFunc: func(ctx context.Context, c cliente.Cliente) (string, error) {
			return "", &cliente.UniqueViolationError{Field: "dpi"}
		},
	}
	w := httptest.NewRecorder()

	newRouter(repo).ServeHTTP(w, testutil.CreateRequest(http.MethodPost, "/api/v1/clientes", validForm(), nil))

	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{map[string]any{"tipo": "error", "mensaje": "Ya existe un cliente con ese DPI"}}, body["notificaciones"])

	_, referencias, _, _ := repo.Calls()
	assert.Zero(t, referencias)
}

func TestHandler_Create_GatewayFailure(t *testing.T) {
	repo := &testutil.MockClienteRepository{
		CreateFunc: func(ctx context.Context, c cliente.Cliente) (string, error) {
			return "", errors.New("connection reset")
		},
	}
	w := httptest.NewRecorder()

	newRouter(repo).ServeHTTP(w, testutil.CreateRequest(http.MethodPost, "/api/v1/clientes", validForm(), nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "personal", body["seccion"])
	assert.Equal(t, []any{map[string]any{"tipo": "error", "mensaje": "connection reset"}}, body["notificaciones"])
}

func TestHandler_Create_ChildFailureIsWarning(t *testing.T) {
	repo := &testutil.MockClienteRepository{
		CreateFunc: func(ctx context.Context, c cliente.Cliente) (string, error) { return clienteID, nil },
		CreateReferenciasFunc: func(ctx context.Context, id string, refs []cliente.Referencia) error {
			return errors.New("timeout")
		},
	}
	w := httptest.NewRecorder()

	newRouter(repo).ServeHTTP(w, testutil.CreateRequest(http.MethodPost, "/api/v1/clientes", validForm(), nil))

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Len(t, body["advertencias"], 1)
}

func TestHandler_Create_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"primer_nombre":`},
		{"unknown section", `{"seccion":"finanzas"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/clientes", strings.NewReader(tt.body))

			newRouter(&testutil.MockClienteRepository{}).ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_Validate(t *testing.T) {
	form := validForm()
	form["email"] = "no-es-email"
	w := httptest.NewRecorder()
	repo := &testutil.MockClienteRepository{}

	newRouter(repo).ServeHTTP(w, testutil.CreateRequest(http.MethodPost, "/api/v1/clientes/validar", form, nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["valido"])
	assert.Contains(t, body["errores"], "email")

	clientes, _, _, _ := repo.Calls()
	assert.Zero(t, clientes)
}

func TestHandler_List(t *testing.T) {
	var got cliente.Filter
	repo := &testutil.MockClienteRepository{
		ListFunc: func(ctx context.Context, f cliente.Filter) ([]cliente.Cliente, int, error) {
			got = f
			return []cliente.Cliente{{ID: clienteID, PrimerNombre: "Ana", PrimerApellido: "López"}}, 31, nil
		},
	}
	w := httptest.NewRecorder()

	newRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clientes?buscar=ana&start=20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, cliente.Filter{Buscar: "ana", Start: 20, Length: DefaultPageLength}, got)
	body := decode(t, w)
	assert.Equal(t, float64(31), body["total"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Ana López", data[0].(map[string]any)["nombre_completo"])
}

func TestHandler_List_InvalidParams(t *testing.T) {
	for _, query := range []string{"start=abc", "length=x", "start=-1", "length=500"} {
		t.Run(query, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(&testutil.MockClienteRepository{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clientes?"+query, nil))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandler_Get(t *testing.T) {
	repo := &testutil.MockClienteRepository{
		DetailFunc: func(ctx context.Context, id string) (*cliente.Detalle, error) {
			if id != clienteID {
				return nil, nil
			}
			return &cliente.Detalle{Cliente: cliente.Cliente{ID: id, PrimerNombre: "Ana", PrimerApellido: "López"}}, nil
		},
	}

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clientes/"+clienteID, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Ana López", decode(t, w)["nombre_completo"])
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clientes/00000000-0000-0000-0000-000000000000", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clientes/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Delete(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"not found", cliente.ErrNotFound, http.StatusNotFound},
		{"has creditos", cliente.ErrHasCreditos, http.StatusConflict},
		{"database down", errors.New("dial tcp"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &testutil.MockClienteRepository{
				DeleteFunc: func(ctx context.Context, id string) error { return tt.err },
			}
			w := httptest.NewRecorder()

			newRouter(repo).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/clientes/"+clienteID, nil))

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
