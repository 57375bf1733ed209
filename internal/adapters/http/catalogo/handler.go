// Package catalogo serves the fixed option lists used by the forms.
package catalogo

import (
	"net/http"

	"crediadmin/internal/core/catalogo"
	"crediadmin/internal/core/cliente"
	"crediadmin/internal/core/credito"
	httpx "crediadmin/internal/infrastructure/http"
)

// Response groups every catalog in one payload.
type Response struct {
	Departamentos      []string              `json:"departamentos"`
	Parentescos        []string              `json:"parentescos"`
	EstadosCiviles     []cliente.EstadoCivil `json:"estados_civiles"`
	EstadosCredito     []credito.Estado      `json:"estados_credito"`
	PaisPredeterminado string                `json:"pais_predeterminado"`
}

// List handles GET /api/v1/catalogos.
func List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	httpx.WriteJSON(w, http.StatusOK, Response{
		Departamentos:      catalogo.Departamentos,
		Parentescos:        catalogo.Parentescos,
		EstadosCiviles:     cliente.EstadosCiviles,
		EstadosCredito:     credito.Estados,
		PaisPredeterminado: cliente.DefaultPais,
	}, nil)
}
