// Package session exposes the authenticated caller.
package session

import (
	"net/http"

	ctxutil "crediadmin/internal/infrastructure/context"
	httpx "crediadmin/internal/infrastructure/http"
)

// Me handles GET /api/v1/me, returning the principal set by the JWT middleware.
func Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := ctxutil.GetPrincipal(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "No autorizado", []string{"sesión no válida"}, nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, principal, nil)
}
