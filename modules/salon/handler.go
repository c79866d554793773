package salon

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowdesk/glowdesk/core"
	"github.com/glowdesk/glowdesk/pkg/binder"
	"github.com/glowdesk/glowdesk/pkg/tenantauth"
)

type handler struct {
	store Store
}

// Router mounts the salon profile endpoints. Renaming is owner-only.
func Router(m *tenantauth.Middleware, store Store) chi.Router {
	h := handler{store: store}
	r := chi.NewRouter()
	r.Get("/", m.Wrap(h.profile))
	r.Put("/name", m.Wrap(h.rename, tenantauth.WithRoles("owner")))
	return r
}

func (h handler) profile(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	p, err := h.store.Profile(r.Context(), scope.Conn, scope.Tenant.ID)
	if err != nil {
		return err
	}
	core.JSON(w, http.StatusOK, p)
	return nil
}

func (h handler) rename(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	var p RenameParams
	if err := binder.JSON(r, &p); err != nil {
		return core.ErrBadRequest
	}
	if !p.Validate() {
		return core.ErrUnprocessableEntity
	}
	profile, err := h.store.Rename(r.Context(), scope.Conn, scope.Tenant.ID, p.Name)
	if err != nil {
		return err
	}
	// The directory cache still serves the old name until its TTL
	// passes; resolution is by slug and org id, so nothing breaks.
	core.JSON(w, http.StatusOK, profile)
	return nil
}
