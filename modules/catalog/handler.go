package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glowdesk/glowdesk/core"
	"github.com/glowdesk/glowdesk/pkg/binder"
	"github.com/glowdesk/glowdesk/pkg/pg"
	"github.com/glowdesk/glowdesk/pkg/tenantauth"
)

type handler struct {
	store Store
}

// Router mounts the catalog endpoints. Reads are open to every member;
// writes are gated on owner/admin.
func Router(m *tenantauth.Middleware, store Store) chi.Router {
	h := handler{store: store}
	write := tenantauth.WithRoles("owner", "admin")

	r := chi.NewRouter()
	r.Get("/", m.Wrap(h.list))
	r.Post("/", m.Wrap(h.create, write))
	r.Put("/{id}", m.Wrap(h.update, write))
	r.Delete("/{id}", m.Wrap(h.deactivate, write))
	return r
}

func (h handler) list(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	list, err := h.store.List(r.Context(), scope.Conn, includeInactive)
	if err != nil {
		return err
	}
	core.JSON(w, http.StatusOK, list)
	return nil
}

func (h handler) create(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	var p CreateParams
	if err := binder.JSON(r, &p); err != nil {
		return core.ErrBadRequest
	}
	if !p.Validate() {
		return core.ErrUnprocessableEntity
	}
	s, err := h.store.Create(r.Context(), scope.Conn, p)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return core.ErrConflict
		}
		return err
	}
	core.JSON(w, http.StatusCreated, s)
	return nil
}

func (h handler) update(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return core.ErrNotFound
	}
	var p UpdateParams
	if err := binder.JSON(r, &p); err != nil {
		return core.ErrBadRequest
	}
	if !p.Validate() {
		return core.ErrUnprocessableEntity
	}
	s, err := h.store.Update(r.Context(), scope.Conn, id, p)
	if err != nil {
		switch {
		case pg.IsNotFound(err):
			return core.ErrNotFound
		case pg.IsUniqueViolation(err):
			return core.ErrConflict
		}
		return err
	}
	core.JSON(w, http.StatusOK, s)
	return nil
}

func (h handler) deactivate(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return core.ErrNotFound
	}
	if err := h.store.Deactivate(r.Context(), scope.Conn, id); err != nil {
		if pg.IsNotFound(err) {
			return core.ErrNotFound
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
