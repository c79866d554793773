package customers

import (
	"errors"
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

// Router mounts the customer endpoints. No role restriction: every
// member of the salon can manage its customer book.
func Router(m *tenantauth.Middleware, store Store) chi.Router {
	h := handler{store: store}
	r := chi.NewRouter()
	r.Get("/", m.Wrap(h.list))
	r.Post("/", m.Wrap(h.create))
	r.Get("/{id}", m.Wrap(h.get))
	r.Put("/{id}", m.Wrap(h.update))
	return r
}

func (h handler) list(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	list, err := h.store.List(r.Context(), scope.Conn)
	if err != nil {
		return err
	}
	core.JSON(w, http.StatusOK, list)
	return nil
}

func (h handler) get(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return core.ErrNotFound
	}
	c, err := h.store.Get(r.Context(), scope.Conn, id)
	if err != nil {
		if pg.IsNotFound(err) {
			return core.ErrNotFound
		}
		return err
	}
	core.JSON(w, http.StatusOK, c)
	return nil
}

func (h handler) create(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	var p CreateParams
	if err := binder.JSON(r, &p); err != nil {
		return bindError(err)
	}
	if !p.Validate() {
		return core.ErrUnprocessableEntity
	}
	c, err := h.store.Create(r.Context(), scope.Conn, p)
	if err != nil {
		return err
	}
	core.JSON(w, http.StatusCreated, c)
	return nil
}

func (h handler) update(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return core.ErrNotFound
	}
	var p UpdateParams
	if err := binder.JSON(r, &p); err != nil {
		return bindError(err)
	}
	if !p.Validate() {
		return core.ErrUnprocessableEntity
	}
	c, err := h.store.Update(r.Context(), scope.Conn, id, p)
	if err != nil {
		if pg.IsNotFound(err) {
			return core.ErrNotFound
		}
		return err
	}
	core.JSON(w, http.StatusOK, c)
	return nil
}

func bindError(err error) error {
	if errors.Is(err, binder.ErrUnsupportedMediaType) {
		return core.NewHTTPError(http.StatusUnsupportedMediaType, "unsupported_media_type")
	}
	return core.ErrBadRequest
}
