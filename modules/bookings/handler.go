package bookings

import (
	"net/http"
	"time"

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

// Router mounts the booking endpoints for all salon members.
func Router(m *tenantauth.Middleware, store Store) chi.Router {
	h := handler{store: store}
	r := chi.NewRouter()
	r.Get("/", m.Wrap(h.list))
	r.Post("/", m.Wrap(h.create))
	r.Post("/{id}/cancel", m.Wrap(h.cancel))
	return r
}

func (h handler) list(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	f, err := parseFilter(r)
	if err != nil {
		return core.ErrBadRequest
	}
	list, err := h.store.List(r.Context(), scope.Conn, f)
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
	b, err := h.store.Create(r.Context(), scope.Conn, p)
	if err != nil {
		// Customer or service id pointing outside the tenant fails the
		// reference, not the row policy; both read as a bad reference.
		if pg.IsForeignKeyViolation(err) {
			return core.ErrUnprocessableEntity
		}
		return err
	}
	core.JSON(w, http.StatusCreated, b)
	return nil
}

func (h handler) cancel(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return core.ErrNotFound
	}
	b, err := h.store.Cancel(r.Context(), scope.Conn, id)
	if err != nil {
		if pg.IsNotFound(err) {
			// Unknown, already cancelled, or completed.
			return core.ErrConflict
		}
		return err
	}
	core.JSON(w, http.StatusOK, b)
	return nil
}

func parseFilter(r *http.Request) (ListFilter, error) {
	var f ListFilter
	q := r.URL.Query()

	switch s := Status(q.Get("status")); s {
	case "", StatusScheduled, StatusCompleted, StatusCancelled:
		f.Status = s
	default:
		return f, core.ErrBadRequest
	}

	for _, part := range []struct {
		key  string
		dest *time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		if raw := q.Get(part.key); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return f, core.ErrBadRequest
			}
			*part.dest = t
		}
	}
	return f, nil
}
