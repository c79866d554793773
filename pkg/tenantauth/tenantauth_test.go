package tenantauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/glowdesk/core"
	"github.com/glowdesk/glowdesk/pkg/authn"
	"github.com/glowdesk/glowdesk/pkg/tenant"
	"github.com/glowdesk/glowdesk/pkg/tenantauth"
)

// fakeAuth returns a canned session or error.
type fakeAuth struct {
	session *authn.Session
	err     error
}

func (a *fakeAuth) Authenticate(*http.Request) (*authn.Session, error) {
	return a.session, a.err
}

// fakeDirectory serves tenants by key and counts resolutions.
type fakeDirectory struct {
	tenants map[string]*tenant.Tenant
	err     error
	calls   atomic.Int32
}

func (d *fakeDirectory) Resolve(_ context.Context, key string) (*tenant.Tenant, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	if t, ok := d.tenants[key]; ok && t.Active() {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

// fakeScopedConn tracks the tenant it is bound to, the rows it serves, and
// whether it was released.
type fakeScopedConn struct {
	tenantID uuid.UUID
	rows     map[uuid.UUID][]string
	released atomic.Bool
}

func (c *fakeScopedConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *fakeScopedConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeScopedConn) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (c *fakeScopedConn) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeScopedConn) TenantID() uuid.UUID { return c.tenantID }

func (c *fakeScopedConn) Release() { c.released.Store(true) }

// visible emulates RLS: only rows owned by the bound tenant are returned.
func (c *fakeScopedConn) visible() []string { return c.rows[c.tenantID] }

// fakeFactory hands out fakeScopedConns and records acquisitions.
type fakeFactory struct {
	mu    sync.Mutex
	rows  map[uuid.UUID][]string
	err   error
	conns []*fakeScopedConn
}

func (f *fakeFactory) Acquire(_ context.Context, tenantID uuid.UUID) (tenantauth.ScopedConn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	conn := &fakeScopedConn{tenantID: tenantID, rows: f.rows}
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeFactory) acquisitions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func activeTenant(slug string) *tenant.Tenant {
	return &tenant.Tenant{
		ID:            uuid.New(),
		Slug:          slug,
		ExternalOrgID: "org_" + slug,
		Name:          slug,
		Status:        tenant.StatusActive,
	}
}

func ownerSession(orgSlug string) *authn.Session {
	return &authn.Session{UserID: "user-1", OrgSlug: orgSlug, Roles: []string{"owner"}}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("happy path binds scope and invokes handler", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := &fakeDirectory{tenants: map[string]*tenant.Tenant{"acme": acme}}
		factory := &fakeFactory{}
		m := tenantauth.New(&fakeAuth{session: ownerSession("acme")}, dir, factory, testLogger())

		var got *tenantauth.Scope
		handler := m.Wrap(func(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
			got = scope
			// Tenant context is established for logging before the handler runs.
			id, ok := tenant.IDFromContext(r.Context())
			assert.True(t, ok)
			assert.Equal(t, acme.ID, id)
			core.JSON(w, http.StatusOK, nil)
			return nil
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, acme.ID, got.Conn.TenantID())
		assert.Equal(t, acme, got.Tenant)
		assert.Equal(t, "user-1", got.Session.UserID)
		require.Equal(t, 1, factory.acquisitions())
		assert.True(t, factory.conns[0].released.Load(), "connection released after handler")
	})

	t.Run("unauthenticated returns 401 before any datastore call", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{}
		factory := &fakeFactory{}
		m := tenantauth.New(&fakeAuth{err: authn.ErrUnauthenticated}, dir, factory, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error {
			t.Fatal("handler must not run")
			return nil
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthorized", errorCode(t, rec))
		assert.Zero(t, dir.calls.Load(), "directory must not be consulted")
		assert.Zero(t, factory.acquisitions(), "no connection may be constructed")
	})

	t.Run("missing organization returns 400 without directory lookup", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{}
		factory := &fakeFactory{}
		m := tenantauth.New(&fakeAuth{err: authn.ErrMissingOrganization}, dir, factory, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error { return nil })

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing_organization", errorCode(t, rec))
		assert.Zero(t, dir.calls.Load())
	})

	t.Run("unknown tenant returns 404 and no scoped connection", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{}
		factory := &fakeFactory{}
		m := tenantauth.New(&fakeAuth{session: ownerSession("ghost")}, dir, factory, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error {
			t.Fatal("handler must not run")
			return nil
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "tenant_not_found", errorCode(t, rec))
		assert.Zero(t, factory.acquisitions())
	})

	t.Run("role check runs before tenant resolution", func(t *testing.T) {
		t.Parallel()

		dir := &fakeDirectory{}
		factory := &fakeFactory{}
		session := &authn.Session{UserID: "user-1", OrgSlug: "acme", Roles: []string{"staff"}}
		m := tenantauth.New(&fakeAuth{session: session}, dir, factory, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error {
			t.Fatal("handler must not run")
			return nil
		}, tenantauth.WithRoles("owner"))

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "forbidden", errorCode(t, rec))
		assert.Zero(t, dir.calls.Load())
	})

	t.Run("matching role passes", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := &fakeDirectory{tenants: map[string]*tenant.Tenant{"acme": acme}}
		m := tenantauth.New(&fakeAuth{session: ownerSession("acme")}, dir, &fakeFactory{}, testLogger())

		ran := false
		handler := m.Wrap(func(w http.ResponseWriter, _ *http.Request, _ *tenantauth.Scope) error {
			ran = true
			core.JSON(w, http.StatusOK, nil)
			return nil
		}, tenantauth.WithRoles("owner", "admin"))

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, ran)
	})

	t.Run("scope assignment failure is a generic 500", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := &fakeDirectory{tenants: map[string]*tenant.Tenant{"acme": acme}}
		factory := &fakeFactory{err: errors.New("pq: set_config rejected")}
		m := tenantauth.New(&fakeAuth{session: ownerSession("acme")}, dir, factory, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error {
			t.Fatal("handler must never run without an established scope")
			return nil
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal_server_error", errorCode(t, rec))
		assert.NotContains(t, rec.Body.String(), "set_config", "no infrastructure detail to the client")
	})

	t.Run("handler HTTPError passes through unchanged", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := &fakeDirectory{tenants: map[string]*tenant.Tenant{"acme": acme}}
		m := tenantauth.New(&fakeAuth{session: ownerSession("acme")}, dir, &fakeFactory{}, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error {
			return core.ErrConflict
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("opaque handler error becomes logged 500", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := &fakeDirectory{tenants: map[string]*tenant.Tenant{"acme": acme}}
		factory := &fakeFactory{}
		m := tenantauth.New(&fakeAuth{session: ownerSession("acme")}, dir, factory, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error {
			return errors.New("pq: duplicate key value on customers_pkey")
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "customers_pkey")
		require.Equal(t, 1, factory.acquisitions())
		assert.True(t, factory.conns[0].released.Load(), "released on error path too")
	})

	t.Run("connection released when handler panics", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		dir := &fakeDirectory{tenants: map[string]*tenant.Tenant{"acme": acme}}
		factory := &fakeFactory{}
		m := tenantauth.New(&fakeAuth{session: ownerSession("acme")}, dir, factory, testLogger())

		handler := m.Wrap(func(http.ResponseWriter, *http.Request, *tenantauth.Scope) error {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		assert.Panics(t, func() {
			handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		})
		require.Equal(t, 1, factory.acquisitions())
		assert.True(t, factory.conns[0].released.Load())
	})
}

func TestWrapIsolation(t *testing.T) {
	t.Parallel()

	t.Run("concurrent requests for two tenants see disjoint rows", func(t *testing.T) {
		t.Parallel()

		acme := activeTenant("acme")
		beta := activeTenant("beta")
		dir := &fakeDirectory{tenants: map[string]*tenant.Tenant{"acme": acme, "beta": beta}}
		factory := &fakeFactory{rows: map[uuid.UUID][]string{
			acme.ID: {"acme-customer-1", "acme-customer-2"},
			beta.ID: {"beta-customer-1"},
		}}

		newHandler := func(session *authn.Session, want []string) http.HandlerFunc {
			m := tenantauth.New(&fakeAuth{session: session}, dir, factory, testLogger())
			return m.Wrap(func(w http.ResponseWriter, r *http.Request, scope *tenantauth.Scope) error {
				rows := scope.Conn.(*fakeScopedConn).visible()
				assert.ElementsMatch(t, want, rows)
				for _, row := range rows {
					assert.NotContains(t, row, otherSlug(session.OrgSlug))
				}
				core.JSON(w, http.StatusOK, rows)
				return nil
			})
		}

		acmeHandler := newHandler(ownerSession("acme"), []string{"acme-customer-1", "acme-customer-2"})
		betaHandler := newHandler(ownerSession("beta"), []string{"beta-customer-1"})

		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				rec := httptest.NewRecorder()
				acmeHandler(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
				assert.Equal(t, http.StatusOK, rec.Code)
			}()
			go func() {
				defer wg.Done()
				rec := httptest.NewRecorder()
				betaHandler(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
				assert.Equal(t, http.StatusOK, rec.Code)
			}()
		}
		wg.Wait()

		// Every connection was bound to exactly one of the two tenants and
		// released afterwards; no handle crossed requests.
		assert.Equal(t, 50, factory.acquisitions())
		for _, conn := range factory.conns {
			assert.Contains(t, []uuid.UUID{acme.ID, beta.ID}, conn.TenantID())
			assert.True(t, conn.released.Load())
		}
	})
}

func otherSlug(slug string) string {
	if slug == "acme" {
		return "beta"
	}
	return "acme"
}
