package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/getkayan/kayan-roles/core/rbac"
	"github.com/getkayan/kayan-roles/kgorm"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHierarchy() rbac.Hierarchy {
	return rbac.Hierarchy{
		"ROLE_ADMIN":       {"ROLE_USER"},
		"ROLE_SUPER_ADMIN": {"ROLE_ADMIN", "ROLE_ALLOWED_TO_SWITCH"},
		"ROLE_FOO":         nil,
	}
}

func setupServer(t *testing.T) *echo.Echo {
	t.Helper()

	db, err := kgorm.Open("sqlite", filepath.Join(t.TempDir(), "kayan.db"), nil, false)
	require.NoError(t, err)
	for _, ident := range []*kgorm.Identity{
		{ID: "admin", Roles: kgorm.JSON(`["ROLE_ADMIN","ROLE_FOO"]`)},
		{ID: "subject", Roles: kgorm.JSON(`["ROLE_SUPER_ADMIN","ROLE_USER"]`)},
	} {
		require.NoError(t, db.Create(ident).Error)
	}

	h := NewHandler(kgorm.NewRoleReader(db), testHierarchy(), rbac.DefaultMasterRole)
	h.SetIdentityExtractor(func(c echo.Context) (string, error) {
		if id := c.Request().Header.Get("X-Test-Identity"); id != "" {
			return id, nil
		}
		return ContextIdentity(c)
	})

	e := echo.New()
	h.RegisterRoutes(e.Group("/api/v1"))
	return e
}

func doRequest(e *echo.Echo, method, path, identity string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if identity != "" {
		req.Header.Set("X-Test-Identity", identity)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandleChoices(t *testing.T) {
	e := setupServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/roles/choices", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var opts rbac.Options
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Len(t, opts.Choices, 3)
	assert.Equal(t, "ROLE_ADMIN: ROLE_USER", opts.Choices[0].Label)
	assert.Len(t, opts.ReadOnly, 2)
	assert.True(t, opts.Multiple)
}

func TestHandleChoices_Unauthenticated(t *testing.T) {
	e := setupServer(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/roles/choices", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/roles/choices", "ghost", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleSubmitRoles_KeepsHiddenRoles(t *testing.T) {
	e := setupServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/identities/subject/roles", "admin",
		map[string]any{"roles": []string{"ROLE_USER"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		IdentityID   string   `json:"identity_id"`
		Roles        []string `json:"roles"`
		Hidden       []string `json:"hidden"`
		Synchronized bool     `json:"synchronized"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "subject", resp.IdentityID)
	assert.True(t, resp.Synchronized)
	assert.Equal(t, []string{"ROLE_SUPER_ADMIN", "ROLE_USER"}, resp.Roles)
	assert.Equal(t, []string{"ROLE_SUPER_ADMIN"}, resp.Hidden)
}

func TestHandleSubmitRoles_UnknownRole(t *testing.T) {
	e := setupServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/identities/subject/roles", "admin",
		map[string]any{"roles": []string{"ROLE_USER", "ROLE_SUPER_ADMIN"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ROLE_SUPER_ADMIN", resp["role"])
	assert.Equal(t, false, resp["synchronized"])
	assert.NotContains(t, resp, "roles")
}

func TestHandleSubmitRoles_SubjectNotFound(t *testing.T) {
	e := setupServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/identities/nobody/roles", "admin",
		map[string]any{"roles": []string{"ROLE_USER"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSubmitRoles_BadBody(t *testing.T) {
	e := setupServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/identities/subject/roles", bytes.NewBufferString("{"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Test-Identity", "admin")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingReader struct{}

func (failingReader) GetIdentityRoles(context.Context, string) ([]string, error) {
	return nil, errors.New("database is down")
}

func TestHandleChoices_ReaderFailure(t *testing.T) {
	h := NewHandler(failingReader{}, testHierarchy(), "")
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("identity_id", "admin")
			return next(c)
		}
	})
	h.RegisterRoutes(e.Group("/api/v1"))

	rec := doRequest(e, http.MethodGet, "/api/v1/roles/choices", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
