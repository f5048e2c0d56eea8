package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/tripoffice/internal/apperror"
	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/Domenick1991/tripoffice/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(store session.Store, routeID string, fallbacks ...TokenSource) *gin.Engine {
	return newCheckedRouter(store, nil, routeID, fallbacks...)
}

func newCheckedRouter(store session.Store, check IdentityCheck, routeID string, fallbacks ...TokenSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireAdmin(store, check, fallbacks...), Authorize(DefaultPolicy, routeID), func(c *gin.Context) {
		identity, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"username": identity.Username, "token": TokenFrom(c)})
	})
	return r
}

func issue(t *testing.T, store session.Store, role domain.Role) string {
	t.Helper()
	token, err := store.Issue(context.Background(), domain.Identity{Username: "u-" + string(role), Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func do(r http.Handler, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAdmin_MissingOrMalformedHeader(t *testing.T) {
	r := newRouter(session.NewMemoryStore(), "coupons.list")

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc", "Token sess_x"} {
		w := do(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, ErrorBody{Status: "fail", Message: "Unauthorized"}, body)
	}
}

func TestRequireAdmin_UnknownAndRevokedToken(t *testing.T) {
	store := session.NewMemoryStore()
	r := newRouter(store, "coupons.list")

	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer sess_unknown").Code)

	token := issue(t, store, domain.RoleAdmin)
	require.NoError(t, store.Revoke(context.Background(), token))
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer "+token).Code)
}

func TestRequireAdmin_CaseInsensitiveScheme(t *testing.T) {
	store := session.NewMemoryStore()
	r := newRouter(store, "coupons.list")
	token := issue(t, store, domain.RoleAdmin)

	w := do(r, "bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), token)
}

func TestRequireAdmin_FallbackTokenSource(t *testing.T) {
	store := session.NewMemoryStore()
	token := issue(t, store, domain.RoleAdmin)
	r := newRouter(store, "coupons.list", func(*http.Request) string { return token })

	assert.Equal(t, http.StatusOK, do(r, "").Code)
}

func TestRequireAdmin_CheckAppliesCurrentRole(t *testing.T) {
	store := session.NewMemoryStore()
	token := issue(t, store, domain.RoleAdmin)
	demote := func(_ context.Context, identity domain.Identity) (domain.Identity, error) {
		identity.Role = domain.RoleGate
		return identity, nil
	}
	r := newCheckedRouter(store, demote, "coupons.list")

	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+token).Code)
}

func TestRequireAdmin_CheckRejectsDisabledAccount(t *testing.T) {
	store := session.NewMemoryStore()
	token := issue(t, store, domain.RoleAdmin)
	disabled := func(context.Context, domain.Identity) (domain.Identity, error) {
		return domain.Identity{}, apperror.Unauthenticated("Account is disabled")
	}
	r := newCheckedRouter(store, disabled, "coupons.list")

	w := do(r, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Account is disabled", body.Message)
}

func TestAuthorize_RoleMatrix(t *testing.T) {
	store := session.NewMemoryStore()

	tests := []struct {
		route string
		role  domain.Role
		code  int
	}{
		{"coupons.list", domain.RoleGate, http.StatusForbidden},
		{"coupons.list", domain.RoleAdmin, http.StatusOK},
		{"coupons.list", domain.RoleSuperAdmin, http.StatusOK},
		{"bookings.get", domain.RoleGate, http.StatusOK},
		{"bookings.list", domain.RoleGate, http.StatusForbidden},
		{"bookings.update", domain.RoleEmployee, http.StatusForbidden},
		{"reports.totals", domain.RoleFinance, http.StatusOK},
		{"admins.list", domain.RoleAdmin, http.StatusForbidden},
		{"admins.list", domain.RoleSuperAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.route+"/"+string(tt.role), func(t *testing.T) {
			r := newRouter(store, tt.route)
			w := do(r, "Bearer "+issue(t, store, tt.role))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(domain.RoleSuperAdmin, nil))
	assert.True(t, Allowed("super_admin", []domain.Role{}))
	assert.False(t, Allowed(domain.RoleAdmin, []domain.Role{}))
	assert.True(t, Allowed(" finance ", []domain.Role{domain.RoleFinance}))
	assert.False(t, Allowed("PILOT", []domain.Role{domain.RoleAdmin}))
}

func TestAuthorize_UnknownRoutePanics(t *testing.T) {
	assert.PanicsWithValue(t, `middleware: no access policy for route "nope"`, func() {
		Authorize(DefaultPolicy, "nope")
	})
}

func TestAuthorize_WithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Authorize(DefaultPolicy, "trips.create")(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}
