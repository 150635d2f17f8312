package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/evanshaw/resguard/internal/database/testutil"
	"github.com/evanshaw/resguard/pkg/response"
)

func newPermissionTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	handler, err := NewPermissionHandler(db)
	require.NoError(t, err)

	r := gin.New()
	r.POST("/set-owner", handler.SetOwner)
	r.POST("/set", handler.SetPermissions)
	r.POST("/check", handler.Check)
	r.GET("/:type/:id", handler.Get)
	r.DELETE("/:type/:id", handler.Delete)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetOwnerValidation(t *testing.T) {
	r := newPermissionTestRouter(t)

	// Malformed JSON
	w := postJSON(t, r, "/set-owner", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown owner type
	w = postJSON(t, r, "/set-owner", `{"resource_type":"document","resource_id":"doc-1","owner_type":"robot","owner_id":"R2"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Contains(t, payload.Error.Message, "owner type")
}

func TestSetPermissionsValidation(t *testing.T) {
	r := newPermissionTestRouter(t)

	w := postJSON(t, r, "/set-owner", `{"resource_type":"document","resource_id":"doc-1","owner_type":"user","owner_id":"U1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Wrong slot order is rejected by the rwx rule.
	w = postJSON(t, r, "/set", `{"resource_type":"document","resource_id":"doc-1","owner_perms":"xwr","group_perms":"---","world_perms":"---"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Contains(t, payload.Error.Message, "rwx")
}

func TestCheckForUnregisteredResourceDenies(t *testing.T) {
	r := newPermissionTestRouter(t)

	w := postJSON(t, r, "/check", `{"resource_type":"document","resource_id":"ghost","user_id":"U1","permission":"read"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Success)

	decision := payload.Data.(map[string]any)
	require.Equal(t, false, decision["has_permission"])
	require.Equal(t, "no owner registered", decision["reason"])
	require.Equal(t, "none", decision["via"])
}
