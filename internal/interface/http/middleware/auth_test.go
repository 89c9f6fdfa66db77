package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/logitrax/internal/domain/order"
	apperrors "github.com/xiebiao/logitrax/pkg/errors"
	"github.com/xiebiao/logitrax/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	actor := ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{"name": actor.Name, "manager": actor.IsManager()})
}

func serve(r *gin.Engine, token string) map[string]interface{} {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body := map[string]interface{}{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestOptionalAuth(t *testing.T) {
	manager := jwt.NewManager("secret", "", "", time.Hour)
	token, err := manager.GenerateToken("boss", order.RoleManager)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", NewAuthMiddleware(manager).OptionalAuth(), whoami)

	assert.Equal(t, order.AnonymousName, serve(r, "")["name"])
	assert.Equal(t, order.AnonymousName, serve(r, "Bearer garbage")["name"])
	assert.Equal(t, order.AnonymousName, serve(r, token)["name"], "缺少Bearer前缀")

	body := serve(r, "bearer "+token)
	assert.Equal(t, "boss", body["name"])
	assert.Equal(t, true, body["manager"])
}

func TestRequireAuth_Expired(t *testing.T) {
	manager := jwt.NewManager("secret", "", "", -time.Minute)
	token, err := manager.GenerateToken("alice")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", NewAuthMiddleware(manager).RequireAuth(), whoami)

	assert.EqualValues(t, apperrors.ErrCodeTokenExpired, serve(r, "Bearer "+token)["code"])
}

func TestRequireRole(t *testing.T) {
	manager := jwt.NewManager("secret", "", "", time.Hour)
	alice, err := manager.GenerateToken("alice")
	require.NoError(t, err)
	boss, err := manager.GenerateToken("boss", order.RoleManager)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/", NewAuthMiddleware(manager).OptionalAuth(), RequireRole(order.RoleManager), whoami)

	assert.EqualValues(t, apperrors.ErrCodeUnauthorized, serve(r, "")["code"])
	assert.EqualValues(t, apperrors.ErrCodeForbidden, serve(r, "Bearer "+alice)["code"])
	assert.Equal(t, "boss", serve(r, "Bearer "+boss)["name"])
}
