package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusshield/campusshield/internal/apiserver/database"
	"github.com/campusshield/campusshield/internal/apiserver/limiter"
	"github.com/campusshield/campusshield/internal/apiserver/middleware"
	"github.com/campusshield/campusshield/internal/auth/jwt"
	"github.com/campusshield/campusshield/internal/common/config"
	"github.com/campusshield/campusshield/internal/common/errorx"
	"github.com/campusshield/campusshield/internal/notify"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testEnv wires handlers against a throwaway sqlite database, the way the
// server does at startup.
type testEnv struct {
	db      database.Database
	jwt     *jwt.Service
	builder *notify.Builder
	errs    *errorx.Handler
	user    *UserHandler
	admin   *AdminHandler
	siren   *SirenHandler
	router  *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewSQLite(&config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "handler_test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: "0123456789abcdef0123456789abcdef",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	builder := notify.NewBuilder(&config.NotifyConfig{
		OperationsEmail:       "ops@campus.test",
		RoutingAddresses:      map[string]string{"Police": "police@campus.test"},
		DefaultRoutingAddress: "security@campus.test",
	}, zap.NewNop())
	errs := errorx.NewHandler(zap.NewNop())

	env := &testEnv{
		db:      db,
		jwt:     jwtService,
		builder: builder,
		errs:    errs,
		user:    NewUserHandler(db, jwtService, builder, errs, nil, bcrypt.MinCost),
		admin:   NewAdminHandler(db, jwtService, builder, errs, nil, bcrypt.MinCost),
		siren:   NewSirenHandler(db, builder, limiter.NewMemoryLimiter(limiter.Config{Limit: 2, Window: time.Minute}), errs, nil),
	}

	r := gin.New()
	api := r.Group("/api/v1")

	user := api.Group("/user")
	user.POST("/signup", env.user.Signup)
	user.POST("/signin", env.user.Signin)
	user.POST("/sendsiren", middleware.OptionalJWTAuthMiddleware(jwtService), env.siren.SendSiren)
	authed := user.Group("", middleware.JWTAuthMiddleware(jwtService), middleware.RequireRole(jwt.RoleUser))
	authed.GET("/getreports", env.user.GetReports)
	authed.POST("/createreport", env.user.CreateReport)
	authed.PUT("/updateprofile", env.user.UpdateProfile)

	admin := api.Group("/admin")
	admin.POST("/signup", env.admin.Signup)
	admin.POST("/signin", env.admin.Signin)
	adminAuthed := admin.Group("", middleware.JWTAuthMiddleware(jwtService), middleware.RequireRole(jwt.RoleAdmin))
	adminAuthed.GET("/details", env.admin.Details)
	adminAuthed.GET("/getusers", env.admin.GetUsers)
	adminAuthed.DELETE("/deleteuser", env.admin.DeleteUser)
	adminAuthed.PUT("/update", env.admin.Update)
	adminAuthed.GET("/reports", env.admin.Reports)
	adminAuthed.PUT("/changestatus", env.admin.ChangeStatus)
	adminAuthed.DELETE("/deletereport", env.admin.DeleteReport)
	adminAuthed.GET("/sirens", env.admin.Sirens)

	env.router = r
	return env
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// itoa renders a JSON-decoded numeric cursor back into a query value.
func itoa(f float64) string {
	return strconv.FormatUint(uint64(f), 10)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// signupAndSignin registers a user and returns its token and id.
func (e *testEnv) signupAndSignin(t *testing.T, username, password, email string) (string, uint) {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/user/signup", "", gin.H{
		"username":      username,
		"password":      password,
		"college_email": email,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.request(t, http.MethodPost, "/api/v1/user/signin", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	return token, uint(user["id"].(float64))
}

// adminToken registers a triage account and signs it in.
func (e *testEnv) adminToken(t *testing.T, username, password string) string {
	t.Helper()

	w := e.request(t, http.MethodPost, "/api/v1/admin/signup", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = e.request(t, http.MethodPost, "/api/v1/admin/signin", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}
