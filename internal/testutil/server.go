// Package testutil runs the full route table against a throwaway sqlite
// database for handler and client tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/anonto42/acebook/backend/internal/router"
	"github.com/anonto42/acebook/backend/internal/session"
	"github.com/anonto42/acebook/backend/internal/validators"
	"github.com/anonto42/acebook/backend/pkg/config"
	"github.com/anonto42/acebook/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const Secret = "test-secret-with-at-least-32-bytes!!"

// DefaultProfileImage is the reference given to signups without an upload.
const DefaultProfileImage = "/images/default-profile.png"

type Server struct {
	Echo  *echo.Echo
	DB    *gorm.DB
	Codec *session.Codec
	Repos router.Repositories
}

// NewServer builds the app on a fresh sqlite file. opts may adjust the
// dependencies before routes are registered.
func NewServer(t testing.TB, opts ...func(*router.Deps)) *Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "acebook.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := &config.DB{Postgres: db}
	repos, err := router.NewRepositories(context.Background(), store)
	require.NoError(t, err)

	codec := session.NewCodec(Secret, time.Hour, 10*time.Minute)
	deps := router.Deps{
		Repos:               repos,
		Codec:               codec,
		Validator:           validators.NewValidator(),
		Store:               store,
		PostMaxLength:       200,
		DefaultProfileImage: DefaultProfileImage,
		Log:                 logger.Discard(),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	e := echo.New()
	router.SetupRoutes(e, deps)
	return &Server{Echo: e, DB: db, Codec: codec, Repos: repos}
}

// Do sends a JSON request. body may be nil.
func (s *Server) Do(t testing.TB, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return s.serve(req, token)
}

// Upload sends a multipart form with one file and optional fields.
func (s *Server) Upload(t testing.TB, method, path, token, field, filename string, data []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return s.serve(req, token)
}

func (s *Server) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// Signup creates an account and returns its token and id.
func (s *Server) Signup(t testing.TB, email string) (string, primitive.ObjectID) {
	t.Helper()
	rec := s.Do(t, http.MethodPost, "/users", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	userID, err := s.Codec.Verify(out.Token)
	require.NoError(t, err)
	return out.Token, userID
}

// Decode unmarshals a recorded JSON body.
func Decode(t testing.TB, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}
