package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"ar-viewer-backend/internal/auth"
	"ar-viewer-backend/internal/conversion"
	"ar-viewer-backend/internal/handlers"
	"ar-viewer-backend/internal/logger"
	"ar-viewer-backend/internal/storage"
	"ar-viewer-backend/internal/store"
)

const testMaxBytes = 10 << 20

type testEnv struct {
	router   *gin.Engine
	files    *storage.FileStore
	catalog  *store.CatalogStore
	sessions *store.SessionStore
	users    *store.UserStore
	issuer   *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	files, err := storage.NewFileStore(t.TempDir(), log)
	require.NoError(t, err)

	catalog := store.NewCatalogStore(files, log)
	sessions := store.NewSessionStore()
	users := store.NewUserStore()
	_, err = users.Create("admin", "admin123", true)
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	converter := conversion.NewConverter(files)

	router := gin.New()
	handlers.RegisterRoutes(router, handlers.RouterDeps{
		Auth:   handlers.NewAuthHandler(users, issuer, log),
		Upload: handlers.NewUploadHandler(sessions, files, converter, testMaxBytes, log),
		Public: handlers.NewPublicModelsHandler(catalog),
		Admin:  handlers.NewAdminModelsHandler(catalog, files, testMaxBytes, log),
		Issuer: issuer,
	})

	return &testEnv{
		router:   router,
		files:    files,
		catalog:  catalog,
		sessions: sessions,
		users:    users,
		issuer:   issuer,
	}
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	user, ok := e.users.GetByUsername("admin")
	require.True(t, ok)
	token, err := e.issuer.Generate(user.ID.String(), user.Username, user.IsAdmin)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type formFile struct {
	field    string
	filename string
	content  []byte
}

// multipartRequest builds a multipart POST/PUT body from plain fields and
// file parts, matching what the browser upload forms send.
func multipartRequest(t *testing.T, method, url string, fields map[string]string, files []formFile) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
