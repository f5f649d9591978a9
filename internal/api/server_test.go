package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/pixellar/internal/auth"
	"github.com/dyluth/pixellar/internal/gamehub"
	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	mr     *miniredis.Miniredis
	store  *canvas.Store
	server *Server
	issuer *auth.TokenIssuer
}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupServer(t *testing.T, adminToken string) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	opts := &redis.Options{Addr: mr.Addr()}

	authorizer, err := auth.NewJWTAuthorizer(testSecret)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	notifierClient := redis.NewClient(opts)
	t.Cleanup(func() { notifierClient.Close() })
	notifier := gamehub.NewNotifier(notifierClient, "test-instance")
	store, err := canvas.NewStore(opts, "test-instance", authorizer, notifier)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &testEnv{
		mr:     mr,
		store:  store,
		server: NewServer(store, adminToken),
		issuer: issuer,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) token(t *testing.T, painter canvas.Identity) string {
	t.Helper()
	token, err := e.issuer.Issue(painter)
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	env := setupServer(t, "")

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "connected", resp.Redis)

	env.mr.Close()

	rec = env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.NotEmpty(t, resp.Error)
}

func TestCanvasInfo(t *testing.T) {
	env := setupServer(t, "")

	rec := env.do(t, http.MethodGet, "/api/v1/canvas", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var info CanvasInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, uint64(50), info.Width)
	assert.Equal(t, uint64(50), info.Height)
	assert.Len(t, info.Palette, canvas.PaletteSize)
	assert.Equal(t, canvas.Palette[0], info.Palette[0])
}

func TestDrawAndRead(t *testing.T) {
	env := setupServer(t, "")
	alice := env.token(t, "alice")

	t.Run("draw succeeds with a matching token", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/api/v1/pixels/10/20", alice, DrawRequest{Painter: "alice", Color: ptr(uint32(7))})
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/pixels/10/20", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var pixel canvas.Pixel
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pixel))
		assert.Equal(t, uint32(7), pixel.Color)
		assert.Equal(t, canvas.Identity("alice"), pixel.Painter)
		assert.NotZero(t, pixel.Timestamp)
	})

	t.Run("never drawn cell is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/pixels/0/0", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "absent", decodeError(t, rec).Error)
	})

	t.Run("out of range read is absent", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/pixels/50/0", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non numeric coordinates are rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/pixels/a/1", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/pixels/-1/1", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("list returns drawn cells", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/pixels", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var pixels []canvas.PlacedPixel
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pixels))
		require.Len(t, pixels, 1)
		assert.Equal(t, canvas.Coord{X: 10, Y: 20}, pixels[0].Coord)
	})
}

func TestDrawErrors(t *testing.T) {
	env := setupServer(t, "")
	alice := env.token(t, "alice")

	tests := []struct {
		name     string
		path     string
		token    string
		body     interface{}
		wantCode int
		wantErr  string
	}{
		{"missing token", "/api/v1/pixels/1/1", "", DrawRequest{Painter: "alice", Color: ptr(uint32(1))}, http.StatusUnauthorized, "unauthorized"},
		{"token for another painter", "/api/v1/pixels/1/1", alice, DrawRequest{Painter: "bob", Color: ptr(uint32(1))}, http.StatusUnauthorized, "unauthorized"},
		{"garbage token", "/api/v1/pixels/1/1", "not-a-jwt", DrawRequest{Painter: "alice", Color: ptr(uint32(1))}, http.StatusUnauthorized, "unauthorized"},
		{"out of bounds", "/api/v1/pixels/50/1", alice, DrawRequest{Painter: "alice", Color: ptr(uint32(1))}, http.StatusBadRequest, "out_of_bounds"},
		{"invalid color", "/api/v1/pixels/1/1", alice, DrawRequest{Painter: "alice", Color: ptr(uint32(16))}, http.StatusBadRequest, "invalid_color"},
		{"bounds checked before color", "/api/v1/pixels/1/99", alice, DrawRequest{Painter: "alice", Color: ptr(uint32(99))}, http.StatusBadRequest, "out_of_bounds"},
		{"auth checked before bounds", "/api/v1/pixels/99/99", "", DrawRequest{Painter: "alice", Color: ptr(uint32(99))}, http.StatusUnauthorized, "unauthorized"},
		{"missing color", "/api/v1/pixels/1/1", alice, map[string]string{"painter": "alice"}, http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec).Error)
		})
	}

	// None of the rejected draws reached storage
	pixels, err := env.store.GetAllPixels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pixels)
}

func TestGameLifecycle(t *testing.T) {
	env := setupServer(t, "")
	ctx := context.Background()

	t.Run("uninitialized hub is a server error", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/games/g1/start", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "hub_not_initialized", decodeError(t, rec).Error)
	})

	t.Run("initialize requires a hub", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/canvas/initialize", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("start and end are forwarded to the hub", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/canvas/initialize", "", InitializeRequest{Hub: "hub-1"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		sub, err := gamehub.Subscribe(ctx, env.store.RedisClient(), "test-instance", "hub-1")
		require.NoError(t, err)
		defer sub.Close()

		rec = env.do(t, http.MethodPost, "/api/v1/games/g1/start", "", nil)
		assert.Equal(t, http.StatusAccepted, rec.Code)
		rec = env.do(t, http.MethodPost, "/api/v1/games/g1/end", "", nil)
		assert.Equal(t, http.StatusAccepted, rec.Code)

		for _, want := range []gamehub.Kind{gamehub.KindStartGame, gamehub.KindEndGame} {
			select {
			case event := <-sub.Events():
				assert.Equal(t, want, event.Kind)
				assert.Equal(t, "g1", event.GameID)
				assert.Equal(t, canvas.Identity("hub-1"), event.Hub)
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for %s", want)
			}
		}
	})
}

func TestAdminToken(t *testing.T) {
	env := setupServer(t, "s3cret")

	rec := env.do(t, http.MethodPost, "/api/v1/canvas/initialize", "", InitializeRequest{Hub: "hub-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/canvas/initialize", "wrong", InitializeRequest{Hub: "hub-1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/canvas/initialize", "s3cret", InitializeRequest{Hub: "hub-1"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Public routes are unaffected
	rec = env.do(t, http.MethodGet, "/api/v1/pixels", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStream(t *testing.T) {
	env := setupServer(t, "")
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The handler subscribes before upgrading, so the draw cannot be missed
	rec := env.do(t, http.MethodPut, "/api/v1/pixels/3/4", env.token(t, "alice"), DrawRequest{Painter: "alice", Color: ptr(uint32(5))})
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event canvas.PixelEvent
	require.NoError(t, conn.ReadJSON(&event))

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, canvas.Coord{X: 3, Y: 4}, event.Coord)
	assert.Equal(t, uint32(5), event.Pixel.Color)
	assert.Equal(t, canvas.Identity("alice"), event.Pixel.Painter)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := extractToken(tt.header)
		assert.Equal(t, tt.want, got, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}

func ptr[T any](v T) *T {
	return &v
}
