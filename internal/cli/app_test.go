package cli_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/storefront"
	"github.com/aretw0/storefront/internal/cli"
	"github.com/aretw0/storefront/internal/config"
	"github.com/aretw0/storefront/pkg/adapters/memory"
	"github.com/aretw0/storefront/pkg/adapters/redis"
	"github.com/aretw0/storefront/pkg/adapters/sqlite"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, locker, err := cli.OpenFallback(ctx, config.FallbackConfig{Backend: config.BackendMemory}, nil)
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, store)
		assert.Nil(t, locker)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fallback.db")
		store, locker, err := cli.OpenFallback(ctx, config.FallbackConfig{Backend: config.BackendSQLite, SQLitePath: path}, nil)
		require.NoError(t, err)
		assert.IsType(t, &sqlite.Store{}, store)
		assert.Nil(t, locker)
		require.NoError(t, store.(*sqlite.Store).Close())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		store, locker, err := cli.OpenFallback(ctx, config.FallbackConfig{
			Backend:     config.BackendRedis,
			RedisAddr:   mr.Addr(),
			RedisPrefix: "test:",
		}, nil)
		require.NoError(t, err)
		assert.IsType(t, &redis.Store{}, store)
		assert.NotNil(t, locker)
		require.NoError(t, store.(*redis.Store).Close())
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, _, err := cli.OpenFallback(ctx, config.FallbackConfig{Backend: config.BackendRedis, RedisAddr: addr}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := cli.OpenFallback(ctx, config.FallbackConfig{Backend: "etcd"}, nil)
		assert.ErrorContains(t, err, "etcd")
	})
}

func TestOpenFallback_Middleware(t *testing.T) {
	ctx := context.Background()
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	store, _, err := cli.OpenFallback(ctx, config.FallbackConfig{
		Backend:       config.BackendMemory,
		EncryptionKey: key,
		RedactReasons: true,
	}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, reflect.TypeOf(&memory.Store{}), reflect.TypeOf(store), "store is wrapped")
	ports.RunFallbackStoreContract(t, store)

	_, _, err = cli.OpenFallback(ctx, config.FallbackConfig{
		Backend:       config.BackendMemory,
		EncryptionKey: base64.StdEncoding.EncodeToString([]byte("too short")),
	}, nil)
	assert.Error(t, err)
}

func TestParseLatePolicy(t *testing.T) {
	p, err := cli.ParseLatePolicy("apply")
	require.NoError(t, err)
	assert.Equal(t, storefront.ApplyLate, p)

	p, err = cli.ParseLatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, storefront.DropSuperseded, p)

	_, err = cli.ParseLatePolicy("later")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.LogFormat = "json"

	logger, err := cli.NewLogger(cfg, &buf)
	require.NoError(t, err)
	logger.Info("hello", "error", "boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["err"])

	cfg.LogLevel = "loud"
	_, err = cli.NewLogger(cfg, &buf)
	assert.Error(t, err)
}

func TestOpenRequest(t *testing.T) {
	req, err := cli.OpenRequest(cli.OpenOptions{Action: "deleteStream", StreamID: "s1", RemoteID: "srv-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionDeleteStream, req.ActionID)
	assert.Equal(t, "Delete", req.Buttons.Primary.Label)
	assert.Equal(t, map[string]any{"id": "s1", "remote_id": "srv-1"}, req.Context["stream"])

	req, err = cli.OpenRequest(cli.OpenOptions{Action: "contact"})
	require.NoError(t, err)
	assert.Nil(t, req.Buttons.Primary, "contact has no primary button")
	assert.Equal(t, "Close", req.Buttons.Secondary.Label)

	_, err = cli.OpenRequest(cli.OpenOptions{})
	assert.Error(t, err)
}

func TestBuildAndRunSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/profile":
			_, _ = w.Write([]byte(`{"_id":"u1","balance":5000}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/oqim":
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/oqim/p1":
			_, _ = w.Write([]byte(`{"_id":"srv-1","name":"Evening sale"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL
	cfg.Fallback.Backend = config.BackendMemory

	ctx := context.Background()
	app, err := cli.Build(ctx, cfg, nil)
	require.NoError(t, err)

	req, err := cli.OpenRequest(cli.OpenOptions{Action: "createStream", ProductID: "p1"})
	require.NoError(t, err)

	var out bytes.Buffer
	err = cli.RunSession(ctx, app, req, cli.SessionOptions{
		In:       strings.NewReader("name=Evening sale\nsubmit\n"),
		Out:      &out,
		Headless: true,
	})
	require.NoError(t, err)
	require.NoError(t, app.Close(ctx))

	assert.Contains(t, out.String(), "Stream created!")
	user, ok := app.Client.Cache().CurrentUser()
	require.True(t, ok)
	assert.Equal(t, 5000.0, user.Balance)
	require.Len(t, app.Client.Cache().Streams(), 1)
	assert.Equal(t, "srv-1", app.Client.Cache().Streams()[0].RemoteID)
}

func TestBuild_RejectsBadPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Fallback.Backend = config.BackendMemory
	cfg.Engine.LatePolicy = "sometimes"

	_, err := cli.Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}
