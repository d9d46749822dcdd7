package session

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/jordanvelez/shopcore-backend/pkg/config"
	redisclient "github.com/jordanvelez/shopcore-backend/pkg/redis"
)

// fakeCmdable backs the redis client with an in-memory map.
type fakeCmdable struct {
	data map[string]string
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{data: map[string]string{}}
}

func (f *fakeCmdable) Ping(ctx context.Context) *redislib.StatusCmd {
	cmd := redislib.NewStatusCmd(ctx)
	cmd.SetVal("PONG")
	return cmd
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redislib.StatusCmd {
	if s, ok := value.(string); ok {
		f.data[key] = s
	}
	cmd := redislib.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redislib.StringCmd {
	cmd := redislib.NewStringCmd(ctx)
	if value, ok := f.data[key]; ok {
		cmd.SetVal(value)
	} else {
		cmd.SetErr(redislib.Nil)
	}
	return cmd
}

func (f *fakeCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redislib.BoolCmd {
	cmd := redislib.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeCmdable) Incr(ctx context.Context, key string) *redislib.IntCmd {
	return redislib.NewIntCmd(ctx)
}

func (f *fakeCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redislib.BoolCmd {
	return redislib.NewBoolCmd(ctx)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redislib.IntCmd {
	for _, key := range keys {
		delete(f.data, key)
	}
	return redislib.NewIntCmd(ctx)
}

func (f *fakeCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redislib.Cmd {
	return redislib.NewCmd(ctx)
}

func testManagerConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "secret",
		Issuer:                 "shopcore-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func newTestManager(t *testing.T) (*Manager, *fakeCmdable, *redisclient.Client) {
	t.Helper()
	fake := newFakeCmdable()
	client := redisclient.FromCmdable(fake)
	mgr, err := NewManager(client, testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr, fake, client
}

func TestNewManagerRejectsShortRefreshTTL(t *testing.T) {
	t.Parallel()

	cfg := testManagerConfig()
	cfg.RefreshTokenTTLMinutes = 10 // below the 15 minute access TTL

	if _, err := NewManager(redisclient.FromCmdable(newFakeCmdable()), cfg); err == nil {
		t.Fatal("expected error when refresh ttl does not exceed access ttl")
	}
}

func TestGenerateStoresToken(t *testing.T) {
	t.Parallel()

	mgr, fake, client := newTestManager(t)

	token, err := mgr.Generate(context.Background(), "access-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if token == "" {
		t.Fatal("expected token")
	}
	if fake.data[client.AccessSessionKey("access-1")] != token {
		t.Fatal("token not stored under the session key")
	}
}

func TestRotateSwapsSession(t *testing.T) {
	t.Parallel()

	mgr, fake, client := newTestManager(t)
	ctx := context.Background()

	token, err := mgr.Generate(ctx, "access-1")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	newAccessID, newToken, err := mgr.Rotate(ctx, "access-1", token)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if newAccessID == "access-1" || newToken == token {
		t.Fatal("rotation must issue fresh credentials")
	}
	if _, ok := fake.data[client.AccessSessionKey("access-1")]; ok {
		t.Fatal("old session must be deleted")
	}
	if fake.data[client.AccessSessionKey(newAccessID)] != newToken {
		t.Fatal("new session not stored")
	}
}

func TestRotateRejectsWrongToken(t *testing.T) {
	t.Parallel()

	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	_, _, err := mgr.Rotate(ctx, "access-1", "forged-token")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRotateRejectsUnknownSession(t *testing.T) {
	t.Parallel()

	mgr, _, _ := newTestManager(t)

	_, _, err := mgr.Rotate(context.Background(), "never-seen", "whatever")
	if !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRevokeEndsSession(t *testing.T) {
	t.Parallel()

	mgr, _, _ := newTestManager(t)
	ctx := context.Background()

	if _, err := mgr.Generate(ctx, "access-1"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	has, err := mgr.HasSession(ctx, "access-1")
	if err != nil || !has {
		t.Fatalf("expected live session: has=%v err=%v", has, err)
	}

	if err := mgr.Revoke(ctx, "access-1"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	has, err = mgr.HasSession(ctx, "access-1")
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if has {
		t.Fatal("expected session gone after revoke")
	}
}
