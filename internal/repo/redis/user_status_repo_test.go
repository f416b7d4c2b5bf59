package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
)

func newTestRepo(t *testing.T, now time.Time) (*UserStatusRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	repo := NewUserStatusRepo(client).WithNow(func() time.Time { return now })
	return repo, mr
}

func TestGetReturnsAbsentForUnknownPair(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)

	_, ok, err := repo.Get(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected absent record")
	}
}

func TestSetRoleThenGet(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)
	ctx := context.Background()

	if err := repo.SetRole(ctx, 10, 20, enums.RoleBotAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}

	status, ok, err := repo.Get(ctx, 10, 20)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || status.Role != enums.RoleBotAdmin || status.Muted {
		t.Fatalf("unexpected status: %+v ok=%v", status, ok)
	}
}

func TestSetRoleRejectsNativeRoles(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)

	if err := repo.SetRole(context.Background(), 10, 20, enums.RoleAdmin); err == nil {
		t.Fatalf("expected error storing native role")
	}
}

func TestMuteReplacesElevation(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)
	ctx := context.Background()

	if err := repo.SetRole(ctx, 10, 20, enums.RoleSpecial); err != nil {
		t.Fatalf("set role: %v", err)
	}
	expiry := now.Add(24 * time.Hour)
	if err := repo.SetMute(ctx, 10, 20, &expiry); err != nil {
		t.Fatalf("set mute: %v", err)
	}

	status, ok, err := repo.Get(ctx, 10, 20)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || !status.Muted || status.Role != "" {
		t.Fatalf("mute should replace elevation, got %+v", status)
	}
	if status.MuteExpiry == nil || !status.MuteExpiry.Equal(expiry) {
		t.Fatalf("unexpected mute expiry: %v", status.MuteExpiry)
	}
}

func TestExpiredMuteIsAbsentAndLazilyDeleted(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo, mr := newTestRepo(t, now)
	ctx := context.Background()

	expiry := now.Add(-time.Minute)
	if err := repo.SetMute(ctx, 10, 20, &expiry); err != nil {
		t.Fatalf("set mute: %v", err)
	}

	_, ok, err := repo.Get(ctx, 10, 20)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expired mute should read as absent")
	}

	if mr.Exists(userStatusKey(10, 20)) {
		t.Fatalf("expired mute record should be deleted on first read")
	}

	// second read is a plain miss
	_, ok, err = repo.Get(ctx, 10, 20)
	if err != nil || ok {
		t.Fatalf("second read after expiry: ok=%v err=%v", ok, err)
	}
}

func TestPermanentMuteNeverExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now.Add(1000*time.Hour))
	ctx := context.Background()

	if err := repo.SetMute(ctx, 10, 20, nil); err != nil {
		t.Fatalf("set mute: %v", err)
	}

	status, ok, err := repo.Get(ctx, 10, 20)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || !status.Muted || status.MuteExpiry != nil {
		t.Fatalf("unexpected permanent mute status: %+v ok=%v", status, ok)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo, _ := newTestRepo(t, now)
	ctx := context.Background()

	if err := repo.Delete(ctx, 10, 20); err != nil {
		t.Fatalf("delete absent record: %v", err)
	}
	if err := repo.SetRole(ctx, 10, 20, enums.RoleBotAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := repo.Delete(ctx, 10, 20); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, 10, 20); ok {
		t.Fatalf("record should be gone after delete")
	}
}
