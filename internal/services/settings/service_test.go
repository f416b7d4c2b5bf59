package settings

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

type policyStoreStub struct {
	policy model.ChatPolicy

	lockActions  map[enums.LockType]enums.Action
	bulkTypes    []enums.LockType
	bulkAction   enums.Action
	maxLength    int
	addSourceErr map[int64]error
	addedSources []int64
	addedWords   []string
	removedWords []string
	wordList     []string
}

func newPolicyStoreStub() *policyStoreStub {
	return &policyStoreStub{
		policy:      model.DefaultPolicy(10),
		lockActions: map[enums.LockType]enums.Action{},
		maxLength:   model.NoLengthLimit,
	}
}

func (p *policyStoreStub) GetPolicy(context.Context, int64) (model.ChatPolicy, error) {
	return p.policy, nil
}

func (p *policyStoreStub) SetProtectionEnabled(_ context.Context, _ int64, enabled bool) error {
	p.policy.ProtectionEnabled = enabled
	return nil
}

func (p *policyStoreStub) SetForwardLocked(_ context.Context, _ int64, locked bool) error {
	p.policy.ForwardLocked = locked
	return nil
}

func (p *policyStoreStub) SetMaxMessageLength(_ context.Context, _ int64, length int) error {
	p.maxLength = length
	return nil
}

func (p *policyStoreStub) SetLockAction(_ context.Context, _ int64, lt enums.LockType, a enums.Action) error {
	p.lockActions[lt] = a
	return nil
}

func (p *policyStoreStub) SetLockActions(_ context.Context, _ int64, lts []enums.LockType, a enums.Action) error {
	p.bulkTypes = lts
	p.bulkAction = a
	return nil
}

func (p *policyStoreStub) AddBannedWords(_ context.Context, _ int64, words []string) (int, error) {
	p.addedWords = append(p.addedWords, words...)
	return len(words), nil
}

func (p *policyStoreStub) RemoveBannedWords(_ context.Context, _ int64, words []string) (int, error) {
	p.removedWords = append(p.removedWords, words...)
	return len(words), nil
}

func (p *policyStoreStub) ListBannedWords(context.Context, int64) ([]string, error) {
	return p.wordList, nil
}

func (p *policyStoreStub) AddForwardSource(_ context.Context, _ int64, sourceID int64) error {
	if err := p.addSourceErr[sourceID]; err != nil {
		return err
	}
	p.addedSources = append(p.addedSources, sourceID)
	return nil
}

func (p *policyStoreStub) RemoveForwardSource(context.Context, int64, int64) error { return nil }

func (p *policyStoreStub) ListForwardSources(context.Context, int64) ([]int64, error) {
	return nil, nil
}

type roleStoreStub struct {
	roles   map[int64]enums.Role
	deleted []int64
}

func (r *roleStoreStub) SetRole(_ context.Context, _ int64, userID int64, role enums.Role) error {
	if r.roles == nil {
		r.roles = map[int64]enums.Role{}
	}
	r.roles[userID] = role
	return nil
}

func (r *roleStoreStub) Delete(_ context.Context, _ int64, userID int64) error {
	r.deleted = append(r.deleted, userID)
	return nil
}

type permStub struct {
	allowed map[int64]bool
}

func (p permStub) CanManagePolicy(_ context.Context, _ int64, userID int64) bool {
	return p.allowed[userID]
}

const (
	chatID  = int64(10)
	adminID = int64(1)
	plebID  = int64(2)
)

func newTestService(store *policyStoreStub, roles *roleStoreStub) *Service {
	return NewService(store, roles, permStub{allowed: map[int64]bool{adminID: true}}, zap.NewNop())
}

func TestEveryOperationRequiresPermission(t *testing.T) {
	svc := newTestService(newPolicyStoreStub(), &roleStoreStub{})
	ctx := context.Background()

	calls := map[string]func() error{
		"SetProtection": func() error { _, err := svc.SetProtection(ctx, chatID, plebID, true); return err },
		"AssignLock": func() error {
			_, err := svc.AssignLock(ctx, chatID, plebID, enums.LockPhoto, enums.ActionDelete)
			return err
		},
		"LockAll":        func() error { _, err := svc.LockAll(ctx, chatID, plebID); return err },
		"UnlockAll":      func() error { _, err := svc.UnlockAll(ctx, chatID, plebID); return err },
		"SetForwardLock": func() error { _, err := svc.SetForwardLock(ctx, chatID, plebID, true); return err },
		"AllowForwardSources": func() error {
			_, err := svc.AllowForwardSources(ctx, chatID, plebID, []int64{5})
			return err
		},
		"DisallowForwardSources": func() error {
			_, err := svc.DisallowForwardSources(ctx, chatID, plebID, []int64{5})
			return err
		},
		"SetMaxLength": func() error { _, err := svc.SetMaxLength(ctx, chatID, plebID, 100); return err },
		"AddWords":     func() error { _, err := svc.AddWords(ctx, chatID, plebID, []string{"x"}); return err },
		"RemoveWords":  func() error { _, err := svc.RemoveWords(ctx, chatID, plebID, []string{"x"}); return err },
		"Words":        func() error { _, err := svc.Words(ctx, chatID, plebID); return err },
		"Elevate": func() error {
			_, err := svc.Elevate(ctx, chatID, plebID, 99, enums.RoleSpecial)
			return err
		},
		"Demote":   func() error { _, err := svc.Demote(ctx, chatID, plebID, 99); return err },
		"Overview": func() error { _, err := svc.Overview(ctx, chatID, plebID); return err },
	}
	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrNotPermitted) {
			t.Fatalf("%s: err = %v, want ErrNotPermitted", name, err)
		}
	}
}

func TestBulkLockExcludesManualTypes(t *testing.T) {
	store := newPolicyStoreStub()
	svc := newTestService(store, &roleStoreStub{})

	if _, err := svc.LockAll(context.Background(), chatID, adminID); err != nil {
		t.Fatalf("LockAll: %v", err)
	}
	if store.bulkAction != enums.ActionDelete {
		t.Fatalf("bulk action = %s, want delete", store.bulkAction)
	}
	for _, lt := range store.bulkTypes {
		switch lt {
		case enums.LockSwear, enums.LockEdit, enums.LockLongText, enums.LockEnglish:
			t.Fatalf("bulk lock must not touch %s", lt)
		}
	}
	if want := len(enums.AllLockTypes) - 4; len(store.bulkTypes) != want {
		t.Fatalf("bulk covered %d types, want %d", len(store.bulkTypes), want)
	}

	if _, err := svc.UnlockAll(context.Background(), chatID, adminID); err != nil {
		t.Fatalf("UnlockAll: %v", err)
	}
	if store.bulkAction != enums.ActionDisabled {
		t.Fatalf("bulk action = %s, want disabled", store.bulkAction)
	}
}

func TestSetMaxLength(t *testing.T) {
	store := newPolicyStoreStub()
	svc := newTestService(store, &roleStoreStub{})
	ctx := context.Background()

	if _, err := svc.SetMaxLength(ctx, chatID, adminID, 200); err != nil {
		t.Fatalf("SetMaxLength(200): %v", err)
	}
	if store.maxLength != 200 {
		t.Fatalf("stored length = %d, want 200", store.maxLength)
	}

	if _, err := svc.SetMaxLength(ctx, chatID, adminID, 0); err != nil {
		t.Fatalf("SetMaxLength(0): %v", err)
	}
	if store.maxLength != model.NoLengthLimit {
		t.Fatalf("stored length = %d, want the no-limit sentinel", store.maxLength)
	}

	if _, err := svc.SetMaxLength(ctx, chatID, adminID, -5); err == nil {
		t.Fatal("negative length accepted")
	}
}

func TestAllowForwardSourcesReportsFailures(t *testing.T) {
	store := newPolicyStoreStub()
	store.addSourceErr = map[int64]error{7: errors.New("unresolvable")}
	svc := newTestService(store, &roleStoreStub{})

	reply, err := svc.AllowForwardSources(context.Background(), chatID, adminID, []int64{5, 7, 9})
	if err != nil {
		t.Fatalf("AllowForwardSources: %v", err)
	}
	if len(store.addedSources) != 2 {
		t.Fatalf("added %v, want 5 and 9", store.addedSources)
	}
	if !strings.Contains(reply, "2") || !strings.Contains(reply, "7") {
		t.Fatalf("reply %q must report the count and the failed id", reply)
	}
}

func TestWordsListing(t *testing.T) {
	store := newPolicyStoreStub()
	svc := newTestService(store, &roleStoreStub{})
	ctx := context.Background()

	reply, err := svc.Words(ctx, chatID, adminID)
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if !strings.Contains(reply, "No banned words") {
		t.Fatalf("empty list reply = %q", reply)
	}

	store.wordList = []string{"spam", "scam"}
	reply, err = svc.Words(ctx, chatID, adminID)
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if !strings.Contains(reply, "spam") || !strings.Contains(reply, "scam") {
		t.Fatalf("reply %q missing words", reply)
	}
}

func TestElevateAndDemote(t *testing.T) {
	roleStore := &roleStoreStub{}
	svc := newTestService(newPolicyStoreStub(), roleStore)
	ctx := context.Background()

	if _, err := svc.Elevate(ctx, chatID, adminID, 99, enums.RoleSpecial); err != nil {
		t.Fatalf("Elevate: %v", err)
	}
	if roleStore.roles[99] != enums.RoleSpecial {
		t.Fatalf("role = %s, want special", roleStore.roles[99])
	}

	if _, err := svc.Elevate(ctx, chatID, adminID, 99, enums.RoleAdmin); err == nil {
		t.Fatal("native role granted through the status store")
	}

	if _, err := svc.Demote(ctx, chatID, adminID, 99); err != nil {
		t.Fatalf("Demote: %v", err)
	}
	if len(roleStore.deleted) != 1 || roleStore.deleted[0] != 99 {
		t.Fatalf("deleted = %v, want [99]", roleStore.deleted)
	}
}
