package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/ivankudzin/groupguard/internal/domain/enums"
	"github.com/ivankudzin/groupguard/internal/domain/model"
)

type membershipStub struct {
	member model.Membership
	err    error
}

func (s *membershipStub) GetMembership(context.Context, int64, int64) (model.Membership, error) {
	return s.member, s.err
}

type statusStub struct {
	status model.UserStatus
	ok     bool
	err    error
}

func (s *statusStub) Get(context.Context, int64, int64) (model.UserStatus, bool, error) {
	return s.status, s.ok, s.err
}

func TestResolveNativeStatusWins(t *testing.T) {
	host := &membershipStub{member: model.Membership{Status: enums.StatusCreator}}
	// stored elevation must not matter when the host says owner/admin
	statuses := &statusStub{status: model.UserStatus{Role: enums.RoleSpecial}, ok: true}
	svc := NewService(host, statuses, nil)

	if got := svc.Resolve(context.Background(), 1, 2); got != enums.RoleOwner {
		t.Fatalf("expected owner, got %s", got)
	}

	host.member = model.Membership{Status: enums.StatusAdministrator}
	if got := svc.Resolve(context.Background(), 1, 2); got != enums.RoleAdmin {
		t.Fatalf("expected admin, got %s", got)
	}
}

func TestResolveStoredElevation(t *testing.T) {
	host := &membershipStub{member: model.Membership{Status: enums.StatusMember}}

	svc := NewService(host, &statusStub{status: model.UserStatus{Role: enums.RoleBotAdmin}, ok: true}, nil)
	if got := svc.Resolve(context.Background(), 1, 2); got != enums.RoleBotAdmin {
		t.Fatalf("expected bot_admin, got %s", got)
	}

	svc = NewService(host, &statusStub{status: model.UserStatus{Role: enums.RoleSpecial}, ok: true}, nil)
	if got := svc.Resolve(context.Background(), 1, 2); got != enums.RoleSpecial {
		t.Fatalf("expected special, got %s", got)
	}
}

func TestResolveMutedUserIsPlainMember(t *testing.T) {
	host := &membershipStub{member: model.Membership{Status: enums.StatusMember}}
	svc := NewService(host, &statusStub{status: model.UserStatus{Muted: true}, ok: true}, nil)

	if got := svc.Resolve(context.Background(), 1, 2); got != enums.RoleMember {
		t.Fatalf("a muted record is not an elevation, got %s", got)
	}
}

func TestResolveHostFailureFallsBackToStoredRoles(t *testing.T) {
	host := &membershipStub{err: errors.New("user not participant")}
	svc := NewService(host, &statusStub{status: model.UserStatus{Role: enums.RoleSpecial}, ok: true}, nil)

	if got := svc.Resolve(context.Background(), 1, 2); got != enums.RoleSpecial {
		t.Fatalf("stored elevation should survive host failure, got %s", got)
	}
}

func TestResolveEverythingFailingIsMember(t *testing.T) {
	host := &membershipStub{err: errors.New("unreachable")}
	svc := NewService(host, &statusStub{err: errors.New("store down")}, nil)

	if got := svc.Resolve(context.Background(), 1, 2); got != enums.RoleMember {
		t.Fatalf("expected member on total failure, got %s", got)
	}
}

func TestCanManagePolicy(t *testing.T) {
	cases := []struct {
		name   string
		member model.Membership
		err    error
		want   bool
	}{
		{"creator", model.Membership{Status: enums.StatusCreator}, nil, true},
		{"admin with restrict", model.Membership{Status: enums.StatusAdministrator, CanRestrictMembers: true}, nil, true},
		{"admin without restrict", model.Membership{Status: enums.StatusAdministrator}, nil, false},
		{"plain member", model.Membership{Status: enums.StatusMember}, nil, false},
		{"host failure", model.Membership{}, errors.New("boom"), false},
	}

	for _, tc := range cases {
		svc := NewService(&membershipStub{member: tc.member, err: tc.err}, nil, nil)
		if got := svc.CanManagePolicy(context.Background(), 1, 2); got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
