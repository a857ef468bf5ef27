package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
	"mavi-fit-game/internal/infra/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type stubIssuer struct{ issued []domain.Actor }

func (s *stubIssuer) Issue(actor domain.Actor) (string, time.Time, error) {
	s.issued = append(s.issued, actor)
	return "token-" + actor.UserID, time.Date(2024, 11, 23, 0, 0, 0, 0, time.UTC), nil
}

func newUserService(t *testing.T, now *time.Time) (*app.UserService, *memory.Store, *stubIssuer) {
	t.Helper()
	store := memory.NewStore()
	clock := func() time.Time { return *now }
	badges := app.NewBadgeEngine(store, store, store, store, app.DefaultBadgeRules()).WithClock(clock)
	if err := badges.SeedCatalog(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	issuer := &stubIssuer{}
	svc := app.NewUserService(store, badges, issuer, plainHasher{}, time.UTC).WithClock(clock)
	return svc, store, issuer
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)
	svc, _, issuer := newUserService(t, &now)

	user, err := svc.Register(ctx, " Ayse@Mavi.com ", "secret-pass", "Ayşe", "IST01")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ayse@mavi.com" || user.Role != domain.RoleEmployee || user.PasswordHash == "secret-pass" {
		t.Fatalf("unexpected user %+v", user)
	}
	if _, err := svc.Register(ctx, "ayse@mavi.com", "secret-pass", "Ayşe", ""); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	if _, err := svc.Login(ctx, "ayse@mavi.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@mavi.com", "secret-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}

	for day := 0; day < 3; day++ {
		res, err := svc.Login(ctx, "AYSE@mavi.com", "secret-pass")
		if err != nil {
			t.Fatalf("login day %d: %v", day, err)
		}
		if res.User.LoginStreak != day+1 {
			t.Fatalf("day %d: expected streak %d, got %d", day, day+1, res.User.LoginStreak)
		}
		if day == 2 {
			if len(res.UnlockedBadges) != 1 || res.UnlockedBadges[0].Badge.Code != "daily_3" {
				t.Fatalf("expected daily_3 on third day, got %+v", res.UnlockedBadges)
			}
		}
		now = now.Add(24 * time.Hour)
	}

	last := issuer.issued[len(issuer.issued)-1]
	if last.UserID != user.ID || last.Role != domain.RoleEmployee || last.StoreCode != "IST01" {
		t.Fatalf("token issued for wrong actor %+v", last)
	}
}

func TestLoginStreakRestartsAfterGap(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC)
	svc, store, _ := newUserService(t, &now)
	user, _ := svc.Register(ctx, "a@mavi.com", "secret-pass", "A", "")

	_, _ = svc.Login(ctx, "a@mavi.com", "secret-pass")
	now = now.Add(24 * time.Hour)
	_, _ = svc.Login(ctx, "a@mavi.com", "secret-pass")
	now = now.Add(72 * time.Hour)
	res, _ := svc.Login(ctx, "a@mavi.com", "secret-pass")

	if res.User.LoginStreak != 1 {
		t.Fatalf("expected restart, got %d", res.User.LoginStreak)
	}
	stored, _ := store.GetUser(ctx, user.ID)
	if stored.LongestLoginStreak != 2 {
		t.Fatalf("expected longest streak 2, got %d", stored.LongestLoginStreak)
	}
}

func TestRegisterValidation(t *testing.T) {
	now := time.Now()
	svc, _, _ := newUserService(t, &now)
	cases := []struct{ email, password, name string }{
		{"not-an-email", "secret-pass", "A"},
		{"a@mavi.com", "short", "A"},
		{"a@mavi.com", "secret-pass", "  "},
	}
	for _, tc := range cases {
		if _, err := svc.Register(context.Background(), tc.email, tc.password, tc.name, ""); !domain.IsValidation(err) {
			t.Fatalf("expected validation error for %+v, got %v", tc, err)
		}
	}
}

func TestUserAdministration(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _, _ := newUserService(t, &now)

	root, _ := svc.CreateAdmin(ctx, "root@mavi.com", "secret-pass", "Root")
	a, _ := svc.Register(ctx, "a@mavi.com", "secret-pass", "A", "IST01")
	_, _ = svc.Register(ctx, "b@mavi.com", "secret-pass", "B", "ANK01")

	rootActor := domain.Actor{UserID: root.ID, Role: domain.RoleAdmin}
	manager := domain.Actor{UserID: "m1", Role: domain.RoleStoreManager, StoreCode: "IST01"}
	employee := domain.Actor{UserID: a.ID, Role: domain.RoleEmployee, StoreCode: "IST01"}

	all, err := svc.List(ctx, rootActor)
	if err != nil || len(all) != 3 {
		t.Fatalf("admin should list everyone: %v %v", all, err)
	}
	own, err := svc.List(ctx, manager)
	if err != nil || len(own) != 1 || own[0].ID != a.ID {
		t.Fatalf("manager should list own store: %v %v", own, err)
	}
	if _, err := svc.List(ctx, employee); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, manager, a.ID); err != nil {
		t.Fatalf("manager should see own store user: %v", err)
	}

	if err := svc.ChangeRole(ctx, employee, a.ID, domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.ChangeRole(ctx, rootActor, a.ID, "boss"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.ChangeRole(ctx, rootActor, a.ID, domain.RoleStoreManager); err != nil {
		t.Fatalf("change role: %v", err)
	}

	if err := svc.Delete(ctx, rootActor, root.ID); !domain.IsValidation(err) {
		t.Fatalf("admin must not delete itself, got %v", err)
	}
	if err := svc.Delete(ctx, rootActor, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, rootActor, a.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected deleted user gone, got %v", err)
	}
}
