package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegisterLoginRoundTrip(t *testing.T) {
	store := NewMemStore()
	svc, err := NewService(store, "test-secret")
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	pub, err := svc.Register(ctx, RegisterInput{
		Username: "operador1",
		Password: "Passw0rd!",
		FullName: "Operador Uno",
		Role:     RoleOperator,
		IP:       "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if pub.ID == 0 || pub.Username != "operador1" || pub.Role != RoleOperator || !pub.Active {
		t.Fatalf("unexpected public user: %+v", pub)
	}

	logged, token, err := svc.Login(ctx, "operador1", "Passw0rd!", "10.0.0.1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if logged.ID != pub.ID {
		t.Fatalf("login returned user %d, registered %d", logged.ID, pub.ID)
	}

	ident, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if ident.UserID != pub.ID || ident.Role != RoleOperator {
		t.Fatalf("unexpected identity: %+v", ident)
	}

	// Login stamps last access.
	profile, err := svc.Profile(ctx, pub.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.LastAccess == nil {
		t.Fatal("last access not updated after login")
	}
}

func TestRegisterDefaultsToViewer(t *testing.T) {
	svc, _ := NewService(NewMemStore(), "test-secret")
	pub, err := svc.Register(context.Background(), RegisterInput{
		Username: "viewer1",
		Password: "Passw0rd!",
		FullName: "Viewer Uno",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if pub.Role != RoleViewer {
		t.Fatalf("rol = %q, want %q", pub.Role, RoleViewer)
	}
}

func TestRegisterValidationError(t *testing.T) {
	svc, _ := NewService(NewMemStore(), "test-secret")
	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "ab",
		Password: "weak",
		FullName: "Operador Uno",
	})
	verr, ok := AsValidation(err)
	if !ok {
		t.Fatalf("got %v, want ValidationError", err)
	}
	if len(verr.Rules) < 2 {
		t.Fatalf("rules = %v, want username and password violations", verr.Rules)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _ := NewService(NewMemStore(), "test-secret")
	ctx := context.Background()
	in := RegisterInput{Username: "operador1", Password: "Passw0rd!", FullName: "Operador Uno"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := svc.Register(ctx, in); !errors.Is(err, ErrDuplicateUser) {
		t.Fatalf("second Register: got %v, want ErrDuplicateUser", err)
	}
}

func TestLoginInvalidCredentialsUnified(t *testing.T) {
	svc, _ := NewService(NewMemStore(), "test-secret")
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{
		Username: "operador1", Password: "Passw0rd!", FullName: "Operador Uno",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Unknown user and wrong password are indistinguishable.
	_, _, errUnknown := svc.Login(ctx, "nadie", "Passw0rd!", "")
	_, _, errWrongPass := svc.Login(ctx, "operador1", "Passw0rd?", "")
	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", errUnknown)
	}
	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", errWrongPass)
	}

	_, _, errEmpty := svc.Login(ctx, "", "", "")
	if !errors.Is(errEmpty, ErrInvalidCredentials) {
		t.Fatalf("empty credentials: got %v", errEmpty)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	store := NewMemStore()
	svc, _ := NewService(store, "test-secret")
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{
		Username: "operador1", Password: "Passw0rd!", FullName: "Operador Uno",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	store.SetActive("operador1", false)

	_, _, err := svc.Login(ctx, "operador1", "Passw0rd!", "")
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("disabled account: got %v, want ErrAccountDisabled", err)
	}
}

func TestAccessHistoryRecordsActions(t *testing.T) {
	store := NewMemStore()
	svc, _ := NewService(store, "test-secret")
	ctx := context.Background()

	pub, err := svc.Register(ctx, RegisterInput{
		Username: "operador1", Password: "Passw0rd!", FullName: "Operador Uno", IP: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Login(ctx, "operador1", "Passw0rd!", "10.0.0.1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	svc.Logout(ctx, Identity{UserID: pub.ID, Username: "operador1", Role: RoleViewer}, "10.0.0.1")

	entries, err := svc.AccessHistory(ctx, 10)
	if err != nil {
		t.Fatalf("AccessHistory: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	wantActions := []string{ActionLogout, ActionLogin, ActionRegister}
	for i, entry := range entries {
		if entry.Action != wantActions[i] {
			t.Fatalf("entry %d action = %q, want %q", i, entry.Action, wantActions[i])
		}
		if entry.UserID == nil || *entry.UserID != pub.ID {
			t.Fatalf("entry %d not attributed to user %d: %+v", i, pub.ID, entry)
		}
		if entry.IP != "10.0.0.1" {
			t.Fatalf("entry %d ip = %q", i, entry.IP)
		}
	}
}

func TestAccessHistoryClampsLimit(t *testing.T) {
	store := NewMemStore()
	svc, _ := NewService(store, "test-secret")
	ctx := context.Background()
	for i := 0; i < 600; i++ {
		id := int64(i + 1)
		_ = store.AppendAccess(ctx, &AccessEntry{UserID: &id, Action: ActionLogin})
	}
	cases := []struct {
		limit int
		want  int
	}{
		{0, 100},
		{-5, 100},
		{7, 7},
		{500, 500},
		{501, 500},
		{10000, 500},
	}
	for _, tc := range cases {
		entries, err := svc.AccessHistory(ctx, tc.limit)
		if err != nil {
			t.Fatalf("AccessHistory(%d): %v", tc.limit, err)
		}
		if len(entries) != tc.want {
			t.Fatalf("AccessHistory(%d) = %d entries, want %d", tc.limit, len(entries), tc.want)
		}
	}
}

func TestProfileUnknownUser(t *testing.T) {
	svc, _ := NewService(NewMemStore(), "test-secret")
	if _, err := svc.Profile(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestListUsersNewestFirst(t *testing.T) {
	store := NewMemStore()
	svc, _ := NewService(store, "test-secret")
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"primero", "segundo", "tercero"} {
		if err := store.CreateUser(ctx, &User{
			Username: name, FullName: name, PasswordHash: "x",
			Role: RoleViewer, Active: true, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("CreateUser: %v", err)
		}
	}
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users", len(users))
	}
	if users[0].Username != "tercero" || users[2].Username != "primero" {
		t.Fatalf("unexpected order: %s, %s, %s",
			users[0].Username, users[1].Username, users[2].Username)
	}
}

func TestLoginUnavailableStore(t *testing.T) {
	svc, _ := NewService(NewMemStore(), "test-secret")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := svc.Login(ctx, "operador1", "Passw0rd!", "")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}
