package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/greghernandez/docsync/internal/state"
	"github.com/greghernandez/docsync/internal/testing/mocks"
	"github.com/greghernandez/docsync/internal/utils"
)

func newManager(t *testing.T) (*Manager, *mocks.MockService, *state.Store) {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), utils.StateFileName))
	if err != nil {
		t.Fatalf("state.Open() error = %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})

	svc := mocks.NewMockService()
	mgr := NewManager(svc, store, nil)
	mgr.SetPrompt(func() (string, string, error) {
		t.Fatal("prompt must not be called")
		return "", "", nil
	})
	return mgr, svc, store
}

func TestEnsure_StoredCredentialShortCircuits(t *testing.T) {
	mgr, svc, store := newManager(t)
	ctx := context.Background()

	if err := store.SaveCredential(ctx, "stored-token"); err != nil {
		t.Fatalf("SaveCredential() error = %v", err)
	}

	if err := mgr.Ensure(ctx, Credentials{}, false); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if mgr.State() != Authenticated {
		t.Errorf("state = %v, want Authenticated", mgr.State())
	}
	if svc.LoginCalls != 0 {
		t.Errorf("login was called %d times with a stored credential", svc.LoginCalls)
	}
	if svc.Token != "stored-token" {
		t.Errorf("installed token = %q", svc.Token)
	}
}

func TestEnsure_SuppliedCredentialsLogIn(t *testing.T) {
	mgr, svc, store := newManager(t)
	ctx := context.Background()

	svc.LoginFunc = func(username, password string) (string, error) {
		if username != "greg" || password != "secret" {
			t.Errorf("Login(%q, %q)", username, password)
		}
		return "fresh-token", nil
	}

	if err := mgr.Ensure(ctx, Credentials{Username: "greg", Password: "secret"}, false); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	token, ok, err := store.GetCredential(ctx)
	if err != nil || !ok || token != "fresh-token" {
		t.Fatalf("GetCredential() = %q, %v, %v", token, ok, err)
	}
	if svc.Token != "fresh-token" {
		t.Errorf("installed token = %q", svc.Token)
	}
}

func TestEnsure_PromptWhenNoCredentials(t *testing.T) {
	mgr, svc, _ := newManager(t)
	ctx := context.Background()

	prompted := false
	mgr.SetPrompt(func() (string, string, error) {
		prompted = true
		return "greg", "secret", nil
	})

	if err := mgr.Ensure(ctx, Credentials{}, false); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if !prompted {
		t.Error("expected the prompt to run")
	}
	if svc.LoginCalls != 1 {
		t.Errorf("login calls = %d", svc.LoginCalls)
	}
}

func TestEnsure_InvalidateForcesFreshLogin(t *testing.T) {
	mgr, svc, store := newManager(t)
	ctx := context.Background()

	if err := store.SaveCredential(ctx, "stale-token"); err != nil {
		t.Fatalf("SaveCredential() error = %v", err)
	}
	svc.LoginFunc = func(username, password string) (string, error) {
		return "renewed-token", nil
	}

	mgr.Invalidate()
	if mgr.State() != Unauthenticated {
		t.Errorf("state after Invalidate = %v", mgr.State())
	}

	if err := mgr.Ensure(ctx, Credentials{Username: "greg", Password: "secret"}, false); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if svc.LoginCalls != 1 {
		t.Errorf("expected a fresh login, got %d calls", svc.LoginCalls)
	}

	token, _, _ := store.GetCredential(ctx)
	if token != "renewed-token" {
		t.Errorf("stored token = %q, want the renewed one", token)
	}
}

func TestEnsure_ForceBypassesStoredCredential(t *testing.T) {
	mgr, svc, store := newManager(t)
	ctx := context.Background()

	if err := store.SaveCredential(ctx, "stored-token"); err != nil {
		t.Fatalf("SaveCredential() error = %v", err)
	}

	if err := mgr.Ensure(ctx, Credentials{Username: "greg", Password: "secret"}, true); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if svc.LoginCalls != 1 {
		t.Errorf("force must re-login, got %d calls", svc.LoginCalls)
	}
}

func TestEnsure_LoginFailure(t *testing.T) {
	mgr, svc, _ := newManager(t)
	ctx := context.Background()

	svc.LoginFunc = func(username, password string) (string, error) {
		return "", errors.New("bad credentials")
	}

	err := mgr.Ensure(ctx, Credentials{Username: "greg", Password: "wrong"}, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	if mgr.State() != Unauthenticated {
		t.Errorf("state = %v, want Unauthenticated", mgr.State())
	}
}
