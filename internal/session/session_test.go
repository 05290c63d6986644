package session

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// fakeSlot is an in-memory Slot with injectable faults.
type fakeSlot struct {
	data     []byte
	readErr  error
	writeErr error
	clears   int
	writes   int
}

func (f *fakeSlot) Read() ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.data, nil
}

func (f *fakeSlot) Write(data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes++
	f.data = data
	return nil
}

func (f *fakeSlot) Clear() error {
	f.clears++
	f.data = nil
	return nil
}

func mustEncode(t *testing.T, cred Credential) []byte {
	t.Helper()
	data, err := json.Marshal(cred)
	if err != nil {
		t.Fatalf("failed to encode credential: %v", err)
	}
	return data
}

func TestCredential(t *testing.T) {
	now := time.Now()

	t.Run("Valid", func(t *testing.T) {
		if !(Credential{Token: "tok", AcquiredAt: now}).Valid() {
			t.Error("expected complete credential to be valid")
		}
		if (Credential{AcquiredAt: now}).Valid() {
			t.Error("expected missing token to be invalid")
		}
		if (Credential{Token: "tok"}).Valid() {
			t.Error("expected zero acquisition time to be invalid")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		cred := Credential{Token: "tok", AcquiredAt: now.Add(-30 * time.Minute)}

		if cred.Expired(now, time.Hour) {
			t.Error("expected 30m old credential to survive a 1h window")
		}
		if !cred.Expired(now.Add(31*time.Minute), time.Hour) {
			t.Error("expected credential to expire past the window")
		}
	})
}

func TestStore(t *testing.T) {
	now := time.Now()

	t.Run("round trip", func(t *testing.T) {
		slot := &fakeSlot{}
		store := NewStore(slot, time.Hour)

		cred := Credential{Token: "tok_abc", AcquiredAt: now}
		if err := store.Write(cred); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		got := store.Read()
		if got == nil {
			t.Fatal("expected credential after write")
		}
		if got.Token != "tok_abc" {
			t.Errorf("expected tok_abc, got %q", got.Token)
		}
	})

	t.Run("empty slot yields nil", func(t *testing.T) {
		store := NewStore(&fakeSlot{}, time.Hour)
		if store.Read() != nil {
			t.Error("expected nil from empty slot")
		}
	})

	t.Run("expired credential is evicted", func(t *testing.T) {
		slot := &fakeSlot{data: mustEncode(t, Credential{
			Token:      "tok_old",
			AcquiredAt: now.Add(-2 * time.Hour),
		})}
		store := NewStore(slot, time.Hour)

		if store.Read() != nil {
			t.Error("expected nil for expired credential")
		}
		if slot.clears != 1 {
			t.Errorf("expected slot to be cleared once, got %d", slot.clears)
		}
		if slot.data != nil {
			t.Error("expected slot contents to be gone")
		}
	})

	t.Run("malformed record reads as absent", func(t *testing.T) {
		slot := &fakeSlot{data: []byte("{not json")}
		store := NewStore(slot, time.Hour)

		if store.Read() != nil {
			t.Error("expected nil for malformed record")
		}
	})

	t.Run("storage fault reads as absent", func(t *testing.T) {
		slot := &fakeSlot{readErr: errors.New("disk gone")}
		store := NewStore(slot, time.Hour)

		if store.Read() != nil {
			t.Error("expected nil on read fault")
		}
	})

	t.Run("invalid credential refused", func(t *testing.T) {
		store := NewStore(&fakeSlot{}, time.Hour)

		if err := store.Write(Credential{Token: ""}); err == nil {
			t.Error("expected write of invalid credential to fail")
		}
	})

	t.Run("non-positive ttl falls back to default", func(t *testing.T) {
		store := NewStore(&fakeSlot{}, 0)
		if store.TTL() != DefaultTTL {
			t.Errorf("expected %s, got %s", DefaultTTL, store.TTL())
		}
	})
}

func TestResolver(t *testing.T) {
	now := time.Now()

	t.Run("redirect parameter wins over stored state", func(t *testing.T) {
		slot := &fakeSlot{data: mustEncode(t, Credential{Token: "tok_stored", AcquiredAt: now})}
		store := NewStore(slot, time.Hour)
		addr := NewParamAddress(map[string]string{"access_token": "tok_fresh"})

		cred := NewResolver(store, addr).Resolve()
		if cred == nil || cred.Token != "tok_fresh" {
			t.Fatalf("expected fresh token to win, got %+v", cred)
		}

		if addr.ReadParam("access_token") != "" {
			t.Error("expected redirect parameter to be consumed")
		}

		persisted := store.Read()
		if persisted == nil || persisted.Token != "tok_fresh" {
			t.Error("expected fresh credential to be persisted")
		}
	})

	t.Run("falls back to stored credential", func(t *testing.T) {
		slot := &fakeSlot{data: mustEncode(t, Credential{Token: "tok_stored", AcquiredAt: now})}
		store := NewStore(slot, time.Hour)

		cred := NewResolver(store, NewParamAddress(nil)).Resolve()
		if cred == nil || cred.Token != "tok_stored" {
			t.Fatalf("expected stored token, got %+v", cred)
		}
	})

	t.Run("persistence failure still adopts the token", func(t *testing.T) {
		slot := &fakeSlot{writeErr: errors.New("disk full")}
		store := NewStore(slot, time.Hour)
		addr := NewParamAddress(map[string]string{"access_token": "tok_fresh"})

		cred := NewResolver(store, addr).Resolve()
		if cred == nil || cred.Token != "tok_fresh" {
			t.Fatalf("expected memory-only session, got %+v", cred)
		}
		if addr.ReadParam("access_token") != "" {
			t.Error("expected parameter consumed despite persistence failure")
		}
	})

	t.Run("nothing resolves to nil", func(t *testing.T) {
		store := NewStore(&fakeSlot{}, time.Hour)
		if NewResolver(store, NewParamAddress(nil)).Resolve() != nil {
			t.Error("expected nil with no redirect and empty slot")
		}
	})
}

func TestController(t *testing.T) {
	now := time.Now()

	t.Run("reports checking until resolved", func(t *testing.T) {
		store := NewStore(&fakeSlot{}, time.Hour)
		controller := NewController(store, NewParamAddress(nil), "http://localhost:8000/login")

		if !controller.IsCheckingToken() {
			t.Error("expected checking state before Resolve")
		}
		if _, ok := controller.Token(); ok {
			t.Error("expected no token before Resolve")
		}

		controller.Resolve()

		if controller.IsCheckingToken() {
			t.Error("expected checking to end after Resolve")
		}
	})

	t.Run("publishes resolved token", func(t *testing.T) {
		slot := &fakeSlot{data: mustEncode(t, Credential{Token: "tok_abc", AcquiredAt: now})}
		store := NewStore(slot, time.Hour)
		controller := NewController(store, NewParamAddress(nil), "")

		controller.Resolve()

		token, ok := controller.Token()
		if !ok || token != "tok_abc" {
			t.Errorf("expected tok_abc, got %q (%v)", token, ok)
		}
	})

	t.Run("resolve runs once", func(t *testing.T) {
		slot := &fakeSlot{}
		store := NewStore(slot, time.Hour)
		addr := NewParamAddress(map[string]string{"access_token": "tok_first"})
		controller := NewController(store, addr, "")

		controller.Resolve()
		addr.params["access_token"] = "tok_second"
		controller.Resolve()

		token, _ := controller.Token()
		if token != "tok_first" {
			t.Errorf("expected first resolution to stick, got %q", token)
		}
		if slot.writes != 1 {
			t.Errorf("expected exactly one persist, got %d", slot.writes)
		}
	})

	t.Run("logout clears token and slot", func(t *testing.T) {
		slot := &fakeSlot{data: mustEncode(t, Credential{Token: "tok_abc", AcquiredAt: now})}
		store := NewStore(slot, time.Hour)
		controller := NewController(store, NewParamAddress(nil), "")

		controller.Resolve()
		controller.LogOut()

		if _, ok := controller.Token(); ok {
			t.Error("expected no token after logout")
		}
		if slot.clears == 0 {
			t.Error("expected slot to be cleared")
		}
	})

	t.Run("login url passthrough", func(t *testing.T) {
		store := NewStore(&fakeSlot{}, time.Hour)
		controller := NewController(store, NewParamAddress(nil), "http://localhost:8000/login")

		if controller.LoginURL() != "http://localhost:8000/login" {
			t.Errorf("unexpected login url: %q", controller.LoginURL())
		}
	})
}

func TestFileSlot(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		slot, err := NewFileSlot(filepath.Join(t.TempDir(), "session.json"))
		if err != nil {
			t.Fatalf("NewFileSlot failed: %v", err)
		}

		if err := slot.Write([]byte(`{"token":"tok"}`)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		data, err := slot.Read()
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if string(data) != `{"token":"tok"}` {
			t.Errorf("unexpected contents: %s", data)
		}
	})

	t.Run("missing file reads empty", func(t *testing.T) {
		slot, err := NewFileSlot(filepath.Join(t.TempDir(), "absent.json"))
		if err != nil {
			t.Fatalf("NewFileSlot failed: %v", err)
		}

		data, err := slot.Read()
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if data != nil {
			t.Errorf("expected nil for missing file, got %s", data)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		slot, err := NewFileSlot(filepath.Join(t.TempDir(), "session.json"))
		if err != nil {
			t.Fatalf("NewFileSlot failed: %v", err)
		}

		if err := slot.Write([]byte("data")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if err := slot.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if err := slot.Clear(); err != nil {
			t.Errorf("second Clear failed: %v", err)
		}
	})
}
