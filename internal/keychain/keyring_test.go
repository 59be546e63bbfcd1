package keychain

import (
	"slices"
	"strings"
	"testing"

	"github.com/99designs/keyring"
)

func TestKeyringBackendSemantics(t *testing.T) {
	testBackendSemantics(t, func(t *testing.T) Backend {
		return NewKeyringBackendFrom(keyring.NewArrayKeyring(nil))
	})
}

func TestKeyringBackendEntryLayout(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	s := NewStore("com.example/app", WithBackend(NewKeyringBackendFrom(ring)), WithAccessGroup("TEAM"))

	if err := s.SetString("a/b", "v"); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	keys, _ := ring.Keys()
	want := []string{"genp/com.example%2Fapp/TEAM/a%2Fb"}
	if !slices.Equal(keys, want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}

	item, _ := ring.Get(want[0])
	if !strings.Contains(string(item.Data), `"v":1`) {
		t.Errorf("expected versioned envelope, got %s", item.Data)
	}
	if item.Label != "com.example/app: a/b" {
		t.Errorf("unexpected label %q", item.Label)
	}
}

func TestKeyringBackendSkipsForeignEntries(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{
		{Key: "github-token", Data: []byte("not an envelope")},
		{Key: "other-json", Data: []byte(`{"v":2,"class":"genp"}`)},
	})
	s := NewStore("svc", WithBackend(NewKeyringBackendFrom(ring)))

	s.SetString("mine", "v")
	if keys := s.AllKeys(); !slices.Equal(keys, []string{"mine"}) {
		t.Errorf("expected [mine], got %v", keys)
	}
	if err := Wipe(s.Backend()); err != nil {
		t.Fatalf("Wipe: %v", err)
	}
	if _, err := ring.Get("github-token"); err != nil {
		t.Errorf("wipe removed a foreign entry: %v", err)
	}
}

func TestKeyringBackendFileStore(t *testing.T) {
	dir := t.TempDir()
	open := func() *KeyringBackend {
		t.Helper()
		b, err := NewKeyringBackend(KeyringOptions{
			ServiceName:     "keyward-test",
			AllowedBackends: []string{string(keyring.FileBackend)},
			FileDir:         dir,
			FilePassword:    keyring.FixedStringPrompt("test-password"),
		})
		if err != nil {
			t.Fatalf("NewKeyringBackend: %v", err)
		}
		return b
	}

	s := NewStore("svc", WithBackend(open()))
	if err := SetNumber(s, "n", 12); err != nil {
		t.Fatalf("SetNumber: %v", err)
	}
	s.SetString("n2", "x", WithAccessibility(AfterFirstUnlock))

	// A fresh backend over the same directory sees the persisted items.
	reopened := NewStore("svc", WithBackend(open()))
	n, ok, err := Number[int](reopened, "n")
	if err != nil || !ok || n != 12 {
		t.Errorf("expected 12, got %d, %v, %v", n, ok, err)
	}
	if a, ok := reopened.AccessibilityOf("n2"); !ok || a != AfterFirstUnlock {
		t.Errorf("expected after-first-unlock, got %v, %v", a, ok)
	}
	if keys := reopened.AllKeys(); !slices.Equal(keys, []string{"n", "n2"}) {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestKeyringBackendUnavailable(t *testing.T) {
	_, err := NewKeyringBackend(KeyringOptions{AllowedBackends: []string{"no-such-backend"}})
	if err == nil {
		t.Fatal("expected error when no backend is allowed")
	}
}
