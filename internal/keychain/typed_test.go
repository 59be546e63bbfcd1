package keychain

import (
	"errors"
	"testing"
)

type profile struct {
	Name  string   `json:"name" yaml:"name"`
	Roles []string `json:"roles" yaml:"roles"`
	Admin bool     `json:"admin" yaml:"admin"`
}

func TestNumberRoundTrip(t *testing.T) {
	s, _ := testStore(t)

	if err := SetNumber(s, "retries", 42); err != nil {
		t.Fatalf("SetNumber: %v", err)
	}
	n, ok, err := Number[int](s, "retries")
	if err != nil || !ok {
		t.Fatalf("Number: ok=%v err=%v", ok, err)
	}
	if n != 42 {
		t.Errorf("expected 42, got %d", n)
	}

	if err := SetNumber(s, "ratio", 0.25); err != nil {
		t.Fatalf("SetNumber: %v", err)
	}
	f, _, err := Number[float64](s, "ratio")
	if err != nil || f != 0.25 {
		t.Errorf("expected 0.25, got %v (%v)", f, err)
	}
}

func TestNumberWireFormat(t *testing.T) {
	s, _ := testStore(t)

	SetNumber(s, "n", int64(7))
	raw, _ := s.Data("n")
	if string(raw) != "[7]" {
		t.Errorf("expected [7], got %s", raw)
	}

	type level uint8
	for _, tt := range []struct {
		name  string
		store func() error
		want  string
	}{
		{"uint8", func() error { return SetNumber(s, "u8", uint8(5)) }, "[5]"},
		{"named byte", func() error { return SetNumber(s, "u8", level(200)) }, "[200]"},
		{"float", func() error { return SetNumber(s, "u8", 0.5) }, "[0.5]"},
	} {
		if err := tt.store(); err != nil {
			t.Fatalf("%s: SetNumber: %v", tt.name, err)
		}
		if raw, _ := s.Data("u8"); string(raw) != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, raw)
		}
	}
	b, ok, err := Number[uint8](s, "u8-missing")
	if ok || err != nil || b != 0 {
		t.Errorf("expected absent, got %v, %v, %v", b, ok, err)
	}
	SetNumber(s, "byte", uint8(5))
	if b, ok, err := Number[uint8](s, "byte"); err != nil || !ok || b != 5 {
		t.Errorf("expected 5, got %v, %v, %v", b, ok, err)
	}

	// Values written by other clients in the same format are readable.
	s.SetString("legacy", "[3.5]")
	f, ok, err := Number[float32](s, "legacy")
	if err != nil || !ok || f != 3.5 {
		t.Errorf("expected 3.5, got %v, %v, %v", f, ok, err)
	}
}

func TestNumberDecodeErrors(t *testing.T) {
	s, _ := testStore(t)

	for _, payload := range []string{"42", "[1,2]", "[]", `["x"]`, "[3.5]"} {
		s.SetString("bad", payload)
		_, ok, err := Number[int](s, "bad")
		if !ok {
			t.Errorf("%s: expected found", payload)
		}
		if !errors.Is(err, ErrDecode) {
			t.Errorf("%s: expected ErrDecode, got %v", payload, err)
		}
	}
}

func TestNumberMissing(t *testing.T) {
	s, _ := testStore(t)

	n, ok, err := Number[int](s, "missing")
	if ok || err != nil || n != 0 {
		t.Errorf("expected absent, got %d, %v, %v", n, ok, err)
	}
}

func TestObjectRoundTrip(t *testing.T) {
	s, _ := testStore(t)
	want := profile{Name: "ada", Roles: []string{"ops", "dev"}, Admin: true}

	if err := SetObject(s, "profile", want); err != nil {
		t.Fatalf("SetObject: %v", err)
	}
	got, ok, err := Object[profile](s, "profile")
	if err != nil || !ok {
		t.Fatalf("Object: ok=%v err=%v", ok, err)
	}
	if got.Name != want.Name || len(got.Roles) != 2 || !got.Admin {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestObjectDecodeFailureIsNotAbsence(t *testing.T) {
	s, _ := testStore(t)
	s.SetString("profile", "not json")

	_, ok, err := Object[profile](s, "profile")
	if !ok {
		t.Error("expected found")
	}
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestStoreMarshalUnmarshal(t *testing.T) {
	s, _ := testStore(t)

	if err := s.Marshal("profile", profile{Name: "grace"}); err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var p profile
	found, err := s.Unmarshal("profile", &p)
	if err != nil || !found {
		t.Fatalf("Unmarshal: found=%v err=%v", found, err)
	}
	if p.Name != "grace" {
		t.Errorf("expected grace, got %q", p.Name)
	}

	found, err = s.Unmarshal("missing", &p)
	if found || err != nil {
		t.Errorf("missing: found=%v err=%v", found, err)
	}

	s.SetString("garbage", "{")
	if _, err := s.Unmarshal("garbage", &p); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestMarshalEncodeFailure(t *testing.T) {
	s, b := testStore(t)

	if err := s.Marshal("ch", make(chan int)); err == nil {
		t.Fatal("expected encode error")
	}
	if b.Len() != 0 {
		t.Error("nothing should be stored on encode failure")
	}
}

func TestYAMLCodecStore(t *testing.T) {
	s, _ := testStore(t, WithCodec(YAMLCodec{}))

	if err := SetObject(s, "profile", profile{Name: "linus", Roles: []string{"maint"}}); err != nil {
		t.Fatalf("SetObject: %v", err)
	}
	raw, _ := s.String("profile")
	if raw == "" || raw[0] == '{' {
		t.Errorf("expected YAML payload, got %q", raw)
	}

	got, ok, err := Object[profile](s, "profile")
	if err != nil || !ok || got.Name != "linus" || len(got.Roles) != 1 {
		t.Errorf("unexpected %+v, %v, %v", got, ok, err)
	}

	SetNumber(s, "n", 9)
	n, _, err := Number[int](s, "n")
	if err != nil || n != 9 {
		t.Errorf("expected 9, got %d (%v)", n, err)
	}
}

func TestTypedAccessorsHonorAccessibility(t *testing.T) {
	s, _ := testStore(t)

	SetNumber(s, "n", 1, WithAccessibility(AfterFirstUnlockThisDeviceOnly))
	if _, ok, _ := Number[int](s, "n", WithAccessibility(WhenUnlocked)); ok {
		t.Error("expected mismatched filter to miss")
	}
	if n, ok, _ := Number[int](s, "n", WithAccessibility(AfterFirstUnlockThisDeviceOnly)); !ok || n != 1 {
		t.Errorf("expected 1, got %d, %v", n, ok)
	}
}
