package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("student")

	first := gen.Next()
	second := gen.Next()

	if first != "student-1" || second != "student-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorDefaultsPrefix(t *testing.T) {
	gen := NewIDGenerator("")
	if next := gen.Next(); next != "id-1" {
		t.Fatalf("expected id-1, got %q", next)
	}
}

func TestIDGeneratorCanReset(t *testing.T) {
	gen := NewIDGenerator("token")
	_ = gen.Next()
	_ = gen.Next()
	gen.SetCounter(0)

	if next := gen.Next(); next != "token-1" {
		t.Fatalf("expected token-1 after reset, got %q", next)
	}
}

func TestIDGeneratorNextFuncTracksSequence(t *testing.T) {
	gen := NewIDGenerator("room")
	nextFn := gen.NextFunc()

	if got := nextFn(); got != "room-1" {
		t.Fatalf("expected room-1 from NextFunc, got %q", got)
	}
	if got := gen.Next(); got != "room-2" {
		t.Fatalf("expected room-2, got %q", got)
	}
}
