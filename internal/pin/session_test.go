package pin

import "testing"

func enter(s *Session, digits string) Outcome {
	for _, r := range digits {
		s.Digit(int(r - '0'))
	}
	return s.Submit()
}

func TestSetupMatch(t *testing.T) {
	var got string
	calls := 0
	s := NewSetup(func(pin string) { got = pin; calls++ })

	if out := enter(s, "1234"); out != ConfirmRequested {
		t.Fatalf("first entry = %v, want confirm", out)
	}
	if s.Title() != TitleConfirm {
		t.Errorf("Title() = %q, want confirm prompt", s.Title())
	}
	if s.Entered() != 0 {
		t.Errorf("buffer not cleared after first entry: %d", s.Entered())
	}

	if out := enter(s, "1234"); out != Success {
		t.Fatalf("second entry = %v, want success", out)
	}
	if calls != 1 || got != "1234" {
		t.Errorf("callback = %q x%d, want 1234 x1", got, calls)
	}
	if !s.Done() {
		t.Error("Done() = false after success")
	}
}

func TestSetupMismatchRestarts(t *testing.T) {
	called := false
	s := NewSetup(func(string) { called = true })

	enter(s, "1234")
	if out := enter(s, "5678"); out != Mismatch {
		t.Fatalf("confirmation = %v, want mismatch", out)
	}
	if called {
		t.Error("callback ran on mismatch")
	}
	if s.Error() != ErrMismatch {
		t.Errorf("Error() = %q", s.Error())
	}
	if s.Confirming() || s.Title() != TitleSetup || s.Entered() != 0 {
		t.Errorf("not back at first step: confirming=%v title=%q entered=%d", s.Confirming(), s.Title(), s.Entered())
	}

	// The restart is a genuine first entry again.
	if out := enter(s, "5678"); out != ConfirmRequested {
		t.Errorf("entry after mismatch = %v, want confirm", out)
	}
	if s.Error() != "" {
		t.Errorf("error not cleared: %q", s.Error())
	}
}

func TestVerify(t *testing.T) {
	calls := 0
	s := NewVerify("4321", func(string) { calls++ })

	if out := enter(s, "1111"); out != Wrong {
		t.Fatalf("wrong entry = %v", out)
	}
	if s.Error() != ErrWrong || s.Entered() != 0 || calls != 0 {
		t.Errorf("after wrong: err=%q entered=%d calls=%d", s.Error(), s.Entered(), calls)
	}

	if out := enter(s, "4321"); out != Success || calls != 1 {
		t.Errorf("right entry = %v, calls=%d", out, calls)
	}

	// A finished session ignores further input.
	if out := enter(s, "4321"); out != Pending || calls != 1 {
		t.Errorf("after done = %v, calls=%d", out, calls)
	}
}

func TestDisableTitle(t *testing.T) {
	s := NewDisable("0000", nil)
	if s.Title() != TitleDisable || s.Mode() != Disable {
		t.Errorf("Title() = %q, Mode() = %v", s.Title(), s.Mode())
	}
	if out := enter(s, "0000"); out != Success {
		t.Errorf("disable with right pin = %v", out)
	}
}

func TestBufferEditing(t *testing.T) {
	s := NewVerify("1234", nil)

	if s.Submit() != Pending {
		t.Error("Submit on empty buffer should be pending")
	}

	s.Digit(1)
	s.Digit(2)
	s.Backspace()
	if s.Entered() != 1 {
		t.Errorf("Entered() after backspace = %d", s.Entered())
	}
	s.Clear()
	if s.Entered() != 0 {
		t.Errorf("Entered() after clear = %d", s.Entered())
	}
	s.Backspace()
	if s.Entered() != 0 {
		t.Error("backspace on empty buffer went negative")
	}

	for i := 0; i < 6; i++ {
		s.Digit(9)
	}
	if s.Entered() != Length || !s.Full() {
		t.Errorf("Entered() = %d, want capped at %d", s.Entered(), Length)
	}
	if s.Digit(10) != true {
		t.Error("Digit on full buffer should report full")
	}

	enter(s, "")
	s.Digit(1)
	s.Backspace()
	if s.Error() != "" {
		t.Errorf("backspace should clear error, got %q", s.Error())
	}
}
