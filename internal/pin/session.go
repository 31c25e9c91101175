package pin

import "fmt"

// Length is the number of digits in a PIN.
const Length = 4

// Mode selects what a Session does with the entered PIN.
type Mode int

const (
	// Setup asks for a new PIN twice.
	Setup Mode = iota
	// Verify checks the entry against the stored PIN.
	Verify
	// Disable is Verify; the caller clears the PIN on success.
	Disable
)

func (m Mode) String() string {
	switch m {
	case Setup:
		return "setup"
	case Verify:
		return "verify"
	case Disable:
		return "disable"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Outcome is the result of submitting a full entry.
type Outcome int

const (
	// Pending means the buffer is not full yet.
	Pending Outcome = iota
	// ConfirmRequested means the first setup entry was stored and the
	// session now waits for the confirmation entry.
	ConfirmRequested
	// Mismatch means the setup confirmation differed from the first entry.
	// Both entries are discarded.
	Mismatch
	// Wrong means a verify or disable entry did not match the stored PIN.
	Wrong
	// Success means the callback ran and the session is finished.
	Success
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case ConfirmRequested:
		return "confirm"
	case Mismatch:
		return "mismatch"
	case Wrong:
		return "wrong"
	case Success:
		return "success"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Prompt texts shown above the PIN pad.
const (
	TitleSetup   = "Ustaw nowy PIN (4 cyfry)"
	TitleConfirm = "Powtórz PIN"
	TitleVerify  = "Wprowadź PIN"
	TitleDisable = "Wprowadź PIN aby wyłączyć"

	ErrMismatch = "PIN nie pasuje, spróbuj ponownie"
	ErrWrong    = "Nieprawidłowy PIN"
)

// Session is one open PIN prompt. It is created when the modal opens and
// discarded when it closes.
type Session struct {
	mode      Mode
	stored    string
	entry     []byte
	first     string
	errText   string
	done      bool
	onSuccess func(pin string)
}

// NewSetup opens a prompt for choosing a new PIN. onSuccess receives the
// confirmed PIN.
func NewSetup(onSuccess func(pin string)) *Session {
	return &Session{mode: Setup, onSuccess: onSuccess}
}

// NewVerify opens a prompt checked against stored.
func NewVerify(stored string, onSuccess func(pin string)) *Session {
	return &Session{mode: Verify, stored: stored, onSuccess: onSuccess}
}

// NewDisable opens a prompt that, once the stored PIN is entered, lets the
// caller remove it.
func NewDisable(stored string, onSuccess func(pin string)) *Session {
	return &Session{mode: Disable, stored: stored, onSuccess: onSuccess}
}

func (s *Session) Mode() Mode { return s.mode }

// Entered is the number of digits in the buffer.
func (s *Session) Entered() int { return len(s.entry) }

// Full reports whether the buffer holds a complete PIN awaiting Submit.
func (s *Session) Full() bool { return len(s.entry) == Length }

// Confirming reports whether a setup session is on its second entry.
func (s *Session) Confirming() bool { return s.mode == Setup && s.first != "" }

// Done reports whether the session completed successfully.
func (s *Session) Done() bool { return s.done }

// Error is the inline error text, empty when there is none.
func (s *Session) Error() string { return s.errText }

// Title is the prompt for the current step.
func (s *Session) Title() string {
	switch {
	case s.mode == Setup && s.first != "":
		return TitleConfirm
	case s.mode == Setup:
		return TitleSetup
	case s.mode == Disable:
		return TitleDisable
	}
	return TitleVerify
}

// Digit appends d to the buffer. Input beyond four digits is ignored. It
// reports whether the buffer is now full.
func (s *Session) Digit(d int) bool {
	if s.done || d < 0 || d > 9 || len(s.entry) >= Length {
		return s.Full()
	}
	s.entry = append(s.entry, byte('0'+d))
	return s.Full()
}

// Backspace removes the last digit and clears the error.
func (s *Session) Backspace() {
	if len(s.entry) > 0 {
		s.entry = s.entry[:len(s.entry)-1]
	}
	s.errText = ""
}

// Clear empties the buffer and clears the error.
func (s *Session) Clear() {
	s.entry = s.entry[:0]
	s.errText = ""
}

// Submit evaluates a full buffer. It returns Pending when fewer than four
// digits have been entered.
func (s *Session) Submit() Outcome {
	if s.done || !s.Full() {
		return Pending
	}
	entry := string(s.entry)
	s.entry = s.entry[:0]

	switch s.mode {
	case Setup:
		if s.first == "" {
			s.first = entry
			s.errText = ""
			return ConfirmRequested
		}
		if entry != s.first {
			s.first = ""
			s.errText = ErrMismatch
			return Mismatch
		}
		s.succeed(entry)
		return Success

	default:
		if entry != s.stored {
			s.errText = ErrWrong
			return Wrong
		}
		s.succeed(entry)
		return Success
	}
}

func (s *Session) succeed(entry string) {
	s.done = true
	s.errText = ""
	if s.onSuccess != nil {
		s.onSuccess(entry)
	}
}
