package app

import (
	"github.com/muurk/polfunbox/internal/config"
	"github.com/muurk/polfunbox/internal/keymap"
	"github.com/muurk/polfunbox/internal/logging"
	"github.com/muurk/polfunbox/internal/pin"
	"github.com/muurk/polfunbox/internal/schedule"
	"go.uber.org/zap"
)

// pinKey handles keys while the PIN modal is open. Every key is consumed.
func (c *Controller) pinKey(code int, action keymap.Action, digit int) Result {
	s := c.st.pin

	// Some remotes share a code between BACK and backspace; inside the pad
	// it edits the entry.
	if c.keys.Is(keymap.Backspace, code) {
		c.sched.Cancel(schedule.TaskPINSubmit)
		s.Backspace()
		return Result{Handled: true}
	}

	switch action {
	case keymap.Digit:
		if s.Full() {
			return Result{Handled: true}
		}
		if s.Digit(digit) {
			c.sched.After(schedule.TaskPINSubmit, PINSubmitDelay, c.submitPIN)
		}
	case keymap.Delete:
		c.sched.Cancel(schedule.TaskPINSubmit)
		s.Clear()
	case keymap.Back:
		c.back()
	}
	return Result{Handled: true}
}

func (c *Controller) submitPIN() {
	s := c.st.pin
	if s == nil {
		return
	}
	outcome := s.Submit()
	logging.Debug("PIN submitted", zap.String("mode", s.Mode().String()), zap.String("outcome", outcome.String()))
	if outcome != pin.Success {
		return
	}
	if c.st.pin == s {
		c.st.pin = nil
	}
	c.notifyHost(HostNavigation)
}

// closePIN dismisses the modal without running its action.
func (c *Controller) closePIN() {
	if c.st.pin == nil {
		return
	}
	c.sched.Cancel(schedule.TaskPINSubmit)
	c.st.pin = nil
	logging.Debug("PIN prompt closed")
}

func (c *Controller) openPIN(s *pin.Session) {
	c.sched.Cancel(schedule.TaskPINSubmit)
	c.st.pin = s
	logging.Info("PIN prompt opened", zap.String("mode", s.Mode().String()))
	c.notifyHost(HostNavigation)
}

// openVerify asks for the stored PIN and runs onOK once it is entered.
func (c *Controller) openVerify(onOK func()) {
	c.openPIN(pin.NewVerify(c.st.settings.PinCode, func(string) {
		c.st.pin = nil
		onOK()
	}))
}

func (c *Controller) openSetup() {
	c.openPIN(pin.NewSetup(func(code string) {
		c.st.pin = nil
		s := c.profile.Settings()
		s.PinCode = code
		s.PinEnabled = true
		if err := c.profile.SaveSettings(s); err != nil {
			logging.Error("Failed to save PIN", zap.Error(err))
			c.showAlert(AlertError, "Błąd zapisu ustawień")
			return
		}
		c.applySavedSettings(s)
		c.showAlert(AlertSuccess, "PIN został ustawiony")
	}))
}

func (c *Controller) openDisable() {
	c.openPIN(pin.NewDisable(c.st.settings.PinCode, func(string) {
		c.st.pin = nil
		s := c.profile.Settings()
		s.PinCode = ""
		s.PinEnabled = false
		if err := c.profile.SaveSettings(s); err != nil {
			logging.Error("Failed to clear PIN", zap.Error(err))
			c.showAlert(AlertError, "Błąd zapisu ustawień")
			return
		}
		c.gate.Reset()
		c.applySavedSettings(s)
		c.showAlert(AlertSuccess, "PIN został wyłączony")
	}))
}

// applySavedSettings refreshes the in-memory settings after a PIN change,
// keeping unsaved format edits in the draft.
func (c *Controller) applySavedSettings(s config.Settings) {
	c.st.settings = s
	c.st.draft.PinCode = s.PinCode
	c.st.draft.PinEnabled = s.PinEnabled
	c.relayout()
}
