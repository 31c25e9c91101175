package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/polfunbox/internal/logging"
)

const (
	DefaultMPVBinary    = "mpv"
	DefaultStartTimeout = 5 * time.Second
	commandTimeout      = 5 * time.Second
	quitGrace           = 2 * time.Second
)

// Property observer ids.
const (
	obsTimePos = iota + 1
	obsDuration
	obsPause
)

// ErrClosed is returned by commands issued after Destroy.
var ErrClosed = errors.New("player destroyed")

// mpvMessage covers both command replies and asynchronous events.
type mpvMessage struct {
	RequestID *int            `json:"request_id,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`

	Event     string `json:"event,omitempty"`
	ID        int    `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason,omitempty"`
	FileError string `json:"file_error,omitempty"`
}

type mpvCommand struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

// MPV drives an external mpv process over its JSON IPC socket.
type MPV struct {
	Binary       string
	ExtraArgs    []string
	SocketPath   string
	StartTimeout time.Duration
	// Dial connects to the IPC socket. Tests replace it to talk to a fake.
	Dial func(ctx context.Context, socket string) (net.Conn, error)

	onEvent Handler

	mu       sync.Mutex
	writeMu  sync.Mutex
	cmd      *exec.Cmd
	conn     net.Conn
	pending  map[int]chan mpvMessage
	nextID   int
	closed   bool
	stopping bool
	done     chan struct{}
	paused   bool
	pos, dur time.Duration
}

// NewMPV creates an idle mpv player. The process starts on the first Load.
func NewMPV(onEvent Handler) *MPV {
	return &MPV{
		Binary:       DefaultMPVBinary,
		StartTimeout: DefaultStartTimeout,
		onEvent:      onEvent,
		pending:      make(map[int]chan mpvMessage),
	}
}

// MPVFactory returns a Factory that launches binary with extra arguments.
func MPVFactory(binary string, extraArgs ...string) Factory {
	return func(onEvent Handler) Player {
		m := NewMPV(onEvent)
		if binary != "" {
			m.Binary = binary
		}
		m.ExtraArgs = extraArgs
		return m
	}
}

func (m *MPV) Load(ctx context.Context, url string) error {
	if err := m.ensureRunning(ctx); err != nil {
		return err
	}
	logging.Info("Loading stream", zap.String("url", logging.RedactURL(url)))
	if _, err := m.command("loadfile", url, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}
	_, err := m.command("set_property", "pause", false)
	return err
}

func (m *MPV) Play() error {
	_, err := m.command("set_property", "pause", false)
	return err
}

func (m *MPV) Pause() error {
	_, err := m.command("set_property", "pause", true)
	return err
}

func (m *MPV) TogglePause() error {
	_, err := m.command("cycle", "pause")
	return err
}

func (m *MPV) Seek(offset time.Duration) error {
	m.mu.Lock()
	target := clampSeek(m.pos, m.dur, offset)
	m.mu.Unlock()
	_, err := m.command("seek", target.Seconds(), "absolute")
	return err
}

func (m *MPV) Position() (time.Duration, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos, m.dur
}

func (m *MPV) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *MPV) Destroy() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	conn, cmd := m.conn, m.cmd
	m.stopping = true
	m.mu.Unlock()

	if conn != nil {
		// Best effort: mpv exits on its own when it gets this.
		_, _ = m.commandTimeout(quitGrace, "quit")
	}

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if cmd != nil && cmd.Process != nil {
		exited := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(exited)
		}()
		select {
		case <-exited:
		case <-time.After(quitGrace):
			_ = cmd.Process.Kill()
			<-exited
		}
	}
	if m.SocketPath != "" && m.Dial == nil {
		_ = os.Remove(m.SocketPath)
	}
	logging.Debug("Player destroyed")
	return nil
}

func (m *MPV) ensureRunning(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.conn != nil {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	if m.SocketPath == "" {
		m.SocketPath = filepath.Join(os.TempDir(), "polfun-mpv-"+uuid.NewString()[:8]+".sock")
	}

	dial := m.Dial
	if dial == nil {
		if err := m.startProcess(); err != nil {
			return err
		}
		dial = dialUnix
	}

	startCtx, cancel := context.WithTimeout(ctx, m.StartTimeout)
	defer cancel()
	conn, err := waitForSocket(startCtx, dial, m.SocketPath)
	if err != nil {
		return fmt.Errorf("connect to mpv: %w", err)
	}

	m.mu.Lock()
	m.conn = conn
	m.done = make(chan struct{})
	m.mu.Unlock()
	go m.readLoop(conn, m.done)

	for _, obs := range []struct {
		id   int
		prop string
	}{
		{obsTimePos, "time-pos"},
		{obsDuration, "duration"},
		{obsPause, "pause"},
	} {
		if _, err := m.command("observe_property", obs.id, obs.prop); err != nil {
			return fmt.Errorf("observe %s: %w", obs.prop, err)
		}
	}
	return nil
}

func (m *MPV) startProcess() error {
	args := append([]string{
		"--idle=yes",
		"--force-window=yes",
		"--really-quiet",
		"--input-ipc-server=" + m.SocketPath,
	}, m.ExtraArgs...)

	cmd := exec.Command(m.Binary, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", m.Binary, err)
	}
	logging.Debug("Started mpv", zap.Int("pid", cmd.Process.Pid), zap.String("socket", m.SocketPath))

	m.mu.Lock()
	m.cmd = cmd
	m.mu.Unlock()
	return nil
}

func dialUnix(ctx context.Context, socket string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", socket)
}

func waitForSocket(ctx context.Context, dial func(context.Context, string) (net.Conn, error), socket string) (net.Conn, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		conn, err := dial(ctx, socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

func (m *MPV) command(args ...any) (json.RawMessage, error) {
	return m.commandTimeout(commandTimeout, args...)
}

func (m *MPV) commandTimeout(timeout time.Duration, args ...any) (json.RawMessage, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.conn == nil {
		m.mu.Unlock()
		return nil, errors.New("player not loaded")
	}
	m.nextID++
	id := m.nextID
	reply := make(chan mpvMessage, 1)
	m.pending[id] = reply
	conn, done := m.conn, m.done
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.pending, id)
		m.mu.Unlock()
	}()

	line, err := json.Marshal(mpvCommand{Command: args, RequestID: id})
	if err != nil {
		return nil, err
	}
	m.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	_, err = conn.Write(append(line, '\n'))
	m.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write command: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-reply:
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
		return msg.Data, nil
	case <-done:
		return nil, ErrClosed
	case <-timer.C:
		return nil, fmt.Errorf("mpv %v: timed out", args[0])
	}
}

func (m *MPV) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			logging.LogRawBytes("Malformed mpv message", scanner.Bytes())
			continue
		}
		if msg.RequestID != nil {
			m.mu.Lock()
			reply, ok := m.pending[*msg.RequestID]
			m.mu.Unlock()
			if ok {
				reply <- msg
			}
			continue
		}
		m.handleEvent(msg)
	}

	m.mu.Lock()
	stopping := m.closed || m.stopping
	m.mu.Unlock()
	if !stopping {
		m.emit(Event{Type: EventError, Err: errors.New("player exited"), Fatal: true})
	}
}

func (m *MPV) handleEvent(msg mpvMessage) {
	switch msg.Event {
	case "property-change":
		switch msg.ID {
		case obsTimePos:
			m.mu.Lock()
			m.pos = seconds(msg.Data)
			pos, dur := m.pos, m.dur
			m.mu.Unlock()
			m.emit(Event{Type: EventProgress, Position: pos, Duration: dur})
		case obsDuration:
			m.mu.Lock()
			m.dur = seconds(msg.Data)
			m.mu.Unlock()
		case obsPause:
			var paused bool
			_ = json.Unmarshal(msg.Data, &paused)
			m.mu.Lock()
			changed := m.paused != paused
			m.paused = paused
			m.mu.Unlock()
			if !changed {
				return
			}
			if paused {
				m.emit(Event{Type: EventPaused})
			} else {
				m.emit(Event{Type: EventPlaying})
			}
		}

	case "end-file":
		switch msg.Reason {
		case "eof":
			m.emit(Event{Type: EventCompleted})
		case "error":
			reason := msg.FileError
			if reason == "" {
				reason = "playback failed"
			}
			m.emit(Event{Type: EventError, Err: errors.New(reason), Fatal: true})
		}

	case "":
	default:
		logging.Debug("mpv event", zap.String("event", msg.Event))
	}
}

func (m *MPV) emit(e Event) {
	if m.onEvent != nil {
		m.onEvent(e)
	}
}

func seconds(raw json.RawMessage) time.Duration {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}
