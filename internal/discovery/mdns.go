package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/polfunbox/internal/logging"
	"go.uber.org/zap"
)

const (
	// ServiceType is the mDNS service type bridges register.
	ServiceType = "_polfun-remote._tcp"

	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."

	// DefaultScanTimeout bounds a Scan without a deadline.
	DefaultScanTimeout = 5 * time.Second
)

// TXT record keys.
const (
	TXTDeviceCode = "code"
	TXTPlatform   = "platform"
	TXTVersion    = "version"
	TXTPath       = "path"
)

// Advertise registers a bridge on port until ctx is done or the returned
// stop function is called. txt is published as key=value TXT records.
func Advertise(ctx context.Context, name string, port int, txt map[string]string) (stop func(), err error) {
	if name == "" {
		name = "polfun"
		if code := txt[TXTDeviceCode]; code != "" {
			name += " " + code
		}
	}

	server, err := zeroconf.Register(name, ServiceType, ServiceDomain, port, txtRecords(txt), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising bridge",
		zap.String("name", name),
		zap.String("service", ServiceType),
		zap.Int("port", port))

	var once sync.Once
	stop = func() {
		once.Do(func() {
			server.Shutdown()
			logging.Debug("mDNS advertisement stopped", zap.String("name", name))
		})
	}
	go func() {
		<-ctx.Done()
		stop()
	}()
	return stop, nil
}

// txtRecords renders txt sorted by key so adverts are stable.
func txtRecords(txt map[string]string) []string {
	records := make([]string, 0, len(txt))
	for k, v := range txt {
		records = append(records, k+"="+v)
	}
	sort.Strings(records)
	return records
}

// Scanner browses for bridges.
type Scanner struct {
	// Timeout is used when the context passed to Scan has no deadline.
	Timeout time.Duration
}

// NewScanner creates a Scanner with DefaultScanTimeout.
func NewScanner() *Scanner {
	return &Scanner{Timeout: DefaultScanTimeout}
}

// Scan collects every bridge that answers before the timeout.
func (s *Scanner) Scan(ctx context.Context) ([]*Bridge, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		mu      sync.Mutex
		bridges []*Bridge
		seen    = make(map[string]bool)
	)
	err := s.browse(ctx, func(b *Bridge) bool {
		mu.Lock()
		defer mu.Unlock()
		if !seen[b.Name] {
			seen[b.Name] = true
			bridges = append(bridges, b)
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	sort.Slice(bridges, func(i, j int) bool { return bridges[i].Name < bridges[j].Name })
	return bridges, nil
}

// Find waits for the bridge advertising deviceCode.
func (s *Scanner) Find(ctx context.Context, deviceCode string) (*Bridge, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	found := make(chan *Bridge, 1)
	err := s.browse(ctx, func(b *Bridge) bool {
		if !strings.EqualFold(b.DeviceCode, deviceCode) {
			return false
		}
		select {
		case found <- b:
		default:
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	select {
	case b := <-found:
		return b, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("bridge with device code %s not found within timeout", deviceCode)
	}
}

func (s *Scanner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// browse feeds parsed bridges to onBridge until ctx ends or onBridge
// returns true.
func (s *Scanner) browse(ctx context.Context, onBridge func(*Bridge) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				b := parseServiceEntry(entry)
				if b == nil {
					continue
				}
				logging.Debug("Found bridge", zap.String("bridge", b.String()))
				if onBridge(b) {
					return
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a service entry to a Bridge. It returns nil
// for entries without an address or port.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Bridge {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		k, v, _ := strings.Cut(txt, "=")
		if k != "" {
			metadata[k] = v
		}
	}

	name := entry.Instance
	if name == "" {
		name = strings.TrimSuffix(entry.HostName, ".")
	}

	return &Bridge{
		Name:         unescapeInstance(name),
		Host:         entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		DeviceCode:   metadata[TXTDeviceCode],
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// unescapeInstance undoes the DNS escaping of spaces in instance names.
func unescapeInstance(name string) string {
	return strings.ReplaceAll(name, `\ `, " ")
}
