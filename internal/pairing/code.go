package pairing

import (
	"crypto/rand"
	"math/big"
	"os"
	"regexp"
	"runtime"
	"strings"
	"unicode/utf16"
)

// CodeAlphabet leaves out I, O, 0 and 1, which read badly on a TV.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeLength is the number of characters in a device code.
const CodeLength = 8

var (
	nonAlnum  = regexp.MustCompile(`[^A-Z0-9]`)
	validCode = regexp.MustCompile(`^[A-Z0-9]{8}$`)
)

// DeviceCode derives a stable code from a hardware or platform id. An id
// that already is eight alphanumerics (after upper-casing and stripping
// separators) is used as is; anything else is hashed. An empty id yields a
// random code.
func DeviceCode(rawID string) string {
	if rawID == "" {
		return RandomDeviceCode()
	}
	s := nonAlnum.ReplaceAllString(strings.ToUpper(rawID), "")
	if validCode.MatchString(s) {
		return s
	}
	return encode(hash(s))
}

// FingerprintCode hashes the given properties joined with "|". It is used
// when the host offers no device id.
func FingerprintCode(parts ...string) string {
	return encode(hash(strings.Join(parts, "|")))
}

// HostFingerprint collects properties that stay the same across runs on
// one machine.
func HostFingerprint() []string {
	host, _ := os.Hostname()
	machineID := ""
	for _, p := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if b, err := os.ReadFile(p); err == nil {
			machineID = strings.TrimSpace(string(b))
			break
		}
	}
	return []string{machineID, host, runtime.GOOS, runtime.GOARCH}
}

// hash is the 31-multiplier string hash over UTF-16 code units with 32-bit
// wrap-around.
func hash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(u)
	}
	return h
}

func encode(h int32) string {
	num := int64(h)
	if num < 0 {
		num = -num
	}
	n := int64(len(CodeAlphabet))

	var b strings.Builder
	b.Grow(CodeLength)
	for j := int64(0); j < CodeLength; j++ {
		b.WriteByte(CodeAlphabet[num%n])
		num = num/n + j*7
	}
	return b.String()
}

// RandomDeviceCode draws a code from crypto/rand.
func RandomDeviceCode() string {
	var b strings.Builder
	limit := big.NewInt(int64(len(CodeAlphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		b.WriteByte(CodeAlphabet[n.Int64()])
	}
	return b.String()
}

// ValidCode reports whether code has the device-code shape.
func ValidCode(code string) bool {
	return validCode.MatchString(code)
}
