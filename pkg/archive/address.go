// Package archive talks to the imaging archive through external find and
// store tools and interprets what they report
package archive

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
)

// Address is the archive's application entity title plus network endpoint
type Address struct {
	AETitle string
	Host    string
	Port    int
}

// String renders AET@host:port
func (a Address) String() string {
	return fmt.Sprintf("%s@%s", a.AETitle, net.JoinHostPort(a.Host, strconv.Itoa(a.Port)))
}

// ParseAddress parses AET@host:port
func ParseAddress(s string) (Address, error) {
	aet, hostport, ok := strings.Cut(strings.TrimSpace(s), "@")
	if !ok || aet == "" {
		return Address{}, fmt.Errorf("address %q: expected AET@host:port", s)
	}
	if len(aet) > 16 {
		return Address{}, fmt.Errorf("address %q: AE title longer than 16 characters", s)
	}
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return Address{}, fmt.Errorf("address %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Address{}, fmt.Errorf("address %q: invalid port %q", s, portStr)
	}
	if host == "" {
		return Address{}, fmt.Errorf("address %q: missing host", s)
	}
	return Address{AETitle: aet, Host: host, Port: port}, nil
}

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
