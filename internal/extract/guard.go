package extract

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	newsErrors "github.com/harunnryd/newsdesk/internal/errors"
)

// Ranges that IsGlobalUnicast and IsPrivate leave open but that never hold
// public web servers.
var nonPublicPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
}

type blockedAddrError struct {
	addr netip.Addr
}

func (e *blockedAddrError) Error() string {
	return fmt.Sprintf("address %s is not publicly routable", e.addr)
}

// isPublicAddr reports whether addr is a globally routable unicast address.
func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() || !addr.IsGlobalUnicast() || addr.IsPrivate() {
		return false
	}
	for _, prefix := range nonPublicPrefixes {
		if prefix.Contains(addr) {
			return false
		}
	}
	return true
}

// denyNonPublic runs after DNS resolution for every connection, redirects
// included.
func denyNonPublic(_, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("parse dial address %q: %w", address, err)
	}
	if !isPublicAddr(addrPort.Addr()) {
		return &blockedAddrError{addr: addrPort.Addr()}
	}
	return nil
}

func newTransport(allowPrivateHosts bool) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if allowPrivateHosts {
		return transport
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   denyNonPublic,
	}
	transport.DialContext = dialer.DialContext
	// A proxy resolves the page host itself, out of reach of the dialer.
	transport.Proxy = nil
	return transport
}

// checkHost rejects hosts that are non-public on their face, before any
// request is made.
func (e *Extractor) checkHost(u *url.URL) error {
	if e.allowPrivateHosts {
		return nil
	}

	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return blockedHost(u)
	}
	if addr, err := netip.ParseAddr(host); err == nil && !isPublicAddr(addr) {
		return blockedHost(u)
	}
	return nil
}

func blockedHost(u *url.URL) error {
	return newsErrors.InvalidURL(fmt.Sprintf("host %q is not a public address", u.Hostname()))
}
