package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrBlockedAddress is the cause when a URL resolves to an address the
// fetcher refuses to dial.
var ErrBlockedAddress = errors.New("address not allowed")

// blockedIP reports whether ip is loopback, private, link-local, multicast
// or unspecified. Cloud metadata endpoints such as 169.254.169.254 fall in
// the link-local range.
func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified()
}

// publicOnly is a net.Dialer Control hook. It runs after name resolution,
// for every connection including redirects, so a public host name cannot
// point the fetcher at an internal address.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || blockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

// newHTTPClient builds the client for one fetch. Unless opts.AllowPrivate is
// set, connections to non-public addresses are refused.
func newHTTPClient(opts *Options) *http.Client {
	dialer := &net.Dialer{Timeout: opts.Timeout, KeepAlive: 30 * time.Second}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !opts.AllowPrivate {
		dialer.Control = publicOnly
		// A proxy would be dialed instead of the target.
		transport.Proxy = nil
	}
	transport.DialContext = dialer.DialContext
	return &http.Client{Timeout: opts.Timeout, Transport: transport}
}
