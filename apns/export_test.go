package apns

import (
	"context"
	"net"
	"net/http"
	"time"
)

// RedirectTo makes c dial addr for every host and verify the certificate as serverName.
func RedirectTo(c *Client, addr, serverName string) {
	tr := c.client.Transport.(*http.Transport)
	tr.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, network, addr)
	}
	tr.TLSClientConfig.ServerName = serverName
}

// SetClock replaces the clock used to issue and expire credentials.
func SetClock(c *Client, now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
