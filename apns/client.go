package apns

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/kayac/pushflow/config"
	"github.com/pkg/errors"
	"golang.org/x/net/http2"
)

const (
	// HTTP2 client timeout
	HTTP2ClientTimeout = time.Second * 10
	// If iat of jwt is more than 1 hour ago, APNs returns 403 ExpiredProviderToken.
	DefaultTokenLifetime = time.Minute * 50
)

// Client is apns client. One Client keeps one HTTP/2 connection and one
// provider token, both reused across sends.
type Client struct {
	// Signer signs provider tokens. Replace it before the first Send only.
	Signer Signer

	client        *http.Client
	teamID        string
	bundleID      string
	kid           string
	keyFile       string
	tokenLifetime time.Duration
	now           func() time.Time

	mu         sync.Mutex
	credential *Credential
	closed     bool
}

// NewClient creates a client. The provider token is signed lazily on the first Send.
func NewClient(conf config.SectionApns) (*Client, error) {
	if conf.TeamID == "" || conf.Kid == "" || conf.KeyFile == "" || conf.BundleID == "" {
		return nil, errors.New("team_id, kid, key_file and bundle_id are required")
	}

	timeout := conf.RequestTimeout()
	if timeout <= 0 {
		timeout = HTTP2ClientTimeout
	}
	c, err := NewConnection(conf.TrustRoot, timeout)
	if err != nil {
		return nil, err
	}

	lifetime := conf.TokenTTL()
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	return &Client{
		Signer:        ES256Signer{},
		client:        c,
		teamID:        conf.TeamID,
		bundleID:      conf.BundleID,
		kid:           conf.Kid,
		keyFile:       conf.KeyFile,
		tokenLifetime: lifetime,
		now:           time.Now,
	}, nil
}

// NewConnection returns a http client speaking HTTP/2. When trustRoot is set,
// the PEM certificates in it replace the system trust store.
func NewConnection(trustRoot string, timeout time.Duration) (*http.Client, error) {
	tlsConf := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if trustRoot != "" {
		pemBlock, err := ioutil.ReadFile(trustRoot)
		if err != nil {
			return nil, errors.Wrap(err, "read trust root")
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pemBlock) {
			return nil, errors.Errorf("no certificate found in trust root %s", trustRoot)
		}
		tlsConf.RootCAs = pool
	}

	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     tlsConf,
		TLSHandshakeTimeout: timeout,
		IdleConnTimeout:     time.Hour,
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
	}, nil
}

// Send sends a notification to the device and classifies the response.
// Responses from APNs are returned as a Result; only failures that never
// reached APNs, or a bad credential, are returned as error.
func (ac *Client) Send(ctx context.Context, p *Payload, addr Address) (*Result, error) {
	ac.mu.Lock()
	closed := ac.closed
	ac.mu.Unlock()
	if closed {
		return nil, ErrClientClosed
	}

	req, err := ac.NewRequest(ctx, p, addr)
	if err != nil {
		return nil, err
	}

	res, err := ac.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		io.Copy(ioutil.Discard, res.Body)
		res.Body.Close()
	}()

	return classify(res, addr.Token()), nil
}

// NewRequest creates request for apns
func (ac *Client) NewRequest(ctx context.Context, p *Payload, addr Address) (*http.Request, error) {
	if p == nil {
		return nil, invalid("payload", "must not be nil")
	}
	if !addr.Environment().Valid() {
		return nil, invalid("address", "zero Address, use NewAddress")
	}

	cred, err := ac.Credential()
	if err != nil {
		return nil, err
	}

	data, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}

	nreq, err := http.NewRequestWithContext(ctx, http.MethodPost, addr.Endpoint(), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	nreq.Header.Set("content-type", "application/json")
	nreq.Header.Set("authorization", "bearer "+cred.Token)
	nreq.Header.Set("apns-topic", ac.bundleID)
	nreq.Header.Set("apns-push-type", p.PushType())
	nreq.Header.Set("apns-priority", strconv.Itoa(p.Priority()))

	return nreq, nil
}

// Credential returns the cached provider token, signing one when none is
// cached or the cached one outlived the token lifetime. It fails with
// ErrClientClosed after Close.
func (ac *Client) Credential() (*Credential, error) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.closed {
		return nil, ErrClientClosed
	}

	now := ac.now()
	if ac.credential != nil && !ac.credential.Expired(ac.tokenLifetime, now) {
		return ac.credential, nil
	}

	cred, err := CreateJWT(ac.Signer, ac.keyFile, ac.kid, ac.teamID, now)
	if err != nil {
		return nil, err
	}
	ac.credential = cred
	return cred, nil
}

// InvalidateCredential drops the cached provider token. The next Send signs a
// new one, e.g. after APNs answered 403 ExpiredProviderToken.
func (ac *Client) InvalidateCredential() {
	ac.mu.Lock()
	ac.credential = nil
	ac.mu.Unlock()
}

// Close releases the connection. Sends after Close fail with ErrClientClosed.
func (ac *Client) Close() error {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.closed {
		return nil
	}
	ac.closed = true
	ac.credential = nil
	ac.client.CloseIdleConnections()
	return nil
}

func classify(res *http.Response, token string) *Result {
	r := &Result{
		APNsID:     res.Header.Get("apns-id"),
		StatusCode: res.StatusCode,
		Token:      token,
	}

	switch res.StatusCode {
	case http.StatusOK:
		r.Outcome = Delivered
	case http.StatusGone:
		r.Outcome = RecipientGone
		var er ErrorResponse
		if err := json.NewDecoder(res.Body).Decode(&er); err == nil {
			r.Reason = er.Reason
			r.Timestamp = er.Timestamp
		}
	case http.StatusBadRequest,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusMethodNotAllowed,
		http.StatusRequestEntityTooLarge,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable:
		r.Outcome = GatewayRejected
		var er ErrorResponse
		if err := json.NewDecoder(res.Body).Decode(&er); err != nil {
			r.Reason = err.Error()
		} else {
			r.Reason = er.Reason
		}
	default:
		r.Outcome = GatewayRejected
		r.Reason = ReasonUnhandledStatus
	}

	return r
}
