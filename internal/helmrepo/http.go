package helmrepo

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"apprepo/pkg/logging"
)

const (
	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 30 * time.Second

	// DefaultRetryMax is the number of retries after the first attempt.
	DefaultRetryMax = 2

	maxBodyBytes = 10 << 20
)

// HTTPOptions tunes the HTTP client used for repository probes.
type HTTPOptions struct {
	Timeout  time.Duration
	RetryMax int

	// RetryWaitMin and RetryWaitMax bound the backoff between attempts.
	// Zero values keep the retryablehttp defaults.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Endpoint is a repository location together with the credentials and TLS
// settings needed to reach it.
type Endpoint struct {
	URL             string
	Type            string
	OCIRepositories []string

	// AuthHeader is sent verbatim as the Authorization header when set.
	AuthHeader string

	// Username and Password are used for basic auth when AuthHeader is empty.
	Username string
	Password string

	// CustomCA is a PEM bundle trusted in addition to the system roots.
	CustomCA string
	SkipTLS  bool
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.RetryMax < 0 {
		o.RetryMax = 0
	}
	return o
}

// newHTTPClient builds a retrying client for one endpoint. Its transport is
// private to the client, so callers close its idle connections when done.
//
// Exhausted retries return the last response instead of an error so that the
// caller can still report its status code.
func newHTTPClient(opts HTTPOptions, ep Endpoint) (*retryablehttp.Client, error) {
	opts = opts.withDefaults()

	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		// #nosec G402 -- opt-in per repository through tlsInsecureSkipVerify
		InsecureSkipVerify: ep.SkipTLS,
	}
	if ep.CustomCA != "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM([]byte(ep.CustomCA)) {
			return nil, fmt.Errorf("failed to parse custom CA certificate for %s", ep.URL)
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	client := retryablehttp.NewClient()
	client.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
	client.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		client.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		client.RetryWaitMax = opts.RetryWaitMax
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = leveledLogger{}

	return client, nil
}

// get performs an authenticated GET and returns the status code and the body.
// A non-nil error means no response was received at all.
func get(ctx context.Context, client *retryablehttp.Client, ep Endpoint, target string) (int, []byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request for %s: %w", target, err)
	}
	setAuth(req.Request, ep)

	resp, err := client.Do(req)
	if resp == nil {
		if err == nil {
			err = fmt.Errorf("no response")
		}
		return 0, nil, fmt.Errorf("failed to GET %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if readErr != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response from %s: %w", target, readErr)
	}
	return resp.StatusCode, body, nil
}

func setAuth(req *http.Request, ep Endpoint) {
	switch {
	case ep.AuthHeader != "":
		req.Header.Set("Authorization", ep.AuthHeader)
	case ep.Username != "" || ep.Password != "":
		req.SetBasicAuth(ep.Username, ep.Password)
	}
}

func trimURL(u string) string {
	return strings.TrimRight(u, "/")
}

// leveledLogger routes retryablehttp diagnostics to the debug log.
type leveledLogger struct{}

func (leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logging.Debug("helmrepo", "%s %v", msg, keysAndValues)
}

func (leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug("helmrepo", "%s %v", msg, keysAndValues)
}

func (leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logging.Debug("helmrepo", "%s %v", msg, keysAndValues)
}

func (leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logging.Debug("helmrepo", "%s %v", msg, keysAndValues)
}
