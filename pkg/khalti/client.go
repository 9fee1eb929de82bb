package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	lookupPath = "/api/v2/epayment/lookup/"
)

// Payment states reported by the gateway lookup endpoint.
const (
	StateCompleted    = "Completed"
	StatePending      = "Pending"
	StateRefunded     = "Refunded"
	StateExpired      = "Expired"
	StateUserCanceled = "User canceled"
)

var (
	errSecretKeyRequired = errors.New("khalti secret key is required")
	errInvalidKhaltiEnv  = fmt.Errorf("khalti environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired    = errors.New("khalti logger is required")
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://dev.khalti.com",
	productionEnv: "https://khalti.com",
}

// LookupResponse is the gateway's view of one payment identified by pidx.
// TotalAmount is in paisa, which matches the platform's cent convention.
type LookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Fee           int64  `json:"fee"`
	Refunded      bool   `json:"refunded"`
}

// Completed reports whether the gateway settled the payment.
func (r LookupResponse) Completed() bool {
	return r.Status == StateCompleted && !r.Refunded
}

// Client talks to the Khalti ePayment API with centralized auth and timeouts.
type Client struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
	timeout    time.Duration
	logger     *logger.Logger
}

// NewClient initializes the Khalti wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.KhaltiConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}

	timeout := cfg.LookupTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		secretKey:  secretKey,
		baseURL:    baseURLs[env],
		timeout:    timeout,
		logger:     logg,
	}

	logg.Info(ctx, fmt.Sprintf("khalti client initialized (%s)", env))
	return c, nil
}

// LookupPayment fetches the gateway's record for the given pidx. Transient
// transport failures are retried once; HTTP error statuses are not.
func (c *Client) LookupPayment(ctx context.Context, pidx string) (*LookupResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("khalti client not initialized")
	}
	pidx = strings.TrimSpace(pidx)
	if pidx == "" {
		return nil, errors.New("pidx is required")
	}

	resp, err := c.doLookup(ctx, pidx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		resp, err = c.doLookup(ctx, pidx)
	}
	return resp, err
}

func (c *Client) doLookup(ctx context.Context, pidx string) (*LookupResponse, error) {
	body, err := json.Marshal(map[string]string{"pidx": pidx})
	if err != nil {
		return nil, fmt.Errorf("encoding lookup payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+lookupPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key "+c.secretKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling khalti lookup: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading lookup response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(raw)}
	}

	var lookup LookupResponse
	if err := json.Unmarshal(raw, &lookup); err != nil {
		return nil, fmt.Errorf("decoding lookup response: %w", err)
	}
	return &lookup, nil
}

// APIError carries a non-200 gateway response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("khalti lookup returned status %d: %s", e.StatusCode, e.Body)
}

// NotFound reports whether the gateway has no record of the pidx.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusBadRequest
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidKhaltiEnv
	}
}
