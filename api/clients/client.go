package clients

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ruteri/sskr-service/api"
	"github.com/ruteri/sskr-service/cryptoutils"
	"github.com/ruteri/sskr-service/interfaces"
	"github.com/ruteri/sskr-service/sskr"
)

// Client talks to the sskr HTTP service. Admin operations need WithAdmin.
type Client struct {
	baseURL    string
	httpClient *http.Client

	adminID    string
	privateKey *ecdsa.PrivateKey
}

// NewClient creates a client for the service at baseURL
// (e.g. "http://localhost:8080"). A zero timeout means 30 seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithAdmin returns a copy of the client that signs admin requests.
func (c *Client) WithAdmin(adminID string, privateKey *ecdsa.PrivateKey) *Client {
	clone := *c
	clone.adminID = adminID
	clone.privateKey = privateKey
	return &clone
}

// Split splits secret into shards, grouped by group in member order.
func (c *Client) Split(ctx context.Context, req api.SplitRequest) (*api.SplitResponse, error) {
	var resp api.SplitResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/split", req, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Combine recovers a secret from shards or a stored manifest.
func (c *Client) Combine(ctx context.Context, req api.CombineRequest) ([]byte, error) {
	var resp api.CombineResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/combine", req, false, &resp); err != nil {
		return nil, err
	}
	return resp.Secret, nil
}

// Inspect decodes a shard on the server.
func (c *Client) Inspect(ctx context.Context, shard []byte) (*api.InspectResponse, error) {
	var resp api.InspectResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/inspect", api.InspectRequest{Shard: shard}, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status returns the recovery progress of the keeper.
func (c *Client) Status(ctx context.Context) (*interfaces.KeeperStatus, error) {
	var resp interfaces.KeeperStatus
	if err := c.do(ctx, http.MethodGet, "/admin/status", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitShard signs the serialized shard with the admin key and submits it
// to the keeper. It reports whether the keeper is unlocked afterwards.
func (c *Client) SubmitShard(ctx context.Context, shard sskr.Shard) (bool, error) {
	if c.privateKey == nil {
		return false, fmt.Errorf("admin credentials not configured")
	}

	data, err := shard.Encode()
	if err != nil {
		return false, err
	}
	signature, err := cryptoutils.SignShard(data, c.privateKey)
	if err != nil {
		return false, fmt.Errorf("failed to sign shard: %w", err)
	}

	var resp api.SubmitShardResponse
	req := api.SubmitShardRequest{Shard: data, Signature: signature}
	if err := c.do(ctx, http.MethodPost, "/admin/shard", req, true, &resp); err != nil {
		return false, err
	}
	return resp.Unlocked, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, signed bool, out any) error {
	var reqBody []byte
	if body != nil {
		var err error
		if reqBody, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var (
		req *http.Request
		err error
	)
	if signed {
		req, err = CreateSignedAdminRequest(method, c.baseURL+path, reqBody, c.adminID, c.privateKey)
	} else {
		req, err = newRequest(method, c.baseURL+path, reqBody)
	}
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &api.APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp api.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.Code = errResp.Code
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}

func newRequest(method, reqURL string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// CreateSignedAdminRequest creates a request carrying the admin id and a
// signature over the URL path and body.
func CreateSignedAdminRequest(method, reqURL string, body []byte, adminID string, privateKey *ecdsa.PrivateKey) (*http.Request, error) {
	req, err := newRequest(method, reqURL, body)
	if err != nil {
		return nil, err
	}

	parsedURL, err := url.Parse(reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	signature, err := cryptoutils.SignRequest(parsedURL.Path, body, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	req.Header.Set(api.AdminIDHeader, adminID)
	req.Header.Set(api.AdminSignatureHeader, base64.StdEncoding.EncodeToString(signature))
	return req, nil
}
