package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/common"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/envelope"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/logging"
	"github.com/anwarabdelmaksoudahmed/dashbord-sync/internal/models"
	"github.com/google/uuid"
)

// HTTPClient talks to the remote endpoint over HTTP JSON. Data-bearing
// response bodies arrive envelope-wrapped; outgoing mutation bodies are
// envelope-encrypted with the configured client key.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	codec   envelope.Codec
	key     []byte
	log     logging.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, codec envelope.Codec, key []byte, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		codec:   codec,
		key:     key,
		log:     log,
	}
}

// do issues one request and returns the parsed wrapper. It does not
// interpret Success; callers map that per operation.
func (c *HTTPClient) do(ctx context.Context, method, url string, body any) (*models.APIResponse, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: reading body: %v", common.ErrNetwork, err)
	}

	c.log.Debug(ctx, "remote call finished",
		"method", method, "url", url, "status", resp.StatusCode, "request_id", requestID)

	var r models.APIResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("%w: malformed response body: %v", common.ErrProtocol, err)
		}
	}
	return &r, resp.StatusCode, nil
}

// unwrap decrypts the envelope carried in a data-bearing response.
func (c *HTTPClient) unwrap(data json.RawMessage, v any) error {
	var env envelope.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: response data is not an envelope: %v", common.ErrProtocol, err)
	}
	if err := c.codec.Decrypt(env, v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrProtocol, err)
	}
	return nil
}

func message(r *models.APIResponse) string {
	if r.Message != nil {
		return *r.Message
	}
	return "no message"
}

// FetchPage pulls one page of the resource, e.g. GET /users?page=2.
func (c *HTTPClient) FetchPage(ctx context.Context, resource string, page int) ([]models.User, error) {
	url := fmt.Sprintf("%s/%s?page=%d", c.baseURL, resource, page)

	r, status, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", common.ErrServer, status)
	}
	if !r.Success {
		return nil, fmt.Errorf("%w: %s", common.ErrServer, message(r))
	}

	var users []models.User
	if err := c.unwrap(r.Data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	r, status, err := c.do(ctx, http.MethodPost, c.baseURL+"/login", creds)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		return nil, common.ErrAuth
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", common.ErrServer, status)
	}
	if !r.Success {
		// the login endpoint only rejects for bad credentials
		return nil, fmt.Errorf("%w: %s", common.ErrAuth, message(r))
	}

	var user models.User
	if err := c.unwrap(r.Data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// mutate sends one write call with an envelope-encrypted body.
func (c *HTTPClient) mutate(ctx context.Context, method, url string, payload any) error {
	var body any
	if payload != nil {
		env, err := c.codec.Encrypt(payload, c.key)
		if err != nil {
			return fmt.Errorf("%w: %v", common.ErrProtocol, err)
		}
		body = env
	}

	r, status, err := c.do(ctx, method, url, body)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated && status != http.StatusNoContent {
		return fmt.Errorf("%w: unexpected status %d", common.ErrServer, status)
	}
	if status == http.StatusNoContent {
		return nil
	}
	if !r.Success {
		return fmt.Errorf("%w: %s", common.ErrServer, message(r))
	}
	return nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, user models.User) error {
	return c.mutate(ctx, http.MethodPost, c.baseURL+"/users", user)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, user models.User) error {
	return c.mutate(ctx, http.MethodPut, fmt.Sprintf("%s/users/%d", c.baseURL, user.ID), user)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.mutate(ctx, http.MethodDelete, fmt.Sprintf("%s/users/%d", c.baseURL, id), nil)
}
