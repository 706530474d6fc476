package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"provl/internal/models"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	httpTimeoutEnvKey  = "PROVL_HTTP_TIMEOUT"
	apiTokenEnvKey     = "PROVL_API_TOKEN"
)

// Client is a simple HTTP client for the provl API.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
	}
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateActor(ctx context.Context, req ActorCreateRequest) (ActorResponse, error) {
	var resp ActorResponse
	err := c.do(ctx, http.MethodPost, "/v1/actors", nil, req, &resp)
	return resp, err
}

func (c *Client) Keygen(ctx context.Context) (KeypairResponse, error) {
	var resp KeypairResponse
	err := c.do(ctx, http.MethodPost, "/v1/actors/keygen", nil, nil, &resp)
	return resp, err
}

func (c *Client) GetActor(ctx context.Context, actorID string) (ActorResponse, error) {
	var resp ActorResponse
	err := c.do(ctx, http.MethodGet, "/v1/actors/"+url.PathEscape(actorID), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListActors(ctx context.Context) ([]ActorResponse, error) {
	var resp []ActorResponse
	err := c.do(ctx, http.MethodGet, "/v1/actors", nil, nil, &resp)
	return resp, err
}

// Ingest uploads a file with its metadata, registering a new object.
func (c *Client) Ingest(ctx context.Context, filename string, content io.Reader, metadata map[string]any, actorID, privateKey string) (IngestResponse, error) {
	var resp IngestResponse

	fields := map[string]string{"actor_id": actorID}
	if privateKey != "" {
		fields["private_key"] = privateKey
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return resp, err
		}
		fields["metadata"] = string(raw)
	}

	err := c.doMultipart(ctx, "/v1/ingest", filename, content, fields, &resp)
	return resp, err
}

func (c *Client) AppendEvent(ctx context.Context, objectID string, req EventAppendRequest) (EventResponse, error) {
	var resp EventResponse
	err := c.do(ctx, http.MethodPost, "/v1/objects/"+url.PathEscape(objectID)+"/events", nil, req, &resp)
	return resp, err
}

func (c *Client) GetChain(ctx context.Context, objectID string) (ChainResponse, error) {
	var resp ChainResponse
	err := c.do(ctx, http.MethodGet, "/v1/objects/"+url.PathEscape(objectID)+"/chain", nil, nil, &resp)
	return resp, err
}

// ExportJSONLD fetches an object's provenance as a JSON-LD document.
func (c *Client) ExportJSONLD(ctx context.Context, objectID string) (map[string]any, error) {
	var resp map[string]any
	err := c.do(ctx, http.MethodGet, "/v1/objects/"+url.PathEscape(objectID)+"/export", nil, nil, &resp)
	return resp, err
}

// Anchor triggers an anchoring run. The operator password authenticates the
// request via basic auth.
func (c *Client) Anchor(ctx context.Context, operatorPassword string) (AnchorResponse, error) {
	var resp AnchorResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/anchor", nil)
	if err != nil {
		return resp, err
	}
	req.SetBasicAuth("operator", operatorPassword)
	c.setAuthHeader(req)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return resp, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode >= 400 {
		return resp, decodeError(httpResp)
	}
	err = json.NewDecoder(httpResp.Body).Decode(&resp)
	return resp, err
}

func (c *Client) ListAnchors(ctx context.Context) ([]models.Batch, error) {
	var resp []models.Batch
	err := c.do(ctx, http.MethodGet, "/v1/anchors", nil, nil, &resp)
	return resp, err
}

func (c *Client) GetAnchor(ctx context.Context, batchID string) (models.Batch, error) {
	var resp models.Batch
	err := c.do(ctx, http.MethodGet, "/v1/anchors/"+url.PathEscape(batchID), nil, nil, &resp)
	return resp, err
}

func (c *Client) GetProof(ctx context.Context, eventHash string) (ProofResponse, error) {
	var resp ProofResponse
	err := c.do(ctx, http.MethodGet, "/v1/events/"+url.PathEscape(eventHash)+"/proof", nil, nil, &resp)
	return resp, err
}

// Verify uploads a file and returns its verification report. An empty
// objectID asks the server to resolve the object by CID.
func (c *Client) Verify(ctx context.Context, filename string, content io.Reader, objectID string) (VerificationReport, error) {
	var resp VerificationReport

	fields := map[string]string{}
	if objectID != "" {
		fields["object_id"] = objectID
	}
	err := c.doMultipart(ctx, "/v1/verify", filename, content, fields, &resp)
	return resp, err
}

func (c *Client) doMultipart(ctx context.Context, path, filename string, content io.Reader, fields map[string]string, out any) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		if errResp.Code != "" {
			return fmt.Errorf("%s: %s", errResp.Code, errResp.Error)
		}
		return fmt.Errorf("%s", errResp.Error)
	}
	return fmt.Errorf("api error: %s", resp.Status)
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
