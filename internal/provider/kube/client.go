package kube

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lei/plr-summary/internal/models"
	"github.com/lei/plr-summary/pkg/logger"
)

const tektonAPI = "/apis/tekton.dev/v1"

// maxLogBytes bounds how much of a pod log response is read
const maxLogBytes = 256 << 10

// Client handles HTTP communication with the Kubernetes API server
type Client struct {
	baseURL    string
	tokens     *TokenSource
	httpClient *http.Client
	logger     *logger.Logger
}

// pipelineRunList is the list envelope returned by the API server
type pipelineRunList struct {
	Items []models.PipelineRun `json:"items"`
}

type taskRunList struct {
	Items []models.TaskRun `json:"items"`
}

// NewClient creates a new Kubernetes API client
func NewClient(baseURL string, tokens *TokenSource, timeout time.Duration, insecure bool, log *logger.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for dev clusters
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		logger:     log,
	}
}

// doRequest performs an authenticated GET request with one retry after a 401
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	c.logger.Debug("provider: http request", "method", http.MethodGet, "path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		c.logger.Error("provider: failed to create request", "error", err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if err := c.authorize(req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("provider: http request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	}

	c.logger.Debug("provider: http response", "path", path, "status", resp.StatusCode)

	// If 401, re-read the token and retry once
	if resp.StatusCode == http.StatusUnauthorized && c.tokens.Reloadable() {
		resp.Body.Close()
		c.logger.Info("provider: received 401, reloading token and retrying", "path", path)
		c.tokens.Invalidate()

		if err := c.authorize(req); err != nil {
			return nil, err
		}
		resp, err = c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("provider: retry request failed", "path", path, "error", err)
			return nil, fmt.Errorf("%w: %v", errUnavailable, err)
		}
	}

	return resp, nil
}

func (c *Client) authorize(req *http.Request) error {
	token, err := c.tokens.Token()
	if err != nil {
		c.logger.Error("provider: failed to get token", "error", err)
		return fmt.Errorf("get token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.doRequest(ctx, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// GetPipelineRun fetches a PipelineRun by name
func (c *Client) GetPipelineRun(ctx context.Context, namespace, name string) (*models.PipelineRun, error) {
	path := fmt.Sprintf("%s/namespaces/%s/pipelineruns/%s", tektonAPI, url.PathEscape(namespace), url.PathEscape(name))

	var pr models.PipelineRun
	if err := c.getJSON(ctx, path, nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// ListPipelineRuns lists PipelineRuns matching a label selector
func (c *Client) ListPipelineRuns(ctx context.Context, namespace, selector string) ([]models.PipelineRun, error) {
	path := fmt.Sprintf("%s/namespaces/%s/pipelineruns", tektonAPI, url.PathEscape(namespace))

	var list pipelineRunList
	if err := c.getJSON(ctx, path, selectorQuery(selector), &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// ListTaskRuns lists TaskRuns matching a label selector
func (c *Client) ListTaskRuns(ctx context.Context, namespace, selector string) ([]models.TaskRun, error) {
	path := fmt.Sprintf("%s/namespaces/%s/taskruns", tektonAPI, url.PathEscape(namespace))

	var list taskRunList
	if err := c.getJSON(ctx, path, selectorQuery(selector), &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// PodLog fetches the tail of a container log
func (c *Client) PodLog(ctx context.Context, namespace, pod, container string, tailLines int) (string, error) {
	path := fmt.Sprintf("/api/v1/namespaces/%s/pods/%s/log", url.PathEscape(namespace), url.PathEscape(pod))

	query := url.Values{}
	if container != "" {
		query.Set("container", container)
	}
	if tailLines > 0 {
		query.Set("tailLines", strconv.Itoa(tailLines))
	}

	resp, err := c.doRequest(ctx, path, query)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", parseError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogBytes))
	if err != nil {
		return "", fmt.Errorf("read pod log: %w", err)
	}
	return string(data), nil
}

// Version checks that the API server answers
func (c *Client) Version(ctx context.Context) error {
	var v map[string]any
	return c.getJSON(ctx, "/version", nil, &v)
}

func selectorQuery(selector string) url.Values {
	if selector == "" {
		return nil
	}
	return url.Values{"labelSelector": []string{selector}}
}
