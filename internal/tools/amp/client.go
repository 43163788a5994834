package amp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/api"
	"github.com/prometheus/common/model"

	"github.com/giantswarm/mcp-amp/internal/observability"
	"github.com/giantswarm/mcp-amp/internal/server"
	"github.com/giantswarm/mcp-amp/internal/sigv4"
)

// signingService is the service name in the SigV4 credential scope for both
// the aps control plane and the workspace query endpoints.
const signingService = "aps"

// defaultQueryStep matches the provider console default for range queries.
const defaultQueryStep = "15s"

// Client talks to the Amazon Managed Service for Prometheus control plane
// and to per-workspace query endpoints. All requests are SigV4 signed. The
// client is stateless apart from the credential cache and safe for
// concurrent use.
type Client struct {
	config     server.AMPConfig
	httpClient *http.Client
	transport  http.RoundTripper
	logger     server.Logger
}

// NewClient creates a new AMP client for the configured region. Credentials
// are resolved per request from static configuration or the SDK default
// chain.
func NewClient(config server.AMPConfig, logger server.Logger) *Client {
	logger.Debug("Creating new AMP client", "region", config.Region, "profile", config.Profile)
	return newClientWithProvider(config, logger, credentialsProviderFor(config))
}

func newClientWithProvider(config server.AMPConfig, logger server.Logger, provider sigv4.CredentialsProvider) *Client {
	transport := &sigv4.Transport{
		Credentials: provider,
		Region:      config.Region,
		Service:     signingService,
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Transport: transport},
		transport:  transport,
		logger:     logger,
	}
}

// controlPlaneURL returns the base URL of the regional aps control plane.
func (c *Client) controlPlaneURL() string {
	if c.config.Endpoint != "" {
		return strings.TrimRight(c.config.Endpoint, "/")
	}
	return fmt.Sprintf("https://aps.%s.amazonaws.com", c.config.Region)
}

// doControlPlane issues one signed request and returns the raw body.
// Transport failures become TransportError, non-2xx statuses become
// APIError with the body carried verbatim. Credential failures pass through
// untouched so callers can distinguish them.
func (c *Client) doControlPlane(ctx context.Context, method, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, sigv4.ErrCredentialsMissing) {
			return nil, err
		}
		return nil, &TransportError{Op: method + " " + rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// ListWorkspaces returns a single page of workspaces in the client's region.
// Pagination is not followed automatically; when the provider reports more
// pages the token is returned for the caller to continue with.
func (c *Client) ListWorkspaces(ctx context.Context, opts ListWorkspacesOptions) (*WorkspaceList, error) {
	ctx, span := observability.StartSpan(ctx, "amp.ListWorkspaces",
		observability.AttrRegion.String(c.config.Region),
	)
	defer span.End()

	params := url.Values{}
	if opts.Alias != "" {
		params.Set("alias", opts.Alias)
	}
	if opts.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(opts.MaxResults))
	}
	if opts.NextToken != "" {
		params.Set("nextToken", opts.NextToken)
	}
	listURL := c.controlPlaneURL() + "/workspaces"
	if len(params) > 0 {
		listURL += "?" + params.Encode()
	}

	body, err := c.doControlPlane(ctx, http.MethodGet, listURL)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}

	var decoded listWorkspacesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode list workspaces response: %w", err)
	}

	workspaces := make([]WorkspaceInfo, len(decoded.Workspaces))
	for i, ws := range decoded.Workspaces {
		workspaces[i] = ws.toWorkspaceInfo()
	}

	c.logger.Debug("Listed workspaces", "region", c.config.Region, "count", len(workspaces))
	observability.SetSpanOK(span)

	return &WorkspaceList{
		Region:     c.config.Region,
		Count:      len(workspaces),
		Workspaces: workspaces,
		NextToken:  decoded.NextToken,
	}, nil
}

// DescribeWorkspace returns the details of a single workspace. A 404 from
// the provider is reported as ErrNotFound.
func (c *Client) DescribeWorkspace(ctx context.Context, workspaceID string) (*WorkspaceInfo, error) {
	ctx, span := observability.StartSpan(ctx, "amp.DescribeWorkspace",
		observability.AttrRegion.String(c.config.Region),
		observability.AttrWorkspaceID.String(workspaceID),
	)
	defer span.End()

	describeURL := c.controlPlaneURL() + "/workspaces/" + url.PathEscape(workspaceID)
	body, err := c.doControlPlane(ctx, http.MethodGet, describeURL)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			err = fmt.Errorf("workspace %s: %w", workspaceID, ErrNotFound)
		}
		observability.SetSpanError(span, err)
		return nil, err
	}

	var decoded describeWorkspaceResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode describe workspace response: %w", err)
	}

	info := decoded.Workspace.toWorkspaceInfo()
	c.logger.Debug("Described workspace", "workspaceID", workspaceID, "status", info.Status)
	observability.SetSpanOK(span)
	return &info, nil
}

// WorkspaceStatus derives the status view from DescribeWorkspace; there is
// no separate status endpoint.
func (c *Client) WorkspaceStatus(ctx context.Context, workspaceID string) (*WorkspaceStatus, error) {
	info, err := c.DescribeWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return &WorkspaceStatus{
		WorkspaceID:        info.WorkspaceID,
		Status:             info.Status,
		Alias:              info.Alias,
		PrometheusEndpoint: info.PrometheusEndpoint,
		CreatedAt:          info.CreatedAt,
		HasEndpoint:        info.PrometheusEndpoint != "",
	}, nil
}

// queryClient builds a data-plane client for one workspace endpoint, reusing
// the signing transport.
func (c *Client) queryClient(endpoint string) (api.Client, error) {
	return api.NewClient(api.Config{
		Address:      strings.TrimRight(endpoint, "/"),
		RoundTripper: c.transport,
	})
}

// doDataPlane issues one signed data-plane request and returns the raw
// response body verbatim.
func (c *Client) doDataPlane(ctx context.Context, prom api.Client, u *url.URL, op string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, body, err := prom.Do(ctx, req)
	if err != nil {
		if errors.Is(err, sigv4.ErrCredentialsMissing) {
			return nil, err
		}
		return nil, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return json.RawMessage(body), nil
}

// QueryMetrics executes a PromQL query against a workspace. The query
// string is passed through to the provider unmodified; its syntax is not
// validated locally and provider errors on malformed queries surface as-is.
// When both start and end are given a range query is issued, otherwise an
// instant query.
func (c *Client) QueryMetrics(ctx context.Context, workspaceID, query, start, end, step string) (*QueryResult, error) {
	ctx, span := observability.StartSpan(ctx, "amp.QueryMetrics",
		observability.AttrRegion.String(c.config.Region),
		observability.AttrWorkspaceID.String(workspaceID),
	)
	defer span.End()

	info, err := c.DescribeWorkspace(ctx, workspaceID)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	if info.PrometheusEndpoint == "" {
		err := fmt.Errorf("workspace %s has no query endpoint", workspaceID)
		observability.SetSpanError(span, err)
		return nil, err
	}

	prom, err := c.queryClient(info.PrometheusEndpoint)
	if err != nil {
		return nil, fmt.Errorf("create query client: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)

	var u *url.URL
	if start != "" && end != "" {
		if step == "" {
			step = defaultQueryStep
		}
		if _, err := model.ParseDuration(step); err != nil {
			return nil, fmt.Errorf("invalid step duration: %w", err)
		}
		u = prom.URL("api/v1/query_range", nil)
		params.Set("start", start)
		params.Set("end", end)
		params.Set("step", step)
	} else {
		u = prom.URL("api/v1/query", nil)
	}
	u.RawQuery = params.Encode()

	result, err := c.doDataPlane(ctx, prom, u, "query "+workspaceID)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}

	c.logger.Debug("Executed query", "workspaceID", workspaceID)
	observability.SetSpanOK(span)
	return &QueryResult{
		WorkspaceID: workspaceID,
		Query:       query,
		Result:      result,
	}, nil
}

// LabelValues returns the values of one label in a workspace, verbatim from
// the query engine.
func (c *Client) LabelValues(ctx context.Context, workspaceID, label string) (json.RawMessage, error) {
	ctx, span := observability.StartSpan(ctx, "amp.LabelValues",
		observability.AttrRegion.String(c.config.Region),
		observability.AttrWorkspaceID.String(workspaceID),
	)
	defer span.End()

	info, err := c.DescribeWorkspace(ctx, workspaceID)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	if info.PrometheusEndpoint == "" {
		return nil, fmt.Errorf("workspace %s has no query endpoint", workspaceID)
	}

	prom, err := c.queryClient(info.PrometheusEndpoint)
	if err != nil {
		return nil, fmt.Errorf("create query client: %w", err)
	}

	u := prom.URL("api/v1/label/:name/values", map[string]string{"name": label})
	result, err := c.doDataPlane(ctx, prom, u, "label values "+workspaceID)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	observability.SetSpanOK(span)
	return result, nil
}

// Series returns the series matching the given label matchers, verbatim
// from the query engine.
func (c *Client) Series(ctx context.Context, workspaceID string, matches []string, start, end string) (json.RawMessage, error) {
	ctx, span := observability.StartSpan(ctx, "amp.Series",
		observability.AttrRegion.String(c.config.Region),
		observability.AttrWorkspaceID.String(workspaceID),
	)
	defer span.End()

	info, err := c.DescribeWorkspace(ctx, workspaceID)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	if info.PrometheusEndpoint == "" {
		return nil, fmt.Errorf("workspace %s has no query endpoint", workspaceID)
	}

	prom, err := c.queryClient(info.PrometheusEndpoint)
	if err != nil {
		return nil, fmt.Errorf("create query client: %w", err)
	}

	params := url.Values{}
	for _, m := range matches {
		params.Add("match[]", m)
	}
	if start != "" {
		params.Set("start", start)
	}
	if end != "" {
		params.Set("end", end)
	}
	u := prom.URL("api/v1/series", nil)
	u.RawQuery = params.Encode()

	result, err := c.doDataPlane(ctx, prom, u, "series "+workspaceID)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	observability.SetSpanOK(span)
	return result, nil
}
