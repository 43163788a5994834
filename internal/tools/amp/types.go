package amp

import (
	"encoding/json"
	"time"
)

// WorkspaceInfo describes a single AMP workspace. Instances are built from
// provider API responses and never mutated afterwards; a fresh call produces
// a fresh instance.
type WorkspaceInfo struct {
	WorkspaceID        string            `json:"workspace_id"`
	Alias              string            `json:"alias,omitempty"`
	ARN                string            `json:"arn"`
	Status             string            `json:"status"`
	PrometheusEndpoint string            `json:"prometheus_endpoint,omitempty"`
	CreatedAt          string            `json:"created_at"`
	Tags               map[string]string `json:"tags,omitempty"`
}

// WorkspaceList is a single page of workspaces. NextToken is surfaced
// verbatim when the provider indicates more pages exist; continuation is
// left to the caller.
type WorkspaceList struct {
	Region     string          `json:"region"`
	Count      int             `json:"count"`
	Workspaces []WorkspaceInfo `json:"workspaces"`
	NextToken  string          `json:"next_token,omitempty"`
}

// WorkspaceStatus is the status view derived from DescribeWorkspace.
type WorkspaceStatus struct {
	WorkspaceID        string `json:"workspace_id"`
	Status             string `json:"status"`
	Alias              string `json:"alias,omitempty"`
	PrometheusEndpoint string `json:"prometheus_endpoint,omitempty"`
	CreatedAt          string `json:"created_at"`
	HasEndpoint        bool   `json:"has_endpoint"`
}

// QueryResult carries the query engine's response body verbatim; no parsing
// or aggregation is performed on it.
type QueryResult struct {
	WorkspaceID string          `json:"workspace_id"`
	Query       string          `json:"query"`
	Result      json.RawMessage `json:"result"`
}

// ListWorkspacesOptions are the optional parameters of the list call. All
// values are passed through to the provider unchanged.
type ListWorkspacesOptions struct {
	Alias      string
	MaxResults int
	NextToken  string
}

// apiWorkspace mirrors the aps control-plane wire format.
type apiWorkspace struct {
	WorkspaceID string `json:"workspaceId"`
	Alias       string `json:"alias"`
	ARN         string `json:"arn"`
	Status      struct {
		StatusCode string `json:"statusCode"`
	} `json:"status"`
	PrometheusEndpoint string            `json:"prometheusEndpoint"`
	CreatedAt          float64           `json:"createdAt"`
	Tags               map[string]string `json:"tags"`
}

type listWorkspacesResponse struct {
	Workspaces []apiWorkspace `json:"workspaces"`
	NextToken  string         `json:"nextToken"`
}

type describeWorkspaceResponse struct {
	Workspace apiWorkspace `json:"workspace"`
}

func (w apiWorkspace) toWorkspaceInfo() WorkspaceInfo {
	createdAt := ""
	if w.CreatedAt > 0 {
		// createdAt is epoch seconds with fractional millis on the wire.
		sec := int64(w.CreatedAt)
		nsec := int64((w.CreatedAt - float64(sec)) * float64(time.Second))
		createdAt = time.Unix(sec, nsec).UTC().Format(time.RFC3339)
	}
	return WorkspaceInfo{
		WorkspaceID:        w.WorkspaceID,
		Alias:              w.Alias,
		ARN:                w.ARN,
		Status:             w.Status.StatusCode,
		PrometheusEndpoint: w.PrometheusEndpoint,
		CreatedAt:          createdAt,
		Tags:               w.Tags,
	}
}
