package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/recipeviz/errors"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/internal/httpclient"
	"github.com/teranos/recipeviz/logger"
	"github.com/teranos/recipeviz/metrics"
)

// maxResponseBytes caps a dataset response
const maxResponseBytes = 32 << 20

// Source produces the dataset for a search
type Source interface {
	Fetch(ctx context.Context, req Request) (*graph.Dataset, error)
}

// Client fetches datasets from the search backend over HTTP
type Client struct {
	endpoint string
	http     *httpclient.Client
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// ClientConfig configures a Client
type ClientConfig struct {
	BackendURL string        // e.g. http://localhost:8080; "/api" is appended
	Timeout    time.Duration // 0 = wait indefinitely
}

// NewClient creates a backend client. hc may be nil.
func NewClient(cfg ClientConfig, hc *httpclient.Client) *Client {
	if hc == nil {
		hc = httpclient.New(httpclient.Options{})
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.BackendURL, "/") + "/api",
		http:     hc,
		timeout:  cfg.Timeout,
		log:      logger.ComponentLogger("search.client"),
	}
}

// Endpoint returns the dataset URL
func (c *Client) Endpoint() string { return c.endpoint }

// backendRequest is the body POSTed to the backend. Only target is required
// by every backend; the rest are hints.
type backendRequest struct {
	Target string `json:"target"`
	Method Method `json:"method,omitempty"`
	Option Option `json:"option,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// Fetch POSTs the search to the backend and decodes the dataset.
// Every failure is a CategoryFetch error and fatal to the search.
func (c *Client) Fetch(ctx context.Context, req Request) (*graph.Dataset, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(backendRequest{
		Target: req.Target,
		Method: req.Method,
		Option: req.Option,
		Count:  req.Count,
	})
	if err != nil {
		return nil, grapherror.New(grapherror.CategoryInternal, errors.Wrap(err, "encode search request"), "")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fetchError(grapherror.SubcategoryFetchNetwork, errors.Wrap(err, "build request"))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fetchError(grapherror.SubcategoryFetchNetwork, errors.Wrapf(err, "POST %s", c.endpoint))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fetchError(grapherror.SubcategoryFetchStatus,
			errors.Newf("search backend returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))).
			WithContext("status", resp.StatusCode)
	}

	var ds graph.Dataset
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&ds); err != nil {
		return nil, fetchError(grapherror.SubcategoryFetchDecode, errors.Wrap(err, "decode dataset"))
	}

	elapsed := time.Since(start)
	metrics.DatasetFetchDuration.Observe(elapsed.Seconds())
	c.log.Debugw("dataset received",
		logger.FieldTarget, req.Target,
		logger.FieldMethod, req.Method,
		logger.FieldNodes, len(ds.Images),
		logger.FieldEdges, len(ds.Lines),
		logger.FieldDurationMS, elapsed.Milliseconds())
	return &ds, nil
}

func fetchError(sub string, err error) *grapherror.GraphError {
	return grapherror.New(grapherror.CategoryFetch, err, "").WithSubcategory(sub)
}
