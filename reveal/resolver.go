package reveal

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/teranos/recipeviz/errors"
	"github.com/teranos/recipeviz/graph"
	grapherror "github.com/teranos/recipeviz/graph/error"
	"github.com/teranos/recipeviz/internal/httpclient"
)

// maxAssetBytes caps a single downloaded image
const maxAssetBytes = 4 << 20

// Resolver loads a node's visual asset. Implementations must honour ctx.
type Resolver interface {
	Resolve(ctx context.Context, node graph.Node) (*graph.Asset, error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(ctx context.Context, node graph.Node) (*graph.Asset, error)

// Resolve calls f
func (f ResolverFunc) Resolve(ctx context.Context, node graph.Node) (*graph.Asset, error) {
	return f(ctx, node)
}

// StaticResolver succeeds immediately without touching the network.
// Scene output references node.ImageRef directly, so the asset is empty.
type StaticResolver struct{}

// Resolve returns an empty asset
func (StaticResolver) Resolve(ctx context.Context, node graph.Node) (*graph.Asset, error) {
	return &graph.Asset{}, nil
}

// HTTPResolverConfig configures an HTTPResolver
type HTTPResolverConfig struct {
	Timeout           time.Duration // Per-asset timeout; 0 = none
	RequestsPerSecond float64       // 0 = unlimited
	Burst             int
}

// HTTPResolver downloads node images over HTTP. Requests are rate limited and
// responses cached by link until Reset (called at each new search). A
// download started before a Reset never lands in the new cache.
type HTTPResolver struct {
	client  *httpclient.Client
	timeout time.Duration
	limiter *rate.Limiter

	mu    sync.Mutex
	cache map[string]*graph.Asset
	epoch uint64 // bumped by Reset
}

// NewHTTPResolver creates a resolver using client for all downloads
func NewHTTPResolver(client *httpclient.Client, cfg HTTPResolverConfig) *HTTPResolver {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &HTTPResolver{
		client:  client,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(limit, burst),
		cache:   make(map[string]*graph.Asset),
	}
}

// Reset drops cached assets
func (r *HTTPResolver) Reset() {
	r.mu.Lock()
	r.cache = make(map[string]*graph.Asset)
	r.epoch++
	r.mu.Unlock()
}

// Resolve fetches node.ImageRef. Non-2xx responses, non-image content and
// transport failures are returned as CategoryAsset errors.
func (r *HTTPResolver) Resolve(ctx context.Context, node graph.Node) (*graph.Asset, error) {
	link := strings.TrimSpace(node.ImageRef)
	if link == "" {
		return nil, assetError(node, errors.New("node has no image link"))
	}

	r.mu.Lock()
	cached, ok := r.cache[link]
	epoch := r.epoch
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, assetError(node, errors.Wrap(err, "rate limiter"))
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, assetError(node, errors.Wrap(err, "build request"))
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, assetError(node, errors.Wrap(err, "fetch image"))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, assetError(node, errors.Newf("image server returned HTTP %d", resp.StatusCode)).
			WithContext("status", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, assetError(node, errors.Newf("unexpected content type %q", contentType))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, assetError(node, errors.Wrap(err, "read image"))
	}

	asset := &graph.Asset{ContentType: contentType, Data: data}
	r.mu.Lock()
	if r.epoch == epoch {
		r.cache[link] = asset
	}
	r.mu.Unlock()
	return asset, nil
}

func assetError(node graph.Node, err error) *grapherror.GraphError {
	return grapherror.New(grapherror.CategoryAsset, err, "").
		WithContext("node_id", node.ID).
		WithContext("image_ref", node.ImageRef)
}

// ValidateDelay checks a user-supplied reveal delay in milliseconds.
// The scheduler itself accepts zero; callers validate before scheduling.
func ValidateDelay(ms int) error {
	if ms < 1 {
		return grapherror.Newf(grapherror.CategoryValidation,
			"Reveal delay must be a positive number of milliseconds",
			"invalid reveal delay %dms", ms).
			WithSubcategory(grapherror.SubcategoryValidationDelay)
	}
	return nil
}
