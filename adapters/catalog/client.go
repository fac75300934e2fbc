package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hntran/reelist/internal/domain/media"
	"github.com/hntran/reelist/pkg/apperror"
	"github.com/hntran/reelist/pkg/logger"
)

const (
	detailCacheTTL = 24 * time.Hour
	genreCacheTTL  = 7 * 24 * time.Hour
	// discover results below this vote count are mostly noise
	minVoteCount = 100
)

// Client wraps the external media catalog API.
type Client interface {
	Search(ctx context.Context, query string, page int, kind media.Kind, year int) (*PagedResult, error)
	Discover(ctx context.Context, page int, opts DiscoverOptions, kind media.Kind) (*PagedResult, error)
	Genres(ctx context.Context, kind media.Kind) ([]media.Genre, error)
	// Detail fetches one item with credits embedded. Callers guessing the
	// kind should retry with the opposite kind on failure; that fallback is
	// theirs, not the client's.
	Detail(ctx context.Context, id int, kind media.Kind) (*media.Item, error)
}

type httpClient struct {
	baseURL    string
	apiKey     string
	language   string
	httpc      *http.Client
	cache      *redis.Client
	logger     logger.Logger
	retryDelay time.Duration
}

// Option tweaks client construction.
type Option func(*httpClient)

// WithRetryDelay overrides the initial backoff delay. Tests use this to
// avoid sleeping through real backoff windows.
func WithRetryDelay(d time.Duration) Option {
	return func(c *httpClient) { c.retryDelay = d }
}

// WithCache enables the Redis response cache for detail and genre lookups.
func WithCache(cache *redis.Client) Option {
	return func(c *httpClient) { c.cache = cache }
}

func NewClient(baseURL, apiKey, language string, log logger.Logger, opts ...Option) Client {
	c := &httpClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		language:   language,
		httpc:      &http.Client{Timeout: 15 * time.Second},
		logger:     log,
		retryDelay: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, page int, kind media.Kind, year int) (*PagedResult, error) {
	params := c.baseParams()
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	if year > 0 {
		if kind == media.KindTV {
			params.Set("first_air_date_year", strconv.Itoa(year))
		} else {
			params.Set("year", strconv.Itoa(year))
		}
	}

	var payload pagePayload
	if err := c.get(ctx, fmt.Sprintf("/search/%s", kind), params, &payload); err != nil {
		return nil, err
	}
	return c.toPage(payload, kind), nil
}

func (c *httpClient) Discover(ctx context.Context, page int, opts DiscoverOptions, kind media.Kind) (*PagedResult, error) {
	params := c.baseParams()
	params.Set("page", strconv.Itoa(page))
	params.Set("vote_count.gte", strconv.Itoa(minVoteCount))
	if opts.SortBy != "" {
		params.Set("sort_by", opts.SortBy)
	}
	if opts.GenreID > 0 {
		params.Set("with_genres", strconv.Itoa(opts.GenreID))
	}
	if opts.Year > 0 {
		if kind == media.KindTV {
			params.Set("first_air_date_year", strconv.Itoa(opts.Year))
		} else {
			params.Set("primary_release_year", strconv.Itoa(opts.Year))
		}
	}

	var payload pagePayload
	if err := c.get(ctx, fmt.Sprintf("/discover/%s", kind), params, &payload); err != nil {
		return nil, err
	}
	return c.toPage(payload, kind), nil
}

func (c *httpClient) Genres(ctx context.Context, kind media.Kind) ([]media.Genre, error) {
	cacheKey := fmt.Sprintf("catalog:genres:%s", kind)
	var payload genreListPayload
	if c.cacheGet(ctx, cacheKey, &payload) {
		return payload.Genres, nil
	}

	if err := c.get(ctx, fmt.Sprintf("/genre/%s/list", kind), c.baseParams(), &payload); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, cacheKey, payload, genreCacheTTL)
	return payload.Genres, nil
}

func (c *httpClient) Detail(ctx context.Context, id int, kind media.Kind) (*media.Item, error) {
	cacheKey := fmt.Sprintf("catalog:detail:%s:%d", kind, id)
	var payload itemPayload
	if c.cacheGet(ctx, cacheKey, &payload) {
		item := payload.normalize()
		return &item, nil
	}

	params := c.baseParams()
	params.Set("append_to_response", "credits")
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, id), params, &payload); err != nil {
		return nil, err
	}
	c.cacheSet(ctx, cacheKey, payload, detailCacheTTL)

	item := payload.normalize()
	// the detail endpoint for a known kind omits the discriminating fields
	// the multi-search payload carries, so trust the requested kind
	item.Kind = kind
	if item.Kind == media.KindTV && item.Title == "" {
		item.Title = payload.Name
	}
	return &item, nil
}

// cacheGet loads a cached JSON payload. A miss or a cache failure both fall
// through to the network; cache trouble is never fatal.
func (c *httpClient) cacheGet(ctx context.Context, key string, out any) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *httpClient) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *httpClient) baseParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	params.Set("include_adult", "false")
	return params
}

func (c *httpClient) toPage(payload pagePayload, kind media.Kind) *PagedResult {
	result := &PagedResult{
		Page:         payload.Page,
		TotalPages:   payload.TotalPages,
		TotalResults: payload.TotalResults,
		Items:        make([]media.Item, 0, len(payload.Results)),
	}
	for _, raw := range payload.Results {
		item := raw.normalize()
		// kind-specific endpoints do not re-state the discriminator
		item.Kind = kind
		if item.Title == "" {
			item.Title = raw.Name
		}
		if item.ReleaseDate == "" {
			item.ReleaseDate = raw.FirstAirDate
		}
		result.Items = append(result.Items, item)
	}
	return result
}

// get performs one catalog request with the shared retry policy: the initial
// request plus up to 3 retries, exponential backoff starting at the
// configured delay, doubling per attempt. Rate limiting (429) and transport
// failures retry; any other non-200 status fails immediately.
func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusOK:
				body, err = io.ReadAll(resp.Body)
				return err
			case resp.StatusCode == http.StatusTooManyRequests:
				return apperror.NewRateLimited(path, nil)
			default:
				return retry.Unrecoverable(apperror.NewUpstream(
					fmt.Sprintf("catalog returned status %d for %s", resp.StatusCode, path), nil))
			}
		},
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.logger.Warn("catalog request failed", zap.String("path", path), zap.Error(err))
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperror.NewUpstream(fmt.Sprintf("catalog request for %s", path), err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return apperror.NewUpstream(fmt.Sprintf("decode catalog response for %s", path), err)
	}
	return nil
}
