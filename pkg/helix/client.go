// Package helix is the typed facade over the rate-limited dispatcher:
// domain records, paginated query methods, and webhook subscriptions.
package helix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/streamkit/helix-client/pkg/cache"
	"github.com/streamkit/helix-client/pkg/page"
	"github.com/streamkit/helix-client/pkg/transport"
)

// Configuration errors raised before any network activity.
var (
	// ErrMissingKey is returned when a query requires at least one key
	// (ID or name) and none was given.
	ErrMissingKey = errors.New("at least one key must be specified")

	// ErrAmbiguousKey is returned when a singular lookup was given more
	// than one key where exactly one is allowed.
	ErrAmbiguousKey = errors.New("only one key may be specified")
)

// Config holds the client configuration.
type Config struct {
	// ClientID is sent as the Client-Id header (REQUIRED).
	ClientID string

	// Token is an optional bearer token. FetchAppToken can acquire one
	// later.
	Token string

	// BaseURL overrides the Helix API root.
	BaseURL string

	// AuthURL overrides the OAuth token endpoint.
	AuthURL string

	// Redis enables the response cache when non-nil.
	Redis *redis.Client

	// CacheTTL is the response cache entry lifetime.
	CacheTTL time.Duration

	// RequestsPerSecond applies a global request pacer when > 0.
	RequestsPerSecond int

	// Timeout per HTTP call.
	Timeout time.Duration
}

// Client is the typed Helix API client.
type Client struct {
	dispatcher *transport.Dispatcher
	logger     zerolog.Logger
}

// New creates a Helix client.
func New(cfg Config) (*Client, error) {
	tc := transport.Config{
		ClientID:          cfg.ClientID,
		Token:             cfg.Token,
		BaseURL:           cfg.BaseURL,
		AuthURL:           cfg.AuthURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.Timeout,
	}
	if cfg.Redis != nil {
		tc.Cache = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	dispatcher, err := transport.New(tc)
	if err != nil {
		return nil, err
	}

	return &Client{
		dispatcher: dispatcher,
		logger:     log.With().Str("component", "helix-client").Logger(),
	}, nil
}

// Dispatcher exposes the underlying transport (for token acquisition
// and advanced callers).
func (c *Client) Dispatcher() *transport.Dispatcher {
	return c.dispatcher
}

// FetchAppToken acquires an app access token and installs it for
// subsequent requests.
func (c *Client) FetchAppToken(ctx context.Context, clientSecret string) (string, error) {
	return c.dispatcher.FetchAppToken(ctx, clientSecret)
}

// Games returns an iterator over games matched by ID or exact name.
// At least one of ids, names must be non-empty.
func (c *Client) Games(ids, names []string) (*page.Keyed[Game], error) {
	if len(ids) == 0 && len(names) == 0 {
		return nil, fmt.Errorf("%w: ids or names", ErrMissingKey)
	}

	var sets []*page.KeySet
	if len(ids) > 0 {
		sets = append(sets, page.NewKeySet("id", ids, page.DefaultPageSize))
	}
	if len(names) > 0 {
		sets = append(sets, page.NewKeySet("name", names, page.DefaultPageSize))
	}

	return page.NewKeyed(func(ctx context.Context, batches map[string][]string) ([]Game, error) {
		return fetchRecords[Game](ctx, c.dispatcher, "/games", batches)
	}, sets...)
}

// Game looks up a single game by ID or exact name. Exactly one key
// must be given. Returns (nil, nil) when nothing matched.
func (c *Client) Game(ctx context.Context, id, name string) (*Game, error) {
	if id != "" && name != "" {
		return nil, fmt.Errorf("%w: id or name", ErrAmbiguousKey)
	}

	var it *page.Keyed[Game]
	var err error
	switch {
	case id != "":
		it, err = c.Games([]string{id}, nil)
	case name != "":
		it, err = c.Games(nil, []string{name})
	default:
		return nil, fmt.Errorf("%w: id or name", ErrMissingKey)
	}
	if err != nil {
		return nil, err
	}

	return first[Game](ctx, it)
}

// Users returns an iterator over users matched by ID and/or login
// name. With no keys at all, the single user identified by the bearer
// token is looked up instead.
func (c *Client) Users(ids, logins []string) page.Iterator[User] {
	if len(ids) == 0 && len(logins) == 0 {
		return page.NewOnce(func(ctx context.Context) ([]User, error) {
			return fetchRecords[User](ctx, c.dispatcher, "/users", nil)
		})
	}

	var sets []*page.KeySet
	if len(ids) > 0 {
		sets = append(sets, page.NewKeySet("id", ids, page.DefaultPageSize))
	}
	if len(logins) > 0 {
		sets = append(sets, page.NewKeySet("login", logins, page.DefaultPageSize))
	}

	// NewKeyed only fails with zero key sets, which the branch above
	// already excluded.
	it, _ := page.NewKeyed(func(ctx context.Context, batches map[string][]string) ([]User, error) {
		return c.fetchUsers(ctx, batches)
	}, sets...)
	return it
}

// fetchUsers issues one /users round. A combined round of IDs and
// logins may carry up to 200 keys, which exceeds the 100-key request
// bound, so oversized rounds are re-split into paired 50/50 sub-calls.
func (c *Client) fetchUsers(ctx context.Context, batches map[string][]string) ([]User, error) {
	ids, logins := batches["id"], batches["login"]
	if len(ids)+len(logins) <= page.DefaultPageSize {
		return fetchRecords[User](ctx, c.dispatcher, "/users", batches)
	}

	idHalves := split(ids, page.DefaultPageSize/2)
	loginHalves := split(logins, page.DefaultPageSize/2)

	var out []User
	for i := 0; i < len(idHalves) || i < len(loginHalves); i++ {
		sub := make(map[string][]string, 2)
		if i < len(idHalves) {
			sub["id"] = idHalves[i]
		}
		if i < len(loginHalves) {
			sub["login"] = loginHalves[i]
		}
		users, err := fetchRecords[User](ctx, c.dispatcher, "/users", sub)
		if err != nil {
			return nil, err
		}
		out = append(out, users...)
	}
	return out, nil
}

// User looks up a single user by ID or login. At most one key may be
// given. Returns (nil, nil) when nothing matched or no key was given.
func (c *Client) User(ctx context.Context, id, login string) (*User, error) {
	if id != "" && login != "" {
		return nil, fmt.Errorf("%w: id or login", ErrAmbiguousKey)
	}

	var it page.Iterator[User]
	switch {
	case id != "":
		it = c.Users([]string{id}, nil)
	case login != "":
		it = c.Users(nil, []string{login})
	default:
		return nil, nil
	}

	return first[User](ctx, it)
}

// Streams returns an iterator over active streams, sorted by viewer
// count. limit bounds the total records retrieved; pass page.Unlimited
// to iterate until the server runs out of data. The optional filter is
// validated before any network call.
func (c *Client) Streams(limit int, filter *StreamFilter) (*page.Cursor[Stream], error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	filterParams := filter.params()

	return page.NewCursor(func(ctx context.Context, count int, after string) ([]Stream, string, error) {
		params := []transport.Param{transport.Int("first", count)}
		params = append(params, filterParams...)
		if after != "" {
			params = append(params, transport.String("after", after))
		}

		payload, err := c.dispatcher.Do(ctx, transport.NewRoute(http.MethodGet, "/streams", params...))
		if err != nil {
			return nil, "", err
		}
		env, err := payload.Envelope()
		if err != nil {
			return nil, "", err
		}
		streams, err := decodeRecords[Stream](env.Data)
		if err != nil {
			return nil, "", err
		}
		return streams, env.Pagination.Cursor, nil
	}, limit), nil
}

// Stream looks up the active stream of a single broadcaster by user ID
// or login. At most one key may be given. Returns (nil, nil) when the
// broadcaster is offline or no key was given.
func (c *Client) Stream(ctx context.Context, userID, userLogin string) (*Stream, error) {
	if userID != "" && userLogin != "" {
		return nil, fmt.Errorf("%w: user id or user login", ErrAmbiguousKey)
	}

	var filter *StreamFilter
	switch {
	case userID != "":
		filter = &StreamFilter{UserIDs: []string{userID}}
	case userLogin != "":
		filter = &StreamFilter{UserLogins: []string{userLogin}}
	default:
		return nil, nil
	}

	it, err := c.Streams(1, filter)
	if err != nil {
		return nil, err
	}
	return first[Stream](ctx, it)
}

// fetchRecords issues one keyed GET round and decodes the data array.
// batches maps query parameter names to repeated values.
func fetchRecords[T any](ctx context.Context, d *transport.Dispatcher, path string, batches map[string][]string) ([]T, error) {
	var params []transport.Param
	// Stable parameter order: ids before names/logins, matching the
	// URL-builder helpers.
	for _, key := range []string{"id", "name", "login"} {
		for _, v := range batches[key] {
			params = append(params, transport.String(key, v))
		}
	}

	payload, err := d.Do(ctx, transport.NewRoute(http.MethodGet, path, params...))
	if err != nil {
		return nil, err
	}
	env, err := payload.Envelope()
	if err != nil {
		return nil, err
	}
	return decodeRecords[T](env.Data)
}

// decodeRecords unmarshals each element of a data array into T.
func decodeRecords[T any](data []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(data))
	for _, raw := range data {
		var rec T
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// first pulls one record from an iterator, mapping end-of-sequence to
// (nil, nil).
func first[T any](ctx context.Context, it page.Iterator[T]) (*T, error) {
	v, err := it.Next(ctx)
	if err != nil {
		if errors.Is(err, page.ErrNoMoreItems) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// split partitions keys into chunks of at most n.
func split(keys []string, n int) [][]string {
	var out [][]string
	for len(keys) > n {
		out = append(out, keys[:n])
		keys = keys[n:]
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}
