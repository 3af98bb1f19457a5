package helix

import (
	"context"
	"net/http"
	"net/url"

	"github.com/streamkit/helix-client/pkg/transport"
)

// Topic identifies a webhook event source. A topic renders as an
// absolute Helix URL registered with the hub.
type Topic interface {
	// URI returns the topic URL to subscribe to or unsubscribe from.
	URI() string
}

// topicURI builds a topic URL. Query keys are sorted by url.Values,
// and empty fields are omitted before calling.
func topicURI(path string, params url.Values) string {
	return transport.DefaultBaseURL + path + "?" + params.Encode()
}

// setIfPresent adds a value to params unless it is empty.
func setIfPresent(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

// StreamChanged notifies when a stream changes: goes online or
// offline, or the title or game changes.
type StreamChanged struct {
	// UserID is the user whose stream is monitored.
	UserID string
}

func (t StreamChanged) URI() string {
	return topicURI("/streams", url.Values{"user_id": {t.UserID}})
}

// UserChanged notifies when a user changes profile information.
// Requires the user:read:email scope for email change notifications.
type UserChanged struct {
	// ID is the user whose data is monitored.
	ID string
}

func (t UserChanged) URI() string {
	return topicURI("/users", url.Values{"id": {t.ID}})
}

// UserFollows notifies when a follow event occurs. FromID and/or ToID
// must be specified.
type UserFollows struct {
	// FromID restricts notifications to follows by this user.
	FromID string

	// ToID restricts notifications to follows of this user.
	ToID string
}

func (t UserFollows) URI() string {
	params := url.Values{"first": {"1"}}
	setIfPresent(params, "from_id", t.FromID)
	setIfPresent(params, "to_id", t.ToID)
	return topicURI("/users/follows", params)
}

// SubscriptionEvents notifies when a channel subscription payment is
// processed or a subscriber shares a subscription in chat. Requires
// the channel:read:subscriptions scope.
type SubscriptionEvents struct {
	// BroadcasterID must match the user ID in the bearer token.
	BroadcasterID string

	// UserID restricts notifications to one subscribed user.
	UserID string

	// GifterID restricts notifications to subs gifted by this user.
	GifterID string

	// GifterName restricts notifications to subs gifted by this user.
	GifterName string
}

func (t SubscriptionEvents) URI() string {
	params := url.Values{
		"broadcaster_id": {t.BroadcasterID},
		"first":          {"1"},
	}
	setIfPresent(params, "user_id", t.UserID)
	setIfPresent(params, "gifter_id", t.GifterID)
	setIfPresent(params, "gifter_name", t.GifterName)
	return topicURI("/subscriptions/events", params)
}

// ChannelBanChangeEvents notifies when a broadcaster bans or un-bans
// people in their channel.
type ChannelBanChangeEvents struct {
	// BroadcasterID is the broadcaster's user ID.
	BroadcasterID string

	// UserID restricts notifications to one banned user.
	UserID string
}

func (t ChannelBanChangeEvents) URI() string {
	params := url.Values{
		"broadcaster_id": {t.BroadcasterID},
		"first":          {"1"},
	}
	setIfPresent(params, "user_id", t.UserID)
	return topicURI("/moderation/banned/events", params)
}

// ModeratorChangeEvents notifies when a broadcaster adds or removes
// moderators.
type ModeratorChangeEvents struct {
	// BroadcasterID is the broadcaster's user ID.
	BroadcasterID string

	// UserID restricts notifications to one moderator.
	UserID string
}

func (t ModeratorChangeEvents) URI() string {
	params := url.Values{
		"broadcaster_id": {t.BroadcasterID},
		"first":          {"1"},
	}
	setIfPresent(params, "user_id", t.UserID)
	return topicURI("/moderation/moderators/events", params)
}

// ExtensionTransactionCreated notifies when a new transaction is
// created for an extension.
type ExtensionTransactionCreated struct {
	// ExtensionID is the extension to listen to for transactions.
	ExtensionID string
}

func (t ExtensionTransactionCreated) URI() string {
	return topicURI("/extensions/transactions", url.Values{
		"extension_id": {t.ExtensionID},
		"first":        {"1"},
	})
}

// Subscription represents one webhook subscription. Subscription
// requests count against Helix rate limits like any other call.
type Subscription struct {
	client *Client

	// Callback is the URL notifications are delivered to.
	Callback string

	// Topic is the event source.
	Topic Topic

	// LeaseSeconds is how long the subscription lives. Maximum 864000;
	// values of 0 expire before any useful notification is sent.
	LeaseSeconds int

	// Secret signs notification payloads (X-Hub-Signature,
	// sha256(secret, body)). Strongly recommended.
	Secret string
}

// NewSubscription builds a webhook subscription descriptor. Nothing is
// sent until Subscribe is called.
func (c *Client) NewSubscription(callback string, topic Topic, leaseSeconds int, secret string) *Subscription {
	return &Subscription{
		client:       c,
		Callback:     callback,
		Topic:        topic,
		LeaseSeconds: leaseSeconds,
		Secret:       secret,
	}
}

func (s *Subscription) String() string {
	return s.Topic.URI()
}

// Subscribe registers the subscription with the hub. The hub then
// calls back to verify before delivering notifications.
func (s *Subscription) Subscribe(ctx context.Context) error {
	return s.client.hubRequest(ctx, "subscribe", s)
}

// Extend renews the subscription lease. An alias for Subscribe.
func (s *Subscription) Extend(ctx context.Context) error {
	return s.Subscribe(ctx)
}

// Unsubscribe removes the subscription from the hub.
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	return s.client.hubRequest(ctx, "unsubscribe", s)
}

// hubRequest issues one POST to the webhook hub.
func (c *Client) hubRequest(ctx context.Context, mode string, s *Subscription) error {
	params := []transport.Param{
		transport.String("hub.callback", s.Callback),
		transport.String("hub.mode", mode),
		transport.String("hub.topic", s.Topic.URI()),
		transport.Int("hub.lease_seconds", s.LeaseSeconds),
	}
	if s.Secret != "" {
		params = append(params, transport.String("hub.secret", s.Secret))
	}

	_, err := c.dispatcher.Do(ctx, transport.NewRoute(http.MethodPost, "/webhooks/hub", params...))
	return err
}
