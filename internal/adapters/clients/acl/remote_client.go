package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// remotePost is the remote's record shape. Unknown fields are ignored.
type remotePost struct {
	ID       int    `json:"id,omitzero"`
	UserID   int    `json:"userId,omitzero"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
}

// RemoteQuoteClient implements ports.RemoteQuoteSource over HTTP.
type RemoteQuoteClient struct {
	BaseAdapter

	client    *clients.Client
	fetchPath string
	postPath  string
	logger    *slog.Logger
}

var (
	_ ports.RemoteQuoteSource = (*RemoteQuoteClient)(nil)
	_ ports.HealthChecker     = (*RemoteQuoteClient)(nil)
)

// NewRemoteQuoteClient creates a client for the given fetch and post paths.
func NewRemoteQuoteClient(client *clients.Client, fetchPath, postPath string, logger *slog.Logger) *RemoteQuoteClient {
	return &RemoteQuoteClient{
		BaseAdapter: NewBaseAdapter(client, client.Name()),
		client:      client,
		fetchPath:   fetchPath,
		postPath:    postPath,
		logger:      logging.Component(logger, "acl.remote"),
	}
}

// FetchBatch requests at most limit records. Records without an id get their
// position as ID; the remote's userId and any extra fields are dropped.
func (c *RemoteQuoteClient) FetchBatch(ctx context.Context, limit int) ([]ports.RemoteRecord, error) {
	body, err := c.Get(ctx, c.fetchPath, url.Values{"_limit": {strconv.Itoa(limit)}}, "fetch quotes")
	if err != nil {
		return nil, err
	}

	posts, err := DecodeResponse[[]remotePost](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), fmt.Sprintf("fetch quotes: %v", err))
	}

	i := 0
	records := TranslateSlice(posts, func(p remotePost) (ports.RemoteRecord, bool) {
		i++
		if p.ID == 0 {
			p.ID = i
		}

		return ports.RemoteRecord{ID: p.ID, Title: p.Title, Body: p.Body, Category: p.Category}, true
	})

	logging.FromContextOr(ctx, c.logger).Log(ctx, logging.LevelTrace, "fetched remote records",
		slog.Int("requested", limit),
		slog.Int("received", len(records)),
	)

	return records, nil
}

// PostRecord sends one record. The response body is not interpreted.
func (c *RemoteQuoteClient) PostRecord(ctx context.Context, record ports.RemoteRecord) error {
	body, err := c.PostJSON(ctx, c.postPath, remotePost{
		Title:    record.Title,
		Body:     record.Body,
		Category: record.Category,
	}, "post quote")
	if err != nil {
		return err
	}

	return body.Close()
}

// Name implements ports.HealthChecker.
func (c *RemoteQuoteClient) Name() string {
	return "remote"
}

// Check reports unavailable while the circuit breaker is open. It never
// calls the remote itself.
func (c *RemoteQuoteClient) Check(_ context.Context) error {
	snap := c.client.Circuit()
	if snap.State != clients.StateOpen {
		return nil
	}

	return domain.NewUnavailableError(c.ServiceName(), fmt.Sprintf("circuit breaker %s, retry in %s",
		snap.State, snap.RetryAfter.Round(time.Second)))
}
