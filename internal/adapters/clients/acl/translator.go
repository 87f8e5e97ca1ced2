package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
)

// BaseAdapter wraps a clients.Client so every call returns either a body or a
// mapped domain error.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a BaseAdapter.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{client: client, serviceName: serviceName}
}

// ServiceName returns the remote's name used in errors.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get performs a GET and returns the body of a 2xx response. The caller
// closes it.
func (a *BaseAdapter) Get(ctx context.Context, path string, query url.Values, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path, query)

	return a.body(resp, err, operation)
}

// PostJSON posts body and returns the body of a 2xx response. The caller
// closes it.
func (a *BaseAdapter) PostJSON(ctx context.Context, path string, body any, operation string) (io.ReadCloser, error) {
	resp, err := a.client.PostJSON(ctx, path, body)

	return a.body(resp, err, operation)
}

func (a *BaseAdapter) body(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if mapped := MapHTTPError(resp, nil, a.serviceName, operation); mapped != nil {
		_ = resp.Body.Close()

		return nil, mapped
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (T, error) {
	var result T

	if body == nil {
		return result, errors.New("response body is nil")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return result, fmt.Errorf("decoding response: %w", err)
	}

	return result, nil
}

// Translator converts one external DTO. ok=false drops the item.
type Translator[E, D any] func(ext E) (d D, ok bool)

// TranslateSlice applies translate to every item, dropping rejected ones and
// keeping order.
func TranslateSlice[E, D any](items []E, translate Translator[E, D]) []D {
	out := make([]D, 0, len(items))

	for _, item := range items {
		if d, ok := translate(item); ok {
			out = append(out, d)
		}
	}

	return out
}
