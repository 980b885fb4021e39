package bindings_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/craftline/webhook-gateway/bindings"
	"github.com/craftline/webhook-gateway/webhook"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBindingsFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp("", "bindings-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoader_Load(t *testing.T) {
	t.Run("success - valid bindings file", func(t *testing.T) {
		path := writeBindingsFile(t, `
bindings:
  - event: "order.completed"
    target_url: "http://orders.internal/callbacks"
    expected_status: 202
    description: "marks the order as fulfilled"
  - event: "artwork.generated"
    target_url: "http://gallery.internal/artworks"
`)

		loader := bindings.NewLoader()
		err := loader.Load(path)
		require.NoError(t, err)

		all := loader.List()
		assert.Len(t, all, 2)

		binding, err := loader.Get("order.completed")
		require.NoError(t, err)
		assert.Equal(t, "http://orders.internal/callbacks", binding.TargetURL)
		assert.Equal(t, 202, binding.ExpectedStatus)

		binding, err = loader.Get("artwork.generated")
		require.NoError(t, err)
		assert.Equal(t, 200, binding.ExpectedStatus, "expected_status defaults to 200")
	})

	t.Run("error - file not found", func(t *testing.T) {
		loader := bindings.NewLoader()
		err := loader.Load("nonexistent.yaml")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading bindings file")
	})

	t.Run("error - invalid YAML", func(t *testing.T) {
		path := writeBindingsFile(t, `invalid yaml content: [[[`)

		loader := bindings.NewLoader()
		err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing bindings YAML")
	})

	t.Run("error - malformed event name", func(t *testing.T) {
		path := writeBindingsFile(t, `
bindings:
  - event: "OrderCompleted"
    target_url: "http://orders.internal/callbacks"
`)

		loader := bindings.NewLoader()
		err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "namespace.action")
	})
}

func TestLoader_Exists(t *testing.T) {
	path := writeBindingsFile(t, `
bindings:
  - event: "order.completed"
    target_url: "http://orders.internal/callbacks"
`)

	loader := bindings.NewLoader()
	require.NoError(t, loader.Load(path))

	assert.True(t, loader.Exists("order.completed"))
	assert.False(t, loader.Exists("order.refunded"))
}

func TestBinding_Validate(t *testing.T) {
	t.Run("valid binding", func(t *testing.T) {
		b := &bindings.Binding{
			Event:          "order.completed",
			TargetURL:      "http://orders.internal/callbacks",
			ExpectedStatus: 200,
		}
		require.NoError(t, b.Validate())
	})

	t.Run("error - empty target_url", func(t *testing.T) {
		b := &bindings.Binding{Event: "order.completed", ExpectedStatus: 200}
		err := b.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target_url cannot be empty")
	})

	t.Run("error - unsupported expected_status", func(t *testing.T) {
		b := &bindings.Binding{
			Event:          "order.completed",
			TargetURL:      "http://orders.internal/callbacks",
			ExpectedStatus: 500,
		}
		err := b.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected_status")
	})
}

func TestNewHandler(t *testing.T) {
	event := webhook.Event{
		Name:      "order.completed",
		Status:    webhook.StatusSuccess,
		Timestamp: "2026-03-01T10:00:00Z",
		RequestID: "req-42",
		Metadata:  map[string]any{"order_id": "ord_123"},
	}

	t.Run("success - posts the event to the target", func(t *testing.T) {
		var gotBody []byte
		var gotRequestID string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotRequestID = r.Header.Get("X-Request-Id")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		b := &bindings.Binding{Event: "order.completed", TargetURL: srv.URL, ExpectedStatus: 200}
		handler := bindings.NewHandler(b, srv.Client(), zerolog.Nop())

		err := handler(context.Background(), event)
		require.NoError(t, err)
		assert.Equal(t, "req-42", gotRequestID)
		assert.Contains(t, string(gotBody), `"order.completed"`)
		assert.Contains(t, string(gotBody), `"ord_123"`)
	})

	t.Run("error - unexpected response status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		b := &bindings.Binding{Event: "order.completed", TargetURL: srv.URL, ExpectedStatus: 200}
		handler := bindings.NewHandler(b, srv.Client(), zerolog.Nop())

		err := handler(context.Background(), event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status")
	})

	t.Run("error - cancelled context aborts the call", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		b := &bindings.Binding{Event: "order.completed", TargetURL: srv.URL, ExpectedStatus: 200}
		handler := bindings.NewHandler(b, srv.Client(), zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := handler(ctx, event)
		require.Error(t, err)
	})
}
