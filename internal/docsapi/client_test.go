package docsapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GringoXY/4-gamers-mailing/internal/config"
	"github.com/GringoXY/4-gamers-mailing/internal/events"
)

func newTestClient(url string) *Client {
	return NewClient(&config.DocsAPIConfig{BaseURL: url})
}

func TestGenerateReturnsDocumentAndFilename(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/documents/order", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "ShipToEmail")

		w.Header().Set("Content-Disposition", `attachment; filename="4Gamers-order-1.pdf"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(pdf)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	filename, content, err := client.Generate(context.Background(), events.OrderCreatedEvent{
		ID:          uuid.New(),
		ShipToEmail: "customer@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "4Gamers-order-1.pdf", filename)
	assert.Equal(t, pdf, content)
}

func TestGenerateFallbackFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("doc"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	filename, content, err := client.Generate(context.Background(), events.OrderCreatedEvent{})

	require.NoError(t, err)
	assert.Equal(t, DefaultFilename, filename)
	assert.Equal(t, []byte("doc"), content)
}

func TestGenerateNonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, _, err := client.Generate(context.Background(), events.OrderCreatedEvent{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "boom")
}

func TestGenerateSkipsEventsWithoutDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("document service must not be called for events without a document")
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	filename, content, err := client.Generate(context.Background(), events.OrderStateUpdatedEvent{})

	require.NoError(t, err)
	assert.Empty(t, filename)
	assert.Empty(t, content)
}

func TestFilenameFromHeader(t *testing.T) {
	assert.Equal(t, "a.pdf", filenameFromHeader(`attachment; filename="a.pdf"`))
	assert.Equal(t, DefaultFilename, filenameFromHeader(""))
	assert.Equal(t, DefaultFilename, filenameFromHeader("attachment"))
}
