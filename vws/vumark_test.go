package vws_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/vws/internal/vwstest"
	"github.com/five82/vws/vws"
)

func TestGenerateVuMarkInstance(t *testing.T) {
	srv := vwstest.New(t)
	client := newClient(t, srv)
	id := addWidget(t, client, "template", widgetImage)

	png, err := client.GenerateVuMarkInstance(context.Background(), id, "0001", vws.VuMarkPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	pdf, err := client.GenerateVuMarkInstance(context.Background(), id, "0001", vws.VuMarkPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestGenerateVuMarkInstanceErrors(t *testing.T) {
	srv := vwstest.New(t, vwstest.WithProcessingTime(time.Minute))
	client := newClient(t, srv)
	id := addWidget(t, client, "template", widgetImage)

	_, err := client.GenerateVuMarkInstance(context.Background(), id, "0001", vws.VuMarkSVG)
	assert.ErrorIs(t, err, vws.KindTargetStatusNotSuccess)

	_, err = client.GenerateVuMarkInstance(context.Background(), "missing", "0001", vws.VuMarkSVG)
	assert.ErrorIs(t, err, vws.KindUnknownTarget)
}

func TestGenerateVuMarkInstanceResultCodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "image/svg+xml", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"result_code":"InvalidTargetType"}`))
	}))
	t.Cleanup(server.Close)
	client, err := vws.NewClient(vws.Config{AccessKey: "a", SecretKey: "s", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.GenerateVuMarkInstance(context.Background(), "abc", "0001", vws.VuMarkSVG)
	assert.ErrorIs(t, err, vws.KindInvalidTargetType)
}
