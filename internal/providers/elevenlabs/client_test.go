package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

func TestSynthesizeWrapsPCM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "pcm_24000", r.URL.Query().Get("output_format"))
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))

		var req synthesizeRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hola", req.Text)

		w.Write([]byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x03})
	}))
	defer srv.Close()

	audio, err := NewClient("el-key", "voice-1", srv.URL, srv.Client()).Synthesize(context.Background(), "Hola")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", audio.MimeType)

	d := wav.NewDecoder(bytes.NewReader(audio.Data))
	require.True(t, d.IsValidFile())
	assert.Equal(t, uint32(24000), d.SampleRate)
	assert.Equal(t, uint16(1), d.NumChans)

	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, []int{256, 512, 768}, buf.Data)
}

func TestSynthesizeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key","message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	_, err := NewClient("bad", "voice-1", srv.URL, srv.Client()).Synthesize(context.Background(), "Hola")

	var se *pipeline.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "Invalid API key", se.Diagnostic())
}

func TestErrorMessageShapes(t *testing.T) {
	assert.Equal(t, "quota exceeded", errorMessage([]byte(`{"detail":"quota exceeded"}`), 429))
	assert.Equal(t, "oops", errorMessage([]byte("oops"), 500))
	assert.Equal(t, "Bad Gateway", errorMessage(nil, 502))
}
