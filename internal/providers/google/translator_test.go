package google

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	translate "google.golang.org/api/translate/v2"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

func deTarget(t *testing.T) languages.Target {
	t.Helper()
	tgt, ok := languages.NewCatalog([]pipeline.Language{{Code: "de"}}).Lookup("de")
	require.True(t, ok)
	return tgt
}

func TestLanguagesFrom(t *testing.T) {
	langs := languagesFrom(&translate.LanguagesListResponse{
		Languages: []*translate.LanguagesResource{
			{Language: "de", Name: "German"},
			nil,
			{Language: "fr", Name: "French"},
		},
	})

	assert.Equal(t, []pipeline.Language{
		{Code: "de", Name: "German"},
		{Code: "fr", Name: "French"},
	}, langs)
	assert.Nil(t, languagesFrom(nil))
}

func TestResultFromFirstEntry(t *testing.T) {
	result, err := resultFrom(&translate.TranslationsListResponse{
		Translations: []*translate.TranslationsResource{
			{TranslatedText: "Ein Hund &amp; eine Katze", DetectedSourceLanguage: "en"},
			{TranslatedText: "ignored"},
		},
	}, deTarget(t))
	require.NoError(t, err)

	assert.Equal(t, "Ein Hund & eine Katze", result.TranslatedText)
	assert.Equal(t, "en", result.DetectedSourceLanguage)
	assert.Equal(t, "de", result.TargetLanguage)
}

func TestResultFromEmpty(t *testing.T) {
	_, err := resultFrom(&translate.TranslationsListResponse{}, deTarget(t))
	assert.ErrorIs(t, err, pipeline.ErrNoTranslation)

	_, err = resultFrom(nil, deTarget(t))
	assert.ErrorIs(t, err, pipeline.ErrNoTranslation)
}

func TestServiceErrorFromGoogleAPI(t *testing.T) {
	gerr := &googleapi.Error{
		Code:    http.StatusBadRequest,
		Message: "API key not valid. Please pass a valid API key.",
		Errors:  []googleapi.ErrorItem{{Reason: "badRequest"}},
	}

	err := serviceError("translate", fmt.Errorf("wrapped: %w", gerr))

	var se *pipeline.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "badRequest", se.Code)
	assert.Equal(t, "API key not valid. Please pass a valid API key.", se.Diagnostic())
}

func TestServiceErrorTransport(t *testing.T) {
	err := serviceError("languages", errors.New("dial tcp: no such host"))

	var se *pipeline.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.StatusCode)
	assert.Equal(t, "dial tcp: no such host", se.Diagnostic())
}
