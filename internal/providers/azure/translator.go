package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const translatorAPIVersion = "3.0"

// TranslatorClient talks to Azure AI Translator v3. It serves both the
// language catalog and translation.
type TranslatorClient struct {
	endpoint   string
	key        string
	region     string
	httpClient *http.Client
}

// NewTranslatorClient creates a translator client. endpoint is usually
// https://api.cognitive.microsofttranslator.com
func NewTranslatorClient(endpoint, key, region string, httpClient *http.Client) *TranslatorClient {
	return &TranslatorClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		region:     region,
		httpClient: defaultHTTPClient(httpClient),
	}
}

type languagesResponse struct {
	Translation map[string]struct {
		Name       string `json:"name"`
		NativeName string `json:"nativeName"`
		Dir        string `json:"dir"`
	} `json:"translation"`
}

// Languages lists the codes supported for translation
func (c *TranslatorClient) Languages(ctx context.Context) ([]pipeline.Language, error) {
	u := fmt.Sprintf("%s/languages?api-version=%s&scope=translation", c.endpoint, translatorAPIVersion)

	req, err := newJSONRequest(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	body, err := do(c.httpClient, serviceTranslator, "languages", req)
	if err != nil {
		return nil, err
	}

	var result languagesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &pipeline.ServiceError{Service: serviceTranslator, Op: "languages", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	langs := make([]pipeline.Language, 0, len(result.Translation))
	for code, l := range result.Translation {
		langs = append(langs, pipeline.Language{Code: code, Name: l.Name, NativeName: l.NativeName})
	}
	return langs, nil
}

type translateItem struct {
	Text string `json:"Text"`
}

type translateResponse []struct {
	DetectedLanguage *struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

// Translate translates text into target. Only the first entry of the
// response is used.
func (c *TranslatorClient) Translate(ctx context.Context, text string, target languages.Target) (*pipeline.TranslationResult, error) {
	q := url.Values{}
	q.Set("api-version", translatorAPIVersion)
	q.Set("to", target.Code())
	u := fmt.Sprintf("%s/translate?%s", c.endpoint, q.Encode())

	req, err := newJSONRequest(ctx, http.MethodPost, u, []translateItem{{Text: text}})
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	body, err := do(c.httpClient, serviceTranslator, "translate", req)
	if err != nil {
		return nil, err
	}

	var result translateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &pipeline.ServiceError{Service: serviceTranslator, Op: "translate", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if len(result) == 0 || len(result[0].Translations) == 0 {
		return nil, pipeline.ErrNoTranslation
	}

	out := &pipeline.TranslationResult{
		TranslatedText: result[0].Translations[0].Text,
		TargetLanguage: target.Code(),
	}
	if result[0].DetectedLanguage != nil {
		out.DetectedSourceLanguage = result[0].DetectedLanguage.Language
	}
	return out, nil
}

func (c *TranslatorClient) authorize(req *http.Request) {
	if c.key != "" {
		req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	}
	if c.region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", c.region)
	}
}
