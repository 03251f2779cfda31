// Package google implements the language catalog and translation
// capabilities with Google Cloud Translation v2.
package google

import (
	"context"
	"errors"
	"fmt"
	"html"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"

	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

const serviceName = "google-translate"

// TranslatorClient wraps the Translation v2 service
type TranslatorClient struct {
	svc *translate.Service
}

// NewTranslatorClient authenticates with an API key
func NewTranslatorClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*TranslatorClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate service: %w", err)
	}
	return &TranslatorClient{svc: svc}, nil
}

// Languages lists the supported target languages with English names
func (c *TranslatorClient) Languages(ctx context.Context) ([]pipeline.Language, error) {
	resp, err := c.svc.Languages.List().Target("en").Context(ctx).Do()
	if err != nil {
		return nil, serviceError("languages", err)
	}
	return languagesFrom(resp), nil
}

// Translate translates text into target, letting the service detect the source
func (c *TranslatorClient) Translate(ctx context.Context, text string, target languages.Target) (*pipeline.TranslationResult, error) {
	resp, err := c.svc.Translations.List([]string{text}, target.Code()).Format("text").Context(ctx).Do()
	if err != nil {
		return nil, serviceError("translate", err)
	}
	return resultFrom(resp, target)
}

func languagesFrom(resp *translate.LanguagesListResponse) []pipeline.Language {
	if resp == nil {
		return nil
	}
	langs := make([]pipeline.Language, 0, len(resp.Languages))
	for _, l := range resp.Languages {
		if l == nil {
			continue
		}
		langs = append(langs, pipeline.Language{Code: l.Language, Name: l.Name})
	}
	return langs
}

func resultFrom(resp *translate.TranslationsListResponse, target languages.Target) (*pipeline.TranslationResult, error) {
	if resp == nil || len(resp.Translations) == 0 || resp.Translations[0] == nil {
		return nil, pipeline.ErrNoTranslation
	}

	first := resp.Translations[0]
	return &pipeline.TranslationResult{
		TranslatedText:         html.UnescapeString(first.TranslatedText),
		DetectedSourceLanguage: first.DetectedSourceLanguage,
		TargetLanguage:         target.Code(),
	}, nil
}

func serviceError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		se := &pipeline.ServiceError{
			Service:    serviceName,
			Op:         op,
			StatusCode: gerr.Code,
			Message:    gerr.Message,
			Err:        err,
		}
		if len(gerr.Errors) > 0 {
			se.Code = gerr.Errors[0].Reason
		}
		return se
	}
	return &pipeline.ServiceError{Service: serviceName, Op: op, Err: err}
}
