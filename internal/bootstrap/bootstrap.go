// Package bootstrap turns a Config into the concrete caption, catalog,
// translation and speech services used by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/tendant/simple-caption-pipeline/internal/config"
	"github.com/tendant/simple-caption-pipeline/internal/languages"
	"github.com/tendant/simple-caption-pipeline/internal/logging"
	"github.com/tendant/simple-caption-pipeline/internal/providers/azure"
	"github.com/tendant/simple-caption-pipeline/internal/providers/elevenlabs"
	"github.com/tendant/simple-caption-pipeline/internal/providers/google"
	"github.com/tendant/simple-caption-pipeline/internal/providers/openai"
	"github.com/tendant/simple-caption-pipeline/internal/providers/stub"
	"github.com/tendant/simple-caption-pipeline/internal/speech"
	"github.com/tendant/simple-caption-pipeline/internal/workflows"
)

// Needs selects which capabilities a binary uses. Unused ones are not
// built, so their credentials are not required.
type Needs struct {
	Caption   bool
	Translate bool
	Speech    bool

	// Speaker plays audio for the "speaker" output. Binaries that leave
	// it nil reject that output.
	Speaker speech.Sink
	// DefaultAudio is the output used when AUDIO_OUTPUT is unset.
	// Empty means none.
	DefaultAudio string
}

// audioOutput resolves the configured output against the binary's default
func (n Needs) audioOutput(cfg *config.Config) string {
	switch {
	case cfg.Audio.Output != "":
		return cfg.Audio.Output
	case n.DefaultAudio != "":
		return n.DefaultAudio
	default:
		return config.AudioNone
	}
}

// Components holds the services built from a Config
type Components struct {
	Captioner   workflows.CaptionProvider
	Catalog     *languages.Store
	Translator  workflows.Translator
	Synthesizer *speech.Service
	AudioOutput string

	cfg    *config.Config
	logger *zap.SugaredLogger
}

// Build constructs the capabilities selected by needs
func Build(ctx context.Context, cfg *config.Config, needs Needs, logger *zap.SugaredLogger) (*Components, error) {
	logger = logging.OrNop(logger)
	b := &builder{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
	c := &Components{cfg: cfg, logger: logger}

	if needs.Caption {
		captioner, err := b.captioner()
		if err != nil {
			return nil, fmt.Errorf("vision: %w", err)
		}
		c.Captioner = captioner
		logger.Infof("Vision provider: %s", cfg.Vision.Provider)
	}

	if needs.Translate {
		translator, fetcher, err := b.translator(ctx)
		if err != nil {
			return nil, fmt.Errorf("translator: %w", err)
		}
		c.Translator = translator
		c.Catalog = languages.NewStore(fetcher)
		logger.Infof("Translator provider: %s", cfg.Translator.Provider)
	}

	if needs.Speech {
		client, err := b.speechClient()
		if err != nil {
			return nil, fmt.Errorf("speech: %w", err)
		}
		output := needs.audioOutput(cfg)
		sink, err := b.sink(ctx, output, needs.Speaker)
		if err != nil {
			return nil, fmt.Errorf("audio output: %w", err)
		}
		c.Synthesizer = speech.NewService(client, sink, logger)
		c.AudioOutput = output
		logger.Infof("Speech provider: %s (audio output: %s)", cfg.Speech.Provider, output)
	}

	return c, nil
}

// Services returns the workflow service bundle for these components
func (c *Components) Services() *workflows.Services {
	svc := &workflows.Services{
		Captioner:         c.Captioner,
		Translator:        c.Translator,
		Logger:            c.logger,
		MaxImageDimension: c.cfg.MaxImageDimension,
	}
	if c.Catalog != nil {
		svc.Catalog = c.Catalog
	}
	if c.Synthesizer != nil {
		svc.Synthesizer = c.Synthesizer
	}
	return svc
}

type builder struct {
	cfg        *config.Config
	logger     *zap.SugaredLogger
	httpClient *http.Client
	openai     *goopenai.Client
}

func (b *builder) openAIClient() (*goopenai.Client, error) {
	if b.cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if b.openai == nil {
		b.openai = openai.NewClient(b.cfg.OpenAI.APIKey, b.cfg.OpenAI.BaseURL, b.httpClient)
	}
	return b.openai, nil
}

func (b *builder) captioner() (workflows.CaptionProvider, error) {
	v := b.cfg.Vision
	switch v.Provider {
	case config.ProviderAzure:
		if v.Endpoint == "" || v.Key == "" {
			return nil, fmt.Errorf("AI_SERVICE_ENDPOINT and AI_SERVICE_KEY are required")
		}
		return azure.NewVisionClient(v.Endpoint, v.Key, b.httpClient), nil
	case config.ProviderOpenAI:
		client, err := b.openAIClient()
		if err != nil {
			return nil, err
		}
		return openai.NewVisionClient(client, b.cfg.OpenAI.Model), nil
	case config.ProviderStub:
		return stub.NewClient(b.cfg.Translator.Languages), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", v.Provider)
	}
}

// translator returns the translation client and the fetcher for its catalog.
// Providers without a languages endpoint use the configured static list.
func (b *builder) translator(ctx context.Context) (workflows.Translator, languages.Fetcher, error) {
	t := b.cfg.Translator
	static := func() languages.Fetcher {
		codes := t.Languages
		if codes == "" {
			codes = languages.DefaultCodes
		}
		return languages.NewStaticFetcher(codes)
	}

	switch t.Provider {
	case config.ProviderAzure:
		if t.Key == "" {
			return nil, nil, fmt.Errorf("TRANSLATOR_KEY is required")
		}
		client := azure.NewTranslatorClient(t.Endpoint, t.Key, t.Region, b.httpClient)
		if t.Languages != "" {
			return client, static(), nil
		}
		return client, client, nil
	case config.ProviderGoogle:
		if b.cfg.Google.APIKey == "" {
			return nil, nil, fmt.Errorf("GOOGLE_API_KEY is required")
		}
		client, err := google.NewTranslatorClient(ctx, b.cfg.Google.APIKey)
		if err != nil {
			return nil, nil, err
		}
		if t.Languages != "" {
			return client, static(), nil
		}
		return client, client, nil
	case config.ProviderOpenAI:
		client, err := b.openAIClient()
		if err != nil {
			return nil, nil, err
		}
		return openai.NewTranslatorClient(client, b.cfg.OpenAI.Model), static(), nil
	case config.ProviderStub:
		client := stub.NewClient(t.Languages)
		return client, client, nil
	default:
		return nil, nil, fmt.Errorf("unsupported provider %q", t.Provider)
	}
}

func (b *builder) speechClient() (speech.Client, error) {
	s := b.cfg.Speech
	switch s.Provider {
	case config.ProviderAzure:
		if s.Key == "" || s.Region == "" {
			return nil, fmt.Errorf("SPEECH_KEY and SPEECH_REGION are required")
		}
		return azure.NewSpeechClient(s.Region, s.Key, s.Voice, "", b.httpClient), nil
	case config.ProviderOpenAI:
		client, err := b.openAIClient()
		if err != nil {
			return nil, err
		}
		return openai.NewSpeechClient(client, b.cfg.OpenAI.TTSVoice), nil
	case config.ProviderElevenLabs:
		if b.cfg.ElevenLabs.APIKey == "" {
			return nil, fmt.Errorf("ELEVENLABS_API_KEY is required")
		}
		return elevenlabs.NewClient(b.cfg.ElevenLabs.APIKey, b.cfg.ElevenLabs.VoiceID, "", b.httpClient), nil
	case config.ProviderStub:
		return stub.NewClient(b.cfg.Translator.Languages), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", s.Provider)
	}
}

func (b *builder) sink(ctx context.Context, output string, speaker speech.Sink) (speech.Sink, error) {
	a := b.cfg.Audio
	switch output {
	case config.AudioSpeaker:
		if speaker == nil {
			return nil, fmt.Errorf("speaker output is not available in this binary")
		}
		return speaker, nil
	case config.AudioFile:
		sink, err := speech.NewFileSink(a.Dir, b.logger)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.AudioS3:
		s3 := b.cfg.S3
		sink, err := speech.NewS3Sink(ctx, speech.S3Config{
			Endpoint:      s3.Endpoint,
			AccessKey:     s3.AccessKey,
			SecretKey:     s3.SecretKey,
			Bucket:        s3.Bucket,
			UseSSL:        s3.UseSSL,
			PublicBaseURL: s3.PublicBaseURL,
		}, b.logger)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.AudioNone:
		return speech.NopSink{}, nil
	default:
		return nil, fmt.Errorf("unsupported output %q", output)
	}
}
