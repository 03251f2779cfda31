package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names accepted by the *_PROVIDER settings
const (
	ProviderAzure      = "azure"
	ProviderOpenAI     = "openai"
	ProviderGoogle     = "google"
	ProviderElevenLabs = "elevenlabs"
	ProviderStub       = "stub"
)

// Audio output modes accepted by AUDIO_OUTPUT
const (
	AudioSpeaker = "speaker"
	AudioFile    = "file"
	AudioS3      = "s3"
	AudioNone    = "none"
)

// Config holds all settings for the caption pipeline binaries
type Config struct {
	Dev bool `yaml:"dev"`

	HTTPAddr           string        `yaml:"http_addr"`
	WorkerHTTPAddr     string        `yaml:"worker_http_addr"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`

	MaxImageDimension   int `yaml:"max_image_dimension"`
	MaxLanguageAttempts int `yaml:"max_language_attempts"` // 0 = keep asking

	Vision     VisionConfig     `yaml:"vision"`
	Translator TranslatorConfig `yaml:"translator"`
	Speech     SpeechConfig     `yaml:"speech"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Google     GoogleConfig     `yaml:"google"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Audio      AudioConfig      `yaml:"audio"`
	S3         S3Config         `yaml:"s3"`
	Content    ContentConfig    `yaml:"content"`
	DBOS       DBOSConfig       `yaml:"dbos"`

	LedgerDatabaseURL string `yaml:"ledger_database_url"`
}

// VisionConfig selects and configures the captioning service
type VisionConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	Key      string `yaml:"key"`
}

// TranslatorConfig selects and configures the translation service
type TranslatorConfig struct {
	Provider  string `yaml:"provider"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Languages string `yaml:"languages"` // static catalog for providers without a languages endpoint
}

// SpeechConfig selects and configures the text-to-speech service
type SpeechConfig struct {
	Provider string `yaml:"provider"`
	Key      string `yaml:"key"`
	Region   string `yaml:"region"`
	Voice    string `yaml:"voice"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	TTSVoice string `yaml:"tts_voice"`
}

type GoogleConfig struct {
	APIKey string `yaml:"api_key"`
}

type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
}

// AudioConfig controls where synthesized speech goes
type AudioConfig struct {
	Output string `yaml:"output"`
	Dir    string `yaml:"dir"`
}

type S3Config struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	UseSSL        bool   `yaml:"use_ssl"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// ContentConfig locates the simple-content service holding source images
type ContentConfig struct {
	APIURL     string `yaml:"api_url"`
	StorageDir string `yaml:"storage_dir"`
}

// DBOSConfig mirrors dbosruntime.Config
type DBOSConfig struct {
	DatabaseURL        string `yaml:"database_url"`
	AppName            string `yaml:"app_name"`
	QueueName          string `yaml:"queue_name"`
	Concurrency        int    `yaml:"concurrency"`
	StartsPerMinute    int    `yaml:"starts_per_minute"`
	ApplicationVersion string `yaml:"application_version"`
}

// Load reads .env (if present), the optional CONFIG_FILE yaml, then
// environment overrides, and fills defaults
func Load() (*Config, error) {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.WithDefaults()
	return cfg, nil
}

// LoadFile merges a yaml file into c
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment. lookup has the signature of
// os.LookupEnv so tests can pass a map.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.bool("DEV", &c.Dev)
	e.str("HTTP_ADDR", &c.HTTPAddr)
	e.str("WORKER_HTTP_ADDR", &c.WorkerHTTPAddr)
	e.duration("HTTP_TIMEOUT", &c.HTTPTimeout)
	e.int("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	e.int("MAX_IMAGE_DIMENSION", &c.MaxImageDimension)
	e.int("MAX_LANGUAGE_ATTEMPTS", &c.MaxLanguageAttempts)

	e.str("VISION_PROVIDER", &c.Vision.Provider)
	e.str("AI_SERVICE_ENDPOINT", &c.Vision.Endpoint)
	e.str("AI_SERVICE_KEY", &c.Vision.Key)

	e.str("TRANSLATOR_PROVIDER", &c.Translator.Provider)
	e.str("TRANSLATOR_KEY", &c.Translator.Key)
	e.str("TRANSLATOR_REGION", &c.Translator.Region)
	e.str("TRANSLATOR_ENDPOINT", &c.Translator.Endpoint)
	e.str("TRANSLATION_LANGUAGES", &c.Translator.Languages)

	e.str("SPEECH_PROVIDER", &c.Speech.Provider)
	e.str("SPEECH_KEY", &c.Speech.Key)
	e.str("SPEECH_REGION", &c.Speech.Region)
	e.str("SPEECH_VOICE", &c.Speech.Voice)

	e.str("OPENAI_API_KEY", &c.OpenAI.APIKey)
	e.str("OPENAI_BASE_URL", &c.OpenAI.BaseURL)
	e.str("OPENAI_MODEL", &c.OpenAI.Model)
	e.str("OPENAI_TTS_VOICE", &c.OpenAI.TTSVoice)

	e.str("GOOGLE_API_KEY", &c.Google.APIKey)

	e.str("ELEVENLABS_API_KEY", &c.ElevenLabs.APIKey)
	e.str("ELEVENLABS_VOICE_ID", &c.ElevenLabs.VoiceID)

	e.str("AUDIO_OUTPUT", &c.Audio.Output)
	e.str("AUDIO_DIR", &c.Audio.Dir)

	e.str("S3_ENDPOINT", &c.S3.Endpoint)
	e.str("S3_ACCESS_KEY", &c.S3.AccessKey)
	e.str("S3_SECRET_KEY", &c.S3.SecretKey)
	e.str("S3_BUCKET", &c.S3.Bucket)
	e.bool("S3_USE_SSL", &c.S3.UseSSL)
	e.str("S3_PUBLIC_BASE_URL", &c.S3.PublicBaseURL)

	e.str("CONTENT_API_URL", &c.Content.APIURL)
	e.str("STORAGE_DIR", &c.Content.StorageDir)

	e.str("DBOS_SYSTEM_DATABASE_URL", &c.DBOS.DatabaseURL)
	e.str("DBOS_APP_NAME", &c.DBOS.AppName)
	e.str("DBOS_QUEUE_NAME", &c.DBOS.QueueName)
	e.int("DBOS_CONCURRENCY", &c.DBOS.Concurrency)
	e.int("DBOS_STARTS_PER_MINUTE", &c.DBOS.StartsPerMinute)
	e.str("DBOS_APPLICATION_VERSION", &c.DBOS.ApplicationVersion)

	e.str("LEDGER_DATABASE_URL", &c.LedgerDatabaseURL)

	return e.err
}

// WithDefaults fills in default values for optional fields
func (c *Config) WithDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.WorkerHTTPAddr == "" {
		c.WorkerHTTPAddr = ":8081"
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.MaxImageDimension == 0 {
		c.MaxImageDimension = 2048
	}

	if c.Vision.Provider == "" {
		c.Vision.Provider = ProviderAzure
	}
	if c.Translator.Provider == "" {
		c.Translator.Provider = ProviderAzure
	}
	if c.Translator.Endpoint == "" {
		c.Translator.Endpoint = "https://api.cognitive.microsofttranslator.com"
	}
	if c.Speech.Provider == "" {
		c.Speech.Provider = ProviderAzure
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = "en-US-AriaNeural"
	}

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.TTSVoice == "" {
		c.OpenAI.TTSVoice = "alloy"
	}
	if c.ElevenLabs.VoiceID == "" {
		c.ElevenLabs.VoiceID = "21m00Tcm4TlvDq8ikWAM"
	}

	if c.Audio.Dir == "" {
		c.Audio.Dir = "./audio"
	}
	if c.Content.StorageDir == "" {
		c.Content.StorageDir = "./dev-data"
	}

	if c.DBOS.AppName == "" {
		c.DBOS.AppName = "caption-pipeline"
	}
	if c.DBOS.QueueName == "" {
		c.DBOS.QueueName = "default"
	}
	if c.DBOS.Concurrency == 0 {
		c.DBOS.Concurrency = 4
	}
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}

func (e *envReader) fail(key, value string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}
