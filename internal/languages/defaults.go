package languages

import (
	"context"
	"strings"

	"github.com/tendant/simple-caption-pipeline/pkg/pipeline"
)

// commonNames maps frequent codes to English names for static catalogs
var commonNames = map[string]string{
	"ar":      "Arabic",
	"de":      "German",
	"en":      "English",
	"es":      "Spanish",
	"fr":      "French",
	"hi":      "Hindi",
	"it":      "Italian",
	"ja":      "Japanese",
	"ko":      "Korean",
	"nl":      "Dutch",
	"pl":      "Polish",
	"pt":      "Portuguese",
	"ru":      "Russian",
	"sv":      "Swedish",
	"tr":      "Turkish",
	"uk":      "Ukrainian",
	"zh-Hans": "Chinese Simplified",
}

// DefaultCodes is used by translators that cannot list their own languages
const DefaultCodes = "ar,de,en,es,fr,hi,it,ja,ko,nl,pl,pt,ru,sv,tr,uk,zh-Hans"

// StaticFetcher serves a fixed language list
type StaticFetcher struct {
	langs []pipeline.Language
}

// NewStaticFetcher parses a comma separated code list such as "en,fr,de"
func NewStaticFetcher(codes string) *StaticFetcher {
	var langs []pipeline.Language
	for _, code := range strings.Split(codes, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		langs = append(langs, pipeline.Language{Code: code, Name: commonNames[code]})
	}
	return &StaticFetcher{langs: langs}
}

// Languages implements Fetcher
func (f *StaticFetcher) Languages(ctx context.Context) ([]pipeline.Language, error) {
	out := make([]pipeline.Language, len(f.langs))
	copy(out, f.langs)
	return out, nil
}
