// Package domain holds the static catalog of translation providers and tones
// and the pure gating rules derived from it. Nothing here performs I/O; the
// caller always supplies the current trust level.
package domain

// Kind distinguishes catalog sections.
type Kind string

const (
	KindProvider Kind = "provider"
	KindTone     Kind = "tone"
)

// Entry is a catalog item.
type Entry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	IsPremium bool   `json:"isPremium"`
}

// Provider ids.
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
	ProviderClaude   = "claude"
	ProviderGroq     = "groq"
)

// Tone ids.
const (
	ToneNeutral  = "neutral"
	ToneFormal   = "formal"
	ToneCasual   = "casual"
	ToneAcademic = "academic"
	ToneBusiness = "business"
	ToneCreative = "creative"
)

// DefaultTone is applied when a request or history item has none.
const DefaultTone = ToneNeutral

var providers = []Entry{
	{ID: ProviderOpenAI, Name: "OpenAI", Kind: KindProvider},
	{ID: ProviderDeepSeek, Name: "DeepSeek", Kind: KindProvider},
	{ID: ProviderGemini, Name: "Google Gemini", Kind: KindProvider, IsPremium: true},
	{ID: ProviderClaude, Name: "Anthropic Claude", Kind: KindProvider, IsPremium: true},
	{ID: ProviderGroq, Name: "Groq", Kind: KindProvider, IsPremium: true},
}

var tones = []Entry{
	{ID: ToneNeutral, Name: "Neutral", Kind: KindTone},
	{ID: ToneFormal, Name: "Formal", Kind: KindTone},
	{ID: ToneCasual, Name: "Casual", Kind: KindTone, IsPremium: true},
	{ID: ToneAcademic, Name: "Academic", Kind: KindTone, IsPremium: true},
	{ID: ToneBusiness, Name: "Business", Kind: KindTone, IsPremium: true},
	{ID: ToneCreative, Name: "Creative", Kind: KindTone, IsPremium: true},
}

// Providers returns a copy of the provider catalog.
func Providers() []Entry {
	return append([]Entry(nil), providers...)
}

// Tones returns a copy of the tone catalog.
func Tones() []Entry {
	return append([]Entry(nil), tones...)
}

func find(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// LookupProvider returns the catalog entry for a provider id.
func LookupProvider(id string) (Entry, bool) {
	return find(providers, id)
}

// LookupTone returns the catalog entry for a tone id.
func LookupTone(id string) (Entry, bool) {
	return find(tones, id)
}

// IsKnownProvider reports whether id is in the provider catalog.
func IsKnownProvider(id string) bool {
	_, ok := LookupProvider(id)
	return ok
}

// IsKnownTone reports whether id is in the tone catalog.
func IsKnownTone(id string) bool {
	_, ok := LookupTone(id)
	return ok
}
