// Package language turns container language tags into filesystem-safe
// names for subtitle files and audio rendition directories.
package language

import (
	"fmt"
	"strings"
	"sync"
)

// names maps the common ISO 639 tags to readable English names.
// Anything outside this table keeps its (sanitized) tag.
var names = map[string]string{
	"eng": "english", "en": "english",
	"spa": "spanish", "es": "spanish",
	"fre": "french", "fr": "french",
	"ger": "german", "de": "german",
	"ita": "italian", "it": "italian",
	"por": "portuguese", "pt": "portuguese",
	"rus": "russian", "ru": "russian",
	"chi": "chinese", "zh": "chinese",
	"jpn": "japanese", "ja": "japanese",
	"kor": "korean", "ko": "korean",
	"ara": "arabic", "ar": "arabic",
	"hin": "hindi", "hi": "hindi",
}

// Normalize maps a language tag to its readable name and sanitizes it
// for filename use. Unknown tags pass through sanitization unchanged;
// an empty result falls back to "english".
func Normalize(tag string) string {
	cleaned := strings.ToLower(strings.TrimSpace(tag))
	if name, ok := names[cleaned]; ok {
		cleaned = name
	}
	if s := sanitize(cleaned); s != "" {
		return s
	}
	return "english"
}

// Sanitize cleans a raw tag without mapping it to a readable name,
// for directory suffixes like "audio_eng". Empty tags become "und".
func Sanitize(tag string) string {
	if s := sanitize(strings.ToLower(strings.TrimSpace(tag))); s != "" {
		return s
	}
	return "und"
}

// sanitize keeps [a-z0-9_-] and replaces every other rune with '_'.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Disambiguator hands out unique variants of repeated names within one
// pipeline run: the first claim of a name returns it bare, later claims
// get "_1", "_2", … appended. All methods are goroutine-safe.
type Disambiguator struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewDisambiguator creates an empty resolver.
func NewDisambiguator() *Disambiguator {
	return &Disambiguator{counts: make(map[string]int)}
}

// Claim reserves the next free variant of name and returns it.
func (d *Disambiguator) Claim(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.counts[name]
	d.counts[name] = n + 1
	if n == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, n)
}
