package cache

import (
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FileExt is the suffix of every cold store file.
const FileExt = ".mp3.gz"

// Key is the hex encoded 128-bit digest identifying a cached phrase.
type Key string

// Normalize trims and case folds text. Two texts share a cache key exactly
// when their normalized forms are equal.
func Normalize(text string) string {
	// cases.Caser is stateful, so one is built per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(text))
}

// KeyFor returns the cache key for text. Letter case and surrounding
// whitespace do not contribute to the key; everything else does.
func KeyFor(text string) Key {
	sum := md5.Sum([]byte(Normalize(text))) //nolint:gosec
	return Key(hex.EncodeToString(sum[:]))
}

// FileName returns the cold store file name for the key.
func (k Key) FileName() string {
	return string(k) + FileExt
}

// keyFromFileName is the inverse of FileName.
func keyFromFileName(name string) (Key, bool) {
	if !strings.HasSuffix(name, FileExt) {
		return "", false
	}
	k := strings.TrimSuffix(name, FileExt)
	if len(k) != hex.EncodedLen(md5.Size) {
		return "", false
	}
	if _, err := hex.DecodeString(k); err != nil {
		return "", false
	}
	return Key(k), true
}
