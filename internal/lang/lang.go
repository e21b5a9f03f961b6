// Package lang guesses the language of extracted article text and counts its
// words.
package lang

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
)

// sampleRunes bounds the text inspected by Detect.
const sampleRunes = 10000

// scriptPattern maps a language tag to the script that identifies it.
// Scripts shared by several languages are refined with whatlanggo.
type scriptPattern struct {
	lang   string
	rx     *regexp.Regexp
	refine bool
}

var scripts = []scriptPattern{
	{lang: "zh", rx: regexp.MustCompile(`\p{Han}`)},
	{lang: "ja", rx: regexp.MustCompile(`[\p{Hiragana}\p{Katakana}]`)},
	{lang: "ko", rx: regexp.MustCompile(`\p{Hangul}`)},
	{lang: "ru", rx: regexp.MustCompile(`\p{Cyrillic}`), refine: true},
	{lang: "ar", rx: regexp.MustCompile(`\p{Arabic}`)},
	{lang: "he", rx: regexp.MustCompile(`\p{Hebrew}`)},
	{lang: "el", rx: regexp.MustCompile(`\p{Greek}`)},
	{lang: "th", rx: regexp.MustCompile(`\p{Thai}`)},
	{lang: "hi", rx: regexp.MustCompile(`\p{Devanagari}`)},
	{lang: "en", rx: regexp.MustCompile(`\p{Latin}`), refine: true},
}

// rxWord matches one word: a single CJK character, or a run of letters,
// marks and digits with inner apostrophes.
var rxWord = regexp.MustCompile(`[\p{Han}\p{Hiragana}\p{Katakana}]|[\p{L}\p{M}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// Result is the outcome of Detect.
type Result struct {
	// Lang is an ISO 639-1 tag, or "" when the text has no letters.
	Lang string
	// Reliable is set when the script alone identifies the language or
	// whatlanggo confirmed the guess.
	Reliable  bool
	WordCount int
}

// CountWords returns the number of words in text.
func CountWords(text string) int {
	return len(rxWord.FindAllStringIndex(text, -1))
}

// Detect picks the script with the most characters in text and maps it to a
// language. Latin and Cyrillic text is refined with whatlanggo when its guess
// is reliable.
func Detect(text string) Result {
	res := Result{WordCount: CountWords(text)}
	sample := truncateRunes(strings.TrimSpace(text), sampleRunes)
	if sample == "" {
		return res
	}

	counts := make(map[string]int, len(scripts))
	best := -1
	for i, s := range scripts {
		counts[s.lang] = len(s.rx.FindAllStringIndex(sample, -1))
		if counts[s.lang] > 0 && (best < 0 || counts[s.lang] > counts[scripts[best].lang]) {
			best = i
		}
	}
	if best < 0 {
		return res
	}

	winner := scripts[best]
	// Japanese mixes kanji with kana, so any kana tips a Han majority.
	if winner.lang == "zh" && counts["ja"] > 0 {
		winner = scripts[1]
	}
	res.Lang = winner.lang
	if !winner.refine {
		res.Reliable = true
		return res
	}

	info := whatlanggo.Detect(sample)
	if !info.IsReliable() {
		return res
	}
	if code := info.Lang.Iso6391(); code != "" {
		res.Lang = code
		res.Reliable = true
	}
	return res
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
