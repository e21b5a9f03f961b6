package lang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"punctuation only", "... -- !!", 0},
		{"latin with apostrophe", "Hello, world! It's 2024.", 4},
		{"typographic apostrophe", "don’t stop", 2},
		{"cjk counts per character", "中文字", 3},
		{"mixed", "Go 语言", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CountWords(tt.text))
		})
	}
}

func TestDetect_Scripts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{"chinese", "这是一个用于测试的中文句子。", "zh"},
		{"japanese", "これは日本語の文章です。漢字も少し含まれています。", "ja"},
		{"korean", "이것은 한국어 문장입니다.", "ko"},
		{"arabic", "هذه جملة باللغة العربية للاختبار", "ar"},
		{"hebrew", "זהו משפט בעברית לבדיקה", "he"},
		{"greek", "Αυτή είναι μια ελληνική πρόταση", "el"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Detect(tt.text).Lang)
		})
	}
}

func TestDetect_LatinRefined(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("The quick brown fox jumps over the lazy dog while the children watch from the window. ", 5)
	res := Detect(text)
	assert.Equal(t, "en", res.Lang)
	assert.Equal(t, CountWords(text), res.WordCount)
}

func TestDetect_NoLetters(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Detect("").Lang)
	assert.Empty(t, Detect("12345 !!! ---").Lang)
	assert.Equal(t, 1, Detect("12345 !!! ---").WordCount)
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "日本", truncateRunes("日本語", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
}
