package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean_Basics(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    " \t\n  ",
			expected: "",
		},
		{
			name:     "korean text preserved",
			input:    "한국어 형태소 분석기는 텍스트를 처리합니다.",
			expected: "한국어 형태소 분석기는 텍스트를 처리합니다.",
		},
		{
			name:     "jamo and mixed script preserved",
			input:    "ㅋㅋ RAG 시스템 v2.1",
			expected: "ㅋㅋ RAG 시스템 v2.1",
		},
		{
			name:     "whitespace runs collapsed",
			input:    "첫째   둘째\n\n셋째\t넷째",
			expected: "첫째 둘째 셋째 넷째",
		},
		{
			name:     "control characters stripped",
			input:    "before\x00\x01\x08after\x7f",
			expected: "beforeafter",
		},
		{
			name:     "disallowed symbols become single spaces",
			input:    "가격→3,000원 ★특가★",
			expected: "가격 3,000원 특가",
		},
		{
			name:     "allowed punctuation kept",
			input:    `조항 (1): "내용", [참고] {메모} 50%-ish!`,
			expected: `조항 (1): "내용", [참고] {메모} 50%-ish!`,
		},
		{
			name:     "cjk and kana kept",
			input:    "漢字 ひらがな カタカナ",
			expected: "漢字 ひらがな カタカナ",
		},
		{
			name:     "bom removed",
			input:    "\uFEFF문서 시작",
			expected: "문서 시작",
		},
		{
			name:     "edges trimmed",
			input:    "  가운데 텍스트  ",
			expected: "가운데 텍스트",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Clean(tc.input))
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	samples := []string{
		"",
		"한국어 텍스트 처리 파이프라인",
		"Mixed 한영 content with  spacing\nand lines",
		"symbols ▲▼◆ between\x01 control\x1f chars",
		"\uFEFF  leading junk →→→ trailing  ",
	}

	for _, sample := range samples {
		once := Clean(sample)
		assert.Equal(t, once, Clean(once), "input %q", sample)
	}
}

func TestClean_RepairsCP949(t *testing.T) {
	// "한글" encoded as CP949, which is invalid UTF-8 as-is.
	raw := string([]byte{0xc7, 0xd1, 0xb1, 0xdb})
	require.Equal(t, "한글", Clean(raw))
}

func TestClean_ReplacesUndecodableBytes(t *testing.T) {
	// Invalid in both UTF-8 and CP949; the replacement rune is then
	// spaced out by the allow-list.
	raw := "ok" + string([]byte{0xff, 0xff}) + "still ok"
	cleaned := Clean(raw)
	assert.NotContains(t, cleaned, "�")
	assert.Contains(t, cleaned, "ok")
	assert.Contains(t, cleaned, "still ok")
}

func TestIsGarbled(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		garbled bool
	}{
		{
			name:    "empty is garbled",
			input:   "",
			garbled: true,
		},
		{
			name:    "clean korean sentence",
			input:   "정상적인 한국어 문장입니다",
			garbled: false,
		},
		{
			name:    "clean english sentence",
			input:   "perfectly normal output",
			garbled: false,
		},
		{
			name:    "symbol noise",
			input:   "◆◆◆★★★▲▲▲",
			garbled: true,
		},
		{
			name:    "mostly replacement runes",
			input:   strings.Repeat("�", 20) + "ab",
			garbled: true,
		},
		{
			name:    "exactly at threshold is not garbled",
			input:   "abc" + strings.Repeat("※", 7),
			garbled: false,
		},
		{
			name:    "just below threshold is garbled",
			input:   "ab" + strings.Repeat("※", 8),
			garbled: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.garbled, IsGarbled(tc.input))
		})
	}
}

func TestIsGarbledAt_CustomThreshold(t *testing.T) {
	// Half recognisable characters.
	text := "abcde" + strings.Repeat("☆", 5)
	assert.False(t, IsGarbledAt(text, 0.30))
	assert.True(t, IsGarbledAt(text, 0.60))
}

func TestValidCharRatio(t *testing.T) {
	assert.Equal(t, 0.0, ValidCharRatio(""))
	assert.Equal(t, 1.0, ValidCharRatio("한글과abc123"))
	assert.InDelta(t, 0.5, ValidCharRatio("ab☆☆"), 1e-9)
}
