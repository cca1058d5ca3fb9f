package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]any
	}{
		{
			name: "plain object",
			raw:  `{"a": 1, "b": "x"}`,
			want: map[string]any{"a": float64(1), "b": "x"},
		},
		{
			name: "json fence",
			raw:  "```json\n{\"a\": 1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"a\": 1}\n```",
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "object surrounded by prose",
			raw:  `Sure! Here are the scores: {"scores": {"a": 1}} Hope that helps.`,
			want: map[string]any{"scores": map[string]any{"a": float64(1)}},
		},
		{
			name: "object inside array recovered",
			raw:  `[{"a": 1}]`,
			want: map[string]any{"a": float64(1)},
		},
		{
			name: "plain prose",
			raw:  "I could not produce JSON for this request.",
			want: map[string]any{},
		},
		{
			name: "null",
			raw:  "null",
			want: map[string]any{},
		},
		{
			name: "empty string",
			raw:  "",
			want: map[string]any{},
		},
		{
			name: "unbalanced braces",
			raw:  `{"a": 1`,
			want: map[string]any{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractObject(tc.raw)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name  string
		value any
		max   int
		want  []string
	}{
		{
			name:  "trims and drops empties",
			value: []any{" go ", "", "sql", 3, true},
			max:   10,
			want:  []string{"go", "sql"},
		},
		{
			name:  "caps at max",
			value: []any{"a", "b", "c", "d"},
			max:   2,
			want:  []string{"a", "b"},
		},
		{
			name:  "non list",
			value: map[string]any{"a": "b"},
			max:   5,
			want:  nil,
		},
		{
			name:  "nil",
			value: nil,
			max:   5,
			want:  nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StringList(tc.value, tc.max))
		})
	}
}

func TestStringMap(t *testing.T) {
	got := StringMap(map[string]any{
		"uid-1": "  solid backend match  ",
		"uid-2": 42,
		"  ":    "blank key",
		"uid-3": "   ",
	}, 10)
	assert.Equal(t, map[string]string{"uid-1": "solid backend match"}, got)

	got = StringMap("not an object", 10)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = StringMap(map[string]any{"a": "1", "b": "2", "c": "3"}, 2)
	assert.Len(t, got, 2)
}

func TestFloatMap(t *testing.T) {
	got := FloatMap(map[string]any{
		"a": 1.5,
		"b": "2.5",
		"c": " 88 ",
		"d": "not a number",
		"e": true,
		"":  9.0,
	}, 10)
	assert.Equal(t, map[string]float64{"a": 1.5, "b": 2.5, "c": 88}, got)

	got = FloatMap([]any{1.0}, 10)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = FloatMap(map[string]any{"a": 1.0, "b": 2.0, "c": 3.0}, 2)
	assert.Len(t, got, 2)
}
