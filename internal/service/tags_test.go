package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Django, python, DJANGO", []string{"Django", "python"}},
		{"", []string{}},
		{" , ,", []string{}},
		{"go,Go,GO,rust", []string{"go", "rust"}},
		{"  spaced out  ,x", []string{"spaced out", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.raw))
		})
	}
}

func TestTagList_UnmarshalJSON(t *testing.T) {
	var in struct {
		Tags *TagList `json:"tags"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"tags": "a, B, b"}`), &in))
	assert.Equal(t, TagList{"a", "B"}, *in.Tags)

	in.Tags = nil
	require.NoError(t, json.Unmarshal([]byte(`{"tags": ["x", " y ", "X"]}`), &in))
	assert.Equal(t, TagList{"x", "y"}, *in.Tags)

	in.Tags = nil
	require.NoError(t, json.Unmarshal([]byte(`{"tags": ["c, c++", "Go", "", "go"]}`), &in))
	assert.Equal(t, TagList{"c, c++", "Go"}, *in.Tags, "array elements are never split")

	in.Tags = nil
	require.NoError(t, json.Unmarshal([]byte(`{}`), &in))
	assert.Nil(t, in.Tags)

	assert.Error(t, json.Unmarshal([]byte(`{"tags": 5}`), &in))
}
