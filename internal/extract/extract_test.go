package extract

import (
	"testing"

	"netgraphx/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock(t *testing.T) {
	t.Run("returns trimmed block between markers", func(t *testing.T) {
		body := `{"R1": ["SW1"]}`
		got, err := Block("Here you go:\n```json\n" + body + "\n``` Let me know if you need more.")

		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("uses the first block only", func(t *testing.T) {
		got, err := Block("```json\n{\"a\": []}\n```\n```json\n{\"b\": []}\n```")

		require.NoError(t, err)
		assert.Equal(t, `{"a": []}`, got)
	})

	t.Run("keeps inner whitespace", func(t *testing.T) {
		got, err := Block("```json\n  {\n  \"a\": []\n}  \n```")

		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": []\n}", got)
	})

	t.Run("no block", func(t *testing.T) {
		_, err := Block("no block here")
		assert.ErrorIs(t, err, ErrNoBlock)
	})

	t.Run("plain fence is not a json block", func(t *testing.T) {
		_, err := Block("```\n{}\n```")
		assert.ErrorIs(t, err, ErrNoBlock)
	})

	t.Run("unterminated", func(t *testing.T) {
		_, err := Block("```json\nunterminated")
		assert.ErrorIs(t, err, ErrUnterminated)
	})

	t.Run("closing marker must follow the opening one", func(t *testing.T) {
		_, err := Block("```json")
		assert.ErrorIs(t, err, ErrUnterminated)
	})

	t.Run("empty block", func(t *testing.T) {
		got, err := Block("```json```")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})
}

func TestAdjacency(t *testing.T) {
	answer := "Sure! Based on the configuration:\n\n```json\n" +
		`{"R1": ["Server1", "SW1"], "Server1": ["R1"], "SW1": ["R1"]}` +
		"\n```\n\nThe router connects both devices."

	adj, err := Adjacency(answer)
	require.NoError(t, err)

	assert.Equal(t, graph.Adjacency{
		"R1":      {"Server1", "SW1"},
		"Server1": {"R1"},
		"SW1":     {"R1"},
	}, adj)
}

func TestAdjacencyErrors(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       error
		extraction bool
	}{
		{"missing block", "I could not determine the topology.", ErrNoBlock, true},
		{"unterminated", "```json\n{\"R1\": []}", ErrUnterminated, true},
		{"not json", "```json\nR1 -> SW1\n```", ErrMalformed, false},
		{"list instead of map", "```json\n[\"R1\", \"SW1\"]\n```", ErrMalformed, false},
		{"scalar neighbors", "```json\n{\"R1\": \"SW1\"}\n```", ErrMalformed, false},
		{"numeric neighbor", "```json\n{\"R1\": [1]}\n```", ErrMalformed, false},
		{"empty block", "```json\n\n```", ErrMalformed, false},
		{"null document", "```json\nnull\n```", ErrMalformed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Adjacency(tt.text)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.extraction, IsExtractionError(err))
		})
	}
}

func TestParseAdjacency(t *testing.T) {
	t.Run("null neighbors become empty", func(t *testing.T) {
		adj, err := ParseAdjacency(`{"PC1": null}`)
		require.NoError(t, err)
		assert.Equal(t, []string{}, adj["PC1"])
	})

	t.Run("single quoted literal", func(t *testing.T) {
		adj, err := ParseAdjacency(`{'R1': ['SW1', 'PC1'], 'SW1': ['R1']}`)
		require.NoError(t, err)
		assert.Equal(t, graph.Adjacency{"R1": {"SW1", "PC1"}, "SW1": {"R1"}}, adj)
	})

	t.Run("duplicate keys keep the last value", func(t *testing.T) {
		adj, err := ParseAdjacency(`{"R1": ["A"], "R1": ["B"]}`)
		require.NoError(t, err)
		assert.Equal(t, graph.Adjacency{"R1": {"B"}}, adj)
	})

	t.Run("duplicate keys in single quoted literal keep the last value", func(t *testing.T) {
		adj, err := ParseAdjacency(`{'R1': ['A'], 'SW1': ['R1'], 'R1': ['B']}`)
		require.NoError(t, err)
		assert.Equal(t, graph.Adjacency{"R1": {"B"}, "SW1": {"R1"}}, adj)
	})

	t.Run("non mapping literal", func(t *testing.T) {
		_, err := ParseAdjacency(`['R1', 'SW1']`)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty object", func(t *testing.T) {
		adj, err := ParseAdjacency(`{}`)
		require.NoError(t, err)
		assert.Empty(t, adj)
	})
}
