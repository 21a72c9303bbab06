package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSet(t *testing.T) {
	got, err := parseSet([]string{"nickname=Alpha", "age=3", "public=true", "tags=[\"a\",\"b\"]", "note=a=b", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"nickname": "Alpha",
		"age":      float64(3),
		"public":   true,
		"tags":     []any{"a", "b"},
		"note":     "a=b",
		"empty":    "",
	}, got)

	_, err = parseSet([]string{"novalue"})
	require.Error(t, err)
	_, err = parseSet([]string{"=x"})
	require.Error(t, err)
}

func TestRenderBody(t *testing.T) {
	body := []byte(`{"community":{"slug":"alpha","tags":["a"]},"total":2}`)

	var out bytes.Buffer
	require.NoError(t, renderBody(&out, formatYAML, body))
	require.Contains(t, out.String(), "community:\n  slug: alpha\n")
	require.Contains(t, out.String(), "- a\n")
	require.Contains(t, out.String(), "\ntotal: 2\n")

	out.Reset()
	require.NoError(t, renderBody(&out, formatJSON, body))
	require.Contains(t, out.String(), "  \"total\": 2\n")

	out.Reset()
	require.NoError(t, renderBody(&out, formatJSON, nil))
	require.Empty(t, out.String())

	require.Error(t, renderBody(&out, formatJSON, []byte("<html>")))
}

func TestCheckFormat(t *testing.T) {
	require.NoError(t, checkFormat("json"))
	require.NoError(t, checkFormat("yaml"))
	require.Error(t, checkFormat("xml"))
}
