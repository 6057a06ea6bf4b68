package promo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "promo_rules.json")

	content := `[
		{"code": "SAVE10", "kind": "percent", "value": 0.10},
		{"code": "WELCOME5", "kind": "flat", "value": 5.00}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loader := NewFileLoader(zerolog.Nop())
	rules, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, "SAVE10", rules[0].Code)
	assert.Equal(t, KindPercent, rules[0].Kind)
	assert.Equal(t, 0.10, rules[0].Value)

	assert.Equal(t, "WELCOME5", rules[1].Code)
	assert.Equal(t, KindFlat, rules[1].Kind)
	assert.Equal(t, 5.00, rules[1].Value)
}

func TestFileLoader_MissingFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestFileLoader_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))

	loader := NewFileLoader(zerolog.Nop())
	_, err := loader.Load(context.Background(), path)
	require.Error(t, err)
}

func TestFallbackLoader_UsesFileLoaderWhenS3Disabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"code":"A1","kind":"flat","value":1}]`), 0o644))

	loader := NewFallbackLoader(nil, NewFileLoader(zerolog.Nop()), "promos/", false, zerolog.Nop())
	rules, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "A1", rules[0].Code)
}
