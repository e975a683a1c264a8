package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, ConfigFile), store.Path())
}

func TestOpenConfigStore_CreatesParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "docqa.toml")

	store, err := OpenConfigStore(path)

	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("chunking.method", "sentences"))
	require.NoError(t, store.Set("chunking.chunk_size", 100))
	require.NoError(t, store.Set("llm.temperature", 0.7))
	require.NoError(t, store.Set("pipeline.verbose", true))
	require.NoError(t, store.Set("evaluation.metrics", []string{"bleu", "rouge"}))

	assert.Equal(t, "sentences", store.GetString("chunking.method"))
	assert.Equal(t, 100, store.GetInt("chunking.chunk_size"))
	assert.InDelta(t, 0.7, store.GetFloat("llm.temperature"), 1e-9)
	assert.True(t, store.GetBool("pipeline.verbose"))
	assert.Equal(t, []string{"bleu", "rouge"}, store.GetStringSlice("evaluation.metrics"))

	// Wrong types and missing keys read as zero values.
	assert.Equal(t, "", store.GetString("chunking.chunk_size"))
	assert.Equal(t, 0, store.GetInt("chunking.method"))
	assert.Equal(t, 0, store.GetInt("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_StringValuesFromCommandLine(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("vector_store.top_k", "7"))
	require.NoError(t, store.Set("llm.temperature", "0.25"))
	require.NoError(t, store.Set("evaluation.metrics", "bleu, rougeL"))

	assert.Equal(t, 7, store.GetInt("vector_store.top_k"))
	assert.InDelta(t, 0.25, store.GetFloat("llm.temperature"), 1e-9)
	assert.Equal(t, []string{"bleu", "rougeL"}, store.GetStringSlice("evaluation.metrics"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")

	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store1.Set("llm.provider", "openai"))
	require.NoError(t, store1.Set("llm.max_tokens", 300))
	require.NoError(t, store1.Set("vector_store.backend", "sqlite"))
	require.NoError(t, store1.Set("llm.temperature", 0.7))

	raw, err := os.ReadFile(store1.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[vector_store]")
	assert.NotContains(t, string(raw), `"llm.provider"`)

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store2.GetString("llm.provider"))
	assert.Equal(t, 300, store2.GetInt("llm.max_tokens"))
	assert.InDelta(t, 0.7, store2.GetFloat("llm.temperature"), 1e-9)
	assert.Equal(t, "sqlite", store2.GetString("vector_store.backend"))
	assert.Equal(t, []string{"llm.max_tokens", "llm.provider", "llm.temperature", "vector_store.backend"},
		store2.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("# Just a comment\n\n"), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "section.key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	err = store.Set("another", "value")
	assert.Error(t, err)
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("channel", make(chan int))

	assert.Error(t, err)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"llm.model":    "gpt",
		"llm.top.deep": 1,
		"plain":        true,
	})

	assert.Equal(t, map[string]any{
		"llm": map[string]any{
			"model": "gpt",
			"top":   map[string]any{"deep": 1},
		},
		"plain": true,
	}, nested)
	assert.Equal(t, map[string]any{"llm.model": "gpt", "llm.top.deep": 1, "plain": true}, flattenMap(nested, ""))
}

func TestNestMap_ValueShadowsTable(t *testing.T) {
	nested := nestMap(map[string]any{
		"a":   "x",
		"a.b": "y",
	})

	assert.Equal(t, "x", nested["a"])
	assert.Equal(t, "y", nested["a.b"])
}
