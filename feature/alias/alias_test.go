package alias_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"krosmoz-scrapper/core/storage/mocks"
	"krosmoz-scrapper/feature/alias"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const registryJSON = `{
  "aliases": {
    "monster": {"source": "dofusdb", "entity": "monster", "label": "Monstres"},
    "Resource ": {"source": "dofusdb", "entity": "resource", "defaultFilter": {"superTypeGroup": "resource"}},
    "boss": {"source": "dofusdb", "entity": "monster", "filterByRace": "78", "filterByType": "2"},
    "nosource": {"entity": "monster"},
    "noentity": {"source": "dofusdb"},
    "broken": "not-an-object"
  }
}`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aliases.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestResolve_Normalization(t *testing.T) {
	ctx := context.Background()
	r := alias.NewResolver(alias.FileSource{Path: writeRegistry(t, `{"aliases": {"monster": {"source":"dofusdb","entity":"monster"}}}`)}, nil)

	got, ok := r.Resolve(ctx, "Monster ")
	require.True(t, ok)
	assert.Equal(t, "dofusdb", got.Source)
	assert.Equal(t, "monster", got.Entity)
	assert.Equal(t, "monster", got.Alias)
}

func TestResolve_Entries(t *testing.T) {
	ctx := context.Background()
	r := alias.NewResolver(alias.FileSource{Path: writeRegistry(t, registryJSON)}, nil)

	t.Run("Well formed entry", func(t *testing.T) {
		got, ok := r.Resolve(ctx, "MONSTER")
		require.True(t, ok)
		assert.Equal(t, alias.CollectAlias{Alias: "monster", Source: "dofusdb", Entity: "monster", Label: "Monstres"}, got)
		assert.Equal(t, "Monstres", got.DisplayName())
	})

	t.Run("Registry key is normalized", func(t *testing.T) {
		got, ok := r.Resolve(ctx, "resource")
		require.True(t, ok)
		require.NotNil(t, got.DefaultFilter)
		assert.Equal(t, "resource", got.DefaultFilter.SuperTypeGroup)
		assert.Equal(t, map[string]string{alias.FilterSuperTypeGroup: "resource"}, got.Filter())
	})

	t.Run("Filters", func(t *testing.T) {
		got, ok := r.Resolve(ctx, "boss")
		require.True(t, ok)
		assert.Equal(t, map[string]string{alias.FilterRace: "78", alias.FilterTypeID: "2"}, got.Filter())
	})

	for _, name := range []string{"nosource", "noentity", "broken", "unknown", ""} {
		t.Run("Unresolved "+name, func(t *testing.T) {
			_, ok := r.Resolve(ctx, name)
			assert.False(t, ok)
		})
	}
}

func TestList_SortedAndIdempotent(t *testing.T) {
	ctx := context.Background()
	r := alias.NewResolver(alias.FileSource{Path: writeRegistry(t, registryJSON)}, nil)

	first := r.List(ctx)
	assert.Equal(t, []string{"boss", "monster", "resource"}, first)
	assert.Equal(t, first, r.List(ctx))
	assert.Len(t, r.All(ctx), 3)
}

func TestParse_FailSoft(t *testing.T) {
	tests := map[string]string{
		"Malformed JSON":     `{"aliases": {`,
		"Missing aliases":    `{"other": 1}`,
		"Aliases is a list":  `{"aliases": ["monster"]}`,
		"Aliases is null":    `{"aliases": null}`,
		"Aliases is string":  `{"aliases": "monster"}`,
		"Top level is array": `[]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			reg := alias.Parse([]byte(doc))
			assert.Equal(t, 0, reg.Len())
			assert.Empty(t, reg.Keys())
		})
	}
}

func TestResolver_MissingFile(t *testing.T) {
	ctx := context.Background()
	src := alias.FileSource{Path: filepath.Join(t.TempDir(), "absent.json")}

	_, err := src.Load(ctx)
	assert.ErrorIs(t, err, alias.ErrConfigUnavailable)

	r := alias.NewResolver(src, nil)
	_, ok := r.Resolve(ctx, "monster")
	assert.False(t, ok)
	assert.Empty(t, r.List(ctx))
}

func TestResolver_Reload(t *testing.T) {
	ctx := context.Background()
	path := writeRegistry(t, `{"aliases": {"spell": {"source":"dofusdb","entity":"spell"}}}`)
	r := alias.NewResolver(alias.FileSource{Path: path}, nil)

	assert.Equal(t, []string{"spell"}, r.List(ctx))

	require.NoError(t, os.WriteFile(path, []byte(`{"aliases": {"class": {"source":"dofusdb","entity":"class"}}}`), 0o600))
	assert.Equal(t, []string{"spell"}, r.List(ctx), "registry is loaded once until reload")

	r.Reload(ctx)
	assert.Equal(t, []string{"class"}, r.List(ctx))
}

func TestStaticResolver(t *testing.T) {
	reg := alias.NewRegistry(map[string]alias.CollectAlias{
		" Item": {Source: "dofusdb", Entity: "item"},
	})
	r := alias.NewStaticResolver(reg)

	got, ok := r.Resolve(context.Background(), "item")
	require.True(t, ok)
	assert.Equal(t, "item", got.Alias)
}

func TestObjectSource(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads object", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "scrapping", "config/collect_aliases.json", mock.Anything).
			Return(io.NopCloser(bytes.NewReader([]byte(registryJSON))), nil)

		r := alias.NewResolver(alias.ObjectSource{Client: client, Bucket: "scrapping", Object: "config/collect_aliases.json"}, nil)
		assert.Equal(t, []string{"boss", "monster", "resource"}, r.List(ctx))
	})

	t.Run("Storage failure degrades to empty", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "scrapping", "missing.json", mock.Anything).
			Return(nil, errors.New("no such key"))

		src := alias.ObjectSource{Client: client, Bucket: "scrapping", Object: "missing.json"}
		_, err := src.Load(ctx)
		assert.ErrorIs(t, err, alias.ErrConfigUnavailable)

		assert.Empty(t, alias.NewResolver(src, nil).List(ctx))
	})

	t.Run("Missing object is reported as not found", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("GetObject", mock.Anything, "scrapping", "gone.json", mock.Anything).
			Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

		_, err := alias.ObjectSource{Client: client, Bucket: "scrapping", Object: "gone.json"}.Load(ctx)
		assert.ErrorIs(t, err, alias.ErrConfigUnavailable)
		assert.ErrorContains(t, err, "s3://scrapping/gone.json not found")
	})
}

func TestShippedRegistry(t *testing.T) {
	r := alias.NewResolver(alias.FileSource{Path: "../../config/collect_aliases.json"}, nil)
	keys := r.List(context.Background())

	for _, k := range []string{"class", "consumable", "equipment", "item", "monster", "panoply", "resource", "spell"} {
		assert.Contains(t, keys, k)
	}
}
