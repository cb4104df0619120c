package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/creaturemon/internal/catalog"
	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	c := catalog.Default()
	require.NoError(t, c.Validate())

	opt, err := c.Attributes.Option(entities.AttributeIntelligence, 3)
	require.NoError(t, err)
	assert.Equal(t, catalog.Option{Label: "Human", Value: 10}, opt)

	assert.Equal(t, 2, c.Attributes.IndexOf(entities.AttributeStrength, 3))
	assert.Equal(t, -1, c.Attributes.IndexOf(entities.AttributeStrength, 42))
}

func TestTable_OptionBounds(t *testing.T) {
	table := catalog.Default().Attributes

	for _, index := range []int{-1, 4, 100} {
		_, err := table.Option(entities.AttributeEndurance, index)
		assert.True(t, apperr.IsInvalidArgument(err), "index %d", index)
	}

	_, err := table.Option("charisma", 0)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestCatalog_Avatar(t *testing.T) {
	c := catalog.Default()

	avatar, ok := c.Avatar(3)
	require.True(t, ok)
	assert.Equal(t, "Dragon", avatar.Name)

	_, ok = c.Avatar(0)
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		c, err := catalog.Parse([]byte(`
attributes:
  intelligence:
    - {label: "Pick one", value: 0}
    - {label: "Crow", value: 5}
  strength:
    - {label: "Pick one", value: 0}
    - {label: "Ox", value: 9}
  endurance:
    - {label: "Pick one", value: 0}
    - {label: "Tortoise", value: 8}
avatars:
  - {id: 1, name: "Crow", image_url: "https://example.com/crow.png"}
`))
		require.NoError(t, err)

		opt, err := c.Attributes.Option(entities.AttributeStrength, 1)
		require.NoError(t, err)
		assert.Equal(t, 9, opt.Value)

		avatar, ok := c.Avatar(1)
		require.True(t, ok)
		assert.Equal(t, "https://example.com/crow.png", avatar.ImageURL)
	})

	t.Run("missing attribute", func(t *testing.T) {
		_, err := catalog.Parse([]byte(`
attributes:
  intelligence:
    - {label: "Crow", value: 5}
`))
		assert.True(t, apperr.IsInvalidArgument(err))
	})

	t.Run("unknown attribute", func(t *testing.T) {
		_, err := catalog.Parse([]byte(`
attributes:
  intelligence: [{label: a, value: 1}]
  strength: [{label: a, value: 1}]
  endurance: [{label: a, value: 1}]
  charisma: [{label: a, value: 1}]
`))
		assert.Error(t, err)
	})

	t.Run("duplicate avatar", func(t *testing.T) {
		_, err := catalog.Parse([]byte(`
attributes:
  intelligence: [{label: a, value: 1}]
  strength: [{label: a, value: 1}]
  endurance: [{label: a, value: 1}]
avatars:
  - {id: 1, name: a}
  - {id: 1, name: b}
`))
		assert.ErrorContains(t, err, "duplicate avatar id 1")
	})

	t.Run("zero avatar id", func(t *testing.T) {
		_, err := catalog.Parse([]byte(`
attributes:
  intelligence: [{label: a, value: 1}]
  strength: [{label: a, value: 1}]
  endurance: [{label: a, value: 1}]
avatars:
  - {id: 0, name: nobody}
`))
		assert.Error(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := catalog.Parse([]byte("attributes: [oops"))
		assert.ErrorContains(t, err, "parsing catalog")
	})
}

func TestValidate_SelectLimits(t *testing.T) {
	manyOptions := func(n int) []catalog.Option {
		options := []catalog.Option{{Label: "Pick one", Value: 0}}
		for i := 1; i <= n; i++ {
			options = append(options, catalog.Option{Label: "opt", Value: i})
		}
		return options
	}
	manyAvatars := func(n int) []catalog.Avatar {
		avatars := make([]catalog.Avatar, 0, n)
		for i := 1; i <= n; i++ {
			avatars = append(avatars, catalog.Avatar{ID: i, Name: "avatar"})
		}
		return avatars
	}
	build := func(options, avatars int) *catalog.Catalog {
		return &catalog.Catalog{
			Attributes: catalog.Table{
				entities.AttributeIntelligence: manyOptions(options),
				entities.AttributeStrength:     manyOptions(1),
				entities.AttributeEndurance:    manyOptions(1),
			},
			Avatars: manyAvatars(avatars),
		}
	}

	assert.NoError(t, build(catalog.MaxOptions, catalog.MaxOptions).Validate(), "hint option is not counted")
	assert.True(t, apperr.IsInvalidArgument(build(catalog.MaxOptions+1, 1).Validate()))
	assert.True(t, apperr.IsInvalidArgument(build(1, catalog.MaxOptions+1).Validate()))
	assert.True(t, apperr.IsInvalidArgument(build(0, 1).Validate()), "only a hint is not selectable")
	assert.True(t, apperr.IsInvalidArgument(build(1, 0).Validate()))
}

func TestLoadFile(t *testing.T) {
	c, err := catalog.LoadFile("")
	require.NoError(t, err)
	assert.Len(t, c.Avatars, 8)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
attributes:
  intelligence: [{label: a, value: 2}]
  strength: [{label: b, value: 4}]
  endurance: [{label: c, value: 6}]
`), 0o600))

	_, err = catalog.LoadFile(path)
	assert.ErrorContains(t, err, "catalog has no avatars")

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading catalog")
}
