package persona

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresets(t *testing.T) {
	personas, err := Load(Presets(), "presets")
	require.NoError(t, err)
	require.Len(t, personas, 3)

	ids := []string{personas[0].ID, personas[1].ID, personas[2].ID}
	assert.Equal(t, []string{"aria", "ethan", "lila"}, ids)
	for _, p := range personas {
		assert.NotEmpty(t, p.SystemPrompt, "persona %s", p.ID)
	}
}

func TestLoadSkipsMalformedDefinitions(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/good.yaml":     {Data: []byte("id: good\nname: Good\nsystem_prompt: be good\n")},
		"defs/broken.yaml":   {Data: []byte("id: [unterminated\n")},
		"defs/noid.yaml":     {Data: []byte("name: Nobody\nsystem_prompt: hi\n")},
		"defs/zdup.yml":      {Data: []byte("id: good\nsystem_prompt: other\n")},
		"defs/profile.yaml":  {Data: []byte("id: profile\nname: Pat\ntone: calm\n")},
		"defs/README.md":     {Data: []byte("not a persona")},
		"defs/_draft.yaml":   {Data: []byte("id: draft\nsystem_prompt: x\n")},
		"defs/nested/x.yaml": {Data: []byte("id: nested\nsystem_prompt: x\n")},
	}

	personas, err := Load(fsys, "defs")
	require.NoError(t, err)

	got := map[string]Persona{}
	for _, p := range personas {
		got[p.ID] = p
	}
	require.Len(t, got, 2)
	assert.Equal(t, "be good", got["good"].SystemPrompt)
	assert.Contains(t, got["profile"].Prompt(), "You are Pat")
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "nowhere")
	require.Error(t, err)
}

func TestParseDefinitionRequiresPromptOrName(t *testing.T) {
	_, err := ParseDefinition([]byte("id: empty\n"))
	require.Error(t, err)

	_, err = ParseDefinition([]byte("id: has space\nsystem_prompt: x\n"))
	require.Error(t, err)
}

func seeded(t *testing.T) *Registry {
	t.Helper()
	personas, err := Load(Presets(), "presets")
	require.NoError(t, err)
	return NewRegistry(personas, DefaultID)
}

func TestResolveKnownPersona(t *testing.T) {
	r := seeded(t)

	res, err := r.Resolve("ethan")
	require.NoError(t, err)
	assert.Equal(t, "ethan", res.Persona.ID)
	assert.False(t, res.Fallback)
}

func TestResolveIsStable(t *testing.T) {
	r := seeded(t)

	first, err := r.Resolve("ethan")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.Resolve("ethan")
		require.NoError(t, err)
		assert.Equal(t, first.Persona.Prompt(), again.Persona.Prompt())
	}
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	r := seeded(t)

	res, err := r.Resolve("gandalf")
	require.NoError(t, err)
	assert.Equal(t, "aria", res.Persona.ID)
	assert.True(t, res.Fallback)
	assert.Equal(t, "gandalf", res.Requested)
}

func TestResolveAbsentUsesDefaultWithoutFallbackFlag(t *testing.T) {
	r := seeded(t)

	res, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "aria", res.Persona.ID)
	assert.False(t, res.Fallback)
}

func TestResolveEmptyRegistry(t *testing.T) {
	r := NewRegistry(nil, DefaultID)

	_, err := r.Resolve("aria")
	require.True(t, errors.Is(err, ErrNoPersonas))
}

func TestRegistryDefaultFallsBackToFirstID(t *testing.T) {
	r := NewRegistry([]Persona{
		{ID: "zed", SystemPrompt: "z"},
		{ID: "bea", SystemPrompt: "b"},
	}, "missing")

	assert.Equal(t, "bea", r.DefaultID())
	res, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "bea", res.Persona.ID)
}

func TestListIsACopy(t *testing.T) {
	r := seeded(t)

	list := r.List()
	list[0].SystemPrompt = "mutated"

	p, ok := r.FindByID(list[0].ID)
	require.True(t, ok)
	assert.NotEqual(t, "mutated", p.SystemPrompt)
}
