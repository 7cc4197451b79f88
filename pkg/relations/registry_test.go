package relations_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

type stubSource struct {
	name    string
	defined []string
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Define(_ *relations.Schema) ([]string, error) {
	return s.defined, nil
}

func (s *stubSource) Create(_ context.Context, model *relations.Model) (*relations.Model, error) {
	return model, nil
}

func (s *stubSource) Retrieve(_ context.Context, model *relations.Model, _ bool) (*relations.Model, error) {
	return model, nil
}

func (s *stubSource) Update(context.Context, *relations.Model) (int64, error) { return 0, nil }

func (s *stubSource) Delete(context.Context, *relations.Model) (int64, error) { return 0, nil }

func (s *stubSource) Labels(_ context.Context, model *relations.Model) (*relations.Labels, error) {
	return relations.NewLabels(model), nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry := relations.NewRegistry()

	_, ok := registry.Lookup("main")
	assert.False(t, ok)

	src := &stubSource{name: "main"}
	registry.Register(src)

	got, ok := registry.Lookup("main")
	require.True(t, ok)
	assert.Same(t, src, got)

	registry.Deregister("main")
	_, ok = registry.Lookup("main")
	assert.False(t, ok)
}

func TestSchemaResolvesRegistry(t *testing.T) {
	t.Parallel()

	registry := relations.NewRegistry()
	registry.Register(&stubSource{name: "main", defined: []string{"whatever"}})

	schema := relations.MustSchema("simple", []relations.Field{
		relations.IDField("id"),
		relations.StrField("name"),
	}, relations.WithSource("main"), relations.WithRegistry(registry))

	statements, err := schema.Define()
	require.NoError(t, err)
	assert.Equal(t, []string{"whatever"}, statements)

	m, err := schema.Many().Retrieve(t.Context(), true)
	require.NoError(t, err)
	assert.NotNil(t, m)
}
