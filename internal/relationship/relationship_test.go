package relationship

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorehaven/loregraph/internal/config"
	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/oracle"
	"github.com/lorehaven/loregraph/internal/runlog"
)

type mockOracle struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *mockOracle) Complete(ctx context.Context, prompt, system string, opts oracle.Options) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func TestExtractTriples(t *testing.T) {
	mock := &mockOracle{Response: `{
		"relationships": [
			{"source": "Mara Venn", "target": "Captain Ilyos", "type": "rival", "description": "Hunted across the archipelago.", "strength": 0.9}
		]
	}`}
	e := NewExtractor(mock, config.Prompts{})

	triples, err := e.Extract(context.Background(),
		[]*model.Character{{Name: "Mara Venn"}, {Name: "Captain Ilyos"}},
		nil, nil, nil, "A smuggling saga.", runlog.New(nil))
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, "rival", triples[0].Type)
	assert.InDelta(t, 0.9, triples[0].Strength, 1e-9)
}

func TestExtractRosterIsBounded(t *testing.T) {
	var characters []*model.Character
	for i := 0; i < 40; i++ {
		characters = append(characters, &model.Character{Name: fmt.Sprintf("Character %02d", i)})
	}
	mock := &mockOracle{Response: `{"relationships": []}`}
	e := NewExtractor(mock, config.Prompts{})

	_, err := e.Extract(context.Background(), characters, nil, nil, nil, "", runlog.New(nil))
	require.NoError(t, err)
	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Character 19")
	assert.NotContains(t, mock.Prompts[0], "Character 20", "only the top 20 characters enter the roster")
}

func TestResolveEndpoints(t *testing.T) {
	r := NewResolver()
	r.Register(model.KindCharacter, "char-1", "Mara Venn")
	r.Register(model.KindLocation, "loc-1", "Port Serin")

	rels := r.Resolve([]Triple{
		{Source: "mara venn", Target: "PORT SERIN", Type: "located-at", Strength: 0.4},
	}, "uni-1", runlog.New(nil))

	require.Len(t, rels, 1)
	assert.Equal(t, model.KindCharacter, rels[0].SourceKind)
	assert.Equal(t, "char-1", rels[0].SourceID)
	assert.Equal(t, model.KindLocation, rels[0].TargetKind)
	assert.Equal(t, "loc-1", rels[0].TargetID)
	assert.Equal(t, "uni-1", rels[0].UniverseID)
}

func TestResolveDropsUnknownEndpoint(t *testing.T) {
	r := NewResolver()
	r.Register(model.KindCharacter, "char-1", "Mara Venn")
	log := runlog.New(nil)

	rels := r.Resolve([]Triple{
		{Source: "Mara Venn", Target: "Someone The Oracle Invented", Type: "friend"},
	}, "uni-1", log)

	assert.Empty(t, rels, "unresolved triples are dropped, never guessed")
	warnings := log.Warnings()
	require.Len(t, warnings, 1)
	assert.True(t, strings.Contains(warnings[0], "Someone The Oracle Invented"))
}

func TestResolveFirstRegisteredKindWins(t *testing.T) {
	r := NewResolver()
	r.Register(model.KindCharacter, "char-1", "Avalon")
	r.Register(model.KindLocation, "loc-1", "Avalon")
	r.Register(model.KindCharacter, "char-2", "Merlin")

	rels := r.Resolve([]Triple{
		{Source: "Merlin", Target: "Avalon", Type: "ally"},
	}, "uni-1", runlog.New(nil))

	require.Len(t, rels, 1)
	assert.Equal(t, model.KindCharacter, rels[0].TargetKind)
	assert.Equal(t, "char-1", rels[0].TargetID)
}

func TestResolveClampsStrength(t *testing.T) {
	r := NewResolver()
	r.Register(model.KindCharacter, "a", "A")
	r.Register(model.KindCharacter, "b", "B")

	rels := r.Resolve([]Triple{
		{Source: "A", Target: "B", Type: "friend", Strength: 1.7},
	}, "uni-1", runlog.New(nil))

	require.Len(t, rels, 1)
	assert.Equal(t, 1.0, rels[0].Strength)
}
