// Package relationship infers typed relationships between already-persisted
// entities. The oracle sees a bounded roster of entity names; returned
// triples resolve back to persisted identifiers by case-insensitive exact
// name match. Unresolvable triples are dropped with a warning, never
// guessed.
package relationship

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorehaven/loregraph/internal/config"
	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/oracle"
	"github.com/lorehaven/loregraph/internal/runlog"
)

// Roster bounds: top-of-list entities by extraction order.
const (
	maxCharacters = 20
	maxLocations  = 10
	maxEvents     = 10
	maxObjects    = 15
)

const relationshipMaxTokens = 3000

const defaultPrompt = `The following entities were catalogued from one narrative universe.

UNIVERSE: %s

CHARACTERS:
%s
LOCATIONS:
%s
EVENTS:
%s
OBJECTS:
%s
Identify the meaningful relationships between these entities. Use short
lower-case relationship types such as friend, enemy, family, romantic,
mentor, rival, ally, member-of, located-at, owns, participated-in. Use the
entity names exactly as listed above.

Respond with a JSON object of this exact shape:
{
  "relationships": [
    {
      "source": "entity name",
      "target": "entity name",
      "type": "friend",
      "description": "one sentence on the relationship",
      "strength": 0.8
    }
  ]
}

"strength" is how central the relationship is to the story, between 0 and 1.
Respond with JSON only.`

// Triple is one relationship as named by the oracle, before resolution.
type Triple struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Strength    float64 `json:"strength,omitempty"`
}

type triplePayload struct {
	Relationships []Triple `json:"relationships"`
}

// Extractor runs the relationship phase.
type Extractor struct {
	Oracle  oracle.Client
	Prompts config.Prompts
}

func NewExtractor(client oracle.Client, prompts config.Prompts) *Extractor {
	return &Extractor{Oracle: client, Prompts: prompts}
}

// Extract asks the oracle for relationship triples over a bounded roster.
func (e *Extractor) Extract(ctx context.Context, characters []*model.Character, locations []*model.Location,
	events []*model.Event, objects []*model.Object, universeDescription string, log *runlog.Logger) ([]Triple, error) {

	template := e.Prompts.Relationships
	if template == "" {
		template = defaultPrompt
	}
	desc := universeDescription
	if strings.TrimSpace(desc) == "" {
		desc = "(no description provided)"
	}
	prompt := fmt.Sprintf(template, desc,
		characterRoster(characters), locationRoster(locations),
		eventRoster(events), objectRoster(objects))

	response, err := e.Oracle.Complete(ctx, prompt, "", oracle.Options{
		Temperature: 0.2,
		MaxTokens:   relationshipMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	payload, err := oracle.Parse[triplePayload](response)
	if err != nil {
		return nil, err
	}
	log.Info("extracted relationship triples", "count", len(payload.Relationships))
	return payload.Relationships, nil
}

func characterRoster(cs []*model.Character) string {
	var b strings.Builder
	for i, c := range cs {
		if i >= maxCharacters {
			break
		}
		fmt.Fprintf(&b, "- %s", c.Name)
		if c.Role != "" {
			fmt.Fprintf(&b, " (%s)", c.Role)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func locationRoster(ls []*model.Location) string {
	var b strings.Builder
	for i, l := range ls {
		if i >= maxLocations {
			break
		}
		fmt.Fprintf(&b, "- %s\n", l.Name)
	}
	return b.String()
}

func eventRoster(es []*model.Event) string {
	var b strings.Builder
	for i, e := range es {
		if i >= maxEvents {
			break
		}
		fmt.Fprintf(&b, "- %s\n", e.Name)
	}
	return b.String()
}

func objectRoster(os []*model.Object) string {
	var b strings.Builder
	for i, o := range os {
		if i >= maxObjects {
			break
		}
		fmt.Fprintf(&b, "- %s\n", o.Name)
	}
	return b.String()
}
