package relationship

import (
	"strings"

	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/runlog"
)

type entityRef struct {
	kind model.EntityKind
	id   string
}

// Resolver maps lower-cased primary names to persisted (kind, id) pairs.
// Resolution is exact-match only; a name the oracle varied even slightly
// will not resolve, and its triple is dropped. When two kinds share a name
// the first-registered kind wins; callers register characters first, then
// locations, events and objects.
type Resolver struct {
	byName map[string]entityRef
}

func NewResolver() *Resolver {
	return &Resolver{byName: make(map[string]entityRef)}
}

func (r *Resolver) Register(kind model.EntityKind, id, name string) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || id == "" {
		return
	}
	if _, exists := r.byName[key]; exists {
		return
	}
	r.byName[key] = entityRef{kind: kind, id: id}
}

func (r *Resolver) lookup(name string) (entityRef, bool) {
	ref, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return ref, ok
}

// Resolve turns triples into relationship records, dropping any triple with
// an endpoint that fails to resolve and logging a warning for each drop.
func (r *Resolver) Resolve(triples []Triple, universeID string, log *runlog.Logger) []model.Relationship {
	var out []model.Relationship
	for _, t := range triples {
		source, ok := r.lookup(t.Source)
		if !ok {
			log.Warnf("dropping relationship %q -[%s]-> %q: source not found", t.Source, t.Type, t.Target)
			continue
		}
		target, ok := r.lookup(t.Target)
		if !ok {
			log.Warnf("dropping relationship %q -[%s]-> %q: target not found", t.Source, t.Type, t.Target)
			continue
		}
		relType := strings.ToLower(strings.TrimSpace(t.Type))
		if relType == "" {
			relType = "related-to"
		}
		strength := t.Strength
		if strength < 0 {
			strength = 0
		} else if strength > 1 {
			strength = 1
		}
		out = append(out, model.Relationship{
			UniverseID:  universeID,
			SourceKind:  source.kind,
			SourceID:    source.id,
			TargetKind:  target.kind,
			TargetID:    target.id,
			Type:        relType,
			Description: t.Description,
			Strength:    strength,
		})
	}
	return out
}
