package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lorehaven/loregraph/internal/fault"
	"github.com/lorehaven/loregraph/internal/model"
)

// Store is the repository over a graph driver.
type Store struct {
	Driver GraphDriver
}

func New(driver GraphDriver) *Store {
	return &Store{Driver: driver}
}

func labelFor(kind model.EntityKind) string {
	switch kind {
	case model.KindCharacter:
		return "Character"
	case model.KindLocation:
		return "Location"
	case model.KindEvent:
		return "Event"
	case model.KindObject:
		return "Object"
	}
	return "Entity"
}

func kindForLabels(labels []string) model.EntityKind {
	for _, l := range labels {
		switch l {
		case "Character":
			return model.KindCharacter
		case "Location":
			return model.KindLocation
		case "Event":
			return model.KindEvent
		case "Object":
			return model.KindObject
		}
	}
	return ""
}

func (s *Store) insertEntities(ctx context.Context, kind model.EntityKind, universeID string, rows []map[string]any) error {
	if len(rows) == 0 {
		return nil
	}
	query := fmt.Sprintf(entityInsertTemplate, labelFor(kind))
	params := map[string]any{
		"rows":        rows,
		"universe_id": universeID,
		"created_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, query, params); err != nil {
		return fault.Wrap(fault.StorageError, err, "failed to save %s records", kind)
	}
	return nil
}

// SaveCharacters batch-inserts characters, assigning generated ids in place.
func (s *Store) SaveCharacters(ctx context.Context, universeID string, cs []*model.Character) error {
	rows := make([]map[string]any, len(cs))
	for i, c := range cs {
		c.ID = uuid.New().String()
		rows[i] = map[string]any{
			"uuid":         c.ID,
			"name":         c.Name,
			"aliases":      c.Aliases,
			"description":  c.Description,
			"role":         c.Role,
			"personality":  c.Personality,
			"appearance":   c.Appearance,
			"abilities":    c.Abilities,
			"affiliations": c.Affiliations,
		}
	}
	return s.insertEntities(ctx, model.KindCharacter, universeID, rows)
}

// SaveLocations batch-inserts locations, assigning generated ids in place.
func (s *Store) SaveLocations(ctx context.Context, universeID string, ls []*model.Location) error {
	rows := make([]map[string]any, len(ls))
	for i, l := range ls {
		l.ID = uuid.New().String()
		rows[i] = map[string]any{
			"uuid":          l.ID,
			"name":          l.Name,
			"aliases":       l.Aliases,
			"description":   l.Description,
			"location_type": l.LocationType,
			"significance":  l.Significance,
			"inhabitants":   l.Inhabitants,
		}
	}
	return s.insertEntities(ctx, model.KindLocation, universeID, rows)
}

// SaveEvents batch-inserts events, assigning generated ids in place.
func (s *Store) SaveEvents(ctx context.Context, universeID string, es []*model.Event) error {
	rows := make([]map[string]any, len(es))
	for i, e := range es {
		e.ID = uuid.New().String()
		rows[i] = map[string]any{
			"uuid":         e.ID,
			"name":         e.Name,
			"aliases":      e.Aliases,
			"description":  e.Description,
			"timeframe":    e.Timeframe,
			"significance": e.Significance,
			"location":     e.Location,
			"participants": e.Participants,
		}
	}
	return s.insertEntities(ctx, model.KindEvent, universeID, rows)
}

// SaveObjects batch-inserts objects, assigning generated ids in place.
func (s *Store) SaveObjects(ctx context.Context, universeID string, os []*model.Object) error {
	rows := make([]map[string]any, len(os))
	for i, o := range os {
		o.ID = uuid.New().String()
		rows[i] = map[string]any{
			"uuid":         o.ID,
			"name":         o.Name,
			"aliases":      o.Aliases,
			"description":  o.Description,
			"object_type":  o.ObjectType,
			"significance": o.Significance,
			"owner":        o.Owner,
			"powers":       o.Powers,
		}
	}
	return s.insertEntities(ctx, model.KindObject, universeID, rows)
}

// SaveRelationships batch-inserts resolved relationships. Both endpoints
// must already be persisted in the same universe; rows whose endpoints do
// not match are silently skipped by the MATCH.
func (s *Store) SaveRelationships(ctx context.Context, universeID string, rels []model.Relationship) error {
	if len(rels) == 0 {
		return nil
	}
	rows := make([]map[string]any, len(rels))
	for i := range rels {
		rels[i].ID = uuid.New().String()
		rows[i] = map[string]any{
			"uuid":        rels[i].ID,
			"source_id":   rels[i].SourceID,
			"target_id":   rels[i].TargetID,
			"type":        rels[i].Type,
			"description": rels[i].Description,
			"strength":    rels[i].Strength,
		}
	}
	params := map[string]any{
		"rows":        rows,
		"universe_id": universeID,
		"created_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, saveRelationshipsQuery, params); err != nil {
		return fault.Wrap(fault.StorageError, err, "failed to save relationships")
	}
	return nil
}

// SavePage inserts one derived entity page record.
func (s *Store) SavePage(ctx context.Context, page *model.Page) error {
	page.ID = uuid.New().String()
	params := map[string]any{
		"uuid":        page.ID,
		"universe_id": page.UniverseID,
		"entity_kind": string(page.EntityKind),
		"entity_id":   page.EntityID,
		"title":       page.Title,
		"created_at":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, savePageQuery, params); err != nil {
		return fault.Wrap(fault.StorageError, err, "failed to save page for %s", page.Title)
	}
	return nil
}

// SetUniverseStatus flips the universe node's status field, creating the
// node if it does not exist yet.
func (s *Store) SetUniverseStatus(ctx context.Context, universeID, status string) error {
	params := map[string]any{"uuid": universeID, "status": status}
	if _, err := s.Driver.ExecuteQuery(ctx, setUniverseStatusQuery, params); err != nil {
		return fault.Wrap(fault.StorageError, err, "failed to set universe status")
	}
	return nil
}

// CreateJob inserts a pending job row for a universe.
func (s *Store) CreateJob(ctx context.Context, universeID string) (*model.ProcessingJob, error) {
	now := time.Now().UTC()
	j := &model.ProcessingJob{
		ID:          uuid.New().String(),
		UniverseID:  universeID,
		Status:      model.JobPending,
		CurrentStep: "queued",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	params := map[string]any{
		"uuid":         j.ID,
		"universe_id":  universeID,
		"status":       string(j.Status),
		"current_step": j.CurrentStep,
		"created_at":   now.Format(time.RFC3339Nano),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, createJobQuery, params); err != nil {
		return nil, fault.Wrap(fault.StorageError, err, "failed to create job")
	}
	return j, nil
}

// UpdateJob writes the job's tracked fields. Implements job.Store.
func (s *Store) UpdateJob(ctx context.Context, jobID string, status model.JobStatus, progress int, step, errorMessage string) error {
	params := map[string]any{
		"uuid":          jobID,
		"status":        string(status),
		"progress":      progress,
		"current_step":  step,
		"error_message": errorMessage,
		"updated_at":    time.Now().UTC().Format(time.RFC3339Nano),
	}
	if _, err := s.Driver.ExecuteQuery(ctx, updateJobQuery, params); err != nil {
		return fault.Wrap(fault.StorageError, err, "failed to update job")
	}
	return nil
}

// LatestJob returns the most recent job for a universe, or nil when none
// exists.
func (s *Store) LatestJob(ctx context.Context, universeID string) (*model.ProcessingJob, error) {
	res, err := s.Driver.ExecuteQuery(ctx, latestJobQuery, map[string]any{"universe_id": universeID})
	if err != nil {
		return nil, fault.Wrap(fault.StorageError, err, "failed to load job")
	}
	if len(res.Records) == 0 {
		return nil, nil
	}
	rec := res.Records[0]
	return &model.ProcessingJob{
		ID:           asString(rec, "uuid"),
		UniverseID:   universeID,
		Status:       model.JobStatus(asString(rec, "status")),
		Progress:     int(asInt(rec, "progress")),
		CurrentStep:  asString(rec, "current_step"),
		ErrorMessage: asString(rec, "error_message"),
	}, nil
}

// ListRelationships returns all relationships in a universe.
func (s *Store) ListRelationships(ctx context.Context, universeID string) ([]model.Relationship, error) {
	res, err := s.Driver.ExecuteQuery(ctx, listRelationshipsQuery, map[string]any{"universe_id": universeID})
	if err != nil {
		return nil, fault.Wrap(fault.StorageError, err, "failed to list relationships")
	}
	out := make([]model.Relationship, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, model.Relationship{
			ID:          asString(rec, "uuid"),
			UniverseID:  universeID,
			SourceKind:  kindForLabels(asStrings(rec, "source_labels")),
			SourceID:    asString(rec, "source_id"),
			TargetKind:  kindForLabels(asStrings(rec, "target_labels")),
			TargetID:    asString(rec, "target_id"),
			Type:        asString(rec, "type"),
			Description: asString(rec, "description"),
			Strength:    asFloat(rec, "strength"),
		})
	}
	return out, nil
}

// ListEntities returns raw property maps for one kind in a universe, for
// the read API.
func (s *Store) ListEntities(ctx context.Context, universeID string, kind model.EntityKind) ([]map[string]any, error) {
	query := fmt.Sprintf(entityListTemplate, labelFor(kind))
	res, err := s.Driver.ExecuteQuery(ctx, query, map[string]any{"universe_id": universeID})
	if err != nil {
		return nil, fault.Wrap(fault.StorageError, err, "failed to list %s records", kind)
	}
	out := make([]map[string]any, 0, len(res.Records))
	for _, rec := range res.Records {
		v, ok := rec.Get("n")
		if !ok {
			continue
		}
		if node, ok := v.(neo4j.Node); ok {
			out = append(out, node.Props)
		}
	}
	return out, nil
}

func asString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func asInt(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	n, _ := v.(int64)
	return n
}

func asFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func asStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
