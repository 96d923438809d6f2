// Package pipeline orchestrates one processing run: validate the input
// text, extract the four entity kinds through the oracle, consolidate
// duplicates per kind, persist everything, then best-effort generate entity
// pages and relationships. Phases run strictly in order; the job tracker
// records progress at fixed checkpoints throughout.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/lorehaven/loregraph/internal/config"
	"github.com/lorehaven/loregraph/internal/consolidate"
	"github.com/lorehaven/loregraph/internal/extraction"
	"github.com/lorehaven/loregraph/internal/fault"
	"github.com/lorehaven/loregraph/internal/job"
	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/oracle"
	"github.com/lorehaven/loregraph/internal/relationship"
	"github.com/lorehaven/loregraph/internal/runlog"
	"github.com/lorehaven/loregraph/internal/textcheck"
)

// Repository is the slice of the store the orchestrator needs.
type Repository interface {
	SaveCharacters(ctx context.Context, universeID string, cs []*model.Character) error
	SaveLocations(ctx context.Context, universeID string, ls []*model.Location) error
	SaveEvents(ctx context.Context, universeID string, es []*model.Event) error
	SaveObjects(ctx context.Context, universeID string, os []*model.Object) error
	SaveRelationships(ctx context.Context, universeID string, rels []model.Relationship) error
	SavePage(ctx context.Context, page *model.Page) error
	SetUniverseStatus(ctx context.Context, universeID, status string) error
}

// Stats are the per-run counters returned on success.
type Stats struct {
	Characters              int `json:"characters"`
	Locations               int `json:"locations"`
	Events                  int `json:"events"`
	Objects                 int `json:"objects"`
	PagesCreated            int `json:"pages_created"`
	RelationshipsCreated    int `json:"relationships_created"`
	ConsolidationsPerformed int `json:"consolidations_performed"`
}

// Result is the terminal output of one run.
type Result struct {
	Success  bool           `json:"success"`
	Stats    Stats          `json:"stats"`
	Duration time.Duration  `json:"duration"`
	Warnings []string       `json:"warnings,omitempty"`
	Err      *fault.Error   `json:"error,omitempty"`
	Logs     []runlog.Entry `json:"logs,omitempty"`
}

// Input identifies one run.
type Input struct {
	UniverseID          string
	UniverseDescription string
	JobID               string
	Text                string
}

// Pipeline wires the collaborators for processing runs. One Pipeline serves
// many runs; all per-run state lives on the stack of Run.
type Pipeline struct {
	Repo         Repository
	Jobs         job.Store
	Extractor    *extraction.Extractor
	Consolidator *consolidate.Consolidator
	Relations    *relationship.Extractor
	LogHandler   slog.Handler
}

// New builds a pipeline around one oracle client and one repository.
func New(client oracle.Client, repo Repository, jobs job.Store, cfg *config.Config, logHandler slog.Handler) *Pipeline {
	return &Pipeline{
		Repo:         repo,
		Jobs:         jobs,
		Extractor:    extraction.NewExtractor(client, cfg.Prompts),
		Consolidator: consolidate.New(client, cfg.Pipeline, cfg.Prompts),
		Relations:    relationship.NewExtractor(client, cfg.Prompts),
		LogHandler:   logHandler,
	}
}

// Progress checkpoints per phase.
const (
	progressValidated     = 10
	progressCharacters    = 20
	progressLocations     = 27
	progressEvents        = 34
	progressObjects       = 40
	progressConsolidated  = 50
	progressPersisted     = 60
	progressPages         = 85
	progressRelationships = 90
)

// Run executes one full processing run. It never panics outward and always
// returns a Result; fatal errors also mark the job failed.
func (p *Pipeline) Run(ctx context.Context, in Input) *Result {
	started := time.Now()
	log := runlog.New(p.LogHandler,
		slog.String("universe_id", in.UniverseID), slog.String("job_id", in.JobID))
	tracker := job.NewTracker(p.Jobs, in.JobID, log)

	fail := func(err error, phase string) *Result {
		ferr := fault.From(err).WithPhase(phase)
		log.Error("processing run failed", "phase", phase, "code", string(ferr.Code), "error", ferr.Message)
		// The run context may already be canceled; the failure write must
		// still land.
		if uerr := tracker.Fail(context.WithoutCancel(ctx), ferr.Message); uerr != nil {
			log.Warnf("failed to mark job as failed: %v", uerr)
		}
		return &Result{
			Success:  false,
			Duration: time.Since(started),
			Err:      ferr,
			Logs:     log.Entries(),
		}
	}

	if in.UniverseID == "" {
		return fail(fault.New(fault.InvalidInput, "universe id is required"), "validation")
	}

	// Phase 1: input validation.
	report := textcheck.Validate(in.Text)
	if !report.Valid {
		return fail(fault.New(fault.InvalidText, "input text failed validation: %s", report.Summary()), "validation")
	}
	tracker.Advance(ctx, "validating input text", progressValidated)

	// Phase 2: extraction. Failure for any kind is fatal to the run.
	characters, err := p.Extractor.Characters(ctx, in.Text, log)
	if err != nil {
		return fail(err, "extraction")
	}
	tracker.Advance(ctx, "extracting characters", progressCharacters)

	locations, err := p.Extractor.Locations(ctx, in.Text, log)
	if err != nil {
		return fail(err, "extraction")
	}
	tracker.Advance(ctx, "extracting locations", progressLocations)

	events, err := p.Extractor.Events(ctx, in.Text, log)
	if err != nil {
		return fail(err, "extraction")
	}
	tracker.Advance(ctx, "extracting events", progressEvents)

	objects, err := p.Extractor.Objects(ctx, in.Text, log)
	if err != nil {
		return fail(err, "extraction")
	}
	tracker.Advance(ctx, "extracting objects", progressObjects)

	// Phase 3: consolidation, independently per kind.
	var consolidations int
	charRes, err := consolidate.Run(ctx, p.Consolidator, model.KindCharacter, characters, log)
	if err != nil {
		return fail(err, "consolidation")
	}
	locRes, err := consolidate.Run(ctx, p.Consolidator, model.KindLocation, locations, log)
	if err != nil {
		return fail(err, "consolidation")
	}
	eventRes, err := consolidate.Run(ctx, p.Consolidator, model.KindEvent, events, log)
	if err != nil {
		return fail(err, "consolidation")
	}
	objRes, err := consolidate.Run(ctx, p.Consolidator, model.KindObject, objects, log)
	if err != nil {
		return fail(err, "consolidation")
	}
	characters, locations, events, objects =
		charRes.Entities, locRes.Entities, eventRes.Entities, objRes.Entities
	consolidations = charRes.Stats.DuplicatesRemoved + locRes.Stats.DuplicatesRemoved +
		eventRes.Stats.DuplicatesRemoved + objRes.Stats.DuplicatesRemoved
	tracker.Advance(ctx, "consolidating duplicate entities", progressConsolidated)

	// Phase 4: persist primary entities, capturing generated ids.
	if err := p.Repo.SaveCharacters(ctx, in.UniverseID, characters); err != nil {
		return fail(err, "persistence")
	}
	if err := p.Repo.SaveLocations(ctx, in.UniverseID, locations); err != nil {
		return fail(err, "persistence")
	}
	if err := p.Repo.SaveEvents(ctx, in.UniverseID, events); err != nil {
		return fail(err, "persistence")
	}
	if err := p.Repo.SaveObjects(ctx, in.UniverseID, objects); err != nil {
		return fail(err, "persistence")
	}
	tracker.Advance(ctx, "saving entities", progressPersisted)

	// Phase 5: derived entity pages, best-effort.
	pagesCreated, err := p.generatePages(ctx, in.UniverseID, characters, locations, events, objects)
	if err != nil {
		log.Warnf("page generation stopped early after %d pages: %v", pagesCreated, err)
	}
	tracker.Advance(ctx, "generating entity pages", progressPages)

	// Phase 6: relationships, best-effort.
	relsCreated, err := p.extractRelationships(ctx, in, characters, locations, events, objects, log)
	if err != nil {
		log.Warnf("relationship extraction skipped: %v", err)
	}
	tracker.Advance(ctx, "extracting relationships", progressRelationships)

	// Finalize: activate the universe and complete the job.
	if err := p.Repo.SetUniverseStatus(ctx, in.UniverseID, "active"); err != nil {
		return fail(err, "finalize")
	}
	if err := tracker.Complete(ctx); err != nil {
		return fail(err, "finalize")
	}

	log.Info("processing run completed",
		"characters", len(characters), "locations", len(locations),
		"events", len(events), "objects", len(objects),
		"relationships", relsCreated, "consolidations", consolidations)

	return &Result{
		Success: true,
		Stats: Stats{
			Characters:              len(characters),
			Locations:               len(locations),
			Events:                  len(events),
			Objects:                 len(objects),
			PagesCreated:            pagesCreated,
			RelationshipsCreated:    relsCreated,
			ConsolidationsPerformed: consolidations,
		},
		Duration: time.Since(started),
		Warnings: log.Warnings(),
	}
}

// generatePages creates one page record per persisted entity. Returns how
// many landed before any failure.
func (p *Pipeline) generatePages(ctx context.Context, universeID string,
	characters []*model.Character, locations []*model.Location,
	events []*model.Event, objects []*model.Object) (int, error) {

	created := 0
	save := func(kind model.EntityKind, id, title string) error {
		err := p.Repo.SavePage(ctx, &model.Page{
			UniverseID: universeID,
			EntityKind: kind,
			EntityID:   id,
			Title:      title,
		})
		if err == nil {
			created++
		}
		return err
	}
	for _, c := range characters {
		if err := save(model.KindCharacter, c.ID, c.Name); err != nil {
			return created, err
		}
	}
	for _, l := range locations {
		if err := save(model.KindLocation, l.ID, l.Name); err != nil {
			return created, err
		}
	}
	for _, e := range events {
		if err := save(model.KindEvent, e.ID, e.Name); err != nil {
			return created, err
		}
	}
	for _, o := range objects {
		if err := save(model.KindObject, o.ID, o.Name); err != nil {
			return created, err
		}
	}
	return created, nil
}

// extractRelationships runs the relationship phase and persists resolved
// records. Endpoint registration order fixes which kind wins a shared name:
// characters, then locations, events, objects.
func (p *Pipeline) extractRelationships(ctx context.Context, in Input,
	characters []*model.Character, locations []*model.Location,
	events []*model.Event, objects []*model.Object, log *runlog.Logger) (int, error) {

	triples, err := p.Relations.Extract(ctx, characters, locations, events, objects, in.UniverseDescription, log)
	if err != nil {
		return 0, err
	}

	resolver := relationship.NewResolver()
	for _, c := range characters {
		resolver.Register(model.KindCharacter, c.ID, c.Name)
	}
	for _, l := range locations {
		resolver.Register(model.KindLocation, l.ID, l.Name)
	}
	for _, e := range events {
		resolver.Register(model.KindEvent, e.ID, e.Name)
	}
	for _, o := range objects {
		resolver.Register(model.KindObject, o.ID, o.Name)
	}

	rels := resolver.Resolve(triples, in.UniverseID, log)
	if err := p.Repo.SaveRelationships(ctx, in.UniverseID, rels); err != nil {
		return 0, err
	}
	return len(rels), nil
}
