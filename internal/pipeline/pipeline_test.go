package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorehaven/loregraph/internal/config"
	"github.com/lorehaven/loregraph/internal/fault"
	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/oracle"
)

// queuedOracle replays canned responses in call order.
type queuedOracle struct {
	responses []string
	errs      []error
	calls     int
}

func (q *queuedOracle) Complete(ctx context.Context, prompt, system string, opts oracle.Options) (string, error) {
	i := q.calls
	q.calls++
	if i < len(q.errs) && q.errs[i] != nil {
		return "", q.errs[i]
	}
	if i < len(q.responses) {
		return q.responses[i], nil
	}
	return `{}`, nil
}

type mockRepo struct {
	characters    []*model.Character
	locations     []*model.Location
	events        []*model.Event
	objects       []*model.Object
	relationships []model.Relationship
	pages         []*model.Page
	statuses      map[string]string
}

func newMockRepo() *mockRepo {
	return &mockRepo{statuses: map[string]string{}}
}

func (r *mockRepo) SaveCharacters(ctx context.Context, universeID string, cs []*model.Character) error {
	for i, c := range cs {
		c.ID = "char-" + string(rune('a'+i))
	}
	r.characters = append(r.characters, cs...)
	return nil
}

func (r *mockRepo) SaveLocations(ctx context.Context, universeID string, ls []*model.Location) error {
	for i, l := range ls {
		l.ID = "loc-" + string(rune('a'+i))
	}
	r.locations = append(r.locations, ls...)
	return nil
}

func (r *mockRepo) SaveEvents(ctx context.Context, universeID string, es []*model.Event) error {
	for i, e := range es {
		e.ID = "event-" + string(rune('a'+i))
	}
	r.events = append(r.events, es...)
	return nil
}

func (r *mockRepo) SaveObjects(ctx context.Context, universeID string, os []*model.Object) error {
	for i, o := range os {
		o.ID = "obj-" + string(rune('a'+i))
	}
	r.objects = append(r.objects, os...)
	return nil
}

func (r *mockRepo) SaveRelationships(ctx context.Context, universeID string, rels []model.Relationship) error {
	r.relationships = append(r.relationships, rels...)
	return nil
}

func (r *mockRepo) SavePage(ctx context.Context, page *model.Page) error {
	r.pages = append(r.pages, page)
	return nil
}

func (r *mockRepo) SetUniverseStatus(ctx context.Context, universeID, status string) error {
	r.statuses[universeID] = status
	return nil
}

type jobUpdate struct {
	status   model.JobStatus
	progress int
	step     string
	errMsg   string
}

type mockJobs struct {
	updates     []jobUpdate
	completeErr error
}

func (m *mockJobs) UpdateJob(ctx context.Context, jobID string, status model.JobStatus, progress int, step, errorMessage string) error {
	m.updates = append(m.updates, jobUpdate{status, progress, step, errorMessage})
	if m.completeErr != nil && status == model.JobCompleted {
		return m.completeErr
	}
	return nil
}

// sampleText clears the minimum-length gate with room to spare.
var sampleText = strings.Repeat("Aria rode out from Blackspire at dawn, the Sunblade strapped across her back. ", 5)

const (
	charactersJSON = `{"characters": [
		{"name": "Aria", "description": "A wandering knight.", "role": "protagonist"},
		{"name": "Brant", "description": "Aria's squire."}
	]}`
	locationsJSON = `{"locations": [
		{"name": "Blackspire", "description": "A mountain fortress.", "location_type": "fortress"}
	]}`
	eventsJSON = `{"events": [
		{"name": "The Siege of Blackspire", "description": "A year-long siege."}
	]}`
	objectsJSON = `{"objects": [
		{"name": "Sunblade", "description": "A radiant sword.", "object_type": "weapon"}
	]}`
	relationshipsJSON = `{"relationships": [
		{"source": "Aria", "target": "Blackspire", "type": "defends", "strength": 0.9},
		{"source": "Aria", "target": "Sunblade", "type": "wields", "strength": 1.0}
	]}`
)

func newTestPipeline(o oracle.Client, repo Repository, jobs *mockJobs) *Pipeline {
	return New(o, repo, jobs, config.Default(), nil)
}

func TestRunFullSuccess(t *testing.T) {
	o := &queuedOracle{responses: []string{
		charactersJSON, locationsJSON, eventsJSON, objectsJSON, relationshipsJSON,
	}}
	repo := newMockRepo()
	jobs := &mockJobs{}
	p := newTestPipeline(o, repo, jobs)

	res := p.Run(context.Background(), Input{
		UniverseID: "u-1", JobID: "j-1", Text: sampleText,
	})

	require.True(t, res.Success)
	require.Nil(t, res.Err)
	assert.Equal(t, Stats{
		Characters:           2,
		Locations:            1,
		Events:               1,
		Objects:              1,
		PagesCreated:         5,
		RelationshipsCreated: 2,
	}, res.Stats)
	assert.Equal(t, "active", repo.statuses["u-1"])
	assert.Len(t, repo.relationships, 2)
	// Entities got ids before pages and relationships referenced them.
	assert.Equal(t, "char-a", repo.relationships[0].SourceID)
	assert.Equal(t, model.KindCharacter, repo.relationships[0].SourceKind)
	assert.Equal(t, "loc-a", repo.relationships[0].TargetID)

	// Progress only ever moves forward and ends at 100.
	require.NotEmpty(t, jobs.updates)
	var last int
	for _, u := range jobs.updates {
		assert.GreaterOrEqual(t, u.progress, last)
		last = u.progress
	}
	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, model.JobCompleted, final.status)
	assert.Equal(t, 100, final.progress)
}

func TestRunRejectsInvalidText(t *testing.T) {
	o := &queuedOracle{}
	repo := newMockRepo()
	jobs := &mockJobs{}
	p := newTestPipeline(o, repo, jobs)

	res := p.Run(context.Background(), Input{UniverseID: "u-1", JobID: "j-1", Text: "too short"})

	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, fault.InvalidText, res.Err.Code)
	assert.Equal(t, "validation", res.Err.Phase)
	assert.Zero(t, o.calls, "no oracle calls before the text passes validation")
	assert.Empty(t, repo.statuses)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, model.JobError, final.status)
	assert.Equal(t, 0, final.progress)
}

func TestRunRequiresUniverseID(t *testing.T) {
	p := newTestPipeline(&queuedOracle{}, newMockRepo(), &mockJobs{})

	res := p.Run(context.Background(), Input{JobID: "j-1", Text: sampleText})

	require.False(t, res.Success)
	assert.Equal(t, fault.InvalidInput, res.Err.Code)
}

func TestRunExtractionFailureIsFatal(t *testing.T) {
	o := &queuedOracle{errs: []error{
		fault.New(fault.OracleAPIError, "model unavailable"),
	}}
	repo := newMockRepo()
	jobs := &mockJobs{}
	p := newTestPipeline(o, repo, jobs)

	res := p.Run(context.Background(), Input{UniverseID: "u-1", JobID: "j-1", Text: sampleText})

	require.False(t, res.Success)
	require.NotNil(t, res.Err)
	assert.Equal(t, fault.OracleAPIError, res.Err.Code)
	assert.Equal(t, "extraction", res.Err.Phase)
	assert.Empty(t, repo.characters, "nothing persists after a fatal extraction failure")
	assert.Empty(t, repo.statuses)

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, model.JobError, final.status)
	assert.Equal(t, 0, final.progress)
	assert.Equal(t, "model unavailable", final.errMsg)
}

func TestRunRelationshipFailureIsBestEffort(t *testing.T) {
	o := &queuedOracle{responses: []string{
		charactersJSON, locationsJSON, eventsJSON, objectsJSON,
		"this is not json",
	}}
	repo := newMockRepo()
	jobs := &mockJobs{}
	p := newTestPipeline(o, repo, jobs)

	res := p.Run(context.Background(), Input{UniverseID: "u-1", JobID: "j-1", Text: sampleText})

	require.True(t, res.Success, "a failed relationship phase must not fail the run")
	assert.Zero(t, res.Stats.RelationshipsCreated)
	assert.NotEmpty(t, res.Warnings)
	assert.Equal(t, "active", repo.statuses["u-1"])

	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, model.JobCompleted, final.status)
	assert.Equal(t, 100, final.progress)
}

func TestRunFailedCompletionWriteMarksJobError(t *testing.T) {
	o := &queuedOracle{responses: []string{
		charactersJSON, locationsJSON, eventsJSON, objectsJSON, relationshipsJSON,
	}}
	repo := newMockRepo()
	jobs := &mockJobs{completeErr: errors.New("bolt write lost")}
	p := newTestPipeline(o, repo, jobs)

	res := p.Run(context.Background(), Input{UniverseID: "u-1", JobID: "j-1", Text: sampleText})

	require.False(t, res.Success, "a run whose completion never persisted has not completed")
	require.NotNil(t, res.Err)
	assert.Equal(t, "finalize", res.Err.Phase)

	// The job row must not be left stuck at processing: the error
	// transition still has to land in the store.
	final := jobs.updates[len(jobs.updates)-1]
	assert.Equal(t, model.JobError, final.status)
	assert.Equal(t, 0, final.progress)
}

func TestRunDropsUnresolvableRelationships(t *testing.T) {
	o := &queuedOracle{responses: []string{
		charactersJSON, locationsJSON, eventsJSON, objectsJSON,
		`{"relationships": [
			{"source": "Aria", "target": "Nowhere Keep", "type": "rules"},
			{"source": "aria", "target": "sunblade", "type": "wields", "strength": 0.8}
		]}`,
	}}
	repo := newMockRepo()
	jobs := &mockJobs{}
	p := newTestPipeline(o, repo, jobs)

	res := p.Run(context.Background(), Input{UniverseID: "u-1", JobID: "j-1", Text: sampleText})

	require.True(t, res.Success)
	assert.Equal(t, 1, res.Stats.RelationshipsCreated, "names resolve case-insensitively; unknown endpoints drop")
	assert.NotEmpty(t, res.Warnings)
	require.Len(t, repo.relationships, 1)
	assert.Equal(t, "wields", repo.relationships[0].Type)
}
