// Package consolidate removes duplicate entities within one kind. Candidate
// pairs come from normalized edit distance; the oracle adjudicates whether a
// pair denotes the same referent, and accepted pairs merge with
// deterministic first-record-biased rules.
package consolidate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lorehaven/loregraph/internal/config"
	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/oracle"
	"github.com/lorehaven/loregraph/internal/runlog"
	"github.com/lorehaven/loregraph/internal/similarity"
)

const (
	adjudicationMaxTokens = 300

	// Not 0: the OpenAI client omits a zero temperature from the request
	// and the API default would apply instead.
	adjudicationTemperature = 0.1
)

const defaultAdjudicationPrompt = `Two %s records were extracted from the same narrative text. Decide whether they describe the same real-world referent.

RECORD A:
%s

RECORD B:
%s

Respond with a JSON object of this exact shape:
{"same_entity": true, "confidence": 0.95}

"confidence" is your certainty in the answer, between 0 and 1. Respond with JSON only.`

// Stats summarizes one kind's consolidation.
type Stats struct {
	OriginalCount     int `json:"original_count"`
	ConsolidatedCount int `json:"consolidated_count"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// MergeRecord is the audit trail of one accepted merge. Returned to the
// caller as a statistic, never persisted.
type MergeRecord struct {
	Kind       model.EntityKind `json:"kind"`
	KeptName   string           `json:"kept_name"`
	MergedName string           `json:"merged_name"`
	Confidence float64          `json:"confidence"`
}

// Result carries a kind's survivors plus the merge audit.
type Result[T any] struct {
	Entities []T
	Merges   []MergeRecord
	Stats    Stats
}

// Consolidator holds the oracle client and thresholds shared across kinds.
type Consolidator struct {
	Oracle              oracle.Client
	SimilarityThreshold float64
	ConfidenceThreshold float64
	Prompts             config.Prompts
}

func New(client oracle.Client, cfg config.PipelineConfig, prompts config.Prompts) *Consolidator {
	return &Consolidator{
		Oracle:              client,
		SimilarityThreshold: cfg.SimilarityThreshold,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Prompts:             prompts,
	}
}

type adjudication struct {
	SameEntity bool    `json:"same_entity"`
	Confidence float64 `json:"confidence"`
}

// Run consolidates one kind's entity list. A failed adjudication call for a
// single pair is logged as a warning and leaves that pair unmerged; it never
// fails the phase. Survivors keep their original relative order.
func Run[T model.Mergeable[T]](ctx context.Context, c *Consolidator, kind model.EntityKind, entities []T, log *runlog.Logger) (Result[T], error) {
	res := Result[T]{Stats: Stats{OriginalCount: len(entities)}}

	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.EntityName()
	}
	candidates := similarity.FindDuplicates(names, c.SimilarityThreshold)

	removed := make(map[int]bool)
	for _, cand := range candidates {
		if ctx.Err() != nil {
			return res, fmt.Errorf("consolidation aborted: %w", ctx.Err())
		}
		if removed[cand.I] || removed[cand.J] {
			continue
		}

		verdict, err := c.adjudicate(ctx, kind, entities[cand.I], entities[cand.J])
		if err != nil {
			log.Warnf("adjudication failed for %s pair %q / %q, leaving unmerged: %v",
				kind, names[cand.I], names[cand.J], err)
			continue
		}
		if !verdict.SameEntity || verdict.Confidence <= c.ConfidenceThreshold {
			continue
		}

		entities[cand.I].MergeFrom(entities[cand.J])
		removed[cand.J] = true
		res.Merges = append(res.Merges, MergeRecord{
			Kind:       kind,
			KeptName:   names[cand.I],
			MergedName: names[cand.J],
			Confidence: verdict.Confidence,
		})
		log.Info("merged duplicate entities", "kind", string(kind),
			"kept", names[cand.I], "merged", names[cand.J], "confidence", verdict.Confidence)
	}

	res.Entities = make([]T, 0, len(entities)-len(removed))
	for i, e := range entities {
		if !removed[i] {
			res.Entities = append(res.Entities, e)
		}
	}
	res.Stats.ConsolidatedCount = len(res.Entities)
	res.Stats.DuplicatesRemoved = len(removed)
	return res, nil
}

func (c *Consolidator) adjudicate(ctx context.Context, kind model.EntityKind, a, b any) (adjudication, error) {
	recordA, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return adjudication{}, err
	}
	recordB, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return adjudication{}, err
	}

	template := c.Prompts.Adjudication
	if template == "" {
		template = defaultAdjudicationPrompt
	}
	prompt := fmt.Sprintf(template, kind, recordA, recordB)

	response, err := c.Oracle.Complete(ctx, prompt, "", oracle.Options{
		Temperature: adjudicationTemperature,
		MaxTokens:   adjudicationMaxTokens,
	})
	if err != nil {
		return adjudication{}, err
	}
	return oracle.Parse[adjudication](response)
}
