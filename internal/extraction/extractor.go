// Package extraction runs the per-kind oracle extraction phases. Each phase
// embeds a capped prefix of the source text in a kind-specific prompt,
// parses the oracle's JSON payload, and maps it into typed entity records.
package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/lorehaven/loregraph/internal/config"
	"github.com/lorehaven/loregraph/internal/model"
	"github.com/lorehaven/loregraph/internal/oracle"
	"github.com/lorehaven/loregraph/internal/runlog"
)

// Per-kind caps on how much source text is embedded in the prompt.
// Characters get the widest slice because they are spread across the whole
// text; objects cluster early and need less.
const (
	characterTextCap = 50_000
	locationTextCap  = 30_000
	eventTextCap     = 30_000
	objectTextCap    = 15_000
)

// Per-kind completion token limits.
const (
	characterMaxTokens = 4000
	locationMaxTokens  = 2500
	eventMaxTokens     = 2500
	objectMaxTokens    = 2000
)

// extractionTemperature keeps the oracle deterministic.
const extractionTemperature = 0.1

// Extractor performs the four extraction phases against one oracle client.
type Extractor struct {
	Oracle  oracle.Client
	Prompts config.Prompts
}

func NewExtractor(client oracle.Client, prompts config.Prompts) *Extractor {
	return &Extractor{Oracle: client, Prompts: prompts}
}

type characterPayload struct {
	Characters []*model.Character `json:"characters"`
}

type locationPayload struct {
	Locations []*model.Location `json:"locations"`
}

type eventPayload struct {
	Events []*model.Event `json:"events"`
}

type objectPayload struct {
	Objects []*model.Object `json:"objects"`
}

// Characters extracts character records from text.
func (e *Extractor) Characters(ctx context.Context, text string, log *runlog.Logger) ([]*model.Character, error) {
	prompt := buildPrompt(e.Prompts.Characters, defaultCharacterPrompt, text, characterTextCap)
	payload, err := e.call(ctx, prompt, characterMaxTokens)
	if err != nil {
		return nil, err
	}
	result, err := oracle.Parse[characterPayload](payload)
	if err != nil {
		return nil, err
	}
	out := dropNameless(result.Characters)
	log.Info("extracted characters", "count", len(out))
	return out, nil
}

// Locations extracts location records from text.
func (e *Extractor) Locations(ctx context.Context, text string, log *runlog.Logger) ([]*model.Location, error) {
	prompt := buildPrompt(e.Prompts.Locations, defaultLocationPrompt, text, locationTextCap)
	payload, err := e.call(ctx, prompt, locationMaxTokens)
	if err != nil {
		return nil, err
	}
	result, err := oracle.Parse[locationPayload](payload)
	if err != nil {
		return nil, err
	}
	out := dropNameless(result.Locations)
	log.Info("extracted locations", "count", len(out))
	return out, nil
}

// Events extracts event records from text.
func (e *Extractor) Events(ctx context.Context, text string, log *runlog.Logger) ([]*model.Event, error) {
	prompt := buildPrompt(e.Prompts.Events, defaultEventPrompt, text, eventTextCap)
	payload, err := e.call(ctx, prompt, eventMaxTokens)
	if err != nil {
		return nil, err
	}
	result, err := oracle.Parse[eventPayload](payload)
	if err != nil {
		return nil, err
	}
	out := dropNameless(result.Events)
	log.Info("extracted events", "count", len(out))
	return out, nil
}

// Objects extracts object records from text.
func (e *Extractor) Objects(ctx context.Context, text string, log *runlog.Logger) ([]*model.Object, error) {
	prompt := buildPrompt(e.Prompts.Objects, defaultObjectPrompt, text, objectTextCap)
	payload, err := e.call(ctx, prompt, objectMaxTokens)
	if err != nil {
		return nil, err
	}
	result, err := oracle.Parse[objectPayload](payload)
	if err != nil {
		return nil, err
	}
	out := dropNameless(result.Objects)
	log.Info("extracted objects", "count", len(out))
	return out, nil
}

func (e *Extractor) call(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return e.Oracle.Complete(ctx, prompt, systemPrompt, oracle.Options{
		Temperature: extractionTemperature,
		MaxTokens:   maxTokens,
	})
}

// buildPrompt formats the template (config override or default) with a
// capped slice of text.
func buildPrompt(override, fallback, text string, limit int) string {
	template := override
	if template == "" {
		template = fallback
	}
	return fmt.Sprintf(template, capText(text, limit))
}

// capText truncates text to at most limit bytes on a rune boundary,
// appending a continuation marker when anything was cut.
func capText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !isRuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + continuationMarker
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// dropNameless filters out records the oracle returned without a usable
// name.
func dropNameless[T interface{ EntityName() string }](in []T) []T {
	out := in[:0]
	for _, rec := range in {
		if strings.TrimSpace(rec.EntityName()) != "" {
			out = append(out, rec)
		}
	}
	return out
}
