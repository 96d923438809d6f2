package model

// Relationship links two persisted entities within one universe. The type
// vocabulary is open (friend, enemy, family, romantic, mentor, rival, ally,
// located-at, ...); Strength, when present, is in [0,1].
type Relationship struct {
	ID          string     `json:"id,omitempty"`
	UniverseID  string     `json:"universe_id"`
	SourceKind  EntityKind `json:"source_kind"`
	SourceID    string     `json:"source_id"`
	TargetKind  EntityKind `json:"target_kind"`
	TargetID    string     `json:"target_id"`
	Type        string     `json:"type"`
	Description string     `json:"description,omitempty"`
	Strength    float64    `json:"strength,omitempty"`
}

// Page is a derived per-entity page record, generated best-effort after
// entities persist.
type Page struct {
	ID         string     `json:"id,omitempty"`
	UniverseID string     `json:"universe_id"`
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   string     `json:"entity_id"`
	Title      string     `json:"title"`
}

// Universe is one narrative work being catalogued, the scoping unit for all
// entities, relationships and jobs.
type Universe struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}
