package model

// EntityKind discriminates the four persisted entity record types.
type EntityKind string

const (
	KindCharacter EntityKind = "character"
	KindLocation  EntityKind = "location"
	KindEvent     EntityKind = "event"
	KindObject    EntityKind = "object"
)

// Kinds lists every entity kind in pipeline order.
var Kinds = []EntityKind{KindCharacter, KindLocation, KindEvent, KindObject}

// Mergeable is implemented by entity records that can absorb a duplicate.
// MergeFrom must be deterministic and biased toward the receiver: the
// receiver keeps its primary name and scalar fields, the other record's
// name joins the alias set.
type Mergeable[T any] interface {
	EntityName() string
	MergeFrom(other T)
}

// Character is a person or person-like actor in a universe.
type Character struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Description  string   `json:"description,omitempty"`
	Role         string   `json:"role,omitempty"`
	Personality  string   `json:"personality,omitempty"`
	Appearance   string   `json:"appearance,omitempty"`
	Abilities    []string `json:"abilities,omitempty"`
	Affiliations []string `json:"affiliations,omitempty"`
}

func (c *Character) EntityName() string { return c.Name }

func (c *Character) MergeFrom(other *Character) {
	c.Aliases = mergeAliases(c.Name, c.Aliases, other.Aliases, other.Name)
	c.Description = joinText(c.Description, other.Description)
	c.Role = firstNonEmpty(c.Role, other.Role)
	c.Personality = firstNonEmpty(c.Personality, other.Personality)
	c.Appearance = firstNonEmpty(c.Appearance, other.Appearance)
	c.Abilities = unionList(c.Abilities, other.Abilities)
	c.Affiliations = unionList(c.Affiliations, other.Affiliations)
}

// Location is a place within a universe.
type Location struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Description  string   `json:"description,omitempty"`
	LocationType string   `json:"location_type,omitempty"`
	Significance string   `json:"significance,omitempty"`
	Inhabitants  []string `json:"inhabitants,omitempty"`
}

func (l *Location) EntityName() string { return l.Name }

func (l *Location) MergeFrom(other *Location) {
	l.Aliases = mergeAliases(l.Name, l.Aliases, other.Aliases, other.Name)
	l.Description = joinText(l.Description, other.Description)
	l.LocationType = firstNonEmpty(l.LocationType, other.LocationType)
	l.Significance = firstNonEmpty(l.Significance, other.Significance)
	l.Inhabitants = unionList(l.Inhabitants, other.Inhabitants)
}

// Event is a narrative occurrence within a universe.
type Event struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Description  string   `json:"description,omitempty"`
	Timeframe    string   `json:"timeframe,omitempty"`
	Significance string   `json:"significance,omitempty"`
	Location     string   `json:"location,omitempty"`
	Participants []string `json:"participants,omitempty"`
}

func (e *Event) EntityName() string { return e.Name }

func (e *Event) MergeFrom(other *Event) {
	e.Aliases = mergeAliases(e.Name, e.Aliases, other.Aliases, other.Name)
	e.Description = joinText(e.Description, other.Description)
	e.Timeframe = firstNonEmpty(e.Timeframe, other.Timeframe)
	e.Significance = firstNonEmpty(e.Significance, other.Significance)
	e.Location = firstNonEmpty(e.Location, other.Location)
	e.Participants = unionList(e.Participants, other.Participants)
}

// Object is a notable item or artifact within a universe.
type Object struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases,omitempty"`
	Description  string   `json:"description,omitempty"`
	ObjectType   string   `json:"object_type,omitempty"`
	Significance string   `json:"significance,omitempty"`
	Owner        string   `json:"owner,omitempty"`
	Powers       []string `json:"powers,omitempty"`
}

func (o *Object) EntityName() string { return o.Name }

func (o *Object) MergeFrom(other *Object) {
	o.Aliases = mergeAliases(o.Name, o.Aliases, other.Aliases, other.Name)
	o.Description = joinText(o.Description, other.Description)
	o.ObjectType = firstNonEmpty(o.ObjectType, other.ObjectType)
	o.Significance = firstNonEmpty(o.Significance, other.Significance)
	o.Owner = firstNonEmpty(o.Owner, other.Owner)
	o.Powers = unionList(o.Powers, other.Powers)
}
