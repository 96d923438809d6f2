package extraction

// systemPrompt frames every extraction call. Extraction favors determinism
// over creativity, so calls run at low temperature.
const systemPrompt = "You are a careful literary analyst. You extract structured facts from narrative text and respond with JSON only, no commentary and no markdown fences."

// continuationMarker is appended when the source text is truncated to fit
// the per-kind cap.
const continuationMarker = "\n\n[... text continues beyond this excerpt ...]"

const defaultCharacterPrompt = `Extract every named character from the following narrative text.

Respond with a JSON object of this exact shape:
{
  "characters": [
    {
      "name": "primary name",
      "aliases": ["other names used for this character"],
      "description": "who they are, one or two sentences",
      "role": "protagonist | antagonist | supporting | minor",
      "personality": "notable traits",
      "appearance": "physical description if given",
      "abilities": ["notable skills or powers"],
      "affiliations": ["groups, houses, factions"]
    }
  ]
}

Omit fields the text does not support. Do not invent characters.

TEXT:
%s`

const defaultLocationPrompt = `Extract every named location from the following narrative text.

Respond with a JSON object of this exact shape:
{
  "locations": [
    {
      "name": "primary name",
      "aliases": ["other names for this place"],
      "description": "what this place is",
      "location_type": "city | building | region | realm | other",
      "significance": "why this place matters to the story",
      "inhabitants": ["who lives or works there"]
    }
  ]
}

Omit fields the text does not support. Do not invent locations.

TEXT:
%s`

const defaultEventPrompt = `Extract the significant named events from the following narrative text.

Respond with a JSON object of this exact shape:
{
  "events": [
    {
      "name": "short event name",
      "aliases": ["other names for this event"],
      "description": "what happened",
      "timeframe": "when it happened, as stated in the text",
      "significance": "why it matters",
      "location": "where it happened",
      "participants": ["characters involved"]
    }
  ]
}

Omit fields the text does not support. Do not invent events.

TEXT:
%s`

const defaultObjectPrompt = `Extract the notable named objects and artifacts from the following narrative text.

Respond with a JSON object of this exact shape:
{
  "objects": [
    {
      "name": "primary name",
      "aliases": ["other names for this object"],
      "description": "what it is",
      "object_type": "weapon | artifact | document | vehicle | other",
      "significance": "why it matters to the story",
      "owner": "who holds or owns it",
      "powers": ["special properties"]
    }
  ]
}

Omit fields the text does not support. Do not invent objects.

TEXT:
%s`
