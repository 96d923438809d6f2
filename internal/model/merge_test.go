package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCharacterMergeKeepsReceiver(t *testing.T) {
	kept := &Character{
		Name:        "Jon Snow",
		Description: "Bastard of Winterfell.",
		Role:        "protagonist",
		Abilities:   []string{"swordsmanship"},
	}
	other := &Character{
		Name:         "Lord Snow",
		Aliases:      []string{"The White Wolf"},
		Description:  "Lord Commander of the Night's Watch.",
		Role:         "commander",
		Personality:  "brooding",
		Abilities:    []string{"Swordsmanship", "leadership"},
		Affiliations: []string{"Night's Watch"},
	}

	kept.MergeFrom(other)

	assert.Equal(t, "Jon Snow", kept.Name, "receiver keeps its primary name")
	assert.Equal(t, []string{"The White Wolf", "Lord Snow"}, kept.Aliases,
		"the absorbed record's name becomes an alias")
	assert.Equal(t, "Bastard of Winterfell.\n\nLord Commander of the Night's Watch.", kept.Description)
	assert.Equal(t, "protagonist", kept.Role, "scalar fields keep the first non-empty value")
	assert.Equal(t, "brooding", kept.Personality)
	assert.Equal(t, []string{"swordsmanship", "leadership"}, kept.Abilities,
		"list union deduplicates case-insensitively")
	assert.Equal(t, []string{"Night's Watch"}, kept.Affiliations)
}

func TestMergeIdenticalDescriptionsNotDoubled(t *testing.T) {
	kept := &Location{Name: "Winterfell", Description: "Seat of House Stark."}
	kept.MergeFrom(&Location{Name: "winterfell", Description: "seat of house stark."})

	assert.Equal(t, "Seat of House Stark.", kept.Description)
	assert.Equal(t, []string{"winterfell"}, kept.Aliases)
}

func TestMergeIntoEmptyFields(t *testing.T) {
	kept := &Object{Name: "Longclaw"}
	kept.MergeFrom(&Object{
		Name:        "Longclaw",
		Description: "A Valyrian steel sword.",
		ObjectType:  "weapon",
		Owner:       "Jon Snow",
		Powers:      []string{"never dulls"},
	})

	assert.Equal(t, "A Valyrian steel sword.", kept.Description)
	assert.Equal(t, "weapon", kept.ObjectType)
	assert.Equal(t, "Jon Snow", kept.Owner)
	assert.Equal(t, []string{"never dulls"}, kept.Powers)
	assert.Empty(t, kept.Aliases, "an identical name does not become an alias")
}

func TestEventMergeUnionsParticipants(t *testing.T) {
	kept := &Event{
		Name:         "Battle of the Bastards",
		Timeframe:    "year 303",
		Participants: []string{"Jon Snow", "Ramsay Bolton"},
	}
	kept.MergeFrom(&Event{
		Name:         "The Battle for Winterfell",
		Location:     "Winterfell",
		Participants: []string{"ramsay bolton", "Sansa Stark"},
	})

	assert.Equal(t, "year 303", kept.Timeframe)
	assert.Equal(t, "Winterfell", kept.Location)
	assert.Equal(t, []string{"Jon Snow", "Ramsay Bolton", "Sansa Stark"}, kept.Participants)
	assert.Equal(t, []string{"The Battle for Winterfell"}, kept.Aliases)
}
