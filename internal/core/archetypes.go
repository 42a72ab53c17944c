package core

import (
	"slices"
	"strings"

	"ripperdoc/pkg/domain"
)

// Archetype is a character template.
type Archetype struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	SpecialAbility string           `json:"specialAbility"`
	PrimarySkills  []string         `json:"primarySkills"`
	BaseStats      domain.Stats     `json:"baseStats"`
	BaseSkills     domain.Skills    `json:"baseSkills"`
	Equipment      domain.Equipment `json:"startingEquipment"`
}

var archetypes = []Archetype{
	{
		Name:           "Solo",
		Description:    "Combat specialist and mercenary",
		SpecialAbility: "Combat Sense - Enhanced awareness and reflexes in combat situations",
		PrimarySkills:  []string{"Combat Sense", "Rifle", "Handgun", "Brawling"},
		BaseStats:      domain.Stats{Intelligence: 6, Reflexes: 8, Technical: 4, Cool: 7, Attractiveness: 6, Luck: 5, Movement: 7, Body: 8, Empathy: 4},
		BaseSkills: domain.Skills{
			CombatSense: 8, Rifle: 8, Handgun: 6, Brawling: 7, MartialArts: 5, DodgeEscape: 6,
			Electronics: 2, SecurityTech: 3, Streetwise: 7, Intimidate: 6, FastTalk: 3, Persuasion: 2,
			Athletics: 6, Awareness: 7, Driving: 4, Stealth: 5,
		},
		Equipment: domain.Equipment{
			Weapons: []domain.Weapon{
				{Name: "Militech Assault Rifle", Type: "assault_rifle", Damage: "5d6", Accuracy: 1, Concealment: "N", Availability: "P", ROF: 25, Reliability: "VR"},
				{Name: "Federated Arms X-22", Type: "handgun", Damage: "2d6+1", Concealment: "P", Availability: "C", ROF: 2, Reliability: "ST"},
			},
			Armor: []domain.Armor{{Name: "Kevlar Vest", SP: 14, Cost: 200}},
			Gear: []domain.Gear{
				{Name: "Braindance Deck", Description: "Personal entertainment system", Cost: 400},
				{Name: "Medtech Kit", Description: "First aid supplies", Cost: 100},
				{Name: "Scrambler/Descrambler", Description: "Communication encryption", Cost: 500},
			},
		},
	},
	{
		Name:           "Netrunner",
		Description:    "Hacker and data specialist",
		SpecialAbility: "Interface - Direct neural connection to cyberspace",
		PrimarySkills:  []string{"Interface", "Electronics", "Programming", "System Knowledge"},
		BaseStats:      domain.Stats{Intelligence: 9, Reflexes: 6, Technical: 8, Cool: 7, Attractiveness: 5, Luck: 6, Movement: 5, Body: 4, Empathy: 6},
		BaseSkills: domain.Skills{
			Rifle: 2, Handgun: 4, Brawling: 3, DodgeEscape: 5,
			Electronics: 9, SecurityTech: 8, Streetwise: 6, Intimidate: 3, FastTalk: 5, Persuasion: 6,
			Athletics: 3, Awareness: 7, Driving: 4, Stealth: 6, Interface: 8,
		},
		Equipment: domain.Equipment{
			Weapons: []domain.Weapon{
				{Name: "Light Autopistol", Type: "handgun", Damage: "2d6", Concealment: "J", Availability: "P", ROF: 2, Reliability: "ST"},
			},
			Armor: []domain.Armor{{Name: "Armor Jacket", SP: 10, Cost: 50}},
			Gear: []domain.Gear{
				{Name: "Cyberdeck", Description: "Portable computer system", Cost: 5000},
				{Name: "Interface Plugs", Description: "Neural interface hardware", Cost: 200},
				{Name: "Scrambler/Descrambler", Description: "Communication encryption", Cost: 500},
			},
		},
	},
	{
		Name:           "Techie",
		Description:    "Engineer and tech specialist",
		SpecialAbility: "Jury Rig - Create temporary solutions from available materials",
		PrimarySkills:  []string{"Electronics", "Basic Tech", "Cybertech", "AV Tech"},
		BaseStats:      domain.Stats{Intelligence: 8, Reflexes: 6, Technical: 9, Cool: 6, Attractiveness: 5, Luck: 7, Movement: 6, Body: 6, Empathy: 7},
		BaseSkills: domain.Skills{
			Rifle: 3, Handgun: 5, Brawling: 4, DodgeEscape: 4,
			Electronics: 8, SecurityTech: 7, Streetwise: 5, Intimidate: 3, FastTalk: 6, Persuasion: 7,
			Athletics: 4, Awareness: 6, Driving: 7, Stealth: 4,
		},
		Equipment: domain.Equipment{
			Weapons: []domain.Weapon{
				{Name: "Heavy Pistol", Type: "handgun", Damage: "3d6", Concealment: "L", Availability: "C", ROF: 2, Reliability: "ST"},
			},
			Armor: []domain.Armor{{Name: "Armor Vest", SP: 12, Cost: 75}},
			Gear: []domain.Gear{
				{Name: "Tech Toolkit", Description: "Comprehensive repair kit", Cost: 300},
				{Name: "Electronics Kit", Description: "Circuit boards and components", Cost: 500},
				{Name: "Cybernetic Scanner", Description: "Diagnostic equipment", Cost: 1000},
			},
		},
	},
}

// Archetypes returns copies of the character templates.
func Archetypes() []Archetype {
	out := make([]Archetype, 0, len(archetypes))
	for _, a := range archetypes {
		out = append(out, a.clone())
	}
	return out
}

// FindArchetype looks a template up by case-insensitive name.
func FindArchetype(name string) (Archetype, bool) {
	i := slices.IndexFunc(archetypes, func(a Archetype) bool {
		return strings.EqualFold(a.Name, strings.TrimSpace(name))
	})
	if i < 0 {
		return Archetype{}, false
	}
	return archetypes[i].clone(), true
}

func (a Archetype) clone() Archetype {
	cp := a
	cp.PrimarySkills = slices.Clone(a.PrimarySkills)
	cp.Equipment = domain.Equipment{
		Weapons: slices.Clone(a.Equipment.Weapons),
		Armor:   slices.Clone(a.Equipment.Armor),
		Gear:    slices.Clone(a.Equipment.Gear),
	}
	return cp
}
