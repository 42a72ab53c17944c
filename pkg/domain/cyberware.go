package domain

import "time"

// Category groups catalog entries by the body system they augment.
type Category string

// Catalog categories.
const (
	CategoryNeural  Category = "neural"
	CategoryBody    Category = "body"
	CategorySensory Category = "sensory"
	CategoryWeapons Category = "weapons"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryNeural, CategoryBody, CategorySensory, CategoryWeapons:
		return true
	}
	return false
}

// Availability is the street availability tier of a catalog entry.
type Availability string

// Availability tiers: common, rare, poor, exotic.
const (
	AvailabilityCommon Availability = "C"
	AvailabilityRare   Availability = "R"
	AvailabilityPoor   Availability = "P"
	AvailabilityExotic Availability = "E"
)

// Valid reports whether a is a known availability tier.
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityCommon, AvailabilityRare, AvailabilityPoor, AvailabilityExotic:
		return true
	}
	return false
}

// LegalStatus is the legal standing of a catalog entry.
type LegalStatus string

// Legal statuses.
const (
	LegalStatusLegal      LegalStatus = "legal"
	LegalStatusRestricted LegalStatus = "restricted"
	LegalStatusIllegal    LegalStatus = "illegal"
)

// Valid reports whether l is a known legal status.
func (l LegalStatus) Valid() bool {
	switch l {
	case LegalStatusLegal, LegalStatusRestricted, LegalStatusIllegal:
		return true
	}
	return false
}

// ComplicationSeverity grades a complication.
type ComplicationSeverity string

// Complication severities, mildest first.
const (
	ComplicationMinor    ComplicationSeverity = "minor"
	ComplicationMajor    ComplicationSeverity = "major"
	ComplicationCritical ComplicationSeverity = "critical"
)

// Valid reports whether s is a known complication severity.
func (s ComplicationSeverity) Valid() bool {
	switch s {
	case ComplicationMinor, ComplicationMajor, ComplicationCritical:
		return true
	}
	return false
}

// Quality is the graded outcome of an installation attempt.
type Quality string

// Quality tiers, best first.
const (
	QualityPerfect Quality = "perfect"
	QualityGood    Quality = "good"
	QualityPoor    Quality = "poor"
	QualityBotched Quality = "botched"
)

// Succeeded reports whether the tier counts as a successful installation.
func (q Quality) Succeeded() bool {
	return q == QualityPerfect || q == QualityGood
}

// RiskTier is the cyberpsychosis risk band.
type RiskTier string

// Risk tiers, lowest first.
const (
	RiskNone     RiskTier = "none"
	RiskLow      RiskTier = "low"
	RiskModerate RiskTier = "moderate"
	RiskHigh     RiskTier = "high"
	RiskCritical RiskTier = "critical"
)

// GameEffects are the mechanical effects an implant grants.
type GameEffects struct {
	StatBonuses      map[StatName]int  `json:"statBonuses"`
	SpecialAbilities []string          `json:"specialAbilities"`
	SkillBonuses     map[SkillName]int `json:"skillBonuses"`
}

// Clone returns a deep copy.
func (g GameEffects) Clone() GameEffects {
	cp := GameEffects{
		StatBonuses:      make(map[StatName]int, len(g.StatBonuses)),
		SpecialAbilities: append([]string{}, g.SpecialAbilities...),
		SkillBonuses:     make(map[SkillName]int, len(g.SkillBonuses)),
	}
	for k, v := range g.StatBonuses {
		cp.StatBonuses[k] = v
	}
	for k, v := range g.SkillBonuses {
		cp.SkillBonuses[k] = v
	}
	return cp
}

// Complication is a possible adverse outcome listed on a catalog entry.
// RollRange is an inclusive d10 band such as "1-2" or "1".
type Complication struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Severity    ComplicationSeverity `json:"severity"`
	RollRange   string               `json:"rollRange"`
}

// CyberwareCatalogItem is immutable reference data seeded at startup.
type CyberwareCatalogItem struct {
	Base
	Name                   string         `json:"name"`
	Category               Category       `json:"category"`
	Subcategory            string         `json:"subcategory"`
	HumanityCost           int            `json:"humanityCost"`
	Cost                   int            `json:"cost"`
	InstallationDifficulty int            `json:"installationDifficulty"`
	SurgeryTime            int            `json:"surgeryTime"`
	Description            string         `json:"description"`
	GameEffects            GameEffects    `json:"gameEffects"`
	Complications          []Complication `json:"complications"`
	Availability           Availability   `json:"availability"`
	StreetPrice            *int           `json:"streetPrice,omitempty"`
	LegalStatus            LegalStatus    `json:"legalStatus"`
	BodyLocation           string         `json:"bodyLocation,omitempty"`
}

// InstallationOptions are the per-request toggles that adjust price and difficulty.
type InstallationOptions struct {
	UseStreetDoc  bool `json:"useStreetDoc"`
	RushJob       bool `json:"rushJob"`
	QualityClinic bool `json:"qualityClinic"`
	Anesthesia    bool `json:"anesthesia"`
}

// DefaultInstallationOptions mirrors the shop defaults: anesthesia only.
func DefaultInstallationOptions() InstallationOptions {
	return InstallationOptions{Anesthesia: true}
}

// InstallationResult is the resolver's immutable verdict for one attempt.
type InstallationResult struct {
	Success             bool           `json:"success"`
	Quality             Quality        `json:"quality"`
	Roll                int            `json:"roll"`
	DieRoll             int            `json:"dieRoll"`
	EffectiveDifficulty int            `json:"effectiveDifficulty"`
	Margin              int            `json:"margin"`
	Complications       []Complication `json:"complications"`
	FinalPrice          int            `json:"finalPrice"`
	HumanityLoss        int            `json:"humanityLoss"`
}

// Implant is one installed unit. Catalog fields are copied so later catalog
// edits leave history untouched.
type Implant struct {
	ID                  string      `json:"id"`
	CatalogID           string      `json:"catalogId"`
	Name                string      `json:"name"`
	Category            Category    `json:"category"`
	Subcategory         string      `json:"subcategory"`
	HumanityCost        int         `json:"humanityCost"`
	Description         string      `json:"description"`
	GameEffects         GameEffects `json:"gameEffects"`
	InstallationDate    time.Time   `json:"installationDate"`
	InstallationQuality Quality     `json:"installationQuality"`
	PaidPrice           int         `json:"paidPrice"`
	IsActive            bool        `json:"isActive"`
	Complications       []string    `json:"complications"`
}

// GrantsBonuses reports whether the implant's stat and skill bonuses apply.
// Only active implants installed at good or perfect quality grant them.
func (i Implant) GrantsBonuses() bool {
	return i.IsActive && i.InstallationQuality.Succeeded()
}

// PsychologicalState is the cached mental toll of installed cyberware.
type PsychologicalState struct {
	EmpathyPenalty     int        `json:"empathyPenalty"`
	CyberpsychosisRisk RiskTier   `json:"cyberpsychosisRisk"`
	Symptoms           []string   `json:"symptoms"`
	LastBreakdown      *time.Time `json:"lastBreakdown,omitempty"`
}

// Cyberware is the per-character implant aggregate.
type Cyberware struct {
	Implants           []Implant          `json:"implants"`
	TotalHumanityLoss  int                `json:"totalHumanityLoss"`
	PsychologicalState PsychologicalState `json:"psychologicalState"`
}

// ActiveHumanityLoss sums humanity cost over active implants.
func (c Cyberware) ActiveHumanityLoss() int {
	total := 0
	for _, implant := range c.Implants {
		if implant.IsActive {
			total += implant.HumanityCost
		}
	}
	return total
}
