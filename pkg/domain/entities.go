// Package domain defines the persistent entities, value types, and rule
// evaluation primitives used by ripperdoc.
package domain

import "time"

// EntityType identifies the type of record stored in the record store.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityCharacter identifies a player character record.
	EntityCharacter EntityType = "character"
	// EntityCyberware identifies an immutable cyberware catalog entry.
	EntityCyberware EntityType = "cyberware"
	// EntityInstallation identifies an installation history record.
	EntityInstallation EntityType = "installation"
	// EntitySave identifies a save slot snapshot.
	EntitySave EntityType = "save"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records. Version increases on
// every committed write and backs optimistic concurrency checks.
type Base struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Weapon is a carried weapon from the starting kit or later purchases.
type Weapon struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Damage       string `json:"damage"`
	Accuracy     int    `json:"accuracy"`
	Concealment  string `json:"concealment"`
	Availability string `json:"availability"`
	ROF          int    `json:"rof,omitempty"`
	Reliability  string `json:"reliability,omitempty"`
}

// Armor is a worn armor piece.
type Armor struct {
	Name string `json:"name"`
	SP   int    `json:"sp"`
	EV   int    `json:"ev"`
	Cost int    `json:"cost"`
}

// Gear is miscellaneous carried equipment.
type Gear struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost,omitempty"`
}

// Equipment groups everything a character carries.
type Equipment struct {
	Weapons []Weapon `json:"weapons"`
	Armor   []Armor  `json:"armor"`
	Gear    []Gear   `json:"gear"`
}

// Character is a player character. Humanity, MaxHumanity, Eurodollars and
// Cyberware are only changed by engine-governed paths.
type Character struct {
	Base
	Name        string    `json:"name"`
	Archetype   string    `json:"archetype"`
	Background  string    `json:"background,omitempty"`
	Stats       Stats     `json:"stats"`
	Skills      Skills    `json:"skills"`
	Equipment   Equipment `json:"equipment"`
	Cyberware   Cyberware `json:"cyberware"`
	Health      int       `json:"health"`
	MaxHealth   int       `json:"maxHealth"`
	Humanity    int       `json:"humanity"`
	MaxHumanity int       `json:"maxHumanity"`
	Reputation  int       `json:"reputation"`
	StreetCred  int       `json:"streetCred"`
	Eurodollars int       `json:"eurodollars"`
}

// InstallationComplication is a complication as recorded on the history entry.
type InstallationComplication struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Severity    ComplicationSeverity `json:"severity"`
	Resolved    bool                 `json:"resolved"`
}

// Installation is the history entry written by every installation attempt.
type Installation struct {
	Base
	CharacterID   string                     `json:"characterId"`
	CyberwareID   string                     `json:"cyberwareId"`
	ImplantID     string                     `json:"implantId"`
	Quality       Quality                    `json:"installationQuality"`
	MedicalRoll   int                        `json:"medicalRoll"`
	Complications []InstallationComplication `json:"complications"`
	PaidPrice     int                        `json:"paidPrice"`
	InstalledBy   string                     `json:"installedBy,omitempty"`
	RecoveryDays  int                        `json:"recoveryTime"`
	IsActive      bool                       `json:"isActive"`
}

// SaveSlot is a named snapshot of a character.
type SaveSlot struct {
	Base
	CharacterID       string    `json:"characterId"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	CharacterSnapshot Character `json:"characterSnapshot"`
}

// Change describes a mutation applied to an entity within a transaction.
type Change struct {
	Entity EntityType
	Action Action
	ID     string
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
