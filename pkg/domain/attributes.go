package domain

import "fmt"

// Stat bounds applied to base values and to displayed effective values.
const (
	MinStat = 1
	MaxStat = 10
)

// StatName enumerates the nine character attributes.
type StatName string

// Canonical stat names, matching their JSON keys.
const (
	StatIntelligence   StatName = "intelligence"
	StatReflexes       StatName = "reflexes"
	StatTechnical      StatName = "technical"
	StatCool           StatName = "cool"
	StatAttractiveness StatName = "attractiveness"
	StatLuck           StatName = "luck"
	StatMovement       StatName = "movement"
	StatBody           StatName = "body"
	StatEmpathy        StatName = "empathy"
)

// AllStats lists every stat in display order.
var AllStats = []StatName{
	StatIntelligence, StatReflexes, StatTechnical, StatCool, StatAttractiveness,
	StatLuck, StatMovement, StatBody, StatEmpathy,
}

// Valid reports whether n names a known stat.
func (n StatName) Valid() bool {
	_, ok := (&Stats{}).field(n)
	return ok
}

// Stats is the fixed attribute record.
type Stats struct {
	Intelligence   int `json:"intelligence"`
	Reflexes       int `json:"reflexes"`
	Technical      int `json:"technical"`
	Cool           int `json:"cool"`
	Attractiveness int `json:"attractiveness"`
	Luck           int `json:"luck"`
	Movement       int `json:"movement"`
	Body           int `json:"body"`
	Empathy        int `json:"empathy"`
}

func (s *Stats) field(n StatName) (*int, bool) {
	switch n {
	case StatIntelligence:
		return &s.Intelligence, true
	case StatReflexes:
		return &s.Reflexes, true
	case StatTechnical:
		return &s.Technical, true
	case StatCool:
		return &s.Cool, true
	case StatAttractiveness:
		return &s.Attractiveness, true
	case StatLuck:
		return &s.Luck, true
	case StatMovement:
		return &s.Movement, true
	case StatBody:
		return &s.Body, true
	case StatEmpathy:
		return &s.Empathy, true
	}
	return nil, false
}

// Get returns the value of the named stat, or zero for an unknown name.
func (s Stats) Get(n StatName) int {
	if p, ok := s.field(n); ok {
		return *p
	}
	return 0
}

// Set assigns the named stat. Unknown names are ignored.
func (s *Stats) Set(n StatName, v int) {
	if p, ok := s.field(n); ok {
		*p = v
	}
}

// Validate checks every stat is within MinStat..MaxStat.
func (s Stats) Validate() error {
	for _, n := range AllStats {
		if v := s.Get(n); v < MinStat || v > MaxStat {
			return fmt.Errorf("stat %s must be between %d and %d, got %d", n, MinStat, MaxStat, v)
		}
	}
	return nil
}

// SkillName enumerates the trained skills.
type SkillName string

// Canonical skill names, matching their JSON keys.
const (
	SkillCombatSense  SkillName = "combatSense"
	SkillRifle        SkillName = "rifle"
	SkillHandgun      SkillName = "handgun"
	SkillBrawling     SkillName = "brawling"
	SkillMartialArts  SkillName = "martialArts"
	SkillDodgeEscape  SkillName = "dodgeEscape"
	SkillElectronics  SkillName = "electronics"
	SkillSecurityTech SkillName = "securityTech"
	SkillMedical      SkillName = "medical"
	SkillStreetwise   SkillName = "streetwise"
	SkillIntimidate   SkillName = "intimidate"
	SkillFastTalk     SkillName = "fastTalk"
	SkillPersuasion   SkillName = "persuasion"
	SkillAthletics    SkillName = "athletics"
	SkillAwareness    SkillName = "awareness"
	SkillDriving      SkillName = "driving"
	SkillStealth      SkillName = "stealth"
	SkillInterface    SkillName = "interface"
)

// AllSkills lists every skill.
var AllSkills = []SkillName{
	SkillCombatSense, SkillRifle, SkillHandgun, SkillBrawling, SkillMartialArts,
	SkillDodgeEscape, SkillElectronics, SkillSecurityTech, SkillMedical,
	SkillStreetwise, SkillIntimidate, SkillFastTalk, SkillPersuasion,
	SkillAthletics, SkillAwareness, SkillDriving, SkillStealth, SkillInterface,
}

// Valid reports whether n names a known skill.
func (n SkillName) Valid() bool {
	_, ok := (&Skills{}).field(n)
	return ok
}

// Skills is the fixed skill record. Missing skills default to zero.
type Skills struct {
	CombatSense  int `json:"combatSense"`
	Rifle        int `json:"rifle"`
	Handgun      int `json:"handgun"`
	Brawling     int `json:"brawling"`
	MartialArts  int `json:"martialArts"`
	DodgeEscape  int `json:"dodgeEscape"`
	Electronics  int `json:"electronics"`
	SecurityTech int `json:"securityTech"`
	Medical      int `json:"medical"`
	Streetwise   int `json:"streetwise"`
	Intimidate   int `json:"intimidate"`
	FastTalk     int `json:"fastTalk"`
	Persuasion   int `json:"persuasion"`
	Athletics    int `json:"athletics"`
	Awareness    int `json:"awareness"`
	Driving      int `json:"driving"`
	Stealth      int `json:"stealth"`
	Interface    int `json:"interface"`
}

func (s *Skills) field(n SkillName) (*int, bool) {
	switch n {
	case SkillCombatSense:
		return &s.CombatSense, true
	case SkillRifle:
		return &s.Rifle, true
	case SkillHandgun:
		return &s.Handgun, true
	case SkillBrawling:
		return &s.Brawling, true
	case SkillMartialArts:
		return &s.MartialArts, true
	case SkillDodgeEscape:
		return &s.DodgeEscape, true
	case SkillElectronics:
		return &s.Electronics, true
	case SkillSecurityTech:
		return &s.SecurityTech, true
	case SkillMedical:
		return &s.Medical, true
	case SkillStreetwise:
		return &s.Streetwise, true
	case SkillIntimidate:
		return &s.Intimidate, true
	case SkillFastTalk:
		return &s.FastTalk, true
	case SkillPersuasion:
		return &s.Persuasion, true
	case SkillAthletics:
		return &s.Athletics, true
	case SkillAwareness:
		return &s.Awareness, true
	case SkillDriving:
		return &s.Driving, true
	case SkillStealth:
		return &s.Stealth, true
	case SkillInterface:
		return &s.Interface, true
	}
	return nil, false
}

// Get returns the level of the named skill, or zero for an unknown name.
func (s Skills) Get(n SkillName) int {
	if p, ok := s.field(n); ok {
		return *p
	}
	return 0
}

// Set assigns the named skill. Unknown names are ignored.
func (s *Skills) Set(n SkillName, v int) {
	if p, ok := s.field(n); ok {
		*p = v
	}
}

// Validate rejects negative skill levels.
func (s Skills) Validate() error {
	for _, n := range AllSkills {
		if v := s.Get(n); v < 0 {
			return fmt.Errorf("skill %s must not be negative, got %d", n, v)
		}
	}
	return nil
}
