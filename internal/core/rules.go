package core

import (
	"ripperdoc/pkg/domain"
)

type (
	// RulesEngine aliases domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Result aliases domain.Result.
	Result = domain.Result
)

// NewDefaultRulesEngine builds a rules engine with the built-in commit rules.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewHumanityFloorRule())
	engine.Register(NewFundsNonNegativeRule())
	engine.Register(NewCyberwareLedgerRule())
	return engine
}

// touchedCharacters returns the post-transaction state of every character
// created or updated by changes.
func touchedCharacters(view domain.RuleView, changes []domain.Change) []domain.Character {
	seen := make(map[string]struct{})
	var out []domain.Character
	for _, ch := range changes {
		if ch.Entity != domain.EntityCharacter || ch.Action == domain.ActionDelete {
			continue
		}
		if _, dup := seen[ch.ID]; dup {
			continue
		}
		seen[ch.ID] = struct{}{}
		if c, ok := view.FindCharacter(ch.ID); ok {
			out = append(out, c)
		}
	}
	return out
}

func blockCharacter(rule string, c domain.Character, msg string) domain.Violation {
	return domain.Violation{
		Rule:     rule,
		Severity: domain.SeverityBlock,
		Message:  msg,
		Entity:   domain.EntityCharacter,
		EntityID: c.ID,
	}
}
