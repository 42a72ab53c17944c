package core

import (
	"context"
	"fmt"

	"ripperdoc/pkg/domain"
)

// NewCyberwareLedgerRule checks the cached humanity loss against the active implants.
func NewCyberwareLedgerRule() domain.Rule {
	return cyberwareLedgerRule{}
}

type cyberwareLedgerRule struct{}

func (cyberwareLedgerRule) Name() string { return "cyberware_ledger" }

func (r cyberwareLedgerRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, c := range touchedCharacters(view, changes) {
		want := c.Cyberware.ActiveHumanityLoss()
		if c.Cyberware.TotalHumanityLoss != want {
			res.Violations = append(res.Violations, blockCharacter(r.Name(), c,
				fmt.Sprintf("character %s (%s) total humanity loss %d, active implants sum to %d", c.Name, c.ID, c.Cyberware.TotalHumanityLoss, want)))
		}
	}
	return res, nil
}
