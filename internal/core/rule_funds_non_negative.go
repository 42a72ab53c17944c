package core

import (
	"context"
	"fmt"

	"ripperdoc/pkg/domain"
)

// NewFundsNonNegativeRule blocks commits that overdraw a character.
func NewFundsNonNegativeRule() domain.Rule {
	return fundsNonNegativeRule{}
}

type fundsNonNegativeRule struct{}

func (fundsNonNegativeRule) Name() string { return "funds_non_negative" }

func (r fundsNonNegativeRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, c := range touchedCharacters(view, changes) {
		if c.Eurodollars < 0 {
			res.Violations = append(res.Violations, blockCharacter(r.Name(), c,
				fmt.Sprintf("character %s (%s) eurodollars %d below zero", c.Name, c.ID, c.Eurodollars)))
		}
	}
	return res, nil
}
