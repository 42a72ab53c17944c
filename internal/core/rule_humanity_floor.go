package core

import (
	"context"
	"fmt"

	"ripperdoc/pkg/domain"
)

// NewHumanityFloorRule blocks commits that leave a character with no humanity.
func NewHumanityFloorRule() domain.Rule {
	return humanityFloorRule{}
}

type humanityFloorRule struct{}

func (humanityFloorRule) Name() string { return "humanity_floor" }

func (r humanityFloorRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, c := range touchedCharacters(view, changes) {
		if c.Humanity <= 0 {
			res.Violations = append(res.Violations, blockCharacter(r.Name(), c,
				fmt.Sprintf("character %s (%s) humanity %d must stay above zero", c.Name, c.ID, c.Humanity)))
		}
	}
	return res, nil
}
