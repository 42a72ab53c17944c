// Package catalog ships the seed cyberware catalog and validates catalog
// entries before they reach the record store.
package catalog

import (
	"bytes"
	"cmp"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"ripperdoc/internal/install"
	"ripperdoc/pkg/domain"
)

//go:embed seed.json
var seedJSON []byte

// namespace scopes the name-derived catalog IDs so reseeding yields the same IDs.
var namespace = uuid.MustParse("6f1c1d8e-2a0b-4f0e-9d5c-7e2077c0ffee")

// Validation bounds for catalog entries.
const (
	MinHumanityCost = 1
	MaxHumanityCost = 8
	MinDifficulty   = 10
	MaxDifficulty   = 30
	MinSurgeryTime  = 15
	MaxSurgeryTime  = 480
)

// ItemID returns the stable ID assigned to a catalog entry name.
func ItemID(name string) string {
	return uuid.NewSHA1(namespace, []byte(strings.ToLower(strings.TrimSpace(name)))).String()
}

// Seed returns the embedded catalog with IDs assigned, validated.
func Seed() ([]domain.CyberwareCatalogItem, error) {
	return Decode(seedJSON)
}

// Decode parses and validates a JSON array of catalog entries. Entries
// without an ID receive ItemID(name).
func Decode(data []byte) ([]domain.CyberwareCatalogItem, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var items []domain.CyberwareCatalogItem
	if err := dec.Decode(&items); err != nil {
		return nil, domain.WrapError(domain.CodeConfigurationError, "decode catalog", err)
	}
	seen := make(map[string]string, len(items))
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = ItemID(items[i].Name)
		}
		if err := Validate(items[i]); err != nil {
			return nil, err
		}
		if prev, dup := seen[items[i].ID]; dup {
			return nil, domain.NewError(domain.CodeConfigurationError, fmt.Sprintf("catalog entries %q and %q share id %s", prev, items[i].Name, items[i].ID))
		}
		seen[items[i].ID] = items[i].Name
	}
	return items, nil
}

// Validate checks a catalog entry and reports CONFIGURATION_ERROR on the
// first problem found.
func Validate(item domain.CyberwareCatalogItem) error {
	var problems []string
	if strings.TrimSpace(item.Name) == "" {
		problems = append(problems, "name is required")
	}
	if !item.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unknown category %q", item.Category))
	}
	if item.HumanityCost < MinHumanityCost || item.HumanityCost > MaxHumanityCost {
		problems = append(problems, fmt.Sprintf("humanity cost %d outside %d-%d", item.HumanityCost, MinHumanityCost, MaxHumanityCost))
	}
	if item.Cost <= 0 {
		problems = append(problems, "cost must be positive")
	}
	if item.InstallationDifficulty < MinDifficulty || item.InstallationDifficulty > MaxDifficulty {
		problems = append(problems, fmt.Sprintf("installation difficulty %d outside %d-%d", item.InstallationDifficulty, MinDifficulty, MaxDifficulty))
	}
	if item.SurgeryTime < MinSurgeryTime || item.SurgeryTime > MaxSurgeryTime {
		problems = append(problems, fmt.Sprintf("surgery time %d outside %d-%d", item.SurgeryTime, MinSurgeryTime, MaxSurgeryTime))
	}
	if !item.Availability.Valid() {
		problems = append(problems, fmt.Sprintf("unknown availability %q", item.Availability))
	}
	if !item.LegalStatus.Valid() {
		problems = append(problems, fmt.Sprintf("unknown legal status %q", item.LegalStatus))
	}
	for stat := range item.GameEffects.StatBonuses {
		if !stat.Valid() {
			problems = append(problems, fmt.Sprintf("unknown stat %q", stat))
		}
	}
	for skill := range item.GameEffects.SkillBonuses {
		if !skill.Valid() {
			problems = append(problems, fmt.Sprintf("unknown skill %q", skill))
		}
	}
	for _, c := range item.Complications {
		if !c.Severity.Valid() {
			problems = append(problems, fmt.Sprintf("complication %q: unknown severity %q", c.Name, c.Severity))
		}
		if _, err := install.ParseRollRange(c.RollRange); err != nil {
			problems = append(problems, fmt.Sprintf("complication %q: %v", c.Name, err))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return domain.ErrorWithMetadata(domain.CodeConfigurationError,
		fmt.Sprintf("cyberware %q: %s", item.Name, strings.Join(problems, "; ")),
		map[string]string{"cyberwareId": item.ID})
}

// Populate writes every item missing from store in one transaction and
// returns how many were created. Items already present are left untouched.
func Populate(ctx context.Context, store domain.PersistentStore, items []domain.CyberwareCatalogItem) (int, error) {
	created := 0
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, item := range items {
			if _, exists := tx.FindCyberware(item.ID); exists {
				continue
			}
			if _, err := tx.CreateCyberware(item); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// SortKey orders catalog listings.
type SortKey string

// Supported listing orders.
const (
	SortName       SortKey = "name"
	SortCost       SortKey = "cost"
	SortHumanity   SortKey = "humanity"
	SortDifficulty SortKey = "difficulty"
)

// ParseSortKey validates a listing order; the empty string means name.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortName, nil
	case SortName, SortCost, SortHumanity, SortDifficulty:
		return k, nil
	}
	return "", domain.NewError(domain.CodeInvalidArgument, fmt.Sprintf("unknown sort %q", s))
}

// Sort orders items in place by key, breaking ties by name.
func Sort(items []domain.CyberwareCatalogItem, key SortKey) {
	slices.SortStableFunc(items, func(a, b domain.CyberwareCatalogItem) int {
		var c int
		switch key {
		case SortCost:
			c = cmp.Compare(a.Cost, b.Cost)
		case SortHumanity:
			c = cmp.Compare(a.HumanityCost, b.HumanityCost)
		case SortDifficulty:
			c = cmp.Compare(a.InstallationDifficulty, b.InstallationDifficulty)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// FilterCategory returns the items in category.
func FilterCategory(items []domain.CyberwareCatalogItem, category domain.Category) []domain.CyberwareCatalogItem {
	out := make([]domain.CyberwareCatalogItem, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}
