package core

import (
	"context"
	"testing"

	"ripperdoc/internal/infra/persistence/memory"
	"ripperdoc/pkg/domain"
)

func TestSeedCatalogIsIdempotent(t *testing.T) {
	svc := NewService(memory.NewStore(NewDefaultRulesEngine()))
	ctx := context.Background()

	n, err := svc.SeedCatalog(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 17 || len(svc.GetAllCyberware()) != 17 {
		t.Fatalf("expected 17 entries, added %d", n)
	}
	again, err := svc.SeedCatalog(ctx)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected reseed to add nothing, added %d", again)
	}
}

func TestCatalogQueries(t *testing.T) {
	svc := NewService(memory.NewStore(NewDefaultRulesEngine()))
	ctx := context.Background()
	if _, err := svc.SeedCatalog(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	neural, err := svc.GetCyberwareByCategory(domain.CategoryNeural)
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(neural) == 0 {
		t.Fatalf("expected neural entries")
	}
	for _, item := range neural {
		if item.Category != domain.CategoryNeural {
			t.Fatalf("unexpected category %s", item.Category)
		}
	}
	if _, err := svc.GetCyberwareByCategory("fashionware"); domain.CodeOf(err) != domain.CodeInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	byCost, err := svc.ListCyberware("", "cost")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(byCost); i++ {
		if byCost[i-1].Cost > byCost[i].Cost {
			t.Fatalf("not sorted by cost at %d", i)
		}
	}
	if _, err := svc.ListCyberware("", "weight"); domain.CodeOf(err) != domain.CodeInvalidArgument {
		t.Fatalf("expected invalid sort, got %v", err)
	}

	item := byCost[0]
	got, err := svc.GetCyberware(item.ID)
	if err != nil || got.Name != item.Name {
		t.Fatalf("get cyberware: %+v %v", got, err)
	}
	if _, err := svc.GetCyberware("nope"); domain.CodeOf(err) != domain.CodeCyberwareNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
