package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ripperdoc/pkg/domain"
)

func fixedClock() func() time.Time {
	now := time.Date(2077, 3, 14, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func seedCharacter(t *testing.T, store *Store, name string) Character {
	t.Helper()
	var created Character
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		created, err = tx.CreateCharacter(Character{Name: name, Humanity: 50, MaxHumanity: 50, Eurodollars: 2000})
		return err
	})
	if err != nil {
		t.Fatalf("create character: %v", err)
	}
	return created
}

func TestRunInTransactionCommitsAndVersions(t *testing.T) {
	store := NewStore(nil, WithClock(fixedClock()))
	c := seedCharacter(t, store, "V")
	if c.ID == "" || c.Version != 1 {
		t.Fatalf("expected generated id and version 1, got %+v", c.Base)
	}
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateCharacter(c.ID, func(ch *Character) error {
			ch.Eurodollars -= 500
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := store.GetCharacter(c.ID)
	if !ok || got.Eurodollars != 1500 || got.Version != 2 {
		t.Fatalf("unexpected stored character: %+v", got)
	}
	if !got.CreatedAt.Equal(c.CreatedAt) || !got.UpdatedAt.After(c.UpdatedAt) {
		t.Fatalf("timestamps not maintained: %+v", got.Base)
	}
}

func TestFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := NewStore(nil)
	c := seedCharacter(t, store, "Jackie")
	boom := errors.New("boom")
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, err := tx.UpdateCharacter(c.ID, func(ch *Character) error {
			ch.Humanity = 1
			return nil
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := store.GetCharacter(c.ID)
	if got.Humanity != 50 || got.Version != 1 {
		t.Fatalf("state leaked from failed transaction: %+v", got)
	}
}

func TestConcurrentUpdateConflicts(t *testing.T) {
	store := NewStore(nil)
	c := seedCharacter(t, store, "Judy")
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	errs := make(chan error, 1)
	go func() {
		_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
			_, err := tx.UpdateCharacter(c.ID, func(ch *Character) error {
				ch.Eurodollars -= 100
				return nil
			})
			close(entered)
			<-release
			return err
		})
		errs <- err
	}()
	<-entered
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		_, err := tx.UpdateCharacter(c.ID, func(ch *Character) error {
			ch.Eurodollars -= 200
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("first committer should win: %v", err)
	}
	close(release)
	err = <-errs
	if !errors.Is(err, domain.ErrConcurrencyConflict) {
		t.Fatalf("expected concurrency conflict, got %v", err)
	}
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Metadata["id"] != c.ID {
		t.Fatalf("expected conflict metadata, got %#v", err)
	}
	got, _ := store.GetCharacter(c.ID)
	if got.Eurodollars != 1800 {
		t.Fatalf("expected only the winning write, got %d", got.Eurodollars)
	}
}

func TestCommitHookFailureAbortsCommit(t *testing.T) {
	var seen []Change
	fail := false
	store := NewStore(nil, WithCommitHook(func(_ context.Context, changes []Change) error {
		if fail {
			return errors.New("disk full")
		}
		seen = append(seen, changes...)
		return nil
	}))
	c := seedCharacter(t, store, "Panam")
	if len(seen) != 1 || seen[0].Action != domain.ActionCreate {
		t.Fatalf("expected hook to observe create, got %+v", seen)
	}
	fail = true
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateCharacter(c.ID, func(ch *Character) error {
			ch.Reputation = 9
			return nil
		})
		return err
	})
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("expected storage failure, got %v", err)
	}
	got, _ := store.GetCharacter(c.ID)
	if got.Reputation != 0 || got.Version != 1 {
		t.Fatalf("failed hook must not publish: %+v", got)
	}
}

type blockRule struct{}

func (blockRule) Name() string { return "no_rich" }

func (blockRule) Evaluate(_ context.Context, view domain.RuleView, _ []Change) (Result, error) {
	var res Result
	for _, c := range view.ListCharacters() {
		if c.Eurodollars > 5000 {
			res.Violations = append(res.Violations, domain.Violation{Rule: "no_rich", Severity: domain.SeverityBlock, Entity: domain.EntityCharacter, EntityID: c.ID})
		}
	}
	return res, nil
}

func TestBlockingRuleRejectsCommit(t *testing.T) {
	engine := domain.NewRulesEngine()
	engine.Register(blockRule{})
	store := NewStore(engine)
	c := seedCharacter(t, store, "Kerry")
	res, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateCharacter(c.ID, func(ch *Character) error {
			ch.Eurodollars = 9000
			return nil
		})
		return err
	})
	var rv domain.RuleViolationError
	if !errors.As(err, &rv) || !res.HasBlocking() {
		t.Fatalf("expected rule violation, got %v", err)
	}
	if domain.CodeOf(err) != domain.CodeRuleViolation {
		t.Fatalf("expected RULE_VIOLATION code, got %s", domain.CodeOf(err))
	}
	got, _ := store.GetCharacter(c.ID)
	if got.Eurodollars != 2000 {
		t.Fatalf("blocked write leaked: %d", got.Eurodollars)
	}
}

func TestDeleteCharacterCascades(t *testing.T) {
	store := NewStore(nil, WithClock(fixedClock()))
	c := seedCharacter(t, store, "Takemura")
	other := seedCharacter(t, store, "Hanako")
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
		for _, id := range []string{c.ID, other.ID} {
			if _, err := tx.CreateInstallation(Installation{CharacterID: id, Quality: domain.QualityGood}); err != nil {
				return err
			}
			if _, err := tx.CreateSave(SaveSlot{CharacterID: id, Name: "slot"}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed history: %v", err)
	}
	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteCharacter(c.ID)
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.GetCharacter(c.ID); ok {
		t.Fatalf("character should be gone")
	}
	if len(store.ListInstallations(c.ID)) != 0 || len(store.ListSaves(c.ID)) != 0 {
		t.Fatalf("expected cascade delete")
	}
	if len(store.ListInstallations(other.ID)) != 1 || len(store.ListSaves(other.ID)) != 1 {
		t.Fatalf("unrelated history removed")
	}
	_, err = store.RunInTransaction(ctx, func(tx Transaction) error {
		return tx.DeleteCharacter(c.ID)
	})
	if !errors.Is(err, domain.ErrCharacterNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateRejectsOrphans(t *testing.T) {
	store := NewStore(nil)
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.CreateSave(SaveSlot{CharacterID: "ghost"})
		return err
	})
	if !errors.Is(err, domain.ErrCharacterNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListOrdering(t *testing.T) {
	store := NewStore(nil, WithClock(fixedClock()))
	ctx := context.Background()
	c := seedCharacter(t, store, "Goro")
	for i := range 3 {
		_, err := store.RunInTransaction(ctx, func(tx Transaction) error {
			if _, err := tx.CreateCyberware(CyberwareCatalogItem{Name: fmt.Sprintf("Item %c", 'C'-i)}); err != nil {
				return err
			}
			_, err := tx.CreateSave(SaveSlot{CharacterID: c.ID, Name: fmt.Sprintf("save-%d", i)})
			return err
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	items := store.ListCyberware()
	if items[0].Name != "Item A" || items[2].Name != "Item C" {
		t.Fatalf("cyberware not sorted by name: %v", items)
	}
	saves := store.ListSaves(c.ID)
	if saves[0].Name != "save-2" || saves[2].Name != "save-0" {
		t.Fatalf("saves not newest first: %v", saves)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore(nil)
	c := seedCharacter(t, store, "Rogue")
	snap := store.ExportState()
	store.ImportState(Snapshot{})
	if len(store.ListCharacters()) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snap)
	if _, ok := store.GetCharacter(c.ID); !ok {
		t.Fatalf("expected restored character")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestMutationsCollapseToFinalState(t *testing.T) {
	c := Character{Base: domain.Base{ID: "c1", Version: 1}, Name: "a"}
	c2 := c
	c2.Version = 2
	changes := []Change{
		{Entity: domain.EntityCharacter, Action: domain.ActionCreate, ID: "c1", After: c},
		{Entity: domain.EntitySave, Action: domain.ActionDelete, ID: "s1"},
		{Entity: domain.EntityCharacter, Action: domain.ActionUpdate, ID: "c1", Before: c, After: c2},
	}
	muts, err := Mutations(changes)
	if err != nil {
		t.Fatal(err)
	}
	if len(muts) != 2 || muts[0].ID != "c1" || muts[0].Version != 2 || !muts[1].Delete {
		t.Fatalf("unexpected mutations: %+v", muts)
	}
	snap, err := SnapshotFromRecords([]Record{muts[0].Record})
	if err != nil {
		t.Fatal(err)
	}
	if snap.Characters["c1"].Version != 2 {
		t.Fatalf("unexpected decoded snapshot: %+v", snap)
	}
	if _, err := SnapshotFromRecords([]Record{{Entity: "ship", ID: "x", Payload: []byte("{}")}}); err == nil {
		t.Fatalf("expected unknown entity error")
	}
}

func TestUpdateInstallationKeepsIdentityAndVersions(t *testing.T) {
	store := NewStore(nil, WithClock(fixedClock()))
	c := seedCharacter(t, store, "V")
	var inst Installation
	_, err := store.RunInTransaction(context.Background(), func(tx Transaction) error {
		var err error
		inst, err = tx.CreateInstallation(Installation{
			CharacterID:   c.ID,
			Complications: []domain.InstallationComplication{{Name: "Neural Feedback", Severity: domain.ComplicationMinor}},
		})
		return err
	})
	if err != nil {
		t.Fatalf("create installation: %v", err)
	}

	_, err = store.RunInTransaction(context.Background(), func(tx Transaction) error {
		if _, ok := tx.FindInstallation(inst.ID); !ok {
			return fmt.Errorf("installation %s not visible in tx", inst.ID)
		}
		_, err := tx.UpdateInstallation(inst.ID, func(i *Installation) error {
			i.CharacterID = "someone-else"
			i.Complications[0].Resolved = true
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update installation: %v", err)
	}
	history := store.ListInstallations(c.ID)
	if len(history) != 1 {
		t.Fatalf("installation moved away from its character: %+v", history)
	}
	got := history[0]
	if got.Version != 2 || !got.Complications[0].Resolved || !got.CreatedAt.Equal(inst.CreatedAt) {
		t.Fatalf("unexpected installation: %+v", got)
	}

	_, err = store.RunInTransaction(context.Background(), func(tx Transaction) error {
		_, err := tx.UpdateInstallation("missing", func(*Installation) error { return nil })
		return err
	})
	if !errors.Is(err, domain.ErrInstallationNotFound) {
		t.Fatalf("expected installation not found, got %v", err)
	}
}
