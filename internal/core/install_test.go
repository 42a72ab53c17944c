package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"ripperdoc/pkg/domain"
)

func TestPerformInstallationScenario(t *testing.T) {
	// skill check d10=5 for 10+5=15 against 15-1, both complication rolls miss.
	f := newFixture(t, testCharacter(50, 2000), []int{5, 5, 5})
	ctx := context.Background()

	out, err := f.svc.PerformInstallation(ctx, "char-1", "cw-socket", domain.DefaultInstallationOptions())
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if out.Result.Quality != domain.QualityGood || !out.Result.Success || out.Result.Roll != 15 {
		t.Fatalf("unexpected result: %+v", out.Result)
	}
	c := out.Character
	if c.Humanity != 48 || c.Eurodollars != 800 {
		t.Fatalf("expected humanity 48 and 800 eddies, got %d/%d", c.Humanity, c.Eurodollars)
	}
	if len(c.Cyberware.Implants) != 1 || c.Cyberware.TotalHumanityLoss != 2 {
		t.Fatalf("unexpected cyberware: %+v", c.Cyberware)
	}
	if !out.Implant.IsActive || out.Implant.PaidPrice != 1200 || !out.Implant.InstallationDate.Equal(testEpoch) {
		t.Fatalf("unexpected implant: %+v", out.Implant)
	}
	if c.EffectiveStats().Reflexes != 9 {
		t.Fatalf("expected reflexes bonus, got %d", c.EffectiveStats().Reflexes)
	}
	if c.Version != 2 {
		t.Fatalf("expected version 2, got %d", c.Version)
	}

	history, err := f.svc.ListInstallations("char-1")
	if err != nil {
		t.Fatalf("list installations: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one history record, got %d", len(history))
	}
	h := history[0]
	if h.PaidPrice != 1200 || h.MedicalRoll != 15 || h.Quality != domain.QualityGood || !h.IsActive || h.RecoveryDays != 1 || h.ImplantID != out.Implant.ID {
		t.Fatalf("unexpected history: %+v", h)
	}
	if f.dice.Remaining() != 0 {
		t.Fatalf("expected all dice consumed, %d left", f.dice.Remaining())
	}
	stored, _ := f.svc.GetCharacter("char-1")
	if diff := cmp.Diff(out.Character, stored); diff != "" {
		t.Fatalf("returned character differs from stored (-want +got):\n%s", diff)
	}
}

func TestPerformInstallationRejectionsChangeNothing(t *testing.T) {
	broken := socketItem()
	broken.ID = "cw-broken"
	broken.Complications[1].RollRange = "9-ish"

	cases := []struct {
		name      string
		character domain.Character
		item      string
		opts      domain.InstallationOptions
		code      domain.Code
	}{
		{"funds", testCharacter(50, 1199), "cw-socket", domain.DefaultInstallationOptions(), domain.CodeInsufficientFunds},
		{"funds with quality clinic", testCharacter(50, 1300), "cw-socket", domain.InstallationOptions{QualityClinic: true}, domain.CodeInsufficientFunds},
		{"humanity", testCharacter(2, 5000), "cw-socket", domain.DefaultInstallationOptions(), domain.CodeInsufficientHumanity},
		{"malformed roll range", testCharacter(50, 5000), "cw-broken", domain.DefaultInstallationOptions(), domain.CodeConfigurationError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.character, []int{5, 5, 5}, withCyberware(broken))
			before, _ := f.svc.GetCharacter("char-1")

			_, err := f.svc.PerformInstallation(context.Background(), "char-1", tc.item, tc.opts)
			if domain.CodeOf(err) != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			after, _ := f.svc.GetCharacter("char-1")
			if diff := cmp.Diff(before, after); diff != "" {
				t.Fatalf("character changed (-before +after):\n%s", diff)
			}
			if n := len(f.store.ListInstallations("char-1")); n != 0 {
				t.Fatalf("expected no history, got %d", n)
			}
			if f.dice.Remaining() != 3 {
				t.Fatalf("rejected attempt rolled dice: %d left", f.dice.Remaining())
			}
		})
	}
}

func TestPerformInstallationFundsMetadata(t *testing.T) {
	f := newFixture(t, testCharacter(50, 1000), nil)
	_, err := f.svc.PerformInstallation(context.Background(), "char-1", "cw-socket", domain.DefaultInstallationOptions())
	var derr *domain.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if derr.Metadata["required"] != "1200" || derr.Metadata["available"] != "1000" {
		t.Fatalf("unexpected metadata: %+v", derr.Metadata)
	}
}

func TestPerformInstallationNotFound(t *testing.T) {
	f := newFixture(t, testCharacter(50, 2000), nil)
	ctx := context.Background()
	if _, err := f.svc.PerformInstallation(ctx, "nobody", "cw-socket", domain.DefaultInstallationOptions()); domain.CodeOf(err) != domain.CodeCharacterNotFound {
		t.Fatalf("expected character not found, got %v", err)
	}
	if _, err := f.svc.PerformInstallation(ctx, "char-1", "cw-nothing", domain.DefaultInstallationOptions()); domain.CodeOf(err) != domain.CodeCyberwareNotFound {
		t.Fatalf("expected cyberware not found, got %v", err)
	}
}

func TestEstimateMatchesChargedPrice(t *testing.T) {
	opts := domain.InstallationOptions{UseStreetDoc: true, RushJob: true, Anesthesia: true}
	f := newFixture(t, testCharacter(50, 10000), []int{10, 5, 5})
	ctx := context.Background()

	quote, err := f.svc.EstimateCost(ctx, "cw-socket", opts)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	out, err := f.svc.PerformInstallation(ctx, "char-1", "cw-socket", opts)
	if err != nil {
		t.Fatalf("install: %v", err)
	}
	if quote.FinalPrice != out.Result.FinalPrice || quote.FinalPrice != out.Installation.PaidPrice {
		t.Fatalf("estimate %d, charged %d, recorded %d", quote.FinalPrice, out.Result.FinalPrice, out.Installation.PaidPrice)
	}
	if quote.EffectiveDifficulty != out.Result.EffectiveDifficulty {
		t.Fatalf("estimate difficulty %d, used %d", quote.EffectiveDifficulty, out.Result.EffectiveDifficulty)
	}
	if out.Character.Eurodollars != 10000-quote.FinalPrice {
		t.Fatalf("unexpected funds %d", out.Character.Eurodollars)
	}
	if _, err := f.svc.EstimateCost(ctx, "cw-nothing", opts); domain.CodeOf(err) != domain.CodeCyberwareNotFound {
		t.Fatalf("expected cyberware not found, got %v", err)
	}
}

func TestConcurrentInstallsSerializePerCharacter(t *testing.T) {
	defer goleak.VerifyNone(t)

	// enough funds for exactly one install; the loser is rejected before rolling.
	f := newFixture(t, testCharacter(50, 1500), []int{5, 5, 5})
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for range 2 {
		g.Go(func() error {
			_, err := f.svc.PerformInstallation(context.Background(), "char-1", "cw-socket", domain.DefaultInstallationOptions())
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	successes, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case domain.CodeOf(err) == domain.CodeInsufficientFunds:
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || rejected != 1 {
		t.Fatalf("expected one success and one rejection, got %d/%d", successes, rejected)
	}
	c, _ := f.svc.GetCharacter("char-1")
	if c.Eurodollars != 300 || len(c.Cyberware.Implants) != 1 {
		t.Fatalf("unexpected final character: %d eddies, %d implants", c.Eurodollars, len(c.Cyberware.Implants))
	}
	if f.svc.locks.size() != 0 {
		t.Fatalf("expected lock table to drain, %d left", f.svc.locks.size())
	}
}

type blockInstallsRule struct{}

func (blockInstallsRule) Name() string { return "clinic_closed" }

func (r blockInstallsRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	var res domain.Result
	for _, ch := range changes {
		if ch.Entity == domain.EntityInstallation && ch.Action == domain.ActionCreate {
			res.Violations = append(res.Violations, domain.Violation{
				Rule: r.Name(), Severity: domain.SeverityBlock, Message: "clinic closed",
				Entity: domain.EntityInstallation, EntityID: ch.ID,
			})
		}
	}
	return res, nil
}

func TestPerformInstallationBlockedByRule(t *testing.T) {
	engine := NewDefaultRulesEngine()
	engine.Register(blockInstallsRule{})
	f := newFixture(t, testCharacter(50, 2000), []int{5, 5, 5}, withEngine(engine))
	before, _ := f.svc.GetCharacter("char-1")

	_, err := f.svc.PerformInstallation(context.Background(), "char-1", "cw-socket", domain.DefaultInstallationOptions())
	if domain.CodeOf(err) != domain.CodeRuleViolation {
		t.Fatalf("expected rule violation, got %v", err)
	}
	after, _ := f.svc.GetCharacter("char-1")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("character changed (-before +after):\n%s", diff)
	}
}

func TestPerformInstallationObservability(t *testing.T) {
	logger := &captureLogger{}
	metrics := newCaptureMetrics()
	tracer := NewJSONTracer(nil)
	f := newFixture(t, testCharacter(50, 2000), []int{5, 5, 5},
		withServiceOptions(WithLogger(logger), WithMetrics(metrics), WithTracer(tracer)))
	ctx := context.Background()

	if _, err := f.svc.PerformInstallation(ctx, "char-1", "cw-socket", domain.DefaultInstallationOptions()); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := f.svc.PerformInstallation(ctx, "char-1", "cw-socket", domain.DefaultInstallationOptions()); domain.CodeOf(err) != domain.CodeInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	if _, ok := logger.find("cyberware installed"); !ok {
		t.Fatalf("expected install log, got %+v", logger.entries)
	}
	rejected, ok := logger.find("installation rejected")
	if !ok || rejected.level != "info" {
		t.Fatalf("expected info-level rejection log, got %+v", rejected)
	}
	if got := metrics.ops["perform_installation"]; got != [2]int{1, 1} {
		t.Fatalf("expected one success and one failure, got %v", got)
	}
	if metrics.installs[domain.QualityGood] != 1 {
		t.Fatalf("expected one good install, got %v", metrics.installs)
	}
	entries := tracer.Entries()
	if len(entries) != 2 || entries[0].Status != "success" || entries[1].Status != "error" {
		t.Fatalf("unexpected spans: %+v", entries)
	}
}
