package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"ripperdoc/internal/dice"
	"ripperdoc/internal/infra/persistence/memory"
	"ripperdoc/pkg/domain"
)

var testEpoch = time.Date(2077, 3, 1, 12, 0, 0, 0, time.UTC)

func socketItem() domain.CyberwareCatalogItem {
	return domain.CyberwareCatalogItem{
		Base:                   domain.Base{ID: "cw-socket"},
		Name:                   "Chipware Socket",
		Category:               domain.CategoryNeural,
		HumanityCost:           2,
		Cost:                   1000,
		InstallationDifficulty: 15,
		SurgeryTime:            60,
		GameEffects: domain.GameEffects{
			StatBonuses: map[domain.StatName]int{domain.StatReflexes: 1},
		},
		Complications: []domain.Complication{
			{Name: "Neural Feedback", Severity: domain.ComplicationMinor, RollRange: "1-2"},
			{Name: "Interface Rejection", Severity: domain.ComplicationMajor, RollRange: "9-10"},
		},
	}
}

func testCharacter(humanity, eurodollars int) domain.Character {
	return domain.Character{
		Base:      domain.Base{ID: "char-1"},
		Name:      "V",
		Archetype: "Solo",
		Stats:     domain.Stats{Intelligence: 6, Reflexes: 8, Technical: 4, Cool: 7, Attractiveness: 6, Luck: 5, Movement: 7, Body: 8, Empathy: 5},
		Skills:    domain.Skills{Medical: 10},
		Cyberware: domain.Cyberware{
			Implants:           []domain.Implant{},
			PsychologicalState: domain.PsychologicalState{CyberpsychosisRisk: domain.RiskNone, Symptoms: []string{}},
		},
		Health:      40,
		MaxHealth:   40,
		Humanity:    humanity,
		MaxHumanity: 50,
		Eurodollars: eurodollars,
	}
}

type fixture struct {
	svc   *Service
	store *memory.Store
	dice  *dice.Sequence
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	engine *RulesEngine
	opts   []Option
	extra  []domain.CyberwareCatalogItem
}

func withEngine(e *RulesEngine) fixtureOption {
	return func(c *fixtureConfig) { c.engine = e }
}

// withCyberware stores items next to the socket, unvalidated.
func withCyberware(items ...domain.CyberwareCatalogItem) fixtureOption {
	return func(c *fixtureConfig) { c.extra = append(c.extra, items...) }
}

func withServiceOptions(opts ...Option) fixtureOption {
	return func(c *fixtureConfig) { c.opts = append(c.opts, opts...) }
}

// newFixture seeds the socket and one character into a fresh memory store.
func newFixture(t *testing.T, c domain.Character, faces []int, opts ...fixtureOption) fixture {
	t.Helper()
	cfg := fixtureConfig{engine: NewDefaultRulesEngine()}
	for _, o := range opts {
		o(&cfg)
	}
	store := memory.NewStore(cfg.engine)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, item := range append([]domain.CyberwareCatalogItem{socketItem()}, cfg.extra...) {
			if _, err := tx.CreateCyberware(item); err != nil {
				return err
			}
		}
		_, err := tx.CreateCharacter(c)
		return err
	}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	seq := dice.NewSequence(faces...)
	ids := 0
	var mu sync.Mutex
	svcOpts := []Option{
		WithRoller(dice.NewRoller(seq)),
		WithClock(func() time.Time { return testEpoch }),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			ids++
			return "implant-" + string(rune('0'+ids))
		}),
	}
	svcOpts = append(svcOpts, cfg.opts...)
	return fixture{svc: NewService(store, svcOpts...), store: store, dice: seq}
}

type logEntry struct {
	level string
	msg   string
	kv    []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, kv: kv})
}

func (l *captureLogger) Debug(msg string, kv ...any) { l.add("debug", msg, kv) }
func (l *captureLogger) Info(msg string, kv ...any)  { l.add("info", msg, kv) }
func (l *captureLogger) Warn(msg string, kv ...any)  { l.add("warn", msg, kv) }
func (l *captureLogger) Error(msg string, kv ...any) { l.add("error", msg, kv) }

func (l *captureLogger) find(msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}

type captureMetrics struct {
	mu       sync.Mutex
	ops      map[string][2]int
	installs map[domain.Quality]int
}

func newCaptureMetrics() *captureMetrics {
	return &captureMetrics{ops: map[string][2]int{}, installs: map[domain.Quality]int{}}
}

func (m *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := m.ops[op]
	if success {
		counts[0]++
	} else {
		counts[1]++
	}
	m.ops[op] = counts
}

func (m *captureMetrics) ObserveInstall(q domain.Quality, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.installs[q]++
}
