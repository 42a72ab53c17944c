// Package memory provides the in-memory transactional record store. Durable
// backends embed it and persist each commit through a commit hook before the
// new state is published to readers.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"ripperdoc/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Character aliases domain.Character.
	Character = domain.Character
	// CyberwareCatalogItem aliases domain.CyberwareCatalogItem.
	CyberwareCatalogItem = domain.CyberwareCatalogItem
	// Installation aliases domain.Installation.
	Installation = domain.Installation
	// SaveSlot aliases domain.SaveSlot.
	SaveSlot = domain.SaveSlot
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView.
	TransactionView = domain.TransactionView
)

// CommitFunc persists the changes of a transaction. A non-nil error aborts
// the commit and leaves the in-memory state untouched.
type CommitFunc func(ctx context.Context, changes []Change) error

type memoryState struct {
	characters    map[string]Character
	cyberware     map[string]CyberwareCatalogItem
	installations map[string]Installation
	saves         map[string]SaveSlot
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Characters    map[string]Character            `json:"characters"`
	Cyberware     map[string]CyberwareCatalogItem `json:"cyberware"`
	Installations map[string]Installation         `json:"installations"`
	Saves         map[string]SaveSlot             `json:"saves"`
}

func newMemoryState() memoryState {
	return memoryState{
		characters:    make(map[string]Character),
		cyberware:     make(map[string]CyberwareCatalogItem),
		installations: make(map[string]Installation),
		saves:         make(map[string]SaveSlot),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.characters {
		cloned.characters[k] = v.Clone()
	}
	for k, v := range s.cyberware {
		cloned.cyberware[k] = v.Clone()
	}
	for k, v := range s.installations {
		cloned.installations[k] = v.Clone()
	}
	for k, v := range s.saves {
		cloned.saves[k] = v.Clone()
	}
	return cloned
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	c := state.clone()
	return Snapshot{
		Characters:    c.characters,
		Cyberware:     c.cyberware,
		Installations: c.installations,
		Saves:         c.saves,
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := memoryState{
		characters:    s.Characters,
		cyberware:     s.Cyberware,
		installations: s.Installations,
		saves:         s.Saves,
	}
	if state.characters == nil {
		state.characters = map[string]Character{}
	}
	if state.cyberware == nil {
		state.cyberware = map[string]CyberwareCatalogItem{}
	}
	if state.installations == nil {
		state.installations = map[string]Installation{}
	}
	if state.saves == nil {
		state.saves = map[string]SaveSlot{}
	}
	return state.clone()
}

// Store provides an in-memory transactional store. Transactions run against
// a private copy of the state and commit with per-record optimistic version
// checks, so unrelated transactions never block each other while running.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
	idFn   func() string
	commit CommitFunc
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for record timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.nowFn = fn
		}
	}
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.idFn = fn
		}
	}
}

// WithCommitHook installs fn to persist every commit before it is published.
func WithCommitHook(fn CommitFunc) Option {
	return func(s *Store) { s.commit = fn }
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine, opts ...Option) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	s := &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		idFn:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

// RulesEngine exposes the configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	return s.engine
}

// Close releases nothing for the in-memory store.
func (s *Store) Close() error { return nil }

type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListCharacters() []Character {
	return listCharacters(v.state)
}

func (v transactionView) FindCharacter(id string) (Character, bool) {
	c, ok := v.state.characters[id]
	if !ok {
		return Character{}, false
	}
	return c.Clone(), true
}

func (v transactionView) ListCyberware() []CyberwareCatalogItem {
	return listCyberware(v.state)
}

func (v transactionView) FindCyberware(id string) (CyberwareCatalogItem, bool) {
	c, ok := v.state.cyberware[id]
	if !ok {
		return CyberwareCatalogItem{}, false
	}
	return c.Clone(), true
}

func (v transactionView) ListInstallations(characterID string) []Installation {
	return listInstallations(v.state, characterID)
}

func (v transactionView) ListSaves(characterID string) []SaveSlot {
	return listSaves(v.state, characterID)
}

func (v transactionView) FindSave(id string) (SaveSlot, bool) {
	s, ok := v.state.saves[id]
	if !ok {
		return SaveSlot{}, false
	}
	return s.Clone(), true
}

// RunInTransaction executes fn against a private copy of the state. When fn
// succeeds and no blocking rule fires, the changes are version-checked
// against the committed state, handed to the commit hook and only then
// published. Any failure leaves the committed state untouched.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.RLock()
	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	s.mu.RUnlock()

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}
	if len(tx.changes) == 0 {
		return result, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkVersions(tx.changes); err != nil {
		return result, err
	}
	if s.commit != nil {
		if err := s.commit(ctx, tx.changes); err != nil {
			return result, domain.WrapError(domain.CodeStorageFailure, "persist commit", err)
		}
	}
	s.apply(tx.changes)
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

type recordKey struct {
	entity domain.EntityType
	id     string
}

// checkVersions compares the first recorded change of every record with the
// committed state. Callers hold s.mu.
func (s *Store) checkVersions(changes []Change) error {
	seen := make(map[recordKey]struct{}, len(changes))
	for _, ch := range changes {
		key := recordKey{ch.Entity, ch.ID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		current, exists := s.committedVersion(ch.Entity, ch.ID)
		switch ch.Action {
		case domain.ActionCreate:
			if exists {
				return conflict(ch, "already exists")
			}
		default:
			if !exists {
				return conflict(ch, "no longer exists")
			}
			if want := versionOf(ch.Before); current != want {
				return conflict(ch, fmt.Sprintf("version %d, expected %d", current, want))
			}
		}
	}
	return nil
}

func conflict(ch Change, detail string) error {
	return domain.ErrorWithMetadata(domain.CodeConcurrencyConflict,
		fmt.Sprintf("%s %s %s", ch.Entity, ch.ID, detail),
		map[string]string{"entity": string(ch.Entity), "id": ch.ID})
}

func (s *Store) committedVersion(entity domain.EntityType, id string) (int64, bool) {
	switch entity {
	case domain.EntityCharacter:
		v, ok := s.state.characters[id]
		return v.Version, ok
	case domain.EntityCyberware:
		v, ok := s.state.cyberware[id]
		return v.Version, ok
	case domain.EntityInstallation:
		v, ok := s.state.installations[id]
		return v.Version, ok
	case domain.EntitySave:
		v, ok := s.state.saves[id]
		return v.Version, ok
	}
	return 0, false
}

func versionOf(record any) int64 {
	switch r := record.(type) {
	case Character:
		return r.Version
	case CyberwareCatalogItem:
		return r.Version
	case Installation:
		return r.Version
	case SaveSlot:
		return r.Version
	}
	return 0
}

// apply publishes changes in order. Callers hold s.mu.
func (s *Store) apply(changes []Change) {
	for _, ch := range changes {
		switch ch.Entity {
		case domain.EntityCharacter:
			applyRecord(s.state.characters, ch, Character.Clone)
		case domain.EntityCyberware:
			applyRecord(s.state.cyberware, ch, CyberwareCatalogItem.Clone)
		case domain.EntityInstallation:
			applyRecord(s.state.installations, ch, Installation.Clone)
		case domain.EntitySave:
			applyRecord(s.state.saves, ch, SaveSlot.Clone)
		}
	}
}

func applyRecord[T any](bucket map[string]T, ch Change, clone func(T) T) {
	if ch.Action == domain.ActionDelete {
		delete(bucket, ch.ID)
		return
	}
	if after, ok := ch.After.(T); ok {
		bucket[ch.ID] = clone(after)
	}
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) FindCharacter(id string) (Character, bool) {
	return transactionView{state: &tx.state}.FindCharacter(id)
}

func (tx *transaction) FindCyberware(id string) (CyberwareCatalogItem, bool) {
	return transactionView{state: &tx.state}.FindCyberware(id)
}

func (tx *transaction) FindSave(id string) (SaveSlot, bool) {
	return transactionView{state: &tx.state}.FindSave(id)
}

func (tx *transaction) FindInstallation(id string) (Installation, bool) {
	i, ok := tx.state.installations[id]
	if !ok {
		return Installation{}, false
	}
	return i.Clone(), true
}

func (tx *transaction) stamp(b *domain.Base) {
	if b.ID == "" {
		b.ID = tx.store.idFn()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = tx.now
	}
	b.UpdatedAt = tx.now
	b.Version = 1
}

// CreateCharacter stores a new character within the transaction.
func (tx *transaction) CreateCharacter(c Character) (Character, error) {
	tx.stamp(&c.Base)
	if _, exists := tx.state.characters[c.ID]; exists {
		return Character{}, fmt.Errorf("character %q already exists", c.ID)
	}
	tx.state.characters[c.ID] = c.Clone()
	tx.recordChange(Change{Entity: domain.EntityCharacter, Action: domain.ActionCreate, ID: c.ID, After: c.Clone()})
	return c.Clone(), nil
}

// UpdateCharacter mutates a character using the provided mutator function.
func (tx *transaction) UpdateCharacter(id string, mutator func(*Character) error) (Character, error) {
	current, ok := tx.state.characters[id]
	if !ok {
		return Character{}, domain.ErrorWithMetadata(domain.CodeCharacterNotFound, fmt.Sprintf("character %q not found", id), map[string]string{"id": id})
	}
	before := current.Clone()
	next := current.Clone()
	if err := mutator(&next); err != nil {
		return Character{}, err
	}
	next.ID = id
	next.CreatedAt = before.CreatedAt
	next.UpdatedAt = tx.now
	next.Version = before.Version + 1
	tx.state.characters[id] = next.Clone()
	tx.recordChange(Change{Entity: domain.EntityCharacter, Action: domain.ActionUpdate, ID: id, Before: before, After: next.Clone()})
	return next.Clone(), nil
}

// DeleteCharacter removes a character with its installation history and saves.
func (tx *transaction) DeleteCharacter(id string) error {
	current, ok := tx.state.characters[id]
	if !ok {
		return domain.ErrorWithMetadata(domain.CodeCharacterNotFound, fmt.Sprintf("character %q not found", id), map[string]string{"id": id})
	}
	for _, inst := range listInstallations(&tx.state, id) {
		delete(tx.state.installations, inst.ID)
		tx.recordChange(Change{Entity: domain.EntityInstallation, Action: domain.ActionDelete, ID: inst.ID, Before: inst})
	}
	for _, save := range listSaves(&tx.state, id) {
		delete(tx.state.saves, save.ID)
		tx.recordChange(Change{Entity: domain.EntitySave, Action: domain.ActionDelete, ID: save.ID, Before: save})
	}
	delete(tx.state.characters, id)
	tx.recordChange(Change{Entity: domain.EntityCharacter, Action: domain.ActionDelete, ID: id, Before: current.Clone()})
	return nil
}

// CreateCyberware stores a catalog entry. Catalog entries are never updated.
func (tx *transaction) CreateCyberware(c CyberwareCatalogItem) (CyberwareCatalogItem, error) {
	tx.stamp(&c.Base)
	if _, exists := tx.state.cyberware[c.ID]; exists {
		return CyberwareCatalogItem{}, fmt.Errorf("cyberware %q already exists", c.ID)
	}
	tx.state.cyberware[c.ID] = c.Clone()
	tx.recordChange(Change{Entity: domain.EntityCyberware, Action: domain.ActionCreate, ID: c.ID, After: c.Clone()})
	return c.Clone(), nil
}

// CreateInstallation appends an installation history record.
func (tx *transaction) CreateInstallation(i Installation) (Installation, error) {
	if _, ok := tx.state.characters[i.CharacterID]; !ok {
		return Installation{}, domain.ErrorWithMetadata(domain.CodeCharacterNotFound, fmt.Sprintf("character %q not found", i.CharacterID), map[string]string{"id": i.CharacterID})
	}
	tx.stamp(&i.Base)
	if _, exists := tx.state.installations[i.ID]; exists {
		return Installation{}, fmt.Errorf("installation %q already exists", i.ID)
	}
	tx.state.installations[i.ID] = i.Clone()
	tx.recordChange(Change{Entity: domain.EntityInstallation, Action: domain.ActionCreate, ID: i.ID, After: i.Clone()})
	return i.Clone(), nil
}

// UpdateInstallation mutates a history record. Identity and ownership are
// preserved whatever the mutator does.
func (tx *transaction) UpdateInstallation(id string, mutator func(*Installation) error) (Installation, error) {
	current, ok := tx.state.installations[id]
	if !ok {
		return Installation{}, domain.ErrorWithMetadata(domain.CodeInstallationNotFound, fmt.Sprintf("installation %q not found", id), map[string]string{"id": id})
	}
	before := current.Clone()
	next := current.Clone()
	if err := mutator(&next); err != nil {
		return Installation{}, err
	}
	next.ID = id
	next.CharacterID = before.CharacterID
	next.CreatedAt = before.CreatedAt
	next.UpdatedAt = tx.now
	next.Version = before.Version + 1
	tx.state.installations[id] = next.Clone()
	tx.recordChange(Change{Entity: domain.EntityInstallation, Action: domain.ActionUpdate, ID: id, Before: before, After: next.Clone()})
	return next.Clone(), nil
}

// CreateSave stores a save slot.
func (tx *transaction) CreateSave(s SaveSlot) (SaveSlot, error) {
	if _, ok := tx.state.characters[s.CharacterID]; !ok {
		return SaveSlot{}, domain.ErrorWithMetadata(domain.CodeCharacterNotFound, fmt.Sprintf("character %q not found", s.CharacterID), map[string]string{"id": s.CharacterID})
	}
	tx.stamp(&s.Base)
	if _, exists := tx.state.saves[s.ID]; exists {
		return SaveSlot{}, fmt.Errorf("save %q already exists", s.ID)
	}
	tx.state.saves[s.ID] = s.Clone()
	tx.recordChange(Change{Entity: domain.EntitySave, Action: domain.ActionCreate, ID: s.ID, After: s.Clone()})
	return s.Clone(), nil
}

// DeleteSave removes a save slot.
func (tx *transaction) DeleteSave(id string) error {
	current, ok := tx.state.saves[id]
	if !ok {
		return domain.ErrorWithMetadata(domain.CodeSaveNotFound, fmt.Sprintf("save %q not found", id), map[string]string{"id": id})
	}
	delete(tx.state.saves, id)
	tx.recordChange(Change{Entity: domain.EntitySave, Action: domain.ActionDelete, ID: id, Before: current.Clone()})
	return nil
}

func listCharacters(state *memoryState) []Character {
	out := make([]Character, 0, len(state.characters))
	for _, c := range state.characters {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b Character) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func listCyberware(state *memoryState) []CyberwareCatalogItem {
	out := make([]CyberwareCatalogItem, 0, len(state.cyberware))
	for _, c := range state.cyberware {
		out = append(out, c.Clone())
	}
	slices.SortFunc(out, func(a, b CyberwareCatalogItem) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out
}

func listInstallations(state *memoryState, characterID string) []Installation {
	out := []Installation{}
	for _, i := range state.installations {
		if i.CharacterID == characterID {
			out = append(out, i.Clone())
		}
	}
	slices.SortFunc(out, func(a, b Installation) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// listSaves returns the newest saves first.
func listSaves(state *memoryState, characterID string) []SaveSlot {
	out := []SaveSlot{}
	for _, s := range state.saves {
		if s.CharacterID == characterID {
			out = append(out, s.Clone())
		}
	}
	slices.SortFunc(out, func(a, b SaveSlot) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// GetCharacter returns a character by ID.
func (s *Store) GetCharacter(id string) (Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.characters[id]
	if !ok {
		return Character{}, false
	}
	return c.Clone(), true
}

// ListCharacters returns all characters in creation order.
func (s *Store) ListCharacters() []Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCharacters(&s.state)
}

// GetCyberware returns a catalog entry by ID.
func (s *Store) GetCyberware(id string) (CyberwareCatalogItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.cyberware[id]
	if !ok {
		return CyberwareCatalogItem{}, false
	}
	return c.Clone(), true
}

// ListCyberware returns the catalog ordered by name.
func (s *Store) ListCyberware() []CyberwareCatalogItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listCyberware(&s.state)
}

// ListInstallations returns a character's installation history, oldest first.
func (s *Store) ListInstallations(characterID string) []Installation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listInstallations(&s.state, characterID)
}

// GetSave returns a save slot by ID.
func (s *Store) GetSave(id string) (SaveSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.saves[id]
	if !ok {
		return SaveSlot{}, false
	}
	return v.Clone(), true
}

// ListSaves returns a character's saves, newest first.
func (s *Store) ListSaves(characterID string) []SaveSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSaves(&s.state, characterID)
}
