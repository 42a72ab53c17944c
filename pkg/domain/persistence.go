package domain

import "context"

// Transaction exposes the record operations a persistence implementation
// must support within an atomic scope. Reads observe the transaction's own
// pending writes.
type Transaction interface {
	Snapshot() TransactionView
	FindCharacter(id string) (Character, bool)
	FindCyberware(id string) (CyberwareCatalogItem, bool)
	FindSave(id string) (SaveSlot, bool)
	FindInstallation(id string) (Installation, bool)
	CreateCharacter(Character) (Character, error)
	UpdateCharacter(id string, mutator func(*Character) error) (Character, error)
	DeleteCharacter(id string) error
	CreateCyberware(CyberwareCatalogItem) (CyberwareCatalogItem, error)
	CreateInstallation(Installation) (Installation, error)
	UpdateInstallation(id string, mutator func(*Installation) error) (Installation, error)
	CreateSave(SaveSlot) (SaveSlot, error)
	DeleteSave(id string) error
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
	ListCyberware() []CyberwareCatalogItem
	ListSaves(characterID string) []SaveSlot
	FindSave(id string) (SaveSlot, bool)
}

// PersistentStore is the get/put/patch record store the engine runs against.
// A successful RunInTransaction is visible to readers in full or not at all.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetCharacter(id string) (Character, bool)
	ListCharacters() []Character
	GetCyberware(id string) (CyberwareCatalogItem, bool)
	ListCyberware() []CyberwareCatalogItem
	ListInstallations(characterID string) []Installation
	GetSave(id string) (SaveSlot, bool)
	ListSaves(characterID string) []SaveSlot
	Close() error
}
