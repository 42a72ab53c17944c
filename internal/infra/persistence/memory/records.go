package memory

import (
	"encoding/json"
	"fmt"

	"ripperdoc/pkg/domain"
)

// Record is the row form of one stored entity, shared by the durable
// backends. Payload holds the JSON encoding of the entity.
type Record struct {
	Entity  domain.EntityType
	ID      string
	Version int64
	Payload []byte
}

// Mutation is a committed change reduced to what a backend must write.
// Delete mutations carry no payload.
type Mutation struct {
	Record
	Delete bool
}

// Mutations collapses changes to the final state of every touched record,
// preserving the order in which records were first touched.
func Mutations(changes []Change) ([]Mutation, error) {
	index := make(map[recordKey]int, len(changes))
	out := make([]Mutation, 0, len(changes))
	for _, ch := range changes {
		m := Mutation{Record: Record{Entity: ch.Entity, ID: ch.ID}}
		if ch.Action == domain.ActionDelete {
			m.Delete = true
		} else {
			payload, err := json.Marshal(ch.After)
			if err != nil {
				return nil, fmt.Errorf("encode %s %s: %w", ch.Entity, ch.ID, err)
			}
			m.Payload = payload
			m.Version = versionOf(ch.After)
		}
		key := recordKey{ch.Entity, ch.ID}
		if i, ok := index[key]; ok {
			out[i] = m
			continue
		}
		index[key] = len(out)
		out = append(out, m)
	}
	return out, nil
}

// SnapshotFromRecords rebuilds a snapshot from stored rows. Unknown entity
// types are rejected so a newer schema is never silently truncated.
func SnapshotFromRecords(records []Record) (Snapshot, error) {
	snap := Snapshot{
		Characters:    map[string]Character{},
		Cyberware:     map[string]CyberwareCatalogItem{},
		Installations: map[string]Installation{},
		Saves:         map[string]SaveSlot{},
	}
	for _, r := range records {
		var err error
		switch r.Entity {
		case domain.EntityCharacter:
			err = decodeInto(snap.Characters, r)
		case domain.EntityCyberware:
			err = decodeInto(snap.Cyberware, r)
		case domain.EntityInstallation:
			err = decodeInto(snap.Installations, r)
		case domain.EntitySave:
			err = decodeInto(snap.Saves, r)
		default:
			err = fmt.Errorf("unknown entity %q", r.Entity)
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("decode %s %s: %w", r.Entity, r.ID, err)
		}
	}
	return snap, nil
}

func decodeInto[T any](bucket map[string]T, r Record) error {
	var v T
	if err := json.Unmarshal(r.Payload, &v); err != nil {
		return err
	}
	bucket[r.ID] = v
	return nil
}
