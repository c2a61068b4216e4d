package core

import (
	"reflect"

	"github.com/incidentkit/incident-sync/internal/domain"
)

// ChangeKind reports what an index mutation did.
type ChangeKind int

// Index mutation outcomes.
const (
	ChangeNoOp ChangeKind = iota
	ChangeInserted
	ChangeUpdated
)

// String returns the string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeNoOp:
		return "noop"
	case ChangeInserted:
		return "inserted"
	case ChangeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// indexKey scopes one incident record: a channel hosts at most one.
type indexKey struct {
	teamID    string
	channelID string
}

// Index is the authoritative in-memory projection of the incidents
// visible to the current user, keyed by (team, channel). It owns its
// records exclusively: callers receive clones and all mutation flows
// through its operations. Operations never fail; out-of-order or
// duplicate input degrades to a no-op or an idempotent overwrite.
// Not safe for concurrent use; the controller serializes access.
type Index struct {
	byKey map[indexKey]*domain.Incident
	byID  map[string]*domain.Incident
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{
		byKey: make(map[indexKey]*domain.Incident),
		byID:  make(map[string]*domain.Incident),
	}
}

// Upsert inserts or updates the record for its (team, channel) key.
// An identical record is a no-op, and an ended record is never
// downgraded back to active; restarting requires Reactivate.
func (x *Index) Upsert(record *domain.Incident) ChangeKind {
	if record == nil || !record.IsValid() {
		return ChangeNoOp
	}
	key := indexKey{teamID: record.TeamID, channelID: record.ChannelID}
	stored, ok := x.byKey[key]
	if !ok {
		x.store(key, record.Clone())
		return ChangeInserted
	}
	if reflect.DeepEqual(stored, record) {
		return ChangeNoOp
	}
	// Non-downgrade rule: active must not overwrite ended.
	if stored.Ended() && record.IsActive {
		return ChangeNoOp
	}
	x.replace(key, stored, record.Clone())
	return ChangeUpdated
}

// Reactivate overwrites the stored record unconditionally. It handles
// the explicit restart signal, the only path allowed to take an ended
// incident back to active.
func (x *Index) Reactivate(record *domain.Incident) ChangeKind {
	if record == nil || !record.IsValid() {
		return ChangeNoOp
	}
	key := indexKey{teamID: record.TeamID, channelID: record.ChannelID}
	stored, ok := x.byKey[key]
	if !ok {
		x.store(key, record.Clone())
		return ChangeInserted
	}
	if reflect.DeepEqual(stored, record) {
		return ChangeNoOp
	}
	x.replace(key, stored, record.Clone())
	return ChangeUpdated
}

// Remove drops the record for the channel. Returns true if one existed.
func (x *Index) Remove(teamID, channelID string) bool {
	key := indexKey{teamID: teamID, channelID: channelID}
	stored, ok := x.byKey[key]
	if !ok {
		return false
	}
	delete(x.byKey, key)
	delete(x.byID, stored.ID)
	return true
}

// Get returns a copy of the record for the channel, if indexed.
func (x *Index) Get(teamID, channelID string) (*domain.Incident, bool) {
	stored, ok := x.byKey[indexKey{teamID: teamID, channelID: channelID}]
	if !ok {
		return nil, false
	}
	return stored.Clone(), true
}

// GetByID returns a copy of the record with the given incident id.
func (x *Index) GetByID(id string) (*domain.Incident, bool) {
	stored, ok := x.byID[id]
	if !ok {
		return nil, false
	}
	return stored.Clone(), true
}

// GetByChannel returns a copy of the record hosted by the channel,
// regardless of team. Channel ids are globally unique in the host
// platform, so at most one record matches.
func (x *Index) GetByChannel(channelID string) (*domain.Incident, bool) {
	for key, stored := range x.byKey {
		if key.channelID == channelID {
			return stored.Clone(), true
		}
	}
	return nil, false
}

// Has reports whether an incident with the given id is indexed.
func (x *Index) Has(id string) bool {
	_, ok := x.byID[id]
	return ok
}

// ListActiveForTeam returns copies of the team's active incidents,
// newest first. The ordering is a user-facing contract: the panel list
// always shows most-recently-started incidents first.
func (x *Index) ListActiveForTeam(teamID string) []*domain.Incident {
	var out []*domain.Incident
	for key, stored := range x.byKey {
		if key.teamID == teamID && stored.IsActive {
			out = append(out, stored.Clone())
		}
	}
	domain.SortByCreateAtDesc(out)
	return out
}

// ReplaceTeamSnapshot drops everything indexed for the team and
// installs the fetched records. A record missing from the snapshot is
// gone: this is how channel-membership changes the index cannot
// observe directly get resolved.
func (x *Index) ReplaceTeamSnapshot(teamID string, records []*domain.Incident) {
	for key, stored := range x.byKey {
		if key.teamID == teamID {
			delete(x.byKey, key)
			delete(x.byID, stored.ID)
		}
	}
	for _, record := range records {
		if record == nil || !record.IsValid() || record.TeamID != teamID {
			continue
		}
		key := indexKey{teamID: record.TeamID, channelID: record.ChannelID}
		if old, ok := x.byKey[key]; ok {
			delete(x.byID, old.ID)
		}
		x.store(key, record.Clone())
	}
}

func (x *Index) store(key indexKey, record *domain.Incident) {
	// An incident arriving under a new (team, channel) must not leave
	// its old key behind, or a later Remove of the stale channel would
	// strip the id mapping out from under the live record.
	if prev, ok := x.byID[record.ID]; ok {
		prevKey := indexKey{teamID: prev.TeamID, channelID: prev.ChannelID}
		if prevKey != key {
			delete(x.byKey, prevKey)
		}
	}
	x.byKey[key] = record
	x.byID[record.ID] = record
}

func (x *Index) replace(key indexKey, old, record *domain.Incident) {
	delete(x.byID, old.ID)
	x.store(key, record)
}
