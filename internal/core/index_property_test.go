package core

import (
	"fmt"
	"testing"

	"github.com/incidentkit/incident-sync/internal/domain"
	"pgregory.net/rapid"
)

// Property: upserts for one (team, channel) key converge regardless of
// arrival order. Once any ended version has been applied, the stored
// record stays ended; the stored record is always one of the applied
// versions; and duplicate application of the full sequence changes
// nothing.
func TestProperty_UpsertOrderIndependentConvergence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(rt, "versions")
		versions := make([]*domain.Incident, n)
		sawEnded := false
		for i := range versions {
			v := newIncident("inc1", "team1", "chan1", 100)
			v.Name = fmt.Sprintf("version %d", i)
			if rapid.Bool().Draw(rt, fmt.Sprintf("ended%d", i)) {
				v = ended(v, int64(200+i))
				sawEnded = true
			}
			versions[i] = v
		}

		order := rapid.Permutation(versions).Draw(rt, "order")

		index := NewIndex()
		for _, v := range order {
			index.Upsert(v)
		}

		final, ok := index.Get("team1", "chan1")
		if !ok {
			rt.Fatal("record missing after upserts")
		}
		if sawEnded && final.IsActive {
			rt.Fatalf("ended incident downgraded to active: %+v", final)
		}

		matched := false
		for _, v := range versions {
			if final.Name == v.Name && final.IsActive == v.IsActive && final.EndAt == v.EndAt {
				matched = true
				break
			}
		}
		if !matched {
			rt.Fatalf("final record matches no applied version: %+v", final)
		}

		// Replaying the whole sequence is idempotent with respect to
		// the ended state.
		for _, v := range order {
			index.Upsert(v)
		}
		replayed, _ := index.Get("team1", "chan1")
		if sawEnded && replayed.IsActive {
			rt.Fatalf("replay downgraded ended incident: %+v", replayed)
		}
	})
}
