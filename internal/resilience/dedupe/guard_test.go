package dedupe

import "testing"

func TestGuard(t *testing.T) {
	g := NewGuard()
	key := Key{PortalID: "p1", ProjectID: "proj1", Title: "Review: Notes"}

	if g.IsDuplicate(key) {
		t.Error("expected empty guard to report no duplicate")
	}

	g.Record(key)
	if !g.IsDuplicate(key) {
		t.Error("expected recorded key to be a duplicate")
	}

	// Any differing component is a different destination.
	others := []Key{
		{PortalID: "p2", ProjectID: "proj1", Title: "Review: Notes"},
		{PortalID: "p1", ProjectID: "proj2", Title: "Review: Notes"},
		{PortalID: "p1", ProjectID: "proj1", Title: "Review: notes"},
	}
	for _, k := range others {
		if g.IsDuplicate(k) {
			t.Errorf("unexpected duplicate for %+v", k)
		}
	}

	g.Record(key)
	if g.Len() != 1 {
		t.Errorf("expected 1 key, got %d", g.Len())
	}
}
