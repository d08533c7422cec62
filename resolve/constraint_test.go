package resolve

import "testing"

func versionsFrom(t *testing.T, strs ...string) []Version {
	t.Helper()
	out := make([]Version, len(strs))
	for i, s := range strs {
		out[i] = mustVersion(t, s)
	}
	return out
}

func TestConstraintAttachIntersectsSameRequester(t *testing.T) {
	c := NewConstraint("requests")
	repo := versionsFrom(t, "1.0.0", "1.5.0", "2.0.0", "2.5.0")

	ok, err := c.Attach("root", ">=1.0.0", repo)
	if err != nil || !ok {
		t.Fatalf("first Attach: ok=%v err=%v", ok, err)
	}
	// A second Attach from the *same* requester narrows the existing
	// bundle via intersection (the Open Question's intersect-then-error
	// resolution), rather than replacing it outright.
	ok, err = c.Attach("root", "<2.0.0", repo)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected >=1.0.0 intersected with <2.0.0 to remain non-empty")
	}

	eff := c.EffectiveRange()
	if !eff.Contains(mustVersion(t, "1.5.0"), false) {
		t.Error("expected 1.5.0 to remain admitted after intersection")
	}
	if eff.Contains(mustVersion(t, "2.5.0"), false) {
		t.Error("expected 2.5.0 to be excluded after intersection with <2.0.0")
	}
}

func TestConstraintAttachSameRequesterCanGoEmpty(t *testing.T) {
	c := NewConstraint("requests")
	repo := versionsFrom(t, "1.0.0", "2.0.0")

	if _, err := c.Attach("root", ">=2.0.0", repo); err != nil {
		t.Fatal(err)
	}
	ok, err := c.Attach("root", "<1.0.0", repo)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected >=2.0.0 intersected with <1.0.0 to be empty")
	}
}

func TestConstraintUnapplyExcludesFromEffectiveRange(t *testing.T) {
	c := NewConstraint("requests")
	repo := versionsFrom(t, "1.0.0", "2.0.0", "3.0.0")

	c.Attach("a", ">=1.0.0", repo)
	c.Attach("b", "<2.0.0", repo)

	if c.EffectiveRange().Contains(mustVersion(t, "2.0.0"), false) {
		t.Fatal("expected <2.0.0 to exclude 2.0.0 while b's Group is enabled")
	}

	c.Unapply("b")
	if !c.EffectiveRange().Contains(mustVersion(t, "2.0.0"), false) {
		t.Error("expected disabling b's Group to widen the effective range to admit 2.0.0")
	}

	c.Apply("b")
	if c.EffectiveRange().Contains(mustVersion(t, "2.0.0"), false) {
		t.Error("expected re-enabling b's Group to exclude 2.0.0 again")
	}
}

func TestConstraintFilterIsMonotoneUnderUnapply(t *testing.T) {
	c := NewConstraint("requests")
	repo := versionsFrom(t, "1.0.0", "1.5.0", "2.0.0")

	c.Attach("a", ">=1.0.0", repo)
	c.Attach("b", "<2.0.0", repo)

	narrow := c.Filter(repo)
	c.Unapply("b")
	wide := c.Filter(repo)

	if len(wide) < len(narrow) {
		t.Errorf("expected disabling a Group to only grow Filter's result: narrow=%d wide=%d", len(narrow), len(wide))
	}
}

func TestConstraintConflictDetectsEmptyCandidates(t *testing.T) {
	c := NewConstraint("requests")
	repo := versionsFrom(t, "1.0.0", "2.0.0")

	c.Attach("a", ">=3.0.0", repo)
	if !c.Conflict() {
		t.Error("expected a constraint no release satisfies to report Conflict")
	}
}
