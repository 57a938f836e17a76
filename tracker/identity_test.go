package tracker

import (
	"regexp"
	"testing"
)

var idPattern = regexp.MustCompile(`^(mz|user)_\d+_[0-9a-z]{9}$`)

func TestSessionIDStableAcrossReads(t *testing.T) {
	tr := newTestTracker()

	first := tr.SessionID()
	if !idPattern.MatchString(first) {
		t.Errorf("SessionID() = %q, want mz_<epoch-ms>_<9 base36 chars>", first)
	}
	if second := tr.SessionID(); second != first {
		t.Errorf("SessionID() changed between reads: %q then %q", first, second)
	}
}

func TestSessionIDRegeneratesAfterStoreClear(t *testing.T) {
	tr := newTestTracker()

	first := tr.SessionID()
	tr.session.Clear()
	second := tr.SessionID()

	if second == first {
		t.Error("SessionID() did not regenerate after the session store was cleared")
	}
	if !idPattern.MatchString(second) {
		t.Errorf("regenerated SessionID() = %q, malformed", second)
	}
}

func TestUserIDSurvivesSessionStore(t *testing.T) {
	tr := newTestTracker()

	userID := tr.UserID()
	if !idPattern.MatchString(userID) {
		t.Errorf("UserID() = %q, want user_<epoch-ms>_<9 base36 chars>", userID)
	}

	// Clearing the session store must not touch the durable identity.
	tr.session.Clear()
	if got := tr.UserID(); got != userID {
		t.Errorf("UserID() = %q after session clear, want %q", got, userID)
	}
}

func TestSessionAndUserIDsAreDistinct(t *testing.T) {
	tr := newTestTracker()

	if tr.SessionID() == tr.UserID() {
		t.Error("session and user ids collided")
	}
}
