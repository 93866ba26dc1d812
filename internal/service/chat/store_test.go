package chat_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/b4bharath-source/faculty-admin-link/internal/model/admin"
	model "github.com/b4bharath-source/faculty-admin-link/internal/model/chat"
	"github.com/b4bharath-source/faculty-admin-link/internal/service/assign"
	chatservice "github.com/b4bharath-source/faculty-admin-link/internal/service/chat"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, registry admin.Registry) (*chatservice.Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	store := chatservice.NewStoreWithClock(registry, assign.NewRoundRobin(), chatservice.Config{
		QueueDelay:    5 * time.Second,
		ReplyDelayMin: 2 * time.Second,
		ReplyDelayMax: 2 * time.Second,
	}, clock)
	return store, clock
}

func seededStore(t *testing.T) (*chatservice.Store, *clockwork.FakeClock) {
	t.Helper()
	return newTestStore(t, admin.NewMemoryRegistry(admin.Seed()))
}

func TestLoginSeedsFacultyHistory(t *testing.T) {
	store, _ := seededStore(t)

	user, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	require.Equal(t, model.RoleFaculty, user.Role)

	sessions := store.Sessions()
	require.Len(t, sessions, 3)
	for _, session := range sessions {
		require.Equal(t, user.ID, session.FacultyID)
		require.Equal(t, model.StatusClosed, session.Status)
		require.NotNil(t, session.ClosedAt)
		require.NotEmpty(t, session.AdminID)
		require.NotEmpty(t, session.Messages)
	}
}

func TestLoginAdminSeedsNoHistory(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("Ms. Park", model.RoleAdmin)
	require.NoError(t, err)
	require.Empty(t, store.Sessions())
}

func TestLoginValidation(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("   ", model.RoleFaculty)
	require.ErrorIs(t, err, chatservice.ErrNameRequired)

	_, err = store.Login("Ana Lee", model.Role("student"))
	require.ErrorIs(t, err, chatservice.ErrInvalidRole)
}

func TestQueueAssignsAdminAfterDelay(t *testing.T) {
	store, clock := seededStore(t)

	user, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	require.NoError(t, store.EnterQueue())
	require.True(t, store.IsQueued())

	clock.Advance(5 * time.Second)

	require.Eventually(t, func() bool {
		_, ok := store.ActiveSession()
		return ok
	}, time.Second, 5*time.Millisecond)

	active, ok := store.ActiveSession()
	require.True(t, ok)
	require.Equal(t, model.StatusActive, active.Status)
	require.Equal(t, user.ID, active.FacultyID)
	// cursor starts at the first seeded admin
	require.Equal(t, "admin1", active.AdminID)
	require.NotEmpty(t, active.Messages)
	require.Equal(t, active.AdminID, active.Messages[0].SenderID)
	require.False(t, store.IsQueued())
	require.Len(t, store.Sessions(), 4)
}

func TestLeaveQueueCancelsPendingAssignment(t *testing.T) {
	store, clock := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	require.NoError(t, store.EnterQueue())
	store.LeaveQueue()

	clock.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)

	require.False(t, store.IsQueued())
	_, ok := store.ActiveSession()
	require.False(t, ok)
	require.Len(t, store.Sessions(), 3)
}

func TestQueueRequiresFacultyUser(t *testing.T) {
	store, _ := seededStore(t)

	require.ErrorIs(t, store.EnterQueue(), chatservice.ErrNotLoggedIn)

	_, err := store.Login("Ms. Park", model.RoleAdmin)
	require.NoError(t, err)
	require.ErrorIs(t, store.EnterQueue(), chatservice.ErrFacultyOnly)
}

func TestSelectAdminExplicit(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)

	session, err := store.SelectAdminExplicit("admin2")
	require.NoError(t, err)
	require.Equal(t, "admin2", session.AdminID)
	require.Equal(t, model.StatusActive, session.Status)

	active, ok := store.ActiveSession()
	require.True(t, ok)
	require.Equal(t, session.ID, active.ID)
}

func TestSelectAdminOfflineLeavesStateUnchanged(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	before := store.Sessions()

	_, err = store.SelectAdminExplicit("admin4")
	require.ErrorIs(t, err, assign.ErrAdminOffline)

	require.Equal(t, len(before), len(store.Sessions()))
	_, ok := store.ActiveSession()
	require.False(t, ok)
}

func TestSelectAdminUnknown(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)

	_, err = store.SelectAdminExplicit("nobody")
	require.ErrorIs(t, err, assign.ErrAdminNotFound)
}

func TestSingleOnlineAdminAlwaysAssigned(t *testing.T) {
	registry := admin.NewMemoryRegistry([]model.User{
		{ID: "a1", Name: "Dr. Ruiz", Role: model.RoleAdmin, IsOnline: false},
		{ID: "a2", Name: "Dr. Osei", Role: model.RoleAdmin, IsOnline: true},
	})
	store, _ := newTestStore(t, registry)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)

	first, err := store.AssignAdminAutomatic()
	require.NoError(t, err)
	second, err := store.AssignAdminAutomatic()
	require.NoError(t, err)

	require.Equal(t, "a2", first.AdminID)
	require.Equal(t, "a2", second.AdminID)
}

func TestAssignWithNoAdminsAvailable(t *testing.T) {
	registry := admin.NewMemoryRegistry([]model.User{
		{ID: "a1", Name: "Dr. Ruiz", Role: model.RoleAdmin, IsOnline: false},
	})
	store, _ := newTestStore(t, registry)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)

	_, err = store.AssignAdminAutomatic()
	require.ErrorIs(t, err, assign.ErrNoAdminAvailable)
	require.Empty(t, store.Sessions())
}

func TestSendMessagePreservesOrder(t *testing.T) {
	store, _ := seededStore(t)

	user, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	_, err = store.SelectAdminExplicit("admin1")
	require.NoError(t, err)

	sent := []string{"first question", "second question", "third question"}
	for _, content := range sent {
		require.NoError(t, store.SendMessage(content))
	}

	active, ok := store.ActiveSession()
	require.True(t, ok)

	var got []string
	for _, message := range active.Messages {
		if message.SenderID == user.ID {
			got = append(got, message.Content)
		}
	}
	if diff := cmp.Diff(sent, got); diff != "" {
		t.Fatalf("message order mismatch (-want +got):\n%s", diff)
	}
}

func TestSendMessageTrimsAndSkipsEmptyContent(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	_, err = store.SelectAdminExplicit("admin1")
	require.NoError(t, err)

	before, _ := store.ActiveSession()
	require.NoError(t, store.SendMessage("   "))
	after, _ := store.ActiveSession()
	require.Len(t, after.Messages, len(before.Messages))
}

func TestSendMessageRequiresActiveSession(t *testing.T) {
	store, _ := seededStore(t)

	require.ErrorIs(t, store.SendMessage("hello"), chatservice.ErrNotLoggedIn)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	require.ErrorIs(t, store.SendMessage("hello"), chatservice.ErrNoActiveSession)
}

func TestFacultyMessageTriggersSimulatedReply(t *testing.T) {
	store, clock := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	session, err := store.SelectAdminExplicit("admin1")
	require.NoError(t, err)

	require.NoError(t, store.SendMessage("are you there?"))
	baseline := len(session.Messages) + 1

	clock.Advance(2 * time.Second)

	require.Eventually(t, func() bool {
		active, ok := store.ActiveSession()
		return ok && len(active.Messages) > baseline
	}, time.Second, 5*time.Millisecond)

	active, _ := store.ActiveSession()
	last := active.Messages[len(active.Messages)-1]
	require.Equal(t, "admin1", last.SenderID)
	require.Contains(t, cannedReplyPool(), last.Content)
}

// cannedReplyPool mirrors the fixed simulator pool for containment checks.
func cannedReplyPool() []string {
	return []string{
		"I understand your concern. Let me look into this for you.",
		"That's a great question! Here's what I can tell you...",
		"I'll need to check with the department on this. Give me a moment.",
		"Thanks for bringing this to my attention. I'll help you resolve this.",
		"Let me pull up your records to give you the most accurate information.",
	}
}

func TestReplyLandsOnCapturedSession(t *testing.T) {
	store, clock := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	first, err := store.SelectAdminExplicit("admin1")
	require.NoError(t, err)

	require.NoError(t, store.SendMessage("question for the first admin"))
	firstCount := len(first.Messages) + 1

	// switch focus to a second conversation before the reply fires
	second, err := store.SelectAdminExplicit("admin2")
	require.NoError(t, err)
	secondCount := len(second.Messages)

	clock.Advance(2 * time.Second)

	require.Eventually(t, func() bool {
		for _, session := range store.Sessions() {
			if session.ID == first.ID {
				return len(session.Messages) > firstCount
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	for _, session := range store.Sessions() {
		switch session.ID {
		case first.ID:
			last := session.Messages[len(session.Messages)-1]
			require.Equal(t, "admin1", last.SenderID)
		case second.ID:
			require.Len(t, session.Messages, secondCount)
		}
	}
}

func TestCloseSessionCancelsPendingReply(t *testing.T) {
	store, clock := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	session, err := store.SelectAdminExplicit("admin1")
	require.NoError(t, err)

	require.NoError(t, store.SendMessage("closing right away"))
	store.CloseSession(session.ID)

	clock.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)

	sessions := store.SessionsForUser(session.FacultyID)
	for _, got := range sessions {
		if got.ID != session.ID {
			continue
		}
		require.Equal(t, model.StatusClosed, got.Status)
		require.NotNil(t, got.ClosedAt)
		// greeting + the faculty message, no simulated reply
		require.Len(t, got.Messages, len(session.Messages)+1)
	}
	_, ok := store.ActiveSession()
	require.False(t, ok)
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	store, clock := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	session, err := store.SelectAdminExplicit("admin1")
	require.NoError(t, err)

	store.CloseSession(session.ID)
	var firstStamp time.Time
	for _, got := range store.Sessions() {
		if got.ID == session.ID {
			require.NotNil(t, got.ClosedAt)
			firstStamp = *got.ClosedAt
		}
	}

	clock.Advance(time.Minute)
	store.CloseSession(session.ID)
	for _, got := range store.Sessions() {
		if got.ID == session.ID {
			require.Equal(t, firstStamp, *got.ClosedAt)
		}
	}
}

func TestCloseSessionUnknownIDIsNoop(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	store.CloseSession("missing")
	require.Len(t, store.Sessions(), 3)
}

func TestSetActiveSession(t *testing.T) {
	store, _ := seededStore(t)

	_, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	seeded := store.Sessions()

	require.NoError(t, store.SetActiveSession(seeded[0].ID))
	active, ok := store.ActiveSession()
	require.True(t, ok)
	require.Equal(t, seeded[0].ID, active.ID)

	require.NoError(t, store.SetActiveSession(""))
	_, ok = store.ActiveSession()
	require.False(t, ok)

	require.ErrorIs(t, store.SetActiveSession("missing"), chatservice.ErrSessionNotFound)
}

func TestLogoutClearsEverything(t *testing.T) {
	store, clock := seededStore(t)

	first, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	_, err = store.SelectAdminExplicit("admin1")
	require.NoError(t, err)
	require.NoError(t, store.SendMessage("pending reply incoming"))

	store.Logout()

	_, ok := store.CurrentUser()
	require.False(t, ok)
	require.Empty(t, store.Sessions())
	require.False(t, store.IsQueued())

	// pending reply timers must not mutate anything after logout
	clock.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, store.Sessions())

	second, err := store.Login("Ben Cho", model.RoleFaculty)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	for _, session := range store.Sessions() {
		require.Equal(t, second.ID, session.FacultyID)
	}
}

func TestSnapshotReflectsStoreState(t *testing.T) {
	store, _ := seededStore(t)

	state := store.Snapshot()
	require.Nil(t, state.CurrentUser)
	require.Empty(t, state.Sessions)

	user, err := store.Login("Ana Lee", model.RoleFaculty)
	require.NoError(t, err)
	store.SetAdminSelectionMode(true)

	state = store.Snapshot()
	require.NotNil(t, state.CurrentUser)
	require.Equal(t, user.ID, state.CurrentUser.ID)
	require.Len(t, state.Sessions, 3)
	require.Nil(t, state.ActiveSession)
	require.True(t, state.AdminSelectionMode)
}
