package chat

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/b4bharath-source/faculty-admin-link/internal/model/admin"
	"github.com/b4bharath-source/faculty-admin-link/internal/model/chat"
	"github.com/b4bharath-source/faculty-admin-link/internal/service/assign"
)

// Config carries the timing knobs for the simulated counterparty.
type Config struct {
	// QueueDelay is how long a faculty user waits before the queue
	// hands them to an automatically assigned admin.
	QueueDelay time.Duration
	// ReplyDelayMin and ReplyDelayMax bound the randomized delay
	// before a simulated admin reply lands.
	ReplyDelayMin time.Duration
	ReplyDelayMax time.Duration
}

// Store owns all conversation state for the process: the current user,
// the insertion-ordered session collection, the active-session pointer
// and the queue/UI flags. Views hold read-only copies and call the
// operations below; nothing mutates entities outside the store.
//
// All mutations run to completion under one mutex. The only deferred
// work is the pair of single-shot timers (queue completion, simulated
// admin reply); both are tracked so logout and session close can
// cancel anything still pending.
type Store struct {
	registry admin.Registry
	policy   *assign.RoundRobin
	clock    clockwork.Clock
	cfg      Config

	mu                 sync.Mutex
	currentUser        *chat.User
	sessions           *orderedmap.OrderedMap[string, *chat.Session]
	activeSessionID    string
	isQueued           bool
	adminSelectionMode bool

	queueTimer  clockwork.Timer
	replyTimers map[string][]clockwork.Timer
}

// NewStore builds a store driven by the wall clock.
func NewStore(registry admin.Registry, policy *assign.RoundRobin, cfg Config) *Store {
	return NewStoreWithClock(registry, policy, cfg, clockwork.NewRealClock())
}

// NewStoreWithClock injects the clock so tests can advance time deterministically.
func NewStoreWithClock(registry admin.Registry, policy *assign.RoundRobin, cfg Config, clock clockwork.Clock) *Store {
	return &Store{
		registry:    registry,
		policy:      policy,
		clock:       clock,
		cfg:         cfg,
		sessions:    orderedmap.New[string, *chat.Session](),
		replyTimers: make(map[string][]clockwork.Timer),
	}
}

// Login replaces any prior state with a fresh user. Faculty logins are
// seeded with a small closed-session history so the UI has content.
func (s *Store) Login(name string, role chat.Role) (chat.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return chat.User{}, ErrNameRequired
	}
	if !role.Valid() {
		return chat.User{}, ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()

	user := chat.User{
		ID:       uuid.NewString(),
		Name:     name,
		Role:     role,
		IsOnline: true,
	}
	s.currentUser = &user

	if role == chat.RoleFaculty {
		s.seedHistoryLocked(user)
	}

	logrus.WithFields(logrus.Fields{"user": user.ID, "role": role}).Info("user logged in")
	return user, nil
}

// Logout clears everything: user, sessions, active pointer, flags and
// any pending timers. There is no partial teardown.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	logrus.Info("user logged out")
}

// EnterQueue marks the faculty user as waiting and schedules the
// single-shot queue completion. Entering while already queued is a no-op.
func (s *Store) EnterQueue() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentUser == nil {
		return ErrNotLoggedIn
	}
	if s.currentUser.Role != chat.RoleFaculty {
		return ErrFacultyOnly
	}
	if s.isQueued {
		return nil
	}

	s.isQueued = true
	userID := s.currentUser.ID
	s.queueTimer = s.clock.AfterFunc(s.cfg.QueueDelay, func() {
		s.completeQueue(userID)
	})
	return nil
}

// LeaveQueue cancels a pending queue wait.
func (s *Store) LeaveQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isQueued = false
	s.stopQueueTimerLocked()
}

// completeQueue is the queue timer callback. It re-checks that the
// same user is still logged in and still waiting before assigning; a
// logout or cancellation between scheduling and firing makes it a no-op.
func (s *Store) completeQueue(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentUser == nil || s.currentUser.ID != userID || !s.isQueued {
		return
	}
	if _, err := s.assignAutomaticLocked(); err != nil {
		logrus.WithError(err).Warn("queue completion could not assign an admin")
	}
}

// AssignAdminAutomatic assigns the next admin in the rotation to the
// current faculty user and opens an active session with them.
func (s *Store) AssignAdminAutomatic() (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.assignAutomaticLocked()
	if err != nil {
		return chat.Session{}, err
	}
	return session.Clone(), nil
}

func (s *Store) assignAutomaticLocked() (*chat.Session, error) {
	if s.currentUser == nil {
		return nil, ErrNotLoggedIn
	}
	if s.currentUser.Role != chat.RoleFaculty {
		return nil, ErrFacultyOnly
	}

	assigned, err := s.policy.Next(s.registry.ListAvailable())
	if err != nil {
		return nil, err
	}
	return s.openSessionLocked(assigned), nil
}

// SelectAdminExplicit opens a session with a directly chosen admin,
// bypassing the rotation. Offline or unknown admins leave the store
// untouched.
func (s *Store) SelectAdminExplicit(adminID string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentUser == nil {
		return chat.Session{}, ErrNotLoggedIn
	}
	if s.currentUser.Role != chat.RoleFaculty {
		return chat.Session{}, ErrFacultyOnly
	}

	assigned, err := assign.Explicit(adminID, s.registry)
	if err != nil {
		return chat.Session{}, err
	}
	return s.openSessionLocked(assigned).Clone(), nil
}

// openSessionLocked creates the active session with its admin greeting,
// appends it to the collection and clears the queue/selection flags.
func (s *Store) openSessionLocked(assigned chat.User) *chat.Session {
	now := s.clock.Now()
	session := &chat.Session{
		ID:          uuid.NewString(),
		FacultyID:   s.currentUser.ID,
		FacultyName: s.currentUser.Name,
		AdminID:     assigned.ID,
		AdminName:   assigned.Name,
		Status:      chat.StatusActive,
		CreatedAt:   now,
	}
	session.Messages = append(session.Messages, chat.Message{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		SenderID:   assigned.ID,
		SenderName: assigned.Name,
		Content:    greeting(s.currentUser.Name, assigned.Name),
		Kind:       chat.KindText,
		CreatedAt:  now,
	})

	s.sessions.Set(session.ID, session)
	s.activeSessionID = session.ID
	s.isQueued = false
	s.adminSelectionMode = false
	s.stopQueueTimerLocked()

	logrus.WithFields(logrus.Fields{
		"session": session.ID,
		"faculty": session.FacultyID,
		"admin":   session.AdminID,
	}).Info("session opened")
	return session
}

// SendMessage appends a message from the current user to the active
// session. Trimmed-empty content is a caller-side no-op, not an error.
// A faculty message schedules exactly one simulated admin reply against
// the session id captured now; stacked sends stack independent timers.
func (s *Store) SendMessage(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentUser == nil {
		return ErrNotLoggedIn
	}
	session, ok := s.sessions.Get(s.activeSessionID)
	if s.activeSessionID == "" || !ok {
		return ErrNoActiveSession
	}

	session.Messages = append(session.Messages, chat.Message{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		SenderID:   s.currentUser.ID,
		SenderName: s.currentUser.Name,
		Content:    content,
		Kind:       chat.KindText,
		CreatedAt:  s.clock.Now(),
	})

	if s.currentUser.Role == chat.RoleFaculty {
		s.scheduleReplyLocked(session.ID)
	}
	return nil
}

func (s *Store) scheduleReplyLocked(sessionID string) {
	delay := s.cfg.ReplyDelayMin
	if spread := s.cfg.ReplyDelayMax - s.cfg.ReplyDelayMin; spread > 0 {
		delay += rand.N(spread)
	}
	timer := s.clock.AfterFunc(delay, func() {
		s.deliverReply(sessionID)
	})
	s.replyTimers[sessionID] = append(s.replyTimers[sessionID], timer)
}

// deliverReply is the reply timer callback. It appends one canned
// admin reply to the session it was scheduled against, looked up by
// id, so switching the active session in the meantime does not
// redirect the reply. It goes quiet when the user logged out or the
// session closed or vanished in between.
func (s *Store) deliverReply(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentUser == nil {
		return
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.Status != chat.StatusActive || session.AdminID == "" {
		return
	}

	session.Messages = append(session.Messages, chat.Message{
		ID:         uuid.NewString(),
		SessionID:  session.ID,
		SenderID:   session.AdminID,
		SenderName: session.AdminName,
		Content:    cannedReplies[rand.IntN(len(cannedReplies))],
		Kind:       chat.KindText,
		CreatedAt:  s.clock.Now(),
	})
}

// CloseSession closes the matching session, stamping ClosedAt exactly
// once, and clears the active pointer if it pointed there. Pending
// replies for the session are cancelled. Unknown ids and repeat calls
// are no-ops.
func (s *Store) CloseSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(id)
	if !ok {
		return
	}

	if session.Status != chat.StatusClosed {
		now := s.clock.Now()
		session.Status = chat.StatusClosed
		session.ClosedAt = &now
		logrus.WithField("session", id).Info("session closed")
	}
	if s.activeSessionID == id {
		s.activeSessionID = ""
	}
	s.cancelRepliesLocked(id)
}

// SetActiveSession points the UI focus at the given session, or clears
// it when id is empty. The caller is trusted; ownership is not checked.
func (s *Store) SetActiveSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.activeSessionID = ""
		return nil
	}
	if _, ok := s.sessions.Get(id); !ok {
		return ErrSessionNotFound
	}
	s.activeSessionID = id
	return nil
}

// SetAdminSelectionMode flips the explicit-selection UI flag.
func (s *Store) SetAdminSelectionMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminSelectionMode = enabled
}

// CurrentUser returns the logged-in user, if any.
func (s *Store) CurrentUser() (chat.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentUser == nil {
		return chat.User{}, false
	}
	return *s.currentUser, true
}

// Sessions returns every session in insertion order.
func (s *Store) Sessions() []chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionsLocked()
}

func (s *Store) sessionsLocked() []chat.Session {
	out := make([]chat.Session, 0, s.sessions.Len())
	for pair := s.sessions.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value.Clone())
	}
	return out
}

// SessionsForUser returns the sessions owned by the given faculty
// user, preserving insertion order.
func (s *Store) SessionsForUser(facultyID string) []chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]chat.Session, 0, s.sessions.Len())
	for pair := s.sessions.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.FacultyID == facultyID {
			out = append(out, pair.Value.Clone())
		}
	}
	return out
}

// ActiveSession returns a copy of the focused session, if any.
func (s *Store) ActiveSession() (chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions.Get(s.activeSessionID)
	if s.activeSessionID == "" || !ok {
		return chat.Session{}, false
	}
	return session.Clone(), true
}

// IsQueued reports whether the current user is waiting for assignment.
func (s *Store) IsQueued() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isQueued
}

// AdminSelectionMode reports the explicit-selection UI flag.
func (s *Store) AdminSelectionMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminSelectionMode
}

// AvailableAdmins returns the online admins from the registry.
func (s *Store) AvailableAdmins() []chat.User {
	return s.registry.ListAvailable()
}

// State is the read-only snapshot handed to the view layer.
type State struct {
	CurrentUser        *chat.User     `json:"currentUser"`
	Sessions           []chat.Session `json:"sessions"`
	ActiveSession      *chat.Session  `json:"activeSession"`
	IsQueued           bool           `json:"isQueued"`
	AdminSelectionMode bool           `json:"adminSelectionMode"`
}

// Snapshot captures the whole store state in one consistent read.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{
		Sessions:           s.sessionsLocked(),
		IsQueued:           s.isQueued,
		AdminSelectionMode: s.adminSelectionMode,
	}
	if s.currentUser != nil {
		user := *s.currentUser
		state.CurrentUser = &user
	}
	if session, ok := s.sessions.Get(s.activeSessionID); s.activeSessionID != "" && ok {
		active := session.Clone()
		state.ActiveSession = &active
	}
	return state
}

// resetLocked tears the store down to empty, stopping every pending timer.
func (s *Store) resetLocked() {
	s.stopQueueTimerLocked()
	for id := range s.replyTimers {
		s.cancelRepliesLocked(id)
	}
	s.currentUser = nil
	s.sessions = orderedmap.New[string, *chat.Session]()
	s.activeSessionID = ""
	s.isQueued = false
	s.adminSelectionMode = false
}

func (s *Store) stopQueueTimerLocked() {
	if s.queueTimer != nil {
		s.queueTimer.Stop()
		s.queueTimer = nil
	}
}

func (s *Store) cancelRepliesLocked(sessionID string) {
	for _, timer := range s.replyTimers[sessionID] {
		timer.Stop()
	}
	delete(s.replyTimers, sessionID)
}

// seedHistoryLocked installs the deterministic closed-session history a
// faculty user sees right after login: one past conversation with each
// of the first three seeded admins.
func (s *Store) seedHistoryLocked(user chat.User) {
	topics := []struct {
		question string
		answer   string
	}{
		{
			question: "Could you check why my grade submission portal is locked?",
			answer:   "The portal reopens after the registrar's audit. I've flagged your account so it unlocks first.",
		},
		{
			question: "I need a room booking for the department seminar next month.",
			answer:   "Room 204 is reserved for you. The confirmation is in your inbox.",
		},
		{
			question: "My parking permit renewal never arrived. Can you help?",
			answer:   "The permit office reissued it today. Pick it up at the front desk.",
		},
	}

	admins := s.registry.List()
	now := s.clock.Now()
	for i, topic := range topics {
		if i >= len(admins) {
			break
		}
		counterpart := admins[i]
		createdAt := now.Add(-time.Duration(len(topics)-i) * 24 * time.Hour)
		closedAt := createdAt.Add(10 * time.Minute)

		session := &chat.Session{
			ID:          uuid.NewString(),
			FacultyID:   user.ID,
			FacultyName: user.Name,
			AdminID:     counterpart.ID,
			AdminName:   counterpart.Name,
			Status:      chat.StatusClosed,
			CreatedAt:   createdAt,
			ClosedAt:    &closedAt,
		}
		session.Messages = []chat.Message{
			{
				ID:         uuid.NewString(),
				SessionID:  session.ID,
				SenderID:   counterpart.ID,
				SenderName: counterpart.Name,
				Content:    greeting(user.Name, counterpart.Name),
				Kind:       chat.KindText,
				CreatedAt:  createdAt,
			},
			{
				ID:         uuid.NewString(),
				SessionID:  session.ID,
				SenderID:   user.ID,
				SenderName: user.Name,
				Content:    topic.question,
				Kind:       chat.KindText,
				CreatedAt:  createdAt.Add(time.Minute),
			},
			{
				ID:         uuid.NewString(),
				SessionID:  session.ID,
				SenderID:   counterpart.ID,
				SenderName: counterpart.Name,
				Content:    topic.answer,
				Kind:       chat.KindText,
				CreatedAt:  createdAt.Add(2 * time.Minute),
			},
		}
		s.sessions.Set(session.ID, session)
	}
}
