package scan

import "sync"

// Ticket identifies one scan of one user.
type Ticket struct {
	UserID     int
	EAN        string
	generation uint64
}

type userState struct {
	generation uint64
	lastEAN    string
}

// Tracker hands out per-user generation tickets so only the newest scan of a
// user is current. Older scans finishing later are reported as stale.
type Tracker struct {
	mu    sync.Mutex
	users map[int]*userState
}

func NewTracker() *Tracker {
	return &Tracker{users: make(map[int]*userState)}
}

// Begin records ean as the user's last scan and supersedes earlier tickets.
func (t *Tracker) Begin(userID int, ean string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.users[userID]
	if !ok {
		st = &userState{}
		t.users[userID] = st
	}
	st.generation++
	st.lastEAN = ean
	return Ticket{UserID: userID, EAN: ean, generation: st.generation}
}

// Current reports whether no newer scan began after tk.
func (t *Tracker) Current(tk Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.users[tk.UserID]
	return ok && st.generation == tk.generation
}

// Last returns the user's most recently scanned EAN, or "".
func (t *Tracker) Last(userID int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.users[userID]; ok {
		return st.lastEAN
	}
	return ""
}
