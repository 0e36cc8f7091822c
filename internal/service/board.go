package service

import (
	"sync"

	"github.com/manglemix/pony-express/internal/domain"
)

// Entry is one message on a board.
type Entry struct {
	domain.Message
	Editing bool
	// Mine marks messages written by the viewer; only those can be edited
	// or deleted.
	Mine bool
}

// Board is the message list a session has open, with its compose draft
// and edit modes. A Board is never modified after it is published; every
// change returns a new Board with a new Entries slice.
type Board struct {
	ChatID   int64
	ViewerID int64
	Entries  []Entry
	Draft    string

	// loaded numbers the backend fetch the board was built from. Boards
	// derived from it by local changes keep the number.
	loaded uint64
}

func newBoard(chatID, viewerID int64, msgs []domain.Message) *Board {
	entries := make([]Entry, len(msgs))
	for i, m := range msgs {
		entries[i] = Entry{Message: m, Mine: m.User.ID == viewerID}
	}
	return &Board{
		ChatID:   chatID,
		ViewerID: viewerID,
		Entries:  entries,
	}
}

// Find returns the index of messageID, or -1.
func (b *Board) Find(messageID int64) int {
	for i := range b.Entries {
		if b.Entries[i].ID == messageID {
			return i
		}
	}
	return -1
}

// carried returns b with the draft and edit modes of prev, for entries
// that are still there.
func (b *Board) carried(prev *Board) *Board {
	editing := make(map[int64]bool)
	for _, e := range prev.Entries {
		if e.Editing {
			editing[e.ID] = true
		}
	}

	entries := make([]Entry, len(b.Entries))
	copy(entries, b.Entries)
	for i := range entries {
		entries[i].Editing = editing[entries[i].ID]
	}

	nb := b.withEntries(entries)
	nb.Draft = prev.Draft
	return nb
}

func (b *Board) withEntries(entries []Entry) *Board {
	nb := *b
	nb.Entries = entries
	return &nb
}

func (b *Board) withDraft(draft string) *Board {
	nb := *b
	nb.Draft = draft
	return &nb
}

func (b *Board) appended(m domain.Message) *Board {
	entries := make([]Entry, len(b.Entries), len(b.Entries)+1)
	copy(entries, b.Entries)
	entries = append(entries, Entry{Message: m, Mine: m.User.ID == b.ViewerID})
	return b.withEntries(entries)
}

func (b *Board) patched(i int, fn func(*Entry)) *Board {
	entries := make([]Entry, len(b.Entries))
	copy(entries, b.Entries)
	fn(&entries[i])
	return b.withEntries(entries)
}

func (b *Board) removed(i int) *Board {
	entries := make([]Entry, 0, len(b.Entries)-1)
	entries = append(entries, b.Entries[:i]...)
	entries = append(entries, b.Entries[i+1:]...)
	return b.withEntries(entries)
}

// boardSet holds the single mounted board of each session.
type boardSet struct {
	mu     sync.Mutex
	boards map[string]*Board
	loads  uint64
}

func newBoardSet() *boardSet {
	return &boardSet{boards: make(map[string]*Board)}
}

func (s *boardSet) get(sessionID string, chatID int64) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boards[sessionID]; ok && b.ChatID == chatID {
		return b
	}
	return nil
}

// mount publishes nb, freshly built from a backend fetch, unless the
// session's board for the same chat changed since old was read. It
// returns the board now mounted.
func (s *boardSet) mount(sessionID string, old, nb *Board) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.boards[sessionID]; ok && cur != old && cur.ChatID == nb.ChatID {
		return cur
	}
	s.loads++
	nb.loaded = s.loads
	s.boards[sessionID] = nb
	return nb
}

// update replaces the board for chatID with fn's result. It fails with
// errUnmounted when the board was dropped in the meantime.
func (s *boardSet) update(sessionID string, chatID int64, fn func(*Board) (*Board, error)) (*Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.boards[sessionID]
	if !ok || b.ChatID != chatID {
		return nil, errUnmounted
	}
	nb, err := fn(b)
	if err != nil {
		return nil, err
	}
	s.boards[sessionID] = nb
	return nb, nil
}

// drop reports whether the session had a board.
func (s *boardSet) drop(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.boards[sessionID]
	delete(s.boards, sessionID)
	return ok
}

// dropStale unmounts the session's board for chatID when it was fetched
// after a local change from fetch number applied. Such a board may show
// the backend's state from before that change landed.
func (s *boardSet) dropStale(sessionID string, chatID int64, applied uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boards[sessionID]; ok && b.ChatID == chatID && b.loaded != applied {
		delete(s.boards, sessionID)
		return true
	}
	return false
}

// dropChat unmounts the session's board only if it still shows chatID.
func (s *boardSet) dropChat(sessionID string, chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.boards[sessionID]; ok && b.ChatID == chatID {
		delete(s.boards, sessionID)
	}
}

type boardKey struct {
	sessionID string
	chatID    int64
}

// inflight counts background edits and deletes per session and chat.
type inflight struct {
	mu     sync.Mutex
	counts map[boardKey]int
}

func newInflight() *inflight {
	return &inflight{counts: make(map[boardKey]int)}
}

func (f *inflight) add(k boardKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[k]++
}

func (f *inflight) done(k boardKey) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts[k]--; f.counts[k] <= 0 {
		delete(f.counts, k)
	}
}

func (f *inflight) busy(k boardKey) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[k] > 0
}
