package quiz

import (
	"sync"
	"time"
)

const finishedSessionTTL = time.Hour

// sessionRegistry keeps live and recently finished sessions by ID.
type sessionRegistry struct {
	sessions sync.Map
}

func (r *sessionRegistry) store(session *Session) {
	r.sessions.Store(session.ID, session)
}

func (r *sessionRegistry) load(id string) (*Session, bool) {
	stored, ok := r.sessions.Load(id)
	if !ok {
		return nil, false
	}
	session, ok := stored.(*Session)
	return session, ok
}

func (r *sessionRegistry) remove(id string) (*Session, bool) {
	stored, ok := r.sessions.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	session, ok := stored.(*Session)
	return session, ok
}

// prune drops sessions that finished more than finishedSessionTTL before now.
func (r *sessionRegistry) prune(now time.Time) {
	r.sessions.Range(func(key, value any) bool {
		session, ok := value.(*Session)
		if !ok {
			r.sessions.Delete(key)
			return true
		}
		if !session.Finished() {
			return true
		}
		finishedAt := session.Deadline()
		if summary, ok := session.Summary(); ok {
			finishedAt = summary.FinishedAt
		}
		if now.Sub(finishedAt) > finishedSessionTTL {
			r.sessions.Delete(key)
		}
		return true
	})
}

func (r *sessionRegistry) abandonAll() {
	r.sessions.Range(func(key, value any) bool {
		if session, ok := value.(*Session); ok {
			session.Abandon()
		}
		r.sessions.Delete(key)
		return true
	})
}
