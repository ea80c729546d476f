package middleware

import (
	"maps"

	"biliticket/sessionstore/pkg/crypto"
)

// SessionState is the per-request view of a session. It is not safe for
// concurrent use; gin handlers run sequentially for one request.
type SessionState struct {
	id         string
	values     map[string]any
	isNew      bool
	destroyed  bool
	retiredIDs []string
	saved      bool

	issue  func(id string)
	revoke func()
}

func newSessionState(id string, values map[string]any, isNew bool, issue func(string), revoke func()) *SessionState {
	return &SessionState{
		id:     id,
		values: values,
		isNew:  isNew,
		issue:  issue,
		revoke: revoke,
	}
}

func (s *SessionState) ID() string { return s.id }

// IsNew reports whether the session was started by this request.
func (s *SessionState) IsNew() bool { return s.isNew }

func (s *SessionState) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *SessionState) Set(key string, value any) {
	s.values[key] = value
	s.saved = false
}

func (s *SessionState) Delete(key string) {
	delete(s.values, key)
	s.saved = false
}

// All returns a copy of the session values.
func (s *SessionState) All() map[string]any {
	return maps.Clone(s.values)
}

// Destroy removes the session from the store once the request completes and
// expires the cookie.
func (s *SessionState) Destroy() {
	s.destroyed = true
	s.values = make(map[string]any)
	s.saved = false
	s.revoke()
}

// Regenerate moves the values to a fresh session ID. When destroyOld is true
// the record under the previous ID is deleted from the store.
func (s *SessionState) Regenerate(destroyOld bool) error {
	id, err := crypto.GenerateSessionID()
	if err != nil {
		return err
	}
	if destroyOld && !s.isNew {
		s.retiredIDs = append(s.retiredIDs, s.id)
	}
	s.id = id
	s.isNew = false
	s.destroyed = false
	s.saved = false
	s.issue(id)
	return nil
}
