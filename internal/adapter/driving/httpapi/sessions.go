package httpapi

import (
	"sync"

	"github.com/google/uuid"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/chat"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// session é o histórico de um usuário. mu serializa os turnos da sessão.
type session struct {
	mu      sync.Mutex
	history *chat.History
}

// SessionStore guarda as sessões de chat em memória, indexadas por UUID.
// Nada é persistido: reiniciar o servidor encerra todas as sessões.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewSessionStore cria um store vazio.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]*session{}}
}

// Create abre uma sessão e retorna seu id.
func (s *SessionStore) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{history: chat.NewHistory()}
	s.mu.Unlock()
	return id
}

func (s *SessionStore) get(id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, types.ErrSessionNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	return sess, nil
}

// Delete encerra a sessão e descarta o histórico.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return types.ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.history.Clear()
	sess.mu.Unlock()
	return nil
}

// Len returns the number of open sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
