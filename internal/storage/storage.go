package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// ScanStore keeps scan sessions in memory behind a RWMutex. Sessions do
// not survive a restart; the serve mode is an interactive tool, not a
// system of record.
type ScanStore struct {
	sessions map[string]*models.ScanSession
	mu       sync.RWMutex
}

func New() *ScanStore {
	return &ScanStore{
		sessions: make(map[string]*models.ScanSession),
	}
}

func (s *ScanStore) Get(sessionID string) (*models.ScanSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *ScanStore) Set(sessionID string, session *models.ScanSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = session
}

func (s *ScanStore) GetAll() map[string]*models.ScanSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*models.ScanSession, len(s.sessions))
	for k, v := range s.sessions {
		result[k] = v
	}
	return result
}

func (s *ScanStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
