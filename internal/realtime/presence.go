package realtime

import "sync"

// Presence tracks which users currently hold an open socket connection.
// It is process-local and rebuilt from zero on restart; the durable
// companion fields (isOnline, lastSeen) live on the User row.
//
// Only the socket connect/disconnect handlers mutate it.
type Presence struct {
	mu    sync.RWMutex
	users map[string]string // userId -> socketId
}

func NewPresence() *Presence {
	return &Presence{users: make(map[string]string)}
}

// Set registers a user's connection, replacing any previous entry
// (reconnects overwrite the stale socket id).
func (p *Presence) Set(userID, socketID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[userID] = socketID
}

// Remove drops the entry for userID only if it still points at socketID.
// A stale disconnect arriving after a reconnect must not knock the fresh
// connection offline.
func (p *Presence) Remove(userID, socketID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if current, ok := p.users[userID]; ok && current == socketID {
		delete(p.users, userID)
		return true
	}
	return false
}

// RemoveBySocket finds and drops whichever user owns socketID.
func (p *Presence) RemoveBySocket(socketID string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for userID, sid := range p.users {
		if sid == socketID {
			delete(p.users, userID)
			return userID, true
		}
	}
	return "", false
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.users[userID]
	return ok
}

// OnlineIDs returns the ids of all currently connected users.
func (p *Presence) OnlineIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.users))
	for userID := range p.users {
		ids = append(ids, userID)
	}
	return ids
}

func (p *Presence) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}

// Clear empties the registry; used at shutdown and between tests.
func (p *Presence) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = make(map[string]string)
}
