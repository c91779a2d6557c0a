// Package session holds the per-owner transient state of the bot: the audio
// buffer waiting for a channel choice and the "next photo is a logo" flag.
// Process-lifetime only; nothing here survives a restart.
package session

import "sync"

// Upload is an audio file parked in memory until the owner picks a channel.
type Upload struct {
	Data     []byte
	Title    string
	FileName string
}

type Sessions struct {
	mu           sync.Mutex
	pending      map[int64]Upload
	awaitingLogo map[int64]int64 // owner -> channel record id
}

func New() *Sessions {
	return &Sessions{
		pending:      make(map[int64]Upload),
		awaitingLogo: make(map[int64]int64),
	}
}

// PutUpload parks an upload for the owner. A second upload from the same
// owner overwrites the first; last write wins.
func (s *Sessions) PutUpload(owner int64, u Upload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[owner] = u
}

// TakeUpload removes and returns the owner's parked upload. An upload is
// consumed at most once.
func (s *Sessions) TakeUpload(owner int64) (Upload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.pending[owner]
	if ok {
		delete(s.pending, owner)
	}
	return u, ok
}

// ArmLogo marks that the owner's next photo should become the logo of the
// given channel record.
func (s *Sessions) ArmLogo(owner, channelID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingLogo[owner] = channelID
}

// TakeLogoTarget disarms and returns the channel record armed by ArmLogo.
func (s *Sessions) TakeLogoTarget(owner int64) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.awaitingLogo[owner]
	if ok {
		delete(s.awaitingLogo, owner)
	}
	return id, ok
}
