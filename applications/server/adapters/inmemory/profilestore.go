package inmemory

import (
	"context"
	"sync"

	"github.com/venturelink/fileserve/applications/server/domain"
)

// UserProfile mirrors the blob-reference field of a user document.
type UserProfile struct {
	ProfilePictureFileID string
}

// StartupProfile mirrors the blob-reference fields of a startup document.
type StartupProfile struct {
	LogoFileID      string
	PitchDeckFileID string
}

// InvestorProfile mirrors the blob-reference field of an investor document.
// Investors have no pitch-deck field.
type InvestorProfile struct {
	LogoFileID string
}

// ProfileStore keeps owner profile documents in memory. Patches fail with
// domain.ErrProfileNotFound for unseeded ids, matching the real store.
type ProfileStore struct {
	users     map[string]UserProfile
	startups  map[string]StartupProfile
	investors map[string]InvestorProfile
	mutex     sync.RWMutex
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		users:     map[string]UserProfile{},
		startups:  map[string]StartupProfile{},
		investors: map[string]InvestorProfile{},
	}
}

// AddUser seeds an empty user document.
func (s *ProfileStore) AddUser(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.users[id] = UserProfile{}
}

// AddStartup seeds an empty startup document.
func (s *ProfileStore) AddStartup(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.startups[id] = StartupProfile{}
}

// AddInvestor seeds an empty investor document.
func (s *ProfileStore) AddInvestor(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.investors[id] = InvestorProfile{}
}

func (s *ProfileStore) SetUserProfilePicture(ctx context.Context, userID, fileID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	u.ProfilePictureFileID = fileID
	s.users[userID] = u

	return nil
}

func (s *ProfileStore) SetStartupLogo(ctx context.Context, profileID, fileID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.startups[profileID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	p.LogoFileID = fileID
	s.startups[profileID] = p

	return nil
}

func (s *ProfileStore) SetStartupPitchDeck(ctx context.Context, profileID, fileID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.startups[profileID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	p.PitchDeckFileID = fileID
	s.startups[profileID] = p

	return nil
}

func (s *ProfileStore) SetInvestorLogo(ctx context.Context, profileID, fileID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p, ok := s.investors[profileID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	p.LogoFileID = fileID
	s.investors[profileID] = p

	return nil
}

// User returns the stored user document.
func (s *ProfileStore) User(id string) (UserProfile, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	u, ok := s.users[id]
	return u, ok
}

// Startup returns the stored startup document.
func (s *ProfileStore) Startup(id string) (StartupProfile, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.startups[id]
	return p, ok
}

// Investor returns the stored investor document.
func (s *ProfileStore) Investor(id string) (InvestorProfile, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p, ok := s.investors[id]
	return p, ok
}
