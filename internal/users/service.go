package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/slotlist/slotlist/frontend/go-client/internal/models"
)

// Service encapsulates user-related business logic
type Service struct {
	repo UserRepository
}

func NewService(r UserRepository) *Service {
	return &Service{repo: r}
}

// UpsertFromSteam creates the user for steamID on first login and refreshes
// the nickname on later ones. A blank nickname keeps the stored one; new users
// without one are named after the tail of their SteamID.
func (s *Service) UpsertFromSteam(ctx context.Context, steamID, nickname string) (*models.User, error) {
	steamID = strings.TrimSpace(steamID)
	if steamID == "" {
		return nil, errors.New("steam id is required")
	}
	u, err := s.repo.UpsertBySteamID(ctx, &models.User{SteamID: steamID, Nickname: strings.TrimSpace(nickname)})
	if err != nil || u.Nickname != "" {
		return u, err
	}
	u.Nickname = defaultNickname(steamID)
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func defaultNickname(steamID string) string {
	if len(steamID) > 4 {
		steamID = steamID[len(steamID)-4:]
	}
	return "Player " + steamID
}

func (s *Service) Get(ctx context.Context, uid string) (*models.User, error) {
	return s.repo.GetByUID(ctx, uid)
}

// UpdateNickname sets a new nickname; blank names are rejected.
func (s *Service) UpdateNickname(ctx context.Context, uid, nickname string) (*models.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, errors.New("nickname must not be empty")
	}
	u, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	u.Nickname = nickname
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	return s.repo.GetByUID(ctx, uid)
}

// Grant adds permission to the user unless already present.
func (s *Service) Grant(ctx context.Context, uid, permission string) error {
	u, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	for _, p := range u.Permissions {
		if p.Permission == permission {
			return nil
		}
	}
	u.Permissions = append(u.Permissions, models.Permission{Permission: permission, CreatedAt: time.Now().UTC()})
	return s.repo.Save(ctx, u)
}

// Revoke removes permission from the user; unknown permissions are ignored.
func (s *Service) Revoke(ctx context.Context, uid, permission string) error {
	u, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	kept := u.Permissions[:0]
	for _, p := range u.Permissions {
		if p.Permission != permission {
			kept = append(kept, p)
		}
	}
	u.Permissions = kept
	return s.repo.Save(ctx, u)
}

// AddMission records a mission on the user's account listing.
func (s *Service) AddMission(ctx context.Context, uid string, m models.MissionRef) error {
	u, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	u.Missions = append(u.Missions, m)
	return s.repo.Save(ctx, u)
}
