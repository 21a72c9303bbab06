package repository

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/slotlist/slotlist/frontend/go-client/internal/communities"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/uid"
)

var (
	ErrNotFound           = errors.New("community not found")
	ErrSlugTaken          = errors.New("community slug already taken")
	ErrApplicationExists  = errors.New("application already submitted")
	ErrAlreadyMember      = errors.New("user is already a member")
	ErrApplicationMissing = errors.New("application not found")
	ErrMemberMissing      = errors.New("member not found")
)

type entry struct {
	community    *communities.Community
	applications []*communities.Application
	missions     []*communities.Mission
}

// MemoryRepo keeps communities, their applications and missions in memory.
// Returned values are copies.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*entry)}
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clone(c *communities.Community) *communities.Community {
	out := *c
	out.Leaders = append([]communities.Member{}, c.Leaders...)
	out.Members = append([]communities.Member{}, c.Members...)
	return &out
}

// Create stores c with creator as its first leader.
func (m *MemoryRepo) Create(c *communities.Community, creator communities.Member) (*communities.Community, error) {
	slug := normalizeSlug(c.Slug)
	if slug == "" {
		return nil, errors.New("slug is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[slug]; ok {
		return nil, ErrSlugTaken
	}
	now := time.Now().UTC()
	stored := clone(c)
	stored.Slug = slug
	if stored.UID == "" {
		stored.UID = uid.New()
	}
	stored.Leaders = []communities.Member{creator}
	stored.Members = []communities.Member{}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.store[slug] = &entry{community: stored}
	return clone(stored), nil
}

func (m *MemoryRepo) Get(slug string) (*communities.Community, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(e.community), nil
}

func (m *MemoryRepo) SlugAvailable(slug string) bool {
	slug = normalizeSlug(slug)
	if slug == "" {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, taken := m.store[slug]
	return !taken
}

// List returns a window of communities ordered by name, filtered by a
// case-insensitive search over name, tag and slug, plus the filtered total.
func (m *MemoryRepo) List(search string, limit, offset int) ([]*communities.Community, int) {
	search = strings.ToLower(strings.TrimSpace(search))
	m.mu.RLock()
	all := make([]*communities.Community, 0, len(m.store))
	for _, e := range m.store {
		c := e.community
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Tag), search) &&
			!strings.Contains(c.Slug, search) {
			continue
		}
		all = append(all, clone(c))
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name == all[j].Name {
			return all[i].Slug < all[j].Slug
		}
		return all[i].Name < all[j].Name
	})
	return window(all, limit, offset), len(all)
}

func (m *MemoryRepo) Update(slug string, p communities.Patch) (*communities.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		return nil, ErrNotFound
	}
	c := e.community
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Tag != nil {
		c.Tag = *p.Tag
	}
	if p.Website != nil {
		c.Website = *p.Website
	}
	c.UpdatedAt = time.Now().UTC()
	return clone(c), nil
}

func (m *MemoryRepo) Delete(slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slug = normalizeSlug(slug)
	if _, ok := m.store[slug]; !ok {
		return ErrNotFound
	}
	delete(m.store, slug)
	return nil
}

func isIn(list []communities.Member, memberUID string) bool {
	for _, x := range list {
		if x.UID == memberUID {
			return true
		}
	}
	return false
}

// Apply files a submitted application for user.
func (m *MemoryRepo) Apply(slug string, user communities.Member) (*communities.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		return nil, ErrNotFound
	}
	if isIn(e.community.Members, user.UID) || isIn(e.community.Leaders, user.UID) {
		return nil, ErrAlreadyMember
	}
	for _, a := range e.applications {
		if a.User.UID == user.UID && a.Status == communities.StatusSubmitted {
			return nil, ErrApplicationExists
		}
	}
	now := time.Now().UTC()
	a := &communities.Application{
		UID:       uid.New(),
		Community: e.community.Slug,
		User:      user,
		Status:    communities.StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	e.applications = append(e.applications, a)
	out := *a
	return &out, nil
}

func (m *MemoryRepo) Applications(slug string, limit, offset int) ([]*communities.Application, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		return nil, 0, ErrNotFound
	}
	all := make([]*communities.Application, 0, len(e.applications))
	for _, a := range e.applications {
		cp := *a
		all = append(all, &cp)
	}
	return window(all, limit, offset), len(all), nil
}

// ProcessApplication sets the status of a submitted application. Accepting
// adds the applicant to the members.
func (m *MemoryRepo) ProcessApplication(slug, applicationUID string, accepted bool) (*communities.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		return nil, ErrNotFound
	}
	for _, a := range e.applications {
		if a.UID != applicationUID {
			continue
		}
		if a.Status != communities.StatusSubmitted {
			return nil, ErrApplicationMissing
		}
		a.Status = communities.StatusDenied
		if accepted {
			a.Status = communities.StatusAccepted
			if !isIn(e.community.Members, a.User.UID) {
				e.community.Members = append(e.community.Members, a.User)
			}
		}
		a.UpdatedAt = time.Now().UTC()
		out := *a
		return &out, nil
	}
	return nil, ErrApplicationMissing
}

func (m *MemoryRepo) RemoveMember(slug, memberUID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		return ErrNotFound
	}
	for i, mem := range e.community.Members {
		if mem.UID == memberUID {
			e.community.Members = append(e.community.Members[:i], e.community.Members[i+1:]...)
			return nil
		}
	}
	return ErrMemberMissing
}

func (m *MemoryRepo) AddMission(slug string, mission communities.Mission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		return ErrNotFound
	}
	e.missions = append(e.missions, &mission)
	return nil
}

// Missions returns a window of the community's missions, newest first.
func (m *MemoryRepo) Missions(slug string, limit, offset int) ([]*communities.Mission, int, error) {
	m.mu.RLock()
	e, ok := m.store[normalizeSlug(slug)]
	if !ok {
		m.mu.RUnlock()
		return nil, 0, ErrNotFound
	}
	all := make([]*communities.Mission, 0, len(e.missions))
	for _, ms := range e.missions {
		cp := *ms
		all = append(all, &cp)
	}
	m.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })
	return window(all, limit, offset), len(all), nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
