package users

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/slotlist/slotlist/frontend/go-client/internal/models"
	"github.com/slotlist/slotlist/frontend/go-client/pkg/uid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no user matches.
var ErrNotFound = errors.New("user not found")

// UserRepository defines persistence operations for users
type UserRepository interface {
	UpsertBySteamID(ctx context.Context, u *models.User) (*models.User, error)
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	Save(ctx context.Context, u *models.User) error
}

// MemoryUserRepository keeps users in memory; the mock backend default.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byUID   map[string]*models.User
	bySteam map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{byUID: map[string]*models.User{}, bySteam: map[string]string{}}
}

func copyUser(u *models.User) *models.User {
	out := *u
	out.Missions = append([]models.MissionRef{}, u.Missions...)
	out.Permissions = append([]models.Permission{}, u.Permissions...)
	return &out
}

func (r *MemoryUserRepository) UpsertBySteamID(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if uid, ok := r.bySteam[u.SteamID]; ok {
		existing := r.byUID[uid]
		if u.Nickname != "" {
			existing.Nickname = u.Nickname
		}
		existing.UpdatedAt = now
		return copyUser(existing), nil
	}
	stored := copyUser(u)
	if stored.UID == "" {
		stored.UID = uid.New()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.byUID[stored.UID] = stored
	r.bySteam[stored.SteamID] = stored.UID
	return copyUser(stored), nil
}

func (r *MemoryUserRepository) GetByUID(_ context.Context, uid string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byUID[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryUserRepository) Save(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUID[u.UID]; !ok {
		return ErrNotFound
	}
	stored := copyUser(u)
	stored.UpdatedAt = time.Now().UTC()
	r.byUID[u.UID] = stored
	return nil
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) UpsertBySteamID(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}
	if u.Nickname != "" {
		set["nickname"] = u.Nickname
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"uid":         uid.New(),
			"createdAt":   now,
			"missions":    bson.A{},
			"permissions": bson.A{},
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"steamId": u.SteamID}, update, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoUserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"uid": uid}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) Save(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"uid": u.UID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
