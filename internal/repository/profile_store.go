package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Profile is an account record keyed by email: the display name resolved for
// workspace members plus the credential hash for password auth.
type Profile struct {
	Email        string
	Name         string
	Avatar       string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileStore persists profiles. Emails are matched case-insensitively.
type ProfileStore interface {
	Get(ctx context.Context, email string) (*Profile, error)
	Create(ctx context.Context, profile *Profile) error
	SetName(ctx context.Context, email, name string) error
}

type postgresProfileStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProfileStore returns a Postgres-backed implementation.
func NewPostgresProfileStore(pool *pgxpool.Pool) ProfileStore {
	return &postgresProfileStore{pool: pool}
}

func (r *postgresProfileStore) Get(ctx context.Context, email string) (*Profile, error) {
	const query = `
        SELECT email, name, avatar, password_hash, created_at, updated_at
        FROM profiles WHERE email=$1`
	var profile Profile
	if err := r.pool.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&profile.Email,
		&profile.Name,
		&profile.Avatar,
		&profile.PasswordHash,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *postgresProfileStore) Create(ctx context.Context, profile *Profile) error {
	const query = `
        INSERT INTO profiles (email, name, avatar, password_hash)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at, updated_at`
	profile.Email = strings.ToLower(profile.Email)
	return r.pool.QueryRow(ctx, query,
		profile.Email,
		profile.Name,
		profile.Avatar,
		profile.PasswordHash,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *postgresProfileStore) SetName(ctx context.Context, email, name string) error {
	const query = `UPDATE profiles SET name=$1, updated_at=NOW() WHERE email=$2`
	cmd, err := r.pool.Exec(ctx, query, name, strings.ToLower(email))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type memoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewMemoryProfileStore returns an in-process implementation for local mode.
func NewMemoryProfileStore() ProfileStore {
	return &memoryProfileStore{profiles: make(map[string]*Profile)}
}

func (r *memoryProfileStore) Get(_ context.Context, email string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *memoryProfileStore) Create(_ context.Context, profile *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.Email = strings.ToLower(profile.Email)
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	copied := *profile
	r.profiles[profile.Email] = &copied
	return nil
}

func (r *memoryProfileStore) SetName(_ context.Context, email, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[strings.ToLower(email)]
	if !ok {
		return ErrNotFound
	}
	profile.Name = name
	profile.UpdatedAt = time.Now()
	return nil
}
