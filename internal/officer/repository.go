package officer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"securecheck/internal/metrics"

	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

var ErrOfficerNotFound = errors.New("officer not found")

type Repository interface {
	GetByUsername(ctx context.Context, username string) (*Officer, error)
	GetByID(ctx context.Context, id string) (*Officer, error)
	Seed(ctx context.Context, seeds []Seed) (int, error)
}

type repository struct {
	db      bun.IDB
	metrics *metrics.Metrics
}

func NewRepository(db bun.IDB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*Officer, error) {
	start := time.Now()
	o := new(Officer)
	err := r.db.NewSelect().
		Model(o).
		Where("username = ?", username).
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "officers", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfficerNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Officer, error) {
	start := time.Now()
	o := new(Officer)
	err := r.db.NewSelect().Model(o).Where("officer_id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "officers", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfficerNotFound
		}
		return nil, err
	}
	return o, nil
}

// Seed inserts the given officers with bcrypt-hashed passwords. Officers whose
// username already exists are left untouched. Returns the number inserted.
func (r *repository) Seed(ctx context.Context, seeds []Seed) (int, error) {
	officers := make([]Officer, 0, len(seeds))
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			return 0, fmt.Errorf("hash password for %s: %w", s.Username, err)
		}
		officers = append(officers, Officer{
			ID:       s.ID,
			Name:     s.Name,
			Username: s.Username,
			Password: string(hash),
			Role:     s.Role,
		})
	}
	if len(officers) == 0 {
		return 0, nil
	}

	start := time.Now()
	res, err := r.db.NewInsert().
		Model(&officers).
		On("CONFLICT (username) DO NOTHING").
		Returning("NULL").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "officers", time.Since(start), err)

	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
