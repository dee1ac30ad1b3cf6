package admin

import (
	"context"
	"database/sql"
)

// Banner is the site-wide notice shown above the puzzle.
type Banner struct {
	Message string `json:"message"`
	Active  bool   `json:"active"`
}

// BannerStore persists the single banner row.
type BannerStore struct {
	db *sql.DB
}

func NewBannerStore(db *sql.DB) *BannerStore { return &BannerStore{db: db} }

func (s *BannerStore) Banner(ctx context.Context) (Banner, error) {
	var b Banner
	var active int
	err := s.db.QueryRowContext(ctx,
		`SELECT message, active FROM site_banner WHERE id = 1`).Scan(&b.Message, &active)
	if err == sql.ErrNoRows {
		return Banner{}, nil
	}
	if err != nil {
		return Banner{}, err
	}
	b.Active = active != 0
	return b, nil
}

func (s *BannerStore) SetBanner(ctx context.Context, b Banner) error {
	active := 0
	if b.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_banner (id, message, active) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET message = excluded.message, active = excluded.active`,
		b.Message, active)
	return err
}
