package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/voyagen/popcornplayer/internal/models"
)

// Postgres implements Store using PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

var channelColumns = []string{"id", "playlist_id", "position", "name", "url", "logo", "category", "media_type", "favorite"}

// SavePlaylist upserts the playlist row and swaps its channels in one transaction.
func (p *Postgres) SavePlaylist(ctx context.Context, pl *models.Playlist) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("SavePlaylist: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO playlists (id, name, url, source_type, media_type, last_updated, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, url = EXCLUDED.url, source_type = EXCLUDED.source_type,
		   media_type = EXCLUDED.media_type, last_updated = EXCLUDED.last_updated`,
		pl.ID, pl.Name, pl.URL, pl.SourceType, pl.MediaType, pl.LastUpdated, pl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("SavePlaylist: upsert playlist: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM channels WHERE playlist_id = $1`, pl.ID); err != nil {
		return fmt.Errorf("SavePlaylist: delete channels: %w", err)
	}

	rows := make([][]any, len(pl.Channels))
	for i, ch := range pl.Channels {
		rows[i] = []any{ch.ID, pl.ID, i, ch.Name, ch.URL, ch.Logo, ch.Category, ch.MediaType, ch.Favorite}
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"channels"}, channelColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("SavePlaylist: copy channels: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("SavePlaylist: commit: %w", err)
	}
	return nil
}

const selectChannel = `SELECT id, playlist_id, name, url, logo, category, media_type, favorite FROM channels`

func scanChannel(row pgx.Row) (models.Channel, error) {
	var ch models.Channel
	err := row.Scan(&ch.ID, &ch.PlaylistID, &ch.Name, &ch.URL, &ch.Logo, &ch.Category, &ch.MediaType, &ch.Favorite)
	return ch, err
}

// GetPlaylist returns a playlist with its channels in import order.
func (p *Postgres) GetPlaylist(ctx context.Context, id string) (*models.Playlist, error) {
	var pl models.Playlist
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, url, source_type, media_type, last_updated, created_at FROM playlists WHERE id = $1`, id,
	).Scan(&pl.ID, &pl.Name, &pl.URL, &pl.SourceType, &pl.MediaType, &pl.LastUpdated, &pl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetPlaylist: %w", err)
	}

	rows, err := p.pool.Query(ctx, selectChannel+` WHERE playlist_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("GetPlaylist: channels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("GetPlaylist: scan: %w", err)
		}
		pl.Channels = append(pl.Channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetPlaylist: rows: %w", err)
	}
	return &pl, nil
}

// ListPlaylists returns all playlists with channel counts, oldest first.
func (p *Postgres) ListPlaylists(ctx context.Context) ([]models.Summary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT p.id, p.name, p.url, p.source_type, p.media_type, p.last_updated, p.created_at,
		        (SELECT COUNT(*) FROM channels c WHERE c.playlist_id = p.id)
		 FROM playlists p ORDER BY p.created_at, p.id`)
	if err != nil {
		return nil, fmt.Errorf("ListPlaylists: %w", err)
	}
	defer rows.Close()
	var out []models.Summary
	for rows.Next() {
		var s models.Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.URL, &s.SourceType, &s.MediaType, &s.LastUpdated, &s.CreatedAt, &s.ChannelCount); err != nil {
			return nil, fmt.Errorf("ListPlaylists: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeletePlaylist deletes a playlist; channels go with it via ON DELETE CASCADE.
func (p *Postgres) DeletePlaylist(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("DeletePlaylist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetChannel returns a single channel by id.
func (p *Postgres) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	ch, err := scanChannel(p.pool.QueryRow(ctx, selectChannel+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetChannel: %w", err)
	}
	return &ch, nil
}

// ListChannels returns a page of channels matching filter and the total match count.
func (p *Postgres) ListChannels(ctx context.Context, filter ChannelFilter) ([]models.Channel, int, error) {
	filter = filter.Normalize()
	clause, args := channelWhere(filter)

	var total int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM channels`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListChannels: count: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	q := fmt.Sprintf("%s%s ORDER BY playlist_id, position LIMIT $%d OFFSET $%d", selectChannel, clause, len(args)-1, len(args))
	rows, err := p.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListChannels: %w", err)
	}
	defer rows.Close()
	var out []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ListChannels: scan: %w", err)
		}
		out = append(out, ch)
	}
	return out, total, rows.Err()
}

// channelWhere builds the WHERE clause for filter with numbered placeholders.
// Search is a case-insensitive substring match with no wildcard characters.
func channelWhere(filter ChannelFilter) (string, []any) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.PlaylistID != "" {
		add("playlist_id = $%d", filter.PlaylistID)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.MediaType != nil {
		add("media_type = $%d", *filter.MediaType)
	}
	if filter.Favorite != nil {
		add("favorite = $%d", *filter.Favorite)
	}
	if filter.Search != "" {
		add("strpos(lower(name), lower($%d)) > 0", filter.Search)
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListCategories returns distinct categories with counts.
func (p *Postgres) ListCategories(ctx context.Context, playlistID string) ([]models.Category, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM channels
		 WHERE ($1 = '' OR playlist_id = $1)
		 GROUP BY category ORDER BY category`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: %w", err)
	}
	defer rows.Close()
	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.Channels); err != nil {
			return nil, fmt.Errorf("ListCategories: scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetChannelFavorite sets the favorite flag on a channel.
func (p *Postgres) SetChannelFavorite(ctx context.Context, id string, favorite bool) error {
	tag, err := p.pool.Exec(ctx, `UPDATE channels SET favorite = $2 WHERE id = $1`, id, favorite)
	if err != nil {
		return fmt.Errorf("SetChannelFavorite: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
