package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"modernc.org/sqlite"

	"reelhouse/internal/core"
	"reelhouse/internal/models"
)

// foldFunc lowercases with Go's Unicode rules so sqlite search matches the memory store.
// SQLite's built-in lower() only folds ASCII.
const foldFunc = "reel_fold"

func init() {
	err := sqlite.RegisterDeterministicScalarFunction(foldFunc, 1, func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		case nil:
			return nil, nil
		default:
			return strings.ToLower(fmt.Sprint(v)), nil
		}
	})
	if err != nil {
		panic(fmt.Sprintf("store: register %s: %v", foldFunc, err))
	}
}

const videoColumns = `v.id, v.title, v.description, v.thumbnail_url, v.video_url, v.duration, v.views,
	v.uploaded_at, v.category_id, v.uploaded_by, v.is_popular, v.likes, v.is_featured, v.type,
	(SELECT json_group_array(tag) FROM (SELECT t.tag FROM video_tags t WHERE t.video_id = v.id ORDER BY t.position))`

// SQLite is a Repository backed by a modernc sqlite database
type SQLite struct {
	db     *core.Database
	logger *core.Logger
	opts   options
}

// NewSQLite migrates db and returns a store over it
func NewSQLite(ctx context.Context, db *core.Database, logger *core.Logger, opts ...Option) (*SQLite, error) {
	migrator := core.NewMigrationService(db, logger, "catalog")
	if err := migrator.Migrate(ctx, Migrations()); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog store: %w", err)
	}
	logger.Info("Catalog store ready", "driver", core.DriverSQLite)
	return &SQLite{db: db, logger: logger, opts: buildOptions(opts)}, nil
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	s.logger.Debug("Closing catalog store")
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (models.Video, error) {
	var (
		v          models.Video
		uploadedAt string
		tagsJSON   sql.NullString
	)
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.ThumbnailURL, &v.VideoURL, &v.Duration, &v.Views,
		&uploadedAt, &v.CategoryID, &v.UploadedBy, &v.IsPopular, &v.Likes, &v.IsFeatured, &v.Type, &tagsJSON)
	if err != nil {
		return models.Video{}, err
	}

	if v.UploadedAt, err = time.Parse(time.RFC3339Nano, uploadedAt); err != nil {
		return models.Video{}, fmt.Errorf("failed to parse uploaded_at of video %d: %w", v.ID, err)
	}

	v.Tags = []string{}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &v.Tags); err != nil {
			return models.Video{}, fmt.Errorf("failed to decode tags of video %d: %w", v.ID, err)
		}
	}
	return v, nil
}

func (s *SQLite) queryVideos(ctx context.Context, where string, args ...any) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos v`
	if where != "" {
		query += ` WHERE ` + where
	}
	query += ` ORDER BY v.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func findVideoTx(ctx context.Context, tx *sql.Tx, id int64) (models.Video, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = ?`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Video{}, ErrNotFound
	}
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to load video %d: %w", id, err)
	}
	return v, nil
}

func (s *SQLite) ListVideos(ctx context.Context) ([]models.Video, error) {
	return s.queryVideos(ctx, "")
}

func (s *SQLite) ListVideosByCategory(ctx context.Context, categoryID int64) ([]models.Video, error) {
	return s.queryVideos(ctx, "v.category_id = ?", categoryID)
}

func (s *SQLite) ListVideosByType(ctx context.Context, videoType string) ([]models.Video, error) {
	return s.queryVideos(ctx, "v.type = ?", videoType)
}

func (s *SQLite) FindVideo(ctx context.Context, id int64) (models.Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = ?`, id)
	v, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Video{}, ErrNotFound
	}
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to load video %d: %w", id, err)
	}
	return v, nil
}

func (s *SQLite) SearchVideos(ctx context.Context, term string) ([]models.Video, error) {
	needle := strings.ToLower(term)
	where := `instr(` + foldFunc + `(v.title), ?) > 0
		OR instr(` + foldFunc + `(v.description), ?) > 0
		OR EXISTS (SELECT 1 FROM video_tags t WHERE t.video_id = v.id AND instr(` + foldFunc + `(t.tag), ?) > 0)`
	return s.queryVideos(ctx, where, needle, needle, needle)
}

func (s *SQLite) CreateVideo(ctx context.Context, in models.VideoCreate) (models.Video, error) {
	var created models.Video
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, in.CategoryID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidReference
		}
		if err != nil {
			return fmt.Errorf("failed to check category: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO videos (title, description, thumbnail_url, video_url, duration, views, uploaded_at,
				category_id, uploaded_by, is_popular, likes, is_featured, type)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?, ?, ?, 0, ?, ?)`,
			in.Title, in.Description, in.ThumbnailURL, in.VideoURL, durationOf(in),
			s.opts.now().UTC().Format(time.RFC3339Nano), in.CategoryID, in.UploadedBy,
			flag(in.IsPopular), flag(in.IsFeatured), resolveType(in, s.opts.defaultType))
		if err != nil {
			return fmt.Errorf("failed to insert video: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read video id: %w", err)
		}

		for i, tag := range in.Tags {
			if _, err := tx.ExecContext(ctx, `INSERT INTO video_tags (video_id, position, tag) VALUES (?, ?, ?)`, id, i, tag); err != nil {
				return fmt.Errorf("failed to insert tag: %w", err)
			}
		}

		created, err = findVideoTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Video{}, err
	}
	return created, nil
}

func (s *SQLite) DeleteVideo(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecWithTimeout(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete video %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *SQLite) RecordView(ctx context.Context, id int64) (models.Video, error) {
	var updated models.Video
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to record view: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}
		updated, err = findVideoTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Video{}, err
	}
	return updated, nil
}

func (s *SQLite) SetLiked(ctx context.Context, username string, videoID int64, liked bool) (bool, error) {
	ok := true
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var userID int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE username = ?`, username).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			ok = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		var exists int
		err = tx.QueryRowContext(ctx, `SELECT 1 FROM videos WHERE id = ?`, videoID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			ok = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load video: %w", err)
		}

		var res sql.Result
		if liked {
			res, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO video_likes (user_id, video_id, liked_at) VALUES (?, ?, ?)`,
				userID, videoID, s.opts.now().UTC().Format(time.RFC3339Nano))
		} else {
			res, err = tx.ExecContext(ctx, `DELETE FROM video_likes WHERE user_id = ? AND video_id = ?`, userID, videoID)
		}
		if err != nil {
			return fmt.Errorf("failed to update like: %w", err)
		}
		changed, err := res.RowsAffected()
		if err != nil || changed == 0 {
			return err
		}

		adjust := `UPDATE videos SET likes = likes + 1 WHERE id = ?`
		if !liked {
			adjust = `UPDATE videos SET likes = MAX(likes - 1, 0) WHERE id = ?`
		}
		if _, err := tx.ExecContext(ctx, adjust, videoID); err != nil {
			return fmt.Errorf("failed to adjust likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *SQLite) LikedVideoIDs(ctx context.Context, username string) ([]int64, error) {
	if _, err := s.FindUserByUsername(ctx, username); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT l.video_id FROM video_likes l
		JOIN users u ON u.id = l.user_id
		WHERE u.username = ?
		ORDER BY l.video_id`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query likes: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLite) SetFeatured(ctx context.Context, id int64, featured bool) (models.Video, error) {
	var updated models.Video
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE videos SET is_featured = ? WHERE id = ?`, featured, id)
		if err != nil {
			return fmt.Errorf("failed to set featured: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotFound
		}
		updated, err = findVideoTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Video{}, err
	}
	return updated, nil
}

func (s *SQLite) SetPopular(ctx context.Context, ids []int64) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE videos SET is_popular = 0`); err != nil {
			return fmt.Errorf("failed to clear popular flags: %w", err)
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE videos SET is_popular = 1 WHERE id = ?`, id); err != nil {
				return fmt.Errorf("failed to mark video %d popular: %w", id, err)
			}
		}
		return nil
	})
}

func (s *SQLite) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, icon, slug FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *SQLite) findCategory(ctx context.Context, where string, arg any) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, name, icon, slug FROM categories WHERE `+where, arg).
		Scan(&c.ID, &c.Name, &c.Icon, &c.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, ErrNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to load category: %w", err)
	}
	return c, nil
}

func (s *SQLite) FindCategoryByID(ctx context.Context, id int64) (models.Category, error) {
	return s.findCategory(ctx, "id = ?", id)
}

func (s *SQLite) FindCategoryBySlug(ctx context.Context, slug string) (models.Category, error) {
	return s.findCategory(ctx, "slug = ?", slug)
}

func (s *SQLite) CreateCategory(ctx context.Context, in models.CategoryCreate) (models.Category, error) {
	var created models.Category
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE slug = ?`, in.Slug).Scan(&exists)
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check slug: %w", err)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO categories (name, icon, slug) VALUES (?, ?, ?)`, in.Name, in.Icon, in.Slug)
		if err != nil {
			return fmt.Errorf("failed to insert category: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read category id: %w", err)
		}
		created = models.Category{ID: id, Name: in.Name, Icon: in.Icon, Slug: in.Slug}
		return nil
	})
	if err != nil {
		return models.Category{}, err
	}
	return created, nil
}

func (s *SQLite) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, username, password_hash, is_admin FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

func (s *SQLite) CreateUser(ctx context.Context, in models.UserCreate) (models.User, error) {
	var created models.User
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, in.Username).Scan(&exists)
		if err == nil {
			return ErrDuplicate
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check username: %w", err)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?)`,
			in.Username, in.PasswordHash, in.IsAdmin)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read user id: %w", err)
		}
		created = models.User{ID: id, Username: in.Username, PasswordHash: in.PasswordHash, IsAdmin: in.IsAdmin}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

var _ Repository = (*SQLite)(nil)
