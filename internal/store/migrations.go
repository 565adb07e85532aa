package store

import (
	"reelhouse/internal/core"
)

// catalogMigrations is the sqlite schema of the catalog, applied in the "catalog" scope.
var catalogMigrations = []core.Migration{
	{
		Version:     1,
		Name:        "create_catalog_tables",
		Description: "Create categories, users, videos and video_tags tables",
		UpSQL: `
		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			icon TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash BLOB NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS videos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL,
			video_url TEXT NOT NULL,
			duration INTEGER NOT NULL DEFAULT 0 CHECK (duration >= 0),
			views INTEGER NOT NULL DEFAULT 0 CHECK (views >= 0),
			uploaded_at TEXT NOT NULL,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			uploaded_by TEXT NOT NULL DEFAULT '',
			is_popular BOOLEAN NOT NULL DEFAULT 0,
			likes INTEGER NOT NULL DEFAULT 0 CHECK (likes >= 0),
			is_featured BOOLEAN NOT NULL DEFAULT 0,
			type TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS video_tags (
			video_id INTEGER NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			tag TEXT NOT NULL,
			PRIMARY KEY (video_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_videos_category_id ON videos(category_id);
		CREATE INDEX IF NOT EXISTS idx_videos_type ON videos(type);
		`,
		DownSQL: `
		DROP INDEX IF EXISTS idx_videos_type;
		DROP INDEX IF EXISTS idx_videos_category_id;
		DROP TABLE IF EXISTS video_tags;
		DROP TABLE IF EXISTS videos;
		DROP TABLE IF EXISTS users;
		DROP TABLE IF EXISTS categories;
		`,
	},
	{
		Version:     2,
		Name:        "create_video_likes",
		Description: "Create the user-video like relation",
		UpSQL: `
		CREATE TABLE IF NOT EXISTS video_likes (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			video_id INTEGER NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
			liked_at TEXT NOT NULL,
			PRIMARY KEY (user_id, video_id)
		);

		CREATE INDEX IF NOT EXISTS idx_video_likes_video_id ON video_likes(video_id);
		`,
		DownSQL: `
		DROP INDEX IF EXISTS idx_video_likes_video_id;
		DROP TABLE IF EXISTS video_likes;
		`,
	},
}

// Migrations returns the catalog schema migrations
func Migrations() []core.Migration {
	out := make([]core.Migration, len(catalogMigrations))
	copy(out, catalogMigrations)
	return out
}
