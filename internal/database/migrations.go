package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
    id                   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username             TEXT NOT NULL UNIQUE,
    nickname             TEXT NOT NULL UNIQUE,
    email                TEXT NOT NULL DEFAULT '',
    password_hash        TEXT NOT NULL,
    is_staff             BOOLEAN NOT NULL DEFAULT FALSE,
    is_superuser         BOOLEAN NOT NULL DEFAULT FALSE,
    bio                  TEXT NOT NULL DEFAULT '',
    profile_image        TEXT,
    profile_emoji        TEXT NOT NULL DEFAULT '',
    special_title        TEXT NOT NULL DEFAULT '',
    selected_title       TEXT NOT NULL DEFAULT '',
    badge_style          TEXT NOT NULL DEFAULT 'default',
    nickname_color       TEXT NOT NULL DEFAULT '',
    title_color          TEXT NOT NULL DEFAULT '',
    title_bg_color       TEXT NOT NULL DEFAULT '',
    nickname_bg_color    TEXT NOT NULL DEFAULT '',
    exclusive_perks      TEXT[] NOT NULL DEFAULT '{}',
    total_posts          INTEGER NOT NULL DEFAULT 0,
    total_likes_received INTEGER NOT NULL DEFAULT 0,
    total_valid_received INTEGER NOT NULL DEFAULT 0,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted_at           TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS sessions (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token      TEXT NOT NULL UNIQUE,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS site_settings (
    id                       INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    daily_upload_limit       INTEGER NOT NULL DEFAULT 3,
    ranker_limit_exempt_rank INTEGER NOT NULL DEFAULT 10,
    updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
INSERT INTO site_settings (id) VALUES (1) ON CONFLICT DO NOTHING;

CREATE TABLE IF NOT EXISTS coordinates (
    id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    author_id         UUID REFERENCES users(id) ON DELETE SET NULL,
    guest_nickname    TEXT NOT NULL DEFAULT '',
    guest_password    TEXT NOT NULL DEFAULT '',
    title             TEXT NOT NULL,
    postcard_name     TEXT NOT NULL DEFAULT '',
    description       TEXT NOT NULL DEFAULT '',
    latitude          DOUBLE PRECISION NOT NULL,
    longitude         DOUBLE PRECISION NOT NULL,
    category          TEXT NOT NULL DEFAULT 'OTHER',
    status            TEXT NOT NULL DEFAULT 'PENDING',
    region            TEXT NOT NULL DEFAULT 'OTHER',
    watermark_enabled BOOLEAN NOT NULL DEFAULT FALSE,
    watermark_name    TEXT NOT NULL DEFAULT '',
    like_count        INTEGER NOT NULL DEFAULT 0,
    view_count        INTEGER NOT NULL DEFAULT 0,
    bookmark_count    INTEGER NOT NULL DEFAULT 0,
    comment_count     INTEGER NOT NULL DEFAULT 0,
    valid_count       INTEGER NOT NULL DEFAULT 0,
    invalid_count     INTEGER NOT NULL DEFAULT 0,
    copy_count        INTEGER NOT NULL DEFAULT 0,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    approved_at       TIMESTAMPTZ,
    last_verified_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_coordinates_author_status ON coordinates(author_id, status);
CREATE INDEX IF NOT EXISTS idx_coordinates_status_created ON coordinates(status, created_at DESC);

CREATE TABLE IF NOT EXISTS coordinate_images (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    coordinate_id UUID NOT NULL REFERENCES coordinates(id) ON DELETE CASCADE,
    url           TEXT NOT NULL,
    public_id     TEXT NOT NULL DEFAULT '',
    position      INTEGER NOT NULL DEFAULT 0,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS likes (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    coordinate_id UUID NOT NULL REFERENCES coordinates(id) ON DELETE CASCADE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, coordinate_id)
);

CREATE TABLE IF NOT EXISTS bookmarks (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    coordinate_id UUID NOT NULL REFERENCES coordinates(id) ON DELETE CASCADE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, coordinate_id)
);

CREATE TABLE IF NOT EXISTS validity_feedback (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    coordinate_id UUID NOT NULL REFERENCES coordinates(id) ON DELETE CASCADE,
    feedback_type TEXT NOT NULL CHECK (feedback_type IN ('VALID', 'INVALID')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, coordinate_id)
);

CREATE TABLE IF NOT EXISTS farming_journals (
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    author_id      UUID REFERENCES users(id) ON DELETE SET NULL,
    guest_nickname TEXT NOT NULL DEFAULT '',
    guest_password TEXT NOT NULL DEFAULT '',
    title          TEXT NOT NULL,
    content        TEXT NOT NULL,
    image_url      TEXT NOT NULL DEFAULT '',
    like_count     INTEGER NOT NULL DEFAULT 0,
    view_count     INTEGER NOT NULL DEFAULT 0,
    comment_count  INTEGER NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS farming_journal_likes (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    journal_id UUID NOT NULL REFERENCES farming_journals(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, journal_id)
);

CREATE TABLE IF NOT EXISTS farming_requests (
    id                 UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    author_id          UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title              TEXT NOT NULL,
    description        TEXT NOT NULL DEFAULT '',
    target_flower      TEXT NOT NULL DEFAULT '',
    location           TEXT NOT NULL DEFAULT '',
    status             TEXT NOT NULL DEFAULT 'open',
    deadline           TIMESTAMPTZ,
    participants_count INTEGER NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS farming_participations (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    request_id UUID NOT NULL REFERENCES farming_requests(id) ON DELETE CASCADE,
    user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    message    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (request_id, user_id)
);

CREATE TABLE IF NOT EXISTS comments (
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    coordinate_id  UUID REFERENCES coordinates(id) ON DELETE CASCADE,
    journal_id     UUID REFERENCES farming_journals(id) ON DELETE CASCADE,
    parent_id      UUID REFERENCES comments(id) ON DELETE CASCADE,
    author_id      UUID REFERENCES users(id) ON DELETE SET NULL,
    guest_nickname TEXT NOT NULL DEFAULT '',
    guest_password TEXT NOT NULL DEFAULT '',
    content        TEXT NOT NULL,
    photo_url      TEXT NOT NULL DEFAULT '',
    like_count     INTEGER NOT NULL DEFAULT 0,
    is_deleted     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (coordinate_id IS NOT NULL OR journal_id IS NOT NULL)
);

CREATE TABLE IF NOT EXISTS comment_likes (
    id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    comment_id UUID NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, comment_id)
);

CREATE TABLE IF NOT EXISTS notifications (
    id                UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    recipient_id      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    actor_id          UUID REFERENCES users(id) ON DELETE SET NULL,
    notification_type TEXT NOT NULL,
    coordinate_id     UUID REFERENCES coordinates(id) ON DELETE CASCADE,
    message           TEXT NOT NULL DEFAULT '',
    is_read           BOOLEAN NOT NULL DEFAULT FALSE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, is_read);

CREATE TABLE IF NOT EXISTS reports (
    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    reporter_id   UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    coordinate_id UUID REFERENCES coordinates(id) ON DELETE CASCADE,
    comment_id    UUID REFERENCES comments(id) ON DELETE CASCADE,
    reason        TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'PENDING',
    admin_note    TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    resolved_at   TIMESTAMPTZ,
    resolved_by   UUID REFERENCES users(id) ON DELETE SET NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_reports_coordinate ON reports(reporter_id, coordinate_id) WHERE coordinate_id IS NOT NULL;
CREATE UNIQUE INDEX IF NOT EXISTS uq_reports_comment ON reports(reporter_id, comment_id) WHERE comment_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS suggestions (
    id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id        UUID REFERENCES users(id) ON DELETE SET NULL,
    guest_nickname TEXT NOT NULL DEFAULT '',
    guest_email    TEXT NOT NULL DEFAULT '',
    category       TEXT NOT NULL DEFAULT 'OTHER',
    title          TEXT NOT NULL,
    content        TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'PENDING',
    admin_note     TEXT NOT NULL DEFAULT '',
    admin_reply    TEXT NOT NULL DEFAULT '',
    replied_at     TIMESTAMPTZ,
    resolved_by    UUID REFERENCES users(id) ON DELETE SET NULL,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_suggestions_user ON suggestions(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS site_notices (
    location   TEXT PRIMARY KEY CHECK (location IN ('coordinates_list', 'landing', 'farming_list')),
    title      TEXT NOT NULL DEFAULT '',
    content    TEXT NOT NULL,
    update_log TEXT NOT NULL DEFAULT '',
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS content_translations (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    content_type    TEXT NOT NULL,
    object_id       UUID NOT NULL,
    field_name      TEXT NOT NULL,
    source_language TEXT NOT NULL,
    target_language TEXT NOT NULL,
    translated_text TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (content_type, object_id, field_name, target_language)
);

CREATE TABLE IF NOT EXISTS user_bans (
    id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id     UUID REFERENCES users(id) ON DELETE CASCADE,
    ip_address  TEXT NOT NULL DEFAULT '',
    reason      TEXT NOT NULL DEFAULT '',
    duration    TEXT NOT NULL,
    expires_at  TIMESTAMPTZ,
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    banned_by   UUID REFERENCES users(id) ON DELETE SET NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    unbanned_at TIMESTAMPTZ,
    unbanned_by UUID REFERENCES users(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_user_bans_ip ON user_bans(ip_address) WHERE is_active;

CREATE TABLE IF NOT EXISTS rankings (
    id                           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    user_id                      UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    period_type                  TEXT NOT NULL CHECK (period_type IN ('ALL', 'WEEKLY', 'MONTHLY')),
    period_start                 DATE NOT NULL,
    approved_posts_count         INTEGER NOT NULL DEFAULT 0,
    likes_received_count         INTEGER NOT NULL DEFAULT 0,
    valid_received_count         INTEGER NOT NULL DEFAULT 0,
    invalid_received_count       INTEGER NOT NULL DEFAULT 0,
    farming_likes_received_count INTEGER NOT NULL DEFAULT 0,
    copy_received_count          INTEGER NOT NULL DEFAULT 0,
    score                        INTEGER NOT NULL DEFAULT 0,
    rank                         INTEGER NOT NULL DEFAULT 0,
    updated_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, period_type, period_start)
);
CREATE INDEX IF NOT EXISTS idx_rankings_period_rank ON rankings(period_type, period_start, rank);
CREATE INDEX IF NOT EXISTS idx_rankings_period_score ON rankings(period_type, period_start, score DESC);
`

// Migrate crée les tables manquantes (idempotent)
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
