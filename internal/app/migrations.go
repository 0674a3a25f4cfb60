package app

import "healthrocket.app/rocket-bot/internal/db/postgres"

// SQL-миграции встроены в код для упрощения деплоя.
// Номера не меняются: применённая версия больше не выполняется.
var migrations = []postgres.Migration{
	{Version: 1, SQL: migration001Members},
	{Version: 2, SQL: migration002Economy},
	{Version: 3, SQL: migration003Boosts},
	{Version: 4, SQL: migration004Streaks},
	{Version: 5, SQL: migration005Admin},
}

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    user_id BIGINT PRIMARY KEY,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL DEFAULT '',
    last_name VARCHAR(255),
    plan VARCHAR(16) NOT NULL DEFAULT 'free',
    is_banned BOOLEAN NOT NULL DEFAULT FALSE,
    joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(LOWER(username));
`

var migration002Economy = `
CREATE TABLE IF NOT EXISTS balances (
    user_id BIGINT PRIMARY KEY,
    balance BIGINT NOT NULL DEFAULT 0,
    total_earned BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS transactions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    amount BIGINT NOT NULL,
    transaction_type VARCHAR(50) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions(user_id, created_at DESC);
`

var migration003Boosts = `
CREATE TABLE IF NOT EXISTS completed_boosts (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    boost_id VARCHAR(32) NOT NULL,
    category VARCHAR(32) NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL,
    completed_date DATE NOT NULL,
    points_earned INTEGER NOT NULL,
    UNIQUE (user_id, boost_id, completed_date)
);
CREATE INDEX IF NOT EXISTS idx_completed_boosts_user_date ON completed_boosts(user_id, completed_date);
`

var migration004Streaks = `
CREATE TABLE IF NOT EXISTS streak_reminders (
    user_id BIGINT NOT NULL,
    sent_on DATE NOT NULL,
    PRIMARY KEY (user_id, sent_on)
);
`

var migration005Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL,
    attempt_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    success BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_user_time ON admin_login_attempts(user_id, attempt_time);
`
