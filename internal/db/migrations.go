package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_role') THEN
			CREATE TYPE user_role AS ENUM ('ADMIN', 'COLLECTOR', 'USER');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'user_status') THEN
			CREATE TYPE user_status AS ENUM ('ACTIVE', 'SUSPENDED', 'PENDING');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'bin_type') THEN
			CREATE TYPE bin_type AS ENUM ('GENERAL_WASTE', 'RECYCLABLE', 'ORGANIC', 'HAZARDOUS');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'bin_status') THEN
			CREATE TYPE bin_status AS ENUM ('ACTIVE', 'FULL', 'MAINTENANCE', 'INACTIVE');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'route_status') THEN
			CREATE TYPE route_status AS ENUM ('SCHEDULED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'route_bin_status') THEN
			CREATE TYPE route_bin_status AS ENUM ('PENDING', 'COLLECTED', 'SKIPPED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		full_name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(32),
		password_hash VARCHAR(255) NOT NULL,
		role user_role NOT NULL DEFAULT 'USER',
		status user_status NOT NULL DEFAULT 'ACTIVE',
		credit_points INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_users_role ON users (role);`,
	`CREATE INDEX IF NOT EXISTS idx_users_status ON users (status);`,
	`CREATE TABLE IF NOT EXISTS bins (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		address TEXT NOT NULL,
		type bin_type NOT NULL,
		capacity_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		fill_level INTEGER NOT NULL DEFAULT 0 CHECK (fill_level BETWEEN 0 AND 100),
		status bin_status NOT NULL DEFAULT 'ACTIVE',
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_bins_status ON bins (status);`,
	`CREATE INDEX IF NOT EXISTS idx_bins_fill_level ON bins (fill_level);`,
	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL UNIQUE,
		scheduled_date DATE NOT NULL,
		scheduled_time VARCHAR(8) NOT NULL,
		assigned_to UUID REFERENCES users(id) ON DELETE SET NULL,
		status route_status NOT NULL DEFAULT 'SCHEDULED',
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_status ON routes (status);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_assigned_to ON routes (assigned_to);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_scheduled_date ON routes (scheduled_date);`,
	`CREATE TABLE IF NOT EXISTS route_bins (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		route_id UUID NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		bin_id UUID NOT NULL REFERENCES bins(id) ON DELETE CASCADE,
		sequence INTEGER NOT NULL,
		status route_bin_status NOT NULL DEFAULT 'PENDING',
		collected_at TIMESTAMPTZ,
		skip_reason TEXT,
		notes TEXT,
		photo_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (route_id, bin_id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_route_bins_route_id ON route_bins (route_id);`,
	`CREATE INDEX IF NOT EXISTS idx_route_bins_status ON route_bins (status);`,
	`CREATE TABLE IF NOT EXISTS route_status_log (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		route_id UUID NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		old_status route_status,
		new_status route_status NOT NULL,
		note TEXT,
		changed_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_route_status_log_route_id ON route_status_log (route_id);`,
	`CREATE TABLE IF NOT EXISTS route_checklists (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		route_id UUID NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
		collector_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		items JSONB NOT NULL DEFAULT '[]',
		completed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_route_checklists_route_id ON route_checklists (route_id);`,
}

func runMigrations(database *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := database.Exec(stmt).Error; err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}
