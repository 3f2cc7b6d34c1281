package db

// Table catalogue. Columns listed under Columns were added after the first
// release and are brought in with ADD COLUMN IF NOT EXISTS.

var UsersTable = Table{
	Name: "users",
	Create: `CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		role VARCHAR(50) NOT NULL DEFAULT 'reader',
		password_hash VARCHAR(255),
		avatar VARCHAR(500) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Columns: []Column{
		{Name: "is_active", Definition: "BOOLEAN NOT NULL DEFAULT TRUE"},
	},
}

var EntitiesTable = Table{
	Name: "entities",
	Create: `CREATE TABLE IF NOT EXISTS entities (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(50) NOT NULL DEFAULT 'department',
		description TEXT NOT NULL DEFAULT '',
		parent_id BIGINT REFERENCES entities(id) ON DELETE SET NULL,
		manager_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Depends: []Table{UsersTable},
}

var ProcessesTable = Table{
	Name: "processes",
	Create: `CREATE TABLE IF NOT EXISTS processes (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category VARCHAR(100) NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'draft',
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Columns: []Column{
		{Name: "tags", Definition: "TEXT[] NOT NULL DEFAULT '{}'"},
		{Name: "entity_ids", Definition: "BIGINT[] NOT NULL DEFAULT '{}'"},
	},
	Indexes: []string{
		"CREATE INDEX IF NOT EXISTS processes_tags_idx ON processes USING GIN (tags)",
	},
	Depends: []Table{UsersTable, EntitiesTable},
}

var ProjectsTable = Table{
	Name: "projects",
	Create: `CREATE TABLE IF NOT EXISTS projects (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'planning',
		project_type VARCHAR(100) NOT NULL DEFAULT '',
		start_date DATE,
		end_date DATE,
		budget NUMERIC(15,2),
		manager_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Columns: []Column{
		{Name: "tags", Definition: "TEXT[] NOT NULL DEFAULT '{}'"},
	},
	Indexes: []string{
		"CREATE INDEX IF NOT EXISTS projects_tags_idx ON projects USING GIN (tags)",
	},
	Depends: []Table{UsersTable},
}

var ProjectEntitiesTable = Table{
	Name: "project_entities",
	Create: `CREATE TABLE IF NOT EXISTS project_entities (
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		entity_id BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		PRIMARY KEY (project_id, entity_id)
	)`,
	Depends: []Table{ProjectsTable, EntitiesTable},
}

var ProjectMembersTable = Table{
	Name: "project_members",
	Create: `CREATE TABLE IF NOT EXISTS project_members (
		project_id BIGINT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(50) NOT NULL DEFAULT 'member',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (project_id, user_id)
	)`,
	Depends: []Table{ProjectsTable, UsersTable},
}

var DocumentsTable = Table{
	Name: "documents",
	Create: `CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		process_id BIGINT REFERENCES processes(id) ON DELETE SET NULL,
		project_id BIGINT REFERENCES projects(id) ON DELETE SET NULL,
		link_type VARCHAR(20) NOT NULL DEFAULT 'process',
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Columns: []Column{
		{Name: "version_seq", Definition: "BIGINT NOT NULL DEFAULT 0"},
	},
	Depends: []Table{UsersTable, ProcessesTable, ProjectsTable},
}

var DocumentVersionsTable = Table{
	Name: "document_versions",
	Create: `CREATE TABLE IF NOT EXISTS document_versions (
		id BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		version VARCHAR(50) NOT NULL,
		url TEXT NOT NULL,
		content_type VARCHAR(255) NOT NULL DEFAULT '',
		size BIGINT NOT NULL DEFAULT 0,
		uploaded_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Columns: []Column{
		{Name: "seq", Definition: "BIGINT NOT NULL DEFAULT 0"},
		{Name: "ticket_id", Definition: "VARCHAR(64)"},
	},
	Indexes: []string{
		"CREATE INDEX IF NOT EXISTS document_versions_document_seq_idx ON document_versions (document_id, seq DESC)",
		"CREATE UNIQUE INDEX IF NOT EXISTS document_versions_ticket_id_key ON document_versions (ticket_id) WHERE ticket_id IS NOT NULL",
	},
	Depends: []Table{DocumentsTable},
}

var CategoriesTable = Table{
	Name: "categories",
	Create: `CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type VARCHAR(50) NOT NULL,
		color VARCHAR(7) NOT NULL DEFAULT '#3B82F6',
		is_system BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (name, type)
	)`,
}

var StatusesTable = Table{
	Name: "statuses",
	Create: `CREATE TABLE IF NOT EXISTS statuses (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type VARCHAR(50) NOT NULL,
		color VARCHAR(7) NOT NULL DEFAULT '#10B981',
		is_system BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (name, type)
	)`,
	Columns: []Column{
		{Name: `"order"`, Definition: "INTEGER NOT NULL DEFAULT 0"},
	},
}

var AccessLogsTable = Table{
	Name: "access_logs",
	Create: `CREATE TABLE IF NOT EXISTS access_logs (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT,
		user_name VARCHAR(255) NOT NULL DEFAULT '',
		action VARCHAR(100) NOT NULL,
		resource VARCHAR(100) NOT NULL,
		resource_id VARCHAR(100) NOT NULL DEFAULT '',
		success BOOLEAN NOT NULL DEFAULT TRUE,
		details TEXT NOT NULL DEFAULT '',
		ip_address VARCHAR(64) NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Indexes: []string{
		"CREATE INDEX IF NOT EXISTS access_logs_created_at_idx ON access_logs (created_at DESC)",
	},
	Depends: []Table{UsersTable},
}

var TasksTable = Table{
	Name: "tasks",
	Create: `CREATE TABLE IF NOT EXISTS tasks (
		id BIGSERIAL PRIMARY KEY,
		task_number VARCHAR(20) NOT NULL UNIQUE,
		project_id BIGINT REFERENCES projects(id) ON DELETE SET NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		assignee_id BIGINT,
		assignee_type VARCHAR(20) NOT NULL DEFAULT 'user',
		start_date DATE,
		end_date DATE,
		priority VARCHAR(20) NOT NULL DEFAULT 'medium',
		status VARCHAR(20) NOT NULL DEFAULT 'todo',
		remarks TEXT NOT NULL DEFAULT '',
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Depends: []Table{UsersTable, ProjectsTable},
}

var TaskCommentsTable = Table{
	Name: "task_comments",
	Create: `CREATE TABLE IF NOT EXISTS task_comments (
		id BIGSERIAL PRIMARY KEY,
		task_id BIGINT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Indexes: []string{
		"CREATE INDEX IF NOT EXISTS task_comments_task_idx ON task_comments (task_id, created_at)",
	},
	Depends: []Table{TasksTable, UsersTable},
}

var ReportsTable = Table{
	Name: "reports",
	Create: `CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		type VARCHAR(50) NOT NULL,
		filters JSONB NOT NULL DEFAULT '{}',
		data JSONB NOT NULL DEFAULT '{}',
		created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	Indexes: []string{
		"CREATE INDEX IF NOT EXISTS reports_created_by_idx ON reports (created_by)",
	},
	Depends: []Table{UsersTable},
}

var ModeSettingsTable = Table{
	Name: "mode_settings",
	Create: `CREATE TABLE IF NOT EXISTS mode_settings (
		id BIGSERIAL PRIMARY KEY,
		setting_key VARCHAR(100) NOT NULL UNIQUE,
		setting_value TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}
