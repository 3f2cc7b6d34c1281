package db

import (
	"context"
	"strings"

	"process-platform/internal/config"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type seedRow struct {
	name  string
	kind  string
	color string
	order int
}

var systemStatuses = []seedRow{
	{"Draft", "process", "#6B7280", 1},
	{"Active", "process", "#10B981", 2},
	{"Archived", "process", "#9CA3AF", 3},
	{"Planning", "project", "#3B82F6", 1},
	{"In Progress", "project", "#F59E0B", 2},
	{"Completed", "project", "#10B981", 3},
}

var systemCategories = []seedRow{
	{name: "General", kind: "process", color: "#3B82F6"},
	{name: "General", kind: "document", color: "#3B82F6"},
}

// SeedData provisions the taxonomy and user tables and inserts the rows the
// application expects to find: system statuses and categories and, when
// configured, a bootstrap administrator. Every insert is idempotent.
func SeedData(ctx context.Context, p *Provisioner, exec Execer) error {
	if err := p.Ensure(ctx, UsersTable, CategoriesTable, StatusesTable); err != nil {
		return err
	}

	for _, s := range systemStatuses {
		_, err := exec.Exec(ctx,
			`INSERT INTO statuses (name, type, color, is_system, "order") VALUES ($1, $2, $3, TRUE, $4)
			 ON CONFLICT (name, type) DO NOTHING`,
			s.name, s.kind, s.color, s.order)
		if err != nil {
			return err
		}
	}
	for _, c := range systemCategories {
		_, err := exec.Exec(ctx,
			`INSERT INTO categories (name, type, color, is_system) VALUES ($1, $2, $3, TRUE)
			 ON CONFLICT (name, type) DO NOTHING`,
			c.name, c.kind, c.color)
		if err != nil {
			return err
		}
	}

	email := strings.ToLower(strings.TrimSpace(config.AppConfig.AdminEmail))
	if email == "" || config.AppConfig.AdminPassword == "" {
		log.Info().Msg("no bootstrap admin configured")
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(config.AppConfig.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	tag, err := exec.Exec(ctx,
		`INSERT INTO users (name, email, role, password_hash) VALUES ($1, $2, 'admin', $3)
		 ON CONFLICT (email) DO NOTHING`,
		"Administrator", email, string(hash))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		log.Info().Str("email", email).Msg("created bootstrap admin")
	}
	return nil
}
