package postgresql

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/cmlabs-hris/hris-attendance-go/internal/fixtures"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

// ApplyMigrations runs every *.sql file of fsys in name order, each in its own
// transaction. The files are written to be re-runnable.
func ApplyMigrations(ctx context.Context, db *database.DB, fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		err = WithTransaction(ctx, db, func(txCtx context.Context) error {
			_, err := GetQuerier(txCtx, db).Exec(txCtx, string(sql))
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		slog.InfoContext(ctx, "Migration applied", "file", name)
	}

	return nil
}

// SeedDirectory inserts the directory in one transaction. Rows whose unique
// keys already exist are skipped.
func SeedDirectory(ctx context.Context, db *database.DB, dir fixtures.Directory) error {
	return WithTransaction(ctx, db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, db)

		for _, d := range dir.Departments {
			if _, err := q.Exec(txCtx,
				`INSERT INTO departments (id, name) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				d.ID, d.Name,
			); err != nil {
				return fmt.Errorf("failed to seed department %s: %w", d.Name, err)
			}
		}

		for _, u := range dir.Users {
			if _, err := q.Exec(txCtx, `
				INSERT INTO users (id, email, password_hash, role, email_verified)
				VALUES ($1, lower($2), $3, $4, $5)
				ON CONFLICT DO NOTHING`,
				u.ID, u.Email, u.PasswordHash, string(u.Role), u.EmailVerified,
			); err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
			}
		}

		// Foreign keys are resolved by name and email so a re-run against an
		// existing directory attaches to the stored rows.
		emails := make(map[string]string, len(dir.Users))
		for _, u := range dir.Users {
			emails[u.ID] = u.Email
		}
		depts := make(map[string]string, len(dir.Departments))
		for _, d := range dir.Departments {
			depts[d.ID] = d.Name
		}

		for _, e := range dir.Employees {
			var userEmail, deptName *string
			if e.UserID != nil {
				if email, ok := emails[*e.UserID]; ok {
					userEmail = &email
				}
			}
			if e.DepartmentID != nil {
				if name, ok := depts[*e.DepartmentID]; ok {
					deptName = &name
				}
			}

			if _, err := q.Exec(txCtx, `
				INSERT INTO employees (id, user_id, employee_code, full_name, email, department_id, is_active)
				VALUES (
					$1,
					(SELECT id FROM users WHERE email = lower($2)),
					$3, $4, $5,
					(SELECT id FROM departments WHERE name = $6),
					$7
				)
				ON CONFLICT DO NOTHING`,
				e.ID, userEmail, e.EmployeeCode, e.FullName, e.Email, deptName, e.IsActive,
			); err != nil {
				return fmt.Errorf("failed to seed employee %s: %w", e.EmployeeCode, err)
			}
		}

		slog.InfoContext(txCtx, "Directory seeded",
			"departments", len(dir.Departments), "users", len(dir.Users), "employees", len(dir.Employees))
		return nil
	})
}
