package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"studio-admin-service/internal/config"
	"studio-admin-service/internal/repository"
	"studio-admin-service/internal/services"
)

// adminctl is the operator escape hatch: it talks straight to the database,
// so a locked-out or deactivated sole admin can always be recovered from the
// server shell.
const usage = `Usage: adminctl <command> [args]

Commands:
  list                      List admin accounts and their security state
  unlock <admin-id>         Clear lockout and failed attempt counter
  activate <admin-id>       Re-enable a deactivated account
  deactivate <admin-id>     Disable an account
  rotate-url <admin-id>     Assign a freshly generated login URL
  force-password-change <admin-id>
                            Require a password change at next login
  cleanup-sessions          Delete expired session rows
`

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.LoadConfig()
	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := repository.NewAdminRepository(db)

	switch os.Args[1] {
	case "list":
		runList(repo)
	case "unlock":
		runWithID(repo, "unlock", func(id uuid.UUID) error { return repo.Unlock(id) })
	case "activate":
		runWithID(repo, "activate", func(id uuid.UUID) error { return repo.SetActiveStatus(id, true) })
	case "deactivate":
		runWithID(repo, "deactivate", func(id uuid.UUID) error { return repo.SetActiveStatus(id, false) })
	case "rotate-url":
		runRotateURL(repo)
	case "force-password-change":
		runWithID(repo, "force-password-change", func(id uuid.UUID) error { return repo.SetRequirePasswordChange(id, true) })
	case "cleanup-sessions":
		runCleanupSessions(repo)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
}

func runList(repo *repository.AdminRepository) {
	admins, err := repo.List()
	if err != nil {
		log.Fatalf("Failed to list accounts: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tACTIVE\tATTEMPTS\tLOCKED UNTIL\tLAST LOGIN")
	for _, admin := range admins {
		lockedUntil := "-"
		if admin.LockedUntil != nil {
			lockedUntil = admin.LockedUntil.Format(time.RFC3339)
		}
		lastLogin := "never"
		if admin.LastLogin != nil {
			lastLogin = admin.LastLogin.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%s\t%s\n",
			admin.ID, admin.Username, admin.Email, admin.ActiveStatus,
			admin.LoginAttempts, lockedUntil, lastLogin)
	}
	w.Flush()
}

func runWithID(repo *repository.AdminRepository, command string, fn func(uuid.UUID) error) {
	id := parseIDArg(command)
	if err := fn(id); err != nil {
		log.Fatalf("Failed to %s account %s: %v", command, id, err)
	}
	log.Printf("%s: done for %s", command, id)
}

func runRotateURL(repo *repository.AdminRepository) {
	id := parseIDArg("rotate-url")
	loginURLService := services.NewLoginURLService(repo)
	segment, err := loginURLService.Rotate(id)
	if err != nil {
		log.Fatalf("Failed to rotate login URL for %s: %v", id, err)
	}
	log.Printf("New login URL: /admin/login/%s", segment)
}

func runCleanupSessions(repo *repository.AdminRepository) {
	deleted, err := repo.CleanupExpiredSessions()
	if err != nil {
		log.Fatalf("Failed to clean up sessions: %v", err)
	}
	log.Printf("Deleted %d expired sessions", deleted)
}

func parseIDArg(command string) uuid.UUID {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: adminctl %s <admin-id>\n", command)
		os.Exit(2)
	}
	id, err := uuid.Parse(os.Args[2])
	if err != nil {
		log.Fatalf("Invalid admin ID %q: %v", os.Args[2], err)
	}
	return id
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
