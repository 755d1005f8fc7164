package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"studio-admin-service/internal/config"
	"studio-admin-service/internal/repository"
)

// BackupScheduler writes nightly JSON snapshots of business data and prunes
// snapshots older than the retention window. It also sweeps expired session
// rows on the same schedule.
type BackupScheduler struct {
	admins   repository.AdminRepositoryInterface
	projects repository.ProjectRepositoryInterface
	leads    repository.LeadRepositoryInterface
	config   config.BackupConfig
	logger   *logrus.Logger
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

// snapshot is the on-disk backup document.
type snapshot struct {
	CreatedAt time.Time   `json:"created_at"`
	Projects  interface{} `json:"projects"`
	Contacts  interface{} `json:"contacts"`
	Intakes   interface{} `json:"intakes"`
}

// NewBackupScheduler creates a new backup scheduler
func NewBackupScheduler(
	admins repository.AdminRepositoryInterface,
	projects repository.ProjectRepositoryInterface,
	leads repository.LeadRepositoryInterface,
	cfg config.BackupConfig,
	logger *logrus.Logger,
) *BackupScheduler {
	return &BackupScheduler{
		admins:   admins,
		projects: projects,
		leads:    leads,
		config:   cfg,
		logger:   logger,
	}
}

// Start starts the backup scheduler
func (s *BackupScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if !s.config.Enabled {
		s.logger.Info("Nightly backups are disabled")
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "0 0 2 * * *" // Default: 2 AM daily (with seconds)
	}

	// Convert 5-field cron to 6-field (add seconds prefix)
	fields := strings.Fields(schedule)
	if len(fields) == 5 {
		schedule = "0 " + schedule
	}

	if _, err := s.cron.AddFunc(schedule, s.runBackup); err != nil {
		s.logger.WithError(err).Error("Failed to schedule backup job")
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.WithFields(logrus.Fields{
		"schedule":       s.config.Schedule,
		"directory":      s.config.Directory,
		"retention_days": s.config.RetentionDays,
	}).Info("Backup scheduler started")

	return nil
}

// Stop stops the backup scheduler
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.cron == nil {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("Backup scheduler stopped")
}

// IsRunning returns whether the scheduler is running
func (s *BackupScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow triggers an immediate backup (for testing/manual trigger)
func (s *BackupScheduler) RunNow() {
	go s.runBackup()
}

func (s *BackupScheduler) runBackup() {
	startTime := time.Now()
	s.logger.Info("Starting scheduled backup")

	if deleted, err := s.admins.CleanupExpiredSessions(); err != nil {
		s.logger.WithError(err).Warn("Failed to sweep expired sessions")
	} else if deleted > 0 {
		s.logger.WithField("sessions_deleted", deleted).Info("Swept expired sessions")
	}

	path, err := s.writeSnapshot()
	if err != nil {
		s.logger.WithError(err).Error("Backup failed")
		return
	}

	pruned, err := s.pruneOld()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to prune old backups")
	}

	s.logger.WithFields(logrus.Fields{
		"file":     path,
		"pruned":   pruned,
		"duration": time.Since(startTime).String(),
	}).Info("Completed scheduled backup")
}

func (s *BackupScheduler) writeSnapshot() (string, error) {
	projects, err := s.projects.List()
	if err != nil {
		return "", fmt.Errorf("failed to load projects: %w", err)
	}
	contacts, err := s.leads.ListContacts()
	if err != nil {
		return "", fmt.Errorf("failed to load contacts: %w", err)
	}
	intakes, err := s.leads.ListIntakes()
	if err != nil {
		return "", fmt.Errorf("failed to load intakes: %w", err)
	}

	if err := os.MkdirAll(s.config.Directory, 0o750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	doc := snapshot{
		CreatedAt: time.Now().UTC(),
		Projects:  projects,
		Contacts:  contacts,
		Intakes:   intakes,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	path := filepath.Join(s.config.Directory, fmt.Sprintf("backup-%s.json", time.Now().UTC().Format("20060102-150405")))
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

func (s *BackupScheduler) pruneOld() (int, error) {
	entries, err := os.ReadDir(s.config.Directory)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	pruned := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "backup-") || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.config.Directory, entry.Name())); err != nil {
				s.logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to remove old backup")
				continue
			}
			pruned++
		}
	}
	return pruned, nil
}
