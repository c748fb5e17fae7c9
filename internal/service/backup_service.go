package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"wordplay/internal/models"
	"wordplay/internal/profile"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the exported profile collection
type BackupData struct {
	Version    string               `json:"version"`
	ExportedAt time.Time            `json:"exportedAt"`
	Users      []models.UserProfile `json:"users"`
}

// BackupService handles profile backup and restore
type BackupService struct {
	store  *profile.Store
	log    *zap.Logger
	now    func() time.Time
	create func(path string) (io.WriteCloser, error)
}

// NewBackupService creates a new backup service
func NewBackupService(store *profile.Store, log *zap.Logger) *BackupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BackupService{
		store:  store,
		log:    log.Named("backup"),
		now:    time.Now,
		create: createFile,
	}
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// Export writes every profile to a file
func (s *BackupService) Export(outputPath string) (int, error) {
	file, err := s.create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}

	n, err := s.ExportToWriter(file)
	if err != nil {
		file.Close()
		return 0, err
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to write output file: %w", err)
	}

	s.log.Info("profiles exported", zap.String("path", outputPath), zap.Int("users", n))
	return n, nil
}

// ExportToWriter writes every profile to w and returns how many were written
func (s *BackupService) ExportToWriter(w io.Writer) (int, error) {
	backup := &BackupData{
		Version:    BackupVersion,
		ExportedAt: s.now().UTC(),
		Users:      s.store.Users(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return 0, fmt.Errorf("failed to encode backup: %w", err)
	}
	return len(backup.Users), nil
}

// Import restores profiles from a backup file. See ImportFromReader.
func (s *BackupService) Import(inputPath string, replace bool) (int, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file, replace)
}

// ImportFromReader restores profiles from a backup. With replace the
// current collection is discarded; otherwise profiles whose id already
// exists are kept as they are. It returns how many profiles were added.
func (s *BackupService) ImportFromReader(r io.Reader, replace bool) (int, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}

	if !strings.HasPrefix(backup.Version, "1.") {
		return 0, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.log.Info("importing backup",
		zap.String("version", backup.Version),
		zap.Time("exportedAt", backup.ExportedAt),
		zap.Int("users", len(backup.Users)),
	)

	added, err := s.store.Import(backup.Users, replace)
	if err != nil {
		return added, fmt.Errorf("failed to import users: %w", err)
	}
	return added, nil
}
