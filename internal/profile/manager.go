package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/acheronfail/fakeroot/internal/logging"
)

var (
	logger = logging.GetLogger().WithPrefix("profile")
)

// Manager handles loading and saving the profile file.
type Manager struct {
	path        string
	backupDir   string
	backupCount int
	mu          sync.RWMutex
}

// NewManager creates a manager for the given profile file path, creating
// the containing directory if needed.
func NewManager(path string) (*Manager, error) {
	logger.Debug("creating profile manager for: %s", path)

	abs := path
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		abs = filepath.Join(cwd, path)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory %s: %w", dir, err)
	}

	backupDir := filepath.Join(dir, ".fakeroot-backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory %s: %w", backupDir, err)
	}

	return &Manager{
		path:        abs,
		backupDir:   backupDir,
		backupCount: 5,
	}, nil
}

// Load reads the profile file. A missing or empty file yields an empty
// collection rather than an error.
func (m *Manager) Load() (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logger.Debug("loading profiles from: %s", m.path)

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("no profile file yet")
			return &File{Profiles: map[string]Profile{}, Version: 1}, nil
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}
	if file.Profiles == nil {
		file.Profiles = map[string]Profile{}
	}
	if file.Version == 0 {
		file.Version = 1
	}

	logger.Debug("loaded %d profiles", len(file.Profiles))
	return &file, nil
}

// Get returns the named profile.
func (m *Manager) Get(name string) (Profile, error) {
	file, err := m.Load()
	if err != nil {
		return Profile{}, err
	}
	p, ok := file.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("no such profile: %q", name)
	}
	return p, nil
}

// Save writes the profile file, creating a timestamped backup of the
// previous contents first.
func (m *Manager) Save(file *File) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logger.Debug("saving %d profiles to: %s", len(file.Profiles), m.path)

	if err := m.createBackup(); err != nil {
		// a failed backup shouldn't block the save
		logger.Warn("failed to create backup: %v", err)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}
	return nil
}

// createBackup copies the current file into the backup directory
func (m *Manager) createBackup() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	timestamp := time.Now().Format("20060102-150405.000000000")
	backupPath := filepath.Join(m.backupDir, fmt.Sprintf("profiles-%s.yaml", timestamp))

	logger.Trace("creating backup: %s", backupPath)
	if err := os.WriteFile(backupPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	return m.cleanupOldBackups()
}

// cleanupOldBackups removes old backups, keeping the most recent ones
func (m *Manager) cleanupOldBackups() error {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
			names = append(names, entry.Name())
		}
	}

	// timestamped names sort chronologically
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for i := m.backupCount; i < len(names); i++ {
		path := filepath.Join(m.backupDir, names[i])
		logger.Trace("removing old backup: %s", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", path, err)
		}
	}
	return nil
}
