package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	featuresDomain "github.com/felixgeelhaar/lingua/internal/features/domain"
)

// DefaultManifestFilename is the manifest file looked up in each plugin directory.
const DefaultManifestFilename = "provider.json"

// Manifest describes a provider plugin.
type Manifest struct {
	// ID is the catalog provider the plugin serves (e.g., "claude").
	ID string `json:"id"`

	// Name is a human-readable name.
	Name string `json:"name"`

	// Version is the plugin version.
	Version string `json:"version"`

	// BinaryPath is the path to the plugin binary (relative to manifest).
	BinaryPath string `json:"binary_path"`

	// Checksum is the SHA256 checksum of the binary.
	Checksum string `json:"checksum,omitempty"`

	dir string
}

// LoadManifest loads a manifest from a file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	manifest.dir = filepath.Dir(path)

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

// Validate checks the manifest. Plugins may only serve catalog providers so
// that feature gating keeps applying to them.
func (m *Manifest) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("id is required")
	}
	if !featuresDomain.IsKnownProvider(m.ID) {
		return fmt.Errorf("unknown provider id: %s", m.ID)
	}
	if m.BinaryPath == "" {
		return fmt.Errorf("binary_path is required")
	}
	return nil
}

// BinaryAbsPath returns the absolute path to the plugin binary.
func (m *Manifest) BinaryAbsPath() string {
	if filepath.IsAbs(m.BinaryPath) {
		return m.BinaryPath
	}
	return filepath.Join(m.dir, m.BinaryPath)
}

// Discover loads every manifest found one level below root.
// Directories without a manifest are skipped; invalid manifests are returned as errors.
func Discover(root string) ([]*Manifest, []error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{err}
	}

	var manifests []*Manifest
	var errs []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name(), DefaultManifestFilename)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		manifest, err := LoadManifest(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		manifests = append(manifests, manifest)
	}
	return manifests, errs
}
