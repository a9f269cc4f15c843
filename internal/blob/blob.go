// Package blob stores item photo bytes outside the database. The database
// only ever holds the URL a saved photo is served under.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists photo bytes under a name and reports the URL they will be
// served from.
type Store interface {
	Save(name string, data []byte) (string, error)
	Remove(name string) error
}

// Disk stores photos as files under Root and serves them under URLPrefix.
type Disk struct {
	Root      string
	URLPrefix string
}

// NewDisk creates the photo directory if needed.
func NewDisk(root, urlPrefix string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating photo directory: %w", err)
	}
	return &Disk{Root: root, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (d *Disk) path(name string) (string, error) {
	// Names are server-generated, but refuse anything path-like regardless.
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid photo name %q", name)
	}
	return filepath.Join(d.Root, name), nil
}

func (d *Disk) Save(name string, data []byte) (string, error) {
	path, err := d.path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing photo: %w", err)
	}
	return d.URLPrefix + "/" + name, nil
}

func (d *Disk) Remove(name string) error {
	path, err := d.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing photo: %w", err)
	}
	return nil
}
