// SPDX-License-Identifier: MPL-2.0

package runconfig

import (
	"fmt"
	"os"

	"github.com/runcfg/runcfg/pkg/fspath"
	"github.com/runcfg/runcfg/pkg/record"
	"github.com/runcfg/runcfg/pkg/types"
)

const (
	jsonExt = ".json"

	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Save writes rec to path as 4-space indented JSON in key insertion order.
//
// FilesystemPath values anywhere in rec are replaced by plain strings first;
// rec is modified in place. The parent directory is created when missing.
// The document is encoded completely before the file is opened, so an
// encoding failure leaves an existing file untouched. The file is rewritten
// in place rather than replaced, which keeps its creation time.
func (m *Manager) Save(rec *record.Record, path types.FilesystemPath) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if rec == nil {
		rec = record.New()
	}
	rec.NormalizePaths()

	data, err := record.MarshalIndent(rec, record.DefaultIndent)
	if err != nil {
		return fmt.Errorf("encoding configuration %s: %w", path, err)
	}

	if err := os.MkdirAll(string(fspath.Dir(path)), dirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(string(path), data, filePerm); err != nil {
		return fmt.Errorf("writing configuration %s: %w", path, err)
	}
	m.logger.Debug("saved configuration", "path", path, "keys", rec.Len())
	return nil
}

// Load reads the record at path and checks it with the Manager's validator.
//
// A document whose top level is not a JSON object fails with
// *record.NotObjectError. Validation errors are returned as produced by the
// validator, and no record is returned with them.
func (m *Manager) Load(path types.FilesystemPath, expectedKeys []string) (*record.Record, error) {
	rec, err := m.read(path)
	if err != nil {
		return nil, err
	}
	if err := m.validator.Validate(rec, expectedKeys); err != nil {
		return nil, err
	}
	m.logger.Debug("loaded configuration", "path", path, "keys", rec.Len())
	return rec, nil
}

// AddInfo sets every key of updates in the record at path and saves it.
// New keys are appended; existing keys keep their position and their value
// is replaced wholesale, without merging nested objects.
func (m *Manager) AddInfo(path types.FilesystemPath, updates *record.Record) error {
	rec, err := m.read(path)
	if err != nil {
		return err
	}
	if updates != nil {
		for _, key := range updates.Keys() {
			v, _ := updates.Get(key)
			rec.Set(key, v)
		}
	}
	if err := m.Save(rec, path); err != nil {
		return err
	}
	m.logger.Info("updated configuration", "path", path, "keys", keysOf(updates))
	return nil
}

// RemoveInfo deletes keys from the record at path and saves it. Keys that are
// not present are ignored, so repeating a removal changes nothing.
func (m *Manager) RemoveInfo(path types.FilesystemPath, keys []string) error {
	rec, err := m.read(path)
	if err != nil {
		return err
	}
	var removed []string
	for _, key := range keys {
		if rec.Delete(key) {
			removed = append(removed, key)
		}
	}
	if err := m.Save(rec, path); err != nil {
		return err
	}
	m.logger.Info("removed configuration keys", "path", path, "keys", removed)
	return nil
}

func (m *Manager) read(path types.FilesystemPath) (*record.Record, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	rec, err := record.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding configuration %s: %w", path, err)
	}
	return rec, nil
}

func keysOf(r *record.Record) []string {
	if r == nil {
		return nil
	}
	return r.Keys()
}
