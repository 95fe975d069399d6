package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/verdala/va-client/internal/fsutil"
	"github.com/verdala/va-client/internal/messages"
)

// File modes for machine state. Secret-bearing files (the machine token)
// must not be world-readable.
const (
	publicFileMode = os.FileMode(0o644)
	secretFileMode = os.FileMode(0o600)
	dataDirMode    = os.FileMode(0o755)
)

// Cache reads and writes the machine state files under the data dir.
type Cache struct {
	paths Paths
}

// NewCache returns a cache over the given path set.
func NewCache(paths Paths) *Cache {
	return &Cache{paths: paths}
}

// ensureDir creates the data dir if needed.
func (c *Cache) ensureDir() error {
	return os.MkdirAll(c.paths.DataDir, dataDirMode)
}

// ReadInstanceID returns the recorded cloud instance id, or "" when none is
// recorded.
func (c *Cache) ReadInstanceID() (string, error) {
	data, err := os.ReadFile(c.paths.InstanceIDPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf(messages.CacheReadErrFmt, c.paths.InstanceIDPath(), err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteInstanceID records the cloud instance id observed at attach time.
func (c *Cache) WriteInstanceID(id string) error {
	if err := c.ensureDir(); err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.InstanceIDPath(), err)
	}
	if err := fsutil.WriteFileAtomic(c.paths.InstanceIDPath(), []byte(id+"\n"), publicFileMode); err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.InstanceIDPath(), err)
	}
	return nil
}

// DeleteInstanceID removes the recorded instance id, ignoring absence.
func (c *Cache) DeleteInstanceID() error {
	err := os.Remove(c.paths.InstanceIDPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteMachineToken persists the machine token JSON with secret file mode.
func (c *Cache) WriteMachineToken(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.MachineTokenPath(), err)
	}
	if err := c.ensureDir(); err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.MachineTokenPath(), err)
	}
	if err := fsutil.WriteFileAtomic(c.paths.MachineTokenPath(), data, secretFileMode); err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.MachineTokenPath(), err)
	}
	return nil
}

// ReadMachineToken decodes the machine token into v. It returns
// os.ErrNotExist when the machine is not attached.
func (c *Cache) ReadMachineToken(v any) error {
	data, err := os.ReadFile(c.paths.MachineTokenPath())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf(messages.CacheDecodeErrFmt, c.paths.MachineTokenPath(), err)
	}
	return nil
}

// HasMachineToken reports whether a machine token is present, i.e. whether
// the machine is attached.
func (c *Cache) HasMachineToken() bool {
	_, err := os.Stat(c.paths.MachineTokenPath())
	return err == nil
}

// DeleteMachineToken removes the machine token, ignoring absence.
func (c *Cache) DeleteMachineToken() error {
	err := os.Remove(c.paths.MachineTokenPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// WriteStatusCache persists the status snapshot JSON.
func (c *Cache) WriteStatusCache(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.StatusCachePath(), err)
	}
	if err := c.ensureDir(); err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.StatusCachePath(), err)
	}
	if err := fsutil.WriteFileAtomic(c.paths.StatusCachePath(), data, publicFileMode); err != nil {
		return fmt.Errorf(messages.CacheWriteErrFmt, c.paths.StatusCachePath(), err)
	}
	return nil
}

// ReadStatusCache decodes the cached status snapshot into v.
func (c *Cache) ReadStatusCache(v any) error {
	data, err := os.ReadFile(c.paths.StatusCachePath())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf(messages.CacheDecodeErrFmt, c.paths.StatusCachePath(), err)
	}
	return nil
}
