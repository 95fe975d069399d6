package config

import "path/filepath"

// Paths locates the machine state files under the data dir.
type Paths struct {
	DataDir string
}

// NewPaths returns the path set rooted at dataDir.
func NewPaths(dataDir string) Paths {
	return Paths{DataDir: dataDir}
}

// MachineTokenPath holds the machine token issued by the contract service.
// The file is secret-bearing and written with mode 0600.
func (p Paths) MachineTokenPath() string {
	return filepath.Join(p.DataDir, "machine-token.json")
}

// InstanceIDPath caches the cloud instance id recorded at attach time.
func (p Paths) InstanceIDPath() string {
	return filepath.Join(p.DataDir, "instance-id")
}

// StatusCachePath holds the last computed status snapshot.
func (p Paths) StatusCachePath() string {
	return filepath.Join(p.DataDir, "status.json")
}

// LockPath is the flock target serializing mutating va operations.
func (p Paths) LockPath() string {
	return filepath.Join(p.DataDir, "lock")
}
