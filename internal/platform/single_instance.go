package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"path/filepath"
)

// ErrAlreadyRunning indicates another process already owns the database.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	minLockPort = 20000
	maxLockPort = 39999
)

// InstanceLock is held for the process lifetime by the only instance that
// may write to one database file.
type InstanceLock struct {
	listener net.Listener
	address  string
}

// AcquireInstanceLock binds a localhost port derived from the database
// path. A second process opening the same file gets ErrAlreadyRunning.
func AcquireInstanceLock(databasePath string) (*InstanceLock, error) {
	key, err := filepath.Abs(databasePath)
	if err != nil {
		key = databasePath
	}
	address := fmt.Sprintf("127.0.0.1:%d", lockPort(key))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is held (%v)", ErrAlreadyRunning, address, err)
	}
	return &InstanceLock{listener: listener, address: address}, nil
}

// Release frees the lock. It is safe on a nil lock.
func (lock *InstanceLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	err := lock.listener.Close()
	lock.listener = nil
	return err
}

// Address is the bound lock address.
func (lock *InstanceLock) Address() string {
	if lock == nil {
		return ""
	}
	return lock.address
}

func lockPort(key string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(key))
	return minLockPort + int(hash.Sum32()%uint32(maxLockPort-minLockPort+1))
}
