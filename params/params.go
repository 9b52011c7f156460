package params

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

var ParamsPath string = "/data/params/d"

// Params
const (
	LATERAL_MPC_SETTINGS = "LateralMpcSettings"
)

const (
	lockForceAfter = 30
	lockGiveUp     = 50
)

var ErrLockTimeout = errors.New("could not obtain params lock")

// Exists returns whether the given file or directory exists
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "could not check param file stats")
}

func EnsureParamDirectories() {
	err := os.MkdirAll(ParamsPath, 0o775)
	if err != nil {
		slog.Warn("could not make params directory", "error", err, "directory", ParamsPath)
	}
}

func IsString(data []byte) bool {
	for _, b := range data {
		if (b < 32 || b > 126) && !(b == 9 || b == 13 || b == 10) {
			return false
		}
	}
	return true
}

// GetParams lists the keys currently stored.
func GetParams() ([]string, error) {
	files, err := os.ReadDir(ParamsPath)
	if err != nil {
		return nil, errors.Wrap(err, "could not read params directory")
	}

	keys := []string{}
	for _, file := range files {
		name := file.Name()
		if file.Type().IsRegular() && name[0] != '.' {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

// ParamPath resolves key against the current ParamsPath.
func ParamPath(key string) string {
	return filepath.Join(ParamsPath, key)
}

func GetParam(key string) ([]byte, error) {
	data, err := os.ReadFile(ParamPath(key))
	if err != nil {
		return nil, errors.Wrapf(err, "could not read param %s", key)
	}
	return data, nil
}

// PutParam replaces the value of key atomically: the data is written and synced to a temp file
// which is renamed over the param while the params lock is held.
func PutParam(key string, data []byte) error {
	path := ParamPath(key)
	dir := filepath.Dir(path)
	file, err := os.CreateTemp(dir, ".tmp_value_"+key)
	if err != nil {
		return errors.Wrap(err, "could not create temp param file")
	}
	tmpName := file.Name()
	defer os.Remove(tmpName)
	defer file.Close()

	if _, err = file.Write(data); err != nil {
		return errors.Wrap(err, "could not write data to temp param file")
	}
	if err = file.Sync(); err != nil {
		return errors.Wrap(err, "could not fsync temp param file")
	}

	unlock, err := lock(dir)
	if err != nil {
		return err
	}
	defer unlock()

	if err = os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "could not move temp param file to persistent location")
	}
	return syncDir(dir)
}

func RemoveParam(key string) error {
	path := ParamPath(key)
	dir := filepath.Dir(path)

	unlock, err := lock(dir)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "could not remove param %s", key)
	}
	return syncDir(dir)
}

// lock takes the lock file one level above the params directory, the same one openpilot uses.
func lock(dir string) (func(), error) {
	lockPath := filepath.Join(filepath.Dir(dir), ".lock")
	fileLock := flock.New(lockPath)

	retries := 0
	for {
		locked, err := fileLock.TryLock()
		if err != nil {
			return nil, errors.Wrap(err, "could not try locking params directory")
		}
		if locked {
			break
		}
		retries += 1
		if retries > lockForceAfter {
			// a crashed writer can leave the lock behind
			if err := os.Remove(lockPath); err != nil {
				slog.Debug("failed to force delete params lock", "error", err)
			}
		}
		if retries > lockGiveUp {
			return nil, ErrLockTimeout
		}
		time.Sleep(1 * time.Millisecond)
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			slog.Error("could not unlock params directory", "error", err)
		}
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			slog.Error("could not remove params lock file", "error", err)
		}
	}, nil
}

func syncDir(dir string) error {
	directory, err := os.Open(dir)
	if err != nil {
		return errors.Wrap(err, "could not open params directory")
	}
	defer directory.Close()

	if err = directory.Sync(); err != nil {
		return errors.Wrap(err, "could not fsync params directory")
	}
	return nil
}
