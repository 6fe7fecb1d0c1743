package combiner

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// EncoderName is the executable name of the spatial photo encoder
const EncoderName = "pair2spatial"

var (
	lookPath   = exec.LookPath
	executable = os.Executable
)

// LocateEncoder finds the encoder binary. An explicit path must exist;
// otherwise build/pair2spatial beside the running executable is preferred over
// a PATH lookup.
func LocateEncoder(explicit string) (string, error) {
	if explicit != "" {
		if !isExecutableFile(explicit) {
			return "", fmt.Errorf("%w: %s is not an executable file", ErrEncoderNotFound, explicit)
		}
		return explicit, nil
	}

	if exe, err := executable(); err == nil {
		local := filepath.Join(filepath.Dir(exe), "build", EncoderName)
		if isExecutableFile(local) {
			return local, nil
		}
	}

	if found, err := lookPath(EncoderName); err == nil {
		return found, nil
	}

	return "", fmt.Errorf("%w: build it into build/%s or put it on PATH", ErrEncoderNotFound, EncoderName)
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
