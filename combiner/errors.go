package combiner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEncode matches any failed encoder run
	ErrEncode = errors.New("spatial encoding failed")
	// ErrEncoderNotFound is returned when no encoder binary can be located
	ErrEncoderNotFound = errors.New("pair2spatial binary not found")
)

// EncodeError reports a non-zero exit from the encoder together with what it
// wrote to stderr
type EncodeError struct {
	ExitCode int
	Stderr   string
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", EncoderName, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ":\n" + stderr
	}
	return msg
}

// Is lets errors.Is(err, ErrEncode) match
func (e *EncodeError) Is(target error) bool {
	return target == ErrEncode
}
