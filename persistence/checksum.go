package persistence

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Name     string
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: checksum mismatch: expected 0x%08x, got 0x%08x", e.Name, e.Expected, e.Actual)
	}
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Unwrap lets errors.Is(err, ErrCorrupt) match checksum failures.
func (e *ChecksumMismatchError) Unwrap() error {
	return ErrCorrupt
}

// IsChecksumMismatch returns true if err is or wraps a checksum mismatch error.
func IsChecksumMismatch(err error) bool {
	var target *ChecksumMismatchError
	return errors.As(err, &target)
}

// recordChecksum is the CRC32 (IEEE) of the header up to the checksum field
// followed by the payload.
//
// CRC32 detects accidental corruption only; it is not tamper-proof.
func recordChecksum(header, payload []byte) uint32 {
	crc := crc32.ChecksumIEEE(header[:checksumOffset])
	return crc32.Update(crc, crc32.IEEETable, payload)
}

func verifyChecksum(name string, header, payload []byte, expected uint32) error {
	if actual := recordChecksum(header, payload); actual != expected {
		return &ChecksumMismatchError{Name: name, Expected: expected, Actual: actual}
	}
	return nil
}
