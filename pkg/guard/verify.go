package guard

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// verifyChunkSize is the read size for streaming digests. It affects memory
// use only, never the resulting digest.
const verifyChunkSize = 64 * 1024

// ErrNoExpectedDigest is returned by VerifyFirmware when the guard was
// constructed without an expected digest.
var ErrNoExpectedDigest = errors.New("guard: no expected digest configured for verification")

// fileDigest returns the lowercase SHA-256 hex digest of the file at path,
// streamed in fixed-size chunks.
func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("guard: failed to open %s for digest: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, make([]byte, verifyChunkSize)); err != nil {
		return "", fmt.Errorf("guard: failed to digest %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
