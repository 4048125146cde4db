package guard

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestFileDigest(t *testing.T) {
	t.Run("known content produces known digest", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "fw.bin", "good")
		got, err := fileDigest(path)
		if err != nil {
			t.Fatalf("fileDigest() failed: %v", err)
		}
		if got != goodDigest {
			t.Fatalf("digest = %s, want %s", got, goodDigest)
		}
	})

	t.Run("digest is lowercase hex", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "fw.bin", "anything at all")
		got, err := fileDigest(path)
		if err != nil {
			t.Fatalf("fileDigest() failed: %v", err)
		}
		if got != strings.ToLower(got) {
			t.Fatalf("digest not lowercase: %s", got)
		}
		if len(got) != 64 {
			t.Fatalf("digest length = %d, want 64", len(got))
		}
	})

	t.Run("content spanning multiple chunks digests correctly", func(t *testing.T) {
		// The chunk size must not change the result, only memory use.
		content := strings.Repeat("x", verifyChunkSize*2+7)
		path := writeFile(t, t.TempDir(), "big.bin", content)

		sum := sha256.Sum256([]byte(content))
		want := hex.EncodeToString(sum[:])

		got, err := fileDigest(path)
		if err != nil {
			t.Fatalf("fileDigest() failed: %v", err)
		}
		if got != want {
			t.Fatalf("digest = %s, want %s", got, want)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := fileDigest("/no/such/image.bin"); err == nil {
			t.Fatal("fileDigest() on a missing file returned nil error")
		}
	})
}
