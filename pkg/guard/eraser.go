package guard

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// wipeChunkSize is the buffer size for overwrite passes.
const wipeChunkSize = 4096

// WipeResult reports the outcome of a wipe over the protected path set:
// the paths fully wiped, the paths that failed, and the registered paths
// that no longer existed at wipe time (skipped, not an error).
type WipeResult struct {
	Wiped   []string
	Failed  []string
	Skipped []string
}

// WipeError reports that one or more protected paths could not be fully
// overwritten or removed. The failed paths remain on disk and must be
// treated as a residual exposure; there is no retry.
type WipeError struct {
	Failed []string
}

func (e *WipeError) Error() string {
	return fmt.Sprintf("guard: failed to wipe %d path(s): %s",
		len(e.Failed), strings.Join(e.Failed, ", "))
}

// WipeFile overwrites the file at path with three full-length passes in
// fixed order (random, zero, random), forcing each pass to stable storage
// before the next, then deletes the file. Interrupting the process between
// passes still leaves the original content destroyed by the last completed
// pass. Timestamps are scrubbed best-effort before removal so the dead
// inode carries no meaningful mtime.
func WipeFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("guard: failed to stat %s: %w", path, err)
	}

	if size := info.Size(); size > 0 {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("guard: failed to open %s for overwrite: %w", path, err)
		}
		for pass, random := range []bool{true, false, true} {
			if err := overwritePass(f, size, random); err != nil {
				f.Close()
				return fmt.Errorf("guard: overwrite pass %d on %s: %w", pass, path, err)
			}
		}
		f.Close()
	}

	scrubTimestamps(path)

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("guard: failed to remove %s: %w", path, err)
	}
	return nil
}

// overwritePass writes one full-length pattern pass and syncs it to disk.
// A zero pass reuses the freshly allocated (zeroed) buffer; a random pass
// refills the buffer per chunk.
func overwritePass(f *os.File, size int64, random bool) error {
	if _, err := f.Seek(0, 0); err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}

	buf := make([]byte, wipeChunkSize)
	remaining := size
	for remaining > 0 {
		n := int64(len(buf))
		if remaining < n {
			n = remaining
		}
		if random {
			if _, err := rand.Read(buf[:n]); err != nil {
				return fmt.Errorf("rand read failed: %w", err)
			}
		}
		written, err := f.Write(buf[:n])
		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		remaining -= int64(written)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// scrubTimestamps resets atime and mtime on path to the Unix epoch.
// Best-effort: the overwritten content is already gone, so a failure here
// must not abort the wipe.
func scrubTimestamps(path string) {
	ts := unix.NsecToTimespec(time.Unix(0, 0).UnixNano())
	_ = unix.UtimesNano(path, []unix.Timespec{ts, ts})
}

// WipeDirectory recursively wipes every file under dir, children fully
// processed before their parent, then removes the emptied directory tree.
// The bottom-up order means directory removal never fails on non-empty
// contents.
func WipeDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("guard: failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := WipeDirectory(fullPath); err != nil {
				return err
			}
		} else if err := WipeFile(fullPath); err != nil {
			return err
		}
	}

	if err := os.Remove(dir); err != nil {
		return fmt.Errorf("guard: failed to remove directory %s: %w", dir, err)
	}
	return nil
}

// wipeAll wipes every path in insertion order. Per-path failures are
// collected rather than aborting the pass, so one bad path never shields
// the paths after it. Paths that no longer exist are skipped and reported
// in neither the wiped nor the failed list.
func wipeAll(paths []string) *WipeResult {
	res := &WipeResult{}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				res.Skipped = append(res.Skipped, path)
				continue
			}
			res.Failed = append(res.Failed, path)
			continue
		}

		if info.IsDir() {
			err = WipeDirectory(path)
		} else {
			err = WipeFile(path)
		}
		if err != nil {
			res.Failed = append(res.Failed, path)
			continue
		}
		res.Wiped = append(res.Wiped, path)
	}
	return res
}
