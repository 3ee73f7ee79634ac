package stamp

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"time"
)

// FileStamper selects the policy used to fingerprint a file.
type FileStamper int

const (
	// FileExists stamps only whether the file exists. Cheapest, least precise.
	FileExists FileStamper = iota
	// FileModified stamps the file's modification time. Cheap and usually
	// precise enough; fooled by tools that preserve mtimes.
	FileModified
	// FileHash stamps a sha256 digest of the file's contents. For a
	// directory, the digest covers the sorted entry names, so creating or
	// removing an entry changes the stamp. Most precise, most I/O.
	FileHash
)

// String returns the stamper's name for logs and error messages.
func (s FileStamper) String() string {
	switch s {
	case FileExists:
		return "exists"
	case FileModified:
		return "modified"
	case FileHash:
		return "hash"
	default:
		return fmt.Sprintf("FileStamper(%d)", int(s))
	}
}

// ParseFileStamper converts a policy name, as accepted on a command line,
// into a FileStamper.
func ParseFileStamper(name string) (FileStamper, error) {
	switch name {
	case "exists":
		return FileExists, nil
	case "modified":
		return FileModified, nil
	case "hash":
		return FileHash, nil
	default:
		return 0, fmt.Errorf("unknown file stamp policy %q: must be 'exists', 'modified', or 'hash'", name)
	}
}

// FileStamp is a comparable fingerprint of a file's state at stamping time.
// Two stamps compare equal iff they were produced by the same stamper over
// unchanged file state. The zero value is not a valid stamp.
type FileStamp struct {
	stamper FileStamper
	present bool
	modTime int64
	digest  [sha256.Size]byte
}

// Equal reports whether the two stamps fingerprint the same file state.
func (s FileStamp) Equal(other FileStamp) bool { return s == other }

// Present reports whether the file existed when the stamp was taken.
func (s FileStamp) Present() bool { return s.present }

// String renders the stamp for logs and tracker output.
func (s FileStamp) String() string {
	if !s.present {
		return fmt.Sprintf("%s(absent)", s.stamper)
	}
	switch s.stamper {
	case FileExists:
		return "exists(present)"
	case FileModified:
		return fmt.Sprintf("modified(%s)", time.Unix(0, s.modTime).UTC().Format(time.RFC3339Nano))
	case FileHash:
		return fmt.Sprintf("hash(%x)", s.digest[:8])
	default:
		return fmt.Sprintf("FileStamp(%d)", int(s.stamper))
	}
}

// Stamp fingerprints the file at path under this policy. A nonexistent file
// yields the policy's absent stamp and no error; any other I/O failure is
// returned as an error.
func (s FileStamper) Stamp(path string) (FileStamp, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return FileStamp{stamper: s}, nil
	}
	if err != nil {
		return FileStamp{}, fmt.Errorf("stamping %s: %w", path, err)
	}

	switch s {
	case FileExists:
		return FileStamp{stamper: s, present: true}, nil
	case FileModified:
		return FileStamp{stamper: s, present: true, modTime: info.ModTime().UnixNano()}, nil
	case FileHash:
		digest, err := hashPath(path, info)
		if err != nil {
			return FileStamp{}, fmt.Errorf("stamping %s: %w", path, err)
		}
		return FileStamp{stamper: s, present: true, digest: digest}, nil
	default:
		return FileStamp{}, fmt.Errorf("stamping %s: unknown file stamper %d", path, int(s))
	}
}

// hashPath digests a file's contents, or a directory's sorted entry names.
func hashPath(path string, info fs.FileInfo) ([sha256.Size]byte, error) {
	hasher := sha256.New()
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return [sha256.Size]byte{}, err
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			hasher.Write([]byte(name))
			hasher.Write([]byte{0})
		}
	} else {
		f, err := os.Open(path)
		if err != nil {
			return [sha256.Size]byte{}, err
		}
		defer f.Close()
		if _, err := io.Copy(hasher, f); err != nil {
			return [sha256.Size]byte{}, err
		}
	}
	var digest [sha256.Size]byte
	hasher.Sum(digest[:0])
	return digest, nil
}
