package persistence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/mfvec/model"
)

// CurrentName is the blob naming the latest complete snapshot.
const CurrentName = "CURRENT"

// ManifestVersion is the current manifest schema version.
const ManifestVersion = 1

// Manifest describes one snapshot.
type Manifest struct {
	Version     int          `json:"version"`
	ID          uint64       `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Compression string       `json:"compression"`
	Fields      []FieldEntry `json:"fields"`
}

// FieldEntry locates the record of one field.
type FieldEntry struct {
	Handle   model.Handle `json:"handle"`
	Count    uint64       `json:"count"`
	Blob     string       `json:"blob"`
	Size     int64        `json:"size"`
	Checksum uint32       `json:"checksum"`
}

// Tuples returns the total number of tuples in the snapshot.
func (m *Manifest) Tuples() uint64 {
	var n uint64
	for _, f := range m.Fields {
		n += f.Count
	}
	return n
}

func snapshotDir(id uint64) string {
	return fmt.Sprintf("snap-%08d/", id)
}

func manifestName(id uint64) string {
	return snapshotDir(id) + "manifest.json"
}

func fieldBlobName(id uint64, h model.Handle) string {
	return fmt.Sprintf("%sfield-%d.mfv3", snapshotDir(id), uint32(h))
}

func parseManifestName(name string) (uint64, error) {
	digits, ok := strings.CutPrefix(name, "snap-")
	if ok {
		digits, ok = strings.CutSuffix(digits, "/manifest.json")
	}
	id, err := strconv.ParseUint(digits, 10, 64)
	if !ok || err != nil || manifestName(id) != name {
		return 0, fmt.Errorf("%w: current pointer %q", ErrCorrupt, name)
	}
	return id, nil
}
