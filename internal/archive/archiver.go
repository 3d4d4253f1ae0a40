package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"pvd/internal/providers"
	"pvd/internal/store"
	"pvd/internal/structures"
)

const archiveExt = ".pvd.zst"

// Archiver writes compressed ledger exports into the archive directory and
// prunes old ones. Export files are immutable once written; the tmp-rename
// dance keeps a crashed export from leaving a torn file behind.
type Archiver struct {
	store      store.VisitorStoreInterface
	compressor CompressorInterface
	logger     providers.Logger
	dir        string
	retention  int
	now        func() time.Time
}

func NewArchiver(conf *structures.Config, compressor CompressorInterface,
	st store.VisitorStoreInterface, logger providers.Logger) *Archiver {
	return &Archiver{
		store:      st,
		compressor: compressor,
		logger:     logger,
		dir:        conf.Archive.Dir,
		retention:  conf.Archive.Retention,
		now:        time.Now,
	}
}

// Export snapshots the ledger into a new timestamped archive file and returns
// its path. Retention pruning runs after a successful export.
func (a *Archiver) Export() (string, error) {
	snapshot, err := a.store.Snapshot()
	if err != nil {
		return "", err
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	data, err := a.compressor.Compress(jsonData)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", err
	}
	fileName := filepath.Join(a.dir, fmt.Sprintf("ledger-%s%s", a.now().UTC().Format("20060102T150405"), archiveExt))

	if err := a.writeAtomic(fileName, data); err != nil {
		return "", err
	}

	if err := a.prune(); err != nil {
		a.logger.Warnf(providers.TypeApp, "archive pruning failed: %s", err)
	}
	return fileName, nil
}

func (a *Archiver) writeAtomic(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

// Load reads one archive file back into a snapshot.
func (a *Archiver) Load(fileName string) (*store.LedgerSnapshot, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	jsonData, err := a.compressor.Decompress(data)
	if err != nil {
		return nil, err
	}

	var snapshot store.LedgerSnapshot
	if err := json.Unmarshal(jsonData, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// prune deletes the oldest archives beyond the retention count. Retention
// zero or negative keeps everything.
func (a *Archiver) prune() error {
	if a.retention <= 0 {
		return nil
	}

	matches, err := filepath.Glob(filepath.Join(a.dir, "ledger-*"+archiveExt))
	if err != nil {
		return err
	}
	if len(matches) <= a.retention {
		return nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(matches)
	for _, stale := range matches[:len(matches)-a.retention] {
		if err := os.Remove(stale); err != nil {
			return err
		}
		a.logger.Debugf(providers.TypeApp, "pruned archive %s", stale)
	}
	return nil
}

func (a *Archiver) Close() {
	a.compressor.Close()
}
