// Package journal persists executed orders and portfolio snapshots as JSON
// files under a data directory. It is best-effort bookkeeping for later
// inspection, not a durable store: writes are not fsynced and failures are
// surfaced to the caller to log and move on.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	tradesDir    = "trades"
	snapshotsDir = "snapshots"
)

// Journal writes JSON records under root.
type Journal struct {
	root string
}

// Open creates the journal directories under root.
func Open(root string) (*Journal, error) {
	for _, dir := range []string{tradesDir, snapshotsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("journal: %w", err)
		}
	}
	return &Journal{root: root}, nil
}

// WriteOrder records an executed order under trades/<order_id>.json.
func (j *Journal) WriteOrder(orderID string, record any) error {
	if orderID == "" {
		orderID = uuid.NewString()
	}
	return j.write(filepath.Join(tradesDir, sanitize(orderID)+".json"), record)
}

// WriteSnapshot records a portfolio snapshot, named by timestamp.
func (j *Journal) WriteSnapshot(at time.Time, snapshot any) error {
	name := at.UTC().Format("20060102T150405.000000000Z")
	return j.write(filepath.Join(snapshotsDir, name+".json"), snapshot)
}

// ReadOrder loads a recorded order into out.
func (j *Journal) ReadOrder(orderID string, out any) error {
	raw, err := os.ReadFile(filepath.Join(j.root, tradesDir, sanitize(orderID)+".json"))
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return json.Unmarshal(raw, out)
}

// OrderIDs lists recorded order ids in lexical order.
func (j *Journal) OrderIDs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(j.root, tradesDir))
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".json"); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (j *Journal) write(rel string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("journal: marshal %s: %w", rel, err)
	}
	if err := os.WriteFile(filepath.Join(j.root, rel), raw, 0o644); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}

// sanitize keeps record names safe as file names.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
}
