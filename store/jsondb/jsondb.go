package jsondb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sdomino/scribble"

	"github.com/ghostink/ghostink/model"
)

// FileMode is applied to the stash file after every write
const FileMode os.FileMode = 0o600

// DirMode is applied to the stash directory by Init
const DirMode os.FileMode = 0o700

// JsonDB keeps the stash as a single JSON array file. Every operation is a full
// read-modify-write of that file; concurrent writers are not coordinated and the
// last write wins.
//
// scribble creates the file with mode 0644 and it is narrowed to FileMode right
// after each write. Init restricts the stash directory to DirMode, so the file is
// never readable by other users in between.
type JsonDB struct {
	conn   *scribble.Driver
	dbPath string
}

// New returns a new pointer JsonDB
func New(dbPath string) (*JsonDB, error) {
	conn, err := scribble.New(dbPath, nil)
	if err != nil {
		return nil, err
	}
	ans := JsonDB{
		conn:   conn,
		dbPath: dbPath,
	}
	return &ans, nil
}

// Init creates the stash directory and restricts it to the owner
func (o *JsonDB) Init() error {
	stashDir := filepath.Join(o.dbPath, model.StashCollectionName)
	if err := os.MkdirAll(stashDir, DirMode); err != nil {
		return fmt.Errorf("cannot create stash directory: %w", err)
	}
	if err := os.Chmod(stashDir, DirMode); err != nil {
		return fmt.Errorf("cannot set stash directory permissions: %w", err)
	}
	return nil
}

// GetPath returns the location of the stash file
func (o *JsonDB) GetPath() string {
	return filepath.Join(o.dbPath, model.StashCollectionName, model.StashResourceName+".json")
}

// GetStashEntries returns all entries in insertion order. A missing file is an empty stash.
func (o *JsonDB) GetStashEntries() ([]model.StashEntry, error) {
	entries := []model.StashEntry{}
	if err := o.conn.Read(model.StashCollectionName, model.StashResourceName, &entries); err != nil {
		if os.IsNotExist(err) {
			return []model.StashEntry{}, nil
		}
		return nil, fmt.Errorf("cannot read stash: %w", err)
	}
	if entries == nil {
		entries = []model.StashEntry{}
	}
	return entries, nil
}

func (o *JsonDB) AppendStashEntry(entry model.StashEntry) error {
	entries, err := o.GetStashEntries()
	if err != nil {
		return err
	}
	return o.saveStashEntries(append(entries, entry))
}

// DeleteStashEntry removes the entry with the given id. Unknown ids are not an error.
func (o *JsonDB) DeleteStashEntry(entryID string) error {
	entries, err := o.GetStashEntries()
	if err != nil {
		return err
	}

	kept := make([]model.StashEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.ID != entryID {
			kept = append(kept, entry)
		}
	}
	return o.saveStashEntries(kept)
}

func (o *JsonDB) saveStashEntries(entries []model.StashEntry) error {
	if err := o.conn.Write(model.StashCollectionName, model.StashResourceName, entries); err != nil {
		return fmt.Errorf("cannot write stash: %w", err)
	}
	if err := os.Chmod(o.GetPath(), FileMode); err != nil {
		return fmt.Errorf("cannot set stash file permissions: %w", err)
	}
	return nil
}
