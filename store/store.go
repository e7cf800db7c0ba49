package store

import (
	"github.com/ghostink/ghostink/model"
)

// IConfigStore persists the secret key and the single account
type IConfigStore interface {
	Read() (model.AppConfig, error)
	SaveAccount(account model.Account) error
	EnsureSecretKey() (string, error)
}

// IStashStore persists the ordered list of stash entries
type IStashStore interface {
	Init() error
	GetStashEntries() ([]model.StashEntry, error)
	AppendStashEntry(entry model.StashEntry) error
	DeleteStashEntry(entryID string) error
}
