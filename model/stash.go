package model

import (
	"time"
)

// StashEntry model
type StashEntry struct {
	ID      string    `json:"id"`
	Label   string    `json:"label"`
	Emoji   string    `json:"emoji"`
	Created time.Time `json:"created"`
}

// StashCollectionName is the directory holding the stash file inside the database path
const StashCollectionName = "stash"

// StashResourceName is the stash file name, without the .json extension
const StashResourceName = "entries"
