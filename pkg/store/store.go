// Package store persists artwork records for the HTTP server.
//
// A [Record] holds everything needed to redraw an artwork at any reveal
// count: the sampled grid, the built path and the layout options. Images
// and rendered frames are not stored; frames are cheap to redraw.
//
// Two backends are provided: [Memory] for tests and single-process use,
// and [Mongo] for deployments that share records between instances.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/roadreveal/pkg/errors"
)

// Record is one stored artwork.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Rows      int    `json:"rows" bson:"rows"`
	Cols      int    `json:"cols" bson:"cols"`
	Roads     int    `json:"roads" bson:"roads"`
	PathLen   int    `json:"path_length" bson:"path_length"`
	Component int    `json:"component" bson:"component"`
	Exhausted bool   `json:"exhausted" bson:"exhausted"`
	Strategy  string `json:"strategy" bson:"strategy"`

	Spacing     int `json:"spacing" bson:"spacing"`
	Threshold   int `json:"threshold" bson:"threshold"`
	ImageWidth  int `json:"image_width" bson:"image_width"`
	ImageHeight int `json:"image_height" bson:"image_height"`

	Width     int     `json:"width" bson:"width"`
	Height    int     `json:"height" bson:"height"`
	BlockSize float64 `json:"block_size" bson:"block_size"`
	Seed      uint64  `json:"seed" bson:"seed"`

	// Cells are the grid rows ('#' road, '.' empty).
	Cells []string `json:"-" bson:"cells"`

	// Path is the ordered path as [row, col] pairs.
	Path [][2]int `json:"-" bson:"path"`
}

// Store persists records.
type Store interface {
	// Create stores rec, assigning ID and CreatedAt when they are empty.
	Create(ctx context.Context, rec *Record) error

	// Get returns the record with the given id or an ARTWORK_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record or returns an ARTWORK_NOT_FOUND error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeArtworkNotFound, "artwork %s not found", id)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
