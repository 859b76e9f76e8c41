package store

import (
	"context"
	"errors"

	"github.com/liftedinit/roadchain/internal/models"
)

var ErrOutOfOrder = errors.New("store: record does not extend the stored chain")

// Store persists chain records in order.
type Store interface {
	// Load returns all records ordered by index.
	Load(ctx context.Context) ([]models.Record, error)
	// Append persists a record. The record index must equal the number of
	// stored records.
	Append(ctx context.Context, record models.Record) error
	Close() error
}
