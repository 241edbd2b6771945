package store

import (
	"context"

	"github.com/abhisek/testdrill/internal/assessment"
)

// CatalogRepo manages the tests students can take.
type CatalogRepo interface {
	assessment.TestRepo

	// SaveTest inserts t with its questions and assigns their IDs.
	SaveTest(ctx context.Context, t *assessment.Test) error

	// SetPublished makes a test visible (or invisible) to students.
	SetPublished(ctx context.Context, id int64, published bool) error

	// ListTests returns every test, published or not, without questions.
	ListTests(ctx context.Context) ([]*assessment.Test, error)
}

// Backend is a storage implementation: the SQLite Store or the in-memory
// Memory.
type Backend interface {
	Catalog() CatalogRepo
	Repos() assessment.Repos
	Close() error
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*Memory)(nil)
)
