package audit

import "context"

// Store is the append-only persistence port for the audit trail. Append must
// join any transaction carried by ctx so the trail entry commits or rolls
// back with the mutation it describes.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, int, error)
}
