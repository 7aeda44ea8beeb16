package cart

import "context"

// Store persists one cart document per user. Save is a whole-document upsert:
// concurrent writers race and the last write wins, there is no version token.
type Store interface {
	Load(ctx context.Context, userID string) (*Cart, bool, error)
	Save(ctx context.Context, c *Cart) error
	Ping(ctx context.Context) error
}
