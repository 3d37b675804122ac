package compress

import (
	"fmt"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
)

// Ticker flushes the output queue into the trees at the end of every block.
type Ticker struct {
	store *Store
}

var _ quorum.Ticker = Ticker{}

// NewTicker returns a ticker flushing given store.
func NewTicker(s *Store) Ticker {
	return Ticker{store: s}
}

func (t Ticker) Tick(ctx quorum.Context, db quorum.KVStore) (quorum.TickResult, error) {
	n, err := t.store.Flush(db)
	if err != nil {
		return quorum.TickResult{}, errors.Wrap(err, "flush compressed accounts")
	}
	if n == 0 {
		return quorum.TickResult{}, nil
	}
	version := t.store.Version()
	quorum.GetLogger(ctx).Info("Compressed accounts flushed", "count", n, "version", version)
	return quorum.TickResult{
		Log: fmt.Sprintf("%d compressed accounts appended at version %d", n, version),
	}, nil
}
