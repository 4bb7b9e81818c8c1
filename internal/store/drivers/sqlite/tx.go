package sqlite

import (
	"database/sql"

	"github.com/nostella/nostella/internal/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Users() store.Users   { return &usersRepo{q: t.tx} }
func (t *txStore) Photos() store.Photos { return &photosRepo{q: t.tx} }
