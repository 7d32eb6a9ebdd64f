package service_test

import (
	"database/sql"
	"testing"

	"github.com/iliyamo/game-catalog/internal/database/dbtest"
)

type dbtestDB struct {
	t  *testing.T
	db *sql.DB
}

func (d *dbtestDB) category(name string) uint64 { return dbtest.SeedCategory(d.t, d.db, name) }

func (d *dbtestDB) game(catID uint64, title, released string) uint64 {
	return dbtest.SeedGame(d.t, d.db, catID, title, released)
}
