//go:build integration

package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iliyamo/game-catalog/internal/database"
)

// TestMySQL_MigrateAndCascade runs the MySQL migrations against a real
// server and checks the declared cascades.
func TestMySQL_MigrateAndCascade(t *testing.T) {
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.4",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "secret",
				"MYSQL_DATABASE":      "catalog",
			},
			WaitingFor: wait.ForLog("ready for connections").
				WithOccurrence(2).
				WithStartupTimeout(3 * time.Minute),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	db, err := database.OpenMySQL("root", "secret", host, port.Port(), "catalog")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.Migrate(ctx, db, "mysql"))

	res, err := db.Exec(`INSERT INTO categories (name) VALUES ('Action')`)
	require.NoError(t, err)
	catID, _ := res.LastInsertId()
	res, err = db.Exec(`INSERT INTO games (category_id, title, description, download_link, release_date)
		VALUES (?, 'Alpha', 'a', 'https://example.com', '2023-01-01')`, catID)
	require.NoError(t, err)
	gameID, _ := res.LastInsertId()
	_, err = db.Exec(`INSERT INTO comments (game_id, nickname, email, password_hash, text, created_at)
		VALUES (?, 'sam', 'sam@x.com', 'h', 'hi', '2024-01-01 10:00:00.000000')`, gameID)
	require.NoError(t, err)

	var released time.Time
	require.NoError(t, db.QueryRow(`SELECT release_date FROM games WHERE id = ?`, gameID).Scan(&released))
	assert.Equal(t, "2023-01-01", released.Format("2006-01-02"))

	_, err = db.Exec(`DELETE FROM categories WHERE id = ?`, catID)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM comments`).Scan(&n))
	assert.Zero(t, n)
}
