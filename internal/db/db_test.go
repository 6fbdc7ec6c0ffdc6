package db

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	require.NoError(t, err)
	defer d.Close()

	for _, table := range []string{"teams", "knowledge_entries", "qa_queries", "generation_runs"} {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	require.NoError(t, err)
	defer d.Close()

	assert.NoError(t, d.migrate())
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "autoqa.db")
	d, err := Open(path)
	require.NoError(t, err)
	defer d.Close()

	assert.Equal(t, path, d.Path())
	assert.FileExists(t, path)
}

func TestFeedbackRangeEnforced(t *testing.T) {
	d, err := OpenMemory()
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Exec(`INSERT INTO qa_queries (question, response, user_feedback) VALUES ('q', 'r', 6)`)
	assert.Error(t, err)
}

func TestOpenAppliesPragmas(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "autoqa.db"))
	require.NoError(t, err)
	defer d.Close()

	var foreignKeys, busyTimeout int
	var journalMode string
	require.NoError(t, d.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.NoError(t, d.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout))
	require.NoError(t, d.QueryRow("PRAGMA journal_mode").Scan(&journalMode))

	assert.Equal(t, 1, foreignKeys)
	assert.Equal(t, 5000, busyTimeout)
	assert.Equal(t, "wal", journalMode)
}

func TestForeignKeysEnforced(t *testing.T) {
	for name, open := range map[string]func() (*DB, error){
		"file":   func() (*DB, error) { return Open(filepath.Join(t.TempDir(), "autoqa.db")) },
		"memory": OpenMemory,
	} {
		t.Run(name, func(t *testing.T) {
			d, err := open()
			require.NoError(t, err)
			defer d.Close()

			_, err = d.Exec(`INSERT INTO qa_queries (question, response, team_id, response_time, created_at)
				VALUES ('q', 'r', 424242, 0, CURRENT_TIMESTAMP)`)
			require.Error(t, err)
			assert.True(t, IsForeignKeyViolation(fmt.Errorf("wrapped: %w", err)))
		})
	}
}

func TestConcurrentWrites(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "autoqa.db"))
	require.NoError(t, err)
	defer d.Close()

	const writers = 32
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := d.Exec(`INSERT INTO teams (name) VALUES (?)`, fmt.Sprintf("team-%d", i))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	var count int
	require.NoError(t, d.QueryRow("SELECT COUNT(*) FROM teams").Scan(&count))
	assert.Equal(t, writers, count)
}
