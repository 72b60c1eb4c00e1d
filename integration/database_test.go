//go:build database

package integration

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestGitwalkWithMySQL tests the gitwalk CLI with a MySQL backend.
func TestGitwalkWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "gitwalk",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	// parseTime is required so DATETIME columns scan into time.Time.
	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/gitwalk?parseTime=true", host, port.Port())
	exerciseBackends(t, "mysql", connStr)
}

// TestGitwalkWithPostgres tests the gitwalk CLI with a PostgreSQL backend.
func TestGitwalkWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseBackends(t, "postgresql", connStr)
}

// exerciseBackends runs the store management commands around a cached log and
// a journaled walk. Cache and journal share one database; their tables differ.
func exerciseBackends(t *testing.T, backend, connStr string) {
	repo := fixtureRepo(t)
	t.Setenv("GITWALK_CACHE_BACKEND", backend)
	t.Setenv("GITWALK_CACHE_DB_CONNECT", connStr)
	t.Setenv("GITWALK_JOURNAL_BACKEND", backend)
	t.Setenv("GITWALK_JOURNAL_DB_CONNECT", connStr)

	_, err := runGitwalk(t, repo, "journal", "migrate")
	require.NoError(t, err)
	_, err = runGitwalk(t, repo, "cache", "clear")
	require.NoError(t, err)
	_, err = runGitwalk(t, repo, "journal", "clear")
	require.NoError(t, err)
	_, err = runGitwalk(t, repo, "journal", "migrate")
	require.NoError(t, err)

	// A second log run is served from the cache and must print the same history.
	first, err := runGitwalk(t, repo, "log", "--output", "json")
	require.NoError(t, err)
	second, err := runGitwalk(t, repo, "log", "--output", "json")
	require.NoError(t, err)
	assert.JSONEq(t, first, second)

	out, err := runGitwalk(t, repo, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, backend)

	_, err = runGitwalk(t, repo, "walk", "--limit", "2")
	require.NoError(t, err)

	out, err = runGitwalk(t, repo, "journal", "status")
	require.NoError(t, err)
	assert.Contains(t, out, backend)

	exportBase := t.TempDir() + "/walks"
	_, err = runGitwalk(t, repo, "journal", "export", "--output-file", exportBase)
	require.NoError(t, err)
	assert.FileExists(t, exportBase+".walk_runs.parquet")
	assert.FileExists(t, exportBase+".commit_visits.parquet")

	branch, err := exec.Command("git", "-C", repo, "rev-parse", "--abbrev-ref", "HEAD").Output()
	require.NoError(t, err)
	assert.Equal(t, "master", strings.TrimSpace(string(branch)), "walk restores the default branch")
}
