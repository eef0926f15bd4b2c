package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorobed/hw3-api/internal/core/shorturl"
)

// testStore connects to the database named by HW3_TEST_DATABASE_URL.
// Tests are skipped when the variable is unset, so the suite stays runnable
// without a local Postgres.
func testStore(t *testing.T) *PostgresStore {
	t.Helper()

	dsn := os.Getenv("HW3_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("HW3_TEST_DATABASE_URL not set")
	}

	s, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testLink(t *testing.T, s *PostgresStore, original string) shorturl.Link {
	t.Helper()

	link := shorturl.NewLink(shorturl.GenerateCode(), original, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, s.CreateLink(context.Background(), &link))
	t.Cleanup(func() { _ = s.DeleteLink(context.Background(), link.Code) })
	return link
}

func TestCreateAndGetLink(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	link := testLink(t, s, "https://example.com/created")

	got, err := s.GetLink(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, link.Code, got.Code)
	assert.Equal(t, link.Original, got.Original)
	assert.Zero(t, got.Hits)
	assert.Nil(t, got.LastAccessAt)
}

func TestCreateLinkDuplicateCode(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	link := testLink(t, s, "https://example.com/dup")

	again := shorturl.NewLink(link.Code, "https://example.com/other", time.Now())
	err := s.CreateLink(ctx, &again)
	assert.ErrorIs(t, err, ErrDuplicateCode)
}

func TestGetLinkNotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetLink(context.Background(), "no-such-code")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByOriginal(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	original := fmt.Sprintf("https://example.com/find-%d", time.Now().UnixNano())
	first := testLink(t, s, original)
	second := testLink(t, s, original)

	links, err := s.FindByOriginal(ctx, original)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, first.Code, links[0].Code)
	assert.Equal(t, second.Code, links[1].Code)

	empty, err := s.FindByOriginal(ctx, "https://example.com/never-registered")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUpdateOriginal(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	link := testLink(t, s, "https://example.com/before")

	updated, err := s.UpdateOriginal(ctx, link.Code, "https://example.com/after")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/after", updated.Original)
	assert.Equal(t, link.Code, updated.Code)

	_, err = s.UpdateOriginal(ctx, "no-such-code", "https://example.com/x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteLink(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	link := shorturl.NewLink(shorturl.GenerateCode(), "https://example.com/delete", time.Now())
	require.NoError(t, s.CreateLink(ctx, &link))

	require.NoError(t, s.DeleteLink(ctx, link.Code))

	_, err := s.GetLink(ctx, link.Code)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteLink(ctx, link.Code), ErrNotFound)
}

func TestRecordHit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	link := testLink(t, s, "https://example.com/hits")

	at := time.Now().UTC().Truncate(time.Microsecond)
	first, err := s.RecordHit(ctx, link.Code, at)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Hits)
	require.NotNil(t, first.LastAccessAt)
	assert.True(t, first.LastAccessAt.Equal(at))

	second, err := s.RecordHit(ctx, link.Code, at.Add(time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Hits)

	_, err = s.RecordHit(ctx, "no-such-code", at)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPing(t *testing.T) {
	s := testStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
