package simplecms_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
	repomemory "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	storememory "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

func newTestService(t *testing.T) (simplecms.Service, *storememory.Store) {
	t.Helper()

	store := storememory.New()
	svc, err := simplecms.New(
		simplecms.WithRepository(repomemory.New()),
		simplecms.WithMediaStore(store),
	)
	require.NoError(t, err)
	return svc, store
}

func TestService_CreateRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("sequential ids per kind", func(t *testing.T) {
		first, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
			Kind:  simplecms.KindEvent,
			Patch: simplecms.RecordPatch{Title: strPtr("My First Event")},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, "my-first-event", first.Slug)
		assert.Equal(t, "upcoming", first.Status)

		second, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
			Kind:  simplecms.KindEvent,
			Patch: simplecms.RecordPatch{Title: strPtr("My Second Event")},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), second.ID)

		// A different kind has its own sequence.
		blog, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
			Kind:  simplecms.KindBlog,
			Patch: simplecms.RecordPatch{Title: strPtr("Hello Blog")},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), blog.ID)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		_, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
			Kind:  simplecms.KindEvent,
			Patch: simplecms.RecordPatch{Title: strPtr("My First Event")},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, simplecms.ErrDuplicateSlug))
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		_, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
			Kind:  simplecms.Kind("podcast"),
			Patch: simplecms.RecordPatch{Title: strPtr("Nope")},
		})
		assert.True(t, errors.Is(err, simplecms.ErrNotFound))
	})
}

func TestService_CreateRecordWithUploads(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	record, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
		Kind:  simplecms.KindWork,
		Patch: simplecms.RecordPatch{Title: strPtr("Portfolio Piece")},
		Image: &simplecms.Upload{
			Reader:   strings.NewReader("primary-bytes"),
			FileName: "cover.jpg",
			MimeType: "image/jpeg",
		},
		Gallery: []simplecms.Upload{
			{Reader: strings.NewReader("g-one"), FileName: "one.jpg"},
			{Reader: strings.NewReader("g-two"), FileName: "two.jpg"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	assert.NotEmpty(t, record.Image.PublicID)
	assert.True(t, strings.HasPrefix(record.Image.PublicID, "works/"))

	require.Len(t, record.Gallery, 2)
	// Gallery order follows the request order.
	assert.Contains(t, record.Gallery[0].PublicID, "one.jpg")
	assert.Contains(t, record.Gallery[1].PublicID, "two.jpg")

	data, ok := store.Get(record.Image.PublicID)
	require.True(t, ok)
	assert.Equal(t, "primary-bytes", string(data))
}

func TestService_UpdateRecord(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
		Kind:  simplecms.KindEvent,
		Patch: simplecms.RecordPatch{Title: strPtr("My First Event"), Summary: strPtr("original")},
		Image: &simplecms.Upload{Reader: strings.NewReader("old"), FileName: "old.jpg"},
	})
	require.NoError(t, err)

	t.Run("title update re-derives slug and keeps id", func(t *testing.T) {
		updated, err := svc.UpdateRecord(ctx, simplecms.UpdateRecordRequest{
			Kind:  simplecms.KindEvent,
			ID:    created.ID,
			Patch: simplecms.RecordPatch{Title: strPtr("Renamed Event")},
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "renamed-event", updated.Slug)
		assert.Equal(t, "original", updated.Summary)

		_, err = svc.GetRecordBySlug(ctx, simplecms.KindEvent, "my-first-event")
		assert.True(t, errors.Is(err, simplecms.ErrNotFound))

		found, err := svc.GetRecordBySlug(ctx, simplecms.KindEvent, "renamed-event")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("replaced image cleaned up", func(t *testing.T) {
		before, err := svc.GetRecord(ctx, simplecms.KindEvent, created.ID)
		require.NoError(t, err)
		oldID := before.Image.PublicID
		require.NotEmpty(t, oldID)

		updated, err := svc.UpdateRecord(ctx, simplecms.UpdateRecordRequest{
			Kind:  simplecms.KindEvent,
			ID:    created.ID,
			Image: &simplecms.Upload{Reader: strings.NewReader("new"), FileName: "new.jpg"},
		})
		require.NoError(t, err)
		assert.NotEqual(t, oldID, updated.Image.PublicID)

		_, exists := store.Get(oldID)
		assert.False(t, exists, "replaced asset should be deleted")
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := svc.UpdateRecord(ctx, simplecms.UpdateRecordRequest{
			Kind:  simplecms.KindEvent,
			ID:    999,
			Patch: simplecms.RecordPatch{Summary: strPtr("x")},
		})
		assert.True(t, errors.Is(err, simplecms.ErrNotFound))
	})
}

func TestService_DeleteRecord(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
		Kind:  simplecms.KindSlide,
		Patch: simplecms.RecordPatch{Title: strPtr("Homepage Hero")},
		Image: &simplecms.Upload{Reader: strings.NewReader("img"), FileName: "hero.jpg"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	require.NoError(t, svc.DeleteRecord(ctx, simplecms.KindSlide, created.ID))

	_, err = svc.GetRecord(ctx, simplecms.KindSlide, created.ID)
	assert.True(t, errors.Is(err, simplecms.ErrNotFound))

	// Assets are cleaned up best-effort.
	assert.Equal(t, 0, store.Len())

	// The slug is free for reuse after deletion.
	recreated, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
		Kind:  simplecms.KindSlide,
		Patch: simplecms.RecordPatch{Title: strPtr("Homepage Hero")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), recreated.ID)
}

func TestService_TrackView(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{
		Kind:  simplecms.KindBlog,
		Patch: simplecms.RecordPatch{Title: strPtr("Counted Post")},
	})
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		count, err := svc.TrackView(ctx, simplecms.KindBlog, created.ID)
		require.NoError(t, err)
		assert.Equal(t, want, count)
	}

	t.Run("view count survives updates", func(t *testing.T) {
		updated, err := svc.UpdateRecord(ctx, simplecms.UpdateRecordRequest{
			Kind:  simplecms.KindBlog,
			ID:    created.ID,
			Patch: simplecms.RecordPatch{Summary: strPtr("edited")},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated.ViewCount)
	})
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	author, err := svc.CreateAuthor(ctx, simplecms.CreateAuthorRequest{
		Email:    "admin@example.com",
		Name:     "Admin",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, author.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", author.PasswordHash)

	t.Run("valid credentials", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "admin@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, author.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "admin@example.com", "wrong")
		assert.True(t, errors.Is(err, simplecms.ErrInvalidCredentials))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
		assert.True(t, errors.Is(err, simplecms.ErrInvalidCredentials))
	})
}

func TestService_ListRecords(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc, err := simplecms.New(
		simplecms.WithRepository(repomemory.New()),
		simplecms.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Minute)
		}),
	)
	require.NoError(t, err)
	ctx := context.Background()

	featured := true
	for _, title := range []string{"Post One", "Post Two", "Post Three"} {
		patch := simplecms.RecordPatch{Title: strPtr(title), Tags: listPtr("go")}
		if title == "Post Two" {
			patch.Featured = &featured
		}
		_, err := svc.CreateRecord(ctx, simplecms.CreateRecordRequest{Kind: simplecms.KindBlog, Patch: patch})
		require.NoError(t, err)
	}

	t.Run("newest first", func(t *testing.T) {
		records, err := svc.ListRecords(ctx, simplecms.KindBlog, simplecms.RecordFilters{})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "Post Three", records[0].Title)
		assert.Equal(t, "Post One", records[2].Title)
	})

	t.Run("featured filter", func(t *testing.T) {
		records, err := svc.ListRecords(ctx, simplecms.KindBlog, simplecms.RecordFilters{Featured: &featured})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Post Two", records[0].Title)
	})

	t.Run("pagination", func(t *testing.T) {
		limit, offset := 1, 1
		records, err := svc.ListRecords(ctx, simplecms.KindBlog, simplecms.RecordFilters{Limit: &limit, Offset: &offset})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Post Two", records[0].Title)
	})
}
