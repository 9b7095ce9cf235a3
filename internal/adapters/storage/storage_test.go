package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jsamuelsen/wellness-service/internal/domain"
	"github.com/jsamuelsen/wellness-service/internal/platform/config"
	"github.com/jsamuelsen/wellness-service/internal/ports"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(context.Background(), config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func newPost(title string, created time.Time) *domain.Post {
	return &domain.Post{
		ID:          uuid.NewString(),
		Author:      "alice",
		Title:       title,
		Description: "body",
		Categories:  "Nutrition",
		Tags:        []string{"vegetables", "recipes"},
		Votes:       domain.NewVotable(),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "mysql"}, nil)
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestDB_HealthChecker(t *testing.T) {
	db := openTestDB(t)

	var checker ports.HealthChecker = db
	assert.Equal(t, "database", checker.Name())
	assert.NoError(t, checker.Check(context.Background()))
}

func TestPostRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Posts()

	post := newPost("Leafy greens", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, post))

	err := repo.Create(ctx, post)
	require.True(t, domain.IsConflict(err), "got %v", err)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leafy greens", got.Title)
	assert.Equal(t, []string{"vegetables", "recipes"}, got.Tags)
	assert.Empty(t, got.Votes.Upvoters)

	got.Title = "Leafy greens, revisited"
	got.Tags = []string{"vegetables"}
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leafy greens, revisited", got.Title)
	assert.Equal(t, []string{"vegetables"}, got.Tags)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err = repo.GetByID(ctx, post.ID)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(repo.Delete(ctx, post.ID)))
	assert.True(t, domain.IsNotFound(repo.Update(ctx, got)))
}

func TestPostRepository_SaveVotes(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Posts()

	post := newPost("Sleep hygiene", time.Now().UTC())
	require.NoError(t, repo.Create(ctx, post))

	votes := post.Votes.Clone()
	_, err := domain.ApplyVote(&votes, "alice", domain.VoteUp)
	require.NoError(t, err)

	version := int64(0)
	require.NoError(t, repo.SaveVotes(ctx, post.ID, &votes, &version))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes.Score)
	assert.True(t, got.Votes.Upvoters.Has("alice"))
	assert.Equal(t, int64(1), got.Votes.Version)

	t.Run("stale version conflicts", func(t *testing.T) {
		stale := int64(0)
		err := repo.SaveVotes(ctx, post.ID, &votes, &stale)
		assert.True(t, domain.IsConflict(err), "got %v", err)
	})

	t.Run("without version last write wins", func(t *testing.T) {
		cleared := domain.NewVotable()
		require.NoError(t, repo.SaveVotes(ctx, post.ID, &cleared, nil))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Votes.Score)
		assert.Equal(t, int64(2), got.Votes.Version)
	})

	t.Run("missing post", func(t *testing.T) {
		err := repo.SaveVotes(ctx, "nope", &votes, nil)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestPostRepository_ListPages(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Posts()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, repo.Create(ctx, newPost(fmt.Sprintf("post %d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	first, err := repo.List(ctx, 2, nil)
	require.NoError(t, err)
	require.Len(t, first.Posts, 2)
	assert.True(t, first.HasMore)
	assert.Equal(t, "post 4", first.Posts[0].Title)
	assert.Equal(t, "post 3", first.Posts[1].Title)

	last := first.Posts[1]
	second, err := repo.List(ctx, 10, &ports.PostCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	require.NoError(t, err)
	require.Len(t, second.Posts, 3)
	assert.False(t, second.HasMore)
	assert.Equal(t, "post 2", second.Posts[0].Title)
	assert.Equal(t, "post 0", second.Posts[2].Title)

	_, err = repo.List(ctx, 0, nil)
	assert.True(t, domain.IsValidation(err))
}

func TestCommentRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	post := newPost("Walking daily", time.Now().UTC())
	require.NoError(t, db.Posts().Create(ctx, post))

	comments := db.Comments()
	for i, text := range []string{"great", "thanks"} {
		require.NoError(t, comments.Create(ctx, &domain.Comment{
			ID:        uuid.NewString(),
			PostID:    post.ID,
			Author:    "bob",
			Content:   text,
			Votes:     domain.NewVotable(),
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	list, err := comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "great", list[0].Content)

	votes := list[1].Votes.Clone()
	_, err = domain.ApplyVote(&votes, "carol", domain.VoteDown)
	require.NoError(t, err)
	require.NoError(t, comments.SaveVotes(ctx, list[1].ID, &votes, &list[1].Votes.Version))

	got, err := comments.GetByID(ctx, list[1].ID)
	require.NoError(t, err)
	assert.Equal(t, -1, got.Votes.Score)
	assert.True(t, got.Votes.Downvoters.Has("carol"))

	_, err = comments.GetByID(ctx, "missing")
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, db.Posts().Delete(ctx, post.ID))

	list, err = comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProfileRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := openTestDB(t).Profiles()

	_, err := repo.GetByUsername(ctx, "dana")
	require.True(t, domain.IsNotFound(err))

	require.NoError(t, repo.Upsert(ctx, &domain.HealthProfile{
		Username:      "dana",
		CurrentStatus: "training for a 10k",
		Goals:         []string{"run faster"},
		UpdatedAt:     time.Now().UTC(),
	}))

	require.NoError(t, repo.Upsert(ctx, &domain.HealthProfile{
		Username:      "dana",
		CurrentStatus: "recovering",
		Conditions:    []string{"shin splints"},
		Goals:         []string{"eat more protein"},
		UpdatedAt:     time.Now().UTC(),
	}))

	got, err := repo.GetByUsername(ctx, "dana")
	require.NoError(t, err)
	assert.Equal(t, "recovering", got.CurrentStatus)
	assert.Equal(t, []string{"shin splints"}, got.Conditions)
	assert.Equal(t, []string{"eat more protein"}, got.Goals)
}

func TestMapError(t *testing.T) {
	tests := map[string]struct {
		err   error
		check func(error) bool
	}{
		"record not found": {
			err:   gorm.ErrRecordNotFound,
			check: domain.IsNotFound,
		},
		"duplicate key": {
			err:   gorm.ErrDuplicatedKey,
			check: domain.IsConflict,
		},
		"serialization failure": {
			err:   fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}),
			check: domain.IsConflict,
		},
		"deadlock": {
			err:   &pgconn.PgError{Code: "40P01"},
			check: domain.IsConflict,
		},
		"other postgres error": {
			err: &pgconn.PgError{Code: "23502"},
			check: func(err error) bool {
				return !domain.IsConflict(err) && !domain.IsNotFound(err)
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := mapError(tt.err, "post", "p-1", "saving")
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	assert.NoError(t, mapError(nil, "post", "p-1", "saving"))

	wrapped := mapError(errors.New("disk full"), "post", "p-1", "saving")
	assert.EqualError(t, wrapped, "saving post: disk full")
}
