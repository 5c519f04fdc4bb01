package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"microblog/internal/schemas"
)

func createUser(t *testing.T, store Store, username string) *schemas.User {
	t.Helper()
	now := time.Now().UTC()
	user := &schemas.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		LastSeen:  now,
		CreatedAt: now,
	}
	require.NoError(t, user.SetPassword("secret"))
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func createPost(t *testing.T, store Store, author *schemas.User, body string, at time.Time) *schemas.Post {
	t.Helper()
	post := &schemas.Post{ID: uuid.New(), AuthorID: author.ID, Body: body, CreatedAt: at}
	require.NoError(t, store.Posts().Create(context.Background(), post))
	return post
}

func postBodies(posts []*schemas.Post) []string {
	bodies := make([]string, 0, len(posts))
	for _, p := range posts {
		bodies = append(bodies, p.Body)
	}
	return bodies
}

func TestFollowIsIdempotentAndReversible(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	john := createUser(t, store, "john")
	susan := createUser(t, store, "susan")
	graph := store.Followers()

	following, err := graph.IsFollowing(ctx, john.ID, susan.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, graph.Follow(ctx, john.ID, susan.ID))
	following, _ = graph.IsFollowing(ctx, john.ID, susan.ID)
	assert.True(t, following)
	followers, _ := graph.FollowerCount(ctx, susan.ID)
	assert.Equal(t, 1, followers)
	followed, _ := graph.FollowingCount(ctx, john.ID)
	assert.Equal(t, 1, followed)

	require.NoError(t, graph.Follow(ctx, john.ID, susan.ID))
	followers, _ = graph.FollowerCount(ctx, susan.ID)
	assert.Equal(t, 1, followers, "second follow must not change the count")

	reverse, _ := graph.IsFollowing(ctx, susan.ID, john.ID)
	assert.False(t, reverse, "edges are directed")

	require.NoError(t, graph.Unfollow(ctx, john.ID, susan.ID))
	require.NoError(t, graph.Unfollow(ctx, john.ID, susan.ID))
	following, _ = graph.IsFollowing(ctx, john.ID, susan.ID)
	assert.False(t, following)
	followers, _ = graph.FollowerCount(ctx, susan.ID)
	assert.Equal(t, 0, followers)
	followed, _ = graph.FollowingCount(ctx, john.ID)
	assert.Equal(t, 0, followed)
}

func TestFollowSelfIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	john := createUser(t, store, "john")

	require.NoError(t, store.Followers().Follow(ctx, john.ID, john.ID))
	following, _ := store.Followers().IsFollowing(ctx, john.ID, john.ID)
	assert.False(t, following)
}

func TestFollowedPostsScenario(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	mark := createUser(t, store, "mark")
	henry := createUser(t, store, "henry")
	mary := createUser(t, store, "mary")
	david := createUser(t, store, "david")

	now := time.Now().UTC()
	createPost(t, store, mark, "p1", now.Add(1*time.Second))
	createPost(t, store, henry, "p2", now.Add(4*time.Second))
	createPost(t, store, mary, "p3", now.Add(3*time.Second))
	createPost(t, store, david, "p4", now.Add(2*time.Second))

	graph := store.Followers()
	require.NoError(t, graph.Follow(ctx, mark.ID, henry.ID))
	require.NoError(t, graph.Follow(ctx, mark.ID, david.ID))
	require.NoError(t, graph.Follow(ctx, henry.ID, mary.ID))
	require.NoError(t, graph.Follow(ctx, mary.ID, david.ID))

	testCases := []struct {
		user *schemas.User
		want []string
	}{
		{mark, []string{"p2", "p4", "p1"}},
		{henry, []string{"p2", "p3"}},
		{mary, []string{"p3", "p4"}},
		{david, []string{"p4"}},
	}

	for _, tc := range testCases {
		t.Run(tc.user.Username, func(t *testing.T) {
			posts, total, err := store.Posts().ListFollowed(ctx, tc.user.ID, 0, 25)
			require.NoError(t, err)
			assert.Equal(t, len(tc.want), total)
			if diff := cmp.Diff(tc.want, postBodies(posts)); diff != "" {
				t.Errorf("followed posts mismatch (-want +got):\n%s", diff)
			}
			for _, p := range posts {
				require.NotNil(t, p.Author)
				assert.Equal(t, p.AuthorID, p.Author.ID)
			}
		})
	}
}

func TestFollowedPostsAlwaysIncludeOwnAndExcludeStrangers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	carol := createUser(t, store, "carol")

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		createPost(t, store, alice, "alice", base.Add(time.Duration(3*i)*time.Second))
		createPost(t, store, bob, "bob", base.Add(time.Duration(3*i+1)*time.Second))
		createPost(t, store, carol, "carol", base.Add(time.Duration(3*i+2)*time.Second))
	}
	require.NoError(t, store.Followers().Follow(ctx, alice.ID, bob.ID))

	posts, total, err := store.Posts().ListFollowed(ctx, alice.ID, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	for i, p := range posts {
		assert.NotEqual(t, carol.ID, p.AuthorID)
		if i > 0 {
			assert.True(t, posts[i-1].CreatedAt.After(p.CreatedAt), "strictly descending timestamps")
		}
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice := createUser(t, store, "alice")

	base := time.Now().UTC()
	for i, body := range []string{"a", "b", "c", "d", "e"} {
		createPost(t, store, alice, body, base.Add(time.Duration(i)*time.Second))
	}

	page, total, err := store.Posts().ListAll(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"c", "b"}, postBodies(page))

	page, _, err = store.Posts().ListByAuthor(ctx, alice.ID, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, postBodies(page))

	page, total, err = store.Posts().ListByAuthor(ctx, alice.ID, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, page)
}

func TestEqualTimestampsKeepNewestInsertFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	alice := createUser(t, store, "alice")

	at := time.Now().UTC()
	createPost(t, store, alice, "first", at)
	createPost(t, store, alice, "second", at)

	posts, _, err := store.Posts().ListAll(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, postBodies(posts))
}

func TestUserUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	susan := createUser(t, store, "susan")

	duplicateName := &schemas.User{ID: uuid.New(), Username: "susan", Email: "other@example.com"}
	assert.ErrorIs(t, store.Users().Create(ctx, duplicateName), ErrConflict)

	duplicateEmail := &schemas.User{ID: uuid.New(), Username: "other", Email: "SUSAN@example.com"}
	assert.ErrorIs(t, store.Users().Create(ctx, duplicateEmail), ErrConflict)

	taken, err := store.Users().EmailTaken(ctx, " Susan@Example.com ")
	require.NoError(t, err)
	assert.True(t, taken)

	found, err := store.Users().GetByEmail(ctx, "SUSAN@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, susan.ID, found.ID)

	_, err = store.Users().GetByUsername(ctx, "Susan")
	assert.ErrorIs(t, err, ErrNotFound, "usernames are case sensitive")

	other := createUser(t, store, "other")
	assert.ErrorIs(t, store.Users().UpdateProfile(ctx, other.ID, "susan", ""), ErrConflict)
	assert.NoError(t, store.Users().UpdateProfile(ctx, susan.ID, "susan", "hello"))
}

func TestUsersAreCopiedOut(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	susan := createUser(t, store, "susan")

	loaded, err := store.Users().GetByID(ctx, susan.ID)
	require.NoError(t, err)
	loaded.AboutMe = "mutated"

	reloaded, err := store.Users().GetByID(ctx, susan.ID)
	require.NoError(t, err)
	assert.Empty(t, reloaded.AboutMe)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	john := createUser(t, store, "john")
	susan := createUser(t, store, "susan")

	failure := errors.New("boom")
	err := store.WithTx(ctx, func(tx Store) error {
		require.NoError(t, tx.Followers().Follow(ctx, john.ID, susan.ID))
		require.NoError(t, tx.Users().UpdateProfile(ctx, john.ID, "johnny", "changed"))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	following, _ := store.Followers().IsFollowing(ctx, john.ID, susan.ID)
	assert.False(t, following)
	reloaded, _ := store.Users().GetByID(ctx, john.ID)
	assert.Equal(t, "john", reloaded.Username)
}

func TestWithTxCommitsAndRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	john := createUser(t, store, "john")
	susan := createUser(t, store, "susan")

	require.NoError(t, store.WithTx(ctx, func(tx Store) error {
		return tx.WithTx(ctx, func(nested Store) error {
			return nested.Followers().Follow(ctx, john.ID, susan.ID)
		})
	}))
	following, _ := store.Followers().IsFollowing(ctx, john.ID, susan.ID)
	assert.True(t, following)

	assert.Panics(t, func() {
		_ = store.WithTx(ctx, func(tx Store) error {
			_ = tx.Followers().Unfollow(ctx, john.ID, susan.ID)
			panic("boom")
		})
	})
	following, _ = store.Followers().IsFollowing(ctx, john.ID, susan.ID)
	assert.True(t, following)
}

func TestUpdatesOnUnknownUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	unknown := uuid.New()

	assert.ErrorIs(t, store.Users().UpdatePassword(ctx, unknown, "old", "new"), ErrNotFound)
	assert.ErrorIs(t, store.Users().TouchLastSeen(ctx, unknown, time.Now()), ErrNotFound)
	assert.ErrorIs(t, store.Posts().Create(ctx, &schemas.Post{ID: uuid.New(), AuthorID: unknown, Body: "x"}), ErrNotFound)
}

func TestUpdatePasswordOnlyReplacesTheExpectedHash(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	susan := createUser(t, store, "susan")
	oldHash := susan.PasswordHash

	var wg sync.WaitGroup
	var updated atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if store.Users().UpdatePassword(ctx, susan.ID, oldHash, fmt.Sprintf("hash-%d", i)) == nil {
				updated.Add(1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), updated.Load())

	stored, err := store.Users().GetByID(ctx, susan.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldHash, stored.PasswordHash)
	assert.ErrorIs(t, store.Users().UpdatePassword(ctx, susan.ID, oldHash, "again"), ErrNotFound)
}
