package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"microblog/internal/schemas"
)

type edge struct {
	follower uuid.UUID
	followed uuid.UUID
}

type memoryState struct {
	users map[uuid.UUID]schemas.User
	posts []schemas.Post // insertion order
	edges map[edge]struct{}
}

func (st *memoryState) clone() *memoryState {
	c := &memoryState{
		users: make(map[uuid.UUID]schemas.User, len(st.users)),
		posts: append([]schemas.Post(nil), st.posts...),
		edges: make(map[edge]struct{}, len(st.edges)),
	}
	for id, u := range st.users {
		c.users[id] = u
	}
	for e := range st.edges {
		c.edges[e] = struct{}{}
	}
	return c
}

// MemoryStore keeps everything in process memory. It backs development runs without a database and the tests.
// WithTx holds the write lock for the whole unit of work and restores a snapshot when it fails.
type MemoryStore struct {
	mu    *sync.RWMutex
	state *memoryState
	inTx  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu: &sync.RWMutex{},
		state: &memoryState{
			users: map[uuid.UUID]schemas.User{},
			edges: map[edge]struct{}{},
		},
	}
}

func (s *MemoryStore) read(fn func(st *memoryState) error) error {
	if !s.inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.state)
}

func (s *MemoryStore) write(fn func(st *memoryState) error) error {
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(s.state)
}

func (s *MemoryStore) Users() UserRepository {
	return &memoryUsers{s: s}
}

func (s *MemoryStore) Posts() PostRepository {
	return &memoryPosts{s: s}
}

func (s *MemoryStore) Followers() FollowRepository {
	return &memoryFollowers{s: s}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	restore := func() {
		*s.state = *snapshot
	}
	defer func() {
		if p := recover(); p != nil {
			restore()
			panic(p)
		}
	}()

	if err := fn(&MemoryStore{mu: s.mu, state: s.state, inTx: true}); err != nil {
		restore()
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

type memoryUsers struct {
	s *MemoryStore
}

func (r *memoryUsers) Create(_ context.Context, user *schemas.User) error {
	return r.s.write(func(st *memoryState) error {
		email := schemas.NormalizeEmail(user.Email)
		for _, existing := range st.users {
			if existing.Username == user.Username || existing.Email == email || existing.ID == user.ID {
				return ErrConflict
			}
		}
		stored := *user
		stored.Email = email
		st.users[user.ID] = stored
		return nil
	})
}

func (r *memoryUsers) find(match func(u *schemas.User) bool) (*schemas.User, error) {
	var found *schemas.User
	err := r.s.read(func(st *memoryState) error {
		for _, u := range st.users {
			if match(&u) {
				copied := u
				found = &copied
				return nil
			}
		}
		return ErrNotFound
	})
	return found, err
}

func (r *memoryUsers) GetByID(_ context.Context, id uuid.UUID) (*schemas.User, error) {
	return r.find(func(u *schemas.User) bool { return u.ID == id })
}

func (r *memoryUsers) GetByUsername(_ context.Context, username string) (*schemas.User, error) {
	return r.find(func(u *schemas.User) bool { return u.Username == username })
}

func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*schemas.User, error) {
	email = schemas.NormalizeEmail(email)
	return r.find(func(u *schemas.User) bool { return u.Email == email })
}

func (r *memoryUsers) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return taken(r.GetByUsername(ctx, username))
}

func (r *memoryUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	return taken(r.GetByEmail(ctx, email))
}

func taken(_ *schemas.User, err error) (bool, error) {
	switch err {
	case nil:
		return true, nil
	case ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (r *memoryUsers) update(id uuid.UUID, mutate func(st *memoryState, u *schemas.User) error) error {
	return r.s.write(func(st *memoryState) error {
		u, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		if err := mutate(st, &u); err != nil {
			return err
		}
		st.users[id] = u
		return nil
	})
}

func (r *memoryUsers) UpdateProfile(_ context.Context, id uuid.UUID, username, aboutMe string) error {
	return r.update(id, func(st *memoryState, u *schemas.User) error {
		for otherID, other := range st.users {
			if otherID != id && other.Username == username {
				return ErrConflict
			}
		}
		u.Username = username
		u.AboutMe = aboutMe
		return nil
	})
}

func (r *memoryUsers) UpdatePassword(_ context.Context, id uuid.UUID, oldHash, newHash string) error {
	return r.update(id, func(_ *memoryState, u *schemas.User) error {
		if u.PasswordHash != oldHash {
			return ErrNotFound
		}
		u.PasswordHash = newHash
		return nil
	})
}

func (r *memoryUsers) TouchLastSeen(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, func(_ *memoryState, u *schemas.User) error {
		u.LastSeen = at
		return nil
	})
}

type memoryPosts struct {
	s *MemoryStore
}

func (r *memoryPosts) Create(_ context.Context, post *schemas.Post) error {
	return r.s.write(func(st *memoryState) error {
		if _, ok := st.users[post.AuthorID]; !ok {
			return ErrNotFound
		}
		stored := *post
		stored.Author = nil
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = time.Now().UTC()
		}
		st.posts = append(st.posts, stored)
		return nil
	})
}

// list filters the posts, orders them newest first and cuts one page. Posts with equal timestamps
// keep reverse insertion order.
func (r *memoryPosts) list(offset, limit int, keep func(st *memoryState, p *schemas.Post) bool) ([]*schemas.Post, int, error) {
	var page []*schemas.Post
	var total int

	err := r.s.read(func(st *memoryState) error {
		matched := make([]*schemas.Post, 0)
		for i := len(st.posts) - 1; i >= 0; i-- {
			p := st.posts[i]
			if !keep(st, &p) {
				continue
			}
			author := st.users[p.AuthorID]
			p.Author = &author
			matched = append(matched, &p)
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})

		total = len(matched)
		page = paginate(matched, offset, limit)
		return nil
	})
	return page, total, err
}

func paginate(posts []*schemas.Post, offset, limit int) []*schemas.Post {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(posts) || limit <= 0 {
		return []*schemas.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

func (r *memoryPosts) ListAll(_ context.Context, offset, limit int) ([]*schemas.Post, int, error) {
	return r.list(offset, limit, func(*memoryState, *schemas.Post) bool { return true })
}

func (r *memoryPosts) ListByAuthor(_ context.Context, authorID uuid.UUID, offset, limit int) ([]*schemas.Post, int, error) {
	return r.list(offset, limit, func(_ *memoryState, p *schemas.Post) bool { return p.AuthorID == authorID })
}

func (r *memoryPosts) ListFollowed(_ context.Context, userID uuid.UUID, offset, limit int) ([]*schemas.Post, int, error) {
	return r.list(offset, limit, func(st *memoryState, p *schemas.Post) bool {
		if p.AuthorID == userID {
			return true
		}
		_, follows := st.edges[edge{follower: userID, followed: p.AuthorID}]
		return follows
	})
}

type memoryFollowers struct {
	s *MemoryStore
}

func (r *memoryFollowers) Follow(_ context.Context, followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return nil
	}
	return r.s.write(func(st *memoryState) error {
		if _, ok := st.users[followerID]; !ok {
			return ErrNotFound
		}
		if _, ok := st.users[followedID]; !ok {
			return ErrNotFound
		}
		st.edges[edge{follower: followerID, followed: followedID}] = struct{}{}
		return nil
	})
}

func (r *memoryFollowers) Unfollow(_ context.Context, followerID, followedID uuid.UUID) error {
	return r.s.write(func(st *memoryState) error {
		delete(st.edges, edge{follower: followerID, followed: followedID})
		return nil
	})
}

func (r *memoryFollowers) IsFollowing(_ context.Context, followerID, followedID uuid.UUID) (bool, error) {
	var following bool
	err := r.s.read(func(st *memoryState) error {
		_, following = st.edges[edge{follower: followerID, followed: followedID}]
		return nil
	})
	return following, err
}

func (r *memoryFollowers) count(match func(e edge) bool) (int, error) {
	var total int
	err := r.s.read(func(st *memoryState) error {
		for e := range st.edges {
			if match(e) {
				total++
			}
		}
		return nil
	})
	return total, err
}

func (r *memoryFollowers) FollowerCount(_ context.Context, userID uuid.UUID) (int, error) {
	return r.count(func(e edge) bool { return e.followed == userID })
}

func (r *memoryFollowers) FollowingCount(_ context.Context, userID uuid.UUID) (int, error) {
	return r.count(func(e edge) bool { return e.follower == userID })
}
