// Package memory is a map-backed implementation of the repository contract.
// It serves STORE_DRIVER=memory deployments and the test suites.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
)

type pair struct{ a, b uuid.UUID }

type db struct {
	mu sync.RWMutex

	users        map[uuid.UUID]models.User
	confessions  map[uuid.UUID]models.Confession
	chapters     map[uuid.UUID]models.Chapter
	comments     map[uuid.UUID]models.Comment
	commentLikes map[pair]models.CommentLike
	likes        map[pair]models.Like
	bookmarks    map[pair]models.Bookmark
	follows      map[pair]models.Follow
	badges       map[uuid.UUID]models.Badge
	userBadges   map[pair]models.UserBadge
	reports      map[uuid.UUID]models.Report
	activity     []models.ActivityLog
	moderation   []models.ModerationLog
}

// New returns an empty store.
func New() *repository.Store {
	d := &db{
		users:        make(map[uuid.UUID]models.User),
		confessions:  make(map[uuid.UUID]models.Confession),
		chapters:     make(map[uuid.UUID]models.Chapter),
		comments:     make(map[uuid.UUID]models.Comment),
		commentLikes: make(map[pair]models.CommentLike),
		likes:        make(map[pair]models.Like),
		bookmarks:    make(map[pair]models.Bookmark),
		follows:      make(map[pair]models.Follow),
		badges:       make(map[uuid.UUID]models.Badge),
		userBadges:   make(map[pair]models.UserBadge),
		reports:      make(map[uuid.UUID]models.Report),
	}
	return &repository.Store{
		Users:       &userRepo{d},
		Confessions: &confessionRepo{d},
		Chapters:    &chapterRepo{d},
		Comments:    &commentRepo{d},
		Engagement:  &engagementRepo{d},
		Follows:     &followRepo{d},
		Badges:      &badgeRepo{d},
		Reports:     &reportRepo{d},
		Audit:       &auditRepo{d},
		Probe:       prober{},
	}
}

func now() time.Time { return time.Now().UTC() }

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func paginate[T any](items []T, p repository.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.Limit > 0 && p.Offset+p.Limit < end {
		end = p.Offset + p.Limit
	}
	return items[p.Offset:end]
}

func containsFold(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

// profile must be called with the lock held.
func (d *db) profile(id uuid.UUID) *models.Profile {
	u, ok := d.users[id]
	if !ok {
		return nil
	}
	return u.Profile()
}

// recountConfession refreshes the denormalized counters from their rows.
// Must be called with the write lock held.
func (d *db) recountConfession(id uuid.UUID) {
	c, ok := d.confessions[id]
	if !ok {
		return
	}
	var likes, comments, chapters int64
	for k := range d.likes {
		if k.b == id {
			likes++
		}
	}
	for _, cm := range d.comments {
		if cm.ConfessionID == id && cm.IsApproved {
			comments++
		}
	}
	for _, ch := range d.chapters {
		if ch.ConfessionID == id {
			chapters++
		}
	}
	c.TotalLikes, c.TotalComments, c.TotalChapters = likes, comments, chapters
	d.confessions[id] = c
}

func (d *db) recountComment(id uuid.UUID) {
	c, ok := d.comments[id]
	if !ok {
		return
	}
	var n int64
	for k := range d.commentLikes {
		if k.b == id {
			n++
		}
	}
	c.TotalLikes = n
	d.comments[id] = c
}

// deleteCommentLocked removes a comment, its replies and all their likes.
func (d *db) deleteCommentLocked(id uuid.UUID) {
	for cid, c := range d.comments {
		if c.ParentID != nil && *c.ParentID == id {
			d.deleteCommentLocked(cid)
		}
	}
	for k := range d.commentLikes {
		if k.b == id {
			delete(d.commentLikes, k)
		}
	}
	delete(d.comments, id)
}

func (d *db) deleteConfessionLocked(id uuid.UUID) {
	for cid, ch := range d.chapters {
		if ch.ConfessionID == id {
			delete(d.chapters, cid)
		}
	}
	for cid, c := range d.comments {
		if c.ConfessionID == id {
			d.deleteCommentLocked(cid)
		}
	}
	for k := range d.likes {
		if k.b == id {
			delete(d.likes, k)
		}
	}
	for k := range d.bookmarks {
		if k.b == id {
			delete(d.bookmarks, k)
		}
	}
	delete(d.confessions, id)
}

func (d *db) confessionOut(c models.Confession) models.Confession {
	c.Tags = append(c.Tags[:0:0], c.Tags...)
	c.Author = d.profile(c.AuthorID)
	c.Chapters = nil
	return c
}

func (d *db) commentOut(c models.Comment) models.Comment {
	c.User = d.profile(c.UserID)
	c.Replies = nil
	return c
}

type prober struct{}

func (prober) Ping(context.Context) error                      { return nil }
func (prober) MissingTables(context.Context) ([]string, error) { return nil, nil }

// ---------------------------------------------------------------- users

type userRepo struct{ d *db }

func (r *userRepo) conflicts(u *models.User) bool {
	for id, existing := range r.d.users {
		if id == u.ID {
			continue
		}
		if strings.EqualFold(existing.Email, u.Email) || existing.Username == u.Username {
			return true
		}
	}
	return false
}

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	ensureID(&u.ID)
	if r.conflicts(u) {
		return repository.ErrDuplicate
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt, u.UpdatedAt = now(), now()
	r.d.users[u.ID] = *u
	return nil
}

func (r *userRepo) find(match func(models.User) bool) (*models.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	for _, u := range r.d.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *userRepo) Save(_ context.Context, u *models.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(u) {
		return repository.ErrDuplicate
	}
	u.UpdatedAt = now()
	r.d.users[u.ID] = *u
	return nil
}

func (r *userRepo) Delete(_ context.Context, id uuid.UUID) error {
	d := r.d
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[id]; !ok {
		return repository.ErrNotFound
	}

	touched := map[uuid.UUID]bool{}
	for cid, c := range d.confessions {
		if c.AuthorID == id {
			d.deleteConfessionLocked(cid)
		}
	}
	for cid, c := range d.comments {
		if c.UserID == id {
			touched[c.ConfessionID] = true
			d.deleteCommentLocked(cid)
		}
	}
	for k := range d.likes {
		if k.a == id {
			touched[k.b] = true
			delete(d.likes, k)
		}
	}
	likedComments := map[uuid.UUID]bool{}
	for k := range d.commentLikes {
		if k.a == id {
			likedComments[k.b] = true
			delete(d.commentLikes, k)
		}
	}
	for k := range d.bookmarks {
		if k.a == id {
			delete(d.bookmarks, k)
		}
	}
	for k := range d.follows {
		if k.a == id || k.b == id {
			delete(d.follows, k)
		}
	}
	for k := range d.userBadges {
		if k.a == id {
			delete(d.userBadges, k)
		}
	}
	d.activity = slices.DeleteFunc(d.activity, func(l models.ActivityLog) bool { return l.UserID == id })

	for cid := range likedComments {
		d.recountComment(cid)
	}
	for cid := range touched {
		d.recountConfession(cid)
	}
	delete(d.users, id)
	return nil
}

func (r *userRepo) filter(f repository.UserFilter) []models.User {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []models.User
	for _, u := range r.d.users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Banned != nil && u.IsBanned != *f.Banned {
			continue
		}
		if !f.CreatedSince.IsZero() && u.CreatedAt.Before(f.CreatedSince) {
			continue
		}
		if search != "" && !containsFold(u.Username, search) && !containsFold(u.FullName, search) && !containsFold(u.Email, search) {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (r *userRepo) List(_ context.Context, f repository.UserFilter, p repository.Page) ([]models.User, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	all := r.filter(f)
	return slices.Clone(paginate(all, p)), int64(len(all)), nil
}

func (r *userRepo) Count(_ context.Context, f repository.UserFilter) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return int64(len(r.filter(f))), nil
}

// ---------------------------------------------------------------- confessions

type confessionRepo struct{ d *db }

func (r *confessionRepo) Create(_ context.Context, c *models.Confession) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	ensureID(&c.ID)
	if c.Status == "" {
		c.Status = models.StatusDraft
	}
	if c.Category == "" {
		c.Category = "general"
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	c.CreatedAt, c.UpdatedAt = now(), now()
	stored := *c
	stored.Author, stored.Chapters = nil, nil
	stored.Tags = append(c.Tags[:0:0], c.Tags...)
	r.d.confessions[c.ID] = stored
	c.Author = r.d.profile(c.AuthorID)
	return nil
}

func (r *confessionRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Confession, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	c, ok := r.d.confessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.d.confessionOut(c)
	return &out, nil
}

func (r *confessionRepo) Save(_ context.Context, c *models.Confession) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	existing, ok := r.d.confessions[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	// counters are owned by the toggle and view paths
	c.TotalViews, c.TotalLikes = existing.TotalViews, existing.TotalLikes
	c.TotalComments, c.TotalChapters = existing.TotalComments, existing.TotalChapters
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = now()
	stored := *c
	stored.Author, stored.Chapters = nil, nil
	stored.Tags = append(c.Tags[:0:0], c.Tags...)
	r.d.confessions[c.ID] = stored
	return nil
}

func (r *confessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.confessions[id]; !ok {
		return repository.ErrNotFound
	}
	r.d.deleteConfessionLocked(id)
	return nil
}

func compareConfessions(a, b models.Confession, field string) int {
	switch field {
	case repository.SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case repository.SortTotalViews:
		return cmp.Compare(a.TotalViews, b.TotalViews)
	case repository.SortTotalLikes:
		return cmp.Compare(a.TotalLikes, b.TotalLikes)
	case repository.SortTotalComments:
		return cmp.Compare(a.TotalComments, b.TotalComments)
	case repository.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func (r *confessionRepo) filter(q repository.ConfessionQuery) []models.Confession {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var out []models.Confession
	for _, c := range r.d.confessions {
		if q.AuthorID != nil && c.AuthorID != *q.AuthorID {
			continue
		}
		if len(q.Statuses) > 0 && !slices.Contains(q.Statuses, c.Status) {
			continue
		}
		if q.Category != "" && c.Category != q.Category {
			continue
		}
		if !q.CreatedSince.IsZero() && c.CreatedAt.Before(q.CreatedSince) {
			continue
		}
		if search != "" && !containsFold(c.Title, search) && !containsFold(c.Description, search) {
			continue
		}
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b models.Confession) int {
		n := compareConfessions(a, b, q.SortBy)
		if !q.Ascending {
			n = -n
		}
		if n == 0 {
			n = b.CreatedAt.Compare(a.CreatedAt)
		}
		return n
	})
	return out
}

func (r *confessionRepo) List(_ context.Context, q repository.ConfessionQuery, p repository.Page) ([]models.Confession, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	all := r.filter(q)
	page := paginate(all, p)
	out := make([]models.Confession, len(page))
	for i, c := range page {
		out[i] = r.d.confessionOut(c)
	}
	return out, int64(len(all)), nil
}

func (r *confessionRepo) Count(_ context.Context, q repository.ConfessionQuery) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return int64(len(r.filter(q))), nil
}

func (r *confessionRepo) IncrementViews(_ context.Context, id uuid.UUID) (int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c, ok := r.d.confessions[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	c.TotalViews++
	r.d.confessions[id] = c
	return c.TotalViews, nil
}

func (r *confessionRepo) TotalsForAuthor(_ context.Context, authorID uuid.UUID) (repository.AuthorTotals, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var t repository.AuthorTotals
	for _, c := range r.d.confessions {
		if c.AuthorID != authorID {
			continue
		}
		t.Confessions++
		if c.Status == models.StatusPublished {
			t.Published++
		}
		t.Views += c.TotalViews
		t.Likes += c.TotalLikes
		t.Comments += c.TotalComments
	}
	return t, nil
}

// ---------------------------------------------------------------- chapters

type chapterRepo struct{ d *db }

func (r *chapterRepo) Create(_ context.Context, ch *models.Chapter) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.confessions[ch.ConfessionID]; !ok {
		return repository.ErrNotFound
	}
	next := 1
	for _, existing := range r.d.chapters {
		if existing.ConfessionID == ch.ConfessionID && existing.ChapterNumber >= next {
			next = existing.ChapterNumber + 1
		}
	}
	ensureID(&ch.ID)
	ch.ChapterNumber = next
	ch.CreatedAt, ch.UpdatedAt = now(), now()
	r.d.chapters[ch.ID] = *ch
	r.d.recountConfession(ch.ConfessionID)
	return nil
}

func (r *chapterRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Chapter, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	ch, ok := r.d.chapters[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ch, nil
}

func (r *chapterRepo) Save(_ context.Context, ch *models.Chapter) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	existing, ok := r.d.chapters[ch.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Title, existing.Content = ch.Title, ch.Content
	existing.UpdatedAt = now()
	r.d.chapters[ch.ID] = existing
	*ch = existing
	return nil
}

func (r *chapterRepo) ListByConfession(_ context.Context, confessionID uuid.UUID) ([]models.Chapter, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []models.Chapter{}
	for _, ch := range r.d.chapters {
		if ch.ConfessionID == confessionID {
			out = append(out, ch)
		}
	}
	slices.SortFunc(out, func(a, b models.Chapter) int { return cmp.Compare(a.ChapterNumber, b.ChapterNumber) })
	return out, nil
}

// ---------------------------------------------------------------- comments

type commentRepo struct{ d *db }

func (r *commentRepo) Create(_ context.Context, c *models.Comment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.confessions[c.ConfessionID]; !ok {
		return repository.ErrNotFound
	}
	ensureID(&c.ID)
	c.CreatedAt, c.UpdatedAt = now(), now()
	stored := *c
	stored.User, stored.Replies = nil, nil
	r.d.comments[c.ID] = stored
	r.d.recountConfession(c.ConfessionID)
	c.User = r.d.profile(c.UserID)
	return nil
}

func (r *commentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	c, ok := r.d.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.d.commentOut(c)
	return &out, nil
}

func (r *commentRepo) Save(_ context.Context, c *models.Comment) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	existing, ok := r.d.comments[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	c.TotalLikes = existing.TotalLikes
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = now()
	stored := *c
	stored.User, stored.Replies = nil, nil
	r.d.comments[c.ID] = stored
	r.d.recountConfession(c.ConfessionID)
	return nil
}

func (r *commentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	c, ok := r.d.comments[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.d.deleteCommentLocked(id)
	r.d.recountConfession(c.ConfessionID)
	return nil
}

func sortComments(list []models.Comment, order string) {
	slices.SortStableFunc(list, func(a, b models.Comment) int {
		switch order {
		case repository.CommentsOldest:
			return a.CreatedAt.Compare(b.CreatedAt)
		case repository.CommentsPopular:
			if n := cmp.Compare(b.TotalLikes, a.TotalLikes); n != 0 {
				return n
			}
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func (r *commentRepo) ListThreads(_ context.Context, confessionID uuid.UUID, order string, p repository.Page) ([]models.Comment, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var top []models.Comment
	replies := map[uuid.UUID][]models.Comment{}
	for _, c := range r.d.comments {
		if c.ConfessionID != confessionID || !c.IsApproved {
			continue
		}
		if c.ParentID == nil {
			top = append(top, c)
		} else {
			replies[*c.ParentID] = append(replies[*c.ParentID], r.d.commentOut(c))
		}
	}
	sortComments(top, order)
	page := paginate(top, p)
	out := make([]models.Comment, len(page))
	for i, c := range page {
		out[i] = r.d.commentOut(c)
		rs := replies[c.ID]
		sortComments(rs, repository.CommentsOldest)
		out[i].Replies = rs
	}
	return out, int64(len(top)), nil
}

func (r *commentRepo) filter(f repository.CommentFilter) []models.Comment {
	var out []models.Comment
	for _, c := range r.d.comments {
		if f.ConfessionID != nil && c.ConfessionID != *f.ConfessionID {
			continue
		}
		if f.UserID != nil && c.UserID != *f.UserID {
			continue
		}
		if f.Approved != nil && c.IsApproved != *f.Approved {
			continue
		}
		if !f.CreatedSince.IsZero() && c.CreatedAt.Before(f.CreatedSince) {
			continue
		}
		out = append(out, c)
	}
	sortComments(out, repository.CommentsNewest)
	return out
}

func (r *commentRepo) List(_ context.Context, f repository.CommentFilter, p repository.Page) ([]models.Comment, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	all := r.filter(f)
	page := paginate(all, p)
	out := make([]models.Comment, len(page))
	for i, c := range page {
		out[i] = r.d.commentOut(c)
	}
	return out, int64(len(all)), nil
}

func (r *commentRepo) Count(_ context.Context, f repository.CommentFilter) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return int64(len(r.filter(f))), nil
}

func (r *commentRepo) ToggleLike(_ context.Context, userID, commentID uuid.UUID) (bool, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.comments[commentID]; !ok {
		return false, 0, repository.ErrNotFound
	}
	k := pair{userID, commentID}
	_, liked := r.d.commentLikes[k]
	if liked {
		delete(r.d.commentLikes, k)
	} else {
		r.d.commentLikes[k] = models.CommentLike{ID: uuid.New(), UserID: userID, CommentID: commentID, CreatedAt: now()}
	}
	r.d.recountComment(commentID)
	return !liked, r.d.comments[commentID].TotalLikes, nil
}

// ---------------------------------------------------------------- likes and bookmarks

type engagementRepo struct{ d *db }

func (r *engagementRepo) ToggleLike(_ context.Context, userID, confessionID uuid.UUID) (bool, int64, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.confessions[confessionID]; !ok {
		return false, 0, repository.ErrNotFound
	}
	k := pair{userID, confessionID}
	_, liked := r.d.likes[k]
	if liked {
		delete(r.d.likes, k)
	} else {
		r.d.likes[k] = models.Like{ID: uuid.New(), UserID: userID, ConfessionID: confessionID, CreatedAt: now()}
	}
	r.d.recountConfession(confessionID)
	return !liked, r.d.confessions[confessionID].TotalLikes, nil
}

func (r *engagementRepo) LikedAmong(_ context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.d.likes[pair{userID, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *engagementRepo) CountLikesGiven(_ context.Context, userID uuid.UUID) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var n int64
	for k := range r.d.likes {
		if k.a == userID {
			n++
		}
	}
	return n, nil
}

func (r *engagementRepo) CountLikes(_ context.Context, since time.Time) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var n int64
	for _, l := range r.d.likes {
		if since.IsZero() || !l.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *engagementRepo) ToggleBookmark(_ context.Context, userID, confessionID uuid.UUID) (bool, error) {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.confessions[confessionID]; !ok {
		return false, repository.ErrNotFound
	}
	k := pair{userID, confessionID}
	if _, ok := r.d.bookmarks[k]; ok {
		delete(r.d.bookmarks, k)
		return false, nil
	}
	r.d.bookmarks[k] = models.Bookmark{ID: uuid.New(), UserID: userID, ConfessionID: confessionID, CreatedAt: now()}
	return true, nil
}

func (r *engagementRepo) ListBookmarks(_ context.Context, userID uuid.UUID, p repository.Page) ([]models.Bookmark, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var all []models.Bookmark
	for k, b := range r.d.bookmarks {
		if k.a == userID {
			all = append(all, b)
		}
	}
	slices.SortFunc(all, func(a, b models.Bookmark) int { return b.CreatedAt.Compare(a.CreatedAt) })
	page := paginate(all, p)
	out := make([]models.Bookmark, len(page))
	for i, b := range page {
		if c, ok := r.d.confessions[b.ConfessionID]; ok {
			cc := r.d.confessionOut(c)
			b.Confession = &cc
		}
		out[i] = b
	}
	return out, int64(len(all)), nil
}

func (r *engagementRepo) CountBookmarks(_ context.Context, userID *uuid.UUID) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var n int64
	for k := range r.d.bookmarks {
		if userID == nil || k.a == *userID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------- follows

type followRepo struct{ d *db }

func (r *followRepo) Create(_ context.Context, f *models.Follow) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	k := pair{f.FollowerID, f.FollowingID}
	if _, ok := r.d.follows[k]; ok {
		return repository.ErrDuplicate
	}
	ensureID(&f.ID)
	f.CreatedAt = now()
	r.d.follows[k] = *f
	return nil
}

func (r *followRepo) Delete(_ context.Context, followerID, followingID uuid.UUID) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	k := pair{followerID, followingID}
	if _, ok := r.d.follows[k]; !ok {
		return repository.ErrNotFound
	}
	delete(r.d.follows, k)
	return nil
}

func (r *followRepo) Exists(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	_, ok := r.d.follows[pair{followerID, followingID}]
	return ok, nil
}

func (r *followRepo) edges(userID uuid.UUID, followers bool, p repository.Page) ([]models.Profile, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	var all []models.Follow
	for _, f := range r.d.follows {
		if (followers && f.FollowingID == userID) || (!followers && f.FollowerID == userID) {
			all = append(all, f)
		}
	}
	slices.SortFunc(all, func(a, b models.Follow) int { return b.CreatedAt.Compare(a.CreatedAt) })
	out := []models.Profile{}
	for _, f := range paginate(all, p) {
		other := f.FollowerID
		if !followers {
			other = f.FollowingID
		}
		if pr := r.d.profile(other); pr != nil {
			out = append(out, *pr)
		}
	}
	return out, int64(len(all)), nil
}

func (r *followRepo) Followers(_ context.Context, userID uuid.UUID, p repository.Page) ([]models.Profile, int64, error) {
	return r.edges(userID, true, p)
}

func (r *followRepo) Following(_ context.Context, userID uuid.UUID, p repository.Page) ([]models.Profile, int64, error) {
	return r.edges(userID, false, p)
}

// ---------------------------------------------------------------- badges

type badgeRepo struct{ d *db }

func (r *badgeRepo) List(_ context.Context) ([]models.Badge, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]models.Badge, 0, len(r.d.badges))
	for _, b := range r.d.badges {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b models.Badge) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *badgeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Badge, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	b, ok := r.d.badges[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *badgeRepo) Upsert(_ context.Context, b *models.Badge) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	for id, existing := range r.d.badges {
		if existing.Name == b.Name {
			b.ID, b.CreatedAt = id, existing.CreatedAt
			r.d.badges[id] = *b
			return nil
		}
	}
	ensureID(&b.ID)
	b.CreatedAt = now()
	r.d.badges[b.ID] = *b
	return nil
}

func (r *badgeRepo) Award(_ context.Context, ub *models.UserBadge) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	k := pair{ub.UserID, ub.BadgeID}
	if _, ok := r.d.userBadges[k]; ok {
		return repository.ErrDuplicate
	}
	ensureID(&ub.ID)
	if ub.AwardedAt.IsZero() {
		ub.AwardedAt = now()
	}
	stored := *ub
	stored.Badge = nil
	r.d.userBadges[k] = stored
	return nil
}

func (r *badgeRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []models.UserBadge{}
	for k, ub := range r.d.userBadges {
		if k.a != userID {
			continue
		}
		if b, ok := r.d.badges[ub.BadgeID]; ok {
			ub.Badge = &b
		}
		out = append(out, ub)
	}
	slices.SortFunc(out, func(a, b models.UserBadge) int { return b.AwardedAt.Compare(a.AwardedAt) })
	return out, nil
}

// ---------------------------------------------------------------- reports

type reportRepo struct{ d *db }

func (r *reportRepo) Create(_ context.Context, rp *models.Report) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	ensureID(&rp.ID)
	if rp.Status == "" {
		rp.Status = models.ReportPending
	}
	rp.CreatedAt, rp.UpdatedAt = now(), now()
	stored := *rp
	stored.Reporter = nil
	r.d.reports[rp.ID] = stored
	return nil
}

func (r *reportRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	rp, ok := r.d.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rp.Reporter = r.d.profile(rp.ReporterID)
	return &rp, nil
}

func (r *reportRepo) Save(_ context.Context, rp *models.Report) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.d.reports[rp.ID]; !ok {
		return repository.ErrNotFound
	}
	rp.UpdatedAt = now()
	stored := *rp
	stored.Reporter = nil
	r.d.reports[rp.ID] = stored
	return nil
}

func (r *reportRepo) filter(status models.ReportStatus) []models.Report {
	var out []models.Report
	for _, rp := range r.d.reports {
		if status == "" || rp.Status == status {
			out = append(out, rp)
		}
	}
	slices.SortFunc(out, func(a, b models.Report) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out
}

func (r *reportRepo) List(_ context.Context, status models.ReportStatus, p repository.Page) ([]models.Report, int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	all := r.filter(status)
	page := paginate(all, p)
	out := make([]models.Report, len(page))
	for i, rp := range page {
		rp.Reporter = r.d.profile(rp.ReporterID)
		out[i] = rp
	}
	return out, int64(len(all)), nil
}

func (r *reportRepo) Count(_ context.Context, status models.ReportStatus) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return int64(len(r.filter(status))), nil
}

// ---------------------------------------------------------------- audit

type auditRepo struct{ d *db }

func (r *auditRepo) LogActivity(_ context.Context, l *models.ActivityLog) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	ensureID(&l.ID)
	l.CreatedAt = now()
	r.d.activity = append(r.d.activity, *l)
	return nil
}

func (r *auditRepo) LogModeration(_ context.Context, l *models.ModerationLog) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	ensureID(&l.ID)
	l.CreatedAt = now()
	r.d.moderation = append(r.d.moderation, *l)
	return nil
}

func (r *auditRepo) RecentActivity(_ context.Context, userID *uuid.UUID, limit int) ([]models.ActivityLog, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []models.ActivityLog{}
	for i := len(r.d.activity) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		l := r.d.activity[i]
		if userID != nil && l.UserID != *userID {
			continue
		}
		l.User = r.d.profile(l.UserID)
		out = append(out, l)
	}
	return out, nil
}

func (r *auditRepo) matchModeration(l models.ModerationLog, f repository.ModerationLogFilter) bool {
	if f.ModeratorID != nil && l.ModeratorID != *f.ModeratorID {
		return false
	}
	return f.CreatedSince.IsZero() || !l.CreatedAt.Before(f.CreatedSince)
}

func (r *auditRepo) ListModeration(_ context.Context, f repository.ModerationLogFilter, limit int) ([]models.ModerationLog, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := []models.ModerationLog{}
	for i := len(r.d.moderation) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		l := r.d.moderation[i]
		if !r.matchModeration(l, f) {
			continue
		}
		l.Moderator = r.d.profile(l.ModeratorID)
		out = append(out, l)
	}
	return out, nil
}

func (r *auditRepo) CountModeration(_ context.Context, f repository.ModerationLogFilter) (int64, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	var n int64
	for _, l := range r.d.moderation {
		if r.matchModeration(l, f) {
			n++
		}
	}
	return n, nil
}
