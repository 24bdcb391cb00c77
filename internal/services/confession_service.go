package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/datatypes"
)

// sortFields maps accepted sortBy values onto repository columns.
var sortFields = map[string]string{
	"created_at":     repository.SortCreatedAt,
	"createdAt":      repository.SortCreatedAt,
	"updated_at":     repository.SortUpdatedAt,
	"updatedAt":      repository.SortUpdatedAt,
	"title":          repository.SortTitle,
	"total_views":    repository.SortTotalViews,
	"totalViews":     repository.SortTotalViews,
	"views":          repository.SortTotalViews,
	"total_likes":    repository.SortTotalLikes,
	"totalLikes":     repository.SortTotalLikes,
	"likes":          repository.SortTotalLikes,
	"total_comments": repository.SortTotalComments,
	"totalComments":  repository.SortTotalComments,
}

type ConfessionService struct {
	store  *repository.Store
	badges *BadgeService
	audit  auditor
}

func NewConfessionService(store *repository.Store, badges *BadgeService) *ConfessionService {
	return &ConfessionService{store: store, badges: badges, audit: auditor{store.Audit}}
}

func canModerate(u *models.User) bool {
	return u != nil && u.Role.IsElevated()
}

// canView: published, or the viewer wrote it, or the viewer moderates.
func canView(c *models.Confession, viewer *models.User) bool {
	if c.Status == models.StatusPublished {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.ID == c.AuthorID || canModerate(viewer)
}

// List returns one page of confessions. viewer may be nil.
func (s *ConfessionService) List(ctx context.Context, viewer *models.User, q dto.ListConfessionsQuery) (*dto.ListResponse[models.Confession], error) {
	window, page, limit := pageOf(q.Page, q.Limit, defaultPageSize)

	query := repository.ConfessionQuery{
		Search: strings.TrimSpace(q.Search),
		SortBy: repository.SortCreatedAt,
	}
	if col, ok := sortFields[q.SortBy]; ok {
		query.SortBy = col
	}
	query.Ascending = query.SortBy == repository.SortTitle

	if cat := strings.TrimSpace(q.Category); cat != "" && cat != "all" {
		if !models.Category(cat).Valid() {
			return nil, invalid("category must be one of %s", joinCategories())
		}
		query.Category = models.Category(cat)
	}

	ownRows := false
	if q.UserID != "" {
		authorID, err := uuid.Parse(q.UserID)
		if err != nil {
			return nil, invalid("userId must be a valid id")
		}
		query.AuthorID = &authorID
		ownRows = viewer != nil && viewer.ID == authorID
	}
	if !ownRows {
		query.Statuses = []models.ConfessionStatus{models.StatusPublished}
	}

	items, total, err := s.store.Confessions.List(ctx, query, window)
	if err != nil {
		err = storeErr(err, nil, "list confessions")
		if KindOf(err) == KindSetupRequired {
			empty := &dto.ListResponse[models.Confession]{Data: []models.Confession{}, Pagination: dto.NewPagination(page, limit, 0)}
			return empty, err
		}
		return nil, err
	}
	if viewer != nil {
		s.markLiked(ctx, viewer.ID, items)
	}
	return &dto.ListResponse[models.Confession]{Data: items, Pagination: dto.NewPagination(page, limit, total)}, nil
}

// markLiked sets IsLiked with one lookup for the whole page. A failed
// lookup leaves every flag false.
func (s *ConfessionService) markLiked(ctx context.Context, userID uuid.UUID, items []models.Confession) {
	if len(items) == 0 {
		return
	}
	ids := make([]uuid.UUID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	liked, err := s.store.Engagement.LikedAmong(ctx, userID, ids)
	if err != nil {
		return
	}
	for i := range items {
		items[i].IsLiked = liked[items[i].ID]
	}
}

// Get returns a confession with its chapters. Viewing a published
// confession as anyone but its author counts one view.
func (s *ConfessionService) Get(ctx context.Context, viewer *models.User, id uuid.UUID) (*dto.ConfessionDetail, error) {
	c, err := s.store.Confessions.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}
	if !canView(c, viewer) {
		return nil, ErrConfessionForbidden
	}

	if c.Status == models.StatusPublished && (viewer == nil || viewer.ID != c.AuthorID) {
		views, err := s.store.Confessions.IncrementViews(ctx, id)
		if err != nil {
			return nil, storeErr(err, ErrConfessionNotFound, "count view")
		}
		c.TotalViews = views
		s.badges.Evaluate(ctx, c.AuthorID, TriggerViewed)
	}

	chapters, err := s.store.Chapters.ListByConfession(ctx, id)
	if err != nil {
		return nil, storeErr(err, nil, "list chapters")
	}
	if viewer != nil {
		one := []models.Confession{*c}
		s.markLiked(ctx, viewer.ID, one)
		c.IsLiked = one[0].IsLiked
	}
	return &dto.ConfessionDetail{Confession: c, Chapters: chapters}, nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

// Create stores a new draft authored by actor.
func (s *ConfessionService) Create(ctx context.Context, actor *models.User, req *dto.CreateConfessionRequest) (*models.Confession, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	category := models.Category(req.Category)
	if category == "" {
		category = "general"
	}

	c := &models.Confession{
		AuthorID:      actor.ID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      category,
		Tags:          cleanTags(req.Tags),
		CoverImageURL: req.CoverImageURL,
		Status:        models.StatusDraft,
	}
	if err := s.store.Confessions.Create(ctx, c); err != nil {
		return nil, storeErr(err, nil, "create confession")
	}
	s.audit.activity(ctx, actor.ID, "confession_created", "confession", c.ID, datatypes.JSONMap{
		"title":    c.Title,
		"category": string(c.Category),
	})
	return c, nil
}

// Update applies the allow-listed fields. Only the author or a moderator may
// edit; publishing additionally needs member rights or above.
func (s *ConfessionService) Update(ctx context.Context, actor *models.User, id uuid.UUID, req *dto.UpdateConfessionRequest) (*models.Confession, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	c, err := s.store.Confessions.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}
	if actor.ID != c.AuthorID && !canModerate(actor) {
		return nil, ErrNotConfessionOwner
	}
	if c.Status == models.StatusRemoved && !canModerate(actor) {
		return nil, ErrRemovedConfession
	}

	previous := c.Status
	changed := []string{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if len([]rune(title)) < 5 {
			return nil, invalid("title must be at least 5 characters")
		}
		c.Title = title
		changed = append(changed, "title")
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
		changed = append(changed, "description")
	}
	if req.Category != nil {
		c.Category = models.Category(*req.Category)
		changed = append(changed, "category")
	}
	if req.Tags != nil {
		c.Tags = cleanTags(*req.Tags)
		changed = append(changed, "tags")
	}
	if req.CoverImageURL != nil {
		c.CoverImageURL = strings.TrimSpace(*req.CoverImageURL)
		changed = append(changed, "cover_image_url")
	}
	if req.Status != nil {
		next := models.ConfessionStatus(*req.Status)
		if !next.AuthorSettable() {
			return nil, invalid("status must be one of: draft, published, archived")
		}
		if next == models.StatusPublished && next != previous && !models.MemberOrAbove.Allows(actor.Role) {
			return nil, ErrPublishRequiresMember
		}
		c.Status = next
		changed = append(changed, "status")
	}

	if err := s.store.Confessions.Save(ctx, c); err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "save confession")
	}
	s.audit.activity(ctx, actor.ID, "confession_updated", "confession", c.ID, datatypes.JSONMap{
		"fields": changed,
	})
	if previous != c.Status && c.Status == models.StatusPublished {
		s.badges.Evaluate(ctx, c.AuthorID, TriggerPublished)
	}
	return c, nil
}

func (s *ConfessionService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	c, err := s.store.Confessions.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, ErrConfessionNotFound, "load confession")
	}
	owner := actor.ID == c.AuthorID
	if !owner && !canModerate(actor) {
		return ErrNotConfessionOwner
	}
	if err := s.store.Confessions.Delete(ctx, id); err != nil {
		return storeErr(err, ErrConfessionNotFound, "delete confession")
	}

	s.audit.activity(ctx, actor.ID, "confession_deleted", "confession", id, datatypes.JSONMap{"title": c.Title})
	if !owner {
		s.audit.moderation(ctx, actor.ID, "confession_deleted", "confession", id, "", datatypes.JSONMap{
			"author_id": c.AuthorID.String(),
			"title":     c.Title,
		})
	}
	return nil
}

// ownConfession loads a confession that actor must have written.
func (s *ConfessionService) ownConfession(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Confession, error) {
	c, err := s.store.Confessions.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}
	if c.AuthorID != actor.ID {
		return nil, ErrNotConfessionOwner
	}
	return c, nil
}

// AddChapter appends the next numbered chapter.
func (s *ConfessionService) AddChapter(ctx context.Context, actor *models.User, confessionID uuid.UUID, req *dto.CreateChapterRequest) (*models.Chapter, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.ownConfession(ctx, actor, confessionID); err != nil {
		return nil, err
	}
	ch := &models.Chapter{ConfessionID: confessionID, Title: req.Title, Content: req.Content}
	if err := s.store.Chapters.Create(ctx, ch); err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "create chapter")
	}
	s.audit.activity(ctx, actor.ID, "chapter_created", "chapter", ch.ID, datatypes.JSONMap{
		"confession_id":  confessionID.String(),
		"chapter_number": ch.ChapterNumber,
	})
	return ch, nil
}

func (s *ConfessionService) UpdateChapter(ctx context.Context, actor *models.User, confessionID, chapterID uuid.UUID, req *dto.CreateChapterRequest) (*models.Chapter, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.ownConfession(ctx, actor, confessionID); err != nil {
		return nil, err
	}
	ch, err := s.store.Chapters.FindByID(ctx, chapterID)
	if err != nil {
		return nil, storeErr(err, ErrChapterNotFound, "load chapter")
	}
	if ch.ConfessionID != confessionID {
		return nil, ErrChapterNotFound
	}
	ch.Title, ch.Content = req.Title, req.Content
	if err := s.store.Chapters.Save(ctx, ch); err != nil {
		return nil, storeErr(err, ErrChapterNotFound, "save chapter")
	}
	return ch, nil
}

func (s *ConfessionService) Chapters(ctx context.Context, viewer *models.User, confessionID uuid.UUID) ([]models.Chapter, error) {
	c, err := s.store.Confessions.FindByID(ctx, confessionID)
	if err != nil {
		return nil, storeErr(err, ErrConfessionNotFound, "load confession")
	}
	if !canView(c, viewer) {
		return nil, ErrConfessionForbidden
	}
	chapters, err := s.store.Chapters.ListByConfession(ctx, confessionID)
	return chapters, storeErr(err, nil, "list chapters")
}
