package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/tausug-confession/confession-backend/internal/dto"
	"github.com/tausug-confession/confession-backend/internal/models"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

// Automatic award rules, matched against Badge.Criteria.
const (
	CriteriaFirstStory = "first_story"
	CriteriaStoryViews = "story_views"
	CriteriaLikesGiven = "likes_given"
)

// Trigger names the action after which badges are re-evaluated.
type Trigger string

const (
	TriggerPublished Trigger = "published"
	TriggerViewed    Trigger = "viewed"
	TriggerLiked     Trigger = "liked"
)

var triggerCriteria = map[Trigger]string{
	TriggerPublished: CriteriaFirstStory,
	TriggerViewed:    CriteriaStoryViews,
	TriggerLiked:     CriteriaLikesGiven,
}

type badgeFile struct {
	Badges []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		IconURL     string `yaml:"icon_url"`
		Color       string `yaml:"color"`
		Criteria    string `yaml:"criteria"`
		Threshold   int64  `yaml:"threshold"`
	} `yaml:"badges"`
}

// LoadBadgeCatalog reads badge definitions from a YAML file.
func LoadBadgeCatalog(path string) ([]models.Badge, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read badge catalog: %w", err)
	}
	return ParseBadgeCatalog(raw)
}

func ParseBadgeCatalog(raw []byte) ([]models.Badge, error) {
	var file badgeFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse badge catalog: %w", err)
	}
	seen := map[string]bool{}
	out := make([]models.Badge, 0, len(file.Badges))
	for i, b := range file.Badges {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return nil, fmt.Errorf("badge %d: name is required", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("badge %q defined twice", name)
		}
		seen[name] = true
		switch b.Criteria {
		case "", CriteriaFirstStory, CriteriaStoryViews, CriteriaLikesGiven:
		default:
			return nil, fmt.Errorf("badge %q: unknown criteria %q", name, b.Criteria)
		}
		if b.Criteria != "" && b.Threshold < 1 {
			return nil, fmt.Errorf("badge %q: threshold must be positive", name)
		}
		out = append(out, models.Badge{
			Name:        name,
			Description: b.Description,
			IconURL:     b.IconURL,
			Color:       b.Color,
			Criteria:    b.Criteria,
			Threshold:   b.Threshold,
		})
	}
	return out, nil
}

type BadgeService struct {
	store *repository.Store
	audit auditor
}

func NewBadgeService(store *repository.Store) *BadgeService {
	return &BadgeService{store: store, audit: auditor{store.Audit}}
}

// Seed upserts the catalog so badge ids stay stable across restarts.
func (s *BadgeService) Seed(ctx context.Context, catalog []models.Badge) error {
	for i := range catalog {
		if err := s.store.Badges.Upsert(ctx, &catalog[i]); err != nil {
			return storeErr(err, nil, "seed badge "+catalog[i].Name)
		}
	}
	slog.InfoContext(ctx, "badge catalog seeded", "count", len(catalog))
	return nil
}

func (s *BadgeService) List(ctx context.Context) ([]models.Badge, error) {
	badges, err := s.store.Badges.List(ctx)
	return badges, storeErr(err, nil, "list badges")
}

func (s *BadgeService) ForUser(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	owned, err := s.store.Badges.ListForUser(ctx, userID)
	return owned, storeErr(err, nil, "list user badges")
}

// Award grants a badge by hand. Moderators and admins only.
func (s *BadgeService) Award(ctx context.Context, actorID uuid.UUID, req *dto.AwardBadgeRequest) (*models.UserBadge, error) {
	actor, err := requireRole(ctx, s.store.Users, actorID, models.ModeratorOrAdmin, ErrModeratorRequired)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	userID, _ := uuid.Parse(req.UserID)
	badgeID, _ := uuid.Parse(req.BadgeID)

	if _, err := s.store.Users.FindByID(ctx, userID); err != nil {
		return nil, storeErr(err, ErrUserNotFound, "load user")
	}
	badge, err := s.store.Badges.FindByID(ctx, badgeID)
	if err != nil {
		return nil, storeErr(err, ErrBadgeNotFound, "load badge")
	}

	award := &models.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedBy: &actor.ID,
		Reason:    strings.TrimSpace(req.Reason),
	}
	if err := s.store.Badges.Award(ctx, award); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyAwarded
		}
		return nil, storeErr(err, nil, "award badge")
	}
	award.Badge = badge

	s.audit.activity(ctx, userID, "badge_awarded", "badge", badgeID, datatypes.JSONMap{
		"badge_name": badge.Name,
		"awarded_by": actor.ID.String(),
		"reason":     award.Reason,
	})
	s.audit.moderation(ctx, actor.ID, "badge_awarded", "user", userID, award.Reason, datatypes.JSONMap{
		"badge_id": badgeID.String(),
	})
	return award, nil
}

// Evaluate re-queries the counts behind every automatic badge tied to
// trigger and awards those whose threshold is met. Failures are logged,
// never returned. It reports the badges newly awarded.
func (s *BadgeService) Evaluate(ctx context.Context, userID uuid.UUID, trigger Trigger) []models.Badge {
	criteria, ok := triggerCriteria[trigger]
	if !ok {
		return nil
	}
	catalog, err := s.store.Badges.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "badge evaluation skipped", "user_id", userID.String(), "error", err)
		return nil
	}

	var candidates []models.Badge
	for _, b := range catalog {
		if b.Criteria == criteria {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	held, err := s.store.Badges.ListForUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "badge evaluation skipped", "user_id", userID.String(), "error", err)
		return nil
	}
	owned := make(map[uuid.UUID]bool, len(held))
	for _, ub := range held {
		owned[ub.BadgeID] = true
	}

	var metric int64
	metricLoaded := false
	var awarded []models.Badge
	for _, b := range candidates {
		if owned[b.ID] {
			continue
		}
		if !metricLoaded {
			metric, err = s.metric(ctx, userID, criteria)
			if err != nil {
				slog.ErrorContext(ctx, "badge metric failed", "user_id", userID.String(), "criteria", criteria, "error", err)
				return awarded
			}
			metricLoaded = true
		}
		if metric < b.Threshold {
			continue
		}
		err := s.store.Badges.Award(ctx, &models.UserBadge{UserID: userID, BadgeID: b.ID, Reason: "automatic"})
		switch {
		case errors.Is(err, repository.ErrDuplicate):
		case err != nil:
			slog.ErrorContext(ctx, "automatic badge award failed", "user_id", userID.String(), "badge", b.Name, "error", err)
		default:
			awarded = append(awarded, b)
			s.audit.activity(ctx, userID, "badge_earned", "badge", b.ID, datatypes.JSONMap{"badge_name": b.Name})
		}
	}
	return awarded
}

func (s *BadgeService) metric(ctx context.Context, userID uuid.UUID, criteria string) (int64, error) {
	switch criteria {
	case CriteriaFirstStory:
		return s.store.Confessions.Count(ctx, repository.ConfessionQuery{
			AuthorID: &userID,
			Statuses: []models.ConfessionStatus{models.StatusPublished},
		})
	case CriteriaStoryViews:
		top, _, err := s.store.Confessions.List(ctx, repository.ConfessionQuery{
			AuthorID: &userID,
			Statuses: []models.ConfessionStatus{models.StatusPublished},
			SortBy:   repository.SortTotalViews,
		}, repository.Page{Limit: 1})
		if err != nil || len(top) == 0 {
			return 0, err
		}
		return top[0].TotalViews, nil
	case CriteriaLikesGiven:
		return s.store.Engagement.CountLikesGiven(ctx, userID)
	}
	return 0, nil
}
