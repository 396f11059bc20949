package seeds

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"csesociety_backend/internals/constants"
	clubModel "csesociety_backend/internals/features/clubs/model"
	eventModel "csesociety_backend/internals/features/events/model"
	userModel "csesociety_backend/internals/features/users/user/model"
	helper "csesociety_backend/internals/helpers"
)

const slugMaxLen = 120

type SocietySeed struct {
	Users  []UserSeed  `json:"users"`
	Clubs  []ClubSeed  `json:"clubs"`
	Events []EventSeed `json:"events"`
}

type UserSeed struct {
	UserName string `json:"user_name"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type ClubSeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type EventSeed struct {
	Title string          `json:"title"`
	Club  string          `json:"club"`
	Fee   decimal.Decimal `json:"fee"`
}

func SeedUsers(ctx context.Context, db *gorm.DB, rows []UserSeed) error {
	for _, d := range rows {
		var existing userModel.UserModel
		err := db.WithContext(ctx).Where("email = ?", d.Email).First(&existing).Error
		if err == nil {
			log.Printf("ℹ️ user %s exists, skipped", d.Email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role, ok := constants.ParseRole(d.Role)
		if !ok {
			return fmt.Errorf("seed user %s: unknown role %q", d.Email, d.Role)
		}
		u := userModel.UserModel{
			UserName: d.UserName,
			Email:    d.Email,
			Role:     role,
			IsActive: true,
		}
		if d.FullName != "" {
			u.FullName = &d.FullName
		}
		if d.Phone != "" {
			u.Phone = &d.Phone
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			return fmt.Errorf("seed user %s: %w", d.Email, err)
		}
		log.Printf("✅ user %s (%s)", d.Email, role)
	}
	return nil
}

// SeedClubs returns club ids by name so events can point at them.
func SeedClubs(ctx context.Context, db *gorm.DB, rows []ClubSeed) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(rows))
	for _, d := range rows {
		base := helper.Slugify(d.Name, slugMaxLen)

		var existing clubModel.Club
		err := db.WithContext(ctx).Where("club_slug = ?", base).First(&existing).Error
		if err == nil {
			ids[d.Name] = existing.ClubID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		slug, err := helper.EnsureUniqueSlug(ctx, db, "clubs", "club_slug", base, slugMaxLen)
		if err != nil {
			return nil, err
		}
		club := clubModel.Club{ClubName: d.Name, ClubSlug: slug, ClubIsActive: true}
		if d.Description != "" {
			club.ClubDescription = &d.Description
		}
		if err := db.WithContext(ctx).Create(&club).Error; err != nil {
			return nil, fmt.Errorf("seed club %s: %w", d.Name, err)
		}
		ids[d.Name] = club.ClubID
		log.Printf("✅ club %s (%s)", d.Name, slug)
	}
	return ids, nil
}

func SeedEvents(ctx context.Context, db *gorm.DB, rows []EventSeed, clubIDs map[string]uuid.UUID) error {
	for _, d := range rows {
		base := helper.Slugify(d.Title, slugMaxLen)

		var n int64
		if err := db.WithContext(ctx).Model(&eventModel.Event{}).Where("event_slug = ?", base).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			continue
		}

		slug, err := helper.EnsureUniqueSlug(ctx, db, "events", "event_slug", base, slugMaxLen)
		if err != nil {
			return err
		}
		ev := eventModel.Event{EventTitle: d.Title, EventSlug: slug, EventFee: d.Fee, EventIsActive: true}
		if id, ok := clubIDs[d.Club]; ok {
			ev.EventClubID = &id
		}
		if err := db.WithContext(ctx).Create(&ev).Error; err != nil {
			return fmt.Errorf("seed event %s: %w", d.Title, err)
		}
		log.Printf("✅ event %s fee=%s", d.Title, d.Fee.StringFixed(2))
	}
	return nil
}
