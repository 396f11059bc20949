package seeds

import (
	"context"
	_ "embed"
	"fmt"
	"log"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
)

//go:embed data_society.json
var societyData []byte

// Run seeds demo users, clubs and events. Existing rows (by email or slug) are left alone.
func Run(ctx context.Context, db *gorm.DB) error {
	var data SocietySeed
	if err := sonic.Unmarshal(societyData, &data); err != nil {
		return fmt.Errorf("decode seed data: %w", err)
	}

	log.Println("📥 Seeding users...")
	if err := SeedUsers(ctx, db, data.Users); err != nil {
		return err
	}
	log.Println("📥 Seeding clubs...")
	clubIDs, err := SeedClubs(ctx, db, data.Clubs)
	if err != nil {
		return err
	}
	log.Println("📥 Seeding events...")
	if err := SeedEvents(ctx, db, data.Events, clubIDs); err != nil {
		return err
	}
	log.Println("✅ Seed done")
	return nil
}
