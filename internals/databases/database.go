package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"csesociety_backend/internals/configs"
	clubModel "csesociety_backend/internals/features/clubs/model"
	eventModel "csesociety_backend/internals/features/events/model"
	paymentModel "csesociety_backend/internals/features/finance/payments/model"
	userModel "csesociety_backend/internals/features/users/user/model"
)

var DB *gorm.DB

func ConnectDB(cfg configs.DatabaseConfig) {
	log.Println("🔌 Connecting to PostgreSQL...")

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // 👍 PgBouncer (transaction pooling)
	}), &gorm.Config{
		Logger:         configs.NewGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ DB connect failed: %v", err)
	}
	DB = db
	log.Println("✅ DB connected.")
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("pool tune err: %v", err)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := Ping(); err != nil {
			log.Printf("warm-up ping err: %v", err)
		}
	}()
}

func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Models lists every table owned or consumed by this service, in dependency order.
func Models() []any {
	return []any{
		&userModel.UserModel{},
		&clubModel.Club{},
		&clubModel.ClubMember{},
		&clubModel.ClubJoinRequest{},
		&eventModel.Event{},
		&eventModel.EventRegistration{},
		&paymentModel.PendingTransaction{},
		&paymentModel.PaymentRecord{},
	}
}

// AutoMigrate syncs the tables, then adds the indexes gorm tags cannot describe.
// The raw statements run unchanged on Postgres and SQLite.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	for _, stmt := range []string{
		clubModel.PendingJoinRequestIndexSQL,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migrate index: %w", err)
		}
	}
	return nil
}
