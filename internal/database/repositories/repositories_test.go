package repositories

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bbernstein/lightcore-go/internal/database/models"
)

// setupTestDB creates an in-memory SQLite database for testing repositories.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if err := db.AutoMigrate(&models.ShowRecord{}, &models.Setting{}); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestShowRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShowRepository(db)
	ctx := context.Background()

	rec := &models.ShowRecord{Name: "My Show", Document: `{"name":"My Show"}`}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == "" {
		t.Error("Create should assign an ID")
	}

	byID, err := repo.FindByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if byID == nil || byID.Name != "My Show" {
		t.Errorf("FindByID = %+v", byID)
	}

	byName, err := repo.FindByName(ctx, "My Show")
	if err != nil {
		t.Fatalf("FindByName: %v", err)
	}
	if byName == nil || byName.ID != rec.ID {
		t.Errorf("FindByName = %+v", byName)
	}

	missing, err := repo.FindByID(ctx, "nope")
	if err != nil {
		t.Fatalf("FindByID missing: %v", err)
	}
	if missing != nil {
		t.Error("missing record should return nil, not error")
	}
}

func TestShowRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShowRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, "Show", `{"v":1}`)
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}

	second, err := repo.Upsert(ctx, "Show", `{"v":2}`)
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Error("Upsert should reuse the existing row")
	}
	if second.Document != `{"v":2}` {
		t.Errorf("Document = %s", second.Document)
	}

	all, err := repo.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("FindAll len = %d", len(all))
	}
}

func TestShowRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShowRepository(db)
	ctx := context.Background()

	rec := &models.ShowRecord{Name: "Gone", Document: "{}"}
	if err := repo.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err := repo.FindByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Error("record should be gone")
	}
}

func TestSettingRepository_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingRepository(db)
	ctx := context.Background()

	if err := repo.Set(ctx, "artnet_broadcast_address", "10.0.0.255"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	setting, err := repo.FindByKey(ctx, "artnet_broadcast_address")
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if setting == nil || setting.Value != "10.0.0.255" {
		t.Errorf("setting = %+v", setting)
	}

	// Overwrite keeps a single row
	if err := repo.Set(ctx, "artnet_broadcast_address", "192.168.1.255"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	setting, _ = repo.FindByKey(ctx, "artnet_broadcast_address")
	if setting.Value != "192.168.1.255" {
		t.Errorf("value = %s", setting.Value)
	}

	missing, err := repo.FindByKey(ctx, "nope")
	if err != nil {
		t.Fatalf("FindByKey missing: %v", err)
	}
	if missing != nil {
		t.Error("missing key should return nil")
	}

	if err := repo.Delete(ctx, "artnet_broadcast_address"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, _ := repo.FindByKey(ctx, "artnet_broadcast_address")
	if gone != nil {
		t.Error("deleted key should return nil")
	}
}
