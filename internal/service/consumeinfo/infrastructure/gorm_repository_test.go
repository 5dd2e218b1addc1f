package infrastructure

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

func setupTestDB(t *testing.T, tables ...string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, table := range tables {
		err := db.Exec(`CREATE TABLE ` + table + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			goods_type TEXT,
			coupon TEXT,
			status TEXT,
			create_time INTEGER,
			extra TEXT,
			is_deleted BOOLEAN NOT NULL DEFAULT 0
		)`).Error
		if err != nil {
			t.Fatalf("create table %s: %v", table, err)
		}
	}
	return db
}

func newTestRepo(t *testing.T) *GormConsumeInfoRepository {
	t.Helper()
	db := setupTestDB(t, "movie")
	return NewGormConsumeInfoRepository(db, domain.NewPartitionRegistry([]string{"movie"}))
}

func TestInsertAndGetById(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	info := &domain.ConsumeInfo{GoodsType: "movie", Coupon: "C1", Status: "Created"}
	if err := repo.Insert(ctx, info); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if info.Id == 0 {
		t.Fatalf("insert should backfill the store-assigned id")
	}

	got, err := repo.GetById(ctx, "movie", info.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Coupon != "C1" || got.Status != "Created" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetByIdNotFoundIsNil(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetById(context.Background(), "movie", 42)
	if err != nil {
		t.Fatalf("not-found must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil record, got %+v", got)
	}
}

func TestInsertRejectsUnknownPartition(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Insert(context.Background(), &domain.ConsumeInfo{GoodsType: "concert", Coupon: "C1"})
	var unknownErr *domain.UnknownPartitionError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownPartitionError, got %v", err)
	}
}

func TestUpdateEnforcesSingleRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// id 不存在，0 行受影响必须算失败
	err := repo.Update(ctx, &domain.ConsumeInfo{Id: 99, GoodsType: "movie", Status: "Consumed"})
	if err == nil {
		t.Fatalf("expected row-count mismatch error")
	}
	if !strings.Contains(err.Error(), "not equal to 1") {
		t.Fatalf("error should mention row-count mismatch, got: %v", err)
	}
}

func TestUpdateChangesStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	info := &domain.ConsumeInfo{GoodsType: "movie", Coupon: "C1", Status: "Created"}
	if err := repo.Insert(ctx, info); err != nil {
		t.Fatalf("insert: %v", err)
	}

	info.Status = "Consumed"
	if err := repo.Update(ctx, info); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetById(ctx, "movie", info.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "Consumed" {
		t.Fatalf("expected Consumed, got %s", got.Status)
	}
}

func TestDeleteIsSoft(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	info := &domain.ConsumeInfo{GoodsType: "movie", Coupon: "C1", Status: "Created"}
	if err := repo.Insert(ctx, info); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Delete(ctx, "movie", info.Id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// 读路径看不到已软删的记录
	got, err := repo.GetById(ctx, "movie", info.Id)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("soft-deleted record must be invisible to reads, got %+v", got)
	}

	// 但物理行还在
	var count int64
	if err := repo.db.Table("movie").Where("id = ?", info.Id).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("record must never be physically removed, count=%d", count)
	}
}

func TestDeleteMissingRowFails(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Delete(context.Background(), "movie", 12345)
	if err == nil || !strings.Contains(err.Error(), "not equal to 1") {
		t.Fatalf("expected row-count mismatch error, got %v", err)
	}
}

func TestGetByCoupon(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	info := &domain.ConsumeInfo{GoodsType: "movie", Coupon: "C7", Status: "Created"}
	if err := repo.Insert(ctx, info); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetByCoupon(ctx, "movie", "C7")
	if err != nil {
		t.Fatalf("get by coupon: %v", err)
	}
	if got == nil || got.Id != info.Id {
		t.Fatalf("unexpected record: %+v", got)
	}
}
