package application

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/lock"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

type fakeStore struct {
	inserts []domain.ConsumeInfo
	updates []domain.ConsumeInfo
	deletes []int64

	insertResp domain.Result[bool]
	updateResp domain.Result[bool]
	getResp    domain.Result[*domain.ConsumeInfo]
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		insertResp: domain.OK(true, ""),
		updateResp: domain.OK(true, ""),
		getResp:    domain.OK[*domain.ConsumeInfo](nil, "not found"),
	}
}

func (s *fakeStore) Insert(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool] {
	s.inserts = append(s.inserts, *info)
	return s.insertResp
}

func (s *fakeStore) Update(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool] {
	s.updates = append(s.updates, *info)
	return s.updateResp
}

func (s *fakeStore) Delete(ctx context.Context, goodsType string, id int64) domain.Result[bool] {
	s.deletes = append(s.deletes, id)
	return domain.OK(true, "")
}

func (s *fakeStore) GetById(ctx context.Context, goodsType string, id int64) domain.Result[*domain.ConsumeInfo] {
	return s.getResp
}

func (s *fakeStore) GetByCoupon(ctx context.Context, goodsType, coupon string) domain.Result[*domain.ConsumeInfo] {
	return s.getResp
}

func testTransitions() domain.TransitionTable {
	return domain.TransitionTable{
		"Created":  {"consume": "Consumed"},
		"Consumed": {"refund": "Refunded"},
	}
}

func newTestService(store ConsumeInfoStore) *ConsumeInfoApplicationService {
	return NewConsumeInfoApplicationService(store, testTransitions(), lock.NewKeyedMutex(), otel.Tracer("test"))
}

func TestInsertNormalizesGoodsType(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	resp := svc.Insert(context.Background(), &domain.ConsumeInfo{GoodsType: "Movie", Coupon: "C1", Status: "Created"})
	if !resp.Ok() {
		t.Fatalf("insert failed: %s", resp.Msg)
	}
	if len(store.inserts) != 1 || store.inserts[0].GoodsType != "movie" {
		t.Fatalf("goodsType must be lowercased before the store, got %+v", store.inserts)
	}
}

func TestUpdateRejectedByValidatorNeverHitsStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	resp := svc.Update(context.Background(), &UpdateRequest{
		CI:    domain.ConsumeInfo{Id: 1, GoodsType: "movie", Coupon: "C1", Status: "Created"},
		Event: "refund",
	})
	if resp.Ok() {
		t.Fatalf("illegal transition must fail")
	}
	if len(store.updates) != 0 {
		t.Fatalf("rejected update must not reach the store, got %d calls", len(store.updates))
	}
	// 失败信息要点名被拒的 (status, event) 组合
	if !strings.Contains(resp.Msg, "Created") || !strings.Contains(resp.Msg, "refund") {
		t.Fatalf("msg should name the rejected pair, got %q", resp.Msg)
	}
}

func TestUpdateAppliesTransitionBeforeStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	resp := svc.Update(context.Background(), &UpdateRequest{
		CI:    domain.ConsumeInfo{Id: 1, GoodsType: "movie", Coupon: "C1", Status: "Created"},
		Event: "consume",
	})
	if !resp.Ok() {
		t.Fatalf("update failed: %s", resp.Msg)
	}
	if len(store.updates) != 1 {
		t.Fatalf("expected exactly one store call, got %d", len(store.updates))
	}
	if store.updates[0].Status != "Consumed" {
		t.Fatalf("store must receive the post-transition status, got %s", store.updates[0].Status)
	}
}

func TestUpdatePropagatesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.updateResp = domain.FailWith[bool]("update [movie] id [1] impact rows [0] not equal to 1")
	svc := newTestService(store)

	resp := svc.Update(context.Background(), &UpdateRequest{
		CI:    domain.ConsumeInfo{Id: 1, GoodsType: "movie", Coupon: "C1", Status: "Created"},
		Event: "consume",
	})
	if resp.Ok() {
		t.Fatalf("store failure must propagate")
	}
	if !strings.Contains(resp.Msg, "not equal to 1") {
		t.Fatalf("msg should carry the store failure, got %q", resp.Msg)
	}
}

func TestDeleteGoesThroughStore(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	resp := svc.Delete(context.Background(), "movie", 7)
	if !resp.Ok() {
		t.Fatalf("delete failed: %s", resp.Msg)
	}
	if len(store.deletes) != 1 || store.deletes[0] != 7 {
		t.Fatalf("expected delete of id 7, got %+v", store.deletes)
	}
}
