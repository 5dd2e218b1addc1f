package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/luoliAsyns/ConsumeInfo/internal/pkg/lock"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/application"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// recordingStore 记录每次调用拿到的 goodsType，校验边界归一化。
type recordingStore struct {
	goodsTypes []string
	inserts    []domain.ConsumeInfo
}

func (s *recordingStore) Insert(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool] {
	s.goodsTypes = append(s.goodsTypes, info.GoodsType)
	s.inserts = append(s.inserts, *info)
	return domain.OK(true, "")
}

func (s *recordingStore) Update(ctx context.Context, info *domain.ConsumeInfo) domain.Result[bool] {
	s.goodsTypes = append(s.goodsTypes, info.GoodsType)
	return domain.OK(true, "")
}

func (s *recordingStore) Delete(ctx context.Context, goodsType string, id int64) domain.Result[bool] {
	s.goodsTypes = append(s.goodsTypes, goodsType)
	return domain.OK(true, "")
}

func (s *recordingStore) GetById(ctx context.Context, goodsType string, id int64) domain.Result[*domain.ConsumeInfo] {
	s.goodsTypes = append(s.goodsTypes, goodsType)
	return domain.OK[*domain.ConsumeInfo](nil, "not found")
}

func (s *recordingStore) GetByCoupon(ctx context.Context, goodsType, coupon string) domain.Result[*domain.ConsumeInfo] {
	s.goodsTypes = append(s.goodsTypes, goodsType)
	return domain.OK[*domain.ConsumeInfo](nil, "not found")
}

func newTestMux(t *testing.T) (*http.ServeMux, *recordingStore) {
	t.Helper()
	store := &recordingStore{}
	transitions := domain.TransitionTable{"Created": {"consume": "Consumed"}}
	svc := application.NewConsumeInfoApplicationService(store, transitions, lock.NewKeyedMutex(), otel.Tracer("test"))
	mux := http.NewServeMux()
	NewConsumeInfoHandler(svc).RegisterRoutes(mux)
	return mux, store
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) domain.Result[json.RawMessage] {
	t.Helper()
	var resp domain.Result[json.RawMessage]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v, body: %s", err, rec.Body.String())
	}
	return resp
}

func TestInsertRoute(t *testing.T) {
	mux, store := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/consume-info/insert",
		`{"goodsType":"Movie","coupon":"C1","status":"Created"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); !resp.Ok() {
		t.Fatalf("insert failed: %s", resp.Msg)
	}
	if len(store.inserts) != 1 || store.inserts[0].GoodsType != "movie" {
		t.Fatalf("goodsType must reach the store lowercased, got %+v", store.inserts)
	}
}

func TestInsertRouteDecodeFailure(t *testing.T) {
	mux, store := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/consume-info/insert", `{bad`)
	// 业务成败只看 code，解码失败也必须是 200 + Fail 信封
	if rec.Code != http.StatusOK {
		t.Fatalf("decode failure must still be HTTP 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Ok() {
		t.Fatalf("decode failure must be code Fail")
	}
	if !strings.Contains(resp.Msg, "decode body failed") {
		t.Fatalf("msg should name the decode failure, got %q", resp.Msg)
	}
	if len(store.inserts) != 0 {
		t.Fatalf("malformed body must not reach the store")
	}
}

func TestQueryByIdLowercasesGoodsType(t *testing.T) {
	mux, store := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/consume-info/query-id?goodsType=MOVIE&id=7", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); !resp.Ok() {
		t.Fatalf("query failed: %s", resp.Msg)
	}
	if len(store.goodsTypes) != 1 || store.goodsTypes[0] != "movie" {
		t.Fatalf("goodsType must be lowercased at the edge, got %+v", store.goodsTypes)
	}
}

func TestQueryByIdRejectsBadId(t *testing.T) {
	mux, store := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/api/consume-info/query-id?goodsType=movie&id=abc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("bad id must still be HTTP 200, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); resp.Ok() {
		t.Fatalf("bad id must be code Fail")
	}
	if len(store.goodsTypes) != 0 {
		t.Fatalf("bad id must not reach the store")
	}
}

func TestUpdateRouteIllegalTransition(t *testing.T) {
	mux, store := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/consume-info/update",
		`{"ci":{"id":1,"goodsType":"movie","coupon":"C1","status":"Created"},"event":"refund"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("rejected update must still be HTTP 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Ok() {
		t.Fatalf("illegal transition must be code Fail")
	}
	if !strings.Contains(resp.Msg, "not meet transition condition") {
		t.Fatalf("msg should name the rejection, got %q", resp.Msg)
	}
	if len(store.goodsTypes) != 0 {
		t.Fatalf("rejected update must not reach the store")
	}
}

func TestDeleteRouteLowercasesGoodsType(t *testing.T) {
	mux, store := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/consume-info/delete",
		`{"goodsType":"MOVIE","id":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeEnvelope(t, rec); !resp.Ok() {
		t.Fatalf("delete failed: %s", resp.Msg)
	}
	if len(store.goodsTypes) != 1 || store.goodsTypes[0] != "movie" {
		t.Fatalf("goodsType must be lowercased at the edge, got %+v", store.goodsTypes)
	}
}

func TestHealthz(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
