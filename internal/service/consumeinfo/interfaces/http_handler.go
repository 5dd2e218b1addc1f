// internal/service/consumeinfo/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/application"
	"github.com/luoliAsyns/ConsumeInfo/internal/service/consumeinfo/domain"
)

// ConsumeInfoHandler 封装 consume-info 服务的 HTTP 处理器。
// 所有响应都是统一信封 {code, data, msg}，HTTP 状态码恒为 200，
// 业务成败只看 code。
type ConsumeInfoHandler struct {
	service *application.ConsumeInfoApplicationService
}

func NewConsumeInfoHandler(service *application.ConsumeInfoApplicationService) *ConsumeInfoHandler {
	return &ConsumeInfoHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *ConsumeInfoHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/consume-info/insert", h.insertHandler)
	mux.HandleFunc("/api/consume-info/query-id", h.queryByIdHandler)
	mux.HandleFunc("/api/consume-info/query-coupon", h.queryByCouponHandler)
	mux.HandleFunc("/api/consume-info/update", h.updateHandler)
	mux.HandleFunc("/api/consume-info/delete", h.deleteHandler)
}

func (h *ConsumeInfoHandler) insertHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var info domain.ConsumeInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeJSON(w, domain.FailWith[bool]("while ConsumeInfo insert, decode body failed: "+err.Error()))
		return
	}
	writeJSON(w, h.service.Insert(ctx, &info))
}

func (h *ConsumeInfoHandler) queryByIdHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	goodsType := strings.ToLower(r.URL.Query().Get("goodsType"))
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeJSON(w, domain.FailWith[*domain.ConsumeInfo]("invalid id: "+err.Error()))
		return
	}
	writeJSON(w, h.service.GetById(ctx, goodsType, id))
}

func (h *ConsumeInfoHandler) queryByCouponHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	goodsType := strings.ToLower(r.URL.Query().Get("goodsType"))
	coupon := r.URL.Query().Get("coupon")
	writeJSON(w, h.service.GetByCoupon(ctx, goodsType, coupon))
}

func (h *ConsumeInfoHandler) updateHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req application.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, domain.FailWith[bool]("while ConsumeInfo update, decode body failed: "+err.Error()))
		return
	}
	writeJSON(w, h.service.Update(ctx, &req))
}

type deleteRequest struct {
	GoodsType string `json:"goodsType"`
	Id        int64  `json:"id"`
}

func (h *ConsumeInfoHandler) deleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, domain.FailWith[bool]("while ConsumeInfo delete, decode body failed: "+err.Error()))
		return
	}
	writeJSON(w, h.service.Delete(ctx, strings.ToLower(req.GoodsType), req.Id))
}

func extractTraceContext(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON[T any](w http.ResponseWriter, resp domain.Result[T]) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
