package storefront

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"github.com/ars-4/grocer-middleware/internal/httputil"
	"github.com/ars-4/grocer-middleware/internal/odoo"
)

var orderFields = []string{"id", "name", "partner_id", "amount_total", "date_order", "order_line", "state", "tag_ids"}

func (s *Service) handleListOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	domain := []any{}
	if customerID, ok := parseID(r.URL.Query().Get("customer_id")); ok {
		domain = append(domain, []any{"partner_id", "=", customerID})
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "sale.order", "search_read",
		[]any{domain},
		map[string]any{"fields": orderFields})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("list orders: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to fetch orders from Odoo.", err))
		return
	}

	orders := make([]Order, 0, len(result.Array()))
	for _, rec := range result.Array() {
		orders = append(orders, orderFromRecord(rec))
	}

	httputil.WriteJSON(w, http.StatusOK, orders)
}

func (s *Service) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var payload struct {
		CustomerID int64 `json:"customer_id"`
		Products   []struct {
			ID  int64   `json:"id"`
			Qty float64 `json:"qty"`
		} `json:"products"`
	}
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteErr(w, httputil.Validation("Customer ID and products are required"))
		return
	}
	if payload.CustomerID == 0 || len(payload.Products) == 0 {
		httputil.WriteErr(w, httputil.Validation("Customer ID and products are required"))
		return
	}

	// Orders placed through the gateway are classified with the "mobile"
	// tag when it exists; a missing tag is tolerated, not an error.
	tagResult, err := s.rpc.ExecuteKw(r.Context(), sess, "crm.tag", "search_read",
		[]any{[]any{[]any{"name", "=", "mobile"}}},
		map[string]any{"fields": []string{"id"}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("lookup mobile tag: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to create order in Odoo.", err))
		return
	}
	var mobileTagID int64
	if tags := tagResult.Array(); len(tags) > 0 {
		mobileTagID = odoo.Int(tags[0], "id")
	}

	lines := make([]odoo.Command, 0, len(payload.Products))
	for _, p := range payload.Products {
		lines = append(lines, odoo.CreateRecord(map[string]any{
			"product_id":      p.ID,
			"product_uom_qty": p.Qty,
		}))
	}

	tagCommands := []odoo.Command{}
	if mobileTagID != 0 {
		tagCommands = append(tagCommands, odoo.ReplaceAll([]int64{mobileTagID}))
	}

	createResult, err := s.rpc.ExecuteKw(r.Context(), sess, "sale.order", "create",
		[]any{map[string]any{
			"partner_id": payload.CustomerID,
			"order_line": lines,
			"tag_ids":    tagCommands,
		}}, nil)
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("create order: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to create order in Odoo.", err))
		return
	}
	orderID := createResult.Int()

	readResult, err := s.rpc.ExecuteKw(r.Context(), sess, "sale.order", "read",
		[]any{[]int64{orderID}},
		map[string]any{"fields": orderFields})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("read created order %d: %v", orderID, err)
		httputil.WriteErr(w, httputil.Internal("Failed to create order in Odoo.", err))
		return
	}

	records := readResult.Array()
	if len(records) == 0 {
		httputil.WriteErr(w, httputil.Internal("Failed to create order in Odoo.", nil))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, orderFromRecord(records[0]))
}

func (s *Service) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	orderID, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		httputil.WriteErr(w, httputil.NotFound("Order not found"))
		return
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "sale.order", "read",
		[]any{[]int64{orderID}},
		map[string]any{"fields": orderFields})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("read order %d: %v", orderID, err)
		httputil.WriteErr(w, httputil.Internal("Failed to fetch order from Odoo.", err))
		return
	}

	records := result.Array()
	if len(records) == 0 {
		httputil.WriteErr(w, httputil.NotFound("Order not found"))
		return
	}
	order := orderFromRecord(records[0])

	lines := make([]OrderLine, 0, len(order.LineIDs))
	if len(order.LineIDs) > 0 {
		lineResult, err := s.rpc.ExecuteKw(r.Context(), sess, "sale.order.line", "read",
			[]any{order.LineIDs},
			map[string]any{"fields": []string{"id", "product_id", "product_uom_qty", "price_total"}})
		if err != nil {
			s.log.WithTrace(r.Context()).Errorf("read lines for order %d: %v", orderID, err)
			httputil.WriteErr(w, httputil.Internal("Failed to fetch order from Odoo.", err))
			return
		}
		for _, rec := range lineResult.Array() {
			lines = append(lines, OrderLine{
				Product: odoo.Many2One(rec, "product_id"),
				Qty:     odoo.Float(rec, "product_uom_qty"),
				Amount:  odoo.Float(rec, "price_total"),
			})
		}
	}

	httputil.WriteJSON(w, http.StatusOK, OrderDetail{
		ID:          order.ID,
		Name:        order.Name,
		Partner:     order.Partner,
		AmountTotal: order.AmountTotal,
		State:       order.State,
		DateOrder:   order.DateOrder,
		Products:    lines,
		TagIDs:      order.TagIDs,
	})
}

func orderFromRecord(rec gjson.Result) Order {
	return Order{
		ID:          odoo.Int(rec, "id"),
		Name:        odoo.Str(rec, "name"),
		Partner:     odoo.Many2One(rec, "partner_id"),
		AmountTotal: odoo.Float(rec, "amount_total"),
		DateOrder:   odoo.Str(rec, "date_order"),
		State:       odoo.Str(rec, "state"),
		LineIDs:     odoo.IDs(rec, "order_line"),
		TagIDs:      odoo.IDs(rec, "tag_ids"),
	}
}
