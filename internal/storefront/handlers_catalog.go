package storefront

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"github.com/ars-4/grocer-middleware/internal/httputil"
	"github.com/ars-4/grocer-middleware/internal/odoo"
)

func (s *Service) handleListCategories(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "product.public.category", "search_read",
		[]any{[]any{}},
		map[string]any{"fields": []string{"id", "name", "parent_id", "sequence", "image_256"}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("list categories: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to fetch categories from Odoo.", err))
		return
	}

	base := s.rpc.BaseURL(sess.Tenant)
	categories := make([]Category, 0, len(result.Array()))
	for _, rec := range result.Array() {
		id := odoo.Int(rec, "id")

		// Image presence is detected solely by the field holding a
		// non-empty encoded value; no extra existence call.
		image := ""
		if odoo.Str(rec, "image_256") != "" {
			image = imageURL(base, "product.public.category", id, "image_256")
		}

		categories = append(categories, Category{
			ID:       id,
			Name:     odoo.Str(rec, "name"),
			Parent:   odoo.Many2One(rec, "parent_id"),
			Sequence: odoo.Int(rec, "sequence"),
			Image:    image,
		})
	}

	httputil.WriteJSON(w, http.StatusOK, categories)
}

func (s *Service) handleListProducts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	domain := []any{[]any{"website_published", "=", true}}
	if categoryID, ok := parseID(r.URL.Query().Get("category_id")); ok {
		domain = append(domain, []any{"public_categ_ids", "=", categoryID})
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "product.template", "search_read",
		[]any{domain},
		map[string]any{"fields": []string{
			"id", "name", "list_price", "description_ecommerce",
			"public_categ_ids", "website_published", "image_256", "website_ribbon_id",
		}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("list products: %v", err)
		httputil.WriteErr(w, httputil.Internal("Failed to fetch products from Odoo.", err))
		return
	}

	records := result.Array()

	// Collect the distinct ribbon ids referenced by the listing before
	// reading their details in one batch.
	seen := make(map[int64]bool)
	ribbonIDs := make([]int64, 0)
	for _, rec := range records {
		if ref := odoo.Many2One(rec, "website_ribbon_id"); !ref.IsZero() && !seen[ref.ID] {
			seen[ref.ID] = true
			ribbonIDs = append(ribbonIDs, ref.ID)
		}
	}

	ribbons := make(map[int64]ribbon)
	if len(ribbonIDs) > 0 {
		ribbonResult, err := s.rpc.ExecuteKw(r.Context(), sess, "product.ribbon", "read",
			[]any{ribbonIDs},
			map[string]any{"fields": []string{"display_name", "bg_color", "text_color"}})
		if err != nil {
			s.log.WithTrace(r.Context()).Errorf("read ribbons: %v", err)
			httputil.WriteErr(w, httputil.Internal("Failed to fetch products from Odoo.", err))
			return
		}
		for _, rec := range ribbonResult.Array() {
			ribbons[odoo.Int(rec, "id")] = ribbonFromRecord(rec)
		}
	}

	base := s.rpc.BaseURL(sess.Tenant)
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		product := productFromRecord(rec, base)
		if ref := odoo.Many2One(rec, "website_ribbon_id"); !ref.IsZero() {
			if rb, found := ribbons[ref.ID]; found {
				product.attachRibbon(rb)
			}
		}
		products = append(products, product)
	}

	httputil.WriteJSON(w, http.StatusOK, products)
}

func (s *Service) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	productID, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		httputil.WriteErr(w, httputil.NotFound("Product not found"))
		return
	}

	result, err := s.rpc.ExecuteKw(r.Context(), sess, "product.template", "read",
		[]any{[]int64{productID}},
		map[string]any{"fields": []string{
			"id", "name", "list_price", "description_ecommerce",
			"public_categ_ids", "website_published", "optional_product_ids",
			"product_template_image_ids", "website_ribbon_id", "image_512",
		}})
	if err != nil {
		s.log.WithTrace(r.Context()).Errorf("read product %d: %v", productID, err)
		httputil.WriteErr(w, httputil.Internal("Failed to fetch product from Odoo.", err))
		return
	}

	records := result.Array()
	if len(records) == 0 {
		httputil.WriteErr(w, httputil.NotFound("Product not found"))
		return
	}
	rec := records[0]
	base := s.rpc.BaseURL(sess.Tenant)

	detail := ProductDetail{
		Product:            productFromRecord(rec, base),
		OptionalProductIDs: odoo.IDs(rec, "optional_product_ids"),
		Images:             make([]string, 0),
		Categories:         make([]string, 0),
	}

	if categoryIDs := odoo.IDs(rec, "public_categ_ids"); len(categoryIDs) > 0 {
		categoryResult, err := s.rpc.ExecuteKw(r.Context(), sess, "product.public.category", "read",
			[]any{categoryIDs},
			map[string]any{"fields": []string{"name"}})
		if err != nil {
			s.log.WithTrace(r.Context()).Errorf("read categories for product %d: %v", productID, err)
			httputil.WriteErr(w, httputil.Internal("Failed to fetch product from Odoo.", err))
			return
		}
		for _, cat := range categoryResult.Array() {
			detail.Categories = append(detail.Categories, odoo.Str(cat, "name"))
		}
	}

	if imageIDs := odoo.IDs(rec, "product_template_image_ids"); len(imageIDs) > 0 {
		imageResult, err := s.rpc.ExecuteKw(r.Context(), sess, "product.image", "read",
			[]any{imageIDs},
			map[string]any{"fields": []string{"id"}})
		if err != nil {
			s.log.WithTrace(r.Context()).Errorf("read gallery for product %d: %v", productID, err)
			httputil.WriteErr(w, httputil.Internal("Failed to fetch product from Odoo.", err))
			return
		}
		for _, img := range imageResult.Array() {
			detail.Images = append(detail.Images, imageURL(base, "product.image", odoo.Int(img, "id"), "image_512"))
		}
	} else if odoo.Str(rec, "image_512") != "" {
		// No gallery: fall back to the template's own main image.
		detail.Images = append(detail.Images, imageURL(base, "product.template", productID, "image_512"))
	}

	if len(detail.Images) > 0 {
		detail.MainImage = detail.Images[0]
	}

	if ref := odoo.Many2One(rec, "website_ribbon_id"); !ref.IsZero() {
		ribbonResult, err := s.rpc.ExecuteKw(r.Context(), sess, "product.ribbon", "read",
			[]any{[]int64{ref.ID}},
			map[string]any{"fields": []string{"display_name", "bg_color", "text_color"}})
		if err != nil {
			s.log.WithTrace(r.Context()).Errorf("read ribbon for product %d: %v", productID, err)
			httputil.WriteErr(w, httputil.Internal("Failed to fetch product from Odoo.", err))
			return
		}
		if ribbonRecords := ribbonResult.Array(); len(ribbonRecords) > 0 {
			detail.attachRibbon(ribbonFromRecord(ribbonRecords[0]))
		}
	}

	httputil.WriteJSON(w, http.StatusOK, detail)
}

// productFromRecord translates a product.template record into the listing
// contract: plain-text description, resolved image URL, no ribbon yet.
func productFromRecord(rec gjson.Result, base string) Product {
	id := odoo.Int(rec, "id")

	image := ""
	if odoo.Str(rec, "image_256") != "" {
		image = imageURL(base, "product.template", id, "image_256")
	}

	return Product{
		ID:          id,
		Name:        odoo.Str(rec, "name"),
		ListPrice:   odoo.Float(rec, "list_price"),
		Description: plainText(odoo.Str(rec, "description_ecommerce")),
		CategoryIDs: odoo.IDs(rec, "public_categ_ids"),
		Published:   odoo.Bool(rec, "website_published"),
		ImageURL:    image,
	}
}

// ribbonFromRecord translates a product.ribbon record, substituting the
// documented defaults for absent colors.
func ribbonFromRecord(rec gjson.Result) ribbon {
	bg := odoo.Str(rec, "bg_color")
	if bg == "" {
		bg = defaultRibbonBgColor
	}
	text := odoo.Str(rec, "text_color")
	if text == "" {
		text = defaultRibbonTextColor
	}
	return ribbon{
		Name:      odoo.Str(rec, "display_name"),
		BgColor:   bg,
		TextColor: text,
	}
}

func (p *Product) attachRibbon(rb ribbon) {
	name := rb.Name
	bg := colorToken(rb.BgColor, defaultRibbonBgColor)
	text := colorToken(rb.TextColor, defaultRibbonTextColor)
	p.RibbonName = &name
	p.RibbonBgColor = &bg
	p.RibbonTextColor = &text
}

// parseID parses a numeric path/query parameter leniently: a
// missing or malformed value reads as absent rather than an error.
func parseID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
