package storefront

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListCategoriesImageResolution(t *testing.T) {
	rpc := newFakeRPC()
	rpc.respond("product.public.category", "search_read", `[
		{"id": 1, "name": "Dairy", "parent_id": false, "sequence": 1, "image_256": "iVBORw0KGgo="},
		{"id": 2, "name": "Bakery", "parent_id": [1, "Dairy"], "sequence": 2, "image_256": false}
	]`)
	router := newTestRouter(rpc, &stubOTP{})

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var categories []Category
	if err := json.Unmarshal(rr.Body.Bytes(), &categories); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(categories))
	}

	want := "https://acme.odoo.example/web/image/product.public.category/1/image_256"
	if categories[0].Image != want {
		t.Errorf("image = %q, want %q", categories[0].Image, want)
	}
	if categories[1].Image != "" {
		t.Errorf("image for record without image field = %q, want empty", categories[1].Image)
	}
}

func TestListProductsRibbonAndDescription(t *testing.T) {
	rpc := newFakeRPC()
	rpc.respond("product.template", "search_read", `[
		{"id": 8, "name": "Milk", "list_price": 3.5,
		 "description_ecommerce": "Fresh <b>milk</b> &amp; cream",
		 "public_categ_ids": [1], "website_published": true,
		 "image_256": "iVBORw0KGgo=", "website_ribbon_id": [5, "Sale"]},
		{"id": 9, "name": "Eggs", "list_price": 2.0,
		 "description_ecommerce": false,
		 "public_categ_ids": false, "website_published": true,
		 "image_256": false, "website_ribbon_id": false}
	]`)
	rpc.respond("product.ribbon", "read", `[
		{"id": 5, "display_name": "Sale", "bg_color": "#00AbCd", "text_color": false}
	]`)
	router := newTestRouter(rpc, &stubOTP{})

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var products []Product
	if err := json.Unmarshal(rr.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	milk := products[0]
	if milk.Description != "Fresh milk & cream" {
		t.Errorf("description = %q, want entities decoded and tags stripped", milk.Description)
	}
	if milk.RibbonName == nil || *milk.RibbonName != "Sale" {
		t.Errorf("ribbon name = %v, want Sale", milk.RibbonName)
	}
	// Hex case is preserved through the 0xFF transform.
	if milk.RibbonBgColor == nil || *milk.RibbonBgColor != "0xFF00AbCd" {
		t.Errorf("ribbon bg = %v, want 0xFF00AbCd", milk.RibbonBgColor)
	}
	// Absent text color falls back to the default before transformation.
	if milk.RibbonTextColor == nil || *milk.RibbonTextColor != "0xFFfff" {
		t.Errorf("ribbon text = %v, want 0xFFfff", milk.RibbonTextColor)
	}

	eggs := products[1]
	if eggs.RibbonName != nil || eggs.RibbonBgColor != nil || eggs.RibbonTextColor != nil {
		t.Errorf("product without ribbon should keep null ribbon fields")
	}
	if eggs.ImageURL != "" {
		t.Errorf("image_url = %q, want empty", eggs.ImageURL)
	}

	// The ribbon read happens once, over the distinct referenced ids.
	ribbonReads := rpc.callsTo("product.ribbon", "read")
	if len(ribbonReads) != 1 {
		t.Fatalf("ribbon reads = %d, want 1", len(ribbonReads))
	}
}

func TestListProductsSkipsRibbonReadWhenNoneReferenced(t *testing.T) {
	rpc := newFakeRPC()
	rpc.respond("product.template", "search_read", `[
		{"id": 9, "name": "Eggs", "list_price": 2.0, "description_ecommerce": false,
		 "public_categ_ids": false, "website_published": true,
		 "image_256": false, "website_ribbon_id": false}
	]`)
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if calls := rpc.callsTo("product.ribbon", "read"); len(calls) != 0 {
		t.Fatalf("ribbon reads = %d, want 0", len(calls))
	}
}

func TestListProductsCategoryFilter(t *testing.T) {
	rpc := newFakeRPC()
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products?category_id=7", nil))

	calls := rpc.callsTo("product.template", "search_read")
	if len(calls) != 1 {
		t.Fatalf("search_read calls = %d, want 1", len(calls))
	}
	domain := calls[0].argsJSON().Get("0")
	if domain.Get("#").Int() != 2 {
		t.Fatalf("domain = %s, want published clause plus category clause", domain.Raw)
	}
	if got := domain.Get("1.2").Int(); got != 7 {
		t.Errorf("category clause value = %d, want 7", got)
	}
}

func TestListProductsMalformedCategoryIgnored(t *testing.T) {
	// Numeric query parameters parse leniently: garbage reads as absent.
	rpc := newFakeRPC()
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/products?category_id=banana", nil))

	calls := rpc.callsTo("product.template", "search_read")
	if len(calls) != 1 {
		t.Fatalf("search_read calls = %d, want 1", len(calls))
	}
	domain := calls[0].argsJSON().Get("0")
	if domain.Get("#").Int() != 1 {
		t.Errorf("domain = %s, want only the published clause", domain.Raw)
	}
}

func TestProductDetailNoGalleryNoMainImage(t *testing.T) {
	rpc := newFakeRPC()
	rpc.respond("product.template", "read", `[
		{"id": 8, "name": "Milk", "list_price": 3.5, "description_ecommerce": false,
		 "public_categ_ids": false, "website_published": true,
		 "optional_product_ids": false, "product_template_image_ids": false,
		 "website_ribbon_id": false, "image_512": false, "image_256": false}
	]`)
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/product/8", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var detail struct {
		Images []string `json:"images"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if detail.Images == nil || len(detail.Images) != 0 {
		t.Errorf("images = %v, want []", detail.Images)
	}
}

func TestProductDetailMainImageFallback(t *testing.T) {
	rpc := newFakeRPC()
	rpc.respond("product.template", "read", `[
		{"id": 8, "name": "Milk", "list_price": 3.5, "description_ecommerce": false,
		 "public_categ_ids": false, "website_published": true,
		 "optional_product_ids": false, "product_template_image_ids": false,
		 "website_ribbon_id": false, "image_512": "iVBORw0KGgo=", "image_256": false}
	]`)
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/product/8", nil))

	var detail ProductDetail
	if err := json.Unmarshal(rr.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	want := "https://acme.odoo.example/web/image/product.template/8/image_512"
	if len(detail.Images) != 1 || detail.Images[0] != want {
		t.Errorf("images = %v, want [%s]", detail.Images, want)
	}
	if detail.MainImage != want {
		t.Errorf("image_512 = %q, want %q", detail.MainImage, want)
	}
}

func TestProductDetailGalleryCategoriesRibbon(t *testing.T) {
	rpc := newFakeRPC()
	rpc.respond("product.template", "read", `[
		{"id": 8, "name": "Milk", "list_price": 3.5,
		 "description_ecommerce": "&lt;p&gt;Good&lt;/p&gt;",
		 "public_categ_ids": [1, 2], "website_published": true,
		 "optional_product_ids": [12], "product_template_image_ids": [31, 32],
		 "website_ribbon_id": [5, "Sale"], "image_512": "x", "image_256": "x"}
	]`)
	rpc.respond("product.public.category", "read", `[{"id":1,"name":"Dairy"},{"id":2,"name":"Fresh"}]`)
	rpc.respond("product.image", "read", `[{"id":31},{"id":32}]`)
	rpc.respond("product.ribbon", "read", `[{"id":5,"display_name":"Sale","bg_color":false,"text_color":"#fff"}]`)
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/product/8", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var detail ProductDetail
	if err := json.Unmarshal(rr.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if detail.Description != "Good" {
		t.Errorf("description = %q, want entity-decoded and stripped", detail.Description)
	}
	if len(detail.Images) != 2 {
		t.Fatalf("images = %v, want two gallery URLs", detail.Images)
	}
	wantFirst := "https://acme.odoo.example/web/image/product.image/31/image_512"
	if detail.Images[0] != wantFirst {
		t.Errorf("images[0] = %q, want %q", detail.Images[0], wantFirst)
	}
	if len(detail.Categories) != 2 || detail.Categories[0] != "Dairy" {
		t.Errorf("categories = %v, want resolved names", detail.Categories)
	}
	// Absent bg color defaults before the transform.
	if detail.RibbonBgColor == nil || *detail.RibbonBgColor != "0xFFf44336" {
		t.Errorf("ribbon bg = %v, want 0xFFf44336", detail.RibbonBgColor)
	}
}

func TestProductDetailNotFound(t *testing.T) {
	rpc := newFakeRPC()
	rpc.respond("product.template", "read", `[]`)
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/product/999", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["error"] != "Product not found" {
		t.Errorf("error = %q, want %q", body["error"], "Product not found")
	}
}

func TestProductDetailMalformedIDIsNotFound(t *testing.T) {
	rpc := newFakeRPC()
	router := newTestRouter(rpc, &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/product/banana", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if len(rpc.calls) != 0 {
		t.Errorf("remote calls = %d, want none for a malformed id", len(rpc.calls))
	}
}

func TestRootCredentialCheck(t *testing.T) {
	router := newTestRouter(newFakeRPC(), &stubOTP{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["msg"] != "Your Credentials Worked" {
		t.Errorf("msg = %q", body["msg"])
	}
}
