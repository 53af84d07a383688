package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soukly/storefront/internal/domain/auth"
	"github.com/soukly/storefront/internal/domain/catalog"
	"github.com/soukly/storefront/internal/domain/coupon"
	"github.com/soukly/storefront/internal/domain/discount"
	"github.com/soukly/storefront/internal/domain/media"
	"github.com/soukly/storefront/internal/domain/offer"
	"github.com/soukly/storefront/internal/domain/order"
)

var (
	windowStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

type memCategoryRepo struct {
	categories map[string]catalog.Category
}

func (m *memCategoryRepo) List(context.Context) ([]catalog.Category, error) {
	out := make([]catalog.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCategoryRepo) GetByID(_ context.Context, id string) (*catalog.Category, error) {
	if c, ok := m.categories[id]; ok {
		return &c, nil
	}
	return nil, catalog.ErrCategoryNotFound
}

func (m *memCategoryRepo) Create(_ context.Context, c *catalog.Category) error {
	m.categories[c.ID] = *c
	return nil
}

func (m *memCategoryRepo) Update(_ context.Context, c *catalog.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return catalog.ErrCategoryNotFound
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *memCategoryRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

type memProductTypeRepo struct{}

func (memProductTypeRepo) List(context.Context) ([]catalog.ProductType, error) { return nil, nil }
func (memProductTypeRepo) GetByID(context.Context, string) (*catalog.ProductType, error) {
	return nil, catalog.ErrProductTypeNotFound
}
func (memProductTypeRepo) Create(context.Context, *catalog.ProductType) error { return nil }
func (memProductTypeRepo) Update(context.Context, *catalog.ProductType) error { return nil }
func (memProductTypeRepo) Delete(context.Context, string) error               { return nil }

type memProductRepo struct {
	products map[string]catalog.Product
}

func (m *memProductRepo) List(context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memProductRepo) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	if p, ok := m.products[id]; ok {
		return &p, nil
	}
	return nil, catalog.ErrProductNotFound
}

func (m *memProductRepo) GetByIDs(_ context.Context, ids []string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProductRepo) Create(_ context.Context, p *catalog.Product) error {
	m.products[p.ID] = *p
	return nil
}

func (m *memProductRepo) Update(_ context.Context, p *catalog.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

type memOfferRepo struct {
	offers map[string]offer.Offer
}

func (m *memOfferRepo) List(context.Context) ([]offer.Offer, error) {
	out := make([]offer.Offer, 0, len(m.offers))
	for _, o := range m.offers {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOfferRepo) ListActive(ctx context.Context) ([]offer.Offer, error) {
	all, _ := m.List(ctx)
	var out []offer.Offer
	for _, o := range all {
		if o.ActiveAt(time.Now()) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOfferRepo) GetByID(_ context.Context, id string) (*offer.Offer, error) {
	if o, ok := m.offers[id]; ok {
		return &o, nil
	}
	return nil, offer.ErrNotFound
}

func (m *memOfferRepo) Create(_ context.Context, o *offer.Offer) error {
	m.offers[o.ID] = *o
	return nil
}

func (m *memOfferRepo) Update(_ context.Context, o *offer.Offer) error {
	if _, ok := m.offers[o.ID]; !ok {
		return offer.ErrNotFound
	}
	m.offers[o.ID] = *o
	return nil
}

func (m *memOfferRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.offers[id]; !ok {
		return offer.ErrNotFound
	}
	delete(m.offers, id)
	return nil
}

type memCouponRepo struct {
	coupons map[string]coupon.Coupon
}

func (m *memCouponRepo) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	for _, c := range m.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, coupon.ErrNotFound
}

func (m *memCouponRepo) List(context.Context) ([]coupon.Coupon, error) {
	out := make([]coupon.Coupon, 0, len(m.coupons))
	for _, c := range m.coupons {
		out = append(out, c)
	}
	return out, nil
}

func (m *memCouponRepo) GetByID(_ context.Context, id string) (*coupon.Coupon, error) {
	if c, ok := m.coupons[id]; ok {
		return &c, nil
	}
	return nil, coupon.ErrNotFound
}

func (m *memCouponRepo) Create(_ context.Context, c *coupon.Coupon) error {
	m.coupons[c.ID] = *c
	return nil
}

func (m *memCouponRepo) Update(_ context.Context, c *coupon.Coupon) error {
	if _, ok := m.coupons[c.ID]; !ok {
		return coupon.ErrNotFound
	}
	m.coupons[c.ID] = *c
	return nil
}

func (m *memCouponRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.coupons[id]; !ok {
		return coupon.ErrNotFound
	}
	delete(m.coupons, id)
	return nil
}

type memLedger struct {
	limits map[string]int
	used   map[string]int
}

func (m *memLedger) CountUsage(_ context.Context, couponID string) (int, error) {
	return m.used[couponID], nil
}

func (m *memLedger) Redeem(_ context.Context, couponID string) error {
	if m.used == nil {
		m.used = map[string]int{}
	}
	if limit, ok := m.limits[couponID]; ok && m.used[couponID] >= limit {
		return coupon.ErrUsageLimitReached
	}
	m.used[couponID]++
	return nil
}

type memMediaStore struct {
	items map[string]media.Item
	// deleteErr forces row deletion to fail, simulating a dangling row.
	deleteErr error
}

func (m *memMediaStore) Insert(_ context.Context, items []media.Item) error {
	for _, it := range items {
		m.items[it.ID] = it
	}
	return nil
}

func (m *memMediaStore) ListByProduct(_ context.Context, productID string) ([]media.Item, error) {
	var out []media.Item
	for _, it := range m.items {
		if it.ProductID == productID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memMediaStore) GetByID(_ context.Context, id string) (*media.Item, error) {
	if it, ok := m.items[id]; ok {
		return &it, nil
	}
	return nil, media.ErrNotFound
}

func (m *memMediaStore) SetMain(_ context.Context, productID, mediaID string) error {
	target, ok := m.items[mediaID]
	if !ok || target.ProductID != productID {
		return media.ErrNotFound
	}
	for id, it := range m.items {
		if it.ProductID == productID {
			it.IsMain = id == mediaID
			m.items[id] = it
		}
	}
	return nil
}

func (m *memMediaStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.items[id]; !ok {
		return media.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memObjects struct {
	removeErr error
}

func (m *memObjects) Upload(_ context.Context, u media.Upload) (*media.StoredObject, error) {
	return &media.StoredObject{
		URL:  "https://cdn.example.com/" + u.Name,
		Path: "products/" + u.Name,
	}, nil
}

func (m *memObjects) Remove(_ context.Context, paths []string) ([]media.RemoveResult, error) {
	out := make([]media.RemoveResult, len(paths))
	for i, p := range paths {
		out[i] = media.RemoveResult{Path: p, Err: m.removeErr}
	}
	return out, nil
}

type memKeyRepo struct {
	hash string
}

func (m *memKeyRepo) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	if hash == m.hash {
		return &auth.APIKeyInfo{ID: "k1", KeyHash: m.hash, Name: "test"}, nil
	}
	return nil, auth.ErrKeyNotFound
}

type env struct {
	router     http.Handler
	products   *memProductRepo
	coupons    *memCouponRepo
	ledger     *memLedger
	mediaStore *memMediaStore
	objects    *memObjects
}

const testAPIKey = "secret-admin-key"

var testPepper = []byte("pepper")

func newEnv(t *testing.T) *env {
	t.Helper()

	products := &memProductRepo{products: map[string]catalog.Product{
		"p1": {ID: "p1", NameEN: "Mug", Price: decimal.NewFromInt(100), CategoryID: "cat-1", Active: true},
	}}
	offers := &memOfferRepo{offers: map[string]offer.Offer{}}
	coupons := &memCouponRepo{coupons: map[string]coupon.Coupon{
		"c1": {
			ID:       "c1",
			Code:     "SAVE10",
			Discount: discount.Spec{Type: discount.Percentage, Value: decimal.NewFromInt(10)},
			StartAt:  windowStart,
			EndAt:    windowEnd,
			Active:   true,
		},
	}}
	ledger := &memLedger{limits: map[string]int{}}
	mediaStore := &memMediaStore{items: map[string]media.Item{}}
	objects := &memObjects{}

	redeemer := coupon.NewRedeemer(coupons, ledger)
	orderRepo := &memOrderRepo{orders: map[string]order.Order{}}

	h := NewHandler(
		&memCategoryRepo{categories: map[string]catalog.Category{
			"cat-1": {ID: "cat-1", NameEN: "Kitchen", NameAR: "مطبخ"},
		}},
		memProductTypeRepo{},
		products,
		catalog.NewPricer(products, offers),
		offers,
		coupons,
		redeemer,
		media.NewReconciler(mediaStore, objects, zap.NewNop()),
		order.NewService(products, offers, redeemer, orderRepo),
	)

	authMw := APIKeyAuth(&memKeyRepo{hash: HashAPIKey(testAPIKey, testPepper)}, testPepper)
	return &env{
		router:     h.Routes(authMw),
		products:   products,
		coupons:    coupons,
		ledger:     ledger,
		mediaStore: mediaStore,
		objects:    objects,
	}
}

type memOrderRepo struct {
	orders map[string]order.Order
}

func (m *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.orders[o.ID] = *o
	return nil
}

func (m *memOrderRepo) List(context.Context) ([]order.Order, error) {
	out := make([]order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	if o, ok := m.orders[id]; ok {
		return &o, nil
	}
	return nil, order.ErrNotFound
}

func (m *memOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (e *env) do(t *testing.T, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(APIKeyHeader, testAPIKey)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestListPricedProducts(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/products", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)

	var out []pricedProductResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)
	assert.True(t, decimal.NewFromInt(100).Equal(out[0].FinalPrice))
	assert.Nil(t, out[0].AppliedOffer)
}

func TestGetPricedProduct_NotFound(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/products/missing", nil, false)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewCoupon(t *testing.T) {
	e := newEnv(t)

	t.Run("valid code", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/coupons/preview", couponPreviewRequest{
			Code:       "save10",
			OrderTotal: decimal.NewFromInt(200),
		}, false)

		require.Equal(t, http.StatusOK, rec.Code)
		var out couponPreviewResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, "SAVE10", out.Code)
		assert.True(t, decimal.NewFromInt(20).Equal(out.Discount))
		assert.True(t, decimal.NewFromInt(180).Equal(out.Total))
		assert.Zero(t, e.ledger.used["c1"], "preview never records a redemption")
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/coupons/preview", couponPreviewRequest{
			Code:       "NOPE",
			OrderTotal: decimal.NewFromInt(200),
		}, false)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("inactive code is 422 with reason", func(t *testing.T) {
		c := e.coupons.coupons["c1"]
		c.Active = false
		e.coupons.coupons["c1"] = c
		defer func() {
			c.Active = true
			e.coupons.coupons["c1"] = c
		}()

		rec := e.do(t, http.MethodPost, "/api/coupons/preview", couponPreviewRequest{
			Code:       "SAVE10",
			OrderTotal: decimal.NewFromInt(200),
		}, false)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var out errorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
		assert.Equal(t, "INACTIVE", out.Reason)
	})
}

func TestPlaceOrder(t *testing.T) {
	e := newEnv(t)

	body := map[string]any{
		"items":       []map[string]any{{"product_id": "p1", "quantity": 2}},
		"coupon_code": "SAVE10",
		"governorate": "cairo",
	}
	rec := e.do(t, http.MethodPost, "/api/orders", body, false)

	require.Equal(t, http.StatusCreated, rec.Code)
	var out orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, decimal.NewFromInt(200).Equal(out.Subtotal))
	assert.True(t, decimal.NewFromInt(20).Equal(out.Discount))
	assert.True(t, decimal.NewFromInt(35).Equal(out.ShippingFee))
	assert.True(t, decimal.NewFromInt(215).Equal(out.Total))
	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, 1, e.ledger.used["c1"])
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	e := newEnv(t)

	body := map[string]any{
		"items": []map[string]any{{"product_id": "ghost", "quantity": 1}},
	}
	rec := e.do(t, http.MethodPost, "/api/orders", body, false)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminAuth(t *testing.T) {
	e := newEnv(t)

	t.Run("missing key", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/admin/orders", nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
		req.Header.Set(APIKeyHeader, "wrong")
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid key", func(t *testing.T) {
		rec := e.do(t, http.MethodGet, "/api/admin/orders", nil, true)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminProductCRUD(t *testing.T) {
	e := newEnv(t)

	created := e.do(t, http.MethodPost, "/api/admin/products", productRequest{
		NameEN:     "Plate",
		Price:      decimal.NewFromInt(50),
		CategoryID: "cat-1",
		Active:     true,
	}, true)
	require.Equal(t, http.StatusCreated, created.Code)

	var p productResponse
	require.NoError(t, json.NewDecoder(created.Body).Decode(&p))
	require.NotEmpty(t, p.ID)

	t.Run("negative price rejected", func(t *testing.T) {
		rec := e.do(t, http.MethodPost, "/api/admin/products", productRequest{
			NameEN:     "Broken",
			Price:      decimal.NewFromInt(-1),
			CategoryID: "cat-1",
		}, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/api/admin/products/"+p.ID, nil, true)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = e.do(t, http.MethodDelete, "/api/admin/products/"+p.ID, nil, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/api/orders", map[string]any{
		"items": []map[string]any{{"product_id": "p1", "quantity": 1}},
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	var placed orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&placed))

	rec = e.do(t, http.MethodPatch, "/api/admin/orders/"+placed.ID+"/status",
		updateStatusRequest{Status: "shipped"}, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPatch, "/api/admin/orders/"+placed.ID+"/status",
		updateStatusRequest{Status: "lost-in-space"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMedia_ErrorMapping(t *testing.T) {
	e := newEnv(t)
	e.mediaStore.items["m1"] = media.Item{ID: "m1", ProductID: "p1", PublicID: "products/a.jpg"}

	t.Run("storage failure is 502 and keeps the row", func(t *testing.T) {
		e.objects.removeErr = errors.New("bucket down")
		defer func() { e.objects.removeErr = nil }()

		rec := e.do(t, http.MethodDelete, "/api/admin/media/m1", nil, true)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		_, ok := e.mediaStore.items["m1"]
		assert.True(t, ok)
	})

	t.Run("row delete failure after storage success is 500", func(t *testing.T) {
		e.mediaStore.deleteErr = errors.New("db down")
		defer func() { e.mediaStore.deleteErr = nil }()

		rec := e.do(t, http.MethodDelete, "/api/admin/media/m1", nil, true)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("success is 204", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/api/admin/media/m1", nil, true)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("unknown media is 404", func(t *testing.T) {
		rec := e.do(t, http.MethodDelete, "/api/admin/media/ghost", nil, true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAddProductMedia_Multipart(t *testing.T) {
	e := newEnv(t)

	var buf bytes.Buffer
	const boundary = "testboundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString(`Content-Disposition: form-data; name="files"; filename="a.jpg"` + "\r\n")
	buf.WriteString("Content-Type: image/jpeg\r\n\r\n")
	buf.WriteString("jpegdata\r\n")
	buf.WriteString("--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/p1/media", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	req.Header.Set(APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var out []mediaResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "image", out[0].FileType)
	assert.False(t, out[0].IsMain, "new media is never main")
	assert.True(t, strings.HasPrefix(out[0].FileURL, "https://cdn.example.com/"))
}

func TestSetMainMedia(t *testing.T) {
	e := newEnv(t)
	e.mediaStore.items["m1"] = media.Item{ID: "m1", ProductID: "p1", IsMain: true}
	e.mediaStore.items["m2"] = media.Item{ID: "m2", ProductID: "p1"}

	rec := e.do(t, http.MethodPut, "/api/admin/products/p1/media/m2/main", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, e.mediaStore.items["m1"].IsMain)
	assert.True(t, e.mediaStore.items["m2"].IsMain)
}
