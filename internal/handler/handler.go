// Package handler exposes the storefront and admin HTTP API.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/soukly/storefront/internal/domain/catalog"
	"github.com/soukly/storefront/internal/domain/coupon"
	"github.com/soukly/storefront/internal/domain/media"
	"github.com/soukly/storefront/internal/domain/offer"
	"github.com/soukly/storefront/internal/domain/order"
)

// Handler holds the domain dependencies behind the HTTP API.
type Handler struct {
	categories   catalog.CategoryRepository
	productTypes catalog.ProductTypeRepository
	products     catalog.ProductRepository
	pricer       *catalog.Pricer
	offers       offer.Repository
	coupons      coupon.Repository
	redeemer     *coupon.Redeemer
	media        *media.Reconciler
	orders       *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	categories catalog.CategoryRepository,
	productTypes catalog.ProductTypeRepository,
	products catalog.ProductRepository,
	pricer *catalog.Pricer,
	offers offer.Repository,
	coupons coupon.Repository,
	redeemer *coupon.Redeemer,
	mediaRec *media.Reconciler,
	orders *order.Service,
) *Handler {
	return &Handler{
		categories:   categories,
		productTypes: productTypes,
		products:     products,
		pricer:       pricer,
		offers:       offers,
		coupons:      coupons,
		redeemer:     redeemer,
		media:        mediaRec,
		orders:       orders,
	}
}

// Routes builds the API router. Storefront routes are public; everything
// under /admin requires an API key.
func (h *Handler) Routes(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(labelRoute)

	r.Route("/api", func(r chi.Router) {
		// Storefront.
		r.Get("/products", h.listPricedProducts)
		r.Get("/products/{id}", h.getPricedProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/governorates", h.listGovernorates)
		r.Post("/coupons/preview", h.previewCoupon)
		r.Post("/orders", h.placeOrder)

		// Admin.
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.listCategories)
				r.Post("/", h.createCategory)
				r.Put("/{id}", h.updateCategory)
				r.Delete("/{id}", h.deleteCategory)
			})

			r.Route("/product-types", func(r chi.Router) {
				r.Get("/", h.listProductTypes)
				r.Post("/", h.createProductType)
				r.Put("/{id}", h.updateProductType)
				r.Delete("/{id}", h.deleteProductType)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.listProducts)
				r.Post("/", h.createProduct)
				r.Get("/{id}", h.getProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)

				r.Get("/{id}/media", h.listProductMedia)
				r.Post("/{id}/media", h.addProductMedia)
				r.Put("/{id}/media/{mediaID}/main", h.setMainMedia)
			})

			r.Delete("/media/{id}", h.deleteMedia)

			r.Route("/offers", func(r chi.Router) {
				r.Get("/", h.listOffers)
				r.Post("/", h.createOffer)
				r.Get("/{id}", h.getOffer)
				r.Put("/{id}", h.updateOffer)
				r.Delete("/{id}", h.deleteOffer)
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", h.listCoupons)
				r.Post("/", h.createCoupon)
				r.Get("/{id}", h.getCoupon)
				r.Put("/{id}", h.updateCoupon)
				r.Delete("/{id}", h.deleteCoupon)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.listOrders)
				r.Get("/{id}", h.getOrder)
				r.Patch("/{id}/status", h.updateOrderStatus)
			})
		})
	})

	return r
}

// labelRoute attaches the matched route pattern to the request's telemetry
// labeler so metrics aggregate by route instead of raw path.
func labelRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)

		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				labeler, _ := otelhttp.LabelerFromContext(r.Context())
				labeler.Add(attribute.String("http.route", pattern))
			}
		}
	})
}
