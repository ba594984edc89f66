//go:build e2e

package e2e

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/catalog"
	reqdto "spa-storefront/internal/handler/dto/request"
	resdto "spa-storefront/internal/handler/dto/response"
	"spa-storefront/tests/common/builder"
	"spa-storefront/tests/common/dbtest"
	httphelper "spa-storefront/tests/common/httptest"

	"github.com/stretchr/testify/suite"
)

type BookingSuite struct {
	SharedSuite
	massage *catalog.Item
}

func TestBookingSuite(t *testing.T) {
	suite.Run(t, new(BookingSuite))
}

func (s *BookingSuite) seed() {
	s.massage = builder.NewCatalogItemBuilder().WithPrice(8000).BuildDomain()
	dbtest.SeedCatalogItems(s.T(), s.DB, s.massage)
}

// livePromotion is valid against the wall clock the app runs on.
func livePromotion() *builder.PromotionBuilder {
	now := time.Now().UTC()
	return builder.NewPromotionBuilder().With(func(b *builder.PromotionBuilder) {
		b.StartsAt = now.Add(-time.Hour)
		b.EndsAt = now.Add(24 * time.Hour)
	})
}

func (s *BookingSuite) createPromotion(adminToken string, b *builder.PromotionBuilder) {
	w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/admin/promotions", b.BuildCreateRequest(), adminToken)
	httphelper.AssertSuccessResponse(s.T(), w, http.StatusCreated, nil)
}

func (s *BookingSuite) book(token string, req reqdto.CreateBookingRequest) resdto.CreateBookingResponse {
	w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/bookings", req, token)
	var resp resdto.CreateBookingResponse
	httphelper.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resp)
	return resp
}

// =============================================================================
// Promotions
// =============================================================================

func (s *BookingSuite) TestPromotions() {
	s.Run("validate quotes without consuming a use", func() {
		_, admin := s.JWT.AdminToken(s.T())
		_, token := s.JWT.CustomerToken(s.T())
		s.createPromotion(admin, livePromotion().WithUsageLimit(1))

		w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/promotions/validate",
			reqdto.ValidatePromotionRequest{Code: "spring10", OrderAmount: 12000}, token)
		var quote resdto.PromotionQuoteResponse
		httphelper.AssertSuccessResponse(s.T(), w, http.StatusOK, &quote)
		s.Equal(resdto.PromotionQuoteResponse{Code: "SPRING10", Kind: "percentage", Discount: 1200, FinalAmount: 10800}, quote)
		s.Equal(0, dbtest.PromotionUsedCount(s.T(), s.DB, "SPRING10"))
	})

	s.Run("validate reports why a code cannot be used", func() {
		_, admin := s.JWT.AdminToken(s.T())
		_, token := s.JWT.CustomerToken(s.T())
		s.createPromotion(admin, livePromotion().WithMinOrder(5000))

		w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/promotions/validate",
			reqdto.ValidatePromotionRequest{Code: "SPRING10", OrderAmount: 1000}, token)
		httphelper.AssertErrorReason(s.T(), w, http.StatusUnprocessableEntity, "below_minimum")

		w = httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/promotions/validate",
			reqdto.ValidatePromotionRequest{Code: "AUTUMN5", OrderAmount: 1000}, token)
		httphelper.AssertErrorReason(s.T(), w, http.StatusNotFound, "not_found")
	})

	s.Run("concurrent apply never exceeds the limit", func() {
		_, admin := s.JWT.AdminToken(s.T())
		s.createPromotion(admin, livePromotion().WithUsageLimit(3))

		const callers = 10
		var wg sync.WaitGroup
		codes := make([]int, callers)
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/promotions/SPRING10/apply", nil, admin)
				codes[i] = w.Code
			}()
		}
		wg.Wait()

		var ok, exhausted int
		for _, c := range codes {
			switch c {
			case http.StatusOK:
				ok++
			case http.StatusUnprocessableEntity:
				exhausted++
			}
		}
		s.Equal(3, ok)
		s.Equal(callers-3, exhausted)
		s.Equal(3, dbtest.PromotionUsedCount(s.T(), s.DB, "SPRING10"))
	})

	s.Run("customers cannot manage promotions", func() {
		_, token := s.JWT.CustomerToken(s.T())

		w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, "/api/admin/promotions", livePromotion().BuildCreateRequest(), token)
		s.Equal(http.StatusForbidden, w.Code)
	})
}

// =============================================================================
// Bookings
// =============================================================================

func (s *BookingSuite) TestBookingLifecycle() {
	s.Run("booking with a promotion consumes one use", func() {
		s.seed()
		_, admin := s.JWT.AdminToken(s.T())
		customerID, token := s.JWT.CustomerToken(s.T())
		s.createPromotion(admin, livePromotion().WithUsageLimit(5))

		req := builder.NewBookingBuilder().WithLines(builder.BookingLine{Item: s.massage, Quantity: 2}).WithPromotion("spring10")
		resp := s.book(token, req.BuildCreateRequest())

		s.Nil(resp.PromotionError)
		s.Equal(customerID, resp.Booking.CustomerID)
		s.Equal(int64(16000), resp.Booking.Subtotal)
		s.Equal(int64(1600), resp.Booking.DiscountAmount)
		s.Equal(int64(14400), resp.Booking.FinalAmount)
		s.Equal(1, dbtest.PromotionUsedCount(s.T(), s.DB, "SPRING10"))
	})

	s.Run("an unusable promotion is dropped and reported", func() {
		s.seed()
		_, token := s.JWT.CustomerToken(s.T())

		req := builder.NewBookingBuilder().WithLines(builder.BookingLine{Item: s.massage, Quantity: 1}).WithPromotion("GHOST99")
		resp := s.book(token, req.BuildCreateRequest())

		s.Require().NotNil(resp.PromotionError)
		s.Equal("not_found", *resp.PromotionError)
		s.Equal(int64(8000), resp.Booking.FinalAmount)
		s.Nil(resp.Booking.PromotionCode)
	})

	s.Run("customers only see their own bookings", func() {
		s.seed()
		_, owner := s.JWT.CustomerToken(s.T())
		_, other := s.JWT.CustomerToken(s.T())

		req := builder.NewBookingBuilder().WithLines(builder.BookingLine{Item: s.massage, Quantity: 1})
		created := s.book(owner, req.BuildCreateRequest())
		path := "/api/bookings/" + created.Booking.ID.String()

		w := httphelper.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil, owner)
		var got resdto.BookingResponse
		httphelper.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
		s.Equal(created.Booking.ID, got.ID)

		w = httphelper.PerformRequest(s.T(), s.Router, http.MethodGet, path, nil, other)
		s.Equal(http.StatusForbidden, w.Code)

		w = httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, path+"/cancel", nil, other)
		s.Equal(http.StatusForbidden, w.Code)

		w = httphelper.PerformRequest(s.T(), s.Router, http.MethodPost, path+"/cancel", nil, owner)
		httphelper.AssertSuccessResponse(s.T(), w, http.StatusOK, &got)
		s.Equal("cancelled", got.Status)
	})

	s.Run("list pages with a cursor", func() {
		s.seed()
		_, token := s.JWT.CustomerToken(s.T())
		req := builder.NewBookingBuilder().WithLines(builder.BookingLine{Item: s.massage, Quantity: 1})
		for range 3 {
			s.book(token, req.BuildCreateRequest())
		}

		var page struct {
			Bookings   []resdto.BookingListItemResponse `json:"bookings"`
			NextCursor string                           `json:"next_cursor"`
		}
		w := httphelper.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings?limit=2", nil, token)
		httphelper.AssertSuccessResponse(s.T(), w, http.StatusOK, &page)
		s.Len(page.Bookings, 2)
		s.Require().NotEmpty(page.NextCursor)

		first := page.Bookings
		w = httphelper.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings?limit=2&after="+page.NextCursor, nil, token)
		page.Bookings, page.NextCursor = nil, ""
		httphelper.AssertSuccessResponse(s.T(), w, http.StatusOK, &page)
		s.Require().Len(page.Bookings, 1)
		s.Empty(page.NextCursor)
		s.NotContains([]any{first[0].ID, first[1].ID}, page.Bookings[0].ID)

		w = httphelper.PerformRequest(s.T(), s.Router, http.MethodGet, "/api/bookings?after="+first[1].ID.String(), nil, token)
		s.Equal(http.StatusBadRequest, w.Code, "a raw id is not a cursor")
	})

	s.Run("admin walks a booking to completion", func() {
		s.seed()
		_, admin := s.JWT.AdminToken(s.T())
		_, token := s.JWT.CustomerToken(s.T())

		req := builder.NewBookingBuilder().WithLines(builder.BookingLine{Item: s.massage, Quantity: 1}).With(func(b *builder.BookingBuilder) {
			b.PaymentMethod = booking.MethodCash.String()
		})
		created := s.book(token, req.BuildCreateRequest())
		s.Equal("pending", created.Booking.PaymentStatus)
		base := "/api/admin/bookings/" + created.Booking.ID.String()

		var resp resdto.BookingResponse
		for _, status := range []string{"confirmed", "in_progress", "completed"} {
			w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPatch, base+"/status",
				reqdto.TransitionStatusRequest{Status: status}, admin)
			httphelper.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
			s.Equal(status, resp.Status)
		}
		s.Equal("paid", resp.PaymentStatus)

		w := httphelper.PerformRequest(s.T(), s.Router, http.MethodPatch, base+"/status",
			reqdto.TransitionStatusRequest{Status: "cancelled"}, admin)
		s.Equal(http.StatusConflict, w.Code)

		w = httphelper.PerformRequest(s.T(), s.Router, http.MethodPatch, base+"/status",
			reqdto.TransitionStatusRequest{Status: "confirmed"}, token)
		s.Equal(http.StatusForbidden, w.Code)
	})
}
