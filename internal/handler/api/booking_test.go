//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"spa-storefront/internal/domain/booking"
	"spa-storefront/internal/domain/promotion"
	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/handler/api"
	resdto "spa-storefront/internal/handler/dto/response"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/internal/usecase/queries"
	"spa-storefront/tests/common/builder"
	"spa-storefront/tests/common/httptest"
	"spa-storefront/tests/common/testutil"
	commandsmock "spa-storefront/tests/mock/commands"
	queriesmock "spa-storefront/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type BookingHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockBookingCommands
	mockCheckout *commandsmock.MockCheckoutCommands
	mockQueries  *queriesmock.MockBookingQueries
	handler      *api.BookingHandler
	customerID   uuid.UUID
}

func (s *BookingHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockBookingCommands(s.mockCtrl)
	s.mockCheckout = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.handler = api.NewBookingHandler(s.mockCommands, s.mockCheckout, s.mockQueries)
	s.customerID = uuid.New()

	s.router.Use(fakeAuth(s.customerID, user.RoleCustomer))
	s.router.POST("/bookings", s.handler.Create)
	s.router.GET("/bookings", s.handler.ListMine)
	s.router.GET("/bookings/:id", s.handler.Get)
	s.router.POST("/bookings/:id/cancel", s.handler.Cancel)
	s.router.POST("/checkout", s.handler.Checkout)
}

func (s *BookingHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestBookingHandlerSuite(t *testing.T) {
	suite.Run(t, new(BookingHandlerTestSuite))
}

func (s *BookingHandlerTestSuite) newBuilder() *builder.BookingBuilder {
	return builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) { b.CustomerID = s.customerID })
}

func (s *BookingHandlerTestSuite) buildBooking(b *builder.BookingBuilder) *booking.Booking {
	bk, err := b.BuildDomain()
	s.Require().NoError(err)
	return bk
}

// ========================================
// POST /bookings
// ========================================

func (s *BookingHandlerTestSuite) TestCreate() {
	b := s.newBuilder()

	testCases := []struct {
		name       string
		mutate     func(m map[string]any)
		headers    map[string]string
		setupMock  func()
		expectCode int
		expectMsg  string
		verify     func(resp *resdto.CreateBookingResponse)
	}{
		{
			name: "created",
			setupMock: func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), b.BuildCreateInput(), gomock.Nil()).
					Return(&commands.CreateBookingResult{Booking: s.buildBooking(b)}, nil)
			},
			expectCode: http.StatusCreated,
			verify: func(resp *resdto.CreateBookingResponse) {
				s.Equal(int64(8000), resp.Booking.FinalAmount)
				s.Equal("pending", resp.Booking.Status)
				s.Nil(resp.PromotionError)
				s.False(resp.Replayed)
			},
		},
		{
			name:   "rejected promotion is reported beside the booking",
			mutate: testutil.Field("promotion_code", "EXPIRED"),
			setupMock: func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Nil()).
					Return(&commands.CreateBookingResult{Booking: s.buildBooking(b), PromotionError: promotion.ErrExpired}, nil)
			},
			expectCode: http.StatusCreated,
			verify: func(resp *resdto.CreateBookingResponse) {
				s.Require().NotNil(resp.PromotionError)
				s.Equal("expired", *resp.PromotionError)
				s.Zero(resp.Booking.DiscountAmount)
			},
		},
		{
			name:    "replayed request",
			headers: map[string]string{"Idempotency-Key": "5f0c6f7e-9a59-4d7a-9f39-3d3c9b1a2e11"},
			setupMock: func() {
				key := uuid.MustParse("5f0c6f7e-9a59-4d7a-9f39-3d3c9b1a2e11")
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), &key).
					Return(&commands.CreateBookingResult{Booking: s.buildBooking(b), Replayed: true}, nil)
			},
			expectCode: http.StatusOK,
			verify: func(resp *resdto.CreateBookingResponse) {
				s.True(resp.Replayed)
			},
		},
		{
			name:       "malformed idempotency key",
			headers:    map[string]string{"Idempotency-Key": "retry-1"},
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name:       "invalid email",
			mutate:     testutil.Field("customer_email", "not-an-email"),
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name:       "missing appointment date",
			mutate:     testutil.Field("appointment_date", nil),
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name:   "no services",
			mutate: testutil.Field("lines", []any{}),
			setupMock: func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Nil()).Return(nil, booking.ErrEmptyOrder)
			},
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name: "zero quantity line",
			setupMock: func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Nil()).Return(nil, commands.ErrInvalidLineQuantity)
			},
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name:    "key reused for a different request",
			headers: map[string]string{"Idempotency-Key": uuid.NewString()},
			setupMock: func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Not(gomock.Nil())).
					Return(nil, commands.ErrIdempotencyKeyReuse)
			},
			expectCode: http.StatusConflict,
			expectMsg:  "Conflict",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			if tc.setupMock != nil {
				tc.setupMock()
			}
			var muts []func(map[string]any)
			if tc.mutate != nil {
				muts = append(muts, tc.mutate)
			}
			body := testutil.DtoMap(s.T(), b.BuildCreateRequest(), muts...)

			w := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, "/bookings", body, "token", tc.headers)
			if tc.expectMsg != "" {
				httptest.AssertErrorResponse(s.T(), w, tc.expectCode, tc.expectMsg)
				return
			}

			var resp resdto.CreateBookingResponse
			httptest.AssertSuccessResponse(s.T(), w, tc.expectCode, &resp)
			s.Require().NotNil(resp.Booking)
			httptest.AssertHeaders(s.T(), w, map[string]string{"Location": "/api/bookings/" + resp.Booking.ID.String()})
			if tc.verify != nil {
				tc.verify(&resp)
			}
		})
	}
}

// ========================================
// POST /checkout
// ========================================

func (s *BookingHandlerTestSuite) TestCheckout() {
	b := s.newBuilder().WithPromotion("SPRING10")

	s.Run("books the cart", func() {
		s.mockCheckout.EXPECT().Checkout(gomock.Any(), b.BuildCheckoutInput(), gomock.Nil()).
			Return(&commands.CreateBookingResult{Booking: s.buildBooking(b)}, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/checkout", b.BuildCheckoutRequest(), "token")

		var resp resdto.CreateBookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resp)
		s.Equal(s.customerID, resp.Booking.CustomerID)
	})

	s.Run("blank promotion code is dropped", func() {
		s.mockCheckout.EXPECT().Checkout(gomock.Any(), gomock.Any(), gomock.Nil()).
			DoAndReturn(func(_ any, in commands.CheckoutInput, _ *uuid.UUID) (*commands.CreateBookingResult, error) {
				s.Nil(in.PromotionCode)
				return &commands.CreateBookingResult{Booking: s.buildBooking(b)}, nil
			})

		body := testutil.DtoMap(s.T(), b.BuildCheckoutRequest(), testutil.Field("promotion_code", "   "))
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/checkout", body, "token")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resdto.CreateBookingResponse{})
	})

	s.Run("empty cart", func() {
		s.mockCheckout.EXPECT().Checkout(gomock.Any(), gomock.Any(), gomock.Nil()).Return(nil, booking.ErrEmptyOrder)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/checkout", b.BuildCheckoutRequest(), "token")
		httptest.AssertErrorReason(s.T(), w, http.StatusBadRequest, booking.ErrEmptyOrder.Error())
	})
}

// ========================================
// GET /bookings, GET /bookings/:id
// ========================================

func (s *BookingHandlerTestSuite) TestGet() {
	b := s.newBuilder()

	s.Run("found", func() {
		view, err := b.BuildView()
		s.Require().NoError(err)
		s.mockQueries.EXPECT().
			GetByID(gomock.Any(), user.NewActor(s.customerID, user.RoleCustomer), view.ID).
			Return(view, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+view.ID.String(), nil, "token")

		var resp resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(view.ID, resp.ID)
		s.Len(resp.Lines, 1)
		s.Equal("Hanako Sato", resp.CustomerName)
	})

	s.Run("another customer's booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, booking.ErrForbidden)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+uuid.NewString(), nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusForbidden, "Access denied")
	})

	s.Run("unknown booking", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, booking.ErrNotFound)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings/"+uuid.NewString(), nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Not found")
	})
}

func (s *BookingHandlerTestSuite) TestListMine() {
	item := &queries.BookingListItem{
		ID:              uuid.New(),
		CustomerID:      s.customerID,
		CustomerName:    "Hanako Sato",
		AppointmentDate: "2025-03-15",
		AppointmentTime: "14:30",
		ServiceCount:    2,
		FinalAmount:     14400,
		Status:          "pending",
		PaymentStatus:   "pending",
		CreatedAt:       builder.FixedNow,
	}

	s.Run("first page with next cursor", func() {
		next := &queries.Cursor{After: queries.EncodeAfterCursor(item.CreatedAt, item.ID)}
		s.mockQueries.EXPECT().ListByCustomer(gomock.Any(), s.customerID, gomock.Nil(), 1).
			Return([]*queries.BookingListItem{item}, next, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?limit=1", nil, "token")

		var resp struct {
			Bookings   []resdto.BookingListItemResponse `json:"bookings"`
			NextCursor string                           `json:"next_cursor"`
		}
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Require().Len(resp.Bookings, 1)
		s.Equal(2, resp.Bookings[0].ServiceCount)
		s.Equal(next.After, resp.NextCursor)
	})

	s.Run("cursor and oversized limit", func() {
		s.mockQueries.EXPECT().
			ListByCustomer(gomock.Any(), s.customerID, &queries.Cursor{After: "abc"}, queries.MaxListLimit).
			Return([]*queries.BookingListItem{}, nil, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?after=abc&limit=5000", nil, "token")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
		s.JSONEq(`{"bookings":[]}`, w.Body.String())
	})

	s.Run("bad cursor", func() {
		s.mockQueries.EXPECT().ListByCustomer(gomock.Any(), s.customerID, gomock.Any(), queries.DefaultListLimit).
			Return(nil, nil, queries.ErrInvalidCursor)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/bookings?after=zzz", nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request")
	})
}

// ========================================
// POST /bookings/:id/cancel
// ========================================

func (s *BookingHandlerTestSuite) TestCancel() {
	actor := user.NewActor(s.customerID, user.RoleCustomer)

	s.Run("cancelled", func() {
		bk := s.buildBooking(s.newBuilder())
		_, err := bk.TransitionStatus(actor, booking.StatusCancelled, builder.FixedNow.Add(time.Hour))
		s.Require().NoError(err)
		s.mockCommands.EXPECT().TransitionStatus(gomock.Any(), actor, bk.ID(), "cancelled").Return(bk, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+bk.ID().String()+"/cancel", nil, "token")

		var resp resdto.BookingResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal("cancelled", resp.Status)
	})

	s.Run("already completed", func() {
		s.mockCommands.EXPECT().TransitionStatus(gomock.Any(), actor, gomock.Any(), "cancelled").Return(nil, booking.ErrInvalidTransition)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/"+uuid.NewString()+"/cancel", nil, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Invalid transition")
	})
}
