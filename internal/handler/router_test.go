//go:build unit

package handler_test

import (
	"net/http"
	"testing"
	"time"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/handler"
	"spa-storefront/internal/handler/api"
	"spa-storefront/internal/handler/middleware"
	"spa-storefront/internal/pkg/config"
	"spa-storefront/internal/pkg/jwt"
	"spa-storefront/internal/usecase"
	"spa-storefront/internal/usecase/queries"
	"spa-storefront/tests/common/authtest"
	"spa-storefront/tests/common/builder"
	"spa-storefront/tests/common/httptest"
	commandsmock "spa-storefront/tests/mock/commands"
	queriesmock "spa-storefront/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type RouterTestSuite struct {
	suite.Suite
	router        *gin.Engine
	mockCtrl      *gomock.Controller
	mockCart      *commandsmock.MockCartCommands
	mockBookingQ  *queriesmock.MockBookingQueries
	mockPromotion *commandsmock.MockPromotionCommands
	jwtHelper     *authtest.JWTHelper
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCart = commandsmock.NewMockCartCommands(s.mockCtrl)
	s.mockBookingQ = queriesmock.NewMockBookingQueries(s.mockCtrl)
	s.mockPromotion = commandsmock.NewMockPromotionCommands(s.mockCtrl)
	bookingCmds := commandsmock.NewMockBookingCommands(s.mockCtrl)

	s.jwtHelper = authtest.NewJWTHelper(cfg.JWT)
	auth := middleware.NewAuthMiddleware(usecase.NewTokenValidator(jwt.NewService(cfg.JWT.Secret, 0)))

	s.router = gin.New()
	handler.NewRouter(s.router, cfg, handler.Handlers{
		Cart:         api.NewCartHandler(s.mockCart),
		Promotion:    api.NewPromotionHandler(s.mockPromotion, queriesmock.NewMockPromotionQueries(s.mockCtrl)),
		Booking:      api.NewBookingHandler(bookingCmds, commandsmock.NewMockCheckoutCommands(s.mockCtrl), s.mockBookingQ),
		AdminBooking: api.NewAdminBookingHandler(bookingCmds, s.mockBookingQ),
	}, auth)
}

func (s *RouterTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) TestHealth() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/health", nil, "")
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *RouterTestSuite) TestAuthentication() {
	s.Run("missing token", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart", nil, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Access token required")
	})

	s.Run("garbage token", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart", nil, "not.a.jwt")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("expired token", func() {
		token := s.jwtHelper.CreateExpiredToken(s.T(), uuid.New(), user.RoleCustomer)
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart", nil, token)
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("token signed with another secret", func() {
		token, err := jwt.NewService("some-other-secret", time.Hour).GenerateToken(uuid.New(), user.RoleCustomer)
		s.Require().NoError(err)
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart", nil, token)
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Invalid or expired token")
	})

	s.Run("customer reaches own cart", func() {
		customerID, token := s.jwtHelper.CustomerToken(s.T())
		s.mockCart.EXPECT().GetOrCreate(gomock.Any(), customerID).Return(cart.New(customerID, builder.FixedNow), nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/cart", nil, token)
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})
}

func (s *RouterTestSuite) TestAdminRoutes() {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/bookings"},
		{http.MethodPatch, "/api/admin/bookings/" + uuid.NewString() + "/status"},
		{http.MethodGet, "/api/admin/promotions"},
		{http.MethodPost, "/api/promotions/SPRING10/apply"},
	}

	_, customerToken := s.jwtHelper.CustomerToken(s.T())
	for _, p := range paths {
		s.Run("customer "+p.method+" "+p.path, func() {
			w := httptest.PerformRequest(s.T(), s.router, p.method, p.path, nil, customerToken)
			httptest.AssertErrorResponse(s.T(), w, http.StatusForbidden, "Insufficient permissions")
		})
	}

	s.Run("admin lists bookings", func() {
		_, adminToken := s.jwtHelper.AdminToken(s.T())
		s.mockBookingQ.EXPECT().ListAll(gomock.Any(), "", gomock.Nil(), queries.DefaultListLimit).
			Return([]*queries.BookingListItem{}, nil, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/admin/bookings", nil, adminToken)
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, nil)
	})
}
