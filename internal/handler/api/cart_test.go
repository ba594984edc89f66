//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"spa-storefront/internal/domain/cart"
	"spa-storefront/internal/domain/catalog"
	"spa-storefront/internal/domain/user"
	"spa-storefront/internal/handler/api"
	resdto "spa-storefront/internal/handler/dto/response"
	"spa-storefront/internal/handler/middleware"
	"spa-storefront/internal/usecase/commands"
	"spa-storefront/tests/common/builder"
	"spa-storefront/tests/common/httptest"
	commandsmock "spa-storefront/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CartHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCartCommands
	handler      *api.CartHandler
	customerID   uuid.UUID
}

func (s *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCartCommands(s.mockCtrl)
	s.handler = api.NewCartHandler(s.mockCommands)
	s.customerID = uuid.New()

	s.router.Use(fakeAuth(s.customerID, user.RoleCustomer))
	s.router.GET("/cart", s.handler.Get)
	s.router.DELETE("/cart", s.handler.Clear)
	s.router.POST("/cart/items", s.handler.AddItem)
	s.router.PATCH("/cart/items/:lineId", s.handler.UpdateQuantity)
	s.router.DELETE("/cart/items/:lineId", s.handler.RemoveItem)
	s.router.POST("/cart/merge", s.handler.Merge)
}

func (s *CartHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

// fakeAuth stands in for RequireAuth: requests without an Authorization
// header are rejected, the rest run as the given actor.
func fakeAuth(id uuid.UUID, role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		middleware.SetActor(c, user.NewActor(id, role))
		c.Next()
	}
}

func (s *CartHandlerTestSuite) cartWith(quantities ...int) *cart.Cart {
	c := cart.New(s.customerID, builder.FixedNow)
	for _, q := range quantities {
		_, err := c.AddItem(builder.NewCatalogItemBuilder().BuildDomain(), q, builder.FixedNow)
		s.Require().NoError(err)
	}
	return c
}

// ========================================
// GET /cart
// ========================================

func (s *CartHandlerTestSuite) TestGet() {
	s.Run("returns cart totals", func() {
		ct := s.cartWith(2, 1)
		s.mockCommands.EXPECT().GetOrCreate(gomock.Any(), s.customerID).Return(ct, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/cart", nil, "token")

		var resp resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(s.customerID, resp.CustomerID)
		s.Len(resp.Lines, 2)
		s.Equal(3, resp.ItemCount)
		s.Equal(int64(24000), resp.Subtotal)
	})

	s.Run("rejects anonymous caller", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/cart", nil, "")
		httptest.AssertErrorResponse(s.T(), w, http.StatusUnauthorized, "Unauthorized")
	})
}

// ========================================
// POST /cart/items
// ========================================

func (s *CartHandlerTestSuite) TestAddItem() {
	itemID := uuid.New()

	testCases := []struct {
		name       string
		body       any
		setupMock  func()
		expectCode int
		expectMsg  string
	}{
		{
			name: "added",
			body: gin.H{"item_id": itemID, "quantity": 2},
			setupMock: func() {
				s.mockCommands.EXPECT().
					AddItem(gomock.Any(), s.customerID, commands.AddCartItemInput{ItemID: itemID, Quantity: 2}).
					Return(s.cartWith(2), nil)
			},
			expectCode: http.StatusOK,
		},
		{
			name:       "missing item id",
			body:       gin.H{"quantity": 1},
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name: "zero quantity",
			body: gin.H{"item_id": itemID, "quantity": 0},
			setupMock: func() {
				s.mockCommands.EXPECT().AddItem(gomock.Any(), s.customerID, gomock.Any()).
					Return(nil, cart.ErrInvalidQuantity)
			},
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name: "quantity above the maximum",
			body: gin.H{"item_id": itemID, "quantity": cart.MaxQuantity + 1},
			setupMock: func() {
				s.mockCommands.EXPECT().AddItem(gomock.Any(), s.customerID, gomock.Any()).
					Return(nil, cart.ErrInvalidQuantity)
			},
			expectCode: http.StatusBadRequest,
			expectMsg:  "Invalid request",
		},
		{
			name: "unknown item",
			body: gin.H{"item_id": itemID, "quantity": 1},
			setupMock: func() {
				s.mockCommands.EXPECT().AddItem(gomock.Any(), s.customerID, gomock.Any()).
					Return(nil, catalog.ErrItemNotFound)
			},
			expectCode: http.StatusNotFound,
			expectMsg:  "Not found",
		},
		{
			name: "store failure",
			body: gin.H{"item_id": itemID, "quantity": 1},
			setupMock: func() {
				s.mockCommands.EXPECT().AddItem(gomock.Any(), s.customerID, gomock.Any()).
					Return(nil, errors.New("connection reset"))
			},
			expectCode: http.StatusInternalServerError,
			expectMsg:  "Internal error",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			if tc.setupMock != nil {
				tc.setupMock()
			}
			w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/cart/items", tc.body, "token")
			if tc.expectMsg == "" {
				httptest.AssertSuccessResponse(s.T(), w, tc.expectCode, &resdto.CartResponse{})
				return
			}
			httptest.AssertErrorResponse(s.T(), w, tc.expectCode, tc.expectMsg)
		})
	}
}

// ========================================
// PATCH/DELETE /cart/items/:lineId
// ========================================

func (s *CartHandlerTestSuite) TestUpdateQuantity() {
	s.Run("updated", func() {
		ct := s.cartWith(1)
		lineID := ct.Lines()[0].ID()
		s.mockCommands.EXPECT().UpdateQuantity(gomock.Any(), s.customerID, lineID, 4).Return(ct, nil)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/cart/items/"+lineID.String(), gin.H{"quantity": 4}, "token")
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resdto.CartResponse{})
	})

	s.Run("malformed line id", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/cart/items/not-a-uuid", gin.H{"quantity": 4}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request")
	})

	s.Run("unknown line", func() {
		lineID := uuid.New()
		s.mockCommands.EXPECT().UpdateQuantity(gomock.Any(), s.customerID, lineID, 2).Return(nil, cart.ErrLineNotFound)

		w := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/cart/items/"+lineID.String(), gin.H{"quantity": 2}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Not found")
	})
}

func (s *CartHandlerTestSuite) TestRemoveItem() {
	lineID := uuid.New()
	s.mockCommands.EXPECT().RemoveItem(gomock.Any(), s.customerID, lineID).Return(s.cartWith(), nil)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/cart/items/"+lineID.String(), nil, "token")

	var resp resdto.CartResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
	s.Empty(resp.Lines)
	s.Zero(resp.Subtotal)
}

func (s *CartHandlerTestSuite) TestClear() {
	s.mockCommands.EXPECT().Clear(gomock.Any(), s.customerID).Return(s.cartWith(), nil)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/cart", nil, "token")
	httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resdto.CartResponse{})
}

// ========================================
// POST /cart/merge
// ========================================

func (s *CartHandlerTestSuite) TestMerge() {
	s.Run("reports skipped lines", func() {
		good, gone := uuid.New(), uuid.New()
		s.mockCommands.EXPECT().
			MergeGuestCart(gomock.Any(), s.customerID, []cart.GuestLine{
				{ItemID: good, Quantity: 1},
				{ItemID: gone, Quantity: 2},
			}).
			Return(&commands.MergeCartResult{
				Cart: s.cartWith(1),
				Report: cart.MergeReport{
					Merged:  1,
					Skipped: []cart.SkippedLine{{ItemID: gone, Quantity: 2, Reason: cart.SkipUnavailable}},
				},
			}, nil)

		body := gin.H{"lines": []gin.H{
			{"item_id": good, "quantity": 1},
			{"item_id": gone, "quantity": 2},
		}}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/cart/merge", body, "token")

		var resp resdto.MergeCartResponse
		httptest.AssertSuccessResponse(s.T(), w, http.StatusOK, &resp)
		s.Equal(1, resp.Merged)
		s.Require().Len(resp.Skipped, 1)
		s.Equal(gone, resp.Skipped[0].ItemID)
		s.Equal("unavailable", resp.Skipped[0].Reason)
	})

	s.Run("lines are required", func() {
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/cart/merge", gin.H{}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request")
	})

	s.Run("oversized guest cart is rejected before merging", func() {
		lines := make([]gin.H, 51)
		for i := range lines {
			lines[i] = gin.H{"item_id": uuid.New(), "quantity": 1}
		}
		w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/cart/merge", gin.H{"lines": lines}, "token")
		httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request")
	})
}
