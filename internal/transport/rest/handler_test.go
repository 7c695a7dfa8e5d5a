package rest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/service"
	"github.com/abgdnv/gocatalog/internal/validation"
	"github.com/abgdnv/gocatalog/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	productID = "65f1c2a9e4b0a1b2c3d4e5f6"
	sellerID  = "seller-1"
)

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Add(ctx context.Context, callerID string, product validation.NewProduct) (*service.ProductDto, error) {
	args := m.Called(ctx, callerID, product)
	var dto *service.ProductDto
	if args.Get(0) != nil {
		dto = args.Get(0).(*service.ProductDto)
	}
	return dto, args.Error(1)
}

func (m *MockProductService) FindByID(ctx context.Context, id string) (*service.ProductDto, error) {
	args := m.Called(ctx, id)
	var dto *service.ProductDto
	if args.Get(0) != nil {
		dto = args.Get(0).(*service.ProductDto)
	}
	return dto, args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, callerID, id string) error {
	args := m.Called(ctx, callerID, id)
	return args.Error(0)
}

func (m *MockProductService) List(ctx context.Context, page validation.Page) ([]service.ProductDto, error) {
	args := m.Called(ctx, page)
	var list []service.ProductDto
	if args.Get(0) != nil {
		list = args.Get(0).([]service.ProductDto)
	}
	return list, args.Error(1)
}

func (m *MockProductService) ListBySeller(ctx context.Context, callerID string, page validation.Page) ([]service.ProductDto, error) {
	args := m.Called(ctx, callerID, page)
	var list []service.ProductDto
	if args.Get(0) != nil {
		list = args.Get(0).([]service.ProductDto)
	}
	return list, args.Error(1)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func newRouter(svc service.ProductService, pinger Pinger) http.Handler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := NewHandler(svc, validation.New(100), pinger, 1<<10, logger)
	r := chi.NewRouter()
	h.RegisterRoutes(r, web.HeaderAuth(logger))
	return r
}

func serve(router http.Handler, method, target, callerID, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if callerID != "" {
		req.Header.Set(web.XUserId, callerID)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

const validAddBody = `{
	"name": "Kettle",
	"brand": "Acme",
	"price": 19.99,
	"quantity": 3,
	"category": "kitchen",
	"description": "Boils water quickly.",
	"sellerId": "someone-else"
}`

func Test_CatalogAPI_Add(t *testing.T) {
	expectedProduct := validation.NewProduct{
		Name:        "Kettle",
		Brand:       "Acme",
		Price:       19.99,
		Quantity:    3,
		Category:    "kitchen",
		Description: "Boils water quickly.",
	}
	testCases := []struct {
		name         string
		callerID     string
		body         string
		mockSetup    func(m *MockProductService)
		expectedCode int
		expectedBody string
	}{
		{
			name:     "Success - owner is the caller, body sellerId ignored",
			callerID: sellerID,
			body:     validAddBody,
			mockSetup: func(m *MockProductService) {
				m.On("Add", mock.Anything, sellerID, expectedProduct).Return(&service.ProductDto{ID: productID}, nil)
			},
			expectedCode: http.StatusCreated,
			expectedBody: `{"message":"Product is added successfully.","id":"` + productID + `"}`,
		},
		{
			name:         "Error - missing field",
			callerID:     sellerID,
			body:         `{"brand":"Acme","price":19.99,"quantity":3,"category":"kitchen","description":"Boils water quickly."}`,
			mockSetup:    func(*MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"name failed on rule: required","validation_errors":{"name":"failed on rule: required"}}`,
		},
		{
			name:         "Error - malformed json",
			callerID:     sellerID,
			body:         `{"name": `,
			mockSetup:    func(*MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"Invalid request body"}`,
		},
		{
			name:         "Error - empty body",
			callerID:     sellerID,
			body:         "",
			mockSetup:    func(*MockProductService) {},
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"Request body is required"}`,
		},
		{
			name:         "Error - body too large",
			callerID:     sellerID,
			body:         `{"name":"` + strings.Repeat("x", 2<<10) + `"}`,
			mockSetup:    func(*MockProductService) {},
			expectedCode: http.StatusRequestEntityTooLarge,
			expectedBody: `{"message":"Request body is too large"}`,
		},
		{
			name:         "Error - unauthenticated",
			callerID:     "",
			body:         validAddBody,
			mockSetup:    func(*MockProductService) {},
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"Unauthorized: missing X-User-Id header"}`,
		},
		{
			name:     "Error - storage failure",
			callerID: sellerID,
			body:     validAddBody,
			mockSetup: func(m *MockProductService) {
				m.On("Add", mock.Anything, sellerID, expectedProduct).Return(nil, errors.New("connection refused"))
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"Something went wrong."}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockSvc := new(MockProductService)
			tc.mockSetup(mockSvc)
			router := newRouter(mockSvc, fakePinger{})

			// when
			rr := serve(router, http.MethodPost, "/api/v1/products", tc.callerID, tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code, "status code should match")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "response body should match")
			mockSvc.AssertExpectations(t)
		})
	}
}

func Test_CatalogAPI_Delete(t *testing.T) {
	testCases := []struct {
		name         string
		serviceErr   error
		expectedCode int
		expectedBody string
	}{
		{name: "Success", expectedCode: http.StatusOK, expectedBody: `{"message":"Product is deleted successfully."}`},
		{name: "Error - invalid id", serviceErr: perrors.ErrInvalidProductID, expectedCode: http.StatusBadRequest, expectedBody: `{"message":"Invalid product id."}`},
		{name: "Error - not owner", serviceErr: perrors.ErrAccessDenied, expectedCode: http.StatusForbidden, expectedBody: `{"message":"You are not owner of this product."}`},
		{name: "Error - not found", serviceErr: perrors.ErrProductNotFound, expectedCode: http.StatusNotFound, expectedBody: `{"message":"Product does not exist."}`},
		{name: "Error - storage failure", serviceErr: errors.New("timeout"), expectedCode: http.StatusInternalServerError, expectedBody: `{"message":"Something went wrong."}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockSvc := new(MockProductService)
			mockSvc.On("Delete", mock.Anything, sellerID, productID).Return(tc.serviceErr)
			router := newRouter(mockSvc, fakePinger{})

			// when
			rr := serve(router, http.MethodDelete, "/api/v1/products/"+productID, sellerID, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			mockSvc.AssertExpectations(t)
		})
	}
}

func Test_CatalogAPI_FindByID(t *testing.T) {
	testCases := []struct {
		name         string
		mockProduct  *service.ProductDto
		serviceErr   error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success",
			mockProduct:  &service.ProductDto{ID: productID, SellerID: sellerID, Name: "Kettle", Price: 19.99},
			expectedCode: http.StatusOK,
		},
		{name: "Error - invalid id", serviceErr: perrors.ErrInvalidProductID, expectedCode: http.StatusBadRequest, expectedBody: `{"message":"Invalid product id."}`},
		{name: "Error - not found", serviceErr: perrors.ErrProductNotFound, expectedCode: http.StatusNotFound, expectedBody: `{"message":"Product does not exist."}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockSvc := new(MockProductService)
			mockSvc.On("FindByID", mock.Anything, productID).Return(tc.mockProduct, tc.serviceErr)
			router := newRouter(mockSvc, fakePinger{})

			// when
			rr := serve(router, http.MethodGet, "/api/v1/products/"+productID, sellerID, "")

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			} else {
				assert.Contains(t, rr.Body.String(), `"id":"`+productID+`"`)
				assert.Contains(t, rr.Body.String(), `"sellerId":"`+sellerID+`"`)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func Test_CatalogAPI_List(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		mockList     []service.ProductDto
		serviceErr   error
		expectCall   bool
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Success - empty page",
			body:         `{"page":3,"limit":2}`,
			mockList:     []service.ProductDto{},
			expectCall:   true,
			expectedCode: http.StatusOK,
			expectedBody: `[]`,
		},
		{
			name:         "Error - page zero",
			body:         `{"page":0,"limit":2}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"page failed on rule: min","validation_errors":{"page":"failed on rule: min"}}`,
		},
		{
			name:         "Error - negative limit",
			body:         `{"page":1,"limit":-2}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"limit failed on rule: min","validation_errors":{"limit":"failed on rule: min"}}`,
		},
		{
			name:         "Error - page offset overflows",
			body:         `{"page":184467440737095516,"limit":100}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"page must not exceed 92233720368547759","validation_errors":{"page":"must not exceed 92233720368547759"}}`,
		},
		{
			name:         "Error - page as string",
			body:         `{"page":"1","limit":2}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"Invalid request body"}`,
		},
		{
			name:         "Error - fractional limit",
			body:         `{"page":1,"limit":2.5}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"Invalid request body"}`,
		},
		{
			name:         "Error - limit above maximum",
			body:         `{"page":1,"limit":101}`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"message":"limit must not exceed 100","validation_errors":{"limit":"must not exceed 100"}}`,
		},
		{
			name:         "Error - storage failure",
			body:         `{"page":1,"limit":2}`,
			serviceErr:   errors.New("cursor closed"),
			expectCall:   true,
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"message":"Something went wrong."}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			mockSvc := new(MockProductService)
			if tc.expectCall {
				mockSvc.On("List", mock.Anything, mock.AnythingOfType("validation.Page")).Return(tc.mockList, tc.serviceErr)
			}
			router := newRouter(mockSvc, fakePinger{})

			// when
			rr := serve(router, http.MethodPost, "/api/v1/products/list", sellerID, tc.body)

			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			mockSvc.AssertExpectations(t)
		})
	}
}

func Test_CatalogAPI_ListBySellerUsesCaller(t *testing.T) {
	// given
	mockSvc := new(MockProductService)
	mockSvc.On("ListBySeller", mock.Anything, sellerID, mock.MatchedBy(func(p validation.Page) bool {
		return p.Number() == 2 && p.Size() == 2 && p.Category() == "bakery"
	})).Return([]service.ProductDto{{ID: productID, SellerID: sellerID}}, nil)
	router := newRouter(mockSvc, fakePinger{})

	// when
	rr := serve(router, http.MethodPost, "/api/v1/products/seller/list", sellerID,
		`{"page":2,"limit":2,"category":"Bakery","sellerId":"seller-2"}`)

	// then
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"sellerId":"`+sellerID+`"`)
	mockSvc.AssertExpectations(t)
}

func Test_CatalogAPI_Readiness(t *testing.T) {
	testCases := []struct {
		name         string
		pinger       fakePinger
		expectedCode int
	}{
		{name: "store reachable", pinger: fakePinger{}, expectedCode: http.StatusOK},
		{name: "store down", pinger: fakePinger{err: errors.New("no reachable servers")}, expectedCode: http.StatusServiceUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRouter(new(MockProductService), tc.pinger)

			rr := serve(router, http.MethodGet, "/readyz", "", "")

			assert.Equal(t, tc.expectedCode, rr.Code)
		})
	}
}

func Test_CatalogAPI_HealthzNeedsNoAuth(t *testing.T) {
	router := newRouter(new(MockProductService), fakePinger{})

	rr := serve(router, http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
}
