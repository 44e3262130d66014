package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/storefront/internal/config"
	"github.com/JonMunkholm/storefront/internal/core"
	db "github.com/JonMunkholm/storefront/internal/database"
	"github.com/JonMunkholm/storefront/internal/web/middleware"
)

const testSecret = "test-secret"

// fakeService implements the methods a test sets; any other call panics
// through the nil embedded interface.
type fakeService struct {
	Service

	importRows    func(ctx context.Context, rows []core.Record, opts core.ImportOptions) (core.ImportReport, error)
	preview       func(ctx context.Context, rows []core.Record, keyColumn string) (*core.ImportPreview, error)
	createProduct func(ctx context.Context, req core.ProductRequest) (core.ProductDetail, error)
	getProduct    func(ctx context.Context, id uuid.UUID) (core.ProductDetail, error)
	listProducts  func(ctx context.Context, limit, offset int) ([]db.ListProductsRow, error)
	deleteProduct func(ctx context.Context, id uuid.UUID) error
	placeOrder    func(ctx context.Context, userID uuid.UUID, req core.OrderRequest) (core.OrderResult, error)
	updateCart    func(ctx context.Context, userID, id uuid.UUID, quantity int32) (db.CartItem, error)
	addWishlist   func(ctx context.Context, userID uuid.UUID, req core.WishlistRequest) (core.WishlistResult, error)
}

func (f *fakeService) ImportRows(ctx context.Context, rows []core.Record, opts core.ImportOptions) (core.ImportReport, error) {
	return f.importRows(ctx, rows, opts)
}

func (f *fakeService) PreviewImport(ctx context.Context, rows []core.Record, keyColumn string) (*core.ImportPreview, error) {
	return f.preview(ctx, rows, keyColumn)
}

func (f *fakeService) ImportLimiterStatus() core.ImportLimiterStatus {
	return core.ImportLimiterStatus{Available: 2, MaxConcurrent: 2}
}

func (f *fakeService) CreateProduct(ctx context.Context, req core.ProductRequest) (core.ProductDetail, error) {
	return f.createProduct(ctx, req)
}

func (f *fakeService) GetProduct(ctx context.Context, id uuid.UUID) (core.ProductDetail, error) {
	return f.getProduct(ctx, id)
}

func (f *fakeService) ListProducts(ctx context.Context, limit, offset int) ([]db.ListProductsRow, error) {
	return f.listProducts(ctx, limit, offset)
}

func (f *fakeService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return f.deleteProduct(ctx, id)
}

func (f *fakeService) PlaceOrder(ctx context.Context, userID uuid.UUID, req core.OrderRequest) (core.OrderResult, error) {
	return f.placeOrder(ctx, userID, req)
}

func (f *fakeService) UpdateCartQuantity(ctx context.Context, userID, id uuid.UUID, quantity int32) (db.CartItem, error) {
	return f.updateCart(ctx, userID, id, quantity)
}

func (f *fakeService) AddToWishlist(ctx context.Context, userID uuid.UUID, req core.WishlistRequest) (core.WishlistResult, error) {
	return f.addWishlist(ctx, userID, req)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: 5 * time.Second},
		Import: config.ImportConfig{MaxFileSize: 1 << 20},
		Security: config.SecurityConfig{
			RequireAPIKey: true,
			APIKeys:       []string{"admin-key"},
			JWTSecret:     testSecret,
		},
	}
}

func newTestServer(svc Service) *Server {
	return NewServer(svc, testConfig(), fakePinger{})
}

func userToken(t *testing.T, id uuid.UUID) string {
	t.Helper()
	claims := &middleware.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func multipartUpload(t *testing.T, fileName, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", "admin-key")
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeService{})
	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	down := NewServer(&fakeService{}, testConfig(), fakePinger{err: errors.New("connection refused")})
	rec = do(down, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestImportProducts(t *testing.T) {
	var gotRows []core.Record
	var gotOpts core.ImportOptions
	svc := &fakeService{
		importRows: func(_ context.Context, rows []core.Record, opts core.ImportOptions) (core.ImportReport, error) {
			gotRows, gotOpts = rows, opts
			return core.ImportReport{
				Policy:    core.PolicyAbort,
				Processed: 1,
				Failed:    1,
				Failures:  []core.Failure{{Key: "shirt", Rows: 1, Kind: "duplicate_parent_key", Code: "DB001"}},
				Aborted:   true,
			}, nil
		},
	}
	s := newTestServer(svc)

	csv := "SKU,Title\nS-1,Shirt\n"
	rec := do(s, multipartUpload(t, "products.csv", csv, map[string]string{
		"policy":     "abort",
		"key_column": "SKU",
	}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, gotRows, 1)
	assert.Equal(t, "Shirt", gotRows[0]["Title"])
	assert.Equal(t, core.PolicyAbort, gotOpts.Policy)
	assert.Equal(t, "SKU", gotOpts.KeyColumn)
	assert.Equal(t, "products.csv", gotOpts.FileName)

	var report core.ImportReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Aborted)
	assert.Equal(t, "DB001", report.Failures[0].Code)
}

func TestImportProductsDefaultPolicy(t *testing.T) {
	var gotOpts core.ImportOptions
	s := newTestServer(&fakeService{
		importRows: func(_ context.Context, _ []core.Record, opts core.ImportOptions) (core.ImportReport, error) {
			gotOpts = opts
			return core.ImportReport{}, nil
		},
	})

	rec := do(s, multipartUpload(t, "products.csv", "Handle\nshirt\n", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.Policy(""), gotOpts.Policy)
}

func TestImportProductsErrors(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		content    string
		fields     map[string]string
		importErr  error
		maxSize    int64
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unsupported file",
			fileName:   "products.pdf",
			content:    "%PDF",
			wantStatus: http.StatusUnsupportedMediaType,
			wantCode:   "IMP003",
		},
		{
			name:       "invalid policy",
			fileName:   "products.csv",
			content:    "Handle\nshirt\n",
			fields:     map[string]string{"policy": "sometimes"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL001",
		},
		{
			name:       "empty file",
			fileName:   "products.csv",
			content:    "",
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL001",
		},
		{
			name:       "nothing to import",
			fileName:   "products.csv",
			content:    "Handle\n\n",
			importErr:  core.ErrNothingToImport,
			wantStatus: http.StatusBadRequest,
			wantCode:   "IMP001",
		},
		{
			name:       "too many imports",
			fileName:   "products.csv",
			content:    "Handle\nshirt\n",
			importErr:  core.ErrTooManyImports,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "IMP002",
		},
		{
			name:       "file too large",
			fileName:   "products.csv",
			content:    "Handle\n" + strings.Repeat("shirt\n", 100),
			maxSize:    64,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "IMP004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.maxSize > 0 {
				cfg.Import.MaxFileSize = config.ByteSize(tt.maxSize)
			}
			s := NewServer(&fakeService{
				importRows: func(context.Context, []core.Record, core.ImportOptions) (core.ImportReport, error) {
					return core.ImportReport{}, tt.importErr
				},
			}, cfg, fakePinger{})

			rec := do(s, multipartUpload(t, tt.fileName, tt.content, tt.fields))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestPreviewImport(t *testing.T) {
	var gotKey string
	s := newTestServer(&fakeService{
		preview: func(_ context.Context, rows []core.Record, keyColumn string) (*core.ImportPreview, error) {
			gotKey = keyColumn
			return &core.ImportPreview{Summary: core.PreviewSummary{Rows: len(rows), Products: 1, NewProducts: 1}}, nil
		},
	})

	req := multipartUpload(t, "products.csv", "Handle,Title\nshirt,Shirt\n", map[string]string{"key_column": "Handle"})
	req.URL.Path = "/api/products/import/preview"

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Handle", gotKey)
	assert.Contains(t, rec.Body.String(), `"new_products":1`)
}

func TestImportRequiresAPIKey(t *testing.T) {
	s := newTestServer(&fakeService{})
	req := multipartUpload(t, "products.csv", "Handle\nshirt\n", nil)
	req.Header.Del("X-API-Key")

	rec := do(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDownloadTemplate(t *testing.T) {
	s := newTestServer(&fakeService{})
	req := httptest.NewRequest(http.MethodGet, "/api/products/template", nil)
	req.Header.Set("X-API-Key", "admin-key")

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "products_template.xlsx")
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestCreateProductStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        core.InvalidInput("product", "title is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL001",
		},
		{
			name:       "duplicate handle",
			err:        &core.WriteError{Kind: core.KindDuplicateParentKey, Entity: "product", Key: "shirt", Err: &pgconn.PgError{Code: "23505"}},
			wantStatus: http.StatusConflict,
			wantCode:   "DB001",
		},
		{
			name:       "missing category",
			err:        &core.WriteError{Kind: core.KindForeignKeyViolation, Entity: "product", Key: "shirt", Err: &pgconn.PgError{Code: "23503"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "DB003",
		},
		{
			name:       "transient",
			err:        &core.WriteError{Kind: core.KindTransient, Entity: "product", Err: context.DeadlineExceeded},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "DB006",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeService{
				createProduct: func(context.Context, core.ProductRequest) (core.ProductDetail, error) {
					return core.ProductDetail{}, tt.err
				},
			})
			req := jsonRequest(http.MethodPost, "/api/products", `{"handle":"shirt","title":"Shirt"}`)
			req.Header.Set("X-API-Key", "admin-key")

			rec := do(s, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
			if tt.wantStatus >= 500 {
				assert.NotContains(t, rec.Body.String(), "boom")
			}
		})
	}
}

func TestCreateProduct(t *testing.T) {
	id := uuid.New()
	var got core.ProductRequest
	s := newTestServer(&fakeService{
		createProduct: func(_ context.Context, req core.ProductRequest) (core.ProductDetail, error) {
			got = req
			return core.ProductDetail{Product: db.Product{ProductID: id, Handle: req.Handle}}, nil
		},
	})
	req := jsonRequest(http.MethodPost, "/api/products", `{"handle":"shirt","title":"Shirt","sku":"S-1","price":"19.99"}`)
	req.Header.Set("X-API-Key", "admin-key")

	rec := do(s, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "S-1", got.SKU)
	require.NotNil(t, got.Price)
	assert.Equal(t, "19.99", got.Price.String())
	assert.Contains(t, rec.Body.String(), id.String())
}

func TestCreateProductRejectsBadBody(t *testing.T) {
	s := newTestServer(&fakeService{})

	for _, body := range []string{"", "{", `{"handel":"shirt"}`} {
		req := jsonRequest(http.MethodPost, "/api/products", body)
		req.Header.Set("X-API-Key", "admin-key")

		rec := do(s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		resp := decodeError(t, rec)
		assert.Equal(t, "VAL001", resp.Code)
		assert.NotEmpty(t, resp.Details)
	}
}

func TestGetProduct(t *testing.T) {
	known := uuid.New()
	s := newTestServer(&fakeService{
		getProduct: func(_ context.Context, id uuid.UUID) (core.ProductDetail, error) {
			if id != known {
				return core.ProductDetail{}, &core.WriteError{Kind: core.KindNotFound, Entity: "product", Key: id.String(), Err: core.ErrNotFound}
			}
			return core.ProductDetail{Product: db.Product{ProductID: id}}, nil
		},
	})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/products/"+known.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NF001", decodeError(t, rec).Code)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProductsPaging(t *testing.T) {
	var gotLimit, gotOffset int
	s := newTestServer(&fakeService{
		listProducts: func(_ context.Context, limit, offset int) ([]db.ListProductsRow, error) {
			gotLimit, gotOffset = limit, offset
			return []db.ListProductsRow{{
				Product:      db.Product{Handle: "shirt"},
				CategoryName: pgtype.Text{String: "Shirts", Valid: true},
			}}, nil
		},
	})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/products?limit=10&offset=20", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, 20, gotOffset)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"handle":"shirt"`)
	assert.Contains(t, rec.Body.String(), `"category_name":"Shirts"`)
}

func TestDeleteProductInUse(t *testing.T) {
	s := newTestServer(&fakeService{
		deleteProduct: func(context.Context, uuid.UUID) error {
			return &core.WriteError{Kind: core.KindForeignKeyViolation, Entity: "product", Err: &pgconn.PgError{Code: "23503"}}
		},
	})
	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+uuid.NewString(), nil)
	req.Header.Set("X-API-Key", "admin-key")

	rec := do(s, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPlaceOrder(t *testing.T) {
	user := uuid.New()
	var gotUser uuid.UUID
	s := newTestServer(&fakeService{
		placeOrder: func(_ context.Context, userID uuid.UUID, req core.OrderRequest) (core.OrderResult, error) {
			gotUser = userID
			return core.OrderResult{Order: db.Order{UserID: userID}}, nil
		},
	})
	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1,"price":"10.00"}]}`

	t.Run("requires token", func(t *testing.T) {
		rec := do(s, jsonRequest(http.MethodPost, "/api/orders", body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("with token", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/orders", body)
		req.Header.Set("Authorization", "Bearer "+userToken(t, user))

		rec := do(s, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, user, gotUser)
	})
}

func TestUpdateCartQuantity(t *testing.T) {
	user := uuid.New()
	item := uuid.New()
	var gotQty int32
	s := newTestServer(&fakeService{
		updateCart: func(_ context.Context, userID, id uuid.UUID, quantity int32) (db.CartItem, error) {
			assert.Equal(t, user, userID)
			assert.Equal(t, item, id)
			gotQty = quantity
			return db.CartItem{CartItemID: id, Quantity: quantity}, nil
		},
	})
	req := jsonRequest(http.MethodPut, "/api/cart/"+item.String(), `{"quantity":3}`)
	req.Header.Set("token", userToken(t, user))

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(3), gotQty)
}

func TestAddToWishlistStatus(t *testing.T) {
	user := uuid.New()
	tests := []struct {
		name       string
		already    bool
		wantStatus int
	}{
		{name: "new entry", already: false, wantStatus: http.StatusCreated},
		{name: "already listed", already: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeService{
				addWishlist: func(context.Context, uuid.UUID, core.WishlistRequest) (core.WishlistResult, error) {
					return core.WishlistResult{Already: tt.already}, nil
				},
			})
			req := jsonRequest(http.MethodPost, "/api/wishlist", `{"variant_id":"`+uuid.NewString()+`"}`)
			req.Header.Set("Authorization", "Bearer "+userToken(t, user))

			rec := do(s, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(core.ErrTooManyImports))
	assert.Equal(t, http.StatusBadRequest, statusFor(core.ErrNothingToImport))
	assert.Equal(t, http.StatusNotFound, statusFor(&core.WriteError{Kind: core.KindNotFound}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}
