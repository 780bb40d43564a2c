package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agriconnect/agriconnect/internal/domain/auth"
	"github.com/agriconnect/agriconnect/internal/domain/chat"
	"github.com/agriconnect/agriconnect/internal/domain/community"
	"github.com/agriconnect/agriconnect/internal/domain/croprec"
	"github.com/agriconnect/agriconnect/internal/domain/diagnosis"
	"github.com/agriconnect/agriconnect/internal/domain/market"
	"github.com/agriconnect/agriconnect/internal/domain/media"
	"github.com/agriconnect/agriconnect/internal/domain/pricing"
	"github.com/agriconnect/agriconnect/internal/domain/weatheradvice"
	"github.com/agriconnect/agriconnect/internal/infra/chatrepo"
	"github.com/agriconnect/agriconnect/internal/infra/communityrepo"
	"github.com/agriconnect/agriconnect/internal/infra/config"
	"github.com/agriconnect/agriconnect/internal/infra/croprec/hfspace"
	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
	"github.com/agriconnect/agriconnect/internal/infra/marketrepo"
	"github.com/agriconnect/agriconnect/internal/infra/mediastore"
	"github.com/agriconnect/agriconnect/internal/infra/trendstore"
	"github.com/agriconnect/agriconnect/internal/infra/userrepo"
	"github.com/agriconnect/agriconnect/internal/infra/weather/weatherapi"
)

type stubMandiClient struct{}

func (stubMandiClient) ModalPrice(ctx context.Context, commodity string) (int, bool) {
	return 0, false
}

type stubRecommender struct{}

func (stubRecommender) Recommend(ctx context.Context, payload hfspace.Payload) (map[string]any, error) {
	return map[string]any{"recommended_crop": "Cotton"}, nil
}

// newTestHandler assembles the full router on in-memory infrastructure
// with every external client unconfigured.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:        ":0",
			ReadTimeout:    5 * time.Second,
			WriteTimeout:   5 * time.Second,
			AllowedOrigins: []string{"*"},
		},
	}

	model := gemini.NewClient("", "")
	weather := weatherapi.NewClient("", "")

	diagnosisSvc := diagnosis.NewService(diagnosis.Config{Model: "test-model", RetryAttempts: 1}, model, logger)
	pricingSvc := pricing.NewService(pricing.Config{Model: "test-model"}, stubMandiClient{}, model, logger)
	weatherSvc := weatheradvice.NewService(weatheradvice.Config{Model: "test-model"}, weather, model, logger)
	cropRecSvc := croprec.NewService(stubRecommender{}, weather, logger)

	authSvc := auth.NewService(auth.Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, userrepo.NewMemoryRepository(), logger)
	communitySvc := community.NewService(community.Config{}, communityrepo.NewMemoryRepository(), trendstore.NewMemoryStore(), model, logger)
	marketSvc := market.NewService(marketrepo.NewMemoryRepository(), logger)
	chatSvc := chat.NewService(chatrepo.NewMemoryRepository())
	mediaSvc := media.NewService(media.Config{}, mediastore.NewMemoryStorage())

	handlers := Handlers{
		AI:        NewAIHandler(diagnosisSvc, pricingSvc, weatherSvc, cropRecSvc, logger),
		Auth:      NewAuthHandler(authSvc, logger),
		Community: NewCommunityHandler(communitySvc, logger),
		Market:    NewMarketHandler(marketSvc, logger),
		Chat:      NewChatHandler(chatSvc, logger),
		Media:     NewMediaHandler(mediaSvc, logger),
	}
	return NewRouter(cfg, handlers, authSvc, logger).Handler
}

func performJSON(handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorBody(t *testing.T, payload []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(payload, &body))
	return body
}

func registerAndLogin(t *testing.T, handler http.Handler, email, username string) string {
	t.Helper()
	body := `{"email":"` + email + `","username":"` + username + `","password":"longenough"}`
	recorder := performJSON(handler, http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = performJSON(handler, http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"longenough"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRouter_Healthz(t *testing.T) {
	handler := newTestHandler(t)

	recorder := performJSON(handler, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "ok")
}

func TestRouter_DiagnoseCropDegradesTo200(t *testing.T) {
	handler := newTestHandler(t)

	recorder := performJSON(handler, http.MethodPost, "/api/v1/ai/diagnose-crop", `{"photoDataUri":"not-a-data-uri"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var result diagnosis.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(t, "Diagnosis Unavailable", result.DiseaseName)
	require.Zero(t, result.Confidence)
}

func TestRouter_PredictPriceFallback(t *testing.T) {
	handler := newTestHandler(t)

	recorder := performJSON(handler, http.MethodPost, "/api/v1/ai/predict-price", `{"region":"Nashik","crop":"Wheat"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var result pricing.Prediction
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Positive(t, result.CurrentMandiPrice)
	require.LessOrEqual(t, result.PredictedPriceMin, result.PredictedPriceMax)
	require.False(t, result.IsLiveMandiData)
	require.Len(t, result.HistoricalData, 7)
}

func TestRouter_PredictPriceValidation(t *testing.T) {
	handler := newTestHandler(t)

	recorder := performJSON(handler, http.MethodPost, "/api/v1/ai/predict-price", `{"region":"Nashik"}`, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.Contains(t, errBody["error"]["message"], "crop is required")
}

func TestRouter_WeatherAdviceFallback(t *testing.T) {
	handler := newTestHandler(t)

	recorder := performJSON(handler, http.MethodPost, "/api/v1/ai/weather-advice", `{"location":"Jalgaon"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var result weatheradvice.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(t, "Jalgaon", result.Location)
	require.Contains(t, result.RecommendedCropsForHarvest, "Banana")
}

func TestRouter_RecommendCrop(t *testing.T) {
	handler := newTestHandler(t)

	recorder := performJSON(handler, http.MethodPost, "/api/v1/ai/recommend-crop", `{"latitude":21.0,"longitude":75.5}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Cotton")
}

func TestRouter_AuthFlow(t *testing.T) {
	handler := newTestHandler(t)
	token := registerAndLogin(t, handler, "ramesh@example.com", "ramesh_k")

	recorder := performJSON(handler, http.MethodGet, "/api/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)

	var user auth.UserView
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &user))
	require.Equal(t, "ramesh_k", user.Username)

	recorder = performJSON(handler, http.MethodGet, "/api/v1/auth/me", "", "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performJSON(handler, http.MethodGet, "/api/v1/auth/me", "", "bogus-token")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRouter_DuplicateRegistrationConflicts(t *testing.T) {
	handler := newTestHandler(t)
	registerAndLogin(t, handler, "ramesh@example.com", "ramesh_k")

	recorder := performJSON(handler, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ramesh@example.com","username":"other","password":"longenough"}`, "")
	require.Equal(t, http.StatusConflict, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "already_exists", errBody["error"]["code"])
}

func TestRouter_CommunityFlow(t *testing.T) {
	handler := newTestHandler(t)
	token := registerAndLogin(t, handler, "ramesh@example.com", "ramesh_k")

	recorder := performJSON(handler, http.MethodGet, "/api/v1/community/communities", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performJSON(handler, http.MethodPost, "/api/v1/community/posts",
		`{"title":"Leaf curl","text":"Curled leaves after rain.","communityId":"cotton-farmers"}`, "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performJSON(handler, http.MethodPost, "/api/v1/community/posts",
		`{"title":"Leaf curl","text":"Curled leaves after rain.","communityId":"cotton-farmers"}`, token)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var post community.Post
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &post))
	require.NotEmpty(t, post.ID)

	recorder = performJSON(handler, http.MethodPost, "/api/v1/community/posts/"+post.ID+"/vote", `{"direction":"up"}`, token)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performJSON(handler, http.MethodPost, "/api/v1/community/posts/"+post.ID+"/comments", `{"text":"Try neem spray."}`, token)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = performJSON(handler, http.MethodGet, "/api/v1/community/posts/"+post.ID+"/comments", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "neem spray")

	recorder = performJSON(handler, http.MethodGet, "/api/v1/community/posts/missing", "", "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "not_found", errBody["error"]["code"])
}

func TestRouter_MarketFlow(t *testing.T) {
	handler := newTestHandler(t)
	sellerToken := registerAndLogin(t, handler, "seller@example.com", "seller_r")
	buyerToken := registerAndLogin(t, handler, "buyer@example.com", "buyer_s")

	recorder := performJSON(handler, http.MethodPost, "/api/v1/market/products",
		`{"name":"Fresh Onions","price":18.5,"stock":100,"region":"Nashik"}`, sellerToken)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var product market.Product
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &product))

	recorder = performJSON(handler, http.MethodGet, "/api/v1/market/products", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Fresh Onions")

	recorder = performJSON(handler, http.MethodPost, "/api/v1/market/orders",
		`{"productId":"`+product.ID+`","quantity":3}`, buyerToken)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var order market.Order
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &order))
	require.Equal(t, market.OrderPlaced, order.Status)

	recorder = performJSON(handler, http.MethodPatch, "/api/v1/market/orders/"+order.ID, `{"status":"confirmed"}`, buyerToken)
	require.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = performJSON(handler, http.MethodPatch, "/api/v1/market/orders/"+order.ID, `{"status":"confirmed"}`, sellerToken)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performJSON(handler, http.MethodPost, "/api/v1/market/orders",
		`{"productId":"`+product.ID+`","quantity":500}`, buyerToken)
	require.Equal(t, http.StatusConflict, recorder.Code)
	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "insufficient_stock", errBody["error"]["code"])
}

func TestRouter_ChatRequiresAuth(t *testing.T) {
	handler := newTestHandler(t)
	token := registerAndLogin(t, handler, "ramesh@example.com", "ramesh_k")

	recorder := performJSON(handler, http.MethodGet, "/api/v1/chat/conversations", "", "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = performJSON(handler, http.MethodGet, "/api/v1/chat/conversations", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestRouter_MediaUploadAndFetch(t *testing.T) {
	handler := newTestHandler(t)
	token := registerAndLogin(t, handler, "ramesh@example.com", "ramesh_k")

	recorder := performJSON(handler, http.MethodPost, "/api/v1/media",
		`{"image":"data:image/png;base64,aGVsbG8="}`, token)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var obj media.StoredObject
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &obj))
	require.NotEmpty(t, obj.Key)

	recorder = performJSON(handler, http.MethodGet, "/api/v1/media/"+obj.Key, "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	require.Equal(t, "hello", recorder.Body.String())
}

func TestRouter_GoogleLoginUnconfigured(t *testing.T) {
	handler := newTestHandler(t)

	recorder := performJSON(handler, http.MethodGet, "/api/v1/auth/google", "", "")
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
