package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mylibrary-server/internal/config"
	"mylibrary-server/internal/models"
	"mylibrary-server/internal/service"
	"mylibrary-server/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// envelope mirrors the uniform response body for assertions.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    map[string]any      `json:"data"`
	Errors  []models.FieldError `json:"errors"`
	Error   string              `json:"error"`
}

type handlerTestEnv struct {
	router    *gin.Engine
	userRepo  *mocks.UserRepository
	bookRepo  *mocks.BookRepository
	tokenRepo *mocks.TokenRepository
}

func newHandlerTestEnv() *handlerTestEnv {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:        "test",
		JWTSecret:  "handler-test-secret",
		JWTIssuer:  "mylibrary-test",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}

	env := &handlerTestEnv{
		userRepo:  &mocks.UserRepository{},
		bookRepo:  &mocks.BookRepository{},
		tokenRepo: &mocks.TokenRepository{},
	}

	authSvc := service.NewAuthService(env.userRepo, env.tokenRepo, cfg, zap.NewNop())
	bookSvc := service.NewBookService(env.bookRepo, zap.NewNop())

	router := gin.New()
	RegisterRoutes(router, NewAuthHandler(authSvc, env.userRepo, cfg), NewBookHandler(bookSvc, cfg))
	env.router = router
	return env
}

func (env *handlerTestEnv) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var resp envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "response body must be valid JSON: %s", rec.Body.String())
	}
	return rec, resp
}

// registerTestUser drives a real registration through the router and wires
// the repository mocks so the created account can authenticate afterwards.
func (env *handlerTestEnv) registerTestUser(t *testing.T) (user *models.User, token string) {
	t.Helper()

	env.userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, models.ErrUserNotFound).Once()
	env.userRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(nil, models.ErrUserNotFound).Once()
	env.userRepo.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			user = args.Get(1).(*models.User)
			user.ID = uuid.New()
		}).Return(nil).Once()

	rec, resp := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)
	require.NotNil(t, user)

	token, _ = resp.Data["token"].(string)
	require.NotEmpty(t, token)

	env.userRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
	env.userRepo.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	return user, token
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	env := newHandlerTestEnv()

	rec, resp := env.do(t, http.MethodGet, "/api/books", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Unauthorized", resp.Message)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	env := newHandlerTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	req.Header.Set("Authorization", "Token abcdef")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareGarbageToken(t *testing.T) {
	env := newHandlerTestEnv()

	rec, resp := env.do(t, http.MethodGet, "/api/books", nil, "not.a.token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", resp.Message)
}

func TestRegisterAndProfileFlow(t *testing.T) {
	env := newHandlerTestEnv()
	_, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	rec, resp := env.do(t, http.MethodGet, "/api/auth/profile", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	userData, ok := resp.Data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", userData["username"])
	assert.Equal(t, "alice@example.com", userData["email"])
	assert.NotContains(t, userData, "password")
	assert.NotContains(t, userData, "password_hash")
}

func TestRegisterMissingFields(t *testing.T) {
	env := newHandlerTestEnv()

	rec, resp := env.do(t, http.MethodPost, "/api/auth/register", gin.H{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestRegisterDuplicateUsernameConflict(t *testing.T) {
	env := newHandlerTestEnv()
	existing := &models.User{ID: uuid.New(), Username: "alice"}
	env.userRepo.On("GetUserByUsername", mock.Anything, "alice").Return(existing, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice", "email": "other@example.com", "password": "secret1",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "A user with this username already exists", resp.Message)
}

func TestLoginFailureEnvelopeIsGeneric(t *testing.T) {
	env := newHandlerTestEnv()
	env.userRepo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrUserNotFound)

	rec, resp := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "ghost@example.com", "password": "whatever",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid credentials", resp.Message)
	assert.Empty(t, resp.Error)
}

func TestLoginAfterRegister(t *testing.T) {
	env := newHandlerTestEnv()
	env.registerTestUser(t)

	rec, resp := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "alice@example.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data["token"])
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newHandlerTestEnv()
	_, token := env.registerTestUser(t)

	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
	env.tokenRepo.On("Revoke", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("time.Duration")).Return(nil).Once()
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()

	rec, resp := env.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully logged out", resp.Message)

	rec, resp = env.do(t, http.MethodGet, "/api/auth/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", resp.Message)
	env.tokenRepo.AssertExpectations(t)
}

func TestCreateBookDropsRatingWhenNotRead(t *testing.T) {
	env := newHandlerTestEnv()
	_, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	env.bookRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).
		Run(func(args mock.Arguments) {
			book := args.Get(1).(*models.Book)
			book.ID = uuid.New()
			book.CreatedAt = time.Now()
			book.UpdatedAt = book.CreatedAt
		}).Return(nil)

	rec, resp := env.do(t, http.MethodPost, "/api/books", gin.H{
		"title": "Dune", "author": "Frank Herbert", "status": "to_read", "rating": 5,
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, resp.Success)
	assert.Equal(t, "Book added successfully", resp.Message)

	rating, present := resp.Data["rating"]
	assert.True(t, present, "rating key should be serialized")
	assert.Nil(t, rating, "rating must be null on an unread book")
}

func TestCreateBookValidationEnvelope(t *testing.T) {
	env := newHandlerTestEnv()
	_, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	rec, resp := env.do(t, http.MethodPost, "/api/books", gin.H{
		"title": "", "author": "", "rating": 9, "status": "read",
	}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid data", resp.Message)

	fields := make(map[string]bool, len(resp.Errors))
	for _, f := range resp.Errors {
		fields[f.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["author"])
	assert.True(t, fields["rating"])
	env.bookRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetForeignBookLooksMissing(t *testing.T) {
	env := newHandlerTestEnv()
	user, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	foreignID := uuid.New()
	env.bookRepo.On("GetByID", mock.Anything, foreignID, user.ID).Return(nil, models.ErrBookNotFound)

	rec, resp := env.do(t, http.MethodGet, "/api/books/"+foreignID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", resp.Message)
}

func TestMalformedBookIDLooksMissing(t *testing.T) {
	env := newHandlerTestEnv()
	_, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	rec, resp := env.do(t, http.MethodGet, "/api/books/not-a-uuid", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Book not found", resp.Message)
	env.bookRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteBook(t *testing.T) {
	env := newHandlerTestEnv()
	user, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	bookID := uuid.New()
	env.bookRepo.On("Delete", mock.Anything, bookID, user.ID).Return(nil)

	rec, resp := env.do(t, http.MethodDelete, "/api/books/"+bookID.String(), nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Book deleted successfully", resp.Message)
}

func TestListBooksPassesQueryFilters(t *testing.T) {
	env := newHandlerTestEnv()
	user, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	env.bookRepo.On("List", mock.Anything, user.ID, mock.MatchedBy(func(f models.BookFilter) bool {
		return f.Search == "dune" && f.Status == "read" && f.Limit == 5 && f.Offset == 5
	})).Return([]models.Book{}, int64(0), nil)

	rec, resp := env.do(t, http.MethodGet, "/api/books?search=dune&status=read&page=2&limit=5", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, resp.Success)

	pagination, ok := resp.Data["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), pagination["currentPage"])
	assert.Equal(t, float64(5), pagination["perPage"])
	env.bookRepo.AssertExpectations(t)
}

func TestStatsEndpoint(t *testing.T) {
	env := newHandlerTestEnv()
	user, token := env.registerTestUser(t)
	env.tokenRepo.On("IsRevoked", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)

	env.bookRepo.On("Stats", mock.Anything, user.ID).Return(&models.BookStats{
		TotalBooks: 4, ReadBooks: 2, ReadingBooks: 1, ToReadBooks: 1,
		TopGenres: []models.GenreCount{{Genre: "sci-fi", Count: 3}},
	}, nil)

	rec, resp := env.do(t, http.MethodGet, "/api/books/stats", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), resp.Data["totalBooks"])
	assert.Equal(t, float64(2), resp.Data["readBooks"])

	genres, ok := resp.Data["topGenres"].([]any)
	require.True(t, ok)
	require.Len(t, genres, 1)
	first, ok := genres[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sci-fi", first["genre"])
}
