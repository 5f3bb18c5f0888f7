package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eventflow-dev/eventflow/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/auth/register", CreateUser)
	r.POST("/api/auth/login", LoginUser)
	r.GET("/api/auth/verify", VerifyToken)
	return r
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestCreateUser(t *testing.T) {
	require.NoError(t, auth.Init("test-secret", time.Hour))
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("ana@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	mock.ExpectQuery(`INSERT INTO "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	recorder := performRequest(t, authRouter(), http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Ana",
		"email":    "Ana@X.com",
		"password": "secret1",
	})

	require.Equal(t, http.StatusCreated, recorder.Code)

	body := decodeBody(t, recorder)
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ana@x.com", user["email"], "email must be normalized to lowercase")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	require.NoError(t, auth.Init("test-secret", time.Hour))
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("ana@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(1, "ana@x.com"))

	recorder := performRequest(t, authRouter(), http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Ana",
		"email":    "ana@x.com",
		"password": "secret1",
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, "Email already exists", body["error"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserValidation(t *testing.T) {
	setupMockDB(t)

	recorder := performRequest(t, authRouter(), http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Ana",
		"email":    "not-an-email",
		"password": "secret1",
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestLoginUser(t *testing.T) {
	require.NoError(t, auth.Init("test-secret", time.Hour))
	mock := setupMockDB(t)

	hash := hashPassword(t, "secret1")

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("ana@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash"}).
			AddRow(7, "Ana", "ana@x.com", hash))

	recorder := performRequest(t, authRouter(), http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ana@x.com",
		"password": "secret1",
	})

	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	token, ok := body["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	// The issued token must resolve back to the same user.
	claims, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	userID, ok := auth.UserIDFromClaims(claims)
	require.True(t, ok)
	assert.Equal(t, uint(7), userID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserWrongPassword(t *testing.T) {
	require.NoError(t, auth.Init("test-secret", time.Hour))
	mock := setupMockDB(t)

	hash := hashPassword(t, "secret1")

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("ana@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash"}).
			AddRow(7, "Ana", "ana@x.com", hash))

	recorder := performRequest(t, authRouter(), http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ana@x.com",
		"password": "wrong",
	})

	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["error"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUserUnknownEmail(t *testing.T) {
	require.NoError(t, auth.Init("test-secret", time.Hour))
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("ghost@x.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	recorder := performRequest(t, authRouter(), http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ghost@x.com",
		"password": "whatever",
	})

	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	// Same message as a wrong password: no user enumeration.
	body := decodeBody(t, recorder)
	assert.Equal(t, "Invalid email or password", body["error"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyToken(t *testing.T) {
	require.NoError(t, auth.Init("test-secret", time.Hour))
	mock := setupMockDB(t)

	token, err := auth.GenerateJWT(7, "ana@x.com")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(7, "Ana", "ana@x.com"))

	req := performRequestWithToken(t, authRouter(), token)

	require.Equal(t, http.StatusOK, req.Code)

	body := decodeBody(t, req)
	assert.Equal(t, true, body["valid"])

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 7, user["id"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyTokenMissing(t *testing.T) {
	setupMockDB(t)

	recorder := performRequest(t, authRouter(), http.MethodGet, "/api/auth/verify", nil)

	// Never a hard failure: 200 with a valid flag.
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["valid"])
}

func TestVerifyTokenForDeletedUser(t *testing.T) {
	require.NoError(t, auth.Init("test-secret", time.Hour))
	mock := setupMockDB(t)

	token, err := auth.GenerateJWT(7, "ana@x.com")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	recorder := performRequestWithToken(t, authRouter(), token)

	require.Equal(t, http.StatusOK, recorder.Code)

	body := decodeBody(t, recorder)
	assert.Equal(t, false, body["valid"])

	require.NoError(t, mock.ExpectationsWereMet())
}
