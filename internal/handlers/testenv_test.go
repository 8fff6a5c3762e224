package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalogapi/internal/events"
	"catalogapi/internal/hash"
	"catalogapi/internal/models"
)

type testEnv struct {
	E  *echo.Echo
	DB *gorm.DB
	A  *AuthHandler
	P  *ProductHandler

	JWTSecret []byte
}

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	if err := tv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open in-memory db")

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}), "failed to migrate tables")
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := initTestDB(t)
	secret := []byte("test-secret")

	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}

	return &testEnv{
		E:         e,
		DB:        db,
		A:         &AuthHandler{DB: db, JWTSecret: secret, Producer: &events.Producer{}},
		P:         &ProductHandler{DB: db, Producer: &events.Producer{}},
		JWTSecret: secret,
	}
}

// doJSON builds an echo context carrying the marshalled body.
func (env *testEnv) doJSON(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.E.NewContext(req, rec)
}

func (env *testEnv) createUser(t *testing.T, username, email, password string, isAdmin bool) *models.User {
	t.Helper()

	h, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{Username: username, Email: email, PasswordHash: h, IsAdmin: isAdmin}
	require.NoError(t, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) createProduct(t *testing.T, name, description string, price float64, stock int) *models.Product {
	t.Helper()

	p := models.Product{Name: name, Description: description, Price: price, Stock: stock}
	require.NoError(t, env.DB.Create(&p).Error)
	return &p
}

func requireHTTPError(t *testing.T, err error, code int) *echo.HTTPError {
	t.Helper()

	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
	return he
}
