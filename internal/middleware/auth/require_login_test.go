package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"catalogapi/internal/token"
)

var secret = []byte("test-secret")

func run(t *testing.T, decorate func(*http.Request)) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/products", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := RequireLogin(secret)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user_id": UserID(c)})
	})
	return rec, h(c)
}

func TestRequireLoginBearerHeader(t *testing.T) {
	tok, err := token.Sign(7, secret)
	require.NoError(t, err)

	rec, err := run(t, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"user_id": 7}`, rec.Body.String())
}

func TestRequireLoginCookie(t *testing.T) {
	tok, err := token.Sign(7, secret)
	require.NoError(t, err)

	rec, err := run(t, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: tok})
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireLoginMissingToken(t *testing.T) {
	_, err := run(t, nil)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLoginGarbageToken(t *testing.T) {
	_, err := run(t, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer not.a.token")
	})
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLoginWrongSecret(t *testing.T) {
	tok, err := token.Sign(7, []byte("other-secret"))
	require.NoError(t, err)

	_, err = run(t, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	})
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError")
	require.Equal(t, http.StatusUnauthorized, he.Code)
}
