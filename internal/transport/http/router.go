package httpserver

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"catalogapi/internal/handlers"
	authmw "catalogapi/internal/middleware/auth"
)

type Deps struct {
	DB             *gorm.DB
	JWTSecret      []byte
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	SearchHandler  *handlers.SearchHandler
}

// CustomValidator adapts go-playground/validator to echo's Validator
// interface; validation failures surface as 400s.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	requireLogin := authmw.RequireLogin(d.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/is_admin", d.AuthHandler.IsAdmin, requireLogin)

	products := e.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, requireLogin)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, requireLogin)
	products.PATCH("/:id", d.ProductHandler.UpdateProduct, requireLogin)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, requireLogin)
}
