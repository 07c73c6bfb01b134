package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Instrumentation exposes request metrics. It may be nil.
type Instrumentation interface {
	Middleware() gin.HandlerFunc
	Handler() http.Handler
}

type Router struct {
	*gin.Engine
	logger *zap.Logger
}

func NewRouter(
	conf *config.App,
	tokenService port.TokenService,
	instrumentation Instrumentation,
	userHandler *UserHandler,
	productHandler *ProductHandler,
	orderHandler *OrderHandler,
	logger *zap.Logger) (*Router, error) {

	if conf.Mode == config.AppModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if instrumentation != nil {
		router.Use(instrumentation.Middleware())
		router.GET("/metrics", gin.WrapH(instrumentation.Handler()))
	}

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := NewHandler(logger).authCheck(tokenService)

	api := router.Group("/api")
	{
		user := api.Group("/user")
		{
			user.POST("/register", userHandler.RegisterUser)
			user.POST("/login", userHandler.LoginUser)
		}

		products := api.Group("/products")
		{
			products.Use(auth)
			products.POST("", productHandler.CreateProduct)
			products.GET("/:id", productHandler.GetProduct)
		}

		orders := api.Group("/orders")
		{
			orders.Use(auth)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.PATCH("/:id/status", orderHandler.UpdateStatus)
			orders.PATCH("/:id/payment", orderHandler.UpdatePayment)
			orders.POST("/:id/notifications/read", orderHandler.MarkNotificationsRead)
		}
	}

	return &Router{Engine: router, logger: logger}, nil
}

// Serve runs the HTTP server until ctx is done, then shuts it down gracefully.
func (r *Router) Serve(ctx context.Context, listenAddr string) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		r.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
