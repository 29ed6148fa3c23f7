package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"storefront/app"
	"storefront/config"
)

var (
	application *app.App
	initErr     error
	once        sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		application, initErr = app.New(context.Background(), config.LoadConfig())
	})
}

func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		http.Error(w, "service unavailable: "+initErr.Error(), http.StatusServiceUnavailable)
		return
	}
	application.Router.ServeHTTP(w, r)
}
