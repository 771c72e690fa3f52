package main

import (
	"context"
	"fmt"
	"time"

	"github.com/HaiTang-8/content-hub/api"
	"github.com/HaiTang-8/content-hub/config"
	"github.com/HaiTang-8/content-hub/internal/service"
	"github.com/HaiTang-8/content-hub/internal/share"

	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	criteria := share.CleanupCriteria{
		RemoveExpired:     true,
		RemoveMissingFile: true,
		RemoveExhausted:   true,
	}

	if config.CleanupOnStart() {
		res, err := a.Shares.Cleanup(context.Background(), criteria)
		if err != nil {
			zap.L().Error("Startup share cleanup failed", zap.Error(err))
		} else {
			zap.L().Info("Startup share cleanup done", zap.Int("deleted", res.Deleted))
		}
	}

	service.SessionCleanup(time.Hour, a.Store)

	if m := v.GetInt("share.cleanup_interval_minutes"); m > 0 {
		service.ShareCleanup(time.Duration(m)*time.Minute, a.Shares, criteria)
	}

	zap.L().Info("Server starting", zap.Int("port", v.GetInt("host.port")))

	err = a.Router.Run(fmt.Sprintf(":%d", v.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
