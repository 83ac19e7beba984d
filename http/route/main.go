package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-drive-service/http/controller"
	middlewares "github.com/tnqbao/gau-drive-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1/drive")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		objectRoutes := apiRoutes.Group("/objects")
		{
			objectRoutes.POST("/", ctrl.UploadObject)
			objectRoutes.GET("/", ctrl.ListObjects)
			objectRoutes.GET("/:object_key/download", ctrl.DownloadObject)
			objectRoutes.DELETE("/:object_key", ctrl.DeleteObject)
			objectRoutes.PUT("/:object_key/access", ctrl.UpdateAccess)
			objectRoutes.GET("/:object_key/access", ctrl.GetAccessRoster)
		}
	}
	return r
}
