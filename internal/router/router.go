package router

import (
	"net/http"

	"github.com/fandom-project/back-end/internal/handler"
	"github.com/fandom-project/back-end/internal/middleware"
	"github.com/fandom-project/back-end/internal/pkg"

	"github.com/gin-gonic/gin"
)

// Deps 路由需要的处理器与中间件依赖，由 app 层组装
type Deps struct {
	Log         *pkg.Logger
	Issuer      *pkg.TokenIssuer
	Sessions    middleware.SessionVerifier
	CORSOrigins []string

	User       *handler.UserHandler
	Category   *handler.CategoryHandler
	Community  *handler.CommunityHandler
	Post       *handler.PostHandler
	Membership *handler.MembershipHandler
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.CORS(d.CORSOrigins),
	)
	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})

	auth := middleware.AuthMiddleware(d.Issuer, d.Sessions)

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.GET("", d.User.List)
		userGroup.POST("", d.User.Register)
		userGroup.POST("/authentication", d.User.Authenticate)
		userGroup.PUT("/reset-password", d.User.ResetPassword)
		userGroup.POST("/logout", auth, d.User.Logout)
		userGroup.GET("/:id", d.User.Get)
		userGroup.PUT("/:id", d.User.Update)
		userGroup.DELETE("/:id", d.User.Delete)
		userGroup.GET("/:id/communities", d.User.Communities)
		userGroup.GET("/:id/feed", d.User.Feed)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", d.User.TokenRefresh)
	}

	// 分类相关接口
	categoryGroup := r.Group("/api/category")
	{
		categoryGroup.GET("", d.Category.List)
		categoryGroup.POST("", d.Category.Create)
		categoryGroup.GET("/:id", d.Category.Get)
	}

	// 社区相关接口
	communityGroup := r.Group("/api/communities")
	{
		communityGroup.GET("", d.Community.List)
		communityGroup.POST("", d.Community.Create)
		communityGroup.POST("/follow", d.Membership.Follow)
		communityGroup.PUT("/follow", d.Membership.UpdateRole)
		communityGroup.DELETE("/follow", d.Membership.Unfollow)
		communityGroup.GET("/:id", d.Community.Get)
		communityGroup.PUT("/:id", d.Community.Update)
		communityGroup.DELETE("/:id", d.Community.Delete)
		communityGroup.GET("/:id/members", d.Community.Members)
		communityGroup.POST("/:id/cover", d.Community.UploadCover)

		// 帖子相关接口
		communityGroup.GET("/:id/posts", d.Post.ListByCommunity)
		communityGroup.POST("/:id/posts", d.Post.CreatePost)
		communityGroup.DELETE("/:id/posts/:postId", d.Post.DeletePost)
	}

	return r
}
