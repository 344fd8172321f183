package api

import (
	"campcircle/internal/api/middleware"
	"campcircle/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		postActionGroup := apiGroup.Group("/post/action")
		{
			postActionGroup.GET("/counts/:post_id", group.PostActionHandler.GetPostCounts)
			postActionGroup.GET("/hot", group.PostActionHandler.GetHotPosts)

			optGroup := postActionGroup.Group("")
			optGroup.Use(middleware.IdentityOptionalMiddleware())
			{
				optGroup.GET("/state/:post_id", group.PostActionHandler.GetPostEngagement)
			}

			authGroup := postActionGroup.Group("")
			authGroup.Use(middleware.IdentityMiddleware())
			{
				authGroup.POST("/thumbs/:post_id", group.PostActionHandler.ThumbPost)
				authGroup.POST("/favours/:post_id", group.PostActionHandler.FavourPost)

				authGroup.GET("/thumbed", group.PostActionHandler.GetUserThumbed)
				authGroup.GET("/favoured", group.PostActionHandler.GetUserFavoured)
			}

			// 评论子系统落库后的内部回调
			internalGroup := postActionGroup.Group("/internal")
			{
				internalGroup.POST("/comments/:post_id", group.PostActionHandler.RecordComment)
				internalGroup.DELETE("/comments/:post_id", group.PostActionHandler.RemoveComment)
			}
		}

		userFollowGroup := apiGroup.Group("/user-relation")
		{
			userFollowGroup.Use(middleware.IdentityMiddleware())
			{
				userFollowGroup.POST("/follow/:following_id", group.UserFollowHandler.Follow)
				userFollowGroup.GET("/isfollow/:following_id", group.UserFollowHandler.GetSomeoneIsFollowing)
				userFollowGroup.GET("/followers", group.UserFollowHandler.GetUserFans)
				userFollowGroup.GET("/followers/count", group.UserFollowHandler.GetUserFansCount)
				userFollowGroup.GET("/followings", group.UserFollowHandler.GetUserFollowings)
				userFollowGroup.GET("/followings/count", group.UserFollowHandler.GetUserFollowingCount)
			}
		}

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.IdentityMiddleware())
		{
			adminGroup.POST("/jobs/hot-score/run", group.AdminJobHandler.TriggerHotScore)
		}
	}

	return r
}
