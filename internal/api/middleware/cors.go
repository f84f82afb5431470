package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func ConfigCORS(allowedDomains string) gin.HandlerFunc {
	domains := strings.Split(allowedDomains, ",")

	return cors.New(cors.Config{
		AllowOrigins:     domains,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			for _, domain := range domains {
				if strings.HasSuffix(origin, strings.TrimSpace(domain)) {
					return true
				}
			}

			return false
		},
		MaxAge: 12 * time.Hour,
	})
}
