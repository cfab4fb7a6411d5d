package respond

import "github.com/gin-gonic/gin"

// JSON writes the payload as a JSON body with the given status. All success
// responses go through here so handlers stay uniform.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}
