package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON renders payload with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) { JSON(c, http.StatusOK, payload) }

// Created renders a freshly created resource.
func Created(c *gin.Context, payload any) { JSON(c, http.StatusCreated, payload) }

// NoContent ends the request with 204 and an empty body.
func NoContent(c *gin.Context) { c.Status(http.StatusNoContent) }
