package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	profiledomain "github.com/billablehq/billable/internal/profile/domain"
)

func (s *Server) CreateProfile(c *gin.Context) {
	var req profiledomain.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.profileSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProfiles(c *gin.Context) {
	resp, err := s.profileSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp.Profiles})
}

func (s *Server) GetProfileByID(c *gin.Context) {
	resp, err := s.profileSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
