package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	timeentrydomain "github.com/billablehq/billable/internal/timeentry/domain"
)

func (s *Server) LogTimeEntry(c *gin.Context) {
	var req timeentrydomain.LogTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.Log(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTimeEntries(c *gin.Context) {
	var req timeentrydomain.ListTimeEntryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        resp.Entries,
		"total_hours": resp.TotalHours,
	})
}

func (s *Server) GetTimeEntryByID(c *gin.Context) {
	resp, err := s.timeEntrySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTimeEntry(c *gin.Context) {
	var req timeentrydomain.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.timeEntrySvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SubmitTimeEntry(c *gin.Context) {
	resp, err := s.timeEntrySvc.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveTimeEntry(c *gin.Context) {
	resp, err := s.timeEntrySvc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RejectTimeEntry(c *gin.Context) {
	resp, err := s.timeEntrySvc.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
