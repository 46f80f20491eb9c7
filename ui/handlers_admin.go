package ui

import (
	stderrors "errors"
	"io"
	"net/http"

	"leadboard/internal/errors"
	"leadboard/ui/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	sess, token, err := s.gate.Login(req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"session_id": sess.ID,
		"expires_at": sess.ExpiresAt,
	})
}

// handlePreview summarizes an uploaded spreadsheet without saving it
func (s *Server) handlePreview(c *gin.Context) {
	name, raw, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	preview, err := s.admin.Preview(c.Request.Context(), middleware.SessionFrom(c), name, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// handleReplace makes the uploaded spreadsheet the served dataset
func (s *Server) handleReplace(c *gin.Context) {
	name, raw, err := readUpload(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.admin.Replace(c.Request.Context(), middleware.SessionFrom(c), name, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleOverview(c *gin.Context) {
	overview, err := s.admin.Overview(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// readUpload reads the multipart "file" field
func readUpload(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return "", nil, errors.TooLarge(tooLarge.Limit)
	case err != nil:
		return "", nil, errors.InvalidInput("multipart field \"file\" is required")
	}
	f, err := header.Open()
	if err != nil {
		return "", nil, errors.InvalidInput("uploaded file could not be opened")
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", nil, errors.InvalidInput("uploaded file could not be read")
	}
	return header.Filename, raw, nil
}
