package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sivanlg/homeradar/internal/filestore"
)

// ArchiveHandler serves raw scrape files back out of the archive store,
// for replay and auditing of past ingestion batches.
type ArchiveHandler struct {
	store filestore.Store
}

func NewArchiveHandler(store filestore.Store) *ArchiveHandler {
	return &ArchiveHandler{store: store}
}

func (h *ArchiveHandler) Get(c *gin.Context) {
	if h.store == nil {
		c.Status(http.StatusNotFound)
		return
	}
	key := c.Param("key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "\\") {
		c.Status(http.StatusBadRequest)
		return
	}
	file, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()
	c.Header("Content-Type", "application/json")
	_, _ = io.Copy(c.Writer, file)
}
