package server

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apim-labs/punchlist/internal/checklist"
	"github.com/apim-labs/punchlist/internal/markdown"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListChecklists(c *gin.Context) {
	names, err := s.store.ListChecklists(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checklists": names})
}

func (s *Server) handleChecklistSlugs(c *gin.Context) {
	name := c.Param("name")
	slugs, err := s.store.GetSlugsForChecklist(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checklist": name,
		"slugs":     slugs,
		"count":     len(slugs),
	})
}

func (s *Server) handleExport(c *gin.Context) {
	name := c.Param("name")
	slugs, err := s.store.GetSlugsForChecklist(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(slugs) == 0 {
		writeError(c, &checklist.NotFoundError{Kind: "checklist", Key: name})
		return
	}

	doc, err := markdown.Export(name, slugs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
}

func (s *Server) handleImport(c *gin.Context) {
	name := c.Param("name")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, fmt.Errorf("read request body: %w", err))
		return
	}
	if len(body) == 0 {
		writeError(c, checklist.NewValidationError("body", "request body is empty"))
		return
	}

	slugs, err := markdown.Parse(name, string(body))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.ReplaceChecklist(c.Request.Context(), name, slugs); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checklist": name,
		"imported":  len(slugs),
	})
}

func (s *Server) handleGetSlug(c *gin.Context) {
	slug, err := s.store.GetSlug(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slug)
}

// patchBody mirrors checklist.Update, with status as a plain string so it
// can be validated before it reaches the store.
type patchBody struct {
	Result    *string `json:"result"`
	Status    *string `json:"status"`
	Comment   *string `json:"comment"`
	Timestamp *string `json:"timestamp"`
}

func (p patchBody) toUpdate(addressID string) (checklist.Update, error) {
	upd := checklist.Update{
		AddressID: addressID,
		Result:    p.Result,
		Comment:   p.Comment,
		Timestamp: p.Timestamp,
	}
	if p.Status != nil {
		status := checklist.ParseStatus(*p.Status)
		if status == checklist.StatusUnknown {
			return checklist.Update{}, checklist.NewValidationError("status",
				fmt.Sprintf("status must be Pass, Fail, NA, or Other, got %q", *p.Status))
		}
		upd.Status = &status
	}
	return upd, nil
}

func (s *Server) handlePatchSlug(c *gin.Context) {
	id := c.Param("id")

	var body patchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, checklist.NewValidationError("body", "invalid JSON: "+err.Error()))
		return
	}

	upd, err := body.toUpdate(id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.ApplyUpdate(c.Request.Context(), upd); err != nil {
		writeError(c, err)
		return
	}

	slug, err := s.store.GetSlug(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slug)
}

type bulkUpdateBody struct {
	Updates []struct {
		AddressID string `json:"address_id"`
		patchBody
	} `json:"updates"`
}

func (s *Server) handleBulkUpdates(c *gin.Context) {
	var body bulkUpdateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, checklist.NewValidationError("body", "invalid JSON: "+err.Error()))
		return
	}

	updates := make([]checklist.Update, 0, len(body.Updates))
	for i, item := range body.Updates {
		if item.AddressID == "" {
			writeError(c, checklist.NewValidationError("address_id",
				fmt.Sprintf("update %d is missing address_id", i)))
			return
		}
		upd, err := item.toUpdate(item.AddressID)
		if err != nil {
			writeError(c, err)
			return
		}
		updates = append(updates, upd)
	}

	if err := s.store.ApplyBulkUpdates(c.Request.Context(), updates); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(updates)})
}

func (s *Server) handleRelationships(c *gin.Context) {
	id := c.Param("id")
	graph, err := s.store.Relationships(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"address_id": id,
		"outgoing":   graph.Outgoing,
		"incoming":   graph.Incoming,
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case checklist.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case checklist.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
