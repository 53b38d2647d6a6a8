package server

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pokrova/contentctl/internal/core"
	"github.com/pokrova/contentctl/internal/github"
	"github.com/pokrova/contentctl/internal/models"
	"github.com/pokrova/contentctl/internal/record"
)

// draftPayload is the editor's view of a record under edit.
type draftPayload struct {
	UID        string                             `json:"uid"`
	Collection models.Collection                  `json:"collection"`
	Variants   map[models.Language]models.Variant `json:"variants"`
}

// savePayload carries one save mutation: the edited variants, removal marks
// and pending uploads (inline base64, the editor holds no server-side state).
type savePayload struct {
	Variants map[models.Language]models.Variant `json:"variants"`
	Removed  []string                           `json:"removed"`
	Uploads  []struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	} `json:"uploads"`
}

// mutationResponse is the structured outcome of a save/create/delete; the
// client decides how to surface it.
type mutationResponse struct {
	OK        bool     `json:"ok"`
	Steps     []string `json:"steps"`
	Branch    string   `json:"branch,omitempty"`
	PRNumber  int      `json:"pr_number,omitempty"`
	PRURL     string   `json:"pr_url,omitempty"`
	AutoMerge bool     `json:"auto_merge"`
	Error     string   `json:"error,omitempty"`
}

func (s *Server) collection(c *gin.Context) (models.Collection, bool) {
	coll := models.Collection(c.Param("collection"))
	if !coll.Valid() {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection"})
		return "", false
	}
	return coll, true
}

func (s *Server) handleList(c *gin.Context) {
	coll, ok := s.collection(c)
	if !ok {
		return
	}

	previews, err := core.ListPreviews(c.Request.Context(), s.gateway(c), coll, s.cfg.ContentRef)
	if err != nil {
		status(c, err)
		return
	}

	if s.previews != nil {
		// Cache write-through failures do not affect the listing.
		_ = s.previews.ReplaceCollection(coll, previews)
	}
	c.JSON(http.StatusOK, previews)
}

func (s *Server) handleGet(c *gin.Context) {
	coll, ok := s.collection(c)
	if !ok {
		return
	}
	uid := c.Param("uid")

	draft, err := core.LoadDraft(c.Request.Context(), s.gateway(c), coll, uid, s.cfg.ContentRef)
	if err != nil {
		status(c, err)
		return
	}
	c.JSON(http.StatusOK, draftPayload{UID: uid, Collection: coll, Variants: draft.Variants})
}

func (s *Server) handleCreate(c *gin.Context) {
	coll, ok := s.collection(c)
	if !ok {
		return
	}

	var req struct {
		UID string `json:"uid"`
	}
	if err := c.BindJSON(&req); err != nil || req.UID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid is required"})
		return
	}

	resp := mutationResponse{}
	result, err := core.CreateNew(c.Request.Context(), s.gateway(c), coll, req.UID, func(step string) {
		resp.Steps = append(resp.Steps, step)
	})
	s.finish(c, coll, resp, result, err)
}

func (s *Server) handleSave(c *gin.Context) {
	coll, ok := s.collection(c)
	if !ok {
		return
	}
	uid := c.Param("uid")

	var req savePayload
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid save payload"})
		return
	}

	draft := record.Materialize(coll, uid, nil)
	for lang, v := range req.Variants {
		if _, known := draft.Variants[lang]; !known {
			continue
		}
		v.Language = lang
		if v.Images == nil {
			v.Images = []string{}
		}
		draft.Variants[lang] = v
	}

	uploads := make([]core.Upload, 0, len(req.Uploads))
	for _, up := range req.Uploads {
		content, err := base64.StdEncoding.DecodeString(up.Content)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload encoding: " + up.Name})
			return
		}
		uploads = append(uploads, core.Upload{Name: up.Name, Content: content})
	}

	resp := mutationResponse{}
	result, err := core.Save(c.Request.Context(), s.gateway(c), core.SaveOptions{
		Collection: coll,
		UID:        uid,
		Draft:      draft,
		Uploads:    uploads,
		Removed:    req.Removed,
		Ref:        s.cfg.ContentRef,
	}, func(step string) {
		resp.Steps = append(resp.Steps, step)
	})
	s.finish(c, coll, resp, result, err)
}

func (s *Server) handleDelete(c *gin.Context) {
	coll, ok := s.collection(c)
	if !ok {
		return
	}
	uid := c.Param("uid")

	resp := mutationResponse{}
	result, err := core.Delete(c.Request.Context(), s.gateway(c), coll, uid, s.cfg.ContentRef, func(step string) {
		resp.Steps = append(resp.Steps, step)
	})
	s.finish(c, coll, resp, result, err)
}

func (s *Server) handleTranslate(c *gin.Context) {
	coll, ok := s.collection(c)
	if !ok {
		return
	}
	uid := c.Param("uid")

	var req savePayload
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	draft := record.Materialize(coll, uid, nil)
	for lang, v := range req.Variants {
		if _, known := draft.Variants[lang]; !known {
			continue
		}
		v.Language = lang
		if v.Images == nil {
			v.Images = []string{}
		}
		draft.Variants[lang] = v
	}

	filled := s.translator.FillMissing(c.Request.Context(), draft)
	c.JSON(http.StatusOK, draftPayload{UID: uid, Collection: coll, Variants: filled.Variants})
}

// finish renders a mutation outcome. The progress steps collected so far are
// returned on failure too, so the editor can show how far the save got next
// to the error.
func (s *Server) finish(c *gin.Context, coll models.Collection, resp mutationResponse, result *core.Result, err error) {
	if err != nil {
		resp.OK = false
		resp.Error = err.Error()
		c.JSON(statusCode(err), resp)
		return
	}

	if s.previews != nil {
		_ = s.previews.Invalidate(coll)
	}

	resp.OK = true
	resp.Branch = result.Branch
	resp.PRNumber = result.PRNumber
	resp.PRURL = result.PRURL
	resp.AutoMerge = result.AutoMerge
	c.JSON(http.StatusOK, resp)
}

func status(c *gin.Context, err error) {
	c.JSON(statusCode(err), gin.H{"error": err.Error()})
}

// statusCode maps gateway failures onto the admin API response: provider
// rejections keep their status where meaningful, everything else is a 502.
func statusCode(err error) int {
	var re *github.RemoteError
	if errors.As(err, &re) {
		switch {
		case re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden:
			return re.Status
		case re.Stale():
			return http.StatusConflict
		}
	}
	return http.StatusBadGateway
}
