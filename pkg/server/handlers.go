package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/groupfit/pkg/canvas"
	"github.com/matzehuels/groupfit/pkg/errors"
	gfio "github.com/matzehuels/groupfit/pkg/io"
	"github.com/matzehuels/groupfit/pkg/pipeline"
	"github.com/matzehuels/groupfit/pkg/render"
	"github.com/matzehuels/groupfit/pkg/snapshot"
)

// documentVersion is the version of the shared diagram document.
const documentVersion = 1

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "store": s.store.Kind()})
}

type fitResponse struct {
	canvas.Diagram
	Changed bool `json:"changed"`
	Fitted  int  `json:"fitted"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	d, err := gfio.ReadJSON(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := pipeline.Options{
		Group:  q.Get("group"),
		Strict: queryBool(q, "strict"),
	}

	res, err := s.runner.Execute(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.Diagram.Nodes == nil {
		res.Diagram.Nodes = []canvas.Node{}
	}
	writeJSON(w, http.StatusOK, fitResponse{
		Diagram: res.Diagram,
		Changed: res.Stats.FittedGroups > 0,
		Fitted:  res.Stats.FittedGroups,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = render.FormatSVG
	}
	if err := render.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	scale := 0.0
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "scale must be a number, got %q", v))
			return
		}
		scale = f
	}

	d, err := gfio.ReadJSON(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), d, pipeline.Options{
		Group:   q.Get("group"),
		Strict:  queryBool(q, "strict"),
		SkipFit: q.Has("fit") && !queryBool(q, "fit"),
		Formats: []string{format},
		Edges:   queryBool(q, "edges"),
		Scale:   scale,
		Layout:  q.Get("layout"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Artifacts[format])
}

type saveRequest struct {
	Flow     json.RawMessage `json:"flow"`
	Title    string          `json:"title"`
	Notes    string          `json:"notes"`
	ParentID string          `json:"parent_id"`
}

type saveResponse struct {
	ID        string `json:"id"`
	ShareURL  string `json:"shareUrl"`
	CreatedAt int64  `json:"createdAt"`
}

func (s *Server) handleSaveDiagram(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid request body"))
		return
	}
	if len(req.Flow) == 0 || bytes.Equal(req.Flow, []byte("null")) || req.Flow[0] != '{' {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "Missing required field: flow"))
		return
	}
	d, err := gfio.ReadJSON(bytes.NewReader(req.Flow))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Title != "" {
		d.Title = req.Title
	}

	snap, err := snapshot.New(d, req.Title, req.Notes, req.ParentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Save(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, saveResponse{
		ID:        snap.ID,
		ShareURL:  s.shareURL(r, snap.ID),
		CreatedAt: snap.CreatedAt.UnixMilli(),
	})
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []snapshot.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// diagramDocument is the wire form of a shared diagram, as the editor loads
// it.
type diagramDocument struct {
	Version   int      `json:"version"`
	ID        string   `json:"id"`
	Title     string   `json:"title,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	ParentID  string   `json:"parent_id,omitempty"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
	Flow      flowView `json:"flow"`
}

type flowView struct {
	Nodes []canvas.Node `json:"nodes"`
	Edges []canvas.Edge `json:"edges"`
}

func documentOf(snap *snapshot.Snapshot) diagramDocument {
	doc := diagramDocument{
		Version:   documentVersion,
		ID:        snap.ID,
		Title:     snap.DiagramName,
		Notes:     snap.Notes,
		ParentID:  snap.ParentID,
		CreatedAt: snap.CreatedAt.UnixMilli(),
		UpdatedAt: snap.UpdatedAt.UnixMilli(),
		Flow:      flowView{Nodes: snap.Diagram.Nodes, Edges: snap.Diagram.Edges},
	}
	if doc.Flow.Nodes == nil {
		doc.Flow.Nodes = []canvas.Node{}
	}
	if doc.Flow.Edges == nil {
		doc.Flow.Edges = []canvas.Edge{}
	}
	return doc
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := errors.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentOf(snap))
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := errors.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// shareURL links to the editor with the diagram preloaded. The base is the
// configured public URL, or the request's own origin.
func (s *Server) shareURL(r *http.Request, id string) string {
	base := s.cfg.PublicURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if p := r.Header.Get("X-Forwarded-Proto"); p == "http" || p == "https" {
			scheme = p
		}
		base = scheme + "://" + r.Host
	}
	return strings.TrimRight(base, "/") + "/?diagram=" + url.QueryEscape(id)
}

func queryBool(q url.Values, key string) bool {
	if !q.Has(key) {
		return false
	}
	v := q.Get(key)
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
