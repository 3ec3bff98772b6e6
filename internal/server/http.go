package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xtding233/tile-merge/internal/board"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errResp struct {
	Err string `json:"err"`
}

type clearReq struct {
	Cells []board.Point `json:"cells"`
}

// HTTP exposes the registry as query-parameter JSON endpoints.
type HTTP struct {
	reg *Registry
	log *zap.Logger
}

func NewHTTP(reg *Registry, log *zap.Logger) *HTTP {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTP{reg: reg, log: log}
}

// Handler returns a mux with every endpoint registered.
func (h *HTTP) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /start", h.handleStart)
	mux.HandleFunc("GET /next", h.handleNext)
	mux.HandleFunc("POST /place", h.handlePlace)
	mux.HandleFunc("GET /stats", h.handleStats)
	mux.HandleFunc("GET /board", h.handleBoard)
	mux.HandleFunc("POST /clear", h.handleClear)
	mux.HandleFunc("GET /preview", h.handlePreview)
	mux.HandleFunc("POST /end", h.handleEnd)
	return mux
}

func parseInt(r *http.Request, key string) (int, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func parseBool(r *http.Request, key string) (bool, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return false, false, ""
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false, "invalid " + key
	}
	return v, true, ""
}

func parseUint(r *http.Request, key string) (uint64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func badRequest(msg string) error { return fmt.Errorf("%w: %s", ErrBadRequest, msg) }

// parseID requires the id query param.
func parseID(r *http.Request) (string, error) {
	id := r.URL.Query().Get("id")
	if id == "" {
		return "", badRequest("missing param id")
	}
	return id, nil
}

// parsePoint requires both x and y.
func parsePoint(r *http.Request) (board.Point, error) {
	x, okX, msg := parseInt(r, "x")
	if msg != "" {
		return board.Point{}, badRequest(msg)
	}
	y, okY, msg := parseInt(r, "y")
	if msg != "" {
		return board.Point{}, badRequest(msg)
	}
	if !okX || !okY {
		return board.Point{}, badRequest("missing param x/y")
	}
	return board.Point{X: x, Y: y}, nil
}

func parseStart(r *http.Request) (StartRequest, error) {
	req := StartRequest{Profile: r.URL.Query().Get("profile")}
	o := &req.Overrides
	for key, dst := range map[string]**int{
		"size":          &o.Size,
		"initial_tiles": &o.InitialTiles,
		"combo":         &o.ComboThreshold,
		"max_cascade":   &o.MaxCascade,
	} {
		v, ok, msg := parseInt(r, key)
		if msg != "" {
			return req, badRequest(msg)
		}
		if ok {
			*dst = &v
		}
	}
	for key, dst := range map[string]**bool{
		"core":  &o.CorePatterns,
		"defer": &o.DeferCoreClear,
	} {
		v, ok, msg := parseBool(r, key)
		if msg != "" {
			return req, badRequest(msg)
		}
		if ok {
			*dst = &v
		}
	}
	if m := r.URL.Query().Get("mode"); m != "" {
		o.Mode = &m
	}
	seed, ok, msg := parseUint(r, "seed")
	if msg != "" {
		return req, badRequest(msg)
	}
	if ok {
		req.Seed = &seed
	}
	return req, nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("encode response", zap.Error(err))
	}
}

func (h *HTTP) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	h.writeJSON(w, code, errResp{Err: err.Error()})
}

// reply writes v, or the mapped error.
func (h *HTTP) reply(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, v)
}

func (h *HTTP) handleStart(w http.ResponseWriter, r *http.Request) {
	req, err := parseStart(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	v, err := h.reg.Start(req)
	h.reply(w, r, v, err)
}

func (h *HTTP) handleNext(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	v, err := h.reg.Next(id)
	h.reply(w, r, v, err)
}

func (h *HTTP) handlePlace(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	p, err := parsePoint(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	v, err := h.reg.Place(id, p)
	h.reply(w, r, v, err)
}

func (h *HTTP) handleStats(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	v, err := h.reg.Stats(id)
	h.reply(w, r, v, err)
}

func (h *HTTP) handleBoard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	v, err := h.reg.Board(id)
	h.reply(w, r, v, err)
}

// handleClear applies the cells in the JSON body; an empty body applies the
// session's pending deferred clear.
func (h *HTTP) handleClear(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		h.writeErr(w, r, badRequest("read body: "+err.Error()))
		return
	}
	var body clearReq
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			h.writeErr(w, r, badRequest("invalid body: "+err.Error()))
			return
		}
	}
	v, err := h.reg.Clear(id, body.Cells)
	h.reply(w, r, v, err)
}

func (h *HTTP) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	p, err := parsePoint(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	v, err := h.reg.Preview(id, p)
	h.reply(w, r, v, err)
}

func (h *HTTP) handleEnd(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	v, err := h.reg.End(id)
	h.reply(w, r, v, err)
}
