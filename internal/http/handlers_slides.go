package http

import (
	"bytes"
	"net/http"
	"time"

	applog "sbuboard/internal/log"
	"sbuboard/internal/slides"
)

// pollEvery is how often the page asks for the current slide.
const pollEvery = time.Second

type navItem struct {
	Index  int
	Name   string
	Active bool
}

type slideData struct {
	View       slides.View
	Nav        []navItem
	PollMillis int64
	Interval   string
}

func (s *Server) slideData(v slides.View) slideData {
	deck := s.board.Deck()
	nav := make([]navItem, len(deck.Slides))
	for i, sl := range deck.Slides {
		nav[i] = navItem{Index: i, Name: sl.Label(), Active: i == v.Index}
	}
	return slideData{
		View:       v,
		Nav:        nav,
		PollMillis: pollEvery.Milliseconds(),
		Interval:   s.board.Rotator().Interval().String(),
	}
}

// render executes a template into a buffer first so a failure never leaves
// a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, resp *HTMXResponseBuilder, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err,
			"template", name)
		InternalServerError("rendering failed").Write(w)
		return
	}
	resp.BodyHTML(buf.String()).Write(w)
}

// handleIndex renders the full dashboard page around the current slide.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, NewHTMXResponse(), "index.html", s.slideData(s.board.Current()))
}

// handleSlide renders one slide partial. GET shows the current slide, or the
// one named by ?index= without moving the rotation. POST jumps the rotation
// to ?index= and restarts its interval.
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	if denied := RequireMethod(r, http.MethodGet, http.MethodPost); denied != nil {
		denied.Write(w)
		return
	}
	index, ok, err := ParseSlideIndex(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	resp := NewHTMXResponse()
	var view slides.View
	switch {
	case r.Method == http.MethodPost:
		if !ok {
			BadRequestError("index is required").Write(w)
			return
		}
		view = s.board.View(s.board.Rotator().GoTo(index))
		resp.TriggerSlideChanged(view.Index)
	case ok:
		view = s.board.View(index)
	default:
		view = s.board.Current()
	}

	s.render(w, r, resp, "slide", s.slideData(view))
}
