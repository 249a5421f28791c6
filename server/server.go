// Package server exposes the daemon over local HTTP: a JSON info
// endpoint for tooling, a human status page on /status/ and the detailed
// log as gzip on /status/log.gz.
package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/serkey/serkeyd-go/config"
	"github.com/serkey/serkeyd-go/core"
	"github.com/serkey/serkeyd-go/memorywriter"
)

const csrfkey = "x91kqj27dh4l0ns8e3wzv5yb6tf2um0c"

type Server struct {
	https *http.Server

	sess    *core.Session
	cfg     *config.Config
	port    string
	version string

	shortMemoryWriter, longMemoryWriter *memorywriter.MemoryWriter
}

// New builds the server but does not start listening. addr is the
// loopback host:port to bind; port is the resolved device port name,
// shown on the status page.
func New(
	sess *core.Session,
	cfg *config.Config,
	port, addr, version string,
	logger io.Writer,
	short, long *memorywriter.MemoryWriter,
) *Server {
	s := &Server{
		https:             &http.Server{Addr: addr},
		sess:              sess,
		cfg:               cfg,
		port:              port,
		version:           version,
		shortMemoryWriter: short,
		longMemoryWriter:  long,
	}

	r := mux.NewRouter()
	r.Methods("POST").Path("/").HandlerFunc(s.info)

	sr := r.PathPrefix("/status").Subrouter()
	sr.Methods("GET").Path("/").HandlerFunc(s.statusPage)
	sr.Methods("POST").Path("/log.gz").HandlerFunc(s.statusGzip)
	sr.Use(csrf.Protect([]byte(csrfkey), csrf.Secure(false)))

	r.Use(originCheck(map[string]string{
		"/":              "",
		"/status/":       "",
		"/status/log.gz": "http://" + addr,
	}))

	var h http.Handler = r
	// Log after the request is done, in the Apache format.
	h = handlers.LoggingHandler(logger, h)
	// Log when the request is received.
	h = logRequest(h)

	s.https.Handler = h
	return s
}

func logRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL)
		handler.ServeHTTP(w, r)
	})
}

func (s *Server) Run() error {
	return s.https.ListenAndServe()
}

func (s *Server) Close() error {
	return s.https.Close()
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	type info struct {
		Version string `json:"version"`
		State   string `json:"state"`
		Events  int    `json:"events"`
		Garbage int    `json:"garbage"`
	}
	err := json.NewEncoder(w).Encode(info{
		Version: s.version,
		State:   s.sess.State().String(),
		Events:  s.sess.EventCount(),
		Garbage: s.sess.GarbageCount(),
	})
	if err != nil {
		respondError(w, err)
	}
}

func (s *Server) statusPage(w http.ResponseWriter, r *http.Request) {
	s.longMemoryWriter.Log("building status page")

	logText, err := s.shortMemoryWriter.String(s.version + "\n")
	if err != nil {
		respondError(w, err)
		return
	}

	data := &statusTemplateData{
		Version:      s.version,
		Port:         s.port,
		State:        s.sess.State().String(),
		KeyCount:     len(s.cfg.Keys),
		EventCount:   s.sess.EventCount(),
		GarbageCount: s.sess.GarbageCount(),
		Log:          logText,
		CSRFField:    csrf.TemplateField(r),
	}

	if err := statusTemplate.Execute(w, data); err != nil {
		respondError(w, err)
	}
}

func (s *Server) statusGzip(w http.ResponseWriter, r *http.Request) {
	s.longMemoryWriter.Log("building gzip")

	gzip, err := s.longMemoryWriter.Gzip(s.version + "\nCurrent log:\n")
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/gzip")
	if _, err := w.Write(gzip); err != nil {
		respondError(w, err)
	}
}

func respondError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusBadRequest)
}
