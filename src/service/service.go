// Package service implements a read-only HTTP API to inspect a meshkv node.
package service

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/mosaicnetworks/meshkv/src/node"
	"github.com/mosaicnetworks/meshkv/src/peers"
	"github.com/sirupsen/logrus"
)

// Service ...
type Service struct {
	sync.Mutex

	bindAddress string
	node        *node.Node
	mux         *http.ServeMux
	server      *http.Server
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, n *node.Node, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		node:        n,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the mux of the service.
// Every node has its own mux, so several nodes can live in the same process.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering meshkv API handlers")
	s.mux.HandleFunc("/stats", s.makeHandler(s.GetStats))
	s.mux.HandleFunc("/peers", s.makeHandler(s.GetPeers))
	s.mux.HandleFunc("/record", s.makeHandler(s.GetRecord))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Handler returns the http.Handler serving the API.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Serve calls ListenAndServe. This is a blocking call.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving meshkv API")

	s.Lock()
	s.server = &http.Server{
		Addr:    s.bindAddress,
		Handler: s.mux,
	}
	server := s.server
	s.Unlock()

	err := server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		s.logger.Error(err)
	}
}

// Close stops the HTTP server, if it was started.
func (s *Service) Close() error {
	s.Lock()
	defer s.Unlock()

	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.node.GetStats()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}

// GetPeers ...
func (s *Service) GetPeers(w http.ResponseWriter, r *http.Request) {
	returnPeerSet(w, r, s.node.GetPeers())
}

// GetRecord ...
func (s *Service) GetRecord(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(s.node.GetRecord())
}

func returnPeerSet(w http.ResponseWriter, r *http.Request, addrs []peers.Address) {
	w.Header().Set("Content-Type", "application/json")

	list := make([]string, len(addrs))
	for i, a := range addrs {
		list[i] = a.String()
	}

	encoder := json.NewEncoder(w)

	encoder.Encode(list)
}
