package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/xelth-com/qrcatalog/internal/blob"
	"github.com/xelth-com/qrcatalog/internal/buildinfo"
	"github.com/xelth-com/qrcatalog/internal/catalog"
	"github.com/xelth-com/qrcatalog/internal/middleware"
	"github.com/xelth-com/qrcatalog/internal/services/printer"
	"github.com/xelth-com/qrcatalog/internal/websocket"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Catalog        *catalog.Service
	Hub            *websocket.Hub
	Strategies     []string
	Labels         printer.LabelConfig
	MaxUploadBytes int64
	// Media serves blobs under MediaPrefix when the file backend is active.
	Media       http.Handler
	MediaPrefix string
	Logger      *zap.Logger
}

// Router wraps the mux router and the catalog service
type Router struct {
	*mux.Router
	catalog    *catalog.Service
	hub        *websocket.Hub
	strategies []string
	labels     printer.LabelConfig
	log        *zap.Logger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(d Deps) *Router {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	if d.Labels.Cols == 0 || d.Labels.Rows == 0 {
		d.Labels = printer.DefaultLabelConfig()
	}
	r := &Router{
		Router:     mux.NewRouter(),
		catalog:    d.Catalog,
		hub:        d.Hub,
		strategies: d.Strategies,
		labels:     d.Labels,
		log:        d.Logger,
	}
	r.Use(middleware.Recover(d.Logger), middleware.RequestLogger(d.Logger))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", r.getStatus).Methods("GET")
	api.HandleFunc("/categories", r.listCategories).Methods("GET")

	// Uploads are size-capped
	limit := middleware.BodyLimit(d.MaxUploadBytes)
	api.Handle("/products", limit(http.HandlerFunc(r.createProduct))).Methods("POST")
	api.Handle("/scan", limit(http.HandlerFunc(r.scan))).Methods("POST")

	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/products/{id}", r.getProduct).Methods("GET")
	api.HandleFunc("/products/{id}/qr", r.getProductQR).Methods("GET")
	api.HandleFunc("/products/{id}/image", r.getProductImage).Methods("GET")
	api.HandleFunc("/products/{id}/delete-request", r.requestDelete).Methods("POST")
	api.HandleFunc("/products/{id}", r.deleteProduct).Methods("DELETE")

	api.HandleFunc("/labels", r.generateLabels).Methods("GET")

	if d.Hub != nil {
		r.HandleFunc("/ws", r.serveWs)
	}
	if d.Media != nil {
		prefix := blob.MountPath(d.MediaPrefix)
		r.PathPrefix(prefix + "/").Handler(d.Media).Methods("GET", "HEAD")
	}

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "running",
		"build":    buildinfo.Current(time.Now()),
		"idScheme": r.catalog.Scheme(),
		"decoders": r.strategies,
	})
}

func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	websocket.ServeWs(r.hub, w, req)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
