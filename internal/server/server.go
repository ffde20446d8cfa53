package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/nutriscan/nutriscan/internal/models"
	"github.com/nutriscan/nutriscan/internal/offclient"
	"github.com/nutriscan/nutriscan/internal/scanner"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, this should be more restrictive
	},
}

// ProductResolver is the slice of the resolver the HTTP surface needs.
type ProductResolver interface {
	Resolve(ctx context.Context, barcode string, domain models.Domain) (*models.Product, error)
}

// SessionFactory builds one scan session per websocket client. Nil when
// server-side scanning is disabled (browser clients decode on-device and
// only use the resolve path).
type SessionFactory func() *scanner.Session

type Server struct {
	resolver ProductResolver
	sessions SessionFactory
	clients  sync.Map
	debug    bool
}

func New(resolver ProductResolver, sessions SessionFactory, debug bool) *Server {
	if debug {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Debug logging enabled")
	}
	return &Server{
		resolver: resolver,
		sessions: sessions,
		debug:    debug,
	}
}

// Router assembles the HTTP surface: product lookup, the websocket scan
// channel, health, and the static UI bundle.
func (s *Server) Router(staticDir string) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/product/{barcode}", s.handleProduct).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.handleWebSocket)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	return r
}

func (s *Server) Start(port, staticDir string) error {
	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           s.Router(staticDir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

// handleProduct serves GET /api/product/{barcode}?type=food|pet|cosmetic.
// With per=package the nutrients scaled to the whole package are included
// alongside the per-100g values.
func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	barcode := mux.Vars(r)["barcode"]

	domain, err := models.ParseDomain(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := s.resolver.Resolve(r.Context(), barcode, domain)
	if err != nil {
		var netErr *offclient.NetworkError
		switch {
		case errors.Is(err, offclient.ErrNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.As(err, &netErr):
			log.Printf("product fetch failed: %s/%s: %v", domain, barcode, err)
			writeError(w, http.StatusBadGateway, "Error fetching product data")
		default:
			log.Printf("product resolve error: %s/%s: %v", domain, barcode, err)
			writeError(w, http.StatusInternalServerError, "Error fetching product data")
		}
		return
	}

	if r.URL.Query().Get("per") == "package" {
		scaled, ok := product.PerPackage()
		if !ok {
			writeError(w, http.StatusUnprocessableEntity, "Package weight unavailable for this product")
			return
		}
		writeJSON(w, http.StatusOK, struct {
			*models.Product
			PerPackage models.Nutrients `json:"per_package"`
		}{product, scaled})
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// wsClient serializes writes; scan transitions arrive from the scanning
// goroutine while replies go out from the read loop.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) send(messageType string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := map[string]any{
		"type": messageType,
		"data": data,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Println("Error sending message:", err)
	}
}

func (c *wsClient) sendError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := map[string]any{
		"type":    "error",
		"message": message,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Println("Error sending error message:", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade failed:", err)
		return
	}
	defer conn.Close()

	client := &wsClient{conn: conn}

	// Store client connection
	clientID := uuid.New().String()
	s.clients.Store(clientID, client)
	defer s.clients.Delete(clientID)

	var session *scanner.Session
	if s.sessions != nil {
		session = s.sessions()
		session.SetListener(func(state scanner.State, message string) {
			client.send("scan_state", map[string]string{
				"state":   state.String(),
				"message": message,
			})
		})
		// Release the camera when the client goes away mid-scan.
		defer session.StopScanning()
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.debug {
				log.Println("Error reading message:", err)
			}
			break
		}

		// Parse message
		var msg struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Println("Error parsing message:", err)
			continue
		}

		s.handleWebSocketMessage(r.Context(), client, session, msg.Type, msg.Data)
	}
}

func (s *Server) handleWebSocketMessage(ctx context.Context, client *wsClient, session *scanner.Session, messageType string, data map[string]any) {
	switch messageType {
	case "start_scan":
		s.handleStartScan(client, session, data)
	case "stop_scan":
		if session != nil {
			session.StopScanning()
		}
	case "resolve":
		s.handleResolve(ctx, client, data)
	default:
		client.sendError("Unknown message type")
	}
}

func (s *Server) handleStartScan(client *wsClient, session *scanner.Session, data map[string]any) {
	if session == nil {
		client.sendError("Scanning is not available on this server")
		return
	}

	domainStr, _ := data["type"].(string)
	domain, err := models.ParseDomain(domainStr)
	if err != nil {
		client.sendError(err.Error())
		return
	}

	go func() {
		barcode, err := session.StartScanning(context.Background(), nil)
		if err != nil {
			if errors.Is(err, scanner.ErrScanInProgress) {
				client.sendError("A scan is already in progress")
				return
			}
			// Failures were already pushed as an error scan_state; an
			// intentional stop ends the attempt silently.
			if s.debug {
				log.Printf("scan ended without result: %v", err)
			}
			return
		}
		client.send("scan_result", map[string]string{
			"barcode": barcode,
			"type":    string(domain),
		})
	}()
}

func (s *Server) handleResolve(ctx context.Context, client *wsClient, data map[string]any) {
	barcode, _ := data["barcode"].(string)
	if barcode == "" {
		client.sendError("Missing barcode")
		return
	}

	domainStr, _ := data["type"].(string)
	domain, err := models.ParseDomain(domainStr)
	if err != nil {
		client.sendError(err.Error())
		return
	}

	product, err := s.resolver.Resolve(ctx, barcode, domain)
	if err != nil {
		if errors.Is(err, offclient.ErrNotFound) {
			client.sendError("Product not found")
			return
		}
		log.Printf("ws resolve failed: %s/%s: %v", domain, barcode, err)
		client.sendError("Error fetching product data")
		return
	}
	client.send("product", product)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("Error encoding response:", err)
	}
}
