// Package items is a small self-contained demo service exposing an
// in-memory "items" resource over HTTP. It keeps no persistent state and
// performs no authentication.
package items

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alx-polly/polly/logger"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"go.uber.org/atomic"
)

// Item is one entry of the demo resource.
type Item struct {
	Id          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateItemForm is the POST /items request body.
type CreateItemForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server serves GET /items and POST /items from an in-memory slice.
type Server struct {
	port       int
	httpServer *http.Server

	mu     sync.RWMutex
	items  []Item
	nextId atomic.Int64
}

// NewServer creates a demo server pre-seeded with two sample items.
func NewServer(port int) *Server {
	s := &Server{port: port}
	s.nextId.Store(1)
	s.addItem("Sample Item 1", "This is a sample item")
	s.addItem("Sample Item 2", "Another sample item")
	return s
}

func (s *Server) addItem(name, description string) Item {
	item := Item{
		Id:          s.nextId.Inc() - 1,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
	return item
}

// Handler returns the configured router, exposed separately for tests.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/items", s.listItems)
	router.POST("/items", s.createItem)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})

	return router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("items demo service listening on port %d", s.port)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("items demo service:", err)
		}
	}()
	return nil
}

// Stop stops the HTTP server.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Close()
}

func (s *Server) listItems(c *gin.Context) {
	s.mu.RLock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

func (s *Server) createItem(c *gin.Context) {
	var form CreateItemForm
	if err := json.NewDecoder(c.Request.Body).Decode(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid JSON body"})
		return
	}

	if form.Name == "" || form.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Name and description are required",
		})
		return
	}

	item := s.addItem(form.Name, form.Description)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
		"message": "Item created successfully",
	})
}
