package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docdailey/quantum-entropy-api/internal/device"
	"github.com/docdailey/quantum-entropy-api/internal/refill"
	"github.com/docdailey/quantum-entropy-api/internal/ring"
)

// qrngDevice is the subset of *device.Device the dispatcher needs; tests
// substitute a fake to exercise handlers without real USB hardware.
type qrngDevice interface {
	Read(n int) ([]byte, error)
	HealthCheck() bool
	Info() device.Info
}

// Server wires the device, ring buffer, and refill task into a gin router.
// It owns no goroutines itself; the caller starts the refill task and
// passes it in so /metrics can report on it.
type Server struct {
	dev    qrngDevice
	devMu  *sync.Mutex // shared with refill.Task's device reads
	buf    *ring.Buffer
	refill *refill.Task

	startedAt time.Time
}

// New constructs a Server. mu must be the same mutex passed to refill.New
// so device reads from the fallback path and the refill loop never race.
func New(dev *device.Device, mu *sync.Mutex, buf *ring.Buffer, task *refill.Task) *Server {
	return &Server{dev: dev, devMu: mu, buf: buf, refill: task, startedAt: time.Now()}
}

// newWithDevice builds a Server against an arbitrary qrngDevice, used by
// tests to avoid depending on real USB hardware.
func newWithDevice(dev qrngDevice, mu *sync.Mutex, buf *ring.Buffer, task *refill.Task) *Server {
	return &Server{dev: dev, devMu: mu, buf: buf, refill: task, startedAt: time.Now()}
}

// Router builds the gin engine with every route registered, ready to be
// handed to an http.Server.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.GET("", s.handleRoot)
		v1.GET("/", s.handleRoot)
		v1.GET("/health", s.handleHealth)
		v1.GET("/random/bytes", s.handleRandomBytes)
		v1.GET("/random/int", s.handleRandomInt)
		v1.GET("/device/info", s.handleDeviceInfo)
		v1.GET("/metrics", s.handleMetrics)
	}

	return router
}

// corsMiddleware allows any origin, matching the reference implementation's
// permissive CORS policy for a read-only public entropy API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, success(gin.H{
		"service": "quantum-entropy-api",
		"version": "1.0.0",
		"endpoints": []string{
			"/api/v1/health",
			"/api/v1/random/bytes",
			"/api/v1/random/int",
			"/api/v1/device/info",
			"/api/v1/metrics",
		},
	}))
}
