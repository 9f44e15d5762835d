package api

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/docdailey/quantum-entropy-api/internal/transform"
)

const (
	minBytesCount = 1
	maxBytesCount = 65536

	minIntCount = 1
	maxIntCount = 1000
)

// readEntropy draws n raw bytes from the ring buffer, falling back to a
// direct (mutex-serialized) device read when the buffer can't satisfy the
// request, so a burst that outpaces the refill task degrades to slower
// reads instead of failing outright.
func (s *Server) readEntropy(n int) ([]byte, error) {
	if raw, ok := s.buf.Read(n); ok {
		return raw, nil
	}

	s.devMu.Lock()
	defer s.devMu.Unlock()
	return s.dev.Read(n)
}

func (s *Server) handleHealth(c *gin.Context) {
	s.devMu.Lock()
	healthy := s.dev.HealthCheck()
	s.devMu.Unlock()

	status := "healthy"
	deviceState := "connected"
	code := http.StatusOK
	if !healthy {
		status = "unhealthy"
		deviceState = "disconnected"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":           status,
		"device":           deviceState,
		"buffer_available": s.buf.Available(),
	})
}

func (s *Server) handleRandomBytes(c *gin.Context) {
	count, err := strconv.Atoi(c.DefaultQuery("count", "32"))
	if err != nil || count < minBytesCount || count > maxBytesCount {
		c.JSON(http.StatusOK, fail("Count must be between 1 and 65536"))
		return
	}

	format := c.DefaultQuery("format", "hex")
	correction := c.DefaultQuery("correction", "none")

	// Draw extra raw bytes when debiasing is requested: Von Neumann
	// discards roughly three out of every four bits, so asking for exactly
	// count bytes of raw input would almost always under-produce.
	drawLen := count
	if correction == "von_neumann" {
		drawLen = count * 8
	}

	raw, err := s.readEntropy(drawLen)
	if err != nil {
		c.JSON(http.StatusOK, fail(fmt.Sprintf("Device error: %v", err)))
		return
	}

	corrected, err := transform.ApplyCorrection(raw, correction, count)
	if err != nil {
		c.JSON(http.StatusOK, fail(err.Error()))
		return
	}
	corrected = corrected[:count]

	var encoded string
	switch format {
	case "hex":
		encoded = hex.EncodeToString(corrected)
	case "base64":
		encoded = base64.StdEncoding.EncodeToString(corrected)
	default:
		c.JSON(http.StatusOK, fail("Invalid format"))
		return
	}

	c.JSON(http.StatusOK, success(gin.H{
		"bytes":      encoded,
		"format":     format,
		"count":      count,
		"correction": correction,
	}))
}

func (s *Server) handleRandomInt(c *gin.Context) {
	minStr, hasMin := c.GetQuery("min")
	maxStr, hasMax := c.GetQuery("max")
	if !hasMin || !hasMax {
		c.JSON(http.StatusOK, fail("min and max query parameters are required"))
		return
	}

	min, errMin := strconv.ParseInt(minStr, 10, 64)
	max, errMax := strconv.ParseInt(maxStr, 10, 64)
	if errMin != nil || errMax != nil {
		c.JSON(http.StatusOK, fail("min and max must be integers"))
		return
	}
	if min >= max {
		c.JSON(http.StatusOK, fail("min must be less than max"))
		return
	}

	count, err := strconv.Atoi(c.DefaultQuery("count", "1"))
	if err != nil || count < minIntCount || count > maxIntCount {
		c.JSON(http.StatusOK, fail("count must be between 1 and 1000"))
		return
	}

	rangeVal := uint64(max-min) + 1
	width := transform.ByteWidth(rangeVal)
	need := transform.RawBytesNeeded(count, width)

	raw, err := s.readEntropy(need)
	if err != nil {
		c.JSON(http.StatusOK, fail(fmt.Sprintf("Device error: %v", err)))
		return
	}

	ints, err := transform.UniformIntegers(raw, min, max, count)
	if err != nil {
		c.JSON(http.StatusOK, fail(err.Error()))
		return
	}

	c.JSON(http.StatusOK, success(gin.H{
		"integers": ints,
		"min":      min,
		"max":      max,
		"count":    count,
	}))
}

func (s *Server) handleDeviceInfo(c *gin.Context) {
	info := s.dev.Info()
	c.JSON(http.StatusOK, success(gin.H{
		"device": gin.H{
			"product": info.Product,
			"serial":  info.Serial,
			"version": info.Version,
		},
		"buffer_size":      s.buf.Capacity(),
		"buffer_available": s.buf.Available(),
	}))
}

func (s *Server) handleMetrics(c *gin.Context) {
	cpuPercent := 0.0
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		cpuPercent = pcts[0]
	}
	memPercent := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memPercent = vm.UsedPercent
	}

	capacity := s.buf.Capacity()
	available := s.buf.Available()
	fillPct := 0.0
	if capacity > 0 {
		fillPct = float64(available) / float64(capacity) * 100
	}

	c.JSON(http.StatusOK, success(gin.H{
		"refill_running":            s.refill.Running(),
		"refill_consecutive_errors": s.refill.ConsecutiveErrors(),
		"buffer_capacity":           capacity,
		"buffer_available":          available,
		"buffer_fill_percent":       fillPct,
		"host_cpu_percent":          cpuPercent,
		"host_mem_percent":          memPercent,
	}))
}
