// internal/handler/handler.go
package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/robustlab/smoothing-service/internal/cache"
	"github.com/robustlab/smoothing-service/internal/metrics"
	"github.com/robustlab/smoothing-service/internal/middleware"
	"github.com/robustlab/smoothing-service/internal/smoothing"
)

// certificationTTL bounds how long cached certification results live.
const certificationTTL = 24 * time.Hour

// Handler serves the smoothing API. The cache is optional; when nil,
// certifications are always recomputed.
type Handler struct {
	smoother *smoothing.Smoother
	cache    *cache.Cache
}

// New creates a new Handler around the given smoother and optional cache.
func New(smoother *smoothing.Smoother, cacheClient *cache.Cache) *Handler {
	return &Handler{
		smoother: smoother,
		cache:    cacheClient,
	}
}

// Register mounts the API routes on the given router.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/predict", h.Predict)
	v1.POST("/certify", h.Certify)
}

// PredictRequest is the body of POST /v1/predict.
type PredictRequest struct {
	Inputs    [][]float32 `json:"inputs" binding:"required,min=1"`
	BatchSize int         `json:"batch_size"`
	Abstain   *bool       `json:"abstain"`
}

// PredictResponse carries one vector per input: one-hot at the winning
// class, or all zeros for an abstained input.
type PredictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Abstained   int         `json:"abstained"`
}

// CertifyRequest is the body of POST /v1/certify.
type CertifyRequest struct {
	Inputs [][]float32 `json:"inputs" binding:"required,min=1"`
	N      int         `json:"n" binding:"required,gt=0"`
}

// CertifyResponse carries parallel arrays, one entry per input. A class of
// -1 pairs with a radius of 0 and means no class could be certified.
type CertifyResponse struct {
	Classes []int     `json:"classes"`
	Radii   []float64 `json:"radii"`
}

// Predict handles smoothed prediction requests
func (h *Handler) Predict(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = "unknown"
	}

	if h.smoother == nil {
		abortWithError(c, http.StatusServiceUnavailable, "smoother not initialized")
		return
	}

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validateInputs(req.Inputs); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.BatchSize < 0 {
		abortWithError(c, http.StatusBadRequest, "batch_size must not be negative")
		return
	}

	// Abstention is on unless the caller disables it
	isAbstain := true
	if req.Abstain != nil {
		isAbstain = *req.Abstain
	}

	metrics.RecordBatchSize(len(req.Inputs))
	metrics.RecordSampleCount(h.smoother.Config().SampleSize)

	start := time.Now()
	preds, abstained, err := h.smoother.Predict(req.Inputs, req.BatchSize, isAbstain)
	duration := time.Since(start)
	metrics.RecordSmoothingLatency(duration.Seconds())

	if err != nil {
		log.Printf("[%s] Predict error: %v", requestID, err)
		abortWithError(c, statusFromError(err), err.Error())
		return
	}
	metrics.AddAbstentions(abstained)

	log.Printf("[%s] Predict: batch_size=%d, abstained=%d, smoothing_ms=%.2f",
		requestID, len(req.Inputs), abstained, float64(duration.Microseconds())/1000.0)

	c.JSON(http.StatusOK, PredictResponse{
		Predictions: preds,
		Abstained:   abstained,
	})
}

// Certify handles certified-radius requests
func (h *Handler) Certify(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = "unknown"
	}

	if h.smoother == nil {
		abortWithError(c, http.StatusServiceUnavailable, "smoother not initialized")
		return
	}

	var req CertifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validateInputs(req.Inputs); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	metrics.RecordBatchSize(len(req.Inputs))
	metrics.RecordSampleCount(req.N)

	cfg := h.smoother.Config()
	classes := make([]int, len(req.Inputs))
	radii := make([]float64, len(req.Inputs))

	// Serve from the cache where possible; certify the rest in one pass
	var missing [][]float32
	var missingIdx []int
	var keys []string
	for i, xi := range req.Inputs {
		key := cache.Key(xi, req.N, cfg.SampleSize, cfg.Scale, cfg.Alpha)
		keys = append(keys, key)
		if h.cache != nil {
			res, ok, err := h.cache.GetCertification(key)
			if err != nil {
				log.Printf("[%s] Cache read failed: %v (recomputing)", requestID, err)
			} else if ok {
				classes[i] = res.Class
				radii[i] = res.Radius
				continue
			}
		}
		missing = append(missing, xi)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) > 0 {
		start := time.Now()
		missClasses, missRadii, err := h.smoother.Certify(missing, req.N)
		duration := time.Since(start)
		metrics.RecordSmoothingLatency(duration.Seconds())

		if err != nil {
			log.Printf("[%s] Certify error: %v", requestID, err)
			abortWithError(c, statusFromError(err), err.Error())
			return
		}

		for j, i := range missingIdx {
			classes[i] = missClasses[j]
			radii[i] = missRadii[j]
			if missClasses[j] != smoothing.AbstainClass {
				metrics.ObserveCertifiedRadius(missRadii[j])
			}
			if h.cache != nil {
				res := cache.Result{Class: missClasses[j], Radius: missRadii[j]}
				if err := h.cache.SetCertification(keys[i], res, certificationTTL); err != nil {
					log.Printf("[%s] Cache write failed: %v", requestID, err)
				}
			}
		}

		log.Printf("[%s] Certify: batch_size=%d, cached=%d, n=%d, smoothing_ms=%.2f",
			requestID, len(req.Inputs), len(req.Inputs)-len(missing), req.N,
			float64(duration.Microseconds())/1000.0)
	} else {
		log.Printf("[%s] Certify: batch_size=%d served entirely from cache", requestID, len(req.Inputs))
	}

	c.JSON(http.StatusOK, CertifyResponse{
		Classes: classes,
		Radii:   radii,
	})
}

// validateInputs rejects ragged or empty input rows before they reach the
// classifier.
func validateInputs(inputs [][]float32) error {
	for i, row := range inputs {
		if len(row) == 0 {
			return fmt.Errorf("input %d is empty", i)
		}
		if len(row) != len(inputs[0]) {
			return fmt.Errorf("input %d has length %d, want %d", i, len(row), len(inputs[0]))
		}
	}
	return nil
}
