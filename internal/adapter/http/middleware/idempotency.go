package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 255
	idempotencyClaimTTL  = time.Minute
	idempotencyIOTimeout = 2 * time.Second
)

type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// captureWriter tees the response body so it can be stored after the handler runs.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key and
// rejects a duplicate that arrives while the first is still running. Requests
// without the header pass through. Keys are scoped to the caller and path.
func Idempotency(cache ports.IdempotencyCache, ttl time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			abort(c, apperror.Validation("Idempotency-Key is too long"))
			return
		}
		scoped := extractIdentifier(c) + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		ctx, cancel := context.WithTimeout(c.Request.Context(), idempotencyIOTimeout)
		cached, err := cache.Get(ctx, scoped)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("idempotency lookup failed, processing without replay protection")
			c.Next()
			return
		}
		if cached != nil {
			replay(c, cached, log)
			return
		}

		ctx, cancel = context.WithTimeout(c.Request.Context(), idempotencyIOTimeout)
		claimed, err := cache.Reserve(ctx, scoped, idempotencyClaimTTL)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("idempotency reservation failed, processing without replay protection")
			c.Next()
			return
		}
		if !claimed {
			abort(c, apperror.ErrIdempotencyConflict())
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		bg, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), idempotencyIOTimeout)
		defer cancel()

		if status := w.Status(); status < http.StatusInternalServerError {
			payload, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			})
			if err == nil {
				err = cache.Set(bg, scoped, payload, ttl)
			}
			if err != nil {
				log.Warn().Err(err).Msg("failed to store idempotent response")
			}
		}
		if err := cache.Release(bg, scoped); err != nil {
			log.Warn().Err(err).Msg("failed to release idempotency claim")
		}
	}
}

func replay(c *gin.Context, cached []byte, log zerolog.Logger) {
	var stored storedResponse
	if err := json.Unmarshal(cached, &stored); err != nil {
		log.Warn().Err(err).Msg("failed to decode stored idempotent response")
		abort(c, apperror.ErrIdempotencyConflict())
		return
	}
	c.Header(HeaderReplayed, "true")
	c.Data(stored.Status, stored.ContentType, stored.Body)
	c.Abort()
}
