package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valog/shopbot/internal/pkg/signature"
)

// SignatureHeader carries the provider's HMAC over the raw body.
const SignatureHeader = "X-Payment-Signature"

// VerifySignature authenticates webhook deliveries before any payload
// parsing. Rejected requests never reach the handler or the event
// ledger. The body is restored for downstream binding.
func VerifySignature(verifier signature.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if err := verifier.Verify(body, c.GetHeader(SignatureHeader)); err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}
