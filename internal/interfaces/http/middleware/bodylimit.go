package middleware

import (
	"errors"
	"net/http"

	"github.com/brewline/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

const bodyPolicyKey = "body_policy"

// BodyPolicy caps the request bodies of one route group and names the error
// reported when the cap is hit
type BodyPolicy struct {
	MaxBytes int64
	Code     string
	Message  string
}

// JSONBodyPolicy covers the cart, checkout and login payloads
func JSONBodyPolicy(maxBytes int64) BodyPolicy {
	return BodyPolicy{
		MaxBytes: maxBytes,
		Code:     dto.ErrCodeRequestTooLarge,
		Message:  "Request body exceeds maximum allowed size",
	}
}

// UploadBodyPolicy covers the admin routes, where multipart image uploads are
// the largest bodies
func UploadBodyPolicy(maxBytes int64) BodyPolicy {
	return BodyPolicy{
		MaxBytes: maxBytes,
		Code:     dto.ErrCodeUploadTooLarge,
		Message:  "Upload exceeds maximum allowed size",
	}
}

// BodyLimit rejects bodies declared larger than the policy allows and caps
// undeclared ones while they are read. A non-positive MaxBytes disables it.
func BodyLimit(policy BodyPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if policy.MaxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > policy.MaxBytes {
			rejectBody(c, policy)
			return
		}

		c.Set(bodyPolicyKey, policy)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, policy.MaxBytes)
		c.Next()
	}
}

// AbortIfBodyTooLarge answers with the route group's too-large error when err
// came from reading past the BodyLimit cap, and reports whether it did
func AbortIfBodyTooLarge(c *gin.Context, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return false
	}
	v, _ := c.Get(bodyPolicyKey)
	policy, ok := v.(BodyPolicy)
	if !ok {
		policy = JSONBodyPolicy(maxErr.Limit)
	}
	rejectBody(c, policy)
	return true
}

func rejectBody(c *gin.Context, policy BodyPolicy) {
	abortWithCode(c, http.StatusRequestEntityTooLarge, policy.Code, policy.Message)
}

// abortWithCode stops the chain with the standard error envelope
func abortWithCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
