package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"agri-api/internal/domain"
	"agri-api/internal/interfaces/httpserver/middlewares"
	"agri-api/internal/interfaces/httpserver/responses"
	"agri-api/internal/utils/platformerrors"
)

// principalOrAbort returns the verified caller or writes a 401.
func principalOrAbort(c *gin.Context) (domain.Principal, bool) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "auth-unauthorized")
		return domain.Principal{}, false
	}
	return principal, true
}

// queryLimit parses ?limit=. A missing value yields 0 so services apply
// their own default.
func queryLimit(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "limit must be an integer", "limit-invalid")
		return 0, false
	}
	return limit, true
}

func bindJSON(c *gin.Context, dst any, code string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid request body: "+err.Error(), code)
		return false
	}
	return true
}

// queryResolved parses ?resolved=. A missing value matches both states.
func queryResolved(c *gin.Context) (*bool, bool) {
	raw := strings.TrimSpace(c.Query("resolved"))
	if raw == "" {
		return nil, true
	}
	resolved, err := strconv.ParseBool(raw)
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "resolved must be true or false", "resolved-invalid")
		return nil, false
	}
	return &resolved, true
}
