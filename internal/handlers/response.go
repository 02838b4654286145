package handlers

import (
	"net/http"

	"github.com/anonto42/acebook/backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TokenHeader carries the reissued session token on every authenticated
// response, including those whose body is a bare array.
const TokenHeader = "X-Auth-Token"

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	IssueLogin(userID primitive.ObjectID) (string, error)
	IssueRefresh(userID primitive.ObjectID) (string, error)
}

// refreshToken reissues the requester's token and sets the response header.
func refreshToken(c echo.Context, issuer TokenIssuer, userID primitive.ObjectID) (string, error) {
	token, err := issuer.IssueRefresh(userID)
	if err != nil {
		return "", internalError(err)
	}
	c.Response().Header().Set(TokenHeader, token)
	return token, nil
}

func requesterID(c echo.Context) (primitive.ObjectID, error) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return primitive.NilObjectID, middleware.ErrAuth
	}
	return userID, nil
}

// objectIDParam parses a path parameter, answering 400 with msg when malformed.
func objectIDParam(c echo.Context, name, msg string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	return id, nil
}

// internalError hides the cause from the client; the router logs it.
func internalError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}
