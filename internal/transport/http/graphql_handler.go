package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatql-server/internal/graph"
)

// GraphQLRequest is the standard GraphQL-over-HTTP request body.
type GraphQLRequest struct {
	Query         string                 `json:"query" binding:"required"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// GraphQLHandler executes queries and mutations and hands WebSocket
// upgrades to the subscription transport.
type GraphQLHandler struct {
	schema *graphql.Schema
	ws     http.Handler
	log    *zerolog.Logger
}

// NewGraphQLHandler creates a new GraphQL handler instance.
func NewGraphQLHandler(schema *graphql.Schema, ws http.Handler, logger *zerolog.Logger) *GraphQLHandler {
	return &GraphQLHandler{
		schema: schema,
		ws:     ws,
		log:    logger,
	}
}

// Post executes a JSON encoded request.
// POST /graphql
func (h *GraphQLHandler) Post(c *gin.Context) {
	var req GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid graphql request")
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "invalid request body"))
		return
	}
	h.execute(c, req)
}

// Get executes a request encoded in the query string, or upgrades to the
// subscription transport.
// GET /graphql
func (h *GraphQLHandler) Get(c *gin.Context) {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		// gin's writer refuses to hijack once the 101 header is recorded.
		var w http.ResponseWriter = c.Writer
		if u, ok := c.Writer.(interface{ Unwrap() http.ResponseWriter }); ok {
			w = u.Unwrap()
		}
		h.ws.ServeHTTP(w, c.Request)
		return
	}

	req := GraphQLRequest{
		Query:         c.Query("query"),
		OperationName: c.Query("operationName"),
	}
	if req.Query == "" {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "missing query"))
		return
	}
	if raw := c.Query("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("bad_request", "invalid variables"))
			return
		}
	}

	// Only queries may run over GET.
	resp := h.exec(graph.WithReadOnly(c.Request.Context()), req)
	if hasErrorCode(resp, graph.ErrCodeMethodNotAllowed) {
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, errorResponse(graph.ErrCodeMethodNotAllowed, "mutations must use POST"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GraphQLHandler) execute(c *gin.Context, req GraphQLRequest) {
	c.JSON(http.StatusOK, h.exec(c.Request.Context(), req))
}

func (h *GraphQLHandler) exec(ctx context.Context, req GraphQLRequest) *graphql.Response {
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	if len(resp.Errors) > 0 {
		h.log.Debug().
			Str("operation", req.OperationName).
			Int("error_count", len(resp.Errors)).
			Str("first_error", resp.Errors[0].Message).
			Msg("graphql request returned errors")
	}
	return resp
}

func hasErrorCode(resp *graphql.Response, code string) bool {
	for _, e := range resp.Errors {
		if e.Extensions["code"] == code {
			return true
		}
	}
	return false
}
