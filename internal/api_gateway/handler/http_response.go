package handler

import (
	"fmt"
	"net/http"

	"github.com/flight-booking-engine/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// Error codes that are not tied to a domain failure reason
const (
	codeBadRequest = "BAD_REQUEST"
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "CONFLICT"
	codeInternal   = "INTERNAL_SERVER_ERROR"
)

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo carries paging for list endpoints backed by the ledger projection
type MetaInfo struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
	TotalItems int `json:"total_items,omitempty"`
}

func NewResponse(data interface{}) *Response {
	return &Response{Data: data}
}

func NewErrorResponse(code, message string) *Response {
	return &Response{Error: &ErrorInfo{Code: code, Message: message}}
}

// NewPaginatedResponse rounds the page count up; an empty result has zero pages
func NewPaginatedResponse(data interface{}, page, perPage, totalItems int) *Response {
	totalPages := 0
	if perPage > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}

	resp := NewResponse(data)
	resp.Meta = &MetaInfo{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
	return resp
}

// respond stamps the request's correlation id onto the envelope
func respond(c *gin.Context, statusCode int, resp *Response) {
	resp.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, resp)
}

func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	respond(c, statusCode, NewResponse(data))
}

func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, NewErrorResponse(code, message))
}

func RespondWithPaginatedData(c *gin.Context, statusCode int, data interface{}, page, perPage, totalItems int) {
	respond(c, statusCode, NewPaginatedResponse(data, page, perPage, totalItems))
}

func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondAttachment streams a file download such as an e-ticket
func RespondAttachment(c *gin.Context, fileName, contentType string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", fileName))
	c.Data(http.StatusOK, contentType, content)
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, codeBadRequest, message)
}

func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, codeNotFound, message)
}

// RespondConflict is used when a request with the same idempotency key is still in flight
func RespondConflict(c *gin.Context, message string) {
	RespondWithError(c, http.StatusConflict, codeConflict, message)
}

func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, codeInternal, "An internal server error occurred")
}
