// Package http implements HTTP request handlers for the salary dashboard
// service. It provides a thin layer between HTTP transport and business logic,
// keeping handlers focused solely on HTTP concerns.
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/validation-error",
//	    "title": "Validation Error",
//	    "status": 400,
//	    "detail": "remote_min must be between 0 and 100",
//	    "instance": "/api/data/summary"
//	}
//
// Handlers are tested using httptest with mocked service dependencies.
package http
