// Package http implements the HTTP handlers of the poll dashboard API.
//
// Handlers are thin: they bind and validate query parameters, call the
// poll service and render JSON with go-chi/render. Every error goes through
// errors.ErrorHandler and is answered as an RFC 7807 problem:
//
//	{
//	    "type": "/errors/data/unknown-source",
//	    "title": "Unknown Source",
//	    "status": 404,
//	    "detail": "source not found: \"XYZ\"",
//	    "instance": "/api/polls/sources/XYZ/ranking"
//	}
//
// Routes:
//
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /api/polls/status
//	POST /api/polls/refresh
//	GET  /api/polls/sources
//	GET  /api/polls/candidates
//	GET  /api/polls/sources/{source}/ranking
//	GET  /api/polls/sources/{source}/evolution?candidates=a,b
//	GET  /api/polls/comparison?candidates=a,b
//	GET  /api/polls/export/{view}.{format}?source=...&candidates=...
package http
