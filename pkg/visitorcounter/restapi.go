package visitorcounter

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/function61/gokit/httputils"
	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-visitorcounter/pkg/visitorcountertypes"
)

// messages exposed to the browser. internal error details go only to our logs.
const (
	errMsgMissingVisitorIp = "Missing visitor IP"
	errMsgInternal         = "Internal Server Error"
)

// Visitor counter endpoint. GET on any path counts a visit and responds with the count.
func NewRestApi(counter *Counter, allowOrigin string, logger *log.Logger) http.Handler {
	logl := logex.Levels(logger)

	mux := httputils.NewMethodMux()

	mux.GET.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		noCacheHeaders(w)

		result, err := visit(r, counter)
		if err != nil {
			if errors.Is(err, ErrMissingVisitorIp) {
				handleJsonOutput(w, http.StatusBadRequest, visitorcountertypes.NewErrorResponse(
					errMsgMissingVisitorIp))
				return
			}

			logl.Error.Printf("visit: %v", err)

			handleJsonOutput(w, http.StatusInternalServerError, visitorcountertypes.NewErrorResponse(
				errMsgInternal))
			return
		}

		handleJsonOutput(w, http.StatusOK, visitorcountertypes.CountResponse{
			Count: result.Count,
		})
	})

	return corsHeaders(allowOrigin, mux)
}

// Stand-in for NewRestApi when we cannot build a counter (e.g. missing config). Keeps the CORS
// headers and the JSON error body so the browser can still read why it failed.
func NewMisconfiguredRestApi(allowOrigin string) http.Handler {
	return corsHeaders(allowOrigin, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		noCacheHeaders(w)

		handleJsonOutput(w, http.StatusInternalServerError, visitorcountertypes.NewErrorResponse(
			errMsgInternal))
	}))
}

func visit(r *http.Request, counter *Counter) (*VisitResult, error) {
	ip, err := VisitorIp(r)
	if err != nil {
		return nil, err
	}

	return counter.Visit(r.Context(), ip)
}

// sets CORS headers on every response (errors too, so browsers can read error bodies) and
// answers preflight requests
func corsHeaders(allowOrigin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handleJsonOutput(w http.ResponseWriter, statusCode int, output interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(output); err != nil {
		panic(err)
	}
}

func noCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, must-revalidate")
}
