package app

import (
	"net/http"
	"strings"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/gonglijing/shellydash/internal/config"
	"github.com/gonglijing/shellydash/internal/handlers"
	"github.com/gonglijing/shellydash/internal/logger"
)

func buildRouter(h *handlers.Handler) *mux.Router {
	r := mux.NewRouter()
	registerAPIRoutes(r, h)
	return r
}

// buildHandlerChain 组装中间件：日志 → gzip → CORS
func buildHandlerChain(cfg *config.Config, router *mux.Router) http.Handler {
	var handler http.Handler = router
	handler = requestLoggingMiddleware(handler)
	handler = gorillahandlers.CompressHandler(handler)

	opts := []gorillahandlers.CORSOption{
		gorillahandlers.AllowedOrigins(allowedOrigins(cfg)),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	}
	return gorillahandlers.CORS(opts...)(handler)
}

func allowedOrigins(cfg *config.Config) []string {
	var origins []string
	for _, origin := range strings.Split(cfg.AllowedOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %d %v", r.Method, r.URL.RequestURI(), rw.statusCode, rw.bytes, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}
