package cors

import "net/http"

const (
	allowHeaders = "authorization, x-client-info, apikey, content-type"
	allowMethods = "GET, POST, PATCH, PUT, DELETE, OPTIONS"
)

// Handler разрешает запросы с любых источников и отвечает на preflight пустым 200
func Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
