package api

import "net/http"

// corsMiddleware stamps the fixed cross-origin header set on every
// response and short-circuits OPTIONS preflight requests with a 200
// acknowledgement, without any body processing.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")

		if r.Method == http.MethodOptions {
			RespondWithJSON(w, http.StatusOK, map[string]string{"message": "CORS preflight"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
