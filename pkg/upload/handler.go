package upload

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler accepts a multipart POST with a "pfp" field, saves it to the
// store, and returns {"pfp_url": url}.
func Handler(store Store, config *Config) http.Handler {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = DefaultConfig().MaxFileSize
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		// Cap the body before parsing; a runaway upload should fail
		// fast, not buffer.
		r.Body = http.MaxBytesReader(w, r.Body, config.MaxFileSize)

		if err := r.ParseMultipartForm(config.MaxFileSize); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusBadRequest, "failed to parse form")
			return
		}

		file, header, err := r.FormFile("pfp")
		if err != nil {
			writeError(w, http.StatusBadRequest, "no file uploaded")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !config.Allowed(contentType) {
			writeError(w, http.StatusUnsupportedMediaType, "unsupported content type")
			return
		}

		url, err := store.Save(r.Context(), header.Filename, contentType, header.Size, file)
		if err != nil {
			if errors.Is(err, ErrTooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to upload profile picture")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"pfp_url": url})
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
