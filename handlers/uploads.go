package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"santodinheiro/middleware"
	"santodinheiro/storage"
)

// blobStore serves user uploads. Set once at startup.
var blobStore storage.Provider

// SetStorageProvider configures the blob storage backend.
func SetStorageProvider(p storage.Provider) {
	blobStore = p
}

const maxUploadBytes = 10 << 20 // 10 MiB

// UploadFile stores a multipart file upload (receipts, statements) and
// returns its public URL.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	if blobStore == nil {
		http.Error(w, "Storage not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart request: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%s/%d-%s%s",
		userID,
		time.Now().Unix(),
		uuid.NewString()[:8],
		filepath.Ext(header.Filename),
	)

	result, err := blobStore.Upload(r.Context(), key, file)
	if err != nil {
		http.Error(w, "Upload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// DeleteFile removes a previously uploaded blob by its URL.
func DeleteFile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		http.Error(w, "Unauthorized: No user ID found", http.StatusUnauthorized)
		return
	}

	if blobStore == nil {
		http.Error(w, "Storage not configured", http.StatusServiceUnavailable)
		return
	}

	var request struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if request.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	if err := blobStore.Delete(r.Context(), request.URL); err != nil {
		http.Error(w, "Delete failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
