/*
[AI GENERATED - GOVERNANCE PROTOCOL]
──────────────────────────────────────────────────────────────
Model:       Claude Opus 4.6
Tier:        L3
Logic:       File routes over the S3 bridge: upload streams a
             multipart form part straight into s3bridge.UploadJSONL;
             retrieve/content read back through s3bridge's metadata
             and passthrough-transform readers. List and delete have
             no Bedrock/S3 analogue for "files scoped to this
             tenant" — spec.md §4.8 calls these out by name as
             operations that must fail deterministically rather than
             attempt an upstream call that was never going to
             succeed.
Root Cause:  S3 has no concept of an OpenAI-style file catalog or a
             bucket-wide delete-by-id; inventing one would silently
             imply functionality this core doesn't have.
Context:     Mounted under /v1/files in router.go.
Suitability: L3.
──────────────────────────────────────────────────────────────
*/
package httpapi

import (
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AlfredDev/alfred-bedrock-core/internal/errmap"
	"github.com/AlfredDev/alfred-bedrock-core/internal/oprouter"
	"github.com/AlfredDev/alfred-bedrock-core/internal/schema"
)

// UploadFile handles POST /v1/files, a multipart form upload.
func (s *Server) UploadFile(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	if target.S3ObjectKey == "" {
		writeError(w, target.Provider, errmap.Validation("missing %sAws-S3-Object-Key header", "X-Alfred-"))
		return
	}
	if target.FilePurpose == "" {
		writeError(w, target.Provider, errmap.Validation("missing %sFile-Purpose header", "X-Alfred-"))
		return
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || len(mediaType) < 10 || mediaType[:10] != "multipart/" {
		writeError(w, target.Provider, errmap.Validation("expected multipart/form-data body"))
		return
	}
	boundary, ok := params["boundary"]
	if !ok {
		writeError(w, target.Provider, errmap.Validation("missing multipart boundary"))
		return
	}

	reader := multipart.NewReader(r.Body, boundary)
	var filePart *multipart.Part
	for {
		part, err := reader.NextPart()
		if err != nil {
			break
		}
		if part.FormName() == "file" {
			filePart = part
			break
		}
	}
	if filePart == nil {
		writeError(w, target.Provider, errmap.Validation("multipart form has no \"file\" part"))
		return
	}
	defer filePart.Close()

	s3c, err := s.s3Client(r, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}

	file, err := s3c.UploadJSONL(r.Context(), target.S3ObjectKey, filePart.FileName(), filePart,
		schema.FilePurpose(target.FilePurpose), string(target.ModelType), target.BedrockModel)
	if err != nil {
		writeError(w, target.Provider, errmap.Validation("%v", err))
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// GetFile handles GET /v1/files/{id}, synthesizing metadata from S3
// object attributes.
func (s *Server) GetFile(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	key := chi.URLParam(r, "id")
	if target.S3ObjectKey != "" {
		key = target.S3ObjectKey
	}
	s3c, err := s.s3Client(r, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	file, err := s3c.RetrieveMetadata(r.Context(), key)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

// GetFileContent handles GET /v1/files/{id}/content, streaming the
// object body with batch-output rows rewritten to canonical shape.
func (s *Server) GetFileContent(w http.ResponseWriter, r *http.Request) {
	target, err := oprouter.ResolveTarget(r)
	if err != nil {
		writeError(w, "", err)
		return
	}
	key := chi.URLParam(r, "id")
	if target.S3ObjectKey != "" {
		key = target.S3ObjectKey
	}
	s3c, err := s.s3Client(r, target)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	body, err := s3c.RetrieveContent(r.Context(), key, target.BedrockModel)
	if err != nil {
		writeError(w, target.Provider, err)
		return
	}
	defer body.Close()
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	streamCopy(w, body)
}

// ListFiles handles GET /v1/files. Bedrock/S3 expose no tenant-scoped
// file catalog to list against, so this fails deterministically per
// spec.md §4.8 rather than attempting an upstream call.
func (s *Server) ListFiles(w http.ResponseWriter, r *http.Request) {
	target, _ := oprouter.ResolveTarget(r)
	writeError(w, target.Provider, errmap.Unsupported("bedrock", "listFiles"))
}

// DeleteFile handles DELETE /v1/files/{id}. Same reasoning as ListFiles.
func (s *Server) DeleteFile(w http.ResponseWriter, r *http.Request) {
	target, _ := oprouter.ResolveTarget(r)
	writeError(w, target.Provider, errmap.Unsupported("bedrock", "deleteFile"))
}
