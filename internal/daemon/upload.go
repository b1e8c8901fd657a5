package daemon

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"caption/internal/api"
	"caption/internal/logging"
)

// allowedExtensions lists the video containers accepted for upload.
var allowedExtensions = map[string]struct{}{
	".mp4": {},
	".mov": {},
	".avi": {},
	".mkv": {},
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d MB limit", s.maxBytes>>20))
			return
		}
		s.writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedExtensions[ext]; !ok {
		s.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type %s; use mp4, mov, avi, or mkv", ext))
		return
	}

	id := uuid.NewString()
	savedPath := filepath.Join(s.daemon.cfg.Paths.UploadDir, id+"_"+name)
	if err := saveUpload(file, savedPath); err != nil {
		s.log().Error("failed to store upload", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	job, err := s.daemon.store.NewJob(r.Context(), id, name, savedPath)
	if err != nil {
		_ = os.Remove(savedPath)
		s.log().Error("failed to create job", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	s.log().Info("job submitted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("input_file", name))
	s.writeJSON(w, http.StatusCreated, api.SubmitResponse{Job: api.FromJob(job)})
}

func saveUpload(src io.Reader, dest string) error {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return err
	}
	return out.Close()
}

// sanitizeFilename strips any path components and reduces the name to a safe
// character set, preserving the extension.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" || strings.TrimSuffix(cleaned, filepath.Ext(cleaned)) == "" {
		return ""
	}
	return cleaned
}
