package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/utils"
)

const (
	maxFormMemory = 32 << 20
	maxPhotoSize  = 5 << 20
	maxImageSize  = 10 << 20
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// checkImage vérifie la taille et le type réel (sniffé) d'un fichier envoyé
func checkImage(fh *multipart.FileHeader, maxSize int64) error {
	if fh.Size > maxSize {
		return fmt.Errorf("image trop volumineuse (max %d Mo)", maxSize>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("lecture de l'image impossible: %w", err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("lecture de l'image impossible: %w", err)
	}
	if !allowedImageTypes[http.DetectContentType(head[:n])] {
		return errors.New("format non supporté (jpeg, png, webp)")
	}
	return nil
}

// formFiles retourne les fichiers d'un champ multipart
func formFiles(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[field]
}

// decodeOptional accepte un corps vide
func decodeOptional(r *http.Request, dest interface{}) error {
	if err := utils.DecodeJSON(r, dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
