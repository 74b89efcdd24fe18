package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadedImage est le résultat d'un upload
type UploadedImage struct {
	URL      string
	PublicID string
}

// CloudinaryService handles all Cloudinary operations
type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryService creates a new Cloudinary service instance
func NewCloudinaryService(cfg config.CloudinaryConfig) (*CloudinaryService, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	folder := cfg.Folder
	if folder == "" {
		folder = "pikmin"
	}
	return &CloudinaryService{cld: cld, folder: folder}, nil
}

func (s *CloudinaryService) upload(ctx context.Context, file io.Reader, sub, publicID, transformation string) (*UploadedImage, error) {
	overwrite := true
	res, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         s.folder + "/" + sub,
		Overwrite:      &overwrite,
		ResourceType:   "image",
		Transformation: transformation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary rejected %s: %s", publicID, res.Error.Message)
	}
	return &UploadedImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

// UploadCoordinateImage stocke l'image d'un post. Le filigrane éventuel est appliqué
// à la livraison : l'URL retournée contient la transformation, l'original reste intact.
func (s *CloudinaryService) UploadCoordinateImage(ctx context.Context, file io.Reader, coordinateID string, position int, watermark string) (*UploadedImage, error) {
	img, err := s.upload(ctx, file, "coordinates", fmt.Sprintf("%s_%d", coordinateID, position), "c_limit,w_1600,h_1600")
	if err != nil {
		return nil, err
	}
	if watermark != "" {
		img.URL = s.WatermarkedURL(img.PublicID, watermark)
	}
	return img, nil
}

// UploadCommentPhoto uploads a comment photo
func (s *CloudinaryService) UploadCommentPhoto(ctx context.Context, file io.Reader, commentID string) (*UploadedImage, error) {
	return s.upload(ctx, file, "comments", commentID, "c_limit,w_1200,h_1200")
}

// UploadJournalImage uploads a farming journal image
func (s *CloudinaryService) UploadJournalImage(ctx context.Context, file io.Reader, journalID string) (*UploadedImage, error) {
	return s.upload(ctx, file, "journals", journalID, "c_limit,w_1600,h_1600")
}

// UploadProfileImage recadre sur le visage, comme un avatar.
// L'URL retournée est la version optimisée (format et qualité auto).
func (s *CloudinaryService) UploadProfileImage(ctx context.Context, file io.Reader, userID string) (*UploadedImage, error) {
	img, err := s.upload(ctx, file, "profiles", userID, "c_fill,g_face,h_400,w_400")
	if err != nil {
		return nil, err
	}
	img.URL = s.GetOptimizedURL(img.PublicID, profileImageSize, profileImageSize)
	return img, nil
}

// DeleteImage deletes an image from Cloudinary by its public ID
func (s *CloudinaryService) DeleteImage(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: "image",
	})
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// WatermarkedURL ajoute un texte en bas à droite de l'image
func (s *CloudinaryService) WatermarkedURL(publicID, text string) string {
	return DeliveryURL(s.cld.Config.Cloud.CloudName, publicID, WatermarkTransformation(text))
}

const profileImageSize = 400

// GetOptimizedURL returns an optimized URL for an image with transformations
func (s *CloudinaryService) GetOptimizedURL(publicID string, width, height int) string {
	return DeliveryURL(s.cld.Config.Cloud.CloudName, publicID, fmt.Sprintf("c_fill,w_%d,h_%d,q_auto,f_auto", width, height))
}

// DeliveryURL construit l'URL de livraison d'une image transformée
func DeliveryURL(cloudName, publicID, transformation string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s/%s", cloudName, transformation, publicID)
}

// WatermarkTransformation retourne la couche texte du filigrane.
// Virgules et slashs doivent être doublement échappés dans une couche texte.
func WatermarkTransformation(text string) string {
	escaped := strings.NewReplacer("%2F", "%252F", "%2C", "%252C").Replace(url.PathEscape(text))
	return "l_text:Arial_36_bold:" + escaped + ",co_white,o_70,g_south_east,x_24,y_24/q_auto,f_auto"
}
