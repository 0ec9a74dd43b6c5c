package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"anara-skills/registrar/internal/constants"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/metrics"
	"anara-skills/registrar/internal/models/dtos"
	gormModels "anara-skills/registrar/internal/models/gorm"
	"anara-skills/registrar/internal/providers"

	"gorm.io/gorm"
)

var assetFolders = map[gormModels.AssetKind]string{
	gormModels.AssetSignature:  constants.FolderSignatures,
	gormModels.AssetLetterhead: constants.FolderLetterheads,
	gormModels.AssetDocument:   constants.FolderDocuments,
}

// AssetService stores admin managed files and mails letterheads.
type AssetService struct {
	db      *gorm.DB
	storage providers.DocumentStorage
	email   providers.EmailSender
	metrics *metrics.MetricsRegistry
}

func NewAssetService(db *gorm.DB, storage providers.DocumentStorage, email providers.EmailSender, m *metrics.MetricsRegistry) *AssetService {
	return &AssetService{db: db, storage: storage, email: email, metrics: m}
}

func parseKind(kind string) (gormModels.AssetKind, error) {
	k := gormModels.AssetKind(strings.ToLower(strings.TrimSpace(kind)))
	if !k.Valid() {
		return "", validationError(fmt.Sprintf("Unknown asset kind %q.", kind))
	}
	return k, nil
}

func (s *AssetService) Upload(ctx context.Context, kind, ownerID, subject string, file dtos.UploadedFile) (*gormModels.Asset, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, validationError("File is required.")
	}

	obj, err := s.storage.Upload(ctx, file.Data, assetFolders[k], file.Filename)
	if err != nil {
		return nil, dependencyError(CodeUploadFailed, "Failed to upload file.", err)
	}

	asset := &gormModels.Asset{
		Kind:     k,
		Name:     file.Filename,
		OwnerID:  ownerID,
		Subject:  strings.TrimSpace(subject),
		URL:      obj.URL,
		PublicID: obj.PublicID,
	}
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		s.discard(ctx, obj.PublicID)
		return nil, dependencyError(CodeStorageFailed, "failed to save asset", err)
	}

	logging.Info("Asset uploaded", "asset_id", asset.ID, "kind", k)
	return asset, nil
}

func (s *AssetService) List(ctx context.Context, kind string) ([]gormModels.Asset, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	var assets []gormModels.Asset
	if err := s.db.WithContext(ctx).Where("kind = ?", k).Order("created_at DESC").Find(&assets).Error; err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to list assets", err)
	}
	return assets, nil
}

func (s *AssetService) find(ctx context.Context, id string) (*gormModels.Asset, error) {
	var asset gormModels.Asset
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, CodeNotFound, "Asset not found")
	}
	if err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to load asset", err)
	}
	return &asset, nil
}

// Replace swaps the stored file behind an asset and deletes the old object.
func (s *AssetService) Replace(ctx context.Context, id, subject string, file dtos.UploadedFile) (*gormModels.Asset, error) {
	if len(file.Data) == 0 {
		return nil, validationError("File is required.")
	}
	asset, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	obj, err := s.storage.Upload(ctx, file.Data, assetFolders[asset.Kind], file.Filename)
	if err != nil {
		return nil, dependencyError(CodeUploadFailed, "Failed to upload file.", err)
	}

	old := asset.PublicID
	asset.Name = file.Filename
	asset.URL = obj.URL
	asset.PublicID = obj.PublicID
	if v := strings.TrimSpace(subject); v != "" {
		asset.Subject = v
	}
	if err := s.db.WithContext(ctx).Save(asset).Error; err != nil {
		s.discard(ctx, obj.PublicID)
		return nil, dependencyError(CodeStorageFailed, "failed to update asset", err)
	}
	s.discard(ctx, old)

	logging.Info("Asset replaced", "asset_id", asset.ID)
	return asset, nil
}

func (s *AssetService) Delete(ctx context.Context, id string) error {
	asset, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(asset).Error; err != nil {
		return dependencyError(CodeStorageFailed, "failed to delete asset", err)
	}
	s.discard(ctx, asset.PublicID)
	logging.Info("Asset deleted", "asset_id", id)
	return nil
}

func (s *AssetService) discard(ctx context.Context, publicID string) {
	if err := s.storage.Delete(context.WithoutCancel(ctx), publicID); err != nil {
		logging.Warn("Failed to delete stored object", "public_id", publicID, "error", err)
	}
}

// SendLetterhead stores an already rendered PDF and mails it to each
// recipient. One failed recipient does not stop the others.
func (s *AssetService) SendLetterhead(ctx context.Context, req dtos.SendLetterheadRequest, pdf dtos.UploadedFile) (*dtos.LetterheadResult, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, validationError("Subject is required.")
	}
	if len(pdf.Data) == 0 {
		return nil, validationError("Letterhead PDF is required.")
	}

	recipients := make([]string, 0, len(req.Emails))
	seen := map[string]struct{}{}
	for _, e := range req.Emails {
		e = NormalizeEmail(e)
		if e == "" {
			continue
		}
		if !validEmail(e) {
			return nil, validationError(fmt.Sprintf("Invalid recipient email %q.", e))
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		recipients = append(recipients, e)
	}
	if len(recipients) == 0 {
		return nil, validationError("At least one recipient email is required.")
	}

	filename := pdf.Filename
	if filename == "" {
		filename = "letterhead.pdf"
	}
	asset, err := s.Upload(ctx, string(gormModels.AssetLetterhead), "", subject, dtos.UploadedFile{
		Filename: filename, ContentType: "application/pdf", Data: pdf.Data,
	})
	if err != nil {
		return nil, err
	}

	result := &dtos.LetterheadResult{FileURL: asset.URL}
	body := letterheadEmail(req.Message)
	for _, to := range recipients {
		record := gormModels.SentMessage{Email: to, Subject: subject, Message: req.Message, FileURL: asset.URL}

		sendErr := s.email.Send(ctx, providers.Email{
			To:      to,
			Subject: subject,
			HTML:    body,
			Attachments: []providers.Attachment{
				{Filename: filename, ContentType: "application/pdf", Data: pdf.Data},
			},
		})
		if sendErr != nil {
			s.metrics.EmailFailure("letterhead")
			logging.Warn("Failed to send letterhead", "email", to, "error", sendErr)
			msg := sendErr.Error()
			record.Error = &msg
			result.Failed = append(result.Failed, dtos.LetterheadFailure{Email: to, Error: msg})
		} else {
			result.Sent++
		}

		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			logging.Error("Failed to record sent letterhead", "email", to, "error", err)
		}
	}

	logging.Info("Letterhead dispatched", "asset_id", asset.ID, "sent", result.Sent, "failed", len(result.Failed))
	return result, nil
}

// SentMessages lists letterheads mailed to email, or all when email is empty.
func (s *AssetService) SentMessages(ctx context.Context, email string) ([]gormModels.SentMessage, error) {
	q := s.db.WithContext(ctx).Order("sent_at DESC")
	if email = NormalizeEmail(email); email != "" {
		q = q.Where("email = ?", email)
	}
	var out []gormModels.SentMessage
	if err := q.Find(&out).Error; err != nil {
		return nil, dependencyError(CodeStorageFailed, "failed to list sent messages", err)
	}
	return out, nil
}
