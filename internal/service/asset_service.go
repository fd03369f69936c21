package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/hallticket-api/internal/ticket"
	appErrors "github.com/noah-isme/hallticket-api/pkg/errors"
)

// AssetConfig bounds uploaded image payloads. An empty AllowedMIMEs
// accepts every format the sniffer recognises.
type AssetConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
	DefaultLogoDir   string
}

var formatMIMEs = map[ticket.ImageFormat]string{
	ticket.FormatJPEG: "image/jpeg",
	ticket.FormatPNG:  "image/png",
	ticket.FormatGIF:  "image/gif",
	ticket.FormatWEBP: "image/webp",
}

// AssetService holds uploaded photos and logos in memory, keyed the same way
// the layout engine looks them up. Photos are keyed by student identifier;
// logos by their slot.
type AssetService struct {
	mu     sync.RWMutex
	photos map[string]ticket.ImageBytes
	logos  map[ticket.LogoKind]ticket.ImageBytes
	logger *zap.Logger
	cfg    AssetConfig
}

// NewAssetService constructs the asset store.
func NewAssetService(cfg AssetConfig, logger *zap.Logger) *AssetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 << 20
	}
	return &AssetService{
		photos: make(map[string]ticket.ImageBytes),
		logos:  make(map[ticket.LogoKind]ticket.ImageBytes),
		logger: logger,
		cfg:    cfg,
	}
}

// LoadDefaultLogos seeds the logo slots from disk when files are present.
// Missing files are not an error; the layout engine falls back to placeholder
// boxes.
func (s *AssetService) LoadDefaultLogos() {
	if s.cfg.DefaultLogoDir == "" {
		return
	}
	candidates := map[ticket.LogoKind][]string{
		ticket.LogoPrimary:   {"logo.png", "logo.jpg", "college-logo.png"},
		ticket.LogoSecondary: {"emblem.png", "emblem.jpg", "govt-emblem.png"},
	}
	for kind, names := range candidates {
		for _, name := range names {
			path := filepath.Join(s.cfg.DefaultLogoDir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			format, ok := ticket.DetectImageFormat(data)
			if !ok {
				s.logger.Sugar().Warnw("skipping default logo with unknown format", "path", path)
				continue
			}
			s.mu.Lock()
			s.logos[kind] = ticket.ImageBytes{Data: data, Format: format}
			s.mu.Unlock()
			s.logger.Sugar().Infow("default logo loaded", "slot", kind, "path", path)
			break
		}
	}
}

// StorePhoto validates and stores a student photo keyed by identifier.
// Re-uploading for the same identifier replaces the previous photo.
func (s *AssetService) StorePhoto(identifier string, data []byte) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student identifier required")
	}
	img, err := s.validate(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.photos[identifier] = img
	s.mu.Unlock()
	return nil
}

// StoreLogo validates and stores a logo for the given slot.
func (s *AssetService) StoreLogo(kind ticket.LogoKind, data []byte) error {
	if kind != ticket.LogoPrimary && kind != ticket.LogoSecondary {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown logo slot %q", kind))
	}
	img, err := s.validate(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.logos[kind] = img
	s.mu.Unlock()
	return nil
}

// DeletePhoto removes a stored photo. Deleting an absent key is a no-op.
func (s *AssetService) DeletePhoto(identifier string) {
	s.mu.Lock()
	delete(s.photos, strings.TrimSpace(identifier))
	s.mu.Unlock()
}

// DeleteLogo clears a logo slot.
func (s *AssetService) DeleteLogo(kind ticket.LogoKind) {
	s.mu.Lock()
	delete(s.logos, kind)
	s.mu.Unlock()
}

// PhotoIdentifiers lists identifiers that currently have a photo, sorted.
func (s *AssetService) PhotoIdentifiers() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.photos))
	for id := range s.photos {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// PhotoLookup returns the lookup the layout engine uses during a run. The
// returned closure snapshots nothing; lookups read the live store under RLock.
func (s *AssetService) PhotoLookup() ticket.PhotoLookup {
	return func(identifier string) (ticket.ImageBytes, bool) {
		s.mu.RLock()
		img, ok := s.photos[identifier]
		s.mu.RUnlock()
		return img, ok
	}
}

// LogoLookup returns the logo lookup for the layout engine.
func (s *AssetService) LogoLookup() ticket.LogoLookup {
	return func(kind ticket.LogoKind) (ticket.ImageBytes, bool) {
		s.mu.RLock()
		img, ok := s.logos[kind]
		s.mu.RUnlock()
		return img, ok
	}
}

func (s *AssetService) validate(data []byte) (ticket.ImageBytes, error) {
	if len(data) == 0 {
		return ticket.ImageBytes{}, appErrors.Clone(appErrors.ErrValidation, "empty image payload")
	}
	if int64(len(data)) > s.cfg.MaxFileSizeBytes {
		return ticket.ImageBytes{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxFileSizeBytes))
	}
	format, ok := ticket.DetectImageFormat(data)
	if !ok {
		return ticket.ImageBytes{}, appErrors.Clone(appErrors.ErrBadImage, "unrecognised image format, expected JPEG, PNG, GIF or WEBP")
	}
	if len(s.cfg.AllowedMIMEs) > 0 && !s.mimeAllowed(format) {
		return ticket.ImageBytes{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s uploads are not permitted", formatMIMEs[format]))
	}
	return ticket.ImageBytes{Data: data, Format: format}, nil
}

func (s *AssetService) mimeAllowed(format ticket.ImageFormat) bool {
	mime := formatMIMEs[format]
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mime) {
			return true
		}
	}
	return false
}
