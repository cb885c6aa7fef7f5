package core

import (
	"context"
	"strings"

	ierr "agency-billing/internal/errors"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const profileCacheKey = "business_profile"

// ProfileService reads and updates the singleton BusinessProfile.
type ProfileService interface {
	// Get returns a copy of the profile. A missing profile is a configuration error.
	Get(ctx context.Context) (*BusinessProfile, error)
	// Update replaces the profile in place.
	Update(ctx context.Context, p BusinessProfile) (*BusinessProfile, error)
}

type profileService struct {
	store  Store
	cache  *cache.Cache
	cfg    BillingConfig
	logger zerolog.Logger
}

// NewProfileService constructs a ProfileService. Reads are cached for
// cfg.ProfileCacheTTL; a zero TTL disables caching.
func NewProfileService(store Store, cfg BillingConfig, logger zerolog.Logger) ProfileService {
	s := &profileService{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "profile").Logger(),
	}
	if cfg.ProfileCacheTTL > 0 {
		s.cache = cache.New(cfg.ProfileCacheTTL, 2*cfg.ProfileCacheTTL)
	}
	return s
}

func (s *profileService) Get(ctx context.Context) (*BusinessProfile, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(profileCacheKey); ok {
			p := v.(BusinessProfile)
			return &p, nil
		}
	}
	p, err := loadProfile(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(profileCacheKey, *p, cache.DefaultExpiration)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, p BusinessProfile) (*BusinessProfile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.StateCode = strings.TrimSpace(p.StateCode)
	p.InvoicePrefix = strings.TrimSpace(p.InvoicePrefix)
	if p.InvoicePrefix == "" {
		p.InvoicePrefix = "INV"
	}

	switch {
	case p.Name == "":
		return nil, validationError("name", "business name is required")
	case p.StateCode == "":
		return nil, validationError("state_code", "business state code is required")
	case strings.Contains(p.InvoicePrefix, "/"):
		return nil, validationError("invoice_prefix", "invoice prefix cannot contain '/'")
	case !validTaxRate(p.DefaultTaxRate):
		return nil, validationError("default_tax_rate", "default tax rate must be between 0 and 100 with at most 2 decimals")
	}

	p.UpdatedAt = s.cfg.now()
	if err := s.store.SaveBusinessProfile(ctx, &p); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Delete(profileCacheKey)
	}
	s.logger.Info().Str("prefix", p.InvoicePrefix).Str("state", p.StateCode).Msg("business profile updated")
	return &p, nil
}

// loadProfile reads the profile through repo, converting a missing row into
// a configuration error.
func loadProfile(ctx context.Context, repo Repository) (*BusinessProfile, error) {
	p, err := repo.GetBusinessProfile(ctx)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("business profile not configured").
				WithHint("Business profile is not configured. Set it up before issuing invoices.").
				Mark(ierr.ErrConfiguration, ErrBusinessProfileMissing)
		}
		return nil, err
	}
	return p, nil
}
