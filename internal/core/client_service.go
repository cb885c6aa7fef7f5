package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// ClientService manages the billed parties. Client identity never changes;
// only the names may be edited after invoices reference the client.
type ClientService interface {
	Create(ctx context.Context, c Client) (*Client, error)
	Get(ctx context.Context, id int) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	Rename(ctx context.Context, id int, name, companyName string) (*Client, error)
}

type clientService struct {
	store  Store
	cfg    BillingConfig
	logger zerolog.Logger
}

func NewClientService(store Store, cfg BillingConfig, logger zerolog.Logger) ClientService {
	return &clientService{store: store, cfg: cfg, logger: logger.With().Str("component", "client").Logger()}
}

func (s *clientService) Create(ctx context.Context, c Client) (*Client, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.StateCode = strings.TrimSpace(c.StateCode)
	if c.Name == "" {
		return nil, validationError("name", "client name is required")
	}
	now := s.cfg.now()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := s.store.CreateClient(ctx, &c); err != nil {
		return nil, err
	}
	s.logger.Info().Int("client_id", c.ID).Msg("client created")
	return &c, nil
}

func (s *clientService) Get(ctx context.Context, id int) (*Client, error) {
	return s.store.GetClient(ctx, id)
}

func (s *clientService) List(ctx context.Context) ([]Client, error) {
	return s.store.ListClients(ctx)
}

func (s *clientService) Rename(ctx context.Context, id int, name, companyName string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("name", "client name is required")
	}
	if err := s.store.RenameClient(ctx, id, name, strings.TrimSpace(companyName)); err != nil {
		return nil, err
	}
	return s.store.GetClient(ctx, id)
}
