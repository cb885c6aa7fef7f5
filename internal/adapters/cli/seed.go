package cli

import (
	"context"

	"agency-billing/internal/app"
	ierr "agency-billing/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// seedResult reports what `billing seed` restored.
type seedResult struct {
	ProfileCreated bool `json:"profile_created"`
	ClientsCreated int  `json:"clients_created"`
}

var demoClients = []app.CreateClientRequest{
	{Name: "Ravi Kumar", CompanyName: "Bangalore Bakes", City: "Bengaluru", StateCode: "KA", Email: "ravi@bangalorebakes.in"},
	{Name: "Meera Joshi", CompanyName: "Pune Prints", City: "Pune", StateCode: "MH", Email: "meera@puneprints.in"},
}

func newSeedCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Restore a demo business profile and clients when none exist",
		Long: `seed is safe to run repeatedly: the profile is only created when missing
and the demo clients only when the client list is empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := seed(cmd.Context(), svc)
			if err != nil {
				return err
			}
			rt.logger.Info().
				Bool("profile_created", res.ProfileCreated).
				Int("clients_created", res.ClientsCreated).
				Msg("seed data restored")
			return rt.printJSON(res)
		},
	}
}

func seed(ctx context.Context, svc app.ApplicationService) (*seedResult, error) {
	res := &seedResult{}

	_, err := svc.GetProfile(ctx)
	switch {
	case ierr.IsConfiguration(err):
		if _, err := svc.UpdateProfile(ctx, app.UpdateProfileRequest{
			Name:           "Demo Agency",
			City:           "Bengaluru",
			StateCode:      "KA",
			InvoicePrefix:  "INV",
			DefaultTaxRate: decimal.NewFromInt(18),
		}); err != nil {
			return nil, err
		}
		res.ProfileCreated = true
	case err != nil:
		return nil, err
	}

	existing, err := svc.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing.Clients) > 0 {
		return res, nil
	}
	for _, c := range demoClients {
		if _, err := svc.CreateClient(ctx, c); err != nil {
			return nil, err
		}
		res.ClientsCreated++
	}
	return res, nil
}
