package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/nfrund/propdesk/internal/domain"
	"github.com/nfrund/propdesk/internal/modules/developments"
	"github.com/nfrund/propdesk/internal/modules/professionals"
	"github.com/nfrund/propdesk/internal/modules/properties"
	"github.com/spf13/cobra"
)

var seedAgentEmail string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample developments, professionals and properties",
	Long: `Loads a small catalog for local development. Properties are assigned to the
user given by --agent, who must already exist. Service types that already
exist are reused.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, repos, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer repos.Close(ctx)

		agent, err := repos.Users.FindByEmail(ctx, domain.NormalizeEmail(seedAgentEmail))
		if err != nil {
			return fmt.Errorf("find agent %q: %w", seedAgentEmail, err)
		}
		ctx = domain.WithActor(ctx, agent)

		counts, err := seed(ctx, repos)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d service types, %d professionals, %d developments, %d properties\n",
			counts.serviceTypes, counts.professionals, counts.developments, counts.properties)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAgentEmail, "agent", "", "email of the user that owns the sample listings")
	_ = seedCmd.MarkFlagRequired("agent")
	rootCmd.AddCommand(seedCmd)
}

type seedCounts struct {
	serviceTypes, professionals, developments, properties int
}

// seed goes through the services so the sample data obeys the same rules as
// data entered through the API.
func seed(ctx context.Context, repos *domain.Repositories) (seedCounts, error) {
	var counts seedCounts
	pros := professionals.NewService(repos.ServiceTypes, repos.Professionals, nil, nil)
	devs := developments.NewService(repos.Developments, repos.Properties, nil, nil)
	props := properties.NewService(repos, nil, nil)

	typeIDs := map[string]string{}
	for _, name := range []string{"Notaría", "Valuación", "Arquitectura"} {
		st, err := pros.CreateServiceType(ctx, professionals.ServiceTypeInput{Name: name})
		if errors.Is(err, domain.ErrAlreadyExists) {
			st, err = repos.ServiceTypes.FindByName(ctx, name)
		} else if err == nil {
			counts.serviceTypes++
		}
		if err != nil {
			return counts, fmt.Errorf("service type %s: %w", name, err)
		}
		typeIDs[name] = st.ID
	}

	sampleProfessionals := []professionals.ProfessionalInput{
		{Name: "Lic. Andrea Salas", Email: "andrea.salas@example.com", Phone: "33 1234 5678", Company: "Notaría 12", City: "Guadalajara", ServiceTypeIDs: []string{typeIDs["Notaría"]}},
		{Name: "Ing. Ramón Ortiz", Email: "ramon.ortiz@example.com", City: "Zapopan", ServiceTypeIDs: []string{typeIDs["Valuación"], typeIDs["Arquitectura"]}},
	}
	for _, in := range sampleProfessionals {
		if _, err := pros.Create(ctx, in); err != nil {
			return counts, fmt.Errorf("professional %s: %w", in.Name, err)
		}
		counts.professionals++
	}

	dev, err := devs.Create(ctx, developments.Form{
		Name:        "Bosque Real",
		Developer:   "Grupo Occidente",
		Description: "Lotes residenciales con vista al bosque",
		Type:        domain.DevelopmentLots,
		Address:     "Camino al Bosque 200",
		City:        "Zapopan",
		State:       "Jalisco",
		TotalLots:   120,
		LotAreaMin:  160,
		LotAreaMax:  450,
		Currency:    "MXN",
		PriceFrom:   1_200_000,
		PriceTo:     3_800_000,
	})
	if err != nil {
		return counts, fmt.Errorf("development: %w", err)
	}
	counts.developments++

	sampleProperties := []properties.Input{
		{Title: "Casa con jardín en Providencia", Description: "Tres recámaras, jardín amplio y cochera techada", Type: domain.PropertyHouse, Operation: domain.OperationSale, Price: 6_200_000, Currency: "MXN", Address: "Av. Providencia 1450", Neighborhood: "Providencia", City: "Guadalajara", State: "Jalisco", Bedrooms: 3, Bathrooms: 2.5, ParkingSpaces: 2, BuiltArea: 240, LotArea: 300, Features: []string{"jardín", "estudio"}, Featured: true},
		{Title: "Departamento amueblado en Chapultepec", Description: "Céntrico, con terraza y gimnasio", Type: domain.PropertyApartment, Operation: domain.OperationRent, Price: 18_000, Currency: "MXN", Address: "Av. Chapultepec 320", Neighborhood: "Americana", City: "Guadalajara", State: "Jalisco", Bedrooms: 2, Bathrooms: 2, ParkingSpaces: 1, BuiltArea: 95, Features: []string{"amueblado", "terraza", "gimnasio"}},
		{Title: "Lote residencial en Bosque Real", Description: "Lote plano listo para construir", Type: domain.PropertyLot, Operation: domain.OperationSale, Price: 1_450_000, Currency: "MXN", Address: "Camino al Bosque 200, lote 14", City: "Zapopan", State: "Jalisco", LotArea: 180, DevelopmentID: dev.ID},
		{Title: "Oficina en Andares", Description: "Piso completo con vista panorámica", Type: domain.PropertyOffice, Operation: domain.OperationRent, Price: 3_500, Currency: "USD", Address: "Blvd. Puerta de Hierro 4965", Neighborhood: "Puerta de Hierro", City: "Zapopan", State: "Jalisco", Bathrooms: 2, ParkingSpaces: 6, BuiltArea: 420},
	}
	for _, in := range sampleProperties {
		if _, err := props.Create(ctx, in); err != nil {
			return counts, fmt.Errorf("property %s: %w", in.Title, err)
		}
		counts.properties++
	}
	return counts, nil
}
