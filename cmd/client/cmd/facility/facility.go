package facility

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
	"hemapp/internal/app/client/remote"
)

// FacilityCmd - родительская команда для медицинских учреждений
var FacilityCmd = &cobra.Command{
	Use:   "facility",
	Short: "Медицинские учреждения",
}

var (
	lat    float64
	lon    float64
	radius float64
	kind   string
	limit  int
	asJSON bool
)

var NearbyCmd = &cobra.Command{
	Use:     "nearby",
	Short:   "Найти учреждения рядом",
	Long:    `Ищет больницы, клиники, аптеки и лаборатории в заданном радиусе, ближайшие первыми.`,
	Example: `  hemapp facility nearby --lat 55.75 --lon 37.62 --radius 3 --kind pharmacy`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lon") {
			return fmt.Errorf("укажите --lat и --lon")
		}

		list, err := app.Remote().NearbyFacilities(cmd.Context(), remote.NearbyQuery{
			Lat:      lat,
			Lon:      lon,
			RadiusKm: radius,
			Kind:     kind,
			Limit:    limit,
		})
		if err != nil {
			return fmt.Errorf("ошибка поиска учреждений: %w", err)
		}

		if asJSON {
			return types.PrintJSON(list)
		}
		if len(list) == 0 {
			fmt.Println("Ничего не найдено, попробуйте увеличить --radius")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Название\tТип\tАдрес\tТелефон\tКм\t\n")
		for _, f := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t\n", f.Name, f.Kind, f.Address, f.Phone, f.DistanceKm)
		}
		return w.Flush()
	},
}

func init() {
	NearbyCmd.Flags().Float64Var(&lat, "lat", 0, "широта")
	NearbyCmd.Flags().Float64Var(&lon, "lon", 0, "долгота")
	NearbyCmd.Flags().Float64Var(&radius, "radius", 5, "радиус поиска, км")
	NearbyCmd.Flags().StringVar(&kind, "kind", "", "тип: hospital, clinic, pharmacy, lab")
	NearbyCmd.Flags().IntVar(&limit, "limit", 20, "максимум результатов")
	NearbyCmd.Flags().BoolVar(&asJSON, "json", false, "вывести результат в JSON")
}
