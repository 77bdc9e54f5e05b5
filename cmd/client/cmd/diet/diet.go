package diet

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
	"hemapp/internal/app/client/offline"
	"hemapp/internal/app/client/remote"
)

// DietCmd - родительская команда для дневника питания
var DietCmd = &cobra.Command{
	Use:   "diet",
	Short: "Дневник питания",
	Long:  `Добавление записей о съеденном и просмотр дневника.`,
}

var (
	food     string
	calories float64
	protein  float64
	carbs    float64
	fat      float64
	mealType string
	date     string
)

var AddCmd = &cobra.Command{
	Use:   "add",
	Short: "Добавить запись в дневник",
	Long: `Добавляет запись в дневник питания.

Без сети запись сохраняется локально и будет отправлена автоматически.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		if food == "" {
			return fmt.Errorf("укажите --food")
		}
		if calories < 0 {
			return fmt.Errorf("калорийность не может быть отрицательной")
		}
		if date == "" {
			date = time.Now().Format(time.DateOnly)
		} else if _, err := time.Parse(time.DateOnly, date); err != nil {
			return fmt.Errorf("дата в формате YYYY-MM-DD: %w", err)
		}

		s, err := app.Session()
		if err != nil {
			return err
		}

		rec, err := app.Save(cmd.Context(), offline.DietEntry, map[string]any{
			"user_id":    s.UserID,
			"food_name":  food,
			"calories":   calories,
			"protein":    protein,
			"carbs":      carbs,
			"fat":        fat,
			"meal_type":  mealType,
			"entry_date": date,
		})
		if err != nil {
			return fmt.Errorf("ошибка сохранения записи: %w", err)
		}

		fmt.Printf("✓ Запись добавлена (%s)\n", rec.Status)
		return nil
	},
}

var (
	listDate   string
	listFormat string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать дневник",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		opts := remote.SelectOptions{Limit: 100}
		if listDate != "" {
			opts.Filters = append(opts.Filters, "entry_date=eq."+listDate)
		}

		rows, fromCache, err := app.Fetch(cmd.Context(), "diet_entries", opts)
		if err != nil {
			return fmt.Errorf("ошибка получения дневника: %w", err)
		}
		if fromCache {
			fmt.Println("⚠️  Нет связи с сервером, показаны сохраненные данные")
		}

		if listFormat == "json" {
			return types.PrintJSON(rows)
		}
		if len(rows) == 0 {
			fmt.Println("Записи не найдены")
			return nil
		}

		total := 0.0
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tДата\tПрием пищи\tБлюдо\tКкал\tБ/Ж/У\t\n")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s/%s/%s\t\n",
				types.Str(r, "id"),
				types.Str(r, "entry_date"),
				types.Str(r, "meal_type"),
				types.Str(r, "food_name"),
				types.Str(r, "calories"),
				types.Str(r, "protein"), types.Str(r, "fat"), types.Str(r, "carbs"),
			)
			if c, ok := r["calories"].(float64); ok {
				total += c
			}
		}
		w.Flush()
		fmt.Printf("\nВсего: %.0f ккал\n", total)
		return nil
	},
}

func init() {
	AddCmd.Flags().StringVar(&food, "food", "", "название блюда")
	AddCmd.Flags().Float64Var(&calories, "calories", 0, "калорийность, ккал")
	AddCmd.Flags().Float64Var(&protein, "protein", 0, "белки, г")
	AddCmd.Flags().Float64Var(&carbs, "carbs", 0, "углеводы, г")
	AddCmd.Flags().Float64Var(&fat, "fat", 0, "жиры, г")
	AddCmd.Flags().StringVar(&mealType, "meal-type", "snack", "breakfast, lunch, dinner или snack")
	AddCmd.Flags().StringVar(&date, "date", "", "дата YYYY-MM-DD, по умолчанию сегодня")

	ListCmd.Flags().StringVar(&listDate, "date", "", "только записи за дату YYYY-MM-DD")
	ListCmd.Flags().StringVar(&listFormat, "format", "table", "формат вывода: table или json")
}
