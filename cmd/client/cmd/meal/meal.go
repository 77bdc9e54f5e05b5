package meal

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
	"hemapp/internal/app/client/offline"
	"hemapp/internal/app/client/remote"
)

const photoBucket = "meal-photos"

// MealCmd - родительская команда для приемов пищи
var MealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Приемы пищи",
	Long:  `Запись приемов пищи с фото и их анализ ассистентом.`,
}

var (
	name     string
	calories float64
	photo    string
	analyze  bool
)

var LogCmd = &cobra.Command{
	Use:   "log",
	Short: "Записать прием пищи",
	Long: `Записывает прием пищи. С флагом --photo фото загружается на сервер,
с --analyze калорийность оценивает ассистент.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		s, err := app.Session()
		if err != nil {
			return err
		}

		meal := map[string]any{
			"user_id":   s.UserID,
			"name":      name,
			"calories":  calories,
			"logged_at": time.Now().UTC().Format(time.RFC3339),
		}

		if photo != "" {
			if !app.Online() {
				return fmt.Errorf("загрузка фото недоступна без сети")
			}

			f, err := os.Open(photo)
			if err != nil {
				return fmt.Errorf("ошибка открытия фото: %w", err)
			}
			defer f.Close()

			up, err := app.Remote().Upload(cmd.Context(), photoBucket, filepath.Base(photo), f)
			if err != nil {
				return fmt.Errorf("ошибка загрузки фото: %w", err)
			}
			meal["photo_url"] = up.URL
			fmt.Printf("✓ Фото загружено: %s\n", up.URL)

			if analyze {
				a, err := app.Remote().AnalyzePhoto(cmd.Context(), up.URL)
				if err != nil {
					return fmt.Errorf("ошибка анализа фото: %w", err)
				}
				meal["calories"] = a.EstimatedCalories
				meal["analysis"] = a
				if name == "" && len(a.FoodItems) > 0 {
					meal["name"] = a.FoodItems[0].Name
				}
				fmt.Printf("✓ Оценка: %.0f ккал (уверенность: %s)\n", a.EstimatedCalories, a.Confidence)
			}
		}

		if meal["name"] == "" {
			return fmt.Errorf("укажите --name")
		}

		rec, err := app.Save(cmd.Context(), offline.Meal, meal)
		if err != nil {
			return fmt.Errorf("ошибка сохранения: %w", err)
		}

		fmt.Printf("✓ Прием пищи записан (%s)\n", rec.Status)
		return nil
	},
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Последние приемы пищи",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		rows, fromCache, err := app.Fetch(cmd.Context(), "meals", remote.SelectOptions{Limit: 50})
		if err != nil {
			return fmt.Errorf("ошибка получения списка: %w", err)
		}
		if fromCache {
			fmt.Println("⚠️  Нет связи с сервером, показаны сохраненные данные")
		}
		if len(rows) == 0 {
			fmt.Println("Записи не найдены")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "ID\tКогда\tБлюдо\tКкал\tФото\t\n")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
				types.Str(r, "id"),
				types.Str(r, "logged_at"),
				types.Str(r, "name"),
				types.Str(r, "calories"),
				types.Str(r, "photo_url"),
			)
		}
		return w.Flush()
	},
}

func init() {
	LogCmd.Flags().StringVar(&name, "name", "", "название блюда")
	LogCmd.Flags().Float64Var(&calories, "calories", 0, "калорийность, ккал")
	LogCmd.Flags().StringVar(&photo, "photo", "", "путь к фото блюда")
	LogCmd.Flags().BoolVar(&analyze, "analyze", false, "оценить блюдо по фото")
}
