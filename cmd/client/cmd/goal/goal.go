package goal

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

// GoalCmd - родительская команда для целей по здоровью
var GoalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Цели по здоровью",
	Long:  `Установка целей (вес, калории, вода, шаги) и отслеживание прогресса.`,
}

var (
	goalType string
	target   float64
	current  float64
	unit     string
	deadline string
)

var SetCmd = &cobra.Command{
	Use:   "set",
	Short: "Установить или обновить цель",
	Long: `Устанавливает цель заданного типа. Цель одного типа у пользователя одна,
повторный вызов обновляет ее.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		s, err := app.Session()
		if err != nil {
			return err
		}

		if goalType == "" {
			return fmt.Errorf("укажите --type")
		}
		if target <= 0 {
			return fmt.Errorf("--target должен быть положительным")
		}
		if deadline != "" {
			if _, err := time.Parse(time.DateOnly, deadline); err != nil {
				return fmt.Errorf("дата в формате YYYY-MM-DD: %w", err)
			}
		}

		rec, err := app.Save(cmd.Context(), offline.Goal, map[string]any{
			"user_id":       s.UserID,
			"goal_type":     goalType,
			"target_value":  target,
			"current_value": current,
			"unit":          unit,
			"target_date":   deadline,
			"is_active":     true,
		})
		if err != nil {
			return fmt.Errorf("ошибка сохранения цели: %w", err)
		}

		fmt.Printf("✓ Цель «%s» сохранена (%s)\n", goalType, rec.Status)
		return nil
	},
}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать цели и прогресс",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		rows, fromCache, err := app.Fetch(cmd.Context(), "goals", remote.SelectOptions{Filters: []string{"is_active=eq.true"}})
		if err != nil {
			return fmt.Errorf("ошибка получения целей: %w", err)
		}
		if fromCache {
			fmt.Println("⚠️  Нет связи с сервером, показаны сохраненные данные")
		}
		if len(rows) == 0 {
			fmt.Println("Целей пока нет: hemapp goal set --type weight --target 70 --unit kg")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Тип\tТекущее\tЦель\tЕд.\tПрогресс\tСрок\t\n")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
				types.Str(r, "goal_type"),
				types.Str(r, "current_value"),
				types.Str(r, "target_value"),
				types.Str(r, "unit"),
				progress(r),
				types.Str(r, "target_date"),
			)
		}
		return w.Flush()
	},
}

func progress(r remote.Row) string {
	cur, ok1 := r["current_value"].(float64)
	tgt, ok2 := r["target_value"].(float64)
	if !ok1 || !ok2 || tgt == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", min(cur/tgt, 1)*100)
}

func init() {
	SetCmd.Flags().StringVar(&goalType, "type", "", "тип цели: weight, calories, water, steps")
	SetCmd.Flags().Float64Var(&target, "target", 0, "целевое значение")
	SetCmd.Flags().Float64Var(&current, "current", 0, "текущее значение")
	SetCmd.Flags().StringVar(&unit, "unit", "", "единица измерения")
	SetCmd.Flags().StringVar(&deadline, "deadline", "", "срок YYYY-MM-DD")
}
