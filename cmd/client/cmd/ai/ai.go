package ai

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"hemapp/cmd/client/cmd/types"
	"hemapp/internal/app/client/offline"
	"hemapp/internal/app/client/remote"
	"hemapp/internal/domain/assistant"
)

const photoBucket = "meal-photos"

// AICmd - родительская команда ассистента
var AICmd = &cobra.Command{
	Use:   "ai",
	Short: "Ассистент по питанию и здоровью",
}

var ChatCmd = &cobra.Command{
	Use:   "chat <вопрос>",
	Short: "Задать вопрос ассистенту",
	Long: `Отправляет вопрос ассистенту и печатает ответ.
Без сети вопрос сохраняется в истории и будет отправлен при синхронизации.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		s, err := app.Session()
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")

		if !app.Online() {
			if _, err := app.Save(cmd.Context(), offline.AIMessage, map[string]any{
				"user_id": s.UserID,
				"message": question,
			}); err != nil {
				return fmt.Errorf("ошибка сохранения вопроса: %w", err)
			}
			fmt.Println("Нет связи с сервером: вопрос сохранен и уйдет ассистенту после синхронизации")
			fmt.Println("Ответ появится в: hemapp ai history")
			return nil
		}

		reply, err := app.Remote().Chat(cmd.Context(), question)
		if err != nil {
			return fmt.Errorf("ошибка запроса к ассистенту: %w", err)
		}
		fmt.Println(reply)
		return nil
	},
}

var historyLimit int

var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Последние вопросы и ответы ассистента",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		rows, fromCache, err := app.Fetch(cmd.Context(), "ai_conversations", remote.SelectOptions{Limit: historyLimit})
		if err != nil {
			return fmt.Errorf("ошибка получения истории: %w", err)
		}
		if fromCache {
			fmt.Println("⚠️  Нет связи с сервером, показаны сохраненные данные")
		}
		if len(rows) == 0 {
			fmt.Println("Вопросов пока не было: hemapp ai chat <вопрос>")
			return nil
		}

		// сервер отдает новые первыми
		for i := len(rows) - 1; i >= 0; i-- {
			fmt.Printf("[%s] > %s\n", types.Str(rows[i], "created_at"), types.Str(rows[i], "message"))
			fmt.Println(types.Str(rows[i], "response"))
			fmt.Println()
		}
		return nil
	},
}

var asJSON bool

var AnalyzeCmd = &cobra.Command{
	Use:   "analyze <url|файл>",
	Short: "Оценить блюдо по фото",
	Long:  `Анализирует фото блюда. Локальный файл сначала загружается на сервер.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if _, err := app.Session(); err != nil {
			return err
		}
		if !app.Online() {
			return fmt.Errorf("анализ фото недоступен без сети")
		}

		imageURL := args[0]
		if u, err := url.Parse(imageURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			f, err := os.Open(imageURL)
			if err != nil {
				return fmt.Errorf("ошибка открытия фото: %w", err)
			}
			defer f.Close()

			up, err := app.Remote().Upload(cmd.Context(), photoBucket, filepath.Base(imageURL), f)
			if err != nil {
				return fmt.Errorf("ошибка загрузки фото: %w", err)
			}
			imageURL = up.URL
		}

		a, err := app.Remote().AnalyzePhoto(cmd.Context(), imageURL)
		if err != nil {
			return fmt.Errorf("ошибка анализа фото: %w", err)
		}

		if asJSON {
			return types.PrintJSON(a)
		}
		printAnalysis(a)
		return nil
	},
}

func printAnalysis(a assistant.PhotoAnalysis) {
	if a.Description != "" {
		fmt.Println(a.Description)
		fmt.Println()
	}
	for _, item := range a.FoodItems {
		fmt.Printf("  • %s %s: %.0f ккал\n", item.Name, item.Portion, item.Calories)
	}
	fmt.Printf("\nВсего: %.0f ккал\n", a.EstimatedCalories)
	fmt.Printf("Белки %.0f г, углеводы %.0f г, жиры %.0f г\n", a.Nutrients.Protein, a.Nutrients.Carbs, a.Nutrients.Fat)
	fmt.Printf("Оценка: %.0f/10 (уверенность: %s)\n", a.HealthScore, a.Confidence)
	for _, s := range a.Suggestions {
		fmt.Printf("  → %s\n", s)
	}
}

func init() {
	HistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "сколько обменов показать")
	AnalyzeCmd.Flags().BoolVar(&asJSON, "json", false, "вывести результат в JSON")
}
