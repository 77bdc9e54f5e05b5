package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// AuthCmd - родительская команда для всех операций с авторизацией пользователя
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление пользователем",
	Long:  `Регистрация, вход и выход.`,
}

var loginFlag string

// promptLogin берет логин из --login или спрашивает его
func promptLogin() (string, error) {
	if loginFlag != "" {
		return loginFlag, nil
	}

	fmt.Print("Email или логин: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("ошибка чтения логина: %w", err)
	}

	login := strings.TrimSpace(line)
	if login == "" {
		return "", fmt.Errorf("логин не может быть пустым")
	}
	return login, nil
}

// promptPassword читает пароль без эха
func promptPassword(label string) (string, error) {
	fmt.Print(label)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("ошибка чтения пароля: %w", err)
	}
	return string(password), nil
}

func init() {
	AuthCmd.PersistentFlags().StringVarP(&loginFlag, "login", "l", "", "email или логин (иначе будет запрошен)")
}
