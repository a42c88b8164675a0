package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vacancybot/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Fill a vacancy interactively in the terminal",
	Run: func(_ *cobra.Command, _ []string) {
		chat()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func chat() {
	ctx := context.Background()

	zlog, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		zlog.Fatal("getting a config", zap.Error(err))
	}

	f, sessions, err := buildFlow(ctx, config, zlog)
	if err != nil {
		zlog.Fatal("building the conversation flow", zap.Error(err))
	}
	defer sessions.Close()

	// First turn with an empty message produces the welcome.
	res, err := f.Turn(ctx, "", "")
	if err != nil {
		zlog.Fatal("starting the conversation", zap.Error(err))
	}
	fmt.Println(res.Message)

	sessionID := res.SessionID
	input := promptui.Prompt{Label: "You"}

	for {
		line, pErr := input.Run()
		if pErr != nil {
			if errors.Is(pErr, promptui.ErrInterrupt) || errors.Is(pErr, promptui.ErrEOF) {
				fmt.Println("Bye.")
				return
			}
			zlog.Fatal("reading input", zap.Error(pErr))
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			fmt.Println("Bye.")
			return
		}

		res, err = f.Turn(ctx, sessionID, line)
		if err != nil {
			zlog.Fatal("processing the turn", zap.Error(err))
		}
		fmt.Printf("\nAssistant: %s\n\n", res.Message)

		if res.Done {
			return
		}
	}
}
