package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mbastide/calendis/internal/codec"
	"github.com/mbastide/calendis/internal/config"
	"github.com/mbastide/calendis/internal/engine"
	"github.com/mbastide/calendis/internal/narrate"
	"github.com/mbastide/calendis/internal/thread"
)

// #region ask

func newAskCmd() *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Interroge le moteur en ligne de commande",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if location == "" {
				return fmt.Errorf("--location est requis")
			}
			if len(args) > 0 {
				return runAskOnce(cfg, location, strings.Join(args, " "))
			}
			return runAskLoop(cfg, location)
		},
	}
	cmd.Flags().StringVarP(&location, "location", "l", "", "identifiant du lieu")
	return cmd
}

func runAskOnce(cfg config.Config, location, text string) error {
	eng, closeFn, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	resp, err := eng.Answer(context.Background(), engine.Query{Text: text, Location: location})
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

func runAskLoop(cfg config.Config, location string) error {
	eng, closeFn, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Println("calendis — posez votre question (quit pour sortir)")
	scanner := bufio.NewScanner(os.Stdin)
	var tc *thread.Context
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}
		resp, err := eng.Answer(context.Background(), engine.Query{
			Text:     text,
			Location: location,
			Thread:   tc,
		})
		if err != nil {
			fmt.Printf("erreur : %v\n", err)
			continue
		}
		printResponse(resp)
		next := resp.Thread
		tc = &next
	}
	return scanner.Err()
}

func buildEngine(cfg config.Config) (*engine.Engine, func(), error) {
	store, err := truthStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	gen := codec.NewClient(codec.DefaultConfig())
	if !gen.Available() {
		log.Printf("[ASK] generative endpoint not configured, answers stay deterministic")
	}
	eng := engine.New(store, narrate.NewWithClient(gen), engine.DefaultConfig())
	return eng, func() { store.Close() }, nil
}

func printResponse(resp *engine.Response) {
	fmt.Println()
	fmt.Println(resp.Headline)
	fmt.Println(resp.Answer)
	for _, r := range resp.Reasons {
		fmt.Println("  - " + r)
	}
	for _, cvt := range resp.Caveats {
		fmt.Println("  ! " + cvt)
	}
	if resp.Actions.Primary != "" {
		fmt.Println("  → " + resp.Actions.Primary)
	}
	fmt.Printf("  [%s]\n\n", resp.AnswerSource)
}

// #endregion ask
